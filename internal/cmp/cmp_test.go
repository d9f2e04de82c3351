package cmp

import (
	"context"
	"strings"
	"testing"

	"optout-mcp-server/internal/page/pagetest"
)

func TestSignatureCorpus(t *testing.T) {
	seen := map[string]bool{}
	for _, s := range signatures {
		if s.Name == "" || s.Slug == "" {
			t.Errorf("signature %+v missing name or slug", s)
		}
		if seen[s.Slug] {
			t.Errorf("duplicate slug %q", s.Slug)
		}
		seen[s.Slug] = true
		if s.Detect == "" {
			t.Errorf("%s: no detect probe", s.Slug)
		}
		if s.Reject == "" && len(s.DenySelectors) == 0 {
			t.Errorf("%s: neither reject API nor deny selectors", s.Slug)
		}
		if len(s.HideSelectors) == 0 {
			t.Errorf("%s: no hide selectors", s.Slug)
		}
	}
	if len(signatures) < 15 {
		t.Errorf("corpus has %d signatures, expected the major platforms covered", len(signatures))
	}
}

func TestBySlug(t *testing.T) {
	s, ok := BySlug("onetrust")
	if !ok {
		t.Fatal("onetrust not found")
	}
	if s.Name != "OneTrust" {
		t.Errorf("name = %q", s.Name)
	}
	if _, ok := BySlug("no-such-platform"); ok {
		t.Error("unknown slug resolved")
	}
}

func TestDetectScriptComposition(t *testing.T) {
	js := detectScript()
	for _, s := range signatures {
		if !strings.Contains(js, s.Detect) {
			t.Errorf("detect script missing probe for %s", s.Slug)
		}
		if !strings.Contains(js, `"`+s.Slug+`"`) {
			t.Errorf("detect script missing slug %s", s.Slug)
		}
	}
	// OneTrust is probed before the long tail.
	if strings.Index(js, `"onetrust"`) > strings.Index(js, `"termly"`) {
		t.Error("probe order does not follow field share")
	}
}

func TestDetect(t *testing.T) {
	d := &pagetest.FakeDriver{
		EvalResults: map[string]string{
			"onetrust-banner-sdk": `"onetrust"`,
		},
	}
	sig, ok, err := Detect(context.Background(), d)
	if err != nil {
		t.Fatal(err)
	}
	if !ok || sig.Slug != "onetrust" {
		t.Fatalf("detect = %q, %v", sig.Slug, ok)
	}
}

func TestDetectNone(t *testing.T) {
	d := &pagetest.FakeDriver{
		EvalResults: map[string]string{
			"onetrust-banner-sdk": `""`,
		},
	}
	_, ok, err := Detect(context.Background(), d)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("detected a platform on an empty page")
	}
}

func TestInvokeReject(t *testing.T) {
	sig, _ := BySlug("didomi")
	d := &pagetest.FakeDriver{
		EvalResults: map[string]string{
			"setUserDisagreeToAll": `true`,
		},
	}
	ok, err := sig.InvokeReject(context.Background(), d)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Error("reject API reported not invoked")
	}
	if len(d.Evaled) != 1 {
		t.Fatalf("evaluated %d scripts", len(d.Evaled))
	}
	if !strings.Contains(d.Evaled[0], "try {") {
		t.Error("reject script not wrapped in try/catch")
	}
}

func TestInvokeRejectAbsentAPI(t *testing.T) {
	sig, _ := BySlug("didomi")
	d := &pagetest.FakeDriver{
		EvalResults: map[string]string{
			"setUserDisagreeToAll": `false`,
		},
	}
	ok, err := sig.InvokeReject(context.Background(), d)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("reported invoked with the API absent")
	}
}

func TestInvokeRejectNoAPI(t *testing.T) {
	sig, _ := BySlug("sourcepoint")
	d := &pagetest.FakeDriver{}
	ok, err := sig.InvokeReject(context.Background(), d)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("sourcepoint has no public API, nothing to invoke")
	}
	if len(d.Evaled) != 0 {
		t.Error("evaluated a script despite having no API")
	}
}

func TestHideJS(t *testing.T) {
	js := HideJS([]string{"#banner", ".overlay"})
	if !strings.Contains(js, `"#banner"`) || !strings.Contains(js, `".overlay"`) {
		t.Error("selectors not quoted into script")
	}
	if !strings.Contains(js, "display") || !strings.Contains(js, "important") {
		t.Error("hide script does not force display:none")
	}
	if !strings.Contains(js, "overflow") {
		t.Error("hide script does not restore scroll")
	}
}

func TestAllHideSelectors(t *testing.T) {
	all := AllHideSelectors()
	if len(all) < len(signatures) {
		t.Errorf("%d hide selectors for %d platforms", len(all), len(signatures))
	}
	found := false
	for _, sel := range all {
		if sel == "#onetrust-consent-sdk" {
			found = true
		}
	}
	if !found {
		t.Error("onetrust container missing from sweep list")
	}
}
