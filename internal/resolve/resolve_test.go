package resolve

import (
	"context"
	"testing"

	"optout-mcp-server/internal/intent"
	"optout-mcp-server/internal/page"
	"optout-mcp-server/internal/page/pagetest"
	"optout-mcp-server/internal/scan"
)

func button(ref int, label string, it intent.Intent) scan.Classified {
	return scan.Classified{
		Candidate: page.Candidate{Ref: page.Ref{Index: ref}, Kind: page.KindButton, Label: label, Visible: true},
		Match:     intent.Match{Intent: it},
	}
}

func toggle(ref int, label, category string) scan.Classified {
	return scan.Classified{
		Candidate: page.Candidate{Ref: page.Ref{Index: ref}, Kind: page.KindToggle, Label: label, Category: category, Visible: true},
	}
}

func TestResolveDenyPriority(t *testing.T) {
	d := &pagetest.FakeDriver{}
	q := scan.Qualified{Controls: []scan.Classified{
		button(1, "Accept all", intent.Accept),
		button(2, "Reject all", intent.Deny),
		button(3, "Settings", intent.Manage),
	}}

	out := Resolve(context.Background(), d, q, map[string]bool{})
	if out.Clicked == nil || out.Clicked.Intent != intent.Deny {
		t.Fatalf("Clicked = %+v, want deny", out.Clicked)
	}
	if len(d.Clicked) != 1 || d.Clicked[0].Index != 2 {
		t.Errorf("clicked refs = %v, want just the deny button", d.Clicked)
	}
	if len(out.Errors) != 0 {
		t.Errorf("unexpected errors: %v", out.Errors)
	}
}

func TestResolveNeverClicksAccept(t *testing.T) {
	d := &pagetest.FakeDriver{}
	q := scan.Qualified{Controls: []scan.Classified{
		button(1, "Accept all", intent.Accept),
	}}

	out := Resolve(context.Background(), d, q, map[string]bool{})
	if out.Acted() {
		t.Errorf("acted on an accept-only surface: %+v", out)
	}
	if len(d.Clicked) != 0 {
		t.Errorf("accept button was clicked: %v", d.Clicked)
	}
}

func TestResolveToggles(t *testing.T) {
	marketing := toggle(10, "Marketing cookies", "Marketing")
	analytics := toggle(11, "Statistics", "Analytics")
	necessary := toggle(12, "Strictly necessary cookies", "Necessary")
	locked := toggle(13, "Functional", "Functional")
	locked.Candidate.Disabled = true
	confirm := button(20, "Save choices", intent.Confirm)

	d := &pagetest.FakeDriver{
		Toggles: map[page.Ref]bool{
			{Index: 10}: true,
			{Index: 11}: true,
			{Index: 12}: true,
			{Index: 13}: true,
		},
		// Analytics reverts after a synthetic click; the forced write wins.
		StickyToggles: map[page.Ref]bool{{Index: 11}: true},
	}
	q := scan.Qualified{Controls: []scan.Classified{marketing, analytics, necessary, locked, confirm}}

	out := Resolve(context.Background(), d, q, map[string]bool{})

	if len(out.Denied) != 2 {
		t.Fatalf("denied %d toggles, want 2: %+v", len(out.Denied), out.Denied)
	}
	methods := map[string]string{}
	for _, a := range out.Denied {
		methods[a.Label] = a.Method
	}
	if methods["Marketing cookies"] != MethodToggle {
		t.Errorf("marketing method = %q", methods["Marketing cookies"])
	}
	if methods["Statistics"] != MethodForceToggle {
		t.Errorf("sticky toggle method = %q, want forced", methods["Statistics"])
	}

	if len(out.Kept) != 2 {
		t.Fatalf("kept %d, want 2: %+v", len(out.Kept), out.Kept)
	}
	reasons := map[string]string{}
	for _, a := range out.Kept {
		reasons[a.Label] = a.Reason
	}
	if reasons["Strictly necessary cookies"] != ReasonMandatory {
		t.Errorf("necessary reason = %q", reasons["Strictly necessary cookies"])
	}
	if reasons["Functional"] != ReasonLocked {
		t.Errorf("locked reason = %q", reasons["Functional"])
	}

	// The protected toggle must never be operated.
	for _, call := range d.SetCheckeds {
		if call.Ref.Index == 12 || call.Ref.Index == 13 {
			t.Errorf("protected or locked toggle was operated: %+v", call)
		}
	}
	if on := d.Toggles[page.Ref{Index: 12}]; !on {
		t.Error("necessary toggle was turned off")
	}

	if out.Confirmed == nil {
		t.Fatal("confirm button not clicked after toggle work")
	}
	if out.Confirmed.Label != "Save choices" {
		t.Errorf("confirmed %q", out.Confirmed.Label)
	}
}

func TestResolveIdempotence(t *testing.T) {
	q := scan.Qualified{Controls: []scan.Classified{
		toggle(10, "Marketing", "Ads"),
		button(20, "Save choices", intent.Confirm),
	}}

	d := &pagetest.FakeDriver{Toggles: map[page.Ref]bool{{Index: 10}: true}}
	acted := map[string]bool{}

	first := Resolve(context.Background(), d, q, acted)
	if len(first.Denied) != 1 || first.Confirmed == nil {
		t.Fatalf("first pass incomplete: %+v", first)
	}

	// Model the re-render leaving the same controls on screen.
	d.Toggles[page.Ref{Index: 10}] = true

	second := Resolve(context.Background(), d, q, acted)
	if second.Acted() {
		t.Errorf("second pass repeated actions: %+v", second)
	}
	if len(d.Clicked) != 1 {
		t.Errorf("confirm clicked %d times, want 1", len(d.Clicked))
	}
	total := 0
	for _, c := range d.SetCheckeds {
		if c.Ref.Index == 10 {
			total++
		}
	}
	if total != 1 {
		t.Errorf("toggle operated %d times, want 1", total)
	}
}

func TestResolveManageFallback(t *testing.T) {
	d := &pagetest.FakeDriver{}
	q := scan.Qualified{Controls: []scan.Classified{
		button(1, "Accept all", intent.Accept),
		button(2, "Cookie settings", intent.Manage),
	}}

	out := Resolve(context.Background(), d, q, map[string]bool{})
	if out.Clicked == nil || out.Clicked.Intent != intent.Manage {
		t.Fatalf("Clicked = %+v, want manage", out.Clicked)
	}
}

func TestResolveDismissFallback(t *testing.T) {
	d := &pagetest.FakeDriver{}
	q := scan.Qualified{Controls: []scan.Classified{
		button(1, "Accept all", intent.Accept),
		button(2, "✕", intent.Unknown),
	}}

	out := Resolve(context.Background(), d, q, map[string]bool{})
	if out.Clicked == nil || out.Clicked.Intent != intent.Unknown {
		t.Fatalf("Clicked = %+v, want unknown dismissal", out.Clicked)
	}

	// An unknown link is not a dismissal candidate.
	link := scan.Qualified{Controls: []scan.Classified{
		{Candidate: page.Candidate{Ref: page.Ref{Index: 3}, Kind: page.KindLink, Label: "More info", Visible: true}},
	}}
	d2 := &pagetest.FakeDriver{}
	if out := Resolve(context.Background(), d2, link, map[string]bool{}); out.Acted() {
		t.Errorf("unknown link was clicked: %+v", out)
	}
}

func TestResolveAlreadyOffToggle(t *testing.T) {
	d := &pagetest.FakeDriver{Toggles: map[page.Ref]bool{{Index: 10}: false}}
	q := scan.Qualified{Controls: []scan.Classified{toggle(10, "Marketing", "Ads")}}

	out := Resolve(context.Background(), d, q, map[string]bool{})
	if len(out.Denied) != 0 || len(out.Kept) != 0 || len(out.Errors) != 0 {
		t.Errorf("already-off toggle produced actions: %+v", out)
	}
	if len(d.SetCheckeds) != 0 {
		t.Errorf("already-off toggle was operated")
	}
}

func TestResolveClickError(t *testing.T) {
	q := scan.Qualified{Controls: []scan.Classified{
		button(2, "Reject all", intent.Deny),
	}}
	d := &pagetest.FakeDriver{ClickErrs: map[page.Ref]error{{Index: 2}: context.DeadlineExceeded}}

	out := Resolve(context.Background(), d, q, map[string]bool{})
	if out.Clicked != nil {
		t.Errorf("failed click reported as success")
	}
	if len(out.Errors) != 1 {
		t.Errorf("errors = %v, want 1", out.Errors)
	}
}
