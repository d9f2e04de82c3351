package intent

import "testing"

func TestNewRule(t *testing.T) {
	r, err := NewRule("  Weiter   OHNE  Tracking ", Deny, "de", TierLearned)
	if err != nil {
		t.Fatalf("NewRule: %v", err)
	}
	if r.Pattern != "weiter ohne tracking" {
		t.Errorf("pattern not normalized: %q", r.Pattern)
	}
	if !r.Matches("weiter ohne tracking") {
		t.Error("rule should match its own pattern")
	}
	if !r.Matches("hier weiter ohne tracking bitte") {
		t.Error("rule should match embedded word-bounded occurrence")
	}
	if r.Matches("weiterleitung ohne tracking") {
		t.Error("rule must not match inside a longer word")
	}

	if _, err := NewRule("   ", Deny, "en", TierLearned); err == nil {
		t.Error("blank pattern should be rejected")
	}
}

func TestRuleContainmentScripts(t *testing.T) {
	r, err := NewRule("全部拒绝", Deny, "zh", TierLearned)
	if err != nil {
		t.Fatalf("NewRule: %v", err)
	}
	if !r.substr {
		t.Error("han pattern should use containment matching")
	}
	// No word delimiters: embedded occurrence must still match.
	if !r.Matches("我要全部拒绝他们") {
		t.Error("containment rule should match inside running text")
	}

	latin, err := NewRule("reject all", Deny, "en", TierLearned)
	if err != nil {
		t.Fatalf("NewRule: %v", err)
	}
	if latin.substr {
		t.Error("latin pattern should use boundary matching")
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  Reject   All  ", "reject all"},
		{"REJECT\tALL", "reject all"},
		{"reject all", "reject all"},
		{"J’accepte", "j'accepte"},
		{"soft­hyphen", "softhyphen"},
		{"", ""},
		{"   ", ""},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestBuiltinCorpus(t *testing.T) {
	if len(builtinRules) < 300 {
		t.Errorf("builtin corpus suspiciously small: %d rules", len(builtinRules))
	}

	langs := map[string]bool{}
	for _, fams := range [][]langFamily{denyFamilies, acceptFamilies, manageFamilies, confirmFamilies} {
		for _, fam := range fams {
			langs[fam.lang] = true
		}
	}
	if len(langs) < 12 {
		t.Errorf("corpus covers %d languages, want at least 12", len(langs))
	}

	// Denial rules must sort ahead of everything else.
	seenOther := false
	for _, r := range builtinRules {
		if r.Intent != Deny {
			seenOther = true
		} else if seenOther {
			t.Fatal("deny rule found after non-deny rules; corpus order broken")
		}
	}
}

func TestIsSectionLabel(t *testing.T) {
	sections := []string{"Vendors", "List of Partners", "Legitimate Interest", "Zwecke", "Finalités"}
	for _, s := range sections {
		if !IsSectionLabel(s) {
			t.Errorf("IsSectionLabel(%q) = false", s)
		}
	}
	notSections := []string{"Accept all", "Reject all", "Cookie settings", "Save preferences"}
	for _, s := range notSections {
		if IsSectionLabel(s) {
			t.Errorf("IsSectionLabel(%q) = true", s)
		}
	}
}
