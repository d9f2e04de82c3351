package patterns

import (
	"testing"
	"time"

	"optout-mcp-server/internal/intent"
)

func TestCanonicalHost(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"https://www.example.com/article?x=1", "example.com"},
		{"http://Example.COM:8080/", "example.com"},
		{"example.com", "example.com"},
		{"www.example.com", "example.com"},
		{"example.com:443", "example.com"},
		{"news.example.co.uk/path", "news.example.co.uk"},
		{"example.com.", "example.com"},
		{"  https://shop.example.de  ", "shop.example.de"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := CanonicalHost(tt.in); got != tt.want {
			t.Errorf("CanonicalHost(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDeriveConfidence(t *testing.T) {
	tests := []struct {
		success, usage int
		want           float64
	}{
		{0, 0, 0.5},
		{0, 5, 0.5},
		{10, 10, 0.75},
		{20, 20, 1.0},
		{5, 10, 0.625},
		{40, 40, 1.0}, // weight saturates at twenty uses
	}
	for _, tt := range tests {
		got := deriveConfidence(tt.success, tt.usage)
		if got != tt.want {
			t.Errorf("deriveConfidence(%d, %d) = %v, want %v", tt.success, tt.usage, got, tt.want)
		}
	}
}

func TestRulesCompile(t *testing.T) {
	ps := []Pattern{
		{Label: "weiter ohne tracking", Intent: intent.Deny, Lang: "de"},
		{Label: "", Intent: intent.Deny}, // uncompilable, skipped
		{Label: "continue with limited ads", Intent: intent.Deny, Lang: "en", Source: SourceTaught},
	}
	rules := Rules(ps)
	if len(rules) != 2 {
		t.Fatalf("compiled %d rules, want 2", len(rules))
	}
	if rules[0].Pattern != "weiter ohne tracking" || rules[0].Tier != intent.TierLearned {
		t.Errorf("rule order or tier wrong: %+v", rules[0])
	}
	if rules[1].Tier != intent.TierTaught {
		t.Errorf("taught pattern compiled with tier %v", rules[1].Tier)
	}
}

func TestSortByScore(t *testing.T) {
	now := time.Now()
	ps := []Pattern{
		{Label: "mid", Confidence: 0.6, UsageCount: 5, LastUsedAt: now},
		{Label: "top", Confidence: 0.9, UsageCount: 10, LastUsedAt: now},
		{Label: "low", Confidence: 0.5, UsageCount: 1, LastUsedAt: now},
		{Label: "tie-new", Confidence: 0.5, UsageCount: 1, LastUsedAt: now.Add(time.Hour)},
	}
	sortByScore(ps)
	if ps[0].Label != "top" || ps[1].Label != "mid" {
		t.Errorf("order wrong: %v %v", ps[0].Label, ps[1].Label)
	}
	if ps[2].Label != "tie-new" {
		t.Errorf("tie should break on recency, got %v", ps[2].Label)
	}
}
