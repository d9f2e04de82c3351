// Package scan turns a raw page snapshot into ranked, qualified consent
// surfaces. Qualification is deliberately two-pronged: a container is a
// consent dialog if it talks about privacy and asks for a decision with at
// least one operable control, or if it carries the telltale deny/accept
// button pair even without readable prose.
package scan

import (
	"sort"
	"strings"
	"time"

	"optout-mcp-server/internal/intent"
	"optout-mcp-server/internal/page"
)

// Options tune one qualification pass.
type Options struct {
	// RecencyWindow drops surfaces that have been sitting on the page for
	// longer than this; consent dialogs appear, old chrome does not.
	RecencyWindow time.Duration
	// Anchor, when set, replaces the window start: after a manage click
	// only surfaces that appeared after the click are of interest.
	Anchor time.Time
	// Processed skips surfaces already handled this run.
	Processed *ProcessedSet
}

// Classified pairs a control with its label classification.
type Classified struct {
	Candidate page.Candidate
	Match     intent.Match
}

// Qualified is one surface worth working on, with its visible controls
// already classified.
type Qualified struct {
	Index    int
	Surface  page.Surface
	Controls []Classified
}

// Has reports whether any control of the surface resolved to the intent.
func (q Qualified) Has(it intent.Intent) bool {
	for _, c := range q.Controls {
		if c.Match.Intent == it {
			return true
		}
	}
	return false
}

// ProcessedSet records surface identities already handled in this run so
// re-scans after DOM changes do not loop over the same dialog.
type ProcessedSet struct {
	seen map[string]bool
}

func NewProcessedSet() *ProcessedSet {
	return &ProcessedSet{seen: map[string]bool{}}
}

func (p *ProcessedSet) Mark(identity string) {
	p.seen[identity] = true
}

func (p *ProcessedSet) Has(identity string) bool {
	return p.seen[identity]
}

func (p *ProcessedSet) Len() int {
	return len(p.seen)
}

// Qualify filters and ranks a snapshot's surfaces. The result is ordered by
// stacking: whatever the visitor currently sees on top comes first.
func Qualify(snap *page.Snapshot, cls *intent.Classifier, opts Options) []Qualified {
	if snap == nil {
		return nil
	}
	now := snap.TakenAt
	if now.IsZero() {
		now = time.Now()
	}
	var cutoff time.Time
	if opts.RecencyWindow > 0 {
		cutoff = now.Add(-opts.RecencyWindow)
	}
	if !opts.Anchor.IsZero() && opts.Anchor.After(cutoff) {
		cutoff = opts.Anchor
	}

	var out []Qualified
	for i, surface := range snap.Surfaces {
		if opts.Processed != nil && opts.Processed.Has(surface.Identity()) {
			continue
		}
		// Zero FirstSeen means the watcher has no history for this
		// surface; it was first observed by this very scan.
		if !cutoff.IsZero() && !surface.FirstSeen.IsZero() && surface.FirstSeen.Before(cutoff) {
			continue
		}

		controls := visibleControls(snap, i)
		if len(controls) == 0 {
			continue
		}
		classified := classify(controls, cls)
		if !qualifies(surface, classified) {
			continue
		}
		out = append(out, Qualified{Index: i, Surface: surface, Controls: classified})
	}

	sort.SliceStable(out, func(a, b int) bool {
		return stackRank(out[a].Surface) > stackRank(out[b].Surface)
	})
	return out
}

func visibleControls(snap *page.Snapshot, surface int) []page.Candidate {
	var out []page.Candidate
	for _, c := range snap.Candidates {
		if c.Surface == surface && c.Visible {
			out = append(out, c)
		}
	}
	return out
}

func classify(controls []page.Candidate, cls *intent.Classifier) []Classified {
	out := make([]Classified, len(controls))
	for i, c := range controls {
		out[i] = Classified{Candidate: c, Match: cls.Classify(c.Label)}
	}
	return out
}

// qualifies applies the two-pronged test. Control labels count toward the
// text signals; banners often carry no prose beyond their buttons.
func qualifies(surface page.Surface, controls []Classified) bool {
	var b strings.Builder
	b.WriteString(surface.Text)
	for _, c := range controls {
		b.WriteByte(' ')
		b.WriteString(c.Candidate.Label)
	}
	text := b.String()

	if intent.ContainsPrivacyTopic(text) && intent.ContainsDecisionWord(text) {
		return true
	}

	var deny, accept bool
	for _, c := range controls {
		if c.Candidate.Kind == page.KindToggle {
			continue
		}
		switch c.Match.Intent {
		case intent.Deny:
			deny = true
		case intent.Accept:
			accept = true
		}
	}
	return deny && accept
}

// stackRank orders surfaces the way the compositor does: explicit z-index
// first, then overlay coverage, then fixed positioning, then sheer size.
func stackRank(s page.Surface) int64 {
	rank := int64(s.ZIndex) * 1_000_000
	if s.Overlay {
		rank += 500_000
	}
	if s.Fixed {
		rank += 250_000
	}
	area := int64(s.Rect.W * s.Rect.H / 1000)
	if area > 100_000 {
		area = 100_000
	}
	return rank + area
}

// PaymentWall looks for consent-or-pay wording anywhere in the snapshot.
// The check runs before any qualification: pay walls often lack the usual
// decision vocabulary and must abort the run outright.
func PaymentWall(snap *page.Snapshot) (phrase string, surfaceIndex int, found bool) {
	if snap == nil {
		return "", 0, false
	}
	for i, surface := range snap.Surfaces {
		var b strings.Builder
		b.WriteString(surface.Text)
		for _, c := range snap.Candidates {
			if c.Surface == i {
				b.WriteByte(' ')
				b.WriteString(c.Label)
			}
		}
		text := b.String()
		if !intent.ContainsPrivacyTopic(text) {
			continue
		}
		if p, ok := intent.ContainsPaywallPhrase(text); ok {
			return p, i, true
		}
	}
	return "", 0, false
}
