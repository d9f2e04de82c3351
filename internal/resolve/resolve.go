// Package resolve executes the denial decision on one qualified surface:
// pick the safest effective control, turn optional toggles off, commit, and
// report every action taken. It never selects a consenting control.
package resolve

import (
	"context"
	"fmt"
	"time"

	"optout-mcp-server/internal/intent"
	"optout-mcp-server/internal/page"
	"optout-mcp-server/internal/scan"
)

// Action is one thing the resolver did (or deliberately did not do) to a
// control, in run-report form.
type Action struct {
	Label    string        `json:"label"`
	Category string        `json:"category,omitempty"`
	Kind     page.Kind     `json:"kind"`
	Intent   intent.Intent `json:"intent,omitempty"`
	Lang     string        `json:"lang,omitempty"`
	Method   string        `json:"method"`
	Reason   string        `json:"reason,omitempty"`
	Ref      page.Ref      `json:"ref"`
	Selector string        `json:"selector,omitempty"`
	At       time.Time     `json:"at"`
}

// Action methods.
const (
	MethodClick       = "click"
	MethodToggle      = "toggle"
	MethodForceToggle = "toggle-forced"
)

// Kept reasons.
const (
	ReasonMandatory = "mandatory"
	ReasonLocked    = "locked"
)

// Outcome is the result of resolving one surface.
type Outcome struct {
	// Clicked is the control used to act on the surface: a deny button, a
	// manage opener, or a best-effort dismissal. Nil when the surface was
	// handled through toggles alone or nothing was actionable.
	Clicked *Action
	// Denied lists toggles turned off.
	Denied []Action
	// Kept lists protected or locked toggles left alone.
	Kept []Action
	// Confirmed is the commit click after toggle work, when one existed.
	Confirmed *Action
	// Errors carries per-control failures; the resolver keeps going.
	Errors []error
}

// Acted reports whether the outcome changed or dismissed anything.
func (o Outcome) Acted() bool {
	return o.Clicked != nil || len(o.Denied) > 0 || o.Confirmed != nil
}

// Resolve works one surface. The acted set carries (label, category, kind)
// keys across calls and phases, making repeated resolution idempotent: a
// control already acted on is skipped no matter which scan produced it.
//
// Order of battle: a deny control wins outright; otherwise optional toggles
// are switched off and committed; otherwise a manage opener is clicked for
// the caller to recurse into; otherwise an unlabeled button is tried as a
// dismissal. Accept controls are never candidates.
func Resolve(ctx context.Context, d page.Driver, q scan.Qualified, acted map[string]bool) Outcome {
	var out Outcome

	if deny, ok := pick(q, intent.Deny); ok {
		out.Clicked = clickControl(ctx, d, deny, acted, &out)
		return out
	}

	toggles := controlsOf(q, page.KindToggle)
	if len(toggles) > 0 {
		resolveToggles(ctx, d, toggles, acted, &out)
		if confirm, ok := pick(q, intent.Confirm); ok {
			out.Confirmed = clickControl(ctx, d, confirm, acted, &out)
		}
		if out.Acted() || len(out.Kept) > 0 {
			return out
		}
	}

	if manage, ok := pick(q, intent.Manage); ok {
		out.Clicked = clickControl(ctx, d, manage, acted, &out)
		return out
	}

	if unknown, ok := pickDismiss(q); ok {
		out.Clicked = clickControl(ctx, d, unknown, acted, &out)
	}
	return out
}

// pick returns the first control with the wanted intent. Buttons and links
// both qualify: "Continue without accepting" ships as an anchor more often
// than not.
func pick(q scan.Qualified, want intent.Intent) (scan.Classified, bool) {
	for _, c := range q.Controls {
		if c.Candidate.Kind == page.KindToggle {
			continue
		}
		if c.Match.Intent == want {
			return c, true
		}
	}
	return scan.Classified{}, false
}

// pickDismiss returns the first unclassified button. Links are excluded:
// an unknown anchor is as likely to navigate away as to close anything.
// Section openers ("Vendors", "Purposes", ...) are also skipped; clicking
// one expands a sub-panel instead of closing the dialog.
func pickDismiss(q scan.Qualified) (scan.Classified, bool) {
	for _, c := range q.Controls {
		if c.Candidate.Kind != page.KindButton {
			continue
		}
		if c.Match.Intent != intent.Unknown {
			continue
		}
		if intent.IsSectionLabel(c.Candidate.Label) {
			continue
		}
		return c, true
	}
	return scan.Classified{}, false
}

func controlsOf(q scan.Qualified, kind page.Kind) []scan.Classified {
	var out []scan.Classified
	for _, c := range q.Controls {
		if c.Candidate.Kind == kind {
			out = append(out, c)
		}
	}
	return out
}

// clickControl performs a deduplicated click and records the action. A nil
// return means the control was skipped or the click failed.
func clickControl(ctx context.Context, d page.Driver, c scan.Classified, acted map[string]bool, out *Outcome) *Action {
	key := c.Candidate.DedupKey()
	if acted[key] {
		return nil
	}
	if err := d.Click(ctx, c.Candidate.Ref); err != nil {
		out.Errors = append(out.Errors, fmt.Errorf("click %q: %w", c.Candidate.Label, err))
		return nil
	}
	acted[key] = true
	return &Action{
		Label:    c.Candidate.Label,
		Category: c.Candidate.Category,
		Kind:     c.Candidate.Kind,
		Intent:   c.Match.Intent,
		Lang:     c.Match.Lang,
		Method:   MethodClick,
		Ref:      c.Candidate.Ref,
		Selector: c.Candidate.Selector,
		At:       time.Now(),
	}
}

// resolveToggles walks a surface's toggles. Disabled widgets are reported
// locked, mandatory categories are preserved, everything else that is on
// goes off — verified, with a forced write when the widget reverts.
func resolveToggles(ctx context.Context, d page.Driver, toggles []scan.Classified, acted map[string]bool, out *Outcome) {
	for _, t := range toggles {
		c := t.Candidate
		key := c.DedupKey()
		if acted[key] {
			continue
		}

		if c.Disabled {
			acted[key] = true
			out.Kept = append(out.Kept, toggleAction(c, ReasonLocked))
			continue
		}
		if intent.Protected(c.Label, c.Category+" "+c.Context) {
			acted[key] = true
			out.Kept = append(out.Kept, toggleAction(c, ReasonMandatory))
			continue
		}

		on, err := d.Checked(ctx, c.Ref)
		if err != nil {
			out.Errors = append(out.Errors, fmt.Errorf("read toggle %q: %w", c.Label, err))
			continue
		}
		if !on {
			// Already denied; nothing to record.
			acted[key] = true
			continue
		}

		method := MethodToggle
		if err := d.SetChecked(ctx, c.Ref, false); err != nil {
			out.Errors = append(out.Errors, fmt.Errorf("toggle %q: %w", c.Label, err))
			continue
		}
		still, err := d.Checked(ctx, c.Ref)
		if err != nil {
			out.Errors = append(out.Errors, fmt.Errorf("verify toggle %q: %w", c.Label, err))
			continue
		}
		if still {
			if err := d.ForceChecked(ctx, c.Ref, false); err != nil {
				out.Errors = append(out.Errors, fmt.Errorf("force toggle %q: %w", c.Label, err))
				continue
			}
			still, err = d.Checked(ctx, c.Ref)
			if err != nil {
				out.Errors = append(out.Errors, fmt.Errorf("verify forced toggle %q: %w", c.Label, err))
				continue
			}
			if still {
				out.Errors = append(out.Errors, fmt.Errorf("toggle %q would not turn off", c.Label))
				continue
			}
			method = MethodForceToggle
		}

		acted[key] = true
		a := toggleAction(c, "")
		a.Method = method
		out.Denied = append(out.Denied, a)
	}
}

func toggleAction(c page.Candidate, reason string) Action {
	return Action{
		Label:    c.Label,
		Category: c.Category,
		Kind:     c.Kind,
		Method:   MethodToggle,
		Reason:   reason,
		Ref:      c.Ref,
		Selector: c.Selector,
		At:       time.Now(),
	}
}
