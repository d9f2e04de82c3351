package run

import (
	"context"
	"fmt"
	"log"

	"optout-mcp-server/internal/cmp"
	"optout-mcp-server/internal/intent"
	"optout-mcp-server/internal/page"
	"optout-mcp-server/internal/patterns"
	"optout-mcp-server/internal/scan"
)

// ScanReport is the read-only counterpart of a run: what a cleaning pass
// would see and how each control classifies, with nothing operated.
type ScanReport struct {
	URL         string          `json:"url"`
	Site        string          `json:"site,omitempty"`
	Platform    string          `json:"cmp,omitempty"`
	PaymentWall bool            `json:"payment_wall"`
	PaywallHint string          `json:"paywall_hint,omitempty"`
	ToggleCount int             `json:"toggle_count"`
	Surfaces    []SurfaceReport `json:"surfaces"`
}

// SurfaceReport describes one qualifying surface.
type SurfaceReport struct {
	Identity string          `json:"identity"`
	Tag      string          `json:"tag"`
	Text     string          `json:"text,omitempty"`
	Controls []ControlReport `json:"controls"`
}

// ControlReport describes one control and its classification.
type ControlReport struct {
	Label     string        `json:"label"`
	Kind      page.Kind     `json:"kind"`
	Intent    intent.Intent `json:"intent"`
	Tier      string        `json:"tier,omitempty"`
	Category  string        `json:"category,omitempty"`
	Checked   bool          `json:"checked,omitempty"`
	Protected bool          `json:"protected,omitempty"`
}

const scanTextLimit = 280

// Scan inspects the page without acting on it: same discovery pipeline as a
// run, same classifier seeding, no clicks. It shares the run gate so a scan
// never races a pass over the same browser.
func (e *Engine) Scan(ctx context.Context, d page.Driver) (*ScanReport, error) {
	e.gate.Lock()
	defer e.gate.Unlock()

	url, err := d.URL(ctx)
	if err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}
	rep := &ScanReport{
		URL:      url,
		Site:     patterns.CanonicalHost(url),
		Surfaces: []SurfaceReport{},
	}

	cls := intent.NewClassifier()
	if err := e.seedClassifier(cls, rep.Site); err != nil {
		log.Printf("[scan] pattern seed for %q: %v", rep.Site, err)
	}

	snap, err := d.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}
	if phrase, _, found := scan.PaymentWall(snap); found {
		rep.PaymentWall = true
		rep.PaywallHint = phrase
	}
	if sig, ok, err := cmp.Detect(ctx, d); err == nil && ok {
		rep.Platform = sig.Name
	}

	for _, q := range scan.Qualify(snap, cls, scan.Options{RecencyWindow: e.cfg.GetRecencyWindow()}) {
		sr := SurfaceReport{
			Identity: q.Surface.Identity(),
			Tag:      q.Surface.Tag,
			Text:     clip(q.Surface.Text, scanTextLimit),
		}
		for _, c := range q.Controls {
			cr := ControlReport{
				Label:    c.Candidate.Label,
				Kind:     c.Candidate.Kind,
				Intent:   c.Match.Intent,
				Category: c.Candidate.Category,
				Checked:  c.Candidate.Checked,
			}
			if c.Match.Intent != intent.Unknown {
				cr.Tier = c.Match.Tier.String()
			}
			if c.Candidate.Kind == page.KindToggle {
				rep.ToggleCount++
				cr.Protected = intent.Protected(c.Candidate.Label, c.Candidate.Category+" "+c.Candidate.Context)
			}
			sr.Controls = append(sr.Controls, cr)
		}
		rep.Surfaces = append(rep.Surfaces, sr)
	}
	return rep, nil
}

func clip(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
