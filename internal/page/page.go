// Package page defines the snapshot model the cleaning engine works on: a
// scan of candidate consent surfaces and their controls, plus the driver
// contract a browser backend implements. Everything above this package is
// browser-agnostic; tests run against a fake driver.
package page

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"optout-mcp-server/internal/intent"
)

// Kind classifies a control by how it is operated.
type Kind int

const (
	KindButton Kind = iota
	KindLink
	KindToggle
)

func (k Kind) String() string {
	switch k {
	case KindLink:
		return "link"
	case KindToggle:
		return "toggle"
	default:
		return "button"
	}
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(data []byte) error {
	switch string(data) {
	case "button", "":
		*k = KindButton
	case "link":
		*k = KindLink
	case "toggle":
		*k = KindToggle
	default:
		return fmt.Errorf("unknown control kind: %q", data)
	}
	return nil
}

// Ref addresses one element within the current scan. Refs are scan-scoped:
// a new snapshot invalidates all previous refs. Frame 0 is the top document;
// higher values index the same-origin frames of the latest frame scan.
type Ref struct {
	Frame int `json:"frame"`
	Index int `json:"index"`
}

func (r Ref) String() string {
	if r.Frame == 0 {
		return fmt.Sprintf("#%d", r.Index)
	}
	return fmt.Sprintf("f%d#%d", r.Frame, r.Index)
}

// Rect is an element's viewport geometry in CSS pixels.
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Surface is a container that may be a consent dialog: an overlay, banner or
// panel that appeared recently and sits above the page content.
type Surface struct {
	Ref        Ref       `json:"ref"`
	Tag        string    `json:"tag"`
	Identifier string    `json:"identifier,omitempty"`
	Rect       Rect      `json:"rect"`
	ZIndex     int       `json:"z_index"`
	Fixed      bool      `json:"fixed"`
	Overlay    bool      `json:"overlay"`
	Text       string    `json:"text,omitempty"`
	FirstSeen  time.Time `json:"first_seen"`
}

// geometryBucket quantizes surface size so minor re-layouts do not defeat
// the processed-set. 48px matches typical banner padding steps.
const geometryBucket = 48

// Identity is the stable key a surface keeps across scans: tag, identifier
// and bucketed size. Position is excluded; banners slide in.
func (s Surface) Identity() string {
	return fmt.Sprintf("%s|%s|%dx%d", s.Tag, s.Identifier,
		int(s.Rect.W)/geometryBucket, int(s.Rect.H)/geometryBucket)
}

// Candidate is one operable control inside a surface.
type Candidate struct {
	Ref      Ref    `json:"ref"`
	Surface  int    `json:"surface"`
	Kind     Kind   `json:"kind"`
	Label    string `json:"label"`
	Category string `json:"category,omitempty"`
	Context  string `json:"context,omitempty"`
	Selector string `json:"selector,omitempty"`
	Checked  bool   `json:"checked,omitempty"`
	Disabled bool   `json:"disabled,omitempty"`
	Visible  bool   `json:"visible"`
}

// DedupKey identifies a control for idempotence: acting twice on the same
// label within the same category and kind is a repeat, even across scans.
func (c Candidate) DedupKey() string {
	return intent.Normalize(c.Label) + "|" + intent.Normalize(c.Category) + "|" + c.Kind.String()
}

/// Snapshot is one scan of a document: all plausible surfaces and controls,
// taken in a single evaluation so refs stay coherent.
type Snapshot struct {
	TakenAt    time.Time   `json:"taken_at"`
	URL        string      `json:"url"`
	Frame      int         `json:"frame"`
	FrameURL   string      `json:"frame_url,omitempty"`
	Surfaces   []Surface   `json:"surfaces"`
	Candidates []Candidate `json:"candidates"`
}

// SurfaceCandidates returns the controls belonging to one surface, in
// document order.
func (s *Snapshot) SurfaceCandidates(surface int) []Candidate {
	var out []Candidate
	for _, c := range s.Candidates {
		if c.Surface == surface {
			out = append(out, c)
		}
	}
	return out
}

// Driver is what the cleaning engine needs from a browser page. The rod
// backend implements it; tests substitute a scripted fake. All methods honor
// context cancellation.
type Driver interface {
	// URL reports the page location cleaning is running against.
	URL(ctx context.Context) (string, error)
	// Snapshot scans the top document.
	Snapshot(ctx context.Context) (*Snapshot, error)
	// FrameSnapshots scans visible same-origin embedded frames, one
	// snapshot per frame. Cross-origin frames are skipped.
	FrameSnapshots(ctx context.Context) ([]*Snapshot, error)
	// Click performs a trusted click on a control from the current scan.
	Click(ctx context.Context, ref Ref) error
	// ClickSelector clicks the first visible match of a CSS selector,
	// reporting whether anything was there to click. Used for structural
	// handling of known consent managers.
	ClickSelector(ctx context.Context, selector string) (bool, error)
	// SetChecked drives a toggle to the requested state by operating it
	// the way a visitor would.
	SetChecked(ctx context.Context, ref Ref, on bool) error
	// ForceChecked writes the state directly and fires change events, for
	// toggles whose widgets swallow synthetic clicks.
	ForceChecked(ctx context.Context, ref Ref, on bool) error
	// Checked reads back a toggle's current state.
	Checked(ctx context.Context, ref Ref) (bool, error)
	// HideSurface removes a surface from view without operating it.
	HideSurface(ctx context.Context, ref Ref) error
	// RestoreScroll lifts scroll locks left behind by a hidden overlay.
	RestoreScroll(ctx context.Context) error
	// Eval runs page JavaScript and returns its JSON result. Vendor
	// consent APIs are invoked through this.
	Eval(ctx context.Context, js string) (json.RawMessage, error)
	// WaitSettled blocks until the document has been mutation-quiet for
	// the given window, or until max elapses.
	WaitSettled(ctx context.Context, quiet, max time.Duration) error
}
