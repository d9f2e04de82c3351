package run

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"optout-mcp-server/internal/intent"
	"optout-mcp-server/internal/resolve"
)

// Method is how a run ultimately dealt with the consent surface.
type Method int

// Methods, in rough order of escalation. MethodNone means nothing needed
// doing or nothing worked; MethodForcedHide means the surface was hidden
// rather than operated and carries the least confidence.
const (
	MethodNone Method = iota
	MethodAborted
	MethodLearned
	MethodDirectClick
	MethodToggleSweep
	MethodVendorAPI
	MethodSections
	MethodFrameScan
	MethodForcedHide
)

func (m Method) String() string {
	switch m {
	case MethodAborted:
		return "aborted"
	case MethodLearned:
		return "learned"
	case MethodDirectClick:
		return "direct-click"
	case MethodToggleSweep:
		return "toggle-sweep"
	case MethodVendorAPI:
		return "vendor-api"
	case MethodSections:
		return "sections"
	case MethodFrameScan:
		return "frame-scan"
	case MethodForcedHide:
		return "forced-hide"
	default:
		return "none"
	}
}

func (m Method) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// Result is the report of one cleaning run. A run always produces one;
// page trouble accumulates in Errors instead of failing the pass, and a
// blown budget simply leaves the report partial.
type Result struct {
	RunID   string `json:"run_id"`
	URL     string `json:"url,omitempty"`
	Site    string `json:"site,omitempty"`
	Trigger string `json:"trigger"`

	Method        Method `json:"method"`
	Platform      string `json:"cmp,omitempty"`
	SurfaceFound  bool   `json:"surface_found"`
	SurfaceClosed bool   `json:"surface_closed"`
	PaymentWall   bool   `json:"payment_wall,omitempty"`

	Denied []string `json:"denied"`
	Kept   []string `json:"kept"`
	Errors []string `json:"errors,omitempty"`

	TogglesSeen     int `json:"toggles_seen"`
	SectionsVisited int `json:"sections_visited"`
	FramesScanned   int `json:"frames_scanned"`

	Actions        []resolve.Action `json:"actions"`
	ActionsDropped int              `json:"actions_dropped,omitempty"`

	StartedAt time.Time `json:"started_at"`
	ElapsedMS int64     `json:"elapsed_ms"`

	actionLimit int
	errorLimit  int
	deniedSeen  map[string]bool
	keptSeen    map[string]bool
	errSeen     map[string]bool
}

func newResult(trigger string, actionLimit, errorLimit int) *Result {
	return &Result{
		RunID:       uuid.NewString(),
		Trigger:     trigger,
		StartedAt:   time.Now(),
		Denied:      []string{},
		Kept:        []string{},
		Actions:     []resolve.Action{},
		actionLimit: actionLimit,
		errorLimit:  errorLimit,
		deniedSeen:  map[string]bool{},
		keptSeen:    map[string]bool{},
		errSeen:     map[string]bool{},
	}
}

const errMsgLimit = 200

// addError records a stage-tagged failure, deduplicated and capped. Budget
// expiry is deliberately not an error: running out of time is a soft stop
// with whatever the report already holds.
func (r *Result) addError(stage string, err error) {
	if err == nil {
		return
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return
	}
	msg := fmt.Sprintf("%s: %v", stage, err)
	if runes := []rune(msg); len(runes) > errMsgLimit {
		msg = string(runes[:errMsgLimit]) + "..."
	}
	if r.errSeen[msg] || len(r.Errors) >= r.errorLimit {
		return
	}
	r.errSeen[msg] = true
	r.Errors = append(r.Errors, msg)
}

// addAction appends to the action log, counting overflow instead of growing
// without bound.
func (r *Result) addAction(a resolve.Action) {
	if len(r.Actions) >= r.actionLimit {
		r.ActionsDropped++
		return
	}
	r.Actions = append(r.Actions, a)
}

// noteDenied records a denial and its label, once per label.
func (r *Result) noteDenied(a resolve.Action) {
	r.addAction(a)
	if r.deniedSeen[a.Label] {
		return
	}
	r.deniedSeen[a.Label] = true
	r.Denied = append(r.Denied, a.Label)
}

// noteKept records a control deliberately left alone.
func (r *Result) noteKept(a resolve.Action) {
	r.addAction(a)
	if r.keptSeen[a.Label] {
		return
	}
	r.keptSeen[a.Label] = true
	r.Kept = append(r.Kept, a.Label)
}

// merge folds one surface's resolver outcome into the report.
func (r *Result) merge(out resolve.Outcome) {
	if out.Clicked != nil {
		if out.Clicked.Intent == intent.Deny {
			r.noteDenied(*out.Clicked)
		} else {
			r.addAction(*out.Clicked)
		}
	}
	for _, a := range out.Denied {
		r.noteDenied(a)
	}
	for _, a := range out.Kept {
		r.noteKept(a)
	}
	if out.Confirmed != nil {
		r.addAction(*out.Confirmed)
	}
	for _, err := range out.Errors {
		r.addError("resolve", err)
	}
}

func (r *Result) finish() {
	r.ElapsedMS = time.Since(r.StartedAt).Milliseconds()
}
