package run

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"optout-mcp-server/internal/intent"
	"optout-mcp-server/internal/resolve"
)

func TestMethodStrings(t *testing.T) {
	want := map[Method]string{
		MethodNone:        "none",
		MethodAborted:     "aborted",
		MethodLearned:     "learned",
		MethodDirectClick: "direct-click",
		MethodToggleSweep: "toggle-sweep",
		MethodVendorAPI:   "vendor-api",
		MethodSections:    "sections",
		MethodFrameScan:   "frame-scan",
		MethodForcedHide:  "forced-hide",
	}
	for m, s := range want {
		if got := m.String(); got != s {
			t.Errorf("Method(%d).String() = %q, want %q", m, got, s)
		}
	}
	data, err := json.Marshal(MethodDirectClick)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `"direct-click"` {
		t.Errorf("marshal = %s, want \"direct-click\"", data)
	}
}

func TestResultErrors(t *testing.T) {
	r := newResult(TriggerManual, 10, 2)
	r.addError("snapshot", errors.New("boom"))
	r.addError("snapshot", errors.New("boom"))
	if len(r.Errors) != 1 {
		t.Fatalf("duplicate error recorded twice: %v", r.Errors)
	}
	r.addError("verify", errors.New("second"))
	r.addError("hide", errors.New("third"))
	if len(r.Errors) != 2 {
		t.Fatalf("error cap not applied: %v", r.Errors)
	}
}

func TestResultBudgetExpiryIsNotAnError(t *testing.T) {
	r := newResult(TriggerManual, 10, 10)
	r.addError("snapshot", context.DeadlineExceeded)
	r.addError("discover", context.Canceled)
	if len(r.Errors) != 0 {
		t.Fatalf("budget expiry surfaced as errors: %v", r.Errors)
	}
}

func TestResultActionCap(t *testing.T) {
	r := newResult(TriggerManual, 1, 10)
	r.addAction(resolve.Action{Label: "first"})
	r.addAction(resolve.Action{Label: "second"})
	if len(r.Actions) != 1 || r.ActionsDropped != 1 {
		t.Fatalf("actions=%d dropped=%d, want 1 and 1", len(r.Actions), r.ActionsDropped)
	}
}

func TestResultMerge(t *testing.T) {
	r := newResult(TriggerManual, 10, 10)
	out := resolve.Outcome{
		Clicked:   &resolve.Action{Label: "Reject all", Intent: intent.Deny, Method: resolve.MethodClick},
		Denied:    []resolve.Action{{Label: "Marketing", Method: resolve.MethodToggle}},
		Kept:      []resolve.Action{{Label: "Strictly necessary", Reason: resolve.ReasonMandatory}},
		Confirmed: &resolve.Action{Label: "Save", Intent: intent.Confirm, Method: resolve.MethodClick},
		Errors:    []error{errors.New("one toggle stuck")},
	}
	r.merge(out)

	if len(r.Denied) != 2 {
		t.Fatalf("denied = %v, want the click and the toggle", r.Denied)
	}
	if len(r.Kept) != 1 || r.Kept[0] != "Strictly necessary" {
		t.Fatalf("kept = %v", r.Kept)
	}
	if len(r.Actions) != 4 {
		t.Fatalf("actions = %d, want 4", len(r.Actions))
	}
	if len(r.Errors) != 1 {
		t.Fatalf("errors = %v", r.Errors)
	}

	// Folding the same outcome again must not duplicate labels.
	r.merge(out)
	if len(r.Denied) != 2 || len(r.Kept) != 1 {
		t.Fatalf("re-merge duplicated labels: denied=%v kept=%v", r.Denied, r.Kept)
	}
}
