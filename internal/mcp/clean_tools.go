package mcp

import (
	"context"
	"fmt"
	"time"

	"optout-mcp-server/internal/recorder"
	"optout-mcp-server/internal/run"
)

// RunCleanTool runs a full consent-denial pass on a session's current page.
type RunCleanTool struct {
	sessions Sessions
	engine   *run.Engine
	rec      *recorder.Recorder
}

func (t *RunCleanTool) Name() string { return "run-clean" }
func (t *RunCleanTool) Description() string {
	return `Deny consent on the page currently loaded in a session.

WHAT IT DOES:
- Scans the page (and iframes) for consent dialogs, cookie banners, CMP overlays
- Clicks the reject path, unchecks optional toggles, walks manage/settings layers
- Falls back to hiding the overlay and restoring scroll when nothing else works
- Records outcomes so the same site resolves faster next time

WHEN TO USE:
- After navigating a session to a page that shows a consent dialog
- When a banner reappears after navigation (each page load is a fresh fight)

NOT FOR:
- Inspection without side effects (use scan-only)
- Pages without consent UI (returns method "none", harmless)

Returns: {session_id, result: {run_id, method, cmp, denied, kept, toggles_seen,
sections_visited, frames_scanned, elapsed_ms}}. method tells you how the dialog
was resolved: learned, direct-click, toggle-sweep, vendor-api, sections,
frame-scan, forced-hide, aborted (payment wall), or none.`
}
func (t *RunCleanTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"session_id": map[string]interface{}{
				"type":        "string",
				"description": "Session whose current page should be cleaned",
			},
			"budget_ms": map[string]interface{}{
				"type":        "integer",
				"description": "Optional time budget in milliseconds (default 30000)",
			},
		},
		"required": []string{"session_id"},
	}
}
func (t *RunCleanTool) Execute(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	sessionID := getStringArg(args, "session_id")
	if sessionID == "" {
		return nil, fmt.Errorf("session_id is required")
	}
	if t.engine.Teaching() {
		return nil, fmt.Errorf("teaching mode active; call exit-teaching-mode first")
	}

	drv, err := t.sessions.DriverFor(sessionID)
	if err != nil {
		return nil, err
	}

	opts := run.Options{Trigger: run.TriggerManual}
	if ms := getIntArg(args, "budget_ms", 0); ms > 0 {
		opts.Budget = time.Duration(ms) * time.Millisecond
	}

	result := t.engine.Clean(ctx, drv, opts)
	if t.rec != nil {
		t.rec.Log("run-clean", sessionID, result)
	}

	return map[string]interface{}{
		"session_id": sessionID,
		"result":     result,
	}, nil
}

// ScanOnlyTool inspects the page for consent UI without clicking anything.
type ScanOnlyTool struct {
	sessions Sessions
	engine   *run.Engine
	rec      *recorder.Recorder
}

func (t *ScanOnlyTool) Name() string { return "scan-only" }
func (t *ScanOnlyTool) Description() string {
	return `Inspect a session's current page for consent dialogs WITHOUT interacting.

WHAT IT DOES:
- Runs the same discovery pass as run-clean: surfaces, candidate buttons, toggles
- Detects CMP vendor (OneTrust, Didomi, Sourcepoint, ...) and payment walls
- Classifies every visible control by intent (deny/accept/manage/confirm)
- Clicks nothing, toggles nothing, hides nothing

WHEN TO USE:
- Before run-clean to see what the page contains
- Debugging why a site resolved the way it did
- Checking whether a dialog is a consent prompt or a paywall

Returns: {session_id, report: {url, site, cmp, payment_wall, paywall_hint,
toggle_count, surfaces: [{identity, tag, text, controls}]}}.`
}
func (t *ScanOnlyTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"session_id": map[string]interface{}{
				"type":        "string",
				"description": "Session whose current page should be scanned",
			},
		},
		"required": []string{"session_id"},
	}
}
func (t *ScanOnlyTool) Execute(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	sessionID := getStringArg(args, "session_id")
	if sessionID == "" {
		return nil, fmt.Errorf("session_id is required")
	}

	drv, err := t.sessions.DriverFor(sessionID)
	if err != nil {
		return nil, err
	}

	report, err := t.engine.Scan(ctx, drv)
	if err != nil {
		return nil, err
	}
	if t.rec != nil {
		t.rec.Log("scan-only", sessionID, report)
	}

	return map[string]interface{}{
		"session_id": sessionID,
		"report":     report,
	}, nil
}
