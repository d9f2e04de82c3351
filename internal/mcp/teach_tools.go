package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"optout-mcp-server/internal/intent"
	"optout-mcp-server/internal/patterns"
	"optout-mcp-server/internal/run"
)

// teachCaptureJS records clicks while teaching mode is on. It listens in the
// capture phase so consent widgets that stop propagation still get seen, and
// walks up a few hops so a click on a <span> inside a button reports the
// button's label. Installed once per document; navigation clears it.
const teachCaptureJS = `() => {
	if (window.__optoutTeach) { return true; }
	const captured = [];
	window.__optoutTeach = captured;
	const clickable = (el) => {
		const tag = el.tagName;
		if (tag === 'BUTTON' || tag === 'A' || tag === 'INPUT' || tag === 'SUMMARY') { return true; }
		const role = el.getAttribute && el.getAttribute('role');
		return role === 'button' || role === 'link' || role === 'switch' || role === 'checkbox';
	};
	document.addEventListener('click', (ev) => {
		let el = ev.target;
		for (let hop = 0; el && hop < 4; hop++) {
			if (el.nodeType === 1 && clickable(el)) { break; }
			el = el.parentElement;
		}
		if (!el || el.nodeType !== 1 || !clickable(el)) { return; }
		let label = el.getAttribute('aria-label') || '';
		if (!label && el.tagName === 'INPUT') { label = el.value || ''; }
		if (!label) { label = el.innerText || el.title || ''; }
		label = label.trim().replace(/\s+/g, ' ').slice(0, 120);
		if (!label) { return; }
		captured.push({
			label: label,
			selector: el.id ? '#' + CSS.escape(el.id) : '',
			ts: Date.now(),
		});
		if (captured.length > 20) { captured.shift(); }
	}, true);
	return true;
}`

// teachDrainJS returns the captured clicks and clears the buffer.
const teachDrainJS = `() => {
	const captured = window.__optoutTeach || [];
	window.__optoutTeach = [];
	return captured;
}`

// teachCapture is one click recorded by teachCaptureJS.
type teachCapture struct {
	Label    string `json:"label"`
	Selector string `json:"selector"`
	TS       int64  `json:"ts"`
}

// EnterTeachingModeTool pauses autonomous cleaning and starts click capture.
type EnterTeachingModeTool struct {
	sessions Sessions
	engine   *run.Engine
}

func (t *EnterTeachingModeTool) Name() string { return "enter-teaching-mode" }
func (t *EnterTeachingModeTool) Description() string {
	return `Pause autonomous cleaning and record the operator's next clicks.

USE WHEN the engine cannot resolve a site's consent dialog on its own and a
human (or agent via interact tools) wants to show it the right button.

WHAT IT DOES:
- Suspends auto-clean: navigation watchers and run-clean refuse until exit
- Installs a click recorder on the session's current page
- Every click on a button/link/toggle is captured with its label

WORKFLOW:
1. Navigate the session to the troublesome page
2. enter-teaching-mode(session_id)
3. Click the correct dismissal control by hand
4. exit-teaching-mode(session_id) -> stores the click as a taught pattern

NOTE: The recorder lives in the current document. Stay on the page; navigating
away discards captured clicks.

Returns: {teaching: true, session_id}`
}
func (t *EnterTeachingModeTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"session_id": map[string]interface{}{
				"type":        "string",
				"description": "Session whose page should record the demonstration",
			},
		},
		"required": []string{"session_id"},
	}
}
func (t *EnterTeachingModeTool) Execute(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	sessionID := getStringArg(args, "session_id")
	if sessionID == "" {
		return nil, fmt.Errorf("session_id is required")
	}

	drv, err := t.sessions.DriverFor(sessionID)
	if err != nil {
		return nil, err
	}
	if _, err := drv.Eval(ctx, teachCaptureJS); err != nil {
		return nil, fmt.Errorf("install click recorder: %w", err)
	}

	t.engine.SetTeaching(true)
	log.Printf("[teach] teaching mode on (session %s)", sessionID)

	return map[string]interface{}{
		"teaching":   true,
		"session_id": sessionID,
	}, nil
}

// ExitTeachingModeTool ends teaching mode and stores what was demonstrated.
type ExitTeachingModeTool struct {
	sessions Sessions
	engine   *run.Engine
	store    *patterns.Store
}

func (t *ExitTeachingModeTool) Name() string { return "exit-teaching-mode" }
func (t *ExitTeachingModeTool) Description() string {
	return `End teaching mode and store the demonstrated click as a taught pattern.

WHAT IT DOES:
- Resumes autonomous cleaning (always, even when nothing was captured)
- Drains the clicks recorded since enter-teaching-mode
- Stores the first captured label (or an explicit label argument) as a taught
  pattern: applies on every site, floored at 0.9 confidence, never expires

ARGUMENTS:
- label: override the captured label (also works with no capture at all)
- intent: what the taught control does - "deny" (default), "manage", "confirm",
  or "accept" (teaches the engine a label it must never click)
- language: BCP 47 tag if the label is language-specific (optional)
- confidence: 0.9 to 1.0, default 0.9

Returns: {teaching: false, captured, pattern?, clicks}. captured=false with no
stored pattern means nothing was clicked and no label was given.`
}
func (t *ExitTeachingModeTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"session_id": map[string]interface{}{
				"type":        "string",
				"description": "Session holding the recorded demonstration",
			},
			"label": map[string]interface{}{
				"type":        "string",
				"description": "Explicit label to teach instead of the captured click",
			},
			"intent": map[string]interface{}{
				"type":        "string",
				"description": "deny (default), manage, confirm, or accept",
			},
			"language": map[string]interface{}{
				"type":        "string",
				"description": "Optional language tag for the label",
			},
			"confidence": map[string]interface{}{
				"type":        "number",
				"description": "Initial confidence, 0.9 to 1.0 (default 0.9)",
			},
		},
	}
}
func (t *ExitTeachingModeTool) Execute(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	// Resume first. A dead page or a bad argument must not leave the engine
	// stuck in teaching mode.
	t.engine.SetTeaching(false)

	var captured []teachCapture
	sessionID := getStringArg(args, "session_id")
	if sessionID != "" {
		if drv, err := t.sessions.DriverFor(sessionID); err != nil {
			log.Printf("[teach] drain capture: %v", err)
		} else if raw, err := drv.Eval(ctx, teachDrainJS); err != nil {
			log.Printf("[teach] drain capture: %v", err)
		} else if err := json.Unmarshal(raw, &captured); err != nil {
			log.Printf("[teach] decode capture: %v", err)
		}
	}

	label := getStringArg(args, "label")
	selector := ""
	if label == "" && len(captured) > 0 {
		label = captured[0].Label
		selector = captured[0].Selector
	}
	if label == "" {
		log.Printf("[teach] teaching mode off, nothing captured")
		return map[string]interface{}{
			"teaching": false,
			"captured": false,
			"clicks":   len(captured),
		}, nil
	}

	it := intent.Deny
	if s := getStringArg(args, "intent"); s != "" {
		parsed, err := intent.ParseIntent(s)
		if err != nil {
			return nil, err
		}
		it = parsed
	}
	lang := getStringArg(args, "language")
	confidence := getFloatArg(args, "confidence", 0.9)

	pattern, err := t.store.Teach(label, it, lang, confidence, time.Now())
	if err != nil {
		return nil, err
	}
	log.Printf("[teach] taught %q -> %s (session %s)", pattern.Label, it, sessionID)

	return map[string]interface{}{
		"teaching": false,
		"captured": len(captured) > 0,
		"selector": selector,
		"clicks":   len(captured),
		"pattern":  pattern,
	}, nil
}

// GetLearnedPatternsTool lists what the engine has learned and been taught.
type GetLearnedPatternsTool struct {
	store *patterns.Store
}

func (t *GetLearnedPatternsTool) Name() string { return "get-learned-patterns" }
func (t *GetLearnedPatternsTool) Description() string {
	return `List learned, taught, and promoted consent patterns.

SCOPES:
- "site":   patterns learned for one host (site argument required)
- "global": taught patterns plus cross-site promotions, most trusted first
- "all":    full export - per-site patterns, taught, promoted, and candidates
            still short of promotion (default)

WHEN TO USE:
- Checking what the engine knows about a site before visiting it
- Verifying a teaching session stored what you demonstrated
- Auditing promotions after a batch of runs

Returns: scope "site"/"global" -> {scope, patterns, count};
scope "all" -> {scope, export: {sites, taught, promoted, candidates}}.`
}
func (t *GetLearnedPatternsTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"site": map[string]interface{}{
				"type":        "string",
				"description": "Host or URL to list site patterns for",
			},
			"scope": map[string]interface{}{
				"type":        "string",
				"description": "site, global, or all (default all; site implied when site given)",
			},
		},
	}
}
func (t *GetLearnedPatternsTool) Execute(_ context.Context, args map[string]interface{}) (interface{}, error) {
	site := getStringArg(args, "site")
	scope := getStringArg(args, "scope")
	if scope == "" {
		if site != "" {
			scope = "site"
		} else {
			scope = "all"
		}
	}

	switch scope {
	case "site":
		if site == "" {
			return nil, fmt.Errorf("site is required for scope %q", scope)
		}
		ps, err := t.store.SitePatterns(site)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{
			"scope":    scope,
			"site":     patterns.CanonicalHost(site),
			"patterns": ps,
			"count":    len(ps),
		}, nil
	case "global":
		ps, err := t.store.GlobalPatterns()
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{
			"scope":    scope,
			"patterns": ps,
			"count":    len(ps),
		}, nil
	case "all":
		export, err := t.store.ExportAll()
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{
			"scope":  scope,
			"export": export,
		}, nil
	default:
		return nil, fmt.Errorf("unknown scope %q (want site, global, or all)", scope)
	}
}
