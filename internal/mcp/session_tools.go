package mcp

import (
	"context"
	"fmt"
)

type ListSessionsTool struct {
	sessions Sessions
}

func (t *ListSessionsTool) Name() string { return "list-sessions" }
func (t *ListSessionsTool) Description() string {
	return `List all active browser sessions managed by the detached Rod instance.

USE THIS FIRST to discover existing sessions before creating new ones.
Returns session IDs needed for run-clean, scan-only, and teaching tools.

WHEN TO USE:
- At the start of automation to see what's available
- After creating sessions to confirm they exist
- Before closing sessions to get accurate IDs

Returns: Array of {id, url, title, status} for each tracked session. Status
"detached" means the record survived a restart but has no live page.`
}
func (t *ListSessionsTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":       "object",
		"properties": map[string]interface{}{},
	}
}
func (t *ListSessionsTool) Execute(_ context.Context, _ map[string]interface{}) (interface{}, error) {
	sessions := t.sessions.List()
	return map[string]interface{}{
		"sessions": sessions,
		"count":    len(sessions),
	}, nil
}

type CreateSessionTool struct {
	sessions Sessions
}

func (t *CreateSessionTool) Name() string { return "create-session" }
func (t *CreateSessionTool) Description() string {
	return `Create a new incognito browser session for consent cleaning.

PREREQUISITE: Browser must be running (use launch-browser first if needed).

WHEN TO USE:
- Visiting a site whose consent dialog should be handled
- Need isolated cookie state so the dialog actually appears

WORKFLOW:
1. launch-browser (if not running)
2. create-session (with the target URL)
3. run-clean or scan-only with the returned session_id

NOTE: When auto-clean is enabled the new session is already being watched;
consent dialogs may be resolved before you ask.

Returns: {session: {id, url, title, status}} - Use the ID for subsequent calls.`
}
func (t *CreateSessionTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"url": map[string]interface{}{
				"type":        "string",
				"description": "Optional URL to navigate after opening the session",
			},
		},
	}
}
func (t *CreateSessionTool) Execute(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	url := getStringArg(args, "url")
	if url == "" {
		url = "about:blank"
	}

	sess, err := t.sessions.CreateSession(ctx, url)
	if err != nil {
		return nil, err
	}

	return map[string]interface{}{"session": sess}, nil
}

type AttachSessionTool struct {
	sessions Sessions
}

func (t *AttachSessionTool) Name() string { return "attach-session" }
func (t *AttachSessionTool) Description() string {
	return `Attach to an existing Chrome tab/window by its CDP TargetID.

USE INSTEAD OF create-session when:
- Cleaning a page in a manually opened browser tab
- Teaching on a tab the operator is already looking at
- Attaching to a tab opened by another process

HOW TO GET target_id:
- From Chrome DevTools Protocol directly
- From chrome://inspect page
- From prior automation that created tabs

Returns: {session: {id, url, title, status}} for use with other tools.`
}
func (t *AttachSessionTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"target_id": map[string]interface{}{
				"type":        "string",
				"description": "CDP TargetID to attach",
			},
		},
		"required": []string{"target_id"},
	}
}
func (t *AttachSessionTool) Execute(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	targetID := getStringArg(args, "target_id")
	if targetID == "" {
		return nil, fmt.Errorf("target_id is required")
	}

	sess, err := t.sessions.Attach(ctx, targetID)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"session": sess}, nil
}

type CloseSessionTool struct {
	sessions Sessions
}

func (t *CloseSessionTool) Name() string { return "close-session" }
func (t *CloseSessionTool) Description() string {
	return `Close one browser session and its page.

WHEN TO USE:
- Done with a site; release the tab
- A session's page is wedged and you want a fresh one

NOTE: Closing a session does not forget what was learned on it. Patterns
persist in the store regardless of session lifecycle.

Returns: {closed: session_id}`
}
func (t *CloseSessionTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"session_id": map[string]interface{}{
				"type":        "string",
				"description": "Session to close",
			},
		},
		"required": []string{"session_id"},
	}
}
func (t *CloseSessionTool) Execute(_ context.Context, args map[string]interface{}) (interface{}, error) {
	sessionID := getStringArg(args, "session_id")
	if sessionID == "" {
		return nil, fmt.Errorf("session_id is required")
	}

	if err := t.sessions.CloseSession(sessionID); err != nil {
		return nil, err
	}
	return map[string]interface{}{"closed": sessionID}, nil
}

// LaunchBrowserTool starts Chrome using the configured launch command.
type LaunchBrowserTool struct {
	sessions Sessions
	life     *runCtx
}

func (t *LaunchBrowserTool) Name() string { return "launch-browser" }
func (t *LaunchBrowserTool) Description() string {
	return `Start a Chrome browser instance for consent cleaning.

CALL THIS FIRST before any browser work (unless the server auto-started it).

WHAT IT DOES:
- Launches Chrome with DevTools Protocol enabled
- Configures based on server settings (headless, stealth, viewport)
- Restores session records persisted by a previous run (as detached)

WHEN TO USE:
- Starting a new automation session
- After shutdown-browser to restart
- Idempotent: safe to call if already running

TYPICAL WORKFLOW:
1. launch-browser       -> Start Chrome
2. create-session       -> Open a tab on the target site
3. run-clean            -> Deny consent
4. shutdown-browser     -> Cleanup (optional)

Returns: {status: "started"|"already_connected", control_url}`
}
func (t *LaunchBrowserTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":       "object",
		"properties": map[string]interface{}{},
	}
}
func (t *LaunchBrowserTool) Execute(_ context.Context, _ map[string]interface{}) (interface{}, error) {
	if t.sessions.IsConnected() {
		return map[string]interface{}{
			"status":      "already_connected",
			"control_url": t.sessions.ControlURL(),
		}, nil
	}

	// The browser connection must outlive this call, so it binds to the
	// server's lifecycle context rather than the request's.
	if err := t.sessions.Start(t.life.get()); err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"status":      "started",
		"control_url": t.sessions.ControlURL(),
	}, nil
}

// ShutdownBrowserTool stops the managed Chrome instance and clears sessions.
type ShutdownBrowserTool struct {
	sessions Sessions
}

func (t *ShutdownBrowserTool) Name() string { return "shutdown-browser" }
func (t *ShutdownBrowserTool) Description() string {
	return `Stop the Chrome browser and clean up all sessions.

WHEN TO USE:
- End of automation to release resources
- Before restarting with different settings
- Cleanup after failures

WHAT IT DOES:
- Persists session records for the next run (restored as detached)
- Closes all tracked sessions
- Terminates Chrome

NOTE: Learned patterns and the fact buffer persist after shutdown.`
}
func (t *ShutdownBrowserTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":       "object",
		"properties": map[string]interface{}{},
	}
}
func (t *ShutdownBrowserTool) Execute(_ context.Context, _ map[string]interface{}) (interface{}, error) {
	t.sessions.Shutdown()
	return map[string]interface{}{
		"status": "stopped",
	}, nil
}
