package mcp

import (
	"context"
	"time"

	"optout-mcp-server/internal/config"
	"optout-mcp-server/internal/facts"
	"optout-mcp-server/internal/run"
)

// PingTool reports liveness and the bits of state a client cares about
// before issuing real work.
type PingTool struct {
	cfg      config.Config
	sessions Sessions
	engine   *run.Engine
	facts    *facts.Engine
}

func (t *PingTool) Name() string { return "ping" }
func (t *PingTool) Description() string {
	return `Health check. Cheap, no browser interaction.

WHEN TO USE:
- Verifying the server is alive and responding
- Checking whether the browser is connected before create-session
- Checking whether teaching mode was left on

Returns: {status: "ok", server, version, teaching, browser_connected,
sessions, facts_ready, timestamp_ms}.`
}
func (t *PingTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":       "object",
		"properties": map[string]interface{}{},
	}
}
func (t *PingTool) Execute(_ context.Context, _ map[string]interface{}) (interface{}, error) {
	return map[string]interface{}{
		"status":            "ok",
		"server":            t.cfg.Server.Name,
		"version":           t.cfg.Server.Version,
		"teaching":          t.engine.Teaching(),
		"browser_connected": t.sessions.IsConnected(),
		"sessions":          len(t.sessions.List()),
		"facts_ready":       t.facts.Ready(),
		"timestamp_ms":      time.Now().UnixMilli(),
	}, nil
}
