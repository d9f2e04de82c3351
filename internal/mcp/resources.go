package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"optout-mcp-server/internal/facts"
	"optout-mcp-server/internal/patterns"

	"github.com/mark3labs/mcp-go/mcp"
)

const (
	resourceMIMEJSON = "application/json"
)

func (s *Server) registerAllResources() {
	if s == nil || s.mcpServer == nil {
		return
	}

	s.mcpServer.AddResource(
		mcp.NewResource(
			"optout://about",
			"Optout About",
			mcp.WithMIMEType(resourceMIMEJSON),
			mcp.WithResourceDescription("High-level server info and usage notes."),
		),
		s.handleAboutResource,
	)

	s.mcpServer.AddResource(
		mcp.NewResource(
			"optout://patterns",
			"Learned Patterns",
			mcp.WithMIMEType(resourceMIMEJSON),
			mcp.WithResourceDescription("Read-only snapshot of taught, promoted, and per-site learned patterns."),
		),
		s.handlePatternsResource,
	)

	s.mcpServer.AddResourceTemplate(
		mcp.NewResourceTemplate(
			"optout://site/{site}/facts{?predicate,limit}",
			"Site Facts",
			mcp.WithTemplateMIMEType(resourceMIMEJSON),
			mcp.WithTemplateDescription("Read a token-efficient slice of run facts for a site (optionally filtered by predicate)."),
		),
		s.handleSiteFactsResource,
	)
}

func (s *Server) handleAboutResource(_ context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	payload := map[string]interface{}{
		"name":    s.cfg.Server.Name,
		"version": s.cfg.Server.Version,
		"notes": []string{
			"Resources are read-only context endpoints; use tools for actions/mutations.",
			"run-clean denies consent on the session's current page; scan-only inspects without clicking.",
			"Teaching flow: enter-teaching-mode, demonstrate the dismissal by hand, exit-teaching-mode.",
		},
		"timestamp_ms": time.Now().UnixMilli(),
	}

	text, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      request.Params.URI,
			MIMEType: resourceMIMEJSON,
			Text:     string(text),
		},
	}, nil
}

func (s *Server) handlePatternsResource(_ context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	if s.store == nil {
		return nil, fmt.Errorf("pattern store unavailable")
	}

	export, err := s.store.ExportAll()
	if err != nil {
		return nil, fmt.Errorf("export patterns: %w", err)
	}

	text, err := json.Marshal(export)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      request.Params.URI,
			MIMEType: resourceMIMEJSON,
			Text:     string(text),
		},
	}, nil
}

func (s *Server) handleSiteFactsResource(_ context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	if s.facts == nil {
		return nil, fmt.Errorf("fact engine unavailable")
	}

	// Facts are keyed by canonical host, so a full URL works here too.
	site := patterns.CanonicalHost(argString(request.Params.Arguments["site"]))
	if site == "" {
		return nil, fmt.Errorf("missing site")
	}
	predicate := argString(request.Params.Arguments["predicate"])
	limit := asInt(request.Params.Arguments["limit"])
	if limit <= 0 {
		limit = 25
	}
	if limit > 500 {
		limit = 500
	}

	selected := selectRecentSiteFacts(s.facts, site, predicate, limit)

	payload := map[string]interface{}{
		"site":      site,
		"predicate": predicate,
		"limit":     limit,
		"count":     len(selected),
		"facts":     selected,
	}
	text, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      request.Params.URI,
			MIMEType: resourceMIMEJSON,
			Text:     string(text),
		},
	}, nil
}

// selectRecentSiteFacts walks the buffer newest-first and keeps facts whose
// first argument is the site. Every run predicate puts the site there.
func selectRecentSiteFacts(engine *facts.Engine, site, predicate string, limit int) []facts.Fact {
	if engine == nil || site == "" || limit <= 0 {
		return []facts.Fact{}
	}

	var source []facts.Fact
	if predicate != "" {
		source = engine.FactsByPredicate(predicate)
	} else {
		source = engine.Facts()
	}

	out := make([]facts.Fact, 0, min(limit, len(source)))
	for i := len(source) - 1; i >= 0 && len(out) < limit; i-- {
		f := source[i]
		if len(f.Args) == 0 {
			continue
		}
		if fmt.Sprintf("%v", f.Args[0]) != site {
			continue
		}
		out = append(out, f)
	}

	// Reverse to return chronological order (oldest -> newest).
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

func argString(v any) string {
	switch value := v.(type) {
	case nil:
		return ""
	case string:
		return value
	case []string:
		if len(value) == 0 {
			return ""
		}
		return value[0]
	default:
		return fmt.Sprintf("%v", value)
	}
}
