package mcp

import (
	"context"
	"fmt"
	"strings"

	"optout-mcp-server/internal/facts"
)

// QueryFactsTool runs a Mangle query against the consent-run fact base.
type QueryFactsTool struct {
	facts *facts.Engine
}

func (t *QueryFactsTool) Name() string { return "query-facts" }
func (t *QueryFactsTool) Description() string {
	return `Run a Mangle (Datalog) query over everything the cleaning runs recorded.

BASE PREDICATES (emitted per run, timestamps in unix ms):
- run_started(Host, Trigger, T) / run_finished(Host, Method, Denied, Kept, T)
- phase_result(Host, Phase, Outcome, T)
- surface_seen(Host, Identity, Tag, T)
- action_taken(Host, Label, Method, Intent, T)
- cmp_detected(Host, Platform, T)
- paywall_seen(Host, Phrase, T)
- pattern_hit(Host, Label, Source, T)

DERIVED PREDICATES (accumulate across runs):
- stubborn_site(Host)            - only ever resolved by forced hide
- resistant_control(Host, Label) - toggles that needed a forced write
- paywalled_site(Host)           - consent-or-pay sites
- platform_site(Host, Platform)  - which CMP runs a site
- learned_win(Host, Label)       - learned patterns that paid off

EXAMPLES:
- query-facts("stubborn_site(Host)")
- query-facts("cmp_detected(Host, Platform, T)")
- query-facts("action_taken(\"news.example\", Label, Method, Intent, T)")

Variables start uppercase; constants are quoted strings. Returns: {query,
results: [{Var: value}], count}.`
}
func (t *QueryFactsTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"query": map[string]interface{}{
				"type":        "string",
				"description": "Mangle query, e.g. stubborn_site(Host)",
			},
		},
		"required": []string{"query"},
	}
}
func (t *QueryFactsTool) Execute(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	query := strings.TrimSpace(getStringArg(args, "query"))
	if query == "" {
		return nil, fmt.Errorf("query is required")
	}
	if !strings.HasSuffix(query, ".") {
		query += "."
	}

	results, err := t.facts.Query(ctx, query)
	if err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"query":   query,
		"results": results,
		"count":   len(results),
	}, nil
}

// ReadFactsTool reads the raw fact buffer without Mangle evaluation.
type ReadFactsTool struct {
	facts *facts.Engine
}

func (t *ReadFactsTool) Name() string { return "read-facts" }
func (t *ReadFactsTool) Description() string {
	return `Read recent raw facts from the run buffer, newest last.

USE query-facts FOR REASONING; use read-facts to eyeball what the engine has
been emitting, for example when a query unexpectedly returns nothing.

ARGUMENTS:
- predicate: filter to one predicate (optional)
- limit: max facts to return, default 25, cap 500

Returns: {predicate, limit, count, facts: [{predicate, args, timestamp}]}.`
}
func (t *ReadFactsTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"predicate": map[string]interface{}{
				"type":        "string",
				"description": "Only return facts with this predicate",
			},
			"limit": map[string]interface{}{
				"type":        "integer",
				"description": "Max facts to return (default 25)",
			},
		},
	}
}
func (t *ReadFactsTool) Execute(_ context.Context, args map[string]interface{}) (interface{}, error) {
	predicate := getStringArg(args, "predicate")
	limit := getIntArg(args, "limit", 25)
	if limit <= 0 {
		limit = 25
	}
	if limit > 500 {
		limit = 500
	}

	var source []facts.Fact
	if predicate != "" {
		source = t.facts.FactsByPredicate(predicate)
	} else {
		source = t.facts.Facts()
	}
	if len(source) > limit {
		source = source[len(source)-limit:]
	}

	return map[string]interface{}{
		"predicate": predicate,
		"limit":     limit,
		"count":     len(source),
		"facts":     source,
	}, nil
}
