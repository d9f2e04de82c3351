package facts

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"optout-mcp-server/internal/config"
)

func testConfig() config.FactsConfig {
	return config.FactsConfig{
		Enable:          true,
		FactBufferLimit: 1000,
	}
}

func TestEngineEmbeddedSchema(t *testing.T) {
	engine, err := NewEngine(testConfig())
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}
	if !engine.Ready() {
		t.Fatal("engine not ready with embedded schema")
	}
}

func TestEngineSchemaFileOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "project.mg")
	schema := `
Decl run_error(Host, Stage, Message, T).
Decl noisy_site(Host).

noisy_site(Host) :- run_error(Host, _, _, _).
`
	if err := os.WriteFile(path, []byte(schema), 0644); err != nil {
		t.Fatal(err)
	}

	cfg := testConfig()
	cfg.SchemaPath = path
	engine, err := NewEngine(cfg)
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}

	ctx := context.Background()
	engine.Emit(ctx, "run_error", "example.com", "discover", "snapshot failed", int64(1000))

	results, err := engine.Evaluate(ctx, "noisy_site")
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 noisy_site derivation, got %d", len(results))
	}
}

func TestEngineLoadSchemaError(t *testing.T) {
	cfg := testConfig()
	cfg.SchemaPath = "/nonexistent/path/schema.mg"
	if _, err := NewEngine(cfg); err == nil {
		t.Error("expected error for nonexistent schema path")
	}
}

func TestEngineAddFacts(t *testing.T) {
	engine, err := NewEngine(testConfig())
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}

	ctx := context.Background()
	facts := []Fact{
		{
			Predicate: "run_started",
			Args:      []interface{}{"example.com", "manual", int64(1000)},
			Timestamp: time.Now(),
		},
		{
			Predicate: "action_taken",
			Args:      []interface{}{"example.com", "reject all", "click", "deny", int64(1001)},
			Timestamp: time.Now(),
		},
		{
			Predicate: "run_finished",
			Args:      []interface{}{"example.com", "direct", int64(3), int64(1), int64(1002)},
			Timestamp: time.Now(),
		},
	}

	if err := engine.AddFacts(ctx, facts); err != nil {
		t.Fatalf("AddFacts failed: %v", err)
	}

	if buffered := engine.Facts(); len(buffered) != len(facts) {
		t.Errorf("expected %d facts buffered, got %d", len(facts), len(buffered))
	}
	if actions := engine.FactsByPredicate("action_taken"); len(actions) != 1 {
		t.Errorf("expected 1 action_taken, got %d", len(actions))
	}
}

func TestEngineEmit(t *testing.T) {
	engine, err := NewEngine(testConfig())
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}

	engine.Emit(context.Background(), "cmp_detected", "shop.example", "onetrust", int64(5000))

	facts := engine.FactsByPredicate("cmp_detected")
	if len(facts) != 1 {
		t.Fatalf("expected 1 fact, got %d", len(facts))
	}
	if facts[0].Args[1] != "onetrust" {
		t.Errorf("platform arg = %v", facts[0].Args[1])
	}
	if facts[0].Timestamp.IsZero() {
		t.Error("Emit did not stamp the fact")
	}
}

func TestEngineDerivedStubbornSite(t *testing.T) {
	engine, err := NewEngine(testConfig())
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}

	ctx := context.Background()
	engine.Emit(ctx, "run_finished", "polite.example", "direct", int64(2), int64(0), int64(1000))
	engine.Emit(ctx, "run_finished", "hostile.example", "forced-hide", int64(0), int64(0), int64(2000))

	results, err := engine.Evaluate(ctx, "stubborn_site")
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 stubborn site, got %d", len(results))
	}
	if results[0].Args[0] != "hostile.example" {
		t.Errorf("stubborn site = %v", results[0].Args[0])
	}
}

func TestEngineDerivedResistantControl(t *testing.T) {
	engine, err := NewEngine(testConfig())
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}

	ctx := context.Background()
	engine.Emit(ctx, "action_taken", "news.example", "marketing cookies", "toggle", "deny", int64(1000))
	engine.Emit(ctx, "action_taken", "news.example", "analytics cookies", "toggle-forced", "deny", int64(1001))

	results, err := engine.Evaluate(ctx, "resistant_control")
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 resistant control, got %d", len(results))
	}
	if results[0].Args[1] != "analytics cookies" {
		t.Errorf("resistant control = %v", results[0].Args[1])
	}
}

func TestEngineDerivedLearnedWin(t *testing.T) {
	engine, err := NewEngine(testConfig())
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}

	ctx := context.Background()
	// Hit on one host, learned finish on another: no join.
	engine.Emit(ctx, "pattern_hit", "a.example", "reject all", "site", int64(1000))
	engine.Emit(ctx, "run_finished", "b.example", "learned", int64(1), int64(0), int64(1001))

	results, err := engine.Evaluate(ctx, "learned_win")
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("expected no learned_win across hosts, got %d", len(results))
	}

	// Same host: join fires.
	engine.Emit(ctx, "run_finished", "a.example", "learned", int64(1), int64(0), int64(1002))
	results, err = engine.Evaluate(ctx, "learned_win")
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 learned_win, got %d", len(results))
	}
}

func TestEngineQuery(t *testing.T) {
	engine, err := NewEngine(testConfig())
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}

	ctx := context.Background()
	engine.Emit(ctx, "cmp_detected", "a.example", "onetrust", int64(1000))
	engine.Emit(ctx, "cmp_detected", "b.example", "didomi", int64(1001))

	results, err := engine.Query(ctx, "cmp_detected(Host, Platform, T).")
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 bindings, got %d", len(results))
	}

	hosts := map[interface{}]bool{}
	for _, r := range results {
		hosts[r["Host"]] = true
	}
	if !hosts["a.example"] || !hosts["b.example"] {
		t.Errorf("hosts = %v", hosts)
	}
}

func TestEngineQueryConstantFilter(t *testing.T) {
	engine, err := NewEngine(testConfig())
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}

	ctx := context.Background()
	engine.Emit(ctx, "run_started", "a.example", "auto", int64(1000))
	engine.Emit(ctx, "run_started", "b.example", "manual", int64(1001))

	results, err := engine.Query(ctx, `run_started(Host, "auto", T).`)
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 auto-triggered run, got %d", len(results))
	}
	if results[0]["Host"] != "a.example" {
		t.Errorf("host = %v", results[0]["Host"])
	}
}

func TestEngineQueryParseError(t *testing.T) {
	engine, err := NewEngine(testConfig())
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}

	if _, err := engine.Query(context.Background(), "invalid syntax $$"); err == nil {
		t.Error("expected parse error for invalid query syntax")
	}
	if _, err := engine.Query(context.Background(), ""); err == nil {
		t.Error("expected error for empty query")
	}
}

func TestEngineTemporalQuery(t *testing.T) {
	engine, err := NewEngine(testConfig())
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}

	ctx := context.Background()
	now := time.Now()
	past := now.Add(-5 * time.Second)

	facts := []Fact{
		{Predicate: "run_error", Args: []interface{}{"x.example", "discover", "old", past.UnixMilli()}, Timestamp: past},
		{Predicate: "run_error", Args: []interface{}{"x.example", "resolve", "new", now.UnixMilli()}, Timestamp: now},
	}
	if err := engine.AddFacts(ctx, facts); err != nil {
		t.Fatalf("AddFacts failed: %v", err)
	}

	recent := engine.QueryTemporal("run_error", now.Add(-3*time.Second), time.Time{})
	if len(recent) != 1 {
		t.Errorf("expected 1 recent error, got %d", len(recent))
	}
	all := engine.QueryTemporal("run_error", time.Time{}, time.Time{})
	if len(all) != 2 {
		t.Errorf("expected 2 total errors, got %d", len(all))
	}
	if none := engine.QueryTemporal("nonexistent", time.Time{}, time.Time{}); len(none) != 0 {
		t.Errorf("expected 0 results for unknown predicate, got %d", len(none))
	}
}

func TestEngineAddRule(t *testing.T) {
	engine, err := NewEngine(testConfig())
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}

	rule := `
Decl slow_site(Host).

slow_site(Host) :-
    run_started(Host, _, _),
    run_finished(Host, "forced-hide", _, _, _).
`
	if err := engine.AddRule(rule); err != nil {
		t.Fatalf("AddRule failed: %v", err)
	}

	if err := engine.AddRule("invalid rule syntax $$"); err == nil {
		t.Error("expected parse error for invalid rule syntax")
	}
}

func TestEngineDisabled(t *testing.T) {
	engine, err := NewEngine(config.FactsConfig{Enable: false, FactBufferLimit: 1000})
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}

	ctx := context.Background()
	if err := engine.AddFacts(ctx, []Fact{{Predicate: "run_started", Args: []interface{}{"x"}}}); err != nil {
		t.Errorf("AddFacts should be a no-op when disabled: %v", err)
	}
	if err := engine.AddRule("whatever"); err != nil {
		t.Errorf("AddRule should be a no-op when disabled: %v", err)
	}
	if !engine.Ready() {
		t.Error("disabled engine should report ready")
	}
	if _, err := engine.Query(ctx, "run_started(X, Y, Z)."); err == nil {
		t.Error("expected error querying a disabled engine")
	}
}

func TestEngineBufferLimit(t *testing.T) {
	cfg := testConfig()
	cfg.FactBufferLimit = 10
	engine, err := NewEngine(cfg)
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}

	ctx := context.Background()
	for i := 0; i < 20; i++ {
		engine.Emit(ctx, "action_taken", "x.example", "label", "click", "deny", int64(i))
	}

	buffered := engine.Facts()
	if len(buffered) > 10 {
		t.Errorf("expected buffer <= 10, got %d", len(buffered))
	}

	// Index must survive the trim.
	indexed := engine.FactsByPredicate("action_taken")
	if len(indexed) != len(buffered) {
		t.Errorf("index mismatch: indexed=%d, buffer=%d", len(indexed), len(buffered))
	}
}

func TestEngineSampling(t *testing.T) {
	cfg := testConfig()
	cfg.FactBufferLimit = 100
	engine, err := NewEngine(cfg)
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}

	if rate := engine.SamplingRate(); rate != 1.0 {
		t.Errorf("initial sampling rate = %v", rate)
	}

	ctx := context.Background()
	for i := 0; i < 90; i++ {
		engine.Emit(ctx, "surface_seen", "x.example", "div|banner", "div", int64(i))
	}

	if rate := engine.SamplingRate(); rate >= 1.0 {
		t.Errorf("expected sampling rate < 1.0 after buffer fill, got %v", rate)
	}

	// High-value facts are never dropped regardless of pressure.
	before := len(engine.FactsByPredicate("run_error"))
	engine.Emit(ctx, "run_error", "x.example", "resolve", "click failed", int64(999))
	after := len(engine.FactsByPredicate("run_error"))
	if after != before+1 {
		t.Error("high-value fact was sampled out")
	}
}

func TestEngineMatchesAll(t *testing.T) {
	engine, err := NewEngine(testConfig())
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}

	ctx := context.Background()
	_ = engine.AddFacts(ctx, []Fact{
		{Predicate: "cmp_detected", Args: []interface{}{"x.example", "onetrust", int64(1000)}, Timestamp: time.Now()},
		{Predicate: "run_started", Args: []interface{}{"x.example", "auto", int64(999)}, Timestamp: time.Now()},
	})

	t.Run("all conditions match", func(t *testing.T) {
		conds := []Fact{
			{Predicate: "cmp_detected", Args: []interface{}{"x.example"}},
			{Predicate: "run_started", Args: []interface{}{"x.example", "auto"}},
		}
		if !engine.MatchesAll(conds) {
			t.Error("expected all conditions to match")
		}
	})

	t.Run("missing predicate", func(t *testing.T) {
		if engine.MatchesAll([]Fact{{Predicate: "nonexistent"}}) {
			t.Error("matched a predicate that has no facts")
		}
	})

	t.Run("wrong argument value", func(t *testing.T) {
		conds := []Fact{{Predicate: "run_started", Args: []interface{}{"x.example", "manual"}}}
		if engine.MatchesAll(conds) {
			t.Error("matched with wrong trigger value")
		}
	})

	t.Run("empty conditions", func(t *testing.T) {
		if !engine.MatchesAll(nil) {
			t.Error("empty conditions should match")
		}
	})
}

func TestEngineSubscription(t *testing.T) {
	engine, err := NewEngine(testConfig())
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}

	ch := make(chan WatchEvent, 10)
	subID := engine.Subscribe("stubborn_site", ch)
	if subID == "" {
		t.Error("expected non-empty subscription ID")
	}

	found := false
	for _, p := range engine.WatchPredicates() {
		if p == "stubborn_site" {
			found = true
		}
	}
	if !found {
		t.Error("stubborn_site not in watched predicates")
	}

	engine.Unsubscribe("stubborn_site", ch)
	for _, p := range engine.WatchPredicates() {
		if p == "stubborn_site" {
			t.Error("stubborn_site still watched after unsubscribe")
		}
	}
}

func TestEngineWatchNotification(t *testing.T) {
	engine, err := NewEngine(testConfig())
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}

	ch := make(chan WatchEvent, 10)
	engine.Subscribe("paywalled_site", ch)
	defer engine.Unsubscribe("paywalled_site", ch)

	ctx := context.Background()
	engine.Emit(ctx, "paywall_seen", "news.example", "subscribe to continue", int64(1000))

	select {
	case event := <-ch:
		if event.Predicate != "paywalled_site" {
			t.Errorf("event predicate = %q", event.Predicate)
		}
		if len(event.Facts) == 0 {
			t.Error("event carried no facts")
		}
	case <-time.After(200 * time.Millisecond):
		t.Error("no watch event delivered for derived paywalled_site")
	}
}

func TestEngineWatchFullChannelSkipped(t *testing.T) {
	engine, err := NewEngine(testConfig())
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}

	ch := make(chan WatchEvent) // unbuffered, nobody reading
	engine.Subscribe("paywalled_site", ch)
	defer engine.Unsubscribe("paywalled_site", ch)

	// Must not block.
	engine.Emit(context.Background(), "paywall_seen", "news.example", "subscribe to continue", int64(1000))
}

func TestEngineFactTypes(t *testing.T) {
	engine, err := NewEngine(testConfig())
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}

	ctx := context.Background()
	facts := []Fact{
		{Predicate: "run_finished", Args: []interface{}{"x.example", "direct", 3, int64(1), int64(1000)}, Timestamp: time.Now()},
		{Predicate: "run_finished", Args: []interface{}{"y.example", "swept", int64(0), int64(0), int64(1001)}, Timestamp: time.Now()},
	}
	if err := engine.AddFacts(ctx, facts); err != nil {
		t.Fatalf("AddFacts failed: %v", err)
	}

	stored := engine.FactsByPredicate("run_finished")
	if len(stored) != 2 {
		t.Errorf("expected 2 facts, got %d", len(stored))
	}
}

func TestEngineEvaluateNotReady(t *testing.T) {
	engine, err := NewEngine(config.FactsConfig{Enable: false})
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}
	if _, err := engine.Evaluate(context.Background(), "stubborn_site"); err == nil {
		t.Error("expected error evaluating a disabled engine")
	}
}

func TestLowValuePredicates(t *testing.T) {
	low := lowValuePredicates()
	for _, p := range []string{"surface_seen", "control_seen"} {
		if !low[p] {
			t.Errorf("expected %q to be low value", p)
		}
	}
	for _, p := range []string{"action_taken", "run_error", "run_finished", "cmp_detected", "paywall_seen"} {
		if low[p] {
			t.Errorf("%q must never be sampled", p)
		}
	}
}
