// Package facts wraps the Mangle deductive database with consent-run fact
// management. Every run emits base facts (surfaces seen, controls classified,
// actions taken); derived predicates like stubborn_site accumulate across runs
// and are queryable over MCP.
package facts

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"math/rand"
	"os"
	"sync"
	"time"

	"optout-mcp-server/internal/config"

	"github.com/google/mangle/analysis"
	"github.com/google/mangle/ast"
	"github.com/google/mangle/engine"
	"github.com/google/mangle/factstore"
	"github.com/google/mangle/parse"
)

//go:embed schemas/consent.mg
var defaultSchema []byte

// Fact is one normalized event from a cleaning run.
type Fact struct {
	Predicate string        `json:"predicate"`
	Args      []interface{} `json:"args"`
	Timestamp time.Time     `json:"timestamp"`
}

// QueryResult binds query variables to values.
type QueryResult map[string]interface{}

// lowValuePredicates can be sampled under buffer pressure. Discovery scans
// emit one fact per surface and per control, which dwarfs everything else;
// actions, run boundaries, platform detections and errors are never dropped.
func lowValuePredicates() map[string]bool {
	return map[string]bool{
		"surface_seen": true,
		"control_seen": true,
	}
}

// Engine wraps the Mangle store, a temporal fact buffer, and watch-mode
// subscriptions.
type Engine struct {
	cfg          config.FactsConfig
	mu           sync.RWMutex
	schemaLoaded bool

	programInfo *analysis.ProgramInfo
	store       factstore.FactStore

	// Temporal buffer, circularly trimmed to cfg.FactBufferLimit.
	facts []Fact
	// Predicate index into the buffer.
	index map[string][]int

	samplingRate    float64
	predicateCounts map[string]int
	lowValue        map[string]bool

	subscriptions map[string][]chan WatchEvent
	subMu         sync.RWMutex
}

// WatchEvent is delivered when a watched predicate has facts after an
// evaluation pass.
type WatchEvent struct {
	Predicate string    `json:"predicate"`
	Facts     []Fact    `json:"facts"`
	Timestamp time.Time `json:"timestamp"`
}

// NewEngine builds the engine and loads the consent schema: the embedded one
// by default, or cfg.SchemaPath when set.
func NewEngine(cfg config.FactsConfig) (*Engine, error) {
	e := &Engine{
		cfg:             cfg,
		facts:           make([]Fact, 0, cfg.FactBufferLimit),
		index:           make(map[string][]int),
		store:           factstore.NewSimpleInMemoryStore(),
		samplingRate:    1.0,
		predicateCounts: make(map[string]int),
		lowValue:        lowValuePredicates(),
		subscriptions:   make(map[string][]chan WatchEvent),
	}

	if cfg.Enable {
		if cfg.SchemaPath != "" {
			if err := e.LoadSchemaFile(cfg.SchemaPath); err != nil {
				return nil, err
			}
		} else if err := e.loadSchema(defaultSchema); err != nil {
			return nil, fmt.Errorf("embedded consent schema: %w", err)
		}
	}

	return e, nil
}

// LoadSchemaFile parses and analyzes a Mangle schema from disk, replacing the
// embedded default.
func (e *Engine) LoadSchemaFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read schema: %w", err)
	}
	return e.loadSchema(data)
}

func (e *Engine) loadSchema(data []byte) error {
	sourceUnit, err := parse.Unit(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("parse schema: %w", err)
	}

	// Stratification and safety checks happen here.
	programInfo, err := analysis.AnalyzeOneUnit(sourceUnit, make(map[ast.PredicateSym]ast.Decl))
	if err != nil {
		return fmt.Errorf("analyze schema: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.programInfo = programInfo
	e.schemaLoaded = true
	return nil
}

// AddRule adds a Mangle rule at runtime, analyzed against the loaded
// program's declarations.
func (e *Engine) AddRule(ruleSource string) error {
	if !e.cfg.Enable {
		return nil
	}

	sourceUnit, err := parse.Unit(bytes.NewReader([]byte(ruleSource)))
	if err != nil {
		return fmt.Errorf("parse rule: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	existingDecls := make(map[ast.PredicateSym]ast.Decl)
	if e.programInfo != nil && e.programInfo.Decls != nil {
		for k, v := range e.programInfo.Decls {
			if v != nil {
				existingDecls[k] = *v
			}
		}
	}

	newProgramInfo, err := analysis.AnalyzeOneUnit(sourceUnit, existingDecls)
	if err != nil {
		return fmt.Errorf("analyze rule: %w", err)
	}

	if e.programInfo == nil {
		e.programInfo = newProgramInfo
	} else {
		for k, v := range newProgramInfo.Decls {
			e.programInfo.Decls[k] = v
		}
	}
	return nil
}

// Emit records a single event with the current time.
func (e *Engine) Emit(ctx context.Context, predicate string, args ...interface{}) {
	_ = e.AddFacts(ctx, []Fact{{Predicate: predicate, Args: args, Timestamp: time.Now()}})
}

// AddFacts appends events to the temporal buffer and the Mangle store, then
// runs an incremental evaluation pass. Low-value facts are sampled when the
// buffer runs hot.
func (e *Engine) AddFacts(ctx context.Context, facts []Fact) error {
	if !e.cfg.Enable {
		return nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.updateSamplingRate()

	filtered := make([]Fact, 0, len(facts))
	for _, f := range facts {
		if e.acceptFact(f) {
			filtered = append(filtered, f)
			e.predicateCounts[f.Predicate]++
		}
	}

	baseIdx := len(e.facts)
	e.facts = append(e.facts, filtered...)
	if e.cfg.FactBufferLimit > 0 && len(e.facts) > e.cfg.FactBufferLimit {
		trim := len(e.facts) - e.cfg.FactBufferLimit
		e.facts = e.facts[trim:]
		e.rebuildIndex()
	} else {
		for i, f := range filtered {
			e.index[f.Predicate] = append(e.index[f.Predicate], baseIdx+i)
		}
	}

	for _, f := range filtered {
		atom, err := e.factToAtom(f)
		if err != nil {
			continue
		}
		e.store.Add(atom)
	}

	if e.schemaLoaded && e.programInfo != nil {
		if err := engine.EvalProgram(e.programInfo, e.store); err != nil {
			return fmt.Errorf("eval program after fact insertion: %w", err)
		}
		e.notifyWatchers()
	}

	return nil
}

// notifyWatchers queries every watched predicate and delivers current
// derivations to subscribers.
func (e *Engine) notifyWatchers() {
	for _, predicate := range e.WatchPredicates() {
		predSym := ast.PredicateSym{Symbol: predicate, Arity: -1}
		wildcard := ast.Atom{Predicate: predSym}

		var derived []Fact
		_ = e.store.GetFacts(wildcard, func(atom ast.Atom) error {
			if fact, err := e.atomToFact(atom); err == nil {
				derived = append(derived, fact)
			}
			return nil
		})

		if len(derived) > 0 {
			e.notifySubscribers(predicate, derived)
		}
	}
}

// updateSamplingRate tightens sampling as the buffer fills past 50%.
func (e *Engine) updateSamplingRate() {
	if e.cfg.FactBufferLimit <= 0 {
		e.samplingRate = 1.0
		return
	}

	fill := float64(len(e.facts)) / float64(e.cfg.FactBufferLimit)
	switch {
	case fill < 0.5:
		e.samplingRate = 1.0
	case fill < 0.7:
		e.samplingRate = 0.8
	case fill < 0.85:
		e.samplingRate = 0.5
	case fill < 0.95:
		e.samplingRate = 0.2
	default:
		e.samplingRate = 0.1
	}
}

func (e *Engine) acceptFact(f Fact) bool {
	if !e.lowValue[f.Predicate] {
		return true
	}
	if e.samplingRate >= 1.0 {
		return true
	}
	return rand.Float64() < e.samplingRate
}

// SamplingRate reports the current sampling rate for diagnostics.
func (e *Engine) SamplingRate() float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.samplingRate
}

// Subscribe registers a channel for a predicate's derivations. The returned
// ID is informational; Unsubscribe takes the channel itself.
func (e *Engine) Subscribe(predicate string, ch chan WatchEvent) string {
	e.subMu.Lock()
	defer e.subMu.Unlock()
	e.subscriptions[predicate] = append(e.subscriptions[predicate], ch)
	return fmt.Sprintf("%s:%p", predicate, ch)
}

// Unsubscribe removes a channel from a predicate's subscriber list.
func (e *Engine) Unsubscribe(predicate string, ch chan WatchEvent) {
	e.subMu.Lock()
	defer e.subMu.Unlock()
	channels := e.subscriptions[predicate]
	for i, c := range channels {
		if c == ch {
			e.subscriptions[predicate] = append(channels[:i], channels[i+1:]...)
			break
		}
	}
}

// notifySubscribers delivers non-blocking; a full channel misses the event.
func (e *Engine) notifySubscribers(predicate string, facts []Fact) {
	e.subMu.RLock()
	channels := e.subscriptions[predicate]
	e.subMu.RUnlock()

	if len(channels) == 0 || len(facts) == 0 {
		return
	}

	event := WatchEvent{Predicate: predicate, Facts: facts, Timestamp: time.Now()}
	for _, ch := range channels {
		select {
		case ch <- event:
		default:
		}
	}
}

// WatchPredicates lists predicates with active subscriptions.
func (e *Engine) WatchPredicates() []string {
	e.subMu.RLock()
	defer e.subMu.RUnlock()
	predicates := make([]string, 0, len(e.subscriptions))
	for p, chs := range e.subscriptions {
		if len(chs) > 0 {
			predicates = append(predicates, p)
		}
	}
	return predicates
}

// Query runs a Mangle query and returns all satisfying variable bindings.
// Falls back to a direct buffer scan when the store has nothing for the
// predicate, which covers facts whose arity never matched a declaration.
func (e *Engine) Query(ctx context.Context, queryStr string) ([]QueryResult, error) {
	if !e.cfg.Enable || !e.schemaLoaded {
		return nil, fmt.Errorf("facts engine not ready")
	}

	sourceUnit, err := parse.Unit(bytes.NewReader([]byte(queryStr)))
	if err != nil {
		return nil, fmt.Errorf("parse query: %w", err)
	}
	if len(sourceUnit.Clauses) == 0 {
		return nil, fmt.Errorf("no query found")
	}
	queryAtom := sourceUnit.Clauses[0].Head

	e.mu.RLock()
	defer e.mu.RUnlock()

	results := make([]QueryResult, 0)
	err = e.store.GetFacts(queryAtom, func(atom ast.Atom) error {
		result := make(QueryResult)
		for i, arg := range queryAtom.Args {
			if i >= len(atom.Args) {
				break
			}
			if varArg, ok := arg.(ast.Variable); ok {
				result[varArg.Symbol] = e.convertConstant(atom.Args[i])
			}
		}
		results = append(results, result)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("query execution: %w", err)
	}

	if len(results) == 0 {
		results = append(results, e.queryBufferDirect(queryAtom.Predicate.Symbol, queryAtom.Args)...)
	}
	return results, nil
}

func (e *Engine) queryBufferDirect(predicate string, queryArgs []ast.BaseTerm) []QueryResult {
	results := make([]QueryResult, 0)
	indices, ok := e.index[predicate]
	if !ok {
		return results
	}

	for _, idx := range indices {
		if idx < 0 || idx >= len(e.facts) {
			continue
		}
		f := e.facts[idx]
		if len(queryArgs) > 0 && len(f.Args) < len(queryArgs) {
			continue
		}

		result := make(QueryResult)
		matches := true
		for i, qArg := range queryArgs {
			if i >= len(f.Args) {
				break
			}
			if varArg, isVar := qArg.(ast.Variable); isVar {
				result[varArg.Symbol] = f.Args[i]
			} else if constArg, isConst := qArg.(ast.Constant); isConst {
				if fmt.Sprintf("%v", f.Args[i]) != fmt.Sprintf("%v", e.convertConstant(constArg)) {
					matches = false
					break
				}
			}
		}
		if matches {
			results = append(results, result)
		}
	}
	return results
}

// Evaluate runs full program evaluation and returns facts derived for one
// predicate.
func (e *Engine) Evaluate(ctx context.Context, predicate string) ([]Fact, error) {
	if !e.cfg.Enable || !e.schemaLoaded {
		return nil, fmt.Errorf("facts engine not ready")
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := engine.EvalProgram(e.programInfo, e.store); err != nil {
		return nil, fmt.Errorf("eval program: %w", err)
	}

	arity := -1
	for sym := range e.programInfo.Decls {
		if sym.Symbol == predicate {
			arity = sym.Arity
			break
		}
	}

	predSym := ast.PredicateSym{Symbol: predicate, Arity: arity}
	var queryAtom ast.Atom
	if arity >= 0 {
		args := make([]ast.BaseTerm, arity)
		for i := 0; i < arity; i++ {
			args[i] = ast.Variable{Symbol: fmt.Sprintf("V%d", i)}
		}
		queryAtom = ast.Atom{Predicate: predSym, Args: args}
	} else {
		queryAtom = ast.Atom{Predicate: predSym}
	}

	facts := make([]Fact, 0)
	err := e.store.GetFacts(queryAtom, func(atom ast.Atom) error {
		if fact, convErr := e.atomToFact(atom); convErr == nil {
			facts = append(facts, fact)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("get facts: %w", err)
	}
	return facts, nil
}

// QueryTemporal returns buffered facts for a predicate inside a time window.
// Zero bounds are open.
func (e *Engine) QueryTemporal(predicate string, after, before time.Time) []Fact {
	e.mu.RLock()
	defer e.mu.RUnlock()

	results := make([]Fact, 0)
	for _, idx := range e.index[predicate] {
		if idx < 0 || idx >= len(e.facts) {
			continue
		}
		f := e.facts[idx]
		if (after.IsZero() || f.Timestamp.After(after)) &&
			(before.IsZero() || f.Timestamp.Before(before)) {
			results = append(results, f)
		}
	}
	return results
}

// FactsByPredicate returns buffered facts via the index.
func (e *Engine) FactsByPredicate(predicate string) []Fact {
	e.mu.RLock()
	defer e.mu.RUnlock()

	indices, ok := e.index[predicate]
	if !ok {
		return []Fact{}
	}
	results := make([]Fact, 0, len(indices))
	for _, idx := range indices {
		if idx >= 0 && idx < len(e.facts) {
			results = append(results, e.facts[idx])
		}
	}
	return results
}

// Facts returns a copy of the buffer.
func (e *Engine) Facts() []Fact {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]Fact, len(e.facts))
	copy(out, e.facts)
	return out
}

// MatchesAll reports whether every condition has at least one buffered fact
// whose leading args match.
func (e *Engine) MatchesAll(conds []Fact) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()

	for _, cond := range conds {
		indices, ok := e.index[cond.Predicate]
		if !ok {
			return false
		}

		found := false
		for _, idx := range indices {
			if idx < 0 || idx >= len(e.facts) {
				continue
			}
			f := e.facts[idx]

			if len(cond.Args) == 0 {
				found = true
				break
			}
			if len(f.Args) < len(cond.Args) {
				continue
			}

			match := true
			for i := range cond.Args {
				if fmt.Sprintf("%v", f.Args[i]) != fmt.Sprintf("%v", cond.Args[i]) {
					match = false
					break
				}
			}
			if match {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// Ready reports whether the engine can answer queries. A disabled engine is
// always ready: every call is a no-op.
func (e *Engine) Ready() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.schemaLoaded || !e.cfg.Enable
}

func (e *Engine) factToAtom(f Fact) (ast.Atom, error) {
	predSym := ast.PredicateSym{Symbol: f.Predicate, Arity: len(f.Args)}
	args := make([]ast.BaseTerm, len(f.Args))
	for i, arg := range f.Args {
		args[i] = e.toConstant(arg)
	}
	return ast.Atom{Predicate: predSym, Args: args}, nil
}

func (e *Engine) atomToFact(atom ast.Atom) (Fact, error) {
	args := make([]interface{}, len(atom.Args))
	for i, arg := range atom.Args {
		args[i] = e.convertConstant(arg)
	}
	return Fact{
		Predicate: atom.Predicate.Symbol,
		Args:      args,
		Timestamp: time.Now(),
	}, nil
}

func (e *Engine) toConstant(v interface{}) ast.Constant {
	switch val := v.(type) {
	case string:
		return ast.String(val)
	case int:
		return ast.Number(int64(val))
	case int64:
		return ast.Number(val)
	case float64:
		return ast.Float64(val)
	case bool:
		if val {
			return ast.String("true")
		}
		return ast.String("false")
	default:
		return ast.String(fmt.Sprintf("%v", v))
	}
}

func (e *Engine) convertConstant(c ast.BaseTerm) interface{} {
	if c == nil {
		return nil
	}

	switch term := c.(type) {
	case ast.Constant:
		if term.Type == ast.StringType {
			val, _ := term.StringValue()
			return val
		} else if term.Type == ast.NumberType {
			return term.NumberValue
		} else if term.Type == ast.Float64Type {
			if val, err := term.Float64Value(); err == nil {
				return val
			}
		}
		return term.String()
	case ast.Variable:
		return term.Symbol
	default:
		return fmt.Sprintf("%v", c)
	}
}

func (e *Engine) rebuildIndex() {
	e.index = make(map[string][]int)
	for i, f := range e.facts {
		e.index[f.Predicate] = append(e.index[f.Predicate], i)
	}
}
