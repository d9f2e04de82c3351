// Package run drives a cleaning pass over one page: a fixed escalation
// ladder that starts with learned replays and semantic resolution and ends,
// when a dialog will not be operated, with hiding it. The whole pass runs
// under one wall-clock budget; an exhausted budget stops work mid-ladder
// and the report keeps whatever was achieved.
package run

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"optout-mcp-server/internal/cmp"
	"optout-mcp-server/internal/config"
	"optout-mcp-server/internal/facts"
	"optout-mcp-server/internal/intent"
	"optout-mcp-server/internal/page"
	"optout-mcp-server/internal/patterns"
	"optout-mcp-server/internal/resolve"
	"optout-mcp-server/internal/scan"
)

// Trigger values for a run.
const (
	TriggerManual = "manual"
	TriggerAuto   = "auto"
)

// Run-level action methods, beyond what the resolver produces.
const (
	methodReplay = "replay"
	methodVendor = "vendor-api"
	methodHide   = "hide"
)

// learnedReplayLimit caps how many stored patterns one run tries before
// falling through to discovery.
const learnedReplayLimit = 3

// maxSectionOpeners caps panel expansion; past a handful the matches are
// site navigation, not consent sections.
const maxSectionOpeners = 6

// Options tune a single run.
type Options struct {
	// Trigger tags the run's origin in reports and facts. Defaults to
	// TriggerManual.
	Trigger string
	// Budget overrides the configured wall-clock limit when positive.
	Budget time.Duration
}

// Engine runs cleaning passes over pages. At most one pass executes at a
// time: manual runs queue on the gate, automatic runs give up instead so a
// background trigger can never stack behind operator work.
type Engine struct {
	cfg   config.EngineConfig
	store *patterns.Store
	facts *facts.Engine

	gate     sync.Mutex
	teaching atomic.Bool
}

// New builds an engine. Both store and factsEngine may be nil; learning and
// fact recording are then skipped.
func New(cfg config.EngineConfig, store *patterns.Store, factsEngine *facts.Engine) *Engine {
	return &Engine{cfg: cfg, store: store, facts: factsEngine}
}

// SetTeaching pauses automatic runs while an operator demonstrates
// controls; the page must stay as the operator left it.
func (e *Engine) SetTeaching(on bool) {
	e.teaching.Store(on)
}

// Teaching reports whether teaching mode is active.
func (e *Engine) Teaching() bool {
	return e.teaching.Load()
}

// Clean performs a full cleaning pass and always returns a report. Page
// trouble lands in the report's error list rather than failing the run.
func (e *Engine) Clean(ctx context.Context, d page.Driver, opts Options) *Result {
	e.gate.Lock()
	defer e.gate.Unlock()
	return e.clean(ctx, d, opts)
}

// TryClean is Clean for automatic triggers: it refuses instead of waiting
// when a run is already active or teaching mode is on.
func (e *Engine) TryClean(ctx context.Context, d page.Driver, opts Options) (*Result, bool) {
	if e.teaching.Load() {
		return nil, false
	}
	if !e.gate.TryLock() {
		return nil, false
	}
	defer e.gate.Unlock()
	if opts.Trigger == "" {
		opts.Trigger = TriggerAuto
	}
	return e.clean(ctx, d, opts), true
}

// runCtx is the working state of one pass.
type runCtx struct {
	ctx  context.Context
	d    page.Driver
	cls  *intent.Classifier
	res  *Result
	host string

	deadline time.Time
	// anchor moves to the click time after a manage click; only surfaces
	// that appeared since then are then of interest.
	anchor time.Time

	acted       map[string]bool
	processed   *scan.ProcessedSet
	seenToggles map[string]bool

	sig   cmp.Signature
	sigOK bool
}

// expired reports whether the wall-clock budget is gone. Phases check it
// before starting and inside their loops.
func (rc *runCtx) expired() bool {
	return !time.Now().Before(rc.deadline)
}

// countToggles counts toggles not seen before in this run.
func (rc *runCtx) countToggles(q scan.Qualified) int {
	n := 0
	for _, c := range q.Controls {
		if c.Candidate.Kind != page.KindToggle {
			continue
		}
		key := c.Candidate.DedupKey()
		if rc.seenToggles[key] {
			continue
		}
		rc.seenToggles[key] = true
		n++
	}
	return n
}

func (e *Engine) clean(ctx context.Context, d page.Driver, opts Options) *Result {
	budget := e.cfg.GetDeadline()
	if opts.Budget > 0 {
		budget = opts.Budget
	}
	trigger := opts.Trigger
	if trigger == "" {
		trigger = TriggerManual
	}

	res := newResult(trigger, e.cfg.GetActionLogLimit(), e.cfg.GetMaxErrors())
	tag := shortID(res.RunID)

	ctx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()

	if url, err := d.URL(ctx); err != nil {
		res.addError("url", err)
	} else {
		res.URL = url
		res.Site = patterns.CanonicalHost(url)
	}

	rc := &runCtx{
		ctx:         ctx,
		d:           d,
		cls:         intent.NewClassifier(),
		res:         res,
		host:        res.Site,
		deadline:    res.StartedAt.Add(budget),
		acted:       map[string]bool{},
		processed:   scan.NewProcessedSet(),
		seenToggles: map[string]bool{},
	}

	log.Printf("[run:%s] start site=%q trigger=%s budget=%s", tag, rc.host, trigger, budget)
	e.emit("run_started", rc.host, trigger, res.StartedAt.UnixMilli())
	defer func() {
		res.finish()
		e.emit("run_finished", rc.host, res.Method.String(),
			int64(len(res.Denied)), int64(len(res.Kept)), time.Now().UnixMilli())
		log.Printf("[run:%s] done method=%s denied=%d kept=%d errors=%d elapsed=%dms",
			tag, res.Method, len(res.Denied), len(res.Kept), len(res.Errors), res.ElapsedMS)
	}()

	if err := e.seedClassifier(rc.cls, rc.host); err != nil {
		res.addError("patterns", err)
	}

	snap, err := d.Snapshot(ctx)
	if err != nil {
		res.addError("snapshot", err)
		return res
	}
	if phrase, _, found := scan.PaymentWall(snap); found {
		res.PaymentWall = true
		res.SurfaceFound = true
		res.Method = MethodAborted
		e.emit("paywall_seen", rc.host, phrase, time.Now().UnixMilli())
		log.Printf("[run:%s] payment wall (%q), aborting", tag, phrase)
		return res
	}

	if sig, ok, err := cmp.Detect(ctx, d); err != nil {
		res.addError("cmp", err)
	} else if ok {
		rc.sig, rc.sigOK = sig, true
		res.Platform = sig.Name
		e.emit("cmp_detected", rc.host, sig.Slug, time.Now().UnixMilli())
		log.Printf("[run:%s] consent platform: %s", tag, sig.Name)
	}

	phases := []struct {
		name string
		fn   func(*runCtx) bool
	}{
		{"learned", e.phaseLearned},
		{"structural", e.phaseStructural},
		{"sweep", e.phaseSweep},
		{"vendor", e.phaseVendor},
		{"sections", e.phaseSections},
		{"frames", e.phaseFrames},
		{"hide", e.phaseHide},
	}
	for _, p := range phases {
		if rc.expired() {
			log.Printf("[run:%s] budget exhausted before %s", tag, p.name)
			break
		}
		done := p.fn(rc)
		outcome := "open"
		if done {
			outcome = "closed"
		}
		e.emit("phase_result", rc.host, p.name, outcome, time.Now().UnixMilli())
		if done {
			log.Printf("[run:%s] %s phase closed the surface", tag, p.name)
			break
		}
	}
	return res
}

// seedClassifier installs stored patterns above the built-in rules: site
// patterns first, then the global taught and promoted ones.
func (e *Engine) seedClassifier(cls *intent.Classifier, host string) error {
	if e.store == nil {
		return nil
	}
	if host != "" {
		ps, err := e.store.SitePatterns(host)
		if err != nil {
			return err
		}
		cls.SetSiteRules(patterns.Rules(ps))
	}
	ps, err := e.store.GlobalPatterns()
	if err != nil {
		return err
	}
	cls.SetGlobalRules(patterns.Rules(ps))
	return nil
}

// settle waits for the page to go mutation-quiet after an action, within
// what is left of the budget.
func (e *Engine) settle(rc *runCtx) {
	quiet := e.cfg.GetSettleDelay()
	max := 4 * quiet
	if remain := time.Until(rc.deadline); remain < max {
		max = remain
	}
	if max <= 0 {
		return
	}
	_ = rc.d.WaitSettled(rc.ctx, quiet, max)
}

// dialogPresent re-scans and reports whether any qualifying surface is
// still showing. No recency or processed filtering here: an already-handled
// surface that remains visible is still present.
func (e *Engine) dialogPresent(rc *runCtx) bool {
	snap, err := rc.d.Snapshot(rc.ctx)
	if err != nil {
		rc.res.addError("verify", err)
		return true
	}
	return len(scan.Qualify(snap, rc.cls, scan.Options{})) > 0
}

// recordOutcome feeds one action result into the pattern store.
func (e *Engine) recordOutcome(rc *runCtx, label string, it intent.Intent, lang, selector string, success bool) {
	if e.store == nil || rc.host == "" {
		return
	}
	if _, err := e.store.RecordOutcome(rc.host, label, it, lang, selector, success, time.Now()); err != nil {
		rc.res.addError("learn", err)
	}
}

// learnFromOutcome feeds click results back into the pattern store. Toggle
// work is not learned: toggle labels are category names, useless as click
// patterns on another site.
func (e *Engine) learnFromOutcome(rc *runCtx, out resolve.Outcome, success bool) {
	for _, a := range []*resolve.Action{out.Clicked, out.Confirmed} {
		if a == nil || a.Intent == intent.Unknown {
			continue
		}
		e.recordOutcome(rc, a.Label, a.Intent, a.Lang, a.Selector, success)
	}
}

// phaseLearned replays stored deny patterns for the site, most successful
// first: the stored selector when the markup still has it, otherwise any
// visible control with the same normalized label. Success means the surface
// is gone afterwards; every attempt feeds the pattern statistics.
func (e *Engine) phaseLearned(rc *runCtx) bool {
	if e.store == nil || rc.host == "" {
		return false
	}
	pats, err := e.store.SitePatterns(rc.host)
	if err != nil {
		rc.res.addError("patterns", err)
		return false
	}
	var denies []patterns.Pattern
	for _, p := range pats {
		if p.Intent == intent.Deny {
			denies = append(denies, p)
		}
	}
	if len(denies) == 0 {
		return false
	}
	if !e.dialogPresent(rc) {
		return false
	}
	rc.res.SurfaceFound = true

	tried := 0
	for _, p := range denies {
		if tried >= learnedReplayLimit || rc.expired() {
			break
		}
		tried++
		clicked, selector := e.replay(rc, p)
		if !clicked {
			continue
		}
		e.emit("pattern_hit", rc.host, p.Label, p.Source, time.Now().UnixMilli())
		e.settle(rc)
		closed := !e.dialogPresent(rc)
		e.recordOutcome(rc, p.Label, p.Intent, p.Lang, selector, closed)
		a := resolve.Action{
			Label:    p.Label,
			Intent:   p.Intent,
			Lang:     p.Lang,
			Method:   methodReplay,
			Selector: selector,
			At:       time.Now(),
		}
		if closed {
			rc.res.noteDenied(a)
			rc.res.SurfaceClosed = true
			rc.res.Method = MethodLearned
			return true
		}
		rc.res.addAction(a)
	}
	return false
}

// replay tries one stored pattern and reports whether anything got clicked,
// along with the selector that worked.
func (e *Engine) replay(rc *runCtx, p patterns.Pattern) (bool, string) {
	if p.Selector != "" {
		ok, err := rc.d.ClickSelector(rc.ctx, p.Selector)
		if err != nil {
			rc.res.addError("replay", err)
		} else if ok {
			return true, p.Selector
		}
	}
	snap, err := rc.d.Snapshot(rc.ctx)
	if err != nil {
		rc.res.addError("replay", err)
		return false, ""
	}
	for _, c := range snap.Candidates {
		if !c.Visible || c.Kind == page.KindToggle {
			continue
		}
		if intent.Normalize(c.Label) != p.Label {
			continue
		}
		if err := rc.d.Click(rc.ctx, c.Ref); err != nil {
			rc.res.addError("replay", err)
			return false, ""
		}
		rc.acted[c.DedupKey()] = true
		return true, c.Selector
	}
	return false, ""
}

// phaseStructural is the full semantic path: discover qualifying surfaces,
// resolve each, and follow manage openers into the panels they reveal.
func (e *Engine) phaseStructural(rc *runCtx) bool {
	return e.sweepSurfaces(rc, 0)
}

func (e *Engine) sweepSurfaces(rc *runCtx, depth int) bool {
	if rc.expired() {
		return false
	}
	snap, err := rc.d.Snapshot(rc.ctx)
	if err != nil {
		rc.res.addError("discover", err)
		return false
	}
	// After a manage click the dialog often morphs in place, so recursion
	// scans without the processed filter; the acted set still keeps every
	// control once-only.
	opts := scan.Options{RecencyWindow: e.cfg.GetRecencyWindow(), Anchor: rc.anchor}
	if depth == 0 {
		opts.Processed = rc.processed
	}
	for _, q := range scan.Qualify(snap, rc.cls, opts) {
		if rc.expired() {
			return false
		}
		rc.res.SurfaceFound = true
		rc.processed.Mark(q.Surface.Identity())
		rc.res.TogglesSeen += rc.countToggles(q)
		e.emit("surface_seen", rc.host, q.Surface.Identity(), q.Surface.Tag, time.Now().UnixMilli())

		out := resolve.Resolve(rc.ctx, rc.d, q, rc.acted)
		rc.res.merge(out)
		e.emitActions(rc, out)

		if out.Clicked != nil && out.Clicked.Intent == intent.Manage {
			if depth >= e.cfg.GetMaxManageDepth() {
				continue
			}
			rc.anchor = time.Now()
			e.settle(rc)
			if e.sweepSurfaces(rc, depth+1) {
				return true
			}
			continue
		}

		if !out.Acted() {
			continue
		}
		e.settle(rc)
		closed := !e.dialogPresent(rc)
		e.learnFromOutcome(rc, out, closed)
		if closed {
			rc.res.SurfaceClosed = true
			rc.res.Method = methodFor(out)
			return true
		}
	}
	return false
}

// methodFor maps a closing outcome to the reported method: toggle work is a
// toggle sweep, any closing click is a direct click.
func methodFor(out resolve.Outcome) Method {
	if len(out.Denied) > 0 || out.Confirmed != nil {
		return MethodToggleSweep
	}
	return MethodDirectClick
}

// phaseSweep goes wide: every visible click target on the page whose label
// classifies as denial, member of a qualified surface or not. Some banners
// defeat surface detection yet still carry an honest reject button.
func (e *Engine) phaseSweep(rc *runCtx) bool {
	snap, err := rc.d.Snapshot(rc.ctx)
	if err != nil {
		rc.res.addError("sweep", err)
		return false
	}
	for _, c := range snap.Candidates {
		if rc.expired() {
			return false
		}
		if !c.Visible || c.Kind == page.KindToggle {
			continue
		}
		m := rc.cls.Classify(c.Label)
		if m.Intent != intent.Deny {
			continue
		}
		key := c.DedupKey()
		if rc.acted[key] {
			continue
		}
		if err := rc.d.Click(rc.ctx, c.Ref); err != nil {
			rc.res.addError("sweep", err)
			continue
		}
		rc.acted[key] = true
		a := resolve.Action{
			Label:    c.Label,
			Category: c.Category,
			Kind:     c.Kind,
			Intent:   m.Intent,
			Lang:     m.Lang,
			Method:   resolve.MethodClick,
			Ref:      c.Ref,
			Selector: c.Selector,
			At:       time.Now(),
		}
		rc.res.noteDenied(a)
		e.emit("action_taken", rc.host, a.Label, a.Method, a.Intent.String(), time.Now().UnixMilli())
		e.settle(rc)
		closed := !e.dialogPresent(rc)
		e.recordOutcome(rc, c.Label, m.Intent, m.Lang, c.Selector, closed)
		if closed {
			rc.res.SurfaceClosed = rc.res.SurfaceFound
			rc.res.Method = MethodDirectClick
			return true
		}
	}
	return false
}

// phaseVendor asks the detected consent platform to refuse for us: the
// vendor's own API first, its reject-button selectors second.
func (e *Engine) phaseVendor(rc *runCtx) bool {
	if !rc.sigOK {
		return false
	}
	sig := rc.sig
	invoked, err := sig.InvokeReject(rc.ctx, rc.d)
	if err != nil {
		rc.res.addError("vendor", err)
	}
	if invoked {
		rc.res.noteDenied(resolve.Action{
			Label:  sig.Name,
			Intent: intent.Deny,
			Method: methodVendor,
			At:     time.Now(),
		})
		e.emit("action_taken", rc.host, sig.Slug, methodVendor, "deny", time.Now().UnixMilli())
		e.settle(rc)
		if !e.dialogPresent(rc) {
			rc.res.SurfaceClosed = rc.res.SurfaceFound
			rc.res.Method = MethodVendorAPI
			return true
		}
	}
	for _, sel := range sig.DenySelectors {
		if rc.expired() {
			return false
		}
		ok, err := rc.d.ClickSelector(rc.ctx, sel)
		if err != nil {
			rc.res.addError("vendor", err)
			continue
		}
		if !ok {
			continue
		}
		rc.res.noteDenied(resolve.Action{
			Label:    sig.Name,
			Intent:   intent.Deny,
			Method:   resolve.MethodClick,
			Selector: sel,
			At:       time.Now(),
		})
		e.emit("action_taken", rc.host, sig.Slug, resolve.MethodClick, "deny", time.Now().UnixMilli())
		e.settle(rc)
		if !e.dialogPresent(rc) {
			rc.res.SurfaceClosed = rc.res.SurfaceFound
			rc.res.Method = MethodVendorAPI
			return true
		}
	}
	return false
}

// phaseSections expands vendor and purpose sub-panels that hide toggles
// behind tabs or accordions, then resolves whatever each expansion reveals.
func (e *Engine) phaseSections(rc *runCtx) bool {
	snap, err := rc.d.Snapshot(rc.ctx)
	if err != nil {
		rc.res.addError("sections", err)
		return false
	}
	var openers []page.Candidate
	for _, c := range snap.Candidates {
		if !c.Visible || c.Kind == page.KindToggle {
			continue
		}
		if intent.IsSectionLabel(c.Label) {
			openers = append(openers, c)
		}
	}
	if len(openers) == 0 {
		return false
	}
	if len(openers) > maxSectionOpeners {
		openers = openers[:maxSectionOpeners]
	}

	var outs []resolve.Outcome
	for _, opener := range openers {
		if rc.expired() {
			break
		}
		key := opener.DedupKey()
		if rc.acted[key] {
			continue
		}
		if err := rc.d.Click(rc.ctx, opener.Ref); err != nil {
			rc.res.addError("sections", err)
			continue
		}
		rc.acted[key] = true
		rc.res.SectionsVisited++
		rc.res.addAction(resolve.Action{
			Label:    opener.Label,
			Kind:     opener.Kind,
			Method:   resolve.MethodClick,
			Reason:   "section",
			Ref:      opener.Ref,
			Selector: opener.Selector,
			At:       time.Now(),
		})
		e.settle(rc)

		sub, err := rc.d.Snapshot(rc.ctx)
		if err != nil {
			rc.res.addError("sections", err)
			continue
		}
		for _, q := range scan.Qualify(sub, rc.cls, scan.Options{}) {
			rc.res.SurfaceFound = true
			rc.res.TogglesSeen += rc.countToggles(q)
			out := resolve.Resolve(rc.ctx, rc.d, q, rc.acted)
			rc.res.merge(out)
			e.emitActions(rc, out)
			if out.Acted() {
				outs = append(outs, out)
			}
		}
	}
	if len(outs) == 0 {
		return false
	}
	e.settle(rc)
	closed := !e.dialogPresent(rc)
	for _, out := range outs {
		e.learnFromOutcome(rc, out, closed)
	}
	if !closed {
		return false
	}
	rc.res.SurfaceClosed = rc.res.SurfaceFound
	rc.res.Method = MethodSections
	return true
}

// phaseFrames repeats discovery inside visible same-origin frames; consent
// iframes from the big platforms land here. Cross-origin frames never show
// up, the driver cannot scan them.
func (e *Engine) phaseFrames(rc *runCtx) bool {
	snaps, err := rc.d.FrameSnapshots(rc.ctx)
	if err != nil {
		rc.res.addError("frames", err)
		return false
	}
	if len(snaps) == 0 {
		return false
	}
	var outs []resolve.Outcome
	for _, snap := range snaps {
		if rc.expired() {
			break
		}
		rc.res.FramesScanned++
		qs := scan.Qualify(snap, rc.cls, scan.Options{
			RecencyWindow: e.cfg.GetRecencyWindow(),
			Anchor:        rc.anchor,
			Processed:     rc.processed,
		})
		for _, q := range qs {
			if rc.expired() {
				break
			}
			rc.res.SurfaceFound = true
			rc.processed.Mark(q.Surface.Identity())
			rc.res.TogglesSeen += rc.countToggles(q)
			out := resolve.Resolve(rc.ctx, rc.d, q, rc.acted)
			rc.res.merge(out)
			e.emitActions(rc, out)
			if out.Acted() {
				outs = append(outs, out)
			}
		}
	}
	if len(outs) == 0 {
		return false
	}
	e.settle(rc)
	closed := !e.framesPresent(rc) && !e.dialogPresent(rc)
	for _, out := range outs {
		e.learnFromOutcome(rc, out, closed)
	}
	if !closed {
		return false
	}
	rc.res.SurfaceClosed = true
	rc.res.Method = MethodFrameScan
	return true
}

// framesPresent re-scans frames for any remaining qualifying surface.
func (e *Engine) framesPresent(rc *runCtx) bool {
	snaps, err := rc.d.FrameSnapshots(rc.ctx)
	if err != nil {
		rc.res.addError("frames", err)
		return true
	}
	for _, snap := range snaps {
		if len(scan.Qualify(snap, rc.cls, scan.Options{})) > 0 {
			return true
		}
	}
	return false
}

// phaseHide is the admission of defeat: hide what is still showing rather
// than operate it. Lowest confidence of any method, but a readable page
// beats a modal wall.
func (e *Engine) phaseHide(rc *runCtx) bool {
	snap, err := rc.d.Snapshot(rc.ctx)
	if err != nil {
		rc.res.addError("hide", err)
		return false
	}
	hidden := 0
	for _, q := range scan.Qualify(snap, rc.cls, scan.Options{}) {
		if rc.expired() {
			break
		}
		if err := rc.d.HideSurface(rc.ctx, q.Surface.Ref); err != nil {
			rc.res.addError("hide", err)
			continue
		}
		hidden++
		rc.res.addAction(resolve.Action{
			Label:  surfaceName(q.Surface),
			Method: methodHide,
			Ref:    q.Surface.Ref,
			At:     time.Now(),
		})
	}

	selectors := cmp.AllHideSelectors()
	if rc.sigOK && len(rc.sig.HideSelectors) > 0 {
		selectors = rc.sig.HideSelectors
	}
	if raw, err := rc.d.Eval(rc.ctx, cmp.HideJS(selectors)); err != nil {
		rc.res.addError("hide", err)
	} else {
		var n int
		if json.Unmarshal(raw, &n) == nil {
			hidden += n
		}
	}
	if hidden == 0 {
		return false
	}
	if err := rc.d.RestoreScroll(rc.ctx); err != nil {
		rc.res.addError("hide", err)
	}
	rc.res.SurfaceFound = true
	rc.res.SurfaceClosed = true
	rc.res.Method = MethodForcedHide
	return true
}

func surfaceName(s page.Surface) string {
	if s.Identifier != "" {
		return s.Identifier
	}
	return s.Tag
}

// emit records a fact when fact recording is wired. A background context is
// used on purpose: facts outlive the run budget.
func (e *Engine) emit(predicate string, args ...interface{}) {
	if e.facts == nil {
		return
	}
	e.facts.Emit(context.Background(), predicate, args...)
}

// emitActions records what one resolver pass did.
func (e *Engine) emitActions(rc *runCtx, out resolve.Outcome) {
	if e.facts == nil {
		return
	}
	now := time.Now().UnixMilli()
	if out.Clicked != nil {
		e.emit("action_taken", rc.host, out.Clicked.Label, out.Clicked.Method, out.Clicked.Intent.String(), now)
	}
	for _, a := range out.Denied {
		e.emit("action_taken", rc.host, a.Label, a.Method, a.Intent.String(), now)
	}
	if out.Confirmed != nil {
		e.emit("action_taken", rc.host, out.Confirmed.Label, out.Confirmed.Method, out.Confirmed.Intent.String(), now)
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
