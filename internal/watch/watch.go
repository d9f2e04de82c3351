// Package watch turns page-mutation reports into automatic cleaning runs.
// The browser layer says "the page just changed in a consent-looking way";
// this package coalesces those reports, enforces the arming window and the
// spacing between automatic runs, and hands the page to the engine when a
// run is due. Reports never queue: one that arrives while another is
// pending folds into it, and one that lands inside the cooldown is dropped.
package watch

import (
	"context"
	"log"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"optout-mcp-server/internal/config"
	"optout-mcp-server/internal/page"
	"optout-mcp-server/internal/run"
)

// Runner is the slice of the cleaning engine the watcher drives. TryClean
// refuses instead of blocking when the engine is busy or in teaching mode.
type Runner interface {
	TryClean(ctx context.Context, d page.Driver, opts run.Options) (*run.Result, bool)
}

// Trigger is a level signal with capacity one: any number of Fire calls
// between two receives collapse into a single delivery.
type Trigger struct {
	ch chan struct{}
}

func NewTrigger() *Trigger {
	return &Trigger{ch: make(chan struct{}, 1)}
}

// Fire queues a delivery and reports whether it was queued; false means one
// was already pending and this call folded into it.
func (t *Trigger) Fire() bool {
	select {
	case t.ch <- struct{}{}:
		return true
	default:
		return false
	}
}

// C is the receive side of the signal.
func (t *Trigger) C() <-chan struct{} {
	return t.ch
}

// Watcher drives automatic cleaning runs for one page.
type Watcher struct {
	cfg    config.EngineConfig
	runner Runner
	d      page.Driver

	trig  *Trigger
	limit *rate.Limiter

	mu         sync.Mutex
	armedUntil time.Time
}

func New(cfg config.EngineConfig, runner Runner, d page.Driver) *Watcher {
	return &Watcher{
		cfg:    cfg,
		runner: runner,
		d:      d,
		trig:   NewTrigger(),
		limit:  rate.NewLimiter(rate.Every(cfg.GetAutoRunInterval()), 1),
	}
}

// Arm opens (or re-opens) the watch window. Called on navigation: consent
// dialogs appear shortly after a load, and a watcher that never disarms
// would chase every late ad injection on the page.
func (w *Watcher) Arm() {
	until := time.Now().Add(w.cfg.GetWatchWindow())
	w.mu.Lock()
	w.armedUntil = until
	w.mu.Unlock()
}

// Armed reports whether the watch window is open.
func (w *Watcher) Armed() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return time.Now().Before(w.armedUntil)
}

// Notify reports a consent-flavored mutation. Returns true when the signal
// was queued for the run loop, false when it folded into a pending one or
// the window is closed.
func (w *Watcher) Notify() bool {
	if !w.Armed() {
		return false
	}
	return w.trig.Fire()
}

// Run executes triggers until the context ends. A trigger inside the
// cooldown is dropped rather than deferred; a dialog that is still showing
// keeps mutating and fires again on its own.
func (w *Watcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-w.trig.C():
		}
		if !w.limit.Allow() {
			continue
		}
		res, ok := w.runner.TryClean(ctx, w.d, run.Options{Trigger: run.TriggerAuto})
		if !ok {
			log.Printf("[watch] trigger dropped: engine busy or teaching")
			continue
		}
		log.Printf("[watch] auto run finished: method=%s denied=%d kept=%d",
			res.Method, len(res.Denied), len(res.Kept))
	}
}
