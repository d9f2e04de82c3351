package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"

	"optout-mcp-server/internal/page"
)

// maxFrames caps how many embedded frames a single frame scan will enter.
const maxFrames = 8

// Driver implements page.Driver on a live Rod page. A snapshot runs one
// page-side script that reports surfaces and controls and stashes every
// element it reported in a window-scoped array; refs index that array until
// the next scan replaces it. Frame refs index the same-origin frame pages
// captured by the latest FrameSnapshots call.
type Driver struct {
	page *rod.Page

	mu     sync.Mutex
	frames []*rod.Page
}

// NewDriver wraps a Rod page for the cleaning engine.
func NewDriver(p *rod.Page) *Driver {
	return &Driver{page: p}
}

// Page exposes the underlying Rod page for session-level operations.
func (d *Driver) Page() *rod.Page {
	return d.page
}

func (d *Driver) URL(ctx context.Context) (string, error) {
	info, err := d.page.Context(ctx).Info()
	if err != nil {
		return "", fmt.Errorf("page info: %w", err)
	}
	return info.URL, nil
}

func (d *Driver) Snapshot(ctx context.Context) (*page.Snapshot, error) {
	return d.scan(ctx, d.page, 0)
}

// FrameSnapshots scans visible same-origin iframes one level deep.
// Cross-origin frames fail the contentDocument probe and are skipped.
func (d *Driver) FrameSnapshots(ctx context.Context) ([]*page.Snapshot, error) {
	els, err := d.page.Context(ctx).Elements("iframe")
	if err != nil {
		return nil, fmt.Errorf("list frames: %w", err)
	}

	var snaps []*page.Snapshot
	var frames []*rod.Page
	for _, el := range els {
		if len(frames) >= maxFrames {
			break
		}
		if vis, err := el.Visible(); err != nil || !vis {
			continue
		}
		probe, err := el.Eval(`() => { try { return !!this.contentDocument; } catch (e) { return false; } }`)
		if err != nil || !probe.Value.Bool() {
			continue
		}
		fp, err := el.Frame()
		if err != nil {
			continue
		}
		snap, err := d.scan(ctx, fp, len(frames)+1)
		if err != nil {
			continue
		}
		frames = append(frames, fp)
		snaps = append(snaps, snap)
	}

	d.mu.Lock()
	d.frames = frames
	d.mu.Unlock()
	return snaps, nil
}

func (d *Driver) scan(ctx context.Context, p *rod.Page, frame int) (*page.Snapshot, error) {
	res, err := p.Context(ctx).Evaluate(&rod.EvalOptions{JS: scanJS, ByValue: true, AwaitPromise: true})
	if err != nil {
		return nil, fmt.Errorf("scan document: %w", err)
	}
	raw, err := res.Value.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("encode scan: %w", err)
	}
	return decodeSnapshot(raw, frame, time.Now())
}

// framePage maps a ref's frame number to the page that owns its scan array.
func (d *Driver) framePage(frame int) (*rod.Page, error) {
	if frame == 0 {
		return d.page, nil
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if frame < 1 || frame > len(d.frames) {
		return nil, fmt.Errorf("no frame %d in current scan", frame)
	}
	return d.frames[frame-1], nil
}

// element resolves a ref against the stash left by the last scan of its
// document. Refs go stale on navigation or re-scan; callers see that as an
// error and take a fresh snapshot.
func (d *Driver) element(ctx context.Context, ref page.Ref) (*rod.Element, error) {
	p, err := d.framePage(ref.Frame)
	if err != nil {
		return nil, err
	}
	el, err := p.Context(ctx).ElementByJS(rod.Eval(`(i) => (window.__optoutScan || [])[i]`, ref.Index))
	if err != nil {
		return nil, fmt.Errorf("resolve %s: stale scan: %w", ref, err)
	}
	return el, nil
}

// Click performs a trusted pointer click, falling back to a synthetic click
// for widgets that sit under transparent hit-target layers.
func (d *Driver) Click(ctx context.Context, ref page.Ref) error {
	el, err := d.element(ctx, ref)
	if err != nil {
		return err
	}
	if err := el.ScrollIntoView(); err != nil {
		log.Printf("[driver] scroll to %s: %v", ref, err)
	}
	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		if _, jerr := el.Eval(`() => { if (this.click) this.click(); }`); jerr != nil {
			return fmt.Errorf("click %s: %w", ref, err)
		}
	}
	return nil
}

func (d *Driver) ClickSelector(ctx context.Context, selector string) (bool, error) {
	els, err := d.page.Context(ctx).Elements(selector)
	if err != nil {
		return false, fmt.Errorf("query %q: %w", selector, err)
	}
	for _, el := range els {
		if vis, err := el.Visible(); err != nil || !vis {
			continue
		}
		_ = el.ScrollIntoView()
		if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
			if _, jerr := el.Eval(`() => { if (this.click) this.click(); }`); jerr != nil {
				continue
			}
		}
		return true, nil
	}
	return false, nil
}

// SetChecked operates the toggle the way a visitor would: read, and click
// only when the state differs.
func (d *Driver) SetChecked(ctx context.Context, ref page.Ref, on bool) error {
	cur, err := d.Checked(ctx, ref)
	if err != nil {
		return err
	}
	if cur == on {
		return nil
	}
	if err := d.Click(ctx, ref); err != nil {
		return fmt.Errorf("toggle %s: %w", ref, err)
	}
	return nil
}

// ForceChecked writes the state directly and fires the framework events a
// real interaction would, for widgets that swallow synthetic clicks.
func (d *Driver) ForceChecked(ctx context.Context, ref page.Ref, on bool) error {
	el, err := d.element(ctx, ref)
	if err != nil {
		return err
	}
	_, err = el.Eval(`(on) => {
		if ('checked' in this) this.checked = on;
		this.setAttribute('aria-checked', on ? 'true' : 'false');
		this.dispatchEvent(new Event('input', { bubbles: true }));
		this.dispatchEvent(new Event('change', { bubbles: true }));
	}`, on)
	if err != nil {
		return fmt.Errorf("force toggle %s: %w", ref, err)
	}
	return nil
}

func (d *Driver) Checked(ctx context.Context, ref page.Ref) (bool, error) {
	el, err := d.element(ctx, ref)
	if err != nil {
		return false, err
	}
	res, err := el.Eval(`() => 'checked' in this ? !!this.checked : this.getAttribute('aria-checked') === 'true'`)
	if err != nil {
		return false, fmt.Errorf("read toggle %s: %w", ref, err)
	}
	return res.Value.Bool(), nil
}

func (d *Driver) HideSurface(ctx context.Context, ref page.Ref) error {
	el, err := d.element(ctx, ref)
	if err != nil {
		return err
	}
	_, err = el.Eval(`() => {
		this.style.setProperty('display', 'none', 'important');
		this.setAttribute('aria-hidden', 'true');
	}`)
	if err != nil {
		return fmt.Errorf("hide %s: %w", ref, err)
	}
	return nil
}

// RestoreScroll lifts the inline scroll locks consent overlays leave on the
// document after the overlay itself is gone.
func (d *Driver) RestoreScroll(ctx context.Context) error {
	_, err := d.Eval(ctx, `() => {
		for (const el of [document.documentElement, document.body]) {
			if (!el) continue;
			for (const prop of ['overflow', 'overflow-y', 'position', 'height']) {
				el.style.removeProperty(prop);
			}
			for (const cls of Array.from(el.classList)) {
				if (/modal-open|no-?scroll|overflow-?hidden|scroll-?lock/i.test(cls)) el.classList.remove(cls);
			}
		}
		return true;
	}`)
	if err != nil {
		return fmt.Errorf("restore scroll: %w", err)
	}
	return nil
}

func (d *Driver) Eval(ctx context.Context, js string) (json.RawMessage, error) {
	res, err := d.page.Context(ctx).Evaluate(&rod.EvalOptions{JS: js, ByValue: true, AwaitPromise: true})
	if err != nil {
		return nil, fmt.Errorf("evaluate: %w", err)
	}
	raw, err := res.Value.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("encode eval result: %w", err)
	}
	return json.RawMessage(raw), nil
}

// WaitSettled polls the mutation watch installed on the page and returns once
// the document has been quiet for the given window. Polling is bounded by max;
// running out of budget is not an error, the page is just still busy.
func (d *Driver) WaitSettled(ctx context.Context, quiet, max time.Duration) error {
	deadline := time.Now().Add(max)
	poll := quiet / 4
	if poll < 25*time.Millisecond {
		poll = 25 * time.Millisecond
	}
	if poll > 150*time.Millisecond {
		poll = 150 * time.Millisecond
	}
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		raw, err := d.Eval(ctx, `() => window.__optoutWatch ? window.__optoutWatch.last : 0`)
		if err != nil {
			return fmt.Errorf("poll mutations: %w", err)
		}
		var last int64
		if err := json.Unmarshal(raw, &last); err != nil {
			return fmt.Errorf("poll mutations: %w", err)
		}
		if last == 0 || time.Since(time.UnixMilli(last)) >= quiet {
			return nil
		}
		if time.Now().After(deadline) {
			return nil
		}
		t := time.NewTimer(poll)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
	}
}
