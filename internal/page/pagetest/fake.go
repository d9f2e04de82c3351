// Package pagetest provides a scripted page.Driver for engine tests, in the
// spirit of httptest: state in, recorded calls out, no browser involved.
package pagetest

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"optout-mcp-server/internal/page"
)

// FakeDriver implements page.Driver against scripted state. Snapshots are
// served in order and the last repeats, so a scenario can model the page
// changing after each action. All fields must be set before use; methods are
// safe for the engine's single-goroutine access plus test inspection.
type FakeDriver struct {
	mu sync.Mutex

	PageURL string
	// Snaps are successive Snapshot results; the final entry repeats.
	Snaps   []*page.Snapshot
	snapIdx int
	// Frames are returned by every FrameSnapshots call.
	Frames []*page.Snapshot

	// Toggles is mutable toggle state by ref. SetChecked writes it unless
	// the ref is listed in StickyToggles, which models a CMP re-render
	// reverting the visible state.
	Toggles       map[page.Ref]bool
	StickyToggles map[page.Ref]bool

	// ClickErrs fails specific clicks; EvalResults maps a JS substring to
	// a canned JSON result. Selectors marks which CSS selectors exist for
	// ClickSelector.
	ClickErrs   map[page.Ref]error
	EvalResults map[string]string
	Selectors   map[string]bool

	// OnClick lets a scenario advance page state when a control is hit.
	OnClick func(ref page.Ref)

	Clicked        []page.Ref
	SelectorClicks []string
	SetCheckeds    []SetCheckedCall
	ForceCheckeds  []SetCheckedCall
	Hidden         []page.Ref
	Evaled         []string
	SettleCalls    int
	ScrollResets   int
}

type SetCheckedCall struct {
	Ref page.Ref
	On  bool
}

var _ page.Driver = (*FakeDriver)(nil)

func (f *FakeDriver) URL(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return f.PageURL, nil
}

func (f *FakeDriver) Snapshot(ctx context.Context) (*page.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.Snaps) == 0 {
		return &page.Snapshot{TakenAt: time.Now()}, nil
	}
	snap := f.Snaps[f.snapIdx]
	if f.snapIdx < len(f.Snaps)-1 {
		f.snapIdx++
	}
	return snap, nil
}

func (f *FakeDriver) FrameSnapshots(ctx context.Context) ([]*page.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return f.Frames, nil
}

func (f *FakeDriver) Click(ctx context.Context, ref page.Ref) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	f.Clicked = append(f.Clicked, ref)
	err := f.ClickErrs[ref]
	onClick := f.OnClick
	f.mu.Unlock()
	if err != nil {
		return err
	}
	if onClick != nil {
		onClick(ref)
	}
	return nil
}

func (f *FakeDriver) ClickSelector(ctx context.Context, selector string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.SelectorClicks = append(f.SelectorClicks, selector)
	return f.Selectors[selector], nil
}

func (f *FakeDriver) SetChecked(ctx context.Context, ref page.Ref, on bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.SetCheckeds = append(f.SetCheckeds, SetCheckedCall{Ref: ref, On: on})
	if f.Toggles == nil {
		f.Toggles = map[page.Ref]bool{}
	}
	if !f.StickyToggles[ref] {
		f.Toggles[ref] = on
	}
	return nil
}

func (f *FakeDriver) ForceChecked(ctx context.Context, ref page.Ref, on bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ForceCheckeds = append(f.ForceCheckeds, SetCheckedCall{Ref: ref, On: on})
	if f.Toggles == nil {
		f.Toggles = map[page.Ref]bool{}
	}
	f.Toggles[ref] = on
	return nil
}

func (f *FakeDriver) Checked(ctx context.Context, ref page.Ref) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Toggles[ref], nil
}

func (f *FakeDriver) HideSurface(ctx context.Context, ref page.Ref) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Hidden = append(f.Hidden, ref)
	return nil
}

func (f *FakeDriver) RestoreScroll(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ScrollResets++
	return nil
}

func (f *FakeDriver) Eval(ctx context.Context, js string) (json.RawMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Evaled = append(f.Evaled, js)
	for needle, result := range f.EvalResults {
		if needle != "" && strings.Contains(js, needle) {
			return json.RawMessage(result), nil
		}
	}
	return json.RawMessage(`null`), nil
}

func (f *FakeDriver) WaitSettled(ctx context.Context, quiet, max time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.SettleCalls++
	return nil
}

// ClickedLabels resolves recorded clicks back to labels via a snapshot, for
// readable assertions.
func (f *FakeDriver) ClickedLabels(snap *page.Snapshot) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, ref := range f.Clicked {
		label := fmt.Sprintf("ref:%s", ref)
		for _, c := range snap.Candidates {
			if c.Ref == ref {
				label = c.Label
				break
			}
		}
		out = append(out, label)
	}
	return out
}
