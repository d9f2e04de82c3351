package cmp

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"optout-mcp-server/internal/page"
)

// detectScript probes every signature in one evaluation and returns the
// first matching slug, or an empty string. One round trip instead of one
// per platform.
func detectScript() string {
	var b strings.Builder
	b.WriteString("() => { try {\n")
	for _, s := range signatures {
		fmt.Fprintf(&b, "if (%s) { return %s; }\n", s.Detect, strconv.Quote(s.Slug))
	}
	b.WriteString("} catch (e) {}\nreturn ''; }")
	return b.String()
}

// Detect identifies which consent platform, if any, is active on the page.
func Detect(ctx context.Context, d page.Driver) (Signature, bool, error) {
	raw, err := d.Eval(ctx, detectScript())
	if err != nil {
		return Signature{}, false, fmt.Errorf("cmp detect: %w", err)
	}
	var slug string
	if err := json.Unmarshal(raw, &slug); err != nil {
		return Signature{}, false, fmt.Errorf("cmp detect: %w", err)
	}
	if slug == "" {
		return Signature{}, false, nil
	}
	sig, ok := BySlug(slug)
	return sig, ok, nil
}

// InvokeReject calls the platform's deny-all API. Returns false when the
// signature has no API or the API was not present on the page; a JS throw
// inside the vendor code is swallowed and reported as not invoked.
func (s Signature) InvokeReject(ctx context.Context, d page.Driver) (bool, error) {
	if s.Reject == "" {
		return false, nil
	}
	script := "() => { try {\n" + s.Reject + "\n} catch (e) { return false; } }"
	raw, err := d.Eval(ctx, script)
	if err != nil {
		return false, fmt.Errorf("cmp reject %s: %w", s.Slug, err)
	}
	var ok bool
	if err := json.Unmarshal(raw, &ok); err != nil {
		return false, nil
	}
	return ok, nil
}

// HideJS builds a script that display:nones every element matching the
// given selectors and restores body scroll. Returns the number of elements
// hidden. Elements that were already invisible are not counted; hiding a
// container that was never showing is not a result.
func HideJS(selectors []string) string {
	var b strings.Builder
	b.WriteString("() => { var n = 0;\n")
	for _, sel := range selectors {
		fmt.Fprintf(&b, "try { document.querySelectorAll(%s).forEach(function (el) { if (el.getClientRects().length === 0) { return; } el.style.setProperty('display', 'none', 'important'); n++; }); } catch (e) {}\n", strconv.Quote(sel))
	}
	b.WriteString("try { document.documentElement.style.removeProperty('overflow'); document.body.style.removeProperty('overflow'); document.body.style.removeProperty('position'); } catch (e) {}\n")
	b.WriteString("return n; }")
	return b.String()
}
