package browser

import (
	"encoding/json"
	"fmt"
	"time"

	"optout-mcp-server/internal/page"
)

// scanJS is the single-evaluation page scan. It collects plausible consent
// surfaces (pinned, dialog-role or hinted containers) and every operable
// control, assigns controls to the outermost surface containing them, and
// stashes all reported elements in window.__optoutScan so refs resolve to
// live nodes afterwards. First-seen times persist per document in
// window.__optoutSeen, keyed the same way surface identity is computed
// Go-side, so re-scans do not reset the recency clock.
const scanJS = `() => {
	const seen = (window.__optoutSeen = window.__optoutSeen || {});
	const scan = (window.__optoutScan = []);
	const put = (el) => scan.push(el) - 1;
	const vw = Math.max(window.innerWidth, 1);
	const vh = Math.max(window.innerHeight, 1);
	const hint = /cookie|consent|privacy|gdpr|cmp|notice|banner|paywall|didomi|onetrust|optanon|usercentrics|sp_message|truste|qc-cmp|cc-window|iubenda|borlabs|osano|complianz|klaro|cookielaw/i;

	const visible = (el) => {
		if (!el.getClientRects || el.getClientRects().length === 0) return false;
		const cs = getComputedStyle(el);
		if (cs.display === 'none' || cs.visibility === 'hidden' || parseFloat(cs.opacity) === 0) return false;
		const r = el.getBoundingClientRect();
		return r.width > 1 && r.height > 1;
	};
	const textOf = (el, cap) => ((el.innerText || el.textContent || '').replace(/\s+/g, ' ').trim().slice(0, cap));
	const classOf = (el) => (el.getAttribute && el.getAttribute('class')) || '';
	const esc = (s) => (window.CSS && CSS.escape ? CSS.escape(s) : s);

	const roots = [];
	const containers = document.querySelectorAll(
		'dialog,[role="dialog"],[role="alertdialog"],[aria-modal="true"],div,section,aside,form,footer'
	);
	for (const el of containers) {
		if (roots.length >= 12) break;
		if (!visible(el)) continue;
		const cs = getComputedStyle(el);
		const z = parseInt(cs.zIndex, 10) || 0;
		const pinned = cs.position === 'fixed' || cs.position === 'sticky';
		const dialog = el.tagName === 'DIALOG' || el.getAttribute('role') === 'dialog' ||
			el.getAttribute('role') === 'alertdialog' || el.getAttribute('aria-modal') === 'true';
		const hinted = hint.test(el.id + ' ' + classOf(el));
		if (!pinned && !dialog && !(hinted && z > 0)) continue;
		const r = el.getBoundingClientRect();
		if (r.width * r.height < 1200) continue;
		if (roots.some((root) => root.contains(el))) continue;
		roots.push(el);
	}

	const surfaces = roots.map((el) => {
		const cs = getComputedStyle(el);
		const r = el.getBoundingClientRect();
		const cls = classOf(el).trim().split(/\s+/).filter(Boolean);
		const ident = el.id ? '#' + el.id : (cls.length ? '.' + cls.slice(0, 2).join('.') : '');
		const tag = el.tagName.toLowerCase();
		const key = tag + '|' + ident + '|' + Math.floor(r.width / 48) + 'x' + Math.floor(r.height / 48);
		if (!seen[key]) seen[key] = Date.now();
		return {
			index: put(el),
			tag: tag,
			identifier: ident,
			rect: { x: r.x, y: r.y, w: r.width, h: r.height },
			z: parseInt(cs.zIndex, 10) || 0,
			fixed: cs.position === 'fixed' || cs.position === 'sticky',
			overlay: (r.width * r.height) / (vw * vh) >= 0.25,
			text: textOf(el, 2000),
			first_seen_ms: seen[key],
		};
	});

	const surfaceOf = (el) => {
		for (let i = 0; i < roots.length; i++) {
			if (roots[i].contains(el)) return i;
		}
		return -1;
	};
	const labelOf = (el) => {
		const aria = (el.getAttribute('aria-label') || '').replace(/\s+/g, ' ').trim();
		if (aria) return aria.slice(0, 200);
		if (el.tagName === 'INPUT' && el.type !== 'checkbox' && el.value) return String(el.value).slice(0, 200);
		return textOf(el, 200) || (el.getAttribute('title') || '').slice(0, 200);
	};
	const categoryOf = (el) => {
		if (el.id) {
			const lab = document.querySelector('label[for="' + esc(el.id) + '"]');
			if (lab) { const t = textOf(lab, 120); if (t) return t; }
		}
		const wrap = el.closest('label');
		if (wrap) { const t = textOf(wrap, 120); if (t) return t; }
		let node = el.parentElement;
		for (let hop = 0; node && hop < 4; hop++, node = node.parentElement) {
			const head = node.querySelector('h1,h2,h3,h4,h5,h6,legend,[class*="title" i],[class*="heading" i]');
			if (head) { const t = textOf(head, 120); if (t) return t; }
		}
		return '';
	};
	const contextOf = (el) => {
		let node = el.parentElement, out = '';
		for (let hop = 0; node && hop < 4; hop++, node = node.parentElement) {
			out = textOf(node, 400);
			if (out.length >= 40) break;
		}
		return out;
	};
	const selectorOf = (el) => {
		if (el.id) return '#' + esc(el.id);
		for (const attr of ['data-testid', 'data-test', 'data-cy', 'name']) {
			const v = el.getAttribute(attr);
			if (v) return el.tagName.toLowerCase() + '[' + attr + '="' + v.replace(/"/g, '\\"') + '"]';
		}
		const parts = [];
		let node = el;
		for (let depth = 0; node && node.nodeType === 1 && depth < 5; depth++) {
			if (node.id) { parts.unshift('#' + esc(node.id)); break; }
			let part = node.tagName.toLowerCase();
			const parent = node.parentElement;
			if (parent) {
				const sibs = Array.from(parent.children).filter((c) => c.tagName === node.tagName);
				if (sibs.length > 1) part += ':nth-of-type(' + (sibs.indexOf(node) + 1) + ')';
			}
			parts.unshift(part);
			node = parent;
		}
		return parts.join(' > ');
	};

	const controls = [];
	const operable = document.querySelectorAll(
		'button,[role="button"],a[href],input[type="submit"],input[type="button"],input[type="checkbox"],[role="switch"],[role="checkbox"]'
	);
	for (const el of operable) {
		if (controls.length >= 250) break;
		const vis = visible(el);
		const surface = surfaceOf(el);
		if (surface < 0 && !vis) continue;
		let kind = 'button';
		let checked = false;
		const role = el.getAttribute('role');
		if ((el.tagName === 'INPUT' && el.type === 'checkbox') || role === 'switch' || role === 'checkbox') {
			kind = 'toggle';
			checked = el.tagName === 'INPUT' ? !!el.checked : el.getAttribute('aria-checked') === 'true';
		} else if (el.tagName === 'A') {
			kind = 'link';
		}
		const label = labelOf(el);
		if (!label && kind !== 'toggle') continue;
		controls.push({
			index: put(el),
			surface: surface,
			kind: kind,
			label: label,
			category: kind === 'toggle' ? categoryOf(el) : '',
			context: kind === 'toggle' ? contextOf(el) : '',
			selector: selectorOf(el),
			checked: checked,
			disabled: !!el.disabled || el.getAttribute('aria-disabled') === 'true',
			visible: vis,
		});
	}

	return { url: location.href, surfaces: surfaces, controls: controls };
}`

// watchInstallJS plants a MutationObserver that counts consent-flavored DOM
// changes and timestamps every mutation batch. The drain ticker reads the
// counter; WaitSettled reads the timestamp. Installed on every new document
// so late-loading consent scripts are still caught.
const watchInstallJS = `() => {
	if (window.__optoutWatch) return true;
	const w = (window.__optoutWatch = { hits: 0, last: Date.now() });
	const hint = /cookie|consent|privacy|gdpr|cmp|banner|didomi|onetrust|optanon|usercentrics|sp_message|truste|iubenda|borlabs|osano|complianz|klaro|cookielaw/i;
	const consentish = (node) => {
		if (!node || node.nodeType !== 1) return false;
		const id = (node.id || '') + ' ' + ((node.getAttribute && node.getAttribute('class')) || '');
		if (hint.test(id)) return true;
		if (node.getAttribute && (node.getAttribute('role') === 'dialog' || node.getAttribute('aria-modal') === 'true')) return true;
		try {
			const cs = getComputedStyle(node);
			if ((cs.position === 'fixed' || cs.position === 'sticky') && node.offsetWidth * node.offsetHeight > 40000) return true;
		} catch (e) {}
		return false;
	};
	const obs = new MutationObserver((muts) => {
		w.last = Date.now();
		if (w.hits > 1000) return;
		for (const m of muts) {
			if (m.type === 'attributes' && consentish(m.target)) { w.hits++; return; }
			for (const node of m.addedNodes || []) {
				if (consentish(node)) { w.hits++; return; }
			}
		}
	});
	const start = () => {
		if (!document.documentElement) return;
		obs.observe(document.documentElement, {
			childList: true,
			subtree: true,
			attributes: true,
			attributeFilter: ['style', 'class', 'hidden'],
		});
	};
	if (document.readyState === 'loading') {
		document.addEventListener('DOMContentLoaded', start);
	} else {
		start();
	}
	return true;
}`

// watchDrainJS reads and resets the consent-mutation counter.
const watchDrainJS = `() => {
	const w = window.__optoutWatch;
	if (!w) return { hits: 0 };
	const hits = w.hits;
	w.hits = 0;
	return { hits: hits };
}`

type rawSurface struct {
	Index       int       `json:"index"`
	Tag         string    `json:"tag"`
	Identifier  string    `json:"identifier"`
	Rect        page.Rect `json:"rect"`
	Z           int       `json:"z"`
	Fixed       bool      `json:"fixed"`
	Overlay     bool      `json:"overlay"`
	Text        string    `json:"text"`
	FirstSeenMS int64     `json:"first_seen_ms"`
}

type rawControl struct {
	Index    int    `json:"index"`
	Surface  int    `json:"surface"`
	Kind     string `json:"kind"`
	Label    string `json:"label"`
	Category string `json:"category"`
	Context  string `json:"context"`
	Selector string `json:"selector"`
	Checked  bool   `json:"checked"`
	Disabled bool   `json:"disabled"`
	Visible  bool   `json:"visible"`
}

type rawScan struct {
	URL      string       `json:"url"`
	Surfaces []rawSurface `json:"surfaces"`
	Controls []rawControl `json:"controls"`
}

// decodeSnapshot converts the scan script's output into the engine's model.
// Controls outside every surface arrive with surface -1 and pass through
// unchanged; kinds the script does not know collapse to button.
func decodeSnapshot(raw []byte, frame int, takenAt time.Time) (*page.Snapshot, error) {
	var rs rawScan
	if err := json.Unmarshal(raw, &rs); err != nil {
		return nil, fmt.Errorf("decode scan: %w", err)
	}

	snap := &page.Snapshot{TakenAt: takenAt, URL: rs.URL, Frame: frame}
	if frame > 0 {
		snap.FrameURL = rs.URL
	}
	for _, s := range rs.Surfaces {
		snap.Surfaces = append(snap.Surfaces, page.Surface{
			Ref:        page.Ref{Frame: frame, Index: s.Index},
			Tag:        s.Tag,
			Identifier: s.Identifier,
			Rect:       s.Rect,
			ZIndex:     s.Z,
			Fixed:      s.Fixed,
			Overlay:    s.Overlay,
			Text:       s.Text,
			FirstSeen:  time.UnixMilli(s.FirstSeenMS),
		})
	}
	for _, c := range rs.Controls {
		var kind page.Kind
		if err := kind.UnmarshalText([]byte(c.Kind)); err != nil {
			kind = page.KindButton
		}
		snap.Candidates = append(snap.Candidates, page.Candidate{
			Ref:      page.Ref{Frame: frame, Index: c.Index},
			Surface:  c.Surface,
			Kind:     kind,
			Label:    c.Label,
			Category: c.Category,
			Context:  c.Context,
			Selector: c.Selector,
			Checked:  c.Checked,
			Disabled: c.Disabled,
			Visible:  c.Visible,
		})
	}
	return snap, nil
}
