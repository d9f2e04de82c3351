// Package cmp carries structural knowledge about consent management
// platforms: how to recognize one on a page, which vendor API refuses all
// processing, which buttons are the reject path, and what to hide when
// everything else fails. The semantic engine works without any of this; the
// signatures are the fast path for the platforms that dominate the field.
package cmp

// Signature describes one consent management platform.
type Signature struct {
	// Name is the display name reported in run results.
	Name string
	// Slug keys the signature in detection results and facts.
	Slug string
	// Detect is a JS expression evaluating truthy when the platform is
	// present on the page.
	Detect string
	// Reject is a JS statement block invoking the platform's deny-all
	// API. It must return true when the API was actually called. Empty
	// when the platform has no usable public API.
	Reject string
	// DenySelectors are known reject-button selectors, tried in order.
	DenySelectors []string
	// HideSelectors are the platform's containers and backdrops, for the
	// forced-hide fallback.
	HideSelectors []string
}

// signatures is ordered by field share: the common platforms are probed
// first and win detection ties.
var signatures = []Signature{
	{
		Name:   "OneTrust",
		Slug:   "onetrust",
		Detect: `!!(window.OneTrust || window.OnetrustActiveGroups || document.getElementById('onetrust-banner-sdk') || document.getElementById('onetrust-consent-sdk'))`,
		Reject: `if (window.OneTrust && typeof window.OneTrust.RejectAll === 'function') { window.OneTrust.RejectAll(); return true; } return false;`,
		DenySelectors: []string{
			"#onetrust-reject-all-handler",
			".ot-pc-refuse-all-handler",
		},
		HideSelectors: []string{
			"#onetrust-consent-sdk",
			".onetrust-pc-dark-filter",
		},
	},
	{
		Name:   "Didomi",
		Slug:   "didomi",
		Detect: `!!(window.Didomi || window.didomiOnReady || document.getElementById('didomi-host'))`,
		Reject: `if (window.Didomi && typeof window.Didomi.setUserDisagreeToAll === 'function') { window.Didomi.setUserDisagreeToAll(); return true; } return false;`,
		DenySelectors: []string{
			"#didomi-notice-disagree-button",
			".didomi-continue-without-agreeing",
		},
		HideSelectors: []string{
			"#didomi-host",
		},
	},
	{
		Name:   "Usercentrics",
		Slug:   "usercentrics",
		Detect: `!!(window.UC_UI || document.getElementById('usercentrics-root'))`,
		Reject: `if (window.UC_UI && typeof window.UC_UI.denyAllConsents === 'function') { window.UC_UI.denyAllConsents(); if (typeof window.UC_UI.closeCMP === 'function') { window.UC_UI.closeCMP(); } return true; } return false;`,
		DenySelectors: []string{
			"[data-testid='uc-deny-all-button']",
		},
		HideSelectors: []string{
			"#usercentrics-root",
			"#usercentrics-cmp-ui",
		},
	},
	{
		Name:   "Cookiebot",
		Slug:   "cookiebot",
		Detect: `!!(window.Cookiebot || document.getElementById('CybotCookiebotDialog'))`,
		Reject: `if (window.Cookiebot && typeof window.Cookiebot.submitCustomConsent === 'function') { window.Cookiebot.submitCustomConsent(false, false, false); if (typeof window.Cookiebot.hide === 'function') { window.Cookiebot.hide(); } return true; } return false;`,
		DenySelectors: []string{
			"#CybotCookiebotDialogBodyButtonDecline",
		},
		HideSelectors: []string{
			"#CybotCookiebotDialog",
			"#CybotCookiebotDialogBodyUnderlay",
		},
	},
	{
		Name:   "Quantcast Choice",
		Slug:   "quantcast",
		Detect: `!!document.getElementById('qc-cmp2-container')`,
		DenySelectors: []string{
			".qc-cmp2-summary-buttons button[mode='secondary']",
		},
		HideSelectors: []string{
			"#qc-cmp2-container",
		},
	},
	{
		Name:   "Sourcepoint",
		Slug:   "sourcepoint",
		Detect: `!!(window._sp_ || document.querySelector("div[id^='sp_message_container']"))`,
		DenySelectors: []string{
			".sp_choice_type_13",
		},
		HideSelectors: []string{
			"div[id^='sp_message_container']",
		},
	},
	{
		Name:   "TrustArc",
		Slug:   "trustarc",
		Detect: `!!(window.truste || document.getElementById('truste-consent-track'))`,
		DenySelectors: []string{
			"#truste-consent-required",
		},
		HideSelectors: []string{
			"#truste-consent-track",
			".truste_overlay",
			".truste_box_overlay",
		},
	},
	{
		Name:   "consentmanager",
		Slug:   "consentmanager",
		Detect: `!!(document.getElementById('cmpbox') || window.cmp_id)`,
		Reject: `if (typeof window.__cmp === 'function') { window.__cmp('setConsent', 0); return true; } return false;`,
		DenySelectors: []string{
			"#cmpwelcomebtnno",
			".cmpboxbtnno",
		},
		HideSelectors: []string{
			"#cmpbox",
			"#cmpbox2",
		},
	},
	{
		Name:   "Klaro",
		Slug:   "klaro",
		Detect: `!!(window.klaro || document.getElementById('klaro'))`,
		Reject: `if (window.klaro && typeof window.klaro.getManager === 'function') { var m = window.klaro.getManager(); m.changeAll(false); m.saveAndApplyConsents(); return true; } return false;`,
		DenySelectors: []string{
			".cm-btn-decline",
			".cn-decline",
		},
		HideSelectors: []string{
			"#klaro",
		},
	},
	{
		Name:   "tarteaucitron",
		Slug:   "tarteaucitron",
		Detect: `!!(window.tarteaucitron || document.getElementById('tarteaucitronRoot'))`,
		Reject: `if (window.tarteaucitron && window.tarteaucitron.userInterface && typeof window.tarteaucitron.userInterface.respondAll === 'function') { window.tarteaucitron.userInterface.respondAll(false); return true; } return false;`,
		DenySelectors: []string{
			"#tarteaucitronAllDenied2",
		},
		HideSelectors: []string{
			"#tarteaucitronRoot",
			"#tarteaucitronAlertBig",
		},
	},
	{
		Name:   "Osano",
		Slug:   "osano",
		Detect: `!!((window.Osano && window.Osano.cm) || document.querySelector('.osano-cm-window'))`,
		Reject: `if (window.Osano && window.Osano.cm && typeof window.Osano.cm.denyAll === 'function') { window.Osano.cm.denyAll(); return true; } return false;`,
		DenySelectors: []string{
			".osano-cm-denyAll",
			".osano-cm-button--type_denyAll",
		},
		HideSelectors: []string{
			".osano-cm-window",
		},
	},
	{
		Name:   "Iubenda",
		Slug:   "iubenda",
		Detect: `!!(window._iub || document.getElementById('iubenda-cs-banner'))`,
		Reject: `if (window._iub && window._iub.cs && window._iub.cs.api && typeof window._iub.cs.api.rejectAll === 'function') { window._iub.cs.api.rejectAll(); return true; } return false;`,
		DenySelectors: []string{
			".iubenda-cs-reject-btn",
		},
		HideSelectors: []string{
			"#iubenda-cs-banner",
		},
	},
	{
		Name:   "CookieYes",
		Slug:   "cookieyes",
		Detect: `!!(document.querySelector('.cky-consent-container') || window.cookieyes)`,
		DenySelectors: []string{
			".cky-btn-reject",
		},
		HideSelectors: []string{
			".cky-consent-container",
			".cky-overlay",
		},
	},
	{
		Name:   "Borlabs Cookie",
		Slug:   "borlabs",
		Detect: `!!(window.BorlabsCookie || document.getElementById('BorlabsCookieBox'))`,
		DenySelectors: []string{
			"a[data-cookie-refuse]",
		},
		HideSelectors: []string{
			"#BorlabsCookieBox",
			"#BorlabsCookieWidget",
		},
	},
	{
		Name:   "Complianz",
		Slug:   "complianz",
		Detect: `!!(window.complianz || document.querySelector('.cmplz-cookiebanner'))`,
		Reject: `if (typeof window.cmplz_deny === 'function') { window.cmplz_deny(); return true; } return false;`,
		DenySelectors: []string{
			".cmplz-deny",
		},
		HideSelectors: []string{
			".cmplz-cookiebanner",
			"#cmplz-cookiebanner-container",
		},
	},
	{
		Name:   "Cookie Information",
		Slug:   "cookieinformation",
		Detect: `!!(window.CookieInformation || document.getElementById('coiOverlay'))`,
		Reject: `if (window.CookieInformation && typeof window.CookieInformation.declineAllCategories === 'function') { window.CookieInformation.declineAllCategories(); return true; } return false;`,
		DenySelectors: []string{
			"#declineButton",
			".coi-banner__decline",
		},
		HideSelectors: []string{
			"#coiOverlay",
		},
	},
	{
		Name:   "Termly",
		Slug:   "termly",
		Detect: `!!(window.Termly || document.getElementById('termly-code-snippet-support'))`,
		DenySelectors: []string{
			"[data-tid='banner-decline']",
		},
		HideSelectors: []string{
			"#termly-code-snippet-support",
		},
	},
	{
		Name:   "Shopify Privacy Banner",
		Slug:   "shopify",
		Detect: `!!(window.Shopify && window.Shopify.customerPrivacy)`,
		Reject: `if (window.Shopify && window.Shopify.customerPrivacy && typeof window.Shopify.customerPrivacy.setTrackingConsent === 'function') { window.Shopify.customerPrivacy.setTrackingConsent(false, function () {}); return true; } return false;`,
		HideSelectors: []string{
			"#shopify-pc__banner",
		},
	},
}

// Signatures returns the platform corpus in probe order.
func Signatures() []Signature {
	return signatures
}

// BySlug finds a signature by its detection slug.
func BySlug(slug string) (Signature, bool) {
	for _, s := range signatures {
		if s.Slug == slug {
			return s, true
		}
	}
	return Signature{}, false
}

// AllHideSelectors is every known container selector, for the forced-hide
// sweep when no platform was positively identified.
func AllHideSelectors() []string {
	var out []string
	for _, s := range signatures {
		out = append(out, s.HideSelectors...)
	}
	return out
}
