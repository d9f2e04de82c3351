package intent

import (
	"strings"
	"sync"
)

// Match is a classification outcome. The zero value means no rule fired.
type Match struct {
	Intent  Intent `json:"intent"`
	Pattern string `json:"pattern,omitempty"`
	Lang    string `json:"lang,omitempty"`
	Tier    Tier   `json:"-"`
	Source  string `json:"source,omitempty"`
}

// Classifier resolves a control label to an Intent. Learned rules are
// installed per run (site first, then global) and consulted before the
// built-in corpus; within the corpus the denial reading wins.
type Classifier struct {
	mu     sync.RWMutex
	site   []Rule
	global []Rule
}

func NewClassifier() *Classifier {
	return &Classifier{}
}

// SetSiteRules installs the learned rules for the current site, ordered
// most successful first. Called once per run before classification starts.
func (c *Classifier) SetSiteRules(rules []Rule) {
	c.mu.Lock()
	c.site = rules
	c.mu.Unlock()
}

// SetGlobalRules installs taught and promoted rules that apply everywhere.
func (c *Classifier) SetGlobalRules(rules []Rule) {
	c.mu.Lock()
	c.global = rules
	c.mu.Unlock()
}

// Reset drops all learned rules, leaving only the built-in corpus.
func (c *Classifier) Reset() {
	c.mu.Lock()
	c.site = nil
	c.global = nil
	c.mu.Unlock()
}

// Classify maps a raw label to an intent. Site rules are checked first,
// then global learned rules, then the built-in corpus. Guard phrases veto a
// match: accepting "the selection" is not blanket consent, and a negated
// refusal is not a refusal.
func (c *Classifier) Classify(label string) Match {
	norm := Normalize(label)
	if norm == "" {
		return Match{}
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	if m, ok := scanRules(c.site, norm, "site"); ok {
		return m
	}
	if m, ok := scanRules(c.global, norm, "global"); ok {
		return m
	}
	if m, ok := scanRules(builtinRules, norm, "builtin"); ok {
		return m
	}
	return Match{}
}

func scanRules(rules []Rule, norm, source string) (Match, bool) {
	for _, r := range rules {
		if !r.Matches(norm) {
			continue
		}
		if guarded(r.Intent, norm) {
			continue
		}
		return Match{Intent: r.Intent, Pattern: r.Pattern, Lang: r.Lang, Tier: r.Tier, Source: source}, true
	}
	return Match{}, false
}

// guarded applies the exclusion phrases for a tentative intent.
func guarded(it Intent, norm string) bool {
	switch it {
	case Accept:
		for _, q := range acceptQualifiers {
			if strings.Contains(norm, q) {
				return true
			}
		}
	case Deny:
		for _, n := range denyNegations {
			if strings.Contains(norm, n) {
				return true
			}
		}
	}
	return false
}
