package intent

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

// Tier orders rule provenance. Learned rules are consulted before the
// built-in corpus, taught rules before both.
type Tier int

const (
	TierBuiltin Tier = iota
	TierLearned
	TierTaught
)

func (t Tier) String() string {
	switch t {
	case TierLearned:
		return "learned"
	case TierTaught:
		return "taught"
	default:
		return "builtin"
	}
}

// Rule is a compiled label matcher. Pattern is stored normalized; matching
// is word-bounded and whitespace-flexible, except for scripts that do not
// delimit words, which fall back to containment.
type Rule struct {
	Pattern string
	Intent  Intent
	Lang    string
	Tier    Tier

	re     *regexp.Regexp
	substr bool
}

// NewRule compiles a matcher from user or store input. The pattern is
// normalized first; an empty result is rejected.
func NewRule(pattern string, it Intent, lang string, tier Tier) (Rule, error) {
	norm := Normalize(pattern)
	if norm == "" {
		return Rule{}, fmt.Errorf("empty pattern")
	}
	r := Rule{Pattern: norm, Intent: it, Lang: lang, Tier: tier}
	if needsContainment(norm) {
		r.substr = true
		return r, nil
	}
	re, err := regexp.Compile(patternExpr(norm))
	if err != nil {
		return Rule{}, fmt.Errorf("compile pattern %q: %w", norm, err)
	}
	r.re = re
	return r, nil
}

// Matches reports whether the rule fires on an already-normalized label.
func (r Rule) Matches(norm string) bool {
	if r.substr {
		return strings.Contains(norm, r.Pattern)
	}
	if r.re == nil {
		return false
	}
	return r.re.MatchString(norm)
}

// patternExpr builds the word-bounded expression for a normalized pattern.
// RE2 has no lookaround, so boundaries consume one non-letter rune; that is
// fine for match testing. \b is ASCII-only and useless outside Latin text.
func patternExpr(norm string) string {
	fields := strings.Fields(norm)
	quoted := make([]string, len(fields))
	for i, f := range fields {
		quoted[i] = regexp.QuoteMeta(f)
	}
	return `(?:^|[^\p{L}\p{N}])` + strings.Join(quoted, `\s+`) + `(?:$|[^\p{L}\p{N}])`
}

// needsContainment reports whether the pattern uses a script without word
// delimiters, where boundary matching would reject legitimate hits.
func needsContainment(s string) bool {
	for _, r := range s {
		if unicode.Is(unicode.Han, r) || unicode.Is(unicode.Hiragana, r) ||
			unicode.Is(unicode.Katakana, r) || unicode.Is(unicode.Hangul, r) ||
			unicode.Is(unicode.Thai, r) {
			return true
		}
	}
	return false
}

// Normalize lowercases, maps every Unicode space to a plain space and
// collapses runs. Curly apostrophes fold to ASCII and soft hyphens vanish
// so literal patterns match typographic label text. All matching, storage
// keys and dedup identities go through this one function.
func Normalize(s string) string {
	s = strings.Map(func(r rune) rune {
		switch {
		case unicode.IsSpace(r):
			return ' '
		case r == '’' || r == 'ʼ':
			return '\''
		case r == '­':
			return -1
		}
		return r
	}, s)
	s = strings.Join(strings.Fields(s), " ")
	return strings.ToLower(s)
}

// builtinRules is the compiled corpus, denial-first per classifyOrder.
var builtinRules = compileBuiltins()

func compileBuiltins() []Rule {
	var rules []Rule
	for _, it := range classifyOrder {
		for _, fam := range familiesFor(it) {
			for _, pat := range fam.patterns {
				r := Rule{Pattern: pat, Intent: it, Lang: fam.lang, Tier: TierBuiltin}
				if needsContainment(pat) {
					r.substr = true
				} else {
					r.re = regexp.MustCompile(patternExpr(pat))
				}
				rules = append(rules, r)
			}
		}
	}
	return rules
}

func familiesFor(it Intent) []langFamily {
	switch it {
	case Deny:
		return denyFamilies
	case Accept:
		return acceptFamilies
	case Manage:
		return manageFamilies
	case Confirm:
		return confirmFamilies
	default:
		return nil
	}
}

func containsAny(hay string, needles []string) (string, bool) {
	for _, n := range needles {
		if strings.Contains(hay, n) {
			return n, true
		}
	}
	return "", false
}

// ContainsPrivacyTopic reports whether free text mentions consent subject
// matter at all. Used by surface qualification.
func ContainsPrivacyTopic(text string) bool {
	_, ok := containsAny(Normalize(text), privacyTopics)
	return ok
}

// ContainsDecisionWord reports whether free text asks the visitor to choose.
func ContainsDecisionWord(text string) bool {
	_, ok := containsAny(Normalize(text), decisionWords)
	return ok
}

// ContainsPaywallPhrase detects consent-or-pay wording and returns the
// phrase that fired for the action log.
func ContainsPaywallPhrase(text string) (string, bool) {
	return containsAny(Normalize(text), paywallPhrases)
}

// IsSectionLabel reports whether a label names a sub-panel of a settings
// dialog: a vendor list, purpose list, or similar tab/accordion opener.
func IsSectionLabel(label string) bool {
	_, ok := containsAny(Normalize(label), sectionLabels)
	return ok
}
