package patterns

import (
	"net/url"
	"sort"
	"strings"
	"time"

	"optout-mcp-server/internal/intent"
)

// Pattern is one learned label→intent association. Site patterns live under
// their host, aggregates pool the same label across hosts to drive
// promotion, taught patterns come from the operator and never expire.
type Pattern struct {
	ID           string        `json:"id"`
	Site         string        `json:"site,omitempty"`
	Label        string        `json:"label"`
	Intent       intent.Intent `json:"intent"`
	Lang         string        `json:"lang,omitempty"`
	Source       string        `json:"source"`
	Selector     string        `json:"selector,omitempty"`
	Confidence   float64       `json:"confidence"`
	UsageCount   int           `json:"usage_count"`
	SuccessCount int           `json:"success_count"`
	Sites        []string      `json:"sites,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
	LastUsedAt   time.Time     `json:"last_used_at"`
}

// Pattern sources.
const (
	SourceAuto     = "auto"
	SourceTaught   = "taught"
	SourcePromoted = "promoted"
)

// deriveConfidence is the automatic confidence model: it starts at the 0.5
// floor and climbs with the success rate, damped until the pattern has
// twenty observations behind it.
func deriveConfidence(successCount, usageCount int) float64 {
	if usageCount <= 0 {
		return 0.5
	}
	rate := float64(successCount) / float64(usageCount)
	weight := float64(usageCount) / 20
	if weight > 1 {
		weight = 1
	}
	return 0.5 + rate*weight*0.5
}

// score orders eviction: the least trusted, least used pattern goes first.
func (p Pattern) score() float64 {
	return p.Confidence * float64(p.UsageCount)
}

// hasSite reports whether the aggregate already counts the host.
func (p Pattern) hasSite(host string) bool {
	for _, s := range p.Sites {
		if s == host {
			return true
		}
	}
	return false
}

// sortByScore orders patterns most trusted first for replay.
func sortByScore(ps []Pattern) {
	sort.Slice(ps, func(i, j int) bool {
		si, sj := ps[i].score(), ps[j].score()
		if si != sj {
			return si > sj
		}
		return ps[i].LastUsedAt.After(ps[j].LastUsedAt)
	})
}

// Rules compiles patterns into classifier rules, skipping any whose label no
// longer compiles. Order is preserved. Taught patterns carry the taught tier;
// everything else is learned.
func Rules(ps []Pattern) []intent.Rule {
	rules := make([]intent.Rule, 0, len(ps))
	for _, p := range ps {
		tier := intent.TierLearned
		if p.Source == SourceTaught {
			tier = intent.TierTaught
		}
		r, err := intent.NewRule(p.Label, p.Intent, p.Lang, tier)
		if err != nil {
			continue
		}
		rules = append(rules, r)
	}
	return rules
}

// CanonicalHost reduces a URL or bare host to the key form patterns are
// stored under: lowercase hostname, no port, no www prefix.
func CanonicalHost(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	host := raw
	if strings.Contains(raw, "://") {
		if u, err := url.Parse(raw); err == nil && u.Hostname() != "" {
			host = u.Hostname()
		}
	} else if i := strings.IndexAny(raw, "/?#"); i >= 0 {
		host = raw[:i]
	}
	if i := strings.LastIndex(host, ":"); i >= 0 && !strings.Contains(host[i:], "]") {
		if port := host[i+1:]; port != "" && isDigits(port) {
			host = host[:i]
		}
	}
	host = strings.ToLower(strings.TrimSuffix(host, "."))
	host = strings.TrimPrefix(host, "www.")
	return host
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
