package patterns

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"optout-mcp-server/internal/config"
	"optout-mcp-server/internal/intent"
)

// Key spaces. Hosts never contain a slash, so the normalized label is always
// the final segment.
const (
	sitePrefix     = "site/"
	aggPrefix      = "agg/"
	promotedPrefix = "promoted/"
	taughtPrefix   = "taught/"
)

// maintainEvery bounds how many writes go by between background sweeps of
// expiry and capacity limits.
const maintainEvery = 32

// maxAggSites caps the distinct-host list carried by an aggregate. Promotion
// only needs to count up to the threshold; the tail is noise.
const maxAggSites = 32

// Store persists learned patterns in a Badger keyspace. All methods are safe
// for concurrent use; Badger handles transaction isolation, the store only
// serializes its maintenance bookkeeping.
type Store struct {
	db  *badger.DB
	cfg config.PatternsConfig

	mu          sync.Mutex
	writesSince int

	done chan struct{}
	wg   sync.WaitGroup
}

// badgerLogger funnels Badger's chatter into the standard logger. Info and
// debug output is dropped: it is voluminous and operational noise here.
type badgerLogger struct{}

func (badgerLogger) Errorf(format string, args ...interface{}) {
	log.Printf("[patterns] badger error: "+strings.TrimSpace(format), args...)
}

func (badgerLogger) Warningf(format string, args ...interface{}) {
	log.Printf("[patterns] badger warning: "+strings.TrimSpace(format), args...)
}

func (badgerLogger) Infof(string, ...interface{})  {}
func (badgerLogger) Debugf(string, ...interface{}) {}

// Open opens (or creates) the pattern store and runs an initial maintenance
// sweep. In-memory mode backs tests and ephemeral runs.
func Open(cfg config.PatternsConfig) (*Store, error) {
	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if cfg.Path == "" {
			return nil, fmt.Errorf("patterns: path is required")
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.WithLogger(badgerLogger{}).WithSyncWrites(cfg.SyncWrites)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("patterns: open store: %w", err)
	}

	s := &Store{db: db, cfg: cfg, done: make(chan struct{})}
	if err := s.Maintain(time.Now()); err != nil {
		log.Printf("[patterns] maintenance at open: %v", err)
	}

	if !cfg.InMemory {
		if interval := cfg.GetGCInterval(); interval > 0 {
			s.wg.Add(1)
			go s.gcLoop(interval)
		}
	}
	return s, nil
}

// Close stops background work and closes the database.
func (s *Store) Close() error {
	close(s.done)
	s.wg.Wait()
	return s.db.Close()
}

// gcLoop reclaims Badger value-log space on a timer. ErrNoRewrite just means
// there was nothing worth collecting.
func (s *Store) gcLoop(interval time.Duration) {
	defer s.wg.Done()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			for {
				err := s.db.RunValueLogGC(s.cfg.GetGCDiscardRatio())
				if err != nil {
					if !errors.Is(err, badger.ErrNoRewrite) {
						log.Printf("[patterns] value log gc: %v", err)
					}
					break
				}
			}
		}
	}
}

// RecordOutcome folds one action result into the learning state. Successful
// outcomes create or reinforce the site pattern and its cross-site
// aggregate; failures only weaken patterns that already exist. The updated
// site pattern is returned.
func (s *Store) RecordOutcome(site, label string, it intent.Intent, lang, selector string, success bool, now time.Time) (Pattern, error) {
	norm := intent.Normalize(label)
	if norm == "" {
		return Pattern{}, fmt.Errorf("patterns: empty label")
	}
	if it == intent.Unknown {
		return Pattern{}, fmt.Errorf("patterns: refusing to learn unknown intent for %q", norm)
	}
	host := CanonicalHost(site)
	if host == "" {
		return Pattern{}, fmt.Errorf("patterns: empty site")
	}

	var updated Pattern
	err := s.db.Update(func(txn *badger.Txn) error {
		existing, found, err := getPattern(txn, siteKey(host, norm))
		if err != nil {
			return err
		}
		if found && existing.Intent != it {
			// The label's meaning changed; stale statistics must not carry over.
			found = false
		}
		if !found {
			if !success {
				// Nothing to weaken; a failed first contact is not worth storing.
				return nil
			}
			existing = Pattern{
				ID:        uuid.NewString(),
				Site:      host,
				Label:     norm,
				Intent:    it,
				Lang:      lang,
				Source:    SourceAuto,
				CreatedAt: now,
			}
		}
		existing.UsageCount++
		if success {
			existing.SuccessCount++
			if selector != "" {
				existing.Selector = selector
			}
		}
		existing.LastUsedAt = now
		existing.Confidence = deriveConfidence(existing.SuccessCount, existing.UsageCount)
		if err := putPattern(txn, siteKey(host, norm), existing); err != nil {
			return err
		}
		updated = existing

		agg, err := s.updateAggregate(txn, host, norm, it, lang, success, now)
		if err != nil {
			return err
		}
		if success {
			if _, err := s.maybePromote(txn, agg, now); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return Pattern{}, fmt.Errorf("patterns: record outcome: %w", err)
	}
	s.afterWrite(now)
	return updated, nil
}

// updateAggregate pools per-label statistics across hosts.
func (s *Store) updateAggregate(txn *badger.Txn, host, norm string, it intent.Intent, lang string, success bool, now time.Time) (Pattern, error) {
	agg, found, err := getPattern(txn, aggKey(it, norm))
	if err != nil {
		return Pattern{}, err
	}
	if !found {
		agg = Pattern{
			ID:        uuid.NewString(),
			Label:     norm,
			Intent:    it,
			Lang:      lang,
			Source:    SourceAuto,
			CreatedAt: now,
		}
	}
	agg.UsageCount++
	if success {
		agg.SuccessCount++
	}
	if !agg.hasSite(host) && len(agg.Sites) < maxAggSites {
		agg.Sites = append(agg.Sites, host)
	}
	agg.LastUsedAt = now
	agg.Confidence = deriveConfidence(agg.SuccessCount, agg.UsageCount)
	if err := putPattern(txn, aggKey(it, norm), agg); err != nil {
		return Pattern{}, err
	}
	return agg, nil
}

// maybePromote turns a qualifying aggregate into a global rule. Promotion is
// keyed, so repeat qualification never duplicates the rule; it refreshes the
// stored statistics instead.
func (s *Store) maybePromote(txn *badger.Txn, agg Pattern, now time.Time) (bool, error) {
	if agg.Confidence < s.cfg.GetPromoteConfidence() {
		return false, nil
	}
	if agg.UsageCount < s.cfg.GetPromoteUsage() {
		return false, nil
	}
	if len(agg.Sites) < s.cfg.GetPromoteSites() {
		return false, nil
	}

	key := promotedKey(agg.Intent, agg.Label)
	promoted, found, err := getPattern(txn, key)
	if err != nil {
		return false, err
	}
	if found {
		promoted.Confidence = agg.Confidence
		promoted.UsageCount = agg.UsageCount
		promoted.SuccessCount = agg.SuccessCount
		promoted.Sites = agg.Sites
		promoted.LastUsedAt = now
		return false, putPattern(txn, key, promoted)
	}

	promoted = agg
	promoted.ID = uuid.NewString()
	promoted.Source = SourcePromoted
	promoted.CreatedAt = now
	promoted.LastUsedAt = now
	log.Printf("[patterns] promoted %q (%s) to global rule: confidence=%.2f usage=%d sites=%d",
		agg.Label, agg.Intent, agg.Confidence, agg.UsageCount, len(agg.Sites))
	return true, putPattern(txn, key, promoted)
}

// Teach stores an operator-supplied pattern. Taught patterns apply on every
// site, are floored at 0.9 confidence and never expire.
func (s *Store) Teach(label string, it intent.Intent, lang string, confidence float64, now time.Time) (Pattern, error) {
	norm := intent.Normalize(label)
	if norm == "" {
		return Pattern{}, fmt.Errorf("patterns: empty label")
	}
	if it == intent.Unknown {
		return Pattern{}, fmt.Errorf("patterns: cannot teach unknown intent")
	}
	if confidence < 0.9 {
		confidence = 0.9
	}
	if confidence > 1 {
		confidence = 1
	}

	var taught Pattern
	err := s.db.Update(func(txn *badger.Txn) error {
		existing, found, err := getPattern(txn, taughtKey(norm))
		if err != nil {
			return err
		}
		if found {
			existing.Intent = it
			existing.Lang = lang
			existing.Confidence = confidence
			existing.LastUsedAt = now
			taught = existing
			return putPattern(txn, taughtKey(norm), existing)
		}
		taught = Pattern{
			ID:         uuid.NewString(),
			Label:      norm,
			Intent:     it,
			Lang:       lang,
			Source:     SourceTaught,
			Confidence: confidence,
			CreatedAt:  now,
			LastUsedAt: now,
		}
		return putPattern(txn, taughtKey(norm), taught)
	})
	if err != nil {
		return Pattern{}, fmt.Errorf("patterns: teach: %w", err)
	}
	s.afterWrite(now)
	return taught, nil
}

// SitePatterns returns the learned patterns for a host, most trusted first.
func (s *Store) SitePatterns(site string) ([]Pattern, error) {
	host := CanonicalHost(site)
	if host == "" {
		return nil, nil
	}
	ps, err := s.scan(sitePrefix + host + "/")
	if err != nil {
		return nil, err
	}
	sortByScore(ps)
	return ps, nil
}

// GlobalPatterns returns taught patterns followed by promoted rules, each
// group most trusted first.
func (s *Store) GlobalPatterns() ([]Pattern, error) {
	taught, err := s.scan(taughtPrefix)
	if err != nil {
		return nil, err
	}
	promoted, err := s.scan(promotedPrefix)
	if err != nil {
		return nil, err
	}
	sortByScore(taught)
	sortByScore(promoted)
	return append(taught, promoted...), nil
}

// Export is the full learning state, shaped for the pattern listing tool.
type Export struct {
	Sites      map[string][]Pattern `json:"sites,omitempty"`
	Taught     []Pattern            `json:"taught,omitempty"`
	Promoted   []Pattern            `json:"promoted,omitempty"`
	Candidates []Pattern            `json:"candidates,omitempty"`
}

// ExportAll snapshots every key space. Candidates are aggregates that have
// not (yet) crossed the promotion thresholds.
func (s *Store) ExportAll() (Export, error) {
	out := Export{Sites: map[string][]Pattern{}}

	site, err := s.scan(sitePrefix)
	if err != nil {
		return Export{}, err
	}
	for _, p := range site {
		out.Sites[p.Site] = append(out.Sites[p.Site], p)
	}
	for host := range out.Sites {
		sortByScore(out.Sites[host])
	}

	if out.Taught, err = s.scan(taughtPrefix); err != nil {
		return Export{}, err
	}
	if out.Promoted, err = s.scan(promotedPrefix); err != nil {
		return Export{}, err
	}
	if out.Candidates, err = s.scan(aggPrefix); err != nil {
		return Export{}, err
	}
	sortByScore(out.Taught)
	sortByScore(out.Promoted)
	sortByScore(out.Candidates)
	return out, nil
}

// Maintain applies expiry and capacity limits. Site patterns idle past their
// window are dropped, then each host is trimmed to capacity; aggregates and
// promoted rules share the global budget. Taught patterns are exempt from
// both. Eviction removes the lowest confidence×usage first.
func (s *Store) Maintain(now time.Time) error {
	var deletions []string

	err := s.db.View(func(txn *badger.Txn) error {
		siteCutoff := now.Add(-s.cfg.GetSiteExpiry())
		globalCutoff := now.Add(-s.cfg.GetGlobalExpiry())

		byHost := map[string][]Pattern{}
		site, err := scanTxn(txn, sitePrefix)
		if err != nil {
			return err
		}
		for _, p := range site {
			if p.LastUsedAt.Before(siteCutoff) {
				deletions = append(deletions, string(siteKey(p.Site, p.Label)))
				continue
			}
			byHost[p.Site] = append(byHost[p.Site], p)
		}
		limit := s.cfg.GetSiteCapacity()
		for host, ps := range byHost {
			if len(ps) <= limit {
				continue
			}
			sortByScore(ps)
			for _, p := range ps[limit:] {
				deletions = append(deletions, string(siteKey(host, p.Label)))
			}
		}

		var global []Pattern
		agg, err := scanTxn(txn, aggPrefix)
		if err != nil {
			return err
		}
		promoted, err := scanTxn(txn, promotedPrefix)
		if err != nil {
			return err
		}
		for _, p := range append(agg, promoted...) {
			if p.LastUsedAt.Before(globalCutoff) {
				deletions = append(deletions, string(globalKey(p)))
				continue
			}
			global = append(global, p)
		}
		glimit := s.cfg.GetGlobalCapacity()
		if len(global) > glimit {
			sortByScore(global)
			for _, p := range global[glimit:] {
				deletions = append(deletions, string(globalKey(p)))
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("patterns: maintenance scan: %w", err)
	}
	if len(deletions) == 0 {
		return nil
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		for _, key := range deletions {
			if err := txn.Delete([]byte(key)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("patterns: maintenance delete: %w", err)
	}
	log.Printf("[patterns] maintenance removed %d entries", len(deletions))
	return nil
}

// globalKey maps an aggregate or promoted pattern back to its storage key.
func globalKey(p Pattern) []byte {
	if p.Source == SourcePromoted {
		return promotedKey(p.Intent, p.Label)
	}
	return aggKey(p.Intent, p.Label)
}

// afterWrite runs a maintenance sweep every maintainEvery writes.
func (s *Store) afterWrite(now time.Time) {
	s.mu.Lock()
	s.writesSince++
	due := s.writesSince >= maintainEvery
	if due {
		s.writesSince = 0
	}
	s.mu.Unlock()
	if due {
		if err := s.Maintain(now); err != nil {
			log.Printf("[patterns] %v", err)
		}
	}
}

// scan reads every pattern under a key prefix.
func (s *Store) scan(prefix string) ([]Pattern, error) {
	var out []Pattern
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		out, err = scanTxn(txn, prefix)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("patterns: scan %s: %w", prefix, err)
	}
	return out, nil
}

func scanTxn(txn *badger.Txn, prefix string) ([]Pattern, error) {
	var out []Pattern
	opts := badger.DefaultIteratorOptions
	it := txn.NewIterator(opts)
	defer it.Close()
	pfx := []byte(prefix)
	for it.Seek(pfx); it.ValidForPrefix(pfx); it.Next() {
		item := it.Item()
		err := item.Value(func(val []byte) error {
			var p Pattern
			if err := json.Unmarshal(val, &p); err != nil {
				return fmt.Errorf("decode %s: %w", item.Key(), err)
			}
			out = append(out, p)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

func getPattern(txn *badger.Txn, key []byte) (Pattern, bool, error) {
	item, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return Pattern{}, false, nil
	}
	if err != nil {
		return Pattern{}, false, err
	}
	var p Pattern
	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, &p)
	})
	if err != nil {
		return Pattern{}, false, err
	}
	return p, true, nil
}

func putPattern(txn *badger.Txn, key []byte, p Pattern) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return txn.Set(key, raw)
}

func siteKey(host, norm string) []byte {
	return []byte(sitePrefix + host + "/" + norm)
}

func aggKey(it intent.Intent, norm string) []byte {
	return []byte(aggPrefix + it.String() + "/" + norm)
}

func promotedKey(it intent.Intent, norm string) []byte {
	return []byte(promotedPrefix + it.String() + "/" + norm)
}

func taughtKey(norm string) []byte {
	return []byte(taughtPrefix + norm)
}
