// Package browser owns the Chrome side of the server: launching or attaching
// to a browser, keeping a registry of page sessions, and wiring each page's
// mutation stream into the cleaning watcher. Each session carries a Driver
// that the engine operates through; nothing above this package touches Rod.
package browser

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/google/uuid"

	"optout-mcp-server/internal/config"
	"optout-mcp-server/internal/page"
	"optout-mcp-server/internal/watch"
)

// Session is the persisted metadata for one page under management.
type Session struct {
	ID        string    `json:"id"`
	URL       string    `json:"url"`
	Title     string    `json:"title,omitempty"`
	TargetID  string    `json:"target_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	// Status is "active" while the page is live and "detached" for records
	// restored from the session store after a restart.
	Status string `json:"status"`
}

// session pairs the metadata with the live page machinery.
type session struct {
	meta    Session
	page    *rod.Page
	driver  *Driver
	watcher *watch.Watcher
	cancel  context.CancelFunc
}

// SessionManager launches or attaches to Chrome and tracks page sessions.
// When constructed with a runner, every session gets a mutation watcher that
// queues automatic cleaning runs as consent chrome appears.
type SessionManager struct {
	cfg    config.BrowserConfig
	engine config.EngineConfig
	runner watch.Runner

	mu       sync.RWMutex
	browser  *rod.Browser
	control  string
	sessions map[string]*session
}

// NewSessionManager builds a manager. runner may be nil, which disables
// automatic cleaning; sessions are then driven only through the tools.
func NewSessionManager(cfg config.BrowserConfig, engine config.EngineConfig, runner watch.Runner) *SessionManager {
	return &SessionManager{
		cfg:      cfg,
		engine:   engine,
		runner:   runner,
		sessions: make(map[string]*session),
	}
}

// Start connects to the configured browser, launching one if needed. The
// context governs the connection's lifetime, so callers pass the server's
// lifecycle context, not a request context. Safe to call repeatedly; a
// healthy existing connection is reused.
func (m *SessionManager) Start(ctx context.Context) error {
	m.mu.RLock()
	b := m.browser
	m.mu.RUnlock()
	if b != nil {
		if _, err := b.Version(); err == nil {
			return nil
		}
		log.Printf("[browser] existing connection unhealthy, reconnecting")
	}

	m.loadSessions()

	url, err := m.resolveControlURL()
	if err != nil {
		return err
	}
	browser := rod.New().ControlURL(url).Context(ctx)
	if err := browser.Connect(); err != nil {
		return fmt.Errorf("connect browser at %s: %w", url, err)
	}

	m.mu.Lock()
	m.browser = browser
	m.control = url
	m.mu.Unlock()
	log.Printf("[browser] connected: %s", url)
	return nil
}

// resolveControlURL prefers an explicit debugger endpoint and otherwise
// launches the configured binary. Extra launch arguments pass through as
// Chrome flags; if they make the launch fail, we retry the same binary with
// Rod's defaults before giving up.
func (m *SessionManager) resolveControlURL() (string, error) {
	if m.cfg.DebuggerURL != "" {
		return m.cfg.DebuggerURL, nil
	}
	if len(m.cfg.Launch) == 0 {
		return "", errors.New("no debugger_url configured and no launch command")
	}

	bin := m.cfg.Launch[0]
	launch := launcher.New().Bin(bin).Headless(m.cfg.IsHeadless())
	for _, raw := range m.cfg.Launch[1:] {
		name, value, ok := parseLaunchFlag(raw)
		if !ok {
			continue
		}
		if value == "" {
			launch = launch.Set(flags.Flag(name))
		} else {
			launch = launch.Set(flags.Flag(name), value)
		}
	}
	url, err := launch.Launch()
	if err != nil {
		log.Printf("[browser] launch with configured flags failed (%v), retrying bare", err)
		fallback := launcher.New().Bin(bin).Headless(m.cfg.IsHeadless())
		alt, altErr := fallback.Launch()
		if altErr != nil {
			return "", fmt.Errorf("launch %s: %w (fallback: %v)", bin, err, altErr)
		}
		url = alt
	}
	return url, nil
}

// parseLaunchFlag normalizes one launch argument into a flag name and value.
func parseLaunchFlag(raw string) (name, value string, ok bool) {
	trimmed := strings.TrimLeft(raw, "-")
	if trimmed == "" {
		return "", "", false
	}
	name, value, _ = strings.Cut(trimmed, "=")
	if name == "" {
		return "", "", false
	}
	return name, value, true
}

// IsConnected reports whether a browser connection is established.
func (m *SessionManager) IsConnected() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.browser != nil
}

// ControlURL returns the DevTools endpoint in use, or "" before Start.
func (m *SessionManager) ControlURL() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.control
}

// CreateSession opens a fresh incognito page, applies the configured
// viewport, installs the mutation watch and navigates. Navigation failures
// are logged, not fatal: the session is still usable and the caller can
// retry through the page itself.
func (m *SessionManager) CreateSession(ctx context.Context, url string) (Session, error) {
	m.mu.RLock()
	b := m.browser
	m.mu.RUnlock()
	if b == nil {
		return Session{}, errors.New("browser not connected; launch it first")
	}

	incognito, err := b.Incognito()
	if err != nil {
		return Session{}, fmt.Errorf("create incognito context: %w", err)
	}

	var p *rod.Page
	if m.cfg.IsStealth() {
		p, err = stealth.Page(incognito)
	} else {
		p, err = incognito.Page(proto.TargetCreateTarget{URL: "about:blank"})
	}
	if err != nil {
		return Session{}, fmt.Errorf("create page: %w", err)
	}

	if err := (proto.EmulationSetDeviceMetricsOverride{
		Width:             m.cfg.GetViewportWidth(),
		Height:            m.cfg.GetViewportHeight(),
		DeviceScaleFactor: 1.0,
	}).Call(p); err != nil {
		log.Printf("[browser] viewport override failed: %v", err)
	}

	meta := Session{
		ID:        uuid.NewString(),
		URL:       url,
		TargetID:  string(p.TargetID),
		CreatedAt: time.Now().UTC(),
		Status:    "active",
	}
	out := m.startSession(p, meta)

	if url != "" {
		nav := p.Timeout(m.cfg.NavigationTimeout())
		if err := nav.Navigate(url); err != nil {
			log.Printf("[session:%s] navigate %s: %v", meta.ID, url, err)
		} else if err := nav.WaitLoad(); err != nil {
			log.Printf("[session:%s] wait load: %v", meta.ID, err)
		}
		if info, err := p.Info(); err == nil {
			m.UpdateMetadata(meta.ID, info.URL, info.Title)
			out.URL, out.Title = info.URL, info.Title
		}
	}

	log.Printf("[session:%s] created: url=%s stealth=%v", meta.ID, url, m.cfg.IsStealth())
	return out, nil
}

// Attach adopts an existing browser tab by target ID. The tab keeps its
// state; we only install the mutation watch and start tracking it.
func (m *SessionManager) Attach(ctx context.Context, targetID string) (Session, error) {
	m.mu.RLock()
	b := m.browser
	m.mu.RUnlock()
	if b == nil {
		return Session{}, errors.New("browser not connected; launch it first")
	}

	p, err := b.PageFromTarget(proto.TargetTargetID(targetID))
	if err != nil {
		return Session{}, fmt.Errorf("attach target %s: %w", targetID, err)
	}

	meta := Session{
		ID:        uuid.NewString(),
		TargetID:  targetID,
		CreatedAt: time.Now().UTC(),
		Status:    "active",
	}
	if info, err := p.Context(ctx).Info(); err == nil {
		meta.URL = info.URL
		meta.Title = info.Title
	}
	out := m.startSession(p, meta)
	log.Printf("[session:%s] attached: target=%s url=%s", meta.ID, targetID, meta.URL)
	return out, nil
}

// startSession wires the page into the registry: driver, mutation watch on
// every new document, the cleaning watcher and the navigation follower.
func (m *SessionManager) startSession(p *rod.Page, meta Session) Session {
	drv := NewDriver(p)
	wctx, cancel := context.WithCancel(context.Background())
	s := &session{meta: meta, page: p, driver: drv, cancel: cancel}

	if _, err := (proto.PageAddScriptToEvaluateOnNewDocument{Source: watchInstallJS}).Call(p); err != nil {
		log.Printf("[session:%s] install mutation watch: %v", meta.ID, err)
	}
	// The current document predates the install hook; prime it directly.
	if _, err := drv.Eval(wctx, watchInstallJS); err != nil {
		log.Printf("[session:%s] prime mutation watch: %v", meta.ID, err)
	}

	if m.runner != nil {
		w := watch.New(m.engine, m.runner, drv)
		w.Arm()
		s.watcher = w
		go func() {
			if err := w.Run(wctx); err != nil {
				log.Printf("[session:%s] watcher stopped: %v", meta.ID, err)
			}
		}()
		go m.drainMutations(wctx, s)
	}
	go m.followNavigation(wctx, s)

	m.mu.Lock()
	m.sessions[meta.ID] = s
	m.mu.Unlock()
	m.persistSessions()
	return s.meta
}

// followNavigation keeps metadata current and re-arms the watcher whenever
// the top frame navigates, so the post-load window for consent chrome opens
// again on every page change.
func (m *SessionManager) followNavigation(ctx context.Context, s *session) {
	p := s.page.Context(ctx)
	p.EachEvent(func(ev *proto.PageFrameNavigated) {
		if ev.Frame.ParentID != "" {
			return
		}
		m.UpdateMetadata(s.meta.ID, ev.Frame.URL, "")
		if s.watcher != nil {
			s.watcher.Arm()
		}
		log.Printf("[session:%s] navigated: %s", s.meta.ID, ev.Frame.URL)
	})()
}

// drainMutations polls the page's consent-mutation counter and pokes the
// watcher when anything accumulated. Eval failures are expected during
// navigation and teardown and are simply skipped.
func (m *SessionManager) drainMutations(ctx context.Context, s *session) {
	tick := time.NewTicker(m.engine.GetWatchInterval())
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-tick.C:
			raw, err := s.driver.Eval(ctx, watchDrainJS)
			if err != nil {
				continue
			}
			var r struct {
				Hits int `json:"hits"`
			}
			if err := json.Unmarshal(raw, &r); err != nil || r.Hits == 0 {
				continue
			}
			if s.watcher.Notify() {
				log.Printf("[session:%s] consent mutation observed, cleaning queued", s.meta.ID)
			}
		}
	}
}

// GetSession returns a session's metadata.
func (m *SessionManager) GetSession(id string) (Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return Session{}, false
	}
	return s.meta, true
}

// List returns all sessions ordered by creation time.
func (m *SessionManager) List() []Session {
	m.mu.RLock()
	out := make([]Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s.meta)
	}
	m.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// Page returns the live Rod page for a session, if it has one. Detached
// records restored from disk have no page.
func (m *SessionManager) Page(id string) (*rod.Page, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok || s.page == nil {
		return nil, false
	}
	return s.page, true
}

// DriverFor returns the driver the cleaning engine runs against.
func (m *SessionManager) DriverFor(id string) (page.Driver, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("unknown session: %s", id)
	}
	if s.driver == nil || s.page == nil {
		return nil, fmt.Errorf("session %s is detached", id)
	}
	return s.driver, nil
}

// UpdateMetadata replaces a session's URL and title, keeping existing values
// where the new ones are empty. Reports whether the session exists.
func (m *SessionManager) UpdateMetadata(id, url, title string) bool {
	m.mu.Lock()
	s, ok := m.sessions[id]
	if ok {
		s.meta.URL = coalesceNonEmpty(url, s.meta.URL)
		s.meta.Title = coalesceNonEmpty(title, s.meta.Title)
	}
	m.mu.Unlock()
	if ok {
		m.persistSessions()
	}
	return ok
}

// CloseSession stops a session's watcher, closes its page and drops it from
// the registry.
func (m *SessionManager) CloseSession(id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	m.mu.Unlock()
	if !ok {
		return fmt.Errorf("unknown session: %s", id)
	}

	if s.cancel != nil {
		s.cancel()
	}
	if s.page != nil {
		if err := s.page.Close(); err != nil {
			log.Printf("[session:%s] close page: %v", id, err)
		}
	}
	m.persistSessions()
	log.Printf("[session:%s] closed", id)
	return nil
}

// Shutdown persists session records, stops all watchers and closes the
// browser connection. Restored records show up as detached on next Start.
func (m *SessionManager) Shutdown() {
	m.persistSessions()

	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*session)
	browser := m.browser
	m.browser = nil
	m.control = ""
	m.mu.Unlock()

	for _, s := range sessions {
		if s.cancel != nil {
			s.cancel()
		}
	}
	if browser != nil {
		if err := browser.Close(); err != nil {
			log.Printf("[browser] close: %v", err)
		}
	}
	log.Printf("[browser] shut down")
}

// persistSessions writes the session records to the configured store. Errors
// are logged; persistence is convenience, not correctness.
func (m *SessionManager) persistSessions() {
	if m.cfg.SessionStore == "" {
		return
	}
	m.mu.RLock()
	metas := make([]Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		metas = append(metas, s.meta)
	}
	m.mu.RUnlock()
	sort.Slice(metas, func(i, j int) bool { return metas[i].CreatedAt.Before(metas[j].CreatedAt) })

	data, err := json.MarshalIndent(metas, "", "  ")
	if err != nil {
		log.Printf("[browser] marshal sessions: %v", err)
		return
	}
	if err := os.MkdirAll(filepath.Dir(m.cfg.SessionStore), 0o755); err != nil {
		log.Printf("[browser] create session store dir: %v", err)
		return
	}
	if err := os.WriteFile(m.cfg.SessionStore, data, 0o644); err != nil {
		log.Printf("[browser] write session store: %v", err)
	}
}

// loadSessions restores persisted records as detached sessions so their
// history survives restarts. Live sessions in the registry win over records.
func (m *SessionManager) loadSessions() {
	if m.cfg.SessionStore == "" {
		return
	}
	data, err := os.ReadFile(m.cfg.SessionStore)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("[browser] read session store: %v", err)
		}
		return
	}
	var metas []Session
	if err := json.Unmarshal(data, &metas); err != nil {
		log.Printf("[browser] decode session store: %v", err)
		return
	}

	m.mu.Lock()
	restored := 0
	for _, meta := range metas {
		if meta.ID == "" {
			continue
		}
		if _, ok := m.sessions[meta.ID]; ok {
			continue
		}
		meta.Status = "detached"
		m.sessions[meta.ID] = &session{meta: meta}
		restored++
	}
	m.mu.Unlock()
	if restored > 0 {
		log.Printf("[browser] restored %d session records (detached)", restored)
	}
}

func coalesceNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
