package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// WorkspaceDirName is the directory name for project-level OptOut config.
	WorkspaceDirName = ".optout"
	// WorkspaceConfigFile is the config file name inside the workspace directory.
	WorkspaceConfigFile = "config.yaml"
	// MaxSearchDepth limits how many parent directories to walk when discovering a workspace.
	MaxSearchDepth = 10
)

// WorkspaceOptions controls workspace discovery behavior.
type WorkspaceOptions struct {
	// Disable skips workspace discovery entirely (--no-workspace flag).
	Disable bool
	// ExplicitDir uses this directory as workspace root instead of walking up (--workspace-dir flag).
	ExplicitDir string
}

// Config captures all tunable settings for the OptOut MCP server.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Browser  BrowserConfig  `yaml:"browser"`
	MCP      MCPConfig      `yaml:"mcp"`
	Engine   EngineConfig   `yaml:"engine"`
	Patterns PatternsConfig `yaml:"patterns"`
	Facts    FactsConfig    `yaml:"facts"`
}

type ServerConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
	LogFile string `yaml:"log_file"`
}

// BrowserConfig configures how we attach to or launch Chrome for Rod.
type BrowserConfig struct {
	// Control endpoint for Rod (e.g., ws://localhost:9222). Required when launch is empty.
	DebuggerURL string `yaml:"debugger_url"`
	// Optional launch command to start Chrome in detached mode (e.g., ["chrome", "--remote-debugging-port=9222"]).
	Launch []string `yaml:"launch"`
	// AutoStart controls whether the MCP server launches/attaches to Chrome at startup.
	AutoStart bool `yaml:"auto_start"`
	// Headless controls whether Chrome runs in headless mode (default: true).
	Headless *bool `yaml:"headless"`
	// Stealth installs evasion scripts on new pages so consent platforms serve
	// the same markup they serve real users (default: true).
	Stealth *bool `yaml:"stealth"`
	// Default navigation timeout (e.g., "15s").
	DefaultNavigationTimeout string `yaml:"default_navigation_timeout"`
	// Default timeout when attaching to an existing target (e.g., "10s").
	DefaultAttachTimeout string `yaml:"default_attach_timeout"`
	// Optional path to persist session metadata between server restarts.
	SessionStore string `yaml:"session_store"`
	// Viewport width for new sessions (default: 1920).
	ViewportWidth int `yaml:"viewport_width"`
	// Viewport height for new sessions (default: 1080).
	ViewportHeight int `yaml:"viewport_height"`
}

// EngineConfig tunes the denial run: budgets, settle delays, and the watcher.
type EngineConfig struct {
	// Wall-clock budget for a full cleaning run (e.g., "30s").
	Deadline string `yaml:"deadline"`
	// Pause after each page mutation before re-inspecting (e.g., "400ms").
	SettleDelay string `yaml:"settle_delay"`
	// How long after page load (or a panel opening) a dialog still counts as fresh.
	RecencyWindow string `yaml:"recency_window"`
	// Maximum recursion depth when a "manage settings" click reveals another layer.
	MaxManageDepth int `yaml:"max_manage_depth"`
	// Cap on the per-run action log (default: 100 entries).
	ActionLogLimit int `yaml:"action_log_limit"`
	// Cap on distinct errors recorded per run (default: 25).
	MaxErrors int `yaml:"max_errors"`
	// Optional directory for JSONL run traces. Empty disables tracing.
	TraceDir string `yaml:"trace_dir"`
	// How long the mutation watcher stays armed after page load (default: "20s").
	WatchWindow string `yaml:"watch_window"`
	// Drain interval for buffered page mutations (default: "500ms").
	WatchInterval string `yaml:"watch_interval"`
	// Minimum spacing between automatic runs on the same session (default: "10s").
	AutoRunInterval string `yaml:"auto_run_interval"`
}

// PatternsConfig controls the learned-pattern store and promotion policy.
type PatternsConfig struct {
	// Directory for the Badger pattern database (default: data/patterns).
	Path string `yaml:"path"`
	// InMemory runs the store without disk persistence (tests).
	InMemory bool `yaml:"in_memory"`
	// SyncWrites forces durable writes (default: false; pattern data is reconstructible).
	SyncWrites bool `yaml:"sync_writes"`
	// AutoRun enables automatic cleaning when a consent dialog appears (default: true).
	AutoRun *bool `yaml:"auto_run"`
	// Per-site pattern capacity (default: 10).
	SiteCapacity int `yaml:"site_capacity"`
	// Global pattern capacity (default: 500).
	GlobalCapacity int `yaml:"global_capacity"`
	// Days before an unused per-site pattern expires (default: 90).
	SiteExpiryDays int `yaml:"site_expiry_days"`
	// Days before an unused global pattern expires (default: 180).
	GlobalExpiryDays int `yaml:"global_expiry_days"`
	// Promotion thresholds: all three must hold before a pattern becomes a rule.
	PromoteConfidence float64 `yaml:"promote_confidence"`
	PromoteUsage      int     `yaml:"promote_usage"`
	PromoteSites      int     `yaml:"promote_sites"`
	// Value-log GC cadence for the Badger store (default: "5m"; empty disables).
	GCInterval string `yaml:"gc_interval"`
	// Minimum discardable ratio before GC rewrites a value log file (default: 0.5).
	GCDiscardRatio float64 `yaml:"gc_discard_ratio"`
}

type MCPConfig struct {
	// When set, starts an SSE server on this port instead of stdio-only.
	SSEPort int `yaml:"sse_port"`
}

// FactsConfig controls the embedded deductive engine.
type FactsConfig struct {
	Enable bool `yaml:"enable"`
	// Optional schema override. Empty uses the embedded consent schema.
	SchemaPath      string `yaml:"schema_path"`
	FactBufferLimit int    `yaml:"fact_buffer_limit"`
}

// DefaultConfig provides reasonable defaults for local development.
func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Name:    "optout-mcp",
			Version: "0.3.1",
			LogFile: "optout-mcp.log",
		},
		Browser: BrowserConfig{
			AutoStart:                true,
			DefaultNavigationTimeout: "15s",
			DefaultAttachTimeout:     "10s",
			SessionStore:             "sessions.json",
			ViewportWidth:            1920,
			ViewportHeight:           1080,
		},
		MCP: MCPConfig{
			SSEPort: 0,
		},
		Engine: EngineConfig{
			Deadline:        "30s",
			SettleDelay:     "400ms",
			RecencyWindow:   "60s",
			MaxManageDepth:  2,
			ActionLogLimit:  100,
			MaxErrors:       25,
			WatchWindow:     "20s",
			WatchInterval:   "500ms",
			AutoRunInterval: "10s",
		},
		Patterns: PatternsConfig{
			Path:              "data/patterns",
			SiteCapacity:      10,
			GlobalCapacity:    500,
			SiteExpiryDays:    90,
			GlobalExpiryDays:  180,
			PromoteConfidence: 0.85,
			PromoteUsage:      10,
			PromoteSites:      3,
			GCInterval:        "5m",
			GCDiscardRatio:    0.5,
		},
		Facts: FactsConfig{
			Enable:          true,
			FactBufferLimit: 2048,
		},
	}
}

// Load reads YAML config from disk and overlays defaults.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		return cfg, errors.New("config path is required")
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, err
	}

	return cfg, cfg.Validate()
}

// DiscoverWorkspace walks up from startDir looking for a .optout/config.yaml file.
// Returns the workspace root directory (parent of .optout/) or empty string if not found.
func DiscoverWorkspace(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("resolving start directory: %w", err)
	}

	for i := 0; i < MaxSearchDepth; i++ {
		candidate := filepath.Join(dir, WorkspaceDirName, WorkspaceConfigFile)
		if _, err := os.Stat(candidate); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached filesystem root
			break
		}
		dir = parent
	}

	return "", nil
}

// LoadWithWorkspace implements multi-layer config merge:
//
//	DefaultConfig() <- .optout/config.yaml <- explicit --config <- CLI flags
//
// Returns the merged config and the workspace directory (empty if none found).
func LoadWithWorkspace(explicitConfig string, opts WorkspaceOptions) (Config, string, error) {
	cfg := DefaultConfig()
	wsDir := ""

	// Layer 1: Workspace config (if not disabled)
	if !opts.Disable {
		var err error
		if opts.ExplicitDir != "" {
			// Verify the explicit workspace dir has a config
			candidate := filepath.Join(opts.ExplicitDir, WorkspaceDirName, WorkspaceConfigFile)
			if _, statErr := os.Stat(candidate); statErr == nil {
				wsDir = opts.ExplicitDir
			}
		} else {
			cwd, cwdErr := os.Getwd()
			if cwdErr != nil {
				return cfg, "", fmt.Errorf("getting working directory: %w", cwdErr)
			}
			wsDir, err = DiscoverWorkspace(cwd)
			if err != nil {
				return cfg, "", fmt.Errorf("discovering workspace: %w", err)
			}
		}

		if wsDir != "" {
			wsConfigPath := filepath.Join(wsDir, WorkspaceDirName, WorkspaceConfigFile)
			raw, err := os.ReadFile(wsConfigPath)
			if err != nil {
				return cfg, "", fmt.Errorf("reading workspace config %s: %w", wsConfigPath, err)
			}
			if err := yaml.Unmarshal(raw, &cfg); err != nil {
				return cfg, "", fmt.Errorf("parsing workspace config %s: %w", wsConfigPath, err)
			}
			cfg = resolveWorkspacePaths(cfg, wsDir)
		}
	}

	// Layer 2: Explicit config file (--config flag)
	if explicitConfig != "" {
		raw, err := os.ReadFile(explicitConfig)
		if err != nil {
			return cfg, wsDir, fmt.Errorf("reading explicit config %s: %w", explicitConfig, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return cfg, wsDir, fmt.Errorf("parsing explicit config %s: %w", explicitConfig, err)
		}
	}

	return cfg, wsDir, cfg.Validate()
}

// InitWorkspace creates a .optout/ directory with template files at root.
func InitWorkspace(root string) error {
	wsDir := filepath.Join(root, WorkspaceDirName)

	// Check if already exists
	if _, err := os.Stat(wsDir); err == nil {
		return fmt.Errorf("workspace directory already exists: %s", wsDir)
	}

	// Create directory structure
	dirs := []string{
		wsDir,
		filepath.Join(wsDir, "schemas"),
		filepath.Join(wsDir, "data"),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0755); err != nil {
			return fmt.Errorf("creating directory %s: %w", d, err)
		}
	}

	// Write template config
	templateConfig := `# OptOut project-level configuration
# Values here override defaults but are overridden by --config and CLI flags.

# browser:
#   headless: false
#   stealth: true
#   viewport_width: 1280
#   viewport_height: 720

# engine:
#   deadline: "30s"
#   max_manage_depth: 2

# patterns:
#   path: ".optout/data/patterns"
#   auto_run: true

# facts:
#   schema_path: ".optout/schemas/project.mg"
`
	configPath := filepath.Join(wsDir, WorkspaceConfigFile)
	if err := os.WriteFile(configPath, []byte(templateConfig), 0644); err != nil {
		return fmt.Errorf("writing config template: %w", err)
	}

	// Write .gitignore for data directory
	gitignoreContent := "# Runtime data (logs, patterns, sessions) - do not version control\ndata/\n"
	gitignorePath := filepath.Join(wsDir, ".gitignore")
	if err := os.WriteFile(gitignorePath, []byte(gitignoreContent), 0644); err != nil {
		return fmt.Errorf("writing .gitignore: %w", err)
	}

	return nil
}

// resolveWorkspacePaths resolves relative paths in the config against the workspace directory.
func resolveWorkspacePaths(cfg Config, wsDir string) Config {
	resolve := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(wsDir, p)
	}

	cfg.Server.LogFile = resolve(cfg.Server.LogFile)
	cfg.Browser.SessionStore = resolve(cfg.Browser.SessionStore)
	cfg.Engine.TraceDir = resolve(cfg.Engine.TraceDir)
	cfg.Patterns.Path = resolve(cfg.Patterns.Path)
	cfg.Facts.SchemaPath = resolve(cfg.Facts.SchemaPath)
	return cfg
}

// Validate ensures required fields exist so the server can start deterministically.
func (c *Config) Validate() error {
	if c.Server.Name == "" {
		return errors.New("server.name is required")
	}
	if c.Browser.AutoStart {
		if c.Browser.DebuggerURL == "" && len(c.Browser.Launch) == 0 {
			return errors.New("browser.debugger_url or browser.launch must be provided")
		}
	}
	if !c.Patterns.InMemory && c.Patterns.Path == "" {
		return errors.New("patterns.path is required unless patterns.in_memory is set")
	}
	if c.Patterns.PromoteConfidence < 0 || c.Patterns.PromoteConfidence > 1 {
		return errors.New("patterns.promote_confidence must be between 0 and 1")
	}
	return nil
}

// NavigationTimeout returns the parsed navigation timeout with a sane default.
func (b BrowserConfig) NavigationTimeout() time.Duration {
	if b.DefaultNavigationTimeout == "" {
		return 15 * time.Second
	}
	d, err := time.ParseDuration(b.DefaultNavigationTimeout)
	if err != nil {
		return 15 * time.Second
	}
	return d
}

// AttachTimeout returns the parsed attach timeout with a sane default.
func (b BrowserConfig) AttachTimeout() time.Duration {
	if b.DefaultAttachTimeout == "" {
		return 10 * time.Second
	}
	d, err := time.ParseDuration(b.DefaultAttachTimeout)
	if err != nil {
		return 10 * time.Second
	}
	return d
}

// IsHeadless returns whether Chrome should run in headless mode (default: true).
func (b BrowserConfig) IsHeadless() bool {
	if b.Headless == nil {
		return true // default to headless
	}
	return *b.Headless
}

// IsStealth returns whether new pages get evasion scripts installed (default: true).
func (b BrowserConfig) IsStealth() bool {
	if b.Stealth == nil {
		return true
	}
	return *b.Stealth
}

// GetViewportWidth returns the viewport width with a sane default.
func (b BrowserConfig) GetViewportWidth() int {
	if b.ViewportWidth <= 0 {
		return 1920
	}
	return b.ViewportWidth
}

// GetViewportHeight returns the viewport height with a sane default.
func (b BrowserConfig) GetViewportHeight() int {
	if b.ViewportHeight <= 0 {
		return 1080
	}
	return b.ViewportHeight
}

// GetDeadline returns the run budget with a sane default.
func (e EngineConfig) GetDeadline() time.Duration {
	return parseDurationOr(e.Deadline, 30*time.Second)
}

// GetSettleDelay returns the post-mutation settle delay with a sane default.
func (e EngineConfig) GetSettleDelay() time.Duration {
	return parseDurationOr(e.SettleDelay, 400*time.Millisecond)
}

// GetRecencyWindow returns how long a dialog counts as freshly appeared.
func (e EngineConfig) GetRecencyWindow() time.Duration {
	return parseDurationOr(e.RecencyWindow, 60*time.Second)
}

// GetMaxManageDepth returns the settings-panel recursion cap (default: 2).
func (e EngineConfig) GetMaxManageDepth() int {
	if e.MaxManageDepth <= 0 {
		return 2
	}
	return e.MaxManageDepth
}

// GetActionLogLimit returns the per-run action log cap (default: 100).
func (e EngineConfig) GetActionLogLimit() int {
	if e.ActionLogLimit <= 0 {
		return 100
	}
	return e.ActionLogLimit
}

// GetMaxErrors returns the per-run error cap (default: 25).
func (e EngineConfig) GetMaxErrors() int {
	if e.MaxErrors <= 0 {
		return 25
	}
	return e.MaxErrors
}

// GetWatchWindow returns how long the mutation watcher stays armed.
func (e EngineConfig) GetWatchWindow() time.Duration {
	return parseDurationOr(e.WatchWindow, 20*time.Second)
}

// GetWatchInterval returns the mutation drain tick.
func (e EngineConfig) GetWatchInterval() time.Duration {
	return parseDurationOr(e.WatchInterval, 500*time.Millisecond)
}

// GetAutoRunInterval returns the minimum spacing between automatic runs.
func (e EngineConfig) GetAutoRunInterval() time.Duration {
	return parseDurationOr(e.AutoRunInterval, 10*time.Second)
}

// IsAutoRunEnabled reports whether dialogs trigger cleaning without an explicit call (default: true).
func (p PatternsConfig) IsAutoRunEnabled() bool {
	if p.AutoRun == nil {
		return true
	}
	return *p.AutoRun
}

// GetSiteCapacity returns the per-site pattern cap (default: 10).
func (p PatternsConfig) GetSiteCapacity() int {
	if p.SiteCapacity <= 0 {
		return 10
	}
	return p.SiteCapacity
}

// GetGlobalCapacity returns the global pattern cap (default: 500).
func (p PatternsConfig) GetGlobalCapacity() int {
	if p.GlobalCapacity <= 0 {
		return 500
	}
	return p.GlobalCapacity
}

// GetSiteExpiry returns the per-site disuse expiry (default: 90 days).
func (p PatternsConfig) GetSiteExpiry() time.Duration {
	days := p.SiteExpiryDays
	if days <= 0 {
		days = 90
	}
	return time.Duration(days) * 24 * time.Hour
}

// GetGlobalExpiry returns the global disuse expiry (default: 180 days).
func (p PatternsConfig) GetGlobalExpiry() time.Duration {
	days := p.GlobalExpiryDays
	if days <= 0 {
		days = 180
	}
	return time.Duration(days) * 24 * time.Hour
}

// GetPromoteConfidence returns the promotion confidence floor (default: 0.85).
func (p PatternsConfig) GetPromoteConfidence() float64 {
	if p.PromoteConfidence <= 0 {
		return 0.85
	}
	return p.PromoteConfidence
}

// GetPromoteUsage returns the promotion usage floor (default: 10).
func (p PatternsConfig) GetPromoteUsage() int {
	if p.PromoteUsage <= 0 {
		return 10
	}
	return p.PromoteUsage
}

// GetPromoteSites returns the promotion distinct-site floor (default: 3).
func (p PatternsConfig) GetPromoteSites() int {
	if p.PromoteSites <= 0 {
		return 3
	}
	return p.PromoteSites
}

// GetGCInterval returns the Badger GC cadence (default: 5m; zero disables).
func (p PatternsConfig) GetGCInterval() time.Duration {
	if p.GCInterval == "" {
		return 5 * time.Minute
	}
	d, err := time.ParseDuration(p.GCInterval)
	if err != nil {
		return 5 * time.Minute
	}
	return d
}

// GetGCDiscardRatio returns the Badger GC discard threshold (default: 0.5).
func (p PatternsConfig) GetGCDiscardRatio() float64 {
	if p.GCDiscardRatio <= 0 || p.GCDiscardRatio >= 1 {
		return 0.5
	}
	return p.GCDiscardRatio
}

func parseDurationOr(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}
