package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"

	"optout-mcp-server/internal/browser"
	"optout-mcp-server/internal/config"
	"optout-mcp-server/internal/facts"
	"optout-mcp-server/internal/page"
	"optout-mcp-server/internal/patterns"
	"optout-mcp-server/internal/recorder"
	"optout-mcp-server/internal/run"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// Sessions is the slice of the browser session manager the tools need.
// Declared here so tool tests can stand in a fake without a running Chrome.
type Sessions interface {
	Start(ctx context.Context) error
	Shutdown()
	IsConnected() bool
	ControlURL() string
	CreateSession(ctx context.Context, url string) (browser.Session, error)
	Attach(ctx context.Context, targetID string) (browser.Session, error)
	CloseSession(id string) error
	List() []browser.Session
	GetSession(id string) (browser.Session, bool)
	DriverFor(id string) (page.Driver, error)
}

// runCtx hands tools the server's lifecycle context. The per-call context is
// cancelled as soon as the tool returns, but a launched browser connection has
// to outlive the request that asked for it.
type runCtx struct {
	mu  sync.Mutex
	ctx context.Context
}

func (r *runCtx) set(ctx context.Context) {
	r.mu.Lock()
	r.ctx = ctx
	r.mu.Unlock()
}

func (r *runCtx) get() context.Context {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ctx == nil {
		return context.Background()
	}
	return r.ctx
}

// Server wires the MCP runtime, the Rod session manager, the cleaning engine,
// and the pattern store.
type Server struct {
	cfg       config.Config
	sessions  Sessions
	engine    *run.Engine
	store     *patterns.Store
	facts     *facts.Engine
	rec       *recorder.Recorder
	life      *runCtx
	tools     map[string]Tool
	mcpServer *mcpserver.MCPServer
}

// Tool describes the contract for MCP tool implementations.
type Tool interface {
	Name() string
	Description() string
	InputSchema() map[string]interface{}
	Execute(ctx context.Context, args map[string]interface{}) (interface{}, error)
}

// NewServer constructs the optout MCP server and registers all tools. The
// recorder may be nil when run tracing is disabled.
func NewServer(cfg config.Config, sessions Sessions, engine *run.Engine, store *patterns.Store, factsEngine *facts.Engine, rec *recorder.Recorder) (*Server, error) {
	mcpSrv := mcpserver.NewMCPServer(
		cfg.Server.Name,
		cfg.Server.Version,
		mcpserver.WithResourceCapabilities(true, true),
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithLogging(),
		mcpserver.WithPromptCapabilities(false),
		mcpserver.WithRecovery(),
	)

	server := &Server{
		cfg:       cfg,
		sessions:  sessions,
		engine:    engine,
		store:     store,
		facts:     factsEngine,
		rec:       rec,
		life:      &runCtx{},
		tools:     make(map[string]Tool),
		mcpServer: mcpSrv,
	}

	server.registerAllTools()
	server.registerAllResources()
	return server, nil
}

// Start launches the stdio server (Claude/Gemini CLI default).
func (s *Server) Start(ctx context.Context) error {
	s.life.set(ctx)
	stdio := mcpserver.NewStdioServer(s.mcpServer)
	return stdio.Listen(ctx, os.Stdin, os.Stdout)
}

// StartSSE hosts the server over HTTP using SSE endpoints with graceful shutdown.
func (s *Server) StartSSE(ctx context.Context, port int) error {
	s.life.set(ctx)
	sseServer := mcpserver.NewSSEServer(s.mcpServer, mcpserver.WithBaseURL("http://localhost:"+strconv.Itoa(port)))

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Handle("/sse", sseServer.SSEHandler())
	r.Handle("/message", sseServer.MessageHandler())
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		payload := map[string]interface{}{
			"status":   "ok",
			"server":   s.cfg.Server.Name,
			"version":  s.cfg.Server.Version,
			"teaching": s.engine.Teaching(),
			"browser":  s.sessions.IsConnected(),
		}
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			log.Printf("[mcp] healthz encode: %v", err)
		}
	})

	httpServer := &http.Server{
		Addr:    ":" + strconv.Itoa(port),
		Handler: r,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		log.Printf("SSE server shutting down gracefully...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

// ExecuteTool executes a tool directly (used by demos/tests).
func (s *Server) ExecuteTool(name string, args map[string]interface{}) (interface{}, error) {
	tool, exists := s.tools[name]
	if !exists {
		return nil, fmt.Errorf("tool not found: %s", name)
	}
	return tool.Execute(context.Background(), args)
}

func (s *Server) registerAllTools() {
	// Cleaning
	s.registerTool(&RunCleanTool{sessions: s.sessions, engine: s.engine, rec: s.rec})
	s.registerTool(&ScanOnlyTool{sessions: s.sessions, engine: s.engine, rec: s.rec})

	// Teaching and learned patterns
	s.registerTool(&EnterTeachingModeTool{sessions: s.sessions, engine: s.engine})
	s.registerTool(&ExitTeachingModeTool{sessions: s.sessions, engine: s.engine, store: s.store})
	s.registerTool(&GetLearnedPatternsTool{store: s.store})

	// Browser lifecycle and sessions
	s.registerTool(&LaunchBrowserTool{sessions: s.sessions, life: s.life})
	s.registerTool(&ShutdownBrowserTool{sessions: s.sessions})
	s.registerTool(&CreateSessionTool{sessions: s.sessions})
	s.registerTool(&AttachSessionTool{sessions: s.sessions})
	s.registerTool(&ListSessionsTool{sessions: s.sessions})
	s.registerTool(&CloseSessionTool{sessions: s.sessions})

	// Fact queries
	s.registerTool(&QueryFactsTool{facts: s.facts})
	s.registerTool(&ReadFactsTool{facts: s.facts})

	// Health
	s.registerTool(&PingTool{cfg: s.cfg, sessions: s.sessions, engine: s.engine, facts: s.facts})
}

func (s *Server) registerTool(tool Tool) {
	s.tools[tool.Name()] = tool

	schema, err := json.Marshal(tool.InputSchema())
	if err != nil {
		schema = json.RawMessage(`{"type":"object"}`)
	}

	mcpTool := mcp.NewToolWithRawSchema(tool.Name(), tool.Description(), schema)
	s.mcpServer.AddTool(mcpTool, s.wrapTool(tool))
}

func (s *Server) wrapTool(tool Tool) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()
		if args == nil {
			args = map[string]interface{}{}
		}

		result, err := tool.Execute(ctx, args)
		if err != nil {
			return &mcp.CallToolResult{
				Content: []mcp.Content{mcp.NewTextContent(fmt.Sprintf("tool %s failed: %v", tool.Name(), err))},
				IsError: true,
			}, nil
		}

		payload := marshalToolPayload(tool.Name(), result)
		return &mcp.CallToolResult{
			Content: []mcp.Content{mcp.NewTextContent(string(payload))},
			IsError: false,
		}, nil
	}
}

func marshalToolPayload(toolName string, result interface{}) []byte {
	payload, marshalErr := json.Marshal(result)
	if marshalErr == nil {
		return payload
	}

	fallback := map[string]interface{}{
		"success": false,
		"error":   fmt.Sprintf("tool %s returned non-serializable payload: %v", toolName, marshalErr),
	}
	payload, fallbackErr := json.Marshal(fallback)
	if fallbackErr == nil {
		return payload
	}

	return []byte(fmt.Sprintf(`{"success":false,"error":"tool %s failed to encode payload"}`, toolName))
}
