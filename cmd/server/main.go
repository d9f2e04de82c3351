package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"optout-mcp-server/internal/browser"
	"optout-mcp-server/internal/config"
	"optout-mcp-server/internal/facts"
	mcpserver "optout-mcp-server/internal/mcp"
	"optout-mcp-server/internal/patterns"
	"optout-mcp-server/internal/recorder"
	"optout-mcp-server/internal/run"
	"optout-mcp-server/internal/watch"
)

func main() {
	configPath := flag.String("config", "", "Path to an explicit OptOut config file (layered over workspace config)")
	initWorkspace := flag.Bool("init-workspace", false, "Create a .optout/ workspace in the current directory and exit")
	noWorkspace := flag.Bool("no-workspace", false, "Skip .optout/ workspace discovery")
	workspaceDir := flag.String("workspace-dir", "", "Explicit workspace root (skips upward discovery)")
	ssePort := flag.Int("sse-port", 0, "Optional SSE port override (falls back to config)")
	flag.Parse()

	if *initWorkspace {
		cwd, err := os.Getwd()
		if err != nil {
			log.Fatalf("failed to resolve working directory: %v", err)
		}
		if err := config.InitWorkspace(cwd); err != nil {
			log.Fatalf("failed to init workspace: %v", err)
		}
		log.Printf("workspace created at %s", filepath.Join(cwd, config.WorkspaceDirName))
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, workspace, err := config.LoadWithWorkspace(*configPath, config.WorkspaceOptions{
		Disable:     *noWorkspace,
		ExplicitDir: *workspaceDir,
	})
	if err != nil {
		// Before we can redirect logs, write to stderr as last resort
		log.Fatalf("failed to load config: %v", err)
	}
	if *ssePort != 0 {
		cfg.MCP.SSEPort = *ssePort
	}

	// Redirect logging to file for stdio mode (stderr interferes with MCP protocol)
	if cfg.MCP.SSEPort == 0 && cfg.Server.LogFile != "" {
		logFile, err := os.OpenFile(cfg.Server.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err == nil {
			log.SetOutput(logFile)
			defer logFile.Close()
		} else {
			// If we can't open log file, disable logging to avoid stderr pollution
			log.SetOutput(io.Discard)
		}
	}
	if workspace != "" {
		log.Printf("using workspace %s", workspace)
	}

	store, err := patterns.Open(cfg.Patterns)
	if err != nil {
		log.Fatalf("failed to open pattern store: %v", err)
	}
	defer store.Close()

	factsEngine, err := facts.NewEngine(cfg.Facts)
	if err != nil {
		log.Fatalf("failed to initialize facts engine: %v", err)
	}

	engine := run.New(cfg.Engine, store, factsEngine)

	// Auto-run wires the engine into every session's mutation watcher; when
	// disabled, dialogs wait for an explicit run-clean call.
	var runner watch.Runner
	if cfg.Patterns.IsAutoRunEnabled() {
		runner = engine
	} else {
		log.Printf("auto-run disabled; consent dialogs are cleaned on request only")
	}

	sessionManager := browser.NewSessionManager(cfg.Browser, cfg.Engine, runner)
	if cfg.Browser.AutoStart {
		if err := sessionManager.Start(ctx); err != nil {
			log.Fatalf("failed to start browser: %v", err)
		}
	} else {
		log.Printf("browser auto-start disabled; use launch-browser to connect later")
	}
	defer sessionManager.Shutdown()

	var rec *recorder.Recorder
	if cfg.Engine.TraceDir != "" {
		rec, err = recorder.NewRecorder(cfg.Engine.TraceDir)
		if err != nil {
			log.Fatalf("failed to prepare run recorder: %v", err)
		}
		if err := rec.Start(); err != nil {
			log.Fatalf("failed to start run recorder: %v", err)
		}
		defer rec.Close()
		log.Printf("run traces -> %s", rec.Path())
	}

	server, err := mcpserver.NewServer(cfg, sessionManager, engine, store, factsEngine, rec)
	if err != nil {
		log.Fatalf("failed to initialize MCP server: %v", err)
	}

	var startErr error
	if cfg.MCP.SSEPort > 0 {
		log.Printf("starting OptOut MCP SSE server on port %d", cfg.MCP.SSEPort)
		startErr = server.StartSSE(ctx, cfg.MCP.SSEPort)
	} else {
		log.Printf("starting OptOut MCP stdio server")
		startErr = server.Start(ctx)
	}

	if startErr != nil && !errors.Is(startErr, context.Canceled) {
		log.Fatalf("server exited with error: %v", startErr)
	}
}
