package mcp

import (
	"context"
	"fmt"
	"testing"

	"optout-mcp-server/internal/browser"
)

func TestLaunchBrowserTool(t *testing.T) {
	server, sessions := newTestServer(t)

	t.Run("starts the browser", func(t *testing.T) {
		result, err := server.ExecuteTool("launch-browser", map[string]interface{}{})
		if err != nil {
			t.Fatalf("ExecuteTool: %v", err)
		}
		resultMap := result.(map[string]interface{})
		if resultMap["status"] != "started" {
			t.Errorf("status = %v, want started", resultMap["status"])
		}
		if resultMap["control_url"] == "" {
			t.Error("expected a control_url")
		}
		if sessions.started != 1 {
			t.Errorf("started = %d, want 1", sessions.started)
		}
	})

	t.Run("second launch short-circuits", func(t *testing.T) {
		result, err := server.ExecuteTool("launch-browser", map[string]interface{}{})
		if err != nil {
			t.Fatalf("ExecuteTool: %v", err)
		}
		resultMap := result.(map[string]interface{})
		if resultMap["status"] != "already_connected" {
			t.Errorf("status = %v, want already_connected", resultMap["status"])
		}
		if sessions.started != 1 {
			t.Errorf("started = %d, want still 1", sessions.started)
		}
	})

	t.Run("launch failure surfaces", func(t *testing.T) {
		server, sessions := newTestServer(t)
		sessions.startErr = fmt.Errorf("chrome exited immediately")
		if _, err := server.ExecuteTool("launch-browser", map[string]interface{}{}); err == nil {
			t.Error("expected launch error")
		}
	})
}

func TestCreateSessionTool(t *testing.T) {
	server, sessions := newTestServer(t)

	t.Run("requires a running browser", func(t *testing.T) {
		if _, err := server.ExecuteTool("create-session", map[string]interface{}{}); err == nil {
			t.Error("expected error before launch-browser")
		}
	})

	if err := sessions.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	t.Run("defaults to about:blank", func(t *testing.T) {
		result, err := server.ExecuteTool("create-session", map[string]interface{}{})
		if err != nil {
			t.Fatalf("ExecuteTool: %v", err)
		}
		sess := result.(map[string]interface{})["session"].(browser.Session)
		if sess.URL != "about:blank" {
			t.Errorf("url = %q, want about:blank", sess.URL)
		}
		if sess.ID == "" {
			t.Error("expected a session id")
		}
	})

	t.Run("navigates to the given url", func(t *testing.T) {
		result, err := server.ExecuteTool("create-session", map[string]interface{}{
			"url": "https://news.example/story",
		})
		if err != nil {
			t.Fatalf("ExecuteTool: %v", err)
		}
		sess := result.(map[string]interface{})["session"].(browser.Session)
		if sess.URL != "https://news.example/story" {
			t.Errorf("url = %q", sess.URL)
		}
	})
}

func TestAttachSessionTool(t *testing.T) {
	server, sessions := newTestServer(t)
	if err := sessions.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	t.Run("requires target_id", func(t *testing.T) {
		if _, err := server.ExecuteTool("attach-session", map[string]interface{}{}); err == nil {
			t.Error("expected error for missing target_id")
		}
	})

	t.Run("attaches by target id", func(t *testing.T) {
		result, err := server.ExecuteTool("attach-session", map[string]interface{}{
			"target_id": "CAFE01",
		})
		if err != nil {
			t.Fatalf("ExecuteTool: %v", err)
		}
		sess := result.(map[string]interface{})["session"].(browser.Session)
		if sess.TargetID != "CAFE01" {
			t.Errorf("target id = %q, want CAFE01", sess.TargetID)
		}
	})
}

func TestCloseSessionTool(t *testing.T) {
	server, sessions := newTestServer(t)
	sessions.add("s1", nil)

	t.Run("requires session_id", func(t *testing.T) {
		if _, err := server.ExecuteTool("close-session", map[string]interface{}{}); err == nil {
			t.Error("expected error for missing session_id")
		}
	})

	t.Run("unknown session", func(t *testing.T) {
		if _, err := server.ExecuteTool("close-session", map[string]interface{}{"session_id": "ghost"}); err == nil {
			t.Error("expected error for unknown session")
		}
	})

	t.Run("closes and forgets", func(t *testing.T) {
		result, err := server.ExecuteTool("close-session", map[string]interface{}{"session_id": "s1"})
		if err != nil {
			t.Fatalf("ExecuteTool: %v", err)
		}
		resultMap := result.(map[string]interface{})
		if resultMap["closed"] != "s1" {
			t.Errorf("closed = %v, want s1", resultMap["closed"])
		}
		if _, ok := sessions.GetSession("s1"); ok {
			t.Error("session still listed after close")
		}
	})
}

func TestListSessionsTool(t *testing.T) {
	server, sessions := newTestServer(t)

	result, err := server.ExecuteTool("list-sessions", map[string]interface{}{})
	if err != nil {
		t.Fatalf("ExecuteTool: %v", err)
	}
	resultMap := result.(map[string]interface{})
	if resultMap["count"] != 0 {
		t.Errorf("count = %v, want 0", resultMap["count"])
	}

	sessions.add("a", nil)
	sessions.add("b", nil)

	result, err = server.ExecuteTool("list-sessions", map[string]interface{}{})
	if err != nil {
		t.Fatalf("ExecuteTool: %v", err)
	}
	resultMap = result.(map[string]interface{})
	if resultMap["count"] != 2 {
		t.Errorf("count = %v, want 2", resultMap["count"])
	}
	list := resultMap["sessions"].([]browser.Session)
	if len(list) != 2 || list[0].ID != "a" || list[1].ID != "b" {
		t.Errorf("sessions = %+v, want a then b", list)
	}
}

func TestShutdownBrowserTool(t *testing.T) {
	server, sessions := newTestServer(t)
	if err := sessions.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	sessions.add("s1", nil)

	result, err := server.ExecuteTool("shutdown-browser", map[string]interface{}{})
	if err != nil {
		t.Fatalf("ExecuteTool: %v", err)
	}
	if result.(map[string]interface{})["status"] != "stopped" {
		t.Errorf("status = %v, want stopped", result.(map[string]interface{})["status"])
	}
	if sessions.IsConnected() {
		t.Error("still connected after shutdown")
	}
	if len(sessions.List()) != 0 {
		t.Errorf("sessions = %v, want none", sessions.List())
	}
}
