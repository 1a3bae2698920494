package mcp_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	mcpserver "texcheck/internal/mcp"
)

func TestMain(m *testing.M) {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	})))
	os.Exit(m.Run())
}

// writeProject lays out a minimal clean project in a temp dir.
func writeProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	mustWrite := func(rel, text string) {
		path := filepath.Join(root, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(text), 0644); err != nil {
			t.Fatal(err)
		}
	}
	mustWrite("main.tex", strings.Join([]string{
		`\documentclass{article}`,
		`\usepackage{mystyle}`,
		`\begin{document}`,
		`\input{modules/alpha}`,
		`\end{document}`,
		``,
	}, "\n"))
	mustWrite("styles/mystyle.sty", "\\ProvidesPackage{mystyle}\n\\endinput\n")
	mustWrite("modules/alpha.tex", "\\section{Alpha}\n")
	// Point at a nonexistent compiler so runs use the static fallback and
	// stay hermetic regardless of what is installed on the host.
	mustWrite("texcheck.yaml", "compiler:\n  binary: texcheck-no-such-compiler\n")
	return root
}

func connectInMemory(t *testing.T, ctx context.Context, srv *mcpserver.Server) *sdkmcp.ClientSession {
	t.Helper()
	t1, t2 := sdkmcp.NewInMemoryTransports()
	serverSession, err := srv.MCPServer.Connect(ctx, t1, nil)
	if err != nil {
		t.Fatalf("server.Connect: %v", err)
	}
	t.Cleanup(func() { serverSession.Close() })

	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "test-client", Version: "v0.0.1"}, nil)
	session, err := client.Connect(ctx, t2, nil)
	if err != nil {
		t.Fatalf("client.Connect: %v", err)
	}
	t.Cleanup(func() { session.Close() })
	return session
}

func callTool(t *testing.T, ctx context.Context, session *sdkmcp.ClientSession, name string, args map[string]any) map[string]any {
	t.Helper()
	res, err := session.CallTool(ctx, &sdkmcp.CallToolParams{Name: name, Arguments: args})
	if err != nil {
		t.Fatalf("CallTool(%s): %v", name, err)
	}
	if res.IsError {
		for _, c := range res.Content {
			if tc, ok := c.(*sdkmcp.TextContent); ok {
				t.Fatalf("CallTool(%s) returned error: %s", name, tc.Text)
			}
		}
		t.Fatalf("CallTool(%s) returned error", name)
	}
	result := make(map[string]any)
	for _, c := range res.Content {
		if tc, ok := c.(*sdkmcp.TextContent); ok {
			if err := json.Unmarshal([]byte(tc.Text), &result); err != nil {
				t.Fatalf("unmarshal tool result: %v (text: %s)", err, tc.Text)
			}
			return result
		}
	}
	t.Fatalf("no text content in tool result")
	return nil
}

func TestServer_ToolDiscovery(t *testing.T) {
	srv := mcpserver.NewServer("test")
	ctx := context.Background()
	session := connectInMemory(t, ctx, srv)

	tools, err := session.ListTools(ctx, nil)
	if err != nil {
		t.Fatalf("ListTools: %v", err)
	}
	want := map[string]bool{
		"scan_project": false,
		"run_report":   false,
		"last_report":  false,
	}
	for _, tool := range tools.Tools {
		if _, ok := want[tool.Name]; ok {
			want[tool.Name] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("tool %q not found in ListTools", name)
		}
	}
}

func TestServer_ScanProject(t *testing.T) {
	root := writeProject(t)
	srv := mcpserver.NewServer("test")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	session := connectInMemory(t, ctx, srv)

	out := callTool(t, ctx, session, "scan_project", map[string]any{"dir": root})
	styles, _ := out["styles"].([]any)
	modules, _ := out["modules"].([]any)
	if len(styles) != 1 || len(modules) != 1 {
		t.Fatalf("scan: styles=%v modules=%v", out["styles"], out["modules"])
	}
	if out["missing"] != nil {
		t.Errorf("nothing should be missing, got %v", out["missing"])
	}
}

func TestServer_RunThenLastReport(t *testing.T) {
	root := writeProject(t)
	srv := mcpserver.NewServer("test")
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()
	session := connectInMemory(t, ctx, srv)

	run := callTool(t, ctx, session, "run_report", map[string]any{"dir": root})
	if run["outcome"] != "success" {
		t.Fatalf("outcome = %v, want success (static checks on a clean project)", run["outcome"])
	}
	if run["degraded"] != true {
		t.Error("nonexistent compiler binary must force degraded (static) mode")
	}
	if rep, _ := run["report"].(string); !strings.Contains(rep, "texcheck report") {
		t.Errorf("report text missing: %v", rep)
	}

	last := callTool(t, ctx, session, "last_report", map[string]any{"dir": root})
	if last["found"] != true {
		t.Fatalf("last_report found = %v, want true", last["found"])
	}
	attempts, _ := last["attempts"].([]any)
	if len(attempts) < 2 {
		t.Errorf("attempts = %v, want at least basic+full", last["attempts"])
	}
}

func TestServer_LastReportEmpty(t *testing.T) {
	root := writeProject(t)
	srv := mcpserver.NewServer("test")
	ctx := context.Background()
	session := connectInMemory(t, ctx, srv)

	out := callTool(t, ctx, session, "last_report", map[string]any{"dir": root})
	if out["found"] != false {
		t.Errorf("found = %v, want false before any run", out["found"])
	}
}
