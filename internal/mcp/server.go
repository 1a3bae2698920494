// Package mcp exposes the harness over the Model Context Protocol so editor
// agents can scan a project and request runs without shelling out to the CLI.
// The server is session-less: every tool call resolves the workspace fresh.
package mcp

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"texcheck/internal/document"
	"texcheck/internal/format"
	"texcheck/internal/harness"
	"texcheck/internal/logging"
	"texcheck/internal/report"
	"texcheck/internal/store"
	"texcheck/internal/validate"
	"texcheck/internal/workspace"
)

// Server wraps the MCP SDK server.
type Server struct {
	MCPServer   *sdkmcp.Server
	ProjectRoot string
}

// NewServer creates the MCP server with the texcheck tools registered. The
// current working directory becomes the default project root; tool inputs
// may override it per call.
func NewServer(version string) *Server {
	cwd, _ := os.Getwd()
	s := &Server{ProjectRoot: cwd}
	s.MCPServer = sdkmcp.NewServer(
		&sdkmcp.Implementation{Name: "texcheck", Version: version},
		nil,
	)
	s.registerTools()
	return s
}

func (s *Server) registerTools() {
	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "scan_project",
		Description: "Scan the root document for declared style and module dependencies and report which files are missing. Read-only.",
	}, s.handleScanProject)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "run_report",
		Description: "Run the full dependency check and compile-test pipeline and return the Markdown report. May synthesize placeholder files for missing dependencies.",
	}, s.handleRunReport)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "last_report",
		Description: "Return the most recent persisted run: outcome, pass/fail counts, and per-attempt records.",
	}, s.handleLastReport)
}

// --- Tool input/output types ---

type depJSON struct {
	Name string `json:"name"`
	Kind string `json:"kind"`
	Line int    `json:"line"`
}

type scanProjectInput struct {
	Dir string `json:"dir,omitempty" jsonschema:"project directory (default: server working directory)"`
}

type scanProjectOutput struct {
	RootDoc string    `json:"root_doc"`
	Styles  []depJSON `json:"styles"`
	Modules []depJSON `json:"modules"`
	Missing []string  `json:"missing"`
}

type runReportInput struct {
	Dir string `json:"dir,omitempty" jsonschema:"project directory (default: server working directory)"`
}

type runReportOutput struct {
	RunID     int64  `json:"run_id"`
	Outcome   string `json:"outcome"`
	Degraded  bool   `json:"degraded"`
	Passed    int    `json:"passed"`
	Failed    int    `json:"failed"`
	Conflicts int    `json:"conflicts"`
	Report    string `json:"report"`
}

type lastReportInput struct {
	Dir string `json:"dir,omitempty" jsonschema:"project directory (default: server working directory)"`
}

type lastReportOutput struct {
	Found    bool                   `json:"found"`
	Run      *store.RunRecord       `json:"run,omitempty"`
	Attempts []*store.AttemptRecord `json:"attempts,omitempty"`
}

// --- Tool handlers ---

func (s *Server) workspaceFor(dir string) (*workspace.Workspace, error) {
	if dir == "" {
		dir = s.ProjectRoot
	}
	return workspace.Discover(dir)
}

func (s *Server) handleScanProject(_ context.Context, _ *sdkmcp.CallToolRequest, input scanProjectInput) (*sdkmcp.CallToolResult, scanProjectOutput, error) {
	ws, err := s.workspaceFor(input.Dir)
	if err != nil {
		return nil, scanProjectOutput{}, fmt.Errorf("scan_project: %w", err)
	}
	doc, err := document.Load(ws.RootDocPath())
	if err != nil {
		return nil, scanProjectOutput{}, fmt.Errorf("scan_project: %w", err)
	}

	out := scanProjectOutput{RootDoc: ws.RootDocPath()}
	for _, d := range doc.Styles() {
		out.Styles = append(out.Styles, depJSON{Name: d.Name, Kind: d.Kind.String(), Line: d.Line})
	}
	for _, d := range doc.Modules() {
		out.Modules = append(out.Modules, depJSON{Name: d.Name, Kind: d.Kind.String(), Line: d.Line})
	}
	for _, st := range validate.Missing(validate.Check(doc.Deps, ws.ResolveRef)) {
		out.Missing = append(out.Missing, st.Ref.Name)
	}
	return nil, out, nil
}

func (s *Server) handleRunReport(ctx context.Context, _ *sdkmcp.CallToolRequest, input runReportInput) (*sdkmcp.CallToolResult, runReportOutput, error) {
	log := logging.New("mcp")
	ws, err := s.workspaceFor(input.Dir)
	if err != nil {
		return nil, runReportOutput{}, fmt.Errorf("run_report: %w", err)
	}

	rc := harness.NewRunContext(ws)
	res, err := rc.Run(ctx)
	if err != nil {
		return nil, runReportOutput{}, fmt.Errorf("run_report: %w", err)
	}

	md := report.Generate(res, format.Markdown)
	reportPath := filepath.Join(ws.Root, ws.ReportPath)
	if err := report.Write(reportPath, md); err != nil {
		return nil, runReportOutput{}, fmt.Errorf("run_report: %w", err)
	}

	out := runReportOutput{Outcome: string(res.Outcome), Degraded: res.StaticMode, Report: md}
	out.Passed, out.Failed, out.Conflicts = res.Counts()

	db, err := store.Open(filepath.Join(ws.Root, ws.DBPath))
	if err != nil {
		// History is best-effort from MCP; the report itself already exists.
		log.Warn("run history unavailable", "error", err)
		return nil, out, nil
	}
	defer db.Close()
	if id, err := store.RecordRun(db, res, reportPath); err != nil {
		log.Warn("persist run failed", "error", err)
	} else {
		out.RunID = id
	}
	return nil, out, nil
}

func (s *Server) handleLastReport(_ context.Context, _ *sdkmcp.CallToolRequest, input lastReportInput) (*sdkmcp.CallToolResult, lastReportOutput, error) {
	ws, err := s.workspaceFor(input.Dir)
	if err != nil {
		return nil, lastReportOutput{}, fmt.Errorf("last_report: %w", err)
	}
	dbPath := filepath.Join(ws.Root, ws.DBPath)
	if _, err := os.Stat(dbPath); err != nil {
		return nil, lastReportOutput{Found: false}, nil
	}
	db, err := store.Open(dbPath)
	if err != nil {
		return nil, lastReportOutput{}, fmt.Errorf("last_report: %w", err)
	}
	defer db.Close()

	run, err := db.LastRun()
	if err != nil {
		return nil, lastReportOutput{}, fmt.Errorf("last_report: %w", err)
	}
	if run == nil {
		return nil, lastReportOutput{Found: false}, nil
	}
	attempts, err := db.ListAttemptsByRun(run.ID)
	if err != nil {
		return nil, lastReportOutput{}, fmt.Errorf("last_report: %w", err)
	}
	return nil, lastReportOutput{Found: true, Run: run, Attempts: attempts}, nil
}
