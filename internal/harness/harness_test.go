package harness

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"texcheck/internal/classify"
	"texcheck/internal/compiler"
	"texcheck/internal/document"
	"texcheck/internal/workspace"
)

// scriptedCompiler decides pass/fail from what the harness actually staged:
// the document name (main.tex for profile builds, harness.tex for synthetic
// isolation/integration harnesses) and the staged text.
type scriptedCompiler struct {
	calls   atomic.Int64
	verdict func(docName, text string) *compiler.Attempt
}

func (s *scriptedCompiler) Name() string { return "scripted" }

func (s *scriptedCompiler) Compile(_ context.Context, job compiler.Job) (*compiler.Attempt, error) {
	s.calls.Add(1)
	data, err := os.ReadFile(filepath.Join(job.WorkDir, job.DocPath))
	if err != nil {
		return nil, err
	}
	return s.verdict(job.DocPath, string(data)), nil
}

func pass() *compiler.Attempt {
	return &compiler.Attempt{ExitCode: 0, Passed: true, Artifact: compiler.ArtifactInfo{Exists: true, Size: 4096}}
}

func fail(log string) *compiler.Attempt {
	return &compiler.Attempt{ExitCode: 1, Log: log}
}

// writeProject lays out a small project: one local style, two modules.
func writeProject(t *testing.T) *workspace.Workspace {
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
		`\input{modules/beta}`,
		`\end{document}`,
		``,
	}, "\n"))
	mustWrite("styles/mystyle.sty", "\\NeedsTeXFormat{LaTeX2e}\n\\ProvidesPackage{mystyle}\n\\endinput\n")
	mustWrite("modules/alpha.tex", "\\section{Alpha}\n")
	mustWrite("modules/beta.tex", "\\section{Beta}\n")
	return workspace.Default(root)
}

func runWith(t *testing.T, ws *workspace.Workspace, verdict func(docName, text string) *compiler.Attempt) (*RunResult, *scriptedCompiler) {
	t.Helper()
	sc := &scriptedCompiler{verdict: verdict}
	rc := &RunContext{Ws: ws, Compiler: sc}
	res, err := rc.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	return res, sc
}

func TestRun_FullPassShortCircuits(t *testing.T) {
	ws := writeProject(t)
	res, sc := runWith(t, ws, func(_, _ string) *compiler.Attempt { return pass() })

	if res.Outcome != OutcomeSuccess {
		t.Fatalf("outcome = %s, want %s", res.Outcome, OutcomeSuccess)
	}
	if got := sc.calls.Load(); got != 2 {
		t.Errorf("compile calls = %d, want 2 (basic + full only)", got)
	}
	if len(res.Isolation) != 0 || len(res.Integration) != 0 {
		t.Error("success run must not enter isolation or integration")
	}
}

func TestRun_BasicFailureStopsEverything(t *testing.T) {
	ws := writeProject(t)
	res, sc := runWith(t, ws, func(_, _ string) *compiler.Attempt {
		return fail("! LaTeX Error: File `mystyle.sty' not found.")
	})

	if res.Outcome != OutcomeDegraded {
		t.Fatalf("outcome = %s, want %s", res.Outcome, OutcomeDegraded)
	}
	if got := sc.calls.Load(); got != 1 {
		t.Errorf("compile calls = %d, want 1 (basic only)", got)
	}
	if res.Full != nil {
		t.Error("full profile must not run after basic failure")
	}
	if res.Basic.Classification == nil || res.Basic.Classification.Category != classify.MissingDependency {
		t.Errorf("classification = %+v", res.Basic.Classification)
	}
}

func TestRun_FullFailureIsolatesEveryModule(t *testing.T) {
	ws := writeProject(t)
	// Basic passes, full fails, every isolation harness and pair passes.
	res, _ := runWith(t, ws, func(docName, text string) *compiler.Attempt {
		if docName == "harness.tex" {
			return pass()
		}
		if strings.Contains(text, "% texcheck:basic") {
			return pass()
		}
		return fail("! Undefined control sequence.")
	})

	if res.Outcome != OutcomeFull {
		t.Fatalf("outcome = %s, want %s", res.Outcome, OutcomeFull)
	}
	mods := res.Doc.Modules()
	if len(res.Isolation) != len(mods) {
		t.Fatalf("isolation attempts = %d, want %d", len(res.Isolation), len(mods))
	}
	for i, ar := range res.Isolation {
		if ar.Target != mods[i].Name {
			t.Errorf("isolation[%d].Target = %q, want %q (declaration order)", i, ar.Target, mods[i].Name)
		}
	}
	if len(res.Integration) != 1 {
		t.Fatalf("integration pairs = %d, want 1", len(res.Integration))
	}
	if res.Integration[0].Conflict {
		t.Error("passing pair flagged as conflict")
	}
}

func TestRun_PairFailureAfterIsolationPassIsConflict(t *testing.T) {
	ws := writeProject(t)
	res, _ := runWith(t, ws, func(docName, text string) *compiler.Attempt {
		inputs := strings.Count(text, "\\input{modules/")
		switch {
		case strings.Contains(text, "% texcheck:basic"):
			return pass()
		case docName == "harness.tex" && inputs == 1:
			return pass()
		case docName == "harness.tex":
			return fail("! LaTeX Error: Command \\widget already defined.")
		default:
			return fail("! Undefined control sequence.")
		}
	})

	if res.Outcome != OutcomeFull {
		t.Fatalf("outcome = %s, want %s", res.Outcome, OutcomeFull)
	}
	if len(res.Integration) != 1 {
		t.Fatalf("integration pairs = %d, want 1", len(res.Integration))
	}
	pr := res.Integration[0]
	if !pr.Conflict {
		t.Fatal("pair failure after both passed isolation must be a conflict")
	}
	if pr.Classification == nil || pr.Classification.Category != classify.PackageConflict {
		t.Errorf("classification = %+v, want PackageConflict", pr.Classification)
	}
}

func TestRun_FailedIsolationModuleExcludedFromPairs(t *testing.T) {
	ws := writeProject(t)
	res, _ := runWith(t, ws, func(docName, text string) *compiler.Attempt {
		switch {
		case strings.Contains(text, "% texcheck:basic"):
			return pass()
		case docName == "harness.tex" && strings.Contains(text, "modules/beta"):
			return fail("! Undefined control sequence.")
		case docName == "harness.tex":
			return pass()
		default:
			return fail("! Undefined control sequence.")
		}
	})

	if res.Outcome != OutcomeFull {
		t.Fatalf("outcome = %s, want %s", res.Outcome, OutcomeFull)
	}
	if len(res.Integration) != 0 {
		t.Errorf("integration pairs = %d, want 0 (only one survivor)", len(res.Integration))
	}
}

func TestRun_SynthesizesMissingModule(t *testing.T) {
	ws := writeProject(t)
	if err := os.Remove(filepath.Join(ws.Root, "modules/beta.tex")); err != nil {
		t.Fatal(err)
	}
	res, _ := runWith(t, ws, func(_, _ string) *compiler.Attempt { return pass() })

	if res.Synth == nil || len(res.Synth.Created) != 1 {
		t.Fatalf("synth result = %+v, want one created entry", res.Synth)
	}
	found := false
	for i := range res.Statuses {
		if res.Statuses[i].Ref.Name == "modules/beta" {
			found = true
			if !res.Statuses[i].Exists || !res.Statuses[i].Synthesized {
				t.Errorf("beta status = %+v, want exists+synthesized", res.Statuses[i])
			}
		}
	}
	if !found {
		t.Fatal("beta status missing")
	}
	if _, err := os.Stat(filepath.Join(ws.Root, "modules/beta.tex")); err != nil {
		t.Errorf("skeleton not written: %v", err)
	}
}

func TestRun_UnreadableRootDocIsFatal(t *testing.T) {
	ws := workspace.Default(t.TempDir())
	sc := &scriptedCompiler{verdict: func(_, _ string) *compiler.Attempt { return pass() }}
	rc := &RunContext{Ws: ws, Compiler: sc}
	if _, err := rc.Run(context.Background()); err == nil {
		t.Fatal("missing root document must be fatal")
	}
	if sc.calls.Load() != 0 {
		t.Error("nothing must compile when the root document is unreadable")
	}
}

func TestBasicVariant_CommentsOnlyModuleInclusions(t *testing.T) {
	in := strings.Join([]string{
		`\usepackage{mystyle}`,
		`\input{modules/alpha}`,
		`% \input{modules/old}`,
		`Intro text. % \input{old-draft}`,
		`text line`,
	}, "\n")
	out := basicVariant(in)
	if !strings.Contains(out, `\usepackage{mystyle}`) {
		t.Error("style inclusion must stay active")
	}
	if !strings.Contains(out, `% texcheck:basic \input{modules/alpha}`) {
		t.Errorf("module inclusion not disabled:\n%s", out)
	}
	if strings.Contains(out, `% texcheck:basic % \input{modules/old}`) {
		t.Error("already-commented line must be left alone")
	}
	if strings.Contains(out, `% texcheck:basic Intro text.`) {
		t.Error("live text before a mid-line comment must survive the basic variant")
	}
	if !strings.Contains(out, "text line") {
		t.Error("unrelated lines must be untouched")
	}
}

// requiringCompiler passes only when every required file is present in the
// scratch dir, mimicking how a real compiler resolves \input.
type requiringCompiler struct {
	requires []string
}

func (c *requiringCompiler) Name() string { return "requiring" }

func (c *requiringCompiler) Compile(_ context.Context, job compiler.Job) (*compiler.Attempt, error) {
	for _, f := range c.requires {
		if _, err := os.Stat(filepath.Join(job.WorkDir, f)); err != nil {
			return fail("static check: missing dependency " + f), nil
		}
	}
	return pass(), nil
}

func TestStaging_BareModuleNameFromConfiguredModulesDir(t *testing.T) {
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
		`\begin{document}`,
		`\input{gamma}`,
		`\end{document}`,
		``,
	}, "\n"))
	mustWrite("parts/gamma.tex", "\\section{Gamma}\n")

	ws := workspace.Default(root)
	ws.ModulesDir = "parts"
	rc := &RunContext{Ws: ws, Compiler: &requiringCompiler{requires: []string{"gamma.tex"}}}

	doc, err := document.Load(ws.RootDocPath())
	if err != nil {
		t.Fatal(err)
	}

	// The declaration says \input{gamma}, so the file must be staged at
	// gamma.tex in the scratch root even though its source lives in parts/.
	results, err := rc.IsolateAll(context.Background(), doc)
	if err != nil {
		t.Fatalf("IsolateAll: %v", err)
	}
	if len(results) != 1 || !results[0].Passed() {
		t.Errorf("isolation of a ModulesDir-resolved module failed: %+v", results)
	}

	full, err := rc.BuildFull(context.Background(), doc)
	if err != nil {
		t.Fatalf("BuildFull: %v", err)
	}
	if !full.Passed() {
		t.Errorf("full build with ModulesDir-resolved module failed: %+v", full)
	}
}

func TestSelectPairs_AllPolicy(t *testing.T) {
	mods := refs("a", "b", "c", "d")
	got := SelectPairs(mods, workspace.IntegrationConfig{Policy: "all", Threshold: 2})
	if len(got) != 6 {
		t.Fatalf("pairs = %d, want 6", len(got))
	}
	if got[0][0].Name != "a" || got[0][1].Name != "b" {
		t.Errorf("first pair = %v, want (a,b)", got[0])
	}
}

func TestSelectPairs_UnderThresholdTestsAll(t *testing.T) {
	mods := refs("a", "b", "c")
	got := SelectPairs(mods, workspace.IntegrationConfig{Policy: "sampled", Threshold: 8})
	if len(got) != 3 {
		t.Fatalf("pairs = %d, want 3 (all pairs under threshold)", len(got))
	}
}

func TestSelectPairs_SampledNeighborsAndCategories(t *testing.T) {
	mods := refs(
		"modules/form-intake",
		"modules/diagram-flow",
		"modules/notes",
		"modules/form-consent",
		"modules/summary",
	)
	got := SelectPairs(mods, workspace.IntegrationConfig{Policy: "sampled", Threshold: 3})

	want := map[string]bool{
		"modules/form-intake+modules/diagram-flow": true, // neighbor
		"modules/diagram-flow+modules/notes":       true, // neighbor
		"modules/notes+modules/form-consent":       true, // neighbor
		"modules/form-consent+modules/summary":     true, // neighbor
		"modules/form-intake+modules/form-consent": true, // same skeleton family
		"modules/notes+modules/summary":            true, // both catch-all
	}
	if len(got) != len(want) {
		t.Fatalf("pairs = %d, want %d: %v", len(got), len(want), got)
	}
	for _, p := range got {
		key := p[0].Name + "+" + p[1].Name
		if !want[key] {
			t.Errorf("unexpected pair %s", key)
		}
	}
}

func TestSelectPairs_FewerThanTwoModules(t *testing.T) {
	if got := SelectPairs(refs("a"), workspace.IntegrationConfig{Policy: "all"}); got != nil {
		t.Errorf("single module must yield no pairs, got %v", got)
	}
}

func refs(names ...string) []document.DependencyRef {
	out := make([]document.DependencyRef, len(names))
	for i, n := range names {
		out[i] = document.DependencyRef{Name: n, Kind: document.Module, Line: i + 1}
	}
	return out
}
