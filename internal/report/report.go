// Package report turns a completed run into human-readable output. Pure
// aggregation over the RunResult: nothing here re-runs or re-classifies
// anything, and modules always appear in declaration order.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"texcheck/internal/classify"
	"texcheck/internal/format"
	"texcheck/internal/harness"
)

// Generate renders the full report for one run in the given table mode.
func Generate(res *harness.RunResult, mode format.Mode) string {
	var b strings.Builder

	passed, failed, conflicts := res.Counts()

	fmt.Fprintf(&b, "# texcheck report\n\n")
	fmt.Fprintf(&b, "Started: %s\n", res.StartedAt.Format(time.RFC3339))
	fmt.Fprintf(&b, "Compiler: %s\n", res.CompilerName)
	fmt.Fprintf(&b, "Outcome: %s\n\n", outcomeLine(res))
	if res.StaticMode {
		b.WriteString("> Compiler binary unavailable: results come from structural checks only\n")
		b.WriteString("> and carry reduced confidence. Install the compiler for full diagnosis.\n\n")
	}
	if res.SynthErr != "" {
		fmt.Fprintf(&b, "> Synthesis incomplete: %s. Affected dependencies remain missing.\n\n", res.SynthErr)
	}

	b.WriteString(summaryTable(res, mode, passed, failed, conflicts))
	b.WriteString("\n\n")
	b.WriteString(dependencyTable(res, mode))
	b.WriteString("\n")

	if t := attemptTable(res, mode); t != "" {
		b.WriteString("\n")
		b.WriteString(t)
		b.WriteString("\n")
	}
	if c := conflictSection(res, mode); c != "" {
		b.WriteString("\n")
		b.WriteString(c)
	}
	if r := recommendations(res); r != "" {
		b.WriteString("\n## Recommendations\n\n")
		b.WriteString(r)
	}
	return b.String()
}

// Write persists the report to path. This is one of the two harness-fatal
// error paths: a run whose report cannot be written has not usefully run.
func Write(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

func outcomeLine(res *harness.RunResult) string {
	switch res.Outcome {
	case harness.OutcomeSuccess:
		return "success (full document compiles)"
	case harness.OutcomeDegraded:
		return "degraded (framework/style layer failed; content untested)"
	default:
		return "full diagnosis (isolation + integration completed)"
	}
}

func summaryTable(res *harness.RunResult, mode format.Mode, passed, failed, conflicts int) string {
	t := format.NewTable(mode)
	t.Title("Summary")
	t.Header("Metric", "Value")
	t.Columns(format.ColumnConfig{Number: 2, Align: format.AlignRight})
	t.Row("Styles declared", len(res.Doc.Styles()))
	t.Row("Modules declared", len(res.Doc.Modules()))
	t.Row("Synthesized placeholders", synthCount(res))
	t.Row("Attempts passed", passed)
	t.Row("Attempts failed", failed)
	t.Row("Conflicts", conflicts)
	return t.String()
}

func synthCount(res *harness.RunResult) int {
	if res.Synth == nil {
		return 0
	}
	return len(res.Synth.Created)
}

func dependencyTable(res *harness.RunResult, mode format.Mode) string {
	t := format.NewTable(mode)
	t.Title("Dependencies")
	t.Header("Name", "Kind", "Line", "Status")
	for _, st := range res.Statuses {
		status := "missing"
		switch {
		case st.Synthesized:
			status = "synthesized"
		case st.Exists:
			status = "present"
		}
		t.Row(st.Ref.Name, st.Ref.Kind.String(), st.Ref.Line, status)
	}
	return t.String()
}

func attemptTable(res *harness.RunResult, mode format.Mode) string {
	rows := collectAttempts(res)
	if len(rows) == 0 {
		return ""
	}
	t := format.NewTable(mode)
	t.Title("Compile attempts")
	t.Header("Target", "Profile", "Result", "Duration", "Category", "Detail")
	t.Columns(
		format.ColumnConfig{Number: 4, Align: format.AlignRight},
		format.ColumnConfig{Number: 6, MaxWidth: 60},
	)
	for _, ar := range rows {
		result := "pass"
		category, detail := "", ""
		if !ar.Passed() {
			result = "FAIL"
			if ar.Classification != nil {
				category = string(ar.Classification.Category)
				detail = ar.Classification.Excerpt
			}
		}
		t.Row(ar.Target, ar.Attempt.Profile, result, ar.Attempt.Duration.Round(time.Millisecond).String(), category, detail)
	}
	return t.String()
}

// collectAttempts flattens every completed attempt, profile builds first,
// then isolation in declaration order, then integration pairs.
func collectAttempts(res *harness.RunResult) []harness.AttemptResult {
	var out []harness.AttemptResult
	if res.Basic != nil {
		out = append(out, *res.Basic)
	}
	if res.Full != nil {
		out = append(out, *res.Full)
	}
	out = append(out, res.Isolation...)
	for _, p := range res.Integration {
		out = append(out, harness.AttemptResult{
			Target:         p.A.Name + " + " + p.B.Name,
			Attempt:        p.Attempt,
			Classification: p.Classification,
		})
	}
	return out
}

func conflictSection(res *harness.RunResult, mode format.Mode) string {
	var conflicts []harness.PairResult
	for _, p := range res.Integration {
		if p.Conflict {
			conflicts = append(conflicts, p)
		}
	}
	if len(conflicts) == 0 {
		return ""
	}
	t := format.NewTable(mode)
	t.Title("Conflicts (pairs that fail together but pass alone)")
	t.Header("Module A", "Module B", "Category", "Detail")
	t.Columns(format.ColumnConfig{Number: 4, MaxWidth: 60})
	for _, p := range conflicts {
		category, detail := "", ""
		if p.Classification != nil {
			category = string(p.Classification.Category)
			detail = p.Classification.Excerpt
		}
		t.Row(p.A.Name, p.B.Name, category, detail)
	}
	return t.String() + "\n"
}

// recommendations maps observed failure categories to next actions. One line
// per distinct category, in a fixed order.
func recommendations(res *harness.RunResult) string {
	seen := map[classify.Category]bool{}
	note := func(ar *harness.AttemptResult) {
		if ar != nil && ar.Classification != nil {
			seen[ar.Classification.Category] = true
		}
	}
	note(res.Basic)
	note(res.Full)
	for i := range res.Isolation {
		note(&res.Isolation[i])
	}
	for _, p := range res.Integration {
		if p.Classification != nil {
			seen[p.Classification.Category] = true
		}
	}
	if res.Synth != nil && len(res.Synth.Created) > 0 {
		seen[classify.MissingDependency] = true
	}

	var b strings.Builder
	for _, r := range adviceTable {
		if seen[r.cat] {
			fmt.Fprintf(&b, "- **%s**: %s\n", r.cat, r.advice)
		}
	}
	return b.String()
}

var adviceTable = []struct {
	cat    classify.Category
	advice string
}{
	{classify.MissingDependency, "fill in the synthesized placeholders (see the *.todo.md notes) or fix the declared path"},
	{classify.SyntaxError, "fix the markup in the named module; the isolation attempt pinpoints the file"},
	{classify.PackageConflict, "the conflicting pair redefines the same command or label; rename in one module or load order-sensitive packages once in the framework"},
	{classify.ResourceError, "a referenced image, font, or data file is absent; add it or correct the path"},
	{classify.EncodingError, "re-save the named file as UTF-8 or declare the correct input encoding"},
	{classify.ReferenceError, "a \\ref or \\cite target is undefined; add the label or run the compiler twice for cross-references"},
	{classify.Timeout, "the attempt exceeded its time budget; look for runaway loops or raise compiler.timeout_seconds"},
	{classify.Unknown, "inspect the raw log excerpt; consider adding a classification pattern"},
}
