package store

import (
	"time"

	"texcheck/internal/harness"
)

// RecordRun flattens a RunResult into run + attempt rows. Returns the new
// run ID so callers can reference it (history output, MCP responses).
func RecordRun(s Store, res *harness.RunResult, reportPath string) (int64, error) {
	passed, failed, conflicts := res.Counts()
	runID, err := s.SaveRun(&RunRecord{
		StartedAt:  res.StartedAt.UTC().Format(time.RFC3339),
		Outcome:    string(res.Outcome),
		Compiler:   res.CompilerName,
		Degraded:   res.StaticMode,
		Passed:     passed,
		Failed:     failed,
		Conflicts:  conflicts,
		ReportPath: reportPath,
	})
	if err != nil {
		return 0, err
	}

	save := func(ar *harness.AttemptResult, conflict bool) error {
		if ar == nil || ar.Attempt == nil {
			return nil
		}
		rec := &AttemptRecord{
			RunID:      runID,
			Target:     ar.Attempt.Target,
			Profile:    ar.Attempt.Profile,
			ExitCode:   ar.Attempt.ExitCode,
			DurationMs: ar.Attempt.Duration.Milliseconds(),
			Passed:     ar.Attempt.Passed,
			Conflict:   conflict,
		}
		if ar.Classification != nil {
			rec.Category = string(ar.Classification.Category)
			rec.Excerpt = ar.Classification.Excerpt
		}
		_, err := s.SaveAttempt(rec)
		return err
	}

	if err := save(res.Basic, false); err != nil {
		return runID, err
	}
	if err := save(res.Full, false); err != nil {
		return runID, err
	}
	for i := range res.Isolation {
		if err := save(&res.Isolation[i], false); err != nil {
			return runID, err
		}
	}
	for i := range res.Integration {
		p := &res.Integration[i]
		ar := &harness.AttemptResult{Attempt: p.Attempt, Classification: p.Classification}
		if err := save(ar, p.Conflict); err != nil {
			return runID, err
		}
	}
	return runID, nil
}
