// Package harness drives the compile-test state machine:
//
//	Scan -> Validate -> Synthesize -> BuildBasic
//	  -> {basic failed: stop, degraded report}
//	  -> BuildFull -> {full passed: stop, success report}
//	  -> IsolateAll -> Integrate -> full report
//
// Each state runs at most once per run. All results accumulate in an
// explicit RunResult value; nothing is shared ambiently, which is what makes
// the parallel phases safe without locks.
package harness

import (
	"time"

	"texcheck/internal/classify"
	"texcheck/internal/compiler"
	"texcheck/internal/document"
	"texcheck/internal/synth"
	"texcheck/internal/validate"
	"texcheck/internal/workspace"
)

// Outcome names the terminal state of a run.
type Outcome string

const (
	// OutcomeDegraded: the Basic profile failed; the framework/style layer
	// is broken and content-level diagnosis was skipped.
	OutcomeDegraded Outcome = "degraded"
	// OutcomeSuccess: the Full profile compiled; nothing further to test.
	OutcomeSuccess Outcome = "success"
	// OutcomeFull: isolation and integration phases ran to completion.
	OutcomeFull Outcome = "full"
)

// RunContext carries the dependencies of one run. Built once by the CLI,
// passed through every stage, never mutated concurrently.
type RunContext struct {
	Ws       *workspace.Workspace
	Compiler compiler.Compiler
	// StaticMode is true when no compiler binary was found and the static
	// fallback is in use; reports must state reduced confidence.
	StaticMode bool
}

// NewRunContext detects the compiler and assembles a RunContext.
func NewRunContext(ws *workspace.Workspace) *RunContext {
	c, degraded := compiler.Detect(ws.Compiler.Binary, ws.Compiler.Args, ws.Compiler.MinArtifactBytes)
	return &RunContext{Ws: ws, Compiler: c, StaticMode: degraded}
}

// AttemptResult is one classified compile attempt.
type AttemptResult struct {
	Target         string
	Attempt        *compiler.Attempt
	Classification *classify.Classification // nil when the attempt passed
}

// Passed reports whether the underlying attempt succeeded.
func (r *AttemptResult) Passed() bool {
	return r.Attempt != nil && r.Attempt.Passed
}

// PairResult is one integration attempt over a module pair.
type PairResult struct {
	A, B           document.DependencyRef
	Attempt        *compiler.Attempt
	Classification *classify.Classification
	// Conflict is set when the pair failed although both members passed
	// isolation individually.
	Conflict bool
}

// RunResult is the complete record of one run.
type RunResult struct {
	StartedAt    time.Time
	Outcome      Outcome
	StaticMode   bool
	CompilerName string

	Doc      *document.Document
	Statuses []validate.DependencyStatus
	Synth    *synth.Result
	SynthErr string // non-fatal: affected deps stay missing and classify as MissingDependency

	Basic       *AttemptResult
	Full        *AttemptResult
	Isolation   []AttemptResult // declaration order, one per Module ref
	Integration []PairResult
}

// Counts aggregates pass/fail/conflict totals across every recorded attempt.
func (r *RunResult) Counts() (passed, failed, conflicts int) {
	tally := func(a *AttemptResult) {
		if a == nil {
			return
		}
		if a.Passed() {
			passed++
		} else {
			failed++
		}
	}
	tally(r.Basic)
	tally(r.Full)
	for i := range r.Isolation {
		tally(&r.Isolation[i])
	}
	for i := range r.Integration {
		p := &r.Integration[i]
		if p.Attempt != nil && p.Attempt.Passed {
			passed++
		} else {
			failed++
		}
		if p.Conflict {
			conflicts++
		}
	}
	return passed, failed, conflicts
}

// classifyAttempt assigns the taxonomy bucket for a failed attempt.
// Timeouts are classified here, not in the rule table: the information
// lives on the attempt, not in the log text.
func classifyAttempt(a *compiler.Attempt, budget time.Duration) *classify.Classification {
	if a.Passed {
		return nil
	}
	if a.TimedOut {
		return &classify.Classification{
			Category: classify.Timeout,
			Excerpt:  "attempt exceeded time budget " + budget.String(),
		}
	}
	c := classify.Classify(a.Log)
	return &c
}
