// Package compiler abstracts the external typesetting compiler behind a
// small capability interface. Two implementations exist: a subprocess-backed
// one for a real compiler binary, and a static-analysis fallback used when
// no binary is installed. The harness depends only on the interface, so its
// logic is testable without a TeX distribution.
package compiler

import (
	"context"
	"os/exec"
	"regexp"
	"time"
)

// Job describes one compilation request.
type Job struct {
	DocPath string        // document file, relative to WorkDir
	WorkDir string        // isolated scratch working directory
	Timeout time.Duration // hard ceiling; 0 means no limit
}

// ArtifactInfo records the produced output artifact, if any. Some compilers
// exit 0 on partial failure, so existence and size are checked in addition
// to the exit code.
type ArtifactInfo struct {
	Path   string
	Exists bool
	Size   int64
}

// Attempt is one completed compiler invocation. Owned by the component that
// issued it; never mutated after creation.
type Attempt struct {
	Target   string // label set by the issuing component (document, module, pair)
	Profile  string // basic, full, isolation, integration
	ExitCode int
	Log      string
	Duration time.Duration
	TimedOut bool
	Artifact ArtifactInfo
	Static   bool // produced by the static fallback, reduced confidence
	Passed   bool
}

// Compiler is the capability interface the harness depends on.
type Compiler interface {
	// Name identifies the implementation for logs and reports.
	Name() string
	// Compile runs one job. A failed compilation is a normal Attempt, not
	// an error; errors are reserved for harness-level I/O problems.
	Compile(ctx context.Context, job Job) (*Attempt, error)
}

// refWarnings matches unresolved cross-reference diagnostics. pdflatex
// reports these as warnings with exit code 0, so Passed must account for
// them separately or a broken reference would sail through.
var refWarnings = regexp.MustCompile(`(?i)LaTeX Warning: (Reference|Citation) .+ undefined|There were undefined references`)

// Detect returns the subprocess compiler when binary is on PATH, otherwise
// the static fallback. The second return reports degraded mode.
func Detect(binary string, args []string, minArtifactBytes int64) (Compiler, bool) {
	if _, err := exec.LookPath(binary); err != nil {
		return NewStatic(), true
	}
	return NewSubprocess(binary, args, minArtifactBytes), false
}
