package compiler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// maxLogBytes caps captured compiler output. TeX logs can run to megabytes;
// diagnostics cluster at the end, so the tail is kept.
const maxLogBytes = 256 * 1024

// Subprocess invokes a real compiler binary in batch mode.
type Subprocess struct {
	Binary           string
	Args             []string // non-interactive/batch flags
	MinArtifactBytes int64
}

// NewSubprocess returns a subprocess-backed compiler.
func NewSubprocess(binary string, args []string, minArtifactBytes int64) *Subprocess {
	if minArtifactBytes <= 0 {
		minArtifactBytes = 1024
	}
	return &Subprocess{Binary: binary, Args: args, MinArtifactBytes: minArtifactBytes}
}

func (s *Subprocess) Name() string { return s.Binary }

// Compile runs the binary in job.WorkDir with a hard timeout. On timeout the
// child is killed and the attempt is marked TimedOut; it is never left
// pending. Cancellation of ctx propagates to the child the same way.
func (s *Subprocess) Compile(ctx context.Context, job Job) (*Attempt, error) {
	runCtx := ctx
	var cancel context.CancelFunc
	if job.Timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, job.Timeout)
		defer cancel()
	}

	args := append(append([]string{}, s.Args...), job.DocPath)
	cmd := exec.CommandContext(runCtx, s.Binary, args...)
	cmd.Dir = job.WorkDir
	// Don't hang on inherited pipes after the kill.
	cmd.WaitDelay = 2 * time.Second

	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf

	start := time.Now()
	err := cmd.Run()
	duration := time.Since(start)

	attempt := &Attempt{
		Duration: duration,
		Log:      tailString(buf.Bytes(), maxLogBytes),
		TimedOut: errors.Is(runCtx.Err(), context.DeadlineExceeded),
	}

	switch {
	case err == nil:
		attempt.ExitCode = 0
	case cmd.ProcessState != nil:
		attempt.ExitCode = cmd.ProcessState.ExitCode()
	default:
		// The process never started: binary disappeared or workdir is
		// unusable. This is a harness-level failure.
		return nil, fmt.Errorf("start %s: %w", s.Binary, err)
	}

	attempt.Artifact = statArtifact(job)
	attempt.Passed = attempt.ExitCode == 0 &&
		!attempt.TimedOut &&
		attempt.Artifact.Exists &&
		attempt.Artifact.Size >= s.MinArtifactBytes &&
		!refWarnings.MatchString(attempt.Log)

	return attempt, nil
}

// statArtifact checks for the produced PDF next to the source document.
func statArtifact(job Job) ArtifactInfo {
	base := strings.TrimSuffix(filepath.Base(job.DocPath), filepath.Ext(job.DocPath))
	path := filepath.Join(job.WorkDir, base+".pdf")
	info := ArtifactInfo{Path: path}
	if st, err := os.Stat(path); err == nil {
		info.Exists = true
		info.Size = st.Size()
	}
	return info
}

// tailString returns at most max bytes from the end of b.
func tailString(b []byte, max int) string {
	if len(b) <= max {
		return string(b)
	}
	return string(b[len(b)-max:])
}
