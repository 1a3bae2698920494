package harness

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"texcheck/internal/compiler"
	"texcheck/internal/document"
	"texcheck/internal/logging"
)

// timeout returns the per-attempt hard ceiling.
func (rc *RunContext) timeout() time.Duration {
	return time.Duration(rc.Ws.Compiler.TimeoutSeconds) * time.Second
}

// compileIn stages nothing itself; it runs the compiler on docName inside
// scratch and classifies the outcome.
func (rc *RunContext) compileIn(ctx context.Context, scratch, docName, target, profile string) (*AttemptResult, error) {
	att, err := rc.Compiler.Compile(ctx, compiler.Job{
		DocPath: docName,
		WorkDir: scratch,
		Timeout: rc.timeout(),
	})
	if err != nil {
		return nil, fmt.Errorf("compile %s (%s): %w", target, profile, err)
	}
	att.Target = target
	att.Profile = profile
	return &AttemptResult{
		Target:         target,
		Attempt:        att,
		Classification: classifyAttempt(att, rc.timeout()),
	}, nil
}

// BuildBasic compiles a variant of the root document with every Module
// inclusion disabled, testing only the framework/style layer. The original
// document file is never written to.
func (rc *RunContext) BuildBasic(ctx context.Context, doc *document.Document) (*AttemptResult, error) {
	scratch, err := rc.newScratch("basic")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(scratch)

	if err := rc.stageStyles(scratch, doc); err != nil {
		return nil, err
	}
	docName := filepath.Base(doc.Path)
	if err := os.WriteFile(filepath.Join(scratch, docName), []byte(basicVariant(doc.Text)), 0644); err != nil {
		return nil, fmt.Errorf("write basic variant: %w", err)
	}

	logging.New("build").Info("compiling basic profile", "doc", docName)
	return rc.compileIn(ctx, scratch, docName, "document", "basic")
}

// BuildFull compiles the unmodified root document with every dependency
// active.
func (rc *RunContext) BuildFull(ctx context.Context, doc *document.Document) (*AttemptResult, error) {
	scratch, err := rc.newScratch("full")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(scratch)

	if err := rc.stageStyles(scratch, doc); err != nil {
		return nil, err
	}
	for _, m := range doc.Modules() {
		if err := rc.stageModule(scratch, m); err != nil {
			return nil, err
		}
	}
	docName := filepath.Base(doc.Path)
	if err := copyFile(doc.Path, filepath.Join(scratch, docName)); err != nil {
		return nil, err
	}

	logging.New("build").Info("compiling full profile", "doc", docName, "modules", len(doc.Modules()))
	return rc.compileIn(ctx, scratch, docName, "document", "full")
}
