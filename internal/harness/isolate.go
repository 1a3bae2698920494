package harness

import (
	"context"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"texcheck/internal/document"
	"texcheck/internal/logging"
)

// IsolateAll compiles every Module dependency individually inside a minimal
// synthetic harness (framework + that one module). Attempts run under a
// bounded worker pool; results land in a slice indexed by declaration order,
// so the report order never depends on completion order. Attempts share no
// mutable state: each gets its own scratch directory with its own copies of
// the framework files.
func (rc *RunContext) IsolateAll(ctx context.Context, doc *document.Document) ([]AttemptResult, error) {
	modules := doc.Modules()
	results := make([]AttemptResult, len(modules))

	log := logging.New("isolate")
	log.Info("isolation phase", "modules", len(modules), "workers", rc.Ws.Workers)

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(rc.Ws.Workers)
	for i, mod := range modules {
		g.Go(func() error {
			res, err := rc.isolateOne(gCtx, doc, mod)
			if err != nil {
				// Harness-level failure for this attempt only; record it
				// as a failed attempt rather than poisoning the others.
				log.Error("isolation attempt errored", "module", mod.Name, "error", err)
				results[i] = errorAttempt(mod.Name, "isolation", err)
				return nil
			}
			results[i] = *res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

func (rc *RunContext) isolateOne(ctx context.Context, doc *document.Document, mod document.DependencyRef) (*AttemptResult, error) {
	scratch, err := rc.newScratch("iso-" + filepath.Base(mod.Name))
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(scratch)

	if err := rc.stageStyles(scratch, doc); err != nil {
		return nil, err
	}
	if err := rc.stageModule(scratch, mod); err != nil {
		return nil, err
	}
	harnessDoc := rc.syntheticDoc(doc, mod)
	if err := os.WriteFile(filepath.Join(scratch, "harness.tex"), []byte(harnessDoc), 0644); err != nil {
		return nil, err
	}

	return rc.compileIn(ctx, scratch, "harness.tex", mod.Name, "isolation")
}
