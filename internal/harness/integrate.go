package harness

import (
	"context"
	"os"
	"path/filepath"
	"sort"

	"golang.org/x/sync/errgroup"

	"texcheck/internal/classify"
	"texcheck/internal/compiler"
	"texcheck/internal/document"
	"texcheck/internal/logging"
	"texcheck/internal/synth"
	"texcheck/internal/workspace"
)

// pair is an index pair into the survivor slice, normalised a < b.
type pair struct{ a, b int }

// SelectPairs picks which module combinations to integration-test.
// Policy "all" (or a module count at or under the threshold) tests every
// pair. The sampled policy tests declaration-order neighbours plus every
// same-template-category pair, since same-category modules are the
// likeliest to redefine the same commands. Output order is deterministic.
func SelectPairs(mods []document.DependencyRef, cfg workspace.IntegrationConfig) [][2]document.DependencyRef {
	n := len(mods)
	if n < 2 {
		return nil
	}

	seen := make(map[pair]bool)
	var pairs []pair
	add := func(a, b int) {
		if a > b {
			a, b = b, a
		}
		p := pair{a, b}
		if a == b || seen[p] {
			return
		}
		seen[p] = true
		pairs = append(pairs, p)
	}

	if cfg.Policy == "all" || n <= cfg.Threshold {
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				add(i, j)
			}
		}
	} else {
		for i := 0; i+1 < n; i++ {
			add(i, i+1)
		}
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				if synth.CategoryFor(mods[i]) == synth.CategoryFor(mods[j]) {
					add(i, j)
				}
			}
		}
	}

	sort.Slice(pairs, func(x, y int) bool {
		if pairs[x].a != pairs[y].a {
			return pairs[x].a < pairs[y].a
		}
		return pairs[x].b < pairs[y].b
	})

	out := make([][2]document.DependencyRef, len(pairs))
	for i, p := range pairs {
		out[i] = [2]document.DependencyRef{mods[p.a], mods[p.b]}
	}
	return out
}

// Integrate compiles selected pairs of isolation survivors together to
// catch conflicts invisible in isolation (duplicate command definitions,
// label collisions). Runs under the same bounded pool as isolation.
func (rc *RunContext) Integrate(ctx context.Context, doc *document.Document, survivors []document.DependencyRef) ([]PairResult, error) {
	pairs := SelectPairs(survivors, rc.Ws.Integration)
	results := make([]PairResult, len(pairs))

	log := logging.New("integrate")
	log.Info("integration phase", "survivors", len(survivors), "pairs", len(pairs))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(rc.Ws.Workers)
	for i, pr := range pairs {
		g.Go(func() error {
			res, err := rc.integratePair(gCtx, doc, pr[0], pr[1])
			if err != nil {
				log.Error("integration attempt errored", "pair", pr[0].Name+"+"+pr[1].Name, "error", err)
				ar := errorAttempt(pr[0].Name+"+"+pr[1].Name, "integration", err)
				results[i] = PairResult{A: pr[0], B: pr[1], Attempt: ar.Attempt, Classification: ar.Classification}
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

func (rc *RunContext) integratePair(ctx context.Context, doc *document.Document, a, b document.DependencyRef) (*PairResult, error) {
	scratch, err := rc.newScratch("int-" + filepath.Base(a.Name) + "-" + filepath.Base(b.Name))
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(scratch)

	if err := rc.stageStyles(scratch, doc); err != nil {
		return nil, err
	}
	for _, m := range []document.DependencyRef{a, b} {
		if err := rc.stageModule(scratch, m); err != nil {
			return nil, err
		}
	}
	harnessDoc := rc.syntheticDoc(doc, a, b)
	if err := os.WriteFile(filepath.Join(scratch, "harness.tex"), []byte(harnessDoc), 0644); err != nil {
		return nil, err
	}

	target := a.Name + "+" + b.Name
	att, err := rc.Compiler.Compile(ctx, compiler.Job{
		DocPath: "harness.tex",
		WorkDir: scratch,
		Timeout: rc.timeout(),
	})
	if err != nil {
		return nil, err
	}
	att.Target = target
	att.Profile = "integration"

	res := &PairResult{A: a, B: b, Attempt: att}
	if !att.Passed {
		// Both members passed isolation (that is how they got here), so
		// this failure is a cross-module conflict.
		res.Conflict = true
		if att.TimedOut {
			res.Classification = classifyAttempt(att, rc.timeout())
		} else {
			c := classify.ClassifyConflict(att.Log)
			res.Classification = &c
		}
	}
	return res, nil
}

// errorAttempt wraps a harness-level error (scratch dir creation, staging)
// as a failed attempt so one broken attempt never aborts the phase.
func errorAttempt(target, profile string, err error) AttemptResult {
	return AttemptResult{
		Target: target,
		Attempt: &compiler.Attempt{
			Target:   target,
			Profile:  profile,
			ExitCode: -1,
			Log:      "harness error: " + err.Error(),
		},
		Classification: &classify.Classification{
			Category: classify.Unknown,
			Excerpt:  "harness error: " + err.Error(),
		},
	}
}
