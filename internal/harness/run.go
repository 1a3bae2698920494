package harness

import (
	"context"
	"fmt"
	"time"

	"texcheck/internal/document"
	"texcheck/internal/logging"
	"texcheck/internal/synth"
	"texcheck/internal/validate"
)

// Run drives one complete pass of the state machine. The only fatal error
// before the parallel phases is an unreadable root document; everything
// else (missing deps, synthesis write failures, compile failures) is data
// on the RunResult.
func (rc *RunContext) Run(ctx context.Context) (*RunResult, error) {
	log := logging.New("run")
	res := &RunResult{
		StartedAt:    time.Now(),
		StaticMode:   rc.StaticMode,
		CompilerName: rc.Compiler.Name(),
	}

	// Scan.
	doc, err := document.Load(rc.Ws.RootDocPath())
	if err != nil {
		return nil, fmt.Errorf("load root document: %w", err)
	}
	res.Doc = doc
	log.Info("scanned root document", "path", doc.Path, "styles", len(doc.Styles()), "modules", len(doc.Modules()))

	// Validate.
	res.Statuses = validate.Check(doc.Deps, rc.Ws.ResolveRef)

	// Synthesize. A write failure here is recorded, not fatal: the affected
	// dependencies simply stay missing and the compile phases will classify
	// them as MissingDependency.
	missing := validate.Missing(res.Statuses)
	if len(missing) > 0 {
		synthRes, err := synth.Run(missing)
		if err != nil {
			res.SynthErr = err.Error()
			log.Warn("synthesis incomplete", "error", err)
		}
		res.Synth = synthRes
		markSynthesized(res.Statuses, synthRes)
	}

	// BuildBasic. A failure here means the framework/style layer is broken;
	// content-level diagnosis would only repeat the same error per module.
	res.Basic, err = rc.BuildBasic(ctx, doc)
	if err != nil {
		return nil, err
	}
	if !res.Basic.Passed() {
		res.Outcome = OutcomeDegraded
		log.Warn("basic profile failed, stopping", "category", res.Basic.Classification.Category)
		return res, nil
	}

	// BuildFull. A pass here means the whole project compiles as-is and
	// there is nothing to isolate.
	res.Full, err = rc.BuildFull(ctx, doc)
	if err != nil {
		return nil, err
	}
	if res.Full.Passed() {
		res.Outcome = OutcomeSuccess
		log.Info("full profile passed")
		return res, nil
	}

	// IsolateAll.
	res.Isolation, err = rc.IsolateAll(ctx, doc)
	if err != nil {
		return nil, err
	}

	// Integrate over isolation survivors only: a module that fails alone
	// tells us nothing new when paired.
	survivors := isolationSurvivors(doc, res.Isolation)
	res.Integration, err = rc.Integrate(ctx, doc, survivors)
	if err != nil {
		return nil, err
	}

	res.Outcome = OutcomeFull
	return res, nil
}

// markSynthesized flips Exists/Synthesized for every status whose file the
// synthesizer just created.
func markSynthesized(statuses []validate.DependencyStatus, r *synth.Result) {
	if r == nil {
		return
	}
	created := make(map[string]bool, len(r.Created))
	for _, e := range r.Created {
		created[e.Path] = true
	}
	for i := range statuses {
		if created[statuses[i].Path] {
			statuses[i].Exists = true
			statuses[i].Synthesized = true
		}
	}
}

// isolationSurvivors returns the Module refs whose isolation attempt passed,
// in declaration order.
func isolationSurvivors(doc *document.Document, isolation []AttemptResult) []document.DependencyRef {
	mods := doc.Modules()
	var out []document.DependencyRef
	for i := range isolation {
		if i < len(mods) && isolation[i].Passed() {
			out = append(out, mods[i])
		}
	}
	return out
}
