package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"texcheck/internal/document"
	"texcheck/internal/synth"
	"texcheck/internal/validate"
)

var synthCmd = &cobra.Command{
	Use:   "synth",
	Short: "Create placeholder files for missing dependencies",
	Long: "Synth creates a compilable skeleton plus a companion task note for every\n" +
		"declared-but-missing dependency, chosen by naming-pattern rules. Existing\n" +
		"files are never overwritten; running twice is a no-op.",
	RunE: runSynth,
}

func runSynth(_ *cobra.Command, _ []string) error {
	ws, err := loadWorkspace()
	if err != nil {
		return err
	}
	doc, err := document.Load(ws.RootDocPath())
	if err != nil {
		return err
	}
	missing := validate.Missing(validate.Check(doc.Deps, ws.ResolveRef))
	if len(missing) == 0 {
		fmt.Println("nothing to synthesize: every declared dependency exists")
		return nil
	}

	res, err := synth.Run(missing)
	for _, e := range res.Created {
		fmt.Printf("created %s (%s skeleton) + %s\n", e.Path, e.Skeleton, e.NotePath)
	}
	for _, p := range res.Skipped {
		fmt.Printf("skipped %s (already exists)\n", p)
	}
	return err
}
