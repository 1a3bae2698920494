package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"texcheck/internal/document"
	"texcheck/internal/format"
	"texcheck/internal/validate"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check that every declared dependency file exists",
	Long: "Validate resolves each declared dependency to its expected path and\n" +
		"checks existence. Missing files are listed, nothing is created.\n" +
		"Exits 2 when any dependency is missing.",
	RunE: runValidate,
}

func runValidate(_ *cobra.Command, _ []string) error {
	ws, err := loadWorkspace()
	if err != nil {
		return err
	}
	doc, err := document.Load(ws.RootDocPath())
	if err != nil {
		return err
	}
	statuses := validate.Check(doc.Deps, ws.ResolveRef)

	t := format.NewTable(format.ASCII)
	t.Title("Dependency status")
	t.Header("Name", "Kind", "Path", "Status")
	for _, st := range statuses {
		status := "present"
		if !st.Exists {
			status = "MISSING"
		}
		t.Row(st.Ref.Name, st.Ref.Kind.String(), st.Path, status)
	}
	fmt.Println(t.String())

	if missing := validate.Missing(statuses); len(missing) > 0 {
		fmt.Printf("%d missing dependencies (run `texcheck synth` to create placeholders)\n", len(missing))
		return errFailures
	}
	return nil
}
