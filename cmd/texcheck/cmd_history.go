package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"texcheck/internal/format"
	"texcheck/internal/store"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List past runs from the project history database",
	Long: "History lists every persisted run with its outcome and pass/fail counts,\n" +
		"so regressions across edits are visible at a glance.",
	RunE: runHistory,
}

func runHistory(_ *cobra.Command, _ []string) error {
	ws, err := loadWorkspace()
	if err != nil {
		return err
	}
	dbPath := filepath.Join(ws.Root, ws.DBPath)
	if _, err := os.Stat(dbPath); err != nil {
		fmt.Println("no run history yet (run `texcheck report` first)")
		return nil
	}
	db, err := store.Open(dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	runs, err := db.ListRuns()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no run history yet (run `texcheck report` first)")
		return nil
	}

	t := format.NewTable(format.ASCII)
	t.Title("Run history")
	t.Header("ID", "Started", "Outcome", "Compiler", "Passed", "Failed", "Conflicts")
	t.Columns(
		format.ColumnConfig{Number: 5, Align: format.AlignRight},
		format.ColumnConfig{Number: 6, Align: format.AlignRight},
		format.ColumnConfig{Number: 7, Align: format.AlignRight},
	)
	for _, r := range runs {
		outcome := r.Outcome
		if r.Degraded {
			outcome += " (static)"
		}
		t.Row(r.ID, r.StartedAt, outcome, r.Compiler, r.Passed, r.Failed, r.Conflicts)
	}
	fmt.Println(t.String())
	return nil
}
