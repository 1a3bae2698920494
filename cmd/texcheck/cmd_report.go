package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"texcheck/internal/format"
	"texcheck/internal/harness"
	"texcheck/internal/logging"
	"texcheck/internal/report"
	"texcheck/internal/store"
)

var reportFlags struct {
	out     string
	noStore bool
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Run the full pipeline and write the report",
	Long: "Report runs the whole state machine: scan, validate, synthesize, basic\n" +
		"and full builds, then isolation and pairwise integration when needed.\n" +
		"The report is printed, written as Markdown, and the run is persisted to\n" +
		"the project history database.",
	RunE: runReport,
}

func init() {
	f := reportCmd.Flags()
	f.StringVar(&reportFlags.out, "out", "", "Report output path (default: workspace report_path)")
	f.BoolVar(&reportFlags.noStore, "no-store", false, "Skip persisting the run to the history database")
}

func runReport(cmd *cobra.Command, _ []string) error {
	ws, err := loadWorkspace()
	if err != nil {
		return err
	}
	rc := harness.NewRunContext(ws)
	res, err := rc.Run(cmd.Context())
	if err != nil {
		return err
	}

	fmt.Println(report.Generate(res, format.ASCII))

	outPath := reportFlags.out
	if outPath == "" {
		outPath = filepath.Join(ws.Root, ws.ReportPath)
	}
	if err := report.Write(outPath, report.Generate(res, format.Markdown)); err != nil {
		return err
	}

	if !reportFlags.noStore {
		if err := persistRun(ws.Root, ws.DBPath, res, outPath); err != nil {
			// History is an aid, not the deliverable; the report exists.
			logging.New("report").Warn("persist run failed", "error", err)
		}
	}

	if _, failed, _ := res.Counts(); failed > 0 || res.Outcome == harness.OutcomeDegraded {
		return errFailures
	}
	return nil
}

func persistRun(root, dbPath string, res *harness.RunResult, reportPath string) error {
	db, err := store.Open(filepath.Join(root, dbPath))
	if err != nil {
		return err
	}
	defer db.Close()
	_, err = store.RecordRun(db, res, reportPath)
	return err
}
