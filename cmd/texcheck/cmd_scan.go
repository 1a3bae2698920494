package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"texcheck/internal/document"
	"texcheck/internal/format"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "List the dependencies declared by the root document",
	Long: "Scan reads the root document and lists every \\usepackage (style) and\n" +
		"\\input/\\include (module) declaration in order of first appearance.\n" +
		"Pure read: no files are touched and nothing is compiled.",
	RunE: runScan,
}

func runScan(_ *cobra.Command, _ []string) error {
	ws, err := loadWorkspace()
	if err != nil {
		return err
	}
	doc, err := document.Load(ws.RootDocPath())
	if err != nil {
		return err
	}

	t := format.NewTable(format.ASCII)
	t.Title(fmt.Sprintf("Dependencies of %s", ws.RootDoc))
	t.Header("Name", "Kind", "Line")
	for _, d := range doc.Deps {
		t.Row(d.Name, d.Kind.String(), d.Line)
	}
	t.Footer("total", len(doc.Deps), "")
	fmt.Println(t.String())
	return nil
}
