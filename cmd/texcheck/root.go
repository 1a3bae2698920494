package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"texcheck/internal/logging"
	"texcheck/internal/workspace"
)

// version is set at build time via -ldflags.
var version = "dev"

// errFailures signals that the harness ran fine but at least one dependency,
// profile, or pair failed. Mapped to exit code 2; harness-fatal errors are 3.
var errFailures = errors.New("failures detected")

var rootFlags struct {
	dir       string
	logLevel  string
	logFormat string
	workers   int
	compiler  string
}

var rootCmd = &cobra.Command{
	Use:   "texcheck",
	Short: "Dependency validator and compile-test harness for modular LaTeX projects",
	Long: "texcheck scans a root document for style and content dependencies,\n" +
		"synthesizes placeholders for missing files, and compile-tests the project\n" +
		"incrementally: framework only, full document, per-module isolation, and\n" +
		"pairwise integration. Failures are classified so the report names the\n" +
		"responsible file and the kind of breakage.",
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logging.Init(logging.ParseLevel(rootFlags.logLevel), rootFlags.logFormat)
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&rootFlags.dir, "dir", "C", ".", "Project directory (contains the root document)")
	pf.StringVar(&rootFlags.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	pf.StringVar(&rootFlags.logFormat, "log-format", "text", "Log format (text, json)")
	pf.IntVar(&rootFlags.workers, "workers", 0, "Parallel compile workers (0 = workspace/default)")
	pf.StringVar(&rootFlags.compiler, "compiler", "", "Compiler binary override (empty = workspace/default)")

	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(synthCmd)
	rootCmd.AddCommand(testBasicCmd)
	rootCmd.AddCommand(testFullCmd)
	rootCmd.AddCommand(testIsolatedCmd)
	rootCmd.AddCommand(testIntegrationCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(previewCmd)
	rootCmd.Version = version
}

// loadWorkspace resolves the workspace for --dir and applies flag overrides.
// Precedence: flags > env > workspace file > defaults.
func loadWorkspace() (*workspace.Workspace, error) {
	ws, err := workspace.Discover(rootFlags.dir)
	if err != nil {
		return nil, err
	}
	if rootFlags.workers > 0 {
		ws.Workers = rootFlags.workers
	}
	if rootFlags.compiler != "" {
		ws.Compiler.Binary = rootFlags.compiler
	}
	return ws, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if errors.Is(err, errFailures) {
			os.Exit(2)
		}
		fmt.Fprintln(os.Stderr, "texcheck:", err)
		os.Exit(3)
	}
}
