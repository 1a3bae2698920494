// Package workspace holds the per-project configuration: where the root
// document, style files, and content modules live, how to invoke the
// compiler, and the harness policies.
package workspace

import (
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"texcheck/internal/document"
)

// CompilerConfig describes the external typesetting compiler invocation.
type CompilerConfig struct {
	Binary           string   `yaml:"binary" json:"binary"`
	Args             []string `yaml:"args" json:"args"`
	TimeoutSeconds   int      `yaml:"timeout_seconds" json:"timeout_seconds"`
	MinArtifactBytes int64    `yaml:"min_artifact_bytes" json:"min_artifact_bytes"`
}

// IntegrationConfig selects which module pairs are integration-tested.
// Policy "all" tests every pair; "sampled" tests declaration-order
// neighbours plus same-template-category pairs once the module count
// exceeds Threshold.
type IntegrationConfig struct {
	Policy    string `yaml:"policy" json:"policy"`
	Threshold int    `yaml:"threshold" json:"threshold"`
}

// Workspace is the resolved project configuration.
type Workspace struct {
	Root        string            `yaml:"-" json:"-"` // project root directory
	RootDoc     string            `yaml:"root_doc" json:"root_doc"`
	StylesDir   string            `yaml:"styles_dir" json:"styles_dir"`
	ModulesDir  string            `yaml:"modules_dir" json:"modules_dir"`
	ScratchDir  string            `yaml:"scratch_dir" json:"scratch_dir"`
	ReportPath  string            `yaml:"report_path" json:"report_path"`
	DBPath      string            `yaml:"db_path" json:"db_path"`
	Workers     int               `yaml:"workers" json:"workers"`
	Compiler    CompilerConfig    `yaml:"compiler" json:"compiler"`
	Integration IntegrationConfig `yaml:"integration" json:"integration"`
}

// Default returns the conventional layout rooted at dir.
func Default(dir string) *Workspace {
	return &Workspace{
		Root:       dir,
		RootDoc:    "main.tex",
		StylesDir:  "styles",
		ModulesDir: "modules",
		ScratchDir: ".texcheck/scratch",
		ReportPath: ".texcheck/report.md",
		DBPath:     ".texcheck/texcheck.db",
		Workers:    runtime.NumCPU(),
		Compiler: CompilerConfig{
			Binary:           "pdflatex",
			Args:             []string{"-interaction=nonstopmode", "-halt-on-error"},
			TimeoutSeconds:   30,
			MinArtifactBytes: 1024,
		},
		Integration: IntegrationConfig{Policy: "sampled", Threshold: 8},
	}
}

// RootDocPath returns the absolute path of the root document.
func (w *Workspace) RootDocPath() string { return filepath.Join(w.Root, w.RootDoc) }

// ResolveRef maps a declared dependency to its expected filesystem path.
// Styles live under StylesDir as <name>.sty. A module name carrying a path
// separator is taken as written, relative to the root document; a bare name
// resolves under ModulesDir. Extensions are appended only when the
// declaration wrote none (.sty for styles, .tex for modules).
func (w *Workspace) ResolveRef(ref document.DependencyRef) string {
	switch ref.Kind {
	case document.Style:
		name := ref.Name
		if filepath.Ext(name) == "" {
			name += ".sty"
		}
		return filepath.Join(w.Root, w.StylesDir, name)
	default:
		name := ref.Name
		if filepath.Ext(name) == "" {
			name += ".tex"
		}
		if strings.ContainsRune(ref.Name, '/') {
			return filepath.Join(w.Root, name)
		}
		return filepath.Join(w.Root, w.ModulesDir, name)
	}
}

// ApplyEnv overlays TEXCHECK_* environment variables. CLI flags are applied
// after this, so precedence is flags > env > file > defaults.
func (w *Workspace) ApplyEnv() {
	if v := os.Getenv("TEXCHECK_ROOT_DOC"); v != "" {
		w.RootDoc = v
	}
	if v := os.Getenv("TEXCHECK_STYLES_DIR"); v != "" {
		w.StylesDir = v
	}
	if v := os.Getenv("TEXCHECK_MODULES_DIR"); v != "" {
		w.ModulesDir = v
	}
	if v := os.Getenv("TEXCHECK_COMPILER"); v != "" {
		w.Compiler.Binary = v
	}
	if v := os.Getenv("TEXCHECK_WORKERS"); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && n > 0 {
			w.Workers = n
		}
	}
	if v := os.Getenv("TEXCHECK_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && n > 0 {
			w.Compiler.TimeoutSeconds = n
		}
	}
}
