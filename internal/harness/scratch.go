package harness

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"texcheck/internal/document"
)

// newScratch creates an isolated working directory for one compile attempt.
// Every attempt gets its own so concurrent compilations never collide on
// filenames. The label only aids debugging of leftover dirs.
func (rc *RunContext) newScratch(label string) (string, error) {
	base := filepath.Join(rc.Ws.Root, rc.Ws.ScratchDir)
	if err := os.MkdirAll(base, 0755); err != nil {
		return "", fmt.Errorf("create scratch base: %w", err)
	}
	dir, err := os.MkdirTemp(base, sanitize(label)+"-")
	if err != nil {
		return "", fmt.Errorf("create scratch dir: %w", err)
	}
	return dir, nil
}

func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-':
			return r
		default:
			return '_'
		}
	}, s)
}

// stageStyles copies every existing local style file flat into the scratch
// dir, where the compiler's input search will find it. System packages
// (e.g. inputenc) have no local file and are skipped.
func (rc *RunContext) stageStyles(scratch string, doc *document.Document) error {
	for _, ref := range doc.Styles() {
		src := rc.Ws.ResolveRef(ref)
		if _, err := os.Stat(src); err != nil {
			continue
		}
		if err := copyFile(src, filepath.Join(scratch, filepath.Base(src))); err != nil {
			return err
		}
	}
	return nil
}

// stageModule copies one module file into the scratch dir at its declared
// inclusion path, so the compiler resolves \input exactly as written even
// when the source file lives under a configured ModulesDir.
func (rc *RunContext) stageModule(scratch string, ref document.DependencyRef) error {
	src := rc.Ws.ResolveRef(ref)
	if _, err := os.Stat(src); err != nil {
		// Leave it missing; the compile attempt will report it.
		return nil
	}
	name := ref.Name
	if filepath.Ext(name) == "" {
		name += ".tex"
	}
	return copyFile(src, filepath.Join(scratch, name))
}

func copyFile(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("create dir for %s: %w", dst, err)
	}
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open %s: %w", src, err)
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create %s: %w", dst, err)
	}
	defer out.Close()
	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("copy %s: %w", dst, err)
	}
	return nil
}

// syntheticDoc builds the minimal harness document that activates the
// framework/style layer plus the given modules. Used by both the isolation
// tester (one module) and the integration tester (a pair).
func (rc *RunContext) syntheticDoc(doc *document.Document, modules ...document.DependencyRef) string {
	var b strings.Builder
	b.WriteString("\\documentclass{article}\n")
	for _, s := range doc.Styles() {
		fmt.Fprintf(&b, "\\usepackage{%s}\n", s.Name)
	}
	b.WriteString("\\begin{document}\n")
	for _, m := range modules {
		fmt.Fprintf(&b, "\\input{%s}\n", m.Name)
	}
	b.WriteString("\\end{document}\n")
	return b.String()
}

// basicVariant returns the root document text with every Module inclusion
// commented out. Style inclusions stay active. The original file is never
// touched; the variant is written to scratch only. Only the uncommented
// part of a line counts: an inclusion mentioned inside a comment must not
// disable the live text before it.
func basicVariant(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		code := document.StripComment(line)
		if strings.Contains(code, "\\input{") || strings.Contains(code, "\\include{") {
			lines[i] = "% texcheck:basic " + line
		}
	}
	return strings.Join(lines, "\n")
}
