package compiler

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, dir, rel, content string) {
	t.Helper()
	path := filepath.Join(dir, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestStatic_CleanDocumentPasses(t *testing.T) {
	work := t.TempDir()
	writeFile(t, work, "main.tex", `\documentclass{article}
\begin{document}
\section{Intro}
\input{modules/a}
\end{document}
`)
	writeFile(t, work, "modules/a.tex", `\section*{A}
Content.
`)

	att, err := NewStatic().Compile(context.Background(), Job{DocPath: "main.tex", WorkDir: work})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if !att.Passed || !att.Static {
		t.Errorf("want static pass, got %+v", att)
	}
}

func TestStatic_UnbalancedGroup(t *testing.T) {
	work := t.TempDir()
	writeFile(t, work, "main.tex", `\begin{document}
\section{Open group {
\end{document}
`)

	att, _ := NewStatic().Compile(context.Background(), Job{DocPath: "main.tex", WorkDir: work})
	if att.Passed {
		t.Fatalf("want failure, got %+v", att)
	}
	if !strings.Contains(att.Log, "unbalanced group") {
		t.Errorf("log: %q", att.Log)
	}
}

func TestStatic_MismatchedEnvironment(t *testing.T) {
	work := t.TempDir()
	writeFile(t, work, "main.tex", `\begin{itemize}
\item x
\end{enumerate}
`)

	att, _ := NewStatic().Compile(context.Background(), Job{DocPath: "main.tex", WorkDir: work})
	if att.Passed {
		t.Fatalf("want failure, got %+v", att)
	}
	if !strings.Contains(att.Log, `\begin{itemize} ended by \end{enumerate}`) {
		t.Errorf("log: %q", att.Log)
	}
}

func TestStatic_MissingInclusion(t *testing.T) {
	work := t.TempDir()
	writeFile(t, work, "main.tex", `\begin{document}
\input{modules/absent}
\end{document}
`)

	att, _ := NewStatic().Compile(context.Background(), Job{DocPath: "main.tex", WorkDir: work})
	if att.Passed {
		t.Fatalf("want failure, got %+v", att)
	}
	if !strings.Contains(att.Log, "missing dependency modules/absent.tex") {
		t.Errorf("log: %q", att.Log)
	}
}

func TestStatic_CommentedInclusionNotFollowed(t *testing.T) {
	work := t.TempDir()
	writeFile(t, work, "main.tex", `\begin{document}
% texcheck:basic \input{modules/absent}
% \begin{itemize}
\end{document}
`)

	att, _ := NewStatic().Compile(context.Background(), Job{DocPath: "main.tex", WorkDir: work})
	if !att.Passed {
		t.Errorf("commented-out declarations must be dead text: %q", att.Log)
	}
}

func TestStatic_EscapedBracesIgnored(t *testing.T) {
	work := t.TempDir()
	writeFile(t, work, "main.tex", `\begin{document}
50\% of \{groups\} are escaped % and this comment { is ignored
\end{document}
`)

	att, _ := NewStatic().Compile(context.Background(), Job{DocPath: "main.tex", WorkDir: work})
	if !att.Passed {
		t.Errorf("escapes/comments should not trip the checker: %q", att.Log)
	}
}
