package synth

import (
	"fmt"
	"path/filepath"
	"strings"
)

// baseName strips directory and extension: "modules/worksheet-a.tex" -> "worksheet-a".
func baseName(path string) string {
	b := filepath.Base(path)
	return strings.TrimSuffix(b, filepath.Ext(b))
}

// textEscaper makes a module name safe for text mode. Names come from
// \input arguments, so only the filename-plausible specials need covering;
// underscore is the common offender ("Missing $ inserted").
var textEscaper = strings.NewReplacer(
	"_", `\_`,
	"&", `\&`,
	"#", `\#`,
	"%", `\%`,
)

func escapeText(name string) string { return textEscaper.Replace(name) }

// styleSkeleton is a minimal valid LaTeX package body.
func styleSkeleton(name string) string {
	return fmt.Sprintf(`%% %s.sty -- synthesized placeholder, fill in real definitions.
\NeedsTeXFormat{LaTeX2e}
\ProvidesPackage{%s}[2000/01/01 synthesized placeholder]
\endinput
`, name, name)
}

// skeletonBody returns the content skeleton for the given id. All bodies are
// valid by construction inside a plain article-class harness: no external
// resources, no labels, no references, and the name escaped wherever it
// lands in text mode.
func skeletonBody(id SkeletonID, name string) string {
	esc := escapeText(name)
	switch id {
	case SkeletonForm:
		return fmt.Sprintf(`%% %s -- synthesized form placeholder.
\section*{%s}
\noindent
\begin{tabular}{|p{0.6\textwidth}|p{0.3\textwidth}|}
\hline
Question & Answer \\
\hline
(fill in) & \\
\hline
\end{tabular}
`, name, esc)
	case SkeletonDiagram:
		return fmt.Sprintf(`%% %s -- synthesized diagram placeholder.
\begin{figure}[h]
\centering
\fbox{\parbox{0.8\textwidth}{\centering diagram placeholder: %s}}
\caption{%s (placeholder)}
\end{figure}
`, name, esc, esc)
	case SkeletonTable:
		return fmt.Sprintf(`%% %s -- synthesized table placeholder.
\begin{table}[h]
\centering
\begin{tabular}{|l|l|}
\hline
Item & Value \\
\hline
(fill in) & \\
\hline
\end{tabular}
\caption{%s (placeholder)}
\end{table}
`, name, esc)
	default:
		return fmt.Sprintf(`%% %s -- synthesized placeholder.
\section*{%s}
Placeholder content for \texttt{%s}. Replace with the real module body.
`, name, esc, esc)
	}
}

// taskNote is the companion human-readable note written next to a skeleton.
// Content is deliberately timestamp-free so repeated synthesis stays
// byte-identical.
func taskNote(name string, id SkeletonID, declaredAt int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# TODO: %s\n\n", name)
	fmt.Fprintf(&b, "Synthesized placeholder (skeleton: %s), declared at root document line %d.\n\n", id, declaredAt)
	b.WriteString("- [ ] Replace the placeholder body with real content\n")
	switch id {
	case SkeletonStyle:
		b.WriteString("- [ ] Define the package's commands and environments\n")
	case SkeletonForm:
		b.WriteString("- [ ] Fill in the question/answer rows\n")
	case SkeletonDiagram:
		b.WriteString("- [ ] Replace the boxed placeholder with the actual graphic\n")
	case SkeletonTable:
		b.WriteString("- [ ] Fill in the table rows and caption\n")
	}
	b.WriteString("- [ ] Delete this note once done\n")
	return b.String()
}
