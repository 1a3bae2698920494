package compiler

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// Static is the syntax-only fallback used when no compiler binary is
// available. It runs structural pattern checks — group balance, environment
// matching, resolvable inclusions — without invoking anything. Findings are
// written in a diagnostic dialect the classifier's rule table knows, so
// degraded runs flow through the same classification path.
type Static struct{}

// NewStatic returns the static fallback checker.
func NewStatic() *Static { return &Static{} }

func (s *Static) Name() string { return "static-check" }

var (
	beginEnv  = regexp.MustCompile(`\\begin\{([^}]+)\}`)
	endEnv    = regexp.MustCompile(`\\end\{([^}]+)\}`)
	inclusion = regexp.MustCompile(`\\(?:input|include)\{([^}]+)\}`)
)

// Compile statically checks the document and every file it inputs.
// The attempt carries Static=true so reports can state reduced confidence.
func (s *Static) Compile(ctx context.Context, job Job) (*Attempt, error) {
	start := time.Now()

	var findings []string
	checked := make(map[string]bool)
	s.checkFile(job.WorkDir, job.DocPath, checked, &findings)

	attempt := &Attempt{
		Duration: time.Since(start),
		Static:   true,
		Passed:   len(findings) == 0,
		Log:      strings.Join(findings, "\n"),
	}
	if !attempt.Passed {
		attempt.ExitCode = 1
	}
	if attempt.Passed {
		attempt.Log = "static check: ok (compiler binary unavailable, structural checks only)"
	}
	return attempt, nil
}

// checkFile validates one file and recurses into its inclusions.
func (s *Static) checkFile(workDir, rel string, checked map[string]bool, findings *[]string) {
	if checked[rel] {
		return
	}
	checked[rel] = true

	path := filepath.Join(workDir, rel)
	data, err := os.ReadFile(path)
	if err != nil {
		*findings = append(*findings, fmt.Sprintf("static check: missing dependency %s", rel))
		return
	}
	text := string(data)

	if line, ok := unbalancedGroupLine(text); ok {
		*findings = append(*findings, fmt.Sprintf("static check: unbalanced group in %s at line %d", rel, line))
	}
	// Comments are dead text: a commented-out \input or \begin must not
	// produce findings or be followed.
	stripped := stripComments(text)
	for _, msg := range mismatchedEnvironments(stripped) {
		*findings = append(*findings, fmt.Sprintf("static check: %s in %s", msg, rel))
	}

	for _, m := range inclusion.FindAllStringSubmatch(stripped, -1) {
		target := strings.TrimSpace(m[1])
		if filepath.Ext(target) == "" {
			target += ".tex"
		}
		s.checkFile(workDir, target, checked, findings)
	}
}

// stripComments removes everything from an unescaped % to end of line,
// keeping line structure intact.
func stripComments(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	escaped := false
	comment := false
	for _, r := range text {
		switch {
		case r == '\n':
			comment = false
			escaped = false
			b.WriteRune(r)
		case comment:
		case escaped:
			escaped = false
			b.WriteRune(r)
		case r == '\\':
			escaped = true
			b.WriteRune(r)
		case r == '%':
			comment = true
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// unbalancedGroupLine scans for brace balance, honouring \{ \} escapes and
// % comments. Returns the line where the balance first goes negative, or
// the last line when groups are left open.
func unbalancedGroupLine(text string) (int, bool) {
	depth := 0
	line := 1
	escaped := false
	comment := false
	for _, r := range text {
		switch {
		case r == '\n':
			line++
			comment = false
			escaped = false
		case comment:
			// skip
		case escaped:
			escaped = false
		case r == '\\':
			escaped = true
		case r == '%':
			comment = true
		case r == '{':
			depth++
		case r == '}':
			depth--
			if depth < 0 {
				return line, true
			}
		}
	}
	if depth != 0 {
		return line, true
	}
	return 0, false
}

// mismatchedEnvironments checks \begin/\end pairing with a stack.
func mismatchedEnvironments(text string) []string {
	type frame struct{ name string }
	var stack []frame
	var msgs []string

	// Interleave begin/end matches in document order.
	type mark struct {
		pos   int
		name  string
		begin bool
	}
	var marks []mark
	for _, m := range beginEnv.FindAllStringSubmatchIndex(text, -1) {
		marks = append(marks, mark{pos: m[0], name: text[m[2]:m[3]], begin: true})
	}
	for _, m := range endEnv.FindAllStringSubmatchIndex(text, -1) {
		marks = append(marks, mark{pos: m[0], name: text[m[2]:m[3]], begin: false})
	}
	for i := 1; i < len(marks); i++ {
		for j := i; j > 0 && marks[j].pos < marks[j-1].pos; j-- {
			marks[j], marks[j-1] = marks[j-1], marks[j]
		}
	}

	for _, mk := range marks {
		if mk.begin {
			stack = append(stack, frame{name: mk.name})
			continue
		}
		if len(stack) == 0 {
			msgs = append(msgs, fmt.Sprintf("unmatched \\end{%s}", mk.name))
			continue
		}
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if top.name != mk.name {
			msgs = append(msgs, fmt.Sprintf("\\begin{%s} ended by \\end{%s}", top.name, mk.name))
		}
	}
	for _, f := range stack {
		msgs = append(msgs, fmt.Sprintf("unmatched \\begin{%s}", f.name))
	}
	return msgs
}
