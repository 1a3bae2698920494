package document

import (
	"regexp"
	"strings"
)

var (
	stylePattern  = regexp.MustCompile(`\\usepackage(?:\[[^\]]*\])?\{([^}]+)\}`)
	modulePattern = regexp.MustCompile(`\\(?:input|include)\{([^}]+)\}`)
)

// Scan extracts the ordered dependency list from raw document text.
// Duplicates are removed preserving first-seen order; declarations on
// commented-out lines are ignored. Pure function, no I/O.
func Scan(text string) []DependencyRef {
	var refs []DependencyRef
	seen := make(map[string]bool)

	add := func(name string, kind DependencyKind, line int) {
		name = strings.TrimSpace(name)
		if name == "" {
			return
		}
		key := kind.String() + ":" + name
		if seen[key] {
			return
		}
		seen[key] = true
		refs = append(refs, DependencyRef{Name: name, Kind: kind, Line: line})
	}

	for i, line := range strings.Split(text, "\n") {
		code := StripComment(line)

		for _, m := range stylePattern.FindAllStringSubmatch(code, -1) {
			// \usepackage{a,b} declares several styles at once.
			for _, name := range strings.Split(m[1], ",") {
				add(name, Style, i+1)
			}
		}
		for _, m := range modulePattern.FindAllStringSubmatch(code, -1) {
			add(m[1], Module, i+1)
		}
	}

	return refs
}

// StripComment cuts a line at the first unescaped %. TeX treats \% as a
// literal percent, so a preceding backslash keeps the rest of the line.
func StripComment(line string) string {
	for i := 0; i < len(line); i++ {
		if line[i] != '%' {
			continue
		}
		if i > 0 && line[i-1] == '\\' {
			continue
		}
		return line[:i]
	}
	return line
}
