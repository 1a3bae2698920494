// Package classify assigns failed compile attempts to taxonomy buckets by
// pattern-matching compiler diagnostics. Classification is a deterministic
// function of the log text; it has no side effects.
package classify

import (
	"regexp"
	"strings"
)

// Category is one taxonomy bucket.
type Category string

const (
	MissingDependency Category = "MissingDependency"
	SyntaxError       Category = "SyntaxError"
	PackageConflict   Category = "PackageConflict"
	ResourceError     Category = "ResourceError"
	EncodingError     Category = "EncodingError"
	ReferenceError    Category = "ReferenceError"
	Timeout           Category = "Timeout"
	Unknown           Category = "Unknown"
)

// Classification is the assigned bucket plus the diagnostic line that
// matched. Unknown always keeps a raw excerpt for later rule extension.
type Classification struct {
	Category Category
	Excerpt  string
}

// rule pairs a diagnostic pattern with its category. The table is ordered;
// the first matching rule wins. Append new patterns, never reorder
// casually: earlier rows deliberately shadow later ones (e.g. a missing
// .sty file is MissingDependency, not the generic "not found" of
// ResourceError).
type rule struct {
	pat *regexp.Regexp
	cat Category
}

var rules = []rule{
	// Missing style/content dependency the compiler could not resolve.
	{regexp.MustCompile(`(?i)! LaTeX Error: File .+\.(sty|cls|tex)'? not found`), MissingDependency},
	{regexp.MustCompile(`(?i)missing dependency`), MissingDependency},

	// Duplicate definitions across packages/modules.
	{regexp.MustCompile(`(?i)! LaTeX Error: Command \\?\S+ already defined`), PackageConflict},
	{regexp.MustCompile(`(?i)Command \\?\S+ already defined`), PackageConflict},
	{regexp.MustCompile(`(?i)! LaTeX Error: Option clash for package`), PackageConflict},
	{regexp.MustCompile(`(?i)Environment \S+ already defined`), PackageConflict},
	{regexp.MustCompile(`(?i)Label .+ multiply defined|multiply[- ]defined labels?`), PackageConflict},

	// Character encoding problems.
	{regexp.MustCompile(`(?i)invalid utf-?8`), EncodingError},
	{regexp.MustCompile(`(?i)Package inputenc Error`), EncodingError},
	{regexp.MustCompile(`(?i)Unicode character .+ not set up`), EncodingError},

	// External resources (images, fonts, data files).
	{regexp.MustCompile(`(?i)! Unable to load picture or PDF file`), ResourceError},
	{regexp.MustCompile(`(?i)! LaTeX Error: File .+ not found`), ResourceError},
	{regexp.MustCompile(`(?i)! Font \S+ not loadable`), ResourceError},
	{regexp.MustCompile(`(?i)! Package graphics Error`), ResourceError},

	// Unresolved cross-references and citations.
	{regexp.MustCompile(`(?i)LaTeX Warning: Reference .+ undefined`), ReferenceError},
	{regexp.MustCompile(`(?i)LaTeX Warning: Citation .+ undefined`), ReferenceError},
	{regexp.MustCompile(`(?i)There were undefined references`), ReferenceError},

	// Malformed markup. Kept late: many syntax messages contain words the
	// specific categories above must claim first.
	{regexp.MustCompile(`(?i)! Undefined control sequence`), SyntaxError},
	{regexp.MustCompile(`(?i)Runaway argument`), SyntaxError},
	{regexp.MustCompile(`(?i)! Too many \}'?s`), SyntaxError},
	{regexp.MustCompile(`(?i)! Missing [{}$\\]`), SyntaxError},
	{regexp.MustCompile(`(?i)! Extra [{}$]|! Extra \\`), SyntaxError},
	{regexp.MustCompile(`(?i)File ended while scanning`), SyntaxError},
	{regexp.MustCompile(`(?i)\\begin\{\S+\} (?:on input line \d+ )?ended by \\end`), SyntaxError},
	{regexp.MustCompile(`(?i)! Emergency stop`), SyntaxError},
	{regexp.MustCompile(`(?i)unbalanced group|unmatched \\begin|unmatched \\end`), SyntaxError}, // static-check diagnostics
}

// Classify matches log text against the rule table. Exactly one category is
// returned for any input; no rule matching yields Unknown with a short raw
// excerpt attached.
func Classify(log string) Classification {
	for _, r := range rules {
		if loc := r.pat.FindStringIndex(log); loc != nil {
			return Classification{Category: r.cat, Excerpt: excerptAround(log, loc[0])}
		}
	}
	return Classification{Category: Unknown, Excerpt: rawExcerpt(log)}
}

// ClassifyConflict classifies a pair failure where both members passed in
// isolation. Isolation already ruled out self-contained syntax problems, so
// the match is biased: conflict-typical categories are tried first, and an
// otherwise unmatched log becomes PackageConflict rather than Unknown.
func ClassifyConflict(log string) Classification {
	c := Classify(log)
	switch c.Category {
	case PackageConflict, ReferenceError, Timeout:
		return c
	case Unknown:
		return Classification{Category: PackageConflict, Excerpt: c.Excerpt}
	default:
		return c
	}
}

// excerptAround returns the full log line containing offset.
func excerptAround(log string, offset int) string {
	start := strings.LastIndexByte(log[:offset], '\n') + 1
	end := strings.IndexByte(log[offset:], '\n')
	if end < 0 {
		end = len(log)
	} else {
		end += offset
	}
	return strings.TrimSpace(log[start:end])
}

// rawExcerpt returns the last non-empty lines of an unmatched log, capped,
// so Unknown classifications stay actionable.
func rawExcerpt(log string) string {
	lines := strings.Split(strings.TrimSpace(log), "\n")
	if len(lines) > 5 {
		lines = lines[len(lines)-5:]
	}
	out := strings.TrimSpace(strings.Join(lines, "\n"))
	if len(out) > 400 {
		out = out[len(out)-400:]
	}
	return out
}
