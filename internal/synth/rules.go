// Package synth creates placeholder files for declared-but-missing
// dependencies, plus a companion task note describing what must be filled in.
package synth

import (
	"regexp"

	"texcheck/internal/document"
)

// Rule maps a naming pattern to a skeleton. Rules are evaluated top to
// bottom; the first match wins. The table ends in a catch-all so every
// missing dependency gets some template.
type Rule struct {
	Category string
	Pattern  *regexp.Regexp
	Skeleton SkeletonID
}

// SkeletonID names one of the fixed skeleton bodies.
type SkeletonID string

const (
	SkeletonStyle   SkeletonID = "style"
	SkeletonForm    SkeletonID = "form"
	SkeletonDiagram SkeletonID = "diagram"
	SkeletonTable   SkeletonID = "table"
	SkeletonGeneric SkeletonID = "generic"
)

// moduleRules is the ordered naming-pattern table for content modules.
// Append new rows here; control flow never changes.
var moduleRules = []Rule{
	{Category: "form", Pattern: regexp.MustCompile(`(?i)form|worksheet|exercise|quiz`), Skeleton: SkeletonForm},
	{Category: "diagram", Pattern: regexp.MustCompile(`(?i)diagram|figure|chart|graph|plot`), Skeleton: SkeletonDiagram},
	{Category: "table", Pattern: regexp.MustCompile(`(?i)table|matrix|grid|schedule`), Skeleton: SkeletonTable},
	{Category: "generic", Pattern: regexp.MustCompile(``), Skeleton: SkeletonGeneric}, // catch-all
}

// Match returns the first matching rule for a module name.
func Match(name string) Rule {
	for _, r := range moduleRules {
		if r.Pattern.MatchString(name) {
			return r
		}
	}
	// Unreachable: the catch-all matches everything.
	return moduleRules[len(moduleRules)-1]
}

// CategoryFor returns the template category a dependency falls in. Styles
// are their own category; modules go through the naming-pattern table.
// The integration tester pairs same-category modules, since they are the
// likeliest to redefine the same commands.
func CategoryFor(ref document.DependencyRef) string {
	if ref.Kind == document.Style {
		return "style"
	}
	return Match(ref.Name).Category
}
