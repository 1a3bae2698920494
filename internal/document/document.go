// Package document models the root LaTeX compilation unit and discovers its
// declared dependencies.
//
// Two declaration forms are recognised, by fixed syntactic pattern rather
// than by parsing TeX:
//
//	\usepackage[opts]{name,name2}   -> style dependency (Kind = Style)
//	\input{path} / \include{path}   -> content dependency (Kind = Module)
//
// The kind is determined solely by which form was used, never inferred from
// the file's content.
package document

import (
	"fmt"
	"os"
)

// DependencyKind distinguishes style inclusions from content inclusions.
type DependencyKind int

const (
	Style DependencyKind = iota
	Module
)

func (k DependencyKind) String() string {
	switch k {
	case Style:
		return "style"
	case Module:
		return "module"
	default:
		return "unknown"
	}
}

// DependencyRef is one declared dependency of the root document.
type DependencyRef struct {
	Name string         // declared name/path exactly as written, braces stripped
	Kind DependencyKind //
	Line int            // 1-based line of the declaration
}

// Document is the root compilation unit. Read-only after Load.
type Document struct {
	Path string
	Text string
	Deps []DependencyRef
}

// Load reads and scans the root document. The only failure mode is an
// unreadable file; a document with zero dependencies is valid.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read root document %s: %w", path, err)
	}
	text := string(data)
	return &Document{Path: path, Text: text, Deps: Scan(text)}, nil
}

// Styles returns the Style-kind refs in declaration order.
func (d *Document) Styles() []DependencyRef { return d.byKind(Style) }

// Modules returns the Module-kind refs in declaration order.
func (d *Document) Modules() []DependencyRef { return d.byKind(Module) }

func (d *Document) byKind(k DependencyKind) []DependencyRef {
	var out []DependencyRef
	for _, ref := range d.Deps {
		if ref.Kind == k {
			out = append(out, ref)
		}
	}
	return out
}
