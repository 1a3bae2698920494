// Package validate partitions declared dependencies into present and missing.
package validate

import (
	"os"

	"texcheck/internal/document"
)

// DependencyStatus is a DependencyRef joined with the filesystem.
// Computed fresh every run; never persisted.
type DependencyStatus struct {
	Ref         document.DependencyRef
	Path        string // resolved filesystem path
	Exists      bool
	Synthesized bool // true if a placeholder was created this run
}

// Check performs a single existence check per ref, in order. A missing file
// is data, not an error; Check itself never fails.
func Check(refs []document.DependencyRef, resolve func(document.DependencyRef) string) []DependencyStatus {
	out := make([]DependencyStatus, len(refs))
	for i, ref := range refs {
		path := resolve(ref)
		_, err := os.Stat(path)
		out[i] = DependencyStatus{
			Ref:    ref,
			Path:   path,
			Exists: err == nil,
		}
	}
	return out
}

// Missing filters statuses down to the ones that need synthesis.
func Missing(statuses []DependencyStatus) []DependencyStatus {
	var out []DependencyStatus
	for _, st := range statuses {
		if !st.Exists {
			out = append(out, st)
		}
	}
	return out
}
