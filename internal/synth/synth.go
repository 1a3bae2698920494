package synth

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"texcheck/internal/document"
	"texcheck/internal/logging"
	"texcheck/internal/validate"
)

// Entry records one synthesized placeholder.
type Entry struct {
	Ref      document.DependencyRef
	Path     string
	NotePath string
	Skeleton SkeletonID
}

// Result is the synthesis log for one run.
type Result struct {
	Created []Entry
	Skipped []string // paths that already existed when we got to them
}

// Run synthesizes a placeholder plus task note for every missing dependency.
// Deterministic: the same missing set always produces byte-identical files,
// so running twice without manual edits is a no-op the second time.
// Fails only on real I/O errors (e.g. permission denied); an already
// existing file is skipped, never an error.
func Run(missing []validate.DependencyStatus) (*Result, error) {
	log := logging.New("synth")
	res := &Result{}

	for _, st := range missing {
		if _, err := os.Stat(st.Path); err == nil {
			res.Skipped = append(res.Skipped, st.Path)
			continue
		}

		var id SkeletonID
		var body string
		name := baseName(st.Path)
		if st.Ref.Kind == document.Style {
			id = SkeletonStyle
			body = styleSkeleton(name)
		} else {
			rule := Match(st.Ref.Name)
			id = rule.Skeleton
			body = skeletonBody(id, name)
		}

		if err := os.MkdirAll(filepath.Dir(st.Path), 0755); err != nil {
			return res, fmt.Errorf("create dir for %s: %w", st.Path, err)
		}
		if err := os.WriteFile(st.Path, []byte(body), 0644); err != nil {
			return res, fmt.Errorf("write skeleton %s: %w", st.Path, err)
		}

		notePath := strings.TrimSuffix(st.Path, filepath.Ext(st.Path)) + ".todo.md"
		if err := os.WriteFile(notePath, []byte(taskNote(name, id, st.Ref.Line)), 0644); err != nil {
			return res, fmt.Errorf("write task note %s: %w", notePath, err)
		}

		log.Info("synthesized placeholder", "path", st.Path, "skeleton", string(id))
		res.Created = append(res.Created, Entry{Ref: st.Ref, Path: st.Path, NotePath: notePath, Skeleton: id})
	}

	return res, nil
}
