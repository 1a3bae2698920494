package workspace

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	yaml "gopkg.in/yaml.v3"
)

// LoadFromPath reads a workspace file (YAML or JSON), overlays it on the
// defaults for the file's directory, and returns the parsed Workspace.
// Format is detected by extension or by content (first non-whitespace char).
func LoadFromPath(path string) (*Workspace, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read workspace: %w", err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return Load(data, filepath.Ext(path), filepath.Dir(abs))
}

// Load parses workspace config from bytes over Default(root). ext is the
// file extension for the format hint; empty = detect from content.
func Load(data []byte, ext, root string) (*Workspace, error) {
	w := Default(root)

	ext = strings.ToLower(ext)
	if ext == ".yml" {
		ext = ".yaml"
	}

	switch {
	case ext == ".yaml":
		if err := yaml.Unmarshal(data, w); err != nil {
			return nil, fmt.Errorf("parse workspace yaml: %w", err)
		}
	case ext == ".json":
		if err := json.Unmarshal(data, w); err != nil {
			return nil, fmt.Errorf("parse workspace json: %w", err)
		}
	case strings.HasPrefix(strings.TrimSpace(string(data)), "{"):
		if err := json.Unmarshal(data, w); err != nil {
			return nil, fmt.Errorf("parse workspace json: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, w); err != nil {
			return nil, fmt.Errorf("parse workspace yaml: %w", err)
		}
	}

	w.Root = root
	if w.Workers < 1 {
		w.Workers = 1
	}
	return w, nil
}

// Discover loads texcheck.yaml / texcheck.yml / texcheck.json from dir if
// one exists, otherwise returns Default(dir). Env overrides apply in both
// cases.
func Discover(dir string) (*Workspace, error) {
	for _, name := range []string{"texcheck.yaml", "texcheck.yml", "texcheck.json"} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			w, err := LoadFromPath(path)
			if err != nil {
				return nil, err
			}
			w.ApplyEnv()
			return w, nil
		}
	}
	w := Default(dir)
	w.ApplyEnv()
	return w, nil
}
