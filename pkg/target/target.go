// Package target describes the extension directories that get checked.
package target

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// MetadataFile is the per-extension descriptor read during discovery.
const MetadataFile = "metadata.json"

// Target is one directory of JavaScript sources to check.
type Target struct {
	// ID is the identity used to key live presentations, usually the
	// extension uuid.
	ID   string `json:"uuid"`
	Name string `json:"name"`
	URL  string `json:"url,omitempty"`
	Dir  string `json:"-"`
}

// DisplayName returns Name, falling back to ID.
func (t Target) DisplayName() string {
	if t.Name != "" {
		return t.Name
	}
	return t.ID
}

// RealDir resolves symlinks in Dir. moz60tool cannot scan a symlinked root.
func (t Target) RealDir() (string, error) {
	return ResolveDir(t.Dir)
}

// ResolveDir returns the absolute, symlink-free form of dir.
func ResolveDir(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", dir, err)
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", dir, err)
	}
	return resolved, nil
}

// FromDir builds a Target for dir. If dir holds a metadata.json its uuid, name
// and url are used; otherwise the directory path is the ID and its base name
// the Name.
func FromDir(dir string) (Target, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return Target{}, err
	}
	if !info.IsDir() {
		return Target{}, fmt.Errorf("%s is not a directory", dir)
	}

	t, err := readMetadata(dir)
	if err == nil {
		return t, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return Target{}, err
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return Target{}, err
	}
	return Target{ID: abs, Name: filepath.Base(abs), Dir: dir}, nil
}

func readMetadata(dir string) (Target, error) {
	data, err := os.ReadFile(filepath.Join(dir, MetadataFile)) //nolint:gosec // path under a configured root
	if err != nil {
		return Target{}, err
	}

	var t Target
	if err := json.Unmarshal(data, &t); err != nil {
		return Target{}, fmt.Errorf("%s: %w", filepath.Join(dir, MetadataFile), err)
	}
	if t.ID == "" {
		t.ID = filepath.Base(dir)
	}
	t.Dir = dir
	return t, nil
}

// Discover lists the extensions installed under roots. Roots that do not exist
// are skipped. When the same ID appears under several roots, the earlier root
// wins. The result is sorted by ID.
func Discover(roots []string) ([]Target, error) {
	seen := map[string]struct{}{}
	var targets []Target

	for _, root := range roots {
		entries, err := os.ReadDir(root)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("read %s: %w", root, err)
		}

		for _, entry := range entries {
			dir := filepath.Join(root, entry.Name())
			if !isDir(dir) {
				continue
			}
			t, err := readMetadata(dir)
			if err != nil {
				continue // not an extension, or unreadable descriptor
			}
			if _, dup := seen[t.ID]; dup {
				continue
			}
			seen[t.ID] = struct{}{}
			targets = append(targets, t)
		}
	}

	sort.Slice(targets, func(i, j int) bool {
		return targets[i].ID < targets[j].ID
	})
	return targets, nil
}

// isDir follows symlinks, since installed extensions are often linked in.
func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// Find returns the target with the given ID.
func Find(targets []Target, id string) (Target, bool) {
	for _, t := range targets {
		if t.ID == id {
			return t, true
		}
	}
	return Target{}, false
}
