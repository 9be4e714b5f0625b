// Package cleaner prunes installed pod directories down to the files
// referenced by at least one active platform variant.
package cleaner

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/podpkg/podpkg/pkg/spec"
)

// Cleaner deletes every file under an installed pod directory that no
// platform variant's file accessor references, then removes directories
// left empty. Callers gate it away from user-owned local paths.
type Cleaner struct {
	// NewAccessor builds the file accessor for one variant rooted at the
	// installed directory. Defaults to glob expansion.
	NewAccessor func(variant *spec.Specification, root string) spec.FileAccessor
}

func New() *Cleaner {
	return &Cleaner{}
}

func (c *Cleaner) Clean(path string, specs spec.SpecsByPlatform) error {
	referenced, err := c.referencedFiles(path, specs)
	if err != nil {
		return err
	}

	var remove []string
	err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && !referenced[p] {
			remove = append(remove, p)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("scanning %s: %w", path, err)
	}

	for _, p := range remove {
		if err := os.Remove(p); err != nil {
			return fmt.Errorf("pruning %s: %w", p, err)
		}
	}

	return removeEmptyDirs(path)
}

func (c *Cleaner) referencedFiles(root string, specs spec.SpecsByPlatform) (map[string]bool, error) {
	newAccessor := c.NewAccessor
	if newAccessor == nil {
		newAccessor = func(variant *spec.Specification, root string) spec.FileAccessor {
			return &spec.PathAccessor{Spec: variant, Root: root}
		}
	}

	referenced := map[string]bool{}
	for _, variant := range specs.Variants() {
		files, err := newAccessor(variant, root).SourceFiles()
		if err != nil {
			return nil, fmt.Errorf("listing files of %s: %w", variant.Name, err)
		}
		for _, f := range files {
			referenced[f] = true
		}
	}
	return referenced, nil
}

// removeEmptyDirs deletes empty directories bottom-up, leaving root itself
// in place.
func removeEmptyDirs(root string) error {
	var dirs []string
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() && p != root {
			dirs = append(dirs, p)
		}
		return nil
	})
	if err != nil {
		return err
	}

	// Deepest first.
	sort.Slice(dirs, func(i, j int) bool { return len(dirs[i]) > len(dirs[j]) })

	for _, dir := range dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			if err := os.Remove(dir); err != nil {
				return err
			}
		}
	}
	return nil
}
