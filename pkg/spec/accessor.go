package spec

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

// FileAccessor enumerates the source files belonging to one specification
// variant inside an installed pod directory.
type FileAccessor interface {
	// SourceFiles returns absolute paths of the variant's source files.
	SourceFiles() ([]string, error)
}

// PathAccessor expands a specification's source file globs relative to the
// pod's installed directory. Patterns follow filepath.Match syntax, with a
// trailing "/**" matching every file under a directory.
type PathAccessor struct {
	Spec *Specification
	Root string
}

var _ FileAccessor = &PathAccessor{}

func (a *PathAccessor) SourceFiles() ([]string, error) {
	seen := map[string]bool{}
	var files []string

	for _, pattern := range a.Spec.SourceFiles {
		matches, err := expandPattern(a.Root, pattern)
		if err != nil {
			return nil, fmt.Errorf("expanding pattern %q for %s: %w", pattern, a.Spec.Name, err)
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				files = append(files, m)
			}
		}
	}

	sort.Strings(files)
	return files, nil
}

func expandPattern(root, pattern string) ([]string, error) {
	// "dir/**" means every regular file under dir, recursively.
	if dir, ok := recursiveDir(pattern); ok {
		var files []string
		base := filepath.Join(root, dir)
		err := filepath.WalkDir(base, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			// VCS metadata is not source.
			if d.IsDir() && d.Name() == ".git" {
				return filepath.SkipDir
			}
			if !d.IsDir() {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			if os.IsNotExist(err) {
				return nil, nil
			}
			return nil, err
		}
		return files, nil
	}

	matches, err := filepath.Glob(filepath.Join(root, pattern))
	if err != nil {
		return nil, err
	}

	// Glob matches directories too; only files carry permissions we manage.
	var files []string
	for _, m := range matches {
		info, err := os.Stat(m)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, m)
		}
	}
	return files, nil
}

func recursiveDir(pattern string) (string, bool) {
	const suffix = "/**"
	if pattern == "**" {
		return ".", true
	}
	if len(pattern) > len(suffix) && pattern[len(pattern)-len(suffix):] == suffix {
		return pattern[:len(pattern)-len(suffix)], true
	}
	return "", false
}
