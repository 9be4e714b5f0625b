package project

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/podpkg/podpkg/pkg/config"
	"github.com/podpkg/podpkg/pkg/spec"
)

const ManifestFile = config.PodfileName

// InferName derives a project name from the given directory path.
func InferName(dir string) string {
	return filepath.Base(dir)
}

// Init creates a Podfile.toml in dir with the given project name and one
// target per selected platform. Returns an error if the Podfile already
// exists.
func Init(dir, name string, platforms []spec.Platform) error {
	path := filepath.Join(dir, ManifestFile)

	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", ManifestFile)
	}

	pf := &config.Podfile{
		Project: config.ProjectConfig{Name: name},
		Targets: map[string]config.Target{},
		Pods:    map[string]config.PodDeclaration{},
	}
	for _, platform := range platforms {
		targetName := name
		if len(platforms) > 1 {
			targetName = name + "-" + string(platform)
		}
		pf.Targets[targetName] = config.Target{Platform: string(platform)}
	}

	data, err := pf.Marshal()
	if err != nil {
		return fmt.Errorf("marshaling podfile: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	return nil
}

// EnsureGitignore appends each entry to the .gitignore file in dir unless an
// equivalent pattern line is already there. Comment lines do not count as
// presence, so a commented-out pattern gets re-added; repeated entries in
// the request are appended once. Returns the entries actually appended.
func EnsureGitignore(dir string, entries []string) ([]string, error) {
	path := filepath.Join(dir, ".gitignore")

	existing, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	present := make(map[string]bool)
	for _, line := range strings.Split(string(existing), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		present[line] = true
	}

	var added []string
	var pending strings.Builder
	if len(existing) > 0 && existing[len(existing)-1] != '\n' {
		pending.WriteByte('\n')
	}
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" || present[entry] {
			continue
		}
		present[entry] = true
		added = append(added, entry)
		pending.WriteString(entry)
		pending.WriteByte('\n')
	}

	if len(added) == 0 {
		return nil, nil
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	if _, err := f.WriteString(pending.String()); err != nil {
		return nil, fmt.Errorf("appending to %s: %w", path, err)
	}

	return added, nil
}
