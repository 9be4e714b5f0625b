package sandbox

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"sigs.k8s.io/yaml"

	"github.com/podpkg/podpkg/pkg/spec"
)

const specFileExt = ".podspec.yaml"

// StoreSpec records the specification a pod is being installed from, both
// in memory and as a cached copy under Specs/. The cached copy is what a
// later run compares against to decide whether the same version is already
// installed.
func (s *Sandbox) StoreSpec(sp *spec.Specification) error {
	data, err := yaml.Marshal(sp)
	if err != nil {
		return fmt.Errorf("marshaling specification %q: %w", sp.Name, err)
	}
	if err := os.WriteFile(s.SpecPath(sp.Name), data, filePerm); err != nil {
		return fmt.Errorf("writing cached specification for %q: %w", sp.Name, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.specs[sp.Name] = sp
	return nil
}

// Spec returns the stored specification for a pod, or nil if none is
// recorded.
func (s *Sandbox) Spec(name string) *spec.Specification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.specs[name]
}

// RemoveSpec discards the stored specification entry and its cached copy.
// Removing an entry that does not exist is not an error.
func (s *Sandbox) RemoveSpec(name string) error {
	s.mu.Lock()
	delete(s.specs, name)
	s.mu.Unlock()

	if err := os.Remove(s.SpecPath(name)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing cached specification for %q: %w", name, err)
	}
	return nil
}

// SpecPath returns the path of the cached specification copy for a pod.
func (s *Sandbox) SpecPath(name string) string {
	return filepath.Join(s.root, specsDirName, name+specFileExt)
}

// loadSpecs populates the stored-specification map from cached copies left
// by previous runs.
func (s *Sandbox) loadSpecs() error {
	entries, err := os.ReadDir(filepath.Join(s.root, specsDirName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading specs directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), specFileExt) {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.root, specsDirName, entry.Name()))
		if err != nil {
			return fmt.Errorf("reading cached specification %s: %w", entry.Name(), err)
		}
		sp := &spec.Specification{}
		if err := yaml.Unmarshal(data, sp); err != nil {
			return fmt.Errorf("parsing cached specification %s: %w", entry.Name(), err)
		}
		s.specs[sp.Name] = sp
	}
	return nil
}
