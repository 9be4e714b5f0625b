package config

import (
	"fmt"
	"os"
	"sort"

	"github.com/pelletier/go-toml/v2"

	"github.com/podpkg/podpkg/pkg/spec"
)

// LockFileName is the lockfile recording what an install actually produced.
const LockFileName = "Podfile.lock.toml"

type LockFile struct {
	Version int            `toml:"version"`
	Pods    []PodLockEntry `toml:"pods,omitempty"`
}

// PodLockEntry pins one pod: the declared source, the checkout coordinates
// actually used (when they differ, e.g. a branch resolved to a commit),
// and an integrity hash of the installed tree.
type PodLockEntry struct {
	Name      string       `toml:"name"`
	Source    *spec.Source `toml:"source,omitempty"`
	Checkout  *spec.Source `toml:"checkout,omitempty"`
	Integrity string       `toml:"integrity,omitempty"`
}

// Entry returns the lock entry for a pod, if present.
func (lf *LockFile) Entry(name string) (PodLockEntry, bool) {
	if lf == nil {
		return PodLockEntry{}, false
	}
	for _, e := range lf.Pods {
		if e.Name == name {
			return e, true
		}
	}
	return PodLockEntry{}, false
}

// Sort orders entries by pod name for stable output.
func (lf *LockFile) Sort() {
	sort.Slice(lf.Pods, func(i, j int) bool {
		return lf.Pods[i].Name < lf.Pods[j].Name
	})
}

// LoadLockFile reads a lockfile. A missing file yields a nil lockfile, not
// an error: first installs have nothing to compare against.
func LoadLockFile(path string) (*LockFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	lf := &LockFile{}
	if err := toml.Unmarshal(data, lf); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return lf, nil
}

func SaveLockFile(path string, lf *LockFile) error {
	lf.Sort()
	data, err := toml.Marshal(lf)
	if err != nil {
		return fmt.Errorf("marshaling lockfile: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
