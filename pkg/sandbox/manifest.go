package sandbox

import (
	"fmt"
	"os"
	"path/filepath"

	"sigs.k8s.io/yaml"

	"github.com/podpkg/podpkg/pkg/spec"
)

// ManifestFileName is the sandbox state file recording checkout coordinates
// between runs.
const ManifestFileName = "Manifest.yaml"

type manifest struct {
	Version   int                    `json:"version"`
	Checkouts map[string]spec.Source `json:"checkouts,omitempty"`
}

// Load opens (or initializes) a sandbox at root, restoring stored
// specifications and checkout coordinates persisted by previous runs.
func Load(root string) (*Sandbox, error) {
	s, err := New(root)
	if err != nil {
		return nil, err
	}

	if err := s.loadSpecs(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.manifestPath())
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("reading sandbox manifest: %w", err)
	}

	var m manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing sandbox manifest: %w", err)
	}
	for name, src := range m.Checkouts {
		s.checkouts[name] = src
	}
	return s, nil
}

// SaveManifest persists the checkout-coordinates map so subsequent installs
// reproduce exactly what was fetched.
func (s *Sandbox) SaveManifest() error {
	s.mu.RLock()
	m := manifest{Version: 1, Checkouts: make(map[string]spec.Source, len(s.checkouts))}
	for name, src := range s.checkouts {
		m.Checkouts[name] = src
	}
	s.mu.RUnlock()

	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshaling sandbox manifest: %w", err)
	}
	if err := os.WriteFile(s.manifestPath(), data, filePerm); err != nil {
		return fmt.Errorf("writing sandbox manifest: %w", err)
	}
	return nil
}

func (s *Sandbox) manifestPath() string {
	return filepath.Join(s.root, ManifestFileName)
}
