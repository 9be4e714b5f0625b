package sandbox

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/podpkg/podpkg/pkg/spec"
)

const (
	dirPerm    = 0o755
	filePerm   = 0o644
	hashPrefix = "sha256:"

	// DefaultRoot is the sandbox directory name inside a project.
	DefaultRoot = "Pods"

	specsDirName = "Specs"
)

// Sandbox is the on-disk workspace holding installed pod sources and the
// per-pod metadata that installation decisions consult: which pods were
// pre-downloaded during resolution, which use a local-path override, the
// specification each pod was last installed from, and the checkout
// coordinates actually used. Map accessors are safe for concurrent use by
// controllers operating on distinct pods.
type Sandbox struct {
	root string

	mu            sync.RWMutex
	predownloaded map[string]bool
	localPods     map[string]string
	specs         map[string]*spec.Specification
	checkouts     map[string]spec.Source
}

// New creates a sandbox rooted at root, creating the directory structure
// if needed.
func New(root string) (*Sandbox, error) {
	for _, dir := range []string{root, filepath.Join(root, specsDirName)} {
		if err := os.MkdirAll(dir, dirPerm); err != nil {
			return nil, fmt.Errorf("creating sandbox directory %s: %w", dir, err)
		}
	}
	return &Sandbox{
		root:          root,
		predownloaded: map[string]bool{},
		localPods:     map[string]string{},
		specs:         map[string]*spec.Specification{},
		checkouts:     map[string]spec.Source{},
	}, nil
}

// Root returns the sandbox's root directory.
func (s *Sandbox) Root() string {
	return s.root
}

// PodDir returns the directory a pod's source is installed into. For pods
// with a local-path override it returns the override path instead; that
// directory belongs to the user and is never written by the sandbox.
func (s *Sandbox) PodDir(name string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if path, ok := s.localPods[name]; ok {
		return path
	}
	return filepath.Join(s.root, name)
}

// PreparePodDir creates the pod's install directory. It refuses to touch
// local-override paths.
func (s *Sandbox) PreparePodDir(name string) error {
	if s.IsLocalPod(name) {
		return fmt.Errorf("pod %q uses a local override; its directory is user-owned", name)
	}
	return os.MkdirAll(s.PodDir(name), dirPerm)
}

// RemovePodDir deletes the pod's installed tree. No-op for local overrides.
func (s *Sandbox) RemovePodDir(name string) error {
	if s.IsLocalPod(name) {
		return nil
	}
	return os.RemoveAll(filepath.Join(s.root, name))
}

// MarkPredownloaded records that a pod's source was already fetched during
// resolution (to read its metadata) and need not be fetched again.
func (s *Sandbox) MarkPredownloaded(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.predownloaded[name] = true
}

// Predownloaded reports whether the pod was fetched during resolution.
func (s *Sandbox) Predownloaded(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.predownloaded[name]
}

// RegisterLocalPod records a local-path override for a pod. The path is
// user-owned: the sandbox will never write to, move, or delete files
// under it.
func (s *Sandbox) RegisterLocalPod(name, path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.localPods[name] = path
}

// LocalPodPath returns the override path for a pod, if one is registered.
func (s *Sandbox) LocalPodPath(name string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	path, ok := s.localPods[name]
	return path, ok
}

// IsLocalPod reports whether the pod has a local-path override.
func (s *Sandbox) IsLocalPod(name string) bool {
	_, ok := s.LocalPodPath(name)
	return ok
}

// StoreCheckoutSource records the checkout coordinates actually used for a
// pod when they differ from the declared descriptor, so subsequent runs
// reproduce exactly what was fetched.
func (s *Sandbox) StoreCheckoutSource(name string, src spec.Source) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checkouts[name] = src
}

// CheckoutSource returns the recorded checkout coordinates for a pod.
func (s *Sandbox) CheckoutSource(name string) (spec.Source, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	src, ok := s.checkouts[name]
	return src, ok
}

// IntegrityHash computes a "sha256:<hex>" hash over the pod's installed
// file contents, walking in sorted order for determinism.
func (s *Sandbox) IntegrityHash(name string) (string, error) {
	dir := s.PodDir(name)
	h := sha256.New()

	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			rel, err := filepath.Rel(dir, path)
			if err != nil {
				return err
			}
			files = append(files, rel)
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	sort.Strings(files)

	for _, f := range files {
		data, err := os.ReadFile(filepath.Join(dir, f))
		if err != nil {
			return "", err
		}
		h.Write([]byte(f))
		h.Write(data)
	}

	return hashPrefix + hex.EncodeToString(h.Sum(nil)), nil
}
