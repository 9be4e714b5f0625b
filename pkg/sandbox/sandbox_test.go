package sandbox

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/podpkg/podpkg/pkg/spec"
)

func newTestSandbox(t *testing.T) *Sandbox {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "Pods"))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return s
}

func TestPodDir(t *testing.T) {
	s := newTestSandbox(t)

	if got, want := s.PodDir("A"), filepath.Join(s.Root(), "A"); got != want {
		t.Errorf("PodDir() = %q, want %q", got, want)
	}

	s.RegisterLocalPod("A", "/home/dev/A")
	if got := s.PodDir("A"); got != "/home/dev/A" {
		t.Errorf("PodDir() after local override = %q, want the override path", got)
	}
}

func TestPreparePodDirRefusesLocalOverride(t *testing.T) {
	s := newTestSandbox(t)
	s.RegisterLocalPod("A", t.TempDir())

	if err := s.PreparePodDir("A"); err == nil {
		t.Fatal("PreparePodDir() error = nil, want refusal for user-owned path")
	}
}

func TestRemovePodDirLeavesLocalOverrides(t *testing.T) {
	s := newTestSandbox(t)

	userDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(userDir, "keep.m"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	s.RegisterLocalPod("A", userDir)

	if err := s.RemovePodDir("A"); err != nil {
		t.Fatalf("RemovePodDir() error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(userDir, "keep.m")); err != nil {
		t.Errorf("local override file was touched: %v", err)
	}
}

func TestStoreSpecRoundTrip(t *testing.T) {
	s := newTestSandbox(t)
	sp := &spec.Specification{
		Name:    "A",
		Version: "1.2.3",
		Source:  &spec.Source{Git: "https://example.com/a.git", Tag: "1.2.3"},
	}

	if err := s.StoreSpec(sp); err != nil {
		t.Fatalf("StoreSpec() error = %v", err)
	}
	if got := s.Spec("A"); !got.Equal(sp) {
		t.Errorf("Spec() = %+v, want %+v", got, sp)
	}

	// A fresh sandbox over the same root restores the cached copy.
	reloaded, err := Load(s.Root())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got := reloaded.Spec("A"); !got.Equal(sp) {
		t.Errorf("reloaded Spec() = %+v, want %+v", got, sp)
	}

	if err := s.RemoveSpec("A"); err != nil {
		t.Fatalf("RemoveSpec() error = %v", err)
	}
	if got := s.Spec("A"); got != nil {
		t.Errorf("Spec() after removal = %+v, want nil", got)
	}
	if _, err := os.Stat(s.SpecPath("A")); !os.IsNotExist(err) {
		t.Errorf("cached spec file still present after removal")
	}

	// Removing again is not an error.
	if err := s.RemoveSpec("A"); err != nil {
		t.Errorf("second RemoveSpec() error = %v", err)
	}
}

func TestManifestRoundTrip(t *testing.T) {
	s := newTestSandbox(t)

	checkout := spec.Source{Git: "https://example.com/a.git", Commit: "0123456789abcdef0123456789abcdef01234567"}
	s.StoreCheckoutSource("A", checkout)

	if err := s.SaveManifest(); err != nil {
		t.Fatalf("SaveManifest() error = %v", err)
	}

	reloaded, err := Load(s.Root())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	got, ok := reloaded.CheckoutSource("A")
	if !ok {
		t.Fatal("CheckoutSource() not found after reload")
	}
	if !got.Equal(&checkout) {
		t.Errorf("CheckoutSource() = %+v, want %+v", got, checkout)
	}

	if _, ok := reloaded.CheckoutSource("B"); ok {
		t.Error("CheckoutSource() for unknown pod = ok, want absent")
	}
}

func TestIntegrityHashIsDeterministic(t *testing.T) {
	s := newTestSandbox(t)
	if err := s.PreparePodDir("A"); err != nil {
		t.Fatal(err)
	}
	dir := s.PodDir("A")
	os.WriteFile(filepath.Join(dir, "a.m"), []byte("one"), 0o644)
	os.WriteFile(filepath.Join(dir, "b.m"), []byte("two"), 0o644)

	first, err := s.IntegrityHash("A")
	if err != nil {
		t.Fatalf("IntegrityHash() error = %v", err)
	}
	second, err := s.IntegrityHash("A")
	if err != nil {
		t.Fatalf("IntegrityHash() error = %v", err)
	}
	if first != second {
		t.Errorf("hash not deterministic: %q vs %q", first, second)
	}

	os.WriteFile(filepath.Join(dir, "b.m"), []byte("three"), 0o644)
	changed, err := s.IntegrityHash("A")
	if err != nil {
		t.Fatalf("IntegrityHash() error = %v", err)
	}
	if changed == first {
		t.Error("hash unchanged after content edit")
	}
}

func TestConcurrentAccessDistinctPods(t *testing.T) {
	s := newTestSandbox(t)

	var wg sync.WaitGroup
	names := []string{"A", "B", "C", "D", "E", "F", "G", "H"}
	for _, name := range names {
		wg.Add(1)
		go func(name string) {
			defer wg.Done()
			s.MarkPredownloaded(name)
			s.RegisterLocalPod(name, "/tmp/"+name)
			s.StoreCheckoutSource(name, spec.Source{Git: "https://example.com/" + name + ".git"})
			if !s.Predownloaded(name) || !s.IsLocalPod(name) {
				t.Errorf("lost update for %s", name)
			}
		}(name)
	}
	wg.Wait()

	for _, name := range names {
		if _, ok := s.CheckoutSource(name); !ok {
			t.Errorf("checkout source for %s missing after concurrent writes", name)
		}
	}
}
