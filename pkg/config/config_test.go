package config

import (
	"path/filepath"
	"testing"

	"github.com/podpkg/podpkg/pkg/spec"
)

func TestPodfileRoundTrip(t *testing.T) {
	pf := &Podfile{
		Project: ProjectConfig{Name: "MyApp"},
		Targets: map[string]Target{
			"MyApp": {Platform: "ios", Pods: []string{"AFNetworking", "LocalKit"}},
		},
		Pods: map[string]PodDeclaration{
			"AFNetworking": {Git: "https://github.com/AFNetworking/AFNetworking.git", Tag: "4.0.1"},
			"LocalKit":     {Path: "../LocalKit"},
			"Archive":      {HTTP: "https://example.com/archive.zip", SourceFiles: []string{"Classes/**"}},
		},
	}

	path := filepath.Join(t.TempDir(), PodfileName)
	if err := SavePodfile(path, pf); err != nil {
		t.Fatalf("SavePodfile() error = %v", err)
	}

	got, err := LoadPodfile(path)
	if err != nil {
		t.Fatalf("LoadPodfile() error = %v", err)
	}

	if got.Project.Name != "MyApp" {
		t.Errorf("Project.Name = %q", got.Project.Name)
	}
	if len(got.Pods) != 3 {
		t.Fatalf("got %d pods, want 3", len(got.Pods))
	}
	if got.Pods["AFNetworking"].Tag != "4.0.1" {
		t.Errorf("AFNetworking tag = %q", got.Pods["AFNetworking"].Tag)
	}
	if len(got.Targets["MyApp"].Pods) != 2 {
		t.Errorf("target pods = %v", got.Targets["MyApp"].Pods)
	}
}

func TestPodDeclarationExternalSource(t *testing.T) {
	tests := map[string]struct {
		decl PodDeclaration
		want bool
	}{
		"registry git":      {decl: PodDeclaration{Git: "https://example.com/a.git"}},
		"http archive":      {decl: PodDeclaration{HTTP: "https://example.com/a.zip"}},
		"direct podspec":    {decl: PodDeclaration{Podspec: "https://example.com/A.podspec"}, want: true},
		"local path":        {decl: PodDeclaration{Path: "../A"}, want: true},
		"path plus podspec": {decl: PodDeclaration{Path: "../A", Podspec: "x"}, want: true},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			if got := tc.decl.ExternalSource(); got != tc.want {
				t.Errorf("ExternalSource() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestDeclarationSource(t *testing.T) {
	decl := PodDeclaration{Git: "https://example.com/a.git", Branch: "main"}
	src := decl.Source()
	want := &spec.Source{Git: "https://example.com/a.git", Branch: "main"}
	if !src.Equal(want) {
		t.Errorf("Source() = %+v, want %+v", src, want)
	}
}

func TestLockFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), LockFileName)

	// Missing lockfile is not an error: first install has none.
	lf, err := LoadLockFile(path)
	if err != nil {
		t.Fatalf("LoadLockFile() on missing file error = %v", err)
	}
	if lf != nil {
		t.Fatalf("LoadLockFile() on missing file = %+v, want nil", lf)
	}

	out := &LockFile{Version: 1, Pods: []PodLockEntry{
		{
			Name:      "Zulu",
			Source:    &spec.Source{Git: "https://example.com/z.git", Branch: "main"},
			Checkout:  &spec.Source{Git: "https://example.com/z.git", Commit: "0123456789abcdef0123456789abcdef01234567"},
			Integrity: "sha256:abc",
		},
		{Name: "Alpha", Source: &spec.Source{HTTP: "https://example.com/a.zip"}},
	}}

	if err := SaveLockFile(path, out); err != nil {
		t.Fatalf("SaveLockFile() error = %v", err)
	}

	lf, err = LoadLockFile(path)
	if err != nil {
		t.Fatalf("LoadLockFile() error = %v", err)
	}
	if len(lf.Pods) != 2 {
		t.Fatalf("got %d entries, want 2", len(lf.Pods))
	}
	// Entries are sorted on save.
	if lf.Pods[0].Name != "Alpha" || lf.Pods[1].Name != "Zulu" {
		t.Errorf("entries out of order: %q, %q", lf.Pods[0].Name, lf.Pods[1].Name)
	}

	entry, ok := lf.Entry("Zulu")
	if !ok {
		t.Fatal("Entry(Zulu) not found")
	}
	if entry.Checkout == nil || entry.Checkout.Commit == "" {
		t.Errorf("Entry(Zulu).Checkout = %+v, want pinned commit", entry.Checkout)
	}

	if _, ok := lf.Entry("Missing"); ok {
		t.Error("Entry(Missing) = ok, want absent")
	}
}
