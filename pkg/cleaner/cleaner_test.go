package cleaner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/podpkg/podpkg/pkg/spec"
)

func writeTree(t *testing.T, root string, files []string) {
	t.Helper()
	for _, rel := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(rel), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func specsWithGlobs(globs map[spec.Platform][]string) spec.SpecsByPlatform {
	out := spec.SpecsByPlatform{}
	for platform, patterns := range globs {
		out[platform] = []*spec.Specification{{
			Name:        "A",
			Version:     "1.0",
			SourceFiles: patterns,
		}}
	}
	return out
}

func TestClean(t *testing.T) {
	tests := map[string]struct {
		files    []string
		globs    map[spec.Platform][]string
		wantKept []string
		wantGone []string
	}{
		"removes files outside the globs": {
			files: []string{"Classes/a.m", "Classes/a.h", "Tests/a_test.m", "README.md"},
			globs: map[spec.Platform][]string{
				spec.PlatformIOS: {"Classes/**"},
			},
			wantKept: []string{"Classes/a.m", "Classes/a.h"},
			wantGone: []string{"Tests/a_test.m", "README.md"},
		},
		"union across platform variants": {
			files: []string{"Shared/s.m", "iOS/i.m", "Mac/m.m", "Docs/x.md"},
			globs: map[spec.Platform][]string{
				spec.PlatformIOS: {"Shared/**", "iOS/**"},
				spec.PlatformOSX: {"Shared/**", "Mac/**"},
			},
			wantKept: []string{"Shared/s.m", "iOS/i.m", "Mac/m.m"},
			wantGone: []string{"Docs/x.md"},
		},
		"keeps everything under a match-all glob": {
			files: []string{"Classes/a.m", "README.md"},
			globs: map[spec.Platform][]string{
				spec.PlatformIOS: {"**"},
			},
			wantKept: []string{"Classes/a.m", "README.md"},
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			root := t.TempDir()
			writeTree(t, root, tc.files)

			if err := New().Clean(root, specsWithGlobs(tc.globs)); err != nil {
				t.Fatalf("Clean() error = %v", err)
			}

			for _, rel := range tc.wantKept {
				if _, err := os.Stat(filepath.Join(root, filepath.FromSlash(rel))); err != nil {
					t.Errorf("referenced file %s removed: %v", rel, err)
				}
			}
			for _, rel := range tc.wantGone {
				if _, err := os.Stat(filepath.Join(root, filepath.FromSlash(rel))); !os.IsNotExist(err) {
					t.Errorf("unreferenced file %s survived", rel)
				}
			}
		})
	}
}

func TestCleanRemovesEmptiedDirectories(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, []string{"Classes/a.m", "Examples/Deep/Nested/demo.m"})

	specs := specsWithGlobs(map[spec.Platform][]string{
		spec.PlatformIOS: {"Classes/**"},
	})
	if err := New().Clean(root, specs); err != nil {
		t.Fatalf("Clean() error = %v", err)
	}

	if _, err := os.Stat(filepath.Join(root, "Examples")); !os.IsNotExist(err) {
		t.Error("emptied directory tree survived")
	}
	if _, err := os.Stat(root); err != nil {
		t.Errorf("pod root itself removed: %v", err)
	}
}

func TestCleanUsesInjectedAccessor(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, []string{"keep.m", "drop.m"})

	c := New()
	c.NewAccessor = func(variant *spec.Specification, r string) spec.FileAccessor {
		return fixedAccessor{files: []string{filepath.Join(r, "keep.m")}}
	}

	specs := specsWithGlobs(map[spec.Platform][]string{spec.PlatformIOS: {"ignored"}})
	if err := c.Clean(root, specs); err != nil {
		t.Fatalf("Clean() error = %v", err)
	}

	if _, err := os.Stat(filepath.Join(root, "keep.m")); err != nil {
		t.Errorf("keep.m removed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "drop.m")); !os.IsNotExist(err) {
		t.Error("drop.m survived")
	}
}

type fixedAccessor struct {
	files []string
}

func (a fixedAccessor) SourceFiles() ([]string, error) { return a.files, nil }
