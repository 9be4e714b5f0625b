package project

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/podpkg/podpkg/pkg/config"
	"github.com/podpkg/podpkg/pkg/spec"
)

func TestInit(t *testing.T) {
	tests := map[string]struct {
		platforms   []spec.Platform
		wantTargets []string
	}{
		"single platform uses project name": {
			platforms:   []spec.Platform{spec.PlatformIOS},
			wantTargets: []string{"MyApp"},
		},
		"multiple platforms get suffixed targets": {
			platforms:   []spec.Platform{spec.PlatformIOS, spec.PlatformOSX},
			wantTargets: []string{"MyApp-ios", "MyApp-osx"},
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()

			if err := Init(dir, "MyApp", tc.platforms); err != nil {
				t.Fatalf("Init() error = %v", err)
			}

			pf, err := config.LoadPodfile(filepath.Join(dir, ManifestFile))
			if err != nil {
				t.Fatalf("LoadPodfile() error = %v", err)
			}
			if pf.Project.Name != "MyApp" {
				t.Errorf("Project.Name = %q", pf.Project.Name)
			}
			if len(pf.Targets) != len(tc.wantTargets) {
				t.Fatalf("got %d targets, want %d", len(pf.Targets), len(tc.wantTargets))
			}
			for _, target := range tc.wantTargets {
				if _, ok := pf.Targets[target]; !ok {
					t.Errorf("missing target %q", target)
				}
			}
		})
	}
}

func TestInitRefusesExistingPodfile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ManifestFile), []byte("# existing"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := Init(dir, "MyApp", []spec.Platform{spec.PlatformIOS}); err == nil {
		t.Fatal("Init() error = nil, want refusal to overwrite")
	}
}

func TestInferName(t *testing.T) {
	if got := InferName("/home/dev/MyApp"); got != "MyApp" {
		t.Errorf("InferName() = %q, want MyApp", got)
	}
}

func TestEnsureGitignore(t *testing.T) {
	tests := map[string]struct {
		existing  string
		entries   []string
		wantAdded []string
		wantLines []string
	}{
		"creates file when missing": {
			entries:   []string{"Pods/"},
			wantAdded: []string{"Pods/"},
			wantLines: []string{"Pods/"},
		},
		"appends only missing entries": {
			existing:  "Pods/\n",
			entries:   []string{"Pods/", ".podpkg.toml"},
			wantAdded: []string{".podpkg.toml"},
			wantLines: []string{"Pods/", ".podpkg.toml"},
		},
		"all present is a no-op": {
			existing: "Pods/\n.podpkg.toml\n",
			entries:  []string{"Pods/", ".podpkg.toml"},
		},
		"handles file without trailing newline": {
			existing:  "*.o",
			entries:   []string{"Pods/"},
			wantAdded: []string{"Pods/"},
			wantLines: []string{"*.o", "Pods/"},
		},
		"repeated requested entries appended once": {
			entries:   []string{"Pods/", "Pods/", "Pods/"},
			wantAdded: []string{"Pods/"},
			wantLines: []string{"Pods/"},
		},
		"commented-out pattern does not count as present": {
			existing:  "# Pods/\n",
			entries:   []string{"Pods/"},
			wantAdded: []string{"Pods/"},
			wantLines: []string{"Pods/"},
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			path := filepath.Join(dir, ".gitignore")
			if tc.existing != "" {
				if err := os.WriteFile(path, []byte(tc.existing), 0o644); err != nil {
					t.Fatal(err)
				}
			}

			added, err := EnsureGitignore(dir, tc.entries)
			if err != nil {
				t.Fatalf("EnsureGitignore() error = %v", err)
			}
			if len(added) != len(tc.wantAdded) {
				t.Fatalf("added = %v, want %v", added, tc.wantAdded)
			}

			if len(tc.wantLines) == 0 {
				return
			}
			data, err := os.ReadFile(path)
			if err != nil {
				t.Fatal(err)
			}
			for _, line := range tc.wantLines {
				if !containsLine(string(data), line) {
					t.Errorf(".gitignore missing line %q; content:\n%s", line, data)
				}
			}
		})
	}
}

func containsLine(content, line string) bool {
	for _, l := range strings.Split(content, "\n") {
		if strings.TrimSpace(l) == line {
			return true
		}
	}
	return false
}
