package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/pelletier/go-toml/v2"

	"github.com/podpkg/podpkg/pkg/spec"
)

// PodfileName is the manifest filename declaring a project's pod
// dependencies.
const PodfileName = "Podfile.toml"

// Podfile is the user-declared dependency set: build targets referencing
// pod declarations by name.
type Podfile struct {
	Project ProjectConfig             `toml:"project"`
	Targets map[string]Target         `toml:"targets,omitempty"`
	Pods    map[string]PodDeclaration `toml:"pods,omitempty"`
}

type ProjectConfig struct {
	Name string `toml:"name"`
}

// Target is one build target: a platform plus the pods it depends on.
type Target struct {
	Platform string   `toml:"platform"`
	Pods     []string `toml:"pods,omitempty"`
}

// PodDeclaration describes where one pod's source comes from. Exactly one
// of Git, HTTP, SVN, Path, or Podspec should be set. Path and Podspec
// declarations are externally sourced: their specification comes from a
// direct reference rather than a registry lookup. A Path declaration
// additionally marks the pod as a local override.
type PodDeclaration struct {
	Version string `toml:"version,omitempty"`

	Git     string `toml:"git,omitempty"`
	HTTP    string `toml:"http,omitempty"`
	SVN     string `toml:"svn,omitempty"`
	Path    string `toml:"path,omitempty"`
	Podspec string `toml:"podspec,omitempty"`

	Tag    string `toml:"tag,omitempty"`
	Branch string `toml:"branch,omitempty"`
	Commit string `toml:"commit,omitempty"`

	// SourceFiles are glob patterns selecting the pod's source files
	// within its installed directory. Defaults to every file.
	SourceFiles []string `toml:"source_files,omitempty"`
}

// ExternalSource reports whether the declaration references its
// specification directly (podspec URL or local path) instead of a registry.
func (d PodDeclaration) ExternalSource() bool {
	return d.Podspec != "" || d.Path != ""
}

// Source converts the declaration into a source descriptor.
func (d PodDeclaration) Source() *spec.Source {
	return &spec.Source{
		Git:    d.Git,
		HTTP:   d.HTTP,
		SVN:    d.SVN,
		Path:   d.Path,
		Tag:    d.Tag,
		Branch: d.Branch,
		Commit: d.Commit,
	}
}

// Declarations returns every declaration for the named pod, in target
// order. With the shared pods table there is at most one, but callers
// treat the result as an ordered set.
func (p *Podfile) Declarations(name string) []PodDeclaration {
	d, ok := p.Pods[name]
	if !ok {
		return nil
	}
	return []PodDeclaration{d}
}

// PodNames returns all declared pod names, sorted for deterministic
// iteration.
func (p *Podfile) PodNames() []string {
	names := make([]string, 0, len(p.Pods))
	for name := range p.Pods {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func UnmarshalPodfile(data []byte) (*Podfile, error) {
	p := &Podfile{}
	err := toml.Unmarshal(data, p)
	return p, err
}

func (p *Podfile) Marshal() ([]byte, error) {
	return toml.Marshal(p)
}

func LoadPodfile(path string) (*Podfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	p, err := UnmarshalPodfile(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return p, nil
}

func SavePodfile(path string, p *Podfile) error {
	data, err := p.Marshal()
	if err != nil {
		return fmt.Errorf("marshaling podfile: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// FindPodfile locates the Podfile in dir.
func FindPodfile(dir string) (string, error) {
	path := filepath.Join(dir, PodfileName)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("no %s found in %s (run `podpkg init` first)", PodfileName, dir)
		}
		return "", err
	}
	return path, nil
}
