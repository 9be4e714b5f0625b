package spec

import (
	"fmt"
	"strings"
)

// Platform identifies a target platform a pod can be built for.
type Platform string

const (
	PlatformIOS     Platform = "ios"
	PlatformOSX     Platform = "osx"
	PlatformTVOS    Platform = "tvos"
	PlatformWatchOS Platform = "watchos"
)

var knownPlatforms = map[Platform]bool{
	PlatformIOS:     true,
	PlatformOSX:     true,
	PlatformTVOS:    true,
	PlatformWatchOS: true,
}

// ParsePlatform validates a platform identifier from user input.
func ParsePlatform(s string) (Platform, error) {
	p := Platform(strings.ToLower(s))
	if !knownPlatforms[p] {
		return "", fmt.Errorf("unknown platform %q (expected ios, osx, tvos, or watchos)", s)
	}
	return p, nil
}

// Source describes where a pod's source code comes from: exactly one of the
// location fields (Git, HTTP, SVN, Path) is set, optionally refined by
// Tag/Branch/Commit for VCS sources.
type Source struct {
	Git  string `json:"git,omitempty" toml:"git,omitempty"`
	HTTP string `json:"http,omitempty" toml:"http,omitempty"`
	SVN  string `json:"svn,omitempty" toml:"svn,omitempty"`
	Path string `json:"path,omitempty" toml:"path,omitempty"`

	Tag    string `json:"tag,omitempty" toml:"tag,omitempty"`
	Branch string `json:"branch,omitempty" toml:"branch,omitempty"`
	Commit string `json:"commit,omitempty" toml:"commit,omitempty"`
}

// Equal reports field-wise equality of two source descriptors. A nil
// descriptor only equals another nil descriptor.
func (s *Source) Equal(other *Source) bool {
	if s == nil || other == nil {
		return s == other
	}
	return *s == *other
}

func (s *Source) String() string {
	if s == nil {
		return "<none>"
	}
	var parts []string
	switch {
	case s.Git != "":
		parts = append(parts, "git="+s.Git)
	case s.HTTP != "":
		parts = append(parts, "http="+s.HTTP)
	case s.SVN != "":
		parts = append(parts, "svn="+s.SVN)
	case s.Path != "":
		parts = append(parts, "path="+s.Path)
	}
	if s.Tag != "" {
		parts = append(parts, "tag="+s.Tag)
	}
	if s.Branch != "" {
		parts = append(parts, "branch="+s.Branch)
	}
	if s.Commit != "" {
		parts = append(parts, "commit="+s.Commit)
	}
	return strings.Join(parts, " ")
}

// Specification is the resolved description of a pod (or one of its
// subspecs). Subspecs link to their parent; the root spec carries the
// source descriptor for the whole pod.
type Specification struct {
	Name        string   `json:"name"`
	Version     string   `json:"version"`
	Source      *Source  `json:"source,omitempty"`
	SourceFiles []string `json:"source_files,omitempty"`

	parent *Specification
}

// NewSubspec creates a child specification under parent. Subspecs inherit
// the root's source descriptor and contribute their own source file globs.
func NewSubspec(parent *Specification, name string, sourceFiles []string) *Specification {
	return &Specification{
		Name:        parent.Name + "/" + name,
		Version:     parent.Version,
		SourceFiles: sourceFiles,
		parent:      parent,
	}
}

// Root returns the top-level specification this variant belongs to.
func (s *Specification) Root() *Specification {
	root := s
	for root.parent != nil {
		root = root.parent
	}
	return root
}

// RootName returns the pod name without any subspec suffix.
func (s *Specification) RootName() string {
	return s.Root().Name
}

// Equal reports whether two specifications describe the same pod version
// from the same source. Used to decide whether a previously installed pod
// matches what is being installed now.
func (s *Specification) Equal(other *Specification) bool {
	if s == nil || other == nil {
		return s == other
	}
	return s.Name == other.Name &&
		s.Version == other.Version &&
		s.Source.Equal(other.Source)
}

// SpecsByPlatform groups the activated specification variants of a single
// pod by target platform.
type SpecsByPlatform map[Platform][]*Specification

// RootSpec returns the root specification shared by every variant. All
// variants of one pod must share a single root; a mismatch means the
// resolver handed us an inconsistent set.
func (m SpecsByPlatform) RootSpec() (*Specification, error) {
	var root *Specification
	for _, specs := range m {
		for _, s := range specs {
			r := s.Root()
			if root == nil {
				root = r
				continue
			}
			if r != root && !r.Equal(root) {
				return nil, fmt.Errorf("specification variants disagree on root: %q vs %q", r.Name, root.Name)
			}
		}
	}
	if root == nil {
		return nil, fmt.Errorf("no specification variants present")
	}
	return root, nil
}

// Variants returns every specification variant across all platforms,
// without deduplication.
func (m SpecsByPlatform) Variants() []*Specification {
	var all []*Specification
	for _, specs := range m {
		all = append(all, specs...)
	}
	return all
}
