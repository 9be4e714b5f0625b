// Package installer implements the pod source installation controller: for
// a single resolved pod it decides whether its source must be fetched,
// prepared in place, or skipped, prunes unused files after installation,
// and toggles write protection on the installed tree. All decisions flow
// through four state predicates derived from the sandbox and the Podfile.
package installer

import (
	"fmt"

	"github.com/podpkg/podpkg/pkg/config"
	"github.com/podpkg/podpkg/pkg/downloader"
	"github.com/podpkg/podpkg/pkg/sandbox"
	"github.com/podpkg/podpkg/pkg/spec"
)

// Warner receives non-fatal advisories, such as the insecure-transport
// warning. Implementations must not block installation.
type Warner interface {
	Warn(message string)
}

// WarnerFunc adapts a function to the Warner interface.
type WarnerFunc func(string)

func (f WarnerFunc) Warn(message string) { f(message) }

// Cleaner prunes an installed pod directory down to the files referenced
// by at least one active platform variant. The pruning policy lives in the
// implementation; the controller only guarantees it is never invoked on a
// user-owned local path.
type Cleaner interface {
	Clean(path string, specs spec.SpecsByPlatform) error
}

// Options collects the collaborators for one pod's installer. Sandbox,
// Podfile, and Specs are required; the rest default to the standard
// implementations.
type Options struct {
	Sandbox *sandbox.Sandbox
	Podfile *config.Podfile
	Specs   spec.SpecsByPlatform

	// Downloader overrides protocol dispatch on the root spec's source.
	Downloader downloader.Downloader
	// Preparer normalizes local-override pods. Defaults to LocalPreparer.
	Preparer downloader.Preparer
	// Cleaner prunes unreferenced files. Required for Clean.
	Cleaner Cleaner
	// Accessors enumerate each variant's source files for Lock/Unlock.
	// Defaults to glob expansion over the pod directory.
	Accessors []spec.FileAccessor
	// Warner receives advisories. Defaults to discarding them.
	Warner Warner
	// NoCache forbids reuse of previously fetched content.
	NoCache bool
}

// Installer installs one pod's source into the sandbox. Instances are
// single-use per run; the only shared state is the sandbox, whose accessors
// are safe for concurrent use across distinct pods.
type Installer struct {
	sandbox *sandbox.Sandbox
	podfile *config.Podfile
	specs   spec.SpecsByPlatform
	root    *spec.Specification

	downloader downloader.Downloader
	preparer   downloader.Preparer
	cleaner    Cleaner
	accessors  []spec.FileAccessor
	warner     Warner
	noCache    bool
}

// New validates the resolved specification set and builds the installer
// for its pod. All platform variants must share a single root
// specification.
func New(opts Options) (*Installer, error) {
	if opts.Sandbox == nil {
		return nil, fmt.Errorf("installer requires a sandbox")
	}
	if opts.Podfile == nil {
		return nil, fmt.Errorf("installer requires a podfile")
	}

	root, err := opts.Specs.RootSpec()
	if err != nil {
		return nil, err
	}

	inst := &Installer{
		sandbox:    opts.Sandbox,
		podfile:    opts.Podfile,
		specs:      opts.Specs,
		root:       root,
		downloader: opts.Downloader,
		preparer:   opts.Preparer,
		cleaner:    opts.Cleaner,
		accessors:  opts.Accessors,
		warner:     opts.Warner,
		noCache:    opts.NoCache,
	}

	if inst.preparer == nil {
		inst.preparer = &downloader.LocalPreparer{}
	}
	if inst.warner == nil {
		inst.warner = WarnerFunc(func(string) {})
	}
	if inst.accessors == nil {
		dir := inst.sandbox.PodDir(root.Name)
		for _, variant := range inst.specs.Variants() {
			inst.accessors = append(inst.accessors, &spec.PathAccessor{Spec: variant, Root: dir})
		}
	}

	return inst, nil
}

// Name returns the pod's name.
func (inst *Installer) Name() string {
	return inst.root.Name
}

// Root returns the root specification shared by every platform variant.
func (inst *Installer) Root() *spec.Specification {
	return inst.root
}

// PreDownloaded reports whether the pod's source was already fetched during
// resolution, when its specification had to be retrieved to read metadata.
func (inst *Installer) PreDownloaded() bool {
	return inst.sandbox.Predownloaded(inst.root.Name)
}

// Local reports whether the pod has a local-path override. Local pods are
// user-owned: never fetched, cleaned, or write-protected.
func (inst *Installer) Local() bool {
	return inst.sandbox.IsLocalPod(inst.root.Name)
}

// ExternallySourced reports whether any Podfile declaration for this pod
// references its specification directly rather than through a registry.
func (inst *Installer) ExternallySourced() bool {
	for _, d := range inst.podfile.Declarations(inst.root.Name) {
		if d.ExternalSource() {
			return true
		}
	}
	return false
}

// Released reports whether this exact version was already installed by a
// prior run. Local and pre-downloaded pods are never released; otherwise a
// stored specification differing from the current root marks a published
// version rather than a fresh local or external checkout.
func (inst *Installer) Released() bool {
	if inst.Local() || inst.PreDownloaded() {
		return false
	}
	return !inst.sandbox.Spec(inst.root.Name).Equal(inst.root)
}

// downloadRequest assembles the immutable fetch request for this pod.
func (inst *Installer) downloadRequest() downloader.Request {
	return downloader.NewRequest(inst.root, inst.Released())
}

// allowCache decides whether the fetch mechanism may reuse previously
// fetched content: externally sourced pods are always fetched fresh.
func (inst *Installer) allowCache() bool {
	return !inst.noCache && !inst.ExternallySourced()
}
