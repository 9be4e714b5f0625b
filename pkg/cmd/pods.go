package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/podpkg/podpkg/pkg/cleaner"
	"github.com/podpkg/podpkg/pkg/config"
	"github.com/podpkg/podpkg/pkg/installer"
	"github.com/podpkg/podpkg/pkg/sandbox"
	"github.com/podpkg/podpkg/pkg/spec"
)

// defaultSourceFiles selects everything when a declaration carries no
// source file globs.
var defaultSourceFiles = []string{"**"}

// podContext bundles what the per-pod controller needs for one declared pod.
type podContext struct {
	name  string
	decl  config.PodDeclaration
	specs spec.SpecsByPlatform
}

// resolveProject loads the Podfile, lockfile, and sandbox for the working
// directory.
func resolveProject() (projectDir string, pf *config.Podfile, lf *config.LockFile, sb *sandbox.Sandbox, err error) {
	wd, err := os.Getwd()
	if err != nil {
		return "", nil, nil, nil, fmt.Errorf("getting working directory: %w", err)
	}

	podfilePath, err := config.FindPodfile(wd)
	if err != nil {
		return "", nil, nil, nil, err
	}

	pf, err = config.LoadPodfile(podfilePath)
	if err != nil {
		return "", nil, nil, nil, err
	}

	lf, err = config.LoadLockFile(filepath.Join(wd, config.LockFileName))
	if err != nil {
		return "", nil, nil, nil, fmt.Errorf("loading lockfile: %w", err)
	}

	sb, err = sandbox.Load(filepath.Join(wd, sandbox.DefaultRoot))
	if err != nil {
		return "", nil, nil, nil, err
	}

	return wd, pf, lf, sb, nil
}

// resolvePods builds the per-pod specification sets from the Podfile,
// substituting locked checkout coordinates when the declaration hasn't
// changed, and registers local-path overrides with the sandbox.
func resolvePods(projectDir string, pf *config.Podfile, lf *config.LockFile, sb *sandbox.Sandbox) ([]podContext, error) {
	var pods []podContext
	for _, name := range pf.PodNames() {
		decl := pf.Pods[name]

		if decl.Path != "" {
			path := decl.Path
			if !filepath.IsAbs(path) {
				path = filepath.Join(projectDir, path)
			}
			sb.RegisterLocalPod(name, path)
		}

		root := &spec.Specification{
			Name:        name,
			Version:     decl.Version,
			Source:      decl.Source(),
			SourceFiles: decl.SourceFiles,
		}
		if len(root.SourceFiles) == 0 {
			root.SourceFiles = defaultSourceFiles
		}

		// Reuse locked checkout coordinates when the declared source is
		// unchanged, so a floating branch keeps pointing at the commit
		// that was originally fetched.
		if entry, ok := lf.Entry(name); ok && entry.Checkout != nil && entry.Source.Equal(root.Source) {
			root.Source = entry.Checkout
		}

		platforms, err := podPlatforms(pf, name)
		if err != nil {
			return nil, err
		}
		specs := spec.SpecsByPlatform{}
		for _, platform := range platforms {
			specs[platform] = append(specs[platform], root)
		}

		pods = append(pods, podContext{name: name, decl: decl, specs: specs})
	}
	return pods, nil
}

// podPlatforms returns the platforms of every target depending on the pod.
// Pods not referenced by any target are installed for all target platforms,
// falling back to ios for targetless Podfiles. A target declaring an
// unknown platform is a configuration error.
func podPlatforms(pf *config.Podfile, name string) ([]spec.Platform, error) {
	seen := map[spec.Platform]bool{}
	var platforms []spec.Platform
	add := func(tname, raw string) error {
		p, err := spec.ParsePlatform(raw)
		if err != nil {
			return fmt.Errorf("target %q: %w", tname, err)
		}
		if !seen[p] {
			seen[p] = true
			platforms = append(platforms, p)
		}
		return nil
	}

	var targetNames []string
	for tname := range pf.Targets {
		targetNames = append(targetNames, tname)
	}
	sort.Strings(targetNames)

	for _, tname := range targetNames {
		target := pf.Targets[tname]
		for _, pod := range target.Pods {
			if pod == name {
				if err := add(tname, target.Platform); err != nil {
					return nil, err
				}
			}
		}
	}
	if len(platforms) > 0 {
		return platforms, nil
	}

	for _, tname := range targetNames {
		if err := add(tname, pf.Targets[tname].Platform); err != nil {
			return nil, err
		}
	}
	if len(platforms) > 0 {
		return platforms, nil
	}

	return []spec.Platform{spec.PlatformIOS}, nil
}

// newInstaller builds the source installation controller for one pod.
func newInstaller(pod podContext, pf *config.Podfile, sb *sandbox.Sandbox, warner installer.Warner) (*installer.Installer, error) {
	return installer.New(installer.Options{
		Sandbox: sb,
		Podfile: pf,
		Specs:   pod.specs,
		Cleaner: cleaner.New(),
		Warner:  warner,
		NoCache: DevCfg != nil && DevCfg.NoCache,
	})
}
