package installer

import (
	"context"
	"fmt"

	"github.com/podpkg/podpkg/pkg/downloader"
)

// Install brings the pod's source into the sandbox. Pre-downloaded and
// local pods skip fetching entirely; local pods additionally get a
// preparation pass over their user-owned directory. Everything else is
// fetched through the downloader, recording the actual checkout
// coordinates when they differ from the declared descriptor so subsequent
// runs reproduce exactly what was fetched. A fetch failure aborts this
// pod's install and propagates; it is never retried here.
func (inst *Installer) Install(ctx context.Context) error {
	name := inst.root.Name

	if inst.PreDownloaded() || inst.Local() {
		if inst.Local() {
			if err := inst.preparer.Prepare(inst.root, inst.sandbox.PodDir(name)); err != nil {
				return fmt.Errorf("preparing local pod %q: %w", name, err)
			}
		}
	} else {
		inst.warnInsecureSource()

		if err := inst.download(ctx); err != nil {
			return err
		}
	}

	// Once the real source is installed, the cached specification copy is
	// only needed for pods that are pre-downloaded, local, or externally
	// sourced; for everything else it is discarded. The asymmetry (a pod
	// that is both local and external keeps its cache even after a
	// non-network install) is load-bearing for later runs.
	if !inst.PreDownloaded() && !inst.Local() && !inst.ExternallySourced() {
		if err := inst.sandbox.RemoveSpec(name); err != nil {
			return err
		}
	}

	return nil
}

func (inst *Installer) download(ctx context.Context) error {
	name := inst.root.Name

	dl := inst.downloader
	if dl == nil {
		var err error
		dl, err = downloader.ForSource(inst.root.Source)
		if err != nil {
			return fmt.Errorf("pod %q: %w", name, err)
		}
	}

	if err := inst.sandbox.PreparePodDir(name); err != nil {
		return err
	}

	result, err := dl.Download(ctx, inst.downloadRequest(), inst.sandbox.PodDir(name), inst.allowCache())
	if err != nil {
		return fmt.Errorf("downloading pod %q: %w", name, err)
	}

	if result != nil && result.CheckoutSource != nil && !result.CheckoutSource.Equal(inst.root.Source) {
		inst.sandbox.StoreCheckoutSource(name, *result.CheckoutSource)
	}

	return nil
}
