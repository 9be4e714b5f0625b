package downloader

import (
	"context"
	"fmt"

	"github.com/podpkg/podpkg/pkg/spec"
)

// Request carries everything the fetch mechanism needs for one pod. The
// Released flag lets a downloader pick a more conservative strategy for
// known-published versions (trust cached content) versus development
// checkouts (always fetch fresh).
type Request struct {
	Spec     *spec.Specification
	Released bool
}

// NewRequest builds the immutable fetch request for a pod's root
// specification.
func NewRequest(root *spec.Specification, released bool) Request {
	return Request{Spec: root, Released: released}
}

// Result reports what a fetch actually produced. CheckoutSource holds the
// precise checkout coordinates when they are more specific than the
// declared descriptor (e.g. a floating branch resolved to a commit); nil
// means the declared descriptor was checked out exactly as written.
type Result struct {
	CheckoutSource *spec.Source
}

// Downloader retrieves a pod's source into a destination directory.
type Downloader interface {
	// Download fetches req.Spec's source into dest. allowCache permits
	// reuse of previously fetched content when the downloader supports it.
	Download(ctx context.Context, req Request, dest string, allowCache bool) (*Result, error)
}

// Preparer normalizes a local-override pod in place. It must never fetch
// over the network.
type Preparer interface {
	Prepare(sp *spec.Specification, path string) error
}

// ForSource returns the downloader handling the given source descriptor.
func ForSource(src *spec.Source) (Downloader, error) {
	switch {
	case src == nil:
		return nil, fmt.Errorf("specification has no source descriptor")
	case src.Git != "":
		return &Git{}, nil
	case src.HTTP != "":
		return &HTTPArchive{}, nil
	case src.SVN != "":
		return nil, fmt.Errorf("svn sources are not supported yet")
	default:
		return nil, fmt.Errorf("source descriptor %s has no fetchable location", src)
	}
}
