package downloader

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// HTTPArchive fetches pod sources distributed as zip archives over HTTP.
type HTTPArchive struct {
	// Client defaults to http.DefaultClient.
	Client *http.Client
}

var _ Downloader = &HTTPArchive{}

func (h *HTTPArchive) Download(ctx context.Context, req Request, dest string, allowCache bool) (*Result, error) {
	src := req.Spec.Source
	if src == nil || src.HTTP == "" {
		return nil, fmt.Errorf("specification %q has no http source", req.Spec.Name)
	}

	if populated, err := dirPopulated(dest); err != nil {
		return nil, err
	} else if populated {
		if allowCache && req.Released {
			return &Result{}, nil
		}
		if err := clearDir(dest); err != nil {
			return nil, fmt.Errorf("clearing %s before extraction: %w", dest, err)
		}
	}

	archive, err := h.fetchArchive(ctx, src.HTTP)
	if err != nil {
		return nil, err
	}
	defer os.Remove(archive)

	if err := extractZip(archive, dest); err != nil {
		return nil, fmt.Errorf("extracting %s: %w", src.HTTP, err)
	}

	// An http archive has no refinable coordinates: what was declared is
	// what was fetched.
	return &Result{}, nil
}

func (h *HTTPArchive) fetchArchive(ctx context.Context, url string) (string, error) {
	client := h.Client
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("building request for %s: %w", url, err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetching %s: unexpected status %s", url, resp.Status)
	}

	tmp, err := os.CreateTemp("", "podpkg-archive-*.zip")
	if err != nil {
		return "", fmt.Errorf("creating temp archive: %w", err)
	}
	defer tmp.Close()

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("downloading %s: %w", url, err)
	}

	return tmp.Name(), nil
}

// extractZip unpacks the archive into dest, stripping a single shared
// top-level directory if the archive has one (the usual shape of release
// archives).
func extractZip(archive, dest string) error {
	r, err := zip.OpenReader(archive)
	if err != nil {
		return err
	}
	defer r.Close()

	strip := sharedTopLevel(r.File)

	for _, f := range r.File {
		name := f.Name
		if strip != "" {
			name = strings.TrimPrefix(name, strip)
		}
		if name == "" {
			continue
		}

		target := filepath.Join(dest, filepath.FromSlash(name))
		rel, err := filepath.Rel(dest, target)
		if err != nil || strings.HasPrefix(rel, "..") {
			return fmt.Errorf("archive entry %q escapes destination", f.Name)
		}

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return err
			}
			continue
		}

		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return err
		}
		if err := writeZipEntry(f, target); err != nil {
			return err
		}
	}
	return nil
}

func writeZipEntry(f *zip.File, target string) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, f.Mode().Perm()|0o200)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, rc)
	return err
}

// sharedTopLevel returns the single top-level directory prefix (with
// trailing slash) shared by all entries, or "" if there isn't one.
func sharedTopLevel(files []*zip.File) string {
	var top string
	for _, f := range files {
		name := strings.TrimPrefix(f.Name, "./")
		idx := strings.Index(name, "/")
		if idx < 0 {
			return ""
		}
		prefix := name[:idx+1]
		if top == "" {
			top = prefix
		} else if top != prefix {
			return ""
		}
	}
	return top
}
