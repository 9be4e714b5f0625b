package downloader

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/podpkg/podpkg/pkg/spec"
)

// LocalPreparer validates a local-override pod directory. It only inspects
// the path; the directory is user-owned and is never modified, and nothing
// here touches the network.
type LocalPreparer struct{}

var _ Preparer = &LocalPreparer{}

func (l *LocalPreparer) Prepare(sp *spec.Specification, path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolving absolute path for %q: %w", path, err)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("local pod %q: path does not exist: %s", sp.Name, absPath)
		}
		return fmt.Errorf("checking local pod %q path %s: %w", sp.Name, absPath, err)
	}

	if !info.IsDir() {
		return fmt.Errorf("local pod %q: path is not a directory: %s", sp.Name, absPath)
	}

	return nil
}
