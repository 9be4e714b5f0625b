package installer

import (
	"fmt"
	"io/fs"
	"os"
)

const ownerWrite fs.FileMode = 0o200

// Lock removes owner-write permission from every source file belonging to
// the pod's active variants, protecting installed code from accidental
// edits between installs. No-op for local overrides; idempotent.
func (inst *Installer) Lock() error {
	if inst.Local() {
		return nil
	}
	return inst.chmodSources("locking", func(mode fs.FileMode) fs.FileMode {
		return mode &^ ownerWrite
	})
}

// Unlock restores owner-write permission on the same file set, ahead of
// re-installation or removal. No-op for local overrides; idempotent.
func (inst *Installer) Unlock() error {
	if inst.Local() {
		return nil
	}
	return inst.chmodSources("unlocking", func(mode fs.FileMode) fs.FileMode {
		return mode | ownerWrite
	})
}

// chmodSources applies a permission transform to each accessor-listed
// file. A chmod failure propagates immediately: silently continuing could
// leave the tree half locked.
func (inst *Installer) chmodSources(verb string, transform func(fs.FileMode) fs.FileMode) error {
	for _, accessor := range inst.accessors {
		files, err := accessor.SourceFiles()
		if err != nil {
			return fmt.Errorf("%s pod %q: %w", verb, inst.root.Name, err)
		}
		for _, file := range files {
			info, err := os.Stat(file)
			if err != nil {
				return fmt.Errorf("%s pod %q: %w", verb, inst.root.Name, err)
			}
			mode := info.Mode().Perm()
			next := transform(mode)
			if next == mode {
				continue
			}
			if err := os.Chmod(file, next); err != nil {
				return fmt.Errorf("%s pod %q: changing mode of %s: %w", verb, inst.root.Name, file, err)
			}
		}
	}
	return nil
}
