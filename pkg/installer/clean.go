package installer

import "fmt"

// Clean prunes files under the pod's installed directory that no active
// platform variant references. Which files survive is the cleaner's
// policy; this gate only guarantees a user-owned local override is never
// pruned.
func (inst *Installer) Clean() error {
	if inst.Local() {
		return nil
	}
	if inst.cleaner == nil {
		return fmt.Errorf("cleaning pod %q: no cleaner configured", inst.root.Name)
	}
	return inst.cleaner.Clean(inst.sandbox.PodDir(inst.root.Name), inst.specs)
}
