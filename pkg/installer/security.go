package installer

import (
	"fmt"
	"net/url"
	"strings"
)

// warnInsecureSource emits an advisory when the pod's source uses an
// unauthenticated transport. It inspects the http field first, then the
// git field when that is a well-formed absolute URI; git fields holding
// local paths or scp-style remotes are silently skipped, as is anything
// targeting localhost. Advisory only: installation never stops here.
func (inst *Installer) warnInsecureSource() {
	src := inst.root.Source
	if src == nil || (src.HTTP == "" && src.Git == "") {
		return
	}

	raw := src.HTTP
	if raw == "" {
		raw = src.Git
	}

	u, err := url.Parse(raw)
	if err != nil || !u.IsAbs() {
		return
	}

	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "git" {
		return
	}
	if u.Hostname() == "localhost" {
		return
	}

	inst.warner.Warn(fmt.Sprintf(
		"pod %q fetches its source over the unencrypted %q scheme (%s); prefer https or ssh",
		inst.root.Name, scheme, raw))
}
