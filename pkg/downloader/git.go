package downloader

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/podpkg/podpkg/pkg/spec"
)

// Git fetches pod sources from git repositories. Refs are resolved to
// exact commits up front (via ls-remote) so the result can report the
// precise checkout coordinates, then checked out with a shallow clone.
type Git struct{}

var _ Downloader = &Git{}

func (g *Git) Download(ctx context.Context, req Request, dest string, allowCache bool) (*Result, error) {
	src := req.Spec.Source
	if src == nil || src.Git == "" {
		return nil, fmt.Errorf("specification %q has no git source", req.Spec.Name)
	}

	ref := gitRef(src)
	commit, err := resolveCommit(ctx, src.Git, ref)
	if err != nil {
		return nil, fmt.Errorf("resolving ref %q of %s: %w", ref, src.Git, err)
	}

	actual := &spec.Source{Git: src.Git, Tag: src.Tag, Commit: commit}

	// Released versions may reuse an existing checkout; development refs
	// always start clean.
	if populated, err := dirPopulated(dest); err != nil {
		return nil, err
	} else if populated {
		if allowCache && req.Released {
			return &Result{CheckoutSource: actual}, nil
		}
		if err := clearDir(dest); err != nil {
			return nil, fmt.Errorf("clearing %s before checkout: %w", dest, err)
		}
	}

	if err := checkout(ctx, src.Git, ref, commit, dest); err != nil {
		return nil, fmt.Errorf("checking out %s: %w", src.Git, err)
	}

	return &Result{CheckoutSource: actual}, nil
}

// gitRef picks the ref to check out from a descriptor: an explicit commit
// wins, then tag, then branch, then the remote HEAD.
func gitRef(src *spec.Source) string {
	switch {
	case src.Commit != "":
		return src.Commit
	case src.Tag != "":
		return src.Tag
	case src.Branch != "":
		return src.Branch
	default:
		return "HEAD"
	}
}

// resolveCommit resolves ref to a full 40-char commit hash. Full hashes
// pass through without a network call; short hashes are expanded by
// prefix-matching ls-remote output; branch and tag names resolve via
// ls-remote, preferring the dereferenced entry for annotated tags.
func resolveCommit(ctx context.Context, url, ref string) (string, error) {
	if isCommitHash(ref) {
		return ref, nil
	}
	if isShortCommitHash(ref) {
		return resolveShortHash(ctx, url, ref)
	}

	cmd := exec.CommandContext(ctx, "git", "ls-remote", url, ref, ref+"^{}")
	out, err := cmd.Output()
	if err != nil {
		return "", execError(err)
	}

	var commit string
	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 2 {
			continue
		}
		commit = fields[0]
		// Annotated tags: the ^{} entry points at the underlying commit.
		if strings.HasSuffix(fields[1], "^{}") {
			return fields[0], nil
		}
	}

	if commit == "" {
		return "", fmt.Errorf("ref %q not found in %s", ref, url)
	}
	return commit, nil
}

func resolveShortHash(ctx context.Context, url, ref string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", "ls-remote", url)
	out, err := cmd.Output()
	if err != nil {
		return "", execError(err)
	}

	prefix := strings.ToLower(ref)
	var match string
	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 2 {
			continue
		}
		hash := strings.ToLower(fields[0])
		if !strings.HasPrefix(hash, prefix) {
			continue
		}
		if match != "" && match != hash {
			return "", fmt.Errorf("short hash %q is ambiguous in %s", ref, url)
		}
		match = hash
	}

	if match == "" {
		return "", fmt.Errorf("short hash %q not found in %s", ref, url)
	}
	return match, nil
}

// checkout performs a shallow checkout of commit into dest. Named refs use
// a --branch clone; hashes use init+fetch-by-SHA, which needs the server
// to allow reachable SHA1 in want (GitHub, GitLab, and Bitbucket do).
func checkout(ctx context.Context, url, ref, commit, dest string) error {
	if ref != "HEAD" && !isHexString(ref) {
		cmd := exec.CommandContext(ctx, "git", "clone", "--depth", "1", "--branch", ref, url, dest)
		if _, err := cmd.Output(); err != nil {
			return execError(err)
		}
		return nil
	}

	if ref == "HEAD" {
		cmd := exec.CommandContext(ctx, "git", "clone", "--depth", "1", url, dest)
		if _, err := cmd.Output(); err != nil {
			return execError(err)
		}
		return nil
	}

	for _, args := range [][]string{
		{"init", dest},
		{"-C", dest, "remote", "add", "origin", url},
		{"-C", dest, "fetch", "--depth", "1", "origin", commit},
		{"-C", dest, "checkout", "FETCH_HEAD"},
	} {
		cmd := exec.CommandContext(ctx, "git", args...)
		if _, err := cmd.Output(); err != nil {
			return execError(err)
		}
	}
	return nil
}

func dirPopulated(dir string) (bool, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return len(entries) > 0, nil
}

func clearDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if err := os.RemoveAll(dir + string(os.PathSeparator) + e.Name()); err != nil {
			return err
		}
	}
	return nil
}

// isCommitHash reports whether s is a full 40-character hex SHA-1 hash.
func isCommitHash(s string) bool {
	return len(s) == 40 && isHexString(s)
}

// isShortCommitHash reports whether s looks like an abbreviated commit hash
// (7-39 hex chars).
func isShortCommitHash(s string) bool {
	return len(s) >= 7 && len(s) < 40 && isHexString(s)
}

func isHexString(s string) bool {
	if len(s) == 0 {
		return false
	}
	for _, c := range s {
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')) {
			return false
		}
	}
	return true
}

func execError(err error) error {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
		return fmt.Errorf("%w: %s", err, strings.TrimSpace(string(exitErr.Stderr)))
	}
	return err
}
