// Package git provides the version-control queries comb needs for diffing.
package git

import "context"

// Client defines the git operations used by the diff engine and review TUI.
// All paths are repo-relative; the implementation is bound to one repository.
type Client interface {
	// FileAtRevision returns the file contents at rev. ok is false when the
	// file does not exist at that revision; that is not an error.
	FileAtRevision(ctx context.Context, rev, path string) (content string, ok bool, err error)
	// WorkingFile returns the file contents from the working tree, or
	// ok=false if the file does not exist on disk.
	WorkingFile(path string) (content string, ok bool, err error)
	// ChangedPaths lists files changed between base and target using
	// merge-base (three-dot) semantics. Failure propagates to the caller.
	ChangedPaths(ctx context.Context, base, target string) ([]string, error)
	// UncommittedPaths lists tracked-modified plus untracked files. This is a
	// best-effort query: odd repo states degrade to an empty result.
	UncommittedPaths(ctx context.Context) []string
	// DefaultBranch returns the repository's default branch name.
	DefaultBranch(ctx context.Context) string
}
