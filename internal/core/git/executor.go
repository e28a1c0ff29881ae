package git

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/colonyops/comb/internal/core/logging"
	"github.com/colonyops/comb/pkg/executil"
	"github.com/rs/zerolog"
)

// Executor implements Client using the git command-line tool.
type Executor struct {
	repoDir string
	gitPath string
	exec    executil.Executor
	log     zerolog.Logger
}

// NewExecutor creates a git client bound to the given repository directory.
func NewExecutor(repoDir, gitPath string, exec executil.Executor) *Executor {
	return &Executor{
		repoDir: repoDir,
		gitPath: gitPath,
		exec:    exec,
		log:     logging.Component("git"),
	}
}

func (e *Executor) FileAtRevision(ctx context.Context, rev, path string) (string, bool, error) {
	out, err := e.exec.RunDir(ctx, e.repoDir, e.gitPath, "show", rev+":"+path)
	if err != nil {
		// git show fails both for missing files and for bad revisions; the
		// distinction doesn't matter here, absent is absent.
		return "", false, nil
	}
	return string(out), true, nil
}

func (e *Executor) WorkingFile(path string) (string, bool, error) {
	data, err := os.ReadFile(filepath.Join(e.repoDir, path))
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("read working file %s: %w", path, err)
	}
	return string(data), true, nil
}

func (e *Executor) ChangedPaths(ctx context.Context, base, target string) ([]string, error) {
	out, err := e.exec.RunDir(ctx, e.repoDir, e.gitPath, "diff", "--name-only", base+"..."+target)
	if err != nil {
		return nil, fmt.Errorf("list changed paths %s...%s: %w", base, target, err)
	}
	return splitPaths(string(out)), nil
}

func (e *Executor) UncommittedPaths(ctx context.Context) []string {
	var paths []string
	seen := map[string]bool{}

	// Tracked files with uncommitted changes. This can fail in unusual repo
	// states (e.g. an unborn HEAD); degrade to nothing rather than error.
	out, err := e.exec.RunDir(ctx, e.repoDir, e.gitPath, "diff", "--name-only", "HEAD")
	if err != nil {
		e.log.Debug().Err(err).Msg("diff against HEAD failed, skipping tracked changes")
	} else {
		for _, p := range splitPaths(string(out)) {
			if !seen[p] {
				paths = append(paths, p)
				seen[p] = true
			}
		}
	}

	// Untracked files.
	out, err = e.exec.RunDir(ctx, e.repoDir, e.gitPath, "ls-files", "--others", "--exclude-standard")
	if err != nil {
		e.log.Debug().Err(err).Msg("ls-files failed, skipping untracked files")
		return paths
	}
	for _, p := range splitPaths(string(out)) {
		if !seen[p] {
			paths = append(paths, p)
			seen[p] = true
		}
	}

	return paths
}

func (e *Executor) DefaultBranch(ctx context.Context) string {
	out, err := e.exec.RunDir(ctx, e.repoDir, e.gitPath, "symbolic-ref", "refs/remotes/origin/HEAD", "--short")
	if err == nil {
		ref := strings.TrimSpace(string(out))
		if name, ok := strings.CutPrefix(ref, "origin/"); ok && name != "" {
			return name
		}
	}

	// No origin/HEAD ref; fall back to whichever of main/master exists.
	for _, name := range []string{"main", "master"} {
		if _, err := e.exec.RunDir(ctx, e.repoDir, e.gitPath, "rev-parse", "--verify", "refs/heads/"+name); err == nil {
			return name
		}
	}

	return "main"
}

func splitPaths(out string) []string {
	var paths []string
	for line := range strings.SplitSeq(out, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			paths = append(paths, line)
		}
	}
	return paths
}
