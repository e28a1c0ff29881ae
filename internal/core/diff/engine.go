package diff

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/colonyops/comb/internal/core/git"
	"github.com/colonyops/comb/internal/core/highlight"
	"github.com/colonyops/comb/internal/core/logging"
	"github.com/pmezard/go-difflib/difflib"
	"github.com/rs/zerolog"
)

// Limits bounds the work the engine will do for one file. Oversized inputs
// are not errors: the file stays listed with no lines to display.
type Limits struct {
	MaxFileBytes int
	MaxDiffLines int
}

// Options configures an Engine.
type Options struct {
	Limits Limits
	// Exclude filters paths out of the changed-file list. Nil excludes nothing.
	Exclude func(path string) bool
}

// Request selects what to diff. Both modes compare against the working tree:
// uncommitted mode uses HEAD as the base, branch mode uses BaseRef (or the
// repository default branch when empty).
type Request struct {
	BaseRef     string
	Uncommitted bool
}

// Engine turns two text blobs into a typed per-line diff. It is purely
// synchronous; diffing and highlighting happen once at file-load time, never
// per rendered row.
type Engine struct {
	limits  Limits
	exclude func(string) bool
	hl      highlight.Highlighter
	detect  highlight.Detector
	log     zerolog.Logger
}

// NewEngine creates a diff engine with the given thresholds and highlighting
// adapters.
func NewEngine(opts Options, hl highlight.Highlighter, detect highlight.Detector) *Engine {
	exclude := opts.Exclude
	if exclude == nil {
		exclude = func(string) bool { return false }
	}
	return &Engine{
		limits:  opts.Limits,
		exclude: exclude,
		hl:      hl,
		detect:  detect,
		log:     logging.Component("diff"),
	}
}

// hunkHeaderRe matches "@@ -oldStart[,count] +newStart[,count] @@..." headers.
var hunkHeaderRe = regexp.MustCompile(`^@@ -(\d+)(?:,\d+)? \+(\d+)(?:,\d+)? @@`)

// ComputeForFile diffs two whole-file text blobs into a File. Guard
// violations (binary content, oversized input, oversized diff) yield a File
// with no lines rather than an error.
func (e *Engine) ComputeForFile(oldText, newText, path string) File {
	language := e.detect.Detect(path)
	file := File{Path: path, Language: language}

	if strings.Contains(oldText, "\x00") || strings.Contains(newText, "\x00") {
		e.log.Debug().Str("path", path).Msg("skipping binary file")
		return file
	}

	if len(oldText) > e.limits.MaxFileBytes || len(newText) > e.limits.MaxFileBytes {
		e.log.Debug().Str("path", path).Int("limit", e.limits.MaxFileBytes).Msg("skipping oversized file")
		return file
	}

	unified, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        splitKeepEnds(oldText),
		B:        splitKeepEnds(newText),
		FromFile: "a/" + path,
		ToFile:   "b/" + path,
		Context:  3,
	})
	if err != nil {
		e.log.Warn().Err(err).Str("path", path).Msg("unified diff failed")
		return file
	}
	if unified == "" {
		return file
	}

	diffLines := strings.Split(strings.TrimSuffix(unified, "\n"), "\n")
	if len(diffLines) > e.limits.MaxDiffLines {
		e.log.Debug().Str("path", path).Int("lines", len(diffLines)).Msg("skipping oversized diff")
		return file
	}

	oldHL := e.hl.Lines(oldText, language)
	newHL := e.hl.Lines(newText, language)

	file.Lines = walkUnified(diffLines, oldHL, newHL)
	return file
}

// walkUnified converts unified-diff output into typed lines, pairing each
// content line with its independently highlighted source line. The counters
// are reset from every hunk header, so the pairing survives context gaps.
func walkUnified(diffLines, oldHL, newHL []string) []Line {
	var out []Line
	oldIdx, newIdx := 0, 0

	for _, raw := range diffLines {
		if m := hunkHeaderRe.FindStringSubmatch(raw); m != nil {
			oldStart, _ := strconv.Atoi(m[1])
			newStart, _ := strconv.Atoi(m[2])
			oldIdx = oldStart - 1
			newIdx = newStart - 1
			out = append(out, HunkHeaderLine(raw))
			continue
		}

		if strings.HasPrefix(raw, "---") || strings.HasPrefix(raw, "+++") {
			continue
		}
		if raw == "" {
			continue
		}

		plain := raw[1:]
		switch raw[0] {
		case '-':
			out = append(out, RemovedLine(oldIdx+1, plain, styledOrPlain(oldHL, oldIdx, plain)))
			oldIdx++
		case '+':
			out = append(out, AddedLine(newIdx+1, plain, styledOrPlain(newHL, newIdx, plain)))
			newIdx++
		case ' ':
			out = append(out, ContextLine(oldIdx+1, newIdx+1, plain, styledOrPlain(newHL, newIdx, plain)))
			oldIdx++
			newIdx++
		}
	}

	return out
}

// styledOrPlain guards against a highlighter line-count mismatch: an index
// past the styled array falls back to the raw line instead of failing row
// construction later.
func styledOrPlain(styled []string, idx int, plain string) string {
	if idx >= 0 && idx < len(styled) {
		return styled[idx]
	}
	return plain
}

// Load computes the full diff for a single changed path under the request's
// mode. The old side comes from the base revision, the new side from the
// working tree; a file absent on either side diffs against empty content.
func (e *Engine) Load(ctx context.Context, vcs git.Client, path string, req Request) (File, error) {
	base := e.baseRef(ctx, vcs, req)

	oldText, _, err := vcs.FileAtRevision(ctx, base, path)
	if err != nil {
		return File{Path: path}, fmt.Errorf("load %s at %s: %w", path, base, err)
	}

	newText, _, err := vcs.WorkingFile(path)
	if err != nil {
		return File{Path: path}, fmt.Errorf("load working copy of %s: %w", path, err)
	}

	return e.ComputeForFile(oldText, newText, path), nil
}

// Compute diffs every changed file under the request's mode, dropping files
// that contribute no lines.
func (e *Engine) Compute(ctx context.Context, vcs git.Client, req Request) (Result, error) {
	result, paths, err := e.listChanged(ctx, vcs, req)
	if err != nil {
		return Result{}, err
	}

	for _, path := range paths {
		file, err := e.Load(ctx, vcs, path, req)
		if err != nil {
			return Result{}, err
		}
		if !file.Empty() {
			result.Files = append(result.Files, file)
		}
	}

	return result, nil
}

// ListFiles returns stub Files (path and language only) for every changed
// path, so the caller can lazily Load the one the user actually opens.
func (e *Engine) ListFiles(ctx context.Context, vcs git.Client, req Request) (Result, error) {
	result, paths, err := e.listChanged(ctx, vcs, req)
	if err != nil {
		return Result{}, err
	}

	for _, path := range paths {
		result.Files = append(result.Files, File{Path: path, Language: e.detect.Detect(path)})
	}

	return result, nil
}

// listChanged merges committed-range and uncommitted path lists, deduplicated
// in first-seen order, with excludes applied.
func (e *Engine) listChanged(ctx context.Context, vcs git.Client, req Request) (Result, []string, error) {
	base := e.baseRef(ctx, vcs, req)
	result := Result{BaseRef: base, TargetRef: "working tree"}

	var paths []string
	seen := map[string]bool{}
	add := func(list []string) {
		for _, p := range list {
			if !seen[p] && !e.exclude(p) {
				paths = append(paths, p)
				seen[p] = true
			}
		}
	}

	if !req.Uncommitted {
		committed, err := vcs.ChangedPaths(ctx, base, "HEAD")
		if err != nil {
			return Result{}, nil, fmt.Errorf("diff unavailable: %w", err)
		}
		add(committed)
	}
	add(vcs.UncommittedPaths(ctx))

	return result, paths, nil
}

func (e *Engine) baseRef(ctx context.Context, vcs git.Client, req Request) string {
	if req.Uncommitted {
		return "HEAD"
	}
	if req.BaseRef != "" {
		return req.BaseRef
	}
	return vcs.DefaultBranch(ctx)
}

// splitKeepEnds splits text into lines that retain their trailing newline,
// the shape difflib expects. A final line without one gets it appended:
// difflib concatenates elements verbatim into the unified output, and a
// newline-less element would run into the next diff line and corrupt the
// walk. Empty text yields no lines.
func splitKeepEnds(text string) []string {
	if text == "" {
		return nil
	}
	lines := strings.SplitAfter(text, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	} else {
		lines[len(lines)-1] += "\n"
	}
	return lines
}
