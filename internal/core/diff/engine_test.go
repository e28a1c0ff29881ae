package diff

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/colonyops/comb/internal/core/highlight"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// plainAdapter highlights nothing and recognizes no languages.
type plainAdapter struct{}

func (plainAdapter) Lines(text, _ string) []string { return highlight.SplitLines(text) }
func (plainAdapter) Detect(string) string          { return "" }

// shortAdapter simulates a highlighter whose output is shorter than the
// source, to exercise the index-overrun fallback.
type shortAdapter struct{ n int }

func (s shortAdapter) Lines(text, _ string) []string {
	lines := highlight.SplitLines(text)
	if len(lines) > s.n {
		lines = lines[:s.n]
	}
	for i := range lines {
		lines[i] = "styled:" + lines[i]
	}
	return lines
}
func (shortAdapter) Detect(string) string { return "fake" }

func newTestEngine() *Engine {
	return NewEngine(Options{Limits: Limits{MaxFileBytes: 1 << 20, MaxDiffLines: 1000}}, plainAdapter{}, plainAdapter{})
}

func kinds(lines []Line) []LineKind {
	out := make([]LineKind, len(lines))
	for i, l := range lines {
		out[i] = l.Kind
	}
	return out
}

func TestComputeForFile_SingleEdit(t *testing.T) {
	e := newTestEngine()

	file := e.ComputeForFile("a\nb\nc\n", "a\nx\nc\n", "f.txt")

	require.Equal(t, []LineKind{HunkHeader, Context, Removed, Added, Context}, kinds(file.Lines))

	assert.Equal(t, "a", file.Lines[1].PlainText)
	assert.Equal(t, "b", file.Lines[2].PlainText)
	assert.Equal(t, "x", file.Lines[3].PlainText)
	assert.Equal(t, "c", file.Lines[4].PlainText)
}

func TestComputeForFile_NoTrailingNewline(t *testing.T) {
	e := newTestEngine()

	// The final line has no trailing newline; it must still come through as
	// its own diff line instead of merging with the one after it.
	file := e.ComputeForFile("a\nb", "a\nb\nc\n", "f.txt")

	require.Equal(t, []LineKind{HunkHeader, Context, Context, Added}, kinds(file.Lines))
	assert.Equal(t, "b", file.Lines[2].PlainText)
	assert.Equal(t, 2, file.Lines[2].OldLineNo)
	assert.Equal(t, 2, file.Lines[2].NewLineNo)
	assert.Equal(t, "c", file.Lines[3].PlainText)
	assert.Equal(t, 3, file.Lines[3].NewLineNo)

	// Same guarantee when both sides end without a newline and the last
	// line is the one that changed.
	file = e.ComputeForFile("a\nb", "a\nx", "f.txt")

	require.Equal(t, []LineKind{HunkHeader, Context, Removed, Added}, kinds(file.Lines))
	assert.Equal(t, "b", file.Lines[2].PlainText)
	assert.Equal(t, "x", file.Lines[3].PlainText)
	assert.Equal(t, 2, file.Lines[2].OldLineNo)
	assert.Equal(t, 2, file.Lines[3].NewLineNo)
}

func TestComputeForFile_KindInvariants(t *testing.T) {
	e := newTestEngine()

	file := e.ComputeForFile("a\nb\nc\nd\n", "a\nx\nc\n", "f.txt")
	require.NotEmpty(t, file.Lines)

	for i, line := range file.Lines {
		switch line.Kind {
		case Added:
			assert.Zero(t, line.OldLineNo, "line %d", i)
			assert.Positive(t, line.NewLineNo, "line %d", i)
		case Removed:
			assert.Positive(t, line.OldLineNo, "line %d", i)
			assert.Zero(t, line.NewLineNo, "line %d", i)
		case Context:
			assert.Positive(t, line.OldLineNo, "line %d", i)
			assert.Positive(t, line.NewLineNo, "line %d", i)
		case HunkHeader:
			assert.Zero(t, line.OldLineNo, "line %d", i)
			assert.Zero(t, line.NewLineNo, "line %d", i)
		}
	}
}

func TestComputeForFile_LineNumbersAcrossHunks(t *testing.T) {
	e := newTestEngine()

	// Two edits far enough apart to produce separate hunks.
	var oldB, newB strings.Builder
	for i := 0; i < 30; i++ {
		oldB.WriteString(lineN(i) + "\n")
		if i == 5 {
			newB.WriteString("changed-five\n")
		} else if i == 25 {
			newB.WriteString("changed-twentyfive\n")
		} else {
			newB.WriteString(lineN(i) + "\n")
		}
	}

	file := e.ComputeForFile(oldB.String(), newB.String(), "f.txt")

	headers := 0
	for _, line := range file.Lines {
		if line.Kind == HunkHeader {
			headers++
		}
	}
	require.Equal(t, 2, headers, "expected two hunks")

	// Line numbers after the second hunk header must come from that header,
	// not continue from the first hunk.
	for _, line := range file.Lines {
		if line.Kind == Added && line.PlainText == "changed-twentyfive" {
			assert.Equal(t, 26, line.NewLineNo)
		}
		if line.Kind == Removed && line.PlainText == lineN(25) {
			assert.Equal(t, 26, line.OldLineNo)
		}
	}
}

func TestComputeForFile_IdenticalInputsYieldNoLines(t *testing.T) {
	e := newTestEngine()

	file := e.ComputeForFile("same\ncontent\n", "same\ncontent\n", "f.txt")
	assert.True(t, file.Empty())
	assert.Equal(t, "f.txt", file.Path)
}

func TestComputeForFile_Idempotent(t *testing.T) {
	e := newTestEngine()

	first := e.ComputeForFile("a\nb\n", "a\nc\nb\n", "f.txt")
	second := e.ComputeForFile("a\nb\n", "a\nc\nb\n", "f.txt")
	assert.Equal(t, first, second)
}

func TestComputeForFile_BinaryGuard(t *testing.T) {
	e := newTestEngine()

	assert.True(t, e.ComputeForFile("binary\x00blob", "text\n", "f.bin").Empty())
	assert.True(t, e.ComputeForFile("text\n", "binary\x00blob", "f.bin").Empty())
}

func TestComputeForFile_SizeGuard(t *testing.T) {
	e := NewEngine(Options{Limits: Limits{MaxFileBytes: 64, MaxDiffLines: 1000}}, plainAdapter{}, plainAdapter{})

	big := strings.Repeat("x\n", 100)
	file := e.ComputeForFile(big, big+"y\n", "f.txt")
	assert.True(t, file.Empty())
}

func TestComputeForFile_DiffSizeGuard(t *testing.T) {
	e := NewEngine(Options{Limits: Limits{MaxFileBytes: 1 << 20, MaxDiffLines: 10}}, plainAdapter{}, plainAdapter{})

	var oldB, newB strings.Builder
	for i := 0; i < 50; i++ {
		oldB.WriteString(lineN(i) + "\n")
		newB.WriteString("new-" + lineN(i) + "\n")
	}

	file := e.ComputeForFile(oldB.String(), newB.String(), "f.txt")
	assert.True(t, file.Empty())
}

func TestComputeForFile_HighlighterMismatchFallsBack(t *testing.T) {
	// Highlighter returns a single styled line regardless of input length.
	e := NewEngine(Options{Limits: Limits{MaxFileBytes: 1 << 20, MaxDiffLines: 1000}}, shortAdapter{n: 1}, shortAdapter{n: 1})

	file := e.ComputeForFile("a\nb\nc\n", "a\nb\nz\n", "f.txt")
	require.False(t, file.Empty())

	for _, line := range file.Lines {
		if line.Kind == HunkHeader {
			continue
		}
		if line.PlainText == "a" {
			assert.Equal(t, "styled:a", line.Highlighted)
		} else {
			// Past the styled array: raw text, no crash.
			assert.Equal(t, line.PlainText, line.Highlighted)
		}
	}
}

func TestComputeForFile_NewFile(t *testing.T) {
	e := newTestEngine()

	file := e.ComputeForFile("", "brand\nnew\n", "f.txt")
	require.Equal(t, []LineKind{HunkHeader, Added, Added}, kinds(file.Lines))
	assert.Equal(t, 1, file.Lines[1].NewLineNo)
	assert.Equal(t, 2, file.Lines[2].NewLineNo)
}

func lineN(i int) string {
	return "line-" + string(rune('a'+i%26)) + "-" + strings.Repeat("i", i/26+1)
}

// fakeVCS is an in-memory git.Client.
type fakeVCS struct {
	base       map[string]string // path -> content at base revision
	working    map[string]string // path -> working tree content
	committed  []string
	unstaged   []string
	changedErr error
	branch     string
}

func (f *fakeVCS) FileAtRevision(_ context.Context, _, path string) (string, bool, error) {
	content, ok := f.base[path]
	return content, ok, nil
}

func (f *fakeVCS) WorkingFile(path string) (string, bool, error) {
	content, ok := f.working[path]
	return content, ok, nil
}

func (f *fakeVCS) ChangedPaths(context.Context, string, string) ([]string, error) {
	return f.committed, f.changedErr
}

func (f *fakeVCS) UncommittedPaths(context.Context) []string { return f.unstaged }

func (f *fakeVCS) DefaultBranch(context.Context) string {
	if f.branch == "" {
		return "main"
	}
	return f.branch
}

func TestCompute_MergesAndDropsEmpty(t *testing.T) {
	vcs := &fakeVCS{
		base: map[string]string{
			"changed.go":   "old\n",
			"unchanged.go": "same\n",
		},
		working: map[string]string{
			"changed.go":   "new\n",
			"unchanged.go": "same\n",
			"untracked.go": "fresh\n",
		},
		committed: []string{"changed.go", "unchanged.go"},
		unstaged:  []string{"untracked.go", "changed.go"},
	}

	e := newTestEngine()
	result, err := e.Compute(t.Context(), vcs, Request{})
	require.NoError(t, err)

	// unchanged.go contributes no lines and is dropped; the merged order is
	// first-seen: committed list, then uncommitted additions.
	require.Len(t, result.Files, 2)
	assert.Equal(t, "changed.go", result.Files[0].Path)
	assert.Equal(t, "untracked.go", result.Files[1].Path)
	assert.Equal(t, "main", result.BaseRef)
	assert.Equal(t, "working tree", result.TargetRef)
}

func TestCompute_RangeFailurePropagates(t *testing.T) {
	vcs := &fakeVCS{changedErr: errors.New("bad ref")}

	e := newTestEngine()
	_, err := e.Compute(t.Context(), vcs, Request{BaseRef: "nope"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "diff unavailable")
}

func TestCompute_UncommittedModeSkipsRangeQuery(t *testing.T) {
	vcs := &fakeVCS{
		changedErr: errors.New("should not be called"),
		working:    map[string]string{"w.go": "data\n"},
		unstaged:   []string{"w.go"},
	}

	e := newTestEngine()
	result, err := e.Compute(t.Context(), vcs, Request{Uncommitted: true})
	require.NoError(t, err)
	require.Len(t, result.Files, 1)
	assert.Equal(t, "HEAD", result.BaseRef)
}

func TestListFiles_StubsOnly(t *testing.T) {
	vcs := &fakeVCS{
		base:      map[string]string{"a.go": "old\n"},
		working:   map[string]string{"a.go": "new\n"},
		committed: []string{"a.go"},
	}

	e := newTestEngine()
	result, err := e.ListFiles(t.Context(), vcs, Request{})
	require.NoError(t, err)
	require.Len(t, result.Files, 1)
	assert.True(t, result.Files[0].Empty(), "stub files carry no lines")
}

func TestCompute_ExcludeFilters(t *testing.T) {
	vcs := &fakeVCS{
		base:      map[string]string{"a.go": "old\n", "vendor/x.go": "old\n"},
		working:   map[string]string{"a.go": "new\n", "vendor/x.go": "new\n"},
		committed: []string{"a.go", "vendor/x.go"},
	}

	e := NewEngine(Options{
		Limits:  Limits{MaxFileBytes: 1 << 20, MaxDiffLines: 1000},
		Exclude: func(path string) bool { return strings.HasPrefix(path, "vendor/") },
	}, plainAdapter{}, plainAdapter{})

	result, err := e.Compute(t.Context(), vcs, Request{})
	require.NoError(t, err)
	require.Len(t, result.Files, 1)
	assert.Equal(t, "a.go", result.Files[0].Path)
}
