package diff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	corediff "github.com/colonyops/comb/internal/core/diff"
)

func testFile(lineCount int) corediff.File {
	f := corediff.File{Path: "f.go"}
	f.Lines = append(f.Lines, corediff.HunkHeaderLine("@@ -1,3 +1,3 @@"))
	for i := 1; i < lineCount; i++ {
		switch i % 3 {
		case 0:
			f.Lines = append(f.Lines, corediff.AddedLine(i, "added line", "added line"))
		case 1:
			f.Lines = append(f.Lines, corediff.RemovedLine(i, "removed line", "removed line"))
		default:
			f.Lines = append(f.Lines, corediff.ContextLine(i, i, "context line", "context line"))
		}
	}
	return f
}

func newTestViewport(lineCount int) *Viewport {
	v := NewViewport(64, 3)
	v.SetSize(60, 10)
	v.LoadFile(testFile(lineCount))
	return v
}

func TestViewport_RenderRowDeterministic(t *testing.T) {
	v := newTestViewport(20)

	first := v.RenderRow(2)
	second := v.RenderRow(2)
	assert.Equal(t, first, second, "identical inputs must render byte-identical rows")
}

func TestViewport_CursorMoveChangesOnlyAffectedRows(t *testing.T) {
	v := newTestViewport(20)

	row0 := v.RenderRow(0)
	row5 := v.RenderRow(5)

	v.MoveCursor(1)

	assert.NotEqual(t, row0, v.RenderRow(0), "old cursor row must re-render")
	assert.NotEqual(t, row5, v.RenderRow(1), "new cursor row must re-render")
	assert.Equal(t, row5, v.RenderRow(5), "unaffected row must be unchanged")
}

func TestViewport_OutOfRangeRowIsBlank(t *testing.T) {
	v := newTestViewport(3)

	blank := v.RenderRow(7)
	assert.Equal(t, 60, len([]rune(blank)))
	assert.Equal(t, "", stripSpaces(blank))
}

func stripSpaces(s string) string {
	out := ""
	for _, r := range s {
		if r != ' ' {
			out += string(r)
		}
	}
	return out
}

func TestViewport_ClampAndEmptyFile(t *testing.T) {
	v := NewViewport(64, 3)
	v.SetSize(60, 10)

	// No file loaded: all motion is a no-op.
	v.MoveCursor(5)
	v.CursorBottom()
	assert.Zero(t, v.Cursor())

	v.LoadFile(corediff.File{Path: "empty.go"})
	v.MoveCursor(1)
	v.PageDown()
	assert.Zero(t, v.Cursor())

	v.LoadFile(testFile(5))
	v.MoveCursor(100)
	assert.Equal(t, 4, v.Cursor())
	v.MoveCursor(-100)
	assert.Zero(t, v.Cursor())
}

func TestViewport_SelectionNormalized(t *testing.T) {
	v := newTestViewport(20)

	v.SetCursor(8)
	v.ToggleSelection()
	v.MoveCursor(-4) // drag upward

	start, end, ok := v.SelectionRange()
	require.True(t, ok)
	assert.Equal(t, 4, start)
	assert.Equal(t, 8, end)

	v.CancelSelection()
	_, _, ok = v.SelectionRange()
	assert.False(t, ok)
}

func TestViewport_ToggleSelectionTwiceCancels(t *testing.T) {
	v := newTestViewport(20)

	v.ToggleSelection()
	_, _, ok := v.SelectionRange()
	require.True(t, ok)

	v.ToggleSelection()
	_, _, ok = v.SelectionRange()
	assert.False(t, ok)
}

func TestViewport_MouseDragSelection(t *testing.T) {
	v := newTestViewport(30)

	v.MouseDown(2)
	assert.Equal(t, 2, v.Cursor())

	v.MouseMove(6)
	start, end, ok := v.SelectionRange()
	require.True(t, ok)
	assert.Equal(t, 2, start)
	assert.Equal(t, 6, end)

	// Release keeps the selection alive.
	v.MouseUp()
	start, end, ok = v.SelectionRange()
	require.True(t, ok)
	assert.Equal(t, 2, start)
	assert.Equal(t, 6, end)

	// Motion after release no longer extends it.
	v.MouseMove(9)
	_, end, _ = v.SelectionRange()
	assert.Equal(t, 6, end)
}

func TestViewport_MouseDownMapsThroughScroll(t *testing.T) {
	v := newTestViewport(50)
	v.ScrollBy(20)

	v.MouseDown(3)
	assert.Equal(t, 23, v.Cursor())

	// Click below content: ignored.
	prev := v.Cursor()
	v.MouseDown(40)
	assert.Equal(t, prev, v.Cursor())
}

func TestViewport_AutoScrollMargin(t *testing.T) {
	v := newTestViewport(50)

	// Moving within the top margin-free zone does not scroll.
	v.MoveCursor(1)
	v.MoveCursor(1)
	assert.Zero(t, v.scrollY)

	// Crossing the bottom margin scrolls just enough to restore it.
	v.SetCursor(0)
	v.scrollY = 0
	for i := 0; i < 7; i++ {
		v.MoveCursor(1)
	}
	// height 10, margin 3: cursor 7 hits the boundary (>= 10-3).
	assert.Equal(t, 1, v.scrollY)
}

func TestViewport_NextPrevHunk(t *testing.T) {
	f := corediff.File{Path: "f.go"}
	f.Lines = append(f.Lines, corediff.HunkHeaderLine("@@ -1 +1 @@"))
	f.Lines = append(f.Lines, corediff.ContextLine(1, 1, "a", "a"))
	f.Lines = append(f.Lines, corediff.HunkHeaderLine("@@ -10 +10 @@"))
	f.Lines = append(f.Lines, corediff.ContextLine(10, 10, "b", "b"))

	v := NewViewport(64, 3)
	v.SetSize(60, 10)
	v.LoadFile(f)

	v.NextHunk()
	assert.Equal(t, 2, v.Cursor())
	v.NextHunk()
	assert.Equal(t, 2, v.Cursor(), "no hunk after: stay put")
	v.PrevHunk()
	assert.Equal(t, 0, v.Cursor())
	v.PrevHunk()
	assert.Equal(t, 0, v.Cursor(), "no hunk before: stay put")
}

func TestViewport_LoadFileResetsState(t *testing.T) {
	v := newTestViewport(30)
	v.SetCursor(12)
	v.ToggleSelection()
	v.SetComments(map[int]bool{3: true})

	v.LoadFile(testFile(8))

	assert.Zero(t, v.Cursor())
	assert.Zero(t, v.scrollY)
	_, _, ok := v.SelectionRange()
	assert.False(t, ok)
}

func TestViewport_CommentMarkerRendered(t *testing.T) {
	v := newTestViewport(10)

	plain := v.RenderRow(4)
	v.SetComments(map[int]bool{4: true})
	marked := v.RenderRow(4)

	assert.NotEqual(t, plain, marked)
	assert.Contains(t, marked, "●")
}

func TestViewport_HorizontalScrollChangesRow(t *testing.T) {
	v := newTestViewport(10)

	before := v.RenderRow(1)
	v.ScrollHorizontal(8)
	after := v.RenderRow(1)
	assert.NotEqual(t, before, after)

	// Scrolling back left is clamped at zero and restores the original row.
	v.ScrollHorizontal(-100)
	assert.Equal(t, before, v.RenderRow(1))
}
