// Package diff renders an interactive, commentable diff: a virtualized
// viewport over one file's diff lines plus the file tree and modals around
// it.
package diff

import (
	"fmt"
	"image/color"
	"strings"

	lipgloss "charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"

	corediff "github.com/colonyops/comb/internal/core/diff"
	"github.com/colonyops/comb/internal/core/styles"
)

// Viewport is a virtualized diff renderer. It renders one row per visible
// line on demand and memoizes rows in a fixed-capacity LRU, so scrolling a
// large diff re-renders only rows whose inputs changed.
type Viewport struct {
	file   corediff.File
	loaded bool

	cursor  int
	anchor  int // selection anchor, -1 when no selection
	scrollX int
	scrollY int
	width   int
	height  int
	margin  int

	commented map[int]bool
	cache     *rowCache
	dragging  bool
}

// NewViewport creates a viewport with the given row-cache capacity and
// auto-scroll margin.
func NewViewport(cacheCapacity, margin int) *Viewport {
	return &Viewport{
		anchor: -1,
		margin: margin,
		cache:  newRowCache(cacheCapacity),
	}
}

// SetSize updates the viewport dimensions.
func (v *Viewport) SetSize(width, height int) {
	v.width = width
	v.height = height
	v.clampScroll()
}

// LoadFile replaces the active file: cursor and scroll reset, selection is
// dropped, and the row cache is invalidated.
func (v *Viewport) LoadFile(file corediff.File) {
	v.file = file
	v.loaded = true
	v.cursor = 0
	v.anchor = -1
	v.scrollX = 0
	v.scrollY = 0
	v.dragging = false
	v.cache.Clear()
}

// Clear empties the viewport.
func (v *Viewport) Clear() {
	v.file = corediff.File{}
	v.loaded = false
	v.commented = nil
	v.anchor = -1
	v.cursor = 0
	v.scrollY = 0
	v.scrollX = 0
	v.cache.Clear()
}

// SetComments replaces the commented-line set and invalidates the cache.
func (v *Viewport) SetComments(lines map[int]bool) {
	v.commented = lines
	v.cache.Clear()
}

func (v *Viewport) Cursor() int    { return v.cursor }
func (v *Viewport) LineCount() int { return len(v.file.Lines) }
func (v *Viewport) Loaded() bool   { return v.loaded }

// SelectionRange returns the normalized selection bounds while a selection
// anchor is set.
func (v *Viewport) SelectionRange() (start, end int, ok bool) {
	if v.anchor < 0 {
		return 0, 0, false
	}
	return min(v.anchor, v.cursor), max(v.anchor, v.cursor), true
}

// ToggleSelection anchors a selection at the cursor, or drops it if one is
// already anchored.
func (v *Viewport) ToggleSelection() {
	if v.anchor < 0 {
		v.anchor = v.cursor
	} else {
		v.anchor = -1
	}
}

// CancelSelection drops any active selection.
func (v *Viewport) CancelSelection() {
	v.anchor = -1
}

// MoveCursor moves the cursor by delta, clamped to the file.
func (v *Viewport) MoveCursor(delta int) {
	count := v.LineCount()
	if count == 0 {
		return
	}
	v.cursor = max(0, min(count-1, v.cursor+delta))
	v.scrollToCursor()
}

// CursorTop jumps to the first line.
func (v *Viewport) CursorTop() {
	if v.LineCount() == 0 {
		return
	}
	v.cursor = 0
	v.scrollY = 0
}

// CursorBottom jumps to the last line.
func (v *Viewport) CursorBottom() {
	count := v.LineCount()
	if count == 0 {
		return
	}
	v.cursor = count - 1
	v.scrollToCursor()
}

// PageDown moves the cursor down half a viewport.
func (v *Viewport) PageDown() { v.MoveCursor(v.height / 2) }

// PageUp moves the cursor up half a viewport.
func (v *Viewport) PageUp() { v.MoveCursor(-(v.height / 2)) }

// NextHunk jumps to the nearest hunk header after the cursor.
func (v *Viewport) NextHunk() {
	for i := v.cursor + 1; i < len(v.file.Lines); i++ {
		if v.file.Lines[i].Kind == corediff.HunkHeader {
			v.cursor = i
			v.scrollToCursor()
			return
		}
	}
}

// PrevHunk jumps to the nearest hunk header before the cursor.
func (v *Viewport) PrevHunk() {
	for i := v.cursor - 1; i >= 0; i-- {
		if v.file.Lines[i].Kind == corediff.HunkHeader {
			v.cursor = i
			v.scrollToCursor()
			return
		}
	}
}

// SetCursor places the cursor on an absolute line and scrolls it into view.
func (v *Viewport) SetCursor(index int) {
	count := v.LineCount()
	if count == 0 {
		return
	}
	v.cursor = max(0, min(count-1, index))
	v.scrollToCursor()
}

// ScrollBy adjusts the vertical scroll offset without moving the cursor.
func (v *Viewport) ScrollBy(delta int) {
	v.scrollY += delta
	v.clampScroll()
}

// ScrollHorizontal adjusts the horizontal offset.
func (v *Viewport) ScrollHorizontal(delta int) {
	v.scrollX = max(0, v.scrollX+delta)
}

// MouseDown starts a drag selection: anchor and cursor land on the clicked
// line.
func (v *Viewport) MouseDown(y int) {
	idx, ok := v.yToIndex(y)
	if !ok {
		return
	}
	v.anchor = idx
	v.cursor = idx
	v.dragging = true
}

// MouseMove extends the drag selection to the hovered line.
func (v *Viewport) MouseMove(y int) {
	if !v.dragging {
		return
	}
	idx, ok := v.yToIndex(y)
	if ok && idx != v.cursor {
		v.cursor = idx
	}
}

// MouseUp ends the drag. The selection persists until commented or
// cancelled, matching keyboard selection.
func (v *Viewport) MouseUp() {
	v.dragging = false
}

func (v *Viewport) yToIndex(y int) (int, bool) {
	idx := v.scrollY + y
	if !v.loaded || idx < 0 || idx >= v.LineCount() {
		return 0, false
	}
	return idx, true
}

func (v *Viewport) scrollToCursor() {
	top := v.scrollY
	bottom := top + v.height
	switch {
	case v.cursor < top+v.margin:
		v.scrollY = max(0, v.cursor-v.margin)
	case v.cursor >= bottom-v.margin:
		v.scrollY = v.cursor - v.height + v.margin + 1
	}
	v.clampScroll()
}

func (v *Viewport) clampScroll() {
	maxScroll := max(0, v.LineCount()-v.height)
	v.scrollY = max(0, min(maxScroll, v.scrollY))
	v.scrollX = max(0, v.scrollX)
}

// View renders every visible row.
func (v *Viewport) View() string {
	rows := make([]string, 0, max(0, v.height))
	for offset := 0; offset < v.height; offset++ {
		rows = append(rows, v.RenderRow(offset))
	}
	return strings.Join(rows, "\n")
}

// RenderRow renders the row at the given visible offset, serving repeated
// inputs from the cache.
func (v *Viewport) RenderRow(offset int) string {
	idx := v.scrollY + offset
	if !v.loaded || idx < 0 || idx >= v.LineCount() {
		return strings.Repeat(" ", max(0, v.width))
	}

	selStart, selEnd := -1, -1
	if s, e, ok := v.SelectionRange(); ok {
		selStart, selEnd = s, e
	}

	key := rowKey{
		index:    idx,
		scrollX:  v.scrollX,
		width:    v.width,
		cursor:   idx == v.cursor,
		selStart: selStart,
		selEnd:   selEnd,
		comment:  v.commented[idx],
	}
	if row, ok := v.cache.Get(key); ok {
		return row
	}

	row := v.buildRow(idx, key)
	v.cache.Put(key, row)
	return row
}

// buildRow assembles one row: comment marker, gutters, kind prefix, and the
// highlighted text, cropped for horizontal scroll and washed with the
// winning background.
func (v *Viewport) buildRow(idx int, key rowKey) string {
	line := v.file.Lines[idx]

	marker := "  "
	if key.comment {
		marker = styles.CommentMarkerStyle.Render(styles.IconComment) + " "
	}

	var body string
	var bg color.Color

	if line.Kind == corediff.HunkHeader {
		body = styles.DiffHunkHeaderStyle.Render(line.PlainText)
		bg = styles.ColorBgHunk
	} else {
		gutter := styles.DiffGutterStyle.Render(
			fmt.Sprintf("%4s %4s ", lineNo(line.OldLineNo), lineNo(line.NewLineNo)))

		var prefix string
		switch line.Kind {
		case corediff.Added:
			prefix = styles.DiffAddedStyle.Render("+")
			bg = styles.ColorBgAdded
		case corediff.Removed:
			prefix = styles.DiffRemovedStyle.Render("-")
			bg = styles.ColorBgRemoved
		default:
			prefix = " "
		}

		body = gutter + prefix + line.Highlighted
	}

	// Background precedence: cursor > selection > comment > kind > hunk.
	if key.selStart >= 0 && key.selStart <= idx && idx <= key.selEnd {
		bg = styles.ColorBgSelection
	} else if key.comment {
		bg = styles.ColorBgComment
	}

	rowStyle := lipgloss.NewStyle().Width(v.width)
	if key.cursor {
		bg = styles.ColorBgCursor
		rowStyle = rowStyle.Bold(true)
	}

	content := marker + body
	content = ansi.TruncateLeft(content, v.scrollX, "")
	content = ansi.Truncate(content, v.width, "")

	if bg != nil {
		// Syntax highlighting ends spans with a full SGR reset, which would
		// kill the row background mid-line. Downgrade resets to
		// foreground-only before applying the wash.
		content = strings.ReplaceAll(content, "\x1b[0m", "\x1b[39m")
		rowStyle = rowStyle.Background(bg)
	}

	return rowStyle.Render(content)
}

func lineNo(n int) string {
	if n == 0 {
		return ""
	}
	return fmt.Sprintf("%d", n)
}
