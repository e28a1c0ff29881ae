// Package diff computes typed, highlighted per-line diffs between two
// revisions of a file.
package diff

// LineKind discriminates the variants of a diff line. Each kind carries a
// fixed combination of line numbers, enforced by the constructors below:
// added lines exist only in the new file, removed lines only in the old,
// context lines in both, and hunk headers in neither.
type LineKind int

const (
	Context LineKind = iota
	Added
	Removed
	HunkHeader
)

// String returns the kind name for logs and test failure output.
func (k LineKind) String() string {
	switch k {
	case Context:
		return "context"
	case Added:
		return "added"
	case Removed:
		return "removed"
	case HunkHeader:
		return "hunk_header"
	default:
		return "unknown"
	}
}

// Line is a single line of a rendered diff. Line numbers are 1-based; zero
// means the kind has no line on that side. Construct through the kind
// constructors rather than literally, so the kind invariants hold.
type Line struct {
	Kind        LineKind
	OldLineNo   int
	NewLineNo   int
	PlainText   string // raw text without the diff prefix
	Highlighted string // ANSI-styled text for the same line
}

// ContextLine builds a line present in both revisions.
func ContextLine(oldNo, newNo int, plain, highlighted string) Line {
	return Line{Kind: Context, OldLineNo: oldNo, NewLineNo: newNo, PlainText: plain, Highlighted: highlighted}
}

// AddedLine builds a line present only in the new revision.
func AddedLine(newNo int, plain, highlighted string) Line {
	return Line{Kind: Added, NewLineNo: newNo, PlainText: plain, Highlighted: highlighted}
}

// RemovedLine builds a line present only in the old revision.
func RemovedLine(oldNo int, plain, highlighted string) Line {
	return Line{Kind: Removed, OldLineNo: oldNo, PlainText: plain, Highlighted: highlighted}
}

// HunkHeaderLine builds a hunk boundary; the header string is both the plain
// and displayed text.
func HunkHeaderLine(header string) Line {
	return Line{Kind: HunkHeader, PlainText: header, Highlighted: header}
}

// File is the diff of a single file. The slice index of a Line is its stable
// view position: cursor, selection, and comments all address lines by it.
// Empty Lines means "nothing to display" (guard-triggered or unchanged), not
// an error.
type File struct {
	Path     string
	Language string
	Lines    []Line
}

// Empty reports whether the file has no displayable diff.
func (f File) Empty() bool {
	return len(f.Lines) == 0
}

// Result is the diff across all changed files. BaseRef and TargetRef are
// display labels, not necessarily resolvable revisions.
type Result struct {
	Files     []File
	BaseRef   string
	TargetRef string
}
