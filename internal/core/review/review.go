// Package review holds in-memory review comments and formats them for
// submission.
package review

// Comment is inline feedback on a range of diff lines. StartLine and EndLine
// are inclusive view positions within the file's rendered diff; SourceStart
// and SourceEnd are real file line numbers, kept for display in the
// submission document.
type Comment struct {
	File        string
	StartLine   int
	EndLine     int
	CommentText string
	SourceStart int
	SourceEnd   int
	// DiffContent is the joined plain text of the commented lines. It anchors
	// the comment to content rather than position; nothing rebinds on it yet.
	DiffContent string
}
