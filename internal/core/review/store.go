package review

import "sort"

// Store keeps comments in creation order. It is mutated only from the UI
// event loop, so there is no locking; readers get copies or derived sets,
// never the backing slice.
type Store struct {
	comments  []Comment
	commented map[string]map[int]bool // file -> view lines covered by a comment
}

func NewStore() *Store {
	return &Store{commented: map[string]map[int]bool{}}
}

// Add appends a comment. The caller validates the range against the file's
// line count before calling.
func (s *Store) Add(c Comment) {
	s.comments = append(s.comments, c)
	s.rebuild()
}

// RemoveAtCursor removes the first comment on file whose range contains line.
// It returns the removed comment and whether one was found.
func (s *Store) RemoveAtCursor(file string, line int) (Comment, bool) {
	for i, c := range s.comments {
		if c.File == file && c.StartLine <= line && line <= c.EndLine {
			removed := c
			s.comments = append(s.comments[:i], s.comments[i+1:]...)
			s.rebuild()
			return removed, true
		}
	}
	return Comment{}, false
}

// RemoveLast undoes the most recent comment across all files. It returns the
// removed comment and whether the store was non-empty.
func (s *Store) RemoveLast() (Comment, bool) {
	if len(s.comments) == 0 {
		return Comment{}, false
	}
	removed := s.comments[len(s.comments)-1]
	s.comments = s.comments[:len(s.comments)-1]
	s.rebuild()
	return removed, true
}

// Navigate returns the start line of the nearest comment on file strictly
// after (direction > 0) or before (direction < 0) line, wrapping to the
// first or last comment when none lies in that direction. The second return
// is false when the file has no comments.
func (s *Store) Navigate(file string, line, direction int) (int, bool) {
	fileComments := s.ForFile(file)
	if len(fileComments) == 0 {
		return 0, false
	}

	// Creation order is not line order; nearest-match needs the latter.
	sort.Slice(fileComments, func(i, j int) bool {
		return fileComments[i].StartLine < fileComments[j].StartLine
	})

	if direction > 0 {
		for _, c := range fileComments {
			if c.StartLine > line {
				return c.StartLine, true
			}
		}
		return fileComments[0].StartLine, true
	}

	for i := len(fileComments) - 1; i >= 0; i-- {
		if fileComments[i].StartLine < line {
			return fileComments[i].StartLine, true
		}
	}
	return fileComments[len(fileComments)-1].StartLine, true
}

// CommentedLines returns the set of view lines on file covered by any
// comment. The set is rebuilt on every mutation, so callers may hold it for
// a render pass but not across edits.
func (s *Store) CommentedLines(file string) map[int]bool {
	return s.commented[file]
}

// ForFile returns the comments on file in creation order.
func (s *Store) ForFile(file string) []Comment {
	var out []Comment
	for _, c := range s.comments {
		if c.File == file {
			out = append(out, c)
		}
	}
	return out
}

// All returns every comment in creation order.
func (s *Store) All() []Comment {
	out := make([]Comment, len(s.comments))
	copy(out, s.comments)
	return out
}

func (s *Store) Len() int { return len(s.comments) }

// CommentedFiles returns the set of files carrying at least one comment,
// used for file-tree markers.
func (s *Store) CommentedFiles() map[string]bool {
	out := map[string]bool{}
	for _, c := range s.comments {
		out[c.File] = true
	}
	return out
}

func (s *Store) rebuild() {
	s.commented = map[string]map[int]bool{}
	for _, c := range s.comments {
		lines := s.commented[c.File]
		if lines == nil {
			lines = map[int]bool{}
			s.commented[c.File] = lines
		}
		for i := c.StartLine; i <= c.EndLine; i++ {
			lines[i] = true
		}
	}
}
