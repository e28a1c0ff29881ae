package review

import (
	"fmt"
	"strings"
)

// Format renders comments as the submission document: a markdown page with
// one section per comment in creation order, each headed by the file path
// and its real source line range.
func Format(comments []Comment) string {
	if len(comments) == 0 {
		return ""
	}

	sections := []string{"# Code Review", ""}
	for _, c := range comments {
		if c.SourceStart == c.SourceEnd {
			sections = append(sections, fmt.Sprintf("## %s#L%d", c.File, c.SourceStart))
		} else {
			sections = append(sections, fmt.Sprintf("## %s#L%d-L%d", c.File, c.SourceStart, c.SourceEnd))
		}
		sections = append(sections, c.CommentText, "")
	}

	return strings.Join(sections, "\n")
}
