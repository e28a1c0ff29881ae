package diff

import (
	"fmt"
	"strings"

	"charm.land/bubbles/v2/textarea"
	tea "charm.land/bubbletea/v2"
	lipgloss "charm.land/lipgloss/v2"

	"github.com/colonyops/comb/internal/core/styles"
)

// CommentModal handles comment entry for a selected line range.
type CommentModal struct {
	input          textarea.Model
	lineRange      string // e.g., "Lines 10-15"
	contextPreview string // First 100 chars of the commented diff text
	width          int
	height         int
	submitted      bool
	cancelled      bool
}

// NewCommentModal creates a comment entry modal for the given view-line
// range. The line numbers are display labels; context is the plain text of
// the commented lines.
func NewCommentModal(startLine, endLine int, context string, width, height int) CommentModal {
	ta := textarea.New()
	ta.Placeholder = "Enter your review comment..."
	ta.SetHeight(4)
	ta.SetWidth(min(70, max(20, width-10)))
	ta.Focus()

	lineRange := fmt.Sprintf("Lines %d-%d", startLine, endLine)
	if startLine == endLine {
		lineRange = fmt.Sprintf("Line %d", startLine)
	}

	preview := strings.ReplaceAll(context, "\n", " ")
	if r := []rune(preview); len(r) > 100 {
		preview = string(r[:97]) + "..."
	}

	return CommentModal{
		input:          ta,
		lineRange:      lineRange,
		contextPreview: preview,
		width:          width,
		height:         height,
	}
}

// Update handles messages.
func (m CommentModal) Update(msg tea.Msg) (CommentModal, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "ctrl+s", "ctrl+d":
			if strings.TrimSpace(m.input.Value()) != "" {
				m.submitted = true
				return m, nil
			}
		case "esc":
			m.cancelled = true
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the modal centered in the available area.
func (m CommentModal) View() string {
	content := strings.Join([]string{
		styles.ModalTitleStyle.Render("Add Review Comment"),
		styles.TextMutedStyle.Render(m.lineRange),
		styles.TextMutedStyle.Italic(true).Render("\"" + m.contextPreview + "\""),
		"",
		m.input.View(),
		styles.ModalHelpStyle.Render("ctrl+s: submit • esc: cancel"),
	}, "\n")

	return lipgloss.Place(m.width, m.height,
		lipgloss.Center, lipgloss.Center,
		styles.ModalStyle.Render(content))
}

// Submitted returns true if the comment was submitted.
func (m CommentModal) Submitted() bool { return m.submitted }

// Cancelled returns true if the modal was cancelled.
func (m CommentModal) Cancelled() bool { return m.cancelled }

// Value returns the entered comment text.
func (m CommentModal) Value() string { return m.input.Value() }
