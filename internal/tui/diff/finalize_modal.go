package diff

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	lipgloss "charm.land/lipgloss/v2"
	"github.com/charmbracelet/glamour"

	"github.com/colonyops/comb/internal/core/styles"
)

// SubmitAction represents how the review document leaves the session.
type SubmitAction int

const (
	SubmitActionNone SubmitAction = iota
	SubmitActionClipboard
	SubmitActionClipboardAndAgent
)

// FinalizeModal previews the submission document and offers delivery
// options.
type FinalizeModal struct {
	doc         string
	preview     string
	selectedIdx int
	options     []submitOption
	width       int
	height      int
	confirmed   bool
	cancelled   bool
}

type submitOption struct {
	label       string
	description string
	action      SubmitAction
}

// NewFinalizeModal creates the submission modal. The document is rendered
// through glamour for the preview pane; rendering failures fall back to the
// raw markdown.
func NewFinalizeModal(doc string, hasAgent bool, width, height int) FinalizeModal {
	options := []submitOption{
		{
			label:       "Copy to clipboard",
			description: "Copy review feedback to system clipboard",
			action:      SubmitActionClipboard,
		},
	}
	if hasAgent {
		options = append(options, submitOption{
			label:       "Copy and send to agent",
			description: "Also deliver feedback to the attached tmux pane",
			action:      SubmitActionClipboardAndAgent,
		})
	}

	return FinalizeModal{
		doc:         doc,
		preview:     renderPreview(doc, min(70, max(30, width-20))),
		selectedIdx: 0,
		options:     options,
		width:       width,
		height:      height,
	}
}

func renderPreview(doc string, wrap int) string {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithStyles(styles.GlamourStyle()),
		glamour.WithWordWrap(wrap),
	)
	if err != nil {
		return doc
	}
	out, err := renderer.Render(doc)
	if err != nil {
		return doc
	}
	return strings.TrimRight(out, "\n")
}

// Update handles input events for the finalize modal.
func (m FinalizeModal) Update(msg tea.Msg) (FinalizeModal, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "j", "down", "tab":
			m.selectedIdx = (m.selectedIdx + 1) % len(m.options)
		case "k", "up", "shift+tab":
			m.selectedIdx = (m.selectedIdx - 1 + len(m.options)) % len(m.options)
		case "enter":
			m.confirmed = true
		case "esc":
			m.cancelled = true
		}
	}
	return m, nil
}

// View renders the finalize modal.
func (m FinalizeModal) View() string {
	var content strings.Builder
	content.WriteString(styles.ModalTitleStyle.Render("Submit Review") + "\n\n")

	// Preview, clipped so the options stay on screen.
	previewLines := strings.Split(m.preview, "\n")
	maxPreview := max(4, m.height-14)
	if len(previewLines) > maxPreview {
		previewLines = previewLines[:maxPreview]
		previewLines = append(previewLines, styles.TextMutedStyle.Render("…"))
	}
	content.WriteString(strings.Join(previewLines, "\n"))
	content.WriteString("\n\n")

	for i, opt := range m.options {
		prefix := "  "
		labelStyle := lipgloss.NewStyle()
		if i == m.selectedIdx {
			prefix = "▸ "
			labelStyle = styles.TextPrimaryBoldStyle
		}
		content.WriteString(prefix + labelStyle.Render(opt.label) + "\n")
		content.WriteString("  " + styles.TextMutedStyle.Render(opt.description) + "\n\n")
	}

	content.WriteString(styles.ModalHelpStyle.Render("[j/k] select • [enter] confirm • [esc] cancel"))

	return lipgloss.Place(m.width, m.height,
		lipgloss.Center, lipgloss.Center,
		styles.ModalStyle.Width(min(76, max(40, m.width-8))).Render(content.String()))
}

// Confirmed returns true if user confirmed the selection.
func (m FinalizeModal) Confirmed() bool { return m.confirmed }

// Cancelled returns true if user cancelled.
func (m FinalizeModal) Cancelled() bool { return m.cancelled }

// SelectedAction returns the chosen delivery action.
func (m FinalizeModal) SelectedAction() SubmitAction {
	if m.selectedIdx >= 0 && m.selectedIdx < len(m.options) {
		return m.options[m.selectedIdx].action
	}
	return SubmitActionNone
}

// Document returns the submission document being previewed.
func (m FinalizeModal) Document() string { return m.doc }
