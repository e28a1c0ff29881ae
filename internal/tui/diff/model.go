package diff

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	lipgloss "charm.land/lipgloss/v2"
	"github.com/rs/zerolog"

	corediff "github.com/colonyops/comb/internal/core/diff"
	"github.com/colonyops/comb/internal/core/git"
	"github.com/colonyops/comb/internal/core/logging"
	"github.com/colonyops/comb/internal/core/review"
	"github.com/colonyops/comb/internal/core/styles"
	"github.com/colonyops/comb/internal/core/tmux"
)

// FocusedPanel represents which panel has keyboard focus.
type FocusedPanel int

const (
	FocusFileTree FocusedPanel = iota
	FocusViewport
)

type activeModal int

const (
	modalNone activeModal = iota
	modalComment
	modalFinalize
)

// Options configures the review session model.
type Options struct {
	Engine        *corediff.Engine
	VCS           git.Client
	Store         *review.Store
	Clipboard     review.ClipboardSink
	Agent         *tmux.Client
	AgentPane     string // tmux target; empty when no agent is attached
	Request       corediff.Request
	CacheCapacity int
	ScrollMargin  int
}

// Model is the root review session: file navigation, mode switching, comment
// lifecycle, and submission.
type Model struct {
	engine    *corediff.Engine
	vcs       git.Client
	store     *review.Store
	clipboard review.ClipboardSink
	agent     *tmux.Client
	agentPane string

	req        corediff.Request
	result     corediff.Result
	loaded     map[int]bool // indexes whose full diff has been computed
	currentIdx int

	tree     FileTreeModel
	viewport *Viewport
	focused  FocusedPanel

	modal         activeModal
	commentModal  CommentModal
	finalizeModal FinalizeModal
	pendingStart  int
	pendingEnd    int

	notice string // transient status message, replaced on the next action

	width  int
	height int
	log    zerolog.Logger
}

// New creates the review session over an already-listed diff result. Files
// are stubs until opened; the first open computes the full diff.
func New(result corediff.Result, opts Options) Model {
	m := Model{
		engine:    opts.Engine,
		vcs:       opts.VCS,
		store:     opts.Store,
		clipboard: opts.Clipboard,
		agent:     opts.Agent,
		agentPane: opts.AgentPane,
		req:       opts.Request,
		result:    result,
		loaded:    map[int]bool{},
		tree:      NewFileTree(result.Files),
		viewport:  NewViewport(opts.CacheCapacity, opts.ScrollMargin),
		focused:   FocusFileTree,
		log:       logging.Component("tui"),
	}
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		if !m.viewport.Loaded() && len(m.result.Files) > 0 {
			m.loadFile(0)
		}
		return m, nil

	case tea.KeyMsg:
		return m.updateKey(msg)

	case tea.MouseClickMsg:
		if m.modal == modalNone && msg.Button == tea.MouseLeft {
			if y, ok := m.viewportY(msg.X, msg.Y); ok {
				m.viewport.MouseDown(y)
				m.focused = FocusViewport
			}
		}
		return m, nil

	case tea.MouseMotionMsg:
		if m.modal == modalNone && msg.Button == tea.MouseLeft {
			if y, ok := m.viewportY(msg.X, msg.Y); ok {
				m.viewport.MouseMove(y)
			}
		}
		return m, nil

	case tea.MouseReleaseMsg:
		m.viewport.MouseUp()
		return m, nil

	case tea.MouseWheelMsg:
		if m.modal == modalNone {
			switch msg.Button {
			case tea.MouseWheelUp:
				m.viewport.ScrollBy(-3)
			case tea.MouseWheelDown:
				m.viewport.ScrollBy(3)
			}
		}
		return m, nil
	}

	return m, nil
}

func (m Model) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.modal {
	case modalComment:
		return m.updateCommentModal(msg)
	case modalFinalize:
		return m.updateFinalizeModal(msg)
	}

	m.notice = ""

	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit

	case "tab":
		if m.focused == FocusFileTree {
			m.focused = FocusViewport
		} else {
			m.focused = FocusFileTree
		}
		return m, nil

	case "J":
		if m.currentIdx < len(m.result.Files)-1 {
			m.loadFile(m.currentIdx + 1)
		}
		return m, nil

	case "K":
		if m.currentIdx > 0 {
			m.loadFile(m.currentIdx - 1)
		}
		return m, nil

	case "m":
		m.cycleMode()
		return m, nil

	case "ctrl+s":
		return m.openFinalize()

	case "S":
		return m.submit(SubmitActionClipboardAndAgent)
	}

	if m.focused == FocusFileTree {
		return m.updateTree(msg)
	}
	return m.updateViewport(msg)
}

func (m Model) updateTree(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "enter" {
		if idx := m.tree.SelectedIndex(); idx >= 0 {
			m.loadFile(idx)
			m.focused = FocusViewport
		}
	}

	var cmd tea.Cmd
	m.tree, cmd = m.tree.Update(msg)

	// Keep the viewport in sync while moving through files.
	switch msg.String() {
	case "j", "k", "up", "down", "g", "G":
		if idx := m.tree.SelectedIndex(); idx >= 0 && idx != m.currentIdx {
			m.loadFile(idx)
		}
	}
	return m, cmd
}

func (m Model) updateViewport(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "j", "down":
		m.viewport.MoveCursor(1)
	case "k", "up":
		m.viewport.MoveCursor(-1)
	case "g":
		m.viewport.CursorTop()
	case "G":
		m.viewport.CursorBottom()
	case "ctrl+d", "}":
		m.viewport.PageDown()
	case "ctrl+u", "{":
		m.viewport.PageUp()
	case "]":
		m.viewport.NextHunk()
	case "[":
		m.viewport.PrevHunk()
	case "h", "left":
		m.viewport.ScrollHorizontal(-8)
	case "l", "right":
		m.viewport.ScrollHorizontal(8)
	case "v":
		m.viewport.ToggleSelection()
	case "esc":
		m.viewport.CancelSelection()
	case "c":
		return m.openComment()
	case "n":
		m.navigateComment(1)
	case "N":
		m.navigateComment(-1)
	case "u":
		if removed, ok := m.store.RemoveLast(); ok {
			m.refreshComments()
			m.notice = fmt.Sprintf("Removed last comment (%s)", removed.File)
		}
	case "x":
		if path, ok := m.currentPath(); ok {
			if _, ok := m.store.RemoveAtCursor(path, m.viewport.Cursor()); ok {
				m.refreshComments()
				m.notice = "Deleted comment"
			}
		}
	}
	return m, nil
}

// -- File loading and mode cycling --

// loadFile opens the file at index, computing its full diff on first open.
func (m *Model) loadFile(idx int) {
	if idx < 0 || idx >= len(m.result.Files) {
		return
	}
	m.currentIdx = idx

	if !m.loaded[idx] {
		file, err := m.engine.Load(context.Background(), m.vcs, m.result.Files[idx].Path, m.req)
		if err != nil {
			m.log.Warn().Err(err).Str("path", m.result.Files[idx].Path).Msg("load diff failed")
			m.notice = fmt.Sprintf("Error: %v", err)
			return
		}
		m.result.Files[idx] = file
		m.loaded[idx] = true
		m.tree.SetFiles(m.result.Files)
	}

	m.viewport.LoadFile(m.result.Files[idx])
	m.viewport.SetComments(m.store.CommentedLines(m.result.Files[idx].Path))
	m.tree.Select(idx)
	m.tree.SetCommented(m.store.CommentedFiles())
}

// cycleMode flips between uncommitted and branch-relative diffs and
// recomputes the file list under the new mode.
func (m *Model) cycleMode() {
	req := m.req
	req.Uncommitted = !req.Uncommitted

	result, err := m.engine.ListFiles(context.Background(), m.vcs, req)
	if err != nil {
		m.log.Warn().Err(err).Msg("mode switch failed")
		m.notice = fmt.Sprintf("Error: %v", err)
		return
	}

	m.req = req
	m.result = result
	m.loaded = map[int]bool{}
	m.currentIdx = 0
	m.tree.SetFiles(result.Files)
	m.tree.SetCommented(m.store.CommentedFiles())

	if len(result.Files) > 0 {
		m.loadFile(0)
	} else {
		m.viewport.Clear()
	}

	label := "branch"
	if m.req.Uncommitted {
		label = "uncommitted"
	}
	m.notice = fmt.Sprintf("Mode: %s (%d files)", label, len(result.Files))
}

// -- Comments --

func (m Model) openComment() (tea.Model, tea.Cmd) {
	path, ok := m.currentPath()
	if !ok || m.viewport.LineCount() == 0 {
		return m, nil
	}

	start, end, selected := m.viewport.SelectionRange()
	if !selected {
		start = m.viewport.Cursor()
		end = start
	}

	m.pendingStart = start
	m.pendingEnd = end
	m.commentModal = NewCommentModal(start, end, m.rangeText(start, end), m.width, m.height)
	m.modal = modalComment
	m.viewport.CancelSelection()
	m.log.Debug().Str("path", path).Int("start", start).Int("end", end).Msg("comment requested")
	return m, nil
}

func (m Model) updateCommentModal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.commentModal, cmd = m.commentModal.Update(msg)

	switch {
	case m.commentModal.Submitted():
		m.modal = modalNone
		m.addComment(strings.TrimSpace(m.commentModal.Value()))
	case m.commentModal.Cancelled():
		m.modal = modalNone
	}
	return m, cmd
}

func (m *Model) addComment(text string) {
	path, ok := m.currentPath()
	if !ok || text == "" {
		return
	}

	srcStart, srcEnd := m.sourceRange(m.pendingStart, m.pendingEnd)
	m.store.Add(review.Comment{
		File:        path,
		StartLine:   m.pendingStart,
		EndLine:     m.pendingEnd,
		CommentText: text,
		SourceStart: srcStart,
		SourceEnd:   srcEnd,
		DiffContent: m.rangeText(m.pendingStart, m.pendingEnd),
	})
	m.refreshComments()
	m.notice = fmt.Sprintf("Comment added (%d total)", m.store.Len())
}

func (m *Model) navigateComment(direction int) {
	path, ok := m.currentPath()
	if !ok {
		return
	}
	if target, found := m.store.Navigate(path, m.viewport.Cursor(), direction); found {
		m.viewport.SetCursor(target)
	}
}

func (m *Model) refreshComments() {
	if path, ok := m.currentPath(); ok {
		m.viewport.SetComments(m.store.CommentedLines(path))
	}
	m.tree.SetCommented(m.store.CommentedFiles())
}

// sourceRange maps a view-line range to real file line numbers, preferring
// the new side and skipping hunk headers.
func (m Model) sourceRange(start, end int) (int, int) {
	lines := m.result.Files[m.currentIdx].Lines
	srcStart, srcEnd := 0, 0
	for i := start; i <= end && i < len(lines); i++ {
		no := lines[i].NewLineNo
		if no == 0 {
			no = lines[i].OldLineNo
		}
		if no == 0 {
			continue
		}
		if srcStart == 0 {
			srcStart = no
		}
		srcEnd = no
	}
	return srcStart, srcEnd
}

// rangeText joins the plain text of the given view-line range.
func (m Model) rangeText(start, end int) string {
	lines := m.result.Files[m.currentIdx].Lines
	var out []string
	for i := start; i <= end && i < len(lines); i++ {
		out = append(out, lines[i].PlainText)
	}
	return strings.Join(out, "\n")
}

// -- Submission --

func (m Model) openFinalize() (tea.Model, tea.Cmd) {
	if m.store.Len() == 0 {
		m.notice = "No comments to submit"
		return m, nil
	}
	doc := review.Format(m.store.All())
	m.finalizeModal = NewFinalizeModal(doc, m.agentPane != "", m.width, m.height)
	m.modal = modalFinalize
	return m, nil
}

func (m Model) updateFinalizeModal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.finalizeModal, cmd = m.finalizeModal.Update(msg)

	switch {
	case m.finalizeModal.Confirmed():
		m.modal = modalNone
		return m.submit(m.finalizeModal.SelectedAction())
	case m.finalizeModal.Cancelled():
		m.modal = modalNone
	}
	return m, cmd
}

// submit formats all comments and delivers the document to the clipboard
// and, when requested and attached, the agent pane.
func (m Model) submit(action SubmitAction) (tea.Model, tea.Cmd) {
	if m.store.Len() == 0 {
		m.notice = "No comments to submit"
		return m, nil
	}

	ctx := context.Background()
	doc := review.Format(m.store.All())

	if err := m.clipboard.Write(ctx, doc); err != nil {
		m.log.Error().Err(err).Msg("clipboard write failed")
		m.notice = fmt.Sprintf("Clipboard error: %v", err)
		return m, nil
	}
	m.notice = fmt.Sprintf("Copied %d comments to clipboard", m.store.Len())

	if action == SubmitActionClipboardAndAgent {
		if m.agentPane == "" {
			m.notice = "No agent session attached, clipboard only"
			return m, nil
		}
		if err := m.agent.SendReview(ctx, m.agentPane, doc); err != nil {
			m.log.Error().Err(err).Str("pane", m.agentPane).Msg("agent send failed")
			m.notice = fmt.Sprintf("Agent error: %v", err)
			return m, nil
		}
		return m, tea.Quit
	}

	return m, nil
}

// -- Layout and rendering --

const statusBarHeight = 1

func (m *Model) layout() {
	treeWidth := m.treeWidth()
	panelHeight := max(1, m.height-statusBarHeight)
	m.tree.SetSize(treeWidth, panelHeight)
	m.viewport.SetSize(max(1, m.width-treeWidth-1), panelHeight)
}

func (m Model) treeWidth() int {
	return m.width * 30 / 100
}

// viewportY maps a terminal coordinate into a viewport-relative row, or
// reports false when the point is outside the viewport panel.
func (m Model) viewportY(x, y int) (int, bool) {
	if x <= m.treeWidth() || y >= m.height-statusBarHeight {
		return 0, false
	}
	return y, true
}

// View implements tea.Model.
func (m Model) View() tea.View {
	if m.width == 0 || m.height == 0 {
		return fullscreen("")
	}

	switch m.modal {
	case modalComment:
		return fullscreen(m.commentModal.View())
	case modalFinalize:
		return fullscreen(m.finalizeModal.View())
	}

	treeWidth := m.treeWidth()
	panelHeight := max(1, m.height-statusBarHeight)

	separator := lipgloss.NewStyle().
		Width(1).
		Height(panelHeight).
		Render(styles.TextMutedStyle.Render("│"))

	var treeStyle lipgloss.Style
	if m.focused == FocusFileTree {
		treeStyle = lipgloss.NewStyle().Width(treeWidth).Height(panelHeight).
			Foreground(styles.ColorForeground)
	} else {
		treeStyle = lipgloss.NewStyle().Width(treeWidth).Height(panelHeight)
	}

	content := lipgloss.JoinHorizontal(lipgloss.Top,
		treeStyle.Render(m.tree.View()),
		separator,
		m.viewport.View(),
	)

	return fullscreen(lipgloss.JoinVertical(lipgloss.Left, content, m.statusBar()))
}

func fullscreen(content string) tea.View {
	v := tea.NewView(content)
	v.AltScreen = true
	v.MouseMode = tea.MouseModeCellMotion
	return v
}

// statusBar summarizes the session: file counts, comments, cursor position,
// refs, and mode.
func (m Model) statusBar() string {
	var left string
	if len(m.result.Files) == 0 {
		left = "No files changed"
	} else {
		path, _ := m.currentPath()
		left = fmt.Sprintf("%d files | %d comments | %s:%d/%d | %s..%s",
			len(m.result.Files),
			m.store.Len(),
			path,
			m.viewport.Cursor()+1,
			m.viewport.LineCount(),
			m.result.BaseRef,
			m.result.TargetRef,
		)
	}

	right := m.notice
	if right == "" {
		right = "c: comment | ctrl+s: submit | m: mode | q: quit"
	}

	spacing := max(1, m.width-lipgloss.Width(left)-lipgloss.Width(right)-2)
	bar := " " + left + strings.Repeat(" ", spacing) + right + " "
	return styles.StatusBarStyle.Width(m.width).Render(bar)
}

func (m Model) currentPath() (string, bool) {
	if m.currentIdx < 0 || m.currentIdx >= len(m.result.Files) {
		return "", false
	}
	return m.result.Files[m.currentIdx].Path, true
}
