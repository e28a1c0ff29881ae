package diff

import (
	"fmt"
	"path/filepath"
	"strings"

	tea "charm.land/bubbletea/v2"
	lipgloss "charm.land/lipgloss/v2"

	corediff "github.com/colonyops/comb/internal/core/diff"
	"github.com/colonyops/comb/internal/core/styles"
)

// TreeNode represents a node in the file tree (either a directory or file).
type TreeNode struct {
	Name     string // Directory or file name
	Path     string // Full path
	IsDir    bool   // True if this is a directory
	Index    int    // Index into the diff file list (-1 for directories)
	Children []*TreeNode
	Expanded bool
	Depth    int // Depth in tree (0 = root level)
}

// FileTreeModel displays a hierarchical list of changed files. Files carrying
// review comments get a marker glyph in front of their name.
type FileTreeModel struct {
	files     []corediff.File
	root      *TreeNode
	visible   []*TreeNode // Currently visible nodes (flattened view)
	selected  int         // Index in visible list
	commented map[string]bool
	width     int
	height    int
}

// NewFileTree creates a new file tree from diff files.
func NewFileTree(files []corediff.File) FileTreeModel {
	m := FileTreeModel{files: files}
	m.root = buildTree(files)
	m.rebuildVisible()
	return m
}

// buildTree constructs a hierarchical tree from a flat list of files.
func buildTree(files []corediff.File) *TreeNode {
	root := &TreeNode{
		IsDir:    true,
		Expanded: true,
		Index:    -1,
		Depth:    -1, // Root is at depth -1
	}

	for i, file := range files {
		if file.Path == "" {
			continue
		}

		parts := strings.Split(file.Path, "/")
		current := root

		for d := 0; d < len(parts)-1; d++ {
			dirName := parts[d]
			found := false
			for _, child := range current.Children {
				if child.IsDir && child.Name == dirName {
					current = child
					found = true
					break
				}
			}
			if !found {
				newDir := &TreeNode{
					Name:     dirName,
					Path:     strings.Join(parts[:d+1], "/"),
					IsDir:    true,
					Index:    -1,
					Expanded: true,
					Depth:    d,
				}
				current.Children = append(current.Children, newDir)
				current = newDir
			}
		}

		current.Children = append(current.Children, &TreeNode{
			Name:  parts[len(parts)-1],
			Path:  file.Path,
			Index: i,
			Depth: len(parts) - 1,
		})
	}

	return root
}

// rebuildVisible rebuilds the visible node list based on expand/collapse state.
func (m *FileTreeModel) rebuildVisible() {
	m.visible = nil
	m.collectVisible(m.root)
	if m.selected >= len(m.visible) {
		m.selected = max(0, len(m.visible)-1)
	}
}

func (m *FileTreeModel) collectVisible(node *TreeNode) {
	if node.Depth >= 0 {
		m.visible = append(m.visible, node)
	}
	if node.IsDir && node.Expanded {
		for _, child := range node.Children {
			m.collectVisible(child)
		}
	}
}

// Update handles key messages for file tree navigation.
func (m FileTreeModel) Update(msg tea.Msg) (FileTreeModel, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "j", "down":
			if m.selected < len(m.visible)-1 {
				m.selected++
			}
		case "k", "up":
			if m.selected > 0 {
				m.selected--
			}
		case "g":
			m.selected = 0
		case "G":
			if len(m.visible) > 0 {
				m.selected = len(m.visible) - 1
			}
		case "enter", "right", " ":
			if m.selected < len(m.visible) {
				node := m.visible[m.selected]
				if node.IsDir {
					node.Expanded = !node.Expanded
					m.rebuildVisible()
				}
			}
		case "left":
			if m.selected < len(m.visible) {
				node := m.visible[m.selected]
				if node.IsDir && node.Expanded {
					node.Expanded = false
					m.rebuildVisible()
				} else if node.Depth > 0 {
					m.jumpToParent()
				}
			}
		}
	}
	return m, nil
}

// jumpToParent moves selection to the parent directory of the current node.
func (m *FileTreeModel) jumpToParent() {
	if m.selected >= len(m.visible) {
		return
	}
	targetDepth := m.visible[m.selected].Depth - 1
	for i := m.selected - 1; i >= 0; i-- {
		if m.visible[i].IsDir && m.visible[i].Depth == targetDepth {
			m.selected = i
			return
		}
	}
}

// View renders the file tree.
func (m FileTreeModel) View() string {
	if len(m.files) == 0 {
		return styles.TextMutedStyle.Render("No files changed")
	}

	var lines []string
	for i, node := range m.visible {
		lines = append(lines, m.renderNode(node, i == m.selected))
	}

	content := strings.Join(lines, "\n")
	return lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Render(content)
}

// renderNode renders a tree node (directory or file) with indentation.
func (m FileTreeModel) renderNode(node *TreeNode, selected bool) string {
	indent := strings.Repeat("  ", node.Depth)

	var icon, name, stats string
	if node.IsDir {
		icon = dirIcon(node.Expanded)
		name = node.Name + "/"
	} else {
		icon = fileIcon(node.Path)
		name = node.Name
		if m.commented[node.Path] {
			name = styles.CommentMarkerStyle.Render(styles.IconComment) + " " + name
		}
		if added, removed := m.fileStats(node.Index); added+removed > 0 {
			stats = fmt.Sprintf("+%d -%d", added, removed)
		}
	}

	iconStyle := styles.TextForegroundStyle
	nameStyle := styles.TextForegroundStyle
	if selected {
		iconStyle = styles.TextPrimaryStyle
		nameStyle = styles.TextPrimaryBoldStyle
	}

	out := indent + iconStyle.Render(icon) + " " + nameStyle.Render(name)
	if stats != "" {
		out += " " + styles.TextMutedStyle.Render(stats)
	}
	return out
}

// fileStats counts added and removed lines for a loaded file. Stub files
// (not yet loaded) report zero.
func (m FileTreeModel) fileStats(index int) (added, removed int) {
	if index < 0 || index >= len(m.files) {
		return 0, 0
	}
	for _, line := range m.files[index].Lines {
		switch line.Kind {
		case corediff.Added:
			added++
		case corediff.Removed:
			removed++
		}
	}
	return added, removed
}

func dirIcon(expanded bool) string {
	if expanded {
		return styles.IconFolderOpen
	}
	return styles.IconFolderClosed
}

// fileIcon returns a nerd font icon for the file path.
func fileIcon(path string) string {
	switch strings.ToLower(filepath.Base(path)) {
	case "dockerfile":
		return styles.IconFileDocker
	case "makefile":
		return styles.IconFileMakefile
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".go":
		return styles.IconFileGo
	case ".js", ".jsx":
		return styles.IconFileJS
	case ".ts", ".tsx":
		return styles.IconFileTS
	case ".py":
		return styles.IconFilePython
	case ".md":
		return styles.IconFileMarkdown
	case ".json":
		return styles.IconFileJSON
	case ".yaml", ".yml":
		return styles.IconFileYAML
	case ".toml":
		return styles.IconFileTOML
	case ".html", ".htm":
		return styles.IconFileHTML
	case ".css":
		return styles.IconFileCSS
	case ".rs":
		return styles.IconFileRust
	case ".c", ".h":
		return styles.IconFileC
	case ".cpp", ".cc", ".cxx", ".hpp":
		return styles.IconFileCPP
	case ".sh", ".bash", ".zsh":
		return styles.IconFileShell
	default:
		return styles.IconFileDefault
	}
}

// SelectedIndex returns the diff-file index of the selected node, or -1 when
// the selection is a directory.
func (m FileTreeModel) SelectedIndex() int {
	if m.selected < 0 || m.selected >= len(m.visible) {
		return -1
	}
	return m.visible[m.selected].Index
}

// Select moves the tree selection to the node for the given file index.
func (m *FileTreeModel) Select(index int) {
	for i, node := range m.visible {
		if node.Index == index {
			m.selected = i
			return
		}
	}
}

// SetSize updates the dimensions of the file tree.
func (m *FileTreeModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// SetFiles updates the files list and rebuilds the tree.
func (m *FileTreeModel) SetFiles(files []corediff.File) {
	m.files = files
	m.root = buildTree(files)
	m.selected = 0
	m.rebuildVisible()
}

// SetCommented updates the set of files carrying comments.
func (m *FileTreeModel) SetCommented(files map[string]bool) {
	m.commented = files
}
