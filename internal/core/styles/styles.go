// Package styles provides shared lipgloss v2 styles for the review TUI.
package styles

import (
	"image/color"

	lipgloss "charm.land/lipgloss/v2"
	glamouransi "github.com/charmbracelet/glamour/ansi"
	glamourstyles "github.com/charmbracelet/glamour/styles"
	"github.com/lucasb-eyer/go-colorful"
)

// CurrentPalette holds the active theme palette.
var CurrentPalette Palette

// Exported color aliases.
var (
	ColorPrimary    color.Color
	ColorSecondary  color.Color
	ColorForeground color.Color
	ColorMuted      color.Color
	ColorBackground color.Color
	ColorSurface    color.Color
	ColorSuccess    color.Color
	ColorWarning    color.Color
	ColorError      color.Color

	// Diff row backgrounds. These are theme-independent dark washes; the
	// precedence among them is decided by the viewport, not here.
	ColorBgAdded     color.Color
	ColorBgRemoved   color.Color
	ColorBgHunk      color.Color
	ColorBgComment   color.Color
	ColorBgSelection color.Color
	ColorBgCursor    color.Color
)

// Style exports.
var (
	TextPrimaryStyle       lipgloss.Style
	TextPrimaryBoldStyle   lipgloss.Style
	TextForegroundStyle    lipgloss.Style
	TextForegroundBoldStyle lipgloss.Style
	TextMutedStyle         lipgloss.Style
	TextSuccessStyle       lipgloss.Style
	TextErrorStyle         lipgloss.Style

	ModalStyle               lipgloss.Style
	ModalTitleStyle          lipgloss.Style
	ModalHelpStyle           lipgloss.Style
	ModalButtonStyle         lipgloss.Style
	ModalButtonSelectedStyle lipgloss.Style

	StatusBarStyle lipgloss.Style

	DiffGutterStyle     lipgloss.Style
	DiffHunkHeaderStyle lipgloss.Style
	DiffAddedStyle      lipgloss.Style
	DiffRemovedStyle    lipgloss.Style
	CommentMarkerStyle  lipgloss.Style
)

// SetTheme sets the active palette and rebuilds all global styles.
func SetTheme(p Palette) {
	CurrentPalette = p

	ColorPrimary = p.Primary
	ColorSecondary = p.Secondary
	ColorForeground = p.Foreground
	ColorMuted = p.Muted
	ColorBackground = p.Background
	ColorSurface = p.Surface
	ColorSuccess = p.Success
	ColorWarning = p.Warning
	ColorError = p.Error

	ColorBgAdded = lipgloss.Color("#1e3a28")
	ColorBgRemoved = lipgloss.Color("#3f2233")
	ColorBgHunk = lipgloss.Color("#24283b")
	ColorBgComment = lipgloss.Color("#3b3052")
	ColorBgSelection = p.Surface
	ColorBgCursor = lipgloss.Color("#4a5173")

	TextPrimaryStyle = lipgloss.NewStyle().Foreground(ColorPrimary)
	TextPrimaryBoldStyle = lipgloss.NewStyle().Foreground(ColorPrimary).Bold(true)
	TextForegroundStyle = lipgloss.NewStyle().Foreground(ColorForeground)
	TextForegroundBoldStyle = lipgloss.NewStyle().Foreground(ColorForeground).Bold(true)
	TextMutedStyle = lipgloss.NewStyle().Foreground(ColorMuted)
	TextSuccessStyle = lipgloss.NewStyle().Foreground(ColorSuccess)
	TextErrorStyle = lipgloss.NewStyle().Foreground(ColorError)

	ModalStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorPrimary).
		Padding(1, 2)
	ModalTitleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorForeground)
	ModalHelpStyle = lipgloss.NewStyle().
		Foreground(ColorMuted).
		MarginTop(1)
	ModalButtonStyle = lipgloss.NewStyle().
		Padding(0, 1).
		Background(ColorSurface).
		Foreground(ColorMuted)
	ModalButtonSelectedStyle = lipgloss.NewStyle().
		Padding(0, 1).
		Background(ColorPrimary).
		Foreground(ColorBackground).
		Bold(true)

	StatusBarStyle = lipgloss.NewStyle().
		Background(ColorSurface).
		Foreground(ColorForeground)

	DiffGutterStyle = lipgloss.NewStyle().Foreground(ColorMuted)
	DiffHunkHeaderStyle = lipgloss.NewStyle().Foreground(ColorSecondary)
	DiffAddedStyle = lipgloss.NewStyle().Foreground(ColorSuccess)
	DiffRemovedStyle = lipgloss.NewStyle().Foreground(ColorError)
	CommentMarkerStyle = lipgloss.NewStyle().Foreground(ColorWarning)
}

// nolint:gochecknoinits // bootstrap default theme before any style is accessed.
func init() {
	SetTheme(themes[DefaultTheme])
}

func colorHexPtr(c color.Color) *string {
	if c == nil {
		return nil
	}
	cc, ok := colorful.MakeColor(c)
	if !ok {
		return nil
	}
	hex := cc.Hex()
	return &hex
}

// GlamourStyle returns a Glamour style config derived from the active theme.
func GlamourStyle() glamouransi.StyleConfig {
	cfg := glamourstyles.DarkStyleConfig

	fg := colorHexPtr(ColorForeground)
	primary := colorHexPtr(ColorPrimary)
	secondary := colorHexPtr(ColorSecondary)
	muted := colorHexPtr(ColorMuted)
	surface := colorHexPtr(ColorSurface)

	cfg.Document.Color = fg

	cfg.Paragraph.Color = fg

	cfg.Heading.Color = primary
	cfg.H1.Color = fg
	cfg.H1.BackgroundColor = surface
	cfg.H2.Color = primary
	cfg.H3.Color = primary
	cfg.H4.Color = primary
	cfg.H5.Color = primary
	cfg.H6.Color = primary

	cfg.BlockQuote.Color = muted
	cfg.HorizontalRule.Color = muted

	cfg.Link.Color = secondary
	cfg.LinkText.Color = secondary

	cfg.Code.Color = secondary
	cfg.CodeBlock.Color = muted

	cfg.Table.Color = fg

	return cfg
}
