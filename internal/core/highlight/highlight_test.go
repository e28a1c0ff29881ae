package highlight

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetect(t *testing.T) {
	c := New("monokai")

	assert.Equal(t, "Go", c.Detect("internal/core/diff/engine.go"))
	assert.Equal(t, "Python", c.Detect("scripts/gen.py"))
	assert.Empty(t, c.Detect("notes.xyzzy"))
}

func TestLines_CountMatchesSource(t *testing.T) {
	c := New("monokai")

	src := "package main\n\nfunc main() {\n\tprintln(\"hi\")\n}\n"
	lines := c.Lines(src, "Go")

	require.Len(t, lines, 5)
	// Styled output still contains the underlying text.
	assert.Contains(t, stripANSI(lines[0]), "package main")
	assert.Contains(t, stripANSI(lines[3]), `println("hi")`)
	// Highlighting actually happened.
	assert.Contains(t, lines[0], "\x1b[")
}

func TestLines_MultilineTokenKeepsLineCount(t *testing.T) {
	c := New("monokai")

	// Raw string literal spanning three lines is a single chroma token.
	src := "const s = `line one\nline two\nline three`\n"
	lines := c.Lines(src, "Go")

	require.Len(t, lines, 3)
	assert.Contains(t, stripANSI(lines[1]), "line two")
}

func TestLines_UnknownLanguageFallsBackToPlain(t *testing.T) {
	c := New("monokai")

	src := "alpha\nbeta\n"
	lines := c.Lines(src, "")
	assert.Equal(t, []string{"alpha", "beta"}, lines)

	lines = c.Lines(src, "not-a-language")
	assert.Equal(t, []string{"alpha", "beta"}, lines)
}

func TestSplitLines(t *testing.T) {
	assert.Nil(t, SplitLines(""))
	assert.Equal(t, []string{"a"}, SplitLines("a"))
	assert.Equal(t, []string{"a"}, SplitLines("a\n"))
	assert.Equal(t, []string{"a", "", "b"}, SplitLines("a\n\nb\n"))
}

func stripANSI(s string) string {
	var b strings.Builder
	inEscape := false
	for _, r := range s {
		switch {
		case inEscape:
			if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
				inEscape = false
			}
		case r == '\x1b':
			inEscape = true
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
