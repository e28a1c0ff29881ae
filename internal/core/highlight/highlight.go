// Package highlight adapts chroma for per-line syntax highlighting.
//
// The diff viewport pairs unified-diff output with independently highlighted
// source lines, so the one contract that matters here is line fidelity: the
// result of Lines must contain exactly one entry per source line. Tokenising
// the whole text once (rather than line by line) keeps multi-line constructs
// like raw strings and block comments styled correctly, and the token stream
// is then re-split on newlines to preserve the line count.
package highlight

import (
	"path/filepath"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// Highlighter produces one ANSI-styled string per source line.
type Highlighter interface {
	// Lines highlights text for the given language. Unknown languages and
	// tokeniser failures degrade to plain lines; the line count always
	// matches the source.
	Lines(text, language string) []string
}

// Detector resolves a language hint from a file path.
type Detector interface {
	// Detect returns a language name for the path, or "" if unrecognized.
	Detect(path string) string
}

// Chroma implements Highlighter and Detector using the chroma lexer registry.
type Chroma struct {
	style string
}

// New creates a Chroma adapter rendering with the named chroma style.
func New(style string) *Chroma {
	return &Chroma{style: style}
}

// Detect returns the chroma lexer name for the file path, or "".
func (c *Chroma) Detect(path string) string {
	lexer := lexers.Match(filepath.Base(path))
	if lexer == nil {
		return ""
	}
	return lexer.Config().Name
}

// Lines highlights text, returning one styled string per source line.
func (c *Chroma) Lines(text, language string) []string {
	plain := SplitLines(text)
	if language == "" || len(plain) == 0 {
		return plain
	}

	lexer := lexers.Get(language)
	if lexer == nil {
		return plain
	}
	lexer = chroma.Coalesce(lexer)

	style := styles.Get(c.style)
	if style == nil {
		style = styles.Fallback
	}

	formatter := formatters.Get("terminal256")
	if formatter == nil {
		return plain
	}

	iterator, err := lexer.Tokenise(nil, text)
	if err != nil {
		return plain
	}

	lineTokens := splitTokenLines(iterator.Tokens())

	out := make([]string, len(plain))
	for i := range plain {
		if i >= len(lineTokens) {
			// Token stream came up short; keep the raw line.
			out[i] = plain[i]
			continue
		}

		var b strings.Builder
		if err := formatter.Format(&b, style, chroma.Literator(lineTokens[i]...)); err != nil {
			out[i] = plain[i]
			continue
		}
		out[i] = strings.TrimSuffix(b.String(), "\n")
	}

	return out
}

// splitTokenLines regroups a token stream into per-line token slices,
// splitting token values that span newlines.
func splitTokenLines(tokens []chroma.Token) [][]chroma.Token {
	var lines [][]chroma.Token
	var current []chroma.Token

	for _, tok := range tokens {
		parts := strings.Split(tok.Value, "\n")
		for i, part := range parts {
			if i > 0 {
				lines = append(lines, current)
				current = nil
			}
			if part != "" {
				current = append(current, chroma.Token{Type: tok.Type, Value: part})
			}
		}
	}

	if len(current) > 0 {
		lines = append(lines, current)
	}

	return lines
}

// SplitLines splits text into lines without trailing newlines. Empty text
// yields nil; a trailing newline does not produce a phantom final line.
func SplitLines(text string) []string {
	if text == "" {
		return nil
	}
	lines := strings.Split(text, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
