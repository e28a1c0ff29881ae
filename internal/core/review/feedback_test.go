package review

import (
	"context"
	"testing"

	"github.com/colonyops/comb/pkg/executil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormat(t *testing.T) {
	comments := []Comment{
		{File: "internal/app/server.go", SourceStart: 42, SourceEnd: 42, CommentText: "handle the error"},
		{File: "cmd/root.go", SourceStart: 10, SourceEnd: 14, CommentText: "extract a helper"},
	}

	got := Format(comments)

	want := "# Code Review\n" +
		"\n" +
		"## internal/app/server.go#L42\n" +
		"handle the error\n" +
		"\n" +
		"## cmd/root.go#L10-L14\n" +
		"extract a helper\n"
	assert.Equal(t, want, got)
}

func TestFormat_EmptyAndOrder(t *testing.T) {
	assert.Empty(t, Format(nil))

	// Creation order is preserved even when line numbers are out of order.
	comments := []Comment{
		{File: "z.go", SourceStart: 90, SourceEnd: 90, CommentText: "later lines first"},
		{File: "a.go", SourceStart: 1, SourceEnd: 1, CommentText: "early lines second"},
	}
	got := Format(comments)
	assert.Less(t, indexOf(got, "z.go"), indexOf(got, "a.go"))
}

func indexOf(haystack, needle string) int {
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if haystack[i:i+len(needle)] == needle {
			return i
		}
	}
	return -1
}

func TestCommandClipboard(t *testing.T) {
	rec := &executil.RecordingExecutor{}
	sink := NewClipboard("wl-copy --trim-newline", rec)

	require.IsType(t, CommandClipboard{}, sink)
	require.NoError(t, sink.Write(context.Background(), "review body"))

	require.Len(t, rec.Commands, 1)
	assert.Equal(t, "wl-copy", rec.Commands[0].Cmd)
	assert.Equal(t, []string{"--trim-newline"}, rec.Commands[0].Args)
	assert.Equal(t, "review body", rec.Commands[0].Input)
}

func TestCommandClipboard_EmptyCommand(t *testing.T) {
	sink := CommandClipboard{Command: "  ", Exec: &executil.RecordingExecutor{}}
	assert.Error(t, sink.Write(context.Background(), "text"))
}

func TestNewClipboard_DefaultsToSystem(t *testing.T) {
	sink := NewClipboard("", &executil.RecordingExecutor{})
	assert.IsType(t, SystemClipboard{}, sink)
}
