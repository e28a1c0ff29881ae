package review

import (
	"context"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/colonyops/comb/pkg/executil"
)

// ClipboardSink receives the submission document.
type ClipboardSink interface {
	Write(ctx context.Context, text string) error
}

// SystemClipboard writes through the platform clipboard.
type SystemClipboard struct{}

func (SystemClipboard) Write(_ context.Context, text string) error {
	if err := clipboard.WriteAll(text); err != nil {
		return fmt.Errorf("copy to clipboard: %w", err)
	}
	return nil
}

// CommandClipboard pipes text to a user-configured copy command, for setups
// where the platform clipboard is unreachable (SSH, wayland quirks).
type CommandClipboard struct {
	Command string
	Exec    executil.Executor
}

func (c CommandClipboard) Write(ctx context.Context, text string) error {
	parts := strings.Fields(c.Command)
	if len(parts) == 0 {
		return fmt.Errorf("empty copy command")
	}

	if err := c.Exec.RunInput(ctx, text, parts[0], parts[1:]...); err != nil {
		return fmt.Errorf("copy command %q: %w", parts[0], err)
	}
	return nil
}

// NewClipboard returns the command-backed sink when copyCommand is set, the
// system clipboard otherwise.
func NewClipboard(copyCommand string, exec executil.Executor) ClipboardSink {
	if copyCommand != "" {
		return CommandClipboard{Command: copyCommand, Exec: exec}
	}
	return SystemClipboard{}
}
