// Package executil provides shell execution utilities.
package executil

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Executor runs external commands.
type Executor interface {
	// Run executes a command and returns its stdout.
	Run(ctx context.Context, cmd string, args ...string) ([]byte, error)
	// RunDir executes a command in a specific directory and returns its stdout.
	RunDir(ctx context.Context, dir, cmd string, args ...string) ([]byte, error)
	// RunInput executes a command with the given stdin and discards output.
	RunInput(ctx context.Context, input, cmd string, args ...string) error
}

// RealExecutor calls actual shell commands.
type RealExecutor struct{}

// Run executes a command and returns its stdout. On failure the first line of
// stderr is folded into the returned error.
func (e *RealExecutor) Run(ctx context.Context, cmd string, args ...string) ([]byte, error) {
	return e.RunDir(ctx, "", cmd, args...)
}

// RunDir executes a command in a specific directory (empty means inherit cwd).
func (e *RealExecutor) RunDir(ctx context.Context, dir, cmd string, args ...string) ([]byte, error) {
	c := exec.CommandContext(ctx, cmd, args...)
	c.Dir = dir

	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr

	if err := c.Run(); err != nil {
		msg := firstLine(stderr.String())
		if msg != "" {
			return stdout.Bytes(), fmt.Errorf("exec %s: %s: %w", cmd, msg, err)
		}
		return stdout.Bytes(), fmt.Errorf("exec %s: %w", cmd, err)
	}

	return stdout.Bytes(), nil
}

// RunInput executes a command feeding input on stdin.
func (e *RealExecutor) RunInput(ctx context.Context, input, cmd string, args ...string) error {
	c := exec.CommandContext(ctx, cmd, args...)
	c.Stdin = strings.NewReader(input)

	var stderr bytes.Buffer
	c.Stderr = &stderr

	if err := c.Run(); err != nil {
		msg := firstLine(stderr.String())
		if msg != "" {
			return fmt.Errorf("exec %s: %s: %w", cmd, msg, err)
		}
		return fmt.Errorf("exec %s: %w", cmd, err)
	}

	return nil
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return s
}
