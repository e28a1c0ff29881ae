package executil

import (
	"context"
	"strings"
	"sync"
)

// RecordedCommand captures a command that was executed.
type RecordedCommand struct {
	Dir   string
	Cmd   string
	Args  []string
	Input string
}

// RecordingExecutor captures commands for testing.
//
// Outputs and Errors are keyed by the full command line ("git diff --name-only HEAD").
// A lookup falls back to the bare command name, so tests that don't care about
// arguments can configure a single entry per binary.
type RecordingExecutor struct {
	mu       sync.Mutex
	Commands []RecordedCommand

	Outputs map[string][]byte
	Errors  map[string]error
}

func (e *RecordingExecutor) Run(ctx context.Context, cmd string, args ...string) ([]byte, error) {
	return e.record("", "", cmd, args...)
}

func (e *RecordingExecutor) RunDir(ctx context.Context, dir, cmd string, args ...string) ([]byte, error) {
	return e.record(dir, "", cmd, args...)
}

func (e *RecordingExecutor) RunInput(ctx context.Context, input, cmd string, args ...string) error {
	_, err := e.record("", input, cmd, args...)
	return err
}

func (e *RecordingExecutor) record(dir, input, cmd string, args ...string) ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.Commands = append(e.Commands, RecordedCommand{
		Dir:   dir,
		Cmd:   cmd,
		Args:  args,
		Input: input,
	})

	key := strings.TrimSpace(cmd + " " + strings.Join(args, " "))

	var out []byte
	var err error

	if e.Outputs != nil {
		if v, ok := e.Outputs[key]; ok {
			out = v
		} else {
			out = e.Outputs[cmd]
		}
	}
	if e.Errors != nil {
		if v, ok := e.Errors[key]; ok {
			err = v
		} else {
			err = e.Errors[cmd]
		}
	}

	return out, err
}

// Reset clears recorded commands.
func (e *RecordingExecutor) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.Commands = nil
}
