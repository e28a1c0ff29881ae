// Package tmux delivers review feedback to an attached agent pane.
package tmux

import (
	"context"
	"fmt"

	"github.com/colonyops/comb/pkg/executil"
)

// Client talks to tmux through an executor.
type Client struct {
	exec executil.Executor
}

// New creates a Client with the given executor.
func New(exec executil.Executor) *Client {
	return &Client{exec: exec}
}

// HasPane checks whether the target pane ("session:window.pane") exists.
func (c *Client) HasPane(ctx context.Context, target string) bool {
	_, err := c.exec.Run(ctx, "tmux", "has-session", "-t", target)
	return err == nil
}

// Send types text into the target pane and presses Enter.
func (c *Client) Send(ctx context.Context, target, text string) error {
	if _, err := c.exec.Run(ctx, "tmux", "send-keys", "-t", target, text, "Enter"); err != nil {
		return fmt.Errorf("tmux send-keys to %s: %w", target, err)
	}
	return nil
}

// SendReview prefixes the submission document with an instruction line and
// delivers it to the pane.
func (c *Client) SendReview(ctx context.Context, target, doc string) error {
	message := "Review my changes. Here are specific comments to address:\n\n" + doc
	return c.Send(ctx, target, message)
}
