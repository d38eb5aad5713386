package thumbycolor

import (
	"context"
	"time"

	"github.com/flavioheleno/thumbycolor/input"
)

// PollInterval is how often WaitPressed and WaitReleased sample the button.
var PollInterval = 10 * time.Millisecond

// WaitPressed blocks until b is held or ctx is done.
func (e *Engine) WaitPressed(ctx context.Context, b input.Button) error {
	return e.waitFor(ctx, b, true)
}

// WaitReleased blocks until b is up or ctx is done.
func (e *Engine) WaitReleased(ctx context.Context, b input.Button) error {
	return e.waitFor(ctx, b, false)
}

func (e *Engine) waitFor(ctx context.Context, b input.Button, held bool) error {
	if e.input.Active(b) == held {
		return nil
	}
	t := time.NewTicker(PollInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			if e.input.Active(b) == held {
				return nil
			}
		}
	}
}
