package sim

import (
	"context"
	"fmt"
	"time"
)

// HeadlessConfig controls the no-window runner.
type HeadlessConfig struct {
	Hz    int    // Steps per second (default: 60)
	Ticks uint64 // Stop after this many steps, 0 to run until ctx is done

	// BeforeStep, if set, runs before every step. The terminal key reader
	// hooks in here.
	BeforeStep func(now time.Time)
}

// RunHeadless calls step at cfg.Hz until ctx is done, step fails or
// cfg.Ticks steps have run.
func RunHeadless(ctx context.Context, step func() error, cfg HeadlessConfig) error {
	if cfg.Hz <= 0 {
		cfg.Hz = 60
	}
	d := time.Second / time.Duration(cfg.Hz)
	if d <= 0 {
		return fmt.Errorf("sim: invalid headless hz: %d", cfg.Hz)
	}
	t := time.NewTicker(d)
	defer t.Stop()

	var tick uint64
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-t.C:
			if cfg.BeforeStep != nil {
				cfg.BeforeStep(now)
			}
			if err := step(); err != nil {
				return err
			}
			tick++
			if cfg.Ticks > 0 && tick >= cfg.Ticks {
				return nil
			}
		}
	}
}
