//go:build headless

package sim

import "errors"

// WindowOpts configures RunWindow.
type WindowOpts struct {
	Scale         int
	Title         string
	ScreenshotDir string
}

// RunWindow is unavailable in headless builds.
func RunWindow(_ *Board, _ func() error, _ *WindowOpts) error {
	return errors.New("sim: window mode is not available in headless builds")
}
