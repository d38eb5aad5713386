// Package games holds the pieces shared by the bundled games.
//
// A game only sees the engine through Console, so it runs the same on the
// device, in the simulator and under test. Each game exposes Step, which
// reads the buttons, advances one frame and pushes it to the display; the
// caller decides the pacing.
package games

import (
	"github.com/flavioheleno/thumbycolor/image565"
	"github.com/flavioheleno/thumbycolor/input"
)

// Console is the part of thumbycolor.Engine a game uses.
type Console interface {
	Clear(p image565.Pixel)
	FillRect(x, y, w, h int, p image565.Pixel)
	DrawText(x, y int, s string, rgb uint32)
	Pressed(b input.Button) bool
	SetRGB(r, g, b uint8) error
	SetVibration(strength uint8) error
	Update() error
}

// Game is one playable program.
type Game interface {
	Step() error
}

// Screen size every game lays itself out for.
const (
	Width  = 128
	Height = 128
)

// gatePhase is where a Gate is in a press and release cycle.
type gatePhase int

const (
	waitPress gatePhase = iota
	waitRelease
)

// Gate waits for a button to go down and back up without blocking. It is
// used by the game-over screens so a press that ended the round does not
// also restart it.
type Gate struct {
	Button input.Button
	phase  gatePhase
}

// Step samples the button and reports true once a full press and release
// has been seen. The gate then rearms itself.
func (g *Gate) Step(c Console) bool {
	held := c.Pressed(g.Button)
	switch g.phase {
	case waitPress:
		if held {
			g.phase = waitRelease
		}
	case waitRelease:
		if !held {
			g.phase = waitPress
			return true
		}
	}
	return false
}

// Reset forgets a press in progress.
func (g *Gate) Reset() {
	g.phase = waitPress
}

// Overlap reports whether two rectangles given as position and size share
// any pixel.
func Overlap(ax, ay, aw, ah, bx, by, bw, bh int) bool {
	return ax < bx+bw && bx < ax+aw && ay < by+bh && by < ay+ah
}
