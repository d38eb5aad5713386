// Package gamestest is meant to be used to test games without an engine.
package gamestest

import (
	"image"

	"github.com/flavioheleno/thumbycolor/games"
	"github.com/flavioheleno/thumbycolor/image565"
	"github.com/flavioheleno/thumbycolor/input"
)

// Text is one DrawText call.
type Text struct {
	X, Y int
	S    string
	RGB  uint32
}

// Console implements games.Console in memory.
//
// Held sets which buttons read as pressed. Every output call is recorded.
type Console struct {
	Frame *image565.Frame
	Held  input.State

	Texts      []Text // DrawText calls since the last Clear
	RGB        [3]uint8
	Vibration  uint8
	RGBWrites  int
	VibWrites  int
	Updates    int
	UpdateErr  error
	ActuateErr error
}

// New returns a Console with a black frame.
func New() *Console {
	f := image565.NewFrame(image.Rect(0, 0, games.Width, games.Height))
	f.Clear(image565.Black)
	return &Console{Frame: f}
}

// Clear implements games.Console.
func (c *Console) Clear(p image565.Pixel) {
	c.Frame.Clear(p)
	c.Texts = c.Texts[:0]
}

// FillRect implements games.Console.
func (c *Console) FillRect(x, y, w, h int, p image565.Pixel) {
	c.Frame.FillRect(x, y, w, h, p)
}

// DrawText implements games.Console. Only the call is recorded.
func (c *Console) DrawText(x, y int, s string, rgb uint32) {
	c.Texts = append(c.Texts, Text{x, y, s, rgb})
}

// Pressed implements games.Console.
func (c *Console) Pressed(b input.Button) bool {
	return c.Held.Active(b)
}

// SetRGB implements games.Console.
func (c *Console) SetRGB(r, g, b uint8) error {
	if c.ActuateErr != nil {
		return c.ActuateErr
	}
	c.RGB = [3]uint8{r, g, b}
	c.RGBWrites++
	return nil
}

// SetVibration implements games.Console.
func (c *Console) SetVibration(strength uint8) error {
	if c.ActuateErr != nil {
		return c.ActuateErr
	}
	c.Vibration = strength
	c.VibWrites++
	return nil
}

// Update implements games.Console.
func (c *Console) Update() error {
	if c.UpdateErr != nil {
		return c.UpdateErr
	}
	c.Updates++
	return nil
}

// Press holds b.
func (c *Console) Press(b input.Button) {
	c.Held |= 1 << b
}

// Release lets b go.
func (c *Console) Release(b input.Button) {
	c.Held &^= 1 << b
}

// HasText reports whether s was drawn since the last Clear.
func (c *Console) HasText(s string) bool {
	for _, t := range c.Texts {
		if t.S == s {
			return true
		}
	}
	return false
}

// Count returns how many pixels of the frame hold p.
func (c *Console) Count(p image565.Pixel) int {
	n := 0
	b := c.Frame.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if c.Frame.Pixel565At(x, y) == p {
				n++
			}
		}
	}
	return n
}

var _ games.Console = (*Console)(nil)
