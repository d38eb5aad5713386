// Package testpattern fills the screen with a fixed color grid for checking
// the display: red, green, blue and white quadrants repeated every 64
// pixels.
package testpattern

import (
	"github.com/flavioheleno/thumbycolor/games"
	"github.com/flavioheleno/thumbycolor/image565"
)

// Tile is the side of one colored square.
const Tile = 32

// Colors of the squares of each 2x2 block, in reading order.
var Colors = [4]uint32{0xFF0000, 0x00FF00, 0x0000FF, 0xFFFFFF}

// Pattern draws the test pattern once and then keeps it on screen.
type Pattern struct {
	c     games.Console
	drawn bool
}

// New returns a Pattern for c.
func New(c games.Console) *Pattern {
	return &Pattern{c: c}
}

// Step draws and pushes the pattern on the first call. Later calls do
// nothing.
func (p *Pattern) Step() error {
	if p.drawn {
		return nil
	}
	Draw(p.c)
	if err := p.c.Update(); err != nil {
		return err
	}
	p.drawn = true
	return nil
}

// Draw renders the pattern into c without pushing it.
func Draw(c games.Console) {
	c.Clear(image565.Black)
	for x := 0; x < games.Width; x += 2 * Tile {
		for y := 0; y < games.Height; y += 2 * Tile {
			c.FillRect(x, y, Tile, Tile, image565.Encode(Colors[0]))
			c.FillRect(x+Tile, y, Tile, Tile, image565.Encode(Colors[1]))
			c.FillRect(x, y+Tile, Tile, Tile, image565.Encode(Colors[2]))
			c.FillRect(x+Tile, y+Tile, Tile, Tile, image565.Encode(Colors[3]))
		}
	}
}
