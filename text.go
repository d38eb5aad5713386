package thumbycolor

import (
	"image/color"

	"github.com/flavioheleno/thumbycolor/image565"
	"tinygo.org/x/drivers"
	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/proggy"
)

var _ drivers.Displayer = (*Engine)(nil)

// Font is the font used by DrawText.
var Font tinyfont.Fonter = &proggy.TinySZ8pt7b

// Size returns the display size. It implements drivers.Displayer.
func (e *Engine) Size() (x, y int16) {
	return Width, Height
}

// SetPixel implements drivers.Displayer. Alpha is ignored.
func (e *Engine) SetPixel(x, y int16, c color.RGBA) {
	e.frame.SetPixel565(int(x), int(y), image565.RGB(c.R, c.G, c.B))
}

// Display implements drivers.Displayer by calling Update.
func (e *Engine) Display() error {
	return e.Update()
}

// DrawText writes s in Font with its baseline at y. Glyphs falling outside
// the screen are clipped.
func (e *Engine) DrawText(x, y int, s string, rgb uint32) {
	c := color.RGBA{R: uint8(rgb >> 16), G: uint8(rgb >> 8), B: uint8(rgb), A: 0xFF}
	tinyfont.WriteLine(e, Font, int16(x), int16(y), s, c)
}

// TextWidth returns the width in pixels of s rendered in Font.
func TextWidth(s string) int {
	w, _ := tinyfont.LineWidth(Font, s)
	return int(w)
}
