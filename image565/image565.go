// Package image565 provides the native pixel format of the Thumby Color panel.
//
// The panel expects byte-swapped, bit-inverted RGB565 with blue in the most
// significant field. This package provides the Pixel color type, its codec and
// the Frame image implementation.
package image565

import (
	"image/color"
)

// Pixel is a 16-bit value in the panel's native packed format.
//
// It is not plain RGB565: see Encode for the exact transform.
type Pixel uint16

// Named colors in native format.
const (
	Black Pixel = 0xFFFF // Encode(0x000000)
	White Pixel = 0x0000 // Encode(0xFFFFFF)
)

// Encode converts a 24-bit 0xRRGGBB value into the native Pixel format.
// Bits above the low 24 are ignored.
//
// The 5-6-5 pack places blue in the most significant field. The packed value
// is then byte-swapped and every bit is inverted. Both steps are required by
// the panel's wiring and color order; dropping either one produces wrong
// colors on the glass.
func Encode(rgb uint32) Pixel {
	r := uint16(rgb>>16) & 0xFF
	g := uint16(rgb>>8) & 0xFF
	b := uint16(rgb) & 0xFF

	packed := (b&0xF8)<<8 | (g&0xFC)<<3 | (r&0xF8)>>3
	return ^Pixel(swap(packed))
}

// RGB is Encode for separate 8-bit channels.
func RGB(r, g, b uint8) Pixel {
	return Encode(uint32(r)<<16 | uint32(g)<<8 | uint32(b))
}

// Decode reverses Encode.
//
// The result is 0xRRGGBB truncated to 5/6/5 precision, so
// Decode(Encode(c)) == c & 0xF8FCF8.
func Decode(p Pixel) uint32 {
	packed := swap(uint16(^p))
	b := uint32(packed>>8) & 0xF8
	g := uint32(packed>>3) & 0xFC
	r := uint32(packed<<3) & 0xF8
	return r<<16 | g<<8 | b
}

func swap(v uint16) uint16 {
	return v<<8 | v>>8
}

// RGBA implements color.Color.
//
// The truncated channels are widened by replicating their high bits, so
// White decodes to full intensity.
func (p Pixel) RGBA() (r, g, b, a uint32) {
	rgb := Decode(p)
	r8 := uint32(rgb>>16) & 0xFF
	g8 := uint32(rgb>>8) & 0xFF
	b8 := uint32(rgb) & 0xFF
	r8 |= r8 >> 5
	g8 |= g8 >> 6
	b8 |= b8 >> 5
	return r8 * 0x101, g8 * 0x101, b8 * 0x101, 0xFFFF
}

// toPixel converts any color.Color to Pixel.
func toPixel(c color.Color) color.Color {
	if p, ok := c.(Pixel); ok {
		return p
	}
	r, g, b, _ := c.RGBA()
	return RGB(uint8(r>>8), uint8(g>>8), uint8(b>>8))
}

// Model converts colors to Pixel.
var Model = color.ModelFunc(toPixel)
