package image565

import (
	"fmt"
	"image"
	"image/color"
)

// Frame is a fixed-size framebuffer of native Pixels.
//
// Pixels are stored row-major, two bytes per pixel, low byte first. Pix is
// what gets streamed to the panel; hold on to it only while no draw call is
// running.
type Frame struct {
	Pix    []byte          // Pixel data (2 bytes per pixel, little-endian)
	Stride int             // Bytes per row
	Rect   image.Rectangle // Image bounds
}

// NewFrame creates a Frame with the specified bounds. Every pixel starts as
// the zero Pixel; call Clear before relying on the content.
func NewFrame(r image.Rectangle) *Frame {
	w, h := r.Dx(), r.Dy()
	if w < 0 || h < 0 {
		return &Frame{Rect: r}
	}
	stride := w * 2
	return &Frame{
		Pix:    make([]byte, stride*h),
		Stride: stride,
		Rect:   r,
	}
}

// ColorModel returns the color model of the frame.
func (f *Frame) ColorModel() color.Model {
	return Model
}

// Bounds returns the frame bounds.
func (f *Frame) Bounds() image.Rectangle {
	return f.Rect
}

// At returns the color of the pixel at (x, y).
// It implements the image.Image interface.
func (f *Frame) At(x, y int) color.Color {
	return f.Pixel565At(x, y)
}

// Pixel565At returns the native pixel at (x, y), or 0 when out of bounds.
func (f *Frame) Pixel565At(x, y int) Pixel {
	if !(image.Point{X: x, Y: y}.In(f.Rect)) {
		return 0
	}
	i := f.PixOffset(x, y)
	return Pixel(f.Pix[i]) | Pixel(f.Pix[i+1])<<8
}

// Set sets the color of the pixel at (x, y), converting it through Model.
func (f *Frame) Set(x, y int, c color.Color) {
	f.SetPixel565(x, y, Model.Convert(c).(Pixel))
}

// SetPixel565 writes one pixel. Out-of-bounds coordinates are ignored.
func (f *Frame) SetPixel565(x, y int, p Pixel) {
	if !(image.Point{X: x, Y: y}.In(f.Rect)) {
		return
	}
	i := f.PixOffset(x, y)
	f.Pix[i] = byte(p)
	f.Pix[i+1] = byte(p >> 8)
}

// PixOffset returns the index of the first byte of the pixel at (x, y).
func (f *Frame) PixOffset(x, y int) int {
	return (y-f.Rect.Min.Y)*f.Stride + (x-f.Rect.Min.X)*2
}

// Clear sets every pixel to p.
func (f *Frame) Clear(p Pixel) {
	lo, hi := byte(p), byte(p>>8)
	for i := 0; i+1 < len(f.Pix); i += 2 {
		f.Pix[i] = lo
		f.Pix[i+1] = hi
	}
}

// DrawRect draws a one pixel thick outline of the w×h rectangle at (x, y).
// Each edge pixel is clipped on its own, so partially visible outlines keep
// their visible edges.
func (f *Frame) DrawRect(x, y, w, h int, p Pixel) {
	if w <= 0 || h <= 0 {
		return
	}
	for i := x; i < x+w; i++ {
		f.SetPixel565(i, y, p)
		f.SetPixel565(i, y+h-1, p)
	}
	for j := y; j < y+h; j++ {
		f.SetPixel565(x, j, p)
		f.SetPixel565(x+w-1, j, p)
	}
}

// FillRect fills the w×h rectangle at (x, y) after clipping it to the frame.
// Empty or fully outside rectangles are a no-op.
func (f *Frame) FillRect(x, y, w, h int, p Pixel) {
	if w <= 0 || h <= 0 {
		return
	}
	r := image.Rect(x, y, x+w, y+h).Intersect(f.Rect)
	if r.Empty() {
		return
	}

	lo, hi := byte(p), byte(p>>8)
	for j := r.Min.Y; j < r.Max.Y; j++ {
		row := f.PixOffset(r.Min.X, j)
		end := row + r.Dx()*2
		for i := row; i < end; i += 2 {
			f.Pix[i] = lo
			f.Pix[i+1] = hi
		}
	}
}

// String returns a short description of the frame.
func (f *Frame) String() string {
	return fmt.Sprintf("image565.Frame{%dx%d}", f.Rect.Dx(), f.Rect.Dy())
}
