// Package image565 provides the native 16-bit pixel format of the Thumby Color
// LCD panel and a fixed-size framebuffer built on it.
//
// The panel is fed RGB565 words, but its wiring makes two extra steps
// mandatory: the two octets of the packed value are swapped, and every bit is
// inverted. The packed value itself carries blue in the most significant
// field and red in the least significant one.
//
// Encoding 0xFF0000 (pure red) step by step:
//
//	packed   (B&0xF8)<<8 | (G&0xFC)<<3 | (R&0xF8)>>3  = 0x001F
//	swapped  0x1F00
//	inverted 0xE0FF
//
// Frame stores each pixel as two little-endian bytes, the memory order of the
// device's MCU, so Frame.Pix can be streamed to the controller verbatim.
//
// This package provides:
//
// - Pixel: a color.Color holding an encoded native value
// - Encode/Decode: the codec between 24-bit RGB and Pixel
// - Model: a color model converting standard Go colors to Pixel
// - Frame: a draw.Image with clipped point, outline and fill primitives
//
// Example usage:
//
//	f := image565.NewFrame(image.Rect(0, 0, 128, 128))
//	f.Clear(image565.Black)
//	f.FillRect(-5, -5, 10, 10, image565.Encode(0xFF0000)) // writes [0,5)x[0,5)
//	f.DrawRect(20, 20, 40, 30, image565.White)
package image565
