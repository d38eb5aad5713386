package sim

import (
	"fmt"
	"image"
	"image/png"
	"io"

	"golang.org/x/image/draw"
)

// Screenshot writes img as PNG, upscaled by scale with nearest-neighbor
// sampling so pixels stay sharp.
func Screenshot(w io.Writer, img image.Image, scale int) error {
	if scale < 1 {
		return fmt.Errorf("sim: invalid screenshot scale %d", scale)
	}
	b := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx()*scale, b.Dy()*scale))
	draw.NearestNeighbor.Scale(out, out.Bounds(), img, b, draw.Src, nil)
	if err := png.Encode(w, out); err != nil {
		return fmt.Errorf("sim: screenshot: %w", err)
	}
	return nil
}
