package canvas

import (
	"image"
	"image/draw"
)

// Surface is one raster layer of the compositor.
type Surface struct {
	img *image.RGBA
}

// NewSurface allocates a transparent layer.
func NewSurface(width, height int) *Surface {
	return &Surface{img: image.NewRGBA(image.Rect(0, 0, width, height))}
}

// Image exposes the backing pixels.
func (s *Surface) Image() *image.RGBA {
	return s.img
}

// Clone copies the layer, pixels included.
func (s *Surface) Clone() *Surface {
	out := image.NewRGBA(s.img.Rect)
	copy(out.Pix, s.img.Pix)
	return &Surface{img: out}
}

// Restore copies snap's pixels back verbatim. Layers must share
// dimensions.
func (s *Surface) Restore(snap *Surface) {
	copy(s.img.Pix, snap.img.Pix)
}

// Reset clears the layer back to transparent.
func (s *Surface) Reset() {
	for i := range s.img.Pix {
		s.img.Pix[i] = 0
	}
}

// DrawOver composites src onto this layer with source-over.
func (s *Surface) DrawOver(src *Surface) {
	draw.Draw(s.img, s.img.Rect, src.img, image.Point{}, draw.Over)
}

// Equal reports whether two layers hold identical pixels.
func (s *Surface) Equal(other *Surface) bool {
	if s.img.Rect != other.img.Rect {
		return false
	}
	for i := range s.img.Pix {
		if s.img.Pix[i] != other.img.Pix[i] {
			return false
		}
	}
	return true
}
