package canvas

import (
	"image"
	"math"

	"github.com/fogleman/gg"

	"github.com/jaditi930/Sketchify/internal/model"
)

const (
	// highlighterAlpha is the translucency of highlighter ink.
	highlighterAlpha = 0.5
	// eraserMinRadius keeps thin eraser strokes usable.
	eraserMinRadius = 5.0
	// eraserStampSpacing spaces interpolated stamps along a segment as a
	// fraction of the radius; overlapping coverage removes visible seams.
	eraserStampSpacing = 0.3
)

// EraserRadius is the stamp radius for an eraser stroke of the given
// width.
func EraserRadius(width float64) float64 {
	return math.Max(width/2, eraserMinRadius) + 1
}

// strokePath traces the stroke geometry onto a gg context. Freehand
// walks the point list; shapes are derived from the two bounds.
func strokePath(dc *gg.Context, s *model.Stroke) {
	switch s.EffectiveShape() {
	case model.ShapeFreehand:
		if len(s.Points) == 0 {
			return
		}
		if len(s.Points) == 1 {
			// A single tap leaves a round dot. The rasterizer drops
			// zero-length segments, so the cap is drawn explicitly.
			dc.DrawCircle(s.Points[0].X, s.Points[0].Y, s.Width/2)
			dc.Fill()
			return
		}
		dc.MoveTo(s.Points[0].X, s.Points[0].Y)
		for _, p := range s.Points[1:] {
			dc.LineTo(p.X, p.Y)
		}
		dc.Stroke()

	case model.ShapeLine:
		dc.DrawLine(s.StartPoint.X, s.StartPoint.Y, s.EndPoint.X, s.EndPoint.Y)
		dc.Stroke()

	case model.ShapeRectangle:
		x := math.Min(s.StartPoint.X, s.EndPoint.X)
		y := math.Min(s.StartPoint.Y, s.EndPoint.Y)
		w := math.Abs(s.EndPoint.X - s.StartPoint.X)
		h := math.Abs(s.EndPoint.Y - s.StartPoint.Y)
		dc.DrawRectangle(x, y, w, h)
		dc.Stroke()

	case model.ShapeSquare:
		dx := s.EndPoint.X - s.StartPoint.X
		dy := s.EndPoint.Y - s.StartPoint.Y
		side := math.Max(math.Abs(dx), math.Abs(dy))
		// The square grows toward the drag direction on each axis;
		// a zero delta counts as dragging up/left.
		x := s.StartPoint.X - side
		if dx > 0 {
			x = s.StartPoint.X
		}
		y := s.StartPoint.Y - side
		if dy > 0 {
			y = s.StartPoint.Y
		}
		dc.DrawRectangle(x, y, side, side)
		dc.Stroke()

	case model.ShapeCircle:
		cx := (s.StartPoint.X + s.EndPoint.X) / 2
		cy := (s.StartPoint.Y + s.EndPoint.Y) / 2
		r := math.Hypot(s.EndPoint.X-s.StartPoint.X, s.EndPoint.Y-s.StartPoint.Y) / 2
		dc.DrawCircle(cx, cy, r)
		dc.Stroke()
	}
}

// renderStroke applies one non-eraser stroke to the destination layer.
// Pen and shape strokes paint source-over at full opacity; highlighter
// strokes render to a scratch layer first and multiply-blend so overlaps
// darken instead of replacing the ink beneath. The color always comes
// from the stroke's own recorded hex color.
func renderStroke(dst *Surface, s *model.Stroke) {
	if s.EffectiveTool() == model.ToolEraser {
		eraseStroke(dst, s)
		return
	}

	target := dst
	if s.EffectiveTool() == model.ToolHighlighter {
		b := dst.img.Rect
		target = NewSurface(b.Dx(), b.Dy())
	}

	dc := gg.NewContextForRGBA(target.img)
	dc.SetHexColor(s.Color)
	dc.SetLineWidth(s.Width)
	dc.SetLineCapRound()
	dc.SetLineJoinRound()
	strokePath(dc, s)

	if s.EffectiveTool() == model.ToolHighlighter {
		blendMultiply(dst.img, target.img, highlighterAlpha)
	}
}

// eraseStroke removes pixels along the stroke path with filled-circle
// stamps. Stamps land on every input point and are bridged by
// interpolated stamps at 30% radius spacing so the erased band has no
// seams. Destructive: applied only to the committed layer by callers.
func eraseStroke(dst *Surface, s *model.Stroke) {
	r := EraserRadius(s.Width)
	for i, p := range s.Points {
		stampCircle(dst.img, p.X, p.Y, r)
		if i > 0 {
			bridgeStamps(dst.img, s.Points[i-1], p, r)
		}
	}
}

// eraseSegment stamps one incoming segment while an eraser interaction
// is live.
func eraseSegment(dst *Surface, from, to model.Point, width float64) {
	r := EraserRadius(width)
	stampCircle(dst.img, to.X, to.Y, r)
	bridgeStamps(dst.img, from, to, r)
}

func bridgeStamps(img *image.RGBA, from, to model.Point, r float64) {
	dist := math.Hypot(to.X-from.X, to.Y-from.Y)
	step := r * eraserStampSpacing
	if dist <= step || step <= 0 {
		return
	}
	n := int(math.Ceil(dist / step))
	for i := 1; i < n; i++ {
		t := float64(i) / float64(n)
		stampCircle(img, from.X+(to.X-from.X)*t, from.Y+(to.Y-from.Y)*t, r)
	}
}

// stampCircle zeroes every pixel within radius r of (cx, cy).
func stampCircle(img *image.RGBA, cx, cy, r float64) {
	b := img.Rect
	x0 := clampInt(int(math.Floor(cx-r)), b.Min.X, b.Max.X)
	x1 := clampInt(int(math.Ceil(cx+r))+1, b.Min.X, b.Max.X)
	y0 := clampInt(int(math.Floor(cy-r)), b.Min.Y, b.Max.Y)
	y1 := clampInt(int(math.Ceil(cy+r))+1, b.Min.Y, b.Max.Y)
	rr := r * r

	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			dx := float64(x) + 0.5 - cx
			dy := float64(y) + 0.5 - cy
			if dx*dx+dy*dy <= rr {
				i := img.PixOffset(x, y)
				img.Pix[i] = 0
				img.Pix[i+1] = 0
				img.Pix[i+2] = 0
				img.Pix[i+3] = 0
			}
		}
	}
}

// blendMultiply composites src onto dst with the multiply blend mode at
// the given constant alpha. Both images hold premultiplied RGBA; the
// math follows the separable-blend compositing formula, so painting
// over a transparent destination degrades to a plain translucent paint.
func blendMultiply(dst, src *image.RGBA, alpha float64) {
	b := dst.Rect.Intersect(src.Rect)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			si := src.PixOffset(x, y)
			sa := float64(src.Pix[si+3]) / 255
			if sa == 0 {
				continue
			}

			as := sa * alpha
			// Un-premultiply the source color.
			cs := [3]float64{
				float64(src.Pix[si]) / 255 / sa,
				float64(src.Pix[si+1]) / 255 / sa,
				float64(src.Pix[si+2]) / 255 / sa,
			}

			di := dst.PixOffset(x, y)
			ab := float64(dst.Pix[di+3]) / 255
			var cb [3]float64
			if ab > 0 {
				cb = [3]float64{
					float64(dst.Pix[di]) / 255 / ab,
					float64(dst.Pix[di+1]) / 255 / ab,
					float64(dst.Pix[di+2]) / 255 / ab,
				}
			}

			ao := as + ab*(1-as)
			for c := 0; c < 3; c++ {
				co := as*(1-ab)*cs[c] + ab*(1-as)*cb[c] + as*ab*(cs[c]*cb[c])
				dst.Pix[di+c] = uint8(math.Round(clampFloat(co, 0, 1) * 255))
			}
			dst.Pix[di+3] = uint8(math.Round(clampFloat(ao, 0, 1) * 255))
		}
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
