package canvas

import (
	"github.com/fogleman/gg"
)

// BackgroundType selects the page pattern painted beneath all strokes.
type BackgroundType string

const (
	BackgroundBlank      BackgroundType = "blank"
	BackgroundGrid       BackgroundType = "grid"
	BackgroundHorizontal BackgroundType = "horizontal"
)

const (
	patternSpacing   = 20.0
	patternLineWidth = 1.0
)

// drawBackground paints a white page with the selected ruling. The grid
// and horizontal patterns use the same light-gray 20px ruling the page
// always had.
func drawBackground(s *Surface, bt BackgroundType) {
	dc := gg.NewContextForRGBA(s.img)
	w := float64(s.img.Rect.Dx())
	h := float64(s.img.Rect.Dy())

	dc.SetHexColor("#ffffff")
	dc.Clear()

	if bt != BackgroundGrid && bt != BackgroundHorizontal {
		return
	}

	dc.SetHexColor("#e5e7eb")
	dc.SetLineWidth(patternLineWidth)

	if bt == BackgroundGrid {
		for x := 0.0; x <= w; x += patternSpacing {
			dc.DrawLine(x, 0, x, h)
			dc.Stroke()
		}
	}
	for y := 0.0; y <= h; y += patternSpacing {
		dc.DrawLine(0, y, w, y)
		dc.Stroke()
	}
}
