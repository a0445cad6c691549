// Package canvas is the layered raster compositor behind an open
// whiteboard view. It maintains three logical surfaces: the page
// background (repainted only when the pattern changes), the committed
// strokes (replayed in log order whenever the log changes), and the
// live in-progress stroke. Erasing is destructive but touches only the
// committed layer, so removing ink never damages the page itself.
package canvas

import (
	"image"

	"github.com/jaditi930/Sketchify/internal/model"
)

// Compositor produces the on-screen image for one whiteboard view.
// It is not safe for concurrent use; the interaction controller owns it
// and serializes access.
type Compositor struct {
	width  int
	height int
	bgType BackgroundType

	background *Surface
	committed  *Surface

	// snapshot is the committed layer as it was before the current
	// interaction began; restoring it undoes partial destructive edits.
	snapshot *Surface
	// live is the in-progress non-eraser stroke, drawn above committed
	// ink at composite time. Live eraser edits go straight onto the
	// committed layer instead.
	live *model.Stroke
}

// NewCompositor allocates the three layers and paints the background.
func NewCompositor(width, height int, bg BackgroundType) *Compositor {
	c := &Compositor{
		width:      width,
		height:     height,
		bgType:     bg,
		background: NewSurface(width, height),
		committed:  NewSurface(width, height),
	}
	drawBackground(c.background, bg)
	return c
}

// SetBackground switches the page pattern. Only the background layer is
// repainted; committed ink is untouched.
func (c *Compositor) SetBackground(bg BackgroundType) {
	c.bgType = bg
	drawBackground(c.background, bg)
}

// Background returns the current pattern.
func (c *Compositor) Background() BackgroundType {
	return c.bgType
}

// Replay rebuilds the committed layer from the full stroke log in
// append order. Eraser strokes in the log re-apply their destructive
// edits at the position they were committed.
func (c *Compositor) Replay(strokes []model.Stroke) {
	c.committed.Reset()
	for i := range strokes {
		renderStroke(c.committed, &strokes[i])
	}
}

// Apply renders one finalized stroke onto the committed layer without
// replaying the rest of the log.
func (c *Compositor) Apply(s *model.Stroke) {
	renderStroke(c.committed, s)
}

// BeginInteraction snapshots the committed layer so a cancelled
// interaction can restore it verbatim.
func (c *Compositor) BeginInteraction() {
	c.snapshot = c.committed.Clone()
	c.live = nil
}

// SetLive installs the in-progress stroke for preview compositing.
func (c *Compositor) SetLive(s *model.Stroke) {
	c.live = s
}

// EraseAt stamps one eraser touch directly onto the committed layer.
func (c *Compositor) EraseAt(p model.Point, width float64) {
	stampCircle(c.committed.img, p.X, p.Y, EraserRadius(width))
}

// EraseSegment stamps the segment from the previous to the current
// pointer position, bridging with interpolated stamps.
func (c *Compositor) EraseSegment(from, to model.Point, width float64) {
	eraseSegment(c.committed, from, to, width)
}

// CommitInteraction finalizes the live stroke onto the committed layer.
// Eraser strokes are re-stamped once over their complete point sequence
// to close residual gaps; other tools render normally. The snapshot is
// discarded.
func (c *Compositor) CommitInteraction(s *model.Stroke) {
	if s != nil {
		if s.EffectiveTool() == model.ToolEraser {
			eraseStroke(c.committed, s)
		} else {
			renderStroke(c.committed, s)
		}
	}
	c.snapshot = nil
	c.live = nil
}

// CancelInteraction restores the pre-interaction committed layer
// exactly, discarding any partial live edits (critical for eraser,
// whose live edits are destructive).
func (c *Compositor) CancelInteraction() {
	if c.snapshot != nil {
		c.committed.Restore(c.snapshot)
	}
	c.snapshot = nil
	c.live = nil
}

// Composite flattens background + committed + live into the presented
// frame.
func (c *Compositor) Composite() *image.RGBA {
	out := c.background.Clone()

	if c.live != nil && c.live.EffectiveTool() != model.ToolEraser {
		// Preview the live stroke above (and blended against) the
		// committed ink without mutating the committed layer.
		scratch := c.committed.Clone()
		renderStroke(scratch, c.live)
		out.DrawOver(scratch)
	} else {
		out.DrawOver(c.committed)
	}

	return out.Image()
}

// CommittedEmpty reports whether the committed layer holds no ink.
func (c *Compositor) CommittedEmpty() bool {
	for _, v := range c.committed.img.Pix {
		if v != 0 {
			return false
		}
	}
	return true
}
