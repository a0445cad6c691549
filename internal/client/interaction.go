package client

import (
	"fmt"
	"image"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/jaditi930/Sketchify/internal/canvas"
	"github.com/jaditi930/Sketchify/internal/model"
)

// Phase is the interaction state. Transitions: Idle → Drawing on
// pointer down; Drawing → Idle on pointer up (committing or discarding)
// or on cancellation.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseDrawing
)

// StrokeSender receives committed strokes for network emission. Sends
// are fire-and-forget from the interaction's point of view; the local
// optimistic render already reflects the stroke.
type StrokeSender interface {
	SendStroke(s model.Stroke)
}

// Controller translates pointer input into stroke point sequences and
// drives the compositor. All interaction state lives here, keyed off
// the current phase; pointer handlers never block rendering, they only
// mark the frame dirty and let Frame coalesce the redraw.
type Controller struct {
	comp   *canvas.Compositor
	sender StrokeSender
	userID string

	tool  model.Tool
	shape model.Shape
	color string
	width float64

	phase     Phase
	current   *model.Stroke
	lastPoint model.Point

	dirty     bool
	frame     *image.RGBA
	composite int // frames actually rendered
}

// NewController wires a controller to its compositor and network sink.
func NewController(comp *canvas.Compositor, sender StrokeSender, userID string) *Controller {
	return &Controller{
		comp:   comp,
		sender: sender,
		userID: userID,
		tool:   model.ToolPen,
		shape:  model.ShapeFreehand,
		color:  "#000000",
		width:  3,
	}
}

func (c *Controller) SetTool(t model.Tool)   { c.tool = t }
func (c *Controller) SetShape(s model.Shape) { c.shape = s }
func (c *Controller) SetColor(hex string)    { c.color = hex }

func (c *Controller) SetWidth(w float64) {
	if w > 0 {
		c.width = w
	}
}

// Phase returns the current interaction phase.
func (c *Controller) Phase() Phase {
	return c.phase
}

func newStrokeID() string {
	return fmt.Sprintf("stroke-%d-%s", time.Now().UnixMilli(), uuid.NewString()[:8])
}

// PointerDown starts an interaction. Eraser and highlighter always draw
// freehand regardless of the selected shape; the eraser forces black
// ink and a wider minimum so erasing stays effective.
func (c *Controller) PointerDown(p model.Point) {
	if c.phase != PhaseIdle {
		return
	}

	shape := c.shape
	if c.tool == model.ToolEraser || c.tool == model.ToolHighlighter {
		shape = model.ShapeFreehand
	}

	color := c.color
	width := c.width
	if c.tool == model.ToolEraser {
		color = "#000000"
		width = math.Max(width, 10)
	}

	stroke := &model.Stroke{
		ID:        newStrokeID(),
		Color:     color,
		Width:     width,
		Timestamp: time.Now().UnixMilli(),
		UserID:    c.userID,
		Tool:      c.tool,
		Shape:     shape,
	}

	c.comp.BeginInteraction()

	if shape == model.ShapeFreehand {
		stroke.Points = []model.Point{p}
		if c.tool == model.ToolEraser {
			c.comp.EraseAt(p, width)
		} else {
			c.comp.SetLive(stroke)
		}
	} else {
		start, end := p, p
		stroke.StartPoint = &start
		stroke.EndPoint = &end
		c.comp.SetLive(stroke)
	}

	c.current = stroke
	c.lastPoint = p
	c.phase = PhaseDrawing
	c.dirty = true
}

// PointerMove extends the interaction. Shape strokes only track the
// moving end point; freehand strokes accumulate, and eraser strokes
// stamp incrementally so erasing is visible as the pointer moves.
func (c *Controller) PointerMove(p model.Point) {
	if c.phase != PhaseDrawing {
		return
	}

	if c.current.IsShape() {
		*c.current.EndPoint = p
	} else {
		c.current.Points = append(c.current.Points, p)
		if c.current.EffectiveTool() == model.ToolEraser {
			c.comp.EraseSegment(c.lastPoint, p, c.current.Width)
		}
	}

	c.lastPoint = p
	c.dirty = true
}

// PointerUp ends the interaction. A shape stroke commits only with both
// bounds present; a freehand stroke only with at least one point.
// Anything else is discarded with no emission and the pre-interaction
// canvas restored. Returns the committed stroke, or nil.
func (c *Controller) PointerUp() *model.Stroke {
	if c.phase != PhaseDrawing {
		return nil
	}

	stroke := c.current
	c.current = nil
	c.phase = PhaseIdle
	c.dirty = true

	valid := false
	if stroke.IsShape() {
		valid = stroke.StartPoint != nil && stroke.EndPoint != nil
	} else {
		valid = len(stroke.Points) >= 1
	}

	if !valid {
		c.comp.CancelInteraction()
		return nil
	}

	c.comp.CommitInteraction(stroke)
	if c.sender != nil {
		c.sender.SendStroke(*stroke)
	}
	return stroke
}

// Cancel aborts the interaction (pointer capture lost, multi-touch
// interruption) and restores the committed layer exactly as it was.
func (c *Controller) Cancel() {
	if c.phase != PhaseDrawing {
		return
	}
	c.current = nil
	c.phase = PhaseIdle
	c.comp.CancelInteraction()
	c.dirty = true
}

// Frame renders at most one composite per call regardless of how many
// pointer events arrived since the last one. The caller drives it from
// its animation-frame tick. Returns whether a redraw happened.
func (c *Controller) Frame() bool {
	if !c.dirty {
		return false
	}
	c.frame = c.comp.Composite()
	c.dirty = false
	c.composite++
	return true
}

// LastFrame returns the most recently composited image.
func (c *Controller) LastFrame() *image.RGBA {
	return c.frame
}

// Composites reports how many frames have actually been rendered.
func (c *Controller) Composites() int {
	return c.composite
}
