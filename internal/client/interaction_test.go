package client

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaditi930/Sketchify/internal/canvas"
	"github.com/jaditi930/Sketchify/internal/model"
)

type captureSender struct {
	sent []model.Stroke
}

func (c *captureSender) SendStroke(s model.Stroke) {
	c.sent = append(c.sent, s)
}

func newTestController() (*Controller, *captureSender) {
	sender := &captureSender{}
	comp := canvas.NewCompositor(200, 200, canvas.BackgroundBlank)
	return NewController(comp, sender, "user-1"), sender
}

func TestPenDragCommitsFreehandStroke(t *testing.T) {
	c, sender := newTestController()
	c.SetColor("#cc0000")
	c.SetWidth(4)

	c.PointerDown(model.Point{X: 10, Y: 10})
	c.PointerMove(model.Point{X: 20, Y: 20})
	c.PointerMove(model.Point{X: 30, Y: 30})
	stroke := c.PointerUp()

	require.NotNil(t, stroke)
	assert.Equal(t, model.ToolPen, stroke.EffectiveTool())
	assert.Equal(t, model.ShapeFreehand, stroke.EffectiveShape())
	require.Len(t, stroke.Points, 3)
	assert.Equal(t, "user-1", stroke.UserID)
	assert.NoError(t, stroke.Validate())

	require.Len(t, sender.sent, 1)
	assert.Equal(t, stroke.ID, sender.sent[0].ID)
}

func TestSingleTapCommitsDot(t *testing.T) {
	c, sender := newTestController()

	c.PointerDown(model.Point{X: 50, Y: 50})
	stroke := c.PointerUp()

	require.NotNil(t, stroke)
	require.Len(t, stroke.Points, 1)
	assert.Len(t, sender.sent, 1)
}

func TestShapeStrokeCarriesOnlyBounds(t *testing.T) {
	c, _ := newTestController()
	c.SetShape(model.ShapeRectangle)

	c.PointerDown(model.Point{X: 10, Y: 10})
	c.PointerMove(model.Point{X: 40, Y: 25})
	c.PointerMove(model.Point{X: 80, Y: 60})
	stroke := c.PointerUp()

	require.NotNil(t, stroke)
	assert.Equal(t, model.ShapeRectangle, stroke.Shape)
	assert.Empty(t, stroke.Points)
	require.NotNil(t, stroke.StartPoint)
	require.NotNil(t, stroke.EndPoint)
	assert.Equal(t, model.Point{X: 10, Y: 10}, *stroke.StartPoint)
	assert.Equal(t, model.Point{X: 80, Y: 60}, *stroke.EndPoint)
	assert.NoError(t, stroke.Validate())
}

func TestEraserForcesInkAndMinimumWidth(t *testing.T) {
	c, sender := newTestController()
	c.SetTool(model.ToolEraser)
	c.SetColor("#00ff00")
	c.SetWidth(3)
	c.SetShape(model.ShapeCircle) // ignored for the eraser

	c.PointerDown(model.Point{X: 50, Y: 50})
	c.PointerMove(model.Point{X: 60, Y: 50})
	stroke := c.PointerUp()

	require.NotNil(t, stroke)
	assert.Equal(t, model.ToolEraser, stroke.Tool)
	assert.Equal(t, model.ShapeFreehand, stroke.EffectiveShape())
	assert.Equal(t, "#000000", stroke.Color)
	assert.Equal(t, 10.0, stroke.Width)
	assert.Len(t, sender.sent, 1)
}

func TestHighlighterForcesFreehand(t *testing.T) {
	c, _ := newTestController()
	c.SetTool(model.ToolHighlighter)
	c.SetShape(model.ShapeLine)
	c.SetWidth(12)

	c.PointerDown(model.Point{X: 10, Y: 10})
	c.PointerMove(model.Point{X: 50, Y: 50})
	stroke := c.PointerUp()

	require.NotNil(t, stroke)
	assert.Equal(t, model.ShapeFreehand, stroke.EffectiveShape())
	assert.Equal(t, 12.0, stroke.Width)
	assert.NotEmpty(t, stroke.Points)
}

func TestCancelEmitsNothingAndRestoresCanvas(t *testing.T) {
	comp := canvas.NewCompositor(200, 200, canvas.BackgroundBlank)
	sender := &captureSender{}
	c := NewController(comp, sender, "user-1")

	before := comp.Composite()

	c.PointerDown(model.Point{X: 10, Y: 10})
	c.PointerMove(model.Point{X: 90, Y: 90})
	c.Cancel()

	assert.Equal(t, PhaseIdle, c.Phase())
	assert.Empty(t, sender.sent)
	assert.Equal(t, before.Pix, comp.Composite().Pix)

	// input after cancellation is ignored until the next pointer down
	c.PointerMove(model.Point{X: 95, Y: 95})
	assert.Nil(t, c.PointerUp())
}

func TestCancelRestoresEraserDamage(t *testing.T) {
	comp := canvas.NewCompositor(200, 200, canvas.BackgroundBlank)
	comp.Apply(&model.Stroke{
		ID: "dot", Points: []model.Point{{X: 50, Y: 50}},
		Color: "#cc0000", Width: 10, Tool: model.ToolPen,
	})
	before := comp.Composite()

	c := NewController(comp, &captureSender{}, "user-1")
	c.SetTool(model.ToolEraser)
	c.SetWidth(40)

	c.PointerDown(model.Point{X: 50, Y: 50})
	c.PointerMove(model.Point{X: 60, Y: 50})
	c.Cancel()

	assert.Equal(t, before.Pix, comp.Composite().Pix)
}

func TestFrameCoalescesPointerEvents(t *testing.T) {
	c, _ := newTestController()

	assert.False(t, c.Frame(), "nothing dirty yet")

	c.PointerDown(model.Point{X: 10, Y: 10})
	for i := 1; i <= 20; i++ {
		c.PointerMove(model.Point{X: float64(10 + i), Y: 10})
	}

	assert.True(t, c.Frame())
	assert.Equal(t, 1, c.Composites(), "a burst of moves renders once")
	assert.False(t, c.Frame(), "no new input, no redraw")

	c.PointerMove(model.Point{X: 40, Y: 10})
	assert.True(t, c.Frame())
	assert.Equal(t, 2, c.Composites())

	c.PointerUp()
	assert.True(t, c.Frame(), "commit dirties the frame")
	assert.NotNil(t, c.LastFrame())
}

func TestPointerEventsOutsideInteractionAreIgnored(t *testing.T) {
	c, sender := newTestController()

	c.PointerMove(model.Point{X: 10, Y: 10})
	assert.Nil(t, c.PointerUp())
	assert.Empty(t, sender.sent)
	assert.False(t, c.Frame())

	// a second pointer down during an interaction is ignored
	c.PointerDown(model.Point{X: 10, Y: 10})
	c.PointerDown(model.Point{X: 99, Y: 99})
	stroke := c.PointerUp()
	require.NotNil(t, stroke)
	require.Len(t, stroke.Points, 1)
	assert.Equal(t, model.Point{X: 10, Y: 10}, stroke.Points[0])
}
