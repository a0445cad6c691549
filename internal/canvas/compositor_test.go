package canvas

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaditi930/Sketchify/internal/model"
)

func pt(x, y float64) model.Point { return model.Point{X: x, Y: y} }

func penSegment(id string, width float64, pts ...model.Point) model.Stroke {
	return model.Stroke{ID: id, Points: pts, Color: "#cc0000", Width: width, Tool: model.ToolPen}
}

func eraserSegment(id string, width float64, pts ...model.Point) model.Stroke {
	return model.Stroke{ID: id, Points: pts, Color: "#000000", Width: width, Tool: model.ToolEraser}
}

func sameImage(t *testing.T, want, got *image.RGBA) {
	t.Helper()
	require.Equal(t, want.Rect, got.Rect)
	assert.Equal(t, want.Pix, got.Pix)
}

func TestEraserRadius(t *testing.T) {
	assert.Equal(t, 6.0, EraserRadius(4))   // thin tools get the floor
	assert.Equal(t, 6.0, EraserRadius(10))
	assert.Equal(t, 11.0, EraserRadius(20))
	assert.Equal(t, 26.0, EraserRadius(50))
}

func TestFreshCompositorIsBlankPage(t *testing.T) {
	c := NewCompositor(100, 80, BackgroundBlank)
	frame := c.Composite()

	px := frame.RGBAAt(50, 40)
	assert.Equal(t, uint8(255), px.R)
	assert.Equal(t, uint8(255), px.G)
	assert.Equal(t, uint8(255), px.B)
	assert.True(t, c.CommittedEmpty())
}

func TestReplayThenEraseReproducesBackground(t *testing.T) {
	c := NewCompositor(100, 100, BackgroundGrid)
	reference := NewCompositor(100, 100, BackgroundGrid).Composite()

	pen := penSegment("s1", 4, pt(40, 50), pt(60, 50))
	eraser := eraserSegment("s2", 40, pt(40, 50), pt(60, 50))
	c.Replay([]model.Stroke{pen, eraser})

	sameImage(t, reference, c.Composite())
	assert.True(t, c.CommittedEmpty())
}

func TestClearRestoresBackgroundExactly(t *testing.T) {
	c := NewCompositor(100, 100, BackgroundHorizontal)
	reference := NewCompositor(100, 100, BackgroundHorizontal).Composite()

	c.Replay([]model.Stroke{penSegment("s1", 6, pt(10, 10), pt(90, 90))})
	assert.False(t, c.CommittedEmpty())

	c.Replay(nil)
	sameImage(t, reference, c.Composite())
}

func TestPenDotRendersAtTapPoint(t *testing.T) {
	c := NewCompositor(100, 100, BackgroundBlank)
	c.Apply(&model.Stroke{ID: "dot", Points: []model.Point{pt(50, 50)}, Color: "#cc0000", Width: 6, Tool: model.ToolPen})

	px := c.Composite().RGBAAt(50, 50)
	assert.Greater(t, px.R, uint8(150))
	assert.Less(t, px.G, uint8(100))
}

func TestLiveStrokeDoesNotTouchCommittedLayer(t *testing.T) {
	c := NewCompositor(100, 100, BackgroundBlank)

	c.BeginInteraction()
	live := penSegment("live", 6, pt(20, 20), pt(80, 80))
	c.SetLive(&live)

	frame := c.Composite()
	px := frame.RGBAAt(50, 50)
	assert.Greater(t, px.R, uint8(150), "preview should show the live stroke")
	assert.True(t, c.CommittedEmpty(), "committed ink appears only on commit")

	c.CancelInteraction()
	px = c.Composite().RGBAAt(50, 50)
	assert.Equal(t, uint8(255), px.G, "cancelled stroke leaves no trace")
}

func TestCancelRestoresDestructiveEraserEdits(t *testing.T) {
	c := NewCompositor(100, 100, BackgroundBlank)
	c.Apply(&model.Stroke{ID: "dot", Points: []model.Point{pt(50, 50)}, Color: "#cc0000", Width: 10, Tool: model.ToolPen})
	before := c.Composite()

	c.BeginInteraction()
	c.EraseAt(pt(50, 50), 40)
	erased := c.Composite().RGBAAt(50, 50)
	assert.Equal(t, uint8(255), erased.G, "live erase is visible immediately")

	c.CancelInteraction()
	sameImage(t, before, c.Composite())
}

func TestCommitEraserRemovesInkForGood(t *testing.T) {
	c := NewCompositor(100, 100, BackgroundBlank)
	c.Apply(&model.Stroke{ID: "dot", Points: []model.Point{pt(50, 50)}, Color: "#cc0000", Width: 10, Tool: model.ToolPen})

	c.BeginInteraction()
	c.EraseAt(pt(50, 50), 40)
	eraser := eraserSegment("e1", 40, pt(50, 50))
	c.CommitInteraction(&eraser)

	assert.True(t, c.CommittedEmpty())
}

func TestEraserSegmentBridgesFastPointerMoves(t *testing.T) {
	c := NewCompositor(200, 100, BackgroundBlank)
	long := penSegment("long", 4, pt(20, 50), pt(180, 50))
	c.Apply(&long)

	// one coarse segment must erase the whole span, not just endpoints
	c.BeginInteraction()
	c.EraseAt(pt(20, 50), 30)
	c.EraseSegment(pt(20, 50), pt(180, 50), 30)
	eraser := eraserSegment("e1", 30, pt(20, 50), pt(180, 50))
	c.CommitInteraction(&eraser)

	assert.True(t, c.CommittedEmpty())
}

func TestRectangleOutlineLeavesInteriorEmpty(t *testing.T) {
	c := NewCompositor(100, 100, BackgroundBlank)
	start, end := pt(20, 20), pt(80, 60)
	c.Apply(&model.Stroke{
		ID: "rect", Color: "#cc0000", Width: 2, Tool: model.ToolPen,
		Shape: model.ShapeRectangle, StartPoint: &start, EndPoint: &end,
	})

	frame := c.Composite()
	edge := frame.RGBAAt(20, 40)
	center := frame.RGBAAt(50, 40)
	assert.Less(t, edge.G, uint8(200), "outline pixel carries ink")
	assert.Equal(t, uint8(255), center.G, "interior stays empty")
}

func TestSquareVerticalDragAnchorsLeftOfStart(t *testing.T) {
	c := NewCompositor(150, 100, BackgroundBlank)
	start, end := pt(60, 20), pt(60, 70)
	c.Apply(&model.Stroke{
		ID: "square", Color: "#cc0000", Width: 2, Tool: model.ToolPen,
		Shape: model.ShapeSquare, StartPoint: &start, EndPoint: &end,
	})

	// dx == 0 grows the square leftward: edges at x=10 and x=60
	frame := c.Composite()
	left := frame.RGBAAt(10, 45)
	right := frame.RGBAAt(60, 45)
	beyond := frame.RGBAAt(110, 45)
	assert.Less(t, left.G, uint8(200), "left edge carries ink")
	assert.Less(t, right.G, uint8(200), "right edge carries ink")
	assert.Equal(t, uint8(255), beyond.G, "nothing drawn right of start")
}

func TestCircleFromBoundingDiagonal(t *testing.T) {
	c := NewCompositor(100, 100, BackgroundBlank)
	start, end := pt(30, 30), pt(70, 70)
	c.Apply(&model.Stroke{
		ID: "circle", Color: "#cc0000", Width: 3, Tool: model.ToolPen,
		Shape: model.ShapeCircle, StartPoint: &start, EndPoint: &end,
	})

	// center (50,50), radius half the diagonal ~28.3
	frame := c.Composite()
	onArc := frame.RGBAAt(78, 50)
	center := frame.RGBAAt(50, 50)
	assert.Less(t, onArc.G, uint8(200), "circumference pixel carries ink")
	assert.Equal(t, uint8(255), center.G, "circle is not filled")
}

func TestHighlighterOverlapDarkens(t *testing.T) {
	c := NewCompositor(100, 100, BackgroundBlank)

	h1 := model.Stroke{ID: "h1", Points: []model.Point{pt(20, 50), pt(80, 50)}, Color: "#ffee00", Width: 12, Tool: model.ToolHighlighter}
	c.Apply(&h1)
	single := c.Composite().RGBAAt(50, 50)

	h2 := model.Stroke{ID: "h2", Points: []model.Point{pt(50, 20), pt(50, 80)}, Color: "#ffee00", Width: 12, Tool: model.ToolHighlighter}
	c.Apply(&h2)
	overlap := c.Composite().RGBAAt(50, 50)

	brightness := func(px uint8) int { return int(px) }
	assert.Less(t,
		brightness(overlap.R)+brightness(overlap.G)+brightness(overlap.B),
		brightness(single.R)+brightness(single.G)+brightness(single.B),
		"crossing highlighter passes multiply to a darker tone")
}

func TestSetBackgroundPreservesCommittedInk(t *testing.T) {
	c := NewCompositor(100, 100, BackgroundBlank)
	c.Apply(&model.Stroke{ID: "dot", Points: []model.Point{pt(50, 50)}, Color: "#cc0000", Width: 8, Tool: model.ToolPen})

	c.SetBackground(BackgroundGrid)
	assert.Equal(t, BackgroundGrid, c.Background())

	px := c.Composite().RGBAAt(50, 50)
	assert.Greater(t, px.R, uint8(150))
	assert.Less(t, px.G, uint8(100))
}

func TestReplayMidLogEraserOnlyAffectsEarlierStrokes(t *testing.T) {
	c := NewCompositor(200, 100, BackgroundBlank)

	first := penSegment("s1", 4, pt(20, 50), pt(80, 50))
	eraser := eraserSegment("e1", 40, pt(20, 50), pt(80, 50))
	later := penSegment("s2", 4, pt(30, 50), pt(70, 50))
	c.Replay([]model.Stroke{first, eraser, later})

	px := c.Composite().RGBAAt(50, 50)
	assert.Greater(t, px.R, uint8(150), "stroke appended after the eraser survives")
}
