package model

import (
	"errors"
	"fmt"
)

// Tool selects the drawing instrument for a stroke.
type Tool string

const (
	ToolPen         Tool = "pen"
	ToolEraser      Tool = "eraser"
	ToolHighlighter Tool = "highlighter"
)

// Shape selects the stroke geometry.
type Shape string

const (
	ShapeFreehand  Shape = "freehand"
	ShapeLine      Shape = "line"
	ShapeRectangle Shape = "rectangle"
	ShapeSquare    Shape = "square"
	ShapeCircle    Shape = "circle"
)

func (t Tool) String() string  { return string(t) }
func (s Shape) String() string { return string(s) }

// Point is a 2-D canvas coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

var (
	ErrStrokeNoPoints      = errors.New("freehand stroke requires at least one point")
	ErrStrokeMissingBounds = errors.New("shape stroke requires start and end points")
	ErrStrokeShapePoints   = errors.New("shape stroke must not carry a point path")
	ErrStrokeInvalidWidth  = errors.New("stroke width must be positive")
)

// Stroke is one immutable drawing action: a freehand path or a single
// geometric shape. Ids are client-generated (timestamp + random) and
// treated as advisory only; the log never deduplicates them.
type Stroke struct {
	ID         string  `json:"id"`
	Points     []Point `json:"points"`
	Color      string  `json:"color"`
	Width      float64 `json:"width"`
	Timestamp  int64   `json:"timestamp"`
	UserID     string  `json:"userId"`
	Tool       Tool    `json:"tool,omitempty"`
	Shape      Shape   `json:"shape,omitempty"`
	StartPoint *Point  `json:"startPoint,omitempty"`
	EndPoint   *Point  `json:"endPoint,omitempty"`
}

// EffectiveTool resolves the optional tool field (older clients omit it).
func (s *Stroke) EffectiveTool() Tool {
	if s.Tool == "" {
		return ToolPen
	}
	return s.Tool
}

// EffectiveShape resolves the optional shape field.
func (s *Stroke) EffectiveShape() Shape {
	if s.Shape == "" {
		return ShapeFreehand
	}
	return s.Shape
}

// IsShape reports whether the stroke is a geometric shape rather than a path.
func (s *Stroke) IsShape() bool {
	return s.EffectiveShape() != ShapeFreehand
}

// Validate enforces the variant invariants: a freehand stroke carries
// at least one point and no bounds; a shape stroke carries both bounds
// and an empty point list.
func (s *Stroke) Validate() error {
	if s.Width <= 0 {
		return ErrStrokeInvalidWidth
	}

	switch shape := s.EffectiveShape(); shape {
	case ShapeFreehand:
		if len(s.Points) == 0 {
			return ErrStrokeNoPoints
		}
	case ShapeLine, ShapeRectangle, ShapeSquare, ShapeCircle:
		if s.StartPoint == nil || s.EndPoint == nil {
			return ErrStrokeMissingBounds
		}
		if len(s.Points) > 0 {
			return ErrStrokeShapePoints
		}
	default:
		return fmt.Errorf("unknown shape %q", shape)
	}

	switch tool := s.EffectiveTool(); tool {
	case ToolPen, ToolEraser, ToolHighlighter:
	default:
		return fmt.Errorf("unknown tool %q", tool)
	}

	return nil
}
