package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStrokeValidate(t *testing.T) {
	start, end := Point{X: 1, Y: 1}, Point{X: 5, Y: 5}

	tests := []struct {
		name    string
		stroke  Stroke
		wantErr error
	}{
		{
			name:   "freehand with points",
			stroke: Stroke{ID: "s1", Points: []Point{{X: 1, Y: 1}}, Color: "#000000", Width: 3},
		},
		{
			name:    "freehand without points",
			stroke:  Stroke{ID: "s1", Color: "#000000", Width: 3},
			wantErr: ErrStrokeNoPoints,
		},
		{
			name:   "shape with bounds",
			stroke: Stroke{ID: "s1", Color: "#000000", Width: 3, Shape: ShapeCircle, StartPoint: &start, EndPoint: &end},
		},
		{
			name:    "shape missing end point",
			stroke:  Stroke{ID: "s1", Color: "#000000", Width: 3, Shape: ShapeLine, StartPoint: &start},
			wantErr: ErrStrokeMissingBounds,
		},
		{
			name:    "shape carrying a point path",
			stroke:  Stroke{ID: "s1", Points: []Point{{X: 1, Y: 1}}, Color: "#000000", Width: 3, Shape: ShapeRectangle, StartPoint: &start, EndPoint: &end},
			wantErr: ErrStrokeShapePoints,
		},
		{
			name:    "zero width",
			stroke:  Stroke{ID: "s1", Points: []Point{{X: 1, Y: 1}}, Color: "#000000"},
			wantErr: ErrStrokeInvalidWidth,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.stroke.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}

	t.Run("unknown shape", func(t *testing.T) {
		s := Stroke{ID: "s1", Color: "#000000", Width: 3, Shape: "triangle", StartPoint: &start, EndPoint: &end}
		assert.Error(t, s.Validate())
	})

	t.Run("unknown tool", func(t *testing.T) {
		s := Stroke{ID: "s1", Points: []Point{{X: 1, Y: 1}}, Color: "#000000", Width: 3, Tool: "spray"}
		assert.Error(t, s.Validate())
	})
}

func TestStrokeDefaultsForOlderPayloads(t *testing.T) {
	// payloads predating the tool and shape fields decode as pen freehand
	raw := `{"id":"s1","points":[{"x":1,"y":2}],"color":"#123456","width":2,"timestamp":1700000000000,"userId":"7"}`

	var s Stroke
	require.NoError(t, json.Unmarshal([]byte(raw), &s))
	assert.Equal(t, ToolPen, s.EffectiveTool())
	assert.Equal(t, ShapeFreehand, s.EffectiveShape())
	assert.False(t, s.IsShape())
	assert.NoError(t, s.Validate())
}

func TestGuestParticipantNaming(t *testing.T) {
	p := GuestParticipant("conn-abcdef-123")
	assert.Equal(t, "conn-abcdef-123", p.UserID)
	assert.Equal(t, "Guestconn-a", p.Username)
	assert.False(t, p.Authenticated)

	short := GuestParticipant("ab")
	assert.Equal(t, "Guestab", short.Username)
}
