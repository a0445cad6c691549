package protocol

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaditi930/Sketchify/internal/model"
)

func TestDecodeRoomID(t *testing.T) {
	id, ok := DecodeRoomID(json.RawMessage(`"room0001"`))
	assert.True(t, ok)
	assert.Equal(t, "room0001", id)

	id, ok = DecodeRoomID(json.RawMessage(`{"roomId":"room0002"}`))
	assert.True(t, ok)
	assert.Equal(t, "room0002", id)

	_, ok = DecodeRoomID(json.RawMessage(`""`))
	assert.False(t, ok)

	_, ok = DecodeRoomID(json.RawMessage(`{"other":"x"}`))
	assert.False(t, ok)

	_, ok = DecodeRoomID(json.RawMessage(`42`))
	assert.False(t, ok)
}

func TestDrawStrokePayloadInlinesStrokeFields(t *testing.T) {
	payload := DrawStroke{
		Stroke: model.Stroke{
			ID:     "s1",
			Points: []model.Point{{X: 1, Y: 2}},
			Color:  "#000000",
			Width:  3,
			UserID: "7",
		},
		RoomID: "room0001",
	}

	raw, err := json.Marshal(payload)
	require.NoError(t, err)

	var flat map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &flat))
	assert.Contains(t, flat, "id")
	assert.Contains(t, flat, "points")
	assert.Contains(t, flat, "roomId")

	var back DrawStroke
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.Equal(t, "s1", back.ID)
	assert.Equal(t, "room0001", back.RoomID)
}

func TestEnvelopeRoundTrip(t *testing.T) {
	env := NewEnvelope(EventStrokeUndone, StrokeUndone{StrokeID: "s9"})

	raw, err := json.Marshal(env)
	require.NoError(t, err)

	var back Envelope
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.Equal(t, EventStrokeUndone, back.Event)

	var payload StrokeUndone
	require.NoError(t, json.Unmarshal(back.Data, &payload))
	assert.Equal(t, "s9", payload.StrokeID)
}
