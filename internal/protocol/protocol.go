// Package protocol defines the message catalogue carried over the
// persistent per-client websocket connection. Every frame is a JSON
// envelope {event, data}; the event name selects the payload shape.
package protocol

import (
	"encoding/json"

	"github.com/jaditi930/Sketchify/internal/model"
)

// Client → server events.
const (
	EventJoinRoom        = "join-room"
	EventDrawStroke      = "draw-stroke"
	EventClearWhiteboard = "clear-whiteboard"
	EventUndoStroke      = "undo-stroke"
	EventLeaveRoom       = "leave-room"

	EventJoinChatRoom  = "join-chat-room"
	EventSendMessage   = "send-message"
	EventLeaveChatRoom = "leave-chat-room"
)

// Server → client events.
const (
	EventWhiteboardLoaded  = "whiteboard-loaded"
	EventUserJoined        = "user-joined"
	EventStrokeDrawn       = "stroke-drawn"
	EventWhiteboardCleared = "whiteboard-cleared"
	EventStrokeUndone      = "stroke-undone"
	EventWhiteboardDeleted = "whiteboard-deleted"
	EventError             = "error"

	EventChatHistory = "chat-history"
	EventNewMessage  = "new-message"
)

// Envelope is one websocket frame.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// NewEnvelope marshals data into an envelope. Marshal failures are
// programming errors; they surface as an empty payload.
func NewEnvelope(event string, data any) Envelope {
	raw, err := json.Marshal(data)
	if err != nil {
		return Envelope{Event: event}
	}
	return Envelope{Event: event, Data: raw}
}

// WhiteboardLoaded is sent only to the requester after a successful join.
type WhiteboardLoaded struct {
	Strokes     []model.Stroke `json:"strokes"`
	RoomID      string         `json:"roomId"`
	Name        string         `json:"name"`
	IsProtected bool           `json:"isProtected"`
	CanEdit     bool           `json:"canEdit"`
}

// UserJoined notifies existing room members of a new connection.
type UserJoined struct {
	UserID string `json:"userId"`
}

// DrawStroke is the client draw request: a stroke plus its room.
type DrawStroke struct {
	model.Stroke
	RoomID string `json:"roomId"`
}

// StrokeUndone names the stroke the server removed; echoed to the whole
// room including the requester so every view converges.
type StrokeUndone struct {
	StrokeID string `json:"strokeId"`
}

// ErrorPayload is delivered only to the offending connection.
type ErrorPayload struct {
	Message string `json:"message"`
}

// SendMessage is the chat side-channel publish request.
type SendMessage struct {
	RoomID   string `json:"roomId"`
	UserID   string `json:"userId"`
	Username string `json:"username"`
	Message  string `json:"message"`
}

// RoomRef carries a bare room id for events whose payload is just the
// room. Clients may also send the id as a raw JSON string.
type RoomRef struct {
	RoomID string `json:"roomId"`
}

// DecodeRoomID accepts either a raw JSON string or a {roomId} object.
func DecodeRoomID(raw json.RawMessage) (string, bool) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil && s != "" {
		return s, true
	}
	var ref RoomRef
	if err := json.Unmarshal(raw, &ref); err == nil && ref.RoomID != "" {
		return ref.RoomID, true
	}
	return "", false
}
