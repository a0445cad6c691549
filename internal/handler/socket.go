package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"strconv"
	"sync"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jaditi930/Sketchify/internal/cache"
	"github.com/jaditi930/Sketchify/internal/model"
	"github.com/jaditi930/Sketchify/internal/protocol"
	"github.com/jaditi930/Sketchify/internal/session"
	"github.com/jaditi930/Sketchify/internal/store"
)

// wsSink adapts one websocket connection to the session.Sink interface.
// The write mutex serializes frames because the broadcaster and the
// request path can both write.
type wsSink struct {
	id      string
	conn    *websocket.Conn
	timeout time.Duration
	writeMu sync.Mutex
}

func (s *wsSink) ConnID() string {
	return s.id
}

func (s *wsSink) Send(env protocol.Envelope) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	s.conn.SetWriteDeadline(time.Now().Add(s.timeout))
	return s.conn.WriteJSON(env)
}

// SocketHandler serves the persistent per-client connection: whiteboard
// sync events plus the chat side-channel, multiplexed over one socket.
type SocketHandler struct {
	manager      *session.Manager
	db           *gorm.DB           // nil with the in-memory store
	chatCache    *cache.RedisClient // optional
	writeTimeout time.Duration
}

func NewSocketHandler(manager *session.Manager, db *gorm.DB, chatCache *cache.RedisClient, writeTimeout time.Duration) *SocketHandler {
	return &SocketHandler{
		manager:      manager,
		db:           db,
		chatCache:    chatCache,
		writeTimeout: writeTimeout,
	}
}

// participantFrom builds the participant identity for this connection.
// Claims were attached by the optional auth middleware before the
// upgrade; without them the connection degrades to a guest.
func participantFrom(c *websocket.Conn, connID string) model.Participant {
	userID, ok := c.Locals("userID").(int64)
	if !ok {
		return model.GuestParticipant(connID)
	}
	username, _ := c.Locals("username").(string)
	email, _ := c.Locals("email").(string)
	return model.Participant{
		UserID:        strconv.FormatInt(userID, 10),
		Username:      username,
		Email:         email,
		Authenticated: true,
	}
}

// HandleConnection runs the read loop until the socket closes, then
// detaches the connection from every group it joined.
func (h *SocketHandler) HandleConnection(c *websocket.Conn) {
	connID := uuid.NewString()
	p := participantFrom(c, connID)
	sink := &wsSink{id: connID, conn: c, timeout: h.writeTimeout}

	log.Printf("[Socket] Connected: %s (%s)", connID, p.Username)

	defer func() {
		h.manager.UnsubscribeAll(connID)
		c.Close()
		log.Printf("[Socket] Disconnected: %s", connID)
	}()

	for {
		_, raw, err := c.ReadMessage()
		if err != nil {
			break
		}

		var env protocol.Envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			h.sendError(sink, "Malformed message")
			continue
		}

		h.dispatch(sink, p, env)
	}
}

func (h *SocketHandler) dispatch(sink *wsSink, p model.Participant, env protocol.Envelope) {
	ctx := context.Background()

	switch env.Event {
	case protocol.EventJoinRoom:
		roomID, ok := protocol.DecodeRoomID(env.Data)
		if !ok {
			h.sendError(sink, "Room id is required")
			return
		}
		h.handleJoin(ctx, sink, p, roomID)

	case protocol.EventDrawStroke:
		var payload protocol.DrawStroke
		if err := json.Unmarshal(env.Data, &payload); err != nil || payload.RoomID == "" {
			h.sendError(sink, "Failed to save stroke")
			return
		}
		payload.Stroke.UserID = p.UserID
		h.handleDraw(ctx, sink, p, payload.RoomID, payload.Stroke)

	case protocol.EventUndoStroke:
		roomID, ok := protocol.DecodeRoomID(env.Data)
		if !ok {
			h.sendError(sink, "Room id is required")
			return
		}
		h.handleUndo(ctx, sink, p, roomID)

	case protocol.EventClearWhiteboard:
		roomID, ok := protocol.DecodeRoomID(env.Data)
		if !ok {
			h.sendError(sink, "Room id is required")
			return
		}
		h.handleClear(ctx, sink, p, roomID)

	case protocol.EventLeaveRoom:
		if roomID, ok := protocol.DecodeRoomID(env.Data); ok {
			h.manager.Unsubscribe(roomID, sink.ConnID())
		}

	case protocol.EventJoinChatRoom:
		if roomID, ok := protocol.DecodeRoomID(env.Data); ok {
			h.handleJoinChat(ctx, sink, roomID)
		}

	case protocol.EventSendMessage:
		var payload protocol.SendMessage
		if err := json.Unmarshal(env.Data, &payload); err != nil {
			return
		}
		h.handleSendMessage(ctx, sink, p, payload)

	case protocol.EventLeaveChatRoom:
		if roomID, ok := protocol.DecodeRoomID(env.Data); ok {
			h.manager.Unsubscribe(chatGroup(roomID), sink.ConnID())
		}

	default:
		log.Printf("[Socket] Unknown event from %s: %s", sink.ConnID(), env.Event)
	}
}

func (h *SocketHandler) handleJoin(ctx context.Context, sink *wsSink, p model.Participant, roomID string) {
	loaded, err := h.manager.Join(ctx, roomID, p, sink)
	if err != nil {
		if errors.Is(err, session.ErrAccessDenied) {
			h.sendError(sink, "You do not have access to this protected whiteboard")
			return
		}
		log.Printf("[Socket] Join %s failed for %s: %v", roomID, sink.ConnID(), err)
		h.sendError(sink, "Failed to load whiteboard")
		return
	}

	if err := sink.Send(protocol.NewEnvelope(protocol.EventWhiteboardLoaded, loaded)); err != nil {
		log.Printf("[Socket] Failed to send room state to %s: %v", sink.ConnID(), err)
	}
}

func (h *SocketHandler) handleDraw(ctx context.Context, sink *wsSink, p model.Participant, roomID string, stroke model.Stroke) {
	err := h.manager.Draw(ctx, roomID, sink.ConnID(), p, stroke)
	switch {
	case err == nil:
	case errors.Is(err, session.ErrAccessDenied):
		h.sendError(sink, "You do not have permission to edit this whiteboard")
	case errors.Is(err, store.ErrNotFound):
		h.sendError(sink, "Whiteboard not found")
	default:
		log.Printf("[Socket] Draw in %s failed for %s: %v", roomID, sink.ConnID(), err)
		h.sendError(sink, "Failed to save stroke")
	}
}

func (h *SocketHandler) handleUndo(ctx context.Context, sink *wsSink, p model.Participant, roomID string) {
	err := h.manager.Undo(ctx, roomID, sink.ConnID(), p)
	switch {
	case err == nil:
	case errors.Is(err, session.ErrAccessDenied):
		h.sendError(sink, "You do not have permission to edit this whiteboard")
	case errors.Is(err, store.ErrEmptyLog):
		h.sendError(sink, "No strokes to undo")
	case errors.Is(err, store.ErrNotFound):
		h.sendError(sink, "Whiteboard not found")
	default:
		log.Printf("[Socket] Undo in %s failed for %s: %v", roomID, sink.ConnID(), err)
		h.sendError(sink, "Failed to undo stroke")
	}
}

func (h *SocketHandler) handleClear(ctx context.Context, sink *wsSink, p model.Participant, roomID string) {
	err := h.manager.Clear(ctx, roomID, sink.ConnID(), p)
	switch {
	case err == nil:
	case errors.Is(err, session.ErrAccessDenied):
		h.sendError(sink, "You do not have permission to edit this whiteboard")
	case errors.Is(err, store.ErrNotFound):
		h.sendError(sink, "Whiteboard not found")
	default:
		log.Printf("[Socket] Clear in %s failed for %s: %v", roomID, sink.ConnID(), err)
		h.sendError(sink, "Failed to clear whiteboard")
	}
}

func (h *SocketHandler) sendError(sink *wsSink, message string) {
	if err := sink.Send(protocol.NewEnvelope(protocol.EventError, protocol.ErrorPayload{Message: message})); err != nil {
		log.Printf("[Socket] Failed to send error to %s: %v", sink.ConnID(), err)
	}
}
