package handler

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/jaditi930/Sketchify/internal/model"
	"github.com/jaditi930/Sketchify/internal/protocol"
)

const chatHistoryLimit = 50

// chatGroup keys chat subscriptions separately from whiteboard
// subscriptions so a client can sit in one without the other.
func chatGroup(roomID string) string {
	return "chat-" + roomID
}

// handleJoinChat subscribes to the room's chat feed and replays recent
// history to the requester, cache first, database as fallback.
func (h *SocketHandler) handleJoinChat(ctx context.Context, sink *wsSink, roomID string) {
	h.manager.Subscribe(chatGroup(roomID), sink)

	history := h.chatHistory(ctx, roomID)
	if err := sink.Send(protocol.NewEnvelope(protocol.EventChatHistory, history)); err != nil {
		log.Printf("[Chat] Failed to send history to %s: %v", sink.ConnID(), err)
	}
}

func (h *SocketHandler) chatHistory(ctx context.Context, roomID string) []model.ChatMessage {
	if h.chatCache != nil {
		messages, err := h.chatCache.RecentMessages(ctx, roomID, chatHistoryLimit)
		if err == nil && len(messages) > 0 {
			return messages
		}
		if err != nil {
			log.Printf("[Chat] Cache read failed for %s: %v", roomID, err)
		}
	}

	if h.db == nil {
		return []model.ChatMessage{}
	}

	var messages []model.ChatMessage
	err := h.db.WithContext(ctx).
		Where("room_id = ?", roomID).
		Order("timestamp DESC").
		Limit(chatHistoryLimit).
		Find(&messages).Error
	if err != nil {
		log.Printf("[Chat] History query failed for %s: %v", roomID, err)
		return []model.ChatMessage{}
	}

	// query is newest-first, clients want oldest-first
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages
}

// handleSendMessage validates, persists, caches, and fans the message
// out to everyone in the chat group including the sender.
func (h *SocketHandler) handleSendMessage(ctx context.Context, sink *wsSink, p model.Participant, payload protocol.SendMessage) {
	text := strings.TrimSpace(payload.Message)
	if payload.RoomID == "" || text == "" {
		return
	}

	msg := model.ChatMessage{
		RoomID:    payload.RoomID,
		UserID:    p.UserID,
		Username:  p.Username,
		Message:   text,
		Timestamp: time.Now(),
	}

	if h.db != nil {
		if err := h.db.WithContext(ctx).Create(&msg).Error; err != nil {
			log.Printf("[Chat] Failed to persist message in %s: %v", payload.RoomID, err)
		}
	}
	if h.chatCache != nil {
		if err := h.chatCache.AddMessage(ctx, payload.RoomID, &msg); err != nil {
			log.Printf("[Chat] Failed to cache message in %s: %v", payload.RoomID, err)
		}
	}

	h.manager.Broadcast(chatGroup(payload.RoomID), "", protocol.NewEnvelope(protocol.EventNewMessage, msg))
}
