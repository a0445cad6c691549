package handler

import (
	"errors"
	"log"
	"math/rand"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/jaditi930/Sketchify/internal/model"
	"github.com/jaditi930/Sketchify/internal/session"
	"github.com/jaditi930/Sketchify/internal/store"
)

const roomIDChars = "abcdefghijklmnopqrstuvwxyz0123456789"

// WhiteboardHandler serves the room metadata REST API. All routes
// require authentication; guests reach rooms only through the socket.
type WhiteboardHandler struct {
	store   store.Store
	db      *gorm.DB // user lookup for invites
	manager *session.Manager
}

func NewWhiteboardHandler(st store.Store, db *gorm.DB, manager *session.Manager) *WhiteboardHandler {
	return &WhiteboardHandler{store: st, db: db, manager: manager}
}

type createWhiteboardRequest struct {
	Name        string `json:"name"`
	IsProtected *bool  `json:"isProtected"`
}

type updateWhiteboardRequest struct {
	Name        *string `json:"name"`
	IsProtected *bool   `json:"isProtected"`
}

type inviteRequest struct {
	Email string `json:"email"`
}

func requesterID(c *fiber.Ctx) string {
	if id, ok := c.Locals("userID").(int64); ok {
		return strconv.FormatInt(id, 10)
	}
	return ""
}

// generateRoomID draws random 8-character codes until one is free.
func (h *WhiteboardHandler) generateRoomID(c *fiber.Ctx) (string, error) {
	for {
		b := make([]byte, 8)
		for i := range b {
			b[i] = roomIDChars[rand.Intn(len(roomIDChars))]
		}
		roomID := string(b)

		_, err := h.store.Room(c.Context(), roomID)
		if errors.Is(err, store.ErrNotFound) {
			return roomID, nil
		}
		if err != nil {
			return "", err
		}
	}
}

// List returns whiteboards the user owns or collaborates on, newest
// activity first, without stroke logs.
func (h *WhiteboardHandler) List(c *fiber.Ctx) error {
	whiteboards, err := h.store.RoomsFor(c.Context(), requesterID(c))
	if err != nil {
		log.Printf("[Whiteboard] List failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch whiteboards"})
	}
	return c.JSON(fiber.Map{"whiteboards": whiteboards})
}

// Create makes a new room with a fresh 8-character id. Unlike socket
// auto-creation, dashboard-created rooms default to protected.
func (h *WhiteboardHandler) Create(c *fiber.Ctx) error {
	var req createWhiteboardRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	roomID, err := h.generateRoomID(c)
	if err != nil {
		log.Printf("[Whiteboard] Room id generation failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create whiteboard"})
	}

	name := req.Name
	if name == "" {
		name = roomID
	}
	isProtected := true
	if req.IsProtected != nil {
		isProtected = *req.IsProtected
	}

	wb := &model.Whiteboard{
		RoomID:      roomID,
		Name:        name,
		Owner:       requesterID(c),
		IsProtected: isProtected,
	}
	if err := h.store.CreateRoom(c.Context(), wb); err != nil {
		log.Printf("[Whiteboard] Create failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create whiteboard"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"whiteboard": wb})
}

// Get returns one whiteboard. Protected boards are visible only to the
// owner and collaborators.
func (h *WhiteboardHandler) Get(c *fiber.Ctx) error {
	wb, err := h.store.Room(c.Context(), c.Params("roomId"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Whiteboard not found"})
		}
		log.Printf("[Whiteboard] Get failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch whiteboard"})
	}

	userID := requesterID(c)
	hasAccess := wb.Owner == userID || wb.IsCollaborator(userID) || !wb.IsProtected
	if !hasAccess {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "You do not have access to this whiteboard"})
	}

	return c.JSON(fiber.Map{"whiteboard": wb})
}

// Update changes name or protection. Owner only.
func (h *WhiteboardHandler) Update(c *fiber.Ctx) error {
	roomID := c.Params("roomId")

	var req updateWhiteboardRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	wb, err := h.loadOwned(c, roomID, "Only the owner can update this whiteboard")
	if wb == nil {
		return err
	}

	updated, err := h.store.UpdateRoom(c.Context(), roomID, store.RoomUpdate{
		Name:        req.Name,
		IsProtected: req.IsProtected,
	})
	if err != nil {
		log.Printf("[Whiteboard] Update %s failed: %v", roomID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update whiteboard"})
	}

	return c.JSON(fiber.Map{"whiteboard": updated})
}

// Invite adds a collaborator by email. Owner only.
func (h *WhiteboardHandler) Invite(c *fiber.Ctx) error {
	roomID := c.Params("roomId")

	var req inviteRequest
	if err := c.BodyParser(&req); err != nil || req.Email == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Email is required"})
	}

	wb, err := h.loadOwned(c, roomID, "Only the owner can invite collaborators")
	if wb == nil {
		return err
	}

	var user model.User
	if err := h.db.WithContext(c.Context()).Where("email = ?", strings.ToLower(req.Email)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
		}
		log.Printf("[Whiteboard] User lookup failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to invite collaborator"})
	}

	inviteeID := strconv.FormatInt(user.ID, 10)
	if inviteeID == wb.Owner {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Owner cannot be invited as collaborator"})
	}

	err = h.store.AddCollaborator(c.Context(), roomID, model.Collaborator{
		RoomID:   roomID,
		UserID:   inviteeID,
		Email:    user.Email,
		Username: user.Username,
	})
	if err != nil {
		if errors.Is(err, store.ErrDuplicateCollaborator) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "User is already a collaborator"})
		}
		log.Printf("[Whiteboard] Invite to %s failed: %v", roomID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to invite collaborator"})
	}

	updated, err := h.store.Room(c.Context(), roomID)
	if err != nil {
		return c.JSON(fiber.Map{"message": "Collaborator invited successfully"})
	}
	return c.JSON(fiber.Map{"whiteboard": updated, "message": "Collaborator invited successfully"})
}

// RemoveCollaborator revokes an invite. Owner only.
func (h *WhiteboardHandler) RemoveCollaborator(c *fiber.Ctx) error {
	roomID := c.Params("roomId")

	wb, err := h.loadOwned(c, roomID, "Only the owner can remove collaborators")
	if wb == nil {
		return err
	}

	if err := h.store.RemoveCollaborator(c.Context(), roomID, c.Params("collaboratorId")); err != nil {
		log.Printf("[Whiteboard] Remove collaborator from %s failed: %v", roomID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to remove collaborator"})
	}

	updated, err := h.store.Room(c.Context(), roomID)
	if err != nil {
		return c.JSON(fiber.Map{"message": "Collaborator removed successfully"})
	}
	return c.JSON(fiber.Map{"whiteboard": updated, "message": "Collaborator removed successfully"})
}

// Delete removes the whiteboard and its stroke log, then tears down any
// live session so connected clients learn the board is gone.
func (h *WhiteboardHandler) Delete(c *fiber.Ctx) error {
	roomID := c.Params("roomId")

	wb, err := h.loadOwned(c, roomID, "Only the owner can delete this whiteboard")
	if wb == nil {
		return err
	}

	if err := h.store.DeleteRoom(c.Context(), roomID); err != nil {
		log.Printf("[Whiteboard] Delete %s failed: %v", roomID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete whiteboard"})
	}

	h.manager.InvalidateRoom(roomID)

	return c.JSON(fiber.Map{"message": "Whiteboard deleted successfully"})
}

// loadOwned fetches the room and enforces ownership. On failure it
// writes the response and returns a nil whiteboard with the fiber error.
func (h *WhiteboardHandler) loadOwned(c *fiber.Ctx, roomID, forbiddenMsg string) (*model.Whiteboard, error) {
	wb, err := h.store.Room(c.Context(), roomID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Whiteboard not found"})
		}
		log.Printf("[Whiteboard] Load %s failed: %v", roomID, err)
		return nil, c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch whiteboard"})
	}
	if wb.Owner != requesterID(c) {
		return nil, c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": forbiddenMsg})
	}
	return wb, nil
}
