package access

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jaditi930/Sketchify/internal/model"
)

func protectedBoard() *model.Whiteboard {
	return &model.Whiteboard{
		RoomID:      "room1234",
		Owner:       "42",
		IsProtected: true,
		Collaborators: []model.Collaborator{
			{RoomID: "room1234", UserID: "77", Email: "collab@example.com", Username: "collab"},
		},
	}
}

func TestUnprotectedRoomOpenToEveryone(t *testing.T) {
	wb := &model.Whiteboard{RoomID: "open1234", Owner: model.OwnerGuest}

	guest := model.GuestParticipant("conn-abc123")
	assert.True(t, CanView(wb, guest))
	assert.True(t, CanEdit(wb, guest))

	stranger := model.Participant{UserID: "999", Authenticated: true}
	assert.True(t, CanView(wb, stranger))
	assert.True(t, CanEdit(wb, stranger))
}

func TestProtectedRoomRejectsGuests(t *testing.T) {
	wb := protectedBoard()

	guest := model.GuestParticipant("conn-abc123")
	assert.False(t, CanView(wb, guest))
	assert.False(t, CanEdit(wb, guest))
}

func TestProtectedRoomOwnerAndCollaborators(t *testing.T) {
	wb := protectedBoard()

	owner := model.Participant{UserID: "42", Authenticated: true}
	assert.True(t, CanView(wb, owner))
	assert.True(t, CanEdit(wb, owner))

	collab := model.Participant{UserID: "77", Authenticated: true}
	assert.True(t, CanView(wb, collab))
	assert.True(t, CanEdit(wb, collab))

	stranger := model.Participant{UserID: "999", Authenticated: true}
	assert.False(t, CanView(wb, stranger))
	assert.False(t, CanEdit(wb, stranger))
}

func TestGuestWithOwnerUserIDStillDenied(t *testing.T) {
	// an unauthenticated participant claiming the owner's id gets nothing
	wb := protectedBoard()
	impostor := model.Participant{UserID: "42", Authenticated: false}
	assert.False(t, CanView(wb, impostor))
	assert.False(t, CanEdit(wb, impostor))
}
