// Package access holds the pure view/edit decision functions for
// whiteboard rooms. Both predicates are evaluated fresh on every
// privileged operation; nothing here is cached because the owner,
// visibility, and collaborator set can change between operations.
package access

import (
	"github.com/jaditi930/Sketchify/internal/model"
)

// CanView reports whether the participant may load and watch the room.
// Unprotected rooms are visible to everyone including guests; protected
// rooms require an authenticated owner or collaborator.
func CanView(wb *model.Whiteboard, p model.Participant) bool {
	if !wb.IsProtected {
		return true
	}
	if !p.Authenticated {
		return false
	}
	return wb.Owner == p.UserID || wb.IsCollaborator(p.UserID)
}

// CanEdit reports whether the participant may draw, undo, or clear.
// Unprotected rooms are editable by anyone with view access, guests
// included; a protected room is never editable by a guest.
func CanEdit(wb *model.Whiteboard, p model.Participant) bool {
	if !wb.IsProtected {
		return true
	}
	if !p.Authenticated {
		return false
	}
	return wb.Owner == p.UserID || wb.IsCollaborator(p.UserID)
}
