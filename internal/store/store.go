// Package store persists whiteboard rooms and their stroke logs.
//
// The stroke log of one room is an ordered, append-only sequence with
// exactly three mutations: append one stroke, pop the most recently
// appended stroke, or truncate to empty. Implementations serialize all
// mutating operations per room through a single-writer mutex, which
// makes the three operations linearizable relative to each other: two
// concurrent appends can never corrupt order, and a pop removes
// exactly the stroke that was last when it acquired the room.
package store

import (
	"context"
	"errors"

	"github.com/jaditi930/Sketchify/internal/model"
)

var (
	// ErrNotFound means the room id does not resolve to a whiteboard.
	ErrNotFound = errors.New("whiteboard not found")
	// ErrEmptyLog means popLast was called on a room with zero strokes.
	ErrEmptyLog = errors.New("no strokes to undo")
	// ErrDuplicateRoom means the room code already exists.
	ErrDuplicateRoom = errors.New("room id already exists")
	// ErrDuplicateCollaborator means the user is already invited.
	ErrDuplicateCollaborator = errors.New("user is already a collaborator")
)

// RoomUpdate carries the owner-gated metadata mutations; nil fields are
// left untouched. The room id and owner are immutable and have no slot.
type RoomUpdate struct {
	Name        *string
	IsProtected *bool
}

// Rooms is the whiteboard metadata store consumed by the session
// manager (read side) and the CRUD handlers (write side).
type Rooms interface {
	// Room loads a whiteboard with its collaborator set.
	Room(ctx context.Context, roomID string) (*model.Whiteboard, error)
	// CreateRoom inserts a new whiteboard. The collaborator set starts empty.
	CreateRoom(ctx context.Context, wb *model.Whiteboard) error
	// UpdateRoom applies owner-gated metadata changes.
	UpdateRoom(ctx context.Context, roomID string, upd RoomUpdate) (*model.Whiteboard, error)
	// DeleteRoom removes the whiteboard, its collaborators, and its stroke log.
	DeleteRoom(ctx context.Context, roomID string) error
	// RoomsFor lists whiteboards the user owns or collaborates on,
	// most recently updated first, without stroke logs.
	RoomsFor(ctx context.Context, userID string) ([]model.Whiteboard, error)
	// AddCollaborator invites a user; owner and duplicates are rejected
	// by the caller, duplicates additionally by the store.
	AddCollaborator(ctx context.Context, roomID string, c model.Collaborator) error
	// RemoveCollaborator drops a user from the collaborator set.
	RemoveCollaborator(ctx context.Context, roomID, userID string) error
}

// StrokeLog is the per-room ordered stroke sequence.
type StrokeLog interface {
	// Strokes returns the full log in append order.
	Strokes(ctx context.Context, roomID string) ([]model.Stroke, error)
	// Append adds one stroke to the end of the log and bumps the
	// room's modification timestamp. Duplicate stroke ids are not
	// rejected; id uniqueness is advisory only.
	Append(ctx context.Context, roomID string, s model.Stroke) error
	// PopLast atomically removes and returns the last-appended stroke,
	// or ErrEmptyLog without mutation when the log is empty.
	PopLast(ctx context.Context, roomID string) (*model.Stroke, error)
	// Clear atomically empties the log.
	Clear(ctx context.Context, roomID string) error
}

// Store bundles both concerns; a room's metadata and its log live in
// the same backend.
type Store interface {
	Rooms
	StrokeLog
}
