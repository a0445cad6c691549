package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jaditi930/Sketchify/internal/model"
)

// MemoryStore keeps rooms and stroke logs in process memory. It backs
// single-node deployments that do not need durability, and the test
// suite. Semantics mirror GormStore exactly, including the per-room
// single-writer discipline.
type MemoryStore struct {
	mu    sync.RWMutex
	rooms map[string]*memoryRoom
}

type memoryRoom struct {
	mu      sync.Mutex
	wb      model.Whiteboard
	strokes []model.Stroke
}

// NewMemoryStore builds an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{rooms: make(map[string]*memoryRoom)}
}

func (s *MemoryStore) room(roomID string) (*memoryRoom, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.rooms[roomID]
	return r, ok
}

func (s *MemoryStore) Room(_ context.Context, roomID string) (*model.Whiteboard, error) {
	r, ok := s.room(roomID)
	if !ok {
		return nil, ErrNotFound
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	wb := r.wb
	wb.Collaborators = append([]model.Collaborator(nil), r.wb.Collaborators...)
	return &wb, nil
}

func (s *MemoryStore) CreateRoom(_ context.Context, wb *model.Whiteboard) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.rooms[wb.RoomID]; ok {
		return ErrDuplicateRoom
	}

	now := time.Now()
	if wb.CreatedAt.IsZero() {
		wb.CreatedAt = now
	}
	wb.UpdatedAt = now

	copied := *wb
	copied.Collaborators = append([]model.Collaborator(nil), wb.Collaborators...)
	s.rooms[wb.RoomID] = &memoryRoom{wb: copied}
	return nil
}

func (s *MemoryStore) UpdateRoom(_ context.Context, roomID string, upd RoomUpdate) (*model.Whiteboard, error) {
	r, ok := s.room(roomID)
	if !ok {
		return nil, ErrNotFound
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if upd.Name != nil {
		r.wb.Name = *upd.Name
	}
	if upd.IsProtected != nil {
		r.wb.IsProtected = *upd.IsProtected
	}
	r.wb.UpdatedAt = time.Now()

	wb := r.wb
	wb.Collaborators = append([]model.Collaborator(nil), r.wb.Collaborators...)
	return &wb, nil
}

func (s *MemoryStore) DeleteRoom(_ context.Context, roomID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.rooms[roomID]; !ok {
		return ErrNotFound
	}
	delete(s.rooms, roomID)
	return nil
}

func (s *MemoryStore) RoomsFor(_ context.Context, userID string) ([]model.Whiteboard, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var boards []model.Whiteboard
	for _, r := range s.rooms {
		r.mu.Lock()
		if r.wb.Owner == userID || r.wb.IsCollaborator(userID) {
			wb := r.wb
			wb.Collaborators = append([]model.Collaborator(nil), r.wb.Collaborators...)
			boards = append(boards, wb)
		}
		r.mu.Unlock()
	}

	sort.Slice(boards, func(i, j int) bool {
		return boards[i].UpdatedAt.After(boards[j].UpdatedAt)
	})
	return boards, nil
}

func (s *MemoryStore) AddCollaborator(_ context.Context, roomID string, c model.Collaborator) error {
	r, ok := s.room(roomID)
	if !ok {
		return ErrNotFound
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.wb.IsCollaborator(c.UserID) {
		return ErrDuplicateCollaborator
	}
	c.RoomID = roomID
	if c.InvitedAt.IsZero() {
		c.InvitedAt = time.Now()
	}
	r.wb.Collaborators = append(r.wb.Collaborators, c)
	return nil
}

func (s *MemoryStore) RemoveCollaborator(_ context.Context, roomID, userID string) error {
	r, ok := s.room(roomID)
	if !ok {
		return ErrNotFound
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.wb.Collaborators[:0]
	for _, c := range r.wb.Collaborators {
		if c.UserID != userID {
			kept = append(kept, c)
		}
	}
	r.wb.Collaborators = kept
	return nil
}

func (s *MemoryStore) Strokes(_ context.Context, roomID string) ([]model.Stroke, error) {
	r, ok := s.room(roomID)
	if !ok {
		return nil, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.Stroke(nil), r.strokes...), nil
}

func (s *MemoryStore) Append(_ context.Context, roomID string, st model.Stroke) error {
	r, ok := s.room(roomID)
	if !ok {
		return ErrNotFound
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.strokes = append(r.strokes, st)
	r.wb.UpdatedAt = time.Now()
	return nil
}

func (s *MemoryStore) PopLast(_ context.Context, roomID string) (*model.Stroke, error) {
	r, ok := s.room(roomID)
	if !ok {
		return nil, ErrNotFound
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.strokes) == 0 {
		return nil, ErrEmptyLog
	}
	last := r.strokes[len(r.strokes)-1]
	r.strokes = r.strokes[:len(r.strokes)-1]
	r.wb.UpdatedAt = time.Now()
	return &last, nil
}

func (s *MemoryStore) Clear(_ context.Context, roomID string) error {
	r, ok := s.room(roomID)
	if !ok {
		return ErrNotFound
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.strokes = nil
	r.wb.UpdatedAt = time.Now()
	return nil
}
