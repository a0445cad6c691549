package store

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/jaditi930/Sketchify/internal/model"
)

// GormStore persists rooms and stroke logs through GORM. Mutating log
// operations on one room are funneled through a per-room mutex so that
// append/popLast/clear are strictly serialized even when the database
// itself would allow interleaving.
type GormStore struct {
	db *gorm.DB

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewGormStore wraps an open GORM connection.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{
		db:    db,
		locks: make(map[string]*sync.Mutex),
	}
}

// roomLock returns the single-writer mutex for one room, creating it on
// first use. Locks are never discarded; a room that existed once keeps
// its mutex for the process lifetime.
func (s *GormStore) roomLock(roomID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	if l, ok := s.locks[roomID]; ok {
		return l
	}
	l := &sync.Mutex{}
	s.locks[roomID] = l
	return l
}

func (s *GormStore) Room(ctx context.Context, roomID string) (*model.Whiteboard, error) {
	var wb model.Whiteboard
	err := s.db.WithContext(ctx).
		Preload("Collaborators").
		Where("room_id = ?", roomID).
		First(&wb).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &wb, nil
}

func (s *GormStore) CreateRoom(ctx context.Context, wb *model.Whiteboard) error {
	if err := s.db.WithContext(ctx).Create(wb).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateRoom
		}
		return err
	}
	return nil
}

func (s *GormStore) UpdateRoom(ctx context.Context, roomID string, upd RoomUpdate) (*model.Whiteboard, error) {
	updates := map[string]any{}
	if upd.Name != nil {
		updates["name"] = *upd.Name
	}
	if upd.IsProtected != nil {
		updates["is_protected"] = *upd.IsProtected
	}

	if len(updates) > 0 {
		res := s.db.WithContext(ctx).
			Model(&model.Whiteboard{}).
			Where("room_id = ?", roomID).
			Updates(updates)
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 0 {
			return nil, ErrNotFound
		}
	}

	return s.Room(ctx, roomID)
}

func (s *GormStore) DeleteRoom(ctx context.Context, roomID string) error {
	lock := s.roomLock(roomID)
	lock.Lock()
	defer lock.Unlock()

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("room_id = ?", roomID).Delete(&model.Whiteboard{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		if err := tx.Where("room_id = ?", roomID).Delete(&model.Collaborator{}).Error; err != nil {
			return err
		}
		if err := tx.Where("room_id = ?", roomID).Delete(&model.StrokeRecord{}).Error; err != nil {
			return err
		}
		return tx.Where("room_id = ?", roomID).Delete(&model.ChatMessage{}).Error
	})
}

func (s *GormStore) RoomsFor(ctx context.Context, userID string) ([]model.Whiteboard, error) {
	collaborated := s.db.Model(&model.Collaborator{}).
		Select("room_id").
		Where("user_id = ?", userID)

	var boards []model.Whiteboard
	err := s.db.WithContext(ctx).
		Preload("Collaborators").
		Where("owner = ? OR room_id IN (?)", userID, collaborated).
		Order("updated_at DESC").
		Find(&boards).Error
	if err != nil {
		return nil, err
	}
	return boards, nil
}

func (s *GormStore) AddCollaborator(ctx context.Context, roomID string, c model.Collaborator) error {
	c.RoomID = roomID
	if err := s.db.WithContext(ctx).Create(&c).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateCollaborator
		}
		return err
	}
	return nil
}

func (s *GormStore) RemoveCollaborator(ctx context.Context, roomID, userID string) error {
	return s.db.WithContext(ctx).
		Where("room_id = ? AND user_id = ?", roomID, userID).
		Delete(&model.Collaborator{}).Error
}

func (s *GormStore) Strokes(ctx context.Context, roomID string) ([]model.Stroke, error) {
	var records []model.StrokeRecord
	err := s.db.WithContext(ctx).
		Where("room_id = ?", roomID).
		Order("id ASC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}

	strokes := make([]model.Stroke, 0, len(records))
	for _, rec := range records {
		var st model.Stroke
		if err := json.Unmarshal([]byte(rec.Data), &st); err != nil {
			log.Printf("[Store] Skipping unreadable stroke %d in room %s: %v", rec.ID, roomID, err)
			continue
		}
		strokes = append(strokes, st)
	}
	return strokes, nil
}

func (s *GormStore) Append(ctx context.Context, roomID string, st model.Stroke) error {
	lock := s.roomLock(roomID)
	lock.Lock()
	defer lock.Unlock()

	data, err := json.Marshal(st)
	if err != nil {
		return err
	}

	rec := model.StrokeRecord{
		RoomID:   roomID,
		StrokeID: st.ID,
		UserID:   st.UserID,
		Data:     string(data),
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&rec).Error; err != nil {
			return err
		}
		return s.touch(tx, roomID)
	})
}

func (s *GormStore) PopLast(ctx context.Context, roomID string) (*model.Stroke, error) {
	lock := s.roomLock(roomID)
	lock.Lock()
	defer lock.Unlock()

	var popped *model.Stroke
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rec model.StrokeRecord
		err := tx.Where("room_id = ?", roomID).Order("id DESC").First(&rec).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrEmptyLog
			}
			return err
		}

		if err := tx.Delete(&model.StrokeRecord{}, rec.ID).Error; err != nil {
			return err
		}

		var st model.Stroke
		if err := json.Unmarshal([]byte(rec.Data), &st); err != nil {
			return err
		}
		popped = &st
		return s.touch(tx, roomID)
	})
	if err != nil {
		return nil, err
	}
	return popped, nil
}

func (s *GormStore) Clear(ctx context.Context, roomID string) error {
	lock := s.roomLock(roomID)
	lock.Lock()
	defer lock.Unlock()

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("room_id = ?", roomID).Delete(&model.StrokeRecord{}).Error; err != nil {
			return err
		}
		return s.touch(tx, roomID)
	})
}

// touch bumps a room's modification timestamp.
func (s *GormStore) touch(tx *gorm.DB, roomID string) error {
	return tx.Model(&model.Whiteboard{}).
		Where("room_id = ?", roomID).
		Update("updated_at", time.Now()).Error
}
