package model

import (
	"time"
)

// OwnerGuest is the owner sentinel recorded when an anonymous guest
// auto-creates a room on first join.
const OwnerGuest = "guest"

// User account
type User struct {
	ID           int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Email        string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Username     string    `gorm:"type:varchar(100);not null" json:"username"`
	PasswordHash string    `gorm:"type:varchar(255);not null" json:"-"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (User) TableName() string {
	return "users"
}

// Whiteboard is one collaborative room. RoomID is the opaque short code
// clients join with; it is immutable and globally unique. Owner is a
// user id rendered as a string, or the "guest" sentinel, and never
// changes after creation.
type Whiteboard struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"-"`
	RoomID      string    `gorm:"type:varchar(32);uniqueIndex;not null" json:"roomId"`
	Name        string    `gorm:"type:varchar(200);not null" json:"name"`
	Owner       string    `gorm:"type:varchar(64);index;not null" json:"owner"`
	IsProtected bool      `gorm:"default:false" json:"isProtected"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updatedAt"`

	// Relations
	Collaborators []Collaborator `gorm:"foreignKey:RoomID;references:RoomID" json:"collaborators"`
}

func (Whiteboard) TableName() string {
	return "whiteboards"
}

// IsCollaborator reports whether userID appears in the collaborator set.
func (w *Whiteboard) IsCollaborator(userID string) bool {
	for _, c := range w.Collaborators {
		if c.UserID == userID {
			return true
		}
	}
	return false
}

// Collaborator is one invited member of a protected room. The owner is
// never stored here, and a user appears at most once per room.
type Collaborator struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"-"`
	RoomID    string    `gorm:"type:varchar(32);not null;uniqueIndex:idx_room_collaborator,priority:1" json:"-"`
	UserID    string    `gorm:"type:varchar(64);not null;uniqueIndex:idx_room_collaborator,priority:2" json:"userId"`
	Email     string    `gorm:"type:varchar(255);not null" json:"email"`
	Username  string    `gorm:"type:varchar(100);not null" json:"username"`
	InvitedAt time.Time `gorm:"autoCreateTime" json:"invitedAt"`
}

func (Collaborator) TableName() string {
	return "whiteboard_collaborators"
}

// StrokeRecord is one appended stroke in a room's log. The serial ID
// carries the authoritative log order; Data holds the stroke JSON as
// the client sent it.
type StrokeRecord struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	RoomID    string    `gorm:"type:varchar(32);not null;index:idx_stroke_room" json:"room_id"`
	StrokeID  string    `gorm:"type:varchar(100);not null" json:"stroke_id"`
	UserID    string    `gorm:"type:varchar(64);not null" json:"user_id"`
	Data      string    `gorm:"type:jsonb;not null" json:"data"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (StrokeRecord) TableName() string {
	return "whiteboard_strokes"
}

// ChatMessage is one entry of the per-room chat side-channel. The feed
// is append-only and shares nothing with the stroke log.
type ChatMessage struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	RoomID    string    `gorm:"type:varchar(32);not null;index:idx_chat_room_ts" json:"roomId"`
	UserID    string    `gorm:"type:varchar(64);not null" json:"userId"`
	Username  string    `gorm:"type:varchar(100);not null" json:"username"`
	Message   string    `gorm:"type:text;not null" json:"message"`
	Timestamp time.Time `gorm:"autoCreateTime;index:idx_chat_room_ts" json:"timestamp"`
}

func (ChatMessage) TableName() string {
	return "chat_messages"
}
