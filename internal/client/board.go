package client

import (
	"image"
	"sync"

	"github.com/jaditi930/Sketchify/internal/canvas"
	"github.com/jaditi930/Sketchify/internal/model"
	"github.com/jaditi930/Sketchify/internal/protocol"
)

// Board mirrors the authoritative room state on the client: the stroke
// list as last confirmed by the server, plus the compositor rendering
// it. Remote events mutate the list and re-render; locally committed
// strokes are appended without a replay since the compositor already
// carries them from the live interaction.
type Board struct {
	mu sync.Mutex

	userID string
	comp   *canvas.Compositor

	roomID      string
	name        string
	isProtected bool
	canEdit     bool
	loaded      bool

	strokes []model.Stroke
}

func NewBoard(userID string, comp *canvas.Compositor) *Board {
	return &Board{userID: userID, comp: comp}
}

// ApplyLoaded installs the initial room snapshot and replays its log.
func (b *Board) ApplyLoaded(p protocol.WhiteboardLoaded) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.roomID = p.RoomID
	b.name = p.Name
	b.isProtected = p.IsProtected
	b.canEdit = p.CanEdit
	b.loaded = true
	b.strokes = append([]model.Stroke(nil), p.Strokes...)
	b.comp.Replay(b.strokes)
}

// ApplyStrokeDrawn appends and renders a remote stroke. The server
// excludes the author from the broadcast, but a stroke carrying our own
// user id is skipped anyway so a stray echo never double-renders.
func (b *Board) ApplyStrokeDrawn(s model.Stroke) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if s.UserID == b.userID {
		return
	}
	b.strokes = append(b.strokes, s)
	b.comp.Apply(&s)
}

// AddLocal records a stroke committed by the local interaction. The
// compositor rendered it during CommitInteraction, so only the log is
// updated here.
func (b *Board) AddLocal(s model.Stroke) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.strokes = append(b.strokes, s)
}

// ApplyCleared empties the log and resets the canvas to background.
func (b *Board) ApplyCleared() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.strokes = b.strokes[:0]
	b.comp.Replay(nil)
}

// ApplyUndone removes the newest stroke and re-renders from the log.
// The server sends the undone stroke id; it always names the tail, but
// matching by id keeps replays correct if ordering ever drifts.
func (b *Board) ApplyUndone(strokeID string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.strokes) == 0 {
		return
	}
	idx := len(b.strokes) - 1
	if strokeID != "" && b.strokes[idx].ID != strokeID {
		for i := len(b.strokes) - 1; i >= 0; i-- {
			if b.strokes[i].ID == strokeID {
				idx = i
				break
			}
		}
	}
	b.strokes = append(b.strokes[:idx], b.strokes[idx+1:]...)
	b.comp.Replay(b.strokes)
}

// Composite returns the current rendered frame.
func (b *Board) Composite() *image.RGBA {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.comp.Composite()
}

// Strokes returns a copy of the confirmed stroke log.
func (b *Board) Strokes() []model.Stroke {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]model.Stroke(nil), b.strokes...)
}

func (b *Board) RoomID() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.roomID
}

func (b *Board) Name() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.name
}

func (b *Board) CanEdit() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.canEdit
}

func (b *Board) Loaded() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.loaded
}
