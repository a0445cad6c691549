// Package session owns the registry of active rooms and their
// subscribed connections. The registry is an explicit object built at
// process start and passed to every handler; nothing here is package
// global. All log mutations for one room travel through that room's
// group mutex, so concurrent draws keep their order and an undo always
// removes the stroke that was last when it was issued.
package session

import (
	"context"
	"errors"
	"log"
	"sync"

	"github.com/jaditi930/Sketchify/internal/access"
	"github.com/jaditi930/Sketchify/internal/model"
	"github.com/jaditi930/Sketchify/internal/protocol"
	"github.com/jaditi930/Sketchify/internal/store"
)

// ErrAccessDenied means the participant lacks the view or edit right
// for the requested operation.
var ErrAccessDenied = errors.New("access denied")

// Sink is one subscribed connection's outbound side. Implementations
// must be safe for concurrent Send calls.
type Sink interface {
	ConnID() string
	Send(env protocol.Envelope) error
}

type outbound struct {
	env   protocol.Envelope
	sinks []Sink
}

// group is one broadcast group: a room's live members plus the
// sequential fan-out channel drained by its broadcaster goroutine.
// Messages enqueued under the group mutex reach every member in enqueue
// order, which keeps stroke-drawn/stroke-undone causally consistent.
type group struct {
	id string

	// mu serializes joins and log mutations for the room (single-writer).
	mu sync.Mutex

	membersMu sync.RWMutex
	members   map[string]Sink

	out  chan outbound
	done chan struct{}
}

func newGroup(id string) *group {
	g := &group{
		id:      id,
		members: make(map[string]Sink),
		out:     make(chan outbound, 256),
		done:    make(chan struct{}),
	}
	go g.runBroadcaster()
	return g
}

func (g *group) runBroadcaster() {
	for {
		select {
		case <-g.done:
			return
		case msg, ok := <-g.out:
			if !ok {
				return
			}
			g.fanOut(msg)
		}
	}
}

func (g *group) fanOut(msg outbound) {
	for _, s := range msg.sinks {
		if err := s.Send(msg.env); err != nil {
			log.Printf("[Room %s] Failed to send %s to %s: %v", g.id, msg.env.Event, s.ConnID(), err)
		}
	}
}

// recipients snapshots the current membership, minus one excluded
// connection.
func (g *group) recipients(exclude string) []Sink {
	g.membersMu.RLock()
	defer g.membersMu.RUnlock()
	sinks := make([]Sink, 0, len(g.members))
	for _, s := range g.members {
		if exclude != "" && s.ConnID() == exclude {
			continue
		}
		sinks = append(sinks, s)
	}
	return sinks
}

// enqueue hands a message to the broadcaster. The recipient list is
// captured now, not at fan-out time: a connection that subscribes later
// must not receive events enqueued before its join, since those are
// already part of its join snapshot. A full buffer drops the frame
// rather than stalling the mutation path; delivery is best-effort
// at-least-once, clients resync in full on reconnect.
func (g *group) enqueue(exclude string, env protocol.Envelope) {
	msg := outbound{env: env, sinks: g.recipients(exclude)}
	if len(msg.sinks) == 0 {
		return
	}
	select {
	case g.out <- msg:
	default:
		log.Printf("[Room %s] Broadcast buffer full, dropping %s", g.id, env.Event)
	}
}

func (g *group) add(s Sink) {
	g.membersMu.Lock()
	g.members[s.ConnID()] = s
	g.membersMu.Unlock()
}

func (g *group) remove(connID string) int {
	g.membersMu.Lock()
	delete(g.members, connID)
	n := len(g.members)
	g.membersMu.Unlock()
	return n
}

func (g *group) shutdown() {
	close(g.done)
}

// Manager is the Room Session Manager: it resolves access, loads or
// auto-creates rooms on join, applies log mutations through the store,
// and fans results out to the room's broadcast group. The chat
// side-channel reuses the grouping machinery through Subscribe /
// Broadcast with its own group key prefix.
type Manager struct {
	store store.Store

	mu     sync.RWMutex
	groups map[string]*group
	conns  map[string]map[string]struct{} // connID -> group ids
}

// NewManager builds an empty registry over the given store.
func NewManager(st store.Store) *Manager {
	return &Manager{
		store:  st,
		groups: make(map[string]*group),
		conns:  make(map[string]map[string]struct{}),
	}
}

func (m *Manager) getOrCreateGroup(id string) *group {
	m.mu.Lock()
	defer m.mu.Unlock()

	if g, ok := m.groups[id]; ok {
		return g
	}
	g := newGroup(id)
	m.groups[id] = g
	log.Printf("[Session] Created group: %s", id)
	return g
}

func (m *Manager) lookupGroup(id string) (*group, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	g, ok := m.groups[id]
	return g, ok
}

func (m *Manager) trackConn(connID, groupID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	set, ok := m.conns[connID]
	if !ok {
		set = make(map[string]struct{})
		m.conns[connID] = set
	}
	set[groupID] = struct{}{}
}

func (m *Manager) untrackConn(connID, groupID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if set, ok := m.conns[connID]; ok {
		delete(set, groupID)
		if len(set) == 0 {
			delete(m.conns, connID)
		}
	}
}

// dropGroupIfEmpty tears the broadcaster down once the last member is
// gone. The persisted room is untouched; a later join recreates the
// group.
func (m *Manager) dropGroupIfEmpty(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	g, ok := m.groups[id]
	if !ok {
		return
	}
	g.membersMu.RLock()
	empty := len(g.members) == 0
	g.membersMu.RUnlock()
	if empty {
		g.shutdown()
		delete(m.groups, id)
		log.Printf("[Session] Removed group: %s", id)
	}
}

// Join loads the room (creating it on first join), verifies view
// access, subscribes the connection, and returns the full stroke log
// with metadata. Everyone already in the room learns about the new
// connection; the requester gets no echo of that notification.
func (m *Manager) Join(ctx context.Context, roomID string, p model.Participant, sink Sink) (*protocol.WhiteboardLoaded, error) {
	g := m.getOrCreateGroup(roomID)
	g.mu.Lock()
	defer g.mu.Unlock()
	// A denied or failed join must not strand the group it may have
	// just created, still member-less, with a live broadcaster.
	defer m.dropGroupIfEmpty(roomID)

	wb, err := m.store.Room(ctx, roomID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		// Auto-create: the requester becomes the owner (or the guest
		// sentinel) and the room starts public and empty.
		owner := model.OwnerGuest
		if p.Authenticated {
			owner = p.UserID
		}
		wb = &model.Whiteboard{
			RoomID:      roomID,
			Name:        roomID,
			Owner:       owner,
			IsProtected: false,
		}
		if err := m.store.CreateRoom(ctx, wb); err != nil && !errors.Is(err, store.ErrDuplicateRoom) {
			return nil, err
		}
	case err != nil:
		return nil, err
	default:
		if !access.CanView(wb, p) {
			return nil, ErrAccessDenied
		}
	}

	strokes, err := m.store.Strokes(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if strokes == nil {
		strokes = []model.Stroke{}
	}

	g.add(sink)
	m.trackConn(sink.ConnID(), roomID)
	log.Printf("[Session] %s (%s) joined room %s", sink.ConnID(), p.Username, roomID)

	g.enqueue(sink.ConnID(), protocol.NewEnvelope(protocol.EventUserJoined, protocol.UserJoined{
		UserID: sink.ConnID(),
	}))

	return &protocol.WhiteboardLoaded{
		Strokes:     strokes,
		RoomID:      wb.RoomID,
		Name:        wb.Name,
		IsProtected: wb.IsProtected,
		CanEdit:     access.CanEdit(wb, p),
	}, nil
}

// Draw validates edit access against the current room state, appends
// the stroke, and broadcasts it to everyone except the author. Authors
// already rendered optimistically, so they get no echo.
func (m *Manager) Draw(ctx context.Context, roomID, connID string, p model.Participant, stroke model.Stroke) error {
	g := m.getOrCreateGroup(roomID)
	g.mu.Lock()
	defer g.mu.Unlock()
	// A rejected draw on an unknown room must not leave a member-less
	// group behind.
	defer m.dropGroupIfEmpty(roomID)

	wb, err := m.store.Room(ctx, roomID)
	if err != nil {
		return err
	}
	if !access.CanEdit(wb, p) {
		return ErrAccessDenied
	}
	if err := stroke.Validate(); err != nil {
		return err
	}

	if err := m.store.Append(ctx, roomID, stroke); err != nil {
		return err
	}

	g.enqueue(connID, protocol.NewEnvelope(protocol.EventStrokeDrawn, stroke))
	return nil
}

// Undo atomically removes the last-appended stroke and echoes the
// removal to the whole room including the requester; only the server
// knows authoritatively which stroke went away.
func (m *Manager) Undo(ctx context.Context, roomID, connID string, p model.Participant) error {
	g := m.getOrCreateGroup(roomID)
	g.mu.Lock()
	defer g.mu.Unlock()
	defer m.dropGroupIfEmpty(roomID)

	wb, err := m.store.Room(ctx, roomID)
	if err != nil {
		return err
	}
	if !access.CanEdit(wb, p) {
		return ErrAccessDenied
	}

	popped, err := m.store.PopLast(ctx, roomID)
	if err != nil {
		return err
	}

	g.enqueue("", protocol.NewEnvelope(protocol.EventStrokeUndone, protocol.StrokeUndone{
		StrokeID: popped.ID,
	}))
	return nil
}

// Clear truncates the log and echoes the clear to the whole room
// including the requester; there is no optimistic local clear.
func (m *Manager) Clear(ctx context.Context, roomID, connID string, p model.Participant) error {
	g := m.getOrCreateGroup(roomID)
	g.mu.Lock()
	defer g.mu.Unlock()
	defer m.dropGroupIfEmpty(roomID)

	wb, err := m.store.Room(ctx, roomID)
	if err != nil {
		return err
	}
	if !access.CanEdit(wb, p) {
		return ErrAccessDenied
	}

	if err := m.store.Clear(ctx, roomID); err != nil {
		return err
	}

	g.enqueue("", protocol.NewEnvelope(protocol.EventWhiteboardCleared, nil))
	return nil
}

// Subscribe adds a connection to an arbitrary broadcast group. The chat
// side-channel uses this directly with its own key prefix; whiteboard
// joins go through Join instead.
func (m *Manager) Subscribe(groupID string, sink Sink) {
	g := m.getOrCreateGroup(groupID)
	g.add(sink)
	m.trackConn(sink.ConnID(), groupID)
}

// Unsubscribe removes a connection from one group. No state mutation
// happens and the room survives even when it becomes empty.
func (m *Manager) Unsubscribe(groupID, connID string) {
	g, ok := m.lookupGroup(groupID)
	if !ok {
		return
	}
	g.remove(connID)
	m.untrackConn(connID, groupID)
	m.dropGroupIfEmpty(groupID)
}

// UnsubscribeAll detaches a closing connection from every group it
// joined.
func (m *Manager) UnsubscribeAll(connID string) {
	m.mu.RLock()
	ids := make([]string, 0, len(m.conns[connID]))
	for id := range m.conns[connID] {
		ids = append(ids, id)
	}
	m.mu.RUnlock()

	for _, id := range ids {
		m.Unsubscribe(id, connID)
	}
}

// Broadcast fans an event out to a group, optionally excluding one
// connection.
func (m *Manager) Broadcast(groupID, excludeConnID string, env protocol.Envelope) {
	g, ok := m.lookupGroup(groupID)
	if !ok {
		return
	}
	g.enqueue(excludeConnID, env)
}

// InvalidateRoom tears down the live session state of a deleted room:
// members are told the board is gone and unsubscribed. Called by the
// metadata API after an owner delete.
func (m *Manager) InvalidateRoom(roomID string) {
	g, ok := m.lookupGroup(roomID)
	if !ok {
		return
	}

	g.fanOut(outbound{
		env:   protocol.NewEnvelope(protocol.EventWhiteboardDeleted, protocol.RoomRef{RoomID: roomID}),
		sinks: g.recipients(""),
	})

	g.membersMu.RLock()
	ids := make([]string, 0, len(g.members))
	for id := range g.members {
		ids = append(ids, id)
	}
	g.membersMu.RUnlock()

	for _, id := range ids {
		m.Unsubscribe(roomID, id)
	}
}
