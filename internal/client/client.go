// Package client implements the whiteboard client: the websocket
// transport with automatic reconnection, the confirmed board state,
// and the pointer interaction controller driving the compositor.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/jaditi930/Sketchify/internal/model"
	"github.com/jaditi930/Sketchify/internal/protocol"
)

const (
	reconnectMin = time.Second
	reconnectMax = 30 * time.Second
	dialTimeout  = 10 * time.Second
)

var errNotConnected = errors.New("not connected")

// Client maintains one websocket connection to the sync server. On
// connect it joins its room; on any read or dial failure it backs off
// exponentially and reconnects, rejoining so the server replays the
// current stroke log into a fresh board state. Emission is
// fire-and-forget: a send on a dead connection is dropped, the rejoin
// resynchronizes.
type Client struct {
	url    string
	token  string
	roomID string
	board  *Board

	mu   sync.Mutex
	conn *websocket.Conn
}

// NewClient prepares a client for the given websocket URL and room.
// token may be empty; the server then treats the connection as a guest.
func NewClient(url, token, roomID string, board *Board) *Client {
	return &Client{url: url, token: token, roomID: roomID, board: board}
}

// Run connects and serves events until ctx is cancelled, reconnecting
// on failure. It only returns the ctx error.
func (c *Client) Run(ctx context.Context) error {
	backoff := reconnectMin
	for {
		if err := c.connect(ctx); err != nil {
			log.Printf("[Client] connect failed: %v (retrying in %s)", err, backoff)
		} else {
			backoff = reconnectMin
			c.readLoop(ctx)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > reconnectMax {
			backoff = reconnectMax
		}
	}
}

func (c *Client) connect(ctx context.Context) error {
	dialCtx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()

	header := http.Header{}
	if c.token != "" {
		header.Set("Authorization", "Bearer "+c.token)
	}

	conn, resp, err := websocket.DefaultDialer.DialContext(dialCtx, c.url, header)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()

	return c.send(protocol.NewEnvelope(protocol.EventJoinRoom, protocol.RoomRef{RoomID: c.roomID}))
}

func (c *Client) readLoop(ctx context.Context) {
	defer c.closeConn()

	for {
		c.mu.Lock()
		conn := c.conn
		c.mu.Unlock()
		if conn == nil {
			return
		}

		_, raw, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() == nil {
				log.Printf("[Client] connection lost: %v", err)
			}
			return
		}

		var env protocol.Envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			log.Printf("[Client] malformed frame: %v", err)
			continue
		}
		c.handle(env)
	}
}

func (c *Client) handle(env protocol.Envelope) {
	switch env.Event {
	case protocol.EventWhiteboardLoaded:
		var p protocol.WhiteboardLoaded
		if err := json.Unmarshal(env.Data, &p); err != nil {
			log.Printf("[Client] bad %s payload: %v", env.Event, err)
			return
		}
		c.board.ApplyLoaded(p)

	case protocol.EventStrokeDrawn:
		var s model.Stroke
		if err := json.Unmarshal(env.Data, &s); err != nil {
			log.Printf("[Client] bad %s payload: %v", env.Event, err)
			return
		}
		c.board.ApplyStrokeDrawn(s)

	case protocol.EventWhiteboardCleared:
		c.board.ApplyCleared()

	case protocol.EventStrokeUndone:
		var p protocol.StrokeUndone
		if err := json.Unmarshal(env.Data, &p); err != nil {
			log.Printf("[Client] bad %s payload: %v", env.Event, err)
			return
		}
		c.board.ApplyUndone(p.StrokeID)

	case protocol.EventUserJoined:
		var p protocol.UserJoined
		if err := json.Unmarshal(env.Data, &p); err == nil {
			log.Printf("[Client] user joined: %s", p.UserID)
		}

	case protocol.EventWhiteboardDeleted:
		log.Printf("[Client] whiteboard %s was deleted", c.roomID)
		c.closeConn()

	case protocol.EventError:
		var p protocol.ErrorPayload
		if err := json.Unmarshal(env.Data, &p); err == nil {
			log.Printf("[Client] server error: %s", p.Message)
		}
	}
}

// SendStroke emits a committed stroke. Implements StrokeSender.
func (c *Client) SendStroke(s model.Stroke) {
	payload := protocol.DrawStroke{Stroke: s, RoomID: c.roomID}
	if err := c.send(protocol.NewEnvelope(protocol.EventDrawStroke, payload)); err != nil {
		log.Printf("[Client] stroke send dropped: %v", err)
	}
}

// Undo requests removal of the room's newest stroke.
func (c *Client) Undo() {
	if err := c.send(protocol.NewEnvelope(protocol.EventUndoStroke, protocol.RoomRef{RoomID: c.roomID})); err != nil {
		log.Printf("[Client] undo send dropped: %v", err)
	}
}

// Clear requests emptying the room's stroke log.
func (c *Client) Clear() {
	if err := c.send(protocol.NewEnvelope(protocol.EventClearWhiteboard, protocol.RoomRef{RoomID: c.roomID})); err != nil {
		log.Printf("[Client] clear send dropped: %v", err)
	}
}

// Leave announces departure. The server also handles abrupt closes, so
// this is best effort.
func (c *Client) Leave() {
	_ = c.send(protocol.NewEnvelope(protocol.EventLeaveRoom, protocol.RoomRef{RoomID: c.roomID}))
}

func (c *Client) send(env protocol.Envelope) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return errNotConnected
	}
	return c.conn.WriteJSON(env)
}

func (c *Client) closeConn() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
}
