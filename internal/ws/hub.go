package ws

import (
	"log"
	"sync"

	"github.com/Parth482/Collaborative-Whiteboard/internal/presence"
	"github.com/Parth482/Collaborative-Whiteboard/internal/protocol"
	"github.com/Parth482/Collaborative-Whiteboard/internal/ratelimit"
	"github.com/Parth482/Collaborative-Whiteboard/internal/registry"
)

const (
	messagesPerSecond = 100
	messageBurst      = 200
)

// Store is the durable room-metadata collaborator. Calls to it never
// block the broadcast path.
type Store interface {
	TouchRoom(id string) error
}

// An inbound client event awaiting dispatch
type event struct {
	client *Client
	env    protocol.Envelope
}

// A fired cursor-expiry signal
type expiry struct {
	connID string
	roomID string
}

// Hub is the broadcast router. All room and presence mutations are driven
// from the single Run goroutine, so event handlers execute to completion
// without interleaving.
type Hub struct {
	rooms   *registry.Registry
	cursors *presence.Tracker
	store   Store

	// Live connections by connection ID
	clients map[string]*Client

	// Register requests from clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	// Inbound events from clients
	events chan *event

	// Fired cursor-expiry timers
	expiries chan expiry

	limiters *ratelimit.ClientLimiters

	mu sync.RWMutex
}

func NewHub(rooms *registry.Registry, cursors *presence.Tracker, store Store) *Hub {
	h := &Hub{
		rooms:      rooms,
		cursors:    cursors,
		store:      store,
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		events:     make(chan *event),
		expiries:   make(chan expiry, 256),
		limiters:   ratelimit.NewClientLimiters(messagesPerSecond, messageBurst),
	}
	cursors.SetExpireHandler(h.enqueueExpiry)
	return h
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.addClient(client)

		case client := <-h.unregister:
			h.removeClient(client)

		case ev := <-h.events:
			h.handleEvent(ev.client, ev.env)

		case ex := <-h.expiries:
			h.broadcastEvent(ex.roomID, protocol.EventRemoveCursor, ex.connID, nil)
		}
	}
}

// Runs on the timer goroutine; hands the fired signal to the Run loop.
// The send blocks when the buffer is full so a fired expiry is never
// dropped; the tracker holds no locks at this point.
func (h *Hub) enqueueExpiry(connID, roomID string) {
	h.expiries <- expiry{connID: connID, roomID: roomID}
}

func (h *Hub) addClient(c *Client) {
	h.mu.Lock()
	h.clients[c.id] = c
	h.mu.Unlock()

	h.cursors.OnConnect(c.id)
	h.sendEvent(c, protocol.EventYourID, c.id)

	log.Printf("🔌 Client connected: %s", c.id)
}

func (h *Hub) removeClient(c *Client) {
	h.mu.Lock()
	if h.clients[c.id] != c {
		h.mu.Unlock()
		return
	}
	delete(h.clients, c.id)
	h.mu.Unlock()

	close(c.send)
	h.limiters.Remove(c.id)

	roomID := h.cursors.OnDisconnect(c.id)
	if roomID != "" {
		h.rooms.RemoveMember(roomID, c.id)
		h.broadcastEvent(roomID, protocol.EventRemoveCursor, c.id, nil)
		h.broadcastEvent(roomID, protocol.EventUserCount, h.rooms.MemberCount(roomID), nil)
	}

	log.Printf("❌ Client disconnected: %s", c.id)
}

func (h *Hub) handleEvent(c *Client, env protocol.Envelope) {
	switch env.Type {
	case protocol.EventJoinRoom:
		h.handleJoin(c, env.RoomID)
	case protocol.EventDrawing:
		h.handleDrawing(c, env)
	case protocol.EventUndo:
		h.handleUndo(env.RoomID)
	case protocol.EventRedo:
		h.handleRedo(env.RoomID)
	case protocol.EventClear:
		h.handleClear(env.RoomID)
	case protocol.EventCursorMove:
		h.handleCursorMove(c, env)
	}
}

func (h *Hub) handleJoin(c *Client, roomID string) {
	if roomID == "" {
		return
	}

	// A connection belongs to one room at a time; leaving the previous
	// room keeps its member count honest.
	if prev := h.cursors.Room(c.id); prev != "" && prev != roomID {
		h.rooms.RemoveMember(prev, c.id)
		h.broadcastEvent(prev, protocol.EventUserCount, h.rooms.MemberCount(prev), nil)
	}

	room := h.rooms.GetOrCreate(roomID)
	h.rooms.AddMember(roomID, c.id)
	h.cursors.OnJoin(c.id, roomID)
	h.rooms.Touch(roomID)

	h.sendEvent(c, protocol.EventSyncCanvas, room.Log.Snapshot())
	h.broadcastEvent(roomID, protocol.EventUserCount, h.rooms.MemberCount(roomID), nil)

	if h.store != nil {
		go func() {
			if err := h.store.TouchRoom(roomID); err != nil {
				log.Printf("Failed to touch room %s in store: %v", roomID, err)
			}
		}()
	}

	log.Printf("Client %s joined room %s (total: %d)", c.id, roomID, h.rooms.MemberCount(roomID))
}

func (h *Hub) handleDrawing(c *Client, env protocol.Envelope) {
	room := h.rooms.Get(env.RoomID)
	if room == nil {
		return
	}

	stroke, err := protocol.ParseStroke(env)
	if err != nil {
		log.Printf("⚠️ Invalid stroke from client %s: %v", c.id, err)
		return
	}
	if !stroke.Valid() {
		return
	}

	room.Log.Append(stroke)
	h.rooms.Touch(env.RoomID)
	h.broadcastEvent(env.RoomID, protocol.EventDrawing, stroke, c)
}

// Undo resyncs the whole room: the popped stroke may not be the most
// recently rendered segment on every client when drawing interleaves, so
// a full snapshot is the only delta-free way to converge.
func (h *Hub) handleUndo(roomID string) {
	room := h.rooms.Get(roomID)
	if room == nil {
		return
	}
	if _, ok := room.Log.Undo(); !ok {
		return
	}
	h.rooms.Touch(roomID)
	h.broadcastEvent(roomID, protocol.EventSyncCanvas, room.Log.Snapshot(), nil)
}

// Redo only ever re-adds the stroke most recently removed by undo, so it
// is safe to apply incrementally.
func (h *Hub) handleRedo(roomID string) {
	room := h.rooms.Get(roomID)
	if room == nil {
		return
	}
	stroke, ok := room.Log.Redo()
	if !ok {
		return
	}
	h.rooms.Touch(roomID)
	h.broadcastEvent(roomID, protocol.EventDrawing, stroke, nil)
}

func (h *Hub) handleClear(roomID string) {
	room := h.rooms.Get(roomID)
	if room == nil {
		return
	}
	room.Log.Clear()
	h.rooms.Touch(roomID)
	h.broadcastEvent(roomID, protocol.EventSyncCanvas, room.Log.Snapshot(), nil)
}

func (h *Hub) handleCursorMove(c *Client, env protocol.Envelope) {
	pos, err := protocol.ParsePoint(env)
	if err != nil {
		return
	}

	update, ok := h.cursors.OnCursorMove(c.id, pos)
	if !ok {
		// Cursor event before join completed; nothing to attribute it to
		return
	}

	h.rooms.Touch(env.RoomID)
	h.broadcastEvent(env.RoomID, protocol.EventCursorMove, protocol.CursorPayload{
		UserID:   update.ConnID,
		Position: update.Position,
		Color:    update.Color,
	}, nil)
}

// Fan-out helpers

func (h *Hub) sendEvent(c *Client, t protocol.EventType, payload interface{}) {
	data, err := protocol.Encode(t, payload)
	if err != nil {
		log.Printf("Error encoding %s event: %v", t, err)
		return
	}
	h.send(c, data)
}

func (h *Hub) broadcastEvent(roomID string, t protocol.EventType, payload interface{}, except *Client) {
	data, err := protocol.Encode(t, payload)
	if err != nil {
		log.Printf("Error encoding %s event: %v", t, err)
		return
	}

	for _, connID := range h.rooms.Members(roomID) {
		h.mu.RLock()
		member := h.clients[connID]
		h.mu.RUnlock()

		if member == nil || member == except {
			continue
		}
		h.send(member, data)
	}
}

func (h *Hub) send(c *Client, data []byte) {
	h.mu.RLock()
	registered := h.clients[c.id] == c
	h.mu.RUnlock()
	if !registered {
		return
	}

	select {
	case c.send <- data:
	default:
		// Slow client; drop it rather than stall the coordinator
		h.removeClient(c)
	}
}

// Stats accessors for the REST layer

func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) GetRoomCount() int {
	return h.rooms.RoomCount()
}

func (h *Hub) GetActiveRooms() map[string]int {
	return h.rooms.ActiveRooms()
}
