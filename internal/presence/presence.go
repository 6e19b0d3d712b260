package presence

import (
	"math/rand"
	"sync"
	"time"

	"github.com/Parth482/Collaborative-Whiteboard/internal/board"
)

// Cursor colors cycle through a fixed palette, so a color is not a unique
// identifier across connections.
var palette = []string{"black", "red", "blue", "green", "orange", "purple", "teal", "brown"}

// Broadcast payload produced by a cursor move
type CursorUpdate struct {
	ConnID   string
	Position board.Point
	Color    string
}

type entry struct {
	color    string
	roomID   string
	position board.Point
	hasPos   bool
	timer    *time.Timer
	gen      uint64
}

// Tracker owns the ephemeral per-connection state: assigned color, current
// room and last cursor position, plus the single-shot expiry timer that
// marks a cursor stale when no move arrives within the TTL.
type Tracker struct {
	entries  map[string]*entry
	ttl      time.Duration
	onExpire func(connID, roomID string)
	mu       sync.Mutex
}

func NewTracker(ttl time.Duration) *Tracker {
	return &Tracker{
		entries: make(map[string]*entry),
		ttl:     ttl,
	}
}

// Registers the callback invoked when a cursor-expiry timer fires. The
// callback runs on the timer goroutine, outside the tracker's lock.
func (t *Tracker) SetExpireHandler(fn func(connID, roomID string)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onExpire = fn
}

// Assigns a palette color to a new connection and records its presence
// entry. The color is stable for the connection's lifetime.
func (t *Tracker) OnConnect(connID string) string {
	t.mu.Lock()
	defer t.mu.Unlock()

	color := palette[rand.Intn(len(palette))]
	t.entries[connID] = &entry{color: color}
	return color
}

// Records the room binding for the connection, overwriting any prior one.
// A connection belongs to at most one room at a time.
func (t *Tracker) OnJoin(connID, roomID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.entries[connID]
	if !ok {
		e = &entry{color: palette[rand.Intn(len(palette))]}
		t.entries[connID] = e
	}
	e.roomID = roomID
}

// Updates the cursor position and rearms the expiry timer, cancelling any
// pending one first so the stale signal fires ttl after the last move, not
// the first. Returns false if the connection has no presence entry.
func (t *Tracker) OnCursorMove(connID string, pos board.Point) (CursorUpdate, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.entries[connID]
	if !ok || e.roomID == "" {
		// No entry, or the move raced ahead of the join; nothing to
		// attribute it to yet
		return CursorUpdate{}, false
	}

	e.position = pos
	e.hasPos = true

	if e.timer != nil {
		e.timer.Stop()
	}
	// The generation token is fixed before the timer exists, so the
	// callback never races the arming goroutine.
	e.gen++
	gen := e.gen
	e.timer = time.AfterFunc(t.ttl, func() {
		t.expire(connID, gen)
	})

	return CursorUpdate{ConnID: connID, Position: pos, Color: e.color}, true
}

// Runs when a timer reaches its deadline. A timer that was replaced while
// waiting on the lock carries a stale generation and is ignored, so a
// stale fire can never clobber a later cursor state.
func (t *Tracker) expire(connID string, gen uint64) {
	t.mu.Lock()
	e, ok := t.entries[connID]
	if !ok || e.gen != gen {
		t.mu.Unlock()
		return
	}
	e.timer = nil
	roomID := e.roomID
	fn := t.onExpire
	t.mu.Unlock()

	if fn != nil {
		fn(connID, roomID)
	}
}

// Cancels any pending timer, removes the presence entry and returns the
// room the connection was in, or "" if it never joined one.
func (t *Tracker) OnDisconnect(connID string) string {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.entries[connID]
	if !ok {
		return ""
	}
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
	delete(t.entries, connID)
	return e.roomID
}

// Drops every presence entry bound to the room, cancelling their timers.
// Called when the sweeper evicts a room.
func (t *Tracker) RemoveRoom(roomID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for connID, e := range t.entries {
		if e.roomID != roomID {
			continue
		}
		if e.timer != nil {
			e.timer.Stop()
			e.timer = nil
		}
		delete(t.entries, connID)
	}
}

// Assigned color for the connection, "" if unknown
func (t *Tracker) Color(connID string) string {
	t.mu.Lock()
	defer t.mu.Unlock()
	if e, ok := t.entries[connID]; ok {
		return e.color
	}
	return ""
}

// Current room binding for the connection, "" if none
func (t *Tracker) Room(connID string) string {
	t.mu.Lock()
	defer t.mu.Unlock()
	if e, ok := t.entries[connID]; ok {
		return e.roomID
	}
	return ""
}
