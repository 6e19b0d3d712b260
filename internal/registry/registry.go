package registry

import (
	"sync"
	"time"

	"github.com/Parth482/Collaborative-Whiteboard/internal/board"
)

// A live collaboration session: its stroke log, current members and
// last-activity timestamp
type Room struct {
	ID           string
	Log          *board.StrokeLog
	members      map[string]bool
	lastActivity time.Time
}

// Registry owns the process-wide map of live rooms. Rooms are created
// lazily on first join and only ever deleted by the eviction sweeper.
type Registry struct {
	rooms map[string]*Room
	mu    sync.RWMutex
}

func New() *Registry {
	return &Registry{
		rooms: make(map[string]*Room),
	}
}

// Returns the existing room or creates an empty one. Idempotent.
func (r *Registry) GetOrCreate(roomID string) *Room {
	r.mu.Lock()
	defer r.mu.Unlock()

	if room, ok := r.rooms[roomID]; ok {
		return room
	}

	room := &Room{
		ID:           roomID,
		Log:          board.NewStrokeLog(),
		members:      make(map[string]bool),
		lastActivity: time.Now(),
	}
	r.rooms[roomID] = room
	return room
}

// Returns the room or nil if it does not exist
func (r *Registry) Get(roomID string) *Room {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.rooms[roomID]
}

// Updates the room's last-activity timestamp. No-op for unknown rooms.
func (r *Registry) Touch(roomID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if room, ok := r.rooms[roomID]; ok {
		room.lastActivity = time.Now()
	}
}

// Adds a connection to the room's member set. No-op for unknown rooms.
func (r *Registry) AddMember(roomID, connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if room, ok := r.rooms[roomID]; ok {
		room.members[connID] = true
	}
}

// Removes a connection from the member set. An empty room is kept so it
// can be rejoined with its history intact; only the sweeper deletes.
func (r *Registry) RemoveMember(roomID, connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if room, ok := r.rooms[roomID]; ok {
		delete(room.members, connID)
	}
}

// Removes the room entirely. Used by the eviction sweeper.
func (r *Registry) Delete(roomID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rooms, roomID)
}

// Current member count, zero for unknown rooms
func (r *Registry) MemberCount(roomID string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if room, ok := r.rooms[roomID]; ok {
		return len(room.members)
	}
	return 0
}

// Returns a copy of the room's member connection IDs
func (r *Registry) Members(roomID string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	room, ok := r.rooms[roomID]
	if !ok {
		return nil
	}
	members := make([]string, 0, len(room.members))
	for connID := range room.members {
		members = append(members, connID)
	}
	return members
}

// Returns the IDs of rooms whose last activity is older than ttl
func (r *Registry) StaleRooms(ttl time.Duration) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cutoff := time.Now().Add(-ttl)
	var stale []string
	for id, room := range r.rooms {
		if room.lastActivity.Before(cutoff) {
			stale = append(stale, id)
		}
	}
	return stale
}

// Number of live rooms
func (r *Registry) RoomCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}

// Member counts per room, for the stats endpoint
func (r *Registry) ActiveRooms() map[string]int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	active := make(map[string]int, len(r.rooms))
	for id, room := range r.rooms {
		active[id] = len(room.members)
	}
	return active
}
