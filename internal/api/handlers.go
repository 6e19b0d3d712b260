package api

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/Parth482/Collaborative-Whiteboard/internal/board"
	"github.com/Parth482/Collaborative-Whiteboard/internal/db"
	"github.com/Parth482/Collaborative-Whiteboard/internal/ws"
)

type API struct {
	hub      *ws.Hub
	database *db.Database
}

func New(hub *ws.Hub, database *db.Database) *API {
	return &API{
		hub:      hub,
		database: database,
	}
}

func jsonResponse(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}

func errorResponse(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, map[string]string{"error": message})
}

func (a *API) HealthHandler(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, http.StatusOK, map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (a *API) StatsHandler(w http.ResponseWriter, r *http.Request) {
	stats := map[string]interface{}{
		"active_rooms":   a.hub.GetRoomCount(),
		"active_clients": a.hub.GetClientCount(),
		"timestamp":      time.Now().UTC().Format(time.RFC3339),
	}

	if a.database != nil {
		dbStats, err := a.database.GetStats()
		if err == nil {
			stats["total_rooms"] = dbStats["room_count"]
			stats["total_snapshots"] = dbStats["snapshot_count"]
		}
	}

	jsonResponse(w, http.StatusOK, stats)
}

// Room handlers

type JoinRoomRequest struct {
	RoomID string `json:"roomId"`
}

type RoomResponse struct {
	ID           string    `json:"roomId"`
	CreatedAt    time.Time `json:"created_at"`
	LastActivity time.Time `json:"last_activity"`
	ActiveUsers  int       `json:"active_users"`
}

type SaveDrawingRequest struct {
	DrawingData []board.Stroke `json:"drawingData"`
}

// JoinRoomHandler validates a room code and creates-or-touches its
// metadata record. Room codes are 6-8 characters; live joining happens
// over the websocket, this only establishes the durable record.
func (a *API) JoinRoomHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		errorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req JoinRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if len(req.RoomID) < 6 || len(req.RoomID) > 8 {
		errorResponse(w, http.StatusBadRequest, "Invalid room code")
		return
	}

	exists, err := a.database.RoomExists(req.RoomID)
	if err != nil {
		errorResponse(w, http.StatusInternalServerError, "Failed to look up room")
		return
	}

	if exists {
		if err := a.database.TouchRoom(req.RoomID); err != nil {
			errorResponse(w, http.StatusInternalServerError, "Failed to update room")
			return
		}
	} else if err := a.database.CreateRoom(req.RoomID); err != nil {
		errorResponse(w, http.StatusInternalServerError, "Failed to create room")
		return
	}

	room, err := a.database.GetRoom(req.RoomID)
	if err != nil || room == nil {
		errorResponse(w, http.StatusInternalServerError, "Failed to get room")
		return
	}

	jsonResponse(w, http.StatusOK, RoomResponse{
		ID:           room.ID,
		CreatedAt:    room.CreatedAt,
		LastActivity: room.LastActivity,
	})
}

func (a *API) GetRoomHandler(w http.ResponseWriter, r *http.Request, roomID string) {
	room, err := a.database.GetRoom(roomID)
	if err != nil {
		errorResponse(w, http.StatusInternalServerError, "Failed to get room")
		return
	}

	if room == nil {
		errorResponse(w, http.StatusNotFound, "Room not found")
		return
	}

	activeRooms := a.hub.GetActiveRooms()

	jsonResponse(w, http.StatusOK, RoomResponse{
		ID:           room.ID,
		CreatedAt:    room.CreatedAt,
		LastActivity: room.LastActivity,
		ActiveUsers:  activeRooms[roomID],
	})
}

// SaveDrawingHandler persists a client-supplied snapshot of the room's
// strokes. Best-effort: failure here never affects the live room.
func (a *API) SaveDrawingHandler(w http.ResponseWriter, r *http.Request, roomID string) {
	exists, err := a.database.RoomExists(roomID)
	if err != nil {
		errorResponse(w, http.StatusInternalServerError, "Failed to look up room")
		return
	}
	if !exists {
		errorResponse(w, http.StatusNotFound, "Room not found")
		return
	}

	var req SaveDrawingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := a.database.SaveSnapshot(roomID, req.DrawingData); err != nil {
		errorResponse(w, http.StatusInternalServerError, "Failed to save drawing")
		return
	}

	jsonResponse(w, http.StatusOK, map[string]string{"message": "Drawing saved"})
}

func (a *API) ClearDrawingHandler(w http.ResponseWriter, r *http.Request, roomID string) {
	exists, err := a.database.RoomExists(roomID)
	if err != nil {
		errorResponse(w, http.StatusInternalServerError, "Failed to look up room")
		return
	}
	if !exists {
		errorResponse(w, http.StatusNotFound, "Room not found")
		return
	}

	if err := a.database.SaveSnapshot(roomID, []board.Stroke{}); err != nil {
		errorResponse(w, http.StatusInternalServerError, "Failed to clear drawing")
		return
	}

	jsonResponse(w, http.StatusOK, map[string]string{"message": "Drawing cleared"})
}

func (a *API) RoomsRouter(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/rooms")
	path = strings.Trim(path, "/")

	// POST /api/rooms/join
	if path == "join" {
		a.JoinRoomHandler(w, r)
		return
	}

	if path == "" {
		errorResponse(w, http.StatusBadRequest, "Room ID is required")
		return
	}

	// /api/rooms/{id}/drawing and /api/rooms/{id}/clear
	if roomID, ok := strings.CutSuffix(path, "/drawing"); ok {
		if r.Method != http.MethodPost {
			errorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		a.SaveDrawingHandler(w, r, roomID)
		return
	}
	if roomID, ok := strings.CutSuffix(path, "/clear"); ok {
		if r.Method != http.MethodPost {
			errorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		a.ClearDrawingHandler(w, r, roomID)
		return
	}

	// GET /api/rooms/{id}
	if r.Method != http.MethodGet {
		errorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	a.GetRoomHandler(w, r, path)
}
