package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Parth482/Collaborative-Whiteboard/internal/db"
	"github.com/Parth482/Collaborative-Whiteboard/internal/presence"
	"github.com/Parth482/Collaborative-Whiteboard/internal/registry"
	"github.com/Parth482/Collaborative-Whiteboard/internal/ws"
)

func setupTestAPI(t *testing.T) (*API, *db.Database, func()) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "whiteboard-api-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}

	dbPath := filepath.Join(tmpDir, "test.db")
	database, err := db.New(dbPath)
	if err != nil {
		os.RemoveAll(tmpDir)
		t.Fatalf("Failed to create database: %v", err)
	}

	hub := ws.NewHub(registry.New(), presence.NewTracker(5*time.Second), database)
	go hub.Run()

	api := New(hub, database)

	cleanup := func() {
		database.Close()
		os.RemoveAll(tmpDir)
	}

	return api, database, cleanup
}

func TestHealthHandler(t *testing.T) {
	api, _, cleanup := setupTestAPI(t)
	defer cleanup()

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()

	api.HealthHandler(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	var response map[string]any
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if response["status"] != "ok" {
		t.Errorf("Expected status 'ok', got '%v'", response["status"])
	}
}

func TestStatsHandler(t *testing.T) {
	api, _, cleanup := setupTestAPI(t)
	defer cleanup()

	req := httptest.NewRequest("GET", "/api/stats", nil)
	w := httptest.NewRecorder()

	api.StatsHandler(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	var response map[string]any
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if _, ok := response["active_rooms"]; !ok {
		t.Error("Response should contain 'active_rooms'")
	}
	if _, ok := response["active_clients"]; !ok {
		t.Error("Response should contain 'active_clients'")
	}
}

func TestJoinRoom(t *testing.T) {
	api, _, cleanup := setupTestAPI(t)
	defer cleanup()

	tests := []struct {
		name           string
		body           map[string]string
		expectedStatus int
	}{
		{
			name:           "Valid 6 character code",
			body:           map[string]string{"roomId": "abc123"},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Valid 8 character code",
			body:           map[string]string{"roomId": "abcd1234"},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Too short",
			body:           map[string]string{"roomId": "abc12"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Too long",
			body:           map[string]string{"roomId": "abcd12345"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Missing code",
			body:           map[string]string{},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, _ := json.Marshal(tt.body)
			req := httptest.NewRequest("POST", "/api/rooms/join", bytes.NewReader(body))
			w := httptest.NewRecorder()

			api.RoomsRouter(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}
		})
	}
}

func TestJoinExistingRoomTouches(t *testing.T) {
	api, database, cleanup := setupTestAPI(t)
	defer cleanup()

	database.CreateRoom("abc123")

	body, _ := json.Marshal(map[string]string{"roomId": "abc123"})
	req := httptest.NewRequest("POST", "/api/rooms/join", bytes.NewReader(body))
	w := httptest.NewRecorder()

	api.RoomsRouter(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var room RoomResponse
	if err := json.NewDecoder(w.Body).Decode(&room); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if room.ID != "abc123" {
		t.Errorf("Expected abc123, got %q", room.ID)
	}
}

func TestGetRoom(t *testing.T) {
	api, database, cleanup := setupTestAPI(t)
	defer cleanup()

	database.CreateRoom("abc123")

	req := httptest.NewRequest("GET", "/api/rooms/abc123", nil)
	w := httptest.NewRecorder()
	api.RoomsRouter(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var room RoomResponse
	if err := json.NewDecoder(w.Body).Decode(&room); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if room.ID != "abc123" {
		t.Errorf("Expected abc123, got %q", room.ID)
	}
}

func TestGetMissingRoom(t *testing.T) {
	api, _, cleanup := setupTestAPI(t)
	defer cleanup()

	req := httptest.NewRequest("GET", "/api/rooms/nope99", nil)
	w := httptest.NewRecorder()
	api.RoomsRouter(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
}

func TestSaveAndClearDrawing(t *testing.T) {
	api, database, cleanup := setupTestAPI(t)
	defer cleanup()

	database.CreateRoom("abc123")

	body := []byte(`{"drawingData":[{"points":[{"x":0,"y":0},{"x":1,"y":1}],"color":"red","lineWidth":2}]}`)
	req := httptest.NewRequest("POST", "/api/rooms/abc123/drawing", bytes.NewReader(body))
	w := httptest.NewRecorder()
	api.RoomsRouter(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	strokes, err := database.GetSnapshot("abc123")
	if err != nil {
		t.Fatalf("GetSnapshot failed: %v", err)
	}
	if len(strokes) != 1 {
		t.Fatalf("Expected 1 stroke persisted, got %d", len(strokes))
	}

	req = httptest.NewRequest("POST", "/api/rooms/abc123/clear", nil)
	w = httptest.NewRecorder()
	api.RoomsRouter(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	strokes, _ = database.GetSnapshot("abc123")
	if len(strokes) != 0 {
		t.Errorf("Expected cleared snapshot, got %d strokes", len(strokes))
	}
}

func TestSaveDrawingMissingRoom(t *testing.T) {
	api, _, cleanup := setupTestAPI(t)
	defer cleanup()

	body := []byte(`{"drawingData":[]}`)
	req := httptest.NewRequest("POST", "/api/rooms/nope99/drawing", bytes.NewReader(body))
	w := httptest.NewRecorder()
	api.RoomsRouter(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
}

func TestRoomsRouterMethodChecks(t *testing.T) {
	api, database, cleanup := setupTestAPI(t)
	defer cleanup()

	database.CreateRoom("abc123")

	// GET on the join route is not allowed
	req := httptest.NewRequest("GET", "/api/rooms/join", nil)
	w := httptest.NewRecorder()
	api.RoomsRouter(w, req)
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected 405 for GET join, got %d", w.Code)
	}

	// POST on a room fetch is not allowed
	req = httptest.NewRequest("POST", "/api/rooms/abc123", nil)
	w = httptest.NewRecorder()
	api.RoomsRouter(w, req)
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected 405 for POST room, got %d", w.Code)
	}
}
