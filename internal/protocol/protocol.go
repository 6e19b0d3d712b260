package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/Parth482/Collaborative-Whiteboard/internal/board"
)

// Represents the type of a whiteboard event
type EventType string

// Inbound events (client → coordinator)
const (
	EventJoinRoom   EventType = "joinRoom"
	EventDrawing    EventType = "drawing"
	EventUndo       EventType = "undo"
	EventRedo       EventType = "redo"
	EventClear      EventType = "clearCanvas"
	EventCursorMove EventType = "cursorMove"
)

// Outbound events (coordinator → client)
const (
	EventYourID       EventType = "yourId"
	EventSyncCanvas   EventType = "syncCanvas"
	EventUserCount    EventType = "userCount"
	EventRemoveCursor EventType = "removeCursor"
)

// The wire frame for every event in both directions
type Envelope struct {
	Type    EventType       `json:"type"`
	RoomID  string          `json:"roomId,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Cursor broadcast payload. Clients key presence indicators by userId,
// never by color.
type CursorPayload struct {
	UserID   string      `json:"userId"`
	Position board.Point `json:"position"`
	Color    string      `json:"color"`
}

// Decodes an inbound frame, rejecting anything that is not a known
// client event
func Decode(data []byte) (Envelope, error) {
	if len(data) == 0 {
		return Envelope{}, fmt.Errorf("empty message")
	}

	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Envelope{}, fmt.Errorf("malformed event: %w", err)
	}

	switch env.Type {
	case EventJoinRoom, EventDrawing, EventUndo, EventRedo, EventClear, EventCursorMove:
		return env, nil
	default:
		return Envelope{}, fmt.Errorf("unknown event type: %q", env.Type)
	}
}

// Extracts the stroke from a drawing event
func ParseStroke(env Envelope) (board.Stroke, error) {
	var s board.Stroke
	if err := json.Unmarshal(env.Payload, &s); err != nil {
		return board.Stroke{}, fmt.Errorf("malformed stroke: %w", err)
	}
	return s, nil
}

// Extracts the cursor position from a cursorMove event
func ParsePoint(env Envelope) (board.Point, error) {
	var p board.Point
	if err := json.Unmarshal(env.Payload, &p); err != nil {
		return board.Point{}, fmt.Errorf("malformed position: %w", err)
	}
	return p, nil
}

// Encodes an outbound frame
func Encode(t EventType, payload interface{}) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Type: t, Payload: raw})
}
