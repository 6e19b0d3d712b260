package db

import (
	"database/sql"
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/Parth482/Collaborative-Whiteboard/internal/board"
)

// Database is the durable room-metadata store. It holds room identity and
// an optional best-effort stroke snapshot; it is never read to rebuild
// in-memory history after a restart, so a cold-started coordinator has
// empty rooms even when records still exist here.
type Database struct {
	db *sql.DB
}

type Room struct {
	ID           string    `json:"roomId"`
	CreatedAt    time.Time `json:"created_at"`
	LastActivity time.Time `json:"last_activity"`
}

func New(dbPath string) (*Database, error) {
	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, err
	}

	if err := createTables(db); err != nil {
		return nil, err
	}

	log.Printf("Database initialized at %s", dbPath)
	return &Database{db: db}, nil
}

func createTables(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS rooms (
		id TEXT PRIMARY KEY,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		last_activity DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS room_snapshots (
		room_id TEXT PRIMARY KEY,
		strokes TEXT NOT NULL,
		stroke_count INTEGER DEFAULT 0,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (room_id) REFERENCES rooms(id) ON DELETE CASCADE
	);
	`

	_, err := db.Exec(schema)
	return err
}

func (d *Database) Close() error {
	return d.db.Close()
}

// Room operations

func (d *Database) CreateRoom(id string) error {
	_, err := d.db.Exec(
		"INSERT OR IGNORE INTO rooms (id) VALUES (?)",
		id,
	)
	return err
}

func (d *Database) GetRoom(id string) (*Room, error) {
	row := d.db.QueryRow(
		"SELECT id, created_at, last_activity FROM rooms WHERE id = ?",
		id,
	)

	var room Room
	err := row.Scan(&room.ID, &room.CreatedAt, &room.LastActivity)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &room, nil
}

func (d *Database) RoomExists(id string) (bool, error) {
	var count int
	err := d.db.QueryRow("SELECT COUNT(*) FROM rooms WHERE id = ?", id).Scan(&count)
	return count > 0, err
}

func (d *Database) TouchRoom(id string) error {
	_, err := d.db.Exec(
		"UPDATE rooms SET last_activity = CURRENT_TIMESTAMP WHERE id = ?",
		id,
	)
	return err
}

func (d *Database) DeleteRoom(id string) error {
	_, err := d.db.Exec("DELETE FROM rooms WHERE id = ?", id)
	return err
}

// Snapshot operations

// SaveSnapshot persists a point-in-time copy of a room's stroke history.
// Best-effort: callers on the broadcast path fire this asynchronously and
// only log failures.
func (d *Database) SaveSnapshot(roomID string, strokes []board.Stroke) error {
	// Ensure room exists
	if err := d.CreateRoom(roomID); err != nil {
		return err
	}

	data, err := json.Marshal(strokes)
	if err != nil {
		return err
	}

	_, err = d.db.Exec(`
		INSERT INTO room_snapshots (room_id, strokes, stroke_count, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(room_id) DO UPDATE SET
			strokes = excluded.strokes,
			stroke_count = excluded.stroke_count,
			updated_at = CURRENT_TIMESTAMP
	`, roomID, string(data), len(strokes))
	if err != nil {
		return err
	}

	return d.TouchRoom(roomID)
}

func (d *Database) GetSnapshot(roomID string) ([]board.Stroke, error) {
	var data string
	err := d.db.QueryRow(
		"SELECT strokes FROM room_snapshots WHERE room_id = ?",
		roomID,
	).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var strokes []board.Stroke
	if err := json.Unmarshal([]byte(data), &strokes); err != nil {
		return nil, err
	}
	return strokes, nil
}

// Stats

func (d *Database) GetStats() (map[string]interface{}, error) {
	stats := make(map[string]interface{})

	var roomCount int
	if err := d.db.QueryRow("SELECT COUNT(*) FROM rooms").Scan(&roomCount); err != nil {
		return nil, err
	}
	stats["room_count"] = roomCount

	var snapshotCount int
	if err := d.db.QueryRow("SELECT COUNT(*) FROM room_snapshots").Scan(&snapshotCount); err != nil {
		return nil, err
	}
	stats["snapshot_count"] = snapshotCount

	return stats, nil
}
