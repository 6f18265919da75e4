// Package sqlite provides a SQLite implementation of the storage.Store interface.
//
// SQLite is a lightweight, file-based database suitable for local use and
// small-scale deployments. Tag lists and connection lists are stored as JSON
// strings in TEXT fields; room member counts are derived with a LEFT JOIN.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/reverielab/reverie-go/pkg/storage"
)

// Client implements storage.Store using SQLite as the backend.
type Client struct {
	// db is the SQLite database connection.
	db *sql.DB
}

// Config contains configuration for creating a SQLite store.
type Config struct {
	// DBPath is the path to the SQLite database file.
	DBPath string
}

// NewClient creates a new SQLite store client.
//
// Parameters:
//   - cfg: Configuration containing the database path
//
// Returns:
//   - *Client: The SQLite client instance
//   - error: Error if database connection or table creation fails
func NewClient(cfg *Config) (*Client, error) {
	// Create parent directory if it doesn't exist
	dbDir := filepath.Dir(cfg.DBPath)
	if dbDir != "" && dbDir != "." {
		if err := os.MkdirAll(dbDir, 0755); err != nil {
			return nil, fmt.Errorf("NewSQLiteClient: failed to create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", cfg.DBPath+"?_foreign_keys=1&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("NewSQLiteClient: %w", err)
	}

	// Test connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("NewSQLiteClient: %w", err)
	}

	client := &Client{db: db}

	if err := client.initTables(context.Background()); err != nil {
		return nil, err
	}

	return client, nil
}

// initTables initializes the database table structure.
func (c *Client) initTables(ctx context.Context) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS memories (
			id INTEGER PRIMARY KEY,
			content TEXT NOT NULL,
			summary TEXT NOT NULL DEFAULT '',
			kind TEXT NOT NULL,
			tags TEXT NOT NULL DEFAULT '[]',
			connections TEXT NOT NULL DEFAULT '[]',
			room_id INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS rooms (
			id INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			icon TEXT NOT NULL DEFAULT '',
			color TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_memories_room ON memories(room_id)`,
		`CREATE INDEX IF NOT EXISTS idx_memories_created ON memories(created_at)`,
	}

	for _, query := range queries {
		if _, err := c.db.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("initTables: %w", err)
		}
	}
	return nil
}

// InsertMemory inserts a memory into the SQLite database.
func (c *Client) InsertMemory(ctx context.Context, memory *storage.Memory) error {
	tagsJSON, connectionsJSON, err := encodeLists(memory.Tags, memory.Connections)
	if err != nil {
		return fmt.Errorf("InsertMemory: %w", err)
	}

	_, err = c.db.ExecContext(ctx, `
		INSERT INTO memories (id, content, summary, kind, tags, connections, room_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		memory.ID,
		memory.Content,
		memory.Summary,
		memory.Kind,
		tagsJSON,
		connectionsJSON,
		memory.RoomID,
		memory.CreatedAt,
		memory.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("InsertMemory: %w", err)
	}
	return nil
}

// GetMemory retrieves a memory by ID.
func (c *Client) GetMemory(ctx context.Context, id int64) (*storage.Memory, error) {
	row := c.db.QueryRowContext(ctx, `
		SELECT id, content, summary, kind, tags, connections, room_id, created_at, updated_at
		FROM memories
		WHERE id = ?
	`, id)

	memory, err := scanMemory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("GetMemory: %w", err)
	}
	return memory, nil
}

// UpdateMemory overwrites the mutable fields of an existing memory.
func (c *Client) UpdateMemory(ctx context.Context, memory *storage.Memory) error {
	tagsJSON, connectionsJSON, err := encodeLists(memory.Tags, memory.Connections)
	if err != nil {
		return fmt.Errorf("UpdateMemory: %w", err)
	}

	result, err := c.db.ExecContext(ctx, `
		UPDATE memories
		SET summary = ?, tags = ?, connections = ?, room_id = ?, updated_at = ?
		WHERE id = ?
	`,
		memory.Summary,
		tagsJSON,
		connectionsJSON,
		memory.RoomID,
		time.Now(),
		memory.ID,
	)
	if err != nil {
		return fmt.Errorf("UpdateMemory: %w", err)
	}
	return requireRows(result, "UpdateMemory")
}

// DeleteMemory deletes a memory by ID.
func (c *Client) DeleteMemory(ctx context.Context, id int64) error {
	result, err := c.db.ExecContext(ctx, `DELETE FROM memories WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("DeleteMemory: %w", err)
	}
	return requireRows(result, "DeleteMemory")
}

// ListMemories returns all memories, newest first.
func (c *Client) ListMemories(ctx context.Context) ([]*storage.Memory, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT id, content, summary, kind, tags, connections, room_id, created_at, updated_at
		FROM memories
		ORDER BY created_at DESC, id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("ListMemories: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var memories []*storage.Memory
	for rows.Next() {
		memory, err := scanMemory(rows)
		if err != nil {
			return nil, fmt.Errorf("ListMemories: %w", err)
		}
		memories = append(memories, memory)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListMemories: %w", err)
	}
	return memories, nil
}

// InsertRoom inserts a room into the SQLite database.
func (c *Client) InsertRoom(ctx context.Context, room *storage.Room) error {
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO rooms (id, name, icon, color, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, room.ID, room.Name, room.Icon, room.Color, room.CreatedAt)
	if err != nil {
		return fmt.Errorf("InsertRoom: %w", err)
	}
	return nil
}

// GetRoom retrieves a room by ID with its member count populated.
func (c *Client) GetRoom(ctx context.Context, id int64) (*storage.Room, error) {
	row := c.db.QueryRowContext(ctx, `
		SELECT r.id, r.name, r.icon, r.color, r.created_at, COUNT(m.id)
		FROM rooms r
		LEFT JOIN memories m ON m.room_id = r.id
		WHERE r.id = ?
		GROUP BY r.id
	`, id)

	room, err := scanRoom(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("GetRoom: %w", err)
	}
	return room, nil
}

// ListRooms returns all rooms with member counts populated, oldest first.
func (c *Client) ListRooms(ctx context.Context) ([]*storage.Room, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT r.id, r.name, r.icon, r.color, r.created_at, COUNT(m.id)
		FROM rooms r
		LEFT JOIN memories m ON m.room_id = r.id
		GROUP BY r.id
		ORDER BY r.created_at ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("ListRooms: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var rooms []*storage.Room
	for rows.Next() {
		room, err := scanRoom(rows)
		if err != nil {
			return nil, fmt.Errorf("ListRooms: %w", err)
		}
		rooms = append(rooms, room)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListRooms: %w", err)
	}
	return rooms, nil
}

// DeleteRoom deletes a room by ID. Memories referencing the room keep their
// room_id; readers treat the dangling reference as roomless.
func (c *Client) DeleteRoom(ctx context.Context, id int64) error {
	result, err := c.db.ExecContext(ctx, `DELETE FROM rooms WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("DeleteRoom: %w", err)
	}
	return requireRows(result, "DeleteRoom")
}

// Close closes the database connection.
func (c *Client) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// requireRows converts a zero-row write into storage.ErrNotFound.
func requireRows(result sql.Result, op string) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if rowsAffected == 0 {
		return storage.ErrNotFound
	}
	return nil
}
