// Package mysql provides a MySQL implementation of the storage.Store interface.
//
// Tag lists and connection lists are stored in JSON columns; room member
// counts are derived with a LEFT JOIN.
package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/reverielab/reverie-go/pkg/storage"
)

// Client implements storage.Store using MySQL as the backend.
type Client struct {
	db *sql.DB
}

// Config contains MySQL configuration.
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
}

// NewClient creates a new MySQL store client.
func NewClient(cfg *Config) (*Client, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.DBName)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("NewMySQLClient: %w", err)
	}

	// Test connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("NewMySQLClient: %w", err)
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
			id BIGINT PRIMARY KEY,
			content TEXT NOT NULL,
			summary TEXT NOT NULL,
			kind VARCHAR(32) NOT NULL,
			tags JSON NOT NULL,
			connections JSON NOT NULL,
			room_id BIGINT NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL,
			INDEX idx_memories_room (room_id),
			INDEX idx_memories_created (created_at)
		)`,
		`CREATE TABLE IF NOT EXISTS rooms (
			id BIGINT PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			icon VARCHAR(64) NOT NULL DEFAULT '',
			color VARCHAR(64) NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL
		)`,
	}

	for _, query := range queries {
		if _, err := c.db.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("initTables: %w", err)
		}
	}
	return nil
}

// InsertMemory inserts a memory into the MySQL database.
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

// InsertRoom inserts a room into the MySQL database.
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

// rowScanner abstracts *sql.Row and *sql.Rows for shared scanning.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// encodeLists marshals tag and connection lists to their JSON column form.
func encodeLists(tags []string, connections []int64) ([]byte, []byte, error) {
	if tags == nil {
		tags = []string{}
	}
	if connections == nil {
		connections = []int64{}
	}

	tagsJSON, err := json.Marshal(tags)
	if err != nil {
		return nil, nil, err
	}
	connectionsJSON, err := json.Marshal(connections)
	if err != nil {
		return nil, nil, err
	}
	return tagsJSON, connectionsJSON, nil
}

// scanMemory scans one memory row, decoding the JSON list columns.
func scanMemory(row rowScanner) (*storage.Memory, error) {
	var (
		memory          storage.Memory
		tagsJSON        []byte
		connectionsJSON []byte
	)

	err := row.Scan(
		&memory.ID,
		&memory.Content,
		&memory.Summary,
		&memory.Kind,
		&tagsJSON,
		&connectionsJSON,
		&memory.RoomID,
		&memory.CreatedAt,
		&memory.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(tagsJSON, &memory.Tags); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(connectionsJSON, &memory.Connections); err != nil {
		return nil, err
	}
	return &memory, nil
}

// scanRoom scans one room row including the joined member count.
func scanRoom(row rowScanner) (*storage.Room, error) {
	var room storage.Room

	err := row.Scan(
		&room.ID,
		&room.Name,
		&room.Icon,
		&room.Color,
		&room.CreatedAt,
		&room.MemoryCount,
	)
	if err != nil {
		return nil, err
	}
	return &room, nil
}
