package sqlite

import (
	"encoding/json"
	"time"

	"github.com/reverielab/reverie-go/pkg/storage"
)

// rowScanner abstracts *sql.Row and *sql.Rows for shared scanning.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// encodeLists marshals tag and connection lists to their JSON column form.
func encodeLists(tags []string, connections []int64) (string, string, error) {
	if tags == nil {
		tags = []string{}
	}
	if connections == nil {
		connections = []int64{}
	}

	tagsJSON, err := json.Marshal(tags)
	if err != nil {
		return "", "", err
	}
	connectionsJSON, err := json.Marshal(connections)
	if err != nil {
		return "", "", err
	}
	return string(tagsJSON), string(connectionsJSON), nil
}

// scanMemory scans one memory row, decoding the JSON list columns.
func scanMemory(row rowScanner) (*storage.Memory, error) {
	var (
		memory          storage.Memory
		tagsJSON        string
		connectionsJSON string
		createdAt       time.Time
		updatedAt       time.Time
	)

	err := row.Scan(
		&memory.ID,
		&memory.Content,
		&memory.Summary,
		&memory.Kind,
		&tagsJSON,
		&connectionsJSON,
		&memory.RoomID,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(tagsJSON), &memory.Tags); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(connectionsJSON), &memory.Connections); err != nil {
		return nil, err
	}

	memory.CreatedAt = createdAt
	memory.UpdatedAt = updatedAt
	return &memory, nil
}

// scanRoom scans one room row including the joined member count.
func scanRoom(row rowScanner) (*storage.Room, error) {
	var (
		room      storage.Room
		createdAt time.Time
	)

	err := row.Scan(
		&room.ID,
		&room.Name,
		&room.Icon,
		&room.Color,
		&createdAt,
		&room.MemoryCount,
	)
	if err != nil {
		return nil, err
	}

	room.CreatedAt = createdAt
	return &room, nil
}
