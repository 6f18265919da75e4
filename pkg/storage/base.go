// Package storage provides interfaces and types for memory persistence backends.
//
// It defines the Store interface that all storage implementations must satisfy,
// along with the persisted record types. The core treats a Store as an external
// collaborator: classification and insight selection operate on read-only
// snapshots loaded from it, never on live store handles.
package storage

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// Memory represents a captured thought persisted in the store.
//
// This type is defined in the storage package to avoid circular dependencies
// with the core package. It mirrors the core.Memory structure.
type Memory struct {
	// ID is the unique identifier of the memory.
	ID int64

	// Content is the original captured text.
	Content string

	// Summary is the optional short description (may be empty).
	Summary string

	// Kind identifies how the memory was captured (voice, text, conversation).
	Kind string

	// Tags are lowercase short phrases describing the content.
	Tags []string

	// Connections are IDs of other memories this one has been linked to.
	// Set semantics: no duplicate targets, order preserved for display.
	Connections []int64

	// RoomID is the containing room, 0 when the memory is roomless.
	// Deleting a room leaves this dangling; readers treat dangling room
	// references as roomless.
	RoomID int64

	// CreatedAt is when the memory was captured.
	CreatedAt time.Time

	// UpdatedAt is when the memory was last modified.
	UpdatedAt time.Time
}

// Room represents a user-defined category persisted in the store.
type Room struct {
	// ID is the unique identifier of the room.
	ID int64

	// Name is the user-facing room name.
	Name string

	// Icon is a display token for the room.
	Icon string

	// Color is a display token for the room.
	Color string

	// MemoryCount is the number of memories referencing the room.
	// Denormalized by the store on read; never written by callers.
	MemoryCount int

	// CreatedAt is when the room was created.
	CreatedAt time.Time
}

// Store defines the interface for persistence backends.
//
// All storage implementations (SQLite, PostgreSQL, MySQL) must implement
// this interface. A Room may exist with zero memories; deleting a Room must
// not delete or modify Memories that reference it.
type Store interface {
	// InsertMemory persists a new memory record.
	InsertMemory(ctx context.Context, memory *Memory) error

	// GetMemory retrieves a memory by ID.
	// Returns ErrNotFound when no such record exists.
	GetMemory(ctx context.Context, id int64) (*Memory, error)

	// UpdateMemory overwrites the mutable fields of an existing memory
	// (summary, tags, connections, room assignment) and bumps UpdatedAt.
	// Content and CreatedAt are immutable after creation.
	// Returns ErrNotFound when no such record exists.
	UpdateMemory(ctx context.Context, memory *Memory) error

	// DeleteMemory removes a memory by ID.
	// Returns ErrNotFound when no such record exists.
	DeleteMemory(ctx context.Context, id int64) error

	// ListMemories returns all memories, newest first.
	ListMemories(ctx context.Context) ([]*Memory, error)

	// InsertRoom persists a new room record.
	InsertRoom(ctx context.Context, room *Room) error

	// GetRoom retrieves a room by ID with its member count populated.
	// Returns ErrNotFound when no such record exists.
	GetRoom(ctx context.Context, id int64) (*Room, error)

	// ListRooms returns all rooms with member counts populated, oldest first.
	ListRooms(ctx context.Context) ([]*Room, error)

	// DeleteRoom removes a room by ID. Memories referencing the room are
	// left untouched; their RoomID becomes a dangling reference.
	// Returns ErrNotFound when no such record exists.
	DeleteRoom(ctx context.Context, id int64) error

	// Close closes the store and releases resources.
	Close() error
}
