// Package core provides the main Reverie client and memory management functionality.
package core

import "time"

// MemoryKind identifies how a memory was captured.
type MemoryKind string

const (
	// KindVoice marks a memory transcribed from a voice recording.
	KindVoice MemoryKind = "voice"

	// KindText marks a memory typed by the user.
	KindText MemoryKind = "text"

	// KindConversation marks a memory distilled from a conversation.
	KindConversation MemoryKind = "conversation"
)

// Memory represents a single captured thought.
//
// A memory is immutable after creation except through explicit update:
// Content and Kind are fixed, while summary, tags, connections, and room
// assignment can change (bumping UpdatedAt).
//
// Example:
//
//	memory := &core.Memory{
//	    ID:      1234567890,
//	    Content: "Had an idea for the garden: raised beds along the fence",
//	    Kind:    core.KindVoice,
//	    Tags:    []string{"garden", "ideas"},
//	}
type Memory struct {
	// ID is the unique identifier of the memory, assigned at creation and
	// stable for the record's lifetime.
	ID int64 `json:"id"`

	// Content is the original captured text (transcribed or typed).
	// Non-empty and immutable after creation.
	Content string `json:"content"`

	// Summary is an optional short description, AI-derived or heuristic.
	// Empty if classification was skipped or degraded.
	Summary string `json:"summary,omitempty"`

	// Kind identifies how the memory was captured. Fixed at creation.
	Kind MemoryKind `json:"kind"`

	// Tags are lowercase short phrases describing the content.
	// Case-normalized and deduplicated within one classification; may be empty.
	Tags []string `json:"tags,omitempty"`

	// Connections are IDs of other memories this one has been linked to.
	// Set semantics (no duplicate targets); grows monotonically via explicit
	// linking, never auto-pruned.
	Connections []int64 `json:"connections,omitempty"`

	// RoomID is the containing room, 0 when the memory is roomless.
	// A RoomID referencing a deleted room is tolerated: the memory is simply
	// treated as roomless for display purposes.
	RoomID int64 `json:"room_id,omitempty"`

	// CreatedAt is when the memory was captured. Fixed at creation.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is when the memory was last modified.
	UpdatedAt time.Time `json:"updated_at"`
}

// Room represents a user-defined category grouping memories.
type Room struct {
	// ID is the unique identifier of the room.
	ID int64 `json:"id"`

	// Name is the user-facing room name.
	Name string `json:"name"`

	// Icon is a display token for the room.
	Icon string `json:"icon,omitempty"`

	// Color is a display token for the room.
	Color string `json:"color,omitempty"`

	// MemoryCount is the number of memories referencing the room,
	// denormalized by the store on read.
	MemoryCount int `json:"memory_count"`

	// CreatedAt is when the room was created.
	CreatedAt time.Time `json:"created_at"`
}
