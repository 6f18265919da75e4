// Package insight selects a small, varied batch of noteworthy highlights
// ("insights") from a snapshot of captured memories and rooms.
//
// It contains:
//   - A registry of eight generators, each producing at most one insight
//     per invocation. Six are pure functions over the snapshot; two are
//     model-assisted and consume an llm.Provider.
//   - A selection engine that shuffles the registry, invokes generators
//     sequentially until a target count is reached, isolates per-generator
//     failures, and guarantees a non-empty result.
package insight

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

// Memory is a read-only snapshot of one captured thought.
//
// This type is defined in the insight package to avoid circular dependencies
// with the core package. It mirrors the core.Memory structure. The engine
// never mutates a Memory and never retains one past a single selection call.
type Memory struct {
	// ID is the unique identifier of the memory.
	ID int64

	// Content is the original captured text.
	Content string

	// Summary is the optional short description (may be empty).
	Summary string

	// Kind identifies how the memory was captured.
	Kind MemoryKind

	// Tags are lowercase short phrases describing the content.
	Tags []string

	// Connections are IDs of other memories this one has been linked to.
	Connections []int64

	// RoomID is the containing room, 0 when the memory is roomless.
	// A RoomID referencing a deleted room is tolerated and treated as roomless.
	RoomID int64

	// CreatedAt is when the memory was captured.
	CreatedAt time.Time

	// UpdatedAt is when the memory was last modified.
	UpdatedAt time.Time
}

// Room is a read-only snapshot of one user-defined category.
type Room struct {
	// ID is the unique identifier of the room.
	ID int64

	// Name is the user-facing room name.
	Name string

	// Icon is a display token for the room.
	Icon string

	// Color is a display token for the room.
	Color string

	// MemoryCount is the denormalized number of memories in the room,
	// maintained by the store.
	MemoryCount int

	// CreatedAt is when the room was created.
	CreatedAt time.Time
}

// Kind identifies the type of an insight.
type Kind string

const (
	// KindWelcome greets a user with no memories yet.
	KindWelcome Kind = "welcome"

	// KindOnThisDay resurfaces a memory captured on today's calendar day.
	KindOnThisDay Kind = "on_this_day"

	// KindForgottenGem resurfaces one of the oldest memories.
	KindForgottenGem Kind = "forgotten_gem"

	// KindPattern reports a tag recurring across recent memories.
	KindPattern Kind = "pattern"

	// KindNudge points at the most neglected room.
	KindNudge Kind = "nudge"

	// KindMashup pairs two unrelated memories.
	KindMashup Kind = "mashup"

	// KindQuestion asks a reflective question about a recent theme.
	KindQuestion Kind = "question"

	// KindConnection is a model-found link between two memories.
	KindConnection Kind = "connection"

	// KindIdeaSpark is a model-generated creative idea from recent themes.
	KindIdeaSpark Kind = "idea_spark"

	// KindEncouragement is the deterministic fallback when no generator
	// produced anything.
	KindEncouragement Kind = "encouragement"
)

// Insight is one ephemeral highlight produced by a generator.
//
// Insights are created fresh on every selection call and are not persisted:
// re-running selection on identical input produces new IDs for what may be
// semantically identical insights.
type Insight struct {
	// ID is a fresh identifier for this occurrence.
	ID string `json:"id"`

	// Kind identifies which generator produced the insight.
	Kind Kind `json:"kind"`

	// Title is the short display heading.
	Title string `json:"title"`

	// Body is the display text.
	Body string `json:"body"`

	// RelatedMemoryIDs are the memories the insight references. Every entry
	// corresponds to a memory present in the snapshot the engine was given.
	RelatedMemoryIDs []int64 `json:"related_memory_ids,omitempty"`

	// Icon is the kind-specific display icon token.
	Icon string `json:"icon"`

	// Gradient is the kind-specific two-color gradient token pair.
	Gradient [2]string `json:"gradient"`
}
