package core

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/reverielab/reverie-go/pkg/classify"
	"github.com/reverielab/reverie-go/pkg/insight"
	"github.com/reverielab/reverie-go/pkg/llm"
	openaiLLM "github.com/reverielab/reverie-go/pkg/llm/openai"
	"github.com/reverielab/reverie-go/pkg/storage"
	mysqlStore "github.com/reverielab/reverie-go/pkg/storage/mysql"
	postgresStore "github.com/reverielab/reverie-go/pkg/storage/postgres"
	sqliteStore "github.com/reverielab/reverie-go/pkg/storage/sqlite"
)

// Client is the main Reverie client for personal knowledge capture.
//
// It provides a complete interface for capturing, organizing, and
// resurfacing thoughts with support for:
//   - AI-assisted classification (tags, summary, room suggestion) with a
//     deterministic heuristic fallback
//   - User-defined rooms for grouping memories
//   - Explicit memory-to-memory linking
//   - A home feed of generated insights
//
// The client is thread-safe and can be used concurrently from multiple
// goroutines.
//
// Example usage:
//
//	config, _ := core.LoadConfigFromEnv()
//	client, _ := core.NewClient(config)
//	defer client.Close()
//
//	memory, _ := client.Capture(ctx, "Saw a heron by the canal this morning",
//	    core.WithKind(core.KindVoice),
//	)
//	insights, _ := client.Home(ctx)
type Client struct {
	// config contains the client configuration.
	config *Config

	// store is the persistence backend for memories and rooms.
	store storage.Store

	// llm is the LLM provider for AI-assisted features.
	llm llm.Provider

	// classifier derives tags, summaries, and room suggestions.
	classifier *classify.Classifier

	// engine selects insights for the home feed.
	engine *insight.Engine

	// snowflakeNode generates unique IDs for memories and rooms.
	snowflakeNode *snowflake.Node

	// mu protects concurrent access to the client.
	mu sync.Mutex
}

// NewClient creates a new Reverie client.
//
// The client is initialized with:
//   - Store (SQLite, PostgreSQL, or MySQL)
//   - LLM provider (OpenAI or compatible); an empty API key leaves AI
//     features disabled rather than failing
//
// Parameters:
//   - cfg: Configuration containing store and LLM settings
//
// Returns a new Client instance, or an error if initialization fails.
func NewClient(cfg *Config) (*Client, error) {
	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// Initialize storage
	store, err := initStorage(cfg.Store)
	if err != nil {
		return nil, err
	}

	// Initialize LLM
	llmProvider, err := initLLM(cfg.LLM)
	if err != nil {
		return nil, err
	}

	client, err := NewClientWithBackends(store, llmProvider)
	if err != nil {
		return nil, err
	}
	client.config = cfg
	return client, nil
}

// NewClientWithBackends creates a client around explicit collaborators.
//
// This is the injection point for tests and for callers that manage their
// own store or provider lifecycle. Pass a nil provider to disable AI
// features.
func NewClientWithBackends(store storage.Store, provider llm.Provider) (*Client, error) {
	node, err := snowflake.NewNode(1)
	if err != nil {
		return nil, NewCoreError("NewClient", err)
	}

	return &Client{
		store:         store,
		llm:           provider,
		classifier:    classify.NewClassifier(provider),
		engine:        insight.NewEngine(provider),
		snowflakeNode: node,
	}, nil
}

// initStorage creates the persistence backend from configuration.
func initStorage(cfg StoreConfig) (storage.Store, error) {
	switch cfg.Provider {
	case "sqlite":
		return sqliteStore.NewClient(&sqliteStore.Config{
			DBPath: configString(cfg.Config, "db_path", "./reverie.db"),
		})
	case "postgres":
		return postgresStore.NewClient(&postgresStore.Config{
			Host:     configString(cfg.Config, "host", "localhost"),
			Port:     configInt(cfg.Config, "port", 5432),
			User:     configString(cfg.Config, "user", "postgres"),
			Password: configString(cfg.Config, "password", ""),
			DBName:   configString(cfg.Config, "db_name", "reverie"),
			SSLMode:  configString(cfg.Config, "ssl_mode", "disable"),
		})
	case "mysql":
		return mysqlStore.NewClient(&mysqlStore.Config{
			Host:     configString(cfg.Config, "host", "127.0.0.1"),
			Port:     configInt(cfg.Config, "port", 3306),
			User:     configString(cfg.Config, "user", "root"),
			Password: configString(cfg.Config, "password", ""),
			DBName:   configString(cfg.Config, "db_name", "reverie"),
		})
	default:
		return nil, fmt.Errorf("%w: unknown store provider %q", ErrInvalidConfig, cfg.Provider)
	}
}

// initLLM creates the LLM provider from configuration.
func initLLM(cfg LLMConfig) (llm.Provider, error) {
	switch cfg.Provider {
	case "", "openai":
		return openaiLLM.NewClient(&openaiLLM.Config{
			APIKey:  cfg.APIKey,
			Model:   cfg.Model,
			BaseURL: cfg.BaseURL,
		})
	default:
		return nil, fmt.Errorf("%w: unknown llm provider %q", ErrInvalidConfig, cfg.Provider)
	}
}

// Capture classifies and stores one captured thought.
//
// The method:
//  1. Classifies the content (tags, summary, room suggestion), degrading
//     silently to the heuristic path on any AI failure
//  2. Applies explicit options (kind, room assignment) over the
//     classification result
//  3. Persists the new memory
//
// Classification never blocks a capture: the only error conditions are
// empty content and a failed store write.
//
// Parameters:
//   - ctx: Context for cancellation
//   - content: Captured text, must be non-empty
//   - opts: Optional parameters (kind, explicit room, skip classification)
//
// Returns the created Memory, or an error if the operation fails.
//
// Example:
//
//	memory, err := client.Capture(ctx, "Book that pottery class",
//	    core.WithKind(core.KindText),
//	)
func (c *Client) Capture(ctx context.Context, content string, opts ...CaptureOption) (*Memory, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if content == "" {
		return nil, NewCoreError("Capture", ErrInvalidInput)
	}

	captureOpts := applyCaptureOptions(opts)

	now := time.Now()
	memory := &Memory{
		ID:        c.snowflakeNode.Generate().Int64(),
		Content:   content,
		Kind:      captureOpts.Kind,
		RoomID:    captureOpts.RoomID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if !captureOpts.SkipClassification {
		rooms, err := c.loadRooms(ctx)
		if err != nil {
			return nil, NewCoreError("Capture", err)
		}

		result, err := c.classifier.Classify(ctx, content, roomsToClassify(rooms))
		if err == nil {
			memory.Tags = result.Tags
			memory.Summary = result.Summary
			if memory.RoomID == 0 {
				memory.RoomID = result.SuggestedRoomID
			}
		}
	}

	if err := c.store.InsertMemory(ctx, memoryToStorage(memory)); err != nil {
		return nil, NewCoreError("Capture", err)
	}
	return memory, nil
}

// Classify derives tags, a summary, and a room suggestion for content
// without storing anything.
//
// Room suggestions are resolved against the current room collection.
// The only error condition is empty content.
func (c *Client) Classify(ctx context.Context, content string) (*classify.Result, error) {
	rooms, err := c.loadRooms(ctx)
	if err != nil {
		return nil, NewCoreError("Classify", err)
	}

	result, err := c.classifier.Classify(ctx, content, roomsToClassify(rooms))
	if err != nil {
		return nil, NewCoreError("Classify", ErrInvalidInput)
	}
	return result, nil
}

// GetMemory retrieves a memory by ID.
func (c *Client) GetMemory(ctx context.Context, id int64) (*Memory, error) {
	record, err := c.store.GetMemory(ctx, id)
	if err != nil {
		return nil, NewCoreError("GetMemory", normalizeStoreErr(err))
	}
	return memoryFromStorage(record), nil
}

// GetAllMemories returns all memories, newest first.
func (c *Client) GetAllMemories(ctx context.Context) ([]*Memory, error) {
	records, err := c.store.ListMemories(ctx)
	if err != nil {
		return nil, NewCoreError("GetAllMemories", err)
	}

	memories := make([]*Memory, 0, len(records))
	for _, record := range records {
		memories = append(memories, memoryFromStorage(record))
	}
	return memories, nil
}

// UpdateMemory changes the mutable fields of a memory (summary, tags, room
// assignment). Content and kind are immutable after creation.
//
// Parameters:
//   - ctx: Context for cancellation
//   - id: Memory to update
//   - opts: Fields to change; unset fields keep their current value
//
// Returns the updated Memory, or an error if the memory does not exist or
// the write fails.
func (c *Client) UpdateMemory(ctx context.Context, id int64, opts ...UpdateOption) (*Memory, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	record, err := c.store.GetMemory(ctx, id)
	if err != nil {
		return nil, NewCoreError("UpdateMemory", normalizeStoreErr(err))
	}

	updateOpts := applyUpdateOptions(opts)
	if updateOpts.Summary != nil {
		record.Summary = *updateOpts.Summary
	}
	if updateOpts.Tags != nil {
		record.Tags = *updateOpts.Tags
	}
	if updateOpts.RoomID != nil {
		record.RoomID = *updateOpts.RoomID
	}

	if err := c.store.UpdateMemory(ctx, record); err != nil {
		return nil, NewCoreError("UpdateMemory", normalizeStoreErr(err))
	}

	updated, err := c.store.GetMemory(ctx, id)
	if err != nil {
		return nil, NewCoreError("UpdateMemory", normalizeStoreErr(err))
	}
	return memoryFromStorage(updated), nil
}

// DeleteMemory removes a memory by ID.
func (c *Client) DeleteMemory(ctx context.Context, id int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.store.DeleteMemory(ctx, id); err != nil {
		return NewCoreError("DeleteMemory", normalizeStoreErr(err))
	}
	return nil
}

// LinkMemories records a discovered connection between two memories.
//
// The link is bidirectional and set-semantic: each memory's connection list
// gains the other's ID at most once, and existing connections are never
// removed. Linking a memory to itself is rejected.
func (c *Client) LinkMemories(ctx context.Context, id, targetID int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if id == targetID {
		return NewCoreError("LinkMemories", ErrInvalidInput)
	}

	first, err := c.store.GetMemory(ctx, id)
	if err != nil {
		return NewCoreError("LinkMemories", normalizeStoreErr(err))
	}
	second, err := c.store.GetMemory(ctx, targetID)
	if err != nil {
		return NewCoreError("LinkMemories", normalizeStoreErr(err))
	}

	if appended, changed := appendConnection(first.Connections, targetID); changed {
		first.Connections = appended
		if err := c.store.UpdateMemory(ctx, first); err != nil {
			return NewCoreError("LinkMemories", normalizeStoreErr(err))
		}
	}
	if appended, changed := appendConnection(second.Connections, id); changed {
		second.Connections = appended
		if err := c.store.UpdateMemory(ctx, second); err != nil {
			return NewCoreError("LinkMemories", normalizeStoreErr(err))
		}
	}
	return nil
}

// normalizeStoreErr maps backend sentinel errors to the core equivalents.
func normalizeStoreErr(err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

// appendConnection adds a target to a connection list unless already present.
func appendConnection(connections []int64, target int64) ([]int64, bool) {
	for _, existing := range connections {
		if existing == target {
			return connections, false
		}
	}
	return append(connections, target), true
}

// CreateRoom creates a new room.
//
// Parameters:
//   - ctx: Context for cancellation
//   - name: User-facing room name, must be non-empty
//   - icon: Display icon token (may be empty)
//   - color: Display color token (may be empty)
//
// Returns the created Room.
func (c *Client) CreateRoom(ctx context.Context, name, icon, color string) (*Room, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if name == "" {
		return nil, NewCoreError("CreateRoom", ErrInvalidInput)
	}

	room := &Room{
		ID:        c.snowflakeNode.Generate().Int64(),
		Name:      name,
		Icon:      icon,
		Color:     color,
		CreatedAt: time.Now(),
	}

	if err := c.store.InsertRoom(ctx, roomToStorage(room)); err != nil {
		return nil, NewCoreError("CreateRoom", err)
	}
	return room, nil
}

// GetRoom retrieves a room by ID with its member count populated.
func (c *Client) GetRoom(ctx context.Context, id int64) (*Room, error) {
	record, err := c.store.GetRoom(ctx, id)
	if err != nil {
		return nil, NewCoreError("GetRoom", normalizeStoreErr(err))
	}
	return roomFromStorage(record), nil
}

// GetAllRooms returns all rooms with member counts populated.
func (c *Client) GetAllRooms(ctx context.Context) ([]*Room, error) {
	rooms, err := c.loadRooms(ctx)
	if err != nil {
		return nil, NewCoreError("GetAllRooms", err)
	}
	return rooms, nil
}

// DeleteRoom removes a room by ID.
//
// Memories referencing the room are neither deleted nor modified: their
// room reference dangles and they are treated as roomless for display.
func (c *Client) DeleteRoom(ctx context.Context, id int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.store.DeleteRoom(ctx, id); err != nil {
		return NewCoreError("DeleteRoom", normalizeStoreErr(err))
	}
	return nil
}

// Home produces the insight batch for one home visit.
//
// A snapshot of all memories and rooms is loaded and handed to the
// selection engine. The returned batch is never empty: an empty collection
// yields a welcome insight, and a cycle where every generator skipped
// yields an encouragement insight.
//
// Parameters:
//   - ctx: Context passed through to model-assisted generators
//   - opts: Optional target count
//
// Returns the selected insights, or an error if loading the snapshot fails.
//
// Example:
//
//	insights, err := client.Home(ctx, core.WithCount(3))
func (c *Client) Home(ctx context.Context, opts ...HomeOption) ([]*insight.Insight, error) {
	memories, err := c.GetAllMemories(ctx)
	if err != nil {
		return nil, NewCoreError("Home", err)
	}
	rooms, err := c.loadRooms(ctx)
	if err != nil {
		return nil, NewCoreError("Home", err)
	}

	homeOpts := applyHomeOptions(opts)

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.engine.Select(ctx, memoriesToInsight(memories), roomsToInsight(rooms), homeOpts.Count), nil
}

// SelectInsights runs the selection engine over an explicit snapshot.
//
// This is the snapshot-based entry point for callers that manage their own
// collections; Home is the store-backed convenience wrapper around it.
func (c *Client) SelectInsights(ctx context.Context, memories []*Memory, rooms []*Room, count int) []*insight.Insight {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.engine.Select(ctx, memoriesToInsight(memories), roomsToInsight(rooms), count)
}

// loadRooms loads all rooms from the store as core types.
func (c *Client) loadRooms(ctx context.Context) ([]*Room, error) {
	records, err := c.store.ListRooms(ctx)
	if err != nil {
		return nil, err
	}

	rooms := make([]*Room, 0, len(records))
	for _, record := range records {
		rooms = append(rooms, roomFromStorage(record))
	}
	return rooms, nil
}

// Close closes the client and releases resources.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var firstErr error
	if c.store != nil {
		if err := c.store.Close(); err != nil {
			firstErr = err
		}
	}
	if c.llm != nil {
		if err := c.llm.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return NewCoreError("Close", firstErr)
}
