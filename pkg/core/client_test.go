package core_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reverielab/reverie-go/pkg/core"
	"github.com/reverielab/reverie-go/pkg/insight"
	sqliteStore "github.com/reverielab/reverie-go/pkg/storage/sqlite"
)

// newTestClient builds a client over a throwaway SQLite store with AI
// features disabled.
func newTestClient(t *testing.T) *core.Client {
	t.Helper()

	store, err := sqliteStore.NewClient(&sqliteStore.Config{
		DBPath: filepath.Join(t.TempDir(), "reverie_test.db"),
	})
	require.NoError(t, err)

	client, err := core.NewClientWithBackends(store, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestCaptureAndGet(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	memory, err := client.Capture(ctx, "I love hiking near the lake on weekends")
	require.NoError(t, err)
	require.NotNil(t, memory)

	assert.NotZero(t, memory.ID)
	assert.Equal(t, core.KindText, memory.Kind)
	assert.Contains(t, memory.Tags, "hiking")
	assert.Equal(t, "I love hiking near the lake on weekends", memory.Summary)
	assert.False(t, memory.CreatedAt.IsZero())

	loaded, err := client.GetMemory(ctx, memory.ID)
	require.NoError(t, err)
	assert.Equal(t, memory.Content, loaded.Content)
	assert.Equal(t, memory.Tags, loaded.Tags)
}

func TestCaptureEmptyContent(t *testing.T) {
	client := newTestClient(t)

	_, err := client.Capture(context.Background(), "")
	assert.ErrorIs(t, err, core.ErrInvalidInput)
}

func TestCaptureWithOptions(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	room, err := client.CreateRoom(ctx, "Garden", "leaf", "#4caf50")
	require.NoError(t, err)

	memory, err := client.Capture(ctx, "Raised beds along the fence",
		core.WithKind(core.KindVoice),
		core.WithRoom(room.ID),
	)
	require.NoError(t, err)

	assert.Equal(t, core.KindVoice, memory.Kind)
	assert.Equal(t, room.ID, memory.RoomID)
}

func TestCaptureWithoutClassification(t *testing.T) {
	client := newTestClient(t)

	memory, err := client.Capture(context.Background(), "unprocessed raw capture",
		core.WithoutClassification(),
	)
	require.NoError(t, err)

	assert.Empty(t, memory.Tags)
	assert.Empty(t, memory.Summary)
}

func TestGetAllMemoriesNewestFirst(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	first, err := client.Capture(ctx, "first thought", core.WithoutClassification())
	require.NoError(t, err)
	second, err := client.Capture(ctx, "second thought", core.WithoutClassification())
	require.NoError(t, err)

	memories, err := client.GetAllMemories(ctx)
	require.NoError(t, err)
	require.Len(t, memories, 2)
	assert.Equal(t, second.ID, memories[0].ID)
	assert.Equal(t, first.ID, memories[1].ID)
}

func TestUpdateMemory(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	memory, err := client.Capture(ctx, "pottery class was great", core.WithoutClassification())
	require.NoError(t, err)

	updated, err := client.UpdateMemory(ctx, memory.ID,
		core.WithUpdatedSummary("First pottery class."),
		core.WithUpdatedTags([]string{"pottery", "hobbies"}),
	)
	require.NoError(t, err)

	assert.Equal(t, "First pottery class.", updated.Summary)
	assert.Equal(t, []string{"pottery", "hobbies"}, updated.Tags)
	// Content is immutable.
	assert.Equal(t, memory.Content, updated.Content)
}

func TestUpdateMemoryNotFound(t *testing.T) {
	client := newTestClient(t)

	_, err := client.UpdateMemory(context.Background(), 424242, core.WithUpdatedSummary("x"))
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestDeleteMemory(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	memory, err := client.Capture(ctx, "short lived", core.WithoutClassification())
	require.NoError(t, err)

	require.NoError(t, client.DeleteMemory(ctx, memory.ID))

	_, err = client.GetMemory(ctx, memory.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)

	assert.ErrorIs(t, client.DeleteMemory(ctx, memory.ID), core.ErrNotFound)
}

func TestLinkMemories(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	a, err := client.Capture(ctx, "sourdough starter notes", core.WithoutClassification())
	require.NoError(t, err)
	b, err := client.Capture(ctx, "fermentation timing", core.WithoutClassification())
	require.NoError(t, err)

	require.NoError(t, client.LinkMemories(ctx, a.ID, b.ID))

	// Linking again is a no-op: the connection lists keep set semantics.
	require.NoError(t, client.LinkMemories(ctx, a.ID, b.ID))
	require.NoError(t, client.LinkMemories(ctx, b.ID, a.ID))

	loadedA, err := client.GetMemory(ctx, a.ID)
	require.NoError(t, err)
	loadedB, err := client.GetMemory(ctx, b.ID)
	require.NoError(t, err)

	assert.Equal(t, []int64{b.ID}, loadedA.Connections)
	assert.Equal(t, []int64{a.ID}, loadedB.Connections)
}

func TestLinkMemoriesRejectsSelfLink(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	memory, err := client.Capture(ctx, "lonely thought", core.WithoutClassification())
	require.NoError(t, err)

	assert.ErrorIs(t, client.LinkMemories(ctx, memory.ID, memory.ID), core.ErrInvalidInput)
}

func TestLinkMemoriesMissingTarget(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	memory, err := client.Capture(ctx, "real thought", core.WithoutClassification())
	require.NoError(t, err)

	assert.ErrorIs(t, client.LinkMemories(ctx, memory.ID, 999999), core.ErrNotFound)
}

func TestRoomLifecycle(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	_, err := client.CreateRoom(ctx, "", "icon", "color")
	assert.ErrorIs(t, err, core.ErrInvalidInput)

	room, err := client.CreateRoom(ctx, "Travel", "plane", "#2196f3")
	require.NoError(t, err)
	assert.NotZero(t, room.ID)

	loaded, err := client.GetRoom(ctx, room.ID)
	require.NoError(t, err)
	assert.Equal(t, "Travel", loaded.Name)
	assert.Zero(t, loaded.MemoryCount)

	_, err = client.Capture(ctx, "lisbon in october", core.WithRoom(room.ID), core.WithoutClassification())
	require.NoError(t, err)

	loaded, err = client.GetRoom(ctx, room.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, loaded.MemoryCount)

	rooms, err := client.GetAllRooms(ctx)
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	assert.Equal(t, 1, rooms[0].MemoryCount)
}

func TestDeleteRoomLeavesMemoriesRoomless(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	room, err := client.CreateRoom(ctx, "Temporary", "", "")
	require.NoError(t, err)

	memory, err := client.Capture(ctx, "thought in a doomed room",
		core.WithRoom(room.ID), core.WithoutClassification())
	require.NoError(t, err)

	require.NoError(t, client.DeleteRoom(ctx, room.ID))

	_, err = client.GetRoom(ctx, room.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)

	// The memory survives with its dangling room reference intact.
	loaded, err := client.GetMemory(ctx, memory.ID)
	require.NoError(t, err)
	assert.Equal(t, room.ID, loaded.RoomID)
}

func TestHomeEmptyCollection(t *testing.T) {
	client := newTestClient(t)

	insights, err := client.Home(context.Background())
	require.NoError(t, err)
	require.Len(t, insights, 1)
	assert.Equal(t, insight.KindWelcome, insights[0].Kind)
}

func TestHomeWithMemories(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	for _, content := range []string{
		"morning pages before coffee",
		"trail running with the new shoes",
		"sketching the harbor at dusk",
	} {
		_, err := client.Capture(ctx, content)
		require.NoError(t, err)
	}

	insights, err := client.Home(ctx, core.WithCount(3))
	require.NoError(t, err)

	require.NotEmpty(t, insights)
	assert.LessOrEqual(t, len(insights), 3)
	for _, item := range insights {
		assert.NotEmpty(t, item.ID)
		assert.NotEmpty(t, item.Title)
	}
}

func TestSelectInsightsExplicitSnapshot(t *testing.T) {
	client := newTestClient(t)

	insights := client.SelectInsights(context.Background(), nil, nil, 3)
	require.Len(t, insights, 1)
	assert.Equal(t, insight.KindWelcome, insights[0].Kind)
}

func TestClientClassify(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	result, err := client.Classify(ctx, "I love hiking near the lake on weekends")
	require.NoError(t, err)
	assert.Contains(t, result.Tags, "hiking")

	_, err = client.Classify(ctx, "  ")
	assert.ErrorIs(t, err, core.ErrInvalidInput)
}
