package insight

import (
	"context"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reverielab/reverie-go/pkg/llm"
)

var testNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func newSelection(memories []*Memory, rooms []*Room, seed int64) *selection {
	return &selection{
		memories: memories,
		rooms:    rooms,
		rng:      rand.New(rand.NewSource(seed)),
		now:      testNow,
	}
}

func taggedMemory(id int64, content string, createdAt time.Time, tags ...string) *Memory {
	return &Memory{
		ID:        id,
		Content:   content,
		Kind:      KindText,
		Tags:      tags,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
}

func TestGenerateOnThisDayRequiresRealAge(t *testing.T) {
	// A capture from earlier today shares the calendar date but is too
	// young to count as an anniversary.
	fresh := []*Memory{
		taggedMemory(1, "this morning's thought", testNow.Add(-2*time.Hour)),
	}
	res := generateOnThisDay(context.Background(), newSelection(fresh, nil, 1))
	assert.Equal(t, statusNotApplicable, res.status)

	aged := []*Memory{
		taggedMemory(2, "a year-old thought", time.Date(2023, 6, 15, 9, 0, 0, 0, time.UTC)),
	}
	res = generateOnThisDay(context.Background(), newSelection(aged, nil, 1))
	require.Equal(t, statusFound, res.status)
	assert.Equal(t, KindOnThisDay, res.insight.Kind)
	assert.Equal(t, []int64{int64(2)}, res.insight.RelatedMemoryIDs)
}

func TestGenerateOnThisDayIgnoresOtherDates(t *testing.T) {
	memories := []*Memory{
		taggedMemory(1, "wrong day", time.Date(2023, 6, 14, 9, 0, 0, 0, time.UTC)),
		taggedMemory(2, "wrong month", time.Date(2023, 7, 15, 9, 0, 0, 0, time.UTC)),
	}
	res := generateOnThisDay(context.Background(), newSelection(memories, nil, 1))
	assert.Equal(t, statusNotApplicable, res.status)
}

func TestGenerateOnThisDayLeapDay(t *testing.T) {
	leapMemory := []*Memory{
		taggedMemory(1, "leap day adventure", time.Date(2020, 2, 29, 9, 0, 0, 0, time.UTC)),
	}

	// Feb 29 memories surface only when the current date is itself Feb 29.
	sel := newSelection(leapMemory, nil, 1)
	sel.now = time.Date(2024, 2, 29, 12, 0, 0, 0, time.UTC)
	res := generateOnThisDay(context.Background(), sel)
	assert.Equal(t, statusFound, res.status)

	sel = newSelection(leapMemory, nil, 1)
	sel.now = time.Date(2023, 2, 28, 12, 0, 0, 0, time.UTC)
	res = generateOnThisDay(context.Background(), sel)
	assert.Equal(t, statusNotApplicable, res.status)
}

func TestGenerateForgottenGemPicksFromOldestThird(t *testing.T) {
	memories := []*Memory{
		taggedMemory(1, "oldest", testNow.Add(-300*24*time.Hour)),
		taggedMemory(2, "second oldest", testNow.Add(-200*24*time.Hour)),
		taggedMemory(3, "middle", testNow.Add(-100*24*time.Hour)),
		taggedMemory(4, "newer", testNow.Add(-50*24*time.Hour)),
		taggedMemory(5, "newest candidate", testNow.Add(-30*24*time.Hour)),
		taggedMemory(6, "almost fresh", testNow.Add(-20*24*time.Hour)),
	}

	// All six are older than 14 days; the pool is the two oldest.
	for seed := int64(0); seed < 30; seed++ {
		res := generateForgottenGem(context.Background(), newSelection(memories, nil, seed))
		require.Equal(t, statusFound, res.status)
		require.Len(t, res.insight.RelatedMemoryIDs, 1)
		assert.Contains(t, []int64{1, 2}, res.insight.RelatedMemoryIDs[0], "seed %d", seed)
	}
}

func TestGenerateForgottenGemSkips(t *testing.T) {
	// Fewer than 5 memories.
	few := []*Memory{
		taggedMemory(1, "a", testNow.Add(-400*24*time.Hour)),
		taggedMemory(2, "b", testNow.Add(-400*24*time.Hour)),
	}
	res := generateForgottenGem(context.Background(), newSelection(few, nil, 1))
	assert.Equal(t, statusNotApplicable, res.status)

	// Enough memories but none older than 14 days.
	var fresh []*Memory
	for i := int64(1); i <= 5; i++ {
		fresh = append(fresh, taggedMemory(i, "fresh", testNow.Add(-time.Duration(i)*24*time.Hour)))
	}
	res = generateForgottenGem(context.Background(), newSelection(fresh, nil, 1))
	assert.Equal(t, statusNotApplicable, res.status)
}

func TestGeneratePatternFindsRecurringTag(t *testing.T) {
	memories := []*Memory{
		taggedMemory(1, "pitch deck draft", testNow.Add(-1*time.Hour), "startup", "writing"),
		taggedMemory(2, "investor call notes", testNow.Add(-2*time.Hour), "startup"),
		taggedMemory(3, "landing page copy", testNow.Add(-3*time.Hour), "startup", "design"),
		taggedMemory(4, "grocery list", testNow.Add(-4*time.Hour), "errands"),
	}

	res := generatePattern(context.Background(), newSelection(memories, nil, 1))
	require.Equal(t, statusFound, res.status)
	assert.Contains(t, res.insight.Body, "startup")
	require.LessOrEqual(t, len(res.insight.RelatedMemoryIDs), 3)
	for _, id := range res.insight.RelatedMemoryIDs {
		assert.Contains(t, []int64{1, 2, 3}, id)
	}
}

func TestGeneratePatternSkipsWithoutRecurrence(t *testing.T) {
	memories := []*Memory{
		taggedMemory(1, "a", testNow.Add(-1*time.Hour), "alpha"),
		taggedMemory(2, "b", testNow.Add(-2*time.Hour), "beta"),
		taggedMemory(3, "c", testNow.Add(-3*time.Hour), "alpha"),
	}
	res := generatePattern(context.Background(), newSelection(memories, nil, 1))
	assert.Equal(t, statusNotApplicable, res.status)
}

func TestGenerateNudgePicksMostNeglectedRoom(t *testing.T) {
	rooms := []*Room{
		{ID: 1, Name: "Work"},
		{ID: 2, Name: "Travel"},
		{ID: 3, Name: "Empty"},
		{ID: 4, Name: "Active"},
	}
	memories := []*Memory{
		{ID: 1, Content: "standup notes", RoomID: 1, CreatedAt: testNow.Add(-10 * 24 * time.Hour)},
		{ID: 2, Content: "lisbon ideas", RoomID: 2, CreatedAt: testNow.Add(-20 * 24 * time.Hour)},
		{ID: 3, Content: "fresh thought", RoomID: 4, CreatedAt: testNow.Add(-time.Hour)},
	}

	res := generateNudge(context.Background(), newSelection(memories, rooms, 1))
	require.Equal(t, statusFound, res.status)
	assert.Contains(t, res.insight.Title, "Travel")
	assert.Contains(t, res.insight.Body, "20 days")
}

func TestGenerateNudgeSkipsWithoutStaleRooms(t *testing.T) {
	res := generateNudge(context.Background(), newSelection(nil, nil, 1))
	assert.Equal(t, statusNotApplicable, res.status)

	// An empty room never nags, and an active one is left alone.
	rooms := []*Room{{ID: 1, Name: "Empty"}, {ID: 2, Name: "Active"}}
	memories := []*Memory{
		{ID: 1, Content: "today", RoomID: 2, CreatedAt: testNow.Add(-time.Hour)},
	}
	res = generateNudge(context.Background(), newSelection(memories, rooms, 1))
	assert.Equal(t, statusNotApplicable, res.status)
}

func TestGenerateMashupPrefersDistantPairs(t *testing.T) {
	memories := []*Memory{
		taggedMemory(1, "sourdough starter", testNow.Add(-1*time.Hour), "baking"),
		taggedMemory(2, "rye experiment", testNow.Add(-2*time.Hour), "baking"),
		taggedMemory(3, "trail run", testNow.Add(-3*time.Hour), "running"),
		taggedMemory(4, "race training", testNow.Add(-4*time.Hour), "running"),
	}
	memories[0].RoomID, memories[1].RoomID = 1, 1
	memories[2].RoomID, memories[3].RoomID = 2, 2

	// Every memory has a cross-room, tag-disjoint partner available, so the
	// pair must always span rooms.
	for seed := int64(0); seed < 30; seed++ {
		res := generateMashup(context.Background(), newSelection(memories, nil, seed))
		require.Equal(t, statusFound, res.status)
		require.Len(t, res.insight.RelatedMemoryIDs, 2)
		a, b := res.insight.RelatedMemoryIDs[0], res.insight.RelatedMemoryIDs[1]
		assert.NotEqual(t, a, b, "seed %d", seed)
		sameRoom := (a <= 2) == (b <= 2)
		assert.False(t, sameRoom, "seed %d paired %d with %d", seed, a, b)
	}
}

func TestGenerateMashupFallbackNeverPairsMemoryWithItself(t *testing.T) {
	// All in one room with a shared tag: no ideal partner exists, so the
	// fallback pairing applies.
	var memories []*Memory
	for i := int64(1); i <= 4; i++ {
		m := taggedMemory(i, fmt.Sprintf("thought %d", i), testNow.Add(-time.Duration(i)*time.Hour), "shared")
		m.RoomID = 1
		memories = append(memories, m)
	}

	for seed := int64(0); seed < 50; seed++ {
		res := generateMashup(context.Background(), newSelection(memories, nil, seed))
		require.Equal(t, statusFound, res.status)
		require.Len(t, res.insight.RelatedMemoryIDs, 2)
		assert.NotEqual(t, res.insight.RelatedMemoryIDs[0], res.insight.RelatedMemoryIDs[1], "seed %d", seed)
	}
}

func TestGenerateQuestionUsesRecentTags(t *testing.T) {
	memories := []*Memory{
		taggedMemory(1, "glaze test", testNow.Add(-time.Hour), "pottery"),
	}
	res := generateQuestion(context.Background(), newSelection(memories, nil, 1))
	require.Equal(t, statusFound, res.status)
	assert.Contains(t, res.insight.Body, "pottery")
}

func TestGenerateQuestionFallsBackToGenericPrompt(t *testing.T) {
	memories := []*Memory{
		taggedMemory(1, "untagged thought", testNow.Add(-time.Hour)),
	}
	res := generateQuestion(context.Background(), newSelection(memories, nil, 1))
	require.Equal(t, statusFound, res.status)
	assert.Contains(t, genericQuestionTemplates, res.insight.Body)
}

type stubProvider struct {
	response string
	err      error
}

func (p *stubProvider) Configured() bool { return true }

func (p *stubProvider) Generate(_ context.Context, _ string, _ ...llm.GenerateOption) (string, error) {
	return p.response, p.err
}

func (p *stubProvider) GenerateWithMessages(_ context.Context, _ []llm.Message, _ ...llm.GenerateOption) (string, error) {
	return p.response, p.err
}

func (p *stubProvider) Close() error { return nil }

func TestGenerateConnectionReportsProviderFault(t *testing.T) {
	memories := []*Memory{
		taggedMemory(1, "a", testNow.Add(-1*time.Hour), "alpha"),
		taggedMemory(2, "b", testNow.Add(-2*time.Hour), "beta"),
		taggedMemory(3, "c", testNow.Add(-3*time.Hour), "gamma"),
	}
	sel := newSelection(memories, nil, 1)
	sel.llm = &stubProvider{err: fmt.Errorf("upstream timeout")}

	res := generateConnection(context.Background(), sel)
	require.Equal(t, statusFailed, res.status)
	assert.ErrorContains(t, res.err, "upstream timeout")
}

func TestGenerateConnectionPairsDisjointMemories(t *testing.T) {
	memories := []*Memory{
		taggedMemory(1, "a", testNow.Add(-1*time.Hour), "alpha"),
		taggedMemory(2, "b", testNow.Add(-2*time.Hour), "alpha"),
		taggedMemory(3, "c", testNow.Add(-3*time.Hour), "beta"),
	}
	sel := newSelection(memories, nil, 1)
	sel.llm = &stubProvider{response: "Both are about persistence."}

	res := generateConnection(context.Background(), sel)
	require.Equal(t, statusFound, res.status)
	require.Len(t, res.insight.RelatedMemoryIDs, 2)
	assert.NotEqual(t, res.insight.RelatedMemoryIDs[0], res.insight.RelatedMemoryIDs[1])
	assert.Equal(t, "Both are about persistence.", res.insight.Body)
}

func TestGenerateIdeaSparkSkipsWithoutTags(t *testing.T) {
	memories := []*Memory{
		taggedMemory(1, "a", testNow.Add(-1*time.Hour)),
		taggedMemory(2, "b", testNow.Add(-2*time.Hour)),
	}
	sel := newSelection(memories, nil, 1)
	sel.llm = &stubProvider{response: "should not be called"}

	res := generateIdeaSpark(context.Background(), sel)
	assert.Equal(t, statusNotApplicable, res.status)
}

func TestGenerateIdeaSparkBuildsFromThemes(t *testing.T) {
	memories := []*Memory{
		taggedMemory(1, "a", testNow.Add(-1*time.Hour), "photography"),
		taggedMemory(2, "b", testNow.Add(-2*time.Hour), "cycling"),
	}
	sel := newSelection(memories, nil, 1)
	sel.llm = &stubProvider{response: "Photograph your next long ride at golden hour."}

	res := generateIdeaSpark(context.Background(), sel)
	require.Equal(t, statusFound, res.status)
	assert.Equal(t, KindIdeaSpark, res.insight.Kind)
	assert.Empty(t, res.insight.RelatedMemoryIDs)
}

func TestAgeLabel(t *testing.T) {
	cases := []struct {
		age  time.Duration
		want string
	}{
		{3 * 24 * time.Hour, "1 week ago"},
		{10 * 24 * time.Hour, "1 week ago"},
		{15 * 24 * time.Hour, "2 weeks ago"},
		{21 * 24 * time.Hour, "3 weeks ago"},
		{30 * 24 * time.Hour, "1 month ago"},
		{200 * 24 * time.Hour, "7 months ago"},
		{365 * 24 * time.Hour, "12 months ago"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ageLabel(tc.age), "age %v", tc.age)
	}
}

func TestEncouragementInsightIsDeterministic(t *testing.T) {
	first := encouragementInsight(7)
	second := encouragementInsight(7)

	assert.Equal(t, KindEncouragement, first.Kind)
	assert.Equal(t, first.Body, second.Body)
	assert.Contains(t, first.Body, "7")
}

func TestTruncatePreservesShortText(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "long...", truncate("longer text", 4))
}
