package classify_test

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reverielab/reverie-go/pkg/classify"
	"github.com/reverielab/reverie-go/pkg/llm"
)

// fakeProvider is a canned LLM provider for classifier tests.
type fakeProvider struct {
	configured bool
	response   string
	err        error
	calls      int
}

func (f *fakeProvider) Configured() bool { return f.configured }

func (f *fakeProvider) Generate(_ context.Context, _ string, _ ...llm.GenerateOption) (string, error) {
	f.calls++
	return f.response, f.err
}

func (f *fakeProvider) GenerateWithMessages(_ context.Context, _ []llm.Message, _ ...llm.GenerateOption) (string, error) {
	f.calls++
	return f.response, f.err
}

func (f *fakeProvider) Close() error { return nil }

func TestClassifyEmptyContent(t *testing.T) {
	classifier := classify.NewClassifier(nil)

	result, err := classifier.Classify(context.Background(), "   ", nil)
	assert.Error(t, err)
	assert.Nil(t, result)
}

func TestClassifyHeuristicWithoutProvider(t *testing.T) {
	classifier := classify.NewClassifier(nil)

	result, err := classifier.Classify(context.Background(), "I love hiking near the lake on weekends", nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"hiking", "near", "lake", "weekends"}, result.Tags)
	assert.Equal(t, "I love hiking near the lake on weekends", result.Summary)
	assert.Zero(t, result.SuggestedRoomID)
}

func TestClassifyHeuristicTruncatesLongContent(t *testing.T) {
	classifier := classify.NewClassifier(nil)
	content := strings.Repeat("contemplating the garden fence again and again ", 6)

	result, err := classifier.Classify(context.Background(), content, nil)
	require.NoError(t, err)

	assert.True(t, strings.HasSuffix(result.Summary, "..."))
	assert.LessOrEqual(t, len([]rune(result.Summary)), 104)
}

func TestClassifyHeuristicSkipsUnconfiguredProvider(t *testing.T) {
	provider := &fakeProvider{configured: false, response: `{"tags":["x"],"summary":"y"}`}
	classifier := classify.NewClassifier(provider)

	result, err := classifier.Classify(context.Background(), "weekend pottery class was great", nil)
	require.NoError(t, err)

	assert.Zero(t, provider.calls)
	assert.Contains(t, result.Tags, "pottery")
}

func TestClassifyUsesModelResponse(t *testing.T) {
	provider := &fakeProvider{
		configured: true,
		response:   `{"tags": ["Running", " running ", "exercise"], "summary": "A morning run.", "suggestedRoom": "Health"}`,
	}
	classifier := classify.NewClassifier(provider)
	rooms := []classify.Room{
		{ID: 10, Name: "Work"},
		{ID: 20, Name: "Health & Fitness"},
	}

	result, err := classifier.Classify(context.Background(), "great run this morning", rooms)
	require.NoError(t, err)

	// Tags are lowercased and deduplicated, order preserved.
	assert.Equal(t, []string{"running", "exercise"}, result.Tags)
	assert.Equal(t, "A morning run.", result.Summary)
	assert.Equal(t, int64(20), result.SuggestedRoomID)
}

func TestClassifyParsesFencedResponse(t *testing.T) {
	provider := &fakeProvider{
		configured: true,
		response: "Here you go:\n```json\n" +
			`{"tags": ["cooking"], "summary": "A new pasta recipe.", "suggestedRoom": ""}` +
			"\n```",
	}
	classifier := classify.NewClassifier(provider)

	result, err := classifier.Classify(context.Background(), "tried a new pasta recipe", nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"cooking"}, result.Tags)
	assert.Equal(t, "A new pasta recipe.", result.Summary)
	assert.Zero(t, result.SuggestedRoomID)
}

func TestClassifyMalformedResponseFallsBack(t *testing.T) {
	responses := []string{
		"I couldn't produce JSON, sorry!",
		`{"tags": "not-a-list", "summary": 42}`,
		`{"tags": [], "summary": ""}`,
		"",
	}
	for _, response := range responses {
		provider := &fakeProvider{configured: true, response: response}
		classifier := classify.NewClassifier(provider)

		result, err := classifier.Classify(context.Background(), "hiking near the lake", nil)
		require.NoError(t, err, "response %q", response)
		require.NotNil(t, result)
		assert.Contains(t, result.Tags, "hiking", "response %q", response)
	}
}

func TestClassifyProviderErrorFallsBack(t *testing.T) {
	provider := &fakeProvider{configured: true, err: fmt.Errorf("rate limited")}
	classifier := classify.NewClassifier(provider)

	result, err := classifier.Classify(context.Background(), "hiking near the lake", nil)
	require.NoError(t, err)
	assert.Contains(t, result.Tags, "hiking")
}

func TestClassifyRoomSuggestionNeverInventsRooms(t *testing.T) {
	provider := &fakeProvider{
		configured: true,
		response:   `{"tags": ["travel"], "summary": "Trip planning.", "suggestedRoom": "Adventures"}`,
	}
	classifier := classify.NewClassifier(provider)
	rooms := []classify.Room{{ID: 1, Name: "Work"}}

	result, err := classifier.Classify(context.Background(), "planning the trip", rooms)
	require.NoError(t, err)
	assert.Zero(t, result.SuggestedRoomID)
}

func TestClassifyRoomMatchingIsBidirectional(t *testing.T) {
	provider := &fakeProvider{
		configured: true,
		response:   `{"tags": ["work"], "summary": "Notes.", "suggestedRoom": "Work Projects"}`,
	}
	classifier := classify.NewClassifier(provider)

	// The room name is a substring of the suggestion.
	rooms := []classify.Room{{ID: 7, Name: "work"}}
	result, err := classifier.Classify(context.Background(), "meeting notes", rooms)
	require.NoError(t, err)
	assert.Equal(t, int64(7), result.SuggestedRoomID)
}

func TestClassifyCustomPrompt(t *testing.T) {
	provider := &fakeProvider{
		configured: true,
		response:   `{"tags": ["a"], "summary": "b", "suggestedRoom": ""}`,
	}
	classifier := classify.NewClassifierWithPrompt(provider, "Always answer in JSON.")

	result, err := classifier.Classify(context.Background(), "anything", nil)
	require.NoError(t, err)
	assert.Equal(t, "b", result.Summary)
}
