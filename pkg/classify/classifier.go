// Package classify turns raw captured text into structured memory attributes.
//
// The classifier supports two modes:
//   - LLM-based: asks the language model for tags, a summary, and a room
//     suggestion as a strict JSON object (more accurate, requires credentials)
//   - Heuristic: frequency-based keyword tagging and content truncation
//     (deterministic, no LLM required)
//
// Every failure of the LLM path (missing credentials, transport error,
// malformed response) silently degrades to the heuristic path. Capture must
// never be blocked or lost because of an AI outage.
package classify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/reverielab/reverie-go/pkg/llm"
)

// Room is the slice of room state the classifier needs for name matching.
//
// This type is defined in the classify package to avoid circular dependencies
// with the core package. It mirrors the relevant core.Room fields.
type Room struct {
	// ID is the unique identifier of the room.
	ID int64

	// Name is the user-facing room name.
	Name string
}

// Result is the outcome of classifying one piece of captured text.
type Result struct {
	// Tags are lowercase short phrases describing the content.
	// Case-normalized and deduplicated; may be empty.
	Tags []string `json:"tags"`

	// Summary is a short description of the content.
	Summary string `json:"summary"`

	// SuggestedRoomID is the ID of the room whose name matched the model's
	// free-text room suggestion. Zero when no suggestion or no match: the
	// memory stays roomless, a room is never auto-created.
	SuggestedRoomID int64 `json:"suggested_room_id,omitempty"`
}

// Classifier derives tags, a summary, and a room suggestion from raw text.
//
// Example usage:
//
//	classifier := classify.NewClassifier(llmProvider)
//	result, err := classifier.Classify(ctx, "I love hiking near the lake", rooms)
type Classifier struct {
	// llm is the LLM provider for model-assisted classification.
	// May be nil or unconfigured, in which case only the heuristic runs.
	llm llm.Provider

	// customPrompt is an optional custom system prompt.
	// If empty, uses the default prompt.
	customPrompt string
}

// NewClassifier creates a new classifier.
//
// Parameters:
//   - llm: LLM provider for model-assisted classification (nil disables it)
//
// Returns a new Classifier with the default prompt.
func NewClassifier(llm llm.Provider) *Classifier {
	return &Classifier{llm: llm}
}

// NewClassifierWithPrompt creates a new classifier with a custom system prompt.
func NewClassifierWithPrompt(llm llm.Provider, customPrompt string) *Classifier {
	return &Classifier{llm: llm, customPrompt: customPrompt}
}

// Classify produces tags, a summary, and an optional room suggestion for the
// given content.
//
// The flow:
//  1. If the LLM provider is configured, issue one completion call demanding
//     a strict JSON object and parse it.
//  2. On any failure along that path (network, malformed JSON), fall back to
//     the deterministic heuristic.
//  3. Resolve the model's free-text room suggestion against the supplied
//     rooms by case-insensitive substring containment; first match wins.
//
// The only error this method returns is for empty content. Every other
// failure degrades to the heuristic path.
//
// Parameters:
//   - ctx: Context for cancellation
//   - content: Captured text, must be non-empty
//   - rooms: Current room collection for name matching (may be empty)
//
// Returns the classification result, or an error for empty content.
func (c *Classifier) Classify(ctx context.Context, content string, rooms []Room) (*Result, error) {
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("classify: empty content")
	}

	if c.llm != nil && c.llm.Configured() {
		if outcome := c.classifyWithLLM(ctx, content); outcome.parsed {
			return &Result{
				Tags:            normalizeTags(outcome.tags),
				Summary:         outcome.summary,
				SuggestedRoomID: resolveRoom(outcome.suggestedRoom, rooms),
			}, nil
		}
		// Malformed response or transport failure: heuristic takes over.
	}

	tags, summary := heuristicClassify(content)
	return &Result{Tags: tags, Summary: summary}, nil
}

// parseOutcome is the tagged result of one LLM classification attempt.
// parsed=false covers both transport failures and malformed responses,
// which are indistinguishable to the caller: both mean "use the heuristic".
type parseOutcome struct {
	parsed        bool
	tags          []string
	summary       string
	suggestedRoom string
}

// classifyWithLLM issues one completion call and parses the response.
func (c *Classifier) classifyWithLLM(ctx context.Context, content string) parseOutcome {
	messages := []llm.Message{
		{Role: "system", Content: c.getSystemPrompt()},
		{Role: "user", Content: content},
	}

	response, err := c.llm.GenerateWithMessages(ctx, messages, llm.WithTemperature(0.3))
	if err != nil {
		return parseOutcome{}
	}

	return parseClassification(response)
}

// getSystemPrompt returns the system prompt for classification.
func (c *Classifier) getSystemPrompt() string {
	if c.customPrompt != "" {
		return c.customPrompt
	}

	return `You are a personal knowledge organizer. The user gives you one captured thought.
Analyze it and respond with ONLY a JSON object, no prose, with exactly these keys:
  "tags": 3-5 lowercase short phrases describing the thought
  "summary": 1-2 sentences capturing the essence
  "suggestedRoom": a short free-text category name for grouping this thought

Example:
Input: Had a great run along the river this morning, legs felt strong.
Output: {"tags": ["running", "morning routine", "exercise"], "summary": "A strong morning run along the river.", "suggestedRoom": "Health"}

Return JSON only.`
}

// parseClassification parses an LLM response into a tagged outcome.
//
// The response is untrusted text: code fences are stripped, the first JSON
// object is extracted, and a strict schema is applied. Anything that does
// not fit yields parsed=false.
func parseClassification(response string) parseOutcome {
	response = stripCodeBlocks(response)

	// Tolerate prose around the object by slicing to the outermost braces.
	start := strings.Index(response, "{")
	end := strings.LastIndex(response, "}")
	if start < 0 || end <= start {
		return parseOutcome{}
	}

	var payload struct {
		Tags          []string `json:"tags"`
		Summary       string   `json:"summary"`
		SuggestedRoom string   `json:"suggestedRoom"`
	}
	if err := json.Unmarshal([]byte(response[start:end+1]), &payload); err != nil {
		return parseOutcome{}
	}

	if payload.Summary == "" && len(payload.Tags) == 0 {
		return parseOutcome{}
	}

	return parseOutcome{
		parsed:        true,
		tags:          payload.Tags,
		summary:       strings.TrimSpace(payload.Summary),
		suggestedRoom: strings.TrimSpace(payload.SuggestedRoom),
	}
}

// stripCodeBlocks removes code fences (```json ... ```) from a response.
func stripCodeBlocks(response string) string {
	response = strings.ReplaceAll(response, "```json", "")
	response = strings.ReplaceAll(response, "```", "")
	return strings.TrimSpace(response)
}

// normalizeTags lowercases, trims, and deduplicates tags, preserving order.
func normalizeTags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	normalized := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		normalized = append(normalized, tag)
	}
	return normalized
}

// resolveRoom matches a free-text room name against existing rooms by
// case-insensitive substring containment in either direction. First match
// wins; no match means no assignment.
func resolveRoom(suggestion string, rooms []Room) int64 {
	suggestion = strings.ToLower(strings.TrimSpace(suggestion))
	if suggestion == "" {
		return 0
	}

	for _, room := range rooms {
		name := strings.ToLower(room.Name)
		if name == "" {
			continue
		}
		if strings.Contains(name, suggestion) || strings.Contains(suggestion, name) {
			return room.ID
		}
	}
	return 0
}
