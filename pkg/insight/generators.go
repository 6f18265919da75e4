package insight

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/reverielab/reverie-go/pkg/llm"
)

// resultStatus classifies one generator invocation.
type resultStatus int

const (
	// statusFound means the generator produced an insight.
	statusFound resultStatus = iota

	// statusNotApplicable means the generator found nothing interesting.
	// Covers both unmet preconditions and "no data matched": the engine does
	// not distinguish the two, both are skip signals.
	statusNotApplicable

	// statusFailed means a true fault (network error, panic) occurred.
	// Collapsed to a skip at the engine boundary, but recorded separately so
	// the cause stays observable.
	statusFailed
)

// result is the tagged outcome of one generator invocation.
type result struct {
	status  resultStatus
	insight *Insight
	err     error
}

func found(i *Insight) result { return result{status: statusFound, insight: i} }
func skip() result            { return result{status: statusNotApplicable} }
func fail(err error) result   { return result{status: statusFailed, err: err} }

// generator is one registry entry: an algorithm producing at most one
// insight per invocation.
type generator struct {
	kind Kind
	run  func(ctx context.Context, s *selection) result
}

// selection is the read-only working set for one selection cycle.
// The memory and room slices are never mutated; shuffles operate on copies.
type selection struct {
	memories []*Memory
	rooms    []*Room
	rng      *rand.Rand
	now      time.Time
	llm      llm.Provider
}

// ruleGenerators are the six generators that are pure over the snapshot.
func ruleGenerators() []generator {
	return []generator{
		{kind: KindOnThisDay, run: generateOnThisDay},
		{kind: KindForgottenGem, run: generateForgottenGem},
		{kind: KindPattern, run: generatePattern},
		{kind: KindNudge, run: generateNudge},
		{kind: KindMashup, run: generateMashup},
		{kind: KindQuestion, run: generateQuestion},
	}
}

// aiGenerators are the two generators that consume the LLM provider.
// They join the candidate list only when the provider reports configured.
func aiGenerators() []generator {
	return []generator{
		{kind: KindConnection, run: generateConnection},
		{kind: KindIdeaSpark, run: generateIdeaSpark},
	}
}

// newInsight assembles an insight with a fresh ID and the kind's fixed style.
func newInsight(kind Kind, title, body string, related []int64) *Insight {
	style := StyleFor(kind)
	return &Insight{
		ID:               uuid.NewString(),
		Kind:             kind,
		Title:            title,
		Body:             body,
		RelatedMemoryIDs: related,
		Icon:             style.Icon,
		Gradient:         style.Gradient,
	}
}

// generateOnThisDay resurfaces a memory captured on today's calendar
// day-of-month and month in an earlier year or month. A memory qualifies only
// when its full creation date is at least 7 days in the past, so a capture
// from 3 days ago never matches even on the same day-of-month. Feb 29
// memories match only in leap years.
func generateOnThisDay(_ context.Context, s *selection) result {
	const minAge = 7 * 24 * time.Hour

	var matches []*Memory
	for _, m := range s.memories {
		if m.CreatedAt.Month() != s.now.Month() || m.CreatedAt.Day() != s.now.Day() {
			continue
		}
		if s.now.Sub(m.CreatedAt) < minAge {
			continue
		}
		matches = append(matches, m)
	}
	if len(matches) == 0 {
		return skip()
	}

	pick := matches[s.rng.Intn(len(matches))]
	return found(newInsight(
		KindOnThisDay,
		"On this day",
		fmt.Sprintf("%s, you captured: %q", ageLabel(s.now.Sub(pick.CreatedAt)), snippet(pick, 120)),
		[]int64{pick.ID},
	))
}

// ageLabel renders an age as "N weeks ago", switching to months at 4+ weeks
// (rounded).
func ageLabel(age time.Duration) string {
	weeks := int(age.Hours() / (24 * 7))
	if weeks < 1 {
		weeks = 1
	}
	if weeks >= 4 {
		months := int(math.Round(age.Hours() / (24 * 30.44)))
		if months < 1 {
			months = 1
		}
		if months == 1 {
			return "1 month ago"
		}
		return fmt.Sprintf("%d months ago", months)
	}
	if weeks == 1 {
		return "1 week ago"
	}
	return fmt.Sprintf("%d weeks ago", weeks)
}

// generateForgottenGem resurfaces one of the oldest memories. Requires at
// least 5 memories total and at least one older than 14 days; picks randomly
// from the oldest third of the qualifying candidates.
func generateForgottenGem(_ context.Context, s *selection) result {
	const minAge = 14 * 24 * time.Hour

	if len(s.memories) < 5 {
		return skip()
	}

	var candidates []*Memory
	for _, m := range s.memories {
		if s.now.Sub(m.CreatedAt) > minAge {
			candidates = append(candidates, m)
		}
	}
	if len(candidates) == 0 {
		return skip()
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].CreatedAt.Before(candidates[j].CreatedAt)
	})

	pool := len(candidates) / 3
	if pool < 1 {
		pool = 1
	}
	pick := candidates[s.rng.Intn(pool)]

	return found(newInsight(
		KindForgottenGem,
		"A forgotten gem",
		fmt.Sprintf("You haven't revisited this in a while: %q", snippet(pick, 120)),
		[]int64{pick.ID},
	))
}

// generatePattern reports a tag that recurs at least 3 times across the 20
// most recent memories, attaching up to 3 memories carrying it.
func generatePattern(_ context.Context, s *selection) result {
	if len(s.memories) < 3 {
		return skip()
	}

	recent := recentMemories(s.memories, 20)

	counts := make(map[string]int)
	order := make(map[string]int)
	for i, m := range recent {
		for _, tag := range m.Tags {
			if _, ok := counts[tag]; !ok {
				order[tag] = i
			}
			counts[tag]++
		}
	}

	best := ""
	for tag, count := range counts {
		if count < 3 {
			continue
		}
		if best == "" || count > counts[best] || (count == counts[best] && order[tag] < order[best]) {
			best = tag
		}
	}
	if best == "" {
		return skip()
	}

	var related []int64
	for _, m := range recent {
		if hasTag(m, best) {
			related = append(related, m.ID)
			if len(related) == 3 {
				break
			}
		}
	}

	return found(newInsight(
		KindPattern,
		"A pattern is forming",
		fmt.Sprintf("%q keeps coming up: it appears in %d of your recent thoughts.", best, counts[best]),
		related,
	))
}

// generateNudge points at the room that has gone the longest without new
// memories. Only rooms with at least one memory and no activity in the last
// 7 days qualify.
func generateNudge(_ context.Context, s *selection) result {
	const staleAfter = 7 * 24 * time.Hour

	if len(s.rooms) == 0 {
		return skip()
	}

	type roomActivity struct {
		room   *Room
		count  int
		latest time.Time
	}

	activity := make([]roomActivity, 0, len(s.rooms))
	for _, r := range s.rooms {
		a := roomActivity{room: r}
		for _, m := range s.memories {
			if m.RoomID != r.ID {
				continue
			}
			a.count++
			if m.CreatedAt.After(a.latest) {
				a.latest = m.CreatedAt
			}
		}
		if a.count > 0 && s.now.Sub(a.latest) > staleAfter {
			activity = append(activity, a)
		}
	}
	if len(activity) == 0 {
		return skip()
	}

	// Most neglected first.
	sort.Slice(activity, func(i, j int) bool {
		return activity[i].latest.Before(activity[j].latest)
	})
	neglected := activity[0]

	days := int(s.now.Sub(neglected.latest).Hours() / 24)
	return found(newInsight(
		KindNudge,
		fmt.Sprintf("%s misses you", neglected.room.Name),
		fmt.Sprintf("Nothing new in %s for %d days. Anything on your mind?", neglected.room.Name, days),
		nil,
	))
}

// generateMashup pairs two memories from different rooms with no tags in
// common. When no partner satisfies both conditions, the second shuffled
// memory is used unconditionally; the anchor itself is never a candidate, so
// a memory is never paired with itself.
func generateMashup(_ context.Context, s *selection) result {
	if len(s.memories) < 4 {
		return skip()
	}

	shuffled := shuffledMemories(s.memories, s.rng)
	anchor := shuffled[0]

	partner := shuffled[1]
	for _, m := range shuffled[1:] {
		if m.RoomID != anchor.RoomID && !tagsOverlap(anchor, m) {
			partner = m
			break
		}
	}

	return found(newInsight(
		KindMashup,
		"Unexpected mashup",
		fmt.Sprintf("What happens when %q meets %q?", snippet(anchor, 80), snippet(partner, 80)),
		[]int64{anchor.ID, partner.ID},
	))
}

// questionTemplates are reflective prompts parameterized by a recent tag.
var questionTemplates = []string{
	"What first drew you to %s?",
	"How has your thinking about %s changed lately?",
	"If you had a free afternoon for %s, what would you do?",
	"What would you tell a friend who's curious about %s?",
	"What's one small step you could take on %s this week?",
}

// genericQuestionTemplates are used when recent memories carry no tags.
var genericQuestionTemplates = []string{
	"What's been taking up the most space in your head lately?",
	"Which of your recent thoughts deserves a second look?",
	"What would you like to remember about this week?",
}

// generateQuestion asks a reflective question built from a randomly chosen
// tag among the 10 most recent memories' tags.
func generateQuestion(_ context.Context, s *selection) result {
	if len(s.memories) == 0 {
		return skip()
	}

	tags := tagUnion(recentMemories(s.memories, 10))
	if len(tags) == 0 {
		body := genericQuestionTemplates[s.rng.Intn(len(genericQuestionTemplates))]
		return found(newInsight(KindQuestion, "A question for you", body, nil))
	}

	tag := tags[s.rng.Intn(len(tags))]
	template := questionTemplates[s.rng.Intn(len(questionTemplates))]
	return found(newInsight(
		KindQuestion,
		"A question for you",
		fmt.Sprintf(template, tag),
		nil,
	))
}

// connectionSystemPrompt instructs the model for connection finding.
const connectionSystemPrompt = `You find surprising connections between a person's captured thoughts.
Given two thoughts, reply with a single surprising connection between them in 1-2 sentences.
Reply with the connection only, no preamble.`

// generateConnection asks the model for a surprising link between two
// memories with no tags in common. Requires at least 3 memories and a
// configured provider.
func generateConnection(ctx context.Context, s *selection) result {
	if len(s.memories) < 3 {
		return skip()
	}

	shuffled := shuffledMemories(s.memories, s.rng)
	anchor := shuffled[0]

	partner := shuffled[1]
	for _, m := range shuffled[1:] {
		if !tagsOverlap(anchor, m) {
			partner = m
			break
		}
	}

	userPrompt := fmt.Sprintf("Thought A: %s\n\nThought B: %s", anchor.Content, partner.Content)
	messages := []llm.Message{
		{Role: "system", Content: connectionSystemPrompt},
		{Role: "user", Content: userPrompt},
	}

	response, err := s.llm.GenerateWithMessages(ctx, messages, llm.WithMaxTokens(120))
	if err != nil {
		return fail(fmt.Errorf("connection generator: %w", err))
	}
	response = strings.TrimSpace(response)
	if response == "" {
		return skip()
	}

	return found(newInsight(
		KindConnection,
		"A surprising connection",
		truncate(response, 200),
		[]int64{anchor.ID, partner.ID},
	))
}

// ideaSparkSystemPrompt instructs the model for idea generation.
const ideaSparkSystemPrompt = `You spark creative ideas from a person's recent themes.
Given a list of themes, reply with one actionable creative idea combining them, in 1-2 sentences.
Reply with the idea only, no preamble.`

// generateIdeaSpark asks the model for one actionable idea built from up to
// 5 distinct tags among the 10 most recent memories. Requires at least 2
// memories, a configured provider, and a non-empty tag set.
func generateIdeaSpark(ctx context.Context, s *selection) result {
	if len(s.memories) < 2 {
		return skip()
	}

	tags := tagUnion(recentMemories(s.memories, 10))
	if len(tags) == 0 {
		return skip()
	}
	if len(tags) > 5 {
		tags = tags[:5]
	}

	messages := []llm.Message{
		{Role: "system", Content: ideaSparkSystemPrompt},
		{Role: "user", Content: "Themes: " + strings.Join(tags, ", ")},
	}

	response, err := s.llm.GenerateWithMessages(ctx, messages, llm.WithMaxTokens(120))
	if err != nil {
		return fail(fmt.Errorf("idea spark generator: %w", err))
	}
	response = strings.TrimSpace(response)
	if response == "" {
		return skip()
	}

	return found(newInsight(KindIdeaSpark, "An idea spark", truncate(response, 200), nil))
}

// recentMemories returns up to n memories ordered newest first.
// The input slice is not modified.
func recentMemories(memories []*Memory, n int) []*Memory {
	sorted := make([]*Memory, len(memories))
	copy(sorted, memories)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// shuffledMemories returns a uniformly shuffled copy of the memory slice.
func shuffledMemories(memories []*Memory, rng *rand.Rand) []*Memory {
	shuffled := make([]*Memory, len(memories))
	copy(shuffled, memories)
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	return shuffled
}

// tagUnion collects distinct tags across memories, preserving first-seen order.
func tagUnion(memories []*Memory) []string {
	seen := make(map[string]bool)
	var union []string
	for _, m := range memories {
		for _, tag := range m.Tags {
			if tag == "" || seen[tag] {
				continue
			}
			seen[tag] = true
			union = append(union, tag)
		}
	}
	return union
}

// tagsOverlap reports whether two memories share at least one tag.
func tagsOverlap(a, b *Memory) bool {
	for _, ta := range a.Tags {
		for _, tb := range b.Tags {
			if ta == tb {
				return true
			}
		}
	}
	return false
}

// hasTag reports whether a memory carries the given tag.
func hasTag(m *Memory, tag string) bool {
	for _, t := range m.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// snippet returns a short display excerpt of a memory, preferring the
// summary when present.
func snippet(m *Memory, limit int) string {
	text := m.Summary
	if text == "" {
		text = m.Content
	}
	return truncate(strings.TrimSpace(text), limit)
}

// truncate shortens text to at most limit runes, ellipsized when cut.
func truncate(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return strings.TrimSpace(string(runes[:limit])) + "..."
}
