package insight

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/reverielab/reverie-go/pkg/llm"
)

// DefaultCount is the number of insights one selection cycle aims for.
const DefaultCount = 3

// Engine orchestrates the generator registry for one presentation cycle.
//
// On each Select call it shuffles the candidate generators, invokes them
// sequentially until the target count is reached or the list is exhausted,
// and guarantees a non-empty batch: an empty memory snapshot yields a single
// welcome insight, and a cycle where every generator skipped or failed
// yields a single encouragement insight.
//
// Generator invocation is sequential: results are capped by count, so
// running generators that would be discarded wastes model calls. The
// shuffle is the variety mechanism; no generator has positional priority.
//
// The engine is not safe for concurrent use; callers needing parallel
// selection cycles should create one Engine per cycle.
//
// Example usage:
//
//	engine := insight.NewEngine(llmProvider)
//	batch := engine.Select(ctx, memories, rooms, 3)
type Engine struct {
	// llm is the provider for model-assisted generators.
	// May be nil or unconfigured; AI generators are then left out of the
	// candidate list entirely.
	llm llm.Provider

	// rng drives the shuffle and every random pick. Injectable so tests can
	// seed it; defaults to a time-seeded source.
	rng *rand.Rand

	// now supplies the current time for date arithmetic. Injectable so
	// tests can pin the calendar; defaults to time.Now.
	now func() time.Time

	// failures records generator faults from the most recent Select call.
	failures []error
}

// Option configures an Engine.
type Option func(*Engine)

// WithRand sets the random source used for shuffling and random picks.
//
// Example:
//
//	engine := insight.NewEngine(provider, insight.WithRand(rand.New(rand.NewSource(42))))
func WithRand(rng *rand.Rand) Option {
	return func(e *Engine) {
		e.rng = rng
	}
}

// WithClock sets the time source used for date arithmetic.
//
// Example:
//
//	engine := insight.NewEngine(provider, insight.WithClock(func() time.Time { return fixed }))
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// NewEngine creates a selection engine.
//
// Parameters:
//   - provider: LLM provider for the model-assisted generators (nil disables them)
//   - opts: Optional random source and clock overrides
//
// Returns a new Engine with a time-seeded random source and real clock by default.
func NewEngine(provider llm.Provider, opts ...Option) *Engine {
	e := &Engine{
		llm: provider,
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
		now: time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Select produces up to count insights for one presentation cycle.
//
// The algorithm:
//  1. An empty memory snapshot short-circuits to a single welcome insight.
//  2. Candidates are the six rule-based generators, plus the two
//     model-assisted ones when the provider reports configured.
//  3. The candidate list is uniformly shuffled.
//  4. Generators run in shuffled order; a fault in one is recorded and the
//     iteration moves on, a nil result skips, a produced insight is
//     accepted. Iteration stops once count insights are accepted.
//  5. An empty batch after exhausting the list is replaced by a single
//     encouragement insight derived from the memory count.
//
// count values <= 0 fall back to DefaultCount. The returned batch preserves
// acceptance order and is never empty. Failed generators are not retried
// within one call.
//
// Parameters:
//   - ctx: Context passed through to model-assisted generators
//   - memories: Read-only memory snapshot, valid for this call only
//   - rooms: Read-only room snapshot
//   - count: Target batch size
//
// Returns the selected insights, length between 1 and count.
func (e *Engine) Select(ctx context.Context, memories []*Memory, rooms []*Room, count int) []*Insight {
	if count <= 0 {
		count = DefaultCount
	}
	e.failures = nil

	if len(memories) == 0 {
		return []*Insight{welcomeInsight()}
	}

	candidates := ruleGenerators()
	if e.llm != nil && e.llm.Configured() {
		candidates = append(candidates, aiGenerators()...)
	}

	e.rng.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})

	sel := &selection{
		memories: memories,
		rooms:    rooms,
		rng:      e.rng,
		now:      e.now(),
		llm:      e.llm,
	}

	batch := make([]*Insight, 0, count)
	for _, g := range candidates {
		if len(batch) >= count {
			break
		}
		res := invoke(ctx, g, sel)
		switch res.status {
		case statusFound:
			batch = append(batch, res.insight)
		case statusFailed:
			e.failures = append(e.failures, res.err)
		}
	}

	if len(batch) == 0 {
		batch = append(batch, encouragementInsight(len(memories)))
	}
	return batch
}

// Failures returns the generator faults recorded during the most recent
// Select call. Skips for lack of data are not faults and are not reported.
func (e *Engine) Failures() []error {
	return e.failures
}

// invoke runs one generator, converting a panic into a failed result so a
// defect in one generator cannot abort the batch.
func invoke(ctx context.Context, g generator, s *selection) (res result) {
	defer func() {
		if r := recover(); r != nil {
			res = fail(fmt.Errorf("%s generator panicked: %v", g.kind, r))
		}
	}()
	return g.run(ctx, s)
}

// welcomeInsight is the fixed insight for an empty memory collection.
func welcomeInsight() *Insight {
	return newInsight(
		KindWelcome,
		"Welcome",
		"Capture your first thought and it will start showing up here in surprising ways.",
		nil,
	)
}

// encouragementTemplates are the fallback bodies when no generator produced
// anything. Chosen deterministically from the memory count.
var encouragementTemplates = []string{
	"You've captured %d thoughts so far. Keep going, patterns emerge with time.",
	"%d thoughts and counting. The more you capture, the more this space gives back.",
	"Your collection holds %d thoughts. Come back tomorrow and see what surfaces.",
}

// encouragementInsight builds the deterministic fallback insight.
func encouragementInsight(memoryCount int) *Insight {
	template := encouragementTemplates[memoryCount%len(encouragementTemplates)]
	return newInsight(
		KindEncouragement,
		"Keep capturing",
		fmt.Sprintf(template, memoryCount),
		nil,
	)
}
