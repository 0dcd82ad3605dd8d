// Package deliberation generates the agent's internal thoughts for one
// interaction.
//
// A deliberation cycle runs up to four steps in a fixed order. Each step is
// gated by the perception, the recalled memories, or a personality trait:
//
//   - initial reaction, always
//   - memory reflection, when any memory was recalled
//   - meta-reflection, when introspection > 0.7
//   - curious question, when curiosity > 0.6
//
// Traits are read at invocation time and never modified.
package deliberation

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/rcliao/sentiment-agent/internal/model"
)

// DefaultHistoryLimit is the number of thoughts retained for inspection.
const DefaultHistoryLimit = 256

const (
	introspectionGate = 0.7
	curiosityGate     = 0.6

	// memoryExcerptLen bounds how much of a recalled memory a reflection quotes.
	memoryExcerptLen = 50
)

// Engine runs deliberation cycles and keeps a bounded thought history.
type Engine struct {
	traits  model.Traits
	logger  *zap.Logger
	now     func() time.Time
	history *history
}

// Option configures an Engine.
type Option func(*engineConfig)

type engineConfig struct {
	historyLimit int
	logger       *zap.Logger
	now          func() time.Time
}

// WithHistoryLimit caps the retained thought history.
func WithHistoryLimit(n int) Option {
	return func(c *engineConfig) {
		if n > 0 {
			c.historyLimit = n
		}
	}
}

// WithLogger sets the event sink.
func WithLogger(l *zap.Logger) Option {
	return func(c *engineConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithClock overrides the thought timestamp source.
func WithClock(now func() time.Time) Option {
	return func(c *engineConfig) { c.now = now }
}

// New creates an Engine with a private copy of traits.
func New(traits model.Traits, opts ...Option) *Engine {
	cfg := engineConfig{
		historyLimit: DefaultHistoryLimit,
		logger:       zap.NewNop(),
		now:          time.Now,
	}
	for _, o := range opts {
		o(&cfg)
	}
	return &Engine{
		traits:  traits.Clone(),
		logger:  cfg.logger.Named("deliberation"),
		now:     cfg.now,
		history: newHistory(cfg.historyLimit),
	}
}

// Traits returns a copy of the engine's trait profile.
func (e *Engine) Traits() model.Traits {
	return e.traits.Clone()
}

// Contemplate produces the ordered thoughts for one interaction. The
// result always holds at least the initial reaction.
func (e *Engine) Contemplate(ctx context.Context, p model.Perception, memories []model.Memory) ([]model.Thought, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	thoughts := []model.Thought{e.initialReaction(p)}

	// With nothing recalled the reflection step is skipped outright.
	if len(memories) > 0 {
		thoughts = append(thoughts, e.reflectOnMemories(memories))
	}

	if e.traits[model.TraitIntrospection] > introspectionGate {
		thoughts = append(thoughts, e.metaReflection())
	}

	if e.traits[model.TraitCuriosity] > curiosityGate {
		thoughts = append(thoughts, e.curiousThought(p))
	}

	e.history.push(thoughts...)
	e.logger.Debug("contemplated",
		zap.Int("thoughts", len(thoughts)),
		zap.Int("memories", len(memories)),
		zap.String("question_type", string(p.QuestionType)))
	return thoughts, nil
}

func (e *Engine) initialReaction(p model.Perception) model.Thought {
	var content string
	var confidence float64
	switch p.QuestionType {
	case model.QuestionPhilosophical:
		content = "This touches on something fundamental that I should consider carefully"
		confidence = 0.8
	case model.QuestionInquiry:
		content = "I need to access what I know about this topic"
		confidence = 0.9
	default:
		content = "Let me process what this person is communicating to me"
		confidence = 0.7
	}
	return e.thought(content, model.KindObservation, confidence, 0.1)
}

func (e *Engine) reflectOnMemories(memories []model.Memory) model.Thought {
	mostRelevant := memories[0]
	content := fmt.Sprintf("This reminds me of previous experiences, particularly around %s...",
		excerpt(mostRelevant.Content, memoryExcerptLen))
	return e.thought(content, model.KindReflection, 0.8, mostRelevant.EmotionalImpact*0.5)
}

func (e *Engine) metaReflection() model.Thought {
	return e.thought(
		"I notice I'm approaching this in a particular way - let me consider if there are other perspectives",
		model.KindMetaReflection, 0.7, 0.2)
}

func (e *Engine) curiousThought(p model.Perception) model.Thought {
	content := "There might be layers to this that I haven't considered yet"
	if len(p.KeyConcepts) > 0 {
		content = fmt.Sprintf("I wonder about the deeper implications of %s in this context", p.KeyConcepts[0])
	}
	return e.thought(content, model.KindQuestion, 0.6, 0.3)
}

func (e *Engine) thought(content string, kind model.ThoughtKind, confidence, valence float64) model.Thought {
	return model.Thought{
		Content:          content,
		Timestamp:        e.now(),
		Kind:             kind,
		Confidence:       model.Clamp(confidence, 0, 1),
		EmotionalValence: model.Clamp(valence, -1, 1),
	}
}

// Recent returns up to n of the most recent thoughts, oldest first.
func (e *Engine) Recent(n int) []model.Thought {
	return e.history.recent(n)
}

// HistoryLen reports how many thoughts are retained and how many were
// produced in total.
func (e *Engine) HistoryLen() (retained, total int) {
	return e.history.counts()
}

// excerpt returns the first n runes of s.
func excerpt(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
