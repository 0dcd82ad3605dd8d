// Package perception turns raw stimulus text into a structured Perception.
package perception

import (
	"context"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/rcliao/sentiment-agent/internal/model"
)

// Analyzer interprets one stimulus.
type Analyzer interface {
	Analyze(ctx context.Context, text string) (model.Perception, error)
}

// Func adapts a plain function to the Analyzer interface.
type Func func(ctx context.Context, text string) (model.Perception, error)

func (f Func) Analyze(ctx context.Context, text string) (model.Perception, error) {
	return f(ctx, text)
}

// MaxConcepts is the number of key concepts kept per stimulus.
const MaxConcepts = 5

// minConceptLen is the exclusive lower bound on concept length in bytes.
const minConceptLen = 4

var (
	positiveWords = []string{"happy", "joy", "love", "good", "excellent", "wonderful"}
	negativeWords = []string{"sad", "angry", "hate", "bad", "terrible", "awful"}
)

// Lexicon is the rule-based analyzer backed by fixed word lists.
type Lexicon struct {
	logger *zap.Logger
}

// NewLexicon creates a Lexicon analyzer. A nil logger disables logging.
func NewLexicon(logger *zap.Logger) *Lexicon {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Lexicon{logger: logger.Named("perception")}
}

// Analyze never fails; the error return satisfies Analyzer.
func (l *Lexicon) Analyze(ctx context.Context, text string) (model.Perception, error) {
	l.logger.Debug("perceiving stimulus", zap.String("preview", Preview(text, 50)))
	return Perceive(text), nil
}

// Perceive is the pure rule set behind Lexicon.
func Perceive(text string) model.Perception {
	words := strings.Fields(text)
	return model.Perception{
		RawInput:        text,
		DetectedEmotion: DetectEmotion(text),
		KeyConcepts:     ExtractConcepts(text),
		QuestionType:    ClassifyQuestion(text),
		Complexity:      float64(len(words)) / 10,
	}
}

// DetectEmotion counts lexicon entries found anywhere in the lower-cased text.
func DetectEmotion(text string) model.Emotion {
	lower := strings.ToLower(text)
	pos := countHits(lower, positiveWords)
	neg := countHits(lower, negativeWords)
	switch {
	case pos > neg:
		return model.EmotionPositive
	case neg > pos:
		return model.EmotionNegative
	default:
		return model.EmotionNeutral
	}
}

func countHits(text string, lexicon []string) int {
	n := 0
	for _, w := range lexicon {
		if strings.Contains(text, w) {
			n++
		}
	}
	return n
}

// ExtractConcepts returns the first MaxConcepts lower-cased words longer
// than four characters, in input order. Duplicates are kept.
func ExtractConcepts(text string) []string {
	concepts := []string{}
	for _, w := range strings.Fields(strings.ToLower(text)) {
		if utf8.RuneCountInString(w) <= minConceptLen {
			continue
		}
		concepts = append(concepts, w)
		if len(concepts) == MaxConcepts {
			break
		}
	}
	return concepts
}

// ClassifyQuestion checks "what"/"how", then "why", then "?".
func ClassifyQuestion(text string) model.QuestionType {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "what") || strings.Contains(lower, "how"):
		return model.QuestionInquiry
	case strings.Contains(lower, "why"):
		return model.QuestionPhilosophical
	case strings.Contains(text, "?"):
		return model.QuestionPlain
	default:
		return model.QuestionStatement
	}
}

// Preview truncates s to at most n runes for log output.
func Preview(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
