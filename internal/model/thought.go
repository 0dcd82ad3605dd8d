package model

import "time"

// ThoughtKind classifies a deliberation step.
type ThoughtKind string

const (
	KindObservation    ThoughtKind = "observation"
	KindReflection     ThoughtKind = "reflection"
	KindMetaReflection ThoughtKind = "meta-reflection"
	KindQuestion       ThoughtKind = "question"
)

// Thought is one step of internal deliberation. Values are never modified
// after the deliberation engine creates them.
type Thought struct {
	Content          string      `json:"content"`
	Timestamp        time.Time   `json:"timestamp"`
	Kind             ThoughtKind `json:"kind"`
	Confidence       float64     `json:"confidence"`
	EmotionalValence float64     `json:"emotional_valence"`
}

// Emotion is the detected tone of a stimulus.
type Emotion string

const (
	EmotionPositive Emotion = "positive"
	EmotionNegative Emotion = "negative"
	EmotionNeutral  Emotion = "neutral"
)

// QuestionType classifies the form of a stimulus.
type QuestionType string

const (
	QuestionInquiry       QuestionType = "inquiry"
	QuestionPhilosophical QuestionType = "philosophical"
	QuestionPlain         QuestionType = "question"
	QuestionStatement     QuestionType = "statement"
)

// Perception is the structured interpretation of one stimulus. It is
// produced fresh per interaction and never persisted.
type Perception struct {
	RawInput        string       `json:"raw_input"`
	DetectedEmotion Emotion      `json:"detected_emotion"`
	KeyConcepts     []string     `json:"key_concepts"`
	QuestionType    QuestionType `json:"question_type"`
	Complexity      float64      `json:"complexity"`
}
