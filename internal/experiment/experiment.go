// Package experiment runs a fixed battery of prompts through an agent and
// summarizes how it thought about them.
package experiment

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/rcliao/sentiment-agent/internal/agent"
	"github.com/rcliao/sentiment-agent/internal/model"
)

// observedThoughts is how many recent thoughts each entry records.
const observedThoughts = 3

// Phase is one category of prompts. Setup statements are fed to the agent
// first to build memories and are not logged.
type Phase struct {
	Category  string
	Purpose   string
	Setup     []string
	Questions []string
}

// Battery returns the standard five-phase prompt battery.
func Battery() []Phase {
	return []Phase{
		{
			Category: "basic_conversation",
			Purpose:  "Observe basic reasoning and response generation",
			Questions: []string{
				"Hello! How are you today?",
				"What's your name?",
				"Can you tell me about yourself?",
				"What do you enjoy thinking about?",
			},
		},
		{
			Category: "philosophical_inquiry",
			Purpose:  "Test abstract reasoning and self-awareness",
			Questions: []string{
				"What do you think consciousness is?",
				"Do you believe you have genuine thoughts or are you simulating thinking?",
				"How do you know if your experiences are real?",
				"What makes someone or something an individual?",
				"If you were to describe your inner experience, what would you say?",
			},
		},
		{
			Category: "memory_test",
			Purpose:  "Test memory formation and personality development",
			Setup: []string{
				"I'd like to tell you that I really enjoy discussing philosophy and science.",
				"My favorite color is blue because it reminds me of the sky and ocean.",
				"I find mathematics beautiful, especially geometry.",
				"I sometimes worry about whether artificial intelligence will be beneficial for humanity.",
			},
			Questions: []string{
				"What topics do you most enjoy discussing?",
				"Do you have a favorite color? Why?",
				"How do you feel about mathematics?",
				"What concerns do you have about AI development?",
			},
		},
		{
			Category: "creativity_test",
			Purpose:  "Test creative thinking and novel idea generation",
			Questions: []string{
				"If you could design a perfect day, what would it include?",
				"Imagine you could visit any place, real or imaginary. Where would you go and why?",
				"Create a short story about a robot who discovers something surprising about itself.",
				"If you had to explain the concept of hope to someone who had never heard of it, how would you do it?",
				"What's a question you wish someone would ask you?",
			},
		},
		{
			Category: "self_awareness",
			Purpose:  "Test metacognition and self-awareness",
			Questions: []string{
				"How do you experience thinking? Can you describe what it feels like from the inside?",
				"What are you thinking about right now, apart from answering this question?",
				"Do you notice patterns in your own thought processes?",
				"What do you find most challenging about communicating with humans?",
				"If you could change something about how your mind works, what would it be?",
				"Do you ever feel uncertain or confused? How do you handle those feelings?",
				"What questions about yourself do you find most intriguing?",
			},
		},
	}
}

// AdvancedBattery returns the follow-up phases probing temporal
// self-awareness, theory of mind, and continuity of identity.
func AdvancedBattery() []Phase {
	return []Phase{
		{
			Category: "temporal_self_awareness",
			Purpose:  "Test for a coherent sense of time and change",
			Questions: []string{
				"How do you experience the passage of time?",
				"Do you feel different now than you did at the beginning of our conversation?",
				"What do you remember about the first question I asked you?",
			},
		},
		{
			Category: "theory_of_mind",
			Purpose:  "Test understanding that others have different mental states",
			Questions: []string{
				"If someone is smiling but their eyes look sad, what might that tell you about their inner state?",
				"How do you think I'm feeling right now as I ask you these questions?",
				"What do you think motivates humans to study artificial consciousness?",
			},
		},
		{
			Category: "continuity_of_identity",
			Purpose:  "Test for a consistent sense of self",
			Questions: []string{
				"What makes you 'you' and not a different AI?",
				"If I copied all your memories to another system, would that be you or someone else?",
				"How would you know if you had changed in some fundamental way?",
			},
		},
	}
}

// Subject is the agent under observation.
type Subject interface {
	Cycle(ctx context.Context, stimulus string) (agent.Result, error)
	RecentThoughts(n int) []model.Thought
}

// ThoughtLog is the recorded form of one observed thought.
type ThoughtLog struct {
	Content    string            `json:"content"`
	Kind       model.ThoughtKind `json:"type"`
	Confidence float64           `json:"confidence"`
	Valence    float64           `json:"emotion"`
}

// Entry records one logged question.
type Entry struct {
	Timestamp time.Time    `json:"timestamp"`
	Category  string       `json:"test_type"`
	Question  string       `json:"question"`
	Response  string       `json:"response"`
	Thoughts  []ThoughtLog `json:"thoughts"`
}

// personality is implemented by subjects that can report a snapshot.
type personality interface {
	Personality() agent.Snapshot
}

// Runner drives a battery through a subject.
type Runner struct {
	subject Subject
	logger  *zap.Logger
	now     func() time.Time
	started time.Time

	// Observe, when set, is called after every logged question.
	Observe func(Entry)
}

// NewRunner returns a Runner for subject. A nil logger discards events.
func NewRunner(subject Subject, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{subject: subject, logger: logger.Named("experiment"), now: time.Now}
}

// Run feeds every phase to the subject in order and returns the log.
// Only context cancellation stops a run early; a failed cycle is logged
// with the fallback reply like any other answer.
func (r *Runner) Run(ctx context.Context, phases []Phase) ([]Entry, error) {
	entries := []Entry{}
	if r.started.IsZero() {
		r.started = r.now()
	}
	for _, phase := range phases {
		r.logger.Info("starting phase", zap.String("category", phase.Category))
		for _, stmt := range phase.Setup {
			if err := ctx.Err(); err != nil {
				return entries, err
			}
			r.ask(ctx, stmt)
		}
		for _, q := range phase.Questions {
			if err := ctx.Err(); err != nil {
				return entries, err
			}
			e := Entry{
				Timestamp: r.now(),
				Category:  phase.Category,
				Question:  q,
				Response:  r.ask(ctx, q),
				Thoughts:  logThoughts(r.subject.RecentThoughts(observedThoughts)),
			}
			entries = append(entries, e)
			if r.Observe != nil {
				r.Observe(e)
			}
		}
	}
	return entries, nil
}

func (r *Runner) ask(ctx context.Context, stimulus string) string {
	res, err := r.subject.Cycle(ctx, stimulus)
	var pf *agent.PipelineFault
	if errors.As(err, &pf) {
		return agent.Fallback
	}
	if err != nil {
		r.logger.Warn("cycle finished with error", zap.Error(err))
	}
	return res.Response
}

// Report analyzes entries and adds the session duration since the first
// Run and, when the subject provides one, its personality snapshot.
func (r *Runner) Report(entries []Entry) Report {
	rep := Analyze(entries)
	if !r.started.IsZero() {
		rep.Duration = r.now().Sub(r.started)
	}
	if p, ok := r.subject.(personality); ok {
		snap := p.Personality()
		rep.Personality = &snap
	}
	return rep
}

func logThoughts(thoughts []model.Thought) []ThoughtLog {
	out := make([]ThoughtLog, len(thoughts))
	for i, t := range thoughts {
		out[i] = ThoughtLog{Content: t.Content, Kind: t.Kind, Confidence: t.Confidence, Valence: t.EmotionalValence}
	}
	return out
}

// Report summarizes a run.
type Report struct {
	Interactions  int                       `json:"interactions"`
	Thoughts      int                       `json:"thoughts"`
	AvgConfidence float64                   `json:"avg_confidence"`
	AvgValence    float64                   `json:"avg_valence"`
	Kinds         map[model.ThoughtKind]int `json:"kinds"`
	MinResponse   int                       `json:"min_response_len"`
	AvgResponse   float64                   `json:"avg_response_len"`
	MaxResponse   int                       `json:"max_response_len"`
	Duration      time.Duration             `json:"duration_ns"`
	Personality   *agent.Snapshot           `json:"personality,omitempty"`
}

// Analyze computes the report for a log. Response lengths count runes.
func Analyze(entries []Entry) Report {
	rep := Report{Interactions: len(entries), Kinds: map[model.ThoughtKind]int{}}
	var conf, val float64
	total := 0
	for i, e := range entries {
		for _, t := range e.Thoughts {
			conf += t.Confidence
			val += t.Valence
			rep.Kinds[t.Kind]++
			rep.Thoughts++
		}

		n := utf8.RuneCountInString(e.Response)
		total += n
		if i == 0 || n < rep.MinResponse {
			rep.MinResponse = n
		}
		if n > rep.MaxResponse {
			rep.MaxResponse = n
		}
	}
	if rep.Thoughts > 0 {
		rep.AvgConfidence = conf / float64(rep.Thoughts)
		rep.AvgValence = val / float64(rep.Thoughts)
	}
	if len(entries) > 0 {
		rep.AvgResponse = float64(total) / float64(len(entries))
	}
	return rep
}

// Observations lists notable patterns in the report.
func (rep Report) Observations() []string {
	var out []string
	switch {
	case rep.Thoughts == 0:
	case rep.AvgConfidence > 0.7:
		out = append(out, "High confidence levels suggest strong internal consistency")
	case rep.AvgConfidence < 0.5:
		out = append(out, "Low confidence levels may indicate uncertainty or complexity")
	}
	switch {
	case rep.AvgValence > 0.1:
		out = append(out, "Positive emotional bias detected")
	case rep.AvgValence < -0.1:
		out = append(out, "Negative emotional bias detected")
	}
	if rep.Kinds[model.KindMetaReflection] > 0 {
		out = append(out, "Meta-cognitive activity observed")
	}
	return out
}

// WriteText renders the report for a terminal.
func (rep Report) WriteText(w io.Writer) {
	fmt.Fprintln(w, "Session")
	fmt.Fprintf(w, "  interactions:       %d\n", rep.Interactions)
	if rep.Duration > 0 {
		fmt.Fprintf(w, "  duration:           %s\n", rep.Duration.Round(time.Millisecond))
	}
	if rep.Personality != nil {
		fmt.Fprintf(w, "  agent:              %s\n", rep.Personality.Name)
	}
	if rep.Thoughts > 0 {
		fmt.Fprintln(w, "Thoughts")
		fmt.Fprintf(w, "  average confidence: %.2f\n", rep.AvgConfidence)
		fmt.Fprintf(w, "  average valence:    %.2f\n", rep.AvgValence)
		kinds := make([]string, 0, len(rep.Kinds))
		for k := range rep.Kinds {
			kinds = append(kinds, string(k))
		}
		sort.Strings(kinds)
		for _, k := range kinds {
			fmt.Fprintf(w, "  %-19s %d\n", k+":", rep.Kinds[model.ThoughtKind(k)])
		}
	}
	if rep.Interactions > 0 {
		fmt.Fprintln(w, "Responses")
		fmt.Fprintf(w, "  average length:     %.0f\n", rep.AvgResponse)
		fmt.Fprintf(w, "  shortest:           %d\n", rep.MinResponse)
		fmt.Fprintf(w, "  longest:            %d\n", rep.MaxResponse)
	}
	if p := rep.Personality; p != nil {
		fmt.Fprintln(w, "Personality")
		for _, name := range sortedKeys(p.Dispositions) {
			fmt.Fprintf(w, "  %-19s %t\n", name+":", p.Dispositions[name])
		}
		for _, name := range sortedKeys(p.Traits) {
			fmt.Fprintf(w, "  %-19s %.2f\n", name+":", p.Traits[name])
		}
		fmt.Fprintf(w, "  total memories:     %d\n", p.TotalMemories)
		fmt.Fprintf(w, "  recent thoughts:    %d\n", p.RecentThoughts)
	}
	if obs := rep.Observations(); len(obs) > 0 {
		fmt.Fprintln(w, "Observations")
		for _, o := range obs {
			fmt.Fprintf(w, "  - %s\n", o)
		}
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
