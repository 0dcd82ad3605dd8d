// Package memory holds the agent's ordered experience sequence and the
// recall and commit rules over it.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/rcliao/sentiment-agent/internal/model"
	"github.com/rcliao/sentiment-agent/internal/store"
)

// RecallLimit is the maximum number of memories Recall returns.
const RecallLimit = 3

// PersistenceFault reports a load or save failure against the backend.
// It never invalidates the in-process sequence.
type PersistenceFault struct {
	Op   string // "load" or "save"
	Path string
	Err  error
}

func (e *PersistenceFault) Error() string {
	return fmt.Sprintf("memory %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *PersistenceFault) Unwrap() error { return e.Err }

// Store is the in-process memory sequence backed by a store.Backend.
// Memories are append-only: nothing is mutated or removed once added.
type Store struct {
	backend store.Backend
	logger  *zap.Logger
	now     func() time.Time

	mu       sync.RWMutex
	memories []model.Memory
	loadErr  error
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the event sink.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock overrides the timestamp source for new memories.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// Open loads the backend's persisted sequence. Load failures degrade to an
// empty sequence; the fault is logged and kept for LoadErr.
func Open(ctx context.Context, backend store.Backend, opts ...Option) *Store {
	s := &Store{
		backend:  backend,
		logger:   zap.NewNop(),
		now:      time.Now,
		memories: []model.Memory{},
	}
	for _, o := range opts {
		o(s)
	}
	s.logger = s.logger.Named("memory")

	loaded, err := backend.Load(ctx)
	if err != nil {
		s.loadErr = &PersistenceFault{Op: "load", Path: backend.Path(), Err: err}
		s.logger.Warn("could not load memories", zap.String("path", backend.Path()), zap.Error(err))
		return s
	}
	s.memories = loaded
	s.logger.Info("loaded memories", zap.Int("count", len(loaded)), zap.String("path", backend.Path()))
	return s
}

// LoadErr returns the *PersistenceFault from Open, or nil.
func (s *Store) LoadErr() error { return s.loadErr }

// Path returns the backend location.
func (s *Store) Path() string { return s.backend.Path() }

// Len returns the number of memories held in process.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.memories)
}

// All returns a copy of the sequence, oldest first.
func (s *Store) All() []model.Memory {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Memory, len(s.memories))
	copy(out, s.memories)
	return out
}

// Recall returns up to RecallLimit memories sharing at least one
// whitespace token with the perception's key concepts, ordered by
// importance then timestamp, both descending.
func (s *Store) Recall(ctx context.Context, p model.Perception) ([]model.Memory, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(p.KeyConcepts) == 0 {
		return []model.Memory{}, nil
	}

	concepts := make(map[string]bool, len(p.KeyConcepts))
	for _, c := range p.KeyConcepts {
		concepts[c] = true
	}

	s.mu.RLock()
	var candidates []model.Memory
	for _, m := range s.memories {
		if sharesToken(m.Content, concepts) {
			candidates = append(candidates, m)
		}
	}
	s.mu.RUnlock()

	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.Importance != b.Importance {
			return a.Importance > b.Importance
		}
		return a.Timestamp.After(b.Timestamp)
	})

	if len(candidates) > RecallLimit {
		candidates = candidates[:RecallLimit]
	}
	if candidates == nil {
		candidates = []model.Memory{}
	}
	return candidates, nil
}

func sharesToken(content string, concepts map[string]bool) bool {
	for _, w := range strings.Fields(strings.ToLower(content)) {
		if concepts[w] {
			return true
		}
	}
	return false
}

// Commit records one completed interaction and rewrites the backend.
// The new memory is always retained in process; a failed save is logged
// and returned as a *PersistenceFault alongside the memory.
func (s *Store) Commit(ctx context.Context, p model.Perception, thoughts []model.Thought, response string) (model.Memory, error) {
	related := make([]string, 0, model.MaxRelatedThoughts)
	for _, t := range thoughts {
		if len(related) == model.MaxRelatedThoughts {
			break
		}
		related = append(related, t.Content)
	}

	m := model.Memory{
		Content:         fmt.Sprintf("Input: %s | Response: %s", p.RawInput, response),
		Timestamp:       s.now(),
		MemoryType:      model.MemoryEpisodic,
		Importance:      Importance(p, thoughts),
		EmotionalImpact: EmotionalImpact(thoughts),
		RelatedThoughts: related,
	}

	s.mu.Lock()
	s.memories = append(s.memories, m)
	snapshot := make([]model.Memory, len(s.memories))
	copy(snapshot, s.memories)
	s.mu.Unlock()

	if err := s.save(ctx, snapshot); err != nil {
		s.logger.Error("could not save memories", zap.String("path", s.backend.Path()), zap.Error(err))
		return m, &PersistenceFault{Op: "save", Path: s.backend.Path(), Err: err}
	}

	s.logger.Info("stored new memory",
		zap.Float64("importance", m.Importance),
		zap.Int("total", len(snapshot)))
	return m, nil
}

// save writes snapshot to the backend. A panicking backend is reported as
// an error: by then the memory is already part of the sequence.
func (s *Store) save(ctx context.Context, snapshot []model.Memory) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("backend panic: %v", r)
		}
	}()
	return s.backend.Save(ctx, snapshot)
}

// Importance weighs complexity, peak confidence, and peak emotional
// intensity, capped to [0, 1].
func Importance(p model.Perception, thoughts []model.Thought) float64 {
	var maxConfidence, maxIntensity float64
	for i, t := range thoughts {
		intensity := t.EmotionalValence
		if intensity < 0 {
			intensity = -intensity
		}
		if i == 0 || t.Confidence > maxConfidence {
			maxConfidence = t.Confidence
		}
		if i == 0 || intensity > maxIntensity {
			maxIntensity = intensity
		}
	}
	score := 0.3*p.Complexity + 0.4*maxConfidence + 0.3*maxIntensity
	return model.Clamp(score, 0, 1)
}

// EmotionalImpact is the mean thought valence, or 0 with no thoughts.
func EmotionalImpact(thoughts []model.Thought) float64 {
	if len(thoughts) == 0 {
		return 0
	}
	var sum float64
	for _, t := range thoughts {
		sum += t.EmotionalValence
	}
	return model.Clamp(sum/float64(len(thoughts)), -1, 1)
}
