// Package agent wires perception, memory, deliberation, and response
// synthesis into the single Think entry point.
package agent

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/rcliao/sentiment-agent/internal/deliberation"
	"github.com/rcliao/sentiment-agent/internal/memory"
	"github.com/rcliao/sentiment-agent/internal/model"
	"github.com/rcliao/sentiment-agent/internal/perception"
	"github.com/rcliao/sentiment-agent/internal/response"
	"github.com/rcliao/sentiment-agent/internal/store"
)

const (
	// DefaultName is used when Options.Name is empty.
	DefaultName = "ARIA"

	// Fallback is returned by Think when a cycle fails.
	Fallback = "I'm having trouble processing that right now. Could you rephrase it?"

	// ReflectionPrompt is the stimulus SelfReflect thinks about.
	ReflectionPrompt = "How am I developing as a thinking entity? What patterns do I notice in my own thoughts?"

	// snapshotThoughts is how many recent thoughts the personality snapshot counts.
	snapshotThoughts = 5
)

// Stage names a pipeline step.
type Stage string

const (
	StagePerceive    Stage = "perceive"
	StageRecall      Stage = "recall"
	StageContemplate Stage = "contemplate"
	StageRespond     Stage = "respond"
	StageStore       Stage = "store"
)

// PipelineFault reports a failed cycle. No memory is recorded for it.
type PipelineFault struct {
	Stage Stage
	Err   error
}

func (e *PipelineFault) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *PipelineFault) Unwrap() error { return e.Err }

// Options configures a new Agent.
type Options struct {
	Name string

	// StorePath defaults to store.DefaultPath(Backend, Name).
	StorePath string
	Backend   store.Kind

	// Traits are merged over model.DefaultTraits.
	Traits       model.Traits
	Dispositions model.Dispositions
	HistoryLimit int

	// Analyzer defaults to the lexicon analyzer.
	Analyzer perception.Analyzer
	Logger   *zap.Logger

	// Clock stamps thoughts and memories. Defaults to time.Now.
	Clock func() time.Time
}

// Agent is one conversational agent with its own memory and deliberation
// state. Cycles on one Agent run one at a time.
type Agent struct {
	name         string
	dispositions model.Dispositions
	analyzer     perception.Analyzer
	memory       *memory.Store
	engine       *deliberation.Engine
	backend      store.Backend
	logger       *zap.Logger

	mu      sync.Mutex // serializes cycles
	entropy *rand.Rand
}

// New builds an agent and loads its memory store. A store that fails to
// load leaves the agent with an empty memory; only an unopenable backend
// is an error.
func New(ctx context.Context, opts Options) (*Agent, error) {
	name := strings.TrimSpace(opts.Name)
	if name == "" {
		name = DefaultName
	}
	kind := opts.Backend
	if kind == "" {
		kind = store.KindJSON
	}
	path := opts.StorePath
	if path == "" {
		path = store.DefaultPath(kind, name)
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}

	traits := model.DefaultTraits().Merge(opts.Traits)
	if err := traits.Validate(); err != nil {
		return nil, fmt.Errorf("traits: %w", err)
	}
	dispositions := model.DefaultDispositions()
	for k, v := range opts.Dispositions {
		dispositions[k] = v
	}

	backend, err := store.Open(kind, path)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	analyzer := opts.Analyzer
	if analyzer == nil {
		analyzer = perception.NewLexicon(logger)
	}

	a := &Agent{
		name:         name,
		dispositions: dispositions,
		analyzer:     analyzer,
		memory:       memory.Open(ctx, backend, memory.WithLogger(logger), memory.WithClock(clock)),
		engine: deliberation.New(traits,
			deliberation.WithHistoryLimit(opts.HistoryLimit),
			deliberation.WithLogger(logger),
			deliberation.WithClock(clock)),
		backend: backend,
		logger:  logger.Named("agent").With(zap.String("agent", name)),
		entropy: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	a.logger.Info("agent initialized",
		zap.String("store", backend.Path()),
		zap.Int("memories", a.memory.Len()))
	return a, nil
}

// Name returns the agent's display name.
func (a *Agent) Name() string { return a.name }

// Close releases the memory backend.
func (a *Agent) Close() error { return a.backend.Close() }

// Result is the full outcome of one cycle.
type Result struct {
	ID         string           `json:"id"`
	Response   string           `json:"response"`
	Perception model.Perception `json:"perception"`
	Memories   []model.Memory   `json:"recalled"`
	Thoughts   []model.Thought  `json:"thoughts"`
	Memory     model.Memory     `json:"memory"`
	Persisted  bool             `json:"persisted"`
}

// Cycle runs perceive, recall, contemplate, respond, and store for one
// stimulus.
//
// A *PipelineFault means the cycle failed before a memory was recorded and
// Result holds only what completed. A *memory.PersistenceFault means the
// cycle succeeded and the memory is held in process but did not reach the
// backend; Result is complete with Persisted false.
func (a *Agent) Cycle(ctx context.Context, stimulus string) (res Result, err error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	res.ID = a.newCycleID()
	log := a.logger.With(zap.String("cycle", res.ID))
	log.Info("starting thinking process", zap.String("stimulus", perception.Preview(stimulus, 30)))

	stage := StagePerceive
	defer func() {
		if r := recover(); r != nil {
			err = &PipelineFault{Stage: stage, Err: fmt.Errorf("panic: %v", r)}
			log.Error("error in thinking process", zap.String("stage", string(stage)), zap.Error(err))
		}
	}()
	fail := func(e error) (Result, error) {
		f := &PipelineFault{Stage: stage, Err: e}
		log.Error("error in thinking process", zap.String("stage", string(stage)), zap.Error(e))
		return res, f
	}

	res.Perception, err = a.analyzer.Analyze(ctx, stimulus)
	if err != nil {
		return fail(err)
	}

	stage = StageRecall
	res.Memories, err = a.memory.Recall(ctx, res.Perception)
	if err != nil {
		return fail(err)
	}

	stage = StageContemplate
	res.Thoughts, err = a.engine.Contemplate(ctx, res.Perception, res.Memories)
	if err != nil {
		return fail(err)
	}

	stage = StageRespond
	res.Response = response.Respond(res.Thoughts)

	stage = StageStore
	if err := ctx.Err(); err != nil {
		return fail(err)
	}
	res.Memory, err = a.memory.Commit(ctx, res.Perception, res.Thoughts, res.Response)
	var pf *memory.PersistenceFault
	switch {
	case errors.As(err, &pf):
		log.Warn("memory kept in process only", zap.Error(err))
		return res, err
	case err != nil:
		return fail(err)
	}

	res.Persisted = true
	log.Info("thinking process completed successfully",
		zap.Int("thoughts", len(res.Thoughts)),
		zap.Int("recalled", len(res.Memories)))
	return res, nil
}

// Think returns the agent's reply to stimulus. A failed cycle yields
// Fallback; a persistence failure still yields the reply.
func (a *Agent) Think(ctx context.Context, stimulus string) string {
	res, err := a.Cycle(ctx, stimulus)
	var pf *PipelineFault
	if errors.As(err, &pf) {
		return Fallback
	}
	return res.Response
}

// SelfReflect thinks about the agent's own development.
func (a *Agent) SelfReflect(ctx context.Context) string {
	return a.Think(ctx, ReflectionPrompt)
}

// RecentThoughts returns up to n of the latest deliberation thoughts,
// oldest first. It does not start a cycle.
func (a *Agent) RecentThoughts(n int) []model.Thought {
	return a.engine.Recent(n)
}

// Snapshot is a read-only view of the agent's personality state.
type Snapshot struct {
	Name           string             `json:"name"`
	Dispositions   model.Dispositions `json:"personality_traits"`
	Traits         model.Traits       `json:"dialogue_traits"`
	TotalMemories  int                `json:"total_memories"`
	RecentThoughts int                `json:"recent_thoughts"`
	StorePath      string             `json:"memory_file"`
}

// Personality returns the current personality snapshot.
func (a *Agent) Personality() Snapshot {
	return Snapshot{
		Name:           a.name,
		Dispositions:   a.dispositions.Clone(),
		Traits:         a.engine.Traits(),
		TotalMemories:  a.memory.Len(),
		RecentThoughts: len(a.engine.Recent(snapshotThoughts)),
		StorePath:      a.memory.Path(),
	}
}

// Memories returns a copy of every memory held in process, oldest first.
func (a *Agent) Memories() []model.Memory {
	return a.memory.All()
}

// LoadErr reports the persistence fault from loading the store, if any.
func (a *Agent) LoadErr() error {
	return a.memory.LoadErr()
}

func (a *Agent) newCycleID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), a.entropy).String()
}
