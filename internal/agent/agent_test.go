package agent

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/rcliao/sentiment-agent/internal/memory"
	"github.com/rcliao/sentiment-agent/internal/model"
	"github.com/rcliao/sentiment-agent/internal/perception"
	"github.com/rcliao/sentiment-agent/internal/response"
	"github.com/rcliao/sentiment-agent/internal/store"
)

func newTestAgent(t *testing.T, opts Options) *Agent {
	t.Helper()
	if opts.StorePath == "" {
		opts.StorePath = filepath.Join(t.TempDir(), "aria_memory.json")
	}
	a, err := New(context.Background(), opts)
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })
	return a
}

func TestNew_Defaults(t *testing.T) {
	dir := t.TempDir()
	wd, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(wd) })

	a, err := New(context.Background(), Options{})
	require.NoError(t, err)
	defer a.Close()

	snap := a.Personality()
	assert.Equal(t, "ARIA", snap.Name)
	assert.Equal(t, "aria_memory.json", snap.StorePath)
	assert.Equal(t, model.DefaultTraits(), snap.Traits)
	assert.Equal(t, model.DefaultDispositions(), snap.Dispositions)
	assert.Zero(t, snap.TotalMemories)
	assert.Zero(t, snap.RecentThoughts)
}

func TestNew_RejectsOutOfRangeTraits(t *testing.T) {
	_, err := New(context.Background(), Options{
		StorePath: filepath.Join(t.TempDir(), "m.json"),
		Traits:    model.Traits{model.TraitCuriosity: 1.5},
	})
	assert.Error(t, err)
}

func TestThink_FullCycle(t *testing.T) {
	ctx := context.Background()
	a := newTestAgent(t, Options{})

	reply := a.Think(ctx, "What do you think about the nature of consciousness?")
	// meta-reflection sits exactly at the 0.7 support gate, so no second clause
	assert.Equal(t, "From my perspective, i need to access what i know about this topic", reply)
	assert.Equal(t, 1, a.Personality().TotalMemories)

	// the second stimulus shares "consciousness" and recalls the first
	res, err := a.Cycle(ctx, "Tell me about consciousness again")
	require.NoError(t, err)
	require.Len(t, res.Memories, 1)
	require.Len(t, res.Thoughts, 4)
	assert.Equal(t, model.KindReflection, res.Thoughts[1].Kind)
	assert.True(t, res.Persisted)
	assert.Equal(t, "Input: Tell me about consciousness again | Response: "+res.Response, res.Memory.Content)

	persisted, err := store.NewJSONFile(a.Personality().StorePath).Load(ctx)
	require.NoError(t, err)
	assert.Len(t, persisted, 2)
}

func TestThink_PerceiveFailureReturnsFallback(t *testing.T) {
	ctx := context.Background()
	core, logs := observer.New(zapcore.DebugLevel)
	boom := errors.New("analyzer exploded")
	a := newTestAgent(t, Options{
		Logger: zap.New(core),
		Analyzer: perception.Func(func(context.Context, string) (model.Perception, error) {
			return model.Perception{}, boom
		}),
	})
	before := a.Personality().TotalMemories

	assert.Equal(t, Fallback, a.Think(ctx, "anything at all"))
	assert.Equal(t, before, a.Personality().TotalMemories)
	assert.Empty(t, a.RecentThoughts(5))

	_, err := a.Cycle(ctx, "again")
	var fault *PipelineFault
	require.ErrorAs(t, err, &fault)
	assert.Equal(t, StagePerceive, fault.Stage)
	assert.ErrorIs(t, err, boom)

	entries := logs.FilterMessage("error in thinking process").All()
	require.Len(t, entries, 2)
	assert.Equal(t, "perceive", entries[0].ContextMap()["stage"])
}

func TestThink_PanicIsContained(t *testing.T) {
	a := newTestAgent(t, Options{
		Analyzer: perception.Func(func(context.Context, string) (model.Perception, error) {
			panic("nil map somewhere")
		}),
	})

	assert.Equal(t, Fallback, a.Think(context.Background(), "hello"))
	assert.Zero(t, a.Personality().TotalMemories)

	_, err := a.Cycle(context.Background(), "hello")
	var fault *PipelineFault
	require.ErrorAs(t, err, &fault)
	assert.Contains(t, fault.Error(), "nil map somewhere")
}

func TestThink_CanceledContextRecordsNothing(t *testing.T) {
	a := newTestAgent(t, Options{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Equal(t, Fallback, a.Think(ctx, "Why is the sky blue"))
	assert.Zero(t, a.Personality().TotalMemories)
}

func TestCycle_PersistenceFaultStillReplies(t *testing.T) {
	dir := t.TempDir()
	// a directory where the store file should be makes every save fail
	path := filepath.Join(dir, "aria_memory.json")
	require.NoError(t, os.Mkdir(path, 0o755))

	a := newTestAgent(t, Options{StorePath: path})
	res, err := a.Cycle(context.Background(), "I love this wonderful day")

	var pf *memory.PersistenceFault
	require.ErrorAs(t, err, &pf)
	assert.False(t, res.Persisted)
	assert.NotEqual(t, Fallback, res.Response)
	assert.Equal(t, 1, a.Personality().TotalMemories)

	assert.NotEqual(t, Fallback, a.Think(context.Background(), "I love this wonderful day"))
	assert.Equal(t, 2, a.Personality().TotalMemories)
}

func TestSelfReflect(t *testing.T) {
	a := newTestAgent(t, Options{})
	reply := a.SelfReflect(context.Background())
	assert.True(t, strings.HasPrefix(reply, "From my perspective, i need to access what i know"))

	mems := a.Memories()
	require.Len(t, mems, 1)
	assert.Contains(t, mems[0].Content, ReflectionPrompt)
}

func TestRecentThoughtsAndSnapshot(t *testing.T) {
	ctx := context.Background()
	a := newTestAgent(t, Options{
		Name:         "Nova",
		HistoryLimit: 4,
		Traits:       model.Traits{model.TraitCuriosity: 0.2},
		Dispositions: model.Dispositions{"analytical": false},
	})

	a.Think(ctx, "first statement")
	a.Think(ctx, "second statement")
	a.Think(ctx, "third statement")

	recent := a.RecentThoughts(3)
	require.Len(t, recent, 3)
	for _, th := range recent {
		assert.NotEqual(t, model.KindQuestion, th.Kind, "curiosity below the gate")
	}

	snap := a.Personality()
	assert.Equal(t, "Nova", snap.Name)
	assert.Equal(t, 0.2, snap.Traits[model.TraitCuriosity])
	assert.Equal(t, 0.9, snap.Traits[model.TraitIntrospection])
	assert.False(t, snap.Dispositions["analytical"])
	assert.Equal(t, 3, snap.TotalMemories)
	assert.Equal(t, 4, snap.RecentThoughts)
}

func TestNew_CorruptStoreStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "m.json")
	require.NoError(t, os.WriteFile(path, []byte("]["), 0o644))

	a := newTestAgent(t, Options{StorePath: path})
	assert.Zero(t, a.Personality().TotalMemories)
	assert.ErrorIs(t, a.LoadErr(), store.ErrCorrupt)

	a.Think(context.Background(), "fresh start")
	reloaded, err := store.NewJSONFile(path).Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, reloaded, 1)
}

func TestNew_SQLiteBackend(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "aria.db")
	clock := func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }

	a, err := New(ctx, Options{Backend: store.KindSQLite, StorePath: path, Clock: clock})
	require.NoError(t, err)
	a.Think(ctx, "How do memories persist?")
	require.NoError(t, a.Close())

	b, err := New(ctx, Options{Backend: store.KindSQLite, StorePath: path})
	require.NoError(t, err)
	defer b.Close()
	mems := b.Memories()
	require.Len(t, mems, 1)
	assert.True(t, mems[0].Timestamp.Equal(clock()))
}

func TestThink_EmptyStimulus(t *testing.T) {
	a := newTestAgent(t, Options{})
	reply := a.Think(context.Background(), "")
	assert.NotEqual(t, response.Placeholder, reply)
	assert.True(t, strings.HasPrefix(reply, "From my perspective, let me process"))
}
