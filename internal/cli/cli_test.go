package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcliao/sentiment-agent/internal/agent"
	"github.com/rcliao/sentiment-agent/internal/experiment"
	"github.com/rcliao/sentiment-agent/internal/model"
	"github.com/rcliao/sentiment-agent/internal/store"
)

// run executes the root command with the given stdin and returns stdout.
func run(t *testing.T, stdin string, args ...string) string {
	t.Helper()
	nameFlag, storeFlag, backendFlag, traitsFlag, logLevelFlag = "", "", "", "", ""
	var out bytes.Buffer
	RootCmd.SetOut(&out)
	RootCmd.SetIn(strings.NewReader(stdin))
	RootCmd.SetArgs(args)
	require.NoError(t, RootCmd.Execute())
	return out.String()
}

func TestThinkCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "aria_memory.json")

	out := run(t, "", "think", "--store", path, "--backend", "json", "--quiet",
		"What", "is", "memory?")
	assert.Equal(t, "From my perspective, i need to access what i know about this topic\n", out)

	mems, err := store.NewJSONFile(path).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, mems, 1)
	assert.Contains(t, mems[0].Content, "Input: What is memory?")
}

func TestThinkCommand_Stdin(t *testing.T) {
	path := filepath.Join(t.TempDir(), "aria_memory.json")

	out := run(t, "  Why do stars shine\n", "think", "--store", path, "--backend", "json", "--quiet")
	assert.Equal(t, "From my perspective, this touches on something fundamental that i should consider carefully\n", out)

	mems, err := store.NewJSONFile(path).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, mems, 1)
	assert.Contains(t, mems[0].Content, "Input: Why do stars shine |")
}

func TestReadPiped(t *testing.T) {
	got, err := readPiped(strings.NewReader("hello"))
	require.NoError(t, err)
	assert.Equal(t, "hello", got)

	// a closed file cannot be inspected and is treated as no input
	f, err := os.CreateTemp(t.TempDir(), "stdin")
	require.NoError(t, err)
	require.NoError(t, f.Close())
	got, err = readPiped(f)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestPersonalityCommand(t *testing.T) {
	dir := t.TempDir()
	persona := filepath.Join(dir, "persona.yaml")
	require.NoError(t, os.WriteFile(persona, []byte("traits:\n  curiosity: 0.3\n"), 0o644))

	out := run(t, "", "personality", "--store", filepath.Join(dir, "nova.json"), "--backend", "json",
		"--name", "Nova", "--traits", persona)

	var snap agent.Snapshot
	require.NoError(t, json.Unmarshal([]byte(out), &snap))
	assert.Equal(t, "Nova", snap.Name)
	assert.Equal(t, 0.3, snap.Traits[model.TraitCuriosity])
	assert.Equal(t, 0.9, snap.Traits[model.TraitIntrospection])
	assert.Zero(t, snap.TotalMemories)
}

func TestExportImportSearchStats(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.json")
	dst := filepath.Join(dir, "dst.db")

	run(t, "", "think", "--store", src, "--backend", "json", "--quiet", "I love geometry")
	run(t, "", "think", "--store", src, "--backend", "json", "--quiet", "Tell me about oceans")

	exported := run(t, "", "export", "--store", src, "--backend", "json")
	var mems []model.Memory
	require.NoError(t, json.Unmarshal([]byte(exported), &mems))
	require.Len(t, mems, 2)

	out := run(t, exported, "import", "--store", dst, "--backend", "sqlite")
	assert.Equal(t, `{"ok":true,"imported":2}`+"\n", out)

	// importing the same export again skips duplicates
	out = run(t, exported, "import", "--store", dst, "--backend", "sqlite")
	assert.Equal(t, `{"ok":true,"imported":0}`+"\n", out)

	out = run(t, "", "search", "--store", dst, "--backend", "sqlite", "geometry")
	var found []model.Memory
	require.NoError(t, json.Unmarshal([]byte(out), &found))
	require.Len(t, found, 1)
	assert.Contains(t, found[0].Content, "I love geometry")

	out = run(t, "", "search", "--store", dst, "--backend", "sqlite", "volcanoes")
	assert.Equal(t, "[]\n", out)

	out = run(t, "", "stats", "--store", dst, "--backend", "sqlite")
	var st store.Stats
	require.NoError(t, json.Unmarshal([]byte(out), &st))
	assert.Equal(t, 2, st.TotalMemories)
}

func TestChatCommand_Simple(t *testing.T) {
	path := filepath.Join(t.TempDir(), "aria_memory.json")
	out := run(t, "Hello there\n\npersonality\nexit\nnever read\n",
		"chat", "--store", path, "--backend", "json", "--simple")

	assert.Contains(t, out, "ARIA is ready for conversation")
	assert.Contains(t, out, "ARIA: From my perspective, let me process what this person is communicating to me")
	assert.Contains(t, out, "Internal thoughts:")
	assert.Contains(t, out, `"total_memories": 1`)
	assert.Contains(t, out, "Goodbye!")

	mems, err := store.NewJSONFile(path).Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, mems, 1)
}

func TestExperimentCommand(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "log.json")

	out := run(t, "", "experiment", "--store", filepath.Join(dir, "aria_memory.json"), "--backend", "json",
		"--out", logPath)
	assert.Contains(t, out, "interactions:       25")
	assert.Contains(t, out, "agent:              ARIA")
	assert.Contains(t, out, "total memories:     29")
	assert.Contains(t, out, "Interaction log saved to")

	b, err := os.ReadFile(logPath)
	require.NoError(t, err)
	var entries []experiment.Entry
	require.NoError(t, json.Unmarshal(b, &entries))
	assert.Len(t, entries, 25)
	assert.Equal(t, "basic_conversation", entries[0].Category)
}

func TestReflectCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "aria_memory.json")
	out := run(t, "", "reflect", "--store", path, "--backend", "json")
	assert.Equal(t, "ARIA: From my perspective, i need to access what i know about this topic\n", out)
}

func TestExperimentCommand_Advanced(t *testing.T) {
	dir := t.TempDir()
	out := run(t, "", "experiment", "--store", filepath.Join(dir, "aria_memory.json"), "--backend", "json",
		"--out", "", "--advanced")
	assert.Contains(t, out, "interactions:       34")
	assert.Contains(t, out, "Personality")
	assert.NotContains(t, out, "Interaction log saved to")
}
