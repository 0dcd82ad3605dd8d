package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2025-03-14T09:26:53.589793Z", time.Date(2025, 3, 14, 9, 26, 53, 589793000, time.UTC)},
		{"2025-03-14T09:26:53+02:00", time.Date(2025, 3, 14, 7, 26, 53, 0, time.UTC)},
		{"2025-03-14T09:26:53.589793", time.Date(2025, 3, 14, 9, 26, 53, 589793000, time.Local)},
		{"2025-03-14T09:26:53", time.Date(2025, 3, 14, 9, 26, 53, 0, time.Local)},
		{"2025-03-14 09:26:53", time.Date(2025, 3, 14, 9, 26, 53, 0, time.Local)},
	}
	for _, tt := range tests {
		got, err := ParseTimestamp(tt.in)
		require.NoError(t, err, tt.in)
		assert.True(t, got.Equal(tt.want), "%s: got %v", tt.in, got)
	}

	_, err := ParseTimestamp("14/03/2025")
	assert.Error(t, err)
}

func TestMemory_UnmarshalJSON(t *testing.T) {
	var m Memory
	require.NoError(t, json.Unmarshal([]byte(`{
		"content": "Input: hi | Response: hello",
		"timestamp": "2025-03-14T09:26:53.589793",
		"memory_type": "episodic",
		"importance": 0.4,
		"emotional_impact": -0.2,
		"related_thoughts": ["one"]
	}`), &m))

	assert.Equal(t, "Input: hi | Response: hello", m.Content)
	assert.True(t, m.Timestamp.Equal(time.Date(2025, 3, 14, 9, 26, 53, 589793000, time.Local)))
	assert.Equal(t, 0.4, m.Importance)
	assert.Equal(t, -0.2, m.EmotionalImpact)
	assert.Equal(t, []string{"one"}, m.RelatedThoughts)

	// written back as RFC 3339, which reads back to the same instant
	b, err := json.Marshal(m)
	require.NoError(t, err)
	var again Memory
	require.NoError(t, json.Unmarshal(b, &again))
	assert.True(t, again.Timestamp.Equal(m.Timestamp))

	assert.Error(t, json.Unmarshal([]byte(`{"timestamp": 12}`), &m))
}
