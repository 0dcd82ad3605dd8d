// Package model defines the core agent data types.
package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// Memory is a durable record of one completed interaction.
type Memory struct {
	Content         string    `json:"content"`
	Timestamp       time.Time `json:"timestamp"`
	MemoryType      string    `json:"memory_type"`
	Importance      float64   `json:"importance"`
	EmotionalImpact float64   `json:"emotional_impact"`
	RelatedThoughts []string  `json:"related_thoughts"`
}

// UnmarshalJSON accepts timestamps with or without a UTC offset. Offset-less
// ISO-8601 values are read in local time.
func (m *Memory) UnmarshalJSON(data []byte) error {
	type plain Memory
	aux := struct {
		*plain
		Timestamp *string `json:"timestamp"`
	}{plain: (*plain)(m)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if aux.Timestamp == nil || *aux.Timestamp == "" {
		m.Timestamp = time.Time{}
		return nil
	}
	ts, err := ParseTimestamp(*aux.Timestamp)
	if err != nil {
		return err
	}
	m.Timestamp = ts
	return nil
}

var localLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
}

// ParseTimestamp reads an RFC 3339 timestamp, falling back to offset-less
// ISO-8601 forms in local time.
func ParseTimestamp(s string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return ts, nil
	}
	for _, layout := range localLayouts {
		if ts, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("parse timestamp %q: not ISO-8601", s)
}

// MemoryEpisodic is the only memory type currently produced.
const MemoryEpisodic = "episodic"

// MaxRelatedThoughts caps Memory.RelatedThoughts.
const MaxRelatedThoughts = 2

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
