package store

import (
	"context"
	"math"
	"os"
	"time"

	"github.com/rcliao/sentiment-agent/internal/model"
)

// Stats holds store statistics.
type Stats struct {
	Path               string         `json:"path"`
	SizeBytes          int64          `json:"size_bytes"`
	TotalMemories      int            `json:"total_memories"`
	AvgImportance      float64        `json:"avg_importance"`
	AvgEmotionalImpact float64        `json:"avg_emotional_impact"`
	ByType             map[string]int `json:"by_type"`
	OldestAt           *time.Time     `json:"oldest_at,omitempty"`
	NewestAt           *time.Time     `json:"newest_at,omitempty"`
}

// CollectStats loads the backend and summarizes its contents.
func CollectStats(ctx context.Context, b Backend) (*Stats, error) {
	st := &Stats{Path: b.Path(), ByType: map[string]int{}}

	if info, err := os.Stat(b.Path()); err == nil {
		st.SizeBytes = info.Size()
	}

	memories, err := b.Load(ctx)
	if err != nil {
		return st, err
	}
	summarize(st, memories)
	return st, nil
}

func summarize(st *Stats, memories []model.Memory) {
	st.TotalMemories = len(memories)
	if len(memories) == 0 {
		return
	}

	var importance, impact float64
	oldest, newest := memories[0].Timestamp, memories[0].Timestamp
	for _, m := range memories {
		importance += m.Importance
		impact += m.EmotionalImpact
		st.ByType[m.MemoryType]++
		if m.Timestamp.Before(oldest) {
			oldest = m.Timestamp
		}
		if m.Timestamp.After(newest) {
			newest = m.Timestamp
		}
	}
	n := float64(len(memories))
	st.AvgImportance = math.Round(importance/n*1000) / 1000
	st.AvgEmotionalImpact = math.Round(impact/n*1000) / 1000
	st.OldestAt = &oldest
	st.NewestAt = &newest
}
