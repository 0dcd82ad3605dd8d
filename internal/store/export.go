package store

import (
	"context"
	"fmt"
	"time"

	"github.com/rcliao/sentiment-agent/internal/model"
)

// Import appends memories to the backend's persisted sequence, skipping
// entries identical in content and timestamp to one already stored.
// Returns the number of memories added.
func Import(ctx context.Context, b Backend, memories []model.Memory) (int, error) {
	existing, err := b.Load(ctx)
	if err != nil {
		return 0, fmt.Errorf("load existing: %w", err)
	}

	seen := make(map[string]bool, len(existing))
	for _, m := range existing {
		seen[dedupKey(m)] = true
	}

	imported := 0
	for _, m := range memories {
		if seen[dedupKey(m)] {
			continue
		}
		if m.MemoryType == "" {
			m.MemoryType = model.MemoryEpisodic
		}
		if len(m.RelatedThoughts) > model.MaxRelatedThoughts {
			m.RelatedThoughts = m.RelatedThoughts[:model.MaxRelatedThoughts]
		}
		m.Importance = model.Clamp(m.Importance, 0, 1)
		m.EmotionalImpact = model.Clamp(m.EmotionalImpact, -1, 1)
		seen[dedupKey(m)] = true
		existing = append(existing, m)
		imported++
	}

	if imported == 0 {
		return 0, nil
	}
	if err := b.Save(ctx, existing); err != nil {
		return 0, fmt.Errorf("save: %w", err)
	}
	return imported, nil
}

// Copy moves the full sequence from src to dst, replacing dst's contents.
func Copy(ctx context.Context, dst, src Backend) (int, error) {
	memories, err := src.Load(ctx)
	if err != nil {
		return 0, fmt.Errorf("load %s: %w", src.Path(), err)
	}
	if err := dst.Save(ctx, memories); err != nil {
		return 0, fmt.Errorf("save %s: %w", dst.Path(), err)
	}
	return len(memories), nil
}

func dedupKey(m model.Memory) string {
	return m.Timestamp.UTC().Format(time.RFC3339Nano) + "\x00" + m.Content
}
