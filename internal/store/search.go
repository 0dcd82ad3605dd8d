package store

import (
	"context"
	"strings"

	"github.com/rcliao/sentiment-agent/internal/model"
)

// SearchParams holds parameters for searching memories.
type SearchParams struct {
	Query string
	Limit int
}

// Searcher is implemented by backends that can search without loading
// the whole sequence.
type Searcher interface {
	Search(ctx context.Context, p SearchParams) ([]model.Memory, error)
}

// Search finds memories whose content contains the query, newest first.
func (s *SQLiteStore) Search(ctx context.Context, p SearchParams) ([]model.Memory, error) {
	limit := p.Limit
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT content, timestamp, memory_type, importance, emotional_impact, related_thoughts
		 FROM episodes WHERE content LIKE ? ORDER BY seq DESC LIMIT ?`,
		"%"+p.Query+"%", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := []model.Memory{}
	for rows.Next() {
		m, err := scanMemory(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, m)
	}
	return results, rows.Err()
}

// Search loads the file and filters it in memory, newest first. Matching
// is case-insensitive, like SQLite's LIKE for ASCII text.
func (f *JSONFile) Search(ctx context.Context, p SearchParams) ([]model.Memory, error) {
	limit := p.Limit
	if limit <= 0 {
		limit = 20
	}

	memories, err := f.Load(ctx)
	if err != nil {
		return nil, err
	}

	query := strings.ToLower(p.Query)
	results := []model.Memory{}
	for i := len(memories) - 1; i >= 0 && len(results) < limit; i-- {
		if strings.Contains(strings.ToLower(memories[i].Content), query) {
			results = append(results, memories[i])
		}
	}
	return results, nil
}
