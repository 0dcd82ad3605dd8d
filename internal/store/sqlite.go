package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"github.com/rcliao/sentiment-agent/internal/model"
)

// SQLiteStore implements Backend using SQLite.
type SQLiteStore struct {
	db   *sql.DB
	path string

	mu      sync.Mutex // guards entropy
	entropy *rand.Rand
}

// NewSQLiteStore opens or creates a SQLite database at the given path.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &SQLiteStore{
		db:      db,
		path:    dbPath,
		entropy: rand.New(rand.NewSource(time.Now().UnixNano())),
	}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) newID(t time.Time) string {
	if t.Before(time.Unix(0, 0)) {
		// ulid timestamps are unsigned milliseconds since the epoch
		t = time.Now()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(t), s.entropy).String()
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS episodes (
		id               TEXT PRIMARY KEY,
		seq              INTEGER NOT NULL UNIQUE,
		content          TEXT NOT NULL,
		timestamp        TEXT NOT NULL,
		memory_type      TEXT NOT NULL DEFAULT 'episodic',
		importance       REAL NOT NULL DEFAULT 0,
		emotional_impact REAL NOT NULL DEFAULT 0,
		related_thoughts TEXT NOT NULL DEFAULT '[]'
	);
	CREATE INDEX IF NOT EXISTS idx_episodes_importance ON episodes(importance DESC, timestamp DESC);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStore) Path() string { return s.path }

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Load(ctx context.Context) ([]model.Memory, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT content, timestamp, memory_type, importance, emotional_impact, related_thoughts
		 FROM episodes ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("query episodes: %w", err)
	}
	defer rows.Close()

	memories := []model.Memory{}
	for rows.Next() {
		m, err := scanMemory(rows)
		if err != nil {
			return nil, err
		}
		memories = append(memories, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read episodes: %w", err)
	}
	return memories, nil
}

// Save replaces every row inside one transaction, so readers see either
// the old or the new sequence. A row whose position, timestamp, and content
// are unchanged keeps its id.
func (s *SQLiteStore) Save(ctx context.Context, memories []model.Memory) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	kept, err := existingIDs(ctx, tx)
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM episodes`); err != nil {
		return fmt.Errorf("clear episodes: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO episodes (id, seq, content, timestamp, memory_type, importance, emotional_impact, related_thoughts)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, m := range memories {
		related := m.RelatedThoughts
		if related == nil {
			related = []string{}
		}
		relatedJSON, err := json.Marshal(related)
		if err != nil {
			return fmt.Errorf("encode related thoughts: %w", err)
		}
		ts := m.Timestamp.Format(time.RFC3339Nano)
		id, ok := kept[i]
		if !ok || id.key != rowKey(ts, m.Content) {
			id.id = s.newID(m.Timestamp)
		}
		_, err = stmt.ExecContext(ctx,
			id.id, i, m.Content, ts,
			m.MemoryType, m.Importance, m.EmotionalImpact, string(relatedJSON))
		if err != nil {
			return fmt.Errorf("insert episode: %w", err)
		}
	}

	return tx.Commit()
}

type rowID struct {
	id, key string
}

func rowKey(ts, content string) string { return ts + "\x00" + content }

// existingIDs maps each stored position to its id and identity key.
func existingIDs(ctx context.Context, tx *sql.Tx) (map[int]rowID, error) {
	rows, err := tx.QueryContext(ctx, `SELECT seq, id, timestamp, content FROM episodes`)
	if err != nil {
		return nil, fmt.Errorf("query episode ids: %w", err)
	}
	defer rows.Close()

	ids := make(map[int]rowID)
	for rows.Next() {
		var seq int
		var id, ts, content string
		if err := rows.Scan(&seq, &id, &ts, &content); err != nil {
			return nil, fmt.Errorf("scan episode id: %w", err)
		}
		ids[seq] = rowID{id: id, key: rowKey(ts, content)}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read episode ids: %w", err)
	}
	return ids, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanMemory(row scanner) (model.Memory, error) {
	var m model.Memory
	var ts, related string

	err := row.Scan(&m.Content, &ts, &m.MemoryType, &m.Importance, &m.EmotionalImpact, &related)
	if err != nil {
		return m, err
	}

	m.Timestamp, err = model.ParseTimestamp(ts)
	if err != nil {
		return m, fmt.Errorf("%w: timestamp %q: %v", ErrCorrupt, ts, err)
	}
	if err := json.Unmarshal([]byte(related), &m.RelatedThoughts); err != nil {
		return m, fmt.Errorf("%w: related thoughts: %v", ErrCorrupt, err)
	}
	if m.RelatedThoughts == nil {
		m.RelatedThoughts = []string{}
	}
	return m, nil
}
