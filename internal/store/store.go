// Package store provides the persisted memory sequence backends.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rcliao/sentiment-agent/internal/model"
)

// ErrCorrupt marks persisted data that could not be decoded.
var ErrCorrupt = errors.New("corrupt memory store")

// Backend persists the full ordered memory sequence, oldest first.
//
// Save always replaces the whole persisted sequence. Implementations must
// make the replacement atomic: a crash mid-save leaves the previous
// sequence intact. A Backend assumes a single writer; two agents must not
// share a store path without external coordination.
type Backend interface {
	// Load returns the persisted sequence. A missing store yields an empty
	// sequence and no error. Undecodable data yields an error wrapping ErrCorrupt.
	Load(ctx context.Context) ([]model.Memory, error)

	// Save overwrites the persisted sequence with memories.
	Save(ctx context.Context, memories []model.Memory) error

	// Path returns the location of the persisted store.
	Path() string

	// Close releases the backend.
	Close() error
}

// Kind names a backend implementation.
type Kind string

const (
	KindJSON   Kind = "json"
	KindSQLite Kind = "sqlite"
)

// ParseKind validates a backend name.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindJSON, KindSQLite:
		return k, nil
	case "":
		return KindJSON, nil
	default:
		return "", fmt.Errorf("unknown backend %q (valid: json, sqlite)", s)
	}
}

// Open creates the backend of the given kind at path.
func Open(kind Kind, path string) (Backend, error) {
	switch kind {
	case KindJSON, "":
		return NewJSONFile(path), nil
	case KindSQLite:
		return NewSQLiteStore(path)
	default:
		return nil, fmt.Errorf("unknown backend %q", kind)
	}
}

// DefaultPath derives the store path for an agent name.
func DefaultPath(kind Kind, name string) string {
	base := strings.ToLower(name) + "_memory"
	if kind == KindSQLite {
		return base + ".db"
	}
	return base + ".json"
}
