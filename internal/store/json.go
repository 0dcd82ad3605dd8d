package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rcliao/sentiment-agent/internal/model"
)

// JSONFile stores memories as an indented JSON array in a single file.
type JSONFile struct {
	path string
}

// NewJSONFile returns a backend for the file at path. The file is not
// touched until Load or Save.
func NewJSONFile(path string) *JSONFile {
	return &JSONFile{path: path}
}

func (f *JSONFile) Path() string { return f.path }

func (f *JSONFile) Close() error { return nil }

func (f *JSONFile) Load(ctx context.Context) ([]model.Memory, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []model.Memory{}, nil
		}
		return nil, fmt.Errorf("read %s: %w", f.path, err)
	}
	return decodeMemories(data)
}

func decodeMemories(data []byte) ([]model.Memory, error) {
	var memories []model.Memory
	if err := json.Unmarshal(data, &memories); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if memories == nil {
		// a literal "null" is not a memory sequence
		return nil, fmt.Errorf("%w: expected a JSON array", ErrCorrupt)
	}
	for i := range memories {
		if memories[i].RelatedThoughts == nil {
			memories[i].RelatedThoughts = []string{}
		}
	}
	return memories, nil
}

// Save writes to a temporary file in the same directory, syncs it, and
// renames it over the target.
func (f *JSONFile) Save(ctx context.Context, memories []model.Memory) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := encodeMemories(memories)
	if err != nil {
		return err
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create store dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		return fmt.Errorf("replace %s: %w", f.path, err)
	}
	return nil
}

// encodeMemories renders the store format: two-space indent, non-ASCII
// text left unescaped.
func encodeMemories(memories []model.Memory) ([]byte, error) {
	if memories == nil {
		memories = []model.Memory{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(memories); err != nil {
		return nil, fmt.Errorf("encode memories: %w", err)
	}
	return buf.Bytes(), nil
}
