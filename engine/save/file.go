package save

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// FileStore keeps one JSON file per slot in a directory.
type FileStore struct {
	Dir string
}

// NewFileStore returns a store rooted at dir. The directory is created
// on the first save.
func NewFileStore(dir string) *FileStore {
	return &FileStore{Dir: dir}
}

func (f *FileStore) path(slot string) (string, error) {
	if !ValidSlot(slot) {
		return "", fmt.Errorf("invalid slot name %q", slot)
	}
	return filepath.Join(f.Dir, slot+".json"), nil
}

// Put writes blob atomically through a temp file and rename.
func (f *FileStore) Put(ctx context.Context, slot string, blob []byte, _ Meta) error {
	if err := ctx.Err(); err != nil {
		return &PersistenceError{Op: "save", Slot: slot, Err: err}
	}
	p, err := f.path(slot)
	if err != nil {
		return &PersistenceError{Op: "save", Slot: slot, Err: err}
	}
	if err := os.MkdirAll(f.Dir, 0o755); err != nil {
		return &PersistenceError{Op: "save", Slot: slot, Err: err}
	}
	tmp := p + ".tmp"
	if err := os.WriteFile(tmp, blob, 0o644); err != nil {
		return &PersistenceError{Op: "save", Slot: slot, Err: err}
	}
	if err := os.Rename(tmp, p); err != nil {
		os.Remove(tmp)
		return &PersistenceError{Op: "save", Slot: slot, Err: err}
	}
	return nil
}

// Get reads a slot.
func (f *FileStore) Get(ctx context.Context, slot string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, &PersistenceError{Op: "load", Slot: slot, Err: err}
	}
	p, err := f.path(slot)
	if err != nil {
		return nil, &PersistenceError{Op: "load", Slot: slot, Err: err}
	}
	data, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, &PersistenceError{Op: "load", Slot: slot, Err: ErrSlotNotFound}
	}
	if err != nil {
		return nil, &PersistenceError{Op: "load", Slot: slot, Err: err}
	}
	return data, nil
}

// Slots lists saved slots, newest first.
func (f *FileStore) Slots(ctx context.Context) ([]Meta, error) {
	if err := ctx.Err(); err != nil {
		return nil, &PersistenceError{Op: "list", Err: err}
	}
	entries, err := os.ReadDir(f.Dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, &PersistenceError{Op: "list", Err: err}
	}
	var out []Meta
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		slot := strings.TrimSuffix(name, ".json")
		data, err := os.ReadFile(filepath.Join(f.Dir, name))
		if err != nil {
			continue
		}
		var env Envelope
		if json.Unmarshal(data, &env) != nil || env.Format != Format {
			continue
		}
		out = append(out, Meta{Slot: slot, Turn: env.Turn, SavedAt: env.SavedAt})
	}
	sortMeta(out)
	return out, nil
}

func sortMeta(m []Meta) {
	sort.Slice(m, func(i, j int) bool {
		if !m[i].SavedAt.Equal(m[j].SavedAt) {
			return m[i].SavedAt.After(m[j].SavedAt)
		}
		return m[i].Slot < m[j].Slot
	})
}

// ValidSlot reports whether name is usable as a slot: 1-32 letters,
// digits, dashes or underscores.
func ValidSlot(name string) bool {
	if name == "" || len(name) > 32 {
		return false
	}
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return false
		}
	}
	return true
}
