// Package save implements the save-file format and the stores that keep
// save slots. A save is a JSON envelope around a snapshot, sealed with a
// checksum so a damaged file is caught before it reaches the engine.
package save

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nathoo/blackwood/engine/snapshot"
)

// Format identifies Blackwood save blobs.
const Format = "blackwood-save"

// DefaultSlot is used when the player does not name one.
const DefaultSlot = "quicksave"

// ErrSlotNotFound means the store holds nothing under that slot.
var ErrSlotNotFound = errors.New("save slot not found")

// PersistenceError wraps a failure of the save store.
type PersistenceError struct {
	Op   string // "save", "load" or "list"
	Slot string
	Err  error
}

func (e *PersistenceError) Error() string {
	if e.Slot == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %q: %v", e.Op, e.Slot, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// Envelope is the JSON-serializable save format.
type Envelope struct {
	Format   string          `json:"format"`
	Version  string          `json:"version"`
	Game     string          `json:"game"`
	Turn     int             `json:"turn"`
	SavedAt  time.Time       `json:"saved_at"`
	Checksum string          `json:"checksum"`
	Snapshot json.RawMessage `json:"snapshot"`
}

// Meta describes a stored slot without decoding it.
type Meta struct {
	Slot    string
	Turn    int
	SavedAt time.Time
}

// Encode serializes a snapshot into a save blob.
func Encode(snap snapshot.Snapshot, game, version string, now time.Time) ([]byte, error) {
	body, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("encoding snapshot: %w", err)
	}
	env := Envelope{
		Format:   Format,
		Version:  version,
		Game:     game,
		Turn:     snap.State.Turn,
		SavedAt:  now.UTC(),
		Checksum: checksum(body),
		Snapshot: body,
	}
	return json.MarshalIndent(env, "", "  ")
}

// Decode parses a save blob and checks its format, game and checksum.
// The snapshot's integrity against the world is checked by the caller.
func Decode(data []byte, game string) (snapshot.Snapshot, Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return snapshot.Snapshot{}, env, &snapshot.CorruptionError{Reason: "unreadable save: " + err.Error()}
	}
	if env.Format != Format {
		return snapshot.Snapshot{}, env, &snapshot.CorruptionError{Reason: fmt.Sprintf("not a save file (format %q)", env.Format)}
	}
	if game != "" && env.Game != game {
		return snapshot.Snapshot{}, env, &snapshot.CorruptionError{Reason: fmt.Sprintf("save belongs to %q", env.Game)}
	}
	// MarshalIndent re-indents the embedded snapshot; the checksum covers
	// its compact form.
	var body bytes.Buffer
	if err := json.Compact(&body, env.Snapshot); err != nil {
		return snapshot.Snapshot{}, env, &snapshot.CorruptionError{Reason: "unreadable snapshot: " + err.Error()}
	}
	if checksum(body.Bytes()) != env.Checksum {
		return snapshot.Snapshot{}, env, &snapshot.CorruptionError{Reason: "checksum mismatch"}
	}
	var snap snapshot.Snapshot
	if err := json.Unmarshal(body.Bytes(), &snap); err != nil {
		return snapshot.Snapshot{}, env, &snapshot.CorruptionError{Reason: "unreadable snapshot: " + err.Error()}
	}
	return snap, env, nil
}

func checksum(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// Store keeps save blobs by slot name.
type Store interface {
	Put(ctx context.Context, slot string, blob []byte, meta Meta) error
	Get(ctx context.Context, slot string) ([]byte, error)
	Slots(ctx context.Context) ([]Meta, error)
}
