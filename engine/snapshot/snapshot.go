// Package snapshot captures and restores complete game state and keeps
// the bounded undo history.
package snapshot

import (
	"fmt"

	"github.com/nathoo/blackwood/engine/state"
	"github.com/nathoo/blackwood/engine/world"
	"github.com/nathoo/blackwood/types"
)

// Version is the snapshot format version.
const Version = 1

// Snapshot is a deep, immutable copy of the game state.
type Snapshot struct {
	Version int         `json:"version"`
	State   types.State `json:"state"`
}

// CorruptionError reports a snapshot that failed its integrity check.
type CorruptionError struct {
	Reason string
}

func (e *CorruptionError) Error() string {
	return fmt.Sprintf("snapshot corrupted: %s", e.Reason)
}

// Capture deep-copies s.
func Capture(s *types.State) Snapshot {
	return Snapshot{Version: Version, State: *state.Clone(s)}
}

// Restore verifies snap and returns a fresh deep copy of its state. On
// failure the caller's live state is untouched.
func Restore(snap Snapshot, d *world.Defs, limits types.Limits) (*types.State, error) {
	if err := Verify(snap, d, limits); err != nil {
		return nil, err
	}
	s := state.Clone(&snap.State)
	fillNil(s)
	return s, nil
}

// Verify checks that a snapshot describes a state the engine can run.
func Verify(snap Snapshot, d *world.Defs, limits types.Limits) error {
	if snap.Version != Version {
		return &CorruptionError{Reason: fmt.Sprintf("unsupported version %d", snap.Version)}
	}
	s := &snap.State

	if len(s.Rooms) != len(d.Rooms) {
		return &CorruptionError{Reason: fmt.Sprintf("room count %d, world has %d", len(s.Rooms), len(d.Rooms))}
	}
	for i, r := range s.Rooms {
		if r.ID != d.Rooms[i].ID {
			return &CorruptionError{Reason: fmt.Sprintf("room %d is %q, want %q", i, r.ID, d.Rooms[i].ID)}
		}
	}
	if _, ok := d.Room(s.Player.Room); !ok {
		return &CorruptionError{Reason: fmt.Sprintf("player in unknown room %q", s.Player.Room)}
	}
	if _, ok := d.Room(s.Adversary.Room); !ok {
		return &CorruptionError{Reason: fmt.Sprintf("phantom in unknown room %q", s.Adversary.Room)}
	}

	if len(s.Player.Inventory) > limits.MaxInventory {
		return &CorruptionError{Reason: fmt.Sprintf("inventory holds %d items, max %d", len(s.Player.Inventory), limits.MaxInventory)}
	}
	carried := map[string]bool{}
	for _, id := range s.Player.Inventory {
		if _, ok := d.Items[id]; !ok {
			return &CorruptionError{Reason: fmt.Sprintf("unknown item %q in inventory", id)}
		}
		carried[id] = true
	}
	for _, r := range s.Rooms {
		for _, id := range r.Items {
			if _, ok := d.Items[id]; !ok {
				return &CorruptionError{Reason: fmt.Sprintf("unknown item %q in room %q", id, r.ID)}
			}
			if carried[id] {
				return &CorruptionError{Reason: fmt.Sprintf("item %q both carried and in room %q", id, r.ID)}
			}
		}
	}

	if s.Player.Sanity < 0 || s.Player.Sanity > limits.MaxSanity {
		return &CorruptionError{Reason: fmt.Sprintf("sanity %d out of range", s.Player.Sanity)}
	}
	if s.Player.Battery < 0 || s.Player.Battery > limits.MaxBattery {
		return &CorruptionError{Reason: fmt.Sprintf("battery %d out of range", s.Player.Battery)}
	}
	switch s.Adversary.Mode {
	case types.Dormant, types.Hunting:
	case types.Stunned:
		if s.Adversary.StunTurns <= 0 {
			return &CorruptionError{Reason: "stunned phantom with no stun turns left"}
		}
	default:
		return &CorruptionError{Reason: fmt.Sprintf("unknown phantom mode %q", s.Adversary.Mode)}
	}
	if s.Turn < 0 || s.RNGPosition < 0 {
		return &CorruptionError{Reason: "negative turn or rng position"}
	}
	return nil
}

// fillNil makes sure maps and slices are never nil after a restore.
func fillNil(s *types.State) {
	if s.Player.Inventory == nil {
		s.Player.Inventory = []string{}
	}
	if s.Player.Journal == nil {
		s.Player.Journal = []string{}
	}
	for i := range s.Rooms {
		if s.Rooms[i].Items == nil {
			s.Rooms[i].Items = []string{}
		}
	}
}

// History is a bounded stack of snapshots; the oldest entry is dropped
// when it is full.
type History struct {
	depth int
	snaps []Snapshot
}

// NewHistory returns an empty history holding at most depth snapshots.
func NewHistory(depth int) *History {
	if depth < 0 {
		depth = 0
	}
	return &History{depth: depth}
}

// Push records a snapshot.
func (h *History) Push(s Snapshot) {
	if h.depth == 0 {
		return
	}
	if len(h.snaps) == h.depth {
		h.snaps = append(h.snaps[:0:0], h.snaps[1:]...)
	}
	h.snaps = append(h.snaps, s)
}

// Pop removes and returns the newest snapshot.
func (h *History) Pop() (Snapshot, bool) {
	if len(h.snaps) == 0 {
		return Snapshot{}, false
	}
	s := h.snaps[len(h.snaps)-1]
	h.snaps = h.snaps[:len(h.snaps)-1]
	return s, true
}

// Len returns the number of stored snapshots.
func (h *History) Len() int { return len(h.snaps) }

// Clear drops every snapshot.
func (h *History) Clear() { h.snaps = nil }
