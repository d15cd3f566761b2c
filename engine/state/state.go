// Package state manages the mutable game state: construction of a new
// session, deep copies for transactional turns, and resource lookups.
package state

import (
	"fmt"
	"sort"

	"github.com/nathoo/blackwood/engine/world"
	"github.com/nathoo/blackwood/types"
)

// Intn is the one RNG draw NewState needs to generate puzzle codes.
type Intn interface {
	Intn(n int) int
}

// NewState creates a fresh game state from definitions. Generated fixture
// codes are drawn from rng in fixture-ID order so a seed reproduces them.
func NewState(defs *world.Defs, difficulty types.Difficulty, limits types.Limits, rng Intn) *types.State {
	s := &types.State{
		Player: types.Player{
			Room:       defs.Game.Start,
			Inventory:  []string{},
			Sanity:     limits.MaxSanity,
			Battery:    limits.MaxBattery,
			Flags:      map[string]bool{},
			Difficulty: difficulty,
			Visited:    map[string]bool{defs.Game.Start: true},
			Journal:    []string{},
		},
		Adversary: types.Adversary{
			Room: defs.Game.Adversary.Start,
			Mode: types.Dormant,
		},
		Rooms:  make([]types.RoomState, len(defs.Rooms)),
		Codes:  map[string]string{},
		Status: types.Playing,
	}
	for i, r := range defs.Rooms {
		s.Rooms[i] = types.RoomState{ID: r.ID, Items: []string{}, Unlocked: map[string]bool{}}
	}
	for _, id := range sortedItemIDs(defs) {
		if loc := defs.Items[id].Location; loc != "" {
			world.PlaceItem(s, defs, loc, id)
		}
	}
	for _, id := range sortedFixtureIDs(defs) {
		f := defs.Fixtures[id]
		if f.CodeDigits > 0 {
			s.Codes[id] = generateCode(f.CodeDigits, rng)
		}
	}
	return s
}

// generateCode returns a number with exactly digits digits and no
// leading zero.
func generateCode(digits int, rng Intn) string {
	lo := 1
	for i := 1; i < digits; i++ {
		lo *= 10
	}
	return fmt.Sprintf("%d", lo+rng.Intn(9*lo))
}

// Clone returns a deep copy of s.
func Clone(s *types.State) *types.State {
	c := *s
	c.Player.Inventory = append([]string{}, s.Player.Inventory...)
	c.Player.Journal = append([]string{}, s.Player.Journal...)
	c.Player.Flags = copyBools(s.Player.Flags)
	c.Player.Visited = copyBools(s.Player.Visited)
	c.Rooms = make([]types.RoomState, len(s.Rooms))
	for i, r := range s.Rooms {
		c.Rooms[i] = types.RoomState{
			ID:       r.ID,
			Items:    append([]string{}, r.Items...),
			Unlocked: copyBools(r.Unlocked),
		}
	}
	c.Codes = make(map[string]string, len(s.Codes))
	for k, v := range s.Codes {
		c.Codes[k] = v
	}
	return &c
}

func copyBools(m map[string]bool) map[string]bool {
	out := make(map[string]bool, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// HasItem returns true if the player has the given item in inventory.
func HasItem(s *types.State, itemID string) bool {
	for _, id := range s.Player.Inventory {
		if id == itemID {
			return true
		}
	}
	return false
}

// HasTag returns true if the item definition carries tag.
func HasTag(item types.ItemDef, tag string) bool {
	for _, t := range item.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// CarriedWithTag returns the carried items that carry tag, in inventory order.
func CarriedWithTag(s *types.State, defs *world.Defs, tag string) []string {
	var out []string
	for _, id := range s.Player.Inventory {
		if HasTag(defs.Items[id], tag) {
			out = append(out, id)
		}
	}
	return out
}

// HasLight reports whether the player carries a working light source.
func HasLight(s *types.State, defs *world.Defs) bool {
	return len(CarriedWithTag(s, defs, types.TagLight)) > 0 && s.Player.Battery > 0
}

// IsDark reports whether the player's room is dark.
func IsDark(s *types.State, defs *world.Defs) bool {
	r, ok := defs.Room(s.Player.Room)
	return ok && r.Dark
}

// Clamp bounds v to [0, max].
func Clamp(v, max int) int {
	if v < 0 {
		return 0
	}
	if v > max {
		return max
	}
	return v
}

func sortedItemIDs(defs *world.Defs) []string {
	ids := make([]string, 0, len(defs.Items))
	for id := range defs.Items {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func sortedFixtureIDs(defs *world.Defs) []string {
	ids := make([]string, 0, len(defs.Fixtures))
	for id := range defs.Fixtures {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
