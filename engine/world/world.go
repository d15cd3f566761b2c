// Package world implements the room graph: the immutable room/item/fixture
// arena and the operations that read and mutate its per-room overlay.
package world

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/nathoo/blackwood/types"
)

var (
	// ErrNoExit means the room has no (visible) exit that way.
	ErrNoExit = errors.New("no exit")
	// ErrCredential means the credential does not open the lock.
	ErrCredential = errors.New("credential does not fit")
	// ErrAlreadySolved means the fixture's puzzle was solved before.
	ErrAlreadySolved = errors.New("already solved")
	// ErrWrongSequence means the input did not match the fixture's sequence.
	ErrWrongSequence = errors.New("wrong sequence")
)

// LockedError reports a connection that exists but is locked.
type LockedError struct {
	Direction string
	Lock      types.LockDef
}

func (e *LockedError) Error() string {
	return fmt.Sprintf("exit %s is locked", e.Direction)
}

// Defs holds the immutable world definitions. Rooms live in an arena
// indexed by position; the mutable overlay in types.State uses the same
// positions.
type Defs struct {
	Game     types.GameDef
	Rooms    []types.RoomDef
	Items    map[string]types.ItemDef
	Fixtures map[string]types.FixtureDef

	index map[string]int
}

// NewDefs builds a Defs and its room index.
func NewDefs(game types.GameDef, rooms []types.RoomDef, items map[string]types.ItemDef, fixtures map[string]types.FixtureDef) *Defs {
	d := &Defs{
		Game:     game,
		Rooms:    rooms,
		Items:    items,
		Fixtures: fixtures,
		index:    make(map[string]int, len(rooms)),
	}
	if d.Items == nil {
		d.Items = map[string]types.ItemDef{}
	}
	if d.Fixtures == nil {
		d.Fixtures = map[string]types.FixtureDef{}
	}
	for i, r := range rooms {
		d.index[r.ID] = i
	}
	return d
}

// RoomIndex returns the arena position of a room.
func (d *Defs) RoomIndex(id string) (int, bool) {
	i, ok := d.index[id]
	return i, ok
}

// Room returns a room definition by ID.
func (d *Defs) Room(id string) (types.RoomDef, bool) {
	i, ok := d.index[id]
	if !ok {
		return types.RoomDef{}, false
	}
	return d.Rooms[i], true
}

// Exit returns the exit definition leaving roomID in direction dir.
func (d *Defs) Exit(roomID, dir string) (types.ExitDef, bool) {
	room, ok := d.Room(roomID)
	if !ok {
		return types.ExitDef{}, false
	}
	for _, ex := range room.Exits {
		if ex.Direction == dir {
			return ex, true
		}
	}
	return types.ExitDef{}, false
}

// FixturesIn returns the fixtures placed in a room, sorted by ID.
func (d *Defs) FixturesIn(roomID string) []types.FixtureDef {
	var out []types.FixtureDef
	for _, f := range d.Fixtures {
		if f.Room == roomID {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ItemName returns the display name of an item, falling back to its ID.
func (d *Defs) ItemName(id string) string {
	if it, ok := d.Items[id]; ok && it.Name != "" {
		return it.Name
	}
	return id
}

// RoomName returns the display name of a room, falling back to its ID.
func (d *Defs) RoomName(id string) string {
	if r, ok := d.Room(id); ok && r.Name != "" {
		return r.Name
	}
	return id
}

// overlay returns the mutable overlay of a room.
func overlay(s *types.State, d *Defs, roomID string) (*types.RoomState, bool) {
	i, ok := d.index[roomID]
	if !ok || i >= len(s.Rooms) {
		return nil, false
	}
	return &s.Rooms[i], true
}

// RoomItems returns the items currently present in a room.
func RoomItems(s *types.State, d *Defs, roomID string) []string {
	rs, ok := overlay(s, d, roomID)
	if !ok {
		return nil
	}
	return rs.Items
}

// IsLocked reports whether the exit is currently locked.
func IsLocked(s *types.State, d *Defs, roomID, dir string) bool {
	ex, ok := d.Exit(roomID, dir)
	if !ok || ex.Lock == nil {
		return false
	}
	rs, ok := overlay(s, d, roomID)
	if !ok {
		return true
	}
	return !rs.Unlocked[dir]
}

// VisibleExits returns the exits the player can currently perceive,
// in definition order. Hidden exits appear once unlocked.
func VisibleExits(s *types.State, d *Defs, roomID string) []types.ExitDef {
	room, ok := d.Room(roomID)
	if !ok {
		return nil
	}
	var out []types.ExitDef
	for _, ex := range room.Exits {
		if ex.Lock != nil && ex.Lock.Hidden && IsLocked(s, d, roomID, ex.Direction) {
			continue
		}
		out = append(out, ex)
	}
	return out
}

// Connect resolves a move. It returns the neighbouring room ID, a
// *LockedError when the exit is locked, or ErrNoExit.
func Connect(s *types.State, d *Defs, roomID, dir string) (string, error) {
	ex, ok := d.Exit(roomID, dir)
	if !ok {
		return "", ErrNoExit
	}
	if IsLocked(s, d, roomID, dir) {
		if ex.Lock.Hidden {
			return "", ErrNoExit
		}
		return "", &LockedError{Direction: dir, Lock: *ex.Lock}
	}
	return ex.To, nil
}

// CanUnlock reports whether credential (an item ID or a flag name) opens
// the exit. It does not mutate anything.
func CanUnlock(d *Defs, roomID, dir, credential string) bool {
	ex, ok := d.Exit(roomID, dir)
	if !ok || ex.Lock == nil || credential == "" {
		return false
	}
	return ex.Lock.Key == credential || ex.Lock.Flag == credential
}

// Unlock opens a locked exit when the credential matches. Unlocking an
// open exit is a no-op.
func Unlock(s *types.State, d *Defs, roomID, dir, credential string) error {
	ex, ok := d.Exit(roomID, dir)
	if !ok {
		return ErrNoExit
	}
	if ex.Lock == nil || !IsLocked(s, d, roomID, dir) {
		return nil
	}
	if !CanUnlock(d, roomID, dir, credential) {
		return ErrCredential
	}
	rs, ok := overlay(s, d, roomID)
	if !ok {
		return ErrNoExit
	}
	if rs.Unlocked == nil {
		rs.Unlocked = map[string]bool{}
	}
	rs.Unlocked[dir] = true
	return nil
}

// PlaceItem adds an item to a room's present-set.
func PlaceItem(s *types.State, d *Defs, roomID, itemID string) bool {
	rs, ok := overlay(s, d, roomID)
	if !ok {
		return false
	}
	for _, id := range rs.Items {
		if id == itemID {
			return true
		}
	}
	rs.Items = append(rs.Items, itemID)
	return true
}

// RemoveItem removes an item from a room's present-set. It reports
// whether the item was there.
func RemoveItem(s *types.State, d *Defs, roomID, itemID string) bool {
	rs, ok := overlay(s, d, roomID)
	if !ok {
		return false
	}
	for i, id := range rs.Items {
		if id == itemID {
			rs.Items = append(rs.Items[:i:i], rs.Items[i+1:]...)
			return true
		}
	}
	return false
}

// Sequence returns the expected input of a fixture for this session.
func Sequence(s *types.State, f types.FixtureDef) string {
	if f.CodeDigits > 0 {
		return s.Codes[f.ID]
	}
	return f.Sequence
}

// NormalizeSequence lowercases and keeps only letters and digits, so
// "D-A-D", "d a d" and "dad" compare equal.
func NormalizeSequence(input string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(input) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Solved reports whether the fixture's flag is already set.
func Solved(s *types.State, f types.FixtureDef) bool {
	return f.Flag != "" && s.Player.Flags[f.Flag]
}

// MatchSequence checks input against a fixture without mutating state.
func MatchSequence(s *types.State, d *Defs, fixtureID, input string) error {
	f, ok := d.Fixtures[fixtureID]
	if !ok {
		return fmt.Errorf("unknown fixture %q", fixtureID)
	}
	if Solved(s, f) {
		return ErrAlreadySolved
	}
	want := NormalizeSequence(Sequence(s, f))
	if want == "" || NormalizeSequence(input) != want {
		return ErrWrongSequence
	}
	return nil
}

// TriggerResult describes what a solved fixture changed.
type TriggerResult struct {
	Flag     string
	Opened   []string
	Revealed string
}

// Trigger feeds an input sequence to a fixture. On a match it sets the
// fixture's flag, opens the exits it controls and reveals its item.
func Trigger(s *types.State, d *Defs, fixtureID, input string) (TriggerResult, error) {
	if err := MatchSequence(s, d, fixtureID, input); err != nil {
		return TriggerResult{}, err
	}
	f := d.Fixtures[fixtureID]
	res := TriggerResult{Flag: f.Flag}
	if f.Flag != "" {
		if s.Player.Flags == nil {
			s.Player.Flags = map[string]bool{}
		}
		s.Player.Flags[f.Flag] = true
	}
	for _, dir := range f.Opens {
		if err := Unlock(s, d, f.Room, dir, f.Flag); err == nil {
			res.Opened = append(res.Opened, dir)
		}
	}
	if f.Reveals != "" && PlaceItem(s, d, f.Room, f.Reveals) {
		res.Revealed = f.Reveals
	}
	return res, nil
}

// Interpolate replaces {code:<fixture>} placeholders with the session's
// generated sequences.
func Interpolate(s *types.State, text string) string {
	for id, code := range s.Codes {
		text = strings.ReplaceAll(text, "{code:"+id+"}", code)
	}
	return text
}
