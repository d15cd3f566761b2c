package loader

import (
	"fmt"
	"sort"
	"strings"

	"github.com/zyedidia/generic/mapset"

	"github.com/nathoo/blackwood/engine/world"
	"github.com/nathoo/blackwood/types"
)

// ValidationError collects all validation errors and warnings.
type ValidationError struct {
	Errors   []string
	Warnings []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed with %d error(s):\n  %s",
		len(e.Errors), strings.Join(e.Errors, "\n  "))
}

func (e *ValidationError) errorf(format string, args ...any) {
	e.Errors = append(e.Errors, fmt.Sprintf(format, args...))
}

func (e *ValidationError) warnf(format string, args ...any) {
	e.Warnings = append(e.Warnings, fmt.Sprintf(format, args...))
}

var knownTags = map[string]bool{
	types.TagKey:        true,
	types.TagConsumable: true,
	types.TagLight:      true,
	types.TagQuest:      true,
	types.TagReadable:   true,
}

// validate checks the compiled defs for referential integrity and that the
// exit can be reached from the start.
func validate(defs *world.Defs) *ValidationError {
	ve := &ValidationError{}
	room := func(id string) bool {
		_, ok := defs.Room(id)
		return ok
	}

	g := defs.Game
	if g.Title == "" {
		ve.errorf("Game.title is required")
	}
	if g.Start == "" {
		ve.errorf("Game.start is required")
	} else if !room(g.Start) {
		ve.errorf("Game.start references unknown room %q", g.Start)
	}
	if g.Exit == "" {
		ve.errorf("Game.exit is required")
	} else if !room(g.Exit) {
		ve.errorf("Game.exit references unknown room %q", g.Exit)
	}
	if a := g.Adversary.Start; a == "" {
		ve.errorf("Game.adversary.start is required")
	} else if r, ok := defs.Room(a); !ok {
		ve.errorf("Game.adversary.start references unknown room %q", a)
	} else if r.Sanctuary {
		ve.errorf("Game.adversary.start %q is a sanctuary", a)
	}

	flags := settableFlags(defs)
	if f := g.Adversary.ActivationFlag; f != "" && !flags.Has(f) {
		ve.warnf("activation flag %q is never set, the adversary never wakes", f)
	}

	hasLight := false
	for _, it := range defs.Items {
		for _, tag := range it.Tags {
			if tag == types.TagLight {
				hasLight = true
			}
		}
	}

	for _, r := range defs.Rooms {
		if r.Dark && !hasLight {
			ve.warnf("room %q is dark and no item is a light", r.ID)
		}
		for _, ex := range r.Exits {
			where := fmt.Sprintf("room %q exit %s", r.ID, ex.Direction)
			if !room(ex.To) {
				ve.errorf("%s references unknown room %q", where, ex.To)
			}
			if ex.Lock == nil {
				continue
			}
			switch {
			case ex.Lock.Key == "" && ex.Lock.Flag == "":
				ve.errorf("%s has a lock with neither key nor flag", where)
			case ex.Lock.Key != "" && ex.Lock.Flag != "":
				ve.errorf("%s has a lock with both key and flag", where)
			case ex.Lock.Key != "":
				if _, ok := defs.Items[ex.Lock.Key]; !ok {
					ve.errorf("%s is locked by unknown item %q", where, ex.Lock.Key)
				}
			case !flags.Has(ex.Lock.Flag):
				ve.errorf("%s is locked by flag %q that no fixture sets", where, ex.Lock.Flag)
			}
		}
	}

	for _, id := range sortedKeys(defs.Items) {
		it := defs.Items[id]
		if it.Location != "" && !room(it.Location) {
			ve.errorf("item %q placed in unknown room %q", id, it.Location)
		}
		for _, tag := range it.Tags {
			if !knownTags[tag] {
				ve.errorf("item %q has unknown tag %q", id, tag)
			}
		}
		if it.RestoreSanity < 0 || it.RestoreBattery < 0 {
			ve.errorf("item %q restores a negative amount", id)
		}
	}

	revealed := mapset.New[string]()
	for _, id := range sortedKeys(defs.Fixtures) {
		f := defs.Fixtures[id]
		where := fmt.Sprintf("fixture %q", id)
		if !room(f.Room) {
			ve.errorf("%s placed in unknown room %q", where, f.Room)
		}
		if f.Verb != types.VerbPlay && f.Verb != types.VerbUnlock {
			ve.errorf("%s has verb %q, want %q or %q", where, f.Verb, types.VerbPlay, types.VerbUnlock)
		}
		switch {
		case f.Sequence == "" && f.CodeDigits <= 0:
			ve.errorf("%s needs a sequence or code_digits", where)
		case f.Sequence != "" && f.CodeDigits > 0:
			ve.errorf("%s has both a sequence and code_digits", where)
		case f.Sequence != "" && world.NormalizeSequence(f.Sequence) == "":
			ve.errorf("%s sequence %q has no letters or digits", where, f.Sequence)
		}
		if f.CodeDigits > 9 {
			ve.errorf("%s code_digits %d is more than 9", where, f.CodeDigits)
		}
		if f.Flag == "" {
			ve.errorf("%s needs a flag", where)
		}
		for _, dir := range f.Opens {
			ex, ok := defs.Exit(f.Room, dir)
			switch {
			case !ok:
				ve.errorf("%s opens missing exit %s of %q", where, dir, f.Room)
			case ex.Lock == nil || ex.Lock.Flag != f.Flag:
				ve.errorf("%s opens exit %s of %q, which is not locked by flag %q", where, dir, f.Room, f.Flag)
			}
		}
		if f.Reveals != "" {
			it, ok := defs.Items[f.Reveals]
			switch {
			case !ok:
				ve.errorf("%s reveals unknown item %q", where, f.Reveals)
			case it.Location != "":
				ve.warnf("%s reveals %q, which already starts in %q", where, f.Reveals, it.Location)
			}
			revealed.Put(f.Reveals)
		}
	}

	for _, id := range sortedKeys(defs.Items) {
		if defs.Items[id].Location == "" && !revealed.Has(id) {
			ve.warnf("item %q is never placed", id)
		}
	}

	if len(ve.Errors) == 0 {
		reach := reachableRooms(defs)
		if !reach.Has(g.Exit) {
			ve.errorf("exit room %q cannot be reached from %q", g.Exit, g.Start)
		}
		for _, r := range defs.Rooms {
			if !reach.Has(r.ID) {
				ve.warnf("room %q cannot be reached from %q", r.ID, g.Start)
			}
		}
	}
	return ve
}

// settableFlags returns every flag a room or fixture can set.
func settableFlags(defs *world.Defs) mapset.Set[string] {
	flags := mapset.New[string]()
	for _, r := range defs.Rooms {
		if r.EnterFlag != "" {
			flags.Put(r.EnterFlag)
		}
	}
	for _, f := range defs.Fixtures {
		if f.Flag != "" {
			flags.Put(f.Flag)
		}
	}
	return flags
}

// reachableRooms grows the set of rooms the player can enter from the
// start until it stops changing. An exit counts once its key has been
// found in a reached room or its flag can be set by a reached fixture.
func reachableRooms(defs *world.Defs) mapset.Set[string] {
	rooms := mapset.New[string]()
	items := mapset.New[string]()
	flags := mapset.New[string]()
	rooms.Put(defs.Game.Start)

	for changed := true; changed; {
		changed = false
		for _, it := range defs.Items {
			if it.Takeable && rooms.Has(it.Location) && !items.Has(it.ID) {
				items.Put(it.ID)
				changed = true
			}
		}
		for _, f := range defs.Fixtures {
			if !rooms.Has(f.Room) || flags.Has(f.Flag) {
				continue
			}
			flags.Put(f.Flag)
			if f.Reveals != "" {
				items.Put(f.Reveals)
			}
			changed = true
		}
		for _, r := range defs.Rooms {
			if !rooms.Has(r.ID) {
				continue
			}
			if r.EnterFlag != "" && !flags.Has(r.EnterFlag) {
				flags.Put(r.EnterFlag)
				changed = true
			}
			for _, ex := range r.Exits {
				if rooms.Has(ex.To) {
					continue
				}
				if ex.Lock == nil || items.Has(ex.Lock.Key) || flags.Has(ex.Lock.Flag) {
					rooms.Put(ex.To)
					changed = true
				}
			}
		}
	}
	return rooms
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
