package engine

import (
	"errors"
	"fmt"
	"strings"

	"github.com/nathoo/blackwood/engine/adversary"
	"github.com/nathoo/blackwood/engine/effects"
	"github.com/nathoo/blackwood/engine/state"
	"github.com/nathoo/blackwood/engine/world"
	"github.com/nathoo/blackwood/types"
)

// builtinBehavior handles a turn-consuming verb. It reads s (the turn's
// working copy) and returns the effects to apply, or a PreconditionError
// when the command cannot happen at all.
func (e *Engine) builtinBehavior(s *types.State, cmd types.Command) ([]types.Effect, error) {
	switch cmd.Verb {
	case types.VerbMove:
		return e.builtinGo(s, cmd.Target.ID)
	case types.VerbTake:
		return e.builtinTake(s, cmd.Target)
	case types.VerbDrop:
		return e.builtinDrop(s, cmd.Target)
	case types.VerbUse:
		return e.builtinUse(s, cmd.Target)
	case types.VerbUnlock:
		return e.builtinUnlock(s, cmd.Target, cmd.Extra)
	case types.VerbPlay:
		return e.builtinPlay(s, cmd.Target, cmd.Extra)
	case types.VerbFlash:
		return e.builtinFlash(s)
	case types.VerbListen:
		return []types.Effect{say(adversary.Listen(s, e.Defs))}, nil
	case types.VerbHint:
		return e.builtinHint(s)
	}
	return nil, precondition("Nothing happens.")
}

func say(text string) types.Effect {
	return effects.New(effects.Say, "text", text)
}

func (e *Engine) builtinGo(s *types.State, direction string) ([]types.Effect, error) {
	room := s.Player.Room
	to, err := world.Connect(s, e.Defs, room, direction)

	var locked *world.LockedError
	switch {
	case err == nil:
		return []types.Effect{effects.New(effects.MovePlayer, "room", to)}, nil

	case errors.As(err, &locked):
		key := locked.Lock.Key
		if key == "" || !state.HasItem(s, key) {
			pe := &PreconditionError{Reason: "Locked.", Event: effects.EventLocked}
			if locked.Lock.Text != "" {
				pe.Lines = []string{locked.Lock.Text}
			}
			return nil, pe
		}
		ex, _ := e.Defs.Exit(room, direction)
		return []types.Effect{
			effects.New(effects.UnlockExit, "room", room, "direction", direction, "credential", key),
			say(fmt.Sprintf("Unlocked the %s.", exitNoun(ex))),
			effects.New(effects.MovePlayer, "room", ex.To),
		}, nil
	}
	return nil, precondition("You can't go that way.")
}

func exitNoun(ex types.ExitDef) string {
	if ex.Name != "" {
		return ex.Name
	}
	return "way " + ex.Direction
}

func (e *Engine) builtinTake(s *types.State, t types.Target) ([]types.Effect, error) {
	if t.Kind != types.TargetItem {
		return nil, precondition("You can't take that.")
	}
	if state.HasItem(s, t.ID) {
		return nil, precondition("You already have that.")
	}
	if !containsString(world.RoomItems(s, e.Defs, s.Player.Room), t.ID) {
		return nil, precondition(fmt.Sprintf("You don't see '%s' here.", t.Name))
	}
	if !e.Defs.Items[t.ID].Takeable {
		return nil, precondition("You can't take that.")
	}
	if len(s.Player.Inventory) >= e.Tuning.Limits.MaxInventory {
		return nil, precondition("Inventory full!", "You'll have to drop something first.")
	}
	return []types.Effect{
		effects.New(effects.TakeItem, "item", t.ID),
		say(fmt.Sprintf("You take the %s.", t.Name)),
	}, nil
}

func (e *Engine) builtinDrop(s *types.State, t types.Target) ([]types.Effect, error) {
	if t.Kind != types.TargetItem || !state.HasItem(s, t.ID) {
		return nil, precondition("You don't have that.")
	}
	return []types.Effect{
		effects.New(effects.DropItem, "item", t.ID),
		say(fmt.Sprintf("You drop the %s.", t.Name)),
	}, nil
}

func (e *Engine) builtinUse(s *types.State, t types.Target) ([]types.Effect, error) {
	if t.Kind == types.TargetFixture {
		f := e.Defs.Fixtures[t.ID]
		return nil, precondition(fmt.Sprintf("Try '%s %s ...'.", f.Verb, noun(f.Name)))
	}
	if t.Kind != types.TargetItem {
		return nil, precondition("You can't use that.")
	}
	if !state.HasItem(s, t.ID) {
		return nil, precondition(fmt.Sprintf("You need to pick up the %s first.", t.Name))
	}

	item := e.Defs.Items[t.ID]
	var effs []types.Effect
	consume := func() {
		if state.HasTag(item, types.TagConsumable) {
			effs = append(effs, effects.New(effects.ConsumeItem, "item", item.ID))
		}
	}

	switch {
	case item.RestoreSanity > 0:
		if s.Player.Sanity >= e.Tuning.Limits.MaxSanity {
			return nil, precondition("Your mind is already clear.")
		}
		effs = append(effs,
			effects.New(effects.AdjustSanity, "amount", item.RestoreSanity),
			say(fmt.Sprintf("You clutch the %s. Warmth floods your mind. (+%d sanity)", item.Name, item.RestoreSanity)),
		)
		consume()

	case item.RestoreBattery > 0:
		if len(state.CarriedWithTag(s, e.Defs, types.TagLight)) == 0 {
			return nil, precondition("You have nothing to put them in.")
		}
		if s.Player.Battery >= e.Tuning.Limits.MaxBattery {
			return nil, precondition("Your battery is already full.")
		}
		effs = append(effs,
			effects.New(effects.AdjustBattery, "amount", item.RestoreBattery),
			say(fmt.Sprintf("You swap in the %s. The beam brightens. (+%d battery)", item.Name, item.RestoreBattery)),
		)
		consume()

	case item.Stuns:
		adv := s.Adversary
		if adv.Mode != types.Hunting || adv.Room != s.Player.Room {
			return nil, precondition("There is nothing here to ward off.")
		}
		stun, _ := adversary.Flash(s, e.Defs, e.profile(), e.RNG)
		effs = append(effs, stun...)
		effs = append(effs, say(fmt.Sprintf("You hurl the %s. The Phantom shrieks and recoils!", item.Name)))
		consume()

	case state.HasTag(item, types.TagLight):
		return e.builtinFlash(s)

	case state.HasTag(item, types.TagKey):
		for _, ex := range e.Defs.Rooms[e.roomIndex(s.Player.Room)].Exits {
			if ex.Lock != nil && ex.Lock.Key == item.ID && world.IsLocked(s, e.Defs, s.Player.Room, ex.Direction) {
				return e.unlockExit(s, ex)
			}
		}
		return nil, precondition("There's nothing here that key fits.")

	case state.HasTag(item, types.TagReadable):
		effs = append(effs,
			say(item.Text),
			effects.New(effects.AddJournal, "text", item.Text),
		)

	default:
		return nil, precondition("You can't use that here.")
	}
	return effs, nil
}

func (e *Engine) builtinUnlock(s *types.State, t types.Target, extra string) ([]types.Effect, error) {
	room := s.Player.Room
	switch t.Kind {
	case types.TargetDirection:
		ex, ok := e.Defs.Exit(room, t.ID)
		if !ok || (ex.Lock != nil && ex.Lock.Hidden && world.IsLocked(s, e.Defs, room, t.ID)) {
			return nil, precondition("There's nothing to unlock there.")
		}
		if !world.IsLocked(s, e.Defs, room, t.ID) {
			return nil, precondition("It's already unlocked.")
		}
		return e.unlockExit(s, ex)

	case types.TargetFixture:
		return e.solveFixture(s, e.Defs.Fixtures[t.ID], types.VerbUnlock, extra)

	case types.TargetItem:
		return nil, precondition(fmt.Sprintf("You can't unlock the %s.", t.Name))
	}

	if extra != "" {
		for _, f := range e.Defs.FixturesIn(room) {
			if f.Verb == types.VerbUnlock && !world.Solved(s, f) {
				return e.solveFixture(s, f, types.VerbUnlock, extra)
			}
		}
	}
	var lockedHere bool
	for _, ex := range world.VisibleExits(s, e.Defs, room) {
		if !world.IsLocked(s, e.Defs, room, ex.Direction) {
			continue
		}
		lockedHere = true
		if ex.Lock.Key != "" && state.HasItem(s, ex.Lock.Key) {
			return e.unlockExit(s, ex)
		}
	}
	if lockedHere {
		return nil, precondition("You don't have the right key.")
	}
	return nil, precondition("There's nothing here to unlock.")
}

// unlockExit opens a locked exit with a carried key.
func (e *Engine) unlockExit(s *types.State, ex types.ExitDef) ([]types.Effect, error) {
	if ex.Lock.Key == "" {
		return nil, precondition("It won't budge.")
	}
	if !state.HasItem(s, ex.Lock.Key) {
		return nil, &PreconditionError{Reason: "Locked.", Lines: []string{"You need the right key."}, Event: effects.EventLocked}
	}
	return []types.Effect{
		effects.New(effects.UnlockExit, "room", s.Player.Room, "direction", ex.Direction, "credential", ex.Lock.Key),
		say(fmt.Sprintf("Unlocked the %s.", exitNoun(ex))),
	}, nil
}

func (e *Engine) builtinPlay(s *types.State, t types.Target, extra string) ([]types.Effect, error) {
	if t.Kind != types.TargetFixture {
		return nil, precondition("You can't play that.")
	}
	return e.solveFixture(s, e.Defs.Fixtures[t.ID], types.VerbPlay, extra)
}

// solveFixture feeds an input sequence to a puzzle fixture. A wrong
// sequence still takes a turn and costs sanity.
func (e *Engine) solveFixture(s *types.State, f types.FixtureDef, verb types.Verb, input string) ([]types.Effect, error) {
	if f.Verb != verb {
		return nil, precondition(fmt.Sprintf("You can't %s the %s.", verb, f.Name))
	}
	if input == "" {
		prompt := f.Prompt
		if prompt == "" {
			prompt = fmt.Sprintf("The %s needs something more.", f.Name)
		}
		return nil, precondition(prompt)
	}

	err := world.MatchSequence(s, e.Defs, f.ID, input)
	switch {
	case errors.Is(err, world.ErrAlreadySolved):
		return nil, precondition(fmt.Sprintf("The %s has nothing more to give.", f.Name))

	case errors.Is(err, world.ErrWrongSequence):
		failure := f.Failure
		if failure == "" {
			failure = "Nothing happens."
		}
		return []types.Effect{
			effects.New(effects.AdjustSanity, "amount", -e.scaled(f.FailSanity)),
			effects.New(effects.Emit, "event", effects.EventPuzzleFailed, "fixture", f.ID),
			say(failure),
		}, nil

	case err != nil:
		return nil, precondition("Nothing happens.")
	}

	effs := []types.Effect{effects.New(effects.TriggerFixture, "fixture", f.ID, "input", input)}
	if f.Success != "" {
		effs = append(effs, say(f.Success))
	}
	if f.Reveals != "" {
		effs = append(effs, say(fmt.Sprintf("Inside you find: %s.", e.Defs.ItemName(f.Reveals))))
	}
	return effs, nil
}

func (e *Engine) builtinFlash(s *types.State) ([]types.Effect, error) {
	if len(state.CarriedWithTag(s, e.Defs, types.TagLight)) == 0 {
		return nil, precondition("You have nothing to flash.")
	}
	cost := e.scaled(e.Tuning.Rates.FlashCost)
	if s.Player.Battery <= 0 || s.Player.Battery < cost {
		return nil, precondition("Battery too low!")
	}

	effs := []types.Effect{effects.New(effects.Flash, "cost", cost)}
	stun, hit := adversary.Flash(s, e.Defs, e.profile(), e.RNG)
	if !hit {
		return append(effs, say("The flash lights up the room. Nothing but dust moths.")), nil
	}
	effs = append(effs, stun...)
	return append(effs, say("The Phantom shrieks in the blinding light and vanishes!")), nil
}

func (e *Engine) builtinHint(s *types.State) ([]types.Effect, error) {
	hint := "You sense nothing more here."
	if r, ok := e.Defs.Room(s.Player.Room); ok && r.Hint != "" {
		hint = r.Hint
	}
	return []types.Effect{
		effects.New(effects.AdjustSanity, "amount", -e.scaled(e.Tuning.Rates.HintDrain)),
		say("You strain your mind for clues... " + hint),
	}, nil
}

func (e *Engine) roomIndex(id string) int {
	i, _ := e.Defs.RoomIndex(id)
	return i
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// noun returns the last word of a display name, e.g. "piano".
func noun(name string) string {
	if fields := strings.Fields(strings.ToLower(name)); len(fields) > 0 {
		return fields[len(fields)-1]
	}
	return name
}
