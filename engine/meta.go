package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/nathoo/blackwood/engine/effects"
	"github.com/nathoo/blackwood/engine/parser"
	"github.com/nathoo/blackwood/engine/save"
	"github.com/nathoo/blackwood/engine/snapshot"
	"github.com/nathoo/blackwood/engine/state"
	"github.com/nathoo/blackwood/engine/world"
	"github.com/nathoo/blackwood/types"
)

// meta runs the verbs that never consume a turn. It reports false for
// turn verbs.
func (e *Engine) meta(result *types.Result, cmd types.Command) bool {
	var out []string
	switch cmd.Verb {
	case types.VerbLook:
		for _, line := range e.builtinLook(cmd.Target) {
			out = append(out, e.filter(line))
		}
	case types.VerbInventory:
		out = e.builtinInventory()
	case types.VerbMap:
		out = e.renderMap(e.State)
	case types.VerbJournal:
		out = e.builtinJournal()
	case types.VerbHelp:
		out = helpText
	case types.VerbSave:
		out = e.saveGame(cmd.Extra)
	case types.VerbLoad:
		out = e.loadGame(cmd.Extra)
	case types.VerbUndo:
		out = e.undo(result)
	case types.VerbMute:
		e.Muted = true
		result.Control = types.ControlMute
		out = []string{"Sound muted."}
	case types.VerbUnmute:
		e.Muted = false
		result.Control = types.ControlUnmute
		out = []string{"Sound on."}
	case types.VerbQuit:
		result.Control = types.ControlQuit
		out = []string{"The manor will wait for you."}
	case types.VerbRestart:
		e.reset(e.State.RNGSeed+1, e.State.Player.Difficulty)
		out = append([]string{"The night begins again..."}, e.Intro()...)
	default:
		return false
	}
	result.Output = append(result.Output, out...)
	return true
}

// describeRoom produces the standard room description output.
func (e *Engine) describeRoom(s *types.State) []string {
	d, ok := world.Describe(s, e.Defs, s.Player.Room)
	if !ok {
		return []string{"You are somewhere unknown."}
	}
	output := []string{"== " + d.Name + " =="}
	if d.Dark && !state.HasLight(s, e.Defs) {
		return append(output, "It is pitch black. You can't see a thing.")
	}
	output = append(output, d.Text)
	if d.Dark {
		output = append(output, "Your flashlight cuts a thin path through the darkness.")
	}
	if len(d.Fixtures) > 0 {
		output = append(output, "Here: "+strings.Join(d.Fixtures, ", ")+".")
	}
	if len(d.Items) > 0 {
		output = append(output, "You see: "+strings.Join(d.Items, ", ")+".")
	}
	if s.Adversary.Room == s.Player.Room {
		switch s.Adversary.Mode {
		case types.Hunting:
			output = append(output, "The Phantom is here!")
		case types.Stunned:
			output = append(output, "The Phantom writhes in the corner, stunned.")
		}
	}
	if len(d.Exits) > 0 {
		output = append(output, "Exits: "+strings.Join(d.Exits, ", ")+".")
	} else {
		output = append(output, "There are no obvious exits.")
	}
	return output
}

func (e *Engine) builtinLook(t types.Target) []string {
	s := e.State
	switch t.Kind {
	case types.TargetDirection:
		return e.lookDirection(t.ID)

	case types.TargetFixture:
		f := e.Defs.Fixtures[t.ID]
		out := []string{f.Description}
		if world.Solved(s, f) {
			out = append(out, "It has already given up its secret.")
		} else if f.Prompt != "" {
			out = append(out, f.Prompt)
		}
		return out

	case types.TargetItem:
		item := e.Defs.Items[t.ID]
		out := []string{item.Description}
		if state.HasTag(item, types.TagReadable) && item.Text != "" {
			text := world.Interpolate(s, item.Text)
			out = append(out, text)
			before := len(s.Player.Journal)
			effects.Apply(s, e.Defs, []types.Effect{effects.New(effects.AddJournal, "text", text)}, e.effectsContext())
			if len(s.Player.Journal) > before {
				out = append(out, "You copy it into your journal.")
			}
		}
		return out
	}
	return e.describeRoom(s)
}

func (e *Engine) lookDirection(dir string) []string {
	s := e.State
	room := s.Player.Room
	ex, ok := e.Defs.Exit(room, dir)
	if !ok || (world.IsLocked(s, e.Defs, room, dir) && ex.Lock.Hidden) {
		return []string{"You see nothing that way."}
	}
	if world.IsLocked(s, e.Defs, room, dir) {
		return []string{fmt.Sprintf("The %s to the %s is locked.", exitNoun(ex), dir)}
	}
	if s.Player.Visited[ex.To] {
		return []string{fmt.Sprintf("To the %s: %s.", dir, e.Defs.RoomName(ex.To))}
	}
	return []string{fmt.Sprintf("To the %s lies somewhere you have not been.", dir)}
}

func (e *Engine) builtinInventory() []string {
	s := e.State
	status := fmt.Sprintf("Sanity: %d/%d | Battery: %d/%d",
		s.Player.Sanity, e.Tuning.Limits.MaxSanity, s.Player.Battery, e.Tuning.Limits.MaxBattery)
	inv := s.Player.Inventory
	if len(inv) == 0 {
		return []string{"You are carrying nothing.", status}
	}
	var names []string
	for _, id := range inv {
		names = append(names, e.Defs.ItemName(id))
	}
	return []string{
		fmt.Sprintf("You are carrying (%d/%d): %s.", len(inv), e.Tuning.Limits.MaxInventory, strings.Join(names, ", ")),
		status,
	}
}

func (e *Engine) builtinJournal() []string {
	if len(e.State.Player.Journal) == 0 {
		return []string{"Your journal is empty."}
	}
	out := []string{"Journal:"}
	for i, entry := range e.State.Player.Journal {
		out = append(out, fmt.Sprintf("%d. %s", i+1, entry))
	}
	return out
}

// helpText is the command summary followed by every other word the parser
// accepts for each verb.
var helpText = func() []string {
	out := []string{
		"Commands:",
		"  go <direction>      move (north, south, east, west, up, down; n/s/e/w/u/d)",
		"  take / drop <item>  pick up or put down an item",
		"  use <item>          use an item (amulet, batteries, salt, key, note)",
		"  unlock <target>     unlock an exit, or a safe: unlock safe <code>",
		"  play <fixture> <notes>",
		"  look [target]       look around or at something",
		"  inventory, map, journal",
		"  listen              listen for the Phantom",
		"  flash               flash your light to stun the Phantom",
		"  hint                strain your mind for a clue (costs sanity)",
		"  save [slot], load [slot], undo",
		"  mute, unmute, restart, quit",
		"Also understood:",
	}
	for _, v := range parser.Verbs() {
		if words := parser.Aliases(v); len(words) > 1 {
			out = append(out, fmt.Sprintf("  %-10s %s", words[0], strings.Join(words[1:], ", ")))
		}
	}
	return out
}()

// saveGame writes the live state to a slot.
func (e *Engine) saveGame(slot string) []string {
	if e.Store == nil {
		return []string{"Saving is not available."}
	}
	if slot == "" {
		slot = save.DefaultSlot
	}
	if !save.ValidSlot(slot) {
		return []string{fmt.Sprintf("Invalid slot name '%s'. Use letters, digits, '-' or '_'.", slot)}
	}

	e.State.RNGPosition = e.RNG.Position()
	now := e.now()
	blob, err := save.Encode(snapshot.Capture(e.State), e.Defs.Game.Title, e.Defs.Game.Version, now)
	if err == nil {
		err = e.Store.Put(context.Background(), slot, blob, save.Meta{Slot: slot, Turn: e.State.Turn, SavedAt: now})
	}
	if err != nil {
		e.Logger.Warn("save failed", "slot", slot, "err", err)
		return []string{fmt.Sprintf("Save failed: %v. The game continues unsaved.", err)}
	}
	e.Logger.Debug("saved", "slot", slot, "turn", e.State.Turn)
	return []string{fmt.Sprintf("Game saved to slot '%s'.", slot)}
}

// loadGame replaces the live state with a saved one. Any failure leaves
// the live state untouched.
func (e *Engine) loadGame(slot string) []string {
	if e.Store == nil {
		return []string{"Loading is not available."}
	}
	if slot == "" {
		slot = save.DefaultSlot
	}

	blob, err := e.Store.Get(context.Background(), slot)
	if errors.Is(err, save.ErrSlotNotFound) {
		return []string{fmt.Sprintf("No saved game in slot '%s'.", slot)}
	}
	if err != nil {
		e.Logger.Warn("load failed", "slot", slot, "err", err)
		return []string{fmt.Sprintf("Load failed: %v", err)}
	}
	snap, _, err := save.Decode(blob, e.Defs.Game.Title)
	if err == nil {
		var s *types.State
		if s, err = snapshot.Restore(snap, e.Defs, e.Tuning.Limits); err == nil {
			e.State = s
		}
	}
	if err != nil {
		e.Logger.Warn("load rejected", "slot", slot, "err", err)
		return []string{fmt.Sprintf("Load failed: %v", err)}
	}

	e.RestoreRNG(e.State.RNGSeed, e.State.RNGPosition)
	e.History.Clear()
	e.Logger.Debug("loaded", "slot", slot, "turn", e.State.Turn)
	return append([]string{fmt.Sprintf("Game loaded from slot '%s'.", slot)}, e.describeRoom(e.State)...)
}

// undo restores the state from before the last turn.
func (e *Engine) undo(result *types.Result) []string {
	snap, ok := e.History.Pop()
	if !ok {
		return []string{"Nothing to undo."}
	}
	s, err := snapshot.Restore(snap, e.Defs, e.Tuning.Limits)
	if err != nil {
		e.Logger.Warn("undo rejected", "err", err)
		return []string{fmt.Sprintf("Undo failed: %v", err)}
	}
	e.State = s
	e.RestoreRNG(s.RNGSeed, s.RNGPosition)
	result.Events = append(result.Events, types.Event{Type: effects.EventUndo})
	e.Logger.Debug("undo", "turn", s.Turn, "remaining", e.History.Len())
	return append([]string{"Time folds back on itself..."}, e.describeRoom(s)...)
}
