package engine

import (
	"context"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/nathoo/blackwood/engine/events"
	"github.com/nathoo/blackwood/engine/parser"
	"github.com/nathoo/blackwood/engine/save"
	"github.com/nathoo/blackwood/engine/state"
	"github.com/nathoo/blackwood/engine/world"
	"github.com/nathoo/blackwood/types"
)

// testDefs builds a small manor: a locked gate, a foyer hub, a kitchen
// with a trapdoor to a dark basement, a library with two puzzles and a
// secret study, an attic for the Phantom and the garden exit.
func testDefs() *world.Defs {
	rooms := []types.RoomDef{
		{
			ID: "gate", Name: "Manor Gate", Description: "Rusted iron gates loom before you.",
			Exits: []types.ExitDef{
				{Direction: "north", To: "foyer", Name: "gate", Lock: &types.LockDef{Key: "iron_key", Text: "The gate is chained shut."}},
			},
			MapX: 2, MapY: 2,
		},
		{
			ID: "foyer", Name: "Foyer", Description: "A grand staircase rises into darkness.",
			Exits: []types.ExitDef{
				{Direction: "south", To: "gate"},
				{Direction: "north", To: "library"},
				{Direction: "east", To: "kitchen"},
				{Direction: "west", To: "garden", Name: "french windows", Lock: &types.LockDef{Key: "golden_key"}},
			},
			EnterFlag: "entered_manor",
			Hint:      "The kitchen hides more than food.",
			MapX:      2, MapY: 1,
		},
		{
			ID: "kitchen", Name: "Kitchen", Description: "Pots hang from hooks.",
			Exits: []types.ExitDef{
				{Direction: "west", To: "foyer"},
				{Direction: "down", To: "basement", Name: "trapdoor", Lock: &types.LockDef{Key: "silver_key"}},
			},
			MapX: 3, MapY: 1,
		},
		{
			ID: "basement", Name: "Basement", Description: "Damp stone walls.", Dark: true,
			Exits: []types.ExitDef{{Direction: "up", To: "kitchen"}},
			MapX:  3, MapY: 2,
		},
		{
			ID: "library", Name: "Library", Description: "Shelves of rotting books.",
			Exits: []types.ExitDef{
				{Direction: "south", To: "foyer"},
				{Direction: "up", To: "attic"},
				{Direction: "east", To: "study", Lock: &types.LockDef{Flag: "piano_solved", Hidden: true}},
			},
			MapX: 2, MapY: 0,
		},
		{
			ID: "study", Name: "Secret Study", Description: "A hidden room.", Secret: true,
			Exits: []types.ExitDef{{Direction: "west", To: "library"}},
			MapX:  3, MapY: 0,
		},
		{
			ID: "attic", Name: "Attic", Description: "Dust and cobwebs.",
			Exits: []types.ExitDef{{Direction: "down", To: "library"}},
			MapX:  1, MapY: 0,
		},
		{
			ID: "garden", Name: "Overgrown Garden", Description: "Cold night air.", Sanctuary: true,
			Exits: []types.ExitDef{{Direction: "east", To: "foyer"}},
			MapX:  1, MapY: 1,
		},
	}
	items := map[string]types.ItemDef{
		"iron_key":    {ID: "iron_key", Name: "Iron Key", Description: "A heavy key.", Tags: []string{types.TagKey}, Location: "gate", Takeable: true},
		"flashlight":  {ID: "flashlight", Name: "Flashlight", Description: "A battered torch.", Tags: []string{types.TagLight}, Location: "foyer", Takeable: true},
		"note":        {ID: "note", Name: "Crumpled Note", Description: "Scrawled in haste.", Text: "The safe code is {code:safe}.", Tags: []string{types.TagReadable}, Location: "kitchen", Takeable: true},
		"batteries":   {ID: "batteries", Name: "Spare Batteries", Description: "Two AA cells.", Tags: []string{types.TagConsumable}, Location: "kitchen", Takeable: true, RestoreBattery: 40},
		"amulet":      {ID: "amulet", Name: "Jade Amulet", Description: "It feels warm.", Tags: []string{types.TagConsumable}, Location: "kitchen", Takeable: true, RestoreSanity: 25},
		"salt":        {ID: "salt", Name: "Pouch of Salt", Description: "Coarse salt.", Tags: []string{types.TagConsumable}, Location: "attic", Takeable: true, Stuns: true},
		"golden_key":  {ID: "golden_key", Name: "Golden Key", Description: "Ornate.", Tags: []string{types.TagKey}, Location: "basement", Takeable: true, Value: 50},
		"silver_key":  {ID: "silver_key", Name: "Silver Key", Description: "Tarnished.", Tags: []string{types.TagKey}, Takeable: true},
		"sapphire":    {ID: "sapphire", Name: "Star Sapphire", Description: "It glitters.", Tags: []string{types.TagQuest}, Location: "study", Takeable: true, Value: 500},
		"candlestick": {ID: "candlestick", Name: "Candlestick", Description: "Brass.", Location: "library", Takeable: true},
	}
	fixtures := map[string]types.FixtureDef{
		"piano": {
			ID: "piano", Name: "Grand Piano", Room: "library", Description: "Yellowed keys.",
			Verb: types.VerbPlay, Sequence: "DAD", Flag: "piano_solved", Opens: []string{"east"},
			Prompt: "Play which notes?", Success: "A bookcase swings open!", Failure: "A discordant chord.", FailSanity: 2,
		},
		"safe": {
			ID: "safe", Name: "Safe", Room: "library", Description: "A steel safe.",
			Verb: types.VerbUnlock, CodeDigits: 3, Flag: "safe_open", Reveals: "silver_key",
			Prompt: "It needs a three-digit code.", Success: "The safe clicks open.", Failure: "The dial sticks.", FailSanity: 3,
		},
	}
	game := types.GameDef{
		Title: "Blackwood Test", Version: "1.0", Start: "gate", Exit: "garden",
		Intro:     "Night falls.",
		Adversary: types.AdversaryDef{Name: "Phantom", Start: "attic", ActivationFlag: "entered_manor"},
	}
	return world.NewDefs(game, rooms, items, fixtures)
}

func newTestEngine(t *testing.T, opts Options) *Engine {
	t.Helper()
	if opts.Seed == 0 {
		opts.Seed = 42
	}
	return New(testDefs(), opts)
}

// place moves the player and hands them items without a turn.
func place(e *Engine, room string, items ...string) {
	e.State.Player.Room = room
	e.State.Player.Visited[room] = true
	for _, id := range items {
		for _, r := range e.Defs.Rooms {
			world.RemoveItem(e.State, e.Defs, r.ID, id)
		}
		e.State.Player.Inventory = append(e.State.Player.Inventory, id)
	}
}

func outputContains(res types.Result, substr string) bool {
	for _, line := range res.Output {
		if strings.Contains(line, substr) {
			return true
		}
	}
	return false
}

func hasEvent(res types.Result, tag string) bool {
	for _, ev := range res.Events {
		if ev.Type == tag {
			return true
		}
	}
	return false
}

func TestStep_TakeKeyAndOpenGate(t *testing.T) {
	e := newTestEngine(t, Options{})

	res := e.Step("take iron key")
	if !res.TurnConsumed {
		t.Fatalf("take should consume a turn: %v", res.Output)
	}
	if !state.HasItem(e.State, "iron_key") {
		t.Fatal("iron key should be in inventory")
	}
	if len(world.RoomItems(e.State, e.Defs, "gate")) != 0 {
		t.Errorf("gate still holds %v", world.RoomItems(e.State, e.Defs, "gate"))
	}
	if !hasEvent(res, "item_pickup") {
		t.Error("expected item_pickup event")
	}

	res = e.Step("go north")
	if e.State.Player.Room != "foyer" {
		t.Fatalf("room = %q, want foyer; output %v", e.State.Player.Room, res.Output)
	}
	if !outputContains(res, "Unlocked the gate.") {
		t.Errorf("expected unlock narration, got %v", res.Output)
	}
	if !outputContains(res, "== Foyer ==") {
		t.Errorf("expected foyer description, got %v", res.Output)
	}
	if !e.State.Player.Flags["entered_manor"] {
		t.Error("entering the foyer should set entered_manor")
	}
	if e.State.Turn != 2 {
		t.Errorf("turn = %d, want 2", e.State.Turn)
	}
}

func TestStep_LockedTrapdoor(t *testing.T) {
	e := newTestEngine(t, Options{})
	place(e, "kitchen", "flashlight")
	before := state.Clone(e.State)

	res := e.Step("go down")
	if len(res.Output) == 0 || res.Output[0] != "Locked." {
		t.Fatalf("output = %v, want Locked.", res.Output)
	}
	if res.TurnConsumed {
		t.Error("a locked exit must not consume a turn")
	}
	if e.State.Player.Sanity != before.Player.Sanity || e.State.Player.Battery != before.Player.Battery {
		t.Errorf("resources changed: sanity %d battery %d", e.State.Player.Sanity, e.State.Player.Battery)
	}
	if e.State.Turn != before.Turn || e.State.Player.Room != "kitchen" {
		t.Errorf("turn %d room %q", e.State.Turn, e.State.Player.Room)
	}
	if e.History.Len() != 0 {
		t.Error("a rejected command must not push a snapshot")
	}
	if !hasEvent(res, "locked") {
		t.Error("expected locked event")
	}
}

func TestStep_HiddenExitLooksAbsent(t *testing.T) {
	e := newTestEngine(t, Options{})
	place(e, "library")

	res := e.Step("go east")
	if len(res.Output) == 0 || res.Output[0] != "You can't go that way." {
		t.Errorf("output = %v", res.Output)
	}
}

func TestStep_FlashNeedsBattery(t *testing.T) {
	e := newTestEngine(t, Options{})
	place(e, "foyer", "flashlight")
	e.State.Player.Battery = 0
	e.State.Adversary = types.Adversary{Room: "foyer", Mode: types.Hunting}

	res := e.Step("flash")
	if len(res.Output) == 0 || res.Output[0] != "Battery too low!" {
		t.Fatalf("output = %v", res.Output)
	}
	if res.TurnConsumed {
		t.Error("flash without battery must not consume a turn")
	}
	if e.State.Player.Battery != 0 {
		t.Errorf("battery = %d", e.State.Player.Battery)
	}
	if e.State.Adversary.Mode != types.Hunting || e.State.Adversary.Room != "foyer" {
		t.Errorf("adversary changed: %+v", e.State.Adversary)
	}
}

func TestStep_FlashWithoutLight(t *testing.T) {
	e := newTestEngine(t, Options{})
	res := e.Step("flash")
	if res.TurnConsumed || res.Output[0] != "You have nothing to flash." {
		t.Errorf("got %v consumed=%v", res.Output, res.TurnConsumed)
	}
}

func TestStep_FlashStunsPhantom(t *testing.T) {
	e := newTestEngine(t, Options{})
	place(e, "foyer", "flashlight")
	e.State.Adversary = types.Adversary{Room: "foyer", Mode: types.Hunting}

	res := e.Step("flash")
	if !res.TurnConsumed {
		t.Fatalf("flash should consume a turn: %v", res.Output)
	}
	adv := e.State.Adversary
	if adv.Mode != types.Stunned {
		t.Fatalf("mode = %s, want stunned", adv.Mode)
	}
	// Stunned for 3 turns, then this turn's step counts one down.
	if adv.StunTurns != 2 {
		t.Errorf("stun turns = %d, want 2", adv.StunTurns)
	}
	if adv.Room == "foyer" || adv.Room == "garden" {
		t.Errorf("phantom should be flung to a non-sanctuary neighbour, got %q", adv.Room)
	}
	if e.State.Player.Battery != 100-20-2 {
		t.Errorf("battery = %d, want 78", e.State.Player.Battery)
	}
	if !hasEvent(res, "phantom_stunned") || !hasEvent(res, "flash") {
		t.Errorf("events = %v", events.Tags(res.Events))
	}
}

func TestStep_PhantomAttack(t *testing.T) {
	e := newTestEngine(t, Options{})
	place(e, "foyer")
	e.State.Adversary = types.Adversary{Room: "foyer", Mode: types.Hunting}

	res := e.Step("listen")
	if !outputContains(res, "IT IS HERE!") {
		t.Errorf("output = %v", res.Output)
	}
	// turn drain 1 + same-room proximity 4 + attack 15
	if e.State.Player.Sanity != 80 {
		t.Errorf("sanity = %d, want 80", e.State.Player.Sanity)
	}
	if !hasEvent(res, "phantom_attack") {
		t.Errorf("events = %v", events.Tags(res.Events))
	}
}

func TestStep_SanityLossEndsGame(t *testing.T) {
	e := newTestEngine(t, Options{})
	e.State.Player.Sanity = 1

	res := e.Step("listen")
	if res.Status != types.Lost || e.State.Status != types.Lost {
		t.Fatalf("status = %s, want lost", res.Status)
	}
	if e.State.Ending != EndingShattered {
		t.Errorf("ending = %q", e.State.Ending)
	}
	if !hasEvent(res, "game_lost") {
		t.Error("expected game_lost event")
	}

	for _, input := range []string{"look", "take iron key", "go north", "undo", "save", "xyzzy", "go"} {
		res := e.Step(input)
		if res.TurnConsumed || !outputContains(res, "The game is over") {
			t.Errorf("%q after loss: %v", input, res.Output)
		}
	}
	if res := e.Step("help"); !outputContains(res, "Commands:") {
		t.Errorf("help after loss: %v", res.Output)
	}
	if res := e.Step("quit"); res.Control != types.ControlQuit {
		t.Errorf("quit control = %q", res.Control)
	}

	res = e.Step("restart")
	if res.Status != types.Playing || e.State.Player.Sanity != 100 || e.State.Turn != 0 {
		t.Errorf("restart: status %s sanity %d turn %d", res.Status, e.State.Player.Sanity, e.State.Turn)
	}
}

func TestStep_DarkRoomWithoutLightIsFatal(t *testing.T) {
	e := newTestEngine(t, Options{})
	place(e, "kitchen", "silver_key")

	e.Step("go down")
	if e.State.Player.Room != "basement" {
		t.Fatalf("room = %q", e.State.Player.Room)
	}
	if e.State.Status != types.Lost || e.State.Ending != EndingDarkness {
		t.Errorf("status %s ending %q", e.State.Status, e.State.Ending)
	}
}

func TestStep_DarkRoomWithLight(t *testing.T) {
	e := newTestEngine(t, Options{})
	place(e, "kitchen", "silver_key", "flashlight")

	res := e.Step("go down")
	if e.State.Status != types.Playing {
		t.Fatalf("status = %s: %v", e.State.Status, res.Output)
	}
	if e.State.Player.Battery != 95 {
		t.Errorf("battery = %d, want 95 after a dark turn", e.State.Player.Battery)
	}
	if !outputContains(res, "Golden Key") {
		t.Errorf("the light should reveal the room: %v", res.Output)
	}
}

func TestStep_InventoryLimit(t *testing.T) {
	e := newTestEngine(t, Options{})
	place(e, "kitchen")
	for _, id := range []string{"flashlight", "salt", "golden_key", "candlestick"} {
		for _, r := range e.Defs.Rooms {
			world.RemoveItem(e.State, e.Defs, r.ID, id)
		}
		world.PlaceItem(e.State, e.Defs, "kitchen", id)
	}

	names := []string{"crumpled note", "spare batteries", "jade amulet", "flashlight", "pouch of salt", "golden key", "candlestick"}
	for i, name := range names {
		res := e.Step("take " + name)
		if n := len(e.State.Player.Inventory); n > 5 {
			t.Fatalf("inventory grew to %d", n)
		}
		if i >= 5 {
			if res.TurnConsumed || res.Output[0] != "Inventory full!" {
				t.Errorf("take %s at capacity: %v", name, res.Output)
			}
		}
	}
	room := world.RoomItems(e.State, e.Defs, "kitchen")
	if len(room) != 2 {
		t.Errorf("kitchen should still hold 2 items, has %v", room)
	}
}

func TestStep_UndoRestoresPreSequenceState(t *testing.T) {
	e := newTestEngine(t, Options{})
	before := state.Clone(e.State)

	inputs := []string{"take iron key", "go north", "take flashlight", "east"}
	for _, in := range inputs {
		if res := e.Step(in); !res.TurnConsumed {
			t.Fatalf("%q did not consume a turn: %v", in, res.Output)
		}
	}
	for range inputs {
		res := e.Step("undo")
		if res.TurnConsumed {
			t.Error("undo must not consume a turn")
		}
	}
	if !reflect.DeepEqual(e.State, before) {
		t.Errorf("state after undo:\n got %+v\nwant %+v", e.State, before)
	}
	if res := e.Step("undo"); res.Output[0] != "Nothing to undo." {
		t.Errorf("empty undo: %v", res.Output)
	}
}

func TestStep_UndoDepthIsBounded(t *testing.T) {
	e := newTestEngine(t, Options{})
	for i := 0; i < 15; i++ {
		e.Step("listen")
	}
	if e.History.Len() != e.Tuning.Limits.UndoDepth {
		t.Errorf("history = %d, want %d", e.History.Len(), e.Tuning.Limits.UndoDepth)
	}
}

func TestStep_SaveLoadRoundTrip(t *testing.T) {
	store := save.NewFileStore(filepath.Join(t.TempDir(), "saves"))
	fixed := time.Date(2026, 10, 17, 22, 0, 0, 0, time.UTC)
	e := newTestEngine(t, Options{Store: store, Now: func() time.Time { return fixed }})

	e.Step("take iron key")
	saved := state.Clone(e.State)
	if res := e.Step("save"); !outputContains(res, "Game saved to slot 'quicksave'.") {
		t.Fatalf("save: %v", res.Output)
	}
	e.Step("go north")
	e.Step("take flashlight")

	res := e.Step("load")
	if !outputContains(res, "Game loaded") {
		t.Fatalf("load: %v", res.Output)
	}
	if !reflect.DeepEqual(e.State, saved) {
		t.Errorf("loaded state:\n got %+v\nwant %+v", e.State, saved)
	}
	if e.RNG.Position() != saved.RNGPosition {
		t.Errorf("rng position = %d, want %d", e.RNG.Position(), saved.RNGPosition)
	}
	if e.History.Len() != 0 {
		t.Error("load should clear the undo history")
	}

	if res := e.Step("save second"); !outputContains(res, "slot 'second'") {
		t.Errorf("named save: %v", res.Output)
	}
	slots, err := store.Slots(context.Background())
	if err != nil || len(slots) != 2 {
		t.Errorf("slots = %v, %v", slots, err)
	}
}

func TestStep_LoadFailuresKeepState(t *testing.T) {
	store := save.NewFileStore(t.TempDir())
	e := newTestEngine(t, Options{Store: store})
	e.Step("take iron key")
	before := state.Clone(e.State)

	if res := e.Step("load nothing"); !outputContains(res, "No saved game in slot 'nothing'.") {
		t.Errorf("missing slot: %v", res.Output)
	}
	if err := store.Put(context.Background(), "broken", []byte("{not a save"), save.Meta{}); err != nil {
		t.Fatal(err)
	}
	if res := e.Step("load broken"); !outputContains(res, "Load failed") {
		t.Errorf("corrupt slot: %v", res.Output)
	}
	if !reflect.DeepEqual(e.State, before) {
		t.Error("a failed load must leave the state untouched")
	}
}

func TestStep_SaveWithoutStore(t *testing.T) {
	e := newTestEngine(t, Options{})
	if res := e.Step("save"); res.Output[0] != "Saving is not available." {
		t.Errorf("output = %v", res.Output)
	}
}

func TestStep_PianoPuzzle(t *testing.T) {
	e := newTestEngine(t, Options{})
	place(e, "library")

	res := e.Step("play piano cab")
	if !res.TurnConsumed || !outputContains(res, "A discordant chord.") {
		t.Fatalf("wrong notes: %v", res.Output)
	}
	if e.State.Player.Sanity != 100-2-1 {
		t.Errorf("sanity = %d, want 97", e.State.Player.Sanity)
	}

	res = e.Step("play piano dad")
	if !outputContains(res, "A bookcase swings open!") || !e.State.Player.Flags["piano_solved"] {
		t.Fatalf("right notes: %v", res.Output)
	}
	if !hasEvent(res, "puzzle_solved") {
		t.Error("expected puzzle_solved")
	}
	e.Step("go east")
	if e.State.Player.Room != "study" {
		t.Errorf("room = %q, want study", e.State.Player.Room)
	}
	if res := e.Step("play"); res.TurnConsumed {
		t.Error("play without a target should be an input error")
	}
}

func TestStep_SafeAndNote(t *testing.T) {
	e := newTestEngine(t, Options{})
	code := e.State.Codes["safe"]
	if len(code) != 3 {
		t.Fatalf("code = %q", code)
	}

	place(e, "kitchen")
	res := e.Step("look note")
	if res.TurnConsumed {
		t.Error("look must not consume a turn")
	}
	if !outputContains(res, "The safe code is "+code+".") {
		t.Errorf("note text: %v", res.Output)
	}
	if len(e.State.Player.Journal) != 1 {
		t.Errorf("journal = %v", e.State.Player.Journal)
	}
	if res := e.Step("journal"); !outputContains(res, code) {
		t.Errorf("journal output: %v", res.Output)
	}

	place(e, "library")
	if res := e.Step("unlock safe"); res.TurnConsumed || res.Output[0] != "It needs a three-digit code." {
		t.Errorf("unlock without code: %v", res.Output)
	}
	res = e.Step("unlock safe " + code)
	if !outputContains(res, "The safe clicks open.") || !outputContains(res, "Silver Key") {
		t.Fatalf("unlock safe: %v", res.Output)
	}
	items := world.RoomItems(e.State, e.Defs, "library")
	found := false
	for _, id := range items {
		found = found || id == "silver_key"
	}
	if !found {
		t.Errorf("silver key not revealed: %v", items)
	}
	if res := e.Step("unlock safe " + code); res.TurnConsumed {
		t.Error("a solved safe should not take a turn")
	}
}

func TestStep_UseItems(t *testing.T) {
	e := newTestEngine(t, Options{})
	place(e, "foyer", "amulet", "batteries", "flashlight", "salt")
	e.State.Player.Sanity = 50
	e.State.Player.Battery = 30

	e.Step("use amulet")
	// +25 then the turn drain of 1
	if e.State.Player.Sanity != 74 {
		t.Errorf("sanity = %d, want 74", e.State.Player.Sanity)
	}
	if state.HasItem(e.State, "amulet") {
		t.Error("amulet should be consumed")
	}

	e.Step("use batteries")
	// 30 - 2 (previous turn) + 40 - 2
	if e.State.Player.Battery != 66 {
		t.Errorf("battery = %d, want 66", e.State.Player.Battery)
	}

	if res := e.Step("use salt"); res.TurnConsumed {
		t.Errorf("salt with no phantom here: %v", res.Output)
	}
	e.State.Adversary = types.Adversary{Room: "foyer", Mode: types.Hunting}
	res := e.Step("use salt")
	if !res.TurnConsumed || e.State.Adversary.Mode != types.Stunned {
		t.Errorf("salt: %v, adversary %+v", res.Output, e.State.Adversary)
	}
}

func TestStep_WinWithQuestItem(t *testing.T) {
	e := newTestEngine(t, Options{})
	place(e, "foyer", "golden_key", "sapphire")

	res := e.Step("go west")
	if res.Status != types.Won {
		t.Fatalf("status = %s: %v", res.Status, res.Output)
	}
	if e.State.Ending != EndingWealthy {
		t.Errorf("ending = %q", e.State.Ending)
	}
	want := Score(e.State, e.Defs.Items)
	if want != 100*10-1*2+50+500 {
		t.Errorf("score = %d", want)
	}
	if !outputContains(res, "WEALTHY SURVIVOR") {
		t.Errorf("output = %v", res.Output)
	}
}

func TestStep_WinWithoutQuestItem(t *testing.T) {
	e := newTestEngine(t, Options{})
	place(e, "foyer", "golden_key")
	e.Step("go west")
	if e.State.Status != types.Won || e.State.Ending != EndingEscaped {
		t.Errorf("status %s ending %q", e.State.Status, e.State.Ending)
	}
}

func TestStep_InputErrors(t *testing.T) {
	e := newTestEngine(t, Options{})
	tests := []struct {
		input string
		want  string
	}{
		{"", "Say something."},
		{"xyzzy", "I don't understand 'xyzzy'."},
		{"take", "Take what?"},
		{"take unicorn", "You don't see 'unicorn' here."},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			res := e.Step(tt.input)
			if res.TurnConsumed {
				t.Error("input errors must not consume a turn")
			}
			if !outputContains(res, tt.want) {
				t.Errorf("output = %v, want %q", res.Output, tt.want)
			}
			if !hasEvent(res, "error") {
				t.Error("expected error event")
			}
		})
	}
	if e.State.Turn != 0 {
		t.Errorf("turn = %d", e.State.Turn)
	}
}

func TestStep_FuzzyVerbCorrection(t *testing.T) {
	e := newTestEngine(t, Options{})
	res := e.Step("lokk")
	if len(res.Output) < 2 || res.Output[0] != "(Did you mean 'look'?)" {
		t.Fatalf("output = %v", res.Output)
	}
	if res.Output[1] != "== Manor Gate ==" {
		t.Errorf("look output = %v", res.Output)
	}
}

func TestStep_HelpListsEveryVerb(t *testing.T) {
	e := newTestEngine(t, Options{})
	res := e.Step("help")
	if res.TurnConsumed {
		t.Error("help should not consume a turn")
	}
	text := strings.Join(res.Output, "\n")
	for _, v := range parser.Verbs() {
		words := parser.Aliases(v)
		if len(words) == 0 {
			t.Errorf("verb %q has no words", v)
			continue
		}
		if !strings.Contains(text, words[0]) {
			t.Errorf("help never mentions %q", words[0])
		}
		if len(words) > 1 && !strings.Contains(text, strings.Join(words[1:], ", ")) {
			t.Errorf("help is missing the other words for %q: %v", words[0], words[1:])
		}
	}
}

func TestStep_MuteSilencesSink(t *testing.T) {
	rec := &events.Recorder{}
	e := newTestEngine(t, Options{Sound: rec})

	e.Step("take iron key")
	if len(rec.Tags) == 0 || rec.Tags[0] != "item_pickup" {
		t.Fatalf("tags = %v", rec.Tags)
	}
	res := e.Step("mute")
	if res.Control != types.ControlMute || !e.Muted {
		t.Fatalf("mute: control %q muted %v", res.Control, e.Muted)
	}
	n := len(rec.Tags)
	e.Step("drop iron key")
	if len(rec.Tags) != n {
		t.Errorf("muted sink still played %v", rec.Tags[n:])
	}
	if res := e.Step("unmute"); res.Control != types.ControlUnmute || e.Muted {
		t.Errorf("unmute: %q", res.Control)
	}
}

func TestStep_HintCostsSanity(t *testing.T) {
	e := newTestEngine(t, Options{})
	place(e, "foyer")
	res := e.Step("hint")
	if !outputContains(res, "The kitchen hides more than food.") {
		t.Errorf("output = %v", res.Output)
	}
	if e.State.Player.Sanity != 100-5-1 {
		t.Errorf("sanity = %d, want 94", e.State.Player.Sanity)
	}
}

func TestStep_DifficultyScalesDrains(t *testing.T) {
	// hint 5 and turn drain 1, each scaled and truncated
	tests := []struct {
		difficulty types.Difficulty
		want       int
	}{
		{types.Story, 100 - 2 - 0},
		{types.Normal, 100 - 5 - 1},
		{types.Hardcore, 100 - 7 - 1},
	}
	for _, tt := range tests {
		t.Run(string(tt.difficulty), func(t *testing.T) {
			e := newTestEngine(t, Options{Difficulty: tt.difficulty})
			place(e, "foyer")
			e.Step("hint")
			if e.State.Player.Sanity != tt.want {
				t.Errorf("sanity = %d, want %d", e.State.Player.Sanity, tt.want)
			}
		})
	}
}

func TestStep_Map(t *testing.T) {
	e := newTestEngine(t, Options{})
	e.Step("take iron key")
	e.Step("north")

	res := e.Step("map")
	if res.TurnConsumed {
		t.Error("map must not consume a turn")
	}
	joined := strings.Join(res.Output, "\n")
	if !strings.Contains(joined, "[*Foyer]") || !strings.Contains(joined, "[Manor Gate]") {
		t.Errorf("map:\n%s", joined)
	}
	if strings.Contains(joined, "Secret") {
		t.Errorf("secret study should be hidden:\n%s", joined)
	}
	if !strings.Contains(joined, "[?]") {
		t.Errorf("unvisited rooms should show as [?]:\n%s", joined)
	}
}

func TestStep_Deterministic(t *testing.T) {
	inputs := []string{"take iron key", "n", "take flashlight", "n", "listen", "up", "s", "s", "e", "look"}
	run := func() [][]string {
		e := newTestEngine(t, Options{Seed: 7, Difficulty: types.Hardcore})
		var out [][]string
		for _, in := range inputs {
			out = append(out, e.Step(in).Output)
		}
		return out
	}
	if a, b := run(), run(); !reflect.DeepEqual(a, b) {
		t.Errorf("same seed, different runs:\n%v\n%v", a, b)
	}
}

func TestStep_RecordsRNGPosition(t *testing.T) {
	e := newTestEngine(t, Options{Difficulty: types.Hardcore})
	place(e, "foyer")
	e.State.Adversary = types.Adversary{Room: "library", Mode: types.Hunting}
	e.Step("listen")
	if e.State.RNGPosition != e.RNG.Position() {
		t.Errorf("state position %d, rng %d", e.State.RNGPosition, e.RNG.Position())
	}
}
