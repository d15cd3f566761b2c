package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/nathoo/blackwood/engine"
	"github.com/nathoo/blackwood/engine/save"
	"github.com/nathoo/blackwood/engine/world"
	"github.com/nathoo/blackwood/types"
)

// testDefs returns a hall with a parlor to the north and the yard exit
// to the east.
func testDefs() *world.Defs {
	rooms := []types.RoomDef{
		{ID: "hall", Name: "Hall", Description: "A grand hall.", Exits: []types.ExitDef{
			{Direction: "north", To: "parlor"},
			{Direction: "east", To: "yard"},
		}},
		{ID: "parlor", Name: "Parlor", Description: "A dusty parlor.", Exits: []types.ExitDef{
			{Direction: "south", To: "hall"},
		}},
		{ID: "yard", Name: "Yard", Description: "Open air.", Sanctuary: true, Exits: []types.ExitDef{
			{Direction: "west", To: "hall"},
		}},
	}
	items := map[string]types.ItemDef{
		"key": {ID: "key", Name: "Rusty Key", Description: "An old key.", Location: "hall", Takeable: true, Tags: []string{types.TagKey}},
	}
	game := types.GameDef{
		Title: "Test Game", Version: "1.0", Start: "hall", Exit: "yard",
		Intro:     "Welcome to the test.",
		Adversary: types.AdversaryDef{Name: "Phantom", Start: "parlor", ActivationFlag: "never"},
	}
	return world.NewDefs(game, rooms, items, nil)
}

func newTestCLI(t *testing.T, input string) (*CLI, *bytes.Buffer) {
	t.Helper()
	eng := engine.New(testDefs(), engine.Options{Seed: 1})
	var out bytes.Buffer
	c := &CLI{
		Engine: eng,
		In:     strings.NewReader(input),
		Out:    &out,
		Plain:  true,
	}
	return c, &out
}

func TestCLI_IntroAndStartingRoom(t *testing.T) {
	c, out := newTestCLI(t, "/quit\n")
	c.Run()

	output := out.String()
	for _, want := range []string{"Test Game v1.0", "Welcome to the test.", "== Hall ==", "A grand hall.", "Sanity"} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q:\n%s", want, output)
		}
	}
}

func TestCLI_PlainHasNoEscapes(t *testing.T) {
	c, out := newTestCLI(t, "look\nxyzzy\n/quit\n")
	c.Run()
	if strings.Contains(out.String(), "\x1b[") {
		t.Error("plain output contains ANSI escapes")
	}
}

func TestCLI_Navigation(t *testing.T) {
	c, out := newTestCLI(t, "go north\n/quit\n")
	c.Run()

	if !strings.Contains(out.String(), "A dusty parlor.") {
		t.Error("expected parlor description after going north")
	}
	if c.Engine.State.Player.Room != "parlor" {
		t.Errorf("room = %q, want parlor", c.Engine.State.Player.Room)
	}
}

func TestCLI_SlashCommands(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"help", "/help\n/quit\n", []string{"/trace", "/state", "/quit", "again, g"}},
		{"state", "/state\n/quit\n", []string{"Room: hall", "Turn: 0 (playing)", "RNG: seed 1"}},
		{"unknown", "/bogus\n/quit\n", []string{"Unknown command: /bogus."}},
		{"saves", "/saves\n/quit\n", []string{"[Saving is not available.]"}},
		{"trace", "/trace\ntake key\n/trace\n/quit\n", []string{
			"Trace output enabled.", "[trace] Effects:", "[trace]   take_item", "Trace output disabled.",
		}},
		{"quit", "/quit\nlook\n", []string{"[Goodbye.]"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, out := newTestCLI(t, tt.input)
			c.Run()
			for _, want := range tt.want {
				if !strings.Contains(out.String(), want) {
					t.Errorf("output missing %q:\n%s", want, out.String())
				}
			}
		})
	}
}

func TestCLI_EmptyInputAndComments(t *testing.T) {
	c, out := newTestCLI(t, "\n# a comment\n\n/quit\n")
	c.Run()
	if strings.Contains(out.String(), "Say something.") {
		t.Error("empty lines should be skipped by the CLI")
	}
	if c.Engine.State.Turn != 0 {
		t.Errorf("turn = %d, want 0", c.Engine.State.Turn)
	}
}

func TestCLI_Again(t *testing.T) {
	c, out := newTestCLI(t, "again\nlook\ng\n/quit\n")
	c.Run()

	output := out.String()
	if !strings.Contains(output, "Nothing to repeat.") {
		t.Error("expected nothing-to-repeat message")
	}
	// Intro, look and the repeat.
	if got := strings.Count(output, "A grand hall."); got != 3 {
		t.Errorf("room description shown %d times, want 3", got)
	}
}

func TestCLI_EchoInput(t *testing.T) {
	c, out := newTestCLI(t, "inventory\n/quit\n")
	c.EchoInput = true
	c.Run()
	if !strings.Contains(out.String(), "> inventory\n") {
		t.Errorf("expected echoed input:\n%s", out.String())
	}
}

func TestCLI_QuitPrompt(t *testing.T) {
	tests := []struct {
		name   string
		answer string
		saved  bool
	}{
		{"yes", "y\n", true},
		{"no", "n\n", false},
		{"other", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, out := newTestCLI(t, "take key\nquit\n"+tt.answer+"look\n")
			c.Engine.Store = save.NewFileStore(t.TempDir())
			c.Run()

			output := out.String()
			if !strings.Contains(output, "Save before quitting? (y/n)") {
				t.Fatalf("expected the save prompt:\n%s", output)
			}
			if got := strings.Contains(output, "Game saved to slot 'quicksave'."); got != tt.saved {
				t.Errorf("saved = %v, want %v:\n%s", got, tt.saved, output)
			}
			if strings.Count(output, "A grand hall.") != 1 {
				t.Error("input after quitting was processed")
			}
		})
	}
}

func TestCLI_QuitWithoutStoreSkipsPrompt(t *testing.T) {
	c, out := newTestCLI(t, "quit\n")
	c.Run()
	if strings.Contains(out.String(), "Save before quitting") {
		t.Error("no store configured, the prompt should be skipped")
	}
	if !strings.Contains(out.String(), "The manor will wait for you.") {
		t.Error("expected quit narration")
	}
}

func TestCLI_DifficultyMenu(t *testing.T) {
	c, out := newTestCLI(t, "nightmare\n3\n/quit\n")
	c.ChooseDifficulty = true
	c.Run()

	output := out.String()
	for _, want := range []string{"Choose your difficulty:", "1. Story", "3. Hardcore", "Please enter 1, 2 or 3."} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q:\n%s", want, output)
		}
	}
	if d := c.Engine.State.Player.Difficulty; d != types.Hardcore {
		t.Errorf("difficulty = %q, want hardcore", d)
	}
}

func TestCLI_DifficultyMenuDefault(t *testing.T) {
	c, _ := newTestCLI(t, "\n/quit\n")
	c.ChooseDifficulty = true
	c.Run()
	if d := c.Engine.State.Player.Difficulty; d != types.Normal {
		t.Errorf("difficulty = %q, want normal", d)
	}
}

func TestCLI_GameOverKeepsReading(t *testing.T) {
	c, out := newTestCLI(t, "east\nnorth\nrestart\n/quit\n")
	c.Run()

	output := out.String()
	if !strings.Contains(output, "*** ENDING: ESCAPED ***") {
		t.Fatalf("expected an ending:\n%s", output)
	}
	if !strings.Contains(output, "The game is over.") {
		t.Error("expected the game-over refusal")
	}
	if c.Engine.State.Status != types.Playing || c.Engine.State.Player.Room != "hall" {
		t.Errorf("restart did not start a new game: %s in %s", c.Engine.State.Status, c.Engine.State.Player.Room)
	}
}

func TestBell(t *testing.T) {
	var buf bytes.Buffer
	b := Bell{Out: &buf}
	b.Play("item_pickup")
	if buf.Len() != 0 {
		t.Errorf("item_pickup rang the bell")
	}
	b.Play("phantom_attack")
	if buf.String() != "\a" {
		t.Errorf("phantom_attack wrote %q, want a bell", buf.String())
	}
}

func TestCLI_MutedEngineRingsNoBell(t *testing.T) {
	var bell bytes.Buffer
	c, _ := newTestCLI(t, "mute\ngo north\n/quit\n")
	c.Engine.Sound = Bell{Out: &bell}
	c.Engine.State.Adversary.Mode = types.Hunting
	c.Engine.State.Adversary.StunTurns = 0
	c.Run()
	if bell.Len() != 0 {
		t.Errorf("muted game rang the bell %d times", bell.Len())
	}
}
