package state

import (
	"testing"

	"github.com/nathoo/blackwood/engine/world"
	"github.com/nathoo/blackwood/types"
)

type fixedIntn struct{ v int }

func (f fixedIntn) Intn(n int) int { return f.v % n }

func testDefs() *world.Defs {
	rooms := []types.RoomDef{
		{ID: "gate", Name: "Gate", Exits: []types.ExitDef{{Direction: "north", To: "hall"}}},
		{ID: "hall", Name: "Hall", Dark: true, Exits: []types.ExitDef{{Direction: "south", To: "gate"}}},
	}
	items := map[string]types.ItemDef{
		"torch": {ID: "torch", Name: "Torch", Tags: []string{types.TagLight}, Location: "gate", Takeable: true},
		"key":   {ID: "key", Name: "Key", Tags: []string{types.TagKey}, Location: "hall", Takeable: true},
		"gem":   {ID: "gem", Name: "Gem"},
	}
	fixtures := map[string]types.FixtureDef{
		"safe": {ID: "safe", Name: "Safe", Room: "hall", CodeDigits: 3},
	}
	game := types.GameDef{Start: "gate", Adversary: types.AdversaryDef{Start: "hall"}}
	return world.NewDefs(game, rooms, items, fixtures)
}

var testLimits = types.Limits{MaxSanity: 100, MaxBattery: 100, MaxInventory: 5, UndoDepth: 10}

func TestNewState(t *testing.T) {
	d := testDefs()
	s := NewState(d, types.Normal, testLimits, fixedIntn{v: 27})

	if s.Player.Room != "gate" {
		t.Errorf("room = %q, want gate", s.Player.Room)
	}
	if s.Player.Sanity != 100 || s.Player.Battery != 100 {
		t.Errorf("resources = %d/%d, want 100/100", s.Player.Sanity, s.Player.Battery)
	}
	if !s.Player.Visited["gate"] {
		t.Error("start room should be visited")
	}
	if s.Adversary.Room != "hall" || s.Adversary.Mode != types.Dormant {
		t.Errorf("adversary = %+v", s.Adversary)
	}
	if got := world.RoomItems(s, d, "gate"); len(got) != 1 || got[0] != "torch" {
		t.Errorf("gate items = %v", got)
	}
	if got := world.RoomItems(s, d, "hall"); len(got) != 1 || got[0] != "key" {
		t.Errorf("hall items = %v", got)
	}
	if s.Codes["safe"] != "127" {
		t.Errorf("safe code = %q, want 127", s.Codes["safe"])
	}
	if s.Status != types.Playing {
		t.Errorf("status = %q", s.Status)
	}
}

func TestGenerateCode(t *testing.T) {
	tests := []struct {
		digits int
		v      int
		want   string
	}{
		{1, 0, "1"},
		{1, 8, "9"},
		{3, 0, "100"},
		{3, 899, "999"},
		{4, 5, "1005"},
	}
	for _, tt := range tests {
		if got := generateCode(tt.digits, fixedIntn{v: tt.v}); got != tt.want {
			t.Errorf("generateCode(%d, %d) = %q, want %q", tt.digits, tt.v, got, tt.want)
		}
	}
}

func TestClone_Independent(t *testing.T) {
	d := testDefs()
	s := NewState(d, types.Normal, testLimits, fixedIntn{})
	c := Clone(s)

	c.Player.Inventory = append(c.Player.Inventory, "gem")
	c.Player.Flags["x"] = true
	c.Player.Journal = append(c.Player.Journal, "entry")
	c.Rooms[0].Items[0] = "changed"
	c.Rooms[1].Unlocked["south"] = true
	c.Codes["safe"] = "000"

	if len(s.Player.Inventory) != 0 {
		t.Error("inventory shared")
	}
	if s.Player.Flags["x"] {
		t.Error("flags shared")
	}
	if len(s.Player.Journal) != 0 {
		t.Error("journal shared")
	}
	if s.Rooms[0].Items[0] != "torch" {
		t.Error("room items shared")
	}
	if s.Rooms[1].Unlocked["south"] {
		t.Error("unlocked map shared")
	}
	if s.Codes["safe"] == "000" {
		t.Error("codes shared")
	}
}

func TestHasLight(t *testing.T) {
	d := testDefs()
	s := NewState(d, types.Normal, testLimits, fixedIntn{})

	if HasLight(s, d) {
		t.Error("no light carried yet")
	}
	s.Player.Inventory = []string{"torch"}
	if !HasLight(s, d) {
		t.Error("torch with battery should light")
	}
	s.Player.Battery = 0
	if HasLight(s, d) {
		t.Error("flat battery gives no light")
	}
}

func TestIsDark(t *testing.T) {
	d := testDefs()
	s := NewState(d, types.Normal, testLimits, fixedIntn{})
	if IsDark(s, d) {
		t.Error("gate is lit")
	}
	s.Player.Room = "hall"
	if !IsDark(s, d) {
		t.Error("hall is dark")
	}
}

func TestClamp(t *testing.T) {
	tests := []struct{ v, max, want int }{
		{-5, 100, 0},
		{50, 100, 50},
		{150, 100, 100},
	}
	for _, tt := range tests {
		if got := Clamp(tt.v, tt.max); got != tt.want {
			t.Errorf("Clamp(%d, %d) = %d, want %d", tt.v, tt.max, got, tt.want)
		}
	}
}
