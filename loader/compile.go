package loader

import (
	"fmt"
	"sort"

	lua "github.com/yuin/gopher-lua"
	"github.com/zyedidia/generic/mapset"

	"github.com/nathoo/blackwood/engine/parser"
	"github.com/nathoo/blackwood/engine/world"
	"github.com/nathoo/blackwood/types"
)

// getString returns a string field from a Lua table, or "" if missing.
func getString(tbl *lua.LTable, key string) string {
	if s, ok := tbl.RawGetString(key).(lua.LString); ok {
		return string(s)
	}
	return ""
}

// getBool returns a bool field from a Lua table, or the default if missing.
func getBool(tbl *lua.LTable, key string, def bool) bool {
	if b, ok := tbl.RawGetString(key).(lua.LBool); ok {
		return bool(b)
	}
	return def
}

// getInt returns an integer field from a Lua table, or 0 if missing.
func getInt(tbl *lua.LTable, key string) int {
	if n, ok := tbl.RawGetString(key).(lua.LNumber); ok {
		return int(n)
	}
	return 0
}

// getTable returns a table field from a Lua table, or nil if missing.
func getTable(tbl *lua.LTable, key string) *lua.LTable {
	if t, ok := tbl.RawGetString(key).(*lua.LTable); ok {
		return t
	}
	return nil
}

// stringList reads the array part of a table as strings. A bare string
// counts as a one-element list.
func stringList(tbl *lua.LTable, key string) []string {
	switch v := tbl.RawGetString(key).(type) {
	case lua.LString:
		return []string{string(v)}
	case *lua.LTable:
		var out []string
		for i := 1; i <= v.MaxN(); i++ {
			if s, ok := v.RawGetInt(i).(lua.LString); ok {
				out = append(out, string(s))
			}
		}
		return out
	}
	return nil
}

// compile converts the collected Lua tables into world definitions.
func compile(coll *collector) (*world.Defs, error) {
	if coll.game == nil {
		return nil, fmt.Errorf("no Game{} definition found")
	}
	game := compileGame(coll.game)

	roomIDs := mapset.New[string]()
	rooms := make([]types.RoomDef, 0, len(coll.rooms))
	for _, raw := range coll.rooms {
		if roomIDs.Has(raw.id) {
			return nil, fmt.Errorf("%s: duplicate room %q", raw.file, raw.id)
		}
		roomIDs.Put(raw.id)
		room, err := compileRoom(raw)
		if err != nil {
			return nil, fmt.Errorf("%s: room %s: %w", raw.file, raw.id, err)
		}
		rooms = append(rooms, room)
	}

	items := make(map[string]types.ItemDef, len(coll.items))
	for _, raw := range coll.items {
		if _, dup := items[raw.id]; dup {
			return nil, fmt.Errorf("%s: duplicate item %q", raw.file, raw.id)
		}
		items[raw.id] = compileItem(raw)
	}

	fixtures := make(map[string]types.FixtureDef, len(coll.fixtures))
	for _, raw := range coll.fixtures {
		if _, dup := fixtures[raw.id]; dup {
			return nil, fmt.Errorf("%s: duplicate fixture %q", raw.file, raw.id)
		}
		if _, clash := items[raw.id]; clash {
			return nil, fmt.Errorf("%s: fixture %q shares its id with an item", raw.file, raw.id)
		}
		fixtures[raw.id] = compileFixture(raw)
	}

	return world.NewDefs(game, rooms, items, fixtures), nil
}

func compileGame(tbl *lua.LTable) types.GameDef {
	game := types.GameDef{
		Title:   getString(tbl, "title"),
		Author:  getString(tbl, "author"),
		Version: getString(tbl, "version"),
		Start:   getString(tbl, "start"),
		Exit:    getString(tbl, "exit"),
		Intro:   getString(tbl, "intro"),
	}
	if adv := getTable(tbl, "adversary"); adv != nil {
		game.Adversary = types.AdversaryDef{
			Name:           getString(adv, "name"),
			Start:          getString(adv, "start"),
			ActivationFlag: getString(adv, "activation_flag"),
		}
	}
	return game
}

func compileRoom(raw rawDef) (types.RoomDef, error) {
	tbl := raw.table
	room := types.RoomDef{
		ID:          raw.id,
		Name:        getString(tbl, "name"),
		Description: getString(tbl, "description"),
		Dark:        getBool(tbl, "dark", false),
		Sanctuary:   getBool(tbl, "sanctuary", false),
		Secret:      getBool(tbl, "secret", false),
		EnterFlag:   getString(tbl, "enter_flag"),
		Hint:        getString(tbl, "hint"),
	}
	if room.Name == "" {
		room.Name = raw.id
	}
	if m := getTable(tbl, "map"); m != nil {
		room.MapX, room.MapY = getInt(m, "x"), getInt(m, "y")
		if x, ok := m.RawGetInt(1).(lua.LNumber); ok {
			room.MapX = int(x)
		}
		if y, ok := m.RawGetInt(2).(lua.LNumber); ok {
			room.MapY = int(y)
		}
	}

	exits, err := compileExits(getTable(tbl, "exits"))
	if err != nil {
		return room, err
	}
	room.Exits = exits
	return room, nil
}

// compileExits reads the exits table in canonical direction order, since
// Lua hash iteration order is not stable.
func compileExits(tbl *lua.LTable) ([]types.ExitDef, error) {
	if tbl == nil {
		return nil, nil
	}
	known := map[string]bool{}
	for _, d := range parser.Directions {
		known[d] = true
	}
	var unknown []string
	tbl.ForEach(func(k, _ lua.LValue) {
		if !known[k.String()] {
			unknown = append(unknown, k.String())
		}
	})
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, fmt.Errorf("unknown exit direction %q", unknown[0])
	}

	var exits []types.ExitDef
	for _, dir := range parser.Directions {
		switch v := tbl.RawGetString(dir).(type) {
		case *lua.LNilType:
		case lua.LString:
			exits = append(exits, types.ExitDef{Direction: dir, To: string(v)})
		case *lua.LTable:
			ex := types.ExitDef{
				Direction: dir,
				To:        getString(v, "to"),
				Name:      getString(v, "name"),
			}
			if lock := getTable(v, "lock"); lock != nil {
				ex.Lock = &types.LockDef{
					Key:    getString(lock, "key"),
					Flag:   getString(lock, "flag"),
					Hidden: getBool(lock, "hidden", false),
					Text:   getString(lock, "text"),
				}
			}
			exits = append(exits, ex)
		default:
			return nil, fmt.Errorf("exit %s must be a room id or a table, got %s", dir, v.Type())
		}
	}
	return exits, nil
}

func compileItem(raw rawDef) types.ItemDef {
	tbl := raw.table
	item := types.ItemDef{
		ID:             raw.id,
		Name:           getString(tbl, "name"),
		Description:    getString(tbl, "description"),
		Text:           getString(tbl, "text"),
		Aliases:        stringList(tbl, "aliases"),
		Tags:           stringList(tbl, "tags"),
		Location:       getString(tbl, "location"),
		Takeable:       getBool(tbl, "takeable", true),
		Value:          getInt(tbl, "value"),
		RestoreSanity:  getInt(tbl, "restore_sanity"),
		RestoreBattery: getInt(tbl, "restore_battery"),
		Stuns:          getBool(tbl, "stuns", false),
	}
	if item.Name == "" {
		item.Name = raw.id
	}
	return item
}

func compileFixture(raw rawDef) types.FixtureDef {
	tbl := raw.table
	f := types.FixtureDef{
		ID:          raw.id,
		Name:        getString(tbl, "name"),
		Room:        getString(tbl, "room"),
		Description: getString(tbl, "description"),
		Aliases:     stringList(tbl, "aliases"),
		Verb:        types.Verb(getString(tbl, "verb")),
		Sequence:    getString(tbl, "sequence"),
		CodeDigits:  getInt(tbl, "code_digits"),
		Flag:        getString(tbl, "flag"),
		Opens:       stringList(tbl, "opens"),
		Reveals:     getString(tbl, "reveals"),
		Prompt:      getString(tbl, "prompt"),
		Success:     getString(tbl, "success"),
		Failure:     getString(tbl, "failure"),
		FailSanity:  getInt(tbl, "fail_sanity"),
		Journal:     getString(tbl, "journal"),
	}
	if f.Name == "" {
		f.Name = raw.id
	}
	return f
}
