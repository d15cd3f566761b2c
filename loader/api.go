package loader

import (
	lua "github.com/yuin/gopher-lua"
)

// registerAPI installs the world-building constructors as Lua globals.
// file points at the name of the chunk being executed.
func registerAPI(L *lua.LState, coll *collector, file *string) {
	// Game { title = "...", ... }
	L.SetGlobal("Game", L.NewFunction(func(L *lua.LState) int {
		if coll.game != nil {
			L.RaiseError("Game{} defined twice")
		}
		coll.game = L.CheckTable(1)
		return 0
	}))

	// Room "id" { ... }, Item "id" { ... } and Fixture "id" { ... } are
	// curried: the first call takes the ID and returns a function taking
	// the body.
	L.SetGlobal("Room", curried(L, &coll.rooms, file))
	L.SetGlobal("Item", curried(L, &coll.items, file))
	L.SetGlobal("Fixture", curried(L, &coll.fixtures, file))

	// KeyLock("item_id", "flavour text")
	L.SetGlobal("KeyLock", L.NewFunction(func(L *lua.LState) int {
		tbl := L.NewTable()
		tbl.RawSetString("key", lua.LString(L.CheckString(1)))
		tbl.RawSetString("text", lua.LString(L.OptString(2, "")))
		L.Push(tbl)
		return 1
	}))

	// FlagLock("flag", hidden)
	L.SetGlobal("FlagLock", L.NewFunction(func(L *lua.LState) int {
		tbl := L.NewTable()
		tbl.RawSetString("flag", lua.LString(L.CheckString(1)))
		tbl.RawSetString("hidden", lua.LBool(L.OptBool(2, false)))
		L.Push(tbl)
		return 1
	}))
}

func curried(L *lua.LState, into *[]rawDef, file *string) *lua.LFunction {
	return L.NewFunction(func(L *lua.LState) int {
		id := L.CheckString(1)
		if id == "" {
			L.ArgError(1, "id must not be empty")
		}
		L.Push(L.NewFunction(func(L *lua.LState) int {
			*into = append(*into, rawDef{id: id, file: *file, table: L.CheckTable(1)})
			return 0
		}))
		return 1
	})
}
