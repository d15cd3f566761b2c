// Package effects implements centralized state mutation via the Apply function.
// Every effect type is one atomic operation. No rules live here: handlers
// decide what should happen, effects only make it so.
package effects

import (
	"github.com/nathoo/blackwood/engine/state"
	"github.com/nathoo/blackwood/engine/world"
	"github.com/nathoo/blackwood/types"
)

// Effect type names.
const (
	Say            = "say"
	MovePlayer     = "move_player"
	TakeItem       = "take_item"
	DropItem       = "drop_item"
	ConsumeItem    = "consume_item"
	AdjustSanity   = "adjust_sanity"
	AdjustBattery  = "adjust_battery"
	UnlockExit     = "unlock_exit"
	TriggerFixture = "trigger_fixture"
	AddJournal     = "add_journal"
	AdversaryState = "adversary_state"
	MoveAdversary  = "move_adversary"
	PhantomAttack  = "phantom_attack"
	StunAdversary  = "stun_adversary"
	Flash          = "flash"
	SetStatus      = "set_status"
	Emit           = "emit"
)

// Event tags. They double as sound cues.
const (
	EventItemPickup     = "item_pickup"
	EventItemDrop       = "item_drop"
	EventItemUsed       = "item_used"
	EventDoorUnlocked   = "door_unlocked"
	EventLocked         = "locked"
	EventPuzzleSolved   = "puzzle_solved"
	EventPuzzleFailed   = "puzzle_failed"
	EventPhantomAwake   = "phantom_awake"
	EventPhantomNear    = "phantom_near"
	EventPhantomAttack  = "phantom_attack"
	EventPhantomStunned = "phantom_stunned"
	EventFlash          = "flash"
	EventRoomEntered    = "room_entered"
	EventGameWon        = "game_won"
	EventGameLost       = "game_lost"
	EventUndo           = "undo"
	EventError          = "error"
)

// Context carries the bounds resource adjustments are clamped to.
type Context struct {
	Limits types.Limits
}

// New builds an effect from alternating key/value pairs.
func New(typ string, kv ...any) types.Effect {
	params := make(map[string]any, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		if k, ok := kv[i].(string); ok {
			params[k] = kv[i+1]
		}
	}
	return types.Effect{Type: typ, Params: params}
}

// Apply applies a list of effects to the game state, mutating it.
// Returns events emitted and output text collected.
func Apply(s *types.State, defs *world.Defs, effects []types.Effect, ctx Context) ([]types.Event, []string) {
	var events []types.Event
	var output []string
	emit := func(typ string, data map[string]any) {
		events = append(events, types.Event{Type: typ, Data: data})
	}

	for _, eff := range effects {
		switch eff.Type {
		case Say:
			if text := str(eff, "text"); text != "" {
				output = append(output, world.Interpolate(s, text))
			}

		case MovePlayer:
			room := str(eff, "room")
			s.Player.Room = room
			first := !s.Player.Visited[room]
			if s.Player.Visited == nil {
				s.Player.Visited = map[string]bool{}
			}
			s.Player.Visited[room] = true
			if def, ok := defs.Room(room); ok && def.EnterFlag != "" {
				setFlag(s, def.EnterFlag)
			}
			emit(EventRoomEntered, map[string]any{"room": room, "first": first})

		case TakeItem:
			item := str(eff, "item")
			world.RemoveItem(s, defs, s.Player.Room, item)
			if !state.HasItem(s, item) {
				s.Player.Inventory = append(s.Player.Inventory, item)
			}
			emit(EventItemPickup, map[string]any{"item": item})

		case DropItem:
			item := str(eff, "item")
			s.Player.Inventory = removeFromSlice(s.Player.Inventory, item)
			world.PlaceItem(s, defs, s.Player.Room, item)
			emit(EventItemDrop, map[string]any{"item": item})

		case ConsumeItem:
			item := str(eff, "item")
			s.Player.Inventory = removeFromSlice(s.Player.Inventory, item)
			emit(EventItemUsed, map[string]any{"item": item})

		case AdjustSanity:
			s.Player.Sanity = state.Clamp(s.Player.Sanity+toInt(eff.Params["amount"]), ctx.Limits.MaxSanity)

		case AdjustBattery:
			s.Player.Battery = state.Clamp(s.Player.Battery+toInt(eff.Params["amount"]), ctx.Limits.MaxBattery)

		case UnlockExit:
			room, dir := str(eff, "room"), str(eff, "direction")
			if err := world.Unlock(s, defs, room, dir, str(eff, "credential")); err == nil {
				emit(EventDoorUnlocked, map[string]any{"room": room, "direction": dir})
			}

		case TriggerFixture:
			id := str(eff, "fixture")
			res, err := world.Trigger(s, defs, id, str(eff, "input"))
			if err != nil {
				continue
			}
			f := defs.Fixtures[id]
			if f.Journal != "" {
				addJournal(s, world.Interpolate(s, f.Journal))
			}
			emit(EventPuzzleSolved, map[string]any{
				"fixture":  id,
				"opened":   res.Opened,
				"revealed": res.Revealed,
			})

		case AddJournal:
			addJournal(s, world.Interpolate(s, str(eff, "text")))

		case AdversaryState:
			mode := types.AdversaryMode(str(eff, "mode"))
			prev := s.Adversary.Mode
			s.Adversary.Mode = mode
			s.Adversary.StunTurns = toInt(eff.Params["stun_turns"])
			if prev == types.Dormant && mode == types.Hunting {
				emit(EventPhantomAwake, map[string]any{"room": s.Adversary.Room})
			}

		case MoveAdversary:
			room := str(eff, "room")
			s.Adversary.Room = room
			if room == s.Player.Room {
				emit(EventPhantomNear, map[string]any{"room": room})
			}

		case PhantomAttack:
			amount := toInt(eff.Params["amount"])
			s.Player.Sanity = state.Clamp(s.Player.Sanity-amount, ctx.Limits.MaxSanity)
			emit(EventPhantomAttack, map[string]any{"amount": amount})

		case StunAdversary:
			s.Adversary.Mode = types.Stunned
			s.Adversary.StunTurns = toInt(eff.Params["turns"])
			if room := str(eff, "room"); room != "" {
				s.Adversary.Room = room
			}
			emit(EventPhantomStunned, map[string]any{"room": s.Adversary.Room, "turns": s.Adversary.StunTurns})

		case Flash:
			cost := toInt(eff.Params["cost"])
			s.Player.Battery = state.Clamp(s.Player.Battery-cost, ctx.Limits.MaxBattery)
			emit(EventFlash, map[string]any{"cost": cost})

		case SetStatus:
			status := types.Status(str(eff, "status"))
			s.Status = status
			s.Ending = str(eff, "ending")
			switch status {
			case types.Won:
				emit(EventGameWon, map[string]any{"ending": s.Ending})
			case types.Lost:
				emit(EventGameLost, map[string]any{"ending": s.Ending})
			}

		case Emit:
			emit(str(eff, "event"), eff.Params)
		}
	}

	return events, output
}

func str(eff types.Effect, key string) string {
	v, _ := eff.Params[key].(string)
	return v
}

func setFlag(s *types.State, flag string) {
	if flag == "" {
		return
	}
	if s.Player.Flags == nil {
		s.Player.Flags = map[string]bool{}
	}
	s.Player.Flags[flag] = true
}

// addJournal appends an entry once.
func addJournal(s *types.State, text string) {
	if text == "" {
		return
	}
	for _, e := range s.Player.Journal {
		if e == text {
			return
		}
	}
	s.Player.Journal = append(s.Player.Journal, text)
}

func removeFromSlice(slice []string, item string) []string {
	result := make([]string, 0, len(slice))
	for _, s := range slice {
		if s != item {
			result = append(result, s)
		}
	}
	return result
}

func toInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	}
	return 0
}
