// Package adversary drives the Phantom: a seeded weighted random walk
// through the manor with three modes (dormant, hunting, stunned).
//
// The controller never mutates state. Like a rule handler it returns the
// effects the turn should apply, so every Phantom action is visible in
// the trace and reverts with the rest of the turn.
package adversary

import (
	"github.com/nathoo/blackwood/engine/effects"
	"github.com/nathoo/blackwood/engine/world"
	"github.com/nathoo/blackwood/types"
)

// Source is the randomness the controller draws from.
type Source interface {
	Float64() float64
	Intn(n int) int
	WeightedSelect(weights []int) int
}

// Nearness is how close the Phantom is to the player.
type Nearness int

const (
	Far Nearness = iota
	Adjacent
	SameRoom
)

// Narration lines.
const (
	AwakeText   = "Something has awakened in the house..."
	AttackText  = "The Phantom lunges at you! Cold fingers claw at your mind."
	NearText    = "A freezing presence fills the room. The Phantom is HERE."
	RecoverText = "Somewhere in the house, something stirs again."
)

// Step advances the Phantom by one turn. It must run after the player's
// action has been applied and the turn counter incremented.
func Step(s *types.State, d *world.Defs, p types.Profile, rng Source) []types.Effect {
	adv := s.Adversary
	switch adv.Mode {
	case types.Stunned:
		left := adv.StunTurns - 1
		if left <= 0 {
			return []types.Effect{
				effects.New(effects.AdversaryState, "mode", string(types.Hunting), "stun_turns", 0),
				effects.New(effects.Say, "text", RecoverText),
			}
		}
		return []types.Effect{
			effects.New(effects.AdversaryState, "mode", string(types.Stunned), "stun_turns", left),
		}

	case types.Dormant:
		if !shouldWake(s, d, p) {
			return nil
		}
		return []types.Effect{
			effects.New(effects.AdversaryState, "mode", string(types.Hunting), "stun_turns", 0),
			effects.New(effects.Say, "text", AwakeText),
		}
	}

	var out []types.Effect
	if adv.Room == s.Player.Room {
		out = append(out,
			effects.New(effects.PhantomAttack, "amount", p.AttackDrain),
			effects.New(effects.Say, "text", AttackText),
		)
	}

	if rng.Float64() >= p.MoveChance {
		return out
	}
	options := Options(d, adv.Room)
	if len(options) == 0 {
		return out
	}
	next := options[rng.WeightedSelect(Weights(d, adv.Room, s.Player.Room, options, p.Pursuit))]
	out = append(out, effects.New(effects.MoveAdversary, "room", next))
	if next == s.Player.Room {
		out = append(out, effects.New(effects.Say, "text", NearText))
	}
	return out
}

func shouldWake(s *types.State, d *world.Defs, p types.Profile) bool {
	if s.Turn < p.ActivationTurn {
		return false
	}
	flag := d.Game.Adversary.ActivationFlag
	return flag == "" || s.Player.Flags[flag]
}

// Options returns the rooms the Phantom may move to from room, sorted.
// Sanctuary rooms are excluded.
func Options(d *world.Defs, room string) []string {
	var out []string
	for _, n := range world.Neighbors(d, room) {
		if r, ok := d.Room(n); ok && r.Sanctuary {
			continue
		}
		out = append(out, n)
	}
	return out
}

// Weights gives each option pursuit weight when it is strictly closer to
// the player than the Phantom's current room, and 1 otherwise.
func Weights(d *world.Defs, from, player string, options []string, pursuit int) []int {
	if pursuit < 1 {
		pursuit = 1
	}
	dist := world.Distances(d, player)
	here, known := dist[from]
	weights := make([]int, len(options))
	for i, o := range options {
		weights[i] = 1
		if od, ok := dist[o]; ok && known && od < here {
			weights[i] = pursuit
		}
	}
	return weights
}

// Flash resolves a camera flash in the player's room. A hunting Phantom
// there is stunned and flung to a random neighbouring room.
func Flash(s *types.State, d *world.Defs, p types.Profile, rng Source) ([]types.Effect, bool) {
	adv := s.Adversary
	if adv.Mode != types.Hunting || adv.Room != s.Player.Room {
		return nil, false
	}
	room := adv.Room
	if options := Options(d, adv.Room); len(options) > 0 {
		room = options[rng.Intn(len(options))]
	}
	return []types.Effect{
		effects.New(effects.StunAdversary, "turns", p.StunTurns, "room", room),
	}, true
}

// Near reports how close an active Phantom is to the player. A dormant
// Phantom is always Far.
func Near(s *types.State, d *world.Defs) Nearness {
	adv := s.Adversary
	switch {
	case adv.Mode == types.Dormant:
		return Far
	case adv.Room == s.Player.Room:
		return SameRoom
	case world.Adjacent(d, s.Player.Room, adv.Room):
		return Adjacent
	}
	return Far
}

// Listen describes what the player hears.
func Listen(s *types.State, d *world.Defs) string {
	switch Near(s, d) {
	case SameRoom:
		return "IT IS HERE!"
	case Adjacent:
		return "You hear shuffling nearby."
	}
	return "Silence."
}
