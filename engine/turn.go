package engine

import (
	"fmt"

	"github.com/nathoo/blackwood/engine/adversary"
	"github.com/nathoo/blackwood/engine/effects"
	"github.com/nathoo/blackwood/engine/state"
	"github.com/nathoo/blackwood/types"
)

// Endings.
const (
	EndingWealthy   = "WEALTHY SURVIVOR"
	EndingEscaped   = "ESCAPED"
	EndingShattered = "SHATTERED"
	EndingDarkness  = "LOST IN THE DARK"
)

// endTurn runs the survival rules after the player's action: escape,
// turn count, drains, the Phantom's step and the loss checks. apply
// mutates s and records effects.
func (e *Engine) endTurn(s *types.State, apply func([]types.Effect)) {
	s.Turn++
	if s.Player.Room == e.Defs.Game.Exit {
		apply(e.escape(s))
		return
	}

	apply(e.drains(s))

	prevMode := s.Adversary.Mode
	apply(adversary.Step(s, e.Defs, e.profile(), e.RNG))
	if s.Adversary.Mode != prevMode {
		e.Logger.Debug("phantom", "from", prevMode, "to", s.Adversary.Mode, "room", s.Adversary.Room, "turn", s.Turn)
	}

	switch {
	case s.Player.Sanity <= 0:
		apply([]types.Effect{
			say("Your mind shatters. The house has claimed another soul."),
			effects.New(effects.SetStatus, "status", string(types.Lost), "ending", EndingShattered),
		})
	case state.IsDark(s, e.Defs) && !state.HasLight(s, e.Defs):
		apply([]types.Effect{
			say("Darkness swallows you whole. Something drags you down..."),
			effects.New(effects.SetStatus, "status", string(types.Lost), "ending", EndingDarkness),
		})
	}
}

// drains computes the per-turn sanity and battery cost. Proximity is
// measured before the Phantom moves.
func (e *Engine) drains(s *types.State) []types.Effect {
	rates := e.Tuning.Rates
	sanityCost := e.scaled(rates.TurnDrain)
	switch adversary.Near(s, e.Defs) {
	case adversary.Adjacent:
		sanityCost += e.scaled(rates.ProximityDrain)
	case adversary.SameRoom:
		sanityCost += e.scaled(2 * rates.ProximityDrain)
	}

	var effs []types.Effect
	if sanityCost > 0 {
		effs = append(effs, effects.New(effects.AdjustSanity, "amount", -sanityCost))
	}
	if len(state.CarriedWithTag(s, e.Defs, types.TagLight)) > 0 && s.Player.Battery > 0 {
		rate := rates.BatteryNormal
		if state.IsDark(s, e.Defs) {
			rate = rates.BatteryDark
		}
		if cost := e.scaled(rate); cost > 0 {
			effs = append(effs, effects.New(effects.AdjustBattery, "amount", -cost))
		}
	}
	return effs
}

// escape ends the game in the player's favour.
func (e *Engine) escape(s *types.State) []types.Effect {
	score := Score(s, e.Defs.Items)
	ending := EndingEscaped
	if len(state.CarriedWithTag(s, e.Defs, types.TagQuest)) > 0 {
		ending = EndingWealthy
	}
	return []types.Effect{
		say("You stumble out into the cold night air. The manor's windows go dark behind you. You are free!"),
		say(fmt.Sprintf("*** ENDING: %s ***", ending)),
		say(fmt.Sprintf("Final score: %d (%d turns)", score, s.Turn)),
		effects.New(effects.SetStatus, "status", string(types.Won), "ending", ending),
	}
}

// Score returns the escape score of a finished or running game.
func Score(s *types.State, items map[string]types.ItemDef) int {
	score := s.Player.Sanity*10 - s.Turn*2
	for _, id := range s.Player.Inventory {
		score += items[id].Value
	}
	return score
}
