package engine

import "github.com/nathoo/blackwood/types"

// DefaultTuning returns the built-in numbers every rule is calibrated on.
func DefaultTuning() types.Tuning {
	return types.Tuning{
		Limits: types.Limits{
			MaxSanity:    100,
			MaxBattery:   100,
			MaxInventory: 5,
			UndoDepth:    10,
		},
		Rates: types.Rates{
			TurnDrain:      1,
			ProximityDrain: 2,
			HintDrain:      5,
			BatteryNormal:  2,
			BatteryDark:    5,
			FlashCost:      20,
		},
		Profiles: map[types.Difficulty]types.Profile{
			types.Story: {
				DrainMultiplier: 0.5,
				MoveChance:      0.35,
				Pursuit:         1,
				StunTurns:       4,
				AttackDrain:     8,
				ActivationTurn:  12,
			},
			types.Normal: {
				DrainMultiplier: 1.0,
				MoveChance:      0.45,
				Pursuit:         3,
				StunTurns:       3,
				AttackDrain:     15,
				ActivationTurn:  8,
			},
			types.Hardcore: {
				DrainMultiplier: 1.5,
				MoveChance:      0.65,
				Pursuit:         12,
				StunTurns:       2,
				AttackDrain:     100,
				ActivationTurn:  5,
			},
		},
		Tiers: types.SanityTiers{
			Medium:   60,
			Low:      30,
			Critical: 10,
		},
		MinSimilarity: 0.6,
	}
}

// Difficulties lists the profiles in menu order.
func Difficulties() []types.Difficulty {
	return []types.Difficulty{types.Story, types.Normal, types.Hardcore}
}

// ParseDifficulty maps a name or menu number to a difficulty.
func ParseDifficulty(s string) (types.Difficulty, bool) {
	switch s {
	case "1", string(types.Story):
		return types.Story, true
	case "2", string(types.Normal):
		return types.Normal, true
	case "3", string(types.Hardcore):
		return types.Hardcore, true
	}
	return "", false
}

// profile returns the active difficulty profile, falling back to Normal.
func (e *Engine) profile() types.Profile {
	if p, ok := e.Tuning.Profiles[e.State.Player.Difficulty]; ok {
		return p
	}
	return e.Tuning.Profiles[types.Normal]
}

// scaled applies the difficulty multiplier to a base amount, truncating.
func (e *Engine) scaled(base int) int {
	return int(float64(base) * e.profile().DrainMultiplier)
}
