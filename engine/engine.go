// Package engine provides the Step() orchestrator that wires together
// parsing, resolution, verb handlers, effects, the Phantom and the
// sanity filter into a single turn.
package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nathoo/blackwood/engine/effects"
	"github.com/nathoo/blackwood/engine/events"
	"github.com/nathoo/blackwood/engine/parser"
	"github.com/nathoo/blackwood/engine/resolve"
	"github.com/nathoo/blackwood/engine/sanity"
	"github.com/nathoo/blackwood/engine/save"
	"github.com/nathoo/blackwood/engine/snapshot"
	"github.com/nathoo/blackwood/engine/state"
	"github.com/nathoo/blackwood/engine/world"
	"github.com/nathoo/blackwood/types"
)

// PreconditionError rejects a command before it changes anything. The
// turn is not consumed.
type PreconditionError struct {
	Reason string
	Lines  []string // extra narration after the reason
	Event  string   // optional event tag, e.g. "locked"
}

func (e *PreconditionError) Error() string {
	return e.Reason
}

func precondition(reason string, lines ...string) *PreconditionError {
	return &PreconditionError{Reason: reason, Lines: lines}
}

// Options configures a new Engine. Zero values select the defaults.
type Options struct {
	Difficulty types.Difficulty
	Seed       int64
	Tuning     *types.Tuning
	Store      save.Store
	Sound      events.Sink
	Muted      bool
	Logger     *slog.Logger
	Now        func() time.Time
}

// Engine holds the game definitions and mutable state.
type Engine struct {
	Defs    *world.Defs
	State   *types.State
	RNG     *RNG
	Tuning  types.Tuning
	History *snapshot.History
	Store   save.Store
	Sound   events.Sink
	Muted   bool
	Logger  *slog.Logger

	now      func() time.Time
	parser   *parser.Parser
	resolver *resolve.Resolver
}

// New creates a new engine from definitions and starts a fresh game.
func New(defs *world.Defs, opts Options) *Engine {
	tuning := DefaultTuning()
	if opts.Tuning != nil {
		tuning = *opts.Tuning
	}
	if opts.Difficulty == "" {
		opts.Difficulty = types.Normal
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	if opts.Sound == nil {
		opts.Sound = events.Discard
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	e := &Engine{
		Defs:     defs,
		Tuning:   tuning,
		History:  snapshot.NewHistory(tuning.Limits.UndoDepth),
		Store:    opts.Store,
		Sound:    opts.Sound,
		Muted:    opts.Muted,
		Logger:   opts.Logger,
		now:      opts.Now,
		parser:   parser.New(tuning.MinSimilarity),
		resolver: resolve.New(tuning.MinSimilarity),
	}
	e.reset(opts.Seed, opts.Difficulty)
	return e
}

// NewGame discards the current session and starts over.
func (e *Engine) NewGame(seed int64, difficulty types.Difficulty) {
	e.reset(seed, difficulty)
}

// reset starts a new game with the given seed and difficulty.
func (e *Engine) reset(seed int64, difficulty types.Difficulty) {
	e.RNG = NewRNG(seed)
	s := state.NewState(e.Defs, difficulty, e.Tuning.Limits, e.RNG)
	s.RNGSeed = seed
	s.RNGPosition = e.RNG.Position()
	e.State = s
	e.History.Clear()
	e.Logger.Debug("new game", "seed", seed, "difficulty", difficulty)
}

// RestoreRNG re-creates the RNG from seed and advances to the saved position.
func (e *Engine) RestoreRNG(seed int64, position int64) {
	e.RNG = RestoreRNG(seed, position)
}

// Intro returns the opening narration: the game's intro text and the
// starting room.
func (e *Engine) Intro() []string {
	var out []string
	if e.Defs.Game.Intro != "" {
		out = append(out, e.Defs.Game.Intro)
	}
	return append(out, e.describeRoom(e.State)...)
}

// Step processes one player command and returns the result.
func (e *Engine) Step(input string) types.Result {
	var result types.Result

	// 1. Parse input.
	intent, err := e.parser.Parse(input)

	// 2. Game over: only restart, quit and help. Anything else, typos
	// included, points back at those.
	if e.State.Status != types.Playing {
		switch intent.Verb {
		case types.VerbRestart, types.VerbQuit, types.VerbHelp:
		default:
			result.Output = append(result.Output, "The game is over. Type 'restart' or 'quit'.")
			return e.finish(result)
		}
	}
	if err != nil {
		e.inputError(&result, err)
		return e.finish(result)
	}

	// 3. Resolve targets.
	cmd, err := e.resolver.Resolve(e.State, e.Defs, intent)
	if err != nil {
		e.inputError(&result, err)
		return e.finish(result)
	}
	if intent.Corrected != "" {
		result.Output = append(result.Output, fmt.Sprintf("(Did you mean '%s'?)", intent.Corrected))
	}
	e.Logger.Debug("command", "verb", cmd.Verb, "target", cmd.Target.ID, "extra", cmd.Extra, "turn", e.State.Turn)

	// 4. Non-turn verbs run directly against the live state.
	if handled := e.meta(&result, cmd); handled {
		return e.finish(result)
	}

	// 5. Turn verbs run against a clone.
	e.runTurn(&result, cmd)
	return e.finish(result)
}

// finish records the RNG position, copies the status and plays sounds.
func (e *Engine) finish(result types.Result) types.Result {
	e.State.RNGPosition = e.RNG.Position()
	result.Status = e.State.Status
	events.Emit(e.Sound, result.Events, e.Muted)
	return result
}

func (e *Engine) inputError(result *types.Result, err error) {
	result.Output = append(result.Output, err.Error())
	result.Events = append(result.Events, types.Event{Type: effects.EventError})
}

// runTurn executes a turn-consuming command. The live state is replaced
// only when the whole turn has been computed.
func (e *Engine) runTurn(result *types.Result, cmd types.Command) {
	next := state.Clone(e.State)
	startRoom := next.Player.Room

	effs, err := e.builtinBehavior(next, cmd)
	if err != nil {
		var pe *PreconditionError
		if !errors.As(err, &pe) {
			pe = precondition(err.Error())
		}
		result.Output = append(result.Output, pe.Reason)
		result.Output = append(result.Output, pe.Lines...)
		if pe.Event != "" {
			result.Events = append(result.Events, types.Event{Type: pe.Event})
		}
		return
	}

	pre := snapshot.Capture(e.State)

	var narration []string
	apply := func(effs []types.Effect) {
		evts, out := effects.Apply(next, e.Defs, effs, e.effectsContext())
		result.Effects = append(result.Effects, effs...)
		result.Events = append(result.Events, evts...)
		narration = append(narration, out...)
	}

	apply(effs)
	if next.Player.Room != startRoom {
		narration = append(narration, e.describeRoom(next)...)
	}

	e.endTurn(next, apply)

	e.History.Push(pre)
	e.State = next
	result.TurnConsumed = true

	for _, line := range narration {
		result.Output = append(result.Output, e.filter(line))
	}
}

func (e *Engine) effectsContext() effects.Context {
	return effects.Context{Limits: e.Tuning.Limits}
}

// filter passes narration through the sanity filter at the live sanity.
func (e *Engine) filter(line string) string {
	return sanity.Filter(line, e.State.Player.Sanity, e.Tuning.Tiers, e.RNG)
}
