package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/leonelquinteros/gotext"
	"github.com/mattn/go-runewidth"

	"github.com/nathoo/blackwood/engine/sanity"
	"github.com/nathoo/blackwood/engine/save"
	"github.com/nathoo/blackwood/types"
)

// LineKind identifies the type of an output line for styling.
type LineKind int

const (
	KindNarration LineKind = iota
	KindHeader
	KindDetail
	KindDanger
	KindEnding
	KindHint
	KindError
	KindTrace
)

var errorPrefixes = []string{
	"You can't", "You don't", "You need", "You have nothing", "You already",
	"Locked.", "Inventory full!", "Battery too low!", "I don't understand",
	"Which ", "Nothing to ", "The game is over.", "Invalid slot", "Save failed", "Load failed",
}

var dangerWords = []string{
	"Phantom", "IT IS HERE", "Something has awakened", "shuffling nearby",
	"mind shatters", "Darkness swallows", "freezing presence",
}

// Classify determines what kind of output line this is.
func Classify(line string) LineKind {
	switch {
	case strings.HasPrefix(line, "[trace]"):
		return KindTrace
	case strings.HasPrefix(line, "== ") && strings.HasSuffix(line, " =="):
		return KindHeader
	case strings.HasPrefix(line, "*** "), strings.HasPrefix(line, "Final score:"):
		return KindEnding
	case strings.HasPrefix(line, "(Did you mean"), strings.HasPrefix(line, "You strain your mind"):
		return KindHint
	case strings.HasPrefix(line, "Exits:"), strings.HasPrefix(line, "You see:"),
		strings.HasPrefix(line, "Here:"), strings.HasPrefix(line, "There are no obvious exits"):
		return KindDetail
	}
	for _, p := range errorPrefixes {
		if strings.HasPrefix(line, p) {
			return KindError
		}
	}
	for _, w := range dangerWords {
		if strings.Contains(line, w) {
			return KindDanger
		}
	}
	return KindNarration
}

// Wrap breaks text at word boundaries so no line is wider than width
// terminal cells. Words longer than width stand alone.
func Wrap(text string, width int) string {
	if width <= 0 || runewidth.StringWidth(text) <= width {
		return text
	}
	var b strings.Builder
	lineLen := 0
	for i, word := range strings.Fields(text) {
		w := runewidth.StringWidth(word)
		switch {
		case i == 0:
			lineLen = w
		case lineLen+1+w > width:
			b.WriteString("\n")
			lineLen = w
		default:
			b.WriteString(" ")
			lineLen += 1 + w
		}
		b.WriteString(word)
	}
	return b.String()
}

// Gauge draws a bar of width cells filled in proportion to v/limit.
func Gauge(v, limit, width int) string {
	if limit <= 0 || width <= 0 {
		return ""
	}
	filled := min(max(v, 0)*width/limit, width)
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

// StatusLine summarises the player's resources.
func StatusLine(s *types.State, t types.Tuning) string {
	return fmt.Sprintf("Sanity %s %3d/%d  Battery %s %3d/%d  Turn %d  [%s]",
		Gauge(s.Player.Sanity, t.Limits.MaxSanity, 10), s.Player.Sanity, t.Limits.MaxSanity,
		Gauge(s.Player.Battery, t.Limits.MaxBattery, 10), s.Player.Battery, t.Limits.MaxBattery,
		s.Turn, sanity.TierOf(s.Player.Sanity, t.Tiers))
}

// TraceLines lists the effects and events of a result.
func TraceLines(result types.Result) []string {
	var lines []string
	if len(result.Effects) > 0 {
		lines = append(lines, fmt.Sprintf("[trace] Effects: %d", len(result.Effects)))
		for _, e := range result.Effects {
			lines = append(lines, fmt.Sprintf("[trace]   %s %v", e.Type, e.Params))
		}
	}
	if len(result.Events) > 0 {
		lines = append(lines, fmt.Sprintf("[trace] Events: %d", len(result.Events)))
		for _, e := range result.Events {
			lines = append(lines, fmt.Sprintf("[trace]   %s", e.Type))
		}
	}
	return lines
}

// StateLines dumps the live state for /state.
func StateLines(s *types.State) []string {
	out := []string{
		fmt.Sprintf("Turn: %d (%s)", s.Turn, s.Status),
		fmt.Sprintf("Room: %s", s.Player.Room),
		fmt.Sprintf("Inventory: %v", s.Player.Inventory),
		fmt.Sprintf("Sanity: %d  Battery: %d  Difficulty: %s", s.Player.Sanity, s.Player.Battery, s.Player.Difficulty),
		fmt.Sprintf("Phantom: %s in %s (stun %d)", s.Adversary.Mode, s.Adversary.Room, s.Adversary.StunTurns),
		fmt.Sprintf("RNG: seed %d position %d", s.RNGSeed, s.RNGPosition),
	}
	if len(s.Player.Flags) > 0 {
		out = append(out, fmt.Sprintf("Flags: %v", s.Player.Flags))
	}
	return out
}

// SlotLines lists the saved games in a store, newest first.
func SlotLines(ctx context.Context, store save.Store) []string {
	if store == nil {
		return []string{gotext.Get("Saving is not available.")}
	}
	slots, err := store.Slots(ctx)
	if err != nil {
		return []string{gotext.Get("Listing saves failed: %v", err)}
	}
	if len(slots) == 0 {
		return []string{gotext.Get("No saved games.")}
	}
	out := []string{gotext.Get("Saved games:")}
	for _, m := range slots {
		out = append(out, fmt.Sprintf("  %-12s turn %-4d %s", m.Slot, m.Turn, m.SavedAt.Local().Format("2006-01-02 15:04")))
	}
	return out
}
