// Package events hands event tags to the sound collaborator. Playback is
// fire-and-forget: a sink never reports back into the game.
package events

import "github.com/nathoo/blackwood/types"

// Sink plays the cue for an event tag.
type Sink interface {
	Play(tag string)
}

// SinkFunc adapts a function to a Sink.
type SinkFunc func(tag string)

// Play calls f(tag).
func (f SinkFunc) Play(tag string) { f(tag) }

// Discard ignores every cue.
var Discard Sink = SinkFunc(func(string) {})

// Emit forwards every event tag to sink unless muted. A nil sink is
// treated as Discard.
func Emit(sink Sink, evts []types.Event, muted bool) {
	if muted || sink == nil {
		return
	}
	for _, e := range evts {
		if e.Type != "" {
			sink.Play(e.Type)
		}
	}
}

// Recorder remembers every cue it is asked to play.
type Recorder struct {
	Tags []string
}

// Play records tag.
func (r *Recorder) Play(tag string) { r.Tags = append(r.Tags, tag) }

// Tags returns the event types in order.
func Tags(evts []types.Event) []string {
	out := make([]string, 0, len(evts))
	for _, e := range evts {
		out = append(out, e.Type)
	}
	return out
}
