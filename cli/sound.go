package cli

import (
	"fmt"
	"io"

	"github.com/nathoo/blackwood/engine/effects"
)

// bellCues are the events loud enough to ring the terminal bell.
var bellCues = map[string]bool{
	effects.EventPhantomAwake:  true,
	effects.EventPhantomNear:   true,
	effects.EventPhantomAttack: true,
	effects.EventPuzzleFailed:  true,
	effects.EventGameLost:      true,
}

// Bell is a sound sink that rings the terminal bell. Muting is handled by
// the engine, which stops handing cues to the sink.
type Bell struct {
	Out io.Writer
}

// Play rings the bell for alarming cues and ignores the rest.
func (b Bell) Play(tag string) {
	if bellCues[tag] {
		fmt.Fprint(b.Out, "\a")
	}
}
