package parser

import "github.com/nathoo/blackwood/types"

// verbEntry is one canonical verb and the words that invoke it. Table
// order is the priority used to break fuzzy-match ties.
type verbEntry struct {
	verb    types.Verb
	aliases []string
}

var verbTable = []verbEntry{
	{types.VerbMove, []string{"go", "move", "walk", "run", "head"}},
	{types.VerbTake, []string{"take", "grab", "pick", "get"}},
	{types.VerbDrop, []string{"drop", "discard"}},
	{types.VerbUse, []string{"use", "apply"}},
	{types.VerbUnlock, []string{"unlock", "open"}},
	{types.VerbPlay, []string{"play"}},
	{types.VerbLook, []string{"look", "examine", "inspect", "read", "x", "l"}},
	{types.VerbInventory, []string{"inventory", "inv", "i"}},
	{types.VerbMap, []string{"map", "m"}},
	{types.VerbJournal, []string{"journal", "j", "notes"}},
	{types.VerbListen, []string{"listen", "hear"}},
	{types.VerbFlash, []string{"flash"}},
	{types.VerbHint, []string{"hint"}},
	{types.VerbHelp, []string{"help"}},
	{types.VerbSave, []string{"save"}},
	{types.VerbLoad, []string{"load", "restore"}},
	{types.VerbUndo, []string{"undo", "rewind"}},
	{types.VerbMute, []string{"mute"}},
	{types.VerbUnmute, []string{"unmute"}},
	{types.VerbQuit, []string{"quit", "exit", "q"}},
	{types.VerbRestart, []string{"restart"}},
}

// aliasIndex maps every alias to its verb.
var aliasIndex = func() map[string]types.Verb {
	m := map[string]types.Verb{}
	for _, e := range verbTable {
		for _, a := range e.aliases {
			m[a] = e.verb
		}
	}
	return m
}()

var directionExpansions = map[string]string{
	"n":  "north",
	"s":  "south",
	"e":  "east",
	"w":  "west",
	"ne": "northeast",
	"nw": "northwest",
	"se": "southeast",
	"sw": "southwest",
	"u":  "up",
	"d":  "down",
}

// Directions lists the full direction names.
var Directions = []string{
	"north", "south", "east", "west",
	"northeast", "northwest", "southeast", "southwest",
	"up", "down",
}

var directionNames = func() map[string]bool {
	m := map[string]bool{}
	for _, d := range Directions {
		m[d] = true
	}
	return m
}()

// ExpandDirection returns the full direction name for a direction word or
// abbreviation.
func ExpandDirection(word string) (string, bool) {
	if directionNames[word] {
		return word, true
	}
	d, ok := directionExpansions[word]
	return d, ok
}

// multiWordVerbs rewrites two-word phrases into a single verb word.
var multiWordVerbs = map[[2]string]string{
	{"pick", "up"}:     "take",
	{"look", "at"}:     "look",
	{"look", "in"}:     "look",
	{"look", "around"}: "look",
	{"put", "down"}:    "drop",
	{"go", "to"}:       "go",
	{"walk", "to"}:     "go",
	{"turn", "on"}:     "use",
	{"switch", "on"}:   "use",
}

var prepositions = map[string]bool{
	"on": true, "at": true, "to": true, "with": true,
	"in": true, "from": true, "into": true, "onto": true,
}

var articles = map[string]bool{
	"the": true, "a": true, "an": true,
}

// Verbs returns every canonical verb in priority order.
func Verbs() []types.Verb {
	out := make([]types.Verb, len(verbTable))
	for i, e := range verbTable {
		out[i] = e.verb
	}
	return out
}

// Aliases returns the words that invoke verb, canonical word first.
func Aliases(verb types.Verb) []string {
	for _, e := range verbTable {
		if e.verb == verb {
			return append([]string{}, e.aliases...)
		}
	}
	return nil
}
