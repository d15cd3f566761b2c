// Package parser converts command strings into Intent structs.
// No NLP: tokens, a verb table and an edit-distance fallback for typos.
package parser

import (
	"fmt"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/nathoo/blackwood/types"
)

// ErrorKind classifies an InputError.
type ErrorKind string

const (
	Empty         ErrorKind = "empty"
	Unrecognized  ErrorKind = "unrecognized"
	Ambiguous     ErrorKind = "ambiguous"
	MissingTarget ErrorKind = "missing_target"
	NotFound      ErrorKind = "not_found"
)

// InputError is a command the player must rephrase. It never costs a turn.
type InputError struct {
	Kind       ErrorKind
	Verb       types.Verb
	Word       string
	Candidates []string // display names, for Ambiguous
}

func (e *InputError) Error() string {
	switch e.Kind {
	case Empty:
		return "Say something."
	case Unrecognized:
		return fmt.Sprintf("I don't understand '%s'. Type 'help' for commands.", e.Word)
	case Ambiguous:
		return fmt.Sprintf("Which %s? (%s)", e.Word, strings.Join(e.Candidates, ", "))
	case MissingTarget:
		return missingTargetPrompt(e.Verb)
	case NotFound:
		return fmt.Sprintf("You don't see '%s' here.", e.Word)
	}
	return "Invalid command."
}

func missingTargetPrompt(v types.Verb) string {
	switch v {
	case types.VerbMove:
		return "Go where?"
	case types.VerbTake:
		return "Take what?"
	case types.VerbDrop:
		return "Drop what?"
	case types.VerbUse:
		return "Use what?"
	case types.VerbUnlock:
		return "Unlock what?"
	case types.VerbPlay:
		return "Play what?"
	}
	s := string(v)
	if s == "" {
		return "What?"
	}
	return strings.ToUpper(s[:1]) + s[1:] + " what?"
}

// Parser turns raw lines into intents. The zero value is not usable;
// call New.
type Parser struct {
	minSimilarity float64
}

// New returns a Parser with the given fuzzy threshold. A non-positive
// threshold selects DefaultMinSimilarity.
func New(minSimilarity float64) *Parser {
	if minSimilarity <= 0 {
		minSimilarity = DefaultMinSimilarity
	}
	return &Parser{minSimilarity: minSimilarity}
}

// Parse converts a raw command string into an Intent with the default
// threshold.
func Parse(input string) (types.Intent, error) {
	return New(DefaultMinSimilarity).Parse(input)
}

// Parse converts a raw command string into an Intent. It is pure: the
// same input always yields the same result.
func (p *Parser) Parse(input string) (types.Intent, error) {
	raw := strings.TrimSpace(input)
	words := Tokenize(raw)
	if len(words) == 0 {
		return types.Intent{Raw: raw}, &InputError{Kind: Empty}
	}

	// Direction shortcut: bare "n", "south", etc. → move <direction>.
	if len(words) == 1 {
		if dir, ok := ExpandDirection(words[0]); ok {
			return types.Intent{Verb: types.VerbMove, Object: dir, Raw: raw}, nil
		}
	}

	words = expandMultiWordVerbs(words)

	intent := types.Intent{Raw: raw}
	if v, ok := aliasIndex[words[0]]; ok {
		intent.Verb = v
	} else if v, m, ok := p.fuzzyVerb(words[0]); ok && !p.directionCloser(words, m) {
		intent.Verb = v
		intent.Corrected = m.Word
	} else if len(words) == 1 {
		if m, ok := Closest(words[0], Directions, p.minSimilarity); ok {
			return types.Intent{Verb: types.VerbMove, Object: m.Word, Corrected: m.Word, Raw: raw}, nil
		}
		return intent, &InputError{Kind: Unrecognized, Word: words[0]}
	} else {
		return intent, &InputError{Kind: Unrecognized, Word: words[0]}
	}

	rest := words[1:]
	if intent.Verb != types.VerbPlay {
		rest = stripArticles(rest)
	} else {
		// "a" is a note on the piano.
		rest = stripWords(rest, "the", "an")
	}
	intent.Object, intent.Target = splitOnPreposition(rest)
	if intent.Object == "" && intent.Target != "" {
		intent.Object, intent.Target = intent.Target, ""
	}
	if intent.Verb == types.VerbMove && intent.Object != "" {
		if dir, ok := ExpandDirection(intent.Object); ok {
			intent.Object = dir
		}
	}
	return intent, nil
}

// directionCloser reports whether a lone word is at least as near a
// direction as it is to the verb alias m, so "est" walks east.
func (p *Parser) directionCloser(words []string, m Match) bool {
	if len(words) != 1 {
		return false
	}
	d, ok := Closest(words[0], Directions, p.minSimilarity)
	return ok && d.Similarity >= m.Similarity
}

// fuzzyVerb finds the closest alias of three or more runes. The verb
// table order breaks ties.
func (p *Parser) fuzzyVerb(word string) (types.Verb, Match, bool) {
	if utf8.RuneCountInString(word) < 2 {
		return "", Match{}, false
	}
	var candidates []string
	owner := map[string]types.Verb{}
	for _, e := range verbTable {
		for _, a := range e.aliases {
			if utf8.RuneCountInString(a) < 3 {
				continue
			}
			candidates = append(candidates, a)
			owner[a] = e.verb
		}
	}
	m, ok := Closest(word, candidates, p.minSimilarity)
	if !ok {
		return "", Match{}, false
	}
	return owner[m.Word], m, true
}

var foldMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Tokenize lowercases, folds diacritics, strips punctuation and splits
// on whitespace. Empty tokens are dropped.
func Tokenize(input string) []string {
	folded, _, err := transform.String(foldMarks, strings.ToLower(input))
	if err != nil {
		folded = strings.ToLower(input)
	}
	var words []string
	for _, f := range strings.Fields(folded) {
		var b strings.Builder
		for _, r := range f {
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				b.WriteRune(r)
			}
		}
		if b.Len() > 0 {
			words = append(words, b.String())
		}
	}
	return words
}

// expandMultiWordVerbs handles "pick up", "look at" etc.
func expandMultiWordVerbs(words []string) []string {
	if len(words) < 2 {
		return words
	}
	if v, ok := multiWordVerbs[[2]string{words[0], words[1]}]; ok {
		return append([]string{v}, words[2:]...)
	}
	return words
}

// stripArticles removes articles ("the", "a", "an") from the word list.
func stripArticles(words []string) []string {
	result := make([]string, 0, len(words))
	for _, w := range words {
		if !articles[w] {
			result = append(result, w)
		}
	}
	return result
}

func stripWords(words []string, drop ...string) []string {
	result := make([]string, 0, len(words))
	for _, w := range words {
		if !slices.Contains(drop, w) {
			result = append(result, w)
		}
	}
	return result
}

// splitOnPreposition splits words on the first preposition.
// Words before the preposition become the object, words after become the target.
func splitOnPreposition(words []string) (object, target string) {
	for i, w := range words {
		if prepositions[w] {
			return strings.Join(words[:i], " "), strings.Join(words[i+1:], " ")
		}
	}
	return strings.Join(words, " "), ""
}
