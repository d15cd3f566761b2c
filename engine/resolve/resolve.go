// Package resolve maps the words of a parsed intent onto directions,
// items and fixtures the player can currently reach.
package resolve

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/zyedidia/generic/mapset"

	"github.com/nathoo/blackwood/engine/parser"
	"github.com/nathoo/blackwood/engine/world"
	"github.com/nathoo/blackwood/types"
)

// scope says where a candidate was found.
type scope int

const (
	inRoom scope = iota
	inInventory
	onExit
)

type candidate struct {
	target types.Target
	scope  scope
	forms  []string
}

// Resolver binds intents to targets with a fuzzy threshold.
type Resolver struct {
	minSimilarity float64
}

// New returns a Resolver. A non-positive threshold selects the parser default.
func New(minSimilarity float64) *Resolver {
	if minSimilarity <= 0 {
		minSimilarity = parser.DefaultMinSimilarity
	}
	return &Resolver{minSimilarity: minSimilarity}
}

// Resolve turns an intent into a command. Failures are *parser.InputError
// values with kind MissingTarget, NotFound or Ambiguous.
func (r *Resolver) Resolve(s *types.State, d *world.Defs, intent types.Intent) (types.Command, error) {
	cmd := types.Command{Verb: intent.Verb, Raw: intent.Raw}

	switch intent.Verb {
	case types.VerbMove:
		if intent.Object == "" {
			return cmd, &parser.InputError{Kind: parser.MissingTarget, Verb: intent.Verb}
		}
		if dir, ok := parser.ExpandDirection(intent.Object); ok {
			cmd.Target = types.Target{Kind: types.TargetDirection, ID: dir, Name: dir}
			return cmd, nil
		}
		t, err := r.match(intent.Verb, intent.Object, moveCandidates(s, d))
		cmd.Target = t
		return cmd, err

	case types.VerbTake, types.VerbDrop, types.VerbUse:
		if intent.Object == "" {
			return cmd, &parser.InputError{Kind: parser.MissingTarget, Verb: intent.Verb}
		}
		t, err := r.match(intent.Verb, intent.Object, candidatesFor(s, d, intent.Verb))
		cmd.Target = t
		if err == nil && intent.Target != "" {
			cmd.Extra = intent.Target
		}
		return cmd, err

	case types.VerbLook:
		if intent.Object == "" {
			return cmd, nil
		}
		if dir, ok := parser.ExpandDirection(intent.Object); ok {
			cmd.Target = types.Target{Kind: types.TargetDirection, ID: dir, Name: dir}
			return cmd, nil
		}
		t, err := r.match(intent.Verb, intent.Object, candidatesFor(s, d, intent.Verb))
		cmd.Target = t
		return cmd, err

	case types.VerbUnlock, types.VerbPlay:
		return r.resolveWithExtra(s, d, intent)

	default:
		// Verbs without a target keep their words, e.g. a save slot.
		cmd.Extra = strings.TrimSpace(intent.Object + " " + intent.Target)
		return cmd, nil
	}
}

// resolveWithExtra handles "unlock safe 427" and "play dad on piano":
// the word prefix that best names something is the target and the rest
// is the input sequence.
func (r *Resolver) resolveWithExtra(s *types.State, d *world.Defs, intent types.Intent) (types.Command, error) {
	cmd := types.Command{Verb: intent.Verb, Raw: intent.Raw}
	cands := candidatesFor(s, d, intent.Verb)

	if intent.Object == "" {
		if intent.Verb == types.VerbPlay {
			return cmd, &parser.InputError{Kind: parser.MissingTarget, Verb: intent.Verb}
		}
		return cmd, nil
	}

	if intent.Target != "" {
		if t, extra, err := r.splitMatch(intent.Verb, intent.Object, cands); err == nil {
			cmd.Target, cmd.Extra = t, joinWords(extra, intent.Target)
			return cmd, nil
		}
		if t, extra, err := r.splitMatch(intent.Verb, intent.Target, cands); err == nil {
			cmd.Target, cmd.Extra = t, joinWords(intent.Object, extra)
			return cmd, nil
		}
		// "unlock door with silver key": the key names the credential,
		// so let the executor find the lock it fits.
		if intent.Verb == types.VerbUnlock {
			if _, err := r.match(intent.Verb, intent.Target, inventoryCandidates(s, d)); err == nil {
				return cmd, nil
			}
		}
	}

	t, extra, err := r.splitMatch(intent.Verb, intent.Object, cands)
	if err != nil {
		if intent.Verb == types.VerbUnlock && isSequence(intent.Object) {
			// "unlock 427": a bare code goes to the only fixture here.
			cmd.Extra = intent.Object
			return cmd, nil
		}
		return cmd, err
	}
	cmd.Target, cmd.Extra = t, extra
	return cmd, nil
}

// splitMatch tries every word prefix of phrase and keeps the closest
// match; on equal distance the longer prefix wins.
func (r *Resolver) splitMatch(verb types.Verb, phrase string, cands []candidate) (types.Target, string, error) {
	words := strings.Fields(phrase)
	var (
		best     types.Target
		bestDist = -1
		bestN    int
		firstErr error
	)
	for n := len(words); n > 0; n-- {
		head := strings.Join(words[:n], " ")
		if dir, ok := parser.ExpandDirection(head); ok && verb == types.VerbUnlock {
			return types.Target{Kind: types.TargetDirection, ID: dir, Name: dir}, strings.Join(words[n:], " "), nil
		}
		t, dist, err := r.closest(verb, head, cands)
		if err != nil {
			if ie, ok := err.(*parser.InputError); ok && ie.Kind == parser.Ambiguous && bestDist < 0 {
				return types.Target{}, "", err
			}
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if bestDist < 0 || dist < bestDist {
			best, bestDist, bestN = t, dist, n
		}
	}
	if bestDist < 0 {
		return types.Target{}, "", firstErr
	}
	return best, strings.Join(words[bestN:], " "), nil
}

// match picks the candidate closest to phrase. Equal distances prefer
// things in the room over things carried; any remaining tie is ambiguous.
func (r *Resolver) match(verb types.Verb, phrase string, cands []candidate) (types.Target, error) {
	t, _, err := r.closest(verb, phrase, cands)
	return t, err
}

// closest is match that also reports the winning edit distance.
func (r *Resolver) closest(verb types.Verb, phrase string, cands []candidate) (types.Target, int, error) {
	phrase = strings.Join(parser.Tokenize(phrase), " ")
	if phrase == "" {
		return types.Target{}, 0, &parser.InputError{Kind: parser.MissingTarget, Verb: verb}
	}

	best, bestDist := r.nearest(phrase, cands)
	if len(best) == 0 && utf8.RuneCountInString(phrase) >= minPartial {
		best, bestDist = partial(phrase, cands)
	}

	switch len(best) {
	case 0:
		return types.Target{}, 0, &parser.InputError{Kind: parser.NotFound, Verb: verb, Word: phrase}
	case 1:
		return best[0].target, bestDist, nil
	}

	var local []candidate
	for _, c := range best {
		if c.scope == inRoom {
			local = append(local, c)
		}
	}
	if len(local) == 1 {
		return local[0].target, bestDist, nil
	}
	if len(local) > 1 {
		best = local
	}
	names := make([]string, 0, len(best))
	for _, c := range best {
		names = append(names, c.target.Name)
	}
	sort.Strings(names)
	return types.Target{}, 0, &parser.InputError{Kind: parser.Ambiguous, Verb: verb, Word: phrase, Candidates: names}
}

// nearest keeps the candidates at the smallest edit distance, counting
// only forms similar enough to phrase.
func (r *Resolver) nearest(phrase string, cands []candidate) ([]candidate, int) {
	bestDist := -1
	var best []candidate
	for _, c := range cands {
		dist := -1
		for _, f := range c.forms {
			if parser.Similarity(phrase, f) < r.minSimilarity {
				continue
			}
			if d := parser.Distance(phrase, f); dist < 0 || d < dist {
				dist = d
			}
		}
		switch {
		case dist < 0:
		case bestDist < 0 || dist < bestDist:
			bestDist = dist
			best = []candidate{c}
		case dist == bestDist:
			best = append(best, c)
		}
	}
	return best, bestDist
}

// minPartial is the shortest phrase matched as part of a longer name.
const minPartial = 3

// partial returns every candidate with a form containing phrase, all tied:
// "flash" names the Flashlight, while "bat" is no more Batteries than
// Battered Journal. The distance is the smallest rune-length difference.
func partial(phrase string, cands []candidate) ([]candidate, int) {
	n := utf8.RuneCountInString(phrase)
	dist := -1
	var out []candidate
	for _, c := range cands {
		found := false
		for _, f := range c.forms {
			if !strings.Contains(f, phrase) {
				continue
			}
			found = true
			if d := utf8.RuneCountInString(f) - n; dist < 0 || d < dist {
				dist = d
			}
		}
		if found {
			out = append(out, c)
		}
	}
	return out, dist
}

// candidatesFor lists what each verb may refer to, in lookup order.
func candidatesFor(s *types.State, d *world.Defs, verb types.Verb) []candidate {
	var out []candidate
	switch verb {
	case types.VerbTake:
		out = append(out, roomItemCandidates(s, d)...)
		out = append(out, inventoryCandidates(s, d)...)
		out = append(out, fixtureCandidates(s, d)...)
	case types.VerbDrop:
		out = append(out, inventoryCandidates(s, d)...)
		out = append(out, roomItemCandidates(s, d)...)
	case types.VerbUse, types.VerbLook:
		out = append(out, inventoryCandidates(s, d)...)
		out = append(out, roomItemCandidates(s, d)...)
		out = append(out, fixtureCandidates(s, d)...)
	case types.VerbUnlock:
		out = append(out, exitNameCandidates(s, d)...)
		out = append(out, fixtureCandidates(s, d)...)
	case types.VerbPlay:
		out = append(out, fixtureCandidates(s, d)...)
		out = append(out, roomItemCandidates(s, d)...)
	}
	return dedupe(out)
}

func moveCandidates(s *types.State, d *world.Defs) []candidate {
	out := exitNameCandidates(s, d)
	for _, ex := range world.VisibleExits(s, d, s.Player.Room) {
		room, ok := d.Room(ex.To)
		if !ok || (room.Secret && !s.Player.Visited[room.ID]) {
			continue
		}
		out = append(out, candidate{
			target: types.Target{Kind: types.TargetDirection, ID: ex.Direction, Name: room.Name},
			scope:  onExit,
			forms:  nameForms(room.ID, room.Name, nil),
		})
	}
	return dedupe(out)
}

func exitNameCandidates(s *types.State, d *world.Defs) []candidate {
	var out []candidate
	for _, ex := range world.VisibleExits(s, d, s.Player.Room) {
		if ex.Name == "" {
			continue
		}
		out = append(out, candidate{
			target: types.Target{Kind: types.TargetDirection, ID: ex.Direction, Name: ex.Name},
			scope:  onExit,
			forms:  nameForms("", ex.Name, nil),
		})
	}
	return out
}

func roomItemCandidates(s *types.State, d *world.Defs) []candidate {
	var out []candidate
	for _, id := range world.RoomItems(s, d, s.Player.Room) {
		it := d.Items[id]
		out = append(out, candidate{
			target: types.Target{Kind: types.TargetItem, ID: id, Name: d.ItemName(id)},
			scope:  inRoom,
			forms:  nameForms(id, it.Name, it.Aliases),
		})
	}
	return out
}

func inventoryCandidates(s *types.State, d *world.Defs) []candidate {
	var out []candidate
	for _, id := range s.Player.Inventory {
		it := d.Items[id]
		out = append(out, candidate{
			target: types.Target{Kind: types.TargetItem, ID: id, Name: d.ItemName(id)},
			scope:  inInventory,
			forms:  nameForms(id, it.Name, it.Aliases),
		})
	}
	return out
}

func fixtureCandidates(s *types.State, d *world.Defs) []candidate {
	var out []candidate
	for _, f := range d.FixturesIn(s.Player.Room) {
		out = append(out, candidate{
			target: types.Target{Kind: types.TargetFixture, ID: f.ID, Name: f.Name},
			scope:  inRoom,
			forms:  nameForms(f.ID, f.Name, f.Aliases),
		})
	}
	return out
}

// nameForms lists the strings a name may be typed as: the full name, the
// ID with spaces, each alias, and each name word of three or more runes.
func nameForms(id, name string, aliases []string) []string {
	seen := mapset.New[string]()
	var forms []string
	add := func(f string) {
		f = strings.Join(parser.Tokenize(f), " ")
		if f == "" || seen.Has(f) {
			return
		}
		seen.Put(f)
		forms = append(forms, f)
	}
	add(name)
	add(strings.ReplaceAll(id, "_", " "))
	for _, a := range aliases {
		add(a)
	}
	for _, w := range parser.Tokenize(name) {
		if utf8.RuneCountInString(w) >= 3 {
			add(w)
		}
	}
	return forms
}

// dedupe folds candidates for the same thing into the first one found,
// keeping every form. An exit named "cellar door" and the Cellar it leads
// to are one direction.
func dedupe(cands []candidate) []candidate {
	type key struct {
		kind types.TargetKind
		id   string
	}
	index := make(map[key]int, len(cands))
	out := cands[:0:0]
	for _, c := range cands {
		k := key{c.target.Kind, c.target.ID}
		if i, ok := index[k]; ok {
			out[i].forms = append(out[i].forms, c.forms...)
			continue
		}
		index[k] = len(out)
		c.forms = append([]string(nil), c.forms...)
		out = append(out, c)
	}
	return out
}

func joinWords(a, b string) string {
	return strings.TrimSpace(a + " " + b)
}

func isSequence(s string) bool {
	for _, r := range s {
		if r != ' ' && (r < '0' || r > '9') {
			return false
		}
	}
	return s != ""
}
