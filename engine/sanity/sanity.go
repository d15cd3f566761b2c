// Package sanity distorts narration as the player's mind frays. Filter is
// a pure function of its inputs and the draws it takes from the source.
package sanity

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/nathoo/blackwood/types"
)

// Source is the randomness the filter draws from.
type Source interface {
	Float64() float64
	Intn(n int) int
}

// Tier is a band of sanity values.
type Tier int

const (
	High Tier = iota
	Medium
	Low
	Critical
)

func (t Tier) String() string {
	switch t {
	case Medium:
		return "medium"
	case Low:
		return "low"
	case Critical:
		return "critical"
	}
	return "high"
}

// TierOf returns the tier a sanity value falls in.
func TierOf(sanity int, tiers types.SanityTiers) Tier {
	switch {
	case sanity <= tiers.Critical:
		return Critical
	case sanity <= tiers.Low:
		return Low
	case sanity <= tiers.Medium:
		return Medium
	}
	return High
}

// Intensity is the chance that any one word is distorted. It is zero
// above the medium bound and grows linearly to 0.85 at zero sanity.
func Intensity(sanity int, tiers types.SanityTiers) float64 {
	if sanity > tiers.Medium || tiers.Medium <= 0 {
		return 0
	}
	if sanity < 0 {
		sanity = 0
	}
	return 0.15 + 0.70*float64(tiers.Medium-sanity)/float64(tiers.Medium)
}

// intrusionChance is the chance a sentence gains an intrusive phrase.
func intrusionChance(sanity int, tiers types.SanityTiers) float64 {
	if sanity > tiers.Critical || tiers.Critical <= 0 {
		return 0
	}
	if sanity < 0 {
		sanity = 0
	}
	return 0.3 + 0.5*float64(tiers.Critical-sanity)/float64(tiers.Critical)
}

// corruptions never shorten a word.
var corruptions = map[string]string{
	"dust":    "ashes",
	"quiet":   "whispering",
	"shadows": "monsters",
	"smell":   "stench",
	"old":     "ancient",
	"piano":   "coffin",
	"battery": "lifeline",
	"light":   "mercy",
	"safe":    "vault",
	"door":    "mouth",
	"key":     "bone",
	"room":    "tomb",
	"house":   "carcass",
	"rain":    "blood",
	"cold":    "dead",
	"mirror":  "watcher",
	"books":   "bones",
	"gate":    "jaws",
	"silence": "breathing",
}

var intrusions = []string{
	"...they're watching...",
	"(don't look behind you)",
	"THE WALLS ARE BREATHING.",
	"...it knows your name...",
	"(was that your voice?)",
}

var wordRE = regexp.MustCompile(`\S+`)

// Filter distorts text for the given sanity. At High tier the text is
// returned unchanged and nothing is drawn. Otherwise every word takes one
// draw and every sentence end takes two, whatever the sanity, so with the
// same seed a lower sanity distorts a superset of the words.
func Filter(text string, sanity int, tiers types.SanityTiers, rng Source) string {
	tier := TierOf(sanity, tiers)
	if tier == High || text == "" {
		return text
	}
	p := Intensity(sanity, tiers)
	q := intrusionChance(sanity, tiers)

	return wordRE.ReplaceAllStringFunc(text, func(word string) string {
		out := word
		if rng.Float64() < p {
			out = distort(word, tier)
		}
		if endsSentence(word) {
			v := rng.Float64()
			k := rng.Intn(len(intrusions))
			if tier == Critical && v < q {
				out += " " + intrusions[k]
			}
		}
		return out
	})
}

// distort rewrites the letters of a word, keeping surrounding punctuation.
func distort(word string, tier Tier) string {
	start := strings.IndexFunc(word, unicode.IsLetter)
	if start < 0 {
		return word
	}
	end := strings.LastIndexFunc(word, unicode.IsLetter) + 1
	core := word[start:end]
	lower := strings.ToLower(core)

	if rep, ok := corruptions[lower]; ok {
		return word[:start] + matchCase(core, rep) + word[end:]
	}
	if (tier == Low || tier == Critical) && len([]rune(core)) >= 3 {
		first := string([]rune(core)[:1])
		return word[:start] + first + "-" + core + word[end:]
	}
	return word
}

// matchCase copies the casing pattern of src onto rep.
func matchCase(src, rep string) string {
	switch {
	case strings.ToUpper(src) == src:
		return strings.ToUpper(rep)
	case unicode.IsUpper([]rune(src)[0]):
		r := []rune(rep)
		r[0] = unicode.ToUpper(r[0])
		return string(r)
	}
	return rep
}

func endsSentence(word string) bool {
	trimmed := strings.TrimRight(word, `"')]`)
	if trimmed == "" {
		return false
	}
	switch trimmed[len(trimmed)-1] {
	case '.', '!', '?':
		return true
	}
	return false
}
