package parser

import (
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// DefaultMinSimilarity is the similarity a fuzzy match must reach.
const DefaultMinSimilarity = 0.6

// Distance is the Levenshtein edit distance between a and b, in runes.
func Distance(a, b string) int {
	return levenshtein.ComputeDistance(a, b)
}

// Similarity is 1 - distance/longer length, in [0, 1].
func Similarity(a, b string) float64 {
	n := utf8.RuneCountInString(a)
	if m := utf8.RuneCountInString(b); m > n {
		n = m
	}
	if n == 0 {
		return 1
	}
	return 1 - float64(Distance(a, b))/float64(n)
}

// Match is a fuzzy candidate with its score.
type Match struct {
	Word       string
	Distance   int
	Similarity float64
}

// Closest returns the candidate most similar to word that reaches min.
// Candidates are scanned in order; the earlier one wins on equal
// distance, so callers encode their tie-break priority in the order.
func Closest(word string, candidates []string, min float64) (Match, bool) {
	best := Match{Distance: -1}
	for _, c := range candidates {
		s := Similarity(word, c)
		if s < min {
			continue
		}
		d := Distance(word, c)
		if best.Distance < 0 || d < best.Distance {
			best = Match{Word: c, Distance: d, Similarity: s}
		}
	}
	return best, best.Distance >= 0
}
