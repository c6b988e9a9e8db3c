// Package similarity holds the string metrics shared by every matching
// strategy in the engine: bounded Levenshtein distance, Jaro-Winkler,
// bigram Jaccard similarity, a windowed substring score and the weighted
// combined score used for ranking correction candidates.
package similarity

import (
	"math"
	"strings"

	"github.com/antzucaro/matchr"
)

// DefaultMaxDistance is the edit-distance cutoff used when a caller does
// not supply one.
const DefaultMaxDistance = 4

// gramPad marks word boundaries so edge bigrams are distinguishable from
// interior ones ("$$go$$" -> "$$", "$g", "go", "o$", "$$").
const gramPad = "$$"

// Weights configures CombinedScore. The defaults mirror config.Default and
// are deliberately not asserted to sum to one.
type Weights struct {
	Distance    float64
	Jaro        float64
	NGram       float64
	Substring   float64
	Frequency   float64
	LengthBonus float64
}

// DefaultWeights returns the stock weighting.
func DefaultWeights() Weights {
	return Weights{
		Distance:    0.25,
		Jaro:        0.30,
		NGram:       0.20,
		Substring:   0.15,
		Frequency:   0.10,
		LengthBonus: 0.10,
	}
}

// BoundedLevenshtein computes the edit distance between a and b with a
// rolling two-row buffer. When the length difference alone exceeds
// maxDistance it short-circuits to maxDistance+1 without touching the
// matrix.
func BoundedLevenshtein(a, b string, maxDistance int) int {
	if a == b {
		return 0
	}
	ra := []rune(a)
	rb := []rune(b)
	// Keep the inner loop over the shorter string.
	if len(ra) < len(rb) {
		ra, rb = rb, ra
	}
	if maxDistance >= 0 && len(ra)-len(rb) > maxDistance {
		return maxDistance + 1
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		rowMin := curr[0]
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min3(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
			if curr[j] < rowMin {
				rowMin = curr[j]
			}
		}
		if maxDistance >= 0 && rowMin > maxDistance {
			return maxDistance + 1
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

// Levenshtein is BoundedLevenshtein without a cutoff.
func Levenshtein(a, b string) int {
	return BoundedLevenshtein(a, b, -1)
}

// JaroWinkler returns the Jaro-Winkler similarity of a and b in [0,1].
func JaroWinkler(a, b string) float64 {
	if a == b {
		return 1.0
	}
	if a == "" || b == "" {
		return 0.0
	}
	return matchr.JaroWinkler(a, b, false)
}

// Bigrams returns the 2-grams of s padded with boundary markers, in
// order, one entry per occurrence ("anana" yields "an" and "na" twice
// each). The pure-boundary gram "$$" appears in every padded string and
// carries no information, so it is excluded.
func Bigrams(s string) []string {
	padded := gramPad + s + gramPad
	runes := []rune(padded)
	grams := make([]string, 0, len(runes))
	for i := 0; i+1 < len(runes); i++ {
		gram := string(runes[i : i+2])
		if gram == gramPad {
			continue
		}
		grams = append(grams, gram)
	}
	return grams
}

// BigramSet is Bigrams deduplicated into a set.
func BigramSet(s string) map[string]struct{} {
	grams := Bigrams(s)
	set := make(map[string]struct{}, len(grams))
	for _, g := range grams {
		set[g] = struct{}{}
	}
	return set
}

// NGramSimilarity is the Jaccard index over the padded bigram sets of a
// and b.
func NGramSimilarity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	if a == "" || b == "" {
		return 0.0
	}
	ga := BigramSet(a)
	gb := BigramSet(b)
	inter := 0
	for g := range ga {
		if _, ok := gb[g]; ok {
			inter++
		}
	}
	union := len(ga) + len(gb) - inter
	if union == 0 {
		return 0.0
	}
	return float64(inter) / float64(union)
}

// SubstringScore returns 1.0 when target contains query verbatim, otherwise
// the best fraction of positionally matching characters over any window of
// target the length of query. Handles garbled single tokens like "palavr4".
func SubstringScore(query, target string) float64 {
	if query == "" || target == "" {
		return 0.0
	}
	if strings.Contains(target, query) {
		return 1.0
	}
	q := []rune(query)
	t := []rune(target)
	if len(q) > len(t) {
		q, t = t, q
	}
	best := 0
	for start := 0; start+len(q) <= len(t); start++ {
		hits := 0
		for i := range q {
			if q[i] == t[start+i] {
				hits++
			}
		}
		if hits > best {
			best = hits
		}
	}
	return float64(best) / float64(len(q))
}

// CombinedScore folds the individual metrics into one ranking value. The
// distance term decays linearly to zero at maxDistance; frequency enters on
// a log scale so common words cannot drown out closer matches; a small
// bonus rewards similar lengths.
func CombinedScore(w Weights, distance, maxDistance int, jaro, ngram, substring float64, frequency uint32, queryLen, targetLen int) float64 {
	if maxDistance <= 0 {
		maxDistance = DefaultMaxDistance
	}
	distScore := 1.0 - float64(distance)/float64(maxDistance)
	if distScore < 0 {
		distScore = 0
	}
	freqScore := math.Log(float64(frequency)+1) / math.Log(100)
	if freqScore > 1 {
		freqScore = 1
	}

	score := w.Distance*distScore +
		w.Jaro*jaro +
		w.NGram*ngram +
		w.Substring*substring +
		w.Frequency*freqScore

	if queryLen > 0 && targetLen > 0 {
		shorter, longer := queryLen, targetLen
		if shorter > longer {
			shorter, longer = longer, shorter
		}
		score += w.LengthBonus * float64(shorter) / float64(longer)
	}
	return score
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
