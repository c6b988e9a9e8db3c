package similarity

import (
	"fmt"
	"math/rand"
	"testing"
)

func TestBoundedLevenshtein(t *testing.T) {
	testCases := []struct {
		a        string
		b        string
		expected int
	}{
		{"", "", 0},
		{"a", "", 1},
		{"", "a", 1},
		{"kitten", "sitting", 3},
		{"saturday", "sunday", 3},
		{"book", "back", 2},
		{"book", "books", 1},
		{"hello", "hallo", 1},
		{"javascript", "javascrpt", 1},
	}

	for _, tc := range testCases {
		t.Run(fmt.Sprintf("%s→%s", tc.a, tc.b), func(t *testing.T) {
			if got := Levenshtein(tc.a, tc.b); got != tc.expected {
				t.Errorf("expected distance %d, got %d", tc.expected, got)
			}
		})
	}
}

func TestBoundedLevenshteinCutoff(t *testing.T) {
	// Length gap alone exceeds the bound: must short-circuit to bound+1.
	if got := BoundedLevenshtein("go", "javascript", 3); got != 4 {
		t.Errorf("expected cutoff value 4, got %d", got)
	}
	// Within the bound the exact distance comes back.
	if got := BoundedLevenshtein("hello", "hallo", 3); got != 1 {
		t.Errorf("expected 1, got %d", got)
	}
	// Distance above the bound with similar lengths also cuts off.
	if got := BoundedLevenshtein("abcdef", "uvwxyz", 2); got != 3 {
		t.Errorf("expected cutoff value 3, got %d", got)
	}
}

func randomWord(rng *rand.Rand, maxLen int) string {
	n := rng.Intn(maxLen) + 1
	b := make([]byte, n)
	for i := range b {
		b[i] = byte('a' + rng.Intn(6))
	}
	return string(b)
}

// The metric axioms the BK-tree pruning depends on: identity, symmetry
// and the triangle inequality.
func TestLevenshteinMetricProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 500; i++ {
		a := randomWord(rng, 10)
		b := randomWord(rng, 10)
		c := randomWord(rng, 10)

		if Levenshtein(a, a) != 0 {
			t.Fatalf("identity violated for %q", a)
		}
		ab := Levenshtein(a, b)
		if ba := Levenshtein(b, a); ab != ba {
			t.Fatalf("symmetry violated for %q,%q: %d != %d", a, b, ab, ba)
		}
		bc := Levenshtein(b, c)
		ac := Levenshtein(a, c)
		if ac > ab+bc {
			t.Fatalf("triangle inequality violated for %q,%q,%q: %d > %d+%d", a, b, c, ac, ab, bc)
		}
	}
}

func TestJaroWinkler(t *testing.T) {
	if got := JaroWinkler("martha", "martha"); got != 1.0 {
		t.Errorf("identical strings should score 1.0, got %f", got)
	}
	if got := JaroWinkler("", "martha"); got != 0.0 {
		t.Errorf("empty string should score 0.0, got %f", got)
	}

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 200; i++ {
		a := randomWord(rng, 12)
		b := randomWord(rng, 12)
		got := JaroWinkler(a, b)
		if got < 0.0 || got > 1.0 {
			t.Fatalf("JaroWinkler(%q, %q) = %f out of [0,1]", a, b, got)
		}
	}

	// Shared prefixes boost the score.
	prefixed := JaroWinkler("javascript", "javascrpt")
	unrelated := JaroWinkler("javascript", "tpircsavaj")
	if prefixed <= unrelated {
		t.Errorf("expected prefix boost: %f <= %f", prefixed, unrelated)
	}
}

func TestBigrams(t *testing.T) {
	counts := make(map[string]int)
	for _, g := range Bigrams("banana") {
		counts[g]++
	}
	expected := map[string]int{"$b": 1, "ba": 1, "an": 2, "na": 2, "a$": 1}
	for gram, want := range expected {
		if counts[gram] != want {
			t.Errorf("Bigrams(banana)[%q] = %d, want %d", gram, counts[gram], want)
		}
	}
	if len(counts) != len(expected) {
		t.Errorf("expected %d distinct grams, got %v", len(expected), counts)
	}
	// The pure-boundary gram never appears.
	if _, ok := counts["$$"]; ok {
		t.Error("boundary gram must be excluded")
	}

	set := BigramSet("banana")
	if len(set) != len(expected) {
		t.Errorf("BigramSet size = %d, want %d", len(set), len(expected))
	}
}

func TestNGramSimilarity(t *testing.T) {
	if got := NGramSimilarity("go", "go"); got != 1.0 {
		t.Errorf("identical strings should score 1.0, got %f", got)
	}
	if got := NGramSimilarity("go", ""); got != 0.0 {
		t.Errorf("empty string should score 0.0, got %f", got)
	}
	close := NGramSimilarity("javascript", "javascrpt")
	far := NGramSimilarity("javascript", "python")
	if close <= far {
		t.Errorf("expected %f > %f", close, far)
	}
}

func TestSubstringScore(t *testing.T) {
	testCases := []struct {
		query    string
		target   string
		expected float64
		desc     string
	}{
		{"script", "javascript", 1.0, "verbatim substring"},
		{"java", "java", 1.0, "exact match"},
		{"", "java", 0.0, "empty query"},
		{"java", "", 0.0, "empty target"},
	}
	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			if got := SubstringScore(tc.query, tc.target); got != tc.expected {
				t.Errorf("SubstringScore(%q, %q) = %f, want %f", tc.query, tc.target, got, tc.expected)
			}
		})
	}

	// A garbled token still scores most of its characters positionally.
	got := SubstringScore("palavr4", "palavra")
	if got < 0.8 || got >= 1.0 {
		t.Errorf("expected partial window score in [0.8,1.0), got %f", got)
	}
}

func TestCombinedScore(t *testing.T) {
	w := DefaultWeights()

	exact := CombinedScore(w, 0, 4, 1.0, 1.0, 1.0, 10, 10, 10)
	near := CombinedScore(w, 1, 4, 0.95, 0.8, 0.5, 10, 9, 10)
	far := CombinedScore(w, 4, 4, 0.4, 0.1, 0.0, 10, 4, 10)

	if !(exact > near && near > far) {
		t.Errorf("expected monotone ordering, got exact=%f near=%f far=%f", exact, near, far)
	}

	// Frequency enters on a log scale and stays capped.
	common := CombinedScore(w, 1, 4, 0.9, 0.8, 0.5, 1000000, 9, 10)
	rare := CombinedScore(w, 1, 4, 0.9, 0.8, 0.5, 1, 9, 10)
	if common-rare > w.Frequency {
		t.Errorf("frequency contribution exceeds its weight: %f", common-rare)
	}
}

func BenchmarkBoundedLevenshtein(b *testing.B) {
	for i := 0; i < b.N; i++ {
		BoundedLevenshtein("internationalization", "internationalisation", 4)
	}
}
