package normalize

import (
	"reflect"
	"sync"
	"testing"
)

func TestNormalize(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
		desc     string
	}{
		{"Hello World", "hello world", "simple lowercase"},
		{"  JavaScript   Basics  ", "javascript basics", "whitespace collapse and trim"},
		{"Café con leche", "cafe con leche", "combining marks stripped"},
		{"Crème brûlée", "creme brulee", "multiple diacritics"},
		{"Søren Kierkegård", "soren kierkegard", "accent table for non-decomposable runes"},
		{"straße", "strasse", "sharp s expansion"},
		{"C++ & Go!", "c go", "punctuation removed"},
		{"node.js v18", "nodejs v18", "dots dropped inside words"},
		{"ПРИВЕТ", "", "non-latin script removed entirely"},
		{"", "", "empty input"},
		{"   \t\n  ", "", "whitespace only"},
		{"año 2024", "ano 2024", "tilde stripped, digits kept"},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			got := Normalize(tc.input)
			if got != tc.expected {
				t.Errorf("Normalize(%q) = %q, want %q", tc.input, got, tc.expected)
			}
		})
	}
}

// Normalization must be idempotent: running it twice changes nothing.
func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"Hello World",
		"Café au lait",
		"  mixed   CASE  and  123  ",
		"straße über alles",
		"already normalized text",
		"!!!###",
		"",
	}
	for _, in := range inputs {
		once := Normalize(in)
		twice := Normalize(once)
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: %q != %q", in, once, twice)
		}
	}
}

func TestTokenize(t *testing.T) {
	testCases := []struct {
		input    string
		minLen   int
		expected []string
		desc     string
	}{
		{"Learn the JavaScript basics", 2, []string{"learn", "javascript", "basics"}, "stop word removed"},
		{"a b go", 2, []string{"go"}, "short tokens dropped"},
		{"Python for Data Science", 2, []string{"python", "data", "science"}, "stop word for dropped"},
		{"", 2, []string{}, "empty input"},
		{"x", 2, []string{}, "single short token"},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			got := Tokenize(tc.input, tc.minLen)
			if !reflect.DeepEqual(got, tc.expected) {
				t.Errorf("Tokenize(%q, %d) = %v, want %v", tc.input, tc.minLen, got, tc.expected)
			}
		})
	}
}

// Normalize runs concurrently on every query and on every build worker,
// so shared transformer state would corrupt output under load.
func TestNormalizeConcurrent(t *testing.T) {
	inputs := map[string]string{
		"Café au lait":      "cafe au lait",
		"straße über alles": "strasse uber alles",
		"Señor Piñata":      "senor pinata",
		"Smörgåsbord":       "smorgasbord",
		"plain ascii text":  "plain ascii text",
	}

	var wg sync.WaitGroup
	errs := make(chan string, 64)
	for g := 0; g < 16; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				for in, want := range inputs {
					if got := Normalize(in); got != want {
						select {
						case errs <- in + " -> " + got:
						default:
						}
						return
					}
				}
			}
		}()
	}
	wg.Wait()
	close(errs)
	for bad := range errs {
		t.Errorf("concurrent Normalize produced %s", bad)
	}
}
