// Package normalize canonicalizes catalog text into a lowercase comparable
// form used by every index structure and by query handling.
package normalize

import (
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripMarksPool hands out transformers that decompose to NFD and remove
// combining marks, so "café" becomes "cafe" before any further filtering.
// Chained transformers carry mutable buffers and must not be shared
// across goroutines; transform.String resets a pooled one before use.
var stripMarksPool = sync.Pool{
	New: func() any {
		return transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	},
}

// accentTable maps non-ASCII letters that survive NFD decomposition.
var accentTable = map[rune]string{
	'ø': "o",
	'Ø': "o",
	'đ': "d",
	'Đ': "d",
	'ß': "ss",
	'æ': "ae",
	'Æ': "ae",
	'œ': "oe",
	'Œ': "oe",
	'ł': "l",
	'Ł': "l",
	'þ': "th",
	'Þ': "th",
	'ð': "d",
	'Ð': "d",
	'ı': "i",
}

var stopWords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {},
	"be": {}, "by": {}, "de": {}, "for": {}, "from": {}, "in": {},
	"is": {}, "it": {}, "of": {}, "on": {}, "or": {}, "the": {},
	"to": {}, "with": {},
}

// Normalize lowercases, strips diacritics, maps the accent table, drops any
// character outside [a-z0-9, whitespace] and collapses whitespace runs.
// It is total and idempotent: Normalize(Normalize(x)) == Normalize(x).
func Normalize(text string) string {
	lowered := strings.ToLower(text)
	stripMarks := stripMarksPool.Get().(transform.Transformer)
	stripped, _, err := transform.String(stripMarks, lowered)
	stripMarksPool.Put(stripMarks)
	if err != nil {
		// Malformed UTF-8 falls through to the rune filter below.
		stripped = lowered
	}

	var b strings.Builder
	b.Grow(len(stripped))
	for _, r := range stripped {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteByte(' ')
		default:
			if mapped, ok := accentTable[r]; ok {
				b.WriteString(mapped)
			}
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// Tokenize splits normalized text into search tokens, dropping tokens
// shorter than minLen and common stop-words. The same rules apply during
// indexing and querying, so stop-word removal can never cause a miss.
func Tokenize(text string, minLen int) []string {
	fields := strings.Fields(Normalize(text))
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if len(f) < minLen {
			continue
		}
		if _, stop := stopWords[f]; stop {
			continue
		}
		tokens = append(tokens, f)
	}
	return tokens
}
