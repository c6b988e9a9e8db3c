package engine

import (
	"context"
	"fmt"
	"sort"

	"github.com/4lexxe/DevsProject-sub001/pkg/normalize"
	"github.com/4lexxe/DevsProject-sub001/pkg/similarity"
)

// Suggest returns up to limit completion candidates for a partial term.
// Prefix matches from the trie come first, frequency-ranked; when those
// fall short, n-gram candidates above the configured similarity floor
// fill the remainder. The floor is lower than the search path's
// correction confidence on purpose.
func (e *Engine) Suggest(ctx context.Context, partial string, limit int) ([]string, error) {
	term := normalize.Normalize(partial)
	if term == "" {
		return nil, fmt.Errorf("%w: empty after normalization", ErrInvalidQuery)
	}
	if limit < 1 {
		limit = 1
	}
	if ceiling := e.cfg.Suggest.MaxLimit; ceiling > 0 && limit > ceiling {
		limit = ceiling
	}

	snap, err := e.ensureBuilt(ctx)
	if err != nil {
		return nil, err
	}

	minFreq := e.cfg.Suggest.MinFrequency
	if len(term) <= 2 || isRepetitive(term) {
		minFreq = e.cfg.Suggest.ShortPrefixFloor
	}

	out := make([]string, 0, limit)
	seen := make(map[string]struct{}, limit)
	for _, c := range snap.index.CompletePrefix(term, limit, minFreq) {
		out = append(out, c.Word)
		seen[c.Word] = struct{}{}
	}
	if len(out) >= limit {
		return out[:limit], nil
	}

	type fuzzyHit struct {
		word  string
		score float64
		freq  uint32
	}
	var hits []fuzzyHit
	floor := e.cfg.Suggest.MinSimilarity
	for word := range snap.index.Candidates(term) {
		if _, dup := seen[word]; dup || word == term {
			continue
		}
		score := similarity.JaroWinkler(term, word)
		if ngram := similarity.NGramSimilarity(term, word); ngram > score {
			score = ngram
		}
		if score < floor {
			continue
		}
		hits = append(hits, fuzzyHit{word: word, score: score, freq: snap.index.Frequency(word)})
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].score != hits[j].score {
			return hits[i].score > hits[j].score
		}
		if hits[i].freq != hits[j].freq {
			return hits[i].freq > hits[j].freq
		}
		return hits[i].word < hits[j].word
	})
	for _, h := range hits {
		if len(out) >= limit {
			break
		}
		out = append(out, h.word)
	}
	return out, nil
}

// isRepetitive reports whether s is a run of one character or a short
// repeating pattern like "ababab". Such prefixes get a higher frequency
// floor so noise does not dominate suggestions.
func isRepetitive(s string) bool {
	if len(s) <= 1 {
		return false
	}
	for patternLen := 1; patternLen <= len(s)/2; patternLen++ {
		if len(s)%patternLen != 0 {
			continue
		}
		repeating := true
		for i := patternLen; i < len(s); i++ {
			if s[i] != s[i-patternLen] {
				repeating = false
				break
			}
		}
		if repeating {
			return true
		}
	}
	return false
}
