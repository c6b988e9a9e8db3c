package engine

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/4lexxe/DevsProject-sub001/pkg/bktree"
	"github.com/4lexxe/DevsProject-sub001/pkg/normalize"
	"github.com/4lexxe/DevsProject-sub001/pkg/similarity"
)

// Algorithm labels reported in results.
const (
	labelFuzzy     = "bktree+ngram"
	labelSubstring = "substring"
)

// Search runs the full query pipeline: validate, normalize, tokenize,
// silently correct typos, hand a predicate to the record store, then
// re-rank and paginate what comes back.
//
// Any failure inside the correction stage degrades that token to plain
// substring matching instead of failing the query.
func (e *Engine) Search(ctx context.Context, query string, opts Options) (*Result, error) {
	start := time.Now()
	if e.store == nil {
		return nil, ErrStoreRequired
	}
	if limit := e.cfg.Engine.MaxQueryLength; utf8.RuneCountInString(query) > limit {
		return nil, fmt.Errorf("%w: query exceeds %d characters", ErrInvalidQuery, limit)
	}

	normalized := normalize.Normalize(query)
	if normalized == "" {
		return nil, fmt.Errorf("%w: empty after normalization", ErrInvalidQuery)
	}
	normalized = e.applyReplacements(normalized)

	snap, err := e.ensureBuilt(ctx)
	if err != nil {
		return nil, err
	}

	tokens := e.queryTokens(normalized)
	corrections, corrected := e.correctTokens(snap, tokens, opts.MinSimilarity)

	label := labelSubstring
	if len(corrections) > 0 {
		label = labelFuzzy
	}

	terms := unionTerms(tokens, corrected)
	records, err := e.store.FindMatching(ctx, Predicate{Terms: terms, Filters: opts.Filters})
	if err != nil {
		return nil, fmt.Errorf("record store: %w", err)
	}

	ranked := e.rank(records, terms, normalized)
	total := len(ranked)
	if opts.MaxResults > 0 && len(ranked) > opts.MaxResults {
		ranked = ranked[:opts.MaxResults]
		total = len(ranked)
	}
	items := paginate(ranked, opts.Page, opts.Limit)

	ids := make([]string, 0, len(ranked))
	for _, rr := range ranked {
		ids = append(ids, rr.Record.ID)
	}

	result := &Result{
		Items:            items,
		TotalCount:       total,
		MatchedRecordIDs: ids,
		AlgorithmLabel:   label,
		ElapsedMs:        time.Since(start).Milliseconds(),
	}
	if e.cfg.Engine.ExposeCorrections {
		result.Corrections = corrections
	}
	return result, nil
}

// applyReplacements rewrites known compound technical terms before
// tokenization so "node js" survives as one token.
func (e *Engine) applyReplacements(normalized string) string {
	for from, to := range e.cfg.Replacements {
		if strings.Contains(normalized, from) {
			normalized = strings.ReplaceAll(normalized, from, to)
		}
	}
	return strings.Join(strings.Fields(normalized), " ")
}

// queryTokens splits the normalized query into at most MaxTokens search
// tokens. A query that normalizes to something non-empty but yields no
// tokens falls back to the whole normalized string as a single term.
func (e *Engine) queryTokens(normalized string) []string {
	tokens := normalize.Tokenize(normalized, e.cfg.Engine.MinTokenLength)
	if limit := e.cfg.Engine.MaxTokens; limit > 0 && len(tokens) > limit {
		tokens = tokens[:limit]
	}
	if len(tokens) == 0 {
		tokens = []string{normalized}
	}
	return tokens
}

// correctTokens runs silent per-token correction against the snapshot and
// returns the substitutions made plus the corrected term list.
func (e *Engine) correctTokens(snap *snapshot, tokens []string, minSimilarity float64) ([]Correction, []string) {
	confidence := e.cfg.Engine.CorrectionConfidence
	if minSimilarity > confidence {
		confidence = minSimilarity
	}

	var corrections []Correction
	corrected := make([]string, 0, len(tokens))
	for _, token := range tokens {
		replacement, ok := e.correctToken(snap, token, confidence)
		if ok {
			corrections = append(corrections, Correction{Original: token, Corrected: replacement})
			corrected = append(corrected, replacement)
			continue
		}
		corrected = append(corrected, token)
	}
	return corrections, corrected
}

// correctToken finds the best-scoring candidate for one token. Panics
// inside the scoring stage are contained here: the token degrades to
// substring matching.
func (e *Engine) correctToken(snap *snapshot, token string, confidence float64) (replacement string, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Warnf("correction stage failed for %q, degrading to substring: %v", token, r)
			replacement, ok = "", false
		}
	}()

	maxDist := e.tokenDistance(token)
	candidates := snap.tree.Search(token, maxDist)

	seen := make(map[string]struct{}, len(candidates))
	for _, c := range candidates {
		seen[c.Word] = struct{}{}
	}
	// N-gram candidates catch words the distance bound excludes, e.g.
	// heavily garbled tokens that still share most bigrams.
	for word := range snap.index.Candidates(token) {
		if _, dup := seen[word]; dup {
			continue
		}
		d := similarity.BoundedLevenshtein(token, word, e.cfg.Engine.MaxEditDistance)
		candidates = append(candidates, candidateFromWord(snap, token, word, d))
	}

	bestScore := -1.0
	var best string
	var bestJaro float64
	for _, c := range candidates {
		score := similarity.CombinedScore(
			e.weights,
			c.Distance, e.cfg.Engine.MaxEditDistance,
			c.Jaro, c.NGram,
			similarity.SubstringScore(token, c.Word),
			c.Frequency,
			len(token), len(c.Word),
		)
		if score > bestScore {
			bestScore = score
			best = c.Word
			bestJaro = c.Jaro
		}
	}
	if best == "" || best == token || bestJaro < confidence {
		return "", false
	}
	e.log.Debugf("corrected %q -> %q (jaro %.3f)", token, best, bestJaro)
	return best, true
}

// tokenDistance derives the per-token edit-distance bound, roughly 30% of
// the token length, clamped to the configured maximum.
func (e *Engine) tokenDistance(token string) int {
	d := len(token) * 3 / 10
	if d < 1 {
		d = 1
	}
	if bound := e.cfg.Engine.MaxEditDistance; d > bound {
		d = bound
	}
	return d
}

// rank computes the field-weighted relevance of each record: title hits
// weigh most, then summary, tags and description, plus a bonus for an
// exact phrase match of the full normalized query. Ties break on record
// id so ordering is stable across runs.
func (e *Engine) rank(records []Record, terms []string, phrase string) []RankedRecord {
	w := e.cfg.Ranking
	ranked := make([]RankedRecord, 0, len(records))
	for _, rec := range records {
		title := normalize.Normalize(rec.Title)
		summary := normalize.Normalize(rec.Summary)
		description := normalize.Normalize(rec.Description)

		var score float64
		for _, term := range terms {
			if strings.Contains(title, term) {
				score += w.Title
			}
			if strings.Contains(summary, term) {
				score += w.Summary
			}
			if strings.Contains(description, term) {
				score += w.Description
			}
			for _, tag := range rec.Tags {
				if strings.Contains(normalize.Normalize(tag), term) {
					score += w.Tags
					break
				}
			}
		}
		if strings.Contains(title, phrase) || strings.Contains(summary, phrase) || strings.Contains(description, phrase) {
			score += w.PhraseBonus
		}
		ranked = append(ranked, RankedRecord{Record: rec, Score: score})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].Record.ID < ranked[j].Record.ID
	})
	return ranked
}

func candidateFromWord(snap *snapshot, token, word string, distance int) bktree.Candidate {
	return bktree.Candidate{
		Word:      word,
		Distance:  distance,
		Jaro:      similarity.JaroWinkler(token, word),
		NGram:     similarity.NGramSimilarity(token, word),
		Frequency: snap.index.Frequency(word),
	}
}

func unionTerms(tokens, corrected []string) []string {
	seen := make(map[string]struct{}, len(tokens)+len(corrected))
	out := make([]string, 0, len(tokens)+len(corrected))
	for _, lists := range [][]string{tokens, corrected} {
		for _, t := range lists {
			if _, dup := seen[t]; dup {
				continue
			}
			seen[t] = struct{}{}
			out = append(out, t)
		}
	}
	return out
}

func paginate(ranked []RankedRecord, page, limit int) []RankedRecord {
	if limit <= 0 {
		return ranked
	}
	if page < 1 {
		page = 1
	}
	startIdx := (page - 1) * limit
	if startIdx >= len(ranked) {
		return nil
	}
	end := startIdx + limit
	if end > len(ranked) {
		end = len(ranked)
	}
	return ranked[startIdx:end]
}
