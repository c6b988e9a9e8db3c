// Package ngram combines a patricia trie over normalized terms with a
// global bigram inverted index. The trie answers prefix completion; the
// inverted index produces fuzzy-match candidates in time proportional to
// the number of distinct query bigrams, independent of vocabulary size.
package ngram

import (
	"sort"

	"github.com/charmbracelet/log"
	"github.com/tchap/go-patricia/v2/patricia"

	"github.com/4lexxe/DevsProject-sub001/pkg/similarity"
)

// termInfo is the trie item stored per word.
type termInfo struct {
	frequency uint32
	grams     map[string]uint32
}

// postingSet is one inverted-index entry: every word containing a given
// bigram, plus how often the bigram has been seen across inserts.
type postingSet struct {
	words     map[string]struct{}
	frequency uint32
}

// Index is built once by the indexer and read-only afterwards.
type Index struct {
	trie     *patricia.Trie
	inverted map[string]*postingSet
	words    int
	maxFreq  uint32
}

// Completion is a frequency-ranked prefix match.
type Completion struct {
	Word      string
	Frequency uint32
}

// New creates an empty index.
func New() *Index {
	return &Index{
		trie:     patricia.NewTrie(),
		inverted: make(map[string]*postingSet),
	}
}

// Insert adds word to the trie and registers its bigrams in the inverted
// index. Re-inserting bumps the word's frequency instead of duplicating
// the terminal. Gram counts track occurrences, so a bigram repeated
// within one word counts once per position.
func (ix *Index) Insert(word string) {
	if word == "" {
		return
	}

	var info *termInfo
	if item := ix.trie.Get(patricia.Prefix(word)); item != nil {
		info = item.(*termInfo)
		info.frequency++
	} else {
		info = &termInfo{frequency: 1, grams: make(map[string]uint32)}
		ix.trie.Insert(patricia.Prefix(word), info)
		ix.words++
	}
	for _, gram := range similarity.Bigrams(word) {
		info.grams[gram]++
		entry, ok := ix.inverted[gram]
		if !ok {
			entry = &postingSet{words: make(map[string]struct{})}
			ix.inverted[gram] = entry
		}
		entry.words[word] = struct{}{}
		entry.frequency++
	}
	if info.frequency > ix.maxFreq {
		ix.maxFreq = info.frequency
	}
}

// Restore places word in the index with an explicit frequency, used when
// loading an exported dictionary.
func (ix *Index) Restore(word string, frequency uint32) {
	if word == "" || frequency == 0 {
		return
	}
	ix.Insert(word)
	if item := ix.trie.Get(patricia.Prefix(word)); item != nil {
		item.(*termInfo).frequency = frequency
	}
	if frequency > ix.maxFreq {
		ix.maxFreq = frequency
	}
}

// Candidates unions the word sets of every bigram the query shares with
// the index.
func (ix *Index) Candidates(query string) map[string]struct{} {
	if query == "" {
		return nil
	}
	out := make(map[string]struct{})
	for gram := range similarity.BigramSet(query) {
		entry, ok := ix.inverted[gram]
		if !ok {
			continue
		}
		for w := range entry.words {
			out[w] = struct{}{}
		}
	}
	return out
}

// Frequency returns the insert count of word, zero when absent.
func (ix *Index) Frequency(word string) uint32 {
	item := ix.trie.Get(patricia.Prefix(word))
	if item == nil {
		return 0
	}
	return item.(*termInfo).frequency
}

// CompletePrefix walks the subtree under prefix and returns up to limit
// completions with frequency >= minFreq, most frequent first. The exact
// prefix itself is skipped so callers don't echo the input back.
func (ix *Index) CompletePrefix(prefix string, limit, minFreq int) []Completion {
	if prefix == "" {
		return nil
	}
	var out []Completion
	err := ix.trie.VisitSubtree(patricia.Prefix(prefix), func(p patricia.Prefix, item patricia.Item) error {
		word := string(p)
		if word == prefix {
			return nil
		}
		info, ok := item.(*termInfo)
		if !ok {
			log.Errorf("Unexpected trie item type %T for word %s", item, word)
			return nil
		}
		if int(info.frequency) < minFreq {
			return nil
		}
		out = append(out, Completion{Word: word, Frequency: info.frequency})
		return nil
	})
	if err != nil {
		log.Errorf("Visiting trie subtree for %q: %v", prefix, err)
		return nil
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Frequency != out[j].Frequency {
			return out[i].Frequency > out[j].Frequency
		}
		return out[i].Word < out[j].Word
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Words returns the number of distinct terms indexed.
func (ix *Index) Words() int {
	return ix.words
}

// MaxFrequency returns the highest term frequency seen.
func (ix *Index) MaxFrequency() uint32 {
	return ix.maxFreq
}

// DistinctNGrams returns the number of inverted-index entries.
func (ix *Index) DistinctNGrams() int {
	return len(ix.inverted)
}

// ApproxMemoryBytes estimates the heap held by the inverted index and trie
// payloads. It is a diagnostic figure, not an accounting one.
func (ix *Index) ApproxMemoryBytes() uint64 {
	var total uint64
	for gram, entry := range ix.inverted {
		total += uint64(len(gram)) + 16
		for w := range entry.words {
			total += uint64(len(w)) + 16
		}
	}
	err := ix.trie.Visit(func(p patricia.Prefix, item patricia.Item) error {
		total += uint64(len(p)) + 48
		if info, ok := item.(*termInfo); ok {
			total += uint64(len(info.grams)) * 24
		}
		return nil
	})
	if err != nil {
		log.Errorf("Estimating trie memory: %v", err)
	}
	return total
}
