// Package bktree implements a metric-space tree over normalized terms,
// keyed by Levenshtein distance. The triangle inequality lets a lookup
// prune whole subtrees, so approximate matching stays sub-linear in the
// vocabulary size.
package bktree

import (
	"sort"

	"github.com/4lexxe/DevsProject-sub001/pkg/similarity"
)

// Metadata accumulates per-term information across inserts. Duplicate
// inserts of the same term merge here instead of creating a second node.
type Metadata struct {
	Frequency uint32
	RecordIDs map[string]struct{}
	Tags      map[string]struct{}
}

type node struct {
	word     string
	children map[int]*node
	meta     Metadata
}

// Tree is a BK-tree. It is not safe for concurrent mutation; the engine
// builds a tree once and only ever reads it afterwards.
type Tree struct {
	root *node
	size int
}

// Candidate is one approximate match produced by Search. Jaro and NGram
// are computed at emission time so callers can rank without re-walking.
type Candidate struct {
	Word      string
	Distance  int
	Jaro      float64
	NGram     float64
	Frequency uint32
	RecordIDs map[string]struct{}
	Tags      map[string]struct{}
}

// New creates an empty tree.
func New() *Tree {
	return &Tree{}
}

// Size returns the number of distinct terms in the tree.
func (t *Tree) Size() int {
	return t.size
}

// Insert adds word to the tree, attaching recordID and tags to the term's
// metadata. An empty recordID is skipped. Re-inserting an existing word
// merges metadata; the tree never holds two nodes for one word.
func (t *Tree) Insert(word, recordID string, tags []string) {
	if word == "" {
		return
	}
	if t.root == nil {
		t.root = newNode(word, recordID, tags)
		t.size++
		return
	}
	current := t.root
	for {
		d := similarity.Levenshtein(word, current.word)
		if d == 0 {
			current.meta.merge(recordID, tags)
			return
		}
		child, ok := current.children[d]
		if !ok {
			current.children[d] = newNode(word, recordID, tags)
			t.size++
			return
		}
		current = child
	}
}

// Restore places word in the tree with explicit metadata. Used when
// loading a previously exported dictionary, where insert counts must not
// be replayed.
func (t *Tree) Restore(word string, frequency uint32, recordIDs, tags []string) {
	if word == "" {
		return
	}
	t.Insert(word, "", nil)
	n := t.find(word)
	if n == nil {
		return
	}
	n.meta.Frequency = frequency
	for _, id := range recordIDs {
		n.meta.RecordIDs[id] = struct{}{}
	}
	for _, tag := range tags {
		n.meta.Tags[tag] = struct{}{}
	}
}

func (t *Tree) find(word string) *node {
	current := t.root
	for current != nil {
		d := similarity.Levenshtein(word, current.word)
		if d == 0 {
			return current
		}
		current = current.children[d]
	}
	return nil
}

// Search returns every term within maxDistance edits of query, best
// matches first. Traversal is iterative with an explicit stack, so tree
// shape cannot overflow the goroutine stack on pathological corpora.
func (t *Tree) Search(query string, maxDistance int) []Candidate {
	if t.root == nil || query == "" || maxDistance < 0 {
		return nil
	}

	var results []Candidate
	stack := make([]*node, 0, 64)
	stack = append(stack, t.root)

	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		d := similarity.BoundedLevenshtein(query, n.word, -1)
		if d <= maxDistance {
			results = append(results, Candidate{
				Word:      n.word,
				Distance:  d,
				Jaro:      similarity.JaroWinkler(query, n.word),
				NGram:     similarity.NGramSimilarity(query, n.word),
				Frequency: n.meta.Frequency,
				RecordIDs: n.meta.RecordIDs,
				Tags:      n.meta.Tags,
			})
		}

		// Triangle inequality: a child at edge label e can only contain
		// matches when |e - d| <= maxDistance.
		lo, hi := d-maxDistance, d+maxDistance
		for edge, child := range n.children {
			if edge >= lo && edge <= hi {
				stack = append(stack, child)
			}
		}
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Distance != results[j].Distance {
			return results[i].Distance < results[j].Distance
		}
		if results[i].Jaro != results[j].Jaro {
			return results[i].Jaro > results[j].Jaro
		}
		return results[i].Word < results[j].Word
	})
	return results
}

// Walk visits every term in the tree in unspecified order.
func (t *Tree) Walk(fn func(word string, meta Metadata)) {
	if t.root == nil {
		return
	}
	stack := []*node{t.root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		fn(n.word, n.meta)
		for _, child := range n.children {
			stack = append(stack, child)
		}
	}
}

// ApproxMemoryBytes estimates the heap held by the tree. Diagnostic only.
func (t *Tree) ApproxMemoryBytes() uint64 {
	var total uint64
	t.Walk(func(word string, meta Metadata) {
		total += uint64(len(word)) + 64
		for id := range meta.RecordIDs {
			total += uint64(len(id)) + 16
		}
		for tag := range meta.Tags {
			total += uint64(len(tag)) + 16
		}
	})
	return total
}

func newNode(word, recordID string, tags []string) *node {
	n := &node{
		word:     word,
		children: make(map[int]*node),
		meta: Metadata{
			RecordIDs: make(map[string]struct{}),
			Tags:      make(map[string]struct{}),
		},
	}
	n.meta.merge(recordID, tags)
	return n
}

func (m *Metadata) merge(recordID string, tags []string) {
	m.Frequency++
	if recordID != "" {
		m.RecordIDs[recordID] = struct{}{}
	}
	for _, tag := range tags {
		if tag != "" {
			m.Tags[tag] = struct{}{}
		}
	}
}
