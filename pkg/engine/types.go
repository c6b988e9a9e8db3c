package engine

import (
	"context"
	"strings"
	"time"
)

// CorpusRecord is one record handed to the engine at build time. IDs are
// opaque; the engine never parses them.
type CorpusRecord struct {
	ID         string
	TextFields []string
	Tags       []string
}

// CorpusSource supplies records for a build pass. Each must call fn once
// per record and may return the context error to abort.
type CorpusSource interface {
	Each(ctx context.Context, fn func(CorpusRecord) error) error
}

// SliceSource adapts an in-memory slice to CorpusSource.
type SliceSource []CorpusRecord

// Each implements CorpusSource.
func (s SliceSource) Each(ctx context.Context, fn func(CorpusRecord) error) error {
	for _, rec := range s {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(rec); err != nil {
			return err
		}
	}
	return nil
}

// Record is a full catalog record as returned by the record store.
type Record struct {
	ID          string
	Title       string
	Summary     string
	Description string
	Tags        []string
	Category    string
	Price       float64
	Active      bool
}

// FilterSet carries caller-supplied filters that are ANDed with the
// fuzzy-match terms.
type FilterSet struct {
	Category   string
	MinPrice   float64
	MaxPrice   float64 // zero means unbounded
	ActiveOnly bool
}

// Predicate is the filter the engine hands to the record store: a record
// matches when any term is a case-insensitive substring of any searchable
// field, ANDed with the filters.
type Predicate struct {
	Terms   []string
	Filters FilterSet
}

// Matches reports whether r satisfies the predicate.
func (p Predicate) Matches(r Record) bool {
	f := p.Filters
	if f.ActiveOnly && !r.Active {
		return false
	}
	if f.Category != "" && !strings.EqualFold(f.Category, r.Category) {
		return false
	}
	if r.Price < f.MinPrice {
		return false
	}
	if f.MaxPrice > 0 && r.Price > f.MaxPrice {
		return false
	}
	if len(p.Terms) == 0 {
		return true
	}
	fields := []string{
		strings.ToLower(r.Title),
		strings.ToLower(r.Summary),
		strings.ToLower(r.Description),
	}
	for _, term := range p.Terms {
		for _, field := range fields {
			if strings.Contains(field, term) {
				return true
			}
		}
		for _, tag := range r.Tags {
			if strings.Contains(strings.ToLower(tag), term) {
				return true
			}
		}
	}
	return false
}

// RecordStore executes a predicate against the authoritative record set.
// The engine builds the predicate and re-ranks whatever comes back; the
// store owns execution, timeouts and cancellation.
type RecordStore interface {
	FindMatching(ctx context.Context, p Predicate) ([]Record, error)
}

// Options tunes a single Search call.
type Options struct {
	MaxResults    int
	Page          int
	Limit         int
	MinSimilarity float64
	Filters       FilterSet
}

// Correction is one silent token substitution made during a query.
type Correction struct {
	Original  string `json:"original"`
	Corrected string `json:"corrected"`
}

// RankedRecord pairs a record with its relevance score.
type RankedRecord struct {
	Record Record
	Score  float64
}

// Result is the outcome of one Search call. Corrections is populated only
// when the engine is configured to expose them.
type Result struct {
	Items            []RankedRecord
	TotalCount       int
	MatchedRecordIDs []string
	Corrections      []Correction
	AlgorithmLabel   string
	ElapsedMs        int64
}

// Stats reports diagnostic figures about the active snapshot and the
// engine's build state: unbuilt, building or ready.
type Stats struct {
	State             string
	IsBuilt           bool
	TotalTerms        int
	DistinctNGrams    int
	ApproxMemoryBytes uint64
	BuiltAt           time.Time
}
