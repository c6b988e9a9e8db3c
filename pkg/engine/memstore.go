package engine

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore is an in-process RecordStore. It backs the demo binary and
// tests; production callers wrap their own storage instead.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]Record
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]Record)}
}

// Put inserts or replaces a record.
func (s *MemoryStore) Put(rec Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[rec.ID] = rec
}

// Len returns the number of stored records.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// FindMatching implements RecordStore.
func (s *MemoryStore) FindMatching(ctx context.Context, p Predicate) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Record, 0, 16)
	for _, rec := range s.records {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if p.Matches(rec) {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Source exposes the stored records as a CorpusSource for index builds.
func (s *MemoryStore) Source() CorpusSource {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make(SliceSource, 0, len(s.records))
	for _, rec := range s.records {
		records = append(records, CorpusRecord{
			ID:         rec.ID,
			TextFields: []string{rec.Title, rec.Summary, rec.Description},
			Tags:       rec.Tags,
		})
	}
	sort.Slice(records, func(i, j int) bool { return records[i].ID < records[j].ID })
	return records
}
