package engine

import (
	"context"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/4lexxe/DevsProject-sub001/pkg/bktree"
	"github.com/4lexxe/DevsProject-sub001/pkg/ngram"
)

const dictVersion = 1

// dictEntry is the persisted form of one indexed term.
type dictEntry struct {
	Word      string   `msgpack:"w"`
	Frequency uint32   `msgpack:"f"`
	RecordIDs []string `msgpack:"r,omitempty"`
	Tags      []string `msgpack:"t,omitempty"`
}

type dictFile struct {
	Version int         `msgpack:"v"`
	Entries []dictEntry `msgpack:"e"`
}

// ExportDictionary writes the active snapshot's term dictionary as
// msgpack, so a later process can warm-start without re-reading the
// corpus.
func (e *Engine) ExportDictionary(w io.Writer) error {
	snap := e.snap.Load()
	if snap == nil {
		return ErrBuildFailed
	}

	var entries []dictEntry
	snap.tree.Walk(func(word string, meta bktree.Metadata) {
		entries = append(entries, dictEntry{
			Word:      word,
			Frequency: meta.Frequency,
			RecordIDs: setToSlice(meta.RecordIDs),
			Tags:      setToSlice(meta.Tags),
		})
	})
	sort.Slice(entries, func(i, j int) bool { return entries[i].Word < entries[j].Word })

	if err := msgpack.NewEncoder(w).Encode(dictFile{Version: dictVersion, Entries: entries}); err != nil {
		return fmt.Errorf("encoding dictionary: %w", err)
	}
	e.log.Debugf("exported dictionary: %d terms", len(entries))
	return nil
}

// ImportDictionary builds a snapshot from an exported dictionary and
// atomically publishes it. Exact term frequencies are restored rather
// than replayed.
func (e *Engine) ImportDictionary(ctx context.Context, r io.Reader) error {
	var file dictFile
	if err := msgpack.NewDecoder(r).Decode(&file); err != nil {
		return fmt.Errorf("%w: decoding dictionary: %v", ErrBuildFailed, err)
	}
	if file.Version != dictVersion {
		return fmt.Errorf("%w: unsupported dictionary version %d", ErrBuildFailed, file.Version)
	}

	e.buildMu.Lock()
	defer e.buildMu.Unlock()

	tree := bktree.New()
	index := ngram.New()
	for _, entry := range file.Entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		tree.Restore(entry.Word, entry.Frequency, entry.RecordIDs, entry.Tags)
		index.Restore(entry.Word, entry.Frequency)
	}

	e.snap.Store(&snapshot{tree: tree, index: index, builtAt: time.Now()})
	e.state.Store(stateReady)
	e.log.Debugf("imported dictionary: %d terms", len(file.Entries))
	return nil
}

func setToSlice(set map[string]struct{}) []string {
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
