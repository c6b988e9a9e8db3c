/*
Package engine is the public entry point of the catalog search core. An
Engine owns an immutable index snapshot (BK-tree plus trie/n-gram index),
rebuilds it from a corpus source on demand, and answers fuzzy search and
autocomplete queries by combining the shared similarity scorer with the
snapshot structures and a caller-supplied record store.

An Engine moves through three states: unbuilt, building and ready. The
first query against an unbuilt engine triggers a synchronous build;
concurrent first queries share that one build. After a snapshot is
published all reads are lock-free.
*/
package engine

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/singleflight"

	"github.com/4lexxe/DevsProject-sub001/internal/logger"
	"github.com/4lexxe/DevsProject-sub001/pkg/bktree"
	"github.com/4lexxe/DevsProject-sub001/pkg/config"
	"github.com/4lexxe/DevsProject-sub001/pkg/ngram"
	"github.com/4lexxe/DevsProject-sub001/pkg/similarity"
)

// Engine states.
const (
	stateUnbuilt int32 = iota
	stateBuilding
	stateReady
)

func stateName(s int32) string {
	switch s {
	case stateBuilding:
		return "building"
	case stateReady:
		return "ready"
	default:
		return "unbuilt"
	}
}

// snapshot is one complete, immutable build of the index structures.
type snapshot struct {
	tree    *bktree.Tree
	index   *ngram.Index
	builtAt time.Time
}

// Engine is safe for concurrent use. Reads never block on builds except
// on cold start, where the first queries wait for the initial snapshot.
type Engine struct {
	cfg     *config.Config
	weights similarity.Weights
	source  CorpusSource
	store   RecordStore
	log     *log.Logger

	snap    atomic.Pointer[snapshot]
	state   atomic.Int32
	buildMu sync.Mutex
	buildSF singleflight.Group
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets a custom logger. Default is a prefixed engine logger.
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// New creates an engine over the given corpus source and record store.
// A nil cfg uses builtin defaults. The store may be nil for engines that
// only serve Suggest and Stats.
func New(cfg *config.Config, source CorpusSource, store RecordStore, opts ...Option) *Engine {
	if cfg == nil {
		cfg = config.Default()
	}
	e := &Engine{
		cfg:    cfg,
		source: source,
		store:  store,
		log:    logger.New("engine"),
		weights: similarity.Weights{
			Distance:    cfg.Scoring.Distance,
			Jaro:        cfg.Scoring.Jaro,
			NGram:       cfg.Scoring.NGram,
			Substring:   cfg.Scoring.Substring,
			Frequency:   cfg.Scoring.Frequency,
			LengthBonus: cfg.Scoring.LengthBonus,
		},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Rebuild constructs a fresh snapshot from the corpus source and
// atomically publishes it. On failure the previous snapshot, if any,
// stays active and queryable.
func (e *Engine) Rebuild(ctx context.Context) error {
	if e.source == nil {
		return ErrSourceRequired
	}
	e.buildMu.Lock()
	defer e.buildMu.Unlock()

	if e.snap.Load() == nil {
		e.state.Store(stateBuilding)
	}
	start := time.Now()
	snap, err := e.buildSnapshot(ctx)
	if err != nil {
		if e.snap.Load() == nil {
			e.state.Store(stateUnbuilt)
		}
		return err
	}
	e.snap.Store(snap)
	e.state.Store(stateReady)
	e.log.Debugf("published snapshot: %d terms, %d ngrams in %s",
		snap.index.Words(), snap.index.DistinctNGrams(), time.Since(start))
	return nil
}

// ensureBuilt resolves the cold-start case: queries arriving before any
// snapshot exists trigger and wait on one shared synchronous build.
func (e *Engine) ensureBuilt(ctx context.Context) (*snapshot, error) {
	if snap := e.snap.Load(); snap != nil {
		return snap, nil
	}
	_, err, _ := e.buildSF.Do("build", func() (any, error) {
		if e.snap.Load() != nil {
			return nil, nil
		}
		return nil, e.Rebuild(ctx)
	})
	if err != nil {
		return nil, err
	}
	snap := e.snap.Load()
	if snap == nil {
		return nil, fmt.Errorf("%w: no snapshot after build", ErrBuildFailed)
	}
	return snap, nil
}

// IsBuilt reports whether a snapshot has been published.
func (e *Engine) IsBuilt() bool {
	return e.snap.Load() != nil
}

// Stats returns diagnostics for the active snapshot.
func (e *Engine) Stats() Stats {
	snap := e.snap.Load()
	if snap == nil {
		return Stats{State: stateName(e.state.Load())}
	}
	return Stats{
		State:             stateName(e.state.Load()),
		IsBuilt:           true,
		TotalTerms:        snap.index.Words(),
		DistinctNGrams:    snap.index.DistinctNGrams(),
		ApproxMemoryBytes: snap.index.ApproxMemoryBytes() + snap.tree.ApproxMemoryBytes(),
		BuiltAt:           snap.builtAt,
	}
}
