package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/4lexxe/DevsProject-sub001/pkg/bktree"
	"github.com/4lexxe/DevsProject-sub001/pkg/ngram"
	"github.com/4lexxe/DevsProject-sub001/pkg/normalize"
)

// tokenizedDoc is the unit of work between the normalizing workers and the
// single inserter goroutine.
type tokenizedDoc struct {
	id     string
	tags   []string
	tokens []string
}

// buildSnapshot runs one full build pass against a freshly allocated tree
// and index. Normalization and tokenization fan out over a worker pool;
// inserts stay on a single goroutine so the structures never see
// concurrent mutation.
func (e *Engine) buildSnapshot(ctx context.Context) (*snapshot, error) {
	workers := e.cfg.Engine.BuildWorkers
	if workers < 1 {
		workers = 1
	}
	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, fmt.Errorf("%w: creating build pool: %v", ErrBuildFailed, err)
	}
	defer pool.Release()

	tree := bktree.New()
	index := ngram.New()

	docs := make(chan tokenizedDoc, 128)
	inserted := make(chan struct{})
	go func() {
		defer close(inserted)
		for doc := range docs {
			for _, tok := range doc.tokens {
				tree.Insert(tok, doc.id, doc.tags)
				index.Insert(tok)
			}
		}
	}()

	var wg sync.WaitGroup
	minLen := e.cfg.Engine.MinTokenLength
	srcErr := e.source.Each(ctx, func(rec CorpusRecord) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		wg.Add(1)
		task := func() {
			defer wg.Done()
			docs <- tokenizedDoc{
				id:     rec.ID,
				tags:   rec.Tags,
				tokens: tokenizeRecord(rec, minLen),
			}
		}
		if err := pool.Submit(task); err != nil {
			wg.Done()
			return err
		}
		return nil
	})

	wg.Wait()
	close(docs)
	<-inserted

	if srcErr != nil {
		return nil, fmt.Errorf("%w: %v", ErrBuildFailed, srcErr)
	}
	return &snapshot{tree: tree, index: index, builtAt: time.Now()}, nil
}

// tokenizeRecord normalizes every text field of rec into index tokens.
func tokenizeRecord(rec CorpusRecord, minLen int) []string {
	var tokens []string
	for _, field := range rec.TextFields {
		tokens = append(tokens, normalize.Tokenize(field, minLen)...)
	}
	for _, tag := range rec.Tags {
		tokens = append(tokens, normalize.Tokenize(tag, minLen)...)
	}
	return tokens
}
