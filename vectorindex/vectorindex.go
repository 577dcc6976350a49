//
// Tencent is pleased to support the open source community by making trpc-storycheck-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-storycheck-go is licensed under the Apache License Version 2.0.
//
//

// Package vectorindex provides an exact nearest-neighbor index over novel
// chunks. An index is built once from a chunk set and then serves read-only
// queries; rebuilding means discarding the instance and creating a new one.
package vectorindex

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/panjf2000/ants/v2"

	"trpc.group/trpc-go/trpc-storycheck-go/document"
	"trpc.group/trpc-go/trpc-storycheck-go/embedder"
	"trpc.group/trpc-go/trpc-storycheck-go/log"
)

var (
	// ErrNoChunks is returned when Build is called with no chunks.
	ErrNoChunks = errors.New("vectorindex: no chunks provided for indexing")

	// ErrAlreadyBuilt is returned when Build is called twice on one instance.
	ErrAlreadyBuilt = errors.New("vectorindex: index already built")

	// ErrNotBuilt is returned when Query is called before Build. Querying an
	// unbuilt index is a caller contract violation, not a runtime condition.
	ErrNotBuilt = errors.New("vectorindex: index not built, call Build first")
)

// Searcher is the nearest-neighbor capability consumed by the retriever:
// semantic search optionally filtered by story, returning scored candidates.
// Any conforming implementation (exact, approximate, sharded) is
// substitutable.
type Searcher interface {
	// Query embeds text and returns up to topK scored chunk copies in
	// descending similarity order. An empty storyID disables story
	// filtering. The candidate set is selected before story filtering, so
	// fewer than topK results may come back for a filtered query.
	Query(ctx context.Context, text, storyID string, topK int) ([]*document.Evidence, error)
}

// Defaults for index construction.
const (
	defaultBatchSize   = 64
	defaultConcurrency = 4
)

// Index is an exact inner-product index over L2-normalized chunk embeddings,
// equivalent to cosine similarity search.
type Index struct {
	embedder    embedder.Embedder
	batchSize   int
	concurrency int

	mu       sync.RWMutex
	built    bool
	vectors  [][]float64
	chunks   []*document.Chunk
	storyIDs []string
}

// Option represents a functional option for configuring Index.
type Option func(*Index)

// WithEmbedder sets the embedder used for chunks and queries.
func WithEmbedder(e embedder.Embedder) Option {
	return func(idx *Index) {
		idx.embedder = e
	}
}

// WithBatchSize sets how many chunk texts are embedded per API call.
func WithBatchSize(size int) Option {
	return func(idx *Index) {
		if size > 0 {
			idx.batchSize = size
		}
	}
}

// WithConcurrency sets how many embedding batches run in parallel during Build.
func WithConcurrency(n int) Option {
	return func(idx *Index) {
		if n > 0 {
			idx.concurrency = n
		}
	}
}

// New creates a new empty Index with the given options.
func New(opts ...Option) *Index {
	idx := &Index{
		batchSize:   defaultBatchSize,
		concurrency: defaultConcurrency,
	}
	for _, opt := range opts {
		opt(idx)
	}
	return idx
}

// Build embeds all chunk texts and stores the vectors alongside chunk
// metadata and a parallel story-ID list. It may be called exactly once per
// instance and blocks until every chunk is embedded.
func (idx *Index) Build(ctx context.Context, chunks []*document.Chunk) error {
	if idx.embedder == nil {
		return fmt.Errorf("vectorindex: embedder not configured")
	}
	if len(chunks) == 0 {
		return ErrNoChunks
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()
	if idx.built {
		return ErrAlreadyBuilt
	}

	vectors, err := idx.embedAll(ctx, chunks)
	if err != nil {
		return err
	}

	idx.vectors = vectors
	idx.chunks = make([]*document.Chunk, len(chunks))
	idx.storyIDs = make([]string, len(chunks))
	for i, ch := range chunks {
		idx.chunks[i] = ch.Clone()
		idx.storyIDs[i] = ch.StoryID
	}
	idx.built = true

	log.Infof("Indexed %d chunks (dim=%d)", len(chunks), len(vectors[0]))
	return nil
}

// embedAll embeds chunk texts in batches on a worker pool and returns the
// normalized vectors in chunk order.
func (idx *Index) embedAll(ctx context.Context, chunks []*document.Chunk) ([][]float64, error) {
	texts := make([]string, len(chunks))
	for i, ch := range chunks {
		if ch == nil || ch.Content == "" {
			return nil, fmt.Errorf("vectorindex: chunk %d has no content", i)
		}
		texts[i] = ch.Content
	}

	pool, err := ants.NewPool(idx.concurrency)
	if err != nil {
		return nil, fmt.Errorf("vectorindex: failed to create worker pool: %w", err)
	}
	defer pool.Release()

	vectors := make([][]float64, len(texts))

	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error

	for start := 0; start < len(texts); start += idx.batchSize {
		end := min(start+idx.batchSize, len(texts))
		start, end := start, end

		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()

			batch, err := idx.embedder.Embed(ctx, texts[start:end])
			if err == nil && len(batch) != end-start {
				err = fmt.Errorf("vectorindex: embedder returned %d vectors for %d texts",
					len(batch), end-start)
			}
			if err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
				return
			}
			for i, vec := range batch {
				vectors[start+i] = embedder.Normalize(vec)
			}
		})
		if submitErr != nil {
			wg.Done()
			return nil, fmt.Errorf("vectorindex: failed to submit embedding batch: %w", submitErr)
		}
	}
	wg.Wait()

	if firstErr != nil {
		return nil, fmt.Errorf("vectorindex: embedding failed: %w", firstErr)
	}
	for i, vec := range vectors {
		if len(vec) == 0 {
			return nil, fmt.Errorf("vectorindex: missing embedding for chunk %d", i)
		}
	}
	return vectors, nil
}

// Query implements the Searcher interface with an exact scan.
//
// The topK best candidates are selected by similarity before the story
// filter is applied, mirroring how an ANN backend would answer the same
// request. Callers that need a guaranteed final count over-fetch and apply
// their own selection policy.
func (idx *Index) Query(ctx context.Context, text, storyID string, topK int) ([]*document.Evidence, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if !idx.built {
		return nil, ErrNotBuilt
	}
	if topK <= 0 {
		return nil, fmt.Errorf("vectorindex: topK must be positive, got %d", topK)
	}

	queryVec, err := idx.embedder.EmbedQuery(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("vectorindex: failed to embed query: %w", err)
	}
	queryVec = embedder.Normalize(queryVec)

	searchK := min(topK, len(idx.chunks))

	// Rank every position by inner product, which equals cosine similarity
	// over normalized vectors.
	order := make([]int, len(idx.vectors))
	scores := make([]float64, len(idx.vectors))
	for i, vec := range idx.vectors {
		order[i] = i
		scores[i] = dot(queryVec, vec)
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})

	results := make([]*document.Evidence, 0, searchK)
	seen := make(map[int]struct{}, searchK)
	for _, pos := range order[:searchK] {
		if _, dup := seen[pos]; dup {
			continue
		}
		seen[pos] = struct{}{}

		if storyID != "" && idx.storyIDs[pos] != storyID {
			continue
		}
		results = append(results, &document.Evidence{
			Chunk: idx.chunks[pos].Clone(),
			Score: scores[pos],
		})
	}
	return results, nil
}

// Size returns the number of indexed chunks, or 0 before Build.
func (idx *Index) Size() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.chunks)
}

// dot computes the inner product of two vectors. Mismatched dimensions
// score zero rather than panicking.
func dot(a, b []float64) float64 {
	if len(a) != len(b) {
		return 0
	}
	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}
