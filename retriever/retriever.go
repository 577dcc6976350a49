//
// Tencent is pleased to support the open source community by making trpc-storycheck-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-storycheck-go is licensed under the Apache License Version 2.0.
//
//

// Package retriever selects evidence chunks for a claim. It layers retrieval
// policy (multi-query, fallback, dedup, thresholding) on top of the raw
// similarity search primitive, so the two can evolve independently.
package retriever

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"trpc.group/trpc-go/trpc-storycheck-go/document"
	"trpc.group/trpc-go/trpc-storycheck-go/log"
	"trpc.group/trpc-go/trpc-storycheck-go/normalize"
	"trpc.group/trpc-go/trpc-storycheck-go/vectorindex"
)

// Retrieval policy defaults. The similarity floor is a low-recall-noise
// cutoff, not a precision threshold: it only discards near-orthogonal
// matches. The over-fetch factor leaves headroom for story filtering and
// deduplication to thin the candidate set.
const (
	defaultTopK            = 8
	defaultMinSimilarity   = 0.03
	defaultOverFetchFactor = 3
)

// Retriever issues dual queries per claim against a vector index and merges
// the results into a ranked evidence list.
type Retriever struct {
	index           vectorindex.Searcher
	topK            int
	minSimilarity   float64
	overFetchFactor int
}

// Option represents a functional option for configuring Retriever.
type Option func(*Retriever)

// WithIndex sets the search index to retrieve from.
func WithIndex(index vectorindex.Searcher) Option {
	return func(r *Retriever) {
		r.index = index
	}
}

// WithTopK sets the maximum number of evidence items returned.
func WithTopK(k int) Option {
	return func(r *Retriever) {
		if k > 0 {
			r.topK = k
		}
	}
}

// WithMinSimilarity sets the similarity floor below which candidates are dropped.
func WithMinSimilarity(minSim float64) Option {
	return func(r *Retriever) {
		r.minSimilarity = minSim
	}
}

// WithOverFetchFactor sets the candidate over-fetch multiplier per query.
func WithOverFetchFactor(factor int) Option {
	return func(r *Retriever) {
		if factor > 0 {
			r.overFetchFactor = factor
		}
	}
}

// New creates a new Retriever with the given options.
func New(opts ...Option) *Retriever {
	r := &Retriever{
		topK:            defaultTopK,
		minSimilarity:   defaultMinSimilarity,
		overFetchFactor: defaultOverFetchFactor,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Retrieve returns up to topK evidence items for the claim, highest score
// first.
//
// Two queries are issued when a character name is given: the raw claim and
// the character-prefixed claim. The second anchors retrieval on passages
// about the character even when lexical overlap with the claim alone is
// weak. Both run first with a story filter; only if that strict stage yields
// zero raw candidates does an unfiltered fallback stage run, which guards
// against story labeling mismatches at the cost of possibly mixing stories.
func (r *Retriever) Retrieve(ctx context.Context, claim, storyID, character string) ([]*document.Evidence, error) {
	if r.index == nil {
		return nil, fmt.Errorf("retriever: index not configured")
	}
	if strings.TrimSpace(claim) == "" {
		return nil, nil
	}

	storyID = normalize.StoryID(storyID)

	queries := []string{claim}
	if strings.TrimSpace(character) != "" {
		queries = append(queries, character+" "+claim)
	}

	fetchK := r.topK * r.overFetchFactor

	// Strict stage: story-filtered.
	candidates, err := r.runQueries(ctx, queries, storyID, fetchK)
	if err != nil {
		return nil, err
	}

	// Fallback stage: unfiltered, only when the strict stage found nothing.
	if len(candidates) == 0 {
		log.Warnf("No filtered evidence for story %s, falling back to unfiltered retrieval", storyID)
		candidates, err = r.runQueries(ctx, queries, "", fetchK)
		if err != nil {
			return nil, err
		}
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	merged := mergeByChunkID(candidates)

	final := merged[:0]
	for _, ev := range merged {
		if ev.Score >= r.minSimilarity {
			final = append(final, ev)
		}
	}

	sort.SliceStable(final, func(i, j int) bool {
		return final[i].Score > final[j].Score
	})
	if len(final) > r.topK {
		final = final[:r.topK]
	}
	return final, nil
}

// runQueries issues every query against the index and concatenates raw results.
func (r *Retriever) runQueries(ctx context.Context, queries []string, storyID string, fetchK int) ([]*document.Evidence, error) {
	var all []*document.Evidence
	for _, q := range queries {
		results, err := r.index.Query(ctx, q, storyID, fetchK)
		if err != nil {
			return nil, fmt.Errorf("retriever: query failed: %w", err)
		}
		all = append(all, results...)
	}
	return all, nil
}

// mergeByChunkID deduplicates candidates surfaced by multiple queries,
// keeping the highest-scoring copy per chunk ID.
func mergeByChunkID(candidates []*document.Evidence) []*document.Evidence {
	best := make(map[string]*document.Evidence, len(candidates))
	order := make([]string, 0, len(candidates))

	for _, ev := range candidates {
		if ev == nil || ev.Chunk == nil {
			continue
		}
		id := ev.Chunk.ID
		if current, ok := best[id]; ok {
			if ev.Score > current.Score {
				best[id] = ev
			}
			continue
		}
		best[id] = ev
		order = append(order, id)
	}

	merged := make([]*document.Evidence, 0, len(best))
	for _, id := range order {
		merged = append(merged, best[id])
	}
	return merged
}
