//
// Tencent is pleased to support the open source community by making trpc-storycheck-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-storycheck-go is licensed under the Apache License Version 2.0.
//
//

// Package embedder provides interfaces and helpers for text embedding.
package embedder

import (
	"context"
	"math"
)

// Embedder turns text into fixed-dimension vectors in a shared semantic
// space. Implementations must be deterministic for a fixed model
// configuration: the same text always maps to the same vector.
type Embedder interface {
	// Embed generates one embedding per input text, in input order.
	// Returned vectors are not guaranteed to be normalized; callers that
	// need unit vectors apply Normalize.
	Embed(ctx context.Context, texts []string) ([][]float64, error)

	// EmbedQuery generates an embedding for a single query string using
	// the same model configuration as Embed.
	EmbedQuery(ctx context.Context, text string) ([]float64, error)

	// Dimensions returns the dimensionality of produced vectors,
	// or 0 when unknown.
	Dimensions() int
}

// Normalize scales vec to unit L2 norm in place and returns it. A zero
// vector is returned unchanged.
func Normalize(vec []float64) []float64 {
	var sum float64
	for _, v := range vec {
		sum += v * v
	}
	if sum == 0 {
		return vec
	}
	norm := math.Sqrt(sum)
	for i := range vec {
		vec[i] /= norm
	}
	return vec
}
