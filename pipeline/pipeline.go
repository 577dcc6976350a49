//
// Tencent is pleased to support the open source community by making trpc-storycheck-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-storycheck-go is licensed under the Apache License Version 2.0.
//
//

// Package pipeline wires chunking, indexing, retrieval, and reasoning into a
// single consistency-checking flow: load novels once, then verify backstory
// claims against them.
package pipeline

import (
	"context"
	"fmt"

	"trpc.group/trpc-go/trpc-storycheck-go/chunking"
	"trpc.group/trpc-go/trpc-storycheck-go/document"
	"trpc.group/trpc-go/trpc-storycheck-go/log"
	"trpc.group/trpc-go/trpc-storycheck-go/reasoner"
	"trpc.group/trpc-go/trpc-storycheck-go/retriever"
	"trpc.group/trpc-go/trpc-storycheck-go/vectorindex"
)

// EvidenceRetriever selects evidence chunks for a claim.
type EvidenceRetriever interface {
	Retrieve(ctx context.Context, claim, storyID, character string) ([]*document.Evidence, error)
}

// ClaimVerifier judges a claim against retrieved evidence.
type ClaimVerifier interface {
	Verify(ctx context.Context, claim string, evidence []*document.Evidence) (*reasoner.Verdict, error)
}

// Pipeline owns the full claim verification flow.
type Pipeline struct {
	chunker   *chunking.Chunker
	index     *vectorindex.Index
	retriever EvidenceRetriever
	reasoner  ClaimVerifier
}

// Option represents a functional option for configuring Pipeline.
type Option func(*Pipeline)

// WithChunker sets the document chunker.
func WithChunker(c *chunking.Chunker) Option {
	return func(p *Pipeline) {
		p.chunker = c
	}
}

// WithIndex sets the vector index built by Load.
func WithIndex(index *vectorindex.Index) Option {
	return func(p *Pipeline) {
		p.index = index
	}
}

// WithRetriever overrides the evidence retriever. When unset, a default
// retriever over the configured index is used.
func WithRetriever(r EvidenceRetriever) Option {
	return func(p *Pipeline) {
		p.retriever = r
	}
}

// WithReasoner sets the claim verifier.
func WithReasoner(r ClaimVerifier) Option {
	return func(p *Pipeline) {
		p.reasoner = r
	}
}

// New creates a new Pipeline with the given options.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		chunker: chunking.New(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.retriever == nil && p.index != nil {
		p.retriever = retriever.New(retriever.WithIndex(p.index))
	}
	return p
}

// Load chunks the given novels and builds the vector index. It may be called
// once per pipeline; the index rejects a second build.
func (p *Pipeline) Load(ctx context.Context, docs []*document.Document) error {
	if p.index == nil {
		return fmt.Errorf("pipeline: index not configured")
	}

	chunks, err := p.chunker.ChunkAll(docs)
	if err != nil {
		return fmt.Errorf("pipeline: chunking failed: %w", err)
	}
	if err := p.index.Build(ctx, chunks); err != nil {
		return fmt.Errorf("pipeline: index build failed: %w", err)
	}
	log.Infof("Pipeline loaded %d document(s) into %d chunk(s)", len(docs), len(chunks))
	return nil
}

// Verify retrieves evidence for one claim and judges it. The returned
// evidence is the exact list the verdict was based on, highest score first.
func (p *Pipeline) Verify(ctx context.Context, claim, storyID, character string) (*reasoner.Verdict, []*document.Evidence, error) {
	if p.retriever == nil {
		return nil, nil, fmt.Errorf("pipeline: retriever not configured")
	}
	if p.reasoner == nil {
		return nil, nil, fmt.Errorf("pipeline: reasoner not configured")
	}

	evidence, err := p.retriever.Retrieve(ctx, claim, storyID, character)
	if err != nil {
		return nil, nil, err
	}

	verdict, err := p.reasoner.Verify(ctx, claim, evidence)
	if err != nil {
		return nil, evidence, err
	}
	return verdict, evidence, nil
}
