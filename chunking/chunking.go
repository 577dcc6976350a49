//
// Tencent is pleased to support the open source community by making trpc-storycheck-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-storycheck-go is licensed under the Apache License Version 2.0.
//
//

// Package chunking splits novels into overlapping fixed-size chunks with
// positional metadata. Chunking is deterministic: the same text and
// parameters always produce the same chunk sequence and chunk IDs.
package chunking

import (
	"errors"
	"fmt"
	"strings"

	"trpc.group/trpc-go/trpc-storycheck-go/document"
)

// Default chunking parameters, sized for novel-length prose.
const (
	defaultChunkSize = 3500
	defaultOverlap   = 700
)

// ErrInvalidOverlap is returned when overlap >= chunk size. Such a
// configuration makes no forward progress and is rejected outright rather
// than silently adjusted.
var ErrInvalidOverlap = errors.New("chunking: overlap must be smaller than chunk size")

// Chunker splits text into fixed-size overlapping windows. Sizes and offsets
// are measured in runes so the same text yields the same chunks regardless
// of its UTF-8 byte layout.
type Chunker struct {
	chunkSize int
	overlap   int
}

// Option represents a functional option for configuring Chunker.
type Option func(*Chunker)

// WithChunkSize sets the maximum size of each chunk in characters.
func WithChunkSize(size int) Option {
	return func(c *Chunker) {
		c.chunkSize = size
	}
}

// WithOverlap sets the number of characters shared by consecutive chunks.
func WithOverlap(overlap int) Option {
	return func(c *Chunker) {
		c.overlap = overlap
	}
}

// New creates a new Chunker with the given options.
func New(opts ...Option) *Chunker {
	c := &Chunker{
		chunkSize: defaultChunkSize,
		overlap:   defaultOverlap,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Chunk splits text into overlapping windows tagged with storyID.
//
// The window advances by chunkSize-overlap characters per step; the final
// window is clamped to the end of the text and may be shorter. Windows whose
// trimmed content is empty are skipped, and the sequence number used for
// chunk IDs only advances for emitted chunks, so IDs stay densely numbered.
func (c *Chunker) Chunk(storyID, text string) ([]*document.Chunk, error) {
	if c.chunkSize <= 0 {
		return nil, fmt.Errorf("chunking: chunk size must be positive, got %d", c.chunkSize)
	}
	if c.overlap < 0 {
		return nil, fmt.Errorf("chunking: overlap must not be negative, got %d", c.overlap)
	}
	if c.overlap >= c.chunkSize {
		return nil, ErrInvalidOverlap
	}

	runes := []rune(text)
	textLength := len(runes)
	step := c.chunkSize - c.overlap

	var chunks []*document.Chunk
	start := 0
	index := 0

	for start < textLength {
		end := min(start+c.chunkSize, textLength)
		content := strings.TrimSpace(string(runes[start:end]))

		// Skip whitespace-only windows without consuming a sequence number.
		if content == "" {
			start += step
			continue
		}

		chunks = append(chunks, &document.Chunk{
			ID:        document.ChunkID(storyID, index),
			StoryID:   storyID,
			Content:   content,
			StartChar: start,
			EndChar:   end,
			Position:  float64(start) / float64(textLength),
		})

		start += step
		index++
	}

	return chunks, nil
}

// ChunkAll chunks every document in order and concatenates the results.
// The caller controls the slice order, which makes indexing reproducible.
func (c *Chunker) ChunkAll(docs []*document.Document) ([]*document.Chunk, error) {
	var all []*document.Chunk
	for _, doc := range docs {
		if doc == nil {
			continue
		}
		chunks, err := c.Chunk(doc.StoryID, doc.Content)
		if err != nil {
			return nil, fmt.Errorf("chunking story %s: %w", doc.StoryID, err)
		}
		all = append(all, chunks...)
	}
	return all, nil
}
