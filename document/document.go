//
// Tencent is pleased to support the open source community by making trpc-storycheck-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-storycheck-go is licensed under the Apache License Version 2.0.
//
//

// Package document defines the core value types of the consistency pipeline:
// whole novels, indexable chunks, and scored retrieval evidence.
package document

import (
	"fmt"
	"strings"
)

// Document represents one source novel, keyed by a normalized story ID.
// It is immutable after load.
type Document struct {
	// StoryID is the normalized identifier of the novel
	// (lowercase, spaces replaced by underscores).
	StoryID string `json:"story_id"`

	// Content is the full cleaned text of the novel.
	Content string `json:"content"`
}

// IsEmpty reports whether the document has no usable content.
func (d *Document) IsEmpty() bool {
	return d == nil || strings.TrimSpace(d.Content) == ""
}

// Chunk is a fixed-size overlapping slice of a novel, the unit of indexing
// and retrieval. Chunks are produced deterministically; the same document and
// chunking parameters always yield the same chunk sequence.
type Chunk struct {
	// ID is the deterministic chunk identifier: "{story_id}_{%05d}".
	ID string `json:"chunk_id"`

	// StoryID identifies the owning novel.
	StoryID string `json:"story_id"`

	// Content is the trimmed chunk text. Never empty for an emitted chunk.
	Content string `json:"text"`

	// StartChar and EndChar are the window boundaries in the source text,
	// with StartChar < EndChar <= len(source).
	StartChar int `json:"start_char"`
	EndChar   int `json:"end_char"`

	// Position is the relative offset of the window start in [0, 1).
	Position float64 `json:"position"`
}

// ChunkID builds the deterministic chunk identifier for a story and a
// zero-based sequence index.
func ChunkID(storyID string, index int) string {
	return fmt.Sprintf("%s_%05d", storyID, index)
}

// Clone returns a copy of the chunk.
func (c *Chunk) Clone() *Chunk {
	if c == nil {
		return nil
	}
	clone := *c
	return &clone
}

// Evidence is a retrieval-time copy of a chunk augmented with its similarity
// score. Evidence values live for the duration of one retrieval call; they
// are never persisted in the index.
type Evidence struct {
	// Chunk is the retrieved chunk copy.
	Chunk *Chunk `json:"chunk"`

	// Score is the cosine similarity between the query and the chunk,
	// in [-1, 1], higher is more similar.
	Score float64 `json:"score"`
}

// Clone returns a deep copy of the evidence item.
func (e *Evidence) Clone() *Evidence {
	if e == nil {
		return nil
	}
	return &Evidence{Chunk: e.Chunk.Clone(), Score: e.Score}
}
