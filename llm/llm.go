//
// Tencent is pleased to support the open source community by making trpc-storycheck-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-storycheck-go is licensed under the Apache License Version 2.0.
//
//

// Package llm defines the text-generation capability consumed by the claim
// reasoner.
package llm

import "context"

// Generator produces free-form text for a prompt under a fixed generation
// configuration.
//
// The two failure modes are kept distinct so callers can tell them apart:
//
//  1. A transport or API error is returned as a non-nil error; retry policy
//     is the caller's concern.
//  2. "The model produced nothing" is an empty string with a nil error; the
//     reasoner maps it to an unclear verdict rather than an exception.
type Generator interface {
	// Generate returns the model's raw text output for the prompt.
	Generate(ctx context.Context, prompt string) (string, error)
}
