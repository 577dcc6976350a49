//
// Tencent is pleased to support the open source community by making trpc-storycheck-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-storycheck-go is licensed under the Apache License Version 2.0.
//
//

// Package reasoner judges a backstory claim against retrieved evidence and
// turns the model's free-text answer into a structured verdict.
package reasoner

import (
	"context"
	"fmt"
	"strings"

	"trpc.group/trpc-go/trpc-storycheck-go/document"
	"trpc.group/trpc-go/trpc-storycheck-go/llm"
	"trpc.group/trpc-go/trpc-storycheck-go/log"
)

// Label is the three-way outcome of claim verification.
type Label string

// Verification labels.
const (
	LabelConsistent Label = "consistent"
	LabelContradict Label = "contradict"
	LabelUnclear    Label = "unclear"
)

// Fixed explanations for the degenerate verification outcomes. Batch
// consumers key off these strings, so they are part of the contract.
const (
	ExplanationEmptyClaim   = "Empty claim provided."
	ExplanationNoEvidence   = "No relevant evidence was retrieved."
	ExplanationParseFailure = "Model output could not be parsed reliably."
	ExplanationMissing      = "No explanation provided."
)

// Verdict is the structured result of verifying one claim.
type Verdict struct {
	// Label is the three-way consistency judgment.
	Label Label `json:"label"`

	// Explanation is the model's (or a fixed fallback) justification.
	Explanation string `json:"explanation"`
}

// defaultMaxEvidenceChars bounds each evidence excerpt in the prompt to keep
// the total prompt size predictable.
const defaultMaxEvidenceChars = 800

// Reasoner verifies claims with a text-generation model. It holds no state
// across calls.
type Reasoner struct {
	generator        llm.Generator
	maxEvidenceChars int
}

// Option represents a functional option for configuring Reasoner.
type Option func(*Reasoner)

// WithGenerator sets the judgment model.
func WithGenerator(g llm.Generator) Option {
	return func(r *Reasoner) {
		r.generator = g
	}
}

// WithMaxEvidenceChars sets the per-excerpt character budget in the prompt.
func WithMaxEvidenceChars(n int) Option {
	return func(r *Reasoner) {
		if n > 0 {
			r.maxEvidenceChars = n
		}
	}
}

// New creates a new Reasoner with the given options.
func New(opts ...Option) *Reasoner {
	r := &Reasoner{
		maxEvidenceChars: defaultMaxEvidenceChars,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Verify judges the claim against the evidence.
//
// Degenerate inputs short-circuit to unclear verdicts without invoking the
// model. A transport error from the generator is returned as an error;
// unparseable or empty model output is normalized to an unclear verdict so a
// batch run never crashes on one bad response.
func (r *Reasoner) Verify(ctx context.Context, claim string, evidence []*document.Evidence) (*Verdict, error) {
	if strings.TrimSpace(claim) == "" {
		return &Verdict{Label: LabelUnclear, Explanation: ExplanationEmptyClaim}, nil
	}
	if len(evidence) == 0 {
		return &Verdict{Label: LabelUnclear, Explanation: ExplanationNoEvidence}, nil
	}
	if r.generator == nil {
		return nil, fmt.Errorf("reasoner: generator not configured")
	}

	prompt := buildPrompt(claim, formatEvidence(evidence, r.maxEvidenceChars))

	output, err := r.generator.Generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("reasoner: judgment call failed: %w", err)
	}

	verdict := parseOutput(output)
	if verdict.Explanation == ExplanationParseFailure {
		log.Warnf("Unparseable judgment output for claim %q", truncate(claim, 80))
	}
	return verdict, nil
}

// formatEvidence renders evidence texts as numbered blocks, each truncated
// to the character budget.
func formatEvidence(evidence []*document.Evidence, maxChars int) string {
	blocks := make([]string, 0, len(evidence))
	for i, ev := range evidence {
		if ev == nil || ev.Chunk == nil {
			continue
		}
		text := truncate(strings.TrimSpace(ev.Chunk.Content), maxChars)
		blocks = append(blocks, fmt.Sprintf("[Evidence %d]\n%s", i+1, text))
	}
	return strings.Join(blocks, "\n\n")
}

// truncate cuts s to at most n runes.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
