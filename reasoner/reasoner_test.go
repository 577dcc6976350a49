//
// Tencent is pleased to support the open source community by making trpc-storycheck-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-storycheck-go is licensed under the Apache License Version 2.0.
//
//

package reasoner

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"trpc.group/trpc-go/trpc-storycheck-go/document"
	"trpc.group/trpc-go/trpc-storycheck-go/llm"
)

// fakeGenerator returns a canned response or error and records prompts.
type fakeGenerator struct {
	response string
	err      error
	prompts  []string
}

var _ llm.Generator = (*fakeGenerator)(nil)

func (f *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.response, f.err
}

func someEvidence(texts ...string) []*document.Evidence {
	out := make([]*document.Evidence, len(texts))
	for i, text := range texts {
		out[i] = &document.Evidence{
			Chunk: &document.Chunk{
				ID:      document.ChunkID("story", i),
				StoryID: "story",
				Content: text,
			},
			Score: 0.5,
		}
	}
	return out
}

func TestVerifyEmptyClaim(t *testing.T) {
	gen := &fakeGenerator{}
	r := New(WithGenerator(gen))

	verdict, err := r.Verify(context.Background(), "   ", someEvidence("whatever"))
	require.NoError(t, err)
	require.Equal(t, LabelUnclear, verdict.Label)
	require.Equal(t, ExplanationEmptyClaim, verdict.Explanation)
	// The model is not invoked.
	require.Empty(t, gen.prompts)
}

func TestVerifyNoEvidence(t *testing.T) {
	gen := &fakeGenerator{}
	r := New(WithGenerator(gen))

	verdict, err := r.Verify(context.Background(), "X did Y", nil)
	require.NoError(t, err)
	require.Equal(t, LabelUnclear, verdict.Label)
	require.Equal(t, ExplanationNoEvidence, verdict.Explanation)
	require.Empty(t, gen.prompts)
}

func TestVerifyParsesLabelAndExplanation(t *testing.T) {
	gen := &fakeGenerator{
		response: "The evidence shows Z.\n\nFinal Label: CONTRADICT\nFinal Explanation: because Z.",
	}
	r := New(WithGenerator(gen))

	verdict, err := r.Verify(context.Background(), "X did Y", someEvidence("passage one"))
	require.NoError(t, err)
	require.Equal(t, LabelContradict, verdict.Label)
	require.Equal(t, "because Z.", verdict.Explanation)
}

func TestVerifyPromptContainsClaimAndEvidence(t *testing.T) {
	gen := &fakeGenerator{response: "Final Label: CONSISTENT\nFinal Explanation: fine."}
	r := New(WithGenerator(gen))

	_, err := r.Verify(context.Background(), "Ahab lost his leg to the whale",
		someEvidence("first passage", "second passage"))
	require.NoError(t, err)
	require.Len(t, gen.prompts, 1)

	prompt := gen.prompts[0]
	require.Contains(t, prompt, "Ahab lost his leg to the whale")
	require.Contains(t, prompt, "[Evidence 1]\nfirst passage")
	require.Contains(t, prompt, "[Evidence 2]\nsecond passage")
	require.Contains(t, prompt, "Final Label:")
}

func TestVerifyTruncatesEvidence(t *testing.T) {
	long := strings.Repeat("a", 2000)
	gen := &fakeGenerator{response: "Final Label: CONSISTENT\nFinal Explanation: fine."}
	r := New(WithGenerator(gen), WithMaxEvidenceChars(100))

	_, err := r.Verify(context.Background(), "a claim", someEvidence(long))
	require.NoError(t, err)

	prompt := gen.prompts[0]
	require.Contains(t, prompt, strings.Repeat("a", 100))
	require.NotContains(t, prompt, strings.Repeat("a", 101))
}

func TestVerifyGeneratorError(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("network down")}
	r := New(WithGenerator(gen))

	_, err := r.Verify(context.Background(), "a claim", someEvidence("passage"))
	require.Error(t, err)
}

func TestVerifyEmptyModelOutput(t *testing.T) {
	gen := &fakeGenerator{response: ""}
	r := New(WithGenerator(gen))

	verdict, err := r.Verify(context.Background(), "a claim", someEvidence("passage"))
	require.NoError(t, err)
	require.Equal(t, LabelUnclear, verdict.Label)
	require.Equal(t, ExplanationParseFailure, verdict.Explanation)
}

func TestParseOutputTotality(t *testing.T) {
	tests := []struct {
		name            string
		input           string
		wantLabel       Label
		wantExplanation string
	}{
		{
			name:            "well formed",
			input:           "blah blah Final Label: CONTRADICT\nFinal Explanation: because Z.",
			wantLabel:       LabelContradict,
			wantExplanation: "because Z.",
		},
		{
			name:            "no markers",
			input:           "I cannot determine.",
			wantLabel:       LabelUnclear,
			wantExplanation: ExplanationParseFailure,
		},
		{
			name:            "empty string",
			input:           "",
			wantLabel:       LabelUnclear,
			wantExplanation: ExplanationParseFailure,
		},
		{
			name:            "label only",
			input:           "Final Label: CONSISTENT",
			wantLabel:       LabelConsistent,
			wantExplanation: ExplanationMissing,
		},
		{
			name:            "markdown emphasis around markers",
			input:           "**Final Label:** UNCLEAR\n**Final Explanation:** too vague.",
			wantLabel:       LabelUnclear,
			wantExplanation: "too vague.",
		},
		{
			name:            "case insensitive label value",
			input:           "final label: consistent\nfinal explanation: aligns well.",
			wantLabel:       LabelConsistent,
			wantExplanation: "aligns well.",
		},
		{
			name:            "explanation spans lines",
			input:           "Final Label: CONSISTENT\nFinal Explanation: first line.\nsecond line.",
			wantLabel:       LabelConsistent,
			wantExplanation: "first line.\nsecond line.",
		},
		{
			name:            "garbled unicode",
			input:           "\xff\xfe Final Label: what???",
			wantLabel:       LabelUnclear,
			wantExplanation: ExplanationParseFailure,
		},
		{
			name:            "explanation marker without text",
			input:           "Final Label: CONTRADICT\nFinal Explanation:   ",
			wantLabel:       LabelContradict,
			wantExplanation: ExplanationMissing,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var verdict *Verdict
			require.NotPanics(t, func() {
				verdict = parseOutput(tt.input)
			})
			require.Equal(t, tt.wantLabel, verdict.Label)
			require.Equal(t, tt.wantExplanation, verdict.Explanation)
		})
	}
}
