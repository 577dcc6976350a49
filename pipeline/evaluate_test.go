//
// Tencent is pleased to support the open source community by making trpc-storycheck-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-storycheck-go is licensed under the Apache License Version 2.0.
//
//

package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"trpc.group/trpc-go/trpc-storycheck-go/document"
	"trpc.group/trpc-go/trpc-storycheck-go/reasoner"
	"trpc.group/trpc-go/trpc-storycheck-go/source"
)

func evalPipeline(rsn *fakeReasoner, claims []*source.Claim) *Pipeline {
	evidence := make(map[string][]*document.Evidence, len(claims))
	for _, claim := range claims {
		evidence[claim.Backstory] = evidenceFor(claim.StoryID, "a relevant passage")
	}
	return New(
		WithRetriever(&fakeRetriever{evidence: evidence}),
		WithReasoner(rsn),
	)
}

func TestEvaluateMetrics(t *testing.T) {
	claims := []*source.Claim{
		{ID: "1", StoryID: "s", Backstory: "c1", Label: source.LabelConsistent},
		{ID: "2", StoryID: "s", Backstory: "c2", Label: source.LabelConsistent},
		{ID: "3", StoryID: "s", Backstory: "c3", Label: source.LabelContradict},
		{ID: "4", StoryID: "s", Backstory: "c4", Label: source.LabelContradict},
	}
	rsn := &fakeReasoner{
		verdicts: map[string]*reasoner.Verdict{
			"c1": {Label: reasoner.LabelConsistent, Explanation: "ok"},
			"c2": {Label: reasoner.LabelContradict, Explanation: "no"},
			"c3": {Label: reasoner.LabelContradict, Explanation: "no"},
		},
		// c4 fails at the model and must be scored as unclear, not dropped.
		errs: map[string]error{"c4": errors.New("model down")},
	}

	report, err := evalPipeline(rsn, claims).Evaluate(context.Background(), claims)
	require.NoError(t, err)

	require.Equal(t, 4, report.Total)
	require.Equal(t, 2, report.Correct)
	require.InDelta(t, 0.5, report.Accuracy, 1e-9)

	require.Equal(t, 1, report.Confusion[source.LabelConsistent][string(reasoner.LabelConsistent)])
	require.Equal(t, 1, report.Confusion[source.LabelConsistent][string(reasoner.LabelContradict)])
	require.Equal(t, 1, report.Confusion[source.LabelContradict][string(reasoner.LabelContradict)])
	require.Equal(t, 1, report.Confusion[source.LabelContradict][string(reasoner.LabelUnclear)])

	consistent := report.PerLabel[source.LabelConsistent]
	require.InDelta(t, 1.0, consistent.Precision, 1e-9)
	require.InDelta(t, 0.5, consistent.Recall, 1e-9)
	require.InDelta(t, 2.0/3.0, consistent.F1, 1e-9)
	require.Equal(t, 2, consistent.Support)

	contradict := report.PerLabel[source.LabelContradict]
	require.InDelta(t, 0.5, contradict.Precision, 1e-9)
	require.InDelta(t, 0.5, contradict.Recall, 1e-9)
	require.InDelta(t, 0.5, contradict.F1, 1e-9)

	require.InDelta(t, 0.75, report.MacroPrecision, 1e-9)
	require.InDelta(t, 0.5, report.MacroRecall, 1e-9)
	require.InDelta(t, (2.0/3.0+0.5)/2, report.MacroF1, 1e-9)
}

func TestEvaluatePerfectRun(t *testing.T) {
	claims := []*source.Claim{
		{ID: "1", StoryID: "s", Backstory: "c1", Label: source.LabelConsistent},
		{ID: "2", StoryID: "s", Backstory: "c2", Label: source.LabelContradict},
	}
	rsn := &fakeReasoner{verdicts: map[string]*reasoner.Verdict{
		"c1": {Label: reasoner.LabelConsistent, Explanation: "ok"},
		"c2": {Label: reasoner.LabelContradict, Explanation: "no"},
	}}

	report, err := evalPipeline(rsn, claims).Evaluate(context.Background(), claims)
	require.NoError(t, err)
	require.InDelta(t, 1.0, report.Accuracy, 1e-9)
	require.InDelta(t, 1.0, report.MacroPrecision, 1e-9)
	require.InDelta(t, 1.0, report.MacroRecall, 1e-9)
	require.InDelta(t, 1.0, report.MacroF1, 1e-9)
}

func TestEvaluateNoClaims(t *testing.T) {
	p := New(WithRetriever(&fakeRetriever{}), WithReasoner(&fakeReasoner{}))
	_, err := p.Evaluate(context.Background(), nil)
	require.Error(t, err)
}

func TestEvaluateCanceledContext(t *testing.T) {
	claims := []*source.Claim{
		{ID: "1", StoryID: "s", Backstory: "c1", Label: source.LabelConsistent},
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := evalPipeline(&fakeReasoner{}, claims).Evaluate(ctx, claims)
	require.ErrorIs(t, err, context.Canceled)
}
