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
	"fmt"

	"github.com/google/uuid"

	"trpc.group/trpc-go/trpc-storycheck-go/log"
	"trpc.group/trpc-go/trpc-storycheck-go/reasoner"
	"trpc.group/trpc-go/trpc-storycheck-go/source"
)

// LabelMetrics holds per-label classification quality.
type LabelMetrics struct {
	Precision float64
	Recall    float64
	F1        float64
	Support   int
}

// EvalReport summarizes an evaluation run over a labeled claim dataset.
type EvalReport struct {
	Total    int
	Correct  int
	Accuracy float64

	// Macro averages are taken over the ground-truth label set, so an
	// unclear prediction counts against both precision and recall.
	MacroPrecision float64
	MacroRecall    float64
	MacroF1        float64

	PerLabel map[string]LabelMetrics

	// Confusion maps gold label to predicted label to count. Predicted
	// labels include unclear even though it never appears as gold.
	Confusion map[string]map[string]int
}

// Evaluate verifies every labeled claim and scores the predictions.
//
// No row is ever dropped: a generator failure on one claim is logged and
// scored as an unclear prediction, so a flaky model call degrades metrics
// instead of aborting the run. Only context cancellation aborts.
func (p *Pipeline) Evaluate(ctx context.Context, claims []*source.Claim) (*EvalReport, error) {
	if len(claims) == 0 {
		return nil, fmt.Errorf("pipeline: no claims to evaluate")
	}

	runID := uuid.NewString()
	log.Infof("Evaluation run %s: %d claim(s)", runID, len(claims))

	report := &EvalReport{
		Total:     len(claims),
		PerLabel:  make(map[string]LabelMetrics),
		Confusion: make(map[string]map[string]int),
	}

	for i, claim := range claims {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		predicted := p.predict(ctx, claim)
		gold := claim.Label

		if report.Confusion[gold] == nil {
			report.Confusion[gold] = make(map[string]int)
		}
		report.Confusion[gold][predicted]++
		if predicted == gold {
			report.Correct++
		}
		log.Debugf("Evaluation run %s: claim %d/%d gold=%s predicted=%s",
			runID, i+1, len(claims), gold, predicted)
	}

	report.Accuracy = float64(report.Correct) / float64(report.Total)
	scoreLabels(report)

	log.Infof("Evaluation run %s: accuracy=%.4f macro_f1=%.4f", runID, report.Accuracy, report.MacroF1)
	return report, nil
}

// predict runs one claim through Verify, mapping any model failure to an
// unclear prediction.
func (p *Pipeline) predict(ctx context.Context, claim *source.Claim) string {
	verdict, _, err := p.Verify(ctx, claim.Backstory, claim.StoryID, claim.Character)
	if err != nil {
		log.Warnf("Verification failed for claim %s, scoring as unclear: %v", claim.ID, err)
		return string(reasoner.LabelUnclear)
	}
	return string(verdict.Label)
}

// scoreLabels fills per-label and macro metrics from the confusion matrix.
// The label set is the gold labels only.
func scoreLabels(report *EvalReport) {
	for gold := range report.Confusion {
		tp := report.Confusion[gold][gold]

		fp := 0
		for other, row := range report.Confusion {
			if other != gold {
				fp += row[gold]
			}
		}
		fn := 0
		for predicted, count := range report.Confusion[gold] {
			if predicted != gold {
				fn += count
			}
		}

		metrics := LabelMetrics{Support: tp + fn}
		if tp+fp > 0 {
			metrics.Precision = float64(tp) / float64(tp+fp)
		}
		if tp+fn > 0 {
			metrics.Recall = float64(tp) / float64(tp+fn)
		}
		if metrics.Precision+metrics.Recall > 0 {
			metrics.F1 = 2 * metrics.Precision * metrics.Recall / (metrics.Precision + metrics.Recall)
		}
		report.PerLabel[gold] = metrics

		report.MacroPrecision += metrics.Precision
		report.MacroRecall += metrics.Recall
		report.MacroF1 += metrics.F1
	}

	n := float64(len(report.Confusion))
	if n > 0 {
		report.MacroPrecision /= n
		report.MacroRecall /= n
		report.MacroF1 /= n
	}
}
