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
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"trpc.group/trpc-go/trpc-storycheck-go/document"
	"trpc.group/trpc-go/trpc-storycheck-go/log"
	"trpc.group/trpc-go/trpc-storycheck-go/reasoner"
	"trpc.group/trpc-go/trpc-storycheck-go/source"
)

// Rationale formatting limits for test submissions.
const (
	maxRationaleExcerpts = 5
	maxExcerptChars      = 600
)

// Fixed rationale sentences. The fallback explanation replaces the canned
// reasoner explanations, which are written for operators rather than graders.
const (
	noExcerptsSentence = "No relevant excerpts were retrieved."

	fallbackExplanation = "The retrieved evidence does not provide sufficient information " +
		"to clearly support or contradict the backstory claim."

	contradictConclusion = "The backstory contradicts the narrative evidence."

	plausibleConclusion = "The backstory does not directly contradict the narrative " +
		"and may be considered plausible within the story world."
)

// RunTest verifies every claim of an unlabeled test set and writes a CSV
// submission with columns id, prediction, evidence_rationale.
//
// The prediction is binary: 0 when the verdict is contradict, 1 when the
// claim survived with at least one evidence excerpt, and 0 when no evidence
// was retrieved at all. As in Evaluate, a model failure never drops a row; it
// is treated as an unclear verdict over the evidence that was retrieved.
func (p *Pipeline) RunTest(ctx context.Context, claims []*source.Claim, w io.Writer) error {
	if len(claims) == 0 {
		return fmt.Errorf("pipeline: no claims to run")
	}

	runID := uuid.NewString()
	log.Infof("Test run %s: %d claim(s)", runID, len(claims))

	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"id", "prediction", "evidence_rationale"}); err != nil {
		return fmt.Errorf("pipeline: failed to write submission header: %w", err)
	}

	for i, claim := range claims {
		if err := ctx.Err(); err != nil {
			return err
		}

		verdict, evidence, err := p.Verify(ctx, claim.Backstory, claim.StoryID, claim.Character)
		if err != nil {
			log.Warnf("Verification failed for claim %s, treating as unclear: %v", claim.ID, err)
			verdict = &reasoner.Verdict{
				Label:       reasoner.LabelUnclear,
				Explanation: fallbackExplanation,
			}
		}

		prediction := binaryPrediction(verdict.Label, evidence)
		record := []string{claim.ID, strconv.Itoa(prediction), buildRationale(claim, verdict, evidence)}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("pipeline: failed to write submission row: %w", err)
		}
		log.Debugf("Test run %s: claim %d/%d id=%s prediction=%d",
			runID, i+1, len(claims), claim.ID, prediction)
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("pipeline: failed to flush submission: %w", err)
	}
	log.Infof("Test run %s: wrote %d row(s)", runID, len(claims))
	return nil
}

// binaryPrediction collapses the three-way verdict into the submission's
// binary scheme. A contradiction is always 0; anything else is 1 only when
// evidence backs it, since a claim with no supporting passages cannot be
// marked consistent with the text.
func binaryPrediction(label reasoner.Label, evidence []*document.Evidence) int {
	if label == reasoner.LabelContradict {
		return 0
	}
	if len(evidence) == 0 {
		return 0
	}
	return 1
}

// buildRationale assembles the human-readable justification for one row:
// the claim, up to maxRationaleExcerpts evidence excerpts, the verdict
// explanation, and a one-line conclusion keyed off the label.
func buildRationale(claim *source.Claim, verdict *reasoner.Verdict, evidence []*document.Evidence) string {
	var parts []string
	parts = append(parts, "Claim: "+claim.Backstory)

	if len(evidence) == 0 {
		parts = append(parts, noExcerptsSentence)
	} else {
		for i, ev := range evidence {
			if i == maxRationaleExcerpts {
				break
			}
			parts = append(parts, fmt.Sprintf("[Excerpt %d] %s", i+1, quoteExcerpt(ev.Chunk.Content)))
		}
	}

	parts = append(parts, rationaleExplanation(verdict))

	if verdict.Label == reasoner.LabelContradict {
		parts = append(parts, contradictConclusion)
	} else {
		parts = append(parts, plausibleConclusion)
	}

	return strings.Join(parts, "\n")
}

// rationaleExplanation returns the verdict explanation, substituting the
// grader-facing fallback for canned operator explanations.
func rationaleExplanation(verdict *reasoner.Verdict) string {
	switch verdict.Explanation {
	case "", reasoner.ExplanationEmptyClaim, reasoner.ExplanationNoEvidence,
		reasoner.ExplanationParseFailure, reasoner.ExplanationMissing:
		return fallbackExplanation
	}
	return verdict.Explanation
}

// quoteExcerpt quotes an excerpt, truncating long passages with an ellipsis.
func quoteExcerpt(text string) string {
	runes := []rune(text)
	if len(runes) > maxExcerptChars {
		return fmt.Sprintf("%q...", string(runes[:maxExcerptChars]))
	}
	return fmt.Sprintf("%q", text)
}
