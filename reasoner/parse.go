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
	"regexp"
	"strings"
)

// Model output markers. The matching rules live here, isolated from the
// rest of the reasoner, so a stricter structured-output contract can replace
// them without touching callers.
var (
	// markupPattern strips emphasis punctuation the model may wrap around
	// the mandatory lines.
	markupPattern = regexp.MustCompile("[*_`]")

	// labelPattern matches the mandatory label line.
	labelPattern = regexp.MustCompile(`(?i)Final Label\s*:\s*(CONSISTENT|CONTRADICT|UNCLEAR)`)

	// explanationPattern captures everything after the explanation marker.
	explanationPattern = regexp.MustCompile(`(?is)Final Explanation\s*:\s*(.*)`)
)

// parseOutput maps arbitrary model output to a well-formed verdict. It is
// total: for any input, including empty or garbled text, it returns one of
// the three labels and a non-empty explanation, and never panics.
func parseOutput(text string) *Verdict {
	text = markupPattern.ReplaceAllString(strings.TrimSpace(text), "")

	labelMatch := labelPattern.FindStringSubmatch(text)
	if labelMatch == nil {
		return &Verdict{Label: LabelUnclear, Explanation: ExplanationParseFailure}
	}

	explanation := ExplanationMissing
	if m := explanationPattern.FindStringSubmatch(text); m != nil {
		if captured := strings.TrimSpace(m[1]); captured != "" {
			explanation = captured
		}
	}

	return &Verdict{
		Label:       Label(strings.ToLower(labelMatch[1])),
		Explanation: explanation,
	}
}
