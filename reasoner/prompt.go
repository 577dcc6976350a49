//
// Tencent is pleased to support the open source community by making trpc-storycheck-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-storycheck-go is licensed under the Apache License Version 2.0.
//
//

package reasoner

import "fmt"

// verificationPrompt instructs the model to reason first and then emit two
// mandatory trailing lines that the parser keys on.
const verificationPrompt = `You are a literary reasoning assistant evaluating narrative consistency.

Your task is NOT strict fact-checking.
Your task is to judge whether a claim is COMPATIBLE with the narrative evidence.

Definitions:
- CONSISTENT: The evidence supports or aligns with the claim, even if some details are implied rather than explicitly stated.
- CONTRADICT: The evidence clearly conflicts with the claim.
- UNCLEAR: The evidence does not provide enough information to reasonably judge the claim.

Important rules:
1. Do NOT require every detail of the claim to be explicitly stated.
2. If the narrative portrayal reasonably supports the claim and nothing contradicts it, choose CONSISTENT.
3. Absence of a minor detail does NOT make a claim unclear.
4. Only choose CONTRADICT if the evidence clearly disagrees with the claim.
5. Prefer CONSISTENT over UNCLEAR when evidence aligns overall.

Claim:
%s

Relevant excerpts from the novel:
%s

First, write a brief analysis explaining how the evidence relates to the claim.

Then provide your final decision.

YOU MUST end your response with BOTH of the following lines.
Do not omit them.
Do not add anything after them.

Final Label: CONSISTENT or CONTRADICT or UNCLEAR
Final Explanation: One or two sentences explaining your decision.`

// buildPrompt embeds the claim and formatted evidence blocks into the
// verification prompt template.
func buildPrompt(claim, evidenceBlocks string) string {
	return fmt.Sprintf(verificationPrompt, claim, evidenceBlocks)
}
