//
// Tencent is pleased to support the open source community by making trpc-storycheck-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-storycheck-go is licensed under the Apache License Version 2.0.
//
//

// Package normalize provides story identifier normalization and best-effort
// removal of Project Gutenberg boilerplate from raw novel text.
package normalize

import (
	"regexp"
	"strings"
)

var (
	// headerPattern matches the Gutenberg start-of-ebook marker.
	headerPattern = regexp.MustCompile(`(?is)\*\*\*\s*START OF THE PROJECT GUTENBERG EBOOK.*?\*\*\*`)

	// footerPattern matches the Gutenberg end-of-ebook marker and everything after it.
	footerPattern = regexp.MustCompile(`(?is)\*\*\*\s*END OF THE PROJECT GUTENBERG EBOOK.*`)

	// chapterPattern matches the first chapter or part heading line.
	chapterPattern = regexp.MustCompile(`(?i)\n\s*(chapter\s+[ivxlcdm0-9]+\.?|chapter\s+one|part\s+i)\s*\n`)
)

// StoryID normalizes a story identifier: trims surrounding whitespace,
// lowercases, and replaces spaces with underscores. The same normalization is
// applied at indexing time and at query time so the two always agree.
func StoryID(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), " ", "_")
}

// StripBoilerplate removes Project Gutenberg front and back matter and trims
// the text to start at the first chapter or part heading.
//
// This is lossy best-effort cleanup: each marker is optional and its absence
// is not an error. An empty result is possible and must be handled by the
// caller.
func StripBoilerplate(text string) string {
	// Drop everything up to and including the header marker.
	if loc := headerPattern.FindStringIndex(text); loc != nil {
		text = text[loc[1]:]
	}

	// Drop everything from the footer marker onward.
	if loc := footerPattern.FindStringIndex(text); loc != nil {
		text = text[:loc[0]]
	}

	// Trim front matter before the first chapter heading, when one exists.
	if loc := chapterPattern.FindStringIndex(text); loc != nil {
		text = text[loc[0]:]
	}

	return strings.TrimSpace(text)
}
