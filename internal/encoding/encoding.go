//
// Tencent is pleased to support the open source community by making trpc-storycheck-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-storycheck-go is licensed under the Apache License Version 2.0.
//
//

// Package encoding provides text encoding utilities for novel ingestion.
package encoding

import (
	"bytes"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// ToUTF8 returns a valid UTF-8 version of text. Valid input passes through
// unchanged. Invalid input is decoded as Windows-1252, the usual legacy
// encoding of plain-text novel archives; decoding that charset cannot fail,
// so the result is always valid UTF-8.
func ToUTF8(text string) string {
	if utf8.ValidString(text) {
		return text
	}

	reader := transform.NewReader(bytes.NewReader([]byte(text)), charmap.Windows1252.NewDecoder())
	converted, err := io.ReadAll(reader)
	if err != nil {
		// Last resort: drop the invalid sequences.
		return strings.ToValidUTF8(text, "")
	}
	return string(converted)
}

// NormalizeLineEndings converts CRLF and bare CR line endings to LF so that
// chunk offsets are stable across differently packaged copies of a novel.
func NormalizeLineEndings(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.ReplaceAll(text, "\r", "\n")
}

// RuneCount returns the number of runes in text.
func RuneCount(text string) int {
	return utf8.RuneCountInString(text)
}
