//
// Tencent is pleased to support the open source community by making trpc-storycheck-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-storycheck-go is licensed under the Apache License Version 2.0.
//
//

package encoding

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/require"
)

func TestToUTF8ValidPassthrough(t *testing.T) {
	require.Equal(t, "plain ascii", ToUTF8("plain ascii"))
	require.Equal(t, "café — déjà vu", ToUTF8("café — déjà vu"))
	require.Equal(t, "", ToUTF8(""))
}

func TestToUTF8Windows1252(t *testing.T) {
	// 0xE9 is "é" in Windows-1252 and invalid as a standalone UTF-8 byte.
	raw := string([]byte{'c', 'a', 'f', 0xE9})
	got := ToUTF8(raw)
	require.True(t, utf8.ValidString(got))
	require.Equal(t, "café", got)
}

func TestNormalizeLineEndings(t *testing.T) {
	require.Equal(t, "a\nb\nc\n", NormalizeLineEndings("a\r\nb\rc\n"))
	require.Equal(t, "no endings", NormalizeLineEndings("no endings"))
}

func TestRuneCount(t *testing.T) {
	require.Equal(t, 0, RuneCount(""))
	require.Equal(t, 5, RuneCount("abcde"))
	require.Equal(t, 4, RuneCount("café"))
}
