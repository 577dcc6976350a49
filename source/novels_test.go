//
// Tencent is pleased to support the open source community by making trpc-storycheck-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-storycheck-go is licensed under the Apache License Version 2.0.
//
//

package source

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeNovel(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func longNovel(marker string) string {
	return marker + "\n" + strings.Repeat("All work and no play makes Jack a dull boy. ", 300)
}

func TestReadDocumentsLoadsAndNormalizes(t *testing.T) {
	dir := t.TempDir()
	writeNovel(t, dir, "Moby Dick.txt", longNovel("Call me Ishmael."))
	writeNovel(t, dir, "notes.md", "ignored")

	src := NewNovelSource(dir)
	docs, err := src.ReadDocuments(context.Background())
	require.NoError(t, err)
	require.Len(t, docs, 1)
	require.Equal(t, "moby_dick", docs[0].StoryID)
	require.Contains(t, docs[0].Content, "Call me Ishmael.")
}

func TestReadDocumentsDeterministicOrder(t *testing.T) {
	dir := t.TempDir()
	writeNovel(t, dir, "zeta.txt", longNovel("z"))
	writeNovel(t, dir, "alpha.txt", longNovel("a"))
	writeNovel(t, dir, "mid.txt", longNovel("m"))

	src := NewNovelSource(dir)
	docs, err := src.ReadDocuments(context.Background())
	require.NoError(t, err)
	require.Len(t, docs, 3)
	require.Equal(t, "alpha", docs[0].StoryID)
	require.Equal(t, "mid", docs[1].StoryID)
	require.Equal(t, "zeta", docs[2].StoryID)
}

func TestReadDocumentsStripsBoilerplate(t *testing.T) {
	dir := t.TempDir()
	body := strings.Repeat("The actual story text goes here. ", 400)
	raw := "Produced by volunteers\n*** START OF THE PROJECT GUTENBERG EBOOK MOBY DICK ***\n" +
		body +
		"\n*** END OF THE PROJECT GUTENBERG EBOOK MOBY DICK ***\nlicense terms follow"
	writeNovel(t, dir, "moby.txt", raw)

	src := NewNovelSource(dir)
	docs, err := src.ReadDocuments(context.Background())
	require.NoError(t, err)
	require.Len(t, docs, 1)
	require.NotContains(t, docs[0].Content, "PROJECT GUTENBERG")
	require.NotContains(t, docs[0].Content, "license terms follow")
	require.Contains(t, docs[0].Content, "The actual story text goes here.")
}

func TestReadDocumentsRejectsShortNovel(t *testing.T) {
	dir := t.TempDir()
	writeNovel(t, dir, "stub.txt", "way too short to be a novel")

	src := NewNovelSource(dir)
	_, err := src.ReadDocuments(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "too short")
}

func TestReadDocumentsMinLengthOption(t *testing.T) {
	dir := t.TempDir()
	writeNovel(t, dir, "short.txt", "a tiny tale that is still accepted")

	src := NewNovelSource(dir, WithMinLength(10))
	docs, err := src.ReadDocuments(context.Background())
	require.NoError(t, err)
	require.Len(t, docs, 1)
}

func TestReadDocumentsDuplicateStoryID(t *testing.T) {
	dir := t.TempDir()
	writeNovel(t, dir, "Moby Dick.txt", longNovel("one"))
	writeNovel(t, dir, "moby_dick.txt", longNovel("two"))

	src := NewNovelSource(dir)
	_, err := src.ReadDocuments(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "duplicate story id")
}

func TestReadDocumentsEmptyDirectory(t *testing.T) {
	src := NewNovelSource(t.TempDir())
	_, err := src.ReadDocuments(context.Background())
	require.ErrorIs(t, err, ErrNoNovels)
}

func TestReadDocumentsMissingDirectory(t *testing.T) {
	src := NewNovelSource(filepath.Join(t.TempDir(), "does-not-exist"))
	_, err := src.ReadDocuments(context.Background())
	require.Error(t, err)
}

func TestReadDocumentsCanceledContext(t *testing.T) {
	dir := t.TempDir()
	writeNovel(t, dir, "a.txt", longNovel("a"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	src := NewNovelSource(dir)
	_, err := src.ReadDocuments(ctx)
	require.ErrorIs(t, err, context.Canceled)
}
