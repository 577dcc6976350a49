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
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"

	"trpc.group/trpc-go/trpc-storycheck-go/document"
	"trpc.group/trpc-go/trpc-storycheck-go/internal/encoding"
	"trpc.group/trpc-go/trpc-storycheck-go/log"
	"trpc.group/trpc-go/trpc-storycheck-go/normalize"
)

// defaultMinLength is the minimum cleaned novel length in characters. A
// shorter result almost always means a read or cleanup failure rather than a
// genuinely short novel.
const defaultMinLength = 10000

// NovelSource reads novels from a flat directory. Files named *.txt and
// *.pdf are loaded; everything else is ignored. Story IDs are derived from
// file names and normalized the same way query-time story IDs are.
type NovelSource struct {
	dir       string
	minLength int
}

// NovelOption represents a functional option for configuring NovelSource.
type NovelOption func(*NovelSource)

// WithMinLength sets the minimum cleaned novel length in characters.
func WithMinLength(n int) NovelOption {
	return func(s *NovelSource) {
		if n > 0 {
			s.minLength = n
		}
	}
}

// NewNovelSource creates a novel source for the given directory.
func NewNovelSource(dir string, opts ...NovelOption) *NovelSource {
	s := &NovelSource{
		dir:       dir,
		minLength: defaultMinLength,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns a human-readable name for this source.
func (s *NovelSource) Name() string {
	return "novels:" + s.dir
}

// ReadDocuments loads, cleans, and validates every novel in the directory.
//
// Failures here are load-time failures by design: a document below the
// minimum length, a duplicate story ID, or an empty directory aborts the
// whole load rather than surfacing later in the middle of a batch.
func (s *NovelSource) ReadDocuments(ctx context.Context) ([]*document.Document, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("source: failed to read novels directory: %w", err)
	}

	// Sort for deterministic load order, and therefore deterministic
	// chunk ordering in the index.
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".txt", ".pdf":
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	seen := make(map[string]string, len(names))
	docs := make([]*document.Document, 0, len(names))

	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		storyID := normalize.StoryID(strings.TrimSuffix(name, filepath.Ext(name)))
		if prev, dup := seen[storyID]; dup {
			return nil, fmt.Errorf("source: duplicate story id %s from %s and %s", storyID, prev, name)
		}
		seen[storyID] = name

		raw, err := s.readFile(filepath.Join(s.dir, name))
		if err != nil {
			return nil, fmt.Errorf("source: failed to read novel %s: %w", name, err)
		}

		cleaned := normalize.StripBoilerplate(
			encoding.NormalizeLineEndings(encoding.ToUTF8(raw)))

		if length := encoding.RuneCount(cleaned); length < s.minLength {
			return nil, fmt.Errorf(
				"source: novel %s seems too short after cleanup (%d chars), possible read error",
				name, length)
		}

		log.Debugf("Loaded novel %s as story %s (%d chars)", name, storyID, encoding.RuneCount(cleaned))
		docs = append(docs, &document.Document{StoryID: storyID, Content: cleaned})
	}

	if len(docs) == 0 {
		return nil, ErrNoNovels
	}
	log.Infof("Loaded %d novel(s) from %s", len(docs), s.dir)
	return docs, nil
}

// readFile reads one novel file, extracting plain text from PDFs.
func (s *NovelSource) readFile(path string) (string, error) {
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		return readPDF(path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// readPDF extracts the plain text of every page. Pages that fail to decode
// are skipped; the minimum-length check catches a file that lost most of its
// content this way.
func readPDF(path string) (string, error) {
	file, reader, err := pdf.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	var builder strings.Builder
	for pageIndex := 1; pageIndex <= reader.NumPage(); pageIndex++ {
		page := reader.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		builder.WriteString(text)
		builder.WriteString("\n")
	}
	return builder.String(), nil
}
