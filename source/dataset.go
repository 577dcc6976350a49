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
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"trpc.group/trpc-go/trpc-storycheck-go/log"
	"trpc.group/trpc-go/trpc-storycheck-go/normalize"
)

// Ground-truth label values accepted at ingestion. The unclear label is a
// pipeline output, never a dataset input.
const (
	LabelConsistent = "consistent"
	LabelContradict = "contradict"
)

// storyColumns are the accepted story identifier column names, in priority
// order. Published claim sets disagree on the column name.
var storyColumns = []string{"story_id", "book_name", "book", "novel_id"}

// characterColumns are the accepted character column names, in priority order.
var characterColumns = []string{"char", "character"}

// Claim is one backstory claim row from a dataset.
type Claim struct {
	// ID is the example identifier. When the CSV has no id column, the
	// 1-based row number is used.
	ID string

	// StoryID is the normalized identifier of the claimed novel.
	StoryID string

	// Backstory is the claim text.
	Backstory string

	// Character is the character the claim is about; may be empty.
	Character string

	// Label is the ground-truth label, set only for training datasets.
	Label string
}

// DatasetSource reads claim rows from a CSV file.
type DatasetSource struct {
	path  string
	train bool
}

// DatasetOption represents a functional option for configuring DatasetSource.
type DatasetOption func(*DatasetSource)

// WithTrainLabels marks the dataset as a training set carrying a mandatory,
// validated label column.
func WithTrainLabels(train bool) DatasetOption {
	return func(s *DatasetSource) {
		s.train = train
	}
}

// NewDatasetSource creates a dataset source for the given CSV path.
func NewDatasetSource(path string, opts ...DatasetOption) *DatasetSource {
	s := &DatasetSource{path: path}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns a human-readable name for this source.
func (s *DatasetSource) Name() string {
	return "dataset:" + s.path
}

// ReadClaims loads and validates every row. Missing required columns and
// unknown label values are configuration errors that abort the load; an
// empty dataset is rejected too.
func (s *DatasetSource) ReadClaims(ctx context.Context) ([]*Claim, error) {
	file, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("source: failed to open dataset: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, ErrEmptyDataset
		}
		return nil, fmt.Errorf("source: failed to read dataset header: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.TrimSpace(strings.ToLower(name))] = i
	}

	backstoryCol, ok := columns["backstory"]
	if !ok {
		return nil, fmt.Errorf("source: dataset %s missing required column backstory", s.path)
	}
	storyCol := -1
	for _, name := range storyColumns {
		if i, ok := columns[name]; ok {
			storyCol = i
			break
		}
	}
	if storyCol == -1 {
		return nil, fmt.Errorf("source: dataset %s has no story identifier column (one of %s)",
			s.path, strings.Join(storyColumns, ", "))
	}
	labelCol := -1
	if s.train {
		if i, ok := columns["label"]; ok {
			labelCol = i
		} else {
			return nil, fmt.Errorf("source: training dataset %s missing required column label", s.path)
		}
	}
	idCol := -1
	if i, ok := columns["id"]; ok {
		idCol = i
	}
	charCol := -1
	for _, name := range characterColumns {
		if i, ok := columns[name]; ok {
			charCol = i
			break
		}
	}

	var claims []*Claim
	for row := 1; ; row++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("source: failed to read dataset row %d: %w", row, err)
		}

		claim := &Claim{
			ID:        strconv.Itoa(row),
			StoryID:   normalize.StoryID(record[storyCol]),
			Backstory: strings.TrimSpace(record[backstoryCol]),
		}
		if idCol >= 0 {
			claim.ID = strings.TrimSpace(record[idCol])
		}
		if charCol >= 0 {
			claim.Character = strings.TrimSpace(record[charCol])
		}
		if labelCol >= 0 {
			label := strings.ToLower(strings.TrimSpace(record[labelCol]))
			if label != LabelConsistent && label != LabelContradict {
				return nil, fmt.Errorf("source: unknown label %q at dataset row %d", record[labelCol], row)
			}
			claim.Label = label
		}

		claims = append(claims, claim)
	}

	if len(claims) == 0 {
		return nil, ErrEmptyDataset
	}
	log.Infof("Loaded %d claim(s) from %s", len(claims), s.path)
	return claims, nil
}
