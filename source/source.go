//
// Tencent is pleased to support the open source community by making trpc-storycheck-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-storycheck-go is licensed under the Apache License Version 2.0.
//
//

// Package source loads the pipeline's external inputs: novel texts from a
// directory and claim datasets from CSV files. Validation is strict and
// happens here, before any retrieval or reasoning work starts.
package source

import (
	"errors"
)

var (
	// ErrNoNovels is returned when a novel directory yields no usable documents.
	ErrNoNovels = errors.New("source: no novels loaded, check novels directory")

	// ErrEmptyDataset is returned when a claim CSV contains no data rows.
	ErrEmptyDataset = errors.New("source: no rows loaded from dataset")
)
