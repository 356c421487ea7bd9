// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package persist writes search variants to disk and records them in the
// run ledger.
package persist

import (
	"context"
	"errors"
	"time"

	"github.com/AleutianAI/stylefuzz/services/stylefuzz/markup"
	"github.com/AleutianAI/stylefuzz/services/stylefuzz/resource"
	"github.com/AleutianAI/stylefuzz/services/stylefuzz/style"
)

// ErrEmptyOutputDir is returned when a Writer has no output directory.
var ErrEmptyOutputDir = errors.New("output directory is empty")

// Kind says why a variant was saved.
type Kind string

const (
	// KindBest is a new all-time best.
	KindBest Kind = "best"

	// KindCheckpoint is a periodic snapshot of the current pair.
	KindCheckpoint Kind = "checkpoint"
)

// Variant is one style/page pair to persist.
type Variant struct {
	RunID    string
	Kind     Kind
	Style    style.Document
	Page     *markup.Document
	Episode  int
	Step     int
	Reward   float64
	Coverage resource.Stats
}

// Record is what a Sink reports after saving a variant.
type Record struct {
	RunID      string    `json:"run_id"`
	Kind       Kind      `json:"kind"`
	Episode    int       `json:"episode"`
	Step       int       `json:"step"`
	Reward     float64   `json:"reward"`
	Stem       string    `json:"stem,omitempty"`
	CSSPath    string    `json:"css_path,omitempty"`
	HTMLPath   string    `json:"html_path,omitempty"`
	IconsUsed  int       `json:"icons_used"`
	Icons      int       `json:"icons"`
	ImagesUsed int       `json:"images_used"`
	Images     int       `json:"images"`
	SavedAt    time.Time `json:"saved_at"`
}

// Sink accepts variants from the search loop.
type Sink interface {
	Save(ctx context.Context, v Variant) (Record, error)
}

// Discard drops every variant.
type Discard struct{}

// Save implements Sink.
func (Discard) Save(_ context.Context, v Variant) (Record, error) {
	return newRecord(v, time.Time{}), nil
}

func newRecord(v Variant, at time.Time) Record {
	return Record{
		RunID:      v.RunID,
		Kind:       v.Kind,
		Episode:    v.Episode,
		Step:       v.Step,
		Reward:     v.Reward,
		IconsUsed:  v.Coverage.Icons.Used,
		Icons:      v.Coverage.Icons.Total,
		ImagesUsed: v.Coverage.Images.Used,
		Images:     v.Coverage.Images.Total,
		SavedAt:    at,
	}
}
