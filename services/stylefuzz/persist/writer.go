// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package persist

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/AleutianAI/stylefuzz/services/stylefuzz/style"
)

const (
	summaryFile     = "summary.txt"
	timestampLayout = "20060102_150405"
	bestDir         = "best"
	checkpointDir   = "checkpoints"
)

// Writer saves variants as .css/.html file pairs.
//
// Description:
//
//	Files for run R go under <Dir>/variants_<R>/best or .../checkpoints.
//	Both files share the stem variant_e<episode>_s<step>_r<reward>_<time>,
//	the page's stylesheet link is pointed at the new .css file, and a block
//	is appended to summary.txt in the same directory.
//
// Thread Safety: Not safe for concurrent use.
type Writer struct {
	dir string
	now func() time.Time
}

// WriterOption configures a Writer.
type WriterOption func(*Writer)

// WithClock replaces time.Now, for deterministic file names in tests.
func WithClock(now func() time.Time) WriterOption {
	return func(w *Writer) { w.now = now }
}

// NewWriter creates a Writer rooted at dir.
func NewWriter(dir string, opts ...WriterOption) (*Writer, error) {
	if dir == "" {
		return nil, ErrEmptyOutputDir
	}
	w := &Writer{dir: dir, now: time.Now}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// RunDir returns the directory holding every variant of runID.
func (w *Writer) RunDir(runID string) string {
	return filepath.Join(w.dir, "variants_"+runID)
}

// KindDir returns the directory variants of kind are written to.
func (w *Writer) KindDir(runID string, kind Kind) string {
	sub := bestDir
	if kind == KindCheckpoint {
		sub = checkpointDir
	}
	return filepath.Join(w.RunDir(runID), sub)
}

// Stem returns the shared file name stem for a variant saved at t.
func Stem(episode, step int, reward float64, t time.Time) string {
	return fmt.Sprintf("variant_e%d_s%d_r%.4f_%s", episode, step, reward, t.Format(timestampLayout))
}

// Save implements Sink.
func (w *Writer) Save(ctx context.Context, v Variant) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}
	at := w.now()
	dir := w.KindDir(v.RunID, v.Kind)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Record{}, fmt.Errorf("create %s: %w", dir, err)
	}

	rec := newRecord(v, at)
	rec.Stem = Stem(v.Episode, v.Step, v.Reward, at)
	rec.CSSPath = filepath.Join(dir, rec.Stem+".css")
	rec.HTMLPath = filepath.Join(dir, rec.Stem+".html")

	if err := writeFile(rec.CSSPath, func(f *os.File) error {
		return style.Write(f, v.Style)
	}); err != nil {
		return Record{}, err
	}

	if v.Page != nil {
		page, err := v.Page.Clone()
		if err != nil {
			return Record{}, fmt.Errorf("copy page: %w", err)
		}
		page.SetStylesheet(filepath.Base(rec.CSSPath))
		if err := writeFile(rec.HTMLPath, func(f *os.File) error {
			return page.Render(f)
		}); err != nil {
			return Record{}, err
		}
	} else {
		rec.HTMLPath = ""
	}

	if err := appendSummary(filepath.Join(dir, summaryFile), rec); err != nil {
		return Record{}, err
	}
	return rec, nil
}

func writeFile(path string, fill func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := fill(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}

func appendSummary(path string, rec Record) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open summary: %w", err)
	}
	defer f.Close()

	b := bufio.NewWriter(f)
	fmt.Fprintf(b, "\nVariant %s:\n", rec.SavedAt.Format(timestampLayout))
	fmt.Fprintf(b, "Episode: %d, Step: %d\n", rec.Episode, rec.Step)
	fmt.Fprintf(b, "Reward: %.4f\n", rec.Reward)
	fmt.Fprintf(b, "Resource Usage:\n")
	fmt.Fprintf(b, "- Icons Used: %d/%d\n", rec.IconsUsed, rec.Icons)
	fmt.Fprintf(b, "- Images Used: %d/%d\n", rec.ImagesUsed, rec.Images)
	fmt.Fprintf(b, "---\n")
	if err := b.Flush(); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}
	return nil
}
