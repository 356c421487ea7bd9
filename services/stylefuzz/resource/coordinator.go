// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package resource tracks the icon and image pools a run substitutes into
// its page, and how evenly each pool has been used.
package resource

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/AleutianAI/stylefuzz/services/stylefuzz/markup"
	"github.com/AleutianAI/stylefuzz/services/stylefuzz/style"
)

var (
	// ErrResourceExhausted is the parent of every empty-pool error.
	ErrResourceExhausted = errors.New("resource pool exhausted")

	// ErrNoIcons is returned when the icon pool is empty.
	ErrNoIcons = fmt.Errorf("%w: no icons", ErrResourceExhausted)

	// ErrNoImages is returned when the image pool is empty.
	ErrNoImages = fmt.Errorf("%w: no images", ErrResourceExhausted)
)

var imageExtensions = []string{".png", ".jpg", ".jpeg"}

// Icon is one entry of the icon pool.
type Icon struct {
	Name string
	Path string
}

// PoolStats summarizes usage of one pool.
type PoolStats struct {
	Total             int            `json:"total"`
	Used              int            `json:"used"`
	Unused            int            `json:"unused"`
	Coverage          float64        `json:"coverage"`
	UsageDistribution map[string]int `json:"usage_distribution"`
}

// Stats is the coverage report for both pools.
type Stats struct {
	Icons  PoolStats `json:"icons"`
	Images PoolStats `json:"images"`
}

// Mean is the average of icon and image coverage.
func (s Stats) Mean() float64 {
	return (s.Icons.Coverage + s.Images.Coverage) / 2.0
}

// pool holds names in sorted order plus per-name usage counts.
type pool struct {
	names  []string
	usage  map[string]int
	unused map[string]struct{}
}

func newPool(names []string) *pool {
	sorted := append([]string(nil), names...)
	sort.Strings(sorted)
	p := &pool{
		names:  sorted,
		usage:  make(map[string]int, len(sorted)),
		unused: make(map[string]struct{}, len(sorted)),
	}
	for _, n := range sorted {
		p.unused[n] = struct{}{}
	}
	return p
}

// pick returns an unused name when one exists, else a least-used name not
// in exclude. When every name is excluded the exclusion is dropped.
func (p *pool) pick(rng *rand.Rand, exclude map[string]struct{}) string {
	if len(p.unused) > 0 {
		candidates := make([]string, 0, len(p.unused))
		for _, n := range p.names {
			if _, ok := p.unused[n]; ok {
				candidates = append(candidates, n)
			}
		}
		return candidates[rng.Intn(len(candidates))]
	}
	candidates := p.leastUsed(exclude)
	if len(candidates) == 0 {
		candidates = p.leastUsed(nil)
	}
	return candidates[rng.Intn(len(candidates))]
}

func (p *pool) leastUsed(exclude map[string]struct{}) []string {
	var out []string
	lowest := -1
	for _, n := range p.names {
		if _, skip := exclude[n]; skip {
			continue
		}
		c := p.usage[n]
		switch {
		case lowest < 0 || c < lowest:
			lowest = c
			out = append(out[:0], n)
		case c == lowest:
			out = append(out, n)
		}
	}
	return out
}

func (p *pool) use(name string) {
	p.usage[name]++
	delete(p.unused, name)
}

func (p *pool) stats() PoolStats {
	dist := make(map[string]int, len(p.usage))
	for k, v := range p.usage {
		dist[k] = v
	}
	total, used := len(p.names), len(p.usage)
	s := PoolStats{
		Total:             total,
		Used:              used,
		Unused:            total - used,
		UsageDistribution: dist,
	}
	if total > 0 {
		s.Coverage = float64(used) / float64(total)
	}
	return s
}

// Coordinator selects icons and images for a page, preferring assets not
// yet used in this run.
//
// Description:
//
//	A Coordinator is owned by exactly one run. Every selection marks the
//	asset as used so that coverage grows monotonically.
//
// Thread Safety: Not safe for concurrent use.
type Coordinator struct {
	iconPaths map[string]string
	icons     *pool
	images    *pool
	imageDir  string
	rng       *rand.Rand
	logger    *slog.Logger

	// pageImages holds the images placed on the page being processed.
	pageImages map[string]struct{}
}

// New creates a Coordinator over explicit pools.
//
// Inputs:
//
//	icons - Icon pool. Must be non-empty.
//	imageDir - Directory image names are resolved against.
//	images - Image file names. Must be non-empty.
//	rng - Random source. Must not be nil.
//	logger - Optional; slog.Default() when nil.
//
// Outputs:
//
//	*Coordinator - Ready to use.
//	error - ErrNoIcons or ErrNoImages for an empty pool.
func New(icons []Icon, imageDir string, images []string, rng *rand.Rand, logger *slog.Logger) (*Coordinator, error) {
	if len(icons) == 0 {
		return nil, ErrNoIcons
	}
	if len(images) == 0 {
		return nil, ErrNoImages
	}
	if logger == nil {
		logger = slog.Default()
	}
	paths := make(map[string]string, len(icons))
	names := make([]string, 0, len(icons))
	for _, ic := range icons {
		if _, dup := paths[ic.Name]; dup {
			continue
		}
		paths[ic.Name] = ic.Path
		names = append(names, ic.Name)
	}
	return &Coordinator{
		iconPaths:  paths,
		icons:      newPool(names),
		images:     newPool(images),
		imageDir:   imageDir,
		rng:        rng,
		logger:     logger,
		pageImages: make(map[string]struct{}),
	}, nil
}

// Load scans iconDir recursively for .svg files and imageDir (top level
// only) for png and jpeg files, then calls New. Substituted sources are
// absolute so saved pages resolve them from any directory.
func Load(iconDir, imageDir string, rng *rand.Rand, logger *slog.Logger) (*Coordinator, error) {
	icons, err := ScanIcons(iconDir)
	if err != nil {
		return nil, err
	}
	imageDir, err = filepath.Abs(imageDir)
	if err != nil {
		return nil, fmt.Errorf("resolve image dir: %w", err)
	}
	images, err := ScanImages(imageDir)
	if err != nil {
		return nil, err
	}
	c, err := New(icons, imageDir, images, rng, logger)
	if err != nil {
		return nil, fmt.Errorf("load pools from %s and %s: %w", iconDir, imageDir, err)
	}
	c.logger.Info("resource pools loaded",
		slog.Int("icons", len(c.icons.names)),
		slog.Int("images", len(c.images.names)))
	return c, nil
}

// ScanIcons lists every .svg under dir with absolute paths. Icon names are
// file stems; when two files share a stem the first in lexical path order
// wins.
func ScanIcons(dir string) ([]Icon, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve icon dir: %w", err)
	}
	var icons []Icon
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".svg") {
			return nil
		}
		name := strings.TrimSuffix(d.Name(), filepath.Ext(d.Name()))
		icons = append(icons, Icon{Name: name, Path: path})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan icons in %s: %w", dir, err)
	}
	return icons, nil
}

// ScanImages lists png and jpeg file names directly inside dir.
func ScanImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("scan images in %s: %w", dir, err)
	}
	var images []string
	for _, e := range entries {
		if e.IsDir() || !isImage(e.Name()) {
			continue
		}
		images = append(images, e.Name())
	}
	return images, nil
}

// SelectIcon picks an icon and marks it used.
func (c *Coordinator) SelectIcon() Icon {
	name := c.icons.pick(c.rng, nil)
	c.icons.use(name)
	return Icon{Name: name, Path: c.iconPaths[name]}
}

// SelectImage picks an image name and marks it used. Once every image has
// been used, images already on the current page are avoided.
func (c *Coordinator) SelectImage() string {
	name := c.images.pick(c.rng, c.pageImages)
	c.images.use(name)
	return name
}

// ProcessPage substitutes every svg img with a fresh icon and every raster
// img with a fresh image.
//
// Inputs:
//
//	page - The current page. Not modified.
//	doc - The current style document. Returned unchanged.
//
// Outputs:
//
//	*markup.Document - A rewritten copy of page.
//	style.Document - doc.
//	error - Non-nil if page could not be copied.
func (c *Coordinator) ProcessPage(page *markup.Document, doc style.Document) (*markup.Document, style.Document, error) {
	next, err := page.Clone()
	if err != nil {
		return nil, doc, fmt.Errorf("copy page: %w", err)
	}
	clear(c.pageImages)
	var icons, images int
	next.RewriteImages(func(src string) (string, bool) {
		switch {
		case strings.HasSuffix(strings.ToLower(src), ".svg"):
			icons++
			return c.SelectIcon().Path, true
		case isImage(src):
			images++
			name := c.SelectImage()
			c.pageImages[name] = struct{}{}
			return filepath.Join(c.imageDir, name), true
		}
		return "", false
	})
	c.logger.Debug("page resources substituted",
		slog.Int("icons", icons),
		slog.Int("images", images))
	return next, doc, nil
}

// CoverageStats reports usage of both pools.
func (c *Coordinator) CoverageStats() Stats {
	return Stats{Icons: c.icons.stats(), Images: c.images.stats()}
}

func isImage(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range imageExtensions {
		if ext == e {
			return true
		}
	}
	return false
}
