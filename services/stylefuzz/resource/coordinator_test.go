// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package resource

import (
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/stylefuzz/services/stylefuzz/markup"
	"github.com/AleutianAI/stylefuzz/services/stylefuzz/style"
)

func testCoordinator(t *testing.T, icons []string, images []string) *Coordinator {
	t.Helper()
	pool := make([]Icon, 0, len(icons))
	for _, n := range icons {
		pool = append(pool, Icon{Name: n, Path: "icons/" + n + ".svg"})
	}
	c, err := New(pool, "images", images, rand.New(rand.NewSource(3)), nil)
	require.NoError(t, err)
	return c
}

func TestNew_EmptyPools(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	_, err := New(nil, "images", []string{"a.png"}, rng, nil)
	require.ErrorIs(t, err, ErrNoIcons)
	require.ErrorIs(t, err, ErrResourceExhausted)

	_, err = New([]Icon{{Name: "a", Path: "a.svg"}}, "images", nil, rng, nil)
	require.ErrorIs(t, err, ErrNoImages)
}

func TestSelectIcon_UnusedFirst(t *testing.T) {
	c := testCoordinator(t, []string{"home", "menu", "star"}, []string{"a.png"})
	seen := map[string]bool{}
	for i := 0; i < 3; i++ {
		seen[c.SelectIcon().Name] = true
	}
	assert.Len(t, seen, 3)

	// Every icon used once; the next three picks must again cover all.
	seen = map[string]bool{}
	for i := 0; i < 3; i++ {
		seen[c.SelectIcon().Name] = true
	}
	assert.Len(t, seen, 3)

	stats := c.CoverageStats().Icons
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 3, stats.Used)
	assert.Equal(t, 0, stats.Unused)
	assert.Equal(t, 1.0, stats.Coverage)
	for _, n := range stats.UsageDistribution {
		assert.Equal(t, 2, n)
	}
}

func TestSelectImage_AvoidsCurrentPage(t *testing.T) {
	c := testCoordinator(t, []string{"home"}, []string{"a.png", "b.jpg"})
	c.SelectImage()
	c.SelectImage()

	c.pageImages["a.png"] = struct{}{}
	assert.Equal(t, "b.jpg", c.SelectImage())

	c.pageImages["b.jpg"] = struct{}{}
	assert.Equal(t, "a.png", c.SelectImage())
}

func TestProcessPage(t *testing.T) {
	c := testCoordinator(t, []string{"home"}, []string{"cat.png"})
	page, err := markup.ParseString(`<html><body>
<img src="old.svg"><img src="photo.JPG"><img src="logo.gif">
</body></html>`)
	require.NoError(t, err)
	doc := style.NewDocument(style.Rule{Selector: "p"})

	next, gotDoc, err := c.ProcessPage(page, doc)
	require.NoError(t, err)
	assert.Equal(t, doc.Rules(), gotDoc.Rules())
	assert.Equal(t, []string{"icons/home.svg", filepath.Join("images", "cat.png"), "logo.gif"}, next.ImageSources())
	assert.Equal(t, []string{"old.svg", "photo.JPG", "logo.gif"}, page.ImageSources())

	stats := c.CoverageStats()
	assert.Equal(t, 1.0, stats.Icons.Coverage)
	assert.Equal(t, 1.0, stats.Images.Coverage)
	assert.Equal(t, 1.0, stats.Mean())
}

func TestCoverage_Initial(t *testing.T) {
	c := testCoordinator(t, []string{"a", "b"}, []string{"x.png", "y.png"})
	stats := c.CoverageStats()
	assert.Equal(t, 0.0, stats.Mean())
	assert.Equal(t, 2, stats.Images.Unused)
}

func TestLoad(t *testing.T) {
	root := t.TempDir()
	iconDir := filepath.Join(root, "icons")
	imageDir := filepath.Join(root, "images")
	require.NoError(t, os.MkdirAll(filepath.Join(iconDir, "nested"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(imageDir, "sub"), 0o755))
	for _, p := range []string{
		filepath.Join(iconDir, "home.svg"),
		filepath.Join(iconDir, "nested", "star.SVG"),
		filepath.Join(iconDir, "readme.txt"),
		filepath.Join(imageDir, "a.png"),
		filepath.Join(imageDir, "b.jpeg"),
		filepath.Join(imageDir, "notes.md"),
		filepath.Join(imageDir, "sub", "deep.png"),
	} {
		require.NoError(t, os.WriteFile(p, []byte("x"), 0o644))
	}

	c, err := Load(iconDir, imageDir, rand.New(rand.NewSource(1)), nil)
	require.NoError(t, err)
	stats := c.CoverageStats()
	assert.Equal(t, 2, stats.Icons.Total)
	assert.Equal(t, 2, stats.Images.Total)

	_, err = Load(iconDir, filepath.Join(root, "missing"), rand.New(rand.NewSource(1)), nil)
	assert.Error(t, err)

	empty := filepath.Join(root, "empty")
	require.NoError(t, os.MkdirAll(empty, 0o755))
	_, err = Load(iconDir, empty, rand.New(rand.NewSource(1)), nil)
	assert.ErrorIs(t, err, ErrNoImages)
}

func TestLoad_RelativeDirsYieldAbsoluteSources(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "icons"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "images"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "icons", "home.svg"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "images", "a.png"), []byte("x"), 0o644))
	t.Chdir(root)

	icons, err := ScanIcons("icons")
	require.NoError(t, err)
	require.Len(t, icons, 1)
	assert.True(t, filepath.IsAbs(icons[0].Path))

	c, err := Load("icons", "images", rand.New(rand.NewSource(1)), nil)
	require.NoError(t, err)
	page, err := markup.ParseString(`<html><body><img src="x.svg"><img src="y.png"></body></html>`)
	require.NoError(t, err)
	next, _, err := c.ProcessPage(page, style.NewDocument())
	require.NoError(t, err)

	srcs := next.ImageSources()
	require.Len(t, srcs, 2)
	for _, src := range srcs {
		assert.True(t, filepath.IsAbs(src), src)
		_, err := os.Stat(src)
		assert.NoError(t, err)
	}
}
