// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package guideline

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/stylefuzz/services/stylefuzz/style"
)

func doc(rules ...style.Rule) style.Document {
	return style.NewDocument(rules...)
}

func rule(selector string, kv ...string) style.Rule {
	r := style.Rule{Selector: selector}
	for i := 0; i+1 < len(kv); i += 2 {
		r.Declarations = append(r.Declarations, style.Declaration{Name: kv[i], Value: kv[i+1]})
	}
	return r
}

func TestNeutralWhenNothingApplies(t *testing.T) {
	d := doc(rule(".plain", "margin", "4px"))
	s := Evaluate(d)
	assert.Equal(t, NeutralScore, s.Contrast)
	assert.Equal(t, NeutralScore, s.Radius)
	assert.Equal(t, NeutralScore, s.Elevation)
	assert.Equal(t, NeutralScore, s.Typography)
	assert.Equal(t, NeutralScore, s.Mean())

	assert.Equal(t, NeutralScore, Evaluate(style.Document{}).Mean())
}

func TestExpectedRadius(t *testing.T) {
	tests := []struct {
		selector string
		want     float64
	}{
		{"fab-button", 28},
		{".Card", 12},
		{".menu", 4},
		{".menu-item", 0},
		{".bottom-sheet-header", 8},
		{".navigation-drawer", 8},
		{".navigation-drawer-modal", 16},
		{".unrelated", 4},
	}
	for _, tt := range tests {
		t.Run(tt.selector, func(t *testing.T) {
			assert.Equal(t, tt.want, ExpectedRadius(tt.selector))
		})
	}
}

func TestBorderRadius(t *testing.T) {
	t.Run("exact match", func(t *testing.T) {
		assert.Equal(t, 1.0, BorderRadius(doc(rule("fab-button", "border-radius", "28px"))))
	})
	t.Run("large deviation floors", func(t *testing.T) {
		got := BorderRadius(doc(rule("fab-button", "border-radius", "10px")))
		assert.Equal(t, math.Max(0.1, math.Exp(-18)), got)
		assert.InDelta(t, 0.1, got, 1e-9)
	})
	t.Run("averaged", func(t *testing.T) {
		d := doc(
			rule(".card", "border-radius", "12px"),
			rule(".chip", "border-radius", "6px"),
		)
		assert.InDelta(t, 0.9, BorderRadius(d), 1e-9)
	})
}

func TestContrast(t *testing.T) {
	t.Run("black on white", func(t *testing.T) {
		d := doc(rule("p", "color", "#000000", "background-color", "#ffffff"))
		assert.Equal(t, 1.0, Contrast(d))
	})
	t.Run("same colors", func(t *testing.T) {
		d := doc(rule("p", "color", "#777777", "background-color", "#777777"))
		assert.Equal(t, 0.2, Contrast(d))
	})
	t.Run("non hex skipped", func(t *testing.T) {
		d := doc(
			rule("p", "color", "red", "background-color", "#ffffff"),
			rule("a", "color", "#ffffff"),
		)
		assert.Equal(t, NeutralScore, Contrast(d))
	})
}

func TestExpectedElevation(t *testing.T) {
	tests := []struct {
		selector string
		want     float64
	}{
		{".dialog", 6},
		{".elevated-fab", 6},
		{".fab-menu", 6},
		{".search-dropdown", 6},
		{".dialog-tooltip", 6},
		{".TopAppBar", 3},
		{".menu-sheet", 3},
		{".bottom-sheet", 1},
		{".plain", 0},
	}
	for _, tt := range tests {
		t.Run(tt.selector, func(t *testing.T) {
			assert.Equal(t, tt.want, ExpectedElevation(tt.selector))
		})
	}
}

func TestElevation(t *testing.T) {
	assert.Equal(t, 6.0, ElevationDP("0 2px 6px rgba(0,0,0,0.2)"))
	assert.Equal(t, 0.0, ElevationDP("none"))

	d := doc(rule(".dialog", "box-shadow", "0 2px 6px"))
	assert.Equal(t, 1.0, Elevation(d))

	d = doc(rule(".plain", "box-shadow", "0 0 8px"))
	assert.Equal(t, math.Max(0.1, math.Exp(-8)), Elevation(d))

	// First tier wins: "fab" outranks the longer "elevated".
	d = doc(rule(".elevated-fab", "box-shadow", "0 2px 6px"))
	assert.Equal(t, 1.0, Elevation(d))
}

func TestTypography(t *testing.T) {
	t.Run("matching scale", func(t *testing.T) {
		d := doc(rule(".headline", "font-size", "32px", "line-height", "48px", "font-weight", "500"))
		assert.Equal(t, 1.0, Typography(d))
	})
	t.Run("unitless line height", func(t *testing.T) {
		d := doc(rule(".body", "font-size", "16px", "line-height", "1.5"))
		assert.Equal(t, 1.0, Typography(d))
	})
	t.Run("single running average", func(t *testing.T) {
		d := doc(
			rule(".body", "font-size", "16px"),
			rule(".title", "font-weight", "400"),
		)
		// 1.0 for size, 0.8 for weight deviation of 100.
		assert.InDelta(t, 0.9, Typography(d), 1e-9)
	})
	t.Run("bold keyword", func(t *testing.T) {
		d := doc(rule(".caption", "font-weight", "bold"))
		require.InDelta(t, 0.2, Typography(d), 1e-9)
	})
}
