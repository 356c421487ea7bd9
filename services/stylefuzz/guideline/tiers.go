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

import "strings"

// tier maps a set of selector keywords to one expected value.
type tier struct {
	keywords []string
	value    float64
}

// keywordTable resolves an expected value for a selector by case-insensitive
// substring match. The longest matching keyword wins; equal lengths fall
// back to tier order. With firstMatch set, the first tier holding any
// matching keyword wins regardless of keyword length.
type keywordTable struct {
	tiers      []tier
	fallback   float64
	firstMatch bool
}

func (t keywordTable) lookup(selector string) float64 {
	selector = strings.ToLower(selector)
	if t.firstMatch {
		for _, tr := range t.tiers {
			for _, kw := range tr.keywords {
				if strings.Contains(selector, kw) {
					return tr.value
				}
			}
		}
		return t.fallback
	}
	best, bestLen := t.fallback, -1
	for _, tr := range t.tiers {
		for _, kw := range tr.keywords {
			if len(kw) > bestLen && strings.Contains(selector, kw) {
				best, bestLen = tr.value, len(kw)
			}
		}
	}
	return best
}

var radiusTable = keywordTable{
	tiers: []tier{
		{[]string{"fab", "extended-fab"}, 28},
		{[]string{"bottom-sheet", "side-sheet", "navigation-drawer-modal"}, 16},
		{[]string{"card", "dialog"}, 12},
		{[]string{"bottom-sheet-header", "navigation-drawer"}, 8},
		{[]string{"chip", "helper", "menu", "tooltip-light", "snackbar"}, 4},
		{[]string{"time-picker", "menu-item", "tooltip-dark"}, 0},
	},
	fallback: 4,
}

var elevationTable = keywordTable{
	tiers: []tier{
		{[]string{"fab", "datepicker", "dialog", "search", "timepicker"}, 6},
		{[]string{"bottomappbar", "dropdown", "menu", "navigationbar", "topappbar", "tooltip"}, 3},
		{[]string{"chip", "banner", "sheet", "elevated", "lowered", "slider-handle"}, 1},
	},
	fallback:   0,
	firstMatch: true,
}

var fontSizeTable = keywordTable{
	tiers: []tier{
		{[]string{"headline", "headline-large"}, 32},
		{[]string{"headline-medium"}, 28},
		{[]string{"headline-small"}, 24},
		{[]string{"title", "title-large"}, 22},
		{[]string{"body", "body-large", "title-medium"}, 16},
		{[]string{"body-medium", "title-small"}, 14},
		{[]string{"caption", "body-small"}, 12},
		{[]string{"overline"}, 11},
	},
	fallback: 16,
}

var fontWeightTable = keywordTable{
	tiers: []tier{
		{[]string{"headline", "title", "button", "btn"}, 500},
	},
	fallback: 400,
}

// ExpectedRadius is the design-system corner radius in px for selector.
func ExpectedRadius(selector string) float64 { return radiusTable.lookup(selector) }

// ExpectedElevation is the design-system elevation in dp for selector.
func ExpectedElevation(selector string) float64 { return elevationTable.lookup(selector) }

// ExpectedFontSize is the type-scale font size in px for selector.
func ExpectedFontSize(selector string) float64 { return fontSizeTable.lookup(selector) }

// ExpectedFontWeight is 500 for headline/title/button selectors, else 400.
func ExpectedFontWeight(selector string) float64 { return fontWeightTable.lookup(selector) }
