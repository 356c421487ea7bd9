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
	"strings"

	"github.com/AleutianAI/stylefuzz/services/stylefuzz/style"
)

// band is an upper deviation bound and the score awarded within it.
type band struct {
	limit float64
	score float64
}

var (
	fontSizeBands   = []band{{1, 1.0}, {2, 0.8}, {4, 0.5}}
	lineHeightBands = []band{{2, 1.0}, {4, 0.8}, {6, 0.5}}
	fontWeightBands = []band{{50, 1.0}, {100, 0.8}, {200, 0.5}}
)

const typographyFloor = 0.2

// unitlessLineHeightLimit separates multipliers ("1.5") from lengths ("24").
const unitlessLineHeightLimit = 4.0

func bandScore(bands []band, deviation float64) float64 {
	for _, b := range bands {
		if deviation <= b.limit {
			return b.score
		}
	}
	return math.Max(typographyFloor, math.Exp(-deviation))
}

// Typography scores font-size, line-height and font-weight against the
// type scale. Every sub-score feeds one running average.
//
// Expected line-height is 1.5x the selector's font size (declared size when
// present, else the expected size). Unitless line-heights below 4 are read
// as multipliers of that font size.
func Typography(doc style.Document) float64 {
	var m runningMean
	doc.Each(func(selector string, decls []style.Declaration) {
		var (
			size, lineHeight, weight          float64
			hasSize, hasLineHeight, hasWeight bool
			lineHeightUnitless                bool
		)
		for _, d := range decls {
			switch {
			case strings.Contains(d.Name, style.PropFontSize):
				size, hasSize = style.ExtractNumber(d.Value), true
			case strings.Contains(d.Name, style.PropLineHeight):
				lineHeight, hasLineHeight = style.ExtractNumber(d.Value), true
				lineHeightUnitless = isUnitless(d.Value) && lineHeight < unitlessLineHeightLimit
			case strings.Contains(d.Name, style.PropFontWeight):
				weight, hasWeight = style.FontWeight(d.Value), true
			}
		}

		expectedSize := ExpectedFontSize(selector)
		if hasSize {
			m.add(bandScore(fontSizeBands, math.Abs(size-expectedSize)))
		}
		if hasLineHeight {
			base := expectedSize
			if hasSize {
				base = size
			}
			if lineHeightUnitless {
				lineHeight *= base
			}
			m.add(bandScore(lineHeightBands, math.Abs(lineHeight-1.5*base)))
		}
		if hasWeight {
			m.add(bandScore(fontWeightBands, math.Abs(weight-ExpectedFontWeight(selector))))
		}
	})
	return m.value()
}

func isUnitless(value string) bool {
	v := strings.TrimSpace(value)
	if v == "" {
		return false
	}
	for _, c := range v {
		if (c < '0' || c > '9') && c != '.' {
			return false
		}
	}
	return true
}
