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

	"github.com/AleutianAI/stylefuzz/services/stylefuzz/palette"
	"github.com/AleutianAI/stylefuzz/services/stylefuzz/style"
)

// Contrast averages a WCAG-aligned score over every selector that declares
// both a hex foreground and a hex background color. Selectors with a
// missing or non-hex color are skipped.
func Contrast(doc style.Document) float64 {
	var m runningMean
	doc.Each(func(_ string, decls []style.Declaration) {
		fg, bg := style.ColorPair(decls)
		ratio, ok := pairContrast(fg, bg)
		if !ok {
			return
		}
		m.add(contrastScore(ratio))
	})
	return m.value()
}

// contrastScore maps a contrast ratio onto the guideline scale.
func contrastScore(ratio float64) float64 {
	switch {
	case ratio >= 7.0:
		return 1.0
	case ratio >= 4.5:
		return 0.8
	case ratio >= 3.0:
		return 0.6
	default:
		return 0.2
	}
}

func pairContrast(fg, bg string) (float64, bool) {
	if !strings.HasPrefix(fg, "#") || !strings.HasPrefix(bg, "#") {
		return 0, false
	}
	ratio, err := palette.HexContrastRatio(fg, bg)
	if err != nil {
		return 0, false
	}
	return ratio, true
}

// BorderRadius averages a deviation score over every border-radius
// declaration, comparing against the selector's expected radius.
func BorderRadius(doc style.Document) float64 {
	var m runningMean
	doc.Each(func(selector string, decls []style.Declaration) {
		for _, d := range decls {
			if !strings.Contains(d.Name, style.PropBorderRadius) {
				continue
			}
			deviation := math.Abs(style.ExtractNumber(d.Value) - ExpectedRadius(selector))
			m.add(radiusScore(deviation))
		}
	})
	return m.value()
}

func radiusScore(deviation float64) float64 {
	switch {
	case deviation == 0:
		return 1.0
	case deviation <= 2:
		return 0.8
	case deviation <= 4:
		return 0.6
	case deviation <= 8:
		return 0.3
	default:
		return math.Max(0.1, math.Exp(-deviation))
	}
}

// ElevationDP is the maximum numeric token in a box-shadow value, or 0.
func ElevationDP(shadow string) float64 {
	tokens := style.NumericTokens(shadow)
	if len(tokens) == 0 {
		return 0
	}
	best := tokens[0]
	for _, v := range tokens[1:] {
		best = math.Max(best, v)
	}
	return best
}

// Elevation averages a deviation score over every box-shadow declaration.
func Elevation(doc style.Document) float64 {
	var m runningMean
	doc.Each(func(selector string, decls []style.Declaration) {
		for _, d := range decls {
			if !strings.Contains(d.Name, style.PropBoxShadow) {
				continue
			}
			deviation := math.Abs(ElevationDP(d.Value) - ExpectedElevation(selector))
			m.add(elevationScore(deviation))
		}
	})
	return m.value()
}

func elevationScore(deviation float64) float64 {
	switch {
	case deviation <= 0.5:
		return 1.0
	case deviation <= 1:
		return 0.8
	case deviation <= 2:
		return 0.5
	case deviation <= 3:
		return 0.2
	default:
		return math.Max(0.1, math.Exp(-deviation))
	}
}
