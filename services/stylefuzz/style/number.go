// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package style

import (
	"regexp"
	"strconv"
	"strings"
)

var numericToken = regexp.MustCompile(`-?\d*\.?\d+`)

// ExtractNumber concatenates every digit and '.' in value and parses the
// result. It returns 0.0 when nothing parses; 0.0 is a valid outcome, not a
// sentinel, so "-3px" yields 3 and "1.2.3" yields 0.
func ExtractNumber(value string) float64 {
	var b strings.Builder
	for _, c := range value {
		if (c >= '0' && c <= '9') || c == '.' {
			b.WriteRune(c)
		}
	}
	f, err := strconv.ParseFloat(b.String(), 64)
	if err != nil {
		return 0.0
	}
	return f
}

// NumericTokens returns every signed number that appears in value, in order.
// "0 2px 4.5px rgba(0,0,0,.2)" yields [0 2 4.5 0 0 0 .2].
func NumericTokens(value string) []float64 {
	matches := numericToken.FindAllString(value, -1)
	out := make([]float64, 0, len(matches))
	for _, m := range matches {
		f, err := strconv.ParseFloat(m, 64)
		if err != nil {
			continue
		}
		out = append(out, f)
	}
	return out
}
