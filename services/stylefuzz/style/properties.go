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

import "strings"

// Property name families the scorers and mutators act on. Matching is by
// substring, so "border-color" counts as a foreground color.
const (
	PropColor           = "color"
	PropBackgroundColor = "background-color"
	PropBorderRadius    = "border-radius"
	PropBoxShadow       = "box-shadow"
	PropFontSize        = "font-size"
	PropLineHeight      = "line-height"
	PropFontWeight      = "font-weight"
)

// IsColor reports whether name is any color property.
func IsColor(name string) bool {
	return strings.Contains(name, PropColor)
}

// IsBackgroundColor reports whether name is a background color.
func IsBackgroundColor(name string) bool {
	return strings.Contains(name, PropBackgroundColor)
}

// IsForegroundColor reports whether name is a color but not a background.
func IsForegroundColor(name string) bool {
	return IsColor(name) && !IsBackgroundColor(name)
}

// ColorPair returns the last foreground and last background color values
// declared in decls. Either may be empty.
func ColorPair(decls []Declaration) (fg, bg string) {
	for _, d := range decls {
		switch {
		case IsBackgroundColor(d.Name):
			bg = d.Value
		case IsForegroundColor(d.Name):
			fg = d.Value
		}
	}
	return fg, bg
}

// FontWeight returns the numeric weight for value, mapping the "normal"
// and "bold" keywords to 400 and 700. Other values go through
// ExtractNumber.
func FontWeight(value string) float64 {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "normal":
		return 400
	case "bold":
		return 700
	}
	return ExtractNumber(value)
}
