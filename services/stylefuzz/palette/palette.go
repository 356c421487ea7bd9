// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package palette converts between hex colors, 8-bit RGB and HSV and
// computes the luminance/contrast figures the guideline scorers use.
package palette

import (
	"fmt"
	"math"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// RGB is an 8-bit sRGB color.
type RGB struct {
	R, G, B uint8
}

// HSV is a color in hue/saturation/value space. All channels are in [0,1];
// H is a fraction of a full turn, not degrees.
type HSV struct {
	H, S, V float64
}

// ParseHex parses "#rgb" or "#rrggbb" (case-insensitive).
//
// Outputs:
//   - RGB: The parsed color.
//   - error: Non-nil if s is not a hex color.
func ParseHex(s string) (RGB, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "#") {
		return RGB{}, fmt.Errorf("not a hex color: %q", s)
	}
	c, err := colorful.Hex(strings.ToLower(s))
	if err != nil {
		return RGB{}, fmt.Errorf("parse hex color %q: %w", s, err)
	}
	r, g, b := c.RGB255()
	return RGB{R: r, G: g, B: b}, nil
}

// IsHex reports whether s parses as a hex color.
func IsHex(s string) bool {
	_, err := ParseHex(s)
	return err == nil
}

// Hex renders c as 6-digit lowercase "#rrggbb".
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// HSV converts c to hue/saturation/value.
func (c RGB) HSV() HSV {
	h, s, v := c.color().Hsv()
	return HSV{H: h / 360.0, S: s, V: v}
}

// RGB converts h back to 8-bit sRGB, rounding each channel.
func (h HSV) RGB() RGB {
	hue := math.Mod(h.H, 1.0)
	if hue < 0 {
		hue += 1.0
	}
	c := colorful.Hsv(hue*360.0, clamp01(h.S), clamp01(h.V)).Clamped()
	r, g, b := c.RGB255()
	return RGB{R: r, G: g, B: b}
}

// RotateHue turns the hue by delta (fraction of a turn), wrapping into [0,1).
func (h HSV) RotateHue(delta float64) HSV {
	hue := math.Mod(h.H+delta, 1.0)
	if hue < 0 {
		hue += 1.0
	}
	return HSV{H: hue, S: h.S, V: h.V}
}

// WithValue returns h with its value channel replaced.
func (h HSV) WithValue(v float64) HSV {
	return HSV{H: h.H, S: h.S, V: v}
}

// Luminance is the weighted channel sum 0.2126R + 0.7152G + 0.0722B on
// channels normalized to [0,1].
func Luminance(c RGB) float64 {
	return 0.2126*float64(c.R)/255.0 + 0.7152*float64(c.G)/255.0 + 0.0722*float64(c.B)/255.0
}

// ContrastRatio returns (lighter+0.05)/(darker+0.05). It is symmetric and
// equals 1.0 for identical colors.
func ContrastRatio(a, b RGB) float64 {
	la, lb := Luminance(a), Luminance(b)
	lighter, darker := math.Max(la, lb), math.Min(la, lb)
	return (lighter + 0.05) / (darker + 0.05)
}

// HexContrastRatio parses both colors and returns their contrast ratio.
func HexContrastRatio(a, b string) (float64, error) {
	ca, err := ParseHex(a)
	if err != nil {
		return 0, err
	}
	cb, err := ParseHex(b)
	if err != nil {
		return 0, err
	}
	return ContrastRatio(ca, cb), nil
}

func (c RGB) color() colorful.Color {
	return colorful.Color{R: float64(c.R) / 255.0, G: float64(c.G) / 255.0, B: float64(c.B) / 255.0}
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
