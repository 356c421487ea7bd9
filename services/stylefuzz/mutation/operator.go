// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package mutation transforms style documents one property family at a time
// and records every produced value in a run-owned History.
package mutation

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"

	"github.com/AleutianAI/stylefuzz/services/stylefuzz/palette"
	"github.com/AleutianAI/stylefuzz/services/stylefuzz/style"
)

// ErrUnknownKind is returned by Apply for a Kind it does not implement.
var ErrUnknownKind = errors.New("unknown mutation kind")

// Kind identifies one style mutation.
type Kind string

const (
	IncreaseContrast    Kind = "increase_contrast"
	DecreaseContrast    Kind = "decrease_contrast"
	Complementary       Kind = "complementary"
	RandomizeColors     Kind = "random"
	IncreaseElevation   Kind = "increase_elevation"
	DecreaseElevation   Kind = "decrease_elevation"
	IncreaseRadius      Kind = "increase_radius"
	DecreaseRadius      Kind = "decrease_radius"
	IncreaseFontSize    Kind = "increase_font_size"
	DecreaseFontSize    Kind = "decrease_font_size"
	IncreaseLineHeight  Kind = "increase_line_height"
	DecreaseLineHeight  Kind = "decrease_line_height"
	IncreaseFontWeight  Kind = "increase_font_weight"
	DecreaseFontWeight  Kind = "decrease_font_weight"
	RandomizeTypography Kind = "random_typography"
)

// Scale factors and ladders used by the mutators.
const (
	contrastPush    = 1.2
	contrastPull    = 0.8
	shapeGrow       = 1.2
	shapeShrink     = 0.8
	typeGrow        = 1.1
	typeShrink      = 0.9
	fontWeightStep  = 100
	minFontWeight   = 100
	maxFontWeight   = 900
	shadowLengths   = 3
	randomSatLow    = 0.3
	randomSatHigh   = 0.7
	randomValueLow  = 0.3
	randomValueHigh = 0.9
)

var (
	fontSizeLadder   = []int{12, 14, 16, 18, 20, 24, 28, 32, 36}
	lineHeightLadder = []float64{1.2, 1.3, 1.4, 1.5, 1.6}
	fontWeightLadder = []int{300, 400, 500, 600, 700}
)

// Operator applies style mutations.
//
// Description:
//
//	Every mutation returns a new Document; the input is never modified.
//	Produced values are appended to the History supplied at construction.
//	Randomized mutations draw from the injected generator so that a run is
//	reproducible from its seed.
//
// Thread Safety: Not safe for concurrent use. Each run owns its Operator.
type Operator struct {
	rng     *rand.Rand
	history *History
}

// NewOperator creates an Operator.
//
// Inputs:
//
//	rng - Random source for randomized mutations. Must not be nil.
//	history - Run-owned history. Must not be nil.
//
// Outputs:
//
//	*Operator - Ready to use.
func NewOperator(rng *rand.Rand, history *History) *Operator {
	return &Operator{rng: rng, history: history}
}

// History returns the history this operator appends to.
func (o *Operator) History() *History {
	return o.history
}

// Apply dispatches kind to the matching mutation.
func (o *Operator) Apply(doc style.Document, kind Kind) (style.Document, error) {
	switch kind {
	case IncreaseContrast:
		return o.Contrast(doc, true), nil
	case DecreaseContrast:
		return o.Contrast(doc, false), nil
	case Complementary:
		return o.Complementary(doc), nil
	case RandomizeColors:
		return o.RandomizeColors(doc), nil
	case IncreaseElevation:
		return o.Elevation(doc, true), nil
	case DecreaseElevation:
		return o.Elevation(doc, false), nil
	case IncreaseRadius:
		return o.BorderRadius(doc, true), nil
	case DecreaseRadius:
		return o.BorderRadius(doc, false), nil
	case IncreaseFontSize:
		return o.FontSize(doc, true), nil
	case DecreaseFontSize:
		return o.FontSize(doc, false), nil
	case IncreaseLineHeight:
		return o.LineHeight(doc, true), nil
	case DecreaseLineHeight:
		return o.LineHeight(doc, false), nil
	case IncreaseFontWeight:
		return o.FontWeight(doc, true), nil
	case DecreaseFontWeight:
		return o.FontWeight(doc, false), nil
	case RandomizeTypography:
		return o.RandomizeTypography(doc), nil
	}
	return doc, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
}

// Contrast pushes a selector's foreground and background value channels
// apart (increase) or pulls both toward 0.5 (decrease).
//
// Only selectors declaring a hex foreground and a hex background are
// touched. The new colors are written to every foreground and background
// declaration of that selector.
func (o *Operator) Contrast(doc style.Document, increase bool) style.Document {
	out := doc
	doc.Each(func(selector string, decls []style.Declaration) {
		fgHex, bgHex := style.ColorPair(decls)
		fg, err := palette.ParseHex(fgHex)
		if err != nil {
			return
		}
		bg, err := palette.ParseHex(bgHex)
		if err != nil {
			return
		}
		fgHSV, bgHSV := fg.HSV(), bg.HSV()
		switch {
		case !increase:
			fgHSV = fgHSV.WithValue((fgHSV.V + 0.5) / 2)
			bgHSV = bgHSV.WithValue((bgHSV.V + 0.5) / 2)
		case bgHSV.V > fgHSV.V:
			bgHSV = bgHSV.WithValue(bgHSV.V * contrastPush)
			fgHSV = fgHSV.WithValue(fgHSV.V * contrastPull)
		default:
			bgHSV = bgHSV.WithValue(bgHSV.V * contrastPull)
			fgHSV = fgHSV.WithValue(fgHSV.V * contrastPush)
		}
		newFG, newBG := fgHSV.RGB().Hex(), bgHSV.RGB().Hex()

		updated := make([]style.Declaration, len(decls))
		for i, d := range decls {
			switch {
			case style.IsBackgroundColor(d.Name):
				d.Value = newBG
				o.history.Record(DimColor, newBG)
			case style.IsForegroundColor(d.Name):
				d.Value = newFG
				o.history.Record(DimColor, newFG)
			}
			updated[i] = d
		}
		out = out.WithDeclarations(selector, updated)
	})
	return out
}

// Complementary rotates the hue of every hex color declaration by half a
// turn.
func (o *Operator) Complementary(doc style.Document) style.Document {
	return doc.Map(func(_ string, d style.Declaration) (style.Declaration, bool) {
		if !style.IsColor(d.Name) {
			return d, false
		}
		c, err := palette.ParseHex(d.Value)
		if err != nil {
			return d, false
		}
		d.Value = c.HSV().RotateHue(0.5).RGB().Hex()
		o.history.Record(DimColor, d.Value)
		return d, true
	})
}

// RandomizeColors replaces every color declaration with a random color of
// moderate saturation and value.
func (o *Operator) RandomizeColors(doc style.Document) style.Document {
	return doc.Map(func(_ string, d style.Declaration) (style.Declaration, bool) {
		if !style.IsColor(d.Name) {
			return d, false
		}
		hsv := palette.HSV{
			H: o.rng.Float64(),
			S: o.uniform(randomSatLow, randomSatHigh),
			V: o.uniform(randomValueLow, randomValueHigh),
		}
		d.Value = hsv.RGB().Hex()
		o.history.Record(DimColor, d.Value)
		return d, true
	})
}

// Elevation scales every number in each box-shadow and re-renders it as
// three pixel lengths. Spread and color are dropped.
func (o *Operator) Elevation(doc style.Document, increase bool) style.Document {
	factor := pick(increase, shapeGrow, shapeShrink)
	return doc.Map(func(_ string, d style.Declaration) (style.Declaration, bool) {
		if !strings.Contains(d.Name, style.PropBoxShadow) {
			return d, false
		}
		tokens := style.NumericTokens(d.Value)
		if len(tokens) == 0 {
			return d, false
		}
		lengths := make([]string, shadowLengths)
		for i := range lengths {
			var v float64
			if i < len(tokens) {
				v = tokens[i] * factor
			}
			lengths[i] = fmt.Sprintf("%dpx", int(v))
		}
		d.Value = strings.Join(lengths, " ")
		o.history.Record(DimShadow, d.Value)
		return d, true
	})
}

// BorderRadius scales every non-zero border-radius, truncating to whole
// pixels.
func (o *Operator) BorderRadius(doc style.Document, increase bool) style.Document {
	factor := pick(increase, shapeGrow, shapeShrink)
	return doc.Map(func(_ string, d style.Declaration) (style.Declaration, bool) {
		if !strings.Contains(d.Name, style.PropBorderRadius) {
			return d, false
		}
		radius := style.ExtractNumber(d.Value)
		if radius == 0 {
			return d, false
		}
		px := int(radius * factor)
		d.Value = fmt.Sprintf("%dpx", px)
		o.history.Record(DimRadius, fmt.Sprint(px))
		return d, true
	})
}

// FontSize scales every non-zero font-size by 1.1 or 0.9.
func (o *Operator) FontSize(doc style.Document, increase bool) style.Document {
	factor := pick(increase, typeGrow, typeShrink)
	return doc.Map(func(_ string, d style.Declaration) (style.Declaration, bool) {
		if !strings.Contains(d.Name, style.PropFontSize) {
			return d, false
		}
		size := style.ExtractNumber(d.Value)
		if size == 0 {
			return d, false
		}
		d.Value = fmt.Sprintf("%dpx", int(size*factor))
		o.history.Record(DimFontSize, d.Value)
		return d, true
	})
}

// LineHeight scales every non-zero line-height by 1.1 or 0.9 and renders
// it with one decimal place. A px unit on the input is kept.
func (o *Operator) LineHeight(doc style.Document, increase bool) style.Document {
	factor := pick(increase, typeGrow, typeShrink)
	return doc.Map(func(_ string, d style.Declaration) (style.Declaration, bool) {
		if !strings.Contains(d.Name, style.PropLineHeight) {
			return d, false
		}
		lh := style.ExtractNumber(d.Value)
		if lh == 0 {
			return d, false
		}
		unit := ""
		if strings.HasSuffix(strings.TrimSpace(d.Value), "px") {
			unit = "px"
		}
		d.Value = fmt.Sprintf("%.1f%s", lh*factor, unit)
		o.history.Record(DimLineHeight, d.Value)
		return d, true
	})
}

// FontWeight steps every numeric font-weight by 100 within [100,900].
func (o *Operator) FontWeight(doc style.Document, increase bool) style.Document {
	step := fontWeightStep
	if !increase {
		step = -step
	}
	return doc.Map(func(_ string, d style.Declaration) (style.Declaration, bool) {
		if !strings.Contains(d.Name, style.PropFontWeight) {
			return d, false
		}
		weight := int(style.FontWeight(d.Value))
		if weight == 0 {
			return d, false
		}
		weight = min(maxFontWeight, max(minFontWeight, weight+step))
		d.Value = fmt.Sprint(weight)
		o.history.Record(DimFontWeight, d.Value)
		return d, true
	})
}

// RandomizeTypography resamples every font-size, line-height and
// font-weight from fixed ladders.
func (o *Operator) RandomizeTypography(doc style.Document) style.Document {
	return doc.Map(func(_ string, d style.Declaration) (style.Declaration, bool) {
		switch {
		case strings.Contains(d.Name, style.PropFontSize):
			d.Value = fmt.Sprintf("%dpx", fontSizeLadder[o.rng.Intn(len(fontSizeLadder))])
			o.history.Record(DimFontSize, d.Value)
		case strings.Contains(d.Name, style.PropLineHeight):
			d.Value = fmt.Sprintf("%.1f", lineHeightLadder[o.rng.Intn(len(lineHeightLadder))])
			o.history.Record(DimLineHeight, d.Value)
		case strings.Contains(d.Name, style.PropFontWeight):
			d.Value = fmt.Sprint(fontWeightLadder[o.rng.Intn(len(fontWeightLadder))])
			o.history.Record(DimFontWeight, d.Value)
		default:
			return d, false
		}
		return d, true
	})
}

func (o *Operator) uniform(lo, hi float64) float64 {
	return lo + (hi-lo)*o.rng.Float64()
}

func pick(cond bool, a, b float64) float64 {
	if cond {
		return a
	}
	return b
}
