// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package agent

import (
	"fmt"
	"strings"

	"github.com/AleutianAI/stylefuzz/services/stylefuzz/palette"
	"github.com/AleutianAI/stylefuzz/services/stylefuzz/style"
)

// Feature families tracked in the state key.
const (
	FeatureContrast   = "contrast"
	FeatureRadius     = "radius"
	FeatureTypography = "typography"
)

const (
	maxChangeBucket = 2
	maxAvgBucket    = 4
	avgBucketWidth  = 20.0
)

// featureFunc extracts a per-selector value; ok is false when the selector
// has nothing to report.
type featureFunc func(decls []style.Declaration) (float64, bool)

type feature struct {
	name    string
	extract featureFunc
}

// Discretizer turns a style document into a compact state key.
//
// Description:
//
//	For each feature family it counts selectors whose value rose or fell
//	relative to the last recorded document and buckets the summed value.
//	The key has the form "contrast_000|radius_010".
//
// Thread Safety: Not safe for concurrent use.
type Discretizer struct {
	features []feature
	previous map[string]map[string]float64
}

// NewDiscretizer creates a Discretizer. With typography true the font-size
// family is included.
func NewDiscretizer(typography bool) *Discretizer {
	fs := []feature{
		{FeatureContrast, contrastFeature},
		{FeatureRadius, radiusFeature},
	}
	if typography {
		fs = append(fs, feature{FeatureTypography, fontSizeFeature})
	}
	prev := make(map[string]map[string]float64, len(fs))
	for _, f := range fs {
		prev[f.name] = make(map[string]float64)
	}
	return &Discretizer{features: fs, previous: prev}
}

// Key returns the state key for doc.
func (d *Discretizer) Key(doc style.Document) string {
	parts := make([]string, 0, len(d.features))
	for _, f := range d.features {
		var inc, dec int
		var sum float64
		prev := d.previous[f.name]
		doc.Each(func(selector string, decls []style.Declaration) {
			v, ok := f.extract(decls)
			if !ok {
				return
			}
			if p, seen := prev[selector]; seen {
				switch {
				case v > p:
					inc++
				case v < p:
					dec++
				}
			}
			sum += v
		})
		avg := 0
		if sum > 0 {
			avg = min(maxAvgBucket, int(sum/avgBucketWidth))
		}
		parts = append(parts, fmt.Sprintf("%s_%d%d%d", f.name,
			min(maxChangeBucket, inc/2), min(maxChangeBucket, dec/2), avg))
	}
	return strings.Join(parts, "|")
}

// Record stores doc's per-selector values as the comparison baseline for
// later keys.
func (d *Discretizer) Record(doc style.Document) {
	for _, f := range d.features {
		prev := d.previous[f.name]
		doc.Each(func(selector string, decls []style.Declaration) {
			if v, ok := f.extract(decls); ok {
				prev[selector] = v
			}
		})
	}
}

func contrastFeature(decls []style.Declaration) (float64, bool) {
	fg, bg := style.ColorPair(decls)
	ratio, err := palette.HexContrastRatio(fg, bg)
	if err != nil {
		return 0, false
	}
	return ratio, true
}

func radiusFeature(decls []style.Declaration) (float64, bool) {
	return lastNumeric(decls, style.PropBorderRadius)
}

func fontSizeFeature(decls []style.Declaration) (float64, bool) {
	return lastNumeric(decls, style.PropFontSize)
}

func lastNumeric(decls []style.Declaration, prop string) (float64, bool) {
	var v float64
	found := false
	for _, d := range decls {
		if strings.Contains(d.Name, prop) {
			v, found = style.ExtractNumber(d.Value), true
		}
	}
	return v, found
}
