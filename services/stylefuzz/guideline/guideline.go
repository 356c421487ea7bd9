// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package guideline scores a stylesheet against fixed visual-design rules.
//
// Every scorer is a pure function of its input document and returns a value
// in [0,1]. A document with no declarations relevant to a guideline scores
// the neutral 0.5; absence is not penalized.
package guideline

import (
	"github.com/AleutianAI/stylefuzz/services/stylefuzz/style"
)

// NeutralScore is returned when no declaration applies to a guideline.
const NeutralScore = 0.5

// Scores holds one compliance score per guideline dimension.
type Scores struct {
	Contrast   float64 `json:"contrast"`
	Radius     float64 `json:"radius"`
	Elevation  float64 `json:"elevation"`
	Typography float64 `json:"typography"`
}

// Mean is the unweighted arithmetic mean of the four scores.
func (s Scores) Mean() float64 {
	return (s.Contrast + s.Radius + s.Elevation + s.Typography) / 4.0
}

// Evaluate runs every scorer on doc.
func Evaluate(doc style.Document) Scores {
	return Scores{
		Contrast:   Contrast(doc),
		Radius:     BorderRadius(doc),
		Elevation:  Elevation(doc),
		Typography: Typography(doc),
	}
}

// runningMean accumulates scores; empty means NeutralScore.
type runningMean struct {
	sum float64
	n   int
}

func (m *runningMean) add(v float64) {
	m.sum += v
	m.n++
}

func (m *runningMean) value() float64 {
	if m.n == 0 {
		return NeutralScore
	}
	return m.sum / float64(m.n)
}
