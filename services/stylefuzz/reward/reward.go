// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package reward combines guideline compliance, mutation diversity and
// resource coverage into the scalar the agent learns from.
package reward

import (
	"math"
	"math/rand"

	"github.com/AleutianAI/stylefuzz/services/stylefuzz/guideline"
	"github.com/AleutianAI/stylefuzz/services/stylefuzz/mutation"
	"github.com/AleutianAI/stylefuzz/services/stylefuzz/resource"
	"github.com/AleutianAI/stylefuzz/services/stylefuzz/style"
)

// ShannonDiversity is the base-2 entropy of the value frequencies in
// values. Empty input yields 0.
func ShannonDiversity(values []string) float64 {
	if len(values) == 0 {
		return 0
	}
	counts := make(map[string]int, len(values))
	order := make([]string, 0, len(values))
	for _, v := range values {
		if counts[v] == 0 {
			order = append(order, v)
		}
		counts[v]++
	}
	// Sum in first-seen order so equal inputs give bit-identical results.
	total := float64(len(values))
	var h float64
	for _, v := range order {
		p := float64(counts[v]) / total
		h -= p * math.Log2(p)
	}
	return h
}

// CoverageSource reports resource pool coverage.
type CoverageSource interface {
	CoverageStats() resource.Stats
}

// Breakdown records every component of one reward evaluation.
type Breakdown struct {
	Guideline     guideline.Scores `json:"guideline"`
	Diversity     float64          `json:"diversity"`
	Resource      float64          `json:"resource"`
	UsedDiversity bool             `json:"used_diversity"`
	Total         float64          `json:"total"`
}

// Composer computes rewards for one run.
//
// Description:
//
//	Each evaluation draws one uniform number. Below DiversityWeight the
//	guideline term is replaced by the diversity term. Resource coverage is
//	always added on top, so the reward is stochastic for a fixed document.
//
// Thread Safety: Not safe for concurrent use.
type Composer struct {
	diversityWeight float64
	dimensions      []mutation.Dimension
	history         *mutation.History
	coverage        CoverageSource
	rng             *rand.Rand
}

// NewComposer creates a Composer.
//
// Inputs:
//
//	diversityWeight - Probability in [0,1] of scoring diversity instead of
//	  guideline compliance.
//	dimensions - History dimensions averaged for diversity. Nil means all.
//	history - The run's mutation history.
//	coverage - Resource coverage source.
//	rng - Random source for the per-evaluation draw.
func NewComposer(diversityWeight float64, dimensions []mutation.Dimension, history *mutation.History, coverage CoverageSource, rng *rand.Rand) *Composer {
	if dimensions == nil {
		dimensions = mutation.Dimensions
	}
	return &Composer{
		diversityWeight: diversityWeight,
		dimensions:      dimensions,
		history:         history,
		coverage:        coverage,
		rng:             rng,
	}
}

// Diversity is the mean Shannon diversity over the configured dimensions.
func (c *Composer) Diversity() float64 {
	if len(c.dimensions) == 0 {
		return 0
	}
	var sum float64
	for _, d := range c.dimensions {
		sum += ShannonDiversity(c.history.Values(d))
	}
	return sum / float64(len(c.dimensions))
}

// Evaluate scores doc.
func (c *Composer) Evaluate(doc style.Document) Breakdown {
	b := Breakdown{
		Guideline: guideline.Evaluate(doc),
		Diversity: c.Diversity(),
		Resource:  c.coverage.CoverageStats().Mean(),
	}
	b.UsedDiversity = c.rng.Float64() < c.diversityWeight
	if b.UsedDiversity {
		b.Total = b.Diversity + b.Resource
	} else {
		b.Total = b.Guideline.Mean() + b.Resource
	}
	return b
}
