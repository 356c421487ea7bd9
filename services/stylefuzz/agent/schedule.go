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

import "math"

// Schedule is an adaptive epsilon-greedy exploration schedule.
//
// Description:
//
//	The schedule keeps the best reward of each of the last WindowSize
//	episodes. Once the window is full it compares the newer half's mean
//	with the older half's. An improving trend (more than TrendThreshold)
//	makes the per-episode decay 1.5x stronger, a declining trend halves it,
//	and a flat trend restores the base decay. The adjustment always acts
//	on the amount removed from epsilon, so epsilon never increases.
//
// Thread Safety: Not safe for concurrent use.
type Schedule struct {
	epsilon    float64
	minEpsilon float64
	baseAmount float64
	amount     float64
	threshold  float64
	size       int
	window     []float64
}

// NewSchedule creates a Schedule.
//
// Inputs:
//
//	epsilon - Starting exploration rate.
//	minEpsilon - Floor for epsilon.
//	decay - Base multiplicative decay, e.g. 0.995.
//	windowSize - Episodes in the trend window.
//	threshold - Relative change treated as a trend, e.g. 0.05.
func NewSchedule(epsilon, minEpsilon, decay float64, windowSize int, threshold float64) *Schedule {
	amount := 1 - decay
	return &Schedule{
		epsilon:    math.Max(minEpsilon, epsilon),
		minEpsilon: minEpsilon,
		baseAmount: amount,
		amount:     amount,
		threshold:  threshold,
		size:       windowSize,
		window:     make([]float64, 0, windowSize),
	}
}

// Epsilon returns the current exploration rate.
func (s *Schedule) Epsilon() float64 { return s.epsilon }

// DecayRate returns the multiplier applied at the last episode end.
func (s *Schedule) DecayRate() float64 { return 1 - s.amount }

// WindowMean returns the mean of the rewards currently in the window.
func (s *Schedule) WindowMean() float64 {
	return mean(s.window)
}

// EndEpisode records the episode's best reward, adapts the decay and
// decays epsilon once.
func (s *Schedule) EndEpisode(episodeBest float64) float64 {
	if s.size > 0 {
		if len(s.window) == s.size {
			copy(s.window, s.window[1:])
			s.window = s.window[:s.size-1]
		}
		s.window = append(s.window, episodeBest)
		if len(s.window) == s.size {
			s.adapt()
		}
	}
	s.epsilon = math.Max(s.minEpsilon, s.epsilon*(1-s.amount))
	return s.epsilon
}

func (s *Schedule) adapt() {
	half := len(s.window) / 2
	older, newer := mean(s.window[:half]), mean(s.window[half:])
	switch {
	case newer > older*(1+s.threshold):
		s.amount = math.Min(1, s.baseAmount*1.5)
	case newer < older*(1-s.threshold):
		s.amount = s.baseAmount * 0.5
	default:
		s.amount = s.baseAmount
	}
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}
