// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package search

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/AleutianAI/stylefuzz/services/stylefuzz/agent"
)

// knownCategories bounds the category label to the action catalog.
var knownCategories = map[agent.Category]bool{
	agent.CategoryColor:        true,
	agent.CategoryElevation:    true,
	agent.CategoryBorderRadius: true,
	agent.CategoryTypography:   true,
	agent.CategoryIcon:         true,
	agent.CategoryImage:        true,
}

func sanitizeCategory(c agent.Category) string {
	if knownCategories[c] {
		return string(c)
	}
	return "unknown"
}

var (
	// stepsTotal counts search steps.
	//
	// Labels:
	//   - category: Action category of the step.
	//   - outcome: "accepted" or "rejected".
	stepsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "stylefuzz",
			Subsystem: "search",
			Name:      "steps_total",
			Help:      "Total search steps by action category and outcome",
		},
		[]string{"category", "outcome"},
	)

	episodesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "stylefuzz",
			Subsystem: "search",
			Name:      "episodes_total",
			Help:      "Total completed search episodes",
		},
	)

	improvementsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "stylefuzz",
			Subsystem: "search",
			Name:      "improvements_total",
			Help:      "Total strict improvements of the all-time best reward",
		},
	)

	stepReward = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "stylefuzz",
			Subsystem: "search",
			Name:      "step_reward",
			Help:      "Reward of each proposed variant",
			Buckets:   prometheus.LinearBuckets(0, 0.25, 12),
		},
	)

	bestReward = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "stylefuzz",
			Subsystem: "search",
			Name:      "best_reward",
			Help:      "All-time best reward of the most recent run",
		},
	)

	epsilonGauge = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "stylefuzz",
			Subsystem: "search",
			Name:      "epsilon",
			Help:      "Current exploration rate",
		},
	)

	// persistErrorsTotal counts failed variant saves.
	//
	// Labels:
	//   - kind: "best" or "checkpoint".
	persistErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "stylefuzz",
			Subsystem: "search",
			Name:      "persist_errors_total",
			Help:      "Total failed variant saves by kind",
		},
		[]string{"kind"},
	)
)

func recordStep(c agent.Category, accepted bool, reward float64) {
	outcome := "rejected"
	if accepted {
		outcome = "accepted"
	}
	stepsTotal.WithLabelValues(sanitizeCategory(c), outcome).Inc()
	stepReward.Observe(reward)
}
