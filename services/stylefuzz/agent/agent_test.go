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
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/stylefuzz/services/stylefuzz/mutation"
	"github.com/AleutianAI/stylefuzz/services/stylefuzz/style"
)

func TestCatalog(t *testing.T) {
	full := NewCatalog(true)
	assert.Equal(t, []Category{
		CategoryColor, CategoryElevation, CategoryBorderRadius,
		CategoryTypography, CategoryIcon, CategoryImage,
	}, full.Categories())
	assert.Len(t, full.All(), 4+2+2+7+1+1)
	assert.Len(t, full.Dimensions(), 6)

	reduced := NewCatalog(false)
	assert.Nil(t, reduced.Actions(CategoryTypography))
	assert.Len(t, reduced.Dimensions(), 3)

	keys := map[string]bool{}
	for _, a := range full.All() {
		assert.False(t, keys[a.Key()], "duplicate key %s", a.Key())
		keys[a.Key()] = true
		assert.Equal(t, a.IsResource(), a.Kind == "")
	}
	assert.True(t, keys["elevation:increase"])
	assert.True(t, keys["border_radius:increase"])
}

func TestUpdate_FromZero(t *testing.T) {
	a := New(DefaultConfig(), rand.New(rand.NewSource(1)))
	act := a.Catalog().Actions(CategoryColor)[0]
	for _, r := range []float64{1.0, 0.37, 2.5} {
		a := New(DefaultConfig(), rand.New(rand.NewSource(1)))
		q := a.Update("s", act, r, "s2")
		assert.Equal(t, 0.1*r, q)
		assert.Equal(t, 0.1*r, a.Table().Get("s", act.Key()))
		assert.Equal(t, 1, a.Updates())
	}
	assert.Equal(t, 0.0, a.Table().Get("s", act.Key()))
	assert.Equal(t, 0, a.Updates())
}

func TestUpdate_BootstrapsAcrossCategories(t *testing.T) {
	a := New(DefaultConfig(), rand.New(rand.NewSource(1)))
	icon := a.Catalog().Actions(CategoryIcon)[0]
	color := a.Catalog().Actions(CategoryColor)[0]
	a.Table().Set("next", icon.Key(), 10)

	q := a.Update("s", color, 0, "next")
	assert.InDelta(t, 0.1*0.9*10, q, 1e-12)
}

func TestSelectAction_GreedyAndTies(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Epsilon, cfg.EpsilonMin = 0, 0
	a := New(cfg, rand.New(rand.NewSource(1)))

	assert.Equal(t, "increase_contrast", a.SelectAction("s", CategoryColor).Name)

	a.Table().Set("s", "color:complementary", 0.5)
	assert.Equal(t, "complementary", a.SelectAction("s", CategoryColor).Name)

	a.Table().Set("s", "color:random", 0.5)
	assert.Equal(t, "complementary", a.SelectAction("s", CategoryColor).Name)
}

func TestChoose_StaysInCatalog(t *testing.T) {
	a := New(DefaultConfig(), rand.New(rand.NewSource(9)))
	seen := map[Category]bool{}
	for i := 0; i < 500; i++ {
		act := a.Choose("s")
		require.Contains(t, a.Catalog().Actions(act.Category), act)
		seen[act.Category] = true
	}
	assert.Len(t, seen, len(a.Catalog().Categories()))
}

func TestSchedule_NeverRisesNorUndershoots(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	s := NewSchedule(1.0, 0.01, 0.995, 10, 0.05)
	prev := s.Epsilon()
	for ep := 0; ep < 3000; ep++ {
		var r float64
		switch {
		case ep%300 < 100:
			r = float64(ep % 300)
		case ep%300 < 200:
			r = float64(300 - ep%300)
		default:
			r = rng.Float64()
		}
		eps := s.EndEpisode(r)
		require.LessOrEqual(t, eps, prev)
		require.GreaterOrEqual(t, eps, 0.01)
		prev = eps
	}
	assert.Equal(t, 0.01, s.Epsilon())
}

func TestSchedule_Adapts(t *testing.T) {
	s := NewSchedule(1.0, 0.01, 0.995, 4, 0.05)
	for _, r := range []float64{1, 1, 1} {
		s.EndEpisode(r)
		assert.InDelta(t, 0.995, s.DecayRate(), 1e-12)
	}
	s.EndEpisode(1)
	assert.InDelta(t, 0.995, s.DecayRate(), 1e-12)

	s.EndEpisode(2)
	s.EndEpisode(2)
	assert.InDelta(t, 1-0.0075, s.DecayRate(), 1e-12)

	for _, r := range []float64{1, 1, 0.1, 0.1} {
		s.EndEpisode(r)
	}
	assert.InDelta(t, 1-0.0025, s.DecayRate(), 1e-12)
}

func TestDiscretizer(t *testing.T) {
	doc := func(fg, radius string) style.Document {
		return style.NewDocument(
			style.Rule{Selector: ".a", Declarations: []style.Declaration{
				{Name: "color", Value: fg},
				{Name: "background-color", Value: "#ffffff"},
				{Name: "border-radius", Value: radius},
			}},
			style.Rule{Selector: ".b", Declarations: []style.Declaration{
				{Name: "color", Value: fg},
				{Name: "background-color", Value: "#ffffff"},
				{Name: "border-radius", Value: radius},
			}},
		)
	}

	d := NewDiscretizer(false)
	start := doc("#000000", "4px")
	// Two selectors at 21:1 contrast sum to 42, bucket 2.
	assert.Equal(t, "contrast_002|radius_000", d.Key(start))

	d.Record(start)
	assert.Equal(t, "contrast_002|radius_000", d.Key(start))

	darker := doc("#777777", "12px")
	assert.Equal(t, "contrast_010|radius_101", d.Key(darker))

	assert.Equal(t, "contrast_000|radius_000|typography_000", NewDiscretizer(true).Key(style.NewDocument()))
}

func TestAgent_ObserveFeedsState(t *testing.T) {
	a := New(DefaultConfig(), rand.New(rand.NewSource(1)))
	op := mutation.NewOperator(rand.New(rand.NewSource(1)), mutation.NewHistory())
	doc := style.NewDocument(
		style.Rule{Selector: ".a", Declarations: []style.Declaration{{Name: "border-radius", Value: "10px"}}},
		style.Rule{Selector: ".b", Declarations: []style.Declaration{{Name: "border-radius", Value: "10px"}}},
	)
	a.Observe(doc)
	grown := op.BorderRadius(doc, true)
	assert.Contains(t, a.State(grown), "radius_101")
}
