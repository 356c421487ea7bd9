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
	"github.com/AleutianAI/stylefuzz/services/stylefuzz/mutation"
)

// Category groups actions that act on one aspect of the page.
type Category string

const (
	CategoryColor        Category = "color"
	CategoryElevation    Category = "elevation"
	CategoryBorderRadius Category = "border_radius"
	CategoryTypography   Category = "typography"
	CategoryIcon         Category = "icon"
	CategoryImage        Category = "image"
)

// Action is one entry of the action catalog.
type Action struct {
	Category Category
	Name     string

	// Kind is the style mutation to apply. Empty for resource actions.
	Kind mutation.Kind
}

// Key is the Q-table key "category:name". Names repeat across categories
// ("increase"), so the category is part of the key.
func (a Action) Key() string {
	return string(a.Category) + ":" + a.Name
}

// IsResource reports whether a substitutes page resources instead of
// mutating style.
func (a Action) IsResource() bool {
	return a.Category == CategoryIcon || a.Category == CategoryImage
}

// Group is one category and its actions in catalog order.
type Group struct {
	Category Category
	Actions  []Action
}

// Catalog is the ordered action space.
type Catalog struct {
	groups []Group
	all    []Action
}

// NewCatalog builds the action catalog. With typography false the
// typography category is left out.
func NewCatalog(typography bool) *Catalog {
	groups := []Group{
		{CategoryColor, []Action{
			{CategoryColor, "increase_contrast", mutation.IncreaseContrast},
			{CategoryColor, "decrease_contrast", mutation.DecreaseContrast},
			{CategoryColor, "complementary", mutation.Complementary},
			{CategoryColor, "random", mutation.RandomizeColors},
		}},
		{CategoryElevation, []Action{
			{CategoryElevation, "increase", mutation.IncreaseElevation},
			{CategoryElevation, "decrease", mutation.DecreaseElevation},
		}},
		{CategoryBorderRadius, []Action{
			{CategoryBorderRadius, "increase", mutation.IncreaseRadius},
			{CategoryBorderRadius, "decrease", mutation.DecreaseRadius},
		}},
	}
	if typography {
		groups = append(groups, Group{CategoryTypography, []Action{
			{CategoryTypography, "increase_font_size", mutation.IncreaseFontSize},
			{CategoryTypography, "decrease_font_size", mutation.DecreaseFontSize},
			{CategoryTypography, "increase_line_height", mutation.IncreaseLineHeight},
			{CategoryTypography, "decrease_line_height", mutation.DecreaseLineHeight},
			{CategoryTypography, "increase_font_weight", mutation.IncreaseFontWeight},
			{CategoryTypography, "decrease_font_weight", mutation.DecreaseFontWeight},
			{CategoryTypography, "random_typography", mutation.RandomizeTypography},
		}})
	}
	groups = append(groups,
		Group{CategoryIcon, []Action{{Category: CategoryIcon, Name: "change_icon"}}},
		Group{CategoryImage, []Action{{Category: CategoryImage, Name: "change_image"}}},
	)

	c := &Catalog{groups: groups}
	for _, g := range groups {
		c.all = append(c.all, g.Actions...)
	}
	return c
}

// Categories returns the categories in catalog order.
func (c *Catalog) Categories() []Category {
	out := make([]Category, len(c.groups))
	for i, g := range c.groups {
		out[i] = g.Category
	}
	return out
}

// Actions returns the actions of cat in catalog order, or nil.
func (c *Catalog) Actions(cat Category) []Action {
	for _, g := range c.groups {
		if g.Category == cat {
			return g.Actions
		}
	}
	return nil
}

// All returns every action in catalog order.
func (c *Catalog) All() []Action {
	return c.all
}

// Dimensions returns the history dimensions the catalog can produce.
func (c *Catalog) Dimensions() []mutation.Dimension {
	dims := []mutation.Dimension{mutation.DimColor, mutation.DimRadius, mutation.DimShadow}
	if c.Actions(CategoryTypography) != nil {
		dims = append(dims, mutation.DimFontSize, mutation.DimLineHeight, mutation.DimFontWeight)
	}
	return dims
}
