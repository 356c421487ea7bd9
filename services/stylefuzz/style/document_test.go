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

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDocument() Document {
	return NewDocument(
		Rule{Selector: ".card", Declarations: []Declaration{
			{Name: "color", Value: "#000000"},
			{Name: "background-color", Value: "#ffffff"},
			{Name: "border-radius", Value: "12px"},
		}},
		Rule{Selector: ".fab-button", Declarations: []Declaration{
			{Name: "border-radius", Value: "28px"},
		}},
	)
}

func TestNewDocument_DuplicateSelectorKeepsFirstPosition(t *testing.T) {
	doc := NewDocument(
		Rule{Selector: "a", Declarations: []Declaration{{Name: "color", Value: "#111"}}},
		Rule{Selector: "b"},
		Rule{Selector: "a", Declarations: []Declaration{{Name: "color", Value: "#222"}}},
	)

	assert.Equal(t, []string{"a", "b"}, doc.Selectors())
	r, ok := doc.Lookup("a")
	require.True(t, ok)
	assert.Equal(t, "#222", r.Declarations[0].Value)
}

func TestDocument_RulesReturnsIsolatedCopy(t *testing.T) {
	doc := sampleDocument()

	rules := doc.Rules()
	rules[0].Declarations[0].Value = "#123456"

	r, _ := doc.Lookup(".card")
	assert.Equal(t, "#000000", r.Declarations[0].Value)
}

func TestDocument_WithDeclarationsSharesUntouchedRules(t *testing.T) {
	doc := sampleDocument()

	next := doc.WithDeclarations(".card", []Declaration{{Name: "color", Value: "#ff0000"}})

	before, _ := doc.Lookup(".card")
	after, _ := next.Lookup(".card")
	assert.Len(t, before.Declarations, 3)
	assert.Equal(t, []Declaration{{Name: "color", Value: "#ff0000"}}, after.Declarations)

	fab, _ := next.Lookup(".fab-button")
	assert.Equal(t, "28px", fab.Declarations[0].Value)
	assert.Equal(t, doc.Selectors(), next.Selectors())
}

func TestDocument_WithDeclarationsAppendsUnknownSelector(t *testing.T) {
	doc := sampleDocument()

	next := doc.WithDeclarations(".chip", []Declaration{{Name: "border-radius", Value: "4px"}})

	assert.Equal(t, 2, doc.Len())
	assert.Equal(t, 3, next.Len())
	assert.Equal(t, ".chip", next.Selectors()[2])
}

func TestDocument_MapLeavesOriginalUntouched(t *testing.T) {
	doc := sampleDocument()

	next := doc.Map(func(_ string, d Declaration) (Declaration, bool) {
		if d.Name != "border-radius" {
			return d, false
		}
		d.Value = "0px"
		return d, true
	})

	card, _ := doc.Lookup(".card")
	assert.Equal(t, "12px", card.Declarations[2].Value)
	card, _ = next.Lookup(".card")
	assert.Equal(t, "0px", card.Declarations[2].Value)
	fab, _ := next.Lookup(".fab-button")
	assert.Equal(t, "0px", fab.Declarations[0].Value)
}

func TestDocument_MapWithoutChangesReturnsSameContent(t *testing.T) {
	doc := sampleDocument()
	next := doc.Map(func(_ string, d Declaration) (Declaration, bool) { return d, false })
	assert.Equal(t, doc.Rules(), next.Rules())
}

func TestDocument_DeclarationCount(t *testing.T) {
	assert.Equal(t, 4, sampleDocument().DeclarationCount())
	assert.Equal(t, 0, NewDocument().DeclarationCount())
}

func TestExtractNumber(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"12px", 12},
		{"1.5", 1.5},
		{"-3px", 3},
		{"bold", 0},
		{"", 0},
		{"1.2.3", 0},
		{"0.5em", 0.5},
		{"700", 700},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractNumber(tt.in))
		})
	}
}

func TestNumericTokens(t *testing.T) {
	assert.Equal(t, []float64{0, 2, 4.5}, NumericTokens("0 2px 4.5px"))
	assert.Equal(t, []float64{-1, 3, 6, 0, 0, 0, .2}, NumericTokens("-1px 3px 6px rgba(0,0,0,.2)"))
	assert.Empty(t, NumericTokens("none"))
}

func TestColorPair(t *testing.T) {
	fg, bg := ColorPair([]Declaration{
		{Name: "background-color", Value: "#fff"},
		{Name: "color", Value: "#111"},
		{Name: "border-color", Value: "#222"},
	})
	assert.Equal(t, "#222", fg)
	assert.Equal(t, "#fff", bg)

	fg, bg = ColorPair([]Declaration{{Name: "margin", Value: "0"}})
	assert.Empty(t, fg)
	assert.Empty(t, bg)
}

func TestFontWeight(t *testing.T) {
	assert.Equal(t, 400.0, FontWeight("normal"))
	assert.Equal(t, 700.0, FontWeight("Bold"))
	assert.Equal(t, 600.0, FontWeight("600"))
	assert.Equal(t, 0.0, FontWeight("bolder"))
}
