// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package mutation

// HistoryCapacity is the number of most recent values a Buffer retains.
const HistoryCapacity = 50

// Dimension names one mutated property family.
type Dimension string

const (
	DimColor      Dimension = "color"
	DimRadius     Dimension = "radius"
	DimShadow     Dimension = "shadow"
	DimFontSize   Dimension = "font_size"
	DimLineHeight Dimension = "line_height"
	DimFontWeight Dimension = "font_weight"
)

// Dimensions lists every tracked dimension in a fixed order.
var Dimensions = []Dimension{
	DimColor, DimRadius, DimShadow, DimFontSize, DimLineHeight, DimFontWeight,
}

// Buffer is a bounded tail of produced values. Older entries fall off once
// HistoryCapacity is reached.
//
// Thread Safety: Not safe for concurrent use.
type Buffer struct {
	values []string
}

// Append records v, dropping the oldest entry when full.
func (b *Buffer) Append(v string) {
	if len(b.values) == HistoryCapacity {
		copy(b.values, b.values[1:])
		b.values[len(b.values)-1] = v
		return
	}
	b.values = append(b.values, v)
}

// Values returns a copy of the retained entries, oldest first.
func (b *Buffer) Values() []string {
	out := make([]string, len(b.values))
	copy(out, b.values)
	return out
}

// Len returns the number of retained entries.
func (b *Buffer) Len() int {
	return len(b.values)
}

// History owns one Buffer per Dimension for a single run.
//
// Description:
//
//	A History is created fresh for each run and passed to the Operator and
//	the reward composer. Nothing is shared across runs.
//
// Thread Safety: Not safe for concurrent use.
type History struct {
	buffers map[Dimension]*Buffer
}

// NewHistory returns an empty History covering every Dimension.
func NewHistory() *History {
	h := &History{buffers: make(map[Dimension]*Buffer, len(Dimensions))}
	for _, d := range Dimensions {
		h.buffers[d] = &Buffer{}
	}
	return h
}

// Record appends v to the buffer for dim.
func (h *History) Record(dim Dimension, v string) {
	h.buffer(dim).Append(v)
}

// Values returns the retained entries for dim.
func (h *History) Values(dim Dimension) []string {
	return h.buffer(dim).Values()
}

func (h *History) buffer(dim Dimension) *Buffer {
	b, ok := h.buffers[dim]
	if !ok {
		b = &Buffer{}
		h.buffers[dim] = b
	}
	return b
}
