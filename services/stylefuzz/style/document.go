// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package style holds the in-memory stylesheet model the fuzzer mutates.
//
// A Document is an ordered mapping from selector to declarations. Documents
// are values: every operation that changes a rule returns a new Document
// that shares all untouched rules with the receiver, so older versions stay
// valid after a mutation.
package style

// Declaration is one property/value pair inside a rule.
//
// Duplicate names within a rule are legal and are mutated independently.
type Declaration struct {
	Name  string
	Value string
}

// Rule is one selector block.
type Rule struct {
	Selector     string
	Declarations []Declaration
}

// Document is an ordered, copy-on-write stylesheet.
//
// Thread Safety: Safe for concurrent reads. Documents are never modified
// in place; the With*/Map methods allocate a new Document.
type Document struct {
	rules []Rule
	index map[string]int
}

// NewDocument builds a Document from rules in order.
//
// A selector that appears more than once keeps the position of its first
// occurrence and the declarations of its last one.
//
// Inputs:
//   - rules: Rules in source order. Declaration slices are copied.
//
// Outputs:
//   - Document: The new document.
func NewDocument(rules ...Rule) Document {
	d := Document{
		rules: make([]Rule, 0, len(rules)),
		index: make(map[string]int, len(rules)),
	}
	for _, r := range rules {
		decls := cloneDeclarations(r.Declarations)
		if i, ok := d.index[r.Selector]; ok {
			d.rules[i].Declarations = decls
			continue
		}
		d.index[r.Selector] = len(d.rules)
		d.rules = append(d.rules, Rule{Selector: r.Selector, Declarations: decls})
	}
	return d
}

// Len returns the number of selectors.
func (d Document) Len() int {
	return len(d.rules)
}

// Selectors returns the selectors in document order.
func (d Document) Selectors() []string {
	out := make([]string, len(d.rules))
	for i, r := range d.rules {
		out[i] = r.Selector
	}
	return out
}

// Rules returns a copy of every rule. Mutating the result never affects d.
func (d Document) Rules() []Rule {
	out := make([]Rule, len(d.rules))
	for i, r := range d.rules {
		out[i] = Rule{Selector: r.Selector, Declarations: cloneDeclarations(r.Declarations)}
	}
	return out
}

// Lookup returns a copy of the rule for selector.
func (d Document) Lookup(selector string) (Rule, bool) {
	i, ok := d.index[selector]
	if !ok {
		return Rule{}, false
	}
	r := d.rules[i]
	return Rule{Selector: r.Selector, Declarations: cloneDeclarations(r.Declarations)}, true
}

// DeclarationCount returns the total number of declarations across rules.
func (d Document) DeclarationCount() int {
	n := 0
	for _, r := range d.rules {
		n += len(r.Declarations)
	}
	return n
}

// Each calls fn for every rule in order. The declarations passed to fn
// belong to d and must not be modified.
func (d Document) Each(fn func(selector string, decls []Declaration)) {
	for _, r := range d.rules {
		fn(r.Selector, r.Declarations)
	}
}

// WithDeclarations returns a document whose rule for selector holds decls.
//
// Inputs:
//   - selector: An existing selector. Unknown selectors are appended.
//   - decls: The new declarations. The slice is copied.
//
// Outputs:
//   - Document: A new document sharing all other rules with d.
func (d Document) WithDeclarations(selector string, decls []Declaration) Document {
	i, ok := d.index[selector]
	if !ok {
		rules := make([]Rule, len(d.rules), len(d.rules)+1)
		copy(rules, d.rules)
		rules = append(rules, Rule{Selector: selector, Declarations: cloneDeclarations(decls)})
		index := make(map[string]int, len(d.index)+1)
		for k, v := range d.index {
			index[k] = v
		}
		index[selector] = len(rules) - 1
		return Document{rules: rules, index: index}
	}
	rules := make([]Rule, len(d.rules))
	copy(rules, d.rules)
	rules[i] = Rule{Selector: selector, Declarations: cloneDeclarations(decls)}
	return Document{rules: rules, index: d.index}
}

// Map applies fn to every declaration and returns the resulting document.
//
// fn returns the replacement declaration and whether it changed. Rules with
// no change are shared with d; when nothing changes d itself is returned.
func (d Document) Map(fn func(selector string, decl Declaration) (Declaration, bool)) Document {
	var rules []Rule
	for i, r := range d.rules {
		var decls []Declaration
		for j, decl := range r.Declarations {
			next, changed := fn(r.Selector, decl)
			if !changed {
				continue
			}
			if decls == nil {
				decls = cloneDeclarations(r.Declarations)
			}
			decls[j] = next
		}
		if decls == nil {
			continue
		}
		if rules == nil {
			rules = make([]Rule, len(d.rules))
			copy(rules, d.rules)
		}
		rules[i] = Rule{Selector: r.Selector, Declarations: decls}
	}
	if rules == nil {
		return d
	}
	return Document{rules: rules, index: d.index}
}

func cloneDeclarations(decls []Declaration) []Declaration {
	if decls == nil {
		return []Declaration{}
	}
	out := make([]Declaration, len(decls))
	copy(out, decls)
	return out
}
