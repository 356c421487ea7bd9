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
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aymerick/douceur/css"
	"github.com/aymerick/douceur/parser"
)

// Parse reads stylesheet text into a Document.
//
// Only top-level style rules are kept; at-rules (@media, @font-face, ...)
// are skipped. Property names are lower-cased, values are kept whole with
// surrounding space trimmed, and "!important" is dropped.
//
// Inputs:
//   - text: Raw stylesheet text.
//
// Outputs:
//   - Document: The parsed document.
//   - error: Non-nil if the text cannot be tokenized.
func Parse(text string) (Document, error) {
	sheet, err := parser.Parse(text)
	if err != nil {
		return Document{}, fmt.Errorf("parse stylesheet: %w", err)
	}

	rules := make([]Rule, 0, len(sheet.Rules))
	for _, r := range sheet.Rules {
		if r.Kind != css.QualifiedRule {
			continue
		}
		decls := make([]Declaration, 0, len(r.Declarations))
		for _, d := range r.Declarations {
			decls = append(decls, Declaration{
				Name:  strings.ToLower(strings.TrimSpace(d.Property)),
				Value: strings.TrimSpace(d.Value),
			})
		}
		selector := strings.Join(r.Selectors, ", ")
		if selector == "" {
			selector = strings.TrimSpace(r.Prelude)
		}
		rules = append(rules, Rule{Selector: selector, Declarations: decls})
	}
	return NewDocument(rules...), nil
}

// ParseFile reads and parses a stylesheet from disk.
func ParseFile(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, fmt.Errorf("read stylesheet %s: %w", path, err)
	}
	return Parse(string(data))
}

// Render serializes d in the fuzzer's text format: one block per selector,
// one declaration per line in original order.
//
//	selector {
//	    name: value;
//	}
func Render(d Document) string {
	var b strings.Builder
	_ = Write(&b, d)
	return b.String()
}

// Write serializes d to w. See Render for the format.
func Write(w io.Writer, d Document) error {
	for _, r := range d.rules {
		if _, err := fmt.Fprintf(w, "%s {\n", r.Selector); err != nil {
			return err
		}
		for _, decl := range r.Declarations {
			if _, err := fmt.Fprintf(w, "    %s: %s;\n", decl.Name, decl.Value); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, "}\n\n"); err != nil {
			return err
		}
	}
	return nil
}
