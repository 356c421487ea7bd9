// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package markup holds the HTML page a style variant is rendered with.
//
// The fuzzer treats a page as mostly opaque. The only edits it makes are
// image sources and the stylesheet link.
package markup

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Document is a parsed HTML page.
//
// Thread Safety: Not safe for concurrent use. Clone before sharing.
type Document struct {
	doc *goquery.Document
}

// Parse reads an HTML page from r.
func Parse(r io.Reader) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return &Document{doc: doc}, nil
}

// ParseString parses an HTML page held in memory.
func ParseString(s string) (*Document, error) {
	return Parse(strings.NewReader(s))
}

// ParseFile reads and parses the page at path.
func ParseFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open html %s: %w", path, err)
	}
	defer f.Close()
	return Parse(f)
}

// Clone returns an independent deep copy of d.
func (d *Document) Clone() (*Document, error) {
	var buf bytes.Buffer
	if err := d.Render(&buf); err != nil {
		return nil, err
	}
	return Parse(&buf)
}

// ImageSources returns the src attribute of every img element, in document
// order. Elements without a src are reported as "".
func (d *Document) ImageSources() []string {
	var out []string
	d.doc.Find("img").Each(func(_ int, s *goquery.Selection) {
		src, _ := s.Attr("src")
		out = append(out, src)
	})
	return out
}

// RewriteImages calls fn with each img src and replaces it when fn returns
// true. It edits d in place and returns the number of rewritten elements.
func (d *Document) RewriteImages(fn func(src string) (string, bool)) int {
	n := 0
	d.doc.Find("img").Each(func(_ int, s *goquery.Selection) {
		src, _ := s.Attr("src")
		next, ok := fn(src)
		if !ok {
			return
		}
		s.SetAttr("src", next)
		n++
	})
	return n
}

// SetStylesheet points every <link rel="stylesheet"> at href and returns
// the number of links changed.
func (d *Document) SetStylesheet(href string) int {
	n := 0
	d.doc.Find("link").Each(func(_ int, s *goquery.Selection) {
		rel, _ := s.Attr("rel")
		if !isStylesheetRel(rel) {
			return
		}
		s.SetAttr("href", href)
		n++
	})
	return n
}

// Stylesheets returns the href of every stylesheet link.
func (d *Document) Stylesheets() []string {
	var out []string
	d.doc.Find("link").Each(func(_ int, s *goquery.Selection) {
		rel, _ := s.Attr("rel")
		if !isStylesheetRel(rel) {
			return
		}
		href, _ := s.Attr("href")
		out = append(out, href)
	})
	return out
}

// Render writes d as HTML.
func (d *Document) Render(w io.Writer) error {
	for _, n := range d.doc.Nodes {
		if err := html.Render(w, n); err != nil {
			return fmt.Errorf("render html: %w", err)
		}
	}
	return nil
}

// String renders d, returning "" on failure.
func (d *Document) String() string {
	var b strings.Builder
	if err := d.Render(&b); err != nil {
		return ""
	}
	return b.String()
}

func isStylesheetRel(rel string) bool {
	for _, tok := range strings.Fields(rel) {
		if strings.EqualFold(tok, "stylesheet") {
			return true
		}
	}
	return false
}
