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
	"fmt"

	"github.com/AleutianAI/stylefuzz/services/stylefuzz/markup"
	"github.com/AleutianAI/stylefuzz/services/stylefuzz/style"
)

// LoadSeed reads the seed stylesheet and page. Any failure is wrapped in
// ErrLoadFailure and the run must not start.
func LoadSeed(cssPath, htmlPath string) (style.Document, *markup.Document, error) {
	doc, err := style.ParseFile(cssPath)
	if err != nil {
		return style.Document{}, nil, fmt.Errorf("%w: %v", ErrLoadFailure, err)
	}
	page, err := markup.ParseFile(htmlPath)
	if err != nil {
		return style.Document{}, nil, fmt.Errorf("%w: %v", ErrLoadFailure, err)
	}
	return doc, page, nil
}
