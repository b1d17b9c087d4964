// Copyright 2026 Pressline Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package imagesearch finds license-safe stock photos for article sections.
package imagesearch

import "github.com/pressline/pressline/pkg/log"

// FoundImage is one stock photo result with its attribution data.
type FoundImage struct {
	Provider   string `json:"provider"`
	ImageURL   string `json:"imageUrl"`
	PageURL    string `json:"pageUrl"`
	Author     string `json:"author,omitempty"`
	LicenseURL string `json:"licenseUrl,omitempty"`
}

// Searcher finds stock photos for a query.
type Searcher interface {
	Search(q string, limit int) ([]FoundImage, error)
}

// MultiSearcher queries searchers in order until it collects count images.
// A failing provider is logged and skipped.
type MultiSearcher struct {
	searchers []Searcher
}

func NewMultiSearcher(searchers ...Searcher) *MultiSearcher {
	return &MultiSearcher{searchers: searchers}
}

func (m *MultiSearcher) Search(q string, limit int) ([]FoundImage, error) {
	var out []FoundImage
	for _, s := range m.searchers {
		if len(out) >= limit {
			break
		}
		found, err := s.Search(q, limit-len(out))
		if err != nil {
			log.Warnw("image search provider failed", "query", q, "err", err)
			continue
		}
		out = append(out, found...)
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// NullSearcher returns nothing. It stands in where no photo provider is
// configured; the image stage then falls back to paid generation.
type NullSearcher struct{}

func (NullSearcher) Search(string, int) ([]FoundImage, error) { return nil, nil }
