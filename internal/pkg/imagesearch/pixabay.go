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

package imagesearch

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/pressline/pressline/pkg/request"
)

const (
	defaultPixabayEndpoint = "https://pixabay.com/api/"
	pixabayLicenseURL      = "https://pixabay.com/service/license-summary/"
)

type pixabayHit struct {
	LargeImageURL string `json:"largeImageURL"`
	WebformatURL  string `json:"webformatURL"`
	PageURL       string `json:"pageURL"`
	User          string `json:"user"`
}

type pixabayResponse struct {
	Hits []pixabayHit `json:"hits"`
}

// PixabaySearcher queries the Pixabay photo API.
type PixabaySearcher struct {
	endpoint string
	apiKey   string
}

// PixabayOption configures a PixabaySearcher.
type PixabayOption func(*PixabaySearcher)

// WithPixabayEndpoint overrides the API endpoint.
func WithPixabayEndpoint(endpoint string) PixabayOption {
	return func(s *PixabaySearcher) { s.endpoint = endpoint }
}

func NewPixabaySearcher(apiKey string, opts ...PixabayOption) *PixabaySearcher {
	s := &PixabaySearcher{endpoint: defaultPixabayEndpoint, apiKey: apiKey}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *PixabaySearcher) Search(q string, limit int) ([]FoundImage, error) {
	if limit <= 0 {
		return nil, nil
	}
	perPage := limit
	if perPage < 20 {
		perPage = 20
	}

	var result pixabayResponse
	status, err := request.Get(s.endpoint).
		Query(map[string]string{
			"key":        s.apiKey,
			"q":          q,
			"image_type": "photo",
			"safesearch": "true",
			"per_page":   strconv.Itoa(perPage),
		}).
		Result(&result).
		Do()
	if err != nil {
		return nil, fmt.Errorf("pixabay request failed: %w", err)
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("pixabay returned status %d", status)
	}

	out := make([]FoundImage, 0, len(result.Hits))
	for _, h := range result.Hits {
		imageURL := h.LargeImageURL
		if imageURL == "" {
			imageURL = h.WebformatURL
		}
		if imageURL == "" {
			continue
		}
		out = append(out, FoundImage{
			Provider:   "pixabay",
			ImageURL:   imageURL,
			PageURL:    h.PageURL,
			Author:     h.User,
			LicenseURL: pixabayLicenseURL,
		})
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}
