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

package content

import (
	"regexp"
	"strings"
)

var (
	titleSpaceRe = regexp.MustCompile(`\s+`)
	titleCharRe  = regexp.MustCompile(`[^0-9a-z가-힣 ]`)
)

// NormalizeTitle lowercases, collapses whitespace and strips everything
// outside alphanumerics, hangul and spaces.
func NormalizeTitle(s string) string {
	s = strings.ToLower(s)
	s = titleSpaceRe.ReplaceAllString(s, " ")
	s = titleCharRe.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// ngrams operates on runes so hangul counts as one symbol per character.
func ngrams(s string, n int) map[string]struct{} {
	out := map[string]struct{}{}
	runes := []rune(s)
	for i := 0; i+n <= len(runes); i++ {
		out[string(runes[i:i+n])] = struct{}{}
	}
	return out
}

func jaccard(a, b map[string]struct{}) float64 {
	inter := 0
	for x := range a {
		if _, ok := b[x]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

// MaxTitleSimilarity returns the highest 2/3-gram Jaccard similarity between
// the new title and any previously used title.
func MaxTitleSimilarity(newTitle string, oldTitles []string) float64 {
	t := NormalizeTitle(newTitle)
	a2 := ngrams(t, 2)
	a3 := ngrams(t, 3)

	maxSim := 0.0
	for _, old := range oldTitles {
		o := NormalizeTitle(old)
		sim := jaccard(a2, ngrams(o, 2))
		if s3 := jaccard(a3, ngrams(o, 3)); s3 > sim {
			sim = s3
		}
		if sim > maxSim {
			maxSim = sim
		}
	}
	return maxSim
}
