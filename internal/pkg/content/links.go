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
	"fmt"
	"sort"
	"strings"
	"time"
)

// InternalLink is one related-article pick stored on the package.
type InternalLink struct {
	ArticleId   string `json:"articleId"`
	Title       string `json:"title"`
	PackagePath string `json:"packagePath,omitempty"`
	CreatedAt   string `json:"createdAt,omitempty"`
	Reason      string `json:"reason"`
}

// LinkCandidate is a recently packaged or published article of the same site.
type LinkCandidate struct {
	ArticleId   string
	TitleFinal  string
	PackagePath string
	ClusterId   string
	Hashtags12  []string
	CreatedAt   time.Time
}

// LinkSelf identifies the article the links are picked for.
type LinkSelf struct {
	ArticleId  string
	ClusterId  string
	Hashtags12 []string
}

func normTag(s string) string {
	return strings.ToLower(strings.TrimLeft(strings.TrimSpace(s), "#"))
}

// KeywordOverlapScore counts how many of b's tags appear in a,
// after hash-prefix stripping and lowercasing.
func KeywordOverlapScore(aTags, bTags []string) int {
	set := make(map[string]struct{}, len(aTags))
	for _, t := range aTags {
		if n := normTag(t); n != "" {
			set[n] = struct{}{}
		}
	}
	if len(set) == 0 {
		return 0
	}
	hit := 0
	for _, t := range bTags {
		n := normTag(t)
		if n == "" {
			continue
		}
		if _, ok := set[n]; ok {
			hit++
		}
	}
	return hit
}

type scoredLink struct {
	cand        LinkCandidate
	sameCluster bool
	overlap     int
}

// PickInternalLinks orders candidates by same-cluster first, then tag
// overlap, then recency, and returns at most limit links (clamped 1..6,
// default 4). Candidates without a title and the article itself are skipped.
func PickInternalLinks(self LinkSelf, candidates []LinkCandidate, limit int) []InternalLink {
	if limit <= 0 {
		limit = 4
	}
	if limit > 6 {
		limit = 6
	}
	selfCluster := strings.TrimSpace(self.ClusterId)

	scored := make([]scoredLink, 0, len(candidates))
	for _, c := range candidates {
		if c.ArticleId == "" || c.ArticleId == self.ArticleId {
			continue
		}
		title := strings.TrimSpace(c.TitleFinal)
		if title == "" {
			continue
		}
		c.TitleFinal = title
		cluster := strings.TrimSpace(c.ClusterId)
		scored = append(scored, scoredLink{
			cand:        c,
			sameCluster: selfCluster != "" && cluster != "" && selfCluster == cluster,
			overlap:     KeywordOverlapScore(self.Hashtags12, c.Hashtags12),
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		x, y := scored[i], scored[j]
		if x.sameCluster != y.sameCluster {
			return x.sameCluster
		}
		if x.overlap != y.overlap {
			return x.overlap > y.overlap
		}
		return x.cand.CreatedAt.After(y.cand.CreatedAt)
	})

	picked := make([]InternalLink, 0, limit)
	for _, row := range scored {
		if len(picked) >= limit {
			break
		}
		reason := "recent"
		switch {
		case row.sameCluster && row.overlap > 0:
			reason = fmt.Sprintf("cluster+overlap(%d)", row.overlap)
		case row.sameCluster:
			reason = "cluster"
		case row.overlap > 0:
			reason = fmt.Sprintf("overlap(%d)", row.overlap)
		}
		createdAt := ""
		if !row.cand.CreatedAt.IsZero() {
			createdAt = row.cand.CreatedAt.UTC().Format(time.RFC3339)
		}
		picked = append(picked, InternalLink{
			ArticleId:   row.cand.ArticleId,
			Title:       row.cand.TitleFinal,
			PackagePath: row.cand.PackagePath,
			CreatedAt:   createdAt,
			Reason:      reason,
		})
	}
	return picked
}
