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
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// KeywordCandidate is one expanded keyword with heuristic demand metrics,
// used until a real metrics provider is integrated.
type KeywordCandidate struct {
	Text          string `json:"text"`
	TextNorm      string `json:"textNorm"`
	ClusterId     string `json:"clusterId"`
	Trend3        int    `json:"trend3"`
	Trend7        int    `json:"trend7"`
	Trend30       int    `json:"trend30"`
	BlogDocs      int    `json:"blogDocs"`
	MetricsSource string `json:"metricsSource"`
	Source        string `json:"source"`
}

var (
	hashMarkRe   = regexp.MustCompile(`#+`)
	kwCharRe     = regexp.MustCompile(`[^\p{L}\p{N}가-힣 ]`)
	kwSpaceRe    = regexp.MustCompile(`\s+`)
	kwMaxDefault = 250
)

// NormalizeKeyword strips hash marks, punctuation and extra whitespace.
func NormalizeKeyword(s string) string {
	s = hashMarkRe.ReplaceAllString(s, " ")
	s = kwCharRe.ReplaceAllString(s, " ")
	s = kwSpaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

func hashToInt(seed string) int64 {
	sum := sha256.Sum256([]byte(seed))
	v, _ := strconv.ParseInt(hex.EncodeToString(sum[:])[:8], 16, 64)
	return v
}

func makeClusterId(siteId, textNorm string) string {
	// Extremely simple clustering: stable hash of normalized text.
	sum := sha256.Sum256([]byte(siteId + ":" + textNorm))
	return "c_" + hex.EncodeToString(sum[:])[:10]
}

func genMetrics(seed string) (trend3, trend7, trend30, blogDocs int) {
	x := hashToInt(seed)
	trend30 = int(20 + x%120)           // 20..139
	trend7 = int(15 + (x/7)%90)         // 15..104
	trend3 = int(8 + (x/13)%60)         // 8..67
	blogDocs = int(8_000 + (x/17)%320_000) // 8k..328k
	return
}

// CandidateArgs is the input to BuildKeywordCandidates.
type CandidateArgs struct {
	SiteId       string
	Topic        string
	SeedKeywords []string
	RunDate      string
	ScheduleSlot int
	Max          int
}

var candidatePatterns = []string{
	"%s 방법",
	"%s 하는법",
	"%s 추천",
	"%s 정리",
	"%s 비교",
	"%s 장단점",
	"%s 주의",
	"%s 리스크",
	"%s 가격",
	"%s 후기",
	"%s 가성비",
	"", // year pattern, handled separately
}

// BuildKeywordCandidates expands topic and seed keywords into candidates via
// pattern rotation. Slots produce different mixes so the daily schedule does
// not repeat itself.
func BuildKeywordCandidates(args CandidateArgs) []KeywordCandidate {
	topic := NormalizeKeyword(args.Topic)

	var baseSeeds []string
	if topic != "" {
		baseSeeds = append(baseSeeds, topic)
	}
	for _, s := range args.SeedKeywords {
		if n := NormalizeKeyword(s); n != "" {
			baseSeeds = append(baseSeeds, n)
		}
	}

	year := ""
	if len(args.RunDate) >= 4 {
		year = args.RunDate[:4]
	}

	slot := args.ScheduleSlot
	if slot < 1 {
		slot = 1
	}
	if slot > 6 {
		slot = 6
	}
	patternStart := (slot - 1) * 2

	var raw []string
	for _, seed := range baseSeeds {
		raw = append(raw, seed)
		for i := 0; i < len(candidatePatterns); i++ {
			p := candidatePatterns[(patternStart+i)%len(candidatePatterns)]
			if p == "" {
				raw = append(raw, year+" "+seed)
				continue
			}
			raw = append(raw, fmt.Sprintf(p, seed))
		}
		if topic != "" && seed == topic {
			raw = append(raw, seed+" 꿀팁", seed+" 체크리스트", seed+" 초보", seed+" 혼자")
		}
	}

	seen := map[string]struct{}{}
	var normalized []string
	for _, r := range raw {
		n := NormalizeKeyword(r)
		if len([]rune(n)) < 2 {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		normalized = append(normalized, n)
	}

	max := args.Max
	if max == 0 {
		max = kwMaxDefault
	}
	if max < 10 {
		max = 10
	}
	if max > 500 {
		max = 500
	}
	if len(normalized) > max {
		normalized = normalized[:max]
	}

	out := make([]KeywordCandidate, 0, len(normalized))
	for _, textNorm := range normalized {
		t3, t7, t30, docs := genMetrics(fmt.Sprintf("%s:%s:%s", args.SiteId, args.RunDate, textNorm))
		out = append(out, KeywordCandidate{
			Text:          textNorm,
			TextNorm:      textNorm,
			ClusterId:     makeClusterId(args.SiteId, textNorm),
			Trend3:        t3,
			Trend7:        t7,
			Trend30:       t30,
			BlogDocs:      docs,
			MetricsSource: "heuristic_v1",
			Source:        "rules_v1",
		})
	}
	return out
}
