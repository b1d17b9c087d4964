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
	"strings"
)

// titlePickThreshold is the similarity under which a candidate is accepted
// immediately; above it the least similar candidate wins.
const titlePickThreshold = 0.3

// BuildTitleCandidates produces the fixed templated candidate set for a
// keyword.
func BuildTitleCandidates(keyword string) []string {
	shocks := []string{"충격", "반전", "실화", "의외"}
	situations := []string{
		"지금 다들 틀리는 이유",
		"초보가 가장 많이 망하는 지점",
		"알고 나면 너무 허무한 포인트",
		"오늘부터 달라지는 포인트",
	}
	lacks := []string{"모르면 손해", "괜히 했다가 후회", "대부분 놓치는", "처음엔 다 실수하는"}
	places := []string{"코스트코", "다이소", "집", "회사"}
	targets := []string{"초보", "바쁜 사람", "처음 하는 사람", "혼자 하는 사람"}

	raw := []string{
		fmt.Sprintf("%q %s %s", shocks[0], situations[0], keyword),
		fmt.Sprintf("%q %s %s", shocks[1], situations[1], keyword),
		fmt.Sprintf("%s 3가지 %s", lacks[0], keyword),
		fmt.Sprintf("%s 5가지 %s", lacks[1], keyword),
		fmt.Sprintf("%s에서 %s %s", places[0], targets[0], keyword),
		fmt.Sprintf("%s에서 %s %s", places[1], targets[1], keyword),
		keyword + " 비교: 딱 1개만 고르면 됩니다",
		keyword + " 방법: 초보가 바로 써먹는 순서",
		keyword + " 주의: 이 2가지만은 피하세요",
		keyword + " 후기: 생각보다 갈리는 포인트",
		keyword + " 정리: 지금 필요한 건 이것뿐",
		keyword + " 가성비: 돈 아끼는 선택지 3개",
	}

	out := make([]string, 0, len(raw))
	for _, t := range raw {
		out = append(out, strings.TrimSpace(kwSpaceRe.ReplaceAllString(t, " ")))
	}
	return out
}

// PickTitle selects the candidate least similar to recent titles. A
// candidate under the threshold is accepted on first sight.
func PickTitle(candidates, oldTitles []string) (picked string, similarity float64) {
	if len(candidates) == 0 {
		return "", 0
	}
	picked = candidates[0]
	similarity = 1

	for _, t := range candidates {
		sim := MaxTitleSimilarity(t, oldTitles)
		if sim < titlePickThreshold {
			return t, sim
		}
		if sim < similarity {
			picked = t
			similarity = sim
		}
	}
	return picked, similarity
}
