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

// K12 is the twelve-keyword set attached to every article: two mains, plus
// longtail and inflow expansions.
type K12 struct {
	Main     [2]string `json:"main"`
	Longtail []string  `json:"longtail"`
	Inflow   []string  `json:"inflow"`
}

// TopCardPoints is the three-point summary rendered on the article top card.
type TopCardPoints struct {
	Points      [3]string `json:"points"`
	LabelsShort [3]string `json:"labelsShort"`
	IconKeys    [3]string `json:"iconKeys"`
}

var labelStripRe = regexp.MustCompile(`[(){}\[\]<>]`)

func shortLabel(k string, maxLen int) string {
	s := strings.ReplaceAll(k, " ", "")
	s = labelStripRe.ReplaceAllString(s, "")
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen])
}

func pickIntentKey(k12 K12, intent Intent) string {
	pool := append(append([]string{}, k12.Longtail...), k12.Inflow...)

	var re *regexp.Regexp
	for _, r := range intentRules {
		if r.intent == intent {
			re = r.re
			break
		}
	}
	if re != nil {
		for _, k := range pool {
			if re.MatchString(k) {
				return k
			}
		}
	}
	if len(k12.Inflow) > 0 {
		return k12.Inflow[0]
	}
	if len(k12.Longtail) > 0 {
		return k12.Longtail[0]
	}
	return k12.Main[0]
}

// BuildTopCardPoints picks the two main keywords plus the best
// intent-matching expansion, with short display labels.
func BuildTopCardPoints(k12 K12, intent Intent) TopCardPoints {
	points := [3]string{k12.Main[0], k12.Main[1], pickIntentKey(k12, intent)}

	var labels [3]string
	for i, p := range points {
		labels[i] = shortLabel(p, 8)
	}

	return TopCardPoints{
		Points:      points,
		LabelsShort: labels,
		IconKeys:    [3]string{"target", "tag", "spark"},
	}
}
