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

// Package content holds the editorial heuristics: intent detection, title
// similarity, growth scoring, image planning, QA rules and fixes, keyword
// expansion. Everything here is pure and deterministic.
package content

import "regexp"

// Intent classifies what a searcher wants from a keyword.
type Intent string

const (
	IntentHowto   Intent = "howto"
	IntentCompare Intent = "compare"
	IntentPrice   Intent = "price"
	IntentReview  Intent = "review"
	IntentRisk    Intent = "risk"
	IntentInfo    Intent = "info"
)

type intentRule struct {
	intent Intent
	re     *regexp.Regexp
}

// Ordered: first match wins, info is the fallback.
var intentRules = []intentRule{
	{IntentHowto, regexp.MustCompile(`방법|하는법|설정|초기화|오류|해결|가이드|루틴|정리`)},
	{IntentCompare, regexp.MustCompile(`(?i)비교|차이|장단점|추천|vs|순위|TOP`)},
	{IntentPrice, regexp.MustCompile(`가격|비용|가성비|할인|쿠폰|최저가`)},
	{IntentReview, regexp.MustCompile(`후기|리뷰|사용기|체험|솔직`)},
	{IntentRisk, regexp.MustCompile(`주의|부작용|리스크|손실|위험|경고|사기`)},
}

// DetectIntent classifies text by keyword pattern.
func DetectIntent(text string) Intent {
	for _, r := range intentRules {
		if r.re.MatchString(text) {
			return r.intent
		}
	}
	return IntentInfo
}
