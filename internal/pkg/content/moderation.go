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
	"context"
	"regexp"
	"sort"
)

// ModerationSummary is the packaging gate verdict stored on the article.
type ModerationSummary struct {
	Checked    bool     `json:"checked"`
	Blocked    bool     `json:"blocked"`
	Flagged    bool     `json:"flagged"`
	Model      string   `json:"model"`
	Categories []string `json:"categories,omitempty"`
}

// Moderator decides whether an article may ship.
type Moderator interface {
	Moderate(ctx context.Context, text string) (ModerationSummary, error)
}

// blockPatterns are hard stops; flagPatterns only mark the article for
// manual review.
var blockPatterns = map[string]*regexp.Regexp{
	"medical_claim": regexp.MustCompile(`완치|100%\s*치료|부작용\s*없`),
	"financial_guarantee": regexp.MustCompile(`원금\s*보장|확정\s*수익|무조건\s*수익`),
	"illegal": regexp.MustCompile(`불법\s*(다운로드|도박|대출)`),
}

var flagPatterns = map[string]*regexp.Regexp{
	"exaggeration": regexp.MustCompile(`충격|경악|역대급`),
	"urgency":      regexp.MustCompile(`지금\s*당장|마감\s*임박|선착순`),
}

// PatternModerator is the rule-based gate used when no external
// moderation backend is configured.
type PatternModerator struct{}

func NewPatternModerator() *PatternModerator { return &PatternModerator{} }

func (m *PatternModerator) Moderate(_ context.Context, text string) (ModerationSummary, error) {
	plain := stripTags(text)
	summary := ModerationSummary{Checked: true, Model: "pattern_v1"}

	for category, re := range blockPatterns {
		if re.MatchString(plain) {
			summary.Blocked = true
			summary.Categories = append(summary.Categories, category)
		}
	}
	for category, re := range flagPatterns {
		if re.MatchString(plain) {
			summary.Flagged = true
			summary.Categories = append(summary.Categories, category)
		}
	}
	sort.Strings(summary.Categories)
	return summary, nil
}
