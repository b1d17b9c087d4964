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
	"unicode"
)

// QaIssue names one editorial rule violation.
type QaIssue string

const (
	IssueMissingToc          QaIssue = "missing_toc"
	IssueMissingH24          QaIssue = "missing_h2_4"
	IssueMissingHashtags12   QaIssue = "missing_hashtags_12"
	IssueMissingTableOrFaq   QaIssue = "missing_table_or_faq"
	IssueTooShort            QaIssue = "too_short"
	IssueBannedWords         QaIssue = "banned_words"
	IssueMissingHrPerSection QaIssue = "missing_hr_per_section"
	IssueContainsEmoji       QaIssue = "contains_emoji"
	IssueContainsMarkdown    QaIssue = "contains_markdown_bold"
)

// QaResult is the verdict for one article body.
type QaResult struct {
	Pass   bool      `json:"pass"`
	Issues []QaIssue `json:"issues"`
}

// QaArgs is the input to RunQaRules.
type QaArgs struct {
	HTML        string
	Hashtags12  []string
	BannedWords []string
}

const minTextLength = 1800

var (
	tocRe   = regexp.MustCompile(`(?i)#d4af37|toc`)
	h2Re    = regexp.MustCompile(`(?i)<h2\b`)
	tableRe = regexp.MustCompile(`(?i)<table\b`)
	faqRe   = regexp.MustCompile(`(?i)FAQ|자주\s*묻는`)
	hrRe    = regexp.MustCompile(`(?i)<hr\b`)
	tagRe   = regexp.MustCompile(`<[^>]+>`)
)

// emojiRanges covers pictographic blocks; the point is catching decorative
// emoji in editorial copy, not full Unicode property support.
var emojiRanges = &unicode.RangeTable{
	R32: []unicode.Range32{
		{Lo: 0x2600, Hi: 0x27BF, Stride: 1},   // misc symbols, dingbats
		{Lo: 0x1F1E6, Hi: 0x1F1FF, Stride: 1}, // regional indicators
		{Lo: 0x1F300, Hi: 0x1FAFF, Stride: 1}, // emoji blocks
	},
}

func hasEmoji(s string) bool {
	for _, r := range s {
		if unicode.In(r, emojiRanges) {
			return true
		}
	}
	return false
}

func stripTags(html string) string {
	return tagRe.ReplaceAllString(html, "")
}

// RunQaRules checks an article body against the editorial ruleset.
func RunQaRules(args QaArgs) QaResult {
	var issues []QaIssue
	html := args.HTML

	if !tocRe.MatchString(html) {
		issues = append(issues, IssueMissingToc)
	}
	if len(h2Re.FindAllStringIndex(html, -1)) < 4 {
		issues = append(issues, IssueMissingH24)
	}
	if len(args.Hashtags12) != 12 {
		issues = append(issues, IssueMissingHashtags12)
	}
	if !tableRe.MatchString(html) && !faqRe.MatchString(html) {
		issues = append(issues, IssueMissingTableOrFaq)
	}
	if len([]rune(stripTags(html))) < minTextLength {
		issues = append(issues, IssueTooShort)
	}
	if len(hrRe.FindAllStringIndex(html, -1)) < 4 {
		issues = append(issues, IssueMissingHrPerSection)
	}
	for _, w := range args.BannedWords {
		if w != "" && strings.Contains(html, w) {
			issues = append(issues, IssueBannedWords)
			break
		}
	}
	if strings.Contains(html, "**") {
		issues = append(issues, IssueContainsMarkdown)
	}
	if hasEmoji(html) {
		issues = append(issues, IssueContainsEmoji)
	}

	return QaResult{Pass: len(issues) == 0, Issues: issues}
}

// HasIssue reports whether issues contains the given issue.
func HasIssue(issues []QaIssue, issue QaIssue) bool {
	for _, i := range issues {
		if i == issue {
			return true
		}
	}
	return false
}
