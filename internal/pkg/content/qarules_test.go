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
	"strings"
	"testing"
)

func TestRunQaRulesPassesGeneratedBody(t *testing.T) {
	html := BuildArticleHTML("전세 계약 방법: 초보가 바로 써먹는 순서", "전세 계약")
	result := RunQaRules(QaArgs{HTML: html, Hashtags12: DefaultHashtags12()})
	if !result.Pass {
		t.Fatalf("generated body should pass qa, issues=%v", result.Issues)
	}
}

func TestRunQaRulesFlagsBareBody(t *testing.T) {
	result := RunQaRules(QaArgs{
		HTML:        "<p>짧은 글 **강조** 😀</p>",
		Hashtags12:  []string{"#one"},
		BannedWords: []string{"짧은"},
	})
	if result.Pass {
		t.Fatal("bare body should not pass")
	}
	want := []QaIssue{
		IssueMissingToc,
		IssueMissingH24,
		IssueMissingHashtags12,
		IssueMissingTableOrFaq,
		IssueTooShort,
		IssueBannedWords,
		IssueMissingHrPerSection,
		IssueContainsEmoji,
		IssueContainsMarkdown,
	}
	for _, issue := range want {
		if !HasIssue(result.Issues, issue) {
			t.Errorf("missing issue %s in %v", issue, result.Issues)
		}
	}
}

func TestRunQaRulesTableOrFaqEitherSuffices(t *testing.T) {
	base := strings.Repeat("<p>본문 단락입니다. 설명이 이어집니다.</p>", 200) +
		"toc<h2></h2><h2></h2><h2></h2><h2></h2><hr /><hr /><hr /><hr />"

	withTable := RunQaRules(QaArgs{HTML: base + "<table></table>", Hashtags12: DefaultHashtags12()})
	if HasIssue(withTable.Issues, IssueMissingTableOrFaq) {
		t.Error("table should satisfy table-or-faq")
	}
	withFaq := RunQaRules(QaArgs{HTML: base + "<p>자주 묻는 질문</p>", Hashtags12: DefaultHashtags12()})
	if HasIssue(withFaq.Issues, IssueMissingTableOrFaq) {
		t.Error("faq heading should satisfy table-or-faq")
	}
}

func TestFixHTMLWithQaIssuesRepairsEverything(t *testing.T) {
	broken := "<p>여행 준비에 대한 아주 짧은 글 **굵게** ☀ 도박장</p>"
	banned := []string{"도박장"}

	first := RunQaRules(QaArgs{HTML: broken, Hashtags12: DefaultHashtags12(), BannedWords: banned})
	if first.Pass {
		t.Fatal("fixture should start broken")
	}

	fixed := FixHTMLWithQaIssues(FixArgs{
		HTML:        broken,
		Issues:      first.Issues,
		Keyword:     "여행 준비",
		BannedWords: banned,
	})
	second := RunQaRules(QaArgs{HTML: fixed, Hashtags12: DefaultHashtags12(), BannedWords: banned})
	if !second.Pass {
		t.Fatalf("fixed body should pass qa, issues=%v", second.Issues)
	}
}

func TestFixHTMLWithQaIssuesIsIdempotentOnCleanBody(t *testing.T) {
	html := BuildArticleHTML("제목", "키워드")
	fixed := FixHTMLWithQaIssues(FixArgs{HTML: html, Issues: nil, Keyword: "키워드"})
	if fixed != html {
		t.Error("no issues should mean no changes")
	}
}
