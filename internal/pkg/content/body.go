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

// DefaultK12 derives the fallback twelve-keyword set from the base keyword
// when the article has none yet.
func DefaultK12(keywordText string) K12 {
	return K12{
		Main: [2]string{keywordText, keywordText + " 방법"},
		Longtail: []string{
			keywordText + " 하는법",
			keywordText + " 비교",
			keywordText + " 장단점",
			keywordText + " 추천",
			keywordText + " 정리",
		},
		Inflow: []string{
			keywordText + " 가격",
			keywordText + " 후기",
			keywordText + " 주의",
			keywordText + " 리스크",
			keywordText + " 가성비",
		},
	}
}

// DefaultHashtags12 fills the twelve-tag slot with placeholders until a real
// tag source exists.
func DefaultHashtags12() []string {
	out := make([]string, 12)
	for i := range out {
		out[i] = fmt.Sprintf("#tag%d", i+1)
	}
	return out
}

const h2Style = `style="border-left:5px solid #d4af37; padding-left:15px; color:#333; line-height:1.4; margin-bottom:20px;"`

// BuildArticleHTML assembles the structured article skeleton: intro, boxed
// toc, four H2 sections (one with a table, one with FAQ), summary box,
// caution box and closer. The layout is exactly what the QA ruleset expects.
func BuildArticleHTML(titleFinal, keywordText string) string {
	guideText := fmt.Sprintf(
		"%s을(를) 실제로 적용할 때는 단계를 짧게 나누고, 실행 후 결과를 기록해 다음 선택을 조정하는 방식이 가장 안정적입니다. "+
			"처음에는 완벽함보다 재현 가능한 루틴을 만드는 것이 중요하며, 작은 실패 사례를 빠르게 정리해 같은 실수를 줄이는 것이 핵심입니다.",
		keywordText)

	var detail strings.Builder
	for i := 0; i < 8; i++ {
		if i > 0 {
			detail.WriteString("\n")
		}
		detail.WriteString("<p>" + guideText + "</p>")
	}
	detailBlock := detail.String()

	return fmt.Sprintf(`<div class="entry-content">
<p>%s... 도입부(PAS) 120~150자</p>

<div style="border:2px solid #d4af37; padding:12px; border-radius:10px;">
<p>목차</p>
</div>

<hr />
<h2 %s>소제목 1</h2>
<p>2~3문장 단락으로...</p>
%s

<hr />
<h2 %s>소제목 2</h2>
<table style="border:2px solid #d4af37; width:100%%; border-collapse:collapse;">
<tr><th style="border:1px solid #d4af37; padding:10px;">비교 항목</th><th style="border:1px solid #d4af37; padding:10px;">설명</th></tr>
<tr><td style="border:1px solid #d4af37; padding:10px;">포인트</td><td style="border:1px solid #d4af37; padding:10px;">...</td></tr>
</table>
%s

<hr />
<h2 %s>소제목 3</h2>
<div style="background-color:#e6f7ff; border-left:5px solid #1890ff; padding:15px; margin:20px 0; color:#555;"><strong>TIP:</strong> ...</div>

<hr />
<h2 %s>소제목 4</h2>
<p>FAQ: 자주 묻는 질문</p>
%s

<div style="border:2px solid #d4af37; padding:12px; border-radius:10px;">
<p>핵심 요약 3줄</p>
</div>

<div style="background-color:#ffe6e6; border-left:5px solid #ff4d4d; padding:15px; margin:20px 0; color:#555;"><strong>주의:</strong> ...</div>

<p>따뜻한 멘트 + 댓글/공감 유도</p>
</div>`,
		titleFinal, h2Style, detailBlock, h2Style, detailBlock, h2Style, h2Style, detailBlock)
}
