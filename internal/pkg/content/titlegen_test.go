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

import "testing"

func TestNormalizeTitle(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"전세 계약 방법!", "전세 계약 방법"},
		{"  UPPER   Case  ", "upper case"},
		{`"충격" 전세 계약`, "충격 전세 계약"},
	}
	for _, tt := range tests {
		if got := NormalizeTitle(tt.in); got != tt.want {
			t.Errorf("NormalizeTitle(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestMaxTitleSimilarity(t *testing.T) {
	if got := MaxTitleSimilarity("전세 계약 방법", []string{"전세 계약 방법"}); got != 1 {
		t.Errorf("identical titles similarity = %v, want 1", got)
	}
	if got := MaxTitleSimilarity("전세 계약 방법", nil); got != 0 {
		t.Errorf("no history similarity = %v, want 0", got)
	}
	got := MaxTitleSimilarity("캠핑 장비 추천", []string{"연말정산 공제 정리"})
	if got >= titlePickThreshold {
		t.Errorf("unrelated titles similarity = %v, want < %v", got, titlePickThreshold)
	}
}

func TestBuildTitleCandidates(t *testing.T) {
	candidates := BuildTitleCandidates("전세 계약")
	if len(candidates) != 12 {
		t.Fatalf("got %d candidates, want 12", len(candidates))
	}
	seen := map[string]struct{}{}
	for _, c := range candidates {
		if c == "" {
			t.Fatal("empty candidate")
		}
		if _, dup := seen[c]; dup {
			t.Fatalf("duplicate candidate %q", c)
		}
		seen[c] = struct{}{}
	}
}

func TestPickTitleAvoidsRecentTitles(t *testing.T) {
	candidates := BuildTitleCandidates("전세 계약")

	picked, sim := PickTitle(candidates, nil)
	if picked != candidates[0] || sim != 0 {
		t.Errorf("empty history should accept first candidate, got %q sim=%v", picked, sim)
	}

	// With the first candidate already published, the picker moves on.
	picked, sim = PickTitle(candidates, []string{candidates[0]})
	if picked == candidates[0] {
		t.Error("picker should skip a just-published title")
	}
	if sim >= titlePickThreshold {
		t.Errorf("picked similarity %v should be under threshold", sim)
	}
}

func TestPickTitleFallsBackToLeastSimilar(t *testing.T) {
	candidates := []string{"전세 계약 방법 정리", "전세 계약 방법 총정리"}
	old := []string{"전세 계약 방법 정리", "전세 계약 방법 총정리 모음"}
	picked, sim := PickTitle(candidates, old)
	if picked == "" {
		t.Fatal("picker must always return a title")
	}
	if sim < titlePickThreshold {
		t.Errorf("fixture should force fallback, got sim %v", sim)
	}
}
