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
	"testing"
)

func TestPatternModerator(t *testing.T) {
	m := NewPatternModerator()

	tests := []struct {
		name    string
		text    string
		blocked bool
		flagged bool
	}{
		{"clean", "<p>전세 계약을 준비하는 차분한 안내 글입니다.</p>", false, false},
		{"blocked medical", "<p>이 제품 하나면 완치됩니다.</p>", true, false},
		{"blocked financial", "<p>원금 보장 확정 수익 상품입니다.</p>", true, false},
		{"flagged only", "<p>충격적인 가격, 지금 당장 확인하세요.</p>", false, true},
		{"blocked and flagged", "<p>충격! 무조건 수익 납니다.</p>", true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := m.Moderate(context.Background(), tt.text)
			if err != nil {
				t.Fatalf("moderate: %v", err)
			}
			if !got.Checked {
				t.Error("summary must be marked checked")
			}
			if got.Model != "pattern_v1" {
				t.Errorf("model = %q", got.Model)
			}
			if got.Blocked != tt.blocked {
				t.Errorf("blocked = %v, want %v (categories %v)", got.Blocked, tt.blocked, got.Categories)
			}
			if got.Flagged != tt.flagged {
				t.Errorf("flagged = %v, want %v (categories %v)", got.Flagged, tt.flagged, got.Categories)
			}
			if (tt.blocked || tt.flagged) && len(got.Categories) == 0 {
				t.Error("verdict should name categories")
			}
		})
	}
}
