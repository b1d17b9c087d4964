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

func TestDetectIntent(t *testing.T) {
	tests := []struct {
		text string
		want Intent
	}{
		{"전세 계약 방법", IntentHowto},
		{"노트북 비교 추천", IntentCompare},
		{"아이폰 최저가 쿠폰", IntentPrice},
		{"에어프라이어 후기", IntentReview},
		{"전세 사기 주의", IntentRisk},
		{"고양이", IntentInfo},
		{"", IntentInfo},
	}
	for _, tt := range tests {
		if got := DetectIntent(tt.text); got != tt.want {
			t.Errorf("DetectIntent(%q) = %s, want %s", tt.text, got, tt.want)
		}
	}
}

func TestBuildImagePlanCoversFourSections(t *testing.T) {
	for _, intent := range []Intent{IntentHowto, IntentCompare, IntentPrice, IntentReview, IntentRisk, IntentInfo} {
		plan := BuildImagePlan(intent)
		for _, key := range []string{"h2_1", "h2_2", "h2_3", "h2_4"} {
			slot, ok := plan[key]
			if !ok {
				t.Fatalf("intent %s missing slot %s", intent, key)
			}
			if slot.Kind == ImgInfographic && slot.InfoType == "" {
				t.Errorf("intent %s slot %s: infographic without info type", intent, key)
			}
			if slot.Kind == ImgPhoto && slot.InfoType != "" {
				t.Errorf("intent %s slot %s: photo with info type %s", intent, key, slot.InfoType)
			}
		}
	}
}

func TestBuildImagePlanVariesByIntent(t *testing.T) {
	howto := BuildImagePlan(IntentHowto)
	if howto["h2_2"].InfoType != InfoFlow {
		t.Errorf("howto h2_2 = %s, want %s", howto["h2_2"].InfoType, InfoFlow)
	}
}
