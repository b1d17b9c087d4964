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
	"bytes"
	"image/png"
	"testing"
)

func TestBuildTopCardPoints(t *testing.T) {
	k12 := K12{
		Main:     [2]string{"전세 계약", "전세 계약 방법"},
		Longtail: []string{"전세 계약 주의", "전세 계약 후기"},
		Inflow:   []string{"전세 보증금"},
	}

	got := BuildTopCardPoints(k12, IntentRisk)
	if got.Points[0] != "전세 계약" || got.Points[1] != "전세 계약 방법" {
		t.Errorf("main keywords must lead: %v", got.Points)
	}
	if got.Points[2] != "전세 계약 주의" {
		t.Errorf("third point = %q, want intent match", got.Points[2])
	}
	if got.IconKeys != [3]string{"target", "tag", "spark"} {
		t.Errorf("icon keys = %v", got.IconKeys)
	}
	for i, l := range got.LabelsShort {
		if l == "" {
			t.Errorf("label %d empty", i)
		}
		if n := len([]rune(l)); n > 8 {
			t.Errorf("label %d too long: %q (%d runes)", i, l, n)
		}
	}
}

func TestBuildTopCardPointsFallbackOrder(t *testing.T) {
	k12 := K12{
		Main:   [2]string{"캠핑", "캠핑 장비"},
		Inflow: []string{"캠핑 의자"},
	}
	got := BuildTopCardPoints(k12, IntentPrice)
	if got.Points[2] != "캠핑 의자" {
		t.Errorf("no intent match should fall back to inflow, got %q", got.Points[2])
	}
}

func TestShortLabelStripsAndTruncates(t *testing.T) {
	if got := shortLabel("전세 계약 (기본)", 8); got != "전세계약기본" {
		t.Errorf("shortLabel = %q", got)
	}
	if got := shortLabel("아주아주아주긴키워드라벨", 8); got != "아주아주아주긴키" {
		t.Errorf("truncated label = %q", got)
	}
}

func decodePNGSize(t *testing.T, data []byte) (int, int) {
	t.Helper()
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("png decode: %v", err)
	}
	b := img.Bounds()
	return b.Dx(), b.Dy()
}

func TestRenderTopCardPNG(t *testing.T) {
	input := TopCardInput{TitleShort: "전세 계약", LabelsShort: []string{"계약", "보증금", "주의"}}
	a := RenderTopCardPNG(input)
	b := RenderTopCardPNG(input)
	if !bytes.Equal(a, b) {
		t.Error("render must be deterministic")
	}
	if w, h := decodePNGSize(t, a); w != 1200 || h != 630 {
		t.Errorf("top card size = %dx%d, want 1200x630", w, h)
	}

	other := RenderTopCardPNG(TopCardInput{TitleShort: "캠핑 장비"})
	if bytes.Equal(a, other) {
		t.Error("different inputs should render differently")
	}
}

func TestRenderInfographicPNG(t *testing.T) {
	for _, infoType := range []InfoType{InfoFlow, InfoChecklist, InfoCompare, InfoMatrix, InfoRiskmap, InfoScenario, InfoProsCons} {
		data := RenderInfographicPNG(InfographicInput{
			Title:    "전세 계약",
			InfoType: infoType,
			Labels:   []string{"하나", "둘"},
		})
		if w, h := decodePNGSize(t, data); w != 1200 || h != 800 {
			t.Errorf("%s size = %dx%d, want 1200x800", infoType, w, h)
		}
	}
}
