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
	"math"
	"testing"
)

func TestCompRatio(t *testing.T) {
	tests := []struct {
		name     string
		blogDocs float64
		trend30  float64
		want     float64
	}{
		{"typical", 30000, 100, 10},
		{"zero trend clamps denominator", 5000, 0, 5000},
		{"tiny trend clamps denominator", 5000, 0.01, 5000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CompRatio(tt.blogDocs, tt.trend30)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("CompRatio(%v, %v) = %v, want %v", tt.blogDocs, tt.trend30, got, tt.want)
			}
		})
	}
}

func TestEvaluateGrowthScoreLanes(t *testing.T) {
	tests := []struct {
		name  string
		input GrowthInput
		lane  GrowthLane
	}{
		{"hot on momentum", GrowthInput{Trend3: 120, Trend7: 80, Trend30: 100, BlogDocs: 20000}, LaneHot},
		{"evergreen on stability", GrowthInput{Trend3: 50, Trend7: 95, Trend30: 100, BlogDocs: 20000}, LaneEvergreen},
		{"watch otherwise", GrowthInput{Trend3: 40, Trend7: 50, Trend30: 100, BlogDocs: 20000}, LaneWatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EvaluateGrowthScore(tt.input, GrowthV1)
			if got.Lane != tt.lane {
				t.Errorf("lane = %s, want %s", got.Lane, tt.lane)
			}
		})
	}
}

func TestEvaluateGrowthScoreCompetitionBands(t *testing.T) {
	tests := []struct {
		name  string
		input GrowthInput
		band  CompetitionBand
	}{
		{"low", GrowthInput{Trend3: 50, Trend7: 50, Trend30: 100, BlogDocs: 30000}, CompetitionLow},
		{"mid on docs", GrowthInput{Trend3: 50, Trend7: 50, Trend30: 100, BlogDocs: 120000}, CompetitionMid},
		{"hard on docs", GrowthInput{Trend3: 50, Trend7: 50, Trend30: 100, BlogDocs: 250000}, CompetitionHard},
		{"extreme past hard cap", GrowthInput{Trend3: 50, Trend7: 50, Trend30: 100, BlogDocs: 500000}, CompetitionExtreme},
		{"extreme on ratio despite low docs", GrowthInput{Trend3: 5, Trend7: 5, Trend30: 1, BlogDocs: 40000}, CompetitionExtreme},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EvaluateGrowthScore(tt.input, GrowthV1)
			if got.Competition != tt.band {
				t.Errorf("competition = %s (ratio %v), want %s", got.Competition, got.CompRatio, tt.band)
			}
		})
	}
}

func TestEvaluateGrowthScoreEligibility(t *testing.T) {
	ok := EvaluateGrowthScore(GrowthInput{Trend3: 10, Trend7: 15, Trend30: 20, BlogDocs: 1000}, GrowthV1)
	if !ok.Eligible {
		t.Error("thresholds met should be eligible")
	}
	low := EvaluateGrowthScore(GrowthInput{Trend3: 10, Trend7: 14, Trend30: 20, BlogDocs: 1000}, GrowthV1)
	if low.Eligible {
		t.Error("trend7 below threshold should not be eligible")
	}
	if len(low.Notes) == 0 {
		t.Error("ineligible result should carry a note")
	}
}

func TestEvaluateGrowthScoreBounds(t *testing.T) {
	inputs := []GrowthInput{
		{},
		{Trend3: 1000, Trend7: 1000, Trend30: 1000, BlogDocs: 0},
		{Trend3: 140, Trend7: 140, Trend30: 140, BlogDocs: 10000},
	}
	for _, input := range inputs {
		got := EvaluateGrowthScore(input, GrowthV1)
		if got.Score < 0 || got.Score > 100 {
			t.Errorf("score %d out of range for %+v", got.Score, input)
		}
	}
}
