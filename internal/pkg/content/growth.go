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

import "math"

// GrowthLane buckets demand shape: short spike, steady, or unclear.
type GrowthLane string

const (
	LaneHot       GrowthLane = "hot"
	LaneEvergreen GrowthLane = "evergreen"
	LaneWatch     GrowthLane = "watch"
)

// CompetitionBand buckets supply pressure from existing documents.
type CompetitionBand string

const (
	CompetitionLow     CompetitionBand = "low"
	CompetitionMid     CompetitionBand = "mid"
	CompetitionHard    CompetitionBand = "hard"
	CompetitionExtreme CompetitionBand = "extreme"
)

// GrowthConfig holds the scoring thresholds.
type GrowthConfig struct {
	MinTrend30 float64
	MinTrend7  float64

	HotMomentumMin        float64 // trend3/trend30
	EvergreenStabilityMin float64 // trend7/trend30

	LowBlogDocsMax  float64
	LowCompRatioMax float64

	MidBlogDocsMax  float64
	MidCompRatioMax float64

	HardBlogDocsMax  float64
	HardCompRatioMax float64

	MidCompetitionShare float64 // 0.10~0.20
}

// GrowthV1 is the current production threshold set.
var GrowthV1 = GrowthConfig{
	MinTrend30: 20,
	MinTrend7:  15,

	HotMomentumMin:        1.10,
	EvergreenStabilityMin: 0.90,

	LowBlogDocsMax:  50_000,
	LowCompRatioMax: 40,

	MidBlogDocsMax:  150_000,
	MidCompRatioMax: 90,

	HardBlogDocsMax:  300_000,
	HardCompRatioMax: 140,

	MidCompetitionShare: 0.15,
}

// GrowthInput carries keyword demand and supply metrics.
type GrowthInput struct {
	Trend3   float64
	Trend7   float64
	Trend30  float64
	BlogDocs float64
}

// GrowthScoreResult is the scored verdict for one keyword.
type GrowthScoreResult struct {
	Eligible    bool
	Lane        GrowthLane
	Competition CompetitionBand
	CompRatio   float64
	Score       int
	Notes       []string
}

// CompRatio is existing documents per unit of monthly search demand.
func CompRatio(blogDocs, trend30 float64) float64 {
	monthly := math.Max(trend30*30, 1)
	return blogDocs / monthly
}

func competitionBand(blogDocs, ratio float64, cfg GrowthConfig) CompetitionBand {
	switch {
	case blogDocs <= cfg.LowBlogDocsMax && ratio <= cfg.LowCompRatioMax:
		return CompetitionLow
	case blogDocs <= cfg.MidBlogDocsMax && ratio <= cfg.MidCompRatioMax:
		return CompetitionMid
	case blogDocs <= cfg.HardBlogDocsMax && ratio <= cfg.HardCompRatioMax:
		return CompetitionHard
	default:
		return CompetitionExtreme
	}
}

func laneForInput(input GrowthInput, cfg GrowthConfig) GrowthLane {
	momentum := input.Trend3 / math.Max(input.Trend30, 1)
	stability := input.Trend7 / math.Max(input.Trend30, 1)
	if momentum >= cfg.HotMomentumMin {
		return LaneHot
	}
	if stability >= cfg.EvergreenStabilityMin {
		return LaneEvergreen
	}
	return LaneWatch
}

// EvaluateGrowthScore scores a keyword 0..100 from demand, recency, momentum,
// lane and competition components.
func EvaluateGrowthScore(input GrowthInput, cfg GrowthConfig) GrowthScoreResult {
	ratio := CompRatio(input.BlogDocs, input.Trend30)
	competition := competitionBand(input.BlogDocs, ratio, cfg)
	lane := laneForInput(input, cfg)
	eligible := input.Trend30 >= cfg.MinTrend30 && input.Trend7 >= cfg.MinTrend7

	demandScore := math.Min(35, (input.Trend30/140)*35)
	recencyScore := math.Min(20, (input.Trend7/math.Max(input.Trend30, 1))*24)
	momentumScore := math.Min(15, (input.Trend3/math.Max(input.Trend30, 1.0))*16)

	laneScore := 4.0
	switch lane {
	case LaneHot:
		laneScore = 12
	case LaneEvergreen:
		laneScore = 9
	}

	competitionScore := 1.0
	switch competition {
	case CompetitionLow:
		competitionScore = 18
	case CompetitionMid:
		competitionScore = 12
	case CompetitionHard:
		competitionScore = 6
	}

	score := int(math.Round(demandScore + recencyScore + momentumScore + laneScore + competitionScore))
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	var notes []string
	if !eligible {
		notes = append(notes, "기본 수요 임계값(7d/30d)을 충족하지 못해 우선순위를 낮춰야 합니다.")
	}
	if competition == CompetitionExtreme {
		notes = append(notes, "문서량 대비 검색수요가 낮아 경쟁 과열 구간입니다.")
	}
	switch lane {
	case LaneHot:
		notes = append(notes, "단기 모멘텀이 강합니다. 짧은 발행 주기 테스트가 유효합니다.")
	case LaneEvergreen:
		notes = append(notes, "안정형 수요입니다. 구조화 콘텐츠와 누적 SEO에 유리합니다.")
	case LaneWatch:
		notes = append(notes, "모멘텀/안정성이 애매합니다. 키워드 확장 후 재평가를 권장합니다.")
	}

	return GrowthScoreResult{
		Eligible:    eligible,
		Lane:        lane,
		Competition: competition,
		CompRatio:   ratio,
		Score:       score,
		Notes:       notes,
	}
}
