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

package service

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"fmt"

	"github.com/pressline/pressline/internal/engine/model"
	"github.com/pressline/pressline/internal/pkg/content"
	"github.com/pressline/pressline/pkg/log"
	"github.com/pressline/pressline/pkg/taskqueue"
)

// handleKwCollect expands the site's topic and seed keywords into candidate
// rows and hands the day to kw_score.
func (s *TaskRouterService) handleKwCollect(ctx context.Context, payload *taskqueue.Payload) (*HandlerResult, error) {
	site, err := s.loadSite(ctx, payload.SiteId)
	if err != nil {
		return nil, err
	}

	candidates := content.BuildKeywordCandidates(content.CandidateArgs{
		SiteId:       site.SiteId,
		Topic:        site.Topic,
		SeedKeywords: stringList(site.SeedKeywords),
		RunDate:      payload.RunDate,
		ScheduleSlot: payload.ScheduleSlot,
	})

	rows := make([]*model.Keyword, 0, len(candidates))
	for _, c := range candidates {
		rows = append(rows, &model.Keyword{
			KeywordId:     deriveId("kw", site.SiteId+"|"+payload.RunDate+"|"+c.TextNorm),
			SiteId:        site.SiteId,
			RunDate:       payload.RunDate,
			Text:          c.Text,
			TextNorm:      c.TextNorm,
			ClusterId:     c.ClusterId,
			Status:        model.KeywordCandidate,
			Trend3:        c.Trend3,
			Trend7:        c.Trend7,
			Trend30:       c.Trend30,
			BlogDocs:      c.BlogDocs,
			MetricsSource: c.MetricsSource,
			Source:        c.Source,
		})
	}
	inserted, err := s.repos.Keywords.BulkUpsert(ctx, rows)
	if err != nil {
		return nil, fmt.Errorf("keyword upsert: %w", err)
	}
	log.Infow("keyword candidates collected",
		"siteId", site.SiteId, "runDate", payload.RunDate,
		"candidates", len(rows), "inserted", inserted)

	next := payload.Successor(taskqueue.TaskKwScore, taskqueue.Key(taskqueue.KeyParts{
		TaskType: taskqueue.TaskKwScore,
		SiteId:   site.SiteId,
		RunDate:  payload.RunDate,
		RunTag:   payload.CleanRunTag(),
	}))
	if err := s.enqueueSuccessor(ctx, next, 0, true); err != nil {
		return nil, fmt.Errorf("enqueue kw_score: %w", err)
	}
	return nil, nil
}

// handleKwScore scores the day's candidates with the growth config, selects
// one keyword and hands it to title_generate.
func (s *TaskRouterService) handleKwScore(ctx context.Context, payload *taskqueue.Payload) (*HandlerResult, error) {
	if _, err := s.loadSite(ctx, payload.SiteId); err != nil {
		return nil, err
	}
	cfg := content.GrowthV1

	candidates, err := s.repos.Keywords.ListCandidates(ctx, payload.SiteId, payload.RunDate)
	if err != nil {
		return nil, fmt.Errorf("keyword list: %w", err)
	}
	if len(candidates) == 0 {
		return &HandlerResult{FinalState: model.TaskRunSkipped, Detail: "no_candidates"}, nil
	}

	type scored struct {
		kw  *model.Keyword
		res content.GrowthScoreResult
	}
	var eligible, mid []scored
	for _, kw := range candidates {
		res := content.EvaluateGrowthScore(content.GrowthInput{
			Trend3:   float64(kw.Trend3),
			Trend7:   float64(kw.Trend7),
			Trend30:  float64(kw.Trend30),
			BlogDocs: float64(kw.BlogDocs),
		}, cfg)

		if err := s.repos.Keywords.Update(ctx, kw.KeywordId, map[string]any{
			"score":       res.Score,
			"lane":        string(res.Lane),
			"competition": string(res.Competition),
			"comp_ratio":  res.CompRatio,
		}); err != nil {
			log.Warnw("keyword score update failed", "keywordId", kw.KeywordId, "error", err)
		}
		if !res.Eligible {
			continue
		}
		entry := scored{kw: kw, res: res}
		eligible = append(eligible, entry)
		if res.Competition == content.CompetitionMid {
			mid = append(mid, entry)
		}
	}
	if len(eligible) == 0 {
		return &HandlerResult{FinalState: model.TaskRunSkipped, Detail: "no_eligible_keyword"}, nil
	}

	// A fixed share of days goes to a mid-competition pick so the site is
	// not farming only easy keywords. The roll is hashed from the day so
	// redelivery picks the same keyword.
	pool := eligible
	if len(mid) > 0 && dayRoll(payload.SiteId, payload.RunDate) < cfg.MidCompetitionShare {
		pool = mid
	}
	best := pool[0]
	for _, entry := range pool[1:] {
		if entry.res.Score > best.res.Score {
			best = entry
		}
	}

	if err := s.repos.Keywords.Update(ctx, best.kw.KeywordId, map[string]any{
		"status": model.KeywordSelected,
	}); err != nil {
		return nil, fmt.Errorf("keyword select: %w", err)
	}
	log.Infow("keyword selected",
		"siteId", payload.SiteId, "keywordId", best.kw.KeywordId,
		"score", best.res.Score, "lane", best.res.Lane, "competition", best.res.Competition)

	next := payload.Successor(taskqueue.TaskTitleGenerate, taskqueue.Key(taskqueue.KeyParts{
		TaskType: taskqueue.TaskTitleGenerate,
		SiteId:   payload.SiteId,
		EntityId: best.kw.KeywordId,
		RunTag:   payload.CleanRunTag(),
	}))
	next.KeywordId = best.kw.KeywordId
	if err := s.enqueueSuccessor(ctx, next, 0, true); err != nil {
		return nil, fmt.Errorf("enqueue title_generate: %w", err)
	}
	return nil, nil
}

// dayRoll maps (site, day) onto [0, 1) deterministically.
func dayRoll(siteId, runDate string) float64 {
	sum := sha256.Sum256([]byte(siteId + "|" + runDate))
	return float64(binary.BigEndian.Uint32(sum[:4])) / float64(1<<32)
}
