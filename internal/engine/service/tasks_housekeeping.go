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
	"fmt"
	"time"

	"github.com/pressline/pressline/internal/engine/model"
	"github.com/pressline/pressline/pkg/daykey"
	"github.com/pressline/pressline/pkg/taskqueue"
)

// handleAnalyzerDaily appends the site's daily run snapshot to the analyzer
// log. It is a terminal housekeeping kind with no successors.
func (s *TaskRouterService) handleAnalyzerDaily(ctx context.Context, payload *taskqueue.Payload) (*HandlerResult, error) {
	site, err := s.loadSite(ctx, payload.SiteId)
	if err != nil {
		return nil, err
	}

	leftover, err := s.repos.Keywords.ListCandidates(ctx, site.SiteId, payload.RunDate)
	if err != nil {
		return nil, fmt.Errorf("candidate list: %w", err)
	}
	lastPublished, err := s.repos.Articles.LastPublishedAt(ctx, site.SiteId)
	if err != nil {
		return nil, fmt.Errorf("last published read: %w", err)
	}

	summary := map[string]any{
		"runDate":            payload.RunDate,
		"candidatesLeftover": len(leftover),
		"generatedAt":        s.now().UTC().Format(time.RFC3339),
	}
	if lastPublished != nil {
		summary["lastPublishedAt"] = lastPublished.UTC().Format(time.RFC3339)
	}

	err = s.repos.Reports.AppendAnalyzerLog(ctx, &model.AnalyzerLog{
		SiteId:  site.SiteId,
		RunDate: payload.RunDate,
		Summary: toJSON(summary),
	})
	if err != nil {
		return nil, fmt.Errorf("analyzer log append: %w", err)
	}
	return nil, nil
}

// handleAdvisorWeekly upserts the global weekly report. The week key is
// taken from the payload, or derived from the run date when absent.
func (s *TaskRouterService) handleAdvisorWeekly(ctx context.Context, payload *taskqueue.Payload) (*HandlerResult, error) {
	weekKey := payload.WeekKey
	if weekKey == "" {
		weekKey = weekKeyFor(payload.RunDate)
	}
	settings, err := s.repos.Settings.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("settings read: %w", err)
	}

	report := map[string]any{
		"weekKey":       weekKey,
		"growthVersion": settings.GrowthVersion,
		"generatedAt":   s.now().UTC().Format(time.RFC3339),
	}
	err = s.repos.Reports.UpsertAdvisorReport(ctx, &model.AdvisorReport{
		WeekKey: weekKey,
		Report:  toJSON(report),
	})
	if err != nil {
		return nil, fmt.Errorf("advisor report upsert: %w", err)
	}
	return nil, nil
}

// weekKeyFor maps a day key to its ISO week key, e.g. "2026-W09".
func weekKeyFor(runDate string) string {
	t, err := time.Parse(daykey.Layout, runDate)
	if err != nil {
		t = time.Now()
	}
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}
