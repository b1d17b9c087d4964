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

	"github.com/google/uuid"
	"github.com/pressline/pressline/internal/engine/model"
	"github.com/pressline/pressline/internal/engine/repo"
	"github.com/pressline/pressline/pkg/daykey"
	"github.com/pressline/pressline/pkg/taskqueue"
)

// Queue latency thresholds for the health report.
const (
	queueWarnAge  = 10 * time.Minute
	queueErrorAge = 30 * time.Minute
)

// pipelineStaleAfter flags an engine that has not completed a daily run.
const pipelineStaleAfter = 48 * time.Hour

// opsUid marks smoke-run payloads on the run ledger.
const opsUid = "ops"

// HealthCheck is one probe result in the health report.
type HealthCheck struct {
	Name   string `json:"name"`
	OK     bool   `json:"ok"`
	Detail string `json:"detail,omitempty"`
}

// HealthReport aggregates the probes. OK is false only on hard errors;
// warnings leave the engine serving.
type HealthReport struct {
	OK       bool          `json:"ok"`
	Checks   []HealthCheck `json:"checks"`
	Warnings []string      `json:"warnings"`
	Errors   []string      `json:"errors"`
}

// SmokeResult reports one synthetic end-to-end run.
type SmokeResult struct {
	OK        bool   `json:"ok"`
	SiteId    string `json:"siteId"`
	RunDate   string `json:"runDate"`
	ArticleId string `json:"articleId"`
	Status    string `json:"status"`
	CostRow   bool   `json:"costRow"`
	Note      string `json:"note,omitempty"`
}

// OpsService backs the operational endpoints: the health report and the
// inline smoke run.
type OpsService struct {
	repos         *repo.Repositories
	router        *TaskRouterService
	offsetMinutes int

	now func() time.Time
}

func NewOpsService(repos *repo.Repositories, router *TaskRouterService, offsetMinutes int) *OpsService {
	if offsetMinutes == 0 {
		offsetMinutes = daykey.DefaultOffsetMinutes
	}
	return &OpsService{
		repos:         repos,
		router:        router,
		offsetMinutes: offsetMinutes,
		now:           time.Now,
	}
}

// Health probes the database, queue backlog, pipeline recency and today's
// cost accounting.
func (s *OpsService) Health(ctx context.Context) *HealthReport {
	report := &HealthReport{Warnings: []string{}, Errors: []string{}}
	now := s.now()
	today := daykey.Day(now, s.offsetMinutes)

	addCheck := func(name string, ok bool, detail string) {
		report.Checks = append(report.Checks, HealthCheck{Name: name, OK: ok, Detail: detail})
	}

	if err := s.repos.Ping(ctx); err != nil {
		addCheck("database", false, err.Error())
		report.Errors = append(report.Errors, "database: "+err.Error())
	} else {
		addCheck("database", true, "")
	}

	age, err := s.repos.TaskRuns.OldestQueuedAge(ctx, now)
	switch {
	case err != nil:
		addCheck("queue_latency", false, err.Error())
		report.Errors = append(report.Errors, "queue_latency: "+err.Error())
	case age > queueErrorAge:
		detail := fmt.Sprintf("oldest queued task waiting %s", age.Round(time.Second))
		addCheck("queue_latency", false, detail)
		report.Errors = append(report.Errors, "queue_latency: "+detail)
	case age > queueWarnAge:
		detail := fmt.Sprintf("oldest queued task waiting %s", age.Round(time.Second))
		addCheck("queue_latency", true, detail)
		report.Warnings = append(report.Warnings, "queue_latency: "+detail)
	default:
		addCheck("queue_latency", true, "")
	}

	last, err := s.repos.Pipelines.LastFinished(ctx, model.PipelineRunSucceeded)
	switch {
	case err != nil:
		addCheck("pipeline_recency", false, err.Error())
		report.Errors = append(report.Errors, "pipeline_recency: "+err.Error())
	case last == nil:
		addCheck("pipeline_recency", true, "no finished pipeline run yet")
		report.Warnings = append(report.Warnings, "pipeline_recency: no successful pipeline run recorded")
	case last.EndedAt != nil && now.Sub(*last.EndedAt) > pipelineStaleAfter:
		detail := fmt.Sprintf("last success %s (%s ago)", last.RunDate, now.Sub(*last.EndedAt).Round(time.Hour))
		addCheck("pipeline_recency", true, detail)
		report.Warnings = append(report.Warnings, "pipeline_recency: "+detail)
	default:
		addCheck("pipeline_recency", true, last.RunDate)
	}

	hasCost, err := s.repos.Costs.HasRow(ctx, "", today)
	switch {
	case err != nil:
		addCheck("cost_today", false, err.Error())
		report.Errors = append(report.Errors, "cost_today: "+err.Error())
	case !hasCost:
		addCheck("cost_today", true, "no cost rows for "+today)
		report.Warnings = append(report.Warnings, "cost_today: no cost rows for "+today)
	default:
		addCheck("cost_today", true, "")
	}

	report.OK = len(report.Errors) == 0
	return report
}

// Smoke runs a synthetic ready article through analyzer_daily and
// article_package inline and asserts the pipeline side effects.
func (s *OpsService) Smoke(ctx context.Context, siteId, runDate string) (*SmokeResult, error) {
	if siteId == "" {
		return nil, fmt.Errorf("siteId is required")
	}
	site, err := s.repos.Sites.Get(ctx, siteId)
	if err != nil {
		return nil, fmt.Errorf("site read: %w", err)
	}
	if site == nil {
		return nil, fmt.Errorf("site %s not found", siteId)
	}
	if runDate == "" {
		offset := site.OffsetMinutes
		if offset == 0 {
			offset = s.offsetMinutes
		}
		runDate = daykey.Day(s.now(), offset)
	}

	articleId, err := s.synthesizeArticle(ctx, siteId, runDate)
	if err != nil {
		return nil, err
	}

	for _, kind := range []string{taskqueue.TaskAnalyzerDaily, taskqueue.TaskArticlePackage} {
		if err := s.router.Route(ctx, s.smokePayload(kind, siteId, runDate, articleId)); err != nil {
			return nil, fmt.Errorf("route %s: %w", kind, err)
		}
	}

	article, err := s.repos.Articles.Get(ctx, articleId)
	if err != nil {
		return nil, fmt.Errorf("article read: %w", err)
	}
	hasCost, err := s.repos.Costs.HasRow(ctx, siteId, runDate)
	if err != nil {
		return nil, fmt.Errorf("cost read: %w", err)
	}

	result := &SmokeResult{
		SiteId:    siteId,
		RunDate:   runDate,
		ArticleId: articleId,
		CostRow:   hasCost,
	}
	if article != nil {
		result.Status = article.Status
	}
	result.OK = result.Status == model.ArticlePackaged && hasCost
	if !result.OK {
		result.Note = "expected status packaged with a cost row"
	}
	return result, nil
}

// synthesizeArticle writes a minimal ready article the package stage can
// consume. Reuses the same id per (site, day) so repeated smokes are cheap.
func (s *OpsService) synthesizeArticle(ctx context.Context, siteId, runDate string) (string, error) {
	articleId := deriveId("smoke", siteId+"|"+runDate)
	keyword := "스모크 테스트"
	article := &model.Article{
		ArticleId:  articleId,
		SiteId:     siteId,
		RunDate:    runDate,
		Status:     model.ArticleReady,
		Keyword:    keyword,
		TitleFinal: keyword + " 점검 글",
		HTML:       "<p>" + keyword + " 패키징 점검용 본문입니다.</p>",
	}
	if err := s.repos.Articles.CreateIfAbsent(ctx, article); err != nil {
		return "", fmt.Errorf("smoke article create: %w", err)
	}
	return articleId, nil
}

func (s *OpsService) smokePayload(kind, siteId, runDate, articleId string) *taskqueue.Payload {
	p := &taskqueue.Payload{
		SchemaVersion:  taskqueue.SchemaVersion,
		TaskType:       kind,
		SiteId:         siteId,
		TraceId:        uuid.NewString(),
		CreatedAt:      s.now().UTC().Format(time.RFC3339),
		RequestedByUid: opsUid,
		RunDate:        runDate,
		OpsSmoke:       true,
		IdempotencyKey: taskqueue.Key(taskqueue.KeyParts{
			TaskType: kind,
			SiteId:   siteId,
			RunDate:  runDate,
			EntityId: articleIdForKey(kind, articleId),
		}),
	}
	if kind == taskqueue.TaskArticlePackage {
		p.ArticleId = articleId
	}
	return p
}

// articleIdForKey keeps housekeeping keys free of the synthetic article id.
func articleIdForKey(kind, articleId string) string {
	if kind == taskqueue.TaskAnalyzerDaily {
		return ""
	}
	return articleId
}
