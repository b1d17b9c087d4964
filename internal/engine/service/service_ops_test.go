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
	"strings"
	"testing"
	"time"

	"github.com/pressline/pressline/internal/engine/model"
)

func newOpsEngine(t *testing.T) (*testEngine, *OpsService) {
	t.Helper()
	e := newTestEngine(t, nil)
	e.svc.now = func() time.Time { return fixedNow }
	ops := NewOpsService(e.repos, e.svc, 0)
	ops.now = func() time.Time { return fixedNow }
	return e, ops
}

func checkByName(t *testing.T, report *HealthReport, name string) HealthCheck {
	t.Helper()
	for _, c := range report.Checks {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("no %s check in %+v", name, report.Checks)
	return HealthCheck{}
}

func TestHealthReportsDatabaseDown(t *testing.T) {
	_, ops := newOpsEngine(t)

	// The repository bundle has no live database handle, so the ping probe
	// must land in the errors list and flip overall OK.
	report := ops.Health(context.Background())
	if report.OK {
		t.Fatal("report.OK = true with the database unreachable")
	}
	db := checkByName(t, report, "database")
	if db.OK {
		t.Errorf("database check = %+v, want failing", db)
	}
	if len(report.Errors) == 0 {
		t.Error("no errors recorded for a failed database probe")
	}
}

func TestHealthQueueLatencyThresholds(t *testing.T) {
	cases := []struct {
		name     string
		age      time.Duration
		wantOK   bool
		wantWarn bool
	}{
		{"fresh", time.Minute, true, false},
		{"warning", 15 * time.Minute, true, true},
		{"error", 45 * time.Minute, false, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e, ops := newOpsEngine(t)
			queuedAt := fixedNow.Add(-tc.age)
			e.runs.runs["stuck"] = &model.TaskRun{
				IdempotencyKey: "stuck",
				Status:         model.TaskRunQueued,
				QueuedAt:       &queuedAt,
			}

			report := ops.Health(context.Background())
			check := checkByName(t, report, "queue_latency")
			if check.OK != tc.wantOK {
				t.Errorf("queue_latency OK = %v, want %v (%+v)", check.OK, tc.wantOK, check)
			}
			warned := false
			for _, w := range report.Warnings {
				if strings.HasPrefix(w, "queue_latency:") {
					warned = true
				}
			}
			if warned != tc.wantWarn {
				t.Errorf("queue_latency warning = %v, want %v", warned, tc.wantWarn)
			}
		})
	}
}

func TestHealthPipelineRecency(t *testing.T) {
	e, ops := newOpsEngine(t)

	report := ops.Health(context.Background())
	if c := checkByName(t, report, "pipeline_recency"); !c.OK {
		t.Errorf("pipeline_recency = %+v, want soft warning while no run exists", c)
	}
	if len(report.Warnings) == 0 {
		t.Error("no warning for a missing pipeline run")
	}

	// A recent success clears the warning.
	run := &model.PipelineRun{
		PipelineRunId: "site-a_2026-02-13_GROWTH_V1",
		SiteId:        "site-a", RunDate: testDay,
	}
	e.pipes.Claim(context.Background(), run)
	e.pipes.Finish(context.Background(), run.PipelineRunId, model.PipelineRunSucceeded, "", "")

	report = ops.Health(context.Background())
	for _, w := range report.Warnings {
		if strings.HasPrefix(w, "pipeline_recency:") {
			t.Errorf("stale warning kept after a fresh success: %s", w)
		}
	}
}

func TestHealthCostToday(t *testing.T) {
	e, ops := newOpsEngine(t)

	report := ops.Health(context.Background())
	found := false
	for _, w := range report.Warnings {
		if strings.HasPrefix(w, "cost_today:") {
			found = true
		}
	}
	if !found {
		t.Error("no warning while the day has no cost rows")
	}

	e.costs.Add(context.Background(), "site-a", testDay, "analyzer_daily", 1, 1)
	report = ops.Health(context.Background())
	for _, w := range report.Warnings {
		if strings.HasPrefix(w, "cost_today:") {
			t.Errorf("cost warning kept after a row landed: %s", w)
		}
	}
}

func TestSmokeRun(t *testing.T) {
	e, ops := newOpsEngine(t)
	seedSite(e, nil)

	result, err := ops.Smoke(context.Background(), "site-a", testDay)
	if err != nil {
		t.Fatalf("Smoke: %v", err)
	}
	if !result.OK {
		t.Fatalf("smoke result = %+v, want OK", result)
	}
	if result.Status != model.ArticlePackaged {
		t.Errorf("smoke article status = %q, want packaged", result.Status)
	}
	if !result.CostRow {
		t.Error("smoke left no cost row")
	}

	article, _ := e.articles.Get(context.Background(), result.ArticleId)
	if article == nil || article.PackagePath == "" {
		t.Fatalf("smoke article = %+v, want packaged with path", article)
	}
	// Smoke runs stop at packaging; nothing may reach a platform.
	if got := len(e.queue.byType("publish_execute")); got != 0 {
		t.Errorf("smoke enqueued publish_execute")
	}
}

func TestSmokeRunUnknownSite(t *testing.T) {
	_, ops := newOpsEngine(t)
	if _, err := ops.Smoke(context.Background(), "nope", testDay); err == nil {
		t.Fatal("Smoke accepted an unknown site")
	}
}

func TestSmokeRunRepeatable(t *testing.T) {
	e, ops := newOpsEngine(t)
	seedSite(e, nil)

	first, err := ops.Smoke(context.Background(), "site-a", testDay)
	if err != nil {
		t.Fatalf("first Smoke: %v", err)
	}
	second, err := ops.Smoke(context.Background(), "site-a", testDay)
	if err != nil {
		t.Fatalf("second Smoke: %v", err)
	}
	if first.ArticleId != second.ArticleId {
		t.Errorf("smoke article id changed between runs: %s -> %s", first.ArticleId, second.ArticleId)
	}
	if !second.OK {
		t.Errorf("second smoke = %+v, want OK via ledger dedup", second)
	}
}
