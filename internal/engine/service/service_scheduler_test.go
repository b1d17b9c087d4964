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
	"testing"
	"time"

	"github.com/pressline/pressline/internal/engine/model"
	"github.com/pressline/pressline/pkg/taskqueue"
)

func newSchedulerEngine(t *testing.T) (*testEngine, *SchedulerService) {
	t.Helper()
	e := newTestEngine(t, nil)
	s := NewSchedulerService(e.repos, e.queue, 0)
	s.now = func() time.Time { return fixedNow }
	s.jitter = func(min, _ int) int { return min }
	return e, s
}

func TestSeedDailyEnqueuesEntryTasks(t *testing.T) {
	e, s := newSchedulerEngine(t)
	seedSite(e, nil)
	seedSite(e, func(site *model.Site) { site.SiteId = "site-b" })
	seedSite(e, func(site *model.Site) {
		site.SiteId = "site-off"
		site.Enabled = 0
	})

	if err := s.SeedDaily(context.Background()); err != nil {
		t.Fatalf("SeedDaily: %v", err)
	}

	for _, kind := range []string{taskqueue.TaskKwCollect, taskqueue.TaskAnalyzerDaily} {
		payloads := e.queue.payloads(kind)
		if len(payloads) != 2 {
			t.Fatalf("%s seeded %d times, want one per enabled site", kind, len(payloads))
		}
		for _, p := range payloads {
			if p.SiteId == "site-off" {
				t.Errorf("disabled site seeded: %+v", p)
			}
			if p.RunDate != testDay {
				t.Errorf("seed runDate = %q, want %q", p.RunDate, testDay)
			}
			wantKey := kind + ":" + p.SiteId + ":" + testDay
			if p.IdempotencyKey != wantKey {
				t.Errorf("seed key = %q, want %q", p.IdempotencyKey, wantKey)
			}
			if p.RequestedByUid != schedulerUid {
				t.Errorf("seed uid = %q", p.RequestedByUid)
			}
		}
	}

	// Default jitter floor is 120s.
	for _, entry := range e.queue.byType(taskqueue.TaskKwCollect) {
		if entry.DelaySeconds != 120 {
			t.Errorf("seed delay = %ds, want jitter floor 120", entry.DelaySeconds)
		}
	}
}

func TestSeedDailyClaimsOncePerDay(t *testing.T) {
	e, s := newSchedulerEngine(t)
	seedSite(e, nil)

	if err := s.SeedDaily(context.Background()); err != nil {
		t.Fatalf("first SeedDaily: %v", err)
	}
	if err := s.SeedDaily(context.Background()); err != nil {
		t.Fatalf("second SeedDaily: %v", err)
	}

	if got := len(e.queue.entries); got != 2 {
		t.Fatalf("total seeds = %d, want 2 after the repeat no-oped", got)
	}

	runId := model.PipelineRunIdFor("site-a", testDay, "GROWTH_V1")
	run, _ := e.pipes.Get(context.Background(), runId)
	if run == nil || run.State != model.PipelineRunSucceeded {
		t.Fatalf("pipeline run = %+v, want succeeded claim row", run)
	}
}

func TestSeedDailyNewDayReseeds(t *testing.T) {
	e, s := newSchedulerEngine(t)
	seedSite(e, nil)

	if err := s.SeedDaily(context.Background()); err != nil {
		t.Fatalf("SeedDaily day one: %v", err)
	}
	s.now = func() time.Time { return fixedNow.Add(24 * time.Hour) }
	if err := s.SeedDaily(context.Background()); err != nil {
		t.Fatalf("SeedDaily day two: %v", err)
	}

	if got := len(e.queue.entries); got != 4 {
		t.Fatalf("total seeds = %d, want 4 across two days", got)
	}
	dayTwo := e.queue.payloads(taskqueue.TaskKwCollect)[1]
	if dayTwo.RunDate != "2026-02-14" {
		t.Errorf("day-two runDate = %q, want 2026-02-14", dayTwo.RunDate)
	}
}

func TestSchedulerCronSpec(t *testing.T) {
	_, s := newSchedulerEngine(t)
	if err := s.Start("bad spec"); err == nil {
		s.Stop()
		t.Fatal("Start accepted a malformed cron spec")
	}
	if err := s.Start(""); err != nil {
		t.Fatalf("Start with default spec: %v", err)
	}
	s.Stop()
}
