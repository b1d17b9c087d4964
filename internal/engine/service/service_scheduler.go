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
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/pressline/pressline/internal/engine/model"
	"github.com/pressline/pressline/internal/engine/repo"
	"github.com/pressline/pressline/pkg/daykey"
	"github.com/pressline/pressline/pkg/log"
	"github.com/pressline/pressline/pkg/queue"
	"github.com/pressline/pressline/pkg/taskqueue"
	"github.com/robfig/cron"
)

// DefaultCronSpec fires the daily seeding at 09:00 site-local time.
// The spec carries a seconds field.
const DefaultCronSpec = "0 0 9 * * *"

// schedulerUid marks cron-seeded payloads on the run ledger.
const schedulerUid = "scheduler"

// SchedulerService seeds the daily pipeline: one kw_collect and one
// analyzer_daily per enabled site, guarded by the per-day pipeline run claim
// so concurrent engine replicas seed each site at most once.
type SchedulerService struct {
	repos         *repo.Repositories
	queue         queue.Queue
	offsetMinutes int

	cron *cron.Cron
	now  func() time.Time
	// jitter returns a random delay in [min,max] seconds.
	jitter func(min, max int) int
}

func NewSchedulerService(repos *repo.Repositories, q queue.Queue, offsetMinutes int) *SchedulerService {
	if offsetMinutes == 0 {
		offsetMinutes = daykey.DefaultOffsetMinutes
	}
	return &SchedulerService{
		repos:         repos,
		queue:         q,
		offsetMinutes: offsetMinutes,
		now:           time.Now,
		jitter: func(min, max int) int {
			if max <= min {
				return min
			}
			return min + rand.Intn(max-min+1)
		},
	}
}

// Start registers the daily job and starts the cron loop.
func (s *SchedulerService) Start(spec string) error {
	if spec == "" {
		spec = DefaultCronSpec
	}
	c := cron.New()
	err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		if err := s.SeedDaily(ctx); err != nil {
			log.Errorw("daily seeding failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("cron spec %q: %w", spec, err)
	}
	c.Start()
	s.cron = c
	log.Infow("scheduler started", "spec", spec)
	return nil
}

// Stop halts the cron loop. In-flight seeding finishes on its own.
func (s *SchedulerService) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}

// SeedDaily enqueues the day's entry tasks for every enabled site.
func (s *SchedulerService) SeedDaily(ctx context.Context) error {
	sites, err := s.repos.Sites.ListEnabled(ctx)
	if err != nil {
		return fmt.Errorf("site list: %w", err)
	}
	settings, err := s.repos.Settings.Get(ctx)
	if err != nil {
		return fmt.Errorf("settings read: %w", err)
	}

	for _, site := range sites {
		if err := s.seedSite(ctx, site, settings); err != nil {
			log.Errorw("site seeding failed", "siteId", site.SiteId, "error", err)
		}
	}
	return nil
}

func (s *SchedulerService) seedSite(ctx context.Context, site *model.Site, settings model.Settings) error {
	offset := site.OffsetMinutes
	if offset == 0 {
		offset = s.offsetMinutes
	}
	runDate := daykey.Day(s.now(), offset)

	pipelineRunId := model.PipelineRunIdFor(site.SiteId, runDate, settings.GrowthVersion)
	claimed, err := s.repos.Pipelines.Claim(ctx, &model.PipelineRun{
		PipelineRunId: pipelineRunId,
		SiteId:        site.SiteId,
		RunDate:       runDate,
		Version:       settings.GrowthVersion,
	})
	if err != nil {
		return fmt.Errorf("pipeline claim: %w", err)
	}
	if !claimed {
		log.Infow("pipeline already seeded", "siteId", site.SiteId, "runDate", runDate)
		return nil
	}

	delay := s.jitter(settings.Pipeline.EnqueueJitterSecMin, settings.Pipeline.EnqueueJitterSecMax)
	for _, kind := range []string{taskqueue.TaskKwCollect, taskqueue.TaskAnalyzerDaily} {
		if err := s.enqueueSeed(ctx, site, kind, runDate, delay); err != nil {
			if ferr := s.repos.Pipelines.Finish(ctx, pipelineRunId, model.PipelineRunFailed, "seed_enqueue", err.Error()); ferr != nil {
				log.Errorw("pipeline finish failed", "pipelineRunId", pipelineRunId, "error", ferr)
			}
			return err
		}
	}
	if err := s.repos.Pipelines.Finish(ctx, pipelineRunId, model.PipelineRunSucceeded, "", ""); err != nil {
		return fmt.Errorf("pipeline finish: %w", err)
	}
	log.Infow("site seeded", "siteId", site.SiteId, "runDate", runDate, "delaySec", delay)
	return nil
}

func (s *SchedulerService) enqueueSeed(ctx context.Context, site *model.Site, kind, runDate string, delaySec int) error {
	payload := &taskqueue.Payload{
		SchemaVersion:  taskqueue.SchemaVersion,
		TaskType:       kind,
		SiteId:         site.SiteId,
		TraceId:        uuid.NewString(),
		CreatedAt:      s.now().UTC().Format(time.RFC3339),
		RequestedByUid: schedulerUid,
		RunDate:        runDate,
		IdempotencyKey: taskqueue.Key(taskqueue.KeyParts{
			TaskType: kind,
			SiteId:   site.SiteId,
			RunDate:  runDate,
		}),
	}
	raw, err := payload.Marshal()
	if err != nil {
		return fmt.Errorf("payload marshal: %w", err)
	}
	err = s.queue.Enqueue(ctx, &queue.EnqueueArgs{
		Payload:      raw,
		TaskType:     kind,
		TaskId:       queue.TaskId(payload.IdempotencyKey, payload.RetryCount),
		DelaySeconds: delaySec,
	})
	if err != nil && !errors.Is(err, queue.ErrAlreadyQueued) {
		return fmt.Errorf("enqueue %s: %w", kind, err)
	}
	return nil
}
