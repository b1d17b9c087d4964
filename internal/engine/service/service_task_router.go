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
	"time"

	"github.com/pressline/pressline/internal/engine/model"
	"github.com/pressline/pressline/internal/engine/repo"
	"github.com/pressline/pressline/internal/pkg/content"
	"github.com/pressline/pressline/internal/pkg/imagesearch"
	"github.com/pressline/pressline/internal/pkg/publish"
	"github.com/pressline/pressline/internal/pkg/storage"
	"github.com/pressline/pressline/pkg/daykey"
	"github.com/pressline/pressline/pkg/log"
	"github.com/pressline/pressline/pkg/metrics"
	"github.com/pressline/pressline/pkg/queue"
	"github.com/pressline/pressline/pkg/taskqueue"
)

// lockTTL is the lease window for one handler execution.
const lockTTL = 600 * time.Second

// Run tags allowed to re-enter the prod pipeline manually.
var allowedProdRunTags = map[string]bool{
	"prod-rerun": true,
	"backfill":   true,
}

// HandlerResult lets a handler override the terminal ledger state. An empty
// FinalState records "succeeded".
type HandlerResult struct {
	FinalState string
	Detail     string
}

// HandlerFunc executes one task stage.
type HandlerFunc func(ctx context.Context, payload *taskqueue.Payload) (*HandlerResult, error)

// TaskRouterService routes a delivered task: dedupes on the run ledger,
// takes the attempt lease, dispatches the stage handler and applies the
// single-retry policy on failure.
type TaskRouterService struct {
	repos       *repo.Repositories
	queue       queue.Queue
	storage     storage.IStorage
	publishers  func(provider, accessToken string) (publish.Publisher, error)
	imageSearch imagesearch.Searcher
	moderator   content.Moderator

	env                 string
	offsetMinutes       int
	fetchExternalImages bool

	handlers map[string]HandlerFunc

	// now is swappable for deterministic tests.
	now func() time.Time
}

// NewTaskRouterService builds the router and registers one handler per task
// kind. A kind without a handler is a programming error surfaced at startup.
func NewTaskRouterService(deps Deps) (*TaskRouterService, error) {
	s := &TaskRouterService{
		repos:               deps.Repos,
		queue:               deps.Queue,
		storage:             deps.Storage,
		publishers:          deps.Publishers,
		imageSearch:         deps.ImageSearch,
		moderator:           deps.Moderator,
		env:                 deps.Env,
		offsetMinutes:       deps.OffsetMinutes,
		fetchExternalImages: deps.FetchExternalImages,
		now:                 time.Now,
	}
	if s.offsetMinutes == 0 {
		s.offsetMinutes = daykey.DefaultOffsetMinutes
	}
	if s.moderator == nil {
		s.moderator = content.NewPatternModerator()
	}
	if s.imageSearch == nil {
		s.imageSearch = imagesearch.NullSearcher{}
	}
	if s.publishers == nil {
		s.publishers = publish.NewPublisher
	}

	s.handlers = map[string]HandlerFunc{
		taskqueue.TaskKwCollect:           s.handleKwCollect,
		taskqueue.TaskKwScore:             s.handleKwScore,
		taskqueue.TaskTitleGenerate:       s.handleTitleGenerate,
		taskqueue.TaskBodyGenerate:        s.handleBodyGenerate,
		taskqueue.TaskArticleQA:           s.handleArticleQa,
		taskqueue.TaskArticleQAFix:        s.handleArticleQaFix,
		taskqueue.TaskTopcardRender:       s.handleTopcardRender,
		taskqueue.TaskImageGenerate:       s.handleImageGenerate,
		taskqueue.TaskArticlePackage:      s.handleArticlePackage,
		taskqueue.TaskPublishExecute:      s.handlePublishExecute,
		taskqueue.TaskArticleGenerate:     s.handleArticleGenerate,
		taskqueue.TaskAnalyzerDaily:       s.handleAnalyzerDaily,
		taskqueue.TaskAdvisorWeeklyGlobal: s.handleAdvisorWeekly,
	}
	for _, kind := range taskqueue.Kinds() {
		if s.handlers[kind] == nil {
			return nil, fmt.Errorf("service: no handler registered for task kind %q", kind)
		}
	}
	return s, nil
}

// Route processes one delivered payload end to end. The returned error means
// the engine itself failed before the outcome could be recorded; handler
// failures are recorded on the ledger and consumed here.
func (s *TaskRouterService) Route(ctx context.Context, payload *taskqueue.Payload) error {
	key := payload.IdempotencyKey

	run, err := s.repos.TaskRuns.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("ledger read for %s: %w", key, err)
	}
	if run != nil && run.Status == model.TaskRunSucceeded {
		log.Infow("task already succeeded, skipping",
			"taskType", payload.TaskType, "idempotencyKey", key)
		return nil
	}

	lockId := taskqueue.LockId(key, payload.RetryCount)
	lock := &model.TaskLock{
		LockId:    lockId,
		SiteId:    payload.SiteId,
		TaskType:  payload.TaskType,
		ExpiresAt: s.now().Add(lockTTL),
	}
	if err := s.repos.Locks.Acquire(ctx, lock); err != nil {
		if errors.Is(err, repo.ErrLocked) {
			// Another delivery of this attempt is mid-flight. The error
			// goes back to the transport, whose redelivery lands after
			// the lease is gone and is then absorbed by the ledger.
			metrics.ObserveLockContention(payload.TaskType)
			log.Warnw("task lease held, leaving redelivery to the transport",
				"taskType", payload.TaskType, "lockId", lockId)
		}
		return fmt.Errorf("lock acquire for %s: %w", lockId, err)
	}
	defer func() {
		if rerr := s.repos.Locks.Release(context.WithoutCancel(ctx), lockId); rerr != nil {
			log.Warnw("lock release failed", "lockId", lockId, "error", rerr)
		}
	}()

	started := s.now()
	s.recordSnapshot(ctx, payload, model.TaskRunRunning, func(r *model.TaskRun) []string {
		r.StartedAt = &started
		return []string{"status", "started_at", "attempt_count", "retry_count"}
	})

	res, handlerErr := s.dispatch(ctx, payload)
	duration := s.now().Sub(started)

	if handlerErr == nil {
		final := model.TaskRunSucceeded
		if res != nil && res.FinalState != "" {
			final = res.FinalState
		}
		s.recordSnapshot(ctx, payload, final, func(r *model.TaskRun) []string {
			r.DurationMs = duration.Milliseconds()
			return []string{"status", "duration_ms"}
		})
		metrics.ObserveTaskOutcome(payload.TaskType, final, duration.Seconds())
		if final == model.TaskRunSucceeded {
			if cerr := s.repos.Costs.Add(ctx, payload.SiteId, payload.RunDate, payload.TaskType, 1, 1); cerr != nil {
				log.Warnw("cost row update failed",
					"siteId", payload.SiteId, "taskType", payload.TaskType, "error", cerr)
			}
		}
		log.Infow("task completed",
			"taskType", payload.TaskType, "idempotencyKey", key,
			"status", final, "durationMs", duration.Milliseconds())
		return nil
	}

	errText := handlerErr.Error()
	s.recordSnapshot(ctx, payload, model.TaskRunFailed, func(r *model.TaskRun) []string {
		r.DurationMs = duration.Milliseconds()
		r.Error = errText
		r.LastErrorCode = taskqueue.ErrorCode(errText)
		r.LastErrorMessage = truncate(errText, 500)
		return []string{"status", "duration_ms", "error", "last_error_code", "last_error_message"}
	})
	metrics.ObserveTaskOutcome(payload.TaskType, model.TaskRunFailed, duration.Seconds())
	log.Errorw("task failed",
		"taskType", payload.TaskType, "idempotencyKey", key, "error", errText)

	s.applyRetryPolicy(ctx, payload, handlerErr)
	return nil
}

// dispatch runs the prod run-tag gate and the stage handler.
func (s *TaskRouterService) dispatch(ctx context.Context, payload *taskqueue.Payload) (*HandlerResult, error) {
	if s.env == model.SiteEnvProd {
		tag := payload.CleanRunTag()
		if payload.RunTag != "" && (!allowedProdRunTags[tag] || payload.RunReason == "") {
			return nil, taskqueue.NonRetryable("prod_runTag_not_allowed_or_missing_reason")
		}
	}
	handler := s.handlers[payload.TaskType]
	if handler == nil {
		return nil, taskqueue.NonRetryable("unknown_task_type:" + payload.TaskType)
	}
	return handler(ctx, payload)
}

// applyRetryPolicy enqueues the single allowed same-day retry, or records
// why it was suppressed.
func (s *TaskRouterService) applyRetryPolicy(ctx context.Context, payload *taskqueue.Payload, handlerErr error) {
	settings, err := s.repos.Settings.Get(ctx)
	if err != nil {
		log.Warnw("settings read failed, using defaults for retry policy", "error", err)
		settings = model.DefaultSettings()
	}

	today := daykey.Day(s.now(), s.offsetMinutes)
	var skipDetail string
	switch {
	case taskqueue.IsNonRetryable(handlerErr):
		skipDetail = "non_retryable"
	case payload.RetryCount >= settings.Pipeline.RetrySameDayMax:
		skipDetail = "retry_exhausted"
	case payload.RunDate != today:
		skipDetail = fmt.Sprintf("runDate_mismatch:%s!=%s", payload.RunDate, today)
	}

	if skipDetail != "" {
		metrics.ObserveRetryDecision(payload.TaskType, model.EventRetrySkipped)
		s.appendEvent(ctx, payload, model.EventRetrySkipped, skipDetail)
		return
	}

	retry := payload.Retry()
	raw, err := retry.Marshal()
	if err != nil {
		log.Errorw("retry payload marshal failed", "idempotencyKey", payload.IdempotencyKey, "error", err)
		return
	}
	args := &queue.EnqueueArgs{
		Payload:      raw,
		TaskType:     retry.TaskType,
		TaskId:       queue.TaskId(retry.IdempotencyKey, retry.RetryCount),
		DelaySeconds: settings.Pipeline.RetryDelaySec,
	}
	if err := s.queue.Enqueue(ctx, args); err != nil && err != queue.ErrAlreadyQueued {
		log.Errorw("retry enqueue failed", "idempotencyKey", payload.IdempotencyKey, "error", err)
		return
	}
	metrics.ObserveRetryDecision(payload.TaskType, model.EventRetryEnqueued)
	s.appendEvent(ctx, payload, model.EventRetryEnqueued,
		fmt.Sprintf("delaySec:%d", settings.Pipeline.RetryDelaySec))
	log.Infow("retry enqueued",
		"taskType", payload.TaskType, "idempotencyKey", payload.IdempotencyKey,
		"retryCount", retry.RetryCount, "delaySec", settings.Pipeline.RetryDelaySec)
}

// recordSnapshot merges one ledger snapshot and mirrors it on the article
// timeline for article-scoped tasks.
func (s *TaskRouterService) recordSnapshot(ctx context.Context, payload *taskqueue.Payload, status string, fill func(*model.TaskRun) []string) {
	run := &model.TaskRun{
		IdempotencyKey: payload.IdempotencyKey,
		TaskType:       payload.TaskType,
		SiteId:         payload.SiteId,
		TraceId:        payload.TraceId,
		Status:         status,
		RetryCount:     payload.RetryCount,
		AttemptCount:   payload.AttemptCount(),
		RunDate:        payload.RunDate,
		RunTag:         payload.CleanRunTag(),
		RunReason:      truncate(payload.RunReason, 160),
	}
	merge := fill(run)
	if err := s.repos.TaskRuns.Upsert(ctx, run, merge); err != nil {
		log.Errorw("ledger upsert failed",
			"idempotencyKey", payload.IdempotencyKey, "status", status, "error", err)
	}

	if payload.ArticleId != "" {
		event := model.TimelineEvent{
			TaskType: payload.TaskType,
			Status:   status,
			State:    timelineState(status),
		}
		if err := s.repos.Articles.AppendTimeline(ctx, payload.ArticleId, event); err != nil {
			log.Warnw("timeline append failed",
				"articleId", payload.ArticleId, "taskType", payload.TaskType, "error", err)
		}
	}
}

func (s *TaskRouterService) appendEvent(ctx context.Context, payload *taskqueue.Payload, event, detail string) {
	e := &model.TaskRunEvent{
		IdempotencyKey: payload.IdempotencyKey,
		TaskType:       payload.TaskType,
		SiteId:         payload.SiteId,
		Event:          event,
		Detail:         detail,
	}
	if err := s.repos.TaskRuns.AppendEvent(ctx, e); err != nil {
		log.Warnw("ledger event append failed",
			"idempotencyKey", payload.IdempotencyKey, "event", event, "error", err)
	}
	if payload.ArticleId != "" {
		te := model.TimelineEvent{TaskType: payload.TaskType, Status: event, Detail: detail}
		if err := s.repos.Articles.AppendTimeline(ctx, payload.ArticleId, te); err != nil {
			log.Warnw("timeline append failed",
				"articleId", payload.ArticleId, "event", event, "error", err)
		}
	}
}

// enqueueSuccessor records the next stage as queued and hands it to the
// queue. Already-queued is success when dedupeOK.
func (s *TaskRouterService) enqueueSuccessor(ctx context.Context, next *taskqueue.Payload, delaySeconds int, dedupeOK bool) error {
	raw, err := next.Marshal()
	if err != nil {
		return fmt.Errorf("successor marshal: %w", err)
	}
	queued := s.now()
	s.recordSnapshot(ctx, next, model.TaskRunQueued, func(r *model.TaskRun) []string {
		r.QueuedAt = &queued
		return []string{"status", "queued_at"}
	})
	args := &queue.EnqueueArgs{
		Payload:      raw,
		TaskType:     next.TaskType,
		TaskId:       queue.TaskId(next.IdempotencyKey, next.RetryCount),
		DelaySeconds: delaySeconds,
	}
	err = s.queue.Enqueue(ctx, args)
	if err == queue.ErrAlreadyQueued {
		if dedupeOK {
			log.Infow("successor already queued",
				"taskType", next.TaskType, "idempotencyKey", next.IdempotencyKey)
			return nil
		}
		return err
	}
	return err
}

// today returns the current day key for the site-local fixed offset.
func (s *TaskRouterService) today(site *model.Site) string {
	offset := s.offsetMinutes
	if site != nil && site.OffsetMinutes != 0 {
		offset = site.OffsetMinutes
	}
	return daykey.Day(s.now(), offset)
}

func timelineState(status string) string {
	if status == model.TaskRunSucceeded {
		return "succeeded"
	}
	return ""
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
