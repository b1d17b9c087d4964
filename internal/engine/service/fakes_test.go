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
	"sort"
	"sync"
	"testing"
	"time"

	"gorm.io/datatypes"

	"github.com/pressline/pressline/internal/engine/model"
	"github.com/pressline/pressline/internal/engine/repo"
	"github.com/pressline/pressline/internal/pkg/storage"
	"github.com/pressline/pressline/pkg/queue"
	"github.com/pressline/pressline/pkg/taskqueue"
)

// In-memory repository fakes. They mirror the merge/dedup semantics of the
// gorm repositories closely enough for the router and handler tests.

type fakeTaskRunRepo struct {
	mu       sync.Mutex
	runs     map[string]*model.TaskRun
	events   []*model.TaskRunEvent
	failures map[string]*model.TaskFailure
}

func newFakeTaskRunRepo() *fakeTaskRunRepo {
	return &fakeTaskRunRepo{
		runs:     map[string]*model.TaskRun{},
		failures: map[string]*model.TaskFailure{},
	}
}

func (f *fakeTaskRunRepo) Get(_ context.Context, key string) (*model.TaskRun, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	run, ok := f.runs[key]
	if !ok {
		return nil, nil
	}
	cp := *run
	return &cp, nil
}

func (f *fakeTaskRunRepo) Upsert(_ context.Context, run *model.TaskRun, mergeColumns []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	current, ok := f.runs[run.IdempotencyKey]
	if !ok {
		cp := *run
		cp.UpdatedAt = time.Now()
		f.runs[run.IdempotencyKey] = &cp
		return nil
	}
	for _, col := range mergeColumns {
		switch col {
		case "status":
			current.Status = run.Status
		case "queued_at":
			current.QueuedAt = run.QueuedAt
		case "started_at":
			current.StartedAt = run.StartedAt
		case "attempt_count":
			current.AttemptCount = run.AttemptCount
		case "retry_count":
			current.RetryCount = run.RetryCount
		case "duration_ms":
			current.DurationMs = run.DurationMs
		case "error":
			current.Error = run.Error
		case "last_error_code":
			current.LastErrorCode = run.LastErrorCode
		case "last_error_message":
			current.LastErrorMessage = run.LastErrorMessage
		}
	}
	current.UpdatedAt = time.Now()
	return nil
}

func (f *fakeTaskRunRepo) AppendEvent(_ context.Context, event *model.TaskRunEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *event
	cp.Id = int64(len(f.events) + 1)
	cp.CreatedAt = time.Now()
	f.events = append(f.events, &cp)
	return nil
}

func (f *fakeTaskRunRepo) ListEvents(_ context.Context, key string) ([]*model.TaskRunEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.TaskRunEvent
	for _, e := range f.events {
		if e.IdempotencyKey == key {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeTaskRunRepo) RecordFailure(_ context.Context, failure *model.TaskFailure) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, dup := f.failures[failure.FailureId]; dup {
		return nil
	}
	cp := *failure
	f.failures[failure.FailureId] = &cp
	return nil
}

func (f *fakeTaskRunRepo) OldestQueuedAge(_ context.Context, now time.Time) (time.Duration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var oldest *time.Time
	for _, run := range f.runs {
		if run.Status != model.TaskRunQueued || run.QueuedAt == nil {
			continue
		}
		if oldest == nil || run.QueuedAt.Before(*oldest) {
			oldest = run.QueuedAt
		}
	}
	if oldest == nil {
		return 0, nil
	}
	return now.Sub(*oldest), nil
}

func (f *fakeTaskRunRepo) eventsByKind(kind string) []*model.TaskRunEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.TaskRunEvent
	for _, e := range f.events {
		if e.Event == kind {
			out = append(out, e)
		}
	}
	return out
}

type fakeLockRepo struct {
	mu       sync.Mutex
	locks    map[string]*model.TaskLock
	acquired []string
	released []string
}

func newFakeLockRepo() *fakeLockRepo {
	return &fakeLockRepo{locks: map[string]*model.TaskLock{}}
}

func (f *fakeLockRepo) Acquire(_ context.Context, lock *model.TaskLock) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if current, ok := f.locks[lock.LockId]; ok && current.ExpiresAt.After(time.Now()) {
		return repo.ErrLocked
	}
	cp := *lock
	f.locks[lock.LockId] = &cp
	f.acquired = append(f.acquired, lock.LockId)
	return nil
}

func (f *fakeLockRepo) Release(_ context.Context, lockId string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.locks, lockId)
	f.released = append(f.released, lockId)
	return nil
}

// hold plants an unexpired foreign lease.
func (f *fakeLockRepo) hold(lockId string, ttl time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.locks[lockId] = &model.TaskLock{LockId: lockId, ExpiresAt: time.Now().Add(ttl)}
}

func (f *fakeLockRepo) held(lockId string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.locks[lockId]
	return ok
}

type fakeSiteRepo struct {
	mu    sync.Mutex
	sites map[string]*model.Site
}

func newFakeSiteRepo() *fakeSiteRepo {
	return &fakeSiteRepo{sites: map[string]*model.Site{}}
}

func (f *fakeSiteRepo) Get(_ context.Context, siteId string) (*model.Site, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	site, ok := f.sites[siteId]
	if !ok {
		return nil, nil
	}
	cp := *site
	return &cp, nil
}

func (f *fakeSiteRepo) ListEnabled(_ context.Context) ([]*model.Site, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.Site
	for _, site := range f.sites {
		if site.Enabled == 1 {
			cp := *site
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SiteId < out[j].SiteId })
	return out, nil
}

func (f *fakeSiteRepo) Upsert(_ context.Context, site *model.Site) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *site
	f.sites[site.SiteId] = &cp
	return nil
}

type fakeKeywordRepo struct {
	mu       sync.Mutex
	keywords map[string]*model.Keyword
}

func newFakeKeywordRepo() *fakeKeywordRepo {
	return &fakeKeywordRepo{keywords: map[string]*model.Keyword{}}
}

func (f *fakeKeywordRepo) Get(_ context.Context, keywordId string) (*model.Keyword, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	kw, ok := f.keywords[keywordId]
	if !ok {
		return nil, nil
	}
	cp := *kw
	return &cp, nil
}

func (f *fakeKeywordRepo) BulkUpsert(_ context.Context, keywords []*model.Keyword) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var inserted int64
	for _, kw := range keywords {
		if _, dup := f.keywords[kw.KeywordId]; dup {
			continue
		}
		cp := *kw
		f.keywords[kw.KeywordId] = &cp
		inserted++
	}
	return inserted, nil
}

func (f *fakeKeywordRepo) ListCandidates(_ context.Context, siteId, runDate string) ([]*model.Keyword, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.Keyword
	for _, kw := range f.keywords {
		if kw.SiteId == siteId && kw.RunDate == runDate && kw.Status == model.KeywordCandidate {
			cp := *kw
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].KeywordId < out[j].KeywordId })
	return out, nil
}

func (f *fakeKeywordRepo) Update(_ context.Context, keywordId string, updates map[string]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	kw, ok := f.keywords[keywordId]
	if !ok {
		return nil
	}
	for col, v := range updates {
		switch col {
		case "status":
			kw.Status = v.(string)
		case "score":
			kw.Score = v.(int)
		case "lane":
			kw.Lane = v.(string)
		case "competition":
			kw.Competition = v.(string)
		case "comp_ratio":
			kw.CompRatio = v.(float64)
		}
	}
	return nil
}

type fakeArticleRepo struct {
	mu       sync.Mutex
	articles map[string]*model.Article
	timeline map[string][]model.TimelineEvent
}

func newFakeArticleRepo() *fakeArticleRepo {
	return &fakeArticleRepo{
		articles: map[string]*model.Article{},
		timeline: map[string][]model.TimelineEvent{},
	}
}

func (f *fakeArticleRepo) Get(_ context.Context, articleId string) (*model.Article, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	article, ok := f.articles[articleId]
	if !ok {
		return nil, nil
	}
	cp := *article
	return &cp, nil
}

func (f *fakeArticleRepo) CreateIfAbsent(_ context.Context, article *model.Article) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, dup := f.articles[article.ArticleId]; dup {
		return nil
	}
	cp := *article
	cp.CreatedAt = time.Now()
	cp.UpdatedAt = cp.CreatedAt
	f.articles[article.ArticleId] = &cp
	return nil
}

func (f *fakeArticleRepo) Update(_ context.Context, articleId string, updates map[string]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	article, ok := f.articles[articleId]
	if !ok {
		return nil
	}
	for col, v := range updates {
		switch col {
		case "status":
			article.Status = v.(string)
		case "html":
			article.HTML = v.(string)
		case "intent":
			article.Intent = v.(string)
		case "k12":
			article.K12 = jsonVal(v)
		case "hashtags12":
			article.Hashtags12 = jsonVal(v)
		case "image_plan":
			article.ImagePlan = jsonVal(v)
		case "images":
			article.Images = jsonVal(v)
		case "top_card":
			article.TopCard = jsonVal(v)
		case "qa":
			article.Qa = jsonVal(v)
		case "qa_fix_count":
			article.QaFixCount = v.(int)
		case "llm_usage":
			article.LlmUsage = jsonVal(v)
		case "moderation":
			article.Moderation = jsonVal(v)
		case "package_path":
			article.PackagePath = v.(string)
		case "publish_result":
			article.PublishResult = jsonVal(v)
		case "published_at":
			article.PublishedAt = v.(*time.Time)
		}
	}
	article.UpdatedAt = time.Now()
	return nil
}

func (f *fakeArticleRepo) AppendTimeline(_ context.Context, articleId string, event model.TimelineEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	event.At = time.Now().UTC().Format(time.RFC3339)
	f.timeline[articleId] = append(f.timeline[articleId], event)
	if article, ok := f.articles[articleId]; ok {
		article.PipelineLastTask = event.TaskType
		article.PipelineLastStatus = event.Status
		article.PipelineLastState = event.State
	}
	return nil
}

func (f *fakeArticleRepo) RecentTitles(_ context.Context, siteId string, limit int) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var titles []string
	for _, article := range f.articles {
		if article.SiteId == siteId && article.TitleFinal != "" {
			titles = append(titles, article.TitleFinal)
		}
	}
	sort.Strings(titles)
	if len(titles) > limit {
		titles = titles[:limit]
	}
	return titles, nil
}

func (f *fakeArticleRepo) ListLinkSources(_ context.Context, siteId string, limit int) ([]*model.Article, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.Article
	for _, article := range f.articles {
		if article.SiteId == siteId && article.PackagePath != "" {
			cp := *article
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ArticleId < out[j].ArticleId })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeArticleRepo) LastPublishedAt(_ context.Context, siteId string) (*time.Time, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var last *time.Time
	for _, article := range f.articles {
		if article.SiteId != siteId || article.PublishedAt == nil {
			continue
		}
		if last == nil || article.PublishedAt.After(*last) {
			t := *article.PublishedAt
			last = &t
		}
	}
	return last, nil
}

type fakePublishRunRepo struct {
	mu   sync.Mutex
	runs map[string]*model.PublishRun
}

func newFakePublishRunRepo() *fakePublishRunRepo {
	return &fakePublishRunRepo{runs: map[string]*model.PublishRun{}}
}

func (f *fakePublishRunRepo) Get(_ context.Context, key string) (*model.PublishRun, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	run, ok := f.runs[key]
	if !ok {
		return nil, nil
	}
	cp := *run
	return &cp, nil
}

func (f *fakePublishRunRepo) Record(_ context.Context, run *model.PublishRun) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *run
	cp.PublishedAt = time.Now()
	f.runs[run.IdempotencyKey] = &cp
	return nil
}

type fakePipelineRunRepo struct {
	mu   sync.Mutex
	runs map[string]*model.PipelineRun
}

func newFakePipelineRunRepo() *fakePipelineRunRepo {
	return &fakePipelineRunRepo{runs: map[string]*model.PipelineRun{}}
}

func (f *fakePipelineRunRepo) Claim(_ context.Context, run *model.PipelineRun) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, dup := f.runs[run.PipelineRunId]; dup {
		return false, nil
	}
	cp := *run
	cp.State = model.PipelineRunRunning
	cp.StartedAt = time.Now()
	f.runs[run.PipelineRunId] = &cp
	return true, nil
}

func (f *fakePipelineRunRepo) Finish(_ context.Context, pipelineRunId, state, errorCode, errorMessage string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	run, ok := f.runs[pipelineRunId]
	if !ok {
		return nil
	}
	now := time.Now()
	run.State = state
	run.EndedAt = &now
	run.LastErrorCode = errorCode
	run.LastErrorMessage = errorMessage
	return nil
}

func (f *fakePipelineRunRepo) Get(_ context.Context, pipelineRunId string) (*model.PipelineRun, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	run, ok := f.runs[pipelineRunId]
	if !ok {
		return nil, nil
	}
	cp := *run
	return &cp, nil
}

func (f *fakePipelineRunRepo) LastFinished(_ context.Context, state string) (*model.PipelineRun, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var last *model.PipelineRun
	for _, run := range f.runs {
		if run.State != state || run.EndedAt == nil {
			continue
		}
		if last == nil || run.EndedAt.After(*last.EndedAt) {
			cp := *run
			last = &cp
		}
	}
	return last, nil
}

type fakeSettingsRepo struct {
	mu       sync.Mutex
	settings model.Settings
}

func newFakeSettingsRepo() *fakeSettingsRepo {
	return &fakeSettingsRepo{settings: model.DefaultSettings()}
}

func (f *fakeSettingsRepo) Get(_ context.Context) (model.Settings, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.settings, nil
}

func (f *fakeSettingsRepo) Update(_ context.Context, settings model.Settings) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.settings = settings
	return nil
}

type costKey struct {
	siteId   string
	runDate  string
	taskType string
}

type fakeCostRepo struct {
	mu   sync.Mutex
	rows map[costKey]int
}

func newFakeCostRepo() *fakeCostRepo {
	return &fakeCostRepo{rows: map[costKey]int{}}
}

func (f *fakeCostRepo) Add(_ context.Context, siteId, runDate, taskType string, calls, costUnits int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows[costKey{siteId, runDate, taskType}] += calls
	return nil
}

func (f *fakeCostRepo) HasRow(_ context.Context, siteId, runDate string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for key := range f.rows {
		if key.runDate != runDate {
			continue
		}
		if siteId == "" || key.siteId == siteId {
			return true, nil
		}
	}
	return false, nil
}

type fakeReportRepo struct {
	mu       sync.Mutex
	analyzer []*model.AnalyzerLog
	advisor  map[string]*model.AdvisorReport
}

func newFakeReportRepo() *fakeReportRepo {
	return &fakeReportRepo{advisor: map[string]*model.AdvisorReport{}}
}

func (f *fakeReportRepo) AppendAnalyzerLog(_ context.Context, log *model.AnalyzerLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *log
	f.analyzer = append(f.analyzer, &cp)
	return nil
}

func (f *fakeReportRepo) UpsertAdvisorReport(_ context.Context, report *model.AdvisorReport) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *report
	f.advisor[report.WeekKey] = &cp
	return nil
}

// fakeQueue records every enqueue and dedups on the task id like the
// durable adapter does.
type fakeQueue struct {
	mu      sync.Mutex
	entries []*queue.EnqueueArgs
	seen    map[string]struct{}
}

func newFakeQueue() *fakeQueue {
	return &fakeQueue{seen: map[string]struct{}{}}
}

func (f *fakeQueue) Enqueue(_ context.Context, args *queue.EnqueueArgs) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if args.TaskId != "" {
		if _, dup := f.seen[args.TaskId]; dup {
			return queue.ErrAlreadyQueued
		}
		f.seen[args.TaskId] = struct{}{}
	}
	cp := *args
	cp.Payload = append([]byte(nil), args.Payload...)
	f.entries = append(f.entries, &cp)
	return nil
}

func (f *fakeQueue) Close() error { return nil }

func (f *fakeQueue) byType(taskType string) []*queue.EnqueueArgs {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*queue.EnqueueArgs
	for _, e := range f.entries {
		if e.TaskType == taskType {
			out = append(out, e)
		}
	}
	return out
}

func (f *fakeQueue) payloads(taskType string) []*taskqueue.Payload {
	var out []*taskqueue.Payload
	for _, e := range f.byType(taskType) {
		p, err := taskqueue.Unmarshal(e.Payload)
		if err != nil {
			continue
		}
		out = append(out, p)
	}
	return out
}

// testEngine bundles the router service with every fake it runs on.
type testEngine struct {
	svc      *TaskRouterService
	runs     *fakeTaskRunRepo
	locks    *fakeLockRepo
	sites    *fakeSiteRepo
	keywords *fakeKeywordRepo
	articles *fakeArticleRepo
	publish  *fakePublishRunRepo
	pipes    *fakePipelineRunRepo
	settings *fakeSettingsRepo
	costs    *fakeCostRepo
	reports  *fakeReportRepo
	queue    *fakeQueue
	storage  *storage.MemoryStorage
	repos    *repo.Repositories
}

func newTestRepos(e *testEngine) *repo.Repositories {
	return &repo.Repositories{
		TaskRuns:    e.runs,
		Locks:       e.locks,
		Sites:       e.sites,
		Keywords:    e.keywords,
		Articles:    e.articles,
		PublishRuns: e.publish,
		Pipelines:   e.pipes,
		Settings:    e.settings,
		Costs:       e.costs,
		Reports:     e.reports,
	}
}

// newTestEngine builds a router over fakes. mutate lets a test adjust the
// Deps (env, queue, flags) before construction.
func newTestEngine(t testing.TB, mutate func(*Deps)) *testEngine {
	t.Helper()
	e := &testEngine{
		runs:     newFakeTaskRunRepo(),
		locks:    newFakeLockRepo(),
		sites:    newFakeSiteRepo(),
		keywords: newFakeKeywordRepo(),
		articles: newFakeArticleRepo(),
		publish:  newFakePublishRunRepo(),
		pipes:    newFakePipelineRunRepo(),
		settings: newFakeSettingsRepo(),
		costs:    newFakeCostRepo(),
		reports:  newFakeReportRepo(),
		queue:    newFakeQueue(),
		storage:  storage.NewMemoryStorage(),
	}
	e.repos = newTestRepos(e)

	deps := Deps{
		Repos:   e.repos,
		Queue:   e.queue,
		Storage: e.storage,
		Env:     model.SiteEnvDev,
	}
	if mutate != nil {
		mutate(&deps)
	}
	svc, err := NewTaskRouterService(deps)
	if err != nil {
		t.Fatalf("NewTaskRouterService: %v", err)
	}
	e.svc = svc
	return e
}

func jsonVal(v any) datatypes.JSON {
	if j, ok := v.(datatypes.JSON); ok {
		return j
	}
	return nil
}
