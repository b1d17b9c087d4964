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

package router

import (
	"bytes"
	"context"
	"io"
	nethttp "net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/pressline/pressline/internal/engine/model"
	"github.com/pressline/pressline/internal/engine/repo"
	"github.com/pressline/pressline/internal/engine/service"
	"github.com/pressline/pressline/internal/pkg/storage"
	pkghttp "github.com/pressline/pressline/pkg/http"
	"github.com/pressline/pressline/pkg/queue"
	"github.com/pressline/pressline/pkg/taskqueue"
)

// Minimal in-memory repositories backing the HTTP tests. Only the behavior
// the exercised endpoints touch is modeled.

type memRuns struct {
	mu       sync.Mutex
	runs     map[string]*model.TaskRun
	events   []*model.TaskRunEvent
	failures map[string]*model.TaskFailure
}

func newMemRuns() *memRuns {
	return &memRuns{runs: map[string]*model.TaskRun{}, failures: map[string]*model.TaskFailure{}}
}

func (m *memRuns) Get(_ context.Context, key string) (*model.TaskRun, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	run, ok := m.runs[key]
	if !ok {
		return nil, nil
	}
	cp := *run
	return &cp, nil
}

func (m *memRuns) Upsert(_ context.Context, run *model.TaskRun, _ []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *run
	m.runs[run.IdempotencyKey] = &cp
	return nil
}

func (m *memRuns) AppendEvent(_ context.Context, event *model.TaskRunEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *event
	m.events = append(m.events, &cp)
	return nil
}

func (m *memRuns) ListEvents(_ context.Context, key string) ([]*model.TaskRunEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.TaskRunEvent
	for _, e := range m.events {
		if e.IdempotencyKey == key {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memRuns) RecordFailure(_ context.Context, failure *model.TaskFailure) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *failure
	m.failures[failure.FailureId] = &cp
	return nil
}

func (m *memRuns) OldestQueuedAge(context.Context, time.Time) (time.Duration, error) {
	return 0, nil
}

type memLocks struct {
	mu    sync.Mutex
	locks map[string]struct{}
}

func newMemLocks() *memLocks { return &memLocks{locks: map[string]struct{}{}} }

func (m *memLocks) Acquire(_ context.Context, lock *model.TaskLock) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, held := m.locks[lock.LockId]; held {
		return repo.ErrLocked
	}
	m.locks[lock.LockId] = struct{}{}
	return nil
}

func (m *memLocks) Release(_ context.Context, lockId string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.locks, lockId)
	return nil
}

type memSites struct{ sites map[string]*model.Site }

func (m *memSites) Get(_ context.Context, siteId string) (*model.Site, error) {
	return m.sites[siteId], nil
}
func (m *memSites) ListEnabled(context.Context) ([]*model.Site, error) { return nil, nil }
func (m *memSites) Upsert(_ context.Context, site *model.Site) error {
	m.sites[site.SiteId] = site
	return nil
}

type memKeywords struct{}

func (memKeywords) Get(context.Context, string) (*model.Keyword, error)       { return nil, nil }
func (memKeywords) BulkUpsert(context.Context, []*model.Keyword) (int64, error) { return 0, nil }
func (memKeywords) ListCandidates(context.Context, string, string) ([]*model.Keyword, error) {
	return nil, nil
}
func (memKeywords) Update(context.Context, string, map[string]any) error { return nil }

type memArticles struct {
	mu       sync.Mutex
	articles map[string]*model.Article
}

func newMemArticles() *memArticles { return &memArticles{articles: map[string]*model.Article{}} }

func (m *memArticles) Get(_ context.Context, articleId string) (*model.Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	article, ok := m.articles[articleId]
	if !ok {
		return nil, nil
	}
	cp := *article
	return &cp, nil
}

func (m *memArticles) CreateIfAbsent(_ context.Context, article *model.Article) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, dup := m.articles[article.ArticleId]; dup {
		return nil
	}
	cp := *article
	m.articles[article.ArticleId] = &cp
	return nil
}

func (m *memArticles) Update(_ context.Context, articleId string, updates map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	article, ok := m.articles[articleId]
	if !ok {
		return nil
	}
	if status, ok := updates["status"].(string); ok {
		article.Status = status
	}
	if path, ok := updates["package_path"].(string); ok {
		article.PackagePath = path
	}
	return nil
}

func (m *memArticles) AppendTimeline(context.Context, string, model.TimelineEvent) error {
	return nil
}
func (m *memArticles) RecentTitles(context.Context, string, int) ([]string, error) { return nil, nil }
func (m *memArticles) ListLinkSources(context.Context, string, int) ([]*model.Article, error) {
	return nil, nil
}
func (m *memArticles) LastPublishedAt(context.Context, string) (*time.Time, error) {
	return nil, nil
}

type memPublish struct{}

func (memPublish) Get(context.Context, string) (*model.PublishRun, error) { return nil, nil }
func (memPublish) Record(context.Context, *model.PublishRun) error        { return nil }

type memPipes struct{}

func (memPipes) Claim(context.Context, *model.PipelineRun) (bool, error) { return true, nil }
func (memPipes) Finish(context.Context, string, string, string, string) error {
	return nil
}
func (memPipes) Get(context.Context, string) (*model.PipelineRun, error)         { return nil, nil }
func (memPipes) LastFinished(context.Context, string) (*model.PipelineRun, error) { return nil, nil }

type memSettings struct{}

func (memSettings) Get(context.Context) (model.Settings, error) { return model.DefaultSettings(), nil }
func (memSettings) Update(context.Context, model.Settings) error { return nil }

type memCosts struct {
	mu   sync.Mutex
	rows int
}

func (m *memCosts) Add(context.Context, string, string, string, int, int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows++
	return nil
}

func (m *memCosts) HasRow(context.Context, string, string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rows > 0, nil
}

type memReports struct {
	mu       sync.Mutex
	analyzer int
}

func (m *memReports) AppendAnalyzerLog(context.Context, *model.AnalyzerLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.analyzer++
	return nil
}
func (m *memReports) UpsertAdvisorReport(context.Context, *model.AdvisorReport) error { return nil }

type memQueue struct {
	mu      sync.Mutex
	entries []*queue.EnqueueArgs
}

func (m *memQueue) Enqueue(_ context.Context, args *queue.EnqueueArgs) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *args
	m.entries = append(m.entries, &cp)
	return nil
}

func (m *memQueue) Close() error { return nil }

// testRouter bundles the fiber app with the fakes behind it.
type testRouter struct {
	rt       *Router
	runs     *memRuns
	locks    *memLocks
	sites    *memSites
	articles *memArticles
	queue    *memQueue
}

func newTestRouter(t *testing.T, conf *pkghttp.Http) *testRouter {
	t.Helper()
	tr := &testRouter{
		runs:     newMemRuns(),
		locks:    newMemLocks(),
		sites:    &memSites{sites: map[string]*model.Site{}},
		articles: newMemArticles(),
		queue:    &memQueue{},
	}
	tr.sites.sites["site-a"] = &model.Site{
		SiteId: "site-a", Platform: "stub", Mode: model.SiteModeAuto,
		Env: model.SiteEnvDev, PublishMode: "scheduled", Enabled: 1,
	}
	repos := &repo.Repositories{
		TaskRuns:    tr.runs,
		Locks:       tr.locks,
		Sites:       tr.sites,
		Keywords:    memKeywords{},
		Articles:    tr.articles,
		PublishRuns: memPublish{},
		Pipelines:   memPipes{},
		Settings:    memSettings{},
		Costs:       &memCosts{},
		Reports:     &memReports{},
	}
	services, err := service.NewServices(service.Deps{
		Repos:   repos,
		Queue:   tr.queue,
		Storage: storage.NewMemoryStorage(),
		Env:     model.SiteEnvDev,
	})
	if err != nil {
		t.Fatalf("NewServices: %v", err)
	}
	conf.SetDefaults()
	tr.rt = NewRouter(conf, services, repos, tr.queue)
	return tr
}

func (tr *testRouter) request(t *testing.T, method, target string, body []byte, header map[string]string) (*nethttp.Response, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}
	resp, err := tr.rt.App().Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, target, err)
	}
	raw, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	var doc map[string]any
	if len(raw) > 0 {
		if err := sonic.Unmarshal(raw, &doc); err != nil {
			t.Fatalf("response body %q: %v", raw, err)
		}
	}
	return resp, doc
}

func deliveryPayload(t *testing.T, kind, key string) []byte {
	t.Helper()
	p := &taskqueue.Payload{
		SchemaVersion:  taskqueue.SchemaVersion,
		TaskType:       kind,
		SiteId:         "site-a",
		TraceId:        "trace-1",
		IdempotencyKey: key,
		CreatedAt:      time.Now().UTC().Format(time.RFC3339),
		RequestedByUid: "test",
		RunDate:        "2026-02-13",
	}
	raw, err := p.Marshal()
	if err != nil {
		t.Fatalf("payload marshal: %v", err)
	}
	return raw
}

func TestExecuteRequiresTaskSecret(t *testing.T) {
	tr := newTestRouter(t, &pkghttp.Http{TaskSecret: "s3cret"})
	body := deliveryPayload(t, taskqueue.TaskAnalyzerDaily, "analyzer_daily:site-a:2026-02-13")

	resp, _ := tr.request(t, "POST", "/v1/tasks/execute", body, nil)
	if resp.StatusCode != nethttp.StatusForbidden {
		t.Fatalf("status = %d, want 403 without secret", resp.StatusCode)
	}

	resp, doc := tr.request(t, "POST", "/v1/tasks/execute", body, map[string]string{"X-Task-Secret": "s3cret"})
	if resp.StatusCode != nethttp.StatusOK || doc["ok"] != true {
		t.Fatalf("status = %d body = %v, want routed delivery", resp.StatusCode, doc)
	}

	run, _ := tr.runs.Get(context.Background(), "analyzer_daily:site-a:2026-02-13")
	if run == nil || run.Status != model.TaskRunSucceeded {
		t.Fatalf("ledger row = %+v, want succeeded", run)
	}
}

func TestExecuteInvalidPayloadRecordsFailure(t *testing.T) {
	tr := newTestRouter(t, &pkghttp.Http{})

	resp, doc := tr.request(t, "POST", "/v1/tasks/execute", []byte("{not json"), nil)
	// Always 200: the transport must not retry a poison payload.
	if resp.StatusCode != nethttp.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if doc["ok"] != false {
		t.Fatalf("body = %v, want ok false", doc)
	}
	if len(tr.runs.failures) != 1 {
		t.Errorf("failure rows = %d, want 1", len(tr.runs.failures))
	}
	if len(tr.queue.entries) != 0 {
		t.Errorf("poison payload was replayed")
	}
}

func TestExecuteUnknownSchemaRejected(t *testing.T) {
	tr := newTestRouter(t, &pkghttp.Http{})
	p := &taskqueue.Payload{
		SchemaVersion: "9.9", TaskType: taskqueue.TaskAnalyzerDaily,
		SiteId: "site-a", TraceId: "t", IdempotencyKey: "k", RunDate: "2026-02-13",
	}
	raw, _ := p.Marshal()

	resp, doc := tr.request(t, "POST", "/v1/tasks/execute", raw, nil)
	if resp.StatusCode != nethttp.StatusOK || doc["ok"] != false {
		t.Fatalf("status = %d body = %v, want ok false", resp.StatusCode, doc)
	}
	if len(tr.runs.failures) != 1 {
		t.Errorf("failure rows = %d, want 1", len(tr.runs.failures))
	}
}

func TestExecuteEngineErrorReplaysDelivery(t *testing.T) {
	tr := newTestRouter(t, &pkghttp.Http{})
	key := "analyzer_daily:site-a:2026-02-13"
	// A held lease makes Route fail without touching the ledger.
	tr.locks.Acquire(context.Background(), &model.TaskLock{LockId: taskqueue.LockId(key, 0)})

	resp, doc := tr.request(t, "POST", "/v1/tasks/execute",
		deliveryPayload(t, taskqueue.TaskAnalyzerDaily, key), nil)
	if resp.StatusCode != nethttp.StatusOK || doc["ok"] != false {
		t.Fatalf("status = %d body = %v, want 200 ok false", resp.StatusCode, doc)
	}
	if len(tr.runs.failures) != 1 {
		t.Errorf("failure rows = %d, want 1", len(tr.runs.failures))
	}
	if len(tr.queue.entries) != 1 {
		t.Fatalf("replay enqueues = %d, want 1", len(tr.queue.entries))
	}
	if got := tr.queue.entries[0].DelaySeconds; got != deliveryRetryDelaySec {
		t.Errorf("replay delay = %ds, want %d", got, deliveryRetryDelaySec)
	}
}

func TestGetTaskRun(t *testing.T) {
	tr := newTestRouter(t, &pkghttp.Http{})
	key := "kw_score:site-a:2026-02-13"
	tr.runs.runs[key] = &model.TaskRun{IdempotencyKey: key, Status: model.TaskRunSucceeded}

	resp, doc := tr.request(t, "GET", "/v1/tasks/runs/"+key, nil, nil)
	if resp.StatusCode != nethttp.StatusOK || doc["ok"] != true {
		t.Fatalf("status = %d body = %v", resp.StatusCode, doc)
	}

	resp, _ = tr.request(t, "GET", "/v1/tasks/runs/unknown-key", nil, nil)
	if resp.StatusCode != nethttp.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}

func TestGetArticleTimeline(t *testing.T) {
	tr := newTestRouter(t, &pkghttp.Http{})
	tr.articles.articles["art1"] = &model.Article{
		ArticleId:         "art1",
		SiteId:            "site-a",
		Status:            model.ArticlePackaged,
		PipelineLastTask:  "article_package",
		PipelineLastState: "succeeded",
	}

	resp, doc := tr.request(t, "GET", "/v1/articles/art1/timeline", nil, nil)
	if resp.StatusCode != nethttp.StatusOK || doc["ok"] != true {
		t.Fatalf("status = %d body = %v", resp.StatusCode, doc)
	}
	if doc["status"] != model.ArticlePackaged || doc["lastTask"] != "article_package" {
		t.Errorf("body = %v", doc)
	}

	resp, _ = tr.request(t, "GET", "/v1/articles/ghost/timeline", nil, nil)
	if resp.StatusCode != nethttp.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}

func TestOpsRequiresBearerToken(t *testing.T) {
	tr := newTestRouter(t, &pkghttp.Http{TaskSecret: "task", OpsSecret: "ops-token"})

	resp, _ := tr.request(t, "GET", "/v1/ops/health", nil, nil)
	if resp.StatusCode != nethttp.StatusUnauthorized {
		t.Fatalf("status = %d, want 401 without token", resp.StatusCode)
	}

	resp, _ = tr.request(t, "GET", "/v1/ops/health", nil,
		map[string]string{"Authorization": "Bearer wrong"})
	if resp.StatusCode != nethttp.StatusUnauthorized {
		t.Fatalf("status = %d, want 401 with wrong token", resp.StatusCode)
	}

	// Correct token reaches the probe; the nil database keeps it 503.
	resp, doc := tr.request(t, "GET", "/v1/ops/health", nil,
		map[string]string{"Authorization": "Bearer ops-token"})
	if resp.StatusCode != nethttp.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503 with the database down", resp.StatusCode)
	}
	if doc["ok"] != false {
		t.Errorf("health body = %v", doc)
	}
}

func TestOpsSecretFallsBackToTaskSecret(t *testing.T) {
	tr := newTestRouter(t, &pkghttp.Http{TaskSecret: "task"})

	resp, _ := tr.request(t, "GET", "/v1/ops/health", nil,
		map[string]string{"Authorization": "Bearer task"})
	if resp.StatusCode == nethttp.StatusUnauthorized {
		t.Fatal("task secret rejected as the ops bearer fallback")
	}
}

func TestSmokeEndpoint(t *testing.T) {
	tr := newTestRouter(t, &pkghttp.Http{})

	resp, doc := tr.request(t, "POST", "/v1/ops/smoke",
		[]byte(`{"siteId":"site-a","runDate":"2026-02-13"}`), nil)
	if resp.StatusCode != nethttp.StatusOK {
		t.Fatalf("status = %d body = %v", resp.StatusCode, doc)
	}
	if doc["ok"] != true {
		t.Fatalf("smoke result = %v, want ok", doc)
	}
	if doc["status"] != model.ArticlePackaged {
		t.Errorf("smoke status = %v, want packaged", doc["status"])
	}

	resp, _ = tr.request(t, "POST", "/v1/ops/smoke", []byte(`{"siteId":"ghost"}`), nil)
	if resp.StatusCode != nethttp.StatusBadRequest {
		t.Fatalf("status = %d, want 400 for unknown site", resp.StatusCode)
	}
}
