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

// Package service implements the task router/retry engine, the per-stage
// task handlers, the daily scheduler and the ops endpoints' logic.
package service

import (
	"github.com/pressline/pressline/internal/engine/repo"
	"github.com/pressline/pressline/internal/pkg/content"
	"github.com/pressline/pressline/internal/pkg/imagesearch"
	"github.com/pressline/pressline/internal/pkg/publish"
	"github.com/pressline/pressline/internal/pkg/storage"
	"github.com/pressline/pressline/pkg/queue"
)

// Services aggregates the engine services behind one handle.
type Services struct {
	Router    *TaskRouterService
	Scheduler *SchedulerService
	Ops       *OpsService
}

// Deps carries everything the services are built from.
type Deps struct {
	Repos       *repo.Repositories
	Queue       queue.Queue
	Storage     storage.IStorage
	Publishers  func(provider, accessToken string) (publish.Publisher, error)
	ImageSearch imagesearch.Searcher
	Moderator   content.Moderator

	// Env gates manual reruns: "prod" requires a whitelisted run tag.
	Env string

	// OffsetMinutes is the fixed site-local clock offset used when a site
	// does not carry its own.
	OffsetMinutes int

	// FetchExternalImages enables the photo-slot image search path.
	FetchExternalImages bool
}

// NewServices wires the service layer. The handler map is completeness
// checked inside NewTaskRouterService, so a missing stage fails startup.
func NewServices(deps Deps) (*Services, error) {
	router, err := NewTaskRouterService(deps)
	if err != nil {
		return nil, err
	}
	return &Services{
		Router:    router,
		Scheduler: NewSchedulerService(deps.Repos, deps.Queue, deps.OffsetMinutes),
		Ops:       NewOpsService(deps.Repos, router, deps.OffsetMinutes),
	}, nil
}
