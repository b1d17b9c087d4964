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

// Package repo implements persistence for the engine: the run ledger, task
// leases, domain entities and the cached global settings document.
package repo

import (
	"context"
	"errors"

	"github.com/pressline/pressline/pkg/cache"
	"github.com/pressline/pressline/pkg/database"
	"gorm.io/gorm"
)

// Repositories aggregates every repository the services depend on.
type Repositories struct {
	db database.IDatabase

	TaskRuns    ITaskRunRepository
	Locks       ITaskLockRepository
	Sites       ISiteRepository
	Keywords    IKeywordRepository
	Articles    IArticleRepository
	PublishRuns IPublishRunRepository
	Pipelines   IPipelineRunRepository
	Settings    ISettingsRepository
	Costs       ICostRepository
	Reports     IReportRepository
}

// NewRepositories wires all repositories over one database handle.
func NewRepositories(db database.IDatabase, c cache.ICache) *Repositories {
	return &Repositories{
		db:          db,
		TaskRuns:    NewTaskRunRepo(db),
		Locks:       NewTaskLockRepo(db),
		Sites:       NewSiteRepo(db, c),
		Keywords:    NewKeywordRepo(db),
		Articles:    NewArticleRepo(db),
		PublishRuns: NewPublishRunRepo(db),
		Pipelines:   NewPipelineRunRepo(db),
		Settings:    NewSettingsRepo(db, c),
		Costs:       NewCostRepo(db),
		Reports:     NewReportRepo(db),
	}
}

// Ping verifies database connectivity for the health endpoint.
func (r *Repositories) Ping(ctx context.Context) error {
	if r.db == nil {
		return errors.New("repo: database not configured")
	}
	sqlDB, err := r.db.Database().WithContext(ctx).DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Count returns the row count of the current query.
func Count(tx *gorm.DB) (int64, error) {
	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}
