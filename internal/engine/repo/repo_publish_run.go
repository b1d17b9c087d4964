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

package repo

import (
	"context"
	"errors"
	"time"

	"github.com/pressline/pressline/internal/engine/model"
	"github.com/pressline/pressline/pkg/database"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// IPublishRunRepository records publish outcomes keyed by idempotency key.
type IPublishRunRepository interface {
	Get(ctx context.Context, idempotencyKey string) (*model.PublishRun, error)
	Record(ctx context.Context, run *model.PublishRun) error
}

type PublishRunRepo struct {
	database.IDatabase
}

func NewPublishRunRepo(db database.IDatabase) IPublishRunRepository {
	return &PublishRunRepo{IDatabase: db}
}

// Get returns the publish run for the key, nil when none was recorded.
func (r *PublishRunRepo) Get(ctx context.Context, idempotencyKey string) (*model.PublishRun, error) {
	var run model.PublishRun
	err := r.Database().WithContext(ctx).
		Where("idempotency_key = ?", idempotencyKey).
		First(&run).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &run, nil
}

// Record upserts the publish outcome for the key.
func (r *PublishRunRepo) Record(ctx context.Context, run *model.PublishRun) error {
	if run.PublishedAt.IsZero() {
		run.PublishedAt = time.Now()
	}
	return r.Database().WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "idempotency_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"ok", "post_id", "note", "published_at"}),
		}).
		Create(run).Error
}
