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

// ITaskRunRepository is the run ledger: one row per idempotency key, merged
// across snapshots.
type ITaskRunRepository interface {
	Get(ctx context.Context, idempotencyKey string) (*model.TaskRun, error)
	Upsert(ctx context.Context, run *model.TaskRun, mergeColumns []string) error
	AppendEvent(ctx context.Context, event *model.TaskRunEvent) error
	ListEvents(ctx context.Context, idempotencyKey string) ([]*model.TaskRunEvent, error)
	RecordFailure(ctx context.Context, failure *model.TaskFailure) error
	OldestQueuedAge(ctx context.Context, now time.Time) (time.Duration, error)
}

type TaskRunRepo struct {
	database.IDatabase
}

func NewTaskRunRepo(db database.IDatabase) ITaskRunRepository {
	return &TaskRunRepo{IDatabase: db}
}

// Get returns the ledger row for the key, or nil when no run was recorded.
func (r *TaskRunRepo) Get(ctx context.Context, idempotencyKey string) (*model.TaskRun, error) {
	var run model.TaskRun
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

// Upsert inserts the snapshot or merges mergeColumns into the existing row.
// Absent fields on the snapshot never clear earlier values because only the
// named columns are updated on conflict.
func (r *TaskRunRepo) Upsert(ctx context.Context, run *model.TaskRun, mergeColumns []string) error {
	run.UpdatedAt = time.Now()
	return r.Database().WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "idempotency_key"}},
			DoUpdates: clause.AssignmentColumns(append(mergeColumns, "updated_at")),
		}).
		Create(run).Error
}

// AppendEvent records a retry decision on the event log.
func (r *TaskRunRepo) AppendEvent(ctx context.Context, event *model.TaskRunEvent) error {
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}
	return r.Database().WithContext(ctx).Create(event).Error
}

// ListEvents returns retry events for a key, oldest first.
func (r *TaskRunRepo) ListEvents(ctx context.Context, idempotencyKey string) ([]*model.TaskRunEvent, error) {
	var events []*model.TaskRunEvent
	err := r.Database().WithContext(ctx).
		Where("idempotency_key = ?", idempotencyKey).
		Order("id ASC").
		Find(&events).Error
	return events, err
}

// RecordFailure stores a delivery-side failure row. Duplicate failure ids
// are swallowed so redelivery of the same attempt records once.
func (r *TaskRunRepo) RecordFailure(ctx context.Context, failure *model.TaskFailure) error {
	if failure.CreatedAt.IsZero() {
		failure.CreatedAt = time.Now()
	}
	return r.Database().WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(failure).Error
}

// OldestQueuedAge returns how long the oldest queued-not-started run has been
// waiting. Zero when nothing is queued.
func (r *TaskRunRepo) OldestQueuedAge(ctx context.Context, now time.Time) (time.Duration, error) {
	var run model.TaskRun
	err := r.Database().WithContext(ctx).
		Where("status = ?", model.TaskRunQueued).
		Order("queued_at ASC").
		First(&run).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, err
	}
	if run.QueuedAt == nil {
		return 0, nil
	}
	return now.Sub(*run.QueuedAt), nil
}
