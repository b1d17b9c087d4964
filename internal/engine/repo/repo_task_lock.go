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
)

// ErrLocked is returned when a lease is held and not yet expired.
var ErrLocked = errors.New("repo: task lock held")

// ITaskLockRepository hands out TTL leases keyed by lock id. Leases are
// advisory: an expired lease is overwritten by the next acquirer.
type ITaskLockRepository interface {
	Acquire(ctx context.Context, lock *model.TaskLock) error
	Release(ctx context.Context, lockId string) error
}

type TaskLockRepo struct {
	database.IDatabase
}

func NewTaskLockRepo(db database.IDatabase) ITaskLockRepository {
	return &TaskLockRepo{IDatabase: db}
}

// Acquire takes the lease inside a transaction: the current holder row is
// read, an unexpired holder raises ErrLocked, an expired or absent row is
// (over)written with the new expiry.
func (r *TaskLockRepo) Acquire(ctx context.Context, lock *model.TaskLock) error {
	now := time.Now()
	if lock.CreatedAt.IsZero() {
		lock.CreatedAt = now
	}
	return r.Database().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current model.TaskLock
		err := tx.Where("lock_id = ?", lock.LockId).First(&current).Error
		switch {
		case err == nil:
			if current.ExpiresAt.After(now) {
				return ErrLocked
			}
			return tx.Model(&model.TaskLock{}).
				Where("lock_id = ?", lock.LockId).
				Updates(map[string]any{
					"site_id":    lock.SiteId,
					"task_type":  lock.TaskType,
					"expires_at": lock.ExpiresAt,
					"created_at": now,
				}).Error
		case errors.Is(err, gorm.ErrRecordNotFound):
			return tx.Create(lock).Error
		default:
			return err
		}
	})
}

// Release drops the lease. Releasing an absent lease is not an error.
func (r *TaskLockRepo) Release(ctx context.Context, lockId string) error {
	return r.Database().WithContext(ctx).
		Where("lock_id = ?", lockId).
		Delete(&model.TaskLock{}).Error
}
