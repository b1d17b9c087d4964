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

package model

import (
	"time"
)

// TaskLock 任务租约（按 lock_id 排他）
type TaskLock struct {
	LockId    string    `gorm:"column:lock_id;type:VARCHAR(300);primaryKey" json:"lock_id"`
	SiteId    string    `gorm:"column:site_id;type:VARCHAR(64)" json:"site_id"`
	TaskType  string    `gorm:"column:task_type;type:VARCHAR(64)" json:"task_type"`
	ExpiresAt time.Time `gorm:"column:expires_at;type:DATETIME" json:"expires_at"`
	CreatedAt time.Time `gorm:"column:created_at;type:DATETIME" json:"created_at"`
}

// TableName 返回表名称
func (TaskLock) TableName() string {
	return "l_task_locks"
}
