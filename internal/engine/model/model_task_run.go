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

// Task run statuses on the ledger.
const (
	TaskRunQueued    = "queued"
	TaskRunRunning   = "running"
	TaskRunSucceeded = "succeeded"
	TaskRunFailed    = "failed"
	TaskRunSkipped   = "skipped"
)

// Ledger event kinds recorded alongside run rows.
const (
	EventRetryEnqueued = "retry_enqueued"
	EventRetrySkipped  = "retry_skipped"
)

// TaskRun 任务执行账本（按幂等键去重）
type TaskRun struct {
	Id               int64      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	IdempotencyKey   string     `gorm:"column:idempotency_key;type:VARCHAR(255);uniqueIndex" json:"idempotency_key"`
	TaskType         string     `gorm:"column:task_type;type:VARCHAR(64)" json:"task_type"`
	SiteId           string     `gorm:"column:site_id;type:VARCHAR(64)" json:"site_id"`
	TraceId          string     `gorm:"column:trace_id;type:VARCHAR(64)" json:"trace_id"`
	Status           string     `gorm:"column:status;type:VARCHAR(32)" json:"status"`
	RetryCount       int        `gorm:"column:retry_count;type:INT" json:"retry_count"`
	AttemptCount     int        `gorm:"column:attempt_count;type:INT" json:"attempt_count"`
	RunDate          string     `gorm:"column:run_date;type:VARCHAR(10)" json:"run_date"`
	RunTag           string     `gorm:"column:run_tag;type:VARCHAR(32)" json:"run_tag,omitempty"`
	RunReason        string     `gorm:"column:run_reason;type:VARCHAR(160)" json:"run_reason,omitempty"`
	QueuedAt         *time.Time `gorm:"column:queued_at;type:DATETIME" json:"queued_at,omitempty"`
	StartedAt        *time.Time `gorm:"column:started_at;type:DATETIME" json:"started_at,omitempty"`
	UpdatedAt        time.Time  `gorm:"column:updated_at;type:DATETIME" json:"updated_at"`
	DurationMs       int64      `gorm:"column:duration_ms;type:BIGINT" json:"duration_ms,omitempty"`
	Error            string     `gorm:"column:error;type:TEXT" json:"error,omitempty"`
	LastErrorCode    string     `gorm:"column:last_error_code;type:VARCHAR(128)" json:"last_error_code,omitempty"`
	LastErrorMessage string     `gorm:"column:last_error_message;type:VARCHAR(512)" json:"last_error_message,omitempty"`
}

// TableName 返回表名称
func (TaskRun) TableName() string {
	return "l_task_runs"
}

// TaskRunEvent 任务重试事件记录
type TaskRunEvent struct {
	Id             int64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	IdempotencyKey string    `gorm:"column:idempotency_key;type:VARCHAR(255);index" json:"idempotency_key"`
	TaskType       string    `gorm:"column:task_type;type:VARCHAR(64)" json:"task_type"`
	SiteId         string    `gorm:"column:site_id;type:VARCHAR(64)" json:"site_id"`
	Event          string    `gorm:"column:event;type:VARCHAR(32)" json:"event"`
	Detail         string    `gorm:"column:detail;type:VARCHAR(512)" json:"detail,omitempty"`
	CreatedAt      time.Time `gorm:"column:created_at;type:DATETIME" json:"created_at"`
}

func (TaskRunEvent) TableName() string {
	return "l_task_run_events"
}

// TaskFailure 投递失败记录（交付端兜底）
type TaskFailure struct {
	Id        int64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	FailureId string    `gorm:"column:failure_id;type:VARCHAR(300);uniqueIndex" json:"failure_id"`
	TaskType  string    `gorm:"column:task_type;type:VARCHAR(64)" json:"task_type"`
	SiteId    string    `gorm:"column:site_id;type:VARCHAR(64)" json:"site_id"`
	Payload   string    `gorm:"column:payload;type:JSON" json:"payload"`
	Error     string    `gorm:"column:error;type:TEXT" json:"error"`
	CreatedAt time.Time `gorm:"column:created_at;type:DATETIME" json:"created_at"`
}

func (TaskFailure) TableName() string {
	return "l_task_failures"
}
