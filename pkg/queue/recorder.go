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

package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// QueueStatus represents the transport status of an enqueued task.
type QueueStatus string

const (
	QueueStatusQueued    QueueStatus = "queued"
	QueueStatusDelivered QueueStatus = "delivered"
	QueueStatusFailed    QueueStatus = "failed"
)

const queueRecordTableName = "l_queue_records"

// QueueRecordModel is the GORM model backing enqueue dedup and transport
// observability. task_id is the primary key, so a duplicate enqueue is a
// no-op insert.
type QueueRecordModel struct {
	TaskId      string     `gorm:"column:task_id;type:VARCHAR(64);primaryKey" json:"taskId"`
	TaskType    string     `gorm:"column:task_type;type:VARCHAR(64);index" json:"taskType"`
	Lane        string     `gorm:"column:lane;type:VARCHAR(16)" json:"lane"`
	Payload     []byte     `gorm:"column:payload;type:JSON" json:"payload"`
	Status      string     `gorm:"column:status;type:VARCHAR(32);index" json:"status"`
	DeliverAt   *time.Time `gorm:"column:deliver_at;type:DATETIME" json:"deliverAt,omitempty"`
	CreatedAt   time.Time  `gorm:"column:created_at;type:DATETIME;index" json:"createdAt"`
	DeliveredAt *time.Time `gorm:"column:delivered_at;type:DATETIME" json:"deliveredAt,omitempty"`
	Error       string     `gorm:"column:error;type:TEXT" json:"error,omitempty"`
}

func (QueueRecordModel) TableName() string {
	return queueRecordTableName
}

// Recorder persists enqueue records and enforces task-id dedup.
type Recorder interface {
	// Record inserts a record for a newly enqueued task. Returns
	// ErrAlreadyQueued when the task id exists.
	Record(ctx context.Context, record *QueueRecordModel) error

	// UpdateStatus marks a task delivered or failed.
	UpdateStatus(ctx context.Context, taskId string, status QueueStatus, deliveryErr error) error

	// Get retrieves a record by task id.
	Get(ctx context.Context, taskId string) (*QueueRecordModel, error)
}

// MySQLRecorder implements Recorder on MySQL.
type MySQLRecorder struct {
	db *gorm.DB
}

// NewRecorder creates a MySQL-backed recorder.
func NewRecorder(db *gorm.DB) (*MySQLRecorder, error) {
	if db == nil {
		return nil, fmt.Errorf("db cannot be nil")
	}
	return &MySQLRecorder{db: db}, nil
}

func (r *MySQLRecorder) Record(ctx context.Context, record *QueueRecordModel) error {
	if record == nil {
		return fmt.Errorf("queue record cannot be nil")
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}
	if record.Status == "" {
		record.Status = string(QueueStatusQueued)
	}

	result := r.db.WithContext(ctx).Table(queueRecordTableName).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(record)
	if result.Error != nil {
		return fmt.Errorf("failed to record queued task: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrAlreadyQueued
	}
	return nil
}

func (r *MySQLRecorder) UpdateStatus(ctx context.Context, taskId string, status QueueStatus, deliveryErr error) error {
	if taskId == "" {
		return fmt.Errorf("task id cannot be empty")
	}

	now := time.Now()
	updates := map[string]any{"status": string(status)}
	if status == QueueStatusDelivered {
		updates["delivered_at"] = &now
	}
	if deliveryErr != nil {
		updates["error"] = deliveryErr.Error()
	}

	result := r.db.WithContext(ctx).Table(queueRecordTableName).
		Where("task_id = ?", taskId).
		Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to update queue record: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("queue record not found: %s", taskId)
	}
	return nil
}

func (r *MySQLRecorder) Get(ctx context.Context, taskId string) (*QueueRecordModel, error) {
	if taskId == "" {
		return nil, fmt.Errorf("task id cannot be empty")
	}

	var model QueueRecordModel
	if err := r.db.WithContext(ctx).Table(queueRecordTableName).
		Where("task_id = ?", taskId).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("queue record not found: %s", taskId)
		}
		return nil, fmt.Errorf("failed to get queue record: %w", err)
	}
	return &model, nil
}
