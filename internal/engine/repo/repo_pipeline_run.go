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

// IPipelineRunRepository is the daily pipeline guardrail: one claimed run per
// (site, day, version), first claimer wins.
type IPipelineRunRepository interface {
	Claim(ctx context.Context, run *model.PipelineRun) (claimed bool, err error)
	Finish(ctx context.Context, pipelineRunId, state, errorCode, errorMessage string) error
	Get(ctx context.Context, pipelineRunId string) (*model.PipelineRun, error)
	LastFinished(ctx context.Context, state string) (*model.PipelineRun, error)
}

type PipelineRunRepo struct {
	database.IDatabase
}

func NewPipelineRunRepo(db database.IDatabase) IPipelineRunRepository {
	return &PipelineRunRepo{IDatabase: db}
}

// Claim inserts the run row; a conflicting id means another runner already
// claimed the day and the caller must stand down.
func (r *PipelineRunRepo) Claim(ctx context.Context, run *model.PipelineRun) (bool, error) {
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}
	if run.State == "" {
		run.State = model.PipelineRunRunning
	}
	tx := r.Database().WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(run)
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

// Finish closes the claimed run with its final state.
func (r *PipelineRunRepo) Finish(ctx context.Context, pipelineRunId, state, errorCode, errorMessage string) error {
	now := time.Now()
	return r.Database().WithContext(ctx).
		Model(&model.PipelineRun{}).
		Where("pipeline_run_id = ?", pipelineRunId).
		Updates(map[string]any{
			"state":              state,
			"ended_at":           &now,
			"last_error_code":    errorCode,
			"last_error_message": errorMessage,
		}).Error
}

// Get returns the run row, nil when absent.
func (r *PipelineRunRepo) Get(ctx context.Context, pipelineRunId string) (*model.PipelineRun, error) {
	var run model.PipelineRun
	err := r.Database().WithContext(ctx).
		Where("pipeline_run_id = ?", pipelineRunId).
		First(&run).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &run, nil
}

// LastFinished returns the newest run in the given state, nil when none.
func (r *PipelineRunRepo) LastFinished(ctx context.Context, state string) (*model.PipelineRun, error) {
	var run model.PipelineRun
	err := r.Database().WithContext(ctx).
		Where("state = ?", state).
		Order("ended_at DESC").
		First(&run).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &run, nil
}
