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
	"time"

	"github.com/pressline/pressline/internal/engine/model"
	"github.com/pressline/pressline/pkg/database"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ICostRepository accumulates per-day cost rows. The engine only records
// presence and call counts; billing arithmetic happens elsewhere.
type ICostRepository interface {
	Add(ctx context.Context, siteId, runDate, taskType string, calls, costUnits int) error
	HasRow(ctx context.Context, siteId, runDate string) (bool, error)
}

type CostRepo struct {
	database.IDatabase
}

func NewCostRepo(db database.IDatabase) ICostRepository {
	return &CostRepo{IDatabase: db}
}

// Add increments the (site, day, task type) counters, creating the row on
// first use.
func (r *CostRepo) Add(ctx context.Context, siteId, runDate, taskType string, calls, costUnits int) error {
	row := model.CostDaily{
		SiteId:    siteId,
		RunDate:   runDate,
		TaskType:  taskType,
		Calls:     calls,
		CostUnits: costUnits,
		UpdatedAt: time.Now(),
	}
	return r.Database().WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "site_id"}, {Name: "run_date"}, {Name: "task_type"}},
			DoUpdates: clause.Assignments(map[string]any{
				"calls":      gorm.Expr("calls + ?", calls),
				"cost_units": gorm.Expr("cost_units + ?", costUnits),
				"updated_at": time.Now(),
			}),
		}).
		Create(&row).Error
}

// HasRow reports whether any cost row exists for the day. An empty siteId
// matches every site.
func (r *CostRepo) HasRow(ctx context.Context, siteId, runDate string) (bool, error) {
	tx := r.Database().WithContext(ctx).
		Model(&model.CostDaily{}).
		Where("run_date = ?", runDate)
	if siteId != "" {
		tx = tx.Where("site_id = ?", siteId)
	}
	total, err := Count(tx)
	if err != nil {
		return false, err
	}
	return total > 0, nil
}
