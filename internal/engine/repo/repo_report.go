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
	"gorm.io/gorm/clause"
)

// IReportRepository stores analyzer logs and advisor reports.
type IReportRepository interface {
	AppendAnalyzerLog(ctx context.Context, log *model.AnalyzerLog) error
	UpsertAdvisorReport(ctx context.Context, report *model.AdvisorReport) error
}

type ReportRepo struct {
	database.IDatabase
}

func NewReportRepo(db database.IDatabase) IReportRepository {
	return &ReportRepo{IDatabase: db}
}

// AppendAnalyzerLog adds one daily analyzer row.
func (r *ReportRepo) AppendAnalyzerLog(ctx context.Context, log *model.AnalyzerLog) error {
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now()
	}
	return r.Database().WithContext(ctx).Create(log).Error
}

// UpsertAdvisorReport writes the weekly report, replacing an earlier draft
// for the same week key.
func (r *ReportRepo) UpsertAdvisorReport(ctx context.Context, report *model.AdvisorReport) error {
	report.UpdatedAt = time.Now()
	return r.Database().WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "week_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"report", "updated_at"}),
		}).
		Create(report).Error
}
