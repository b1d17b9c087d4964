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

	"gorm.io/datatypes"
)

// CostDaily 每日成本汇总（按站点+日期+任务类型累加）
type CostDaily struct {
	Id        int64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	SiteId    string    `gorm:"column:site_id;type:VARCHAR(64);uniqueIndex:idx_cost_site_date_type" json:"site_id"`
	RunDate   string    `gorm:"column:run_date;type:VARCHAR(10);uniqueIndex:idx_cost_site_date_type" json:"run_date"`
	TaskType  string    `gorm:"column:task_type;type:VARCHAR(64);uniqueIndex:idx_cost_site_date_type" json:"task_type"`
	Calls     int       `gorm:"column:calls;type:INT" json:"calls"`
	CostUnits int       `gorm:"column:cost_units;type:INT" json:"cost_units"`
	UpdatedAt time.Time `gorm:"column:updated_at;type:DATETIME" json:"updated_at"`
}

// TableName 返回表名称
func (CostDaily) TableName() string {
	return "l_cost_daily"
}

// AnalyzerLog 每日运行分析记录
type AnalyzerLog struct {
	Id        int64          `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	SiteId    string         `gorm:"column:site_id;type:VARCHAR(64);index:idx_analyzer_site_date" json:"site_id"`
	RunDate   string         `gorm:"column:run_date;type:VARCHAR(10);index:idx_analyzer_site_date" json:"run_date"`
	Summary   datatypes.JSON `gorm:"column:summary;type:JSON" json:"summary"`
	CreatedAt time.Time      `gorm:"column:created_at;type:DATETIME" json:"created_at"`
}

func (AnalyzerLog) TableName() string {
	return "l_analyzer_logs"
}

// AdvisorReport 每周全局顾问报告（按周键去重）
type AdvisorReport struct {
	Id        int64          `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	WeekKey   string         `gorm:"column:week_key;type:VARCHAR(10);uniqueIndex" json:"week_key"`
	Report    datatypes.JSON `gorm:"column:report;type:JSON" json:"report"`
	UpdatedAt time.Time      `gorm:"column:updated_at;type:DATETIME" json:"updated_at"`
}

func (AdvisorReport) TableName() string {
	return "l_advisor_reports"
}
