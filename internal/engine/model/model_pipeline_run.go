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
	"regexp"
	"time"
)

// Pipeline run states.
const (
	PipelineRunRunning   = "running"
	PipelineRunSucceeded = "succeeded"
	PipelineRunFailed    = "failed"
)

// PipelineRun 每日流水线看门记录（先到先得）
type PipelineRun struct {
	Id               int64      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	PipelineRunId    string     `gorm:"column:pipeline_run_id;type:VARCHAR(180);uniqueIndex" json:"pipeline_run_id"`
	SiteId           string     `gorm:"column:site_id;type:VARCHAR(64)" json:"site_id"`
	RunDate          string     `gorm:"column:run_date;type:VARCHAR(10)" json:"run_date"`
	Version          string     `gorm:"column:version;type:VARCHAR(32)" json:"version"`
	State            string     `gorm:"column:state;type:VARCHAR(16)" json:"state"`
	StartedAt        time.Time  `gorm:"column:started_at;type:DATETIME" json:"started_at"`
	EndedAt          *time.Time `gorm:"column:ended_at;type:DATETIME" json:"ended_at,omitempty"`
	LastErrorCode    string     `gorm:"column:last_error_code;type:VARCHAR(128)" json:"last_error_code,omitempty"`
	LastErrorMessage string     `gorm:"column:last_error_message;type:VARCHAR(512)" json:"last_error_message,omitempty"`
}

// TableName 返回表名称
func (PipelineRun) TableName() string {
	return "l_pipeline_runs"
}

var pipelineRunIdRe = regexp.MustCompile(`[^\w-]`)

// PipelineRunId builds the per-(site, day, version) run identifier. Unsafe
// characters collapse to underscores and the id is capped at 180 chars so it
// always fits the column.
func PipelineRunIdFor(siteId, runDate, version string) string {
	id := pipelineRunIdRe.ReplaceAllString(siteId+"_"+runDate+"_"+version, "_")
	if len(id) > 180 {
		id = id[:180]
	}
	return id
}
