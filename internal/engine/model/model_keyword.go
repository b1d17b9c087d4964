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

// Keyword statuses.
const (
	KeywordCandidate = "candidate"
	KeywordSelected  = "selected"
	KeywordConsumed  = "consumed"
)

// Keyword 关键词候选与选中记录
type Keyword struct {
	Id        int64  `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	KeywordId string `gorm:"column:keyword_id;type:VARCHAR(128);uniqueIndex" json:"keyword_id"`
	SiteId    string `gorm:"column:site_id;type:VARCHAR(64);index:idx_kw_site_date" json:"site_id"`
	RunDate   string `gorm:"column:run_date;type:VARCHAR(10);index:idx_kw_site_date" json:"run_date"`
	Text      string `gorm:"column:text;type:VARCHAR(255)" json:"text"`
	TextNorm  string `gorm:"column:text_norm;type:VARCHAR(255)" json:"text_norm"`
	ClusterId string `gorm:"column:cluster_id;type:VARCHAR(80)" json:"cluster_id"`
	Status    string `gorm:"column:status;type:VARCHAR(16)" json:"status"`

	Trend3        int    `gorm:"column:trend3;type:INT" json:"trend3"`
	Trend7        int    `gorm:"column:trend7;type:INT" json:"trend7"`
	Trend30       int    `gorm:"column:trend30;type:INT" json:"trend30"`
	BlogDocs      int    `gorm:"column:blog_docs;type:INT" json:"blog_docs"`
	MetricsSource string `gorm:"column:metrics_source;type:VARCHAR(32)" json:"metrics_source"`
	Source        string `gorm:"column:source;type:VARCHAR(32)" json:"source"`

	Score       int     `gorm:"column:score;type:INT" json:"score"`
	Lane        string  `gorm:"column:lane;type:VARCHAR(16)" json:"lane"`
	Competition string  `gorm:"column:competition;type:VARCHAR(16)" json:"competition"`
	CompRatio   float64 `gorm:"column:comp_ratio;type:DOUBLE" json:"comp_ratio"`

	CreatedAt time.Time `gorm:"column:created_at;type:DATETIME" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;type:DATETIME" json:"updated_at"`
}

// TableName 返回表名称
func (Keyword) TableName() string {
	return "l_keywords"
}
