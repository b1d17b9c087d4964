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

// PublishRun 发布执行记录（按幂等键去重）
type PublishRun struct {
	Id             int64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	IdempotencyKey string    `gorm:"column:idempotency_key;type:VARCHAR(255);uniqueIndex" json:"idempotency_key"`
	SiteId         string    `gorm:"column:site_id;type:VARCHAR(64)" json:"site_id"`
	ArticleId      string    `gorm:"column:article_id;type:VARCHAR(128)" json:"article_id"`
	Provider       string    `gorm:"column:provider;type:VARCHAR(32)" json:"provider"`
	Ok             int       `gorm:"column:ok;type:TINYINT" json:"ok"`
	PostId         string    `gorm:"column:post_id;type:VARCHAR(128)" json:"post_id,omitempty"`
	Note           string    `gorm:"column:note;type:VARCHAR(255)" json:"note,omitempty"`
	PublishedAt    time.Time `gorm:"column:published_at;type:DATETIME" json:"published_at"`
}

// TableName 返回表名称
func (PublishRun) TableName() string {
	return "l_publish_runs"
}
