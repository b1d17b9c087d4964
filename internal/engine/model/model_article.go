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

// Article statuses. The moderation_blocked state is terminal.
const (
	ArticleQueued            = "queued"
	ArticleGenerating        = "generating"
	ArticleReady             = "ready"
	ArticleQaFailed          = "qa_failed"
	ArticlePackaged          = "packaged"
	ArticlePublished         = "published"
	ArticleModerationBlocked = "moderation_blocked"
)

// Article 文章主记录（含流水线时间线）
type Article struct {
	Id        int64  `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	ArticleId string `gorm:"column:article_id;type:VARCHAR(128);uniqueIndex" json:"article_id"`
	SiteId    string `gorm:"column:site_id;type:VARCHAR(64);index:idx_article_site_date" json:"site_id"`
	KeywordId string `gorm:"column:keyword_id;type:VARCHAR(128)" json:"keyword_id"`
	RunDate   string `gorm:"column:run_date;type:VARCHAR(10);index:idx_article_site_date" json:"run_date"`
	Status    string `gorm:"column:status;type:VARCHAR(32)" json:"status"`

	Keyword    string         `gorm:"column:keyword;type:VARCHAR(255)" json:"keyword"`
	ClusterId  string         `gorm:"column:cluster_id;type:VARCHAR(80)" json:"cluster_id"`
	Intent     string         `gorm:"column:intent;type:VARCHAR(16)" json:"intent"`
	TitleFinal string         `gorm:"column:title_final;type:VARCHAR(255)" json:"title_final"`
	Titles     datatypes.JSON `gorm:"column:titles;type:JSON" json:"titles,omitempty"`
	HTML       string         `gorm:"column:html;type:MEDIUMTEXT" json:"html,omitempty"`
	Hashtags12 datatypes.JSON `gorm:"column:hashtags12;type:JSON" json:"hashtags12,omitempty"`
	K12        datatypes.JSON `gorm:"column:k12;type:JSON" json:"k12,omitempty"`
	ImagePlan  datatypes.JSON `gorm:"column:image_plan;type:JSON" json:"image_plan,omitempty"`
	Images     datatypes.JSON `gorm:"column:images;type:JSON" json:"images,omitempty"`
	TopCard    datatypes.JSON `gorm:"column:top_card;type:JSON" json:"top_card,omitempty"`

	Qa         datatypes.JSON `gorm:"column:qa;type:JSON" json:"qa,omitempty"`
	QaFixCount int            `gorm:"column:qa_fix_count;type:INT" json:"qa_fix_count"`
	LlmUsage   datatypes.JSON `gorm:"column:llm_usage;type:JSON" json:"llm_usage,omitempty"`
	Moderation datatypes.JSON `gorm:"column:moderation;type:JSON" json:"moderation,omitempty"`

	PackagePath   string         `gorm:"column:package_path;type:VARCHAR(255)" json:"package_path,omitempty"`
	PublishPlan   datatypes.JSON `gorm:"column:publish_plan;type:JSON" json:"publish_plan,omitempty"`
	PublishResult datatypes.JSON `gorm:"column:publish_result;type:JSON" json:"publish_result,omitempty"`
	PublishedAt   *time.Time     `gorm:"column:published_at;type:DATETIME" json:"published_at,omitempty"`

	PipelineHistory    datatypes.JSON `gorm:"column:pipeline_history;type:JSON" json:"pipeline_history,omitempty"`
	PipelineLastTask   string         `gorm:"column:pipeline_last_task;type:VARCHAR(64)" json:"pipeline_last_task,omitempty"`
	PipelineLastStatus string         `gorm:"column:pipeline_last_status;type:VARCHAR(32)" json:"pipeline_last_status,omitempty"`
	PipelineLastState  string         `gorm:"column:pipeline_last_state;type:VARCHAR(32)" json:"pipeline_last_state,omitempty"`

	CreatedAt time.Time `gorm:"column:created_at;type:DATETIME" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;type:DATETIME" json:"updated_at"`
}

// TableName 返回表名称
func (Article) TableName() string {
	return "l_articles"
}

// TimelineEvent is one entry of the article pipeline history JSON list.
type TimelineEvent struct {
	TaskType string `json:"taskType"`
	Status   string `json:"status"`
	State    string `json:"state,omitempty"`
	Detail   string `json:"detail,omitempty"`
	At       string `json:"at"`
}

// ArticleImage is one entry of the images JSON list.
type ArticleImage struct {
	Slot        string `json:"slot"`
	Kind        string `json:"kind"`
	StoragePath string `json:"storagePath,omitempty"`
	SourceURL   string `json:"sourceUrl,omitempty"`
	PageURL     string `json:"pageUrl,omitempty"`
	Author      string `json:"author,omitempty"`
	LicenseURL  string `json:"licenseUrl,omitempty"`
	Alt         string `json:"alt,omitempty"`
}

// LlmUsageDoc tracks per-article LLM call counters against the caps.
type LlmUsageDoc struct {
	TitleCalls int `json:"titleCalls"`
	BodyCalls  int `json:"bodyCalls"`
	QaFixCalls int `json:"qaFixCalls"`
}
