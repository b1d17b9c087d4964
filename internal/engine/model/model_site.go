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

// Site modes and environments.
const (
	SiteModeAuto   = "auto"
	SiteModeManual = "manual"

	SiteEnvProd = "prod"
	SiteEnvDev  = "dev"
)

// Site 站点配置
type Site struct {
	Id            int64          `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	SiteId        string         `gorm:"column:site_id;type:VARCHAR(64);uniqueIndex" json:"site_id"`
	Name          string         `gorm:"column:name;type:VARCHAR(128)" json:"name"`
	Platform      string         `gorm:"column:platform;type:VARCHAR(32)" json:"platform"` // tistory/stub/disabled
	Mode          string         `gorm:"column:mode;type:VARCHAR(16)" json:"mode"`         // auto/manual
	Env           string         `gorm:"column:env;type:VARCHAR(16)" json:"env"`           // prod/dev
	Topic         string         `gorm:"column:topic;type:VARCHAR(128)" json:"topic"`
	SeedKeywords  datatypes.JSON `gorm:"column:seed_keywords;type:JSON" json:"seed_keywords"`
	BanWords      datatypes.JSON `gorm:"column:ban_words;type:JSON" json:"ban_words"`
	OffsetMinutes int            `gorm:"column:offset_minutes;type:INT" json:"offset_minutes"` // site-local clock, fixed offset

	TistoryBlogName    string `gorm:"column:tistory_blog_name;type:VARCHAR(128)" json:"tistory_blog_name,omitempty"`
	TistoryAccessToken string `gorm:"column:tistory_access_token;type:VARCHAR(256)" json:"-"`

	PublishMode string `gorm:"column:publish_mode;type:VARCHAR(16)" json:"publish_mode"` // scheduled/manual
	Enabled     int    `gorm:"column:enabled;type:TINYINT" json:"enabled"`               // 0: disabled, 1: enabled

	CreatedAt time.Time `gorm:"column:created_at;type:DATETIME" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;type:DATETIME" json:"updated_at"`
}

// TableName 返回表名称
func (Site) TableName() string {
	return "l_sites"
}
