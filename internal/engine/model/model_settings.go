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

// GlobalSettings 全局配置文档（JSON 单行）
type GlobalSettings struct {
	Id        int64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"column:name;type:VARCHAR(64);uniqueIndex" json:"name"`
	Data      string    `gorm:"column:data;type:JSON" json:"data"`
	UpdatedAt time.Time `gorm:"column:updated_at;type:DATETIME" json:"updated_at"`
}

// TableName 返回表名称
func (GlobalSettings) TableName() string {
	return "l_global_settings"
}

// GlobalSettingsName is the row holding the engine-wide settings document.
const GlobalSettingsName = "globalSettings"

// PipelineSettings controls enqueue timing and the retry policy.
type PipelineSettings struct {
	EnqueueJitterSecMin   int    `json:"enqueueJitterSecMin"`
	EnqueueJitterSecMax   int    `json:"enqueueJitterSecMax"`
	RetrySameDayMax       int    `json:"retrySameDayMax"`
	RetryDelaySec         int    `json:"retryDelaySec"`
	PublishDefault        string `json:"publishDefault"` // scheduled/manual
	PublishMinIntervalMin int    `json:"publishMinIntervalMin"`
}

// CapsSettings bounds LLM usage and the QA fix loop.
type CapsSettings struct {
	TitleLLMMax                int  `json:"titleLLMMax"`
	BodyLLMMax                 int  `json:"bodyLLMMax"`
	QaFixMax                   int  `json:"qaFixMax"`
	GenerateImagesOnlyOnQaPass bool `json:"generateImagesOnlyOnQaPass"`
}

// Settings is the merged global settings document.
type Settings struct {
	Pipeline      PipelineSettings `json:"pipeline"`
	Caps          CapsSettings     `json:"caps"`
	GrowthVersion string           `json:"growthVersion"`
}

// DefaultSettings returns the production defaults applied when the settings
// row is absent or a field is unset.
func DefaultSettings() Settings {
	return Settings{
		Pipeline: PipelineSettings{
			EnqueueJitterSecMin:   120,
			EnqueueJitterSecMax:   300,
			RetrySameDayMax:       1,
			RetryDelaySec:         1800,
			PublishDefault:        "scheduled",
			PublishMinIntervalMin: 60,
		},
		Caps: CapsSettings{
			TitleLLMMax:                1,
			BodyLLMMax:                 1,
			QaFixMax:                   1,
			GenerateImagesOnlyOnQaPass: true,
		},
		GrowthVersion: "GROWTH_V1",
	}
}
