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

	"github.com/bytedance/sonic"
	"github.com/pressline/pressline/internal/engine/consts"
	"github.com/pressline/pressline/internal/engine/model"
	"github.com/pressline/pressline/pkg/cache"
	"github.com/pressline/pressline/pkg/database"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// 全局配置缓存时间（故意很短，改动要很快生效）
const settingsCacheTTL = 30 * time.Second

// ISettingsRepository serves the merged global settings document.
type ISettingsRepository interface {
	Get(ctx context.Context) (model.Settings, error)
	Update(ctx context.Context, settings model.Settings) error
}

type SettingsRepo struct {
	database.IDatabase
	cache.ICache
}

func NewSettingsRepo(db database.IDatabase, c cache.ICache) ISettingsRepository {
	return &SettingsRepo{IDatabase: db, ICache: c}
}

// Get returns the settings document merged over the defaults. An absent row
// yields the defaults unchanged.
func (r *SettingsRepo) Get(ctx context.Context) (model.Settings, error) {
	keyFunc := func(...any) string {
		return consts.GlobalSettingsCacheKey + model.GlobalSettingsName
	}
	queryFunc := func(ctx context.Context) (model.Settings, error) {
		merged := model.DefaultSettings()
		var row model.GlobalSettings
		err := r.Database().WithContext(ctx).
			Where("name = ?", model.GlobalSettingsName).
			First(&row).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return merged, nil
			}
			return merged, err
		}
		if uerr := sonic.Unmarshal([]byte(row.Data), &merged); uerr != nil {
			return merged, uerr
		}
		normalize(&merged)
		return merged, nil
	}

	cq := cache.NewCachedQuery(
		r.ICache,
		keyFunc,
		queryFunc,
		cache.WithTTL[model.Settings](settingsCacheTTL),
		cache.WithLogPrefix[model.Settings]("[SettingsRepo]"),
	)
	return cq.Get(ctx)
}

// Update writes the settings document and drops the cache entry.
func (r *SettingsRepo) Update(ctx context.Context, settings model.Settings) error {
	raw, err := sonic.Marshal(settings)
	if err != nil {
		return err
	}
	row := model.GlobalSettings{
		Name:      model.GlobalSettingsName,
		Data:      string(raw),
		UpdatedAt: time.Now(),
	}
	err = r.Database().WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoUpdates: clause.AssignmentColumns([]string{"data", "updated_at"}),
		}).
		Create(&row).Error
	if err != nil {
		return err
	}
	if r.ICache != nil {
		_ = r.ICache.Del(ctx, consts.GlobalSettingsCacheKey+model.GlobalSettingsName)
	}
	return nil
}

// normalize backfills zero values with the defaults so a sparse stored
// document never zeroes a policy knob.
func normalize(s *model.Settings) {
	def := model.DefaultSettings()
	if s.Pipeline.EnqueueJitterSecMin <= 0 {
		s.Pipeline.EnqueueJitterSecMin = def.Pipeline.EnqueueJitterSecMin
	}
	if s.Pipeline.EnqueueJitterSecMax <= 0 {
		s.Pipeline.EnqueueJitterSecMax = def.Pipeline.EnqueueJitterSecMax
	}
	if s.Pipeline.RetryDelaySec <= 0 {
		s.Pipeline.RetryDelaySec = def.Pipeline.RetryDelaySec
	}
	if s.Pipeline.PublishDefault == "" {
		s.Pipeline.PublishDefault = def.Pipeline.PublishDefault
	}
	if s.Pipeline.PublishMinIntervalMin <= 0 {
		s.Pipeline.PublishMinIntervalMin = def.Pipeline.PublishMinIntervalMin
	}
	if s.Caps.TitleLLMMax <= 0 {
		s.Caps.TitleLLMMax = def.Caps.TitleLLMMax
	}
	if s.Caps.BodyLLMMax <= 0 {
		s.Caps.BodyLLMMax = def.Caps.BodyLLMMax
	}
	if s.Caps.QaFixMax <= 0 {
		s.Caps.QaFixMax = def.Caps.QaFixMax
	}
	if s.GrowthVersion == "" {
		s.GrowthVersion = def.GrowthVersion
	}
}
