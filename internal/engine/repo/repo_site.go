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

	"github.com/pressline/pressline/internal/engine/consts"
	"github.com/pressline/pressline/internal/engine/model"
	"github.com/pressline/pressline/pkg/cache"
	"github.com/pressline/pressline/pkg/database"
	"gorm.io/gorm"
)

const siteCacheTTL = 5 * time.Minute

// ISiteRepository reads site configuration.
type ISiteRepository interface {
	Get(ctx context.Context, siteId string) (*model.Site, error)
	ListEnabled(ctx context.Context) ([]*model.Site, error)
	Upsert(ctx context.Context, site *model.Site) error
}

type SiteRepo struct {
	database.IDatabase
	cache.ICache
}

func NewSiteRepo(db database.IDatabase, c cache.ICache) ISiteRepository {
	return &SiteRepo{IDatabase: db, ICache: c}
}

// Get returns the site by id, nil when unknown. Rows are cached briefly; the
// handlers hit this on every task.
func (r *SiteRepo) Get(ctx context.Context, siteId string) (*model.Site, error) {
	keyFunc := func(params ...any) string {
		return consts.SiteCacheKeyPrefix + params[0].(string)
	}
	queryFunc := func(ctx context.Context) (*model.Site, error) {
		var site model.Site
		err := r.Database().WithContext(ctx).
			Where("site_id = ?", siteId).
			First(&site).Error
		if err != nil {
			return nil, err
		}
		return &site, nil
	}
	cq := cache.NewCachedQuery(
		r.ICache,
		keyFunc,
		queryFunc,
		cache.WithTTL[*model.Site](siteCacheTTL),
		cache.WithLogPrefix[*model.Site]("[SiteRepo]"),
	)
	site, err := cq.Get(ctx, siteId)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return site, nil
}

// ListEnabled returns all enabled sites for the daily seeding job.
func (r *SiteRepo) ListEnabled(ctx context.Context) ([]*model.Site, error) {
	var sites []*model.Site
	err := r.Database().WithContext(ctx).
		Where("enabled = ?", 1).
		Order("site_id ASC").
		Find(&sites).Error
	return sites, err
}

// Upsert writes the site row and drops the cache entry.
func (r *SiteRepo) Upsert(ctx context.Context, site *model.Site) error {
	site.UpdatedAt = time.Now()
	if site.CreatedAt.IsZero() {
		site.CreatedAt = site.UpdatedAt
	}
	err := r.Database().WithContext(ctx).
		Where("site_id = ?", site.SiteId).
		Assign(site).
		FirstOrCreate(&model.Site{}).Error
	if err != nil {
		return err
	}
	if r.ICache != nil {
		_ = r.ICache.Del(ctx, consts.SiteCacheKeyPrefix+site.SiteId)
	}
	return nil
}
