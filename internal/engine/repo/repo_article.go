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
	"github.com/pressline/pressline/internal/engine/model"
	"github.com/pressline/pressline/pkg/database"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// IArticleRepository manages article rows and their pipeline timeline.
type IArticleRepository interface {
	Get(ctx context.Context, articleId string) (*model.Article, error)
	CreateIfAbsent(ctx context.Context, article *model.Article) error
	Update(ctx context.Context, articleId string, updates map[string]any) error
	AppendTimeline(ctx context.Context, articleId string, event model.TimelineEvent) error
	RecentTitles(ctx context.Context, siteId string, limit int) ([]string, error)
	ListLinkSources(ctx context.Context, siteId string, limit int) ([]*model.Article, error)
	LastPublishedAt(ctx context.Context, siteId string) (*time.Time, error)
}

type ArticleRepo struct {
	database.IDatabase
}

func NewArticleRepo(db database.IDatabase) IArticleRepository {
	return &ArticleRepo{IDatabase: db}
}

// Get returns the article by id, nil when unknown.
func (r *ArticleRepo) Get(ctx context.Context, articleId string) (*model.Article, error) {
	var article model.Article
	err := r.Database().WithContext(ctx).
		Where("article_id = ?", articleId).
		First(&article).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &article, nil
}

// CreateIfAbsent inserts the article unless the id already exists. Article
// ids are derived deterministically from the task key, so redelivery lands
// on the existing row.
func (r *ArticleRepo) CreateIfAbsent(ctx context.Context, article *model.Article) error {
	now := time.Now()
	if article.CreatedAt.IsZero() {
		article.CreatedAt = now
	}
	article.UpdatedAt = now
	return r.Database().WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "article_id"}},
			DoNothing: true,
		}).
		Create(article).Error
}

// Update applies column updates to one article.
func (r *ArticleRepo) Update(ctx context.Context, articleId string, updates map[string]any) error {
	updates["updated_at"] = time.Now()
	return r.Database().WithContext(ctx).
		Model(&model.Article{}).
		Where("article_id = ?", articleId).
		Updates(updates).Error
}

// AppendTimeline adds one event to the article's pipeline history and mirrors
// it on the last-task columns. Best effort: a missing article is not an
// error, the ledger row is the authoritative record.
func (r *ArticleRepo) AppendTimeline(ctx context.Context, articleId string, event model.TimelineEvent) error {
	if event.At == "" {
		event.At = time.Now().UTC().Format(time.RFC3339)
	}
	return r.Database().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var article model.Article
		err := tx.Select("id", "article_id", "pipeline_history").
			Where("article_id = ?", articleId).
			First(&article).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}

		var history []model.TimelineEvent
		if len(article.PipelineHistory) > 0 {
			if uerr := sonic.Unmarshal(article.PipelineHistory, &history); uerr != nil {
				history = nil
			}
		}
		history = append(history, event)
		raw, err := sonic.Marshal(history)
		if err != nil {
			return err
		}

		return tx.Model(&model.Article{}).
			Where("article_id = ?", articleId).
			Updates(map[string]any{
				"pipeline_history":     datatypes.JSON(raw),
				"pipeline_last_task":   event.TaskType,
				"pipeline_last_status": event.Status,
				"pipeline_last_state":  event.State,
				"updated_at":           time.Now(),
			}).Error
	})
}

// RecentTitles returns the newest final titles for similarity scoring.
func (r *ArticleRepo) RecentTitles(ctx context.Context, siteId string, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 60
	}
	var titles []string
	err := r.Database().WithContext(ctx).
		Model(&model.Article{}).
		Where("site_id = ? AND title_final <> ''", siteId).
		Order("id DESC").
		Limit(limit).
		Pluck("title_final", &titles).Error
	return titles, err
}

// ListLinkSources returns recent published/packaged articles usable as
// internal link candidates.
func (r *ArticleRepo) ListLinkSources(ctx context.Context, siteId string, limit int) ([]*model.Article, error) {
	if limit <= 0 {
		limit = 50
	}
	var articles []*model.Article
	err := r.Database().WithContext(ctx).
		Select("article_id", "title_final", "cluster_id", "hashtags12", "created_at").
		Where("site_id = ? AND status IN ?", siteId, []string{model.ArticlePackaged, model.ArticlePublished}).
		Order("id DESC").
		Limit(limit).
		Find(&articles).Error
	return articles, err
}

// LastPublishedAt returns the newest publish time for the site, nil when the
// site has never published.
func (r *ArticleRepo) LastPublishedAt(ctx context.Context, siteId string) (*time.Time, error) {
	var article model.Article
	err := r.Database().WithContext(ctx).
		Select("published_at").
		Where("site_id = ? AND published_at IS NOT NULL", siteId).
		Order("published_at DESC").
		First(&article).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return article.PublishedAt, nil
}
