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

	"github.com/pressline/pressline/internal/engine/model"
	"github.com/pressline/pressline/pkg/database"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// IKeywordRepository manages keyword candidates and selection.
type IKeywordRepository interface {
	Get(ctx context.Context, keywordId string) (*model.Keyword, error)
	BulkUpsert(ctx context.Context, keywords []*model.Keyword) (inserted int64, err error)
	ListCandidates(ctx context.Context, siteId, runDate string) ([]*model.Keyword, error)
	Update(ctx context.Context, keywordId string, updates map[string]any) error
}

type KeywordRepo struct {
	database.IDatabase
}

func NewKeywordRepo(db database.IDatabase) IKeywordRepository {
	return &KeywordRepo{IDatabase: db}
}

// Get returns the keyword by id, nil when unknown.
func (r *KeywordRepo) Get(ctx context.Context, keywordId string) (*model.Keyword, error) {
	var kw model.Keyword
	err := r.Database().WithContext(ctx).
		Where("keyword_id = ?", keywordId).
		First(&kw).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &kw, nil
}

// BulkUpsert inserts candidates, silently skipping ids already present so a
// redelivered collect run cannot duplicate rows.
func (r *KeywordRepo) BulkUpsert(ctx context.Context, keywords []*model.Keyword) (int64, error) {
	if len(keywords) == 0 {
		return 0, nil
	}
	now := time.Now()
	for _, kw := range keywords {
		if kw.CreatedAt.IsZero() {
			kw.CreatedAt = now
		}
		kw.UpdatedAt = now
	}
	tx := r.Database().WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "keyword_id"}},
			DoNothing: true,
		}).
		Create(&keywords)
	return tx.RowsAffected, tx.Error
}

// ListCandidates returns the unconsumed candidates for a site and day.
func (r *KeywordRepo) ListCandidates(ctx context.Context, siteId, runDate string) ([]*model.Keyword, error) {
	var keywords []*model.Keyword
	err := r.Database().WithContext(ctx).
		Where("site_id = ? AND run_date = ? AND status = ?", siteId, runDate, model.KeywordCandidate).
		Order("keyword_id ASC").
		Find(&keywords).Error
	return keywords, err
}

// Update applies column updates to one keyword.
func (r *KeywordRepo) Update(ctx context.Context, keywordId string, updates map[string]any) error {
	updates["updated_at"] = time.Now()
	return r.Database().WithContext(ctx).
		Model(&model.Keyword{}).
		Where("keyword_id = ?", keywordId).
		Updates(updates).Error
}
