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

package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/pressline/pressline/internal/engine/model"
	"github.com/pressline/pressline/internal/pkg/content"
	"github.com/pressline/pressline/pkg/taskqueue"
	"gorm.io/datatypes"
)

// loadSite resolves the payload's site. An unknown site is permanent: no
// retry can make a config row appear.
func (s *TaskRouterService) loadSite(ctx context.Context, siteId string) (*model.Site, error) {
	site, err := s.repos.Sites.Get(ctx, siteId)
	if err != nil {
		return nil, fmt.Errorf("site read %s: %w", siteId, err)
	}
	if site == nil {
		return nil, taskqueue.NonRetryable("site_not_found:" + siteId)
	}
	return site, nil
}

// loadArticle resolves the payload's article, permanent-failing on absence.
func (s *TaskRouterService) loadArticle(ctx context.Context, articleId string) (*model.Article, error) {
	article, err := s.repos.Articles.Get(ctx, articleId)
	if err != nil {
		return nil, fmt.Errorf("article read %s: %w", articleId, err)
	}
	if article == nil {
		return nil, taskqueue.NonRetryable("article_not_found:" + articleId)
	}
	return article, nil
}

// deriveId builds a deterministic entity id from the task's idempotency key,
// so a redelivered create lands on the same row.
func deriveId(prefix, seed string) string {
	sum := sha256.Sum256([]byte(seed))
	return prefix + "_" + hex.EncodeToString(sum[:8])
}

// toJSON marshals v into a gorm JSON column value.
func toJSON(v any) datatypes.JSON {
	raw, err := sonic.Marshal(v)
	if err != nil {
		return nil
	}
	return datatypes.JSON(raw)
}

// fromJSON unmarshals a JSON column into out; absent columns leave out as
// the zero value.
func fromJSON[T any](raw datatypes.JSON) T {
	var out T
	if len(raw) > 0 {
		_ = sonic.Unmarshal(raw, &out)
	}
	return out
}

// stringList decodes a JSON string array column.
func stringList(raw datatypes.JSON) []string {
	return fromJSON[[]string](raw)
}

// buildHashtags12 derives the fixed twelve-tag set from the k12 keyword
// groups: two mains, five longtails, five inflows.
func buildHashtags12(k12 content.K12) []string {
	tags := make([]string, 0, 12)
	add := func(words []string, n int) {
		for i := 0; i < n && i < len(words); i++ {
			tag := "#" + strings.ReplaceAll(strings.TrimSpace(words[i]), " ", "")
			tags = append(tags, tag)
		}
	}
	add(k12.Main[:], 2)
	add(k12.Longtail, 5)
	add(k12.Inflow, 5)
	for len(tags) < 12 {
		tags = append(tags, fmt.Sprintf("#tag%d", len(tags)+1))
	}
	return tags[:12]
}

// mergeImages replaces entries for the given slots and preserves everything
// else already on the article, so concurrent writers of other slots are not
// clobbered.
func mergeImages(existing []model.ArticleImage, updates []model.ArticleImage) []model.ArticleImage {
	updated := make(map[string]model.ArticleImage, len(updates))
	for _, img := range updates {
		updated[img.Slot] = img
	}
	out := make([]model.ArticleImage, 0, len(existing)+len(updates))
	for _, img := range existing {
		if replacement, ok := updated[img.Slot]; ok {
			out = append(out, replacement)
			delete(updated, img.Slot)
			continue
		}
		out = append(out, img)
	}
	for _, img := range updates {
		if _, pending := updated[img.Slot]; pending {
			out = append(out, img)
			delete(updated, img.Slot)
		}
	}
	return out
}

// articleIntent returns the stored intent, falling back to detection.
func articleIntent(article *model.Article) content.Intent {
	if article.Intent != "" {
		return content.Intent(article.Intent)
	}
	return content.DetectIntent(article.Keyword)
}
