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
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/pressline/pressline/internal/engine/model"
	"github.com/pressline/pressline/pkg/log"
	"github.com/pressline/pressline/pkg/taskqueue"
)

// packageMeta is the meta.json artifact written next to the post body.
type packageMeta struct {
	ArticleId  string   `json:"articleId"`
	SiteId     string   `json:"siteId"`
	RunDate    string   `json:"runDate"`
	Keyword    string   `json:"keyword"`
	Intent     string   `json:"intent"`
	TitleFinal string   `json:"titleFinal"`
	Hashtags12 []string `json:"hashtags12"`
	Images     any      `json:"images,omitempty"`
	TopCard    any      `json:"topCard,omitempty"`
	Qa         any      `json:"qa,omitempty"`
	Moderation any      `json:"moderation"`
	PackagedAt string   `json:"packagedAt"`
}

// handleArticlePackage moderates the final body, writes the publishable
// artifact set to the object store and, in scheduled mode, hands off to
// publish_execute at the next allowed window.
func (s *TaskRouterService) handleArticlePackage(ctx context.Context, payload *taskqueue.Payload) (*HandlerResult, error) {
	site, err := s.loadSite(ctx, payload.SiteId)
	if err != nil {
		return nil, err
	}
	article, err := s.loadArticle(ctx, payload.ArticleId)
	if err != nil {
		return nil, err
	}
	settings, err := s.repos.Settings.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("settings read: %w", err)
	}

	summary, err := s.moderator.Moderate(ctx, article.TitleFinal+"\n"+article.HTML)
	if err != nil {
		return nil, fmt.Errorf("moderation: %w", err)
	}
	if summary.Blocked {
		err = s.repos.Articles.Update(ctx, article.ArticleId, map[string]any{
			"status":     model.ArticleModerationBlocked,
			"moderation": toJSON(summary),
		})
		if err != nil {
			return nil, fmt.Errorf("article update: %w", err)
		}
		log.Warnw("moderation blocked article",
			"articleId", article.ArticleId, "categories", summary.Categories)
		return nil, taskqueue.NonRetryable("moderation_blocked")
	}

	base := fmt.Sprintf("sites/%s/articles/%s/package", article.SiteId, article.ArticleId)
	meta := packageMeta{
		ArticleId:  article.ArticleId,
		SiteId:     article.SiteId,
		RunDate:    article.RunDate,
		Keyword:    article.Keyword,
		Intent:     article.Intent,
		TitleFinal: article.TitleFinal,
		Hashtags12: stringList(article.Hashtags12),
		Images:     fromJSON[[]model.ArticleImage](article.Images),
		TopCard:    fromJSON[map[string]any](article.TopCard),
		Qa:         fromJSON[map[string]any](article.Qa),
		Moderation: summary,
		PackagedAt: s.now().UTC().Format(time.RFC3339),
	}
	metaRaw, err := sonic.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("meta marshal: %w", err)
	}

	artifacts := []struct {
		name        string
		data        []byte
		contentType string
	}{
		{"title.txt", []byte(article.TitleFinal), "text/plain; charset=utf-8"},
		{"post.html", []byte(article.HTML), "text/html; charset=utf-8"},
		{"meta.json", metaRaw, "application/json"},
	}
	for _, a := range artifacts {
		if _, err := s.storage.Put(ctx, base+"/"+a.name, a.data, a.contentType); err != nil {
			return nil, fmt.Errorf("artifact store %s: %w", a.name, err)
		}
	}

	err = s.repos.Articles.Update(ctx, article.ArticleId, map[string]any{
		"status":       model.ArticlePackaged,
		"package_path": base,
		"moderation":   toJSON(summary),
	})
	if err != nil {
		return nil, fmt.Errorf("article update: %w", err)
	}

	publishMode := site.PublishMode
	if publishMode == "" {
		publishMode = settings.Pipeline.PublishDefault
	}
	if payload.OpsSmoke || publishMode != "scheduled" {
		return nil, nil
	}

	scheduledAt, delaySec, err := s.nextPublishSlot(ctx, site, settings.Pipeline.PublishMinIntervalMin)
	if err != nil {
		return nil, err
	}
	next := payload.Successor(taskqueue.TaskPublishExecute, taskqueue.Key(taskqueue.KeyParts{
		TaskType: taskqueue.TaskPublishExecute,
		SiteId:   payload.SiteId,
		RunDate:  payload.RunDate,
		EntityId: article.ArticleId,
		RunTag:   payload.CleanRunTag(),
	}))
	next.ArticleId = article.ArticleId
	next.ScheduledAt = scheduledAt.UTC().Format(time.RFC3339)
	if err := s.enqueueSuccessor(ctx, next, delaySec, true); err != nil {
		return nil, fmt.Errorf("enqueue publish_execute: %w", err)
	}
	return nil, nil
}

// nextPublishSlot pushes the publish past the per-site minimum interval
// measured from the site's last published article.
func (s *TaskRouterService) nextPublishSlot(ctx context.Context, site *model.Site, minIntervalMin int) (time.Time, int, error) {
	now := s.now()
	last, err := s.repos.Articles.LastPublishedAt(ctx, site.SiteId)
	if err != nil {
		return time.Time{}, 0, fmt.Errorf("last published read: %w", err)
	}
	at := now
	if last != nil && minIntervalMin > 0 {
		if earliest := last.Add(time.Duration(minIntervalMin) * time.Minute); earliest.After(at) {
			at = earliest
		}
	}
	return at, int(at.Sub(now) / time.Second), nil
}
