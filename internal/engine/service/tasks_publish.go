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

	"github.com/pressline/pressline/internal/engine/model"
	"github.com/pressline/pressline/internal/pkg/publish"
	"github.com/pressline/pressline/pkg/log"
	"github.com/pressline/pressline/pkg/taskqueue"
)

// handlePublishExecute pushes the packaged article to the site's platform.
// The publish-run ledger makes the external call idempotent: a key that
// already published short-circuits without touching the platform again.
func (s *TaskRouterService) handlePublishExecute(ctx context.Context, payload *taskqueue.Payload) (*HandlerResult, error) {
	// Manual reruns must never re-publish to a live platform.
	if s.env == model.SiteEnvProd && payload.RunTag != "" {
		return nil, taskqueue.NonRetryable("publish_runTag_not_allowed")
	}

	prior, err := s.repos.PublishRuns.Get(ctx, payload.IdempotencyKey)
	if err != nil {
		return nil, fmt.Errorf("publish run read: %w", err)
	}
	if prior != nil && prior.Ok == 1 {
		return &HandlerResult{Detail: "already_published"}, nil
	}

	site, err := s.loadSite(ctx, payload.SiteId)
	if err != nil {
		return nil, err
	}
	article, err := s.loadArticle(ctx, payload.ArticleId)
	if err != nil {
		return nil, err
	}
	if article.SiteId != site.SiteId {
		return nil, taskqueue.NonRetryable("article_site_mismatch:" + article.SiteId)
	}
	if article.Status != model.ArticlePackaged && article.Status != model.ArticlePublished {
		return nil, taskqueue.NonRetryable("publish_requires_packaged:" + article.Status)
	}

	if site.Mode == model.SiteModeManual {
		err = s.repos.PublishRuns.Record(ctx, &model.PublishRun{
			IdempotencyKey: payload.IdempotencyKey,
			SiteId:         site.SiteId,
			ArticleId:      article.ArticleId,
			Provider:       site.Platform,
			Ok:             0,
			Note:           "manual_mode",
		})
		if err != nil {
			return nil, fmt.Errorf("publish run record: %w", err)
		}
		return &HandlerResult{FinalState: model.TaskRunSkipped, Detail: "manual_mode"}, nil
	}

	title, html, err := s.packagedArtifacts(ctx, article)
	if err != nil {
		return nil, err
	}

	client, err := s.publishers(site.Platform, site.TistoryAccessToken)
	if err != nil {
		return nil, taskqueue.NonRetryable("publisher_unavailable:" + site.Platform)
	}
	result, err := client.Publish(ctx, publish.Request{
		BlogName: site.TistoryBlogName,
		Title:    title,
		HTML:     html,
	})
	if err != nil {
		return nil, fmt.Errorf("publish %s: %w", site.Platform, err)
	}

	run := &model.PublishRun{
		IdempotencyKey: payload.IdempotencyKey,
		SiteId:         site.SiteId,
		ArticleId:      article.ArticleId,
		Provider:       result.Provider,
		PostId:         result.PostId,
		Note:           result.Note,
	}
	if result.OK {
		run.Ok = 1
	}
	if err := s.repos.PublishRuns.Record(ctx, run); err != nil {
		return nil, fmt.Errorf("publish run record: %w", err)
	}
	if !result.OK {
		return nil, fmt.Errorf("publish rejected by %s: %s", result.Provider, result.Note)
	}

	now := s.now()
	err = s.repos.Articles.Update(ctx, article.ArticleId, map[string]any{
		"status":         model.ArticlePublished,
		"publish_result": toJSON(result),
		"published_at":   &now,
	})
	if err != nil {
		return nil, fmt.Errorf("article update: %w", err)
	}
	log.Infow("article published",
		"siteId", site.SiteId, "articleId", article.ArticleId,
		"provider", result.Provider, "postId", result.PostId)
	return nil, nil
}

// packagedArtifacts reads title.txt and post.html from the object store,
// falling back to the article row when a read fails. Both missing is a
// packaging defect, not a transient error.
func (s *TaskRouterService) packagedArtifacts(ctx context.Context, article *model.Article) (string, string, error) {
	title, html := article.TitleFinal, article.HTML
	if article.PackagePath != "" {
		if raw, err := s.storage.Get(ctx, article.PackagePath+"/title.txt"); err == nil && len(raw) > 0 {
			title = string(raw)
		}
		if raw, err := s.storage.Get(ctx, article.PackagePath+"/post.html"); err == nil && len(raw) > 0 {
			html = string(raw)
		}
	}
	if title == "" || html == "" {
		return "", "", taskqueue.NonRetryable("missing_title_or_html")
	}
	return title, html, nil
}
