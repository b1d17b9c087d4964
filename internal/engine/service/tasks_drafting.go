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
	"strings"

	"github.com/pressline/pressline/internal/engine/model"
	"github.com/pressline/pressline/internal/pkg/content"
	"github.com/pressline/pressline/pkg/log"
	"github.com/pressline/pressline/pkg/taskqueue"
)

// handleTitleGenerate picks the least-similar templated title for the
// selected keyword, creates the article row and hands it to body_generate.
func (s *TaskRouterService) handleTitleGenerate(ctx context.Context, payload *taskqueue.Payload) (*HandlerResult, error) {
	kw, err := s.repos.Keywords.Get(ctx, payload.KeywordId)
	if err != nil {
		return nil, fmt.Errorf("keyword read: %w", err)
	}
	if kw == nil {
		return nil, taskqueue.NonRetryable("keyword_not_found:" + payload.KeywordId)
	}

	candidates := content.BuildTitleCandidates(kw.Text)
	oldTitles, err := s.repos.Articles.RecentTitles(ctx, payload.SiteId, 60)
	if err != nil {
		return nil, fmt.Errorf("recent titles: %w", err)
	}
	picked, similarity := content.PickTitle(candidates, oldTitles)

	articleId := deriveId("art", payload.IdempotencyKey)
	article := &model.Article{
		ArticleId:  articleId,
		SiteId:     payload.SiteId,
		KeywordId:  kw.KeywordId,
		RunDate:    payload.RunDate,
		Status:     model.ArticleQueued,
		Keyword:    kw.Text,
		ClusterId:  kw.ClusterId,
		Intent:     string(content.DetectIntent(kw.Text)),
		TitleFinal: picked,
		Titles:     toJSON(candidates),
		LlmUsage:   toJSON(model.LlmUsageDoc{TitleCalls: 1}),
	}
	if err := s.repos.Articles.CreateIfAbsent(ctx, article); err != nil {
		return nil, fmt.Errorf("article create: %w", err)
	}
	log.Infow("title picked",
		"siteId", payload.SiteId, "articleId", articleId,
		"title", picked, "similarity", similarity)

	next := payload.Successor(taskqueue.TaskBodyGenerate, taskqueue.Key(taskqueue.KeyParts{
		TaskType: taskqueue.TaskBodyGenerate,
		SiteId:   payload.SiteId,
		EntityId: articleId,
		RunTag:   payload.CleanRunTag(),
	}))
	next.ArticleId = articleId
	if err := s.enqueueSuccessor(ctx, next, 0, true); err != nil {
		return nil, fmt.Errorf("enqueue body_generate: %w", err)
	}
	return nil, nil
}

// handleArticleGenerate is the one-shot path: title, keyword sets, image
// plan and body in a single pass, straight to QA.
func (s *TaskRouterService) handleArticleGenerate(ctx context.Context, payload *taskqueue.Payload) (*HandlerResult, error) {
	site, err := s.loadSite(ctx, payload.SiteId)
	if err != nil {
		return nil, err
	}
	kw, err := s.repos.Keywords.Get(ctx, payload.KeywordId)
	if err != nil {
		return nil, fmt.Errorf("keyword read: %w", err)
	}
	if kw == nil {
		return nil, taskqueue.NonRetryable("keyword_not_found:" + payload.KeywordId)
	}

	candidates := content.BuildTitleCandidates(kw.Text)
	oldTitles, err := s.repos.Articles.RecentTitles(ctx, payload.SiteId, 60)
	if err != nil {
		return nil, fmt.Errorf("recent titles: %w", err)
	}
	picked, _ := content.PickTitle(candidates, oldTitles)

	intent := content.DetectIntent(kw.Text)
	k12 := content.DefaultK12(kw.Text)
	html := s.composeBody(ctx, site, picked, kw.Text, k12)

	articleId := deriveId("art", payload.IdempotencyKey)
	article := &model.Article{
		ArticleId:  articleId,
		SiteId:     payload.SiteId,
		KeywordId:  kw.KeywordId,
		RunDate:    payload.RunDate,
		Status:     model.ArticleGenerating,
		Keyword:    kw.Text,
		ClusterId:  kw.ClusterId,
		Intent:     string(intent),
		TitleFinal: picked,
		Titles:     toJSON(candidates),
		HTML:       html,
		K12:        toJSON(k12),
		Hashtags12: toJSON(buildHashtags12(k12)),
		ImagePlan:  toJSON(content.BuildImagePlan(intent)),
		TopCard:    toJSON(content.BuildTopCardPoints(k12, intent)),
		LlmUsage:   toJSON(model.LlmUsageDoc{TitleCalls: 1, BodyCalls: 1}),
	}
	if err := s.repos.Articles.CreateIfAbsent(ctx, article); err != nil {
		return nil, fmt.Errorf("article create: %w", err)
	}

	next := payload.Successor(taskqueue.TaskArticleQA, taskqueue.Key(taskqueue.KeyParts{
		TaskType: taskqueue.TaskArticleQA,
		SiteId:   payload.SiteId,
		EntityId: articleId,
		RunTag:   payload.CleanRunTag(),
	}))
	next.ArticleId = articleId
	if err := s.enqueueSuccessor(ctx, next, 0, true); err != nil {
		return nil, fmt.Errorf("enqueue article_qa: %w", err)
	}
	return nil, nil
}

// handleBodyGenerate drafts the structured body plus the derived keyword
// sets, image plan, top-card draft and hashtags, then hands to QA.
func (s *TaskRouterService) handleBodyGenerate(ctx context.Context, payload *taskqueue.Payload) (*HandlerResult, error) {
	site, err := s.loadSite(ctx, payload.SiteId)
	if err != nil {
		return nil, err
	}
	article, err := s.loadArticle(ctx, payload.ArticleId)
	if err != nil {
		return nil, err
	}

	intent := articleIntent(article)
	k12 := content.DefaultK12(article.Keyword)
	html := s.composeBody(ctx, site, article.TitleFinal, article.Keyword, k12)

	usage := fromJSON[model.LlmUsageDoc](article.LlmUsage)
	usage.BodyCalls++

	err = s.repos.Articles.Update(ctx, article.ArticleId, map[string]any{
		"status":     model.ArticleGenerating,
		"html":       html,
		"k12":        toJSON(k12),
		"intent":     string(intent),
		"hashtags12": toJSON(buildHashtags12(k12)),
		"image_plan": toJSON(content.BuildImagePlan(intent)),
		"top_card":   toJSON(content.BuildTopCardPoints(k12, intent)),
		"llm_usage":  toJSON(usage),
	})
	if err != nil {
		return nil, fmt.Errorf("article update: %w", err)
	}

	next := payload.Successor(taskqueue.TaskArticleQA, taskqueue.Key(taskqueue.KeyParts{
		TaskType: taskqueue.TaskArticleQA,
		SiteId:   payload.SiteId,
		EntityId: article.ArticleId,
		RunTag:   payload.CleanRunTag(),
	}))
	if err := s.enqueueSuccessor(ctx, next, 0, true); err != nil {
		return nil, fmt.Errorf("enqueue article_qa: %w", err)
	}
	return nil, nil
}

// composeBody builds the article HTML and appends the internal link block
// when the site has linkable history.
func (s *TaskRouterService) composeBody(ctx context.Context, site *model.Site, title, keyword string, k12 content.K12) string {
	html := content.BuildArticleHTML(title, keyword)

	sources, err := s.repos.Articles.ListLinkSources(ctx, site.SiteId, 50)
	if err != nil {
		log.Warnw("link source list failed", "siteId", site.SiteId, "error", err)
		return html
	}
	candidates := make([]content.LinkCandidate, 0, len(sources))
	for _, src := range sources {
		candidates = append(candidates, content.LinkCandidate{
			ArticleId:   src.ArticleId,
			TitleFinal:  src.TitleFinal,
			PackagePath: src.PackagePath,
			ClusterId:   src.ClusterId,
			Hashtags12:  stringList(src.Hashtags12),
			CreatedAt:   src.CreatedAt,
		})
	}
	links := content.PickInternalLinks(content.LinkSelf{
		ClusterId:  "",
		Hashtags12: buildHashtags12(k12),
	}, candidates, 4)
	if len(links) == 0 {
		return html
	}

	var b strings.Builder
	b.WriteString(html)
	b.WriteString("\n<h3>함께 보면 좋은 글</h3>\n<ul>\n")
	for _, link := range links {
		fmt.Fprintf(&b, "  <li><a href=\"/articles/%s\">%s</a></li>\n", link.ArticleId, link.Title)
	}
	b.WriteString("</ul>\n")
	return b.String()
}
