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
	"github.com/pressline/pressline/internal/pkg/content"
	"github.com/pressline/pressline/pkg/log"
	"github.com/pressline/pressline/pkg/taskqueue"
)

// handleArticleQa runs the rule checks over the drafted body. A passing
// article fans out to topcard_render, image_generate and article_package;
// a failing one enters the bounded fix loop.
func (s *TaskRouterService) handleArticleQa(ctx context.Context, payload *taskqueue.Payload) (*HandlerResult, error) {
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

	result := content.RunQaRules(content.QaArgs{
		HTML:        article.HTML,
		Hashtags12:  stringList(article.Hashtags12),
		BannedWords: stringList(site.BanWords),
	})

	if result.Pass {
		err = s.repos.Articles.Update(ctx, article.ArticleId, map[string]any{
			"status": model.ArticleReady,
			"qa":     toJSON(result),
		})
		if err != nil {
			return nil, fmt.Errorf("article update: %w", err)
		}
		return nil, s.fanOutAfterQaPass(ctx, payload, article)
	}

	log.Infow("qa failed", "articleId", article.ArticleId, "issues", result.Issues)
	err = s.repos.Articles.Update(ctx, article.ArticleId, map[string]any{
		"status": model.ArticleQaFailed,
		"qa":     toJSON(result),
	})
	if err != nil {
		return nil, fmt.Errorf("article update: %w", err)
	}

	if article.QaFixCount < settings.Caps.QaFixMax {
		attempt := article.QaFixCount + 1
		next := payload.Successor(taskqueue.TaskArticleQAFix, taskqueue.Key(taskqueue.KeyParts{
			TaskType: taskqueue.TaskArticleQAFix,
			SiteId:   payload.SiteId,
			RunDate:  payload.RunDate,
			EntityId: article.ArticleId,
			Attempt:  attempt,
			RunTag:   payload.CleanRunTag(),
		}))
		next.QaFixAttempt = attempt
		if err := s.enqueueSuccessor(ctx, next, 0, true); err != nil {
			return nil, fmt.Errorf("enqueue article_qa_fix: %w", err)
		}
	}

	// Stock photos can be fetched in parallel with the fix loop when the
	// operator has not restricted images to QA-passed articles.
	if !settings.Caps.GenerateImagesOnlyOnQaPass {
		if err := s.enqueueStage(ctx, payload, taskqueue.TaskImageGenerate, article.ArticleId); err != nil {
			return nil, err
		}
	}
	return &HandlerResult{FinalState: model.TaskRunSucceeded, Detail: "qa_failed_fix_scheduled"}, nil
}

// handleArticleQaFix applies one mechanical repair pass and re-queues QA.
// The fix budget bounds the qa -> fix -> qa loop.
func (s *TaskRouterService) handleArticleQaFix(ctx context.Context, payload *taskqueue.Payload) (*HandlerResult, error) {
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

	// Redelivery after a successful fix: the body already passes, nothing
	// to repair.
	current := content.RunQaRules(content.QaArgs{
		HTML:        article.HTML,
		Hashtags12:  stringList(article.Hashtags12),
		BannedWords: stringList(site.BanWords),
	})
	if current.Pass {
		err = s.repos.Articles.Update(ctx, article.ArticleId, map[string]any{
			"status": model.ArticleReady,
			"qa":     toJSON(current),
		})
		if err != nil {
			return nil, fmt.Errorf("article update: %w", err)
		}
		return &HandlerResult{Detail: "already_passing"}, s.fanOutAfterQaPass(ctx, payload, article)
	}

	if article.QaFixCount >= settings.Caps.QaFixMax {
		return &HandlerResult{FinalState: model.TaskRunSkipped, Detail: "qa_fix_cap_reached"}, nil
	}
	usage := fromJSON[model.LlmUsageDoc](article.LlmUsage)
	if usage.QaFixCalls >= settings.Caps.QaFixMax {
		return &HandlerResult{FinalState: model.TaskRunSkipped, Detail: "llm_budget_exhausted"}, nil
	}

	fixed := content.FixHTMLWithQaIssues(content.FixArgs{
		HTML:        article.HTML,
		Issues:      current.Issues,
		Keyword:     article.Keyword,
		BannedWords: stringList(site.BanWords),
	})
	usage.QaFixCalls++
	newCount := article.QaFixCount + 1

	err = s.repos.Articles.Update(ctx, article.ArticleId, map[string]any{
		"status":       model.ArticleGenerating,
		"html":         fixed,
		"qa_fix_count": newCount,
		"llm_usage":    toJSON(usage),
	})
	if err != nil {
		return nil, fmt.Errorf("article update: %w", err)
	}

	// The attempt segment keeps the re-check key distinct from the qa run
	// that already succeeded on the ledger.
	next := payload.Successor(taskqueue.TaskArticleQA, taskqueue.Key(taskqueue.KeyParts{
		TaskType: taskqueue.TaskArticleQA,
		SiteId:   payload.SiteId,
		RunDate:  payload.RunDate,
		EntityId: article.ArticleId,
		Attempt:  newCount,
		RunTag:   payload.CleanRunTag(),
	}))
	if err := s.enqueueSuccessor(ctx, next, 0, true); err != nil {
		return nil, fmt.Errorf("enqueue article_qa: %w", err)
	}
	return nil, nil
}

// fanOutAfterQaPass enqueues the three post-QA stages. Dedup on the queue
// keeps redelivered passes from double-rendering.
func (s *TaskRouterService) fanOutAfterQaPass(ctx context.Context, payload *taskqueue.Payload, article *model.Article) error {
	for _, kind := range []string{taskqueue.TaskTopcardRender, taskqueue.TaskImageGenerate, taskqueue.TaskArticlePackage} {
		if err := s.enqueueStage(ctx, payload, kind, article.ArticleId); err != nil {
			return err
		}
	}
	return nil
}

func (s *TaskRouterService) enqueueStage(ctx context.Context, payload *taskqueue.Payload, kind, articleId string) error {
	next := payload.Successor(kind, taskqueue.Key(taskqueue.KeyParts{
		TaskType: kind,
		SiteId:   payload.SiteId,
		RunDate:  payload.RunDate,
		EntityId: articleId,
		RunTag:   payload.CleanRunTag(),
	}))
	next.ArticleId = articleId
	if err := s.enqueueSuccessor(ctx, next, 0, true); err != nil {
		return fmt.Errorf("enqueue %s: %w", kind, err)
	}
	return nil
}
