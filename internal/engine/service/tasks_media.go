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
	"sort"
	"strings"

	"github.com/pressline/pressline/internal/engine/model"
	"github.com/pressline/pressline/internal/pkg/content"
	"github.com/pressline/pressline/pkg/log"
	"github.com/pressline/pressline/pkg/taskqueue"
)

const topCardTemplateId = "gold_v1"

// handleTopcardRender renders the 1200x630 top card from the article's
// keyword sets and stores it next to the article's other assets.
func (s *TaskRouterService) handleTopcardRender(ctx context.Context, payload *taskqueue.Payload) (*HandlerResult, error) {
	article, err := s.loadArticle(ctx, payload.ArticleId)
	if err != nil {
		return nil, err
	}
	if len(article.K12) == 0 || article.Intent == "" {
		return nil, taskqueue.NonRetryable("topcard_requires_k12_and_intent")
	}

	k12 := fromJSON[content.K12](article.K12)
	points := content.BuildTopCardPoints(k12, content.Intent(article.Intent))
	titleShort := shortTitle(article.TitleFinal, 18)

	png := content.RenderTopCardPNG(content.TopCardInput{
		TitleShort:  titleShort,
		LabelsShort: points.LabelsShort[:],
	})
	path := fmt.Sprintf("sites/%s/articles/%s/top.png", article.SiteId, article.ArticleId)
	if _, err := s.storage.Put(ctx, path, png, "image/png"); err != nil {
		return nil, fmt.Errorf("top card store: %w", err)
	}

	images := mergeImages(fromJSON[[]model.ArticleImage](article.Images), []model.ArticleImage{{
		Slot:        "top",
		Kind:        "topcard",
		StoragePath: path,
		Alt:         titleShort,
	}})
	err = s.repos.Articles.Update(ctx, article.ArticleId, map[string]any{
		"top_card": toJSON(map[string]any{
			"templateId":  topCardTemplateId,
			"titleShort":  titleShort,
			"points":      points.Points,
			"labelsShort": points.LabelsShort,
			"iconKeys":    points.IconKeys,
			"storagePath": path,
		}),
		"images": toJSON(images),
	})
	if err != nil {
		return nil, fmt.Errorf("article update: %w", err)
	}
	return nil, nil
}

// handleImageGenerate fills the image plan slot by slot: infographics are
// rendered locally, photo slots go through the stock search when external
// fetch is enabled and fall back to an infographic otherwise.
func (s *TaskRouterService) handleImageGenerate(ctx context.Context, payload *taskqueue.Payload) (*HandlerResult, error) {
	article, err := s.loadArticle(ctx, payload.ArticleId)
	if err != nil {
		return nil, err
	}
	plan := fromJSON[content.ImagePlan](article.ImagePlan)
	if len(plan) == 0 {
		return &HandlerResult{FinalState: model.TaskRunSkipped, Detail: "no_image_plan"}, nil
	}
	k12 := fromJSON[content.K12](article.K12)

	slots := make([]string, 0, len(plan))
	for slot := range plan {
		slots = append(slots, slot)
	}
	sort.Strings(slots)

	updates := make([]model.ArticleImage, 0, len(slots))
	for _, slot := range slots {
		spec := plan[slot]
		img, err := s.fillImageSlot(ctx, article, slot, spec, k12)
		if err != nil {
			return nil, err
		}
		updates = append(updates, img)
	}

	images := mergeImages(fromJSON[[]model.ArticleImage](article.Images), updates)
	err = s.repos.Articles.Update(ctx, article.ArticleId, map[string]any{
		"images": toJSON(images),
	})
	if err != nil {
		return nil, fmt.Errorf("article update: %w", err)
	}
	return nil, nil
}

func (s *TaskRouterService) fillImageSlot(ctx context.Context, article *model.Article, slot string, spec content.ImageSlot, k12 content.K12) (model.ArticleImage, error) {
	if spec.Kind == content.ImgPhoto && s.fetchExternalImages {
		found, err := s.imageSearch.Search(article.Keyword, 3)
		if err != nil {
			log.Warnw("image search failed, rendering infographic instead",
				"articleId", article.ArticleId, "slot", slot, "error", err)
		} else if len(found) > 0 {
			pick := found[0]
			return model.ArticleImage{
				Slot:       slot,
				Kind:       string(content.ImgPhoto),
				SourceURL:  pick.ImageURL,
				PageURL:    pick.PageURL,
				Author:     pick.Author,
				LicenseURL: pick.LicenseURL,
				Alt:        article.Keyword,
			}, nil
		}
	}

	infoType := spec.InfoType
	if infoType == "" {
		infoType = content.InfoChecklist
	}
	png := content.RenderInfographicPNG(content.InfographicInput{
		Title:    article.TitleFinal,
		InfoType: infoType,
		Labels:   append(k12.Main[:], k12.Longtail...),
	})
	path := fmt.Sprintf("sites/%s/articles/%s/%s.png", article.SiteId, article.ArticleId, slot)
	if _, err := s.storage.Put(ctx, path, png, "image/png"); err != nil {
		return model.ArticleImage{}, fmt.Errorf("infographic store %s: %w", slot, err)
	}
	return model.ArticleImage{
		Slot:        slot,
		Kind:        string(content.ImgInfographic),
		StoragePath: path,
		Alt:         article.Keyword,
	}, nil
}

// shortTitle collapses whitespace and truncates to max runes.
func shortTitle(title string, max int) string {
	collapsed := strings.Join(strings.Fields(title), " ")
	runes := []rune(collapsed)
	if len(runes) <= max {
		return collapsed
	}
	return string(runes[:max])
}
