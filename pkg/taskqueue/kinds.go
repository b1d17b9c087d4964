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

// Package taskqueue defines the task kinds, payload envelope, queue lanes
// and idempotency key grammar shared by the router, queue adapters and
// handlers.
package taskqueue

// Task kinds routed by the engine. Every enqueued payload carries exactly
// one of these in TaskType.
const (
	TaskKwCollect           = "kw_collect"
	TaskKwScore             = "kw_score"
	TaskTitleGenerate       = "title_generate"
	TaskBodyGenerate        = "body_generate"
	TaskArticleQA           = "article_qa"
	TaskArticleQAFix        = "article_qa_fix"
	TaskTopcardRender       = "topcard_render"
	TaskImageGenerate       = "image_generate"
	TaskArticlePackage      = "article_package"
	TaskPublishExecute      = "publish_execute"
	TaskArticleGenerate     = "article_generate"
	TaskAnalyzerDaily       = "analyzer_daily"
	TaskAdvisorWeeklyGlobal = "advisor_weekly_global"
)

// Lane selects the queue a task is dispatched on. Heavy lanes carry the
// long-running model calls so they cannot starve the light control tasks.
type Lane string

const (
	LaneLight Lane = "light"
	LaneHeavy Lane = "heavy"
)

var kindLanes = map[string]Lane{
	TaskKwCollect:           LaneLight,
	TaskKwScore:             LaneLight,
	TaskTitleGenerate:       LaneLight,
	TaskBodyGenerate:        LaneHeavy,
	TaskArticleQA:           LaneLight,
	TaskArticleQAFix:        LaneLight,
	TaskTopcardRender:       LaneLight,
	TaskImageGenerate:       LaneHeavy,
	TaskArticlePackage:      LaneLight,
	TaskPublishExecute:      LaneLight,
	TaskArticleGenerate:     LaneLight,
	TaskAnalyzerDaily:       LaneLight,
	TaskAdvisorWeeklyGlobal: LaneLight,
}

// KnownKind reports whether kind is a task type the router can dispatch.
func KnownKind(kind string) bool {
	_, ok := kindLanes[kind]
	return ok
}

// LaneFor returns the queue lane for a task kind. Unknown kinds map to the
// light lane; the router rejects them before enqueue anyway.
func LaneFor(kind string) Lane {
	if lane, ok := kindLanes[kind]; ok {
		return lane
	}
	return LaneLight
}

// Kinds returns all routable task kinds.
func Kinds() []string {
	out := make([]string, 0, len(kindLanes))
	for k := range kindLanes {
		out = append(out, k)
	}
	return out
}
