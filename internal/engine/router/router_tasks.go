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

package router

import (
	"fmt"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/pressline/pressline/internal/engine/model"
	"github.com/pressline/pressline/pkg/log"
	"github.com/pressline/pressline/pkg/queue"
	"github.com/pressline/pressline/pkg/taskqueue"
)

// deliveryRetryDelaySec delays the transport-level redelivery after an
// engine error. Distinct from the business retry the router itself applies.
const deliveryRetryDelaySec = 1800

// executeTask receives one queue delivery. The response is always 200 so
// the transport never retries on its own; redelivery is the engine's call.
func (rt *Router) executeTask(c *fiber.Ctx) error {
	body := make([]byte, len(c.Body()))
	copy(body, c.Body())

	payload, err := taskqueue.Unmarshal(body)
	if err == nil {
		err = payload.Validate()
	}
	if err != nil {
		rt.recordDeliveryFailure(c, payload, body, err)
		return c.JSON(fiber.Map{"ok": false, "error": "invalid payload: " + err.Error()})
	}

	if routeErr := rt.Services.Router.Route(c.Context(), payload); routeErr != nil {
		rt.recordDeliveryFailure(c, payload, body, routeErr)
		rt.redeliverOnce(c, payload, body)
		return c.JSON(fiber.Map{"ok": false, "error": routeErr.Error()})
	}
	return c.JSON(fiber.Map{"ok": true})
}

// redeliverOnce re-enqueues the exact delivery after an engine failure.
// Only the first attempt is redelivered; the dedup id carries a replay
// suffix so the original enqueue record does not swallow it.
func (rt *Router) redeliverOnce(c *fiber.Ctx, payload *taskqueue.Payload, body []byte) {
	if payload.RetryCount != 0 {
		return
	}
	err := rt.Queue.Enqueue(c.Context(), &queue.EnqueueArgs{
		Payload:      body,
		TaskType:     payload.TaskType,
		TaskId:       queue.TaskId(payload.IdempotencyKey+"#replay", payload.RetryCount),
		DelaySeconds: deliveryRetryDelaySec,
	})
	if err != nil && err != queue.ErrAlreadyQueued {
		log.Errorw("delivery replay enqueue failed",
			"idempotencyKey", payload.IdempotencyKey, "error", err)
	}
}

func (rt *Router) recordDeliveryFailure(c *fiber.Ctx, payload *taskqueue.Payload, body []byte, cause error) {
	failure := &model.TaskFailure{
		FailureId: failureId(payload),
		Payload:   string(body),
		Error:     cause.Error(),
	}
	if payload != nil {
		failure.TaskType = payload.TaskType
		failure.SiteId = payload.SiteId
	} else {
		// The raw body never parsed; store it JSON-quoted so the JSON
		// column accepts it.
		if quoted, qerr := sonic.Marshal(string(body)); qerr == nil {
			failure.Payload = string(quoted)
		}
	}
	if err := rt.Repos.TaskRuns.RecordFailure(c.Context(), failure); err != nil {
		log.Errorw("delivery failure record failed", "failureId", failure.FailureId, "error", err)
	}
}

// failureId keys the failure row by delivery identity, or by a random id
// when the payload never parsed.
func failureId(payload *taskqueue.Payload) string {
	if payload == nil || payload.IdempotencyKey == "" {
		return "unparsed:" + uuid.NewString()
	}
	return fmt.Sprintf("%s:%d", payload.IdempotencyKey, payload.RetryCount)
}

// getTaskRun returns the ledger row and its events for one idempotency key.
func (rt *Router) getTaskRun(c *fiber.Ctx) error {
	key := strings.TrimSpace(c.Params("idempotencyKey"))
	if key == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"ok": false, "error": "idempotency key is required"})
	}
	run, err := rt.Repos.TaskRuns.Get(c.Context(), key)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"ok": false, "error": err.Error()})
	}
	if run == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"ok": false, "error": "task run not found"})
	}
	events, err := rt.Repos.TaskRuns.ListEvents(c.Context(), key)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"ok": false, "error": err.Error()})
	}
	return c.JSON(fiber.Map{"ok": true, "run": run, "events": events})
}

// getArticleTimeline returns the per-article pipeline history.
func (rt *Router) getArticleTimeline(c *fiber.Ctx) error {
	articleId := strings.TrimSpace(c.Params("articleId"))
	if articleId == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"ok": false, "error": "article id is required"})
	}
	article, err := rt.Repos.Articles.Get(c.Context(), articleId)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"ok": false, "error": err.Error()})
	}
	if article == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"ok": false, "error": "article not found"})
	}
	return c.JSON(fiber.Map{
		"ok":        true,
		"articleId": article.ArticleId,
		"status":    article.Status,
		"lastTask":  article.PipelineLastTask,
		"lastState": article.PipelineLastState,
		"timeline":  article.PipelineHistory,
	})
}
