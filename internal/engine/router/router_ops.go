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
	"strings"

	"github.com/gofiber/fiber/v2"
)

// getHealth reports the engine health. Warnings keep 200; hard errors
// return 503 so load balancers rotate the instance out.
func (rt *Router) getHealth(c *fiber.Ctx) error {
	report := rt.Services.Ops.Health(c.Context())
	status := fiber.StatusOK
	if !report.OK {
		status = fiber.StatusServiceUnavailable
	}
	return c.Status(status).JSON(report)
}

// runSmoke executes a synthetic pipeline slice inline and reports the
// asserted side effects.
func (rt *Router) runSmoke(c *fiber.Ctx) error {
	var req struct {
		SiteId  string `json:"siteId"`
		RunDate string `json:"runDate"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"ok": false, "error": "invalid request body"})
	}
	result, err := rt.Services.Ops.Smoke(c.Context(), strings.TrimSpace(req.SiteId), strings.TrimSpace(req.RunDate))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"ok": false, "error": err.Error()})
	}
	return c.JSON(result)
}
