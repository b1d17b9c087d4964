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

package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/pressline/pressline/pkg/log"
)

// slowThreshold marks a request worth logging even when it succeeded.
// Task deliveries run whole pipeline stages inline, so successful requests
// below this stay out of the log.
const slowThreshold = 300 * time.Millisecond

// AccessLogMiddleware logs failed and slow requests only. Server errors log
// at error level, client errors and slow successes at warn.
func AccessLogMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		latency := time.Since(start)
		status := c.Response().StatusCode()

		if status < 400 && latency < slowThreshold {
			return err
		}

		fields := []any{
			"ip", c.IP(),
			"method", c.Method(),
			"path", c.Path(),
			"status", status,
			"latency", latency,
			"error", err,
		}
		if status >= 500 {
			log.Errorw("http access", fields...)
		} else {
			log.Warnw("http access", fields...)
		}
		return err
	}
}
