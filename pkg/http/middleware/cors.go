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
	"os"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

// CorsMiddleware 跨域中间件
//
// The engine's callers are machine clients (queue push, ops tooling), so
// browser origins are allowed only when listed explicitly in
// PRESSLINE_CORS_ALLOW_ORIGINS. Unset means local dashboards only.
func CorsMiddleware() fiber.Handler {
	allowed := strings.TrimSpace(os.Getenv("PRESSLINE_CORS_ALLOW_ORIGINS"))
	if allowed == "" {
		allowed = "http://localhost:5173,http://127.0.0.1:5173"
	}
	origins := map[string]struct{}{}
	for _, o := range strings.Split(allowed, ",") {
		o = strings.ToLower(strings.TrimSpace(o))
		if o != "" {
			origins[o] = struct{}{}
		}
	}

	return cors.New(cors.Config{
		AllowOriginsFunc: func(origin string) bool {
			_, ok := origins[strings.ToLower(strings.TrimSpace(origin))]
			return ok
		},
		AllowMethods:  "GET, POST, OPTIONS",
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization, X-Task-Secret",
		ExposeHeaders: "Content-Length, Content-Type",
	})
}
