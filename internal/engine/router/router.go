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

// Package router exposes the engine over HTTP: the task delivery endpoint
// the queue pushes into, and the read-side and operational endpoints.
package router

import (
	"crypto/subtle"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/pressline/pressline/internal/engine/repo"
	"github.com/pressline/pressline/internal/engine/service"
	"github.com/pressline/pressline/pkg/http"
	"github.com/pressline/pressline/pkg/http/middleware"
	"github.com/pressline/pressline/pkg/log"
	"github.com/pressline/pressline/pkg/queue"
)

// Router wires the fiber app over the engine services.
type Router struct {
	Http     *http.Http
	Services *service.Services
	Repos    *repo.Repositories
	Queue    queue.Queue

	app *fiber.App
}

func NewRouter(httpConf *http.Http, services *service.Services, repos *repo.Repositories, q queue.Queue) *Router {
	rt := &Router{
		Http:     httpConf,
		Services: services,
		Repos:    repos,
		Queue:    q,
	}
	rt.app = rt.buildApp()
	return rt
}

func (rt *Router) buildApp() *fiber.App {
	app := fiber.New(fiber.Config{
		ReadTimeout:           time.Duration(rt.Http.ReadTimeout) * time.Second,
		WriteTimeout:          time.Duration(rt.Http.WriteTimeout) * time.Second,
		IdleTimeout:           time.Duration(rt.Http.IdleTimeout) * time.Second,
		BodyLimit:             rt.Http.BodyLimit,
		DisableStartupMessage: true,
	})

	app.Use(middleware.CorsMiddleware())
	app.Use(middleware.HttpMetricsMiddleware())
	if rt.Http.AccessLog {
		app.Use(middleware.AccessLogMiddleware())
	}

	v1 := app.Group("/v1")

	tasks := v1.Group("/tasks")
	tasks.Post("/execute", rt.requireSecret(rt.Http.TaskSecret), rt.executeTask)
	tasks.Get("/runs/:idempotencyKey", rt.getTaskRun)

	v1.Get("/articles/:articleId/timeline", rt.getArticleTimeline)

	ops := v1.Group("/ops", rt.requireBearer(rt.opsSecret()))
	ops.Get("/health", rt.getHealth)
	ops.Post("/smoke", rt.runSmoke)

	return app
}

// Start blocks serving HTTP until Shutdown.
func (rt *Router) Start() error {
	addr := fmt.Sprintf("%s:%d", rt.Http.Host, rt.Http.Port)
	log.Infow("http server listening", "addr", addr)
	return rt.app.Listen(addr)
}

// Shutdown drains in-flight requests within the configured timeout.
func (rt *Router) Shutdown() error {
	return rt.app.ShutdownWithTimeout(time.Duration(rt.Http.ShutdownTimeout) * time.Second)
}

// App exposes the fiber app for tests.
func (rt *Router) App() *fiber.App {
	return rt.app
}

func (rt *Router) opsSecret() string {
	if rt.Http.OpsSecret != "" {
		return rt.Http.OpsSecret
	}
	return rt.Http.TaskSecret
}

// requireBearer rejects requests without the operational bearer token. An
// empty configured token disables the check for local development.
func (rt *Router) requireBearer(token string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if token == "" {
			return c.Next()
		}
		got := strings.TrimPrefix(c.Get(fiber.HeaderAuthorization), "Bearer ")
		if subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"ok":    false,
				"error": "unauthorized",
			})
		}
		return c.Next()
	}
}

// requireSecret rejects requests without the shared secret header. An empty
// configured secret disables the check for local development.
func (rt *Router) requireSecret(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if secret == "" {
			return c.Next()
		}
		got := c.Get("X-Task-Secret")
		if subtle.ConstantTimeCompare([]byte(got), []byte(secret)) != 1 {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"ok":    false,
				"error": "forbidden",
			})
		}
		return c.Next()
	}
}
