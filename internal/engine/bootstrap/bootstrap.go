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

// Package bootstrap assembles the engine: config, logging, storage,
// persistence, the task queue backend, the service layer and the HTTP
// surface, with an ordered graceful shutdown.
package bootstrap

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pressline/pressline/internal/engine/config"
	"github.com/pressline/pressline/internal/engine/repo"
	"github.com/pressline/pressline/internal/engine/router"
	"github.com/pressline/pressline/internal/engine/service"
	"github.com/pressline/pressline/internal/pkg/imagesearch"
	"github.com/pressline/pressline/internal/pkg/storage"
	"github.com/pressline/pressline/pkg/cache"
	"github.com/pressline/pressline/pkg/database"
	"github.com/pressline/pressline/pkg/log"
	"github.com/pressline/pressline/pkg/metrics"
	"github.com/pressline/pressline/pkg/queue"
	"github.com/pressline/pressline/pkg/taskqueue"
)

// App is the assembled engine.
type App struct {
	AppConf       *config.AppConfig
	Router        *router.Router
	Services      *service.Services
	Repos         *repo.Repositories
	Queue         queue.Queue
	MetricsServer *metrics.Server

	worker    *queue.Worker
	forwarder *queue.DelayForwarder
	cache     cache.ICache
	db        database.IDatabase

	runCtx    context.Context
	runCancel context.CancelFunc
}

// Init builds the engine from the config file. The returned cleanup closes
// every component in reverse construction order.
func Init(configFile string) (*App, func(), error) {
	conf := config.NewConf(configFile)

	if err := log.Init(&conf.Log); err != nil {
		return nil, nil, fmt.Errorf("init logging: %w", err)
	}

	manager, err := database.NewManager(conf.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("init database: %w", err)
	}
	db := database.NewDatabaseAdapter(manager)

	var c cache.ICache
	if conf.Engine.CacheType == "memory" {
		c = cache.NewMemoryCache()
	} else {
		c, err = cache.NewRedisCache(conf.Redis)
		if err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("init redis cache: %w", err)
		}
	}

	initCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	store, err := storage.NewStorage(initCtx, &conf.Storage)
	cancel()
	if err != nil {
		c.Close()
		_ = db.Close()
		return nil, nil, fmt.Errorf("init storage: %w", err)
	}

	repos := repo.NewRepositories(db, c)
	metricsServer := metrics.NewMetricsServer(conf.Metrics)

	app := &App{
		AppConf:       conf,
		Repos:         repos,
		MetricsServer: metricsServer,
		cache:         c,
		db:            db,
	}
	app.runCtx, app.runCancel = context.WithCancel(context.Background())

	q, err := app.buildQueue(conf, db)
	if err != nil {
		c.Close()
		_ = db.Close()
		return nil, nil, err
	}
	app.Queue = q

	services, err := service.NewServices(service.Deps{
		Repos:               repos,
		Queue:               q,
		Storage:             store,
		ImageSearch:         buildImageSearch(conf),
		Env:                 conf.Engine.Env,
		OffsetMinutes:       conf.Engine.OffsetMinutes,
		FetchExternalImages: conf.Engine.FetchExternalImages,
	})
	if err != nil {
		_ = q.Close()
		c.Close()
		_ = db.Close()
		return nil, nil, fmt.Errorf("init services: %w", err)
	}
	app.Services = services
	app.Router = router.NewRouter(&conf.Http, services, repos, q)

	return app, app.cleanup, nil
}

// buildQueue selects the queue backend. Kafka mode also runs the delivery
// worker and the delay forwarder in-process; inline mode dispatches straight
// into the task router.
func (app *App) buildQueue(conf *config.AppConfig, db database.IDatabase) (queue.Queue, error) {
	if conf.TaskQueue.Type != "kafka" {
		// The services handle is assigned after the queue exists; the
		// closure reads it at dispatch time.
		return queue.NewInlineQueue(func(ctx context.Context, payload []byte) error {
			p, err := taskqueue.Unmarshal(payload)
			if err != nil {
				return err
			}
			if err := p.Validate(); err != nil {
				return err
			}
			return app.Services.Router.Route(ctx, p)
		}), nil
	}

	recorder, err := queue.NewRecorder(db.Database())
	if err != nil {
		return nil, fmt.Errorf("init queue recorder: %w", err)
	}
	opts := []queue.KafkaQueueOption{
		queue.WithRecorder(recorder),
	}
	if conf.TaskQueue.TopicPrefix != "" {
		opts = append(opts, queue.WithTopicPrefix(conf.TaskQueue.TopicPrefix))
	}
	if conf.TaskQueue.DelaySlotCount > 0 && conf.TaskQueue.DelaySlotDurationMin > 0 {
		opts = append(opts, queue.WithDelaySlots(
			conf.TaskQueue.DelaySlotCount,
			time.Duration(conf.TaskQueue.DelaySlotDurationMin)*time.Minute,
		))
	}
	kq, err := queue.NewKafkaQueue(conf.TaskQueue.BootstrapServers, opts...)
	if err != nil {
		return nil, fmt.Errorf("init kafka queue: %w", err)
	}

	executeURL := conf.TaskQueue.ExecuteURL
	if executeURL == "" {
		executeURL = fmt.Sprintf("http://%s:%d/v1/tasks/execute", conf.Http.Host, conf.Http.Port)
	}
	deliveryTimeout := time.Duration(conf.TaskQueue.DeliveryTimeoutSec) * time.Second
	worker, err := queue.NewWorker(kq, queue.WorkerConfig{
		ExecuteURL:      executeURL,
		TaskSecret:      conf.Http.TaskSecret,
		DeliveryTimeout: deliveryTimeout,
	})
	if err != nil {
		_ = kq.Close()
		return nil, fmt.Errorf("init queue worker: %w", err)
	}
	forwarder, err := queue.NewDelayForwarder(kq)
	if err != nil {
		_ = worker.Close()
		_ = kq.Close()
		return nil, fmt.Errorf("init delay forwarder: %w", err)
	}
	app.worker = worker
	app.forwarder = forwarder
	return kq, nil
}

func buildImageSearch(conf *config.AppConfig) imagesearch.Searcher {
	if conf.Engine.PixabayKey == "" {
		return imagesearch.NullSearcher{}
	}
	return imagesearch.NewMultiSearcher(imagesearch.NewPixabaySearcher(conf.Engine.PixabayKey))
}

// Run starts the servers and blocks until an exit signal, then shuts down
// gracefully.
func (app *App) Run() {
	app.MetricsServer.Start()

	if app.worker != nil {
		go app.worker.Run(app.runCtx)
	}
	if app.forwarder != nil {
		go app.forwarder.Run(app.runCtx)
	}

	if err := app.Services.Scheduler.Start(app.AppConf.Engine.CronSpec); err != nil {
		log.Errorw("scheduler start failed", "error", err)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		if err := app.Router.Start(); err != nil {
			log.Errorw("http server failed", "error", err)
		}
	}()

	sig := <-quit
	log.Infow("received signal, shutting down gracefully", "signal", sig)

	if err := app.Router.Shutdown(); err != nil {
		log.Errorw("http server shutdown error", "error", err)
	}
	app.cleanup()
	log.Info("engine shutdown complete")
}

// cleanup closes components in reverse construction order. Safe to call
// more than once only for nil-guarded members.
func (app *App) cleanup() {
	app.Services.Scheduler.Stop()
	app.runCancel()

	if app.worker != nil {
		if err := app.worker.Close(); err != nil {
			log.Errorw("queue worker close error", "error", err)
		}
	}
	if app.forwarder != nil {
		if err := app.forwarder.Close(); err != nil {
			log.Errorw("delay forwarder close error", "error", err)
		}
	}
	if app.Queue != nil {
		if err := app.Queue.Close(); err != nil {
			log.Errorw("queue close error", "error", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := app.MetricsServer.Stop(shutdownCtx); err != nil {
		log.Errorw("metrics server stop error", "error", err)
	}

	if app.cache != nil {
		app.cache.Close()
	}
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			log.Errorw("database close error", "error", err)
		}
	}
}
