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

package config

import (
	"fmt"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/pressline/pressline/internal/pkg/storage"
	"github.com/pressline/pressline/pkg/cache"
	"github.com/pressline/pressline/pkg/database"
	"github.com/pressline/pressline/pkg/http"
	"github.com/pressline/pressline/pkg/log"
	"github.com/pressline/pressline/pkg/metrics"
)

// TaskQueueConfig selects the queue backend and its delivery parameters.
type TaskQueueConfig struct {
	// Type is "kafka" (durable) or "inline" (dev/test).
	Type string `mapstructure:"type"`

	BootstrapServers     string `mapstructure:"bootstrapServers"`
	TopicPrefix          string `mapstructure:"topicPrefix"`
	DelaySlotCount       int    `mapstructure:"delaySlotCount"`
	DelaySlotDurationMin int    `mapstructure:"delaySlotDurationMin"`

	// ExecuteURL is where the worker delivers tasks. Defaults to the local
	// execute endpoint.
	ExecuteURL         string `mapstructure:"executeUrl"`
	DeliveryTimeoutSec int    `mapstructure:"deliveryTimeoutSec"`
}

// EngineConfig carries the engine-wide knobs that are not per-site.
type EngineConfig struct {
	// Env gates manual reruns, "prod" or "dev".
	Env string `mapstructure:"env"`

	// OffsetMinutes is the default site-local clock offset.
	OffsetMinutes int `mapstructure:"offsetMinutes"`

	// CronSpec overrides the daily seeding schedule (with seconds field).
	CronSpec string `mapstructure:"cronSpec"`

	// CacheType is "redis" or "memory".
	CacheType string `mapstructure:"cacheType"`

	FetchExternalImages bool   `mapstructure:"fetchExternalImages"`
	PixabayKey          string `mapstructure:"pixabayKey"`
}

func (e *EngineConfig) SetDefaults() {
	if e.Env == "" {
		e.Env = "dev"
	}
	if e.CacheType == "" {
		e.CacheType = "redis"
	}
}

type AppConfig struct {
	Log       log.Conf              `mapstructure:"log"`
	Http      http.Http             `mapstructure:"http"`
	Database  database.Database     `mapstructure:"database"`
	Redis     cache.Redis           `mapstructure:"redis"`
	Storage   storage.Config        `mapstructure:"storage"`
	Metrics   metrics.MetricsConfig `mapstructure:"metrics"`
	TaskQueue TaskQueueConfig       `mapstructure:"taskQueue"`
	Engine    EngineConfig          `mapstructure:"engine"`
}

var (
	cfg  AppConfig
	mu   sync.RWMutex // 保护配置的读写
	once sync.Once
)

func NewConf(confDir string) *AppConfig {
	once.Do(func() {
		var err error
		cfg, err = LoadConfigFile(confDir)
		if err != nil {
			panic(fmt.Sprintf("load config file error: %s", err))
		}
	})
	mu.RLock()
	defer mu.RUnlock()
	return &cfg
}

// GetConfig 获取当前配置（用于热重载场景）
func GetConfig() AppConfig {
	mu.RLock()
	defer mu.RUnlock()
	return cfg
}

// LoadConfigFile load config file
func LoadConfigFile(confDir string) (AppConfig, error) {

	config := viper.New()
	config.SetConfigFile(confDir) //文件名
	if err := config.ReadInConfig(); err != nil {
		return cfg, fmt.Errorf("failed to read configuration file: %v", err)
	}

	config.WatchConfig()
	config.OnConfigChange(func(e fsnotify.Event) {
		log.Infow("The configuration changes, re-analyze the configuration file", "file", e.Name)
		if err := config.ReadInConfig(); err != nil {
			log.Errorw("failed to re-read configuration file", "error", err, "file", e.Name)
			return
		}
		// 使用写锁保护配置更新
		mu.Lock()
		if err := config.Unmarshal(&cfg); err != nil {
			mu.Unlock()
			log.Errorw("failed to unmarshal configuration file", "error", err, "file", e.Name)
			return
		}
		cfg.Http.SetDefaults()
		cfg.Metrics.SetDefaults()
		cfg.Engine.SetDefaults()
		mu.Unlock()
		log.Infow("configuration reloaded successfully", "file", e.Name)
	})
	if err := config.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("failed to unmarshal configuration file: %v", err)
	}
	cfg.Http.SetDefaults()
	cfg.Metrics.SetDefaults()
	cfg.Engine.SetDefaults()
	log.Infow("config file loaded",
		"path", confDir,
	)

	return cfg, nil
}
