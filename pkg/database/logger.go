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

package database

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/pressline/pressline/pkg/log"
)

// GormLoggerAdapter routes gorm's SQL log output through the process logger
// so query traces share the application log format.
type GormLoggerAdapter struct {
	config gormlogger.Config
	level  gormlogger.LogLevel
}

// NewGormLoggerAdapter creates an adapter at the given level.
func NewGormLoggerAdapter(config gormlogger.Config, level gormlogger.LogLevel) *GormLoggerAdapter {
	return &GormLoggerAdapter{config: config, level: level}
}

// LogMode returns a copy at the new level.
func (a *GormLoggerAdapter) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *a
	clone.level = level
	return &clone
}

func (a *GormLoggerAdapter) Info(_ context.Context, msg string, args ...any) {
	if a.level >= gormlogger.Info {
		log.Infow("gorm", "msg", msg, "args", args)
	}
}

func (a *GormLoggerAdapter) Warn(_ context.Context, msg string, args ...any) {
	if a.level >= gormlogger.Warn {
		log.Warnw("gorm", "msg", msg, "args", args)
	}
}

func (a *GormLoggerAdapter) Error(_ context.Context, msg string, args ...any) {
	if a.level >= gormlogger.Error {
		log.Errorw("gorm", "msg", msg, "args", args)
	}
}

// Trace logs completed statements. Slow queries and errors are raised to
// warn/error; routine queries only appear at Info level.
func (a *GormLoggerAdapter) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	if a.level <= gormlogger.Silent {
		return
	}
	elapsed := time.Since(begin)
	sql, rows := fc()

	switch {
	case err != nil && a.level >= gormlogger.Error &&
		(!errors.Is(err, gorm.ErrRecordNotFound) || !a.config.IgnoreRecordNotFoundError):
		log.Errorw("gorm query failed", "error", err, "elapsed", elapsed, "rows", rows, "sql", sql)
	case a.config.SlowThreshold > 0 && elapsed > a.config.SlowThreshold && a.level >= gormlogger.Warn:
		log.Warnw("gorm slow query", "elapsed", elapsed, "threshold", a.config.SlowThreshold, "rows", rows, "sql", sql)
	case a.level >= gormlogger.Info:
		log.Infow("gorm query", "elapsed", elapsed, "rows", rows, "sql", sql)
	}
}
