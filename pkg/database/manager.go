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
	"fmt"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
	"gorm.io/plugin/dbresolver"

	"github.com/pressline/pressline/pkg/log"
)

// Manager owns the MySQL connection backing the engine's repositories.
type Manager interface {
	MySQL() *gorm.DB
	Close() error
}

type managerImpl struct {
	mysql *gorm.DB
}

func (m *managerImpl) MySQL() *gorm.DB {
	return m.mysql
}

func (m *managerImpl) Close() error {
	if m.mysql == nil {
		return nil
	}
	sqlDB, err := m.mysql.DB()
	if err != nil {
		return nil
	}
	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("close mysql: %w", err)
	}
	return nil
}

// NewManager opens the MySQL connection and verifies it with a ping.
func NewManager(cfg Database) (Manager, error) {
	db, err := openMySQL(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect mysql: %w", err)
	}
	log.Infow("mysql connected", "host", cfg.MySQL.Host, "dbname", cfg.MySQL.DBName)
	return &managerImpl{mysql: db}, nil
}

func openMySQL(cfg Database) (*gorm.DB, error) {
	dsn := buildMySQLDSN(cfg.MySQL.User, cfg.MySQL.Password, cfg.MySQL.Host, cfg.MySQL.Port, cfg.MySQL.DBName)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: pickLogger(cfg.OutPut),
		NamingStrategy: schema.NamingStrategy{
			TablePrefix:   dataTablePrefix,
			SingularTable: true,
		},
	})
	if err != nil {
		return nil, err
	}

	if err := registerResolver(db, cfg); err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(GetConnMaxLifetime(cfg.MaxLifetime))
	sqlDB.SetConnMaxIdleTime(GetConnMaxIdleTime(cfg.MaxIdleTime))

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("ping: %w", err)
	}
	return db, nil
}

func pickLogger(output bool) gormlogger.Interface {
	if !output {
		return gormlogger.Default.LogMode(gormlogger.Silent)
	}
	return NewGormLoggerAdapter(gormlogger.Config{
		SlowThreshold:             time.Second,
		IgnoreRecordNotFoundError: true,
		ParameterizedQueries:      true,
	}, gormlogger.Info)
}

// registerResolver enables read-write separation when resolver sources are
// configured. The pool knobs apply to every resolver connection too.
func registerResolver(db *gorm.DB, cfg Database) error {
	if len(cfg.MySQL.Primary) == 0 && len(cfg.MySQL.Replicas) == 0 {
		return nil
	}
	err := db.Use(dbresolver.Register(dbresolver.Config{
		Sources:           dialectors(cfg.MySQL.Primary),
		Replicas:          dialectors(cfg.MySQL.Replicas),
		TraceResolverMode: cfg.OutPut,
	}).
		SetConnMaxIdleTime(GetConnMaxIdleTime(cfg.MaxIdleTime)).
		SetConnMaxLifetime(GetConnMaxLifetime(cfg.MaxLifetime)).
		SetMaxIdleConns(cfg.MaxIdleConns).
		SetMaxOpenConns(cfg.MaxOpenConns))
	if err != nil {
		return fmt.Errorf("register dbresolver: %w", err)
	}
	log.Infow("mysql read-write separation enabled",
		"sources", len(cfg.MySQL.Primary), "replicas", len(cfg.MySQL.Replicas))
	return nil
}

func dialectors(sources []Source) []gorm.Dialector {
	out := make([]gorm.Dialector, 0, len(sources))
	for _, s := range sources {
		out = append(out, mysql.Open(buildMySQLDSN(s.User, s.Password, s.Host, s.Port, s.DBName)))
	}
	return out
}
