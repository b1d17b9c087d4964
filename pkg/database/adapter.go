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

import "gorm.io/gorm"

// IDatabase is the handle repositories embed to reach the MySQL connection.
type IDatabase interface {
	// Database returns the gorm connection.
	Database() *gorm.DB

	// Close closes the underlying connections.
	Close() error
}

type databaseAdapter struct {
	manager Manager
}

// NewDatabaseAdapter wraps a Manager as an IDatabase.
func NewDatabaseAdapter(manager Manager) IDatabase {
	return &databaseAdapter{manager: manager}
}

func (a *databaseAdapter) Database() *gorm.DB {
	return a.manager.MySQL()
}

func (a *databaseAdapter) Close() error {
	return a.manager.Close()
}

// NewFromGorm wraps an existing gorm connection as an IDatabase. Tests use
// this with an in-memory or stub connection.
func NewFromGorm(db *gorm.DB) IDatabase {
	return &gormAdapter{db: db}
}

type gormAdapter struct {
	db *gorm.DB
}

func (a *gormAdapter) Database() *gorm.DB { return a.db }

func (a *gormAdapter) Close() error {
	sqlDB, err := a.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
