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
)

// dataTablePrefix is prepended to every table name by the naming strategy.
const dataTablePrefix = "l_"

// MySQLConfig holds the MySQL connection settings. Primary and Replicas are
// optional DSN-source lists for read-write separation.
type MySQLConfig struct {
	Host     string   `mapstructure:"host" json:"host"`
	Port     int      `mapstructure:"port" json:"port"`
	User     string   `mapstructure:"user" json:"user"`
	Password string   `mapstructure:"password" json:"password"`
	DBName   string   `mapstructure:"dbname" json:"dbname"`
	Primary  []Source `mapstructure:"primary" json:"primary"`
	Replicas []Source `mapstructure:"replicas" json:"replicas"`
}

// Source is one endpoint of a resolver group.
type Source struct {
	Host     string `mapstructure:"host" json:"host"`
	Port     int    `mapstructure:"port" json:"port"`
	User     string `mapstructure:"user" json:"user"`
	Password string `mapstructure:"password" json:"password"`
	DBName   string `mapstructure:"dbname" json:"dbname"`
}

// Database is the top-level database configuration block.
type Database struct {
	MySQL        MySQLConfig `mapstructure:"mysql" json:"mysql"`
	MaxOpenConns int         `mapstructure:"max_open_conns" json:"max_open_conns"`
	MaxIdleConns int         `mapstructure:"max_idle_conns" json:"max_idle_conns"`
	MaxLifetime  int         `mapstructure:"max_lifetime" json:"max_lifetime"`
	MaxIdleTime  int         `mapstructure:"max_idle_time" json:"max_idle_time"`
	OutPut       bool        `mapstructure:"output" json:"output"`
}

// SetDefaults fills unset pool knobs with safe values.
func (d *Database) SetDefaults() {
	if d.MySQL.Host == "" {
		d.MySQL.Host = "127.0.0.1"
	}
	if d.MySQL.Port == 0 {
		d.MySQL.Port = 3306
	}
	if d.MaxOpenConns == 0 {
		d.MaxOpenConns = 50
	}
	if d.MaxIdleConns == 0 {
		d.MaxIdleConns = 10
	}
	if d.MaxLifetime == 0 {
		d.MaxLifetime = 3600
	}
	if d.MaxIdleTime == 0 {
		d.MaxIdleTime = 600
	}
}

// GetConnMaxLifetime converts the configured seconds into a duration.
func GetConnMaxLifetime(seconds int) time.Duration {
	if seconds <= 0 {
		return time.Hour
	}
	return time.Duration(seconds) * time.Second
}

// GetConnMaxIdleTime converts the configured seconds into a duration.
func GetConnMaxIdleTime(seconds int) time.Duration {
	if seconds <= 0 {
		return 10 * time.Minute
	}
	return time.Duration(seconds) * time.Second
}

// buildMySQLDSN assembles a go-sql-driver DSN.
func buildMySQLDSN(user, password, host string, port int, dbname string) string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		user, password, host, port, dbname)
}
