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

// Package storage stores packaged article artifacts (HTML, package JSON,
// rendered PNGs) in an object store.
package storage

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
)

// Provider names.
const (
	Minio  = "minio"
	Memory = "memory"
)

// ErrNotFound is returned when an object does not exist.
var ErrNotFound = errors.New("storage: object not found")

// Config selects and configures the object store backend.
type Config struct {
	Provider  string `json:"provider" mapstructure:"provider"`
	Endpoint  string `json:"endpoint" mapstructure:"endpoint"`
	AccessKey string `json:"access-key" mapstructure:"access-key"`
	SecretKey string `json:"secret-key" mapstructure:"secret-key"`
	Bucket    string `json:"bucket" mapstructure:"bucket"`
	Region    string `json:"region" mapstructure:"region"`
	UseTLS    bool   `json:"use-tls" mapstructure:"use-tls"`
	BasePath  string `json:"base-path" mapstructure:"base-path"`
}

// SetDefaults sets the default object store options.
func (c *Config) SetDefaults() {
	if c.Provider == "" {
		c.Provider = Memory
	}
	if c.Bucket == "" {
		c.Bucket = "pressline"
	}
}

// IStorage is the object store used by the packaging and render stages.
type IStorage interface {
	Put(ctx context.Context, objectName string, data []byte, contentType string) (string, error)
	Get(ctx context.Context, objectName string) ([]byte, error)
	Delete(ctx context.Context, objectName string) error
}

// NewStorage creates the configured object store backend.
func NewStorage(ctx context.Context, c *Config) (IStorage, error) {
	switch c.Provider {
	case Minio:
		return newMinio(ctx, c)
	case Memory:
		return NewMemoryStorage(), nil
	default:
		return nil, fmt.Errorf("unsupported storage provider: %s", c.Provider)
	}
}

// fullPath joins BasePath and objectName without doubled slashes.
func fullPath(basePath, objectName string) string {
	objectName = strings.TrimPrefix(objectName, "/")
	if basePath == "" {
		return objectName
	}
	return path.Join(strings.Trim(basePath, "/"), objectName)
}
