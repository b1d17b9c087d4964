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

package storage

import (
	"context"
	"errors"
	"testing"
)

func TestFullPath(t *testing.T) {
	tests := []struct {
		base   string
		object string
		want   string
	}{
		{"", "sites/a/package.json", "sites/a/package.json"},
		{"artifacts", "sites/a/package.json", "artifacts/sites/a/package.json"},
		{"/artifacts/", "/sites/a/package.json", "artifacts/sites/a/package.json"},
	}
	for _, tt := range tests {
		if got := fullPath(tt.base, tt.object); got != tt.want {
			t.Errorf("fullPath(%q, %q) = %q, want %q", tt.base, tt.object, got, tt.want)
		}
	}
}

func TestMemoryStorageRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStorage()

	key, err := s.Put(ctx, "sites/a/articles/x/package.json", []byte(`{"ok":true}`), "application/json")
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if key != "sites/a/articles/x/package.json" {
		t.Errorf("key = %q", key)
	}

	data, err := s.Get(ctx, key)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(data) != `{"ok":true}` {
		t.Errorf("data = %s", data)
	}

	if err := s.Delete(ctx, key); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.Get(ctx, key); !errors.Is(err, ErrNotFound) {
		t.Errorf("get after delete: %v, want ErrNotFound", err)
	}
}

func TestMemoryStorageCopiesData(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStorage()

	payload := []byte("original")
	if _, err := s.Put(ctx, "a", payload, ""); err != nil {
		t.Fatal(err)
	}
	payload[0] = 'X'

	data, err := s.Get(ctx, "a")
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "original" {
		t.Errorf("stored data mutated: %s", data)
	}
}

func TestNewStorageDefaultsToMemory(t *testing.T) {
	c := &Config{}
	c.SetDefaults()
	s, err := NewStorage(context.Background(), c)
	if err != nil {
		t.Fatalf("new storage: %v", err)
	}
	if _, ok := s.(*MemoryStorage); !ok {
		t.Errorf("default backend = %T, want memory", s)
	}
}

func TestNewStorageUnknownProvider(t *testing.T) {
	if _, err := NewStorage(context.Background(), &Config{Provider: "tape"}); err == nil {
		t.Error("unknown provider should error")
	}
}
