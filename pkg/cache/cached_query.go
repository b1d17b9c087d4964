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

package cache

import (
	"context"
	"errors"
	"time"

	"github.com/bytedance/sonic"

	"github.com/pressline/pressline/pkg/log"
)

const defaultQueryTTL = 30 * time.Minute

// CachedQuery wraps a read query with a cache-aside lookup keyed by keyFunc.
// Cache failures degrade to the underlying query, never to an error.
type CachedQuery[T any] struct {
	cache     ICache
	keyFunc   func(params ...any) string
	queryFunc func(ctx context.Context) (T, error)
	ttl       time.Duration
	logPrefix string
}

// Option configures a CachedQuery.
type Option[T any] func(*CachedQuery[T])

// WithTTL overrides the default cache TTL.
func WithTTL[T any](ttl time.Duration) Option[T] {
	return func(cq *CachedQuery[T]) { cq.ttl = ttl }
}

// WithLogPrefix tags cache warnings with the owning repo.
func WithLogPrefix[T any](prefix string) Option[T] {
	return func(cq *CachedQuery[T]) { cq.logPrefix = prefix }
}

// NewCachedQuery builds a cache-aside query. queryFunc may be nil when the
// instance is only used to Invalidate.
func NewCachedQuery[T any](cache ICache, keyFunc func(params ...any) string,
	queryFunc func(ctx context.Context) (T, error), opts ...Option[T]) *CachedQuery[T] {
	cq := &CachedQuery[T]{
		cache:     cache,
		keyFunc:   keyFunc,
		queryFunc: queryFunc,
		ttl:       defaultQueryTTL,
	}
	for _, opt := range opts {
		opt(cq)
	}
	return cq
}

// Get returns the cached value for the key derived from params, falling back
// to the query and repopulating the cache on a miss.
func (cq *CachedQuery[T]) Get(ctx context.Context, params ...any) (T, error) {
	var zero T
	key := cq.keyFunc(params...)

	if cq.cache != nil {
		raw, err := cq.cache.Get(ctx, key)
		if err == nil {
			var out T
			if uerr := sonic.Unmarshal([]byte(raw), &out); uerr == nil {
				return out, nil
			}
			// Poisoned entry: drop it and fall through to the query.
			_ = cq.cache.Del(ctx, key)
		} else if !errors.Is(err, ErrCacheMiss) {
			log.Warnw(cq.logPrefix+" cache read failed", "key", key, "error", err)
		}
	}

	if cq.queryFunc == nil {
		return zero, errors.New("cache: no query func")
	}
	out, err := cq.queryFunc(ctx)
	if err != nil {
		return zero, err
	}

	if cq.cache != nil {
		if raw, merr := sonic.Marshal(out); merr == nil {
			if serr := cq.cache.Set(ctx, key, string(raw), cq.ttl); serr != nil {
				log.Warnw(cq.logPrefix+" cache write failed", "key", key, "error", serr)
			}
		}
	}
	return out, nil
}

// Invalidate removes the cached value for the key derived from params.
func (cq *CachedQuery[T]) Invalidate(ctx context.Context, params ...any) error {
	if cq.cache == nil {
		return nil
	}
	return cq.cache.Del(ctx, cq.keyFunc(params...))
}
