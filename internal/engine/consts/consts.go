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

// Package consts holds shared cache keys and identifiers for the engine.
package consts

const (
	// GlobalSettingsCacheKey caches the merged global settings document.
	GlobalSettingsCacheKey = "pressline:settings:"

	// SiteCacheKeyPrefix caches site rows by site id.
	SiteCacheKeyPrefix = "pressline:site:"
)
