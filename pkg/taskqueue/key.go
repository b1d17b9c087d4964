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

package taskqueue

import (
	"fmt"
	"strings"
)

// KeyParts builds an idempotency key:
//
//	{taskType}:{siteId}[:{runDate}][:{entityId}][:slot{n}][:attempt-{n}][:{runTag}]
//
// Empty segments are dropped, so stages that key on the entity alone (such
// as body_generate on the article ID) and stages that key on the day (kw
// stages) share one grammar. A re-run with a runTag never collides with the
// original run's ledger row.
type KeyParts struct {
	TaskType string
	SiteId   string
	RunDate  string
	EntityId string
	Slot     int
	Attempt  int
	RunTag   string
}

// Key assembles the idempotency key from its parts.
func Key(p KeyParts) string {
	parts := make([]string, 0, 7)
	for _, s := range []string{p.TaskType, p.SiteId, p.RunDate, p.EntityId} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	if p.Slot > 0 {
		parts = append(parts, fmt.Sprintf("slot%d", p.Slot))
	}
	if p.Attempt > 0 {
		parts = append(parts, fmt.Sprintf("attempt-%d", p.Attempt))
	}
	if p.RunTag != "" {
		parts = append(parts, p.RunTag)
	}
	return strings.Join(parts, ":")
}

// LockId derives the attempt-scoped lease key for a payload. Each retry
// attempt takes its own lease so a crashed first attempt never blocks the
// retry for the full TTL.
func LockId(idempotencyKey string, retryCount int) string {
	return fmt.Sprintf("lock:%s:r%d", idempotencyKey, retryCount)
}
