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

// Package queue provides the task transport: a durable Kafka-backed queue
// with delay slots for production, and an inline adapter that executes the
// router synchronously for development and tests.
package queue

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
)

// ErrAlreadyQueued is returned when a task with the same task id was already
// enqueued. Callers that enqueue idempotently treat it as success.
var ErrAlreadyQueued = errors.New("queue: task already queued")

// EnqueueArgs describes one task to enqueue. The lane is derived from the
// payload's task type.
type EnqueueArgs struct {
	// Payload is the serialized task envelope.
	Payload []byte

	// TaskType routes the payload to a lane topic.
	TaskType string

	// TaskId names the task for dedup. Enqueueing the same TaskId twice
	// yields ErrAlreadyQueued from adapters that track task ids.
	TaskId string

	// DelaySeconds defers delivery. Zero means immediate.
	DelaySeconds int
}

// Queue is the transport the router enqueues follow-up tasks on.
type Queue interface {
	Enqueue(ctx context.Context, args *EnqueueArgs) error
	Close() error
}

// TaskId derives the dedup task name from the ledger key and attempt. Two
// enqueues of the same attempt collapse to one delivery; a retry gets a
// fresh id.
func TaskId(idempotencyKey string, retryCount int) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s#r%d", idempotencyKey, retryCount)))
	return "task-" + hex.EncodeToString(sum[:16])
}
