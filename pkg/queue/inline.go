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

package queue

import (
	"context"
	"sync"
	"time"

	"github.com/pressline/pressline/pkg/log"
)

// DefaultInlineTimeout bounds one inline task execution.
const DefaultInlineTimeout = 45 * time.Second

// Dispatcher executes one serialized task payload. The router provides it.
type Dispatcher func(ctx context.Context, payload []byte) error

// InlineQueue executes tasks in-process instead of publishing them. Delayed
// tasks run on a timer goroutine. Used by development mode and tests; the
// task-id dedup set lives in memory and resets with the process.
type InlineQueue struct {
	dispatch Dispatcher
	timeout  time.Duration

	mu   sync.Mutex
	seen map[string]struct{}
	wg   sync.WaitGroup
}

// InlineOption configures an InlineQueue.
type InlineOption func(*InlineQueue)

// WithInlineTimeout overrides the per-task execution timeout.
func WithInlineTimeout(timeout time.Duration) InlineOption {
	return func(q *InlineQueue) { q.timeout = timeout }
}

// NewInlineQueue creates an inline queue around a dispatcher.
func NewInlineQueue(dispatch Dispatcher, opts ...InlineOption) *InlineQueue {
	q := &InlineQueue{
		dispatch: dispatch,
		timeout:  DefaultInlineTimeout,
		seen:     map[string]struct{}{},
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Enqueue runs the task through the dispatcher. Immediate tasks run
// synchronously so callers observe handler errors in tests; delayed tasks
// run on a timer goroutine like a real queue would.
func (q *InlineQueue) Enqueue(ctx context.Context, args *EnqueueArgs) error {
	if args.TaskId != "" {
		q.mu.Lock()
		if _, dup := q.seen[args.TaskId]; dup {
			q.mu.Unlock()
			return ErrAlreadyQueued
		}
		q.seen[args.TaskId] = struct{}{}
		q.mu.Unlock()
	}

	if args.DelaySeconds > 0 {
		q.wg.Add(1)
		go func(payload []byte, delay time.Duration, taskId string) {
			defer q.wg.Done()
			time.Sleep(delay)
			if err := q.run(context.Background(), payload); err != nil {
				log.Warnw("inline delayed task failed", "taskId", taskId, "error", err)
			}
		}(args.Payload, time.Duration(args.DelaySeconds)*time.Second, args.TaskId)
		return nil
	}

	return q.run(ctx, args.Payload)
}

func (q *InlineQueue) run(ctx context.Context, payload []byte) error {
	ctx, cancel := context.WithTimeout(ctx, q.timeout)
	defer cancel()
	return q.dispatch(ctx, payload)
}

// Close waits for in-flight delayed tasks.
func (q *InlineQueue) Close() error {
	q.wg.Wait()
	return nil
}
