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
	"errors"
	"fmt"
	"strconv"
	"time"

	ckafka "github.com/confluentinc/confluent-kafka-go/v2/kafka"

	"github.com/pressline/pressline/pkg/log"
	mqkafka "github.com/pressline/pressline/pkg/mq/kafka"
)

// DelayForwarder drains the delay slot topics. Each message carries a
// deliverAt header; the forwarder holds it until due, then republishes to
// the lane topic named in targetTopic.
//
// Each slot topic gets its own consumer so a long hold on one slot never
// stalls shorter slots.
type DelayForwarder struct {
	queue     *KafkaQueue
	consumers []*mqkafka.Consumer
}

// NewDelayForwarder creates consumers for every delay slot topic.
func NewDelayForwarder(queue *KafkaQueue) (*DelayForwarder, error) {
	cfg := queue.config
	consumers := make([]*mqkafka.Consumer, 0, cfg.DelaySlotCount)

	for slot := 1; slot <= cfg.DelaySlotCount; slot++ {
		topic := queue.DelayTopic(slot)
		consumer, err := mqkafka.NewConsumer(
			cfg.BootstrapServers,
			topic,
			cfg.ClientProgram,
			mqkafka.WithConsumerClientOptions(cfg.ClientOptions...),
			mqkafka.WithConsumerEnableAutoCommit(false),
			// Holding a message to its due time counts against the poll
			// interval, so it must exceed the largest slot duration.
			mqkafka.WithConsumerMaxPollIntervalMs(int((cfg.DelaySlotDuration * time.Duration(cfg.DelaySlotCount+1)).Milliseconds())),
		)
		if err != nil {
			for _, c := range consumers {
				_ = c.Close()
			}
			return nil, fmt.Errorf("failed to create delay consumer for %s: %w", topic, err)
		}
		if err := consumer.Subscribe(); err != nil {
			_ = consumer.Close()
			for _, c := range consumers {
				_ = c.Close()
			}
			return nil, fmt.Errorf("failed to subscribe %s: %w", topic, err)
		}
		consumers = append(consumers, consumer)
	}

	return &DelayForwarder{queue: queue, consumers: consumers}, nil
}

// Run consumes all slot topics until ctx is cancelled.
func (f *DelayForwarder) Run(ctx context.Context) {
	for i, consumer := range f.consumers {
		go f.runSlot(ctx, i+1, consumer)
	}
	<-ctx.Done()
}

func (f *DelayForwarder) runSlot(ctx context.Context, slot int, consumer *mqkafka.Consumer) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		msg, err := consumer.ReadMessage(500 * time.Millisecond)
		if err != nil {
			var kafkaErr ckafka.Error
			if errors.As(err, &kafkaErr) && kafkaErr.Code() == ckafka.ErrTimedOut {
				continue
			}
			log.Warnw("delay slot read failed", "slot", slot, "error", err)
			continue
		}

		headers := make(map[string]string, len(msg.Headers))
		for _, h := range msg.Headers {
			headers[h.Key] = string(h.Value)
		}

		target := headers[HeaderTargetTopic]
		if target == "" {
			log.Warnw("delayed message without target topic dropped", "slot", slot, "taskId", headers[HeaderTaskId])
			_ = consumer.CommitMessage(msg)
			continue
		}

		if deliverAt, perr := strconv.ParseInt(headers[HeaderDeliverAt], 10, 64); perr == nil {
			if wait := time.Until(time.Unix(deliverAt, 0)); wait > 0 {
				select {
				case <-ctx.Done():
					// Uncommitted, redelivered after restart.
					return
				case <-time.After(wait):
				}
			}
		}

		delete(headers, HeaderDeliverAt)
		delete(headers, HeaderTargetTopic)

		if err := f.queue.producer.Send(ctx, target, string(msg.Key), msg.Value, headers); err != nil {
			log.Errorw("delayed task forward failed", "slot", slot, "taskId", headers[HeaderTaskId], "error", err)
			// Leave uncommitted so the broker redelivers.
			continue
		}
		if err := consumer.CommitMessage(msg); err != nil {
			log.Warnw("delay slot commit failed", "slot", slot, "error", err)
		}
	}
}

// Close closes all slot consumers.
func (f *DelayForwarder) Close() error {
	var firstErr error
	for _, c := range f.consumers {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
