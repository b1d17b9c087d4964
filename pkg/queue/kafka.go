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
	"fmt"
	"strconv"
	"time"

	"github.com/pressline/pressline/pkg/log"
	mqkafka "github.com/pressline/pressline/pkg/mq/kafka"
	"github.com/pressline/pressline/pkg/taskqueue"
)

// Message headers used on lane and delay topics.
const (
	HeaderTaskId      = "taskId"
	HeaderTaskType    = "taskType"
	HeaderDeliverAt   = "deliverAt"   // unix seconds
	HeaderTargetTopic = "targetTopic" // lane topic a delayed message forwards to
)

const (
	DefaultDelaySlotCount    = 4
	DefaultDelaySlotDuration = 15 * time.Minute
)

// KafkaQueueConfig configures the durable queue.
type KafkaQueueConfig struct {
	BootstrapServers  string
	TopicPrefix       string
	ClientProgram     string
	DelaySlotCount    int
	DelaySlotDuration time.Duration
	ClientOptions     []mqkafka.ClientOption
	Recorder          Recorder
}

// KafkaQueueOption configures a KafkaQueue.
type KafkaQueueOption interface {
	apply(*KafkaQueueConfig)
}

type kafkaQueueOptionFunc func(*KafkaQueueConfig)

func (f kafkaQueueOptionFunc) apply(c *KafkaQueueConfig) { f(c) }

// WithTopicPrefix sets the topic prefix for lane and delay topics.
func WithTopicPrefix(prefix string) KafkaQueueOption {
	return kafkaQueueOptionFunc(func(c *KafkaQueueConfig) { c.TopicPrefix = prefix })
}

// WithClientProgram sets the Kafka client program name.
func WithClientProgram(program string) KafkaQueueOption {
	return kafkaQueueOptionFunc(func(c *KafkaQueueConfig) { c.ClientProgram = program })
}

// WithDelaySlots sets the delay slot layout.
func WithDelaySlots(count int, duration time.Duration) KafkaQueueOption {
	return kafkaQueueOptionFunc(func(c *KafkaQueueConfig) {
		c.DelaySlotCount = count
		c.DelaySlotDuration = duration
	})
}

// WithClientOptions forwards broker auth options to producer and consumers.
func WithClientOptions(opts ...mqkafka.ClientOption) KafkaQueueOption {
	return kafkaQueueOptionFunc(func(c *KafkaQueueConfig) { c.ClientOptions = opts })
}

// WithRecorder enables enqueue persistence and task-id dedup.
func WithRecorder(recorder Recorder) KafkaQueueOption {
	return kafkaQueueOptionFunc(func(c *KafkaQueueConfig) { c.Recorder = recorder })
}

// KafkaQueue is the durable Queue implementation. Tasks land on one of two
// lane topics; delayed tasks detour through a delay slot topic first.
type KafkaQueue struct {
	producer *mqkafka.Producer
	config   KafkaQueueConfig
}

// NewKafkaQueue creates the durable queue.
func NewKafkaQueue(bootstrapServers string, opts ...KafkaQueueOption) (*KafkaQueue, error) {
	cfg := KafkaQueueConfig{
		BootstrapServers:  bootstrapServers,
		TopicPrefix:       "PRESSLINE",
		ClientProgram:     "pressline",
		DelaySlotCount:    DefaultDelaySlotCount,
		DelaySlotDuration: DefaultDelaySlotDuration,
	}
	for _, opt := range opts {
		opt.apply(&cfg)
	}

	producer, err := mqkafka.NewProducer(
		cfg.BootstrapServers,
		cfg.ClientProgram,
		mqkafka.WithProducerClientOptions(cfg.ClientOptions...),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create producer: %w", err)
	}

	return &KafkaQueue{producer: producer, config: cfg}, nil
}

// LaneTopic returns the topic for a lane.
func (q *KafkaQueue) LaneTopic(lane taskqueue.Lane) string {
	switch lane {
	case taskqueue.LaneHeavy:
		return q.config.TopicPrefix + "_HEAVY"
	default:
		return q.config.TopicPrefix + "_LIGHT"
	}
}

// DelayTopic returns the delay slot topic for slot n (1-based).
func (q *KafkaQueue) DelayTopic(slot int) string {
	return fmt.Sprintf("%s_DELAY_%d", q.config.TopicPrefix, slot)
}

// delaySlotFor picks the smallest slot whose nominal duration covers delay.
func (q *KafkaQueue) delaySlotFor(delay time.Duration) int {
	slot := int((delay + q.config.DelaySlotDuration - 1) / q.config.DelaySlotDuration)
	if slot < 1 {
		slot = 1
	}
	if slot > q.config.DelaySlotCount {
		slot = q.config.DelaySlotCount
	}
	return slot
}

// Enqueue publishes the task. With a recorder configured, a duplicate task
// id returns ErrAlreadyQueued before anything reaches the broker.
func (q *KafkaQueue) Enqueue(ctx context.Context, args *EnqueueArgs) error {
	if args == nil || len(args.Payload) == 0 {
		return fmt.Errorf("enqueue args are required")
	}

	lane := taskqueue.LaneFor(args.TaskType)
	target := q.LaneTopic(lane)

	if q.config.Recorder != nil && args.TaskId != "" {
		var deliverAt *time.Time
		if args.DelaySeconds > 0 {
			t := time.Now().Add(time.Duration(args.DelaySeconds) * time.Second)
			deliverAt = &t
		}
		err := q.config.Recorder.Record(ctx, &QueueRecordModel{
			TaskId:    args.TaskId,
			TaskType:  args.TaskType,
			Lane:      string(lane),
			Payload:   args.Payload,
			DeliverAt: deliverAt,
		})
		if err != nil {
			return err
		}
	}

	headers := map[string]string{
		HeaderTaskId:   args.TaskId,
		HeaderTaskType: args.TaskType,
	}

	topic := target
	if args.DelaySeconds > 0 {
		delay := time.Duration(args.DelaySeconds) * time.Second
		topic = q.DelayTopic(q.delaySlotFor(delay))
		headers[HeaderDeliverAt] = strconv.FormatInt(time.Now().Add(delay).Unix(), 10)
		headers[HeaderTargetTopic] = target
	}

	if err := q.producer.Send(ctx, topic, args.TaskId, args.Payload, headers); err != nil {
		return fmt.Errorf("failed to enqueue task: %w", err)
	}

	log.Infow("task enqueued", "taskId", args.TaskId, "taskType", args.TaskType, "topic", topic, "delaySeconds", args.DelaySeconds)
	return nil
}

// Close flushes and closes the producer.
func (q *KafkaQueue) Close() error {
	q.producer.Close()
	return nil
}
