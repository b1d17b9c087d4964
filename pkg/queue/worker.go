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
	"time"

	ckafka "github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/go-resty/resty/v2"

	"github.com/pressline/pressline/pkg/log"
	mqkafka "github.com/pressline/pressline/pkg/mq/kafka"
	"github.com/pressline/pressline/pkg/taskqueue"
)

// TaskSecretHeader authenticates worker deliveries on the execute endpoint.
const TaskSecretHeader = "X-Task-Secret"

// WorkerConfig configures the delivery worker.
type WorkerConfig struct {
	// ExecuteURL is the router's execute endpoint.
	ExecuteURL string

	// TaskSecret is sent on every delivery.
	TaskSecret string

	// DeliveryTimeout bounds one delivery round trip. Heavy tasks run long,
	// so this must exceed the slowest handler.
	DeliveryTimeout time.Duration
}

// Worker consumes the lane topics and delivers each task to the execute
// endpoint over HTTP. The endpoint returns 200 for every routed task, even
// handled failures, so a non-200 means the delivery itself broke and the
// message is left uncommitted for redelivery.
type Worker struct {
	queue    *KafkaQueue
	config   WorkerConfig
	client   *resty.Client
	consumer *mqkafka.Consumer
}

// NewWorker creates a delivery worker subscribed to both lane topics.
func NewWorker(queue *KafkaQueue, config WorkerConfig) (*Worker, error) {
	if config.ExecuteURL == "" {
		return nil, fmt.Errorf("execute URL is required")
	}
	if config.DeliveryTimeout == 0 {
		config.DeliveryTimeout = 10 * time.Minute
	}

	qcfg := queue.config
	consumer, err := mqkafka.NewConsumer(
		qcfg.BootstrapServers,
		qcfg.TopicPrefix+"_TASKS",
		qcfg.ClientProgram,
		mqkafka.WithConsumerClientOptions(qcfg.ClientOptions...),
		mqkafka.WithConsumerEnableAutoCommit(false),
		mqkafka.WithConsumerMaxPollIntervalMs(int(config.DeliveryTimeout.Milliseconds())+60000),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create worker consumer: %w", err)
	}

	topics := []string{
		queue.LaneTopic(taskqueue.LaneLight),
		queue.LaneTopic(taskqueue.LaneHeavy),
	}
	if err := consumer.Subscribe(topics...); err != nil {
		_ = consumer.Close()
		return nil, fmt.Errorf("failed to subscribe lane topics: %w", err)
	}

	client := resty.New().
		SetTimeout(config.DeliveryTimeout).
		SetHeader("Content-Type", "application/json")

	return &Worker{queue: queue, config: config, client: client, consumer: consumer}, nil
}

// Run delivers tasks until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		msg, err := w.consumer.ReadMessage(500 * time.Millisecond)
		if err != nil {
			var kafkaErr ckafka.Error
			if errors.As(err, &kafkaErr) && kafkaErr.Code() == ckafka.ErrTimedOut {
				continue
			}
			log.Warnw("worker read failed", "error", err)
			continue
		}

		taskId := ""
		for _, h := range msg.Headers {
			if h.Key == HeaderTaskId {
				taskId = string(h.Value)
			}
		}

		if err := w.deliver(ctx, taskId, msg.Value); err != nil {
			log.Errorw("task delivery failed, leaving for redelivery", "taskId", taskId, "error", err)
			continue
		}

		if err := w.consumer.CommitMessage(msg); err != nil {
			log.Warnw("worker commit failed", "taskId", taskId, "error", err)
		}
	}
}

func (w *Worker) deliver(ctx context.Context, taskId string, payload []byte) error {
	resp, err := w.client.R().
		SetContext(ctx).
		SetHeader(TaskSecretHeader, w.config.TaskSecret).
		SetBody(payload).
		Post(w.config.ExecuteURL)
	if err != nil {
		w.recordDelivery(ctx, taskId, QueueStatusFailed, err)
		return err
	}
	if resp.StatusCode() != 200 {
		err := fmt.Errorf("execute endpoint returned %d: %s", resp.StatusCode(), resp.String())
		w.recordDelivery(ctx, taskId, QueueStatusFailed, err)
		return err
	}

	w.recordDelivery(ctx, taskId, QueueStatusDelivered, nil)
	return nil
}

func (w *Worker) recordDelivery(ctx context.Context, taskId string, status QueueStatus, deliveryErr error) {
	if w.queue.config.Recorder == nil || taskId == "" {
		return
	}
	if err := w.queue.config.Recorder.UpdateStatus(ctx, taskId, status, deliveryErr); err != nil {
		log.Warnw("failed to update queue record", "taskId", taskId, "error", err)
	}
}

// Close closes the worker consumer.
func (w *Worker) Close() error {
	return w.consumer.Close()
}
