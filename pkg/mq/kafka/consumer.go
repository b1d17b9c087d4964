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

package kafka

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
)

// ConsumerConfig extends the shared config with read-path settings.
type ConsumerConfig struct {
	Config `mapstructure:",squash"`

	AutoOffsetReset   string `mapstructure:"autoOffsetReset"`
	EnableAutoCommit  *bool  `mapstructure:"enableAutoCommit"`
	SessionTimeoutMs  int    `mapstructure:"sessionTimeoutMs"`
	MaxPollIntervalMs int    `mapstructure:"maxPollIntervalMs"`
}

func (cfg *ConsumerConfig) setDefaults() {
	if cfg.AutoOffsetReset == "" {
		cfg.AutoOffsetReset = "earliest"
	}
	if cfg.SessionTimeoutMs == 0 {
		cfg.SessionTimeoutMs = 10000
	}
	if cfg.MaxPollIntervalMs == 0 {
		cfg.MaxPollIntervalMs = 300000
	}
}

// ConsumerOption tweaks the consumer config.
type ConsumerOption func(*ConsumerConfig)

func WithConsumerClientOptions(opts ...ClientOption) ConsumerOption {
	return func(cfg *ConsumerConfig) {
		for _, opt := range opts {
			opt(&cfg.Config)
		}
	}
}

func WithConsumerAutoOffsetReset(reset string) ConsumerOption {
	return func(cfg *ConsumerConfig) { cfg.AutoOffsetReset = reset }
}

func WithConsumerEnableAutoCommit(enable bool) ConsumerOption {
	return func(cfg *ConsumerConfig) { cfg.EnableAutoCommit = &enable }
}

func WithConsumerSessionTimeoutMs(timeoutMs int) ConsumerOption {
	return func(cfg *ConsumerConfig) { cfg.SessionTimeoutMs = timeoutMs }
}

func WithConsumerMaxPollIntervalMs(intervalMs int) ConsumerOption {
	return func(cfg *ConsumerConfig) { cfg.MaxPollIntervalMs = intervalMs }
}

// Consumer reads one topic inside a consumer group. The group is derived
// from program and topic, so every worker process for a lane shares one
// group while different programs never steal each other's offsets.
type Consumer struct {
	consumer *kafka.Consumer
	topic    string
}

func NewConsumer(bootstrapServers string, topic string, program string, opts ...ConsumerOption) (*Consumer, error) {
	if topic == "" {
		return nil, errors.New("kafka: topic is required")
	}
	if program == "" {
		return nil, errors.New("kafka: program name is required")
	}
	cfg := ConsumerConfig{Config: Config{BootstrapServers: bootstrapServers}}
	for _, opt := range opts {
		opt(&cfg)
	}
	cfg.setDefaults()

	cm, err := buildConfigMap(cfg.Config)
	if err != nil {
		return nil, err
	}
	clientId := cfg.ClientId
	if clientId == "" {
		if clientId, err = instanceId(program); err != nil {
			return nil, err
		}
	}
	autoCommit := true
	if cfg.EnableAutoCommit != nil {
		autoCommit = *cfg.EnableAutoCommit
	}
	_ = cm.SetKey("client.id", clientId)
	_ = cm.SetKey("group.id", groupId(program, topic))
	_ = cm.SetKey("auto.offset.reset", cfg.AutoOffsetReset)
	_ = cm.SetKey("enable.auto.commit", autoCommit)
	_ = cm.SetKey("session.timeout.ms", cfg.SessionTimeoutMs)
	_ = cm.SetKey("max.poll.interval.ms", cfg.MaxPollIntervalMs)

	c, err := kafka.NewConsumer(cm)
	if err != nil {
		return nil, fmt.Errorf("kafka: create consumer: %w", err)
	}
	return &Consumer{consumer: c, topic: topic}, nil
}

func groupId(program, topic string) string {
	return strings.ToLower(fmt.Sprintf("%s.%s", strings.TrimSpace(program), strings.TrimSpace(topic)))
}

// Subscribe joins the group. Without arguments it subscribes the configured
// topic; explicit topics let one group span several lanes.
func (c *Consumer) Subscribe(topics ...string) error {
	if c == nil || c.consumer == nil {
		return errors.New("kafka: consumer is not initialized")
	}
	if len(topics) == 0 {
		topics = []string{c.topic}
	}
	return c.consumer.SubscribeTopics(topics, nil)
}

// ReadMessage polls for the next message, returning a timeout error when
// none arrives within the window.
func (c *Consumer) ReadMessage(timeout time.Duration) (*kafka.Message, error) {
	if c == nil || c.consumer == nil {
		return nil, errors.New("kafka: consumer is not initialized")
	}
	return c.consumer.ReadMessage(timeout)
}

// CommitMessage marks the message processed. With auto-commit off this is
// the at-least-once boundary: a crash before commit redelivers.
func (c *Consumer) CommitMessage(msg *kafka.Message) error {
	if c == nil || c.consumer == nil {
		return errors.New("kafka: consumer is not initialized")
	}
	if msg == nil {
		return errors.New("kafka: message is required")
	}
	_, err := c.consumer.CommitMessage(msg)
	return err
}

func (c *Consumer) Close() error {
	if c == nil || c.consumer == nil {
		return nil
	}
	return c.consumer.Close()
}
