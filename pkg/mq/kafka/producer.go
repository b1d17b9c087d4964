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
	"context"
	"errors"
	"fmt"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
)

const flushTimeoutMs = 15000

// ProducerConfig extends the shared config with write-path settings.
type ProducerConfig struct {
	Config `mapstructure:",squash"`

	Acks        string `mapstructure:"acks"`
	Retries     int    `mapstructure:"retries"`
	Compression string `mapstructure:"compression"`
}

func (cfg *ProducerConfig) setDefaults() {
	if cfg.Acks == "" {
		cfg.Acks = "all"
	}
	if cfg.Retries == 0 {
		cfg.Retries = 3
	}
	if cfg.Compression == "" {
		cfg.Compression = "snappy"
	}
}

// ProducerOption tweaks the producer config.
type ProducerOption func(*ProducerConfig)

func WithProducerClientOptions(opts ...ClientOption) ProducerOption {
	return func(cfg *ProducerConfig) {
		for _, opt := range opts {
			opt(&cfg.Config)
		}
	}
}

func WithProducerAcks(acks string) ProducerOption {
	return func(cfg *ProducerConfig) { cfg.Acks = acks }
}

func WithProducerRetries(retries int) ProducerOption {
	return func(cfg *ProducerConfig) { cfg.Retries = retries }
}

func WithProducerCompression(compression string) ProducerOption {
	return func(cfg *ProducerConfig) { cfg.Compression = compression }
}

// Producer publishes task envelopes and waits for broker acknowledgement
// per message. Idempotence is on: broker-side retries cannot duplicate an
// enqueue.
type Producer struct {
	producer *kafka.Producer
}

func NewProducer(bootstrapServers string, name string, opts ...ProducerOption) (*Producer, error) {
	cfg := ProducerConfig{Config: Config{BootstrapServers: bootstrapServers}}
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
		if clientId, err = instanceId(name); err != nil {
			return nil, err
		}
	}
	_ = cm.SetKey("client.id", clientId)
	_ = cm.SetKey("acks", cfg.Acks)
	_ = cm.SetKey("retries", cfg.Retries)
	_ = cm.SetKey("compression.type", cfg.Compression)
	_ = cm.SetKey("enable.idempotence", true)

	p, err := kafka.NewProducer(cm)
	if err != nil {
		return nil, fmt.Errorf("kafka: create producer: %w", err)
	}
	return &Producer{producer: p}, nil
}

// Send publishes one message and blocks until the broker confirms it or ctx
// is done. The key drives partition placement, so per-site ordering holds
// as long as the key carries the site id.
func (p *Producer) Send(ctx context.Context, topic string, key string, value []byte, headers map[string]string) error {
	if p == nil || p.producer == nil {
		return errors.New("kafka: producer is not initialized")
	}
	if topic == "" {
		return errors.New("kafka: topic is required")
	}

	msg := &kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &topic, Partition: kafka.PartitionAny},
		Key:            []byte(key),
		Value:          value,
	}
	for k, v := range headers {
		msg.Headers = append(msg.Headers, kafka.Header{Key: k, Value: []byte(v)})
	}

	delivery := make(chan kafka.Event, 1)
	if err := p.producer.Produce(msg, delivery); err != nil {
		return fmt.Errorf("kafka: produce: %w", err)
	}
	select {
	case ev := <-delivery:
		if m, ok := ev.(*kafka.Message); ok && m.TopicPartition.Error != nil {
			return fmt.Errorf("kafka: deliver: %w", m.TopicPartition.Error)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close flushes buffered messages and releases the client.
func (p *Producer) Close() {
	if p == nil || p.producer == nil {
		return
	}
	p.producer.Flush(flushTimeoutMs)
	p.producer.Close()
}
