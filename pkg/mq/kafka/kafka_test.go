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
	"strings"
	"testing"
)

func TestBuildConfigMapRequiresBootstrap(t *testing.T) {
	if _, err := buildConfigMap(Config{}); err == nil {
		t.Fatal("expected error for empty bootstrapServers")
	}
}

func TestBuildConfigMapAuthKeys(t *testing.T) {
	cfg := Config{BootstrapServers: "broker:9092"}
	WithSecurityProtocol("SASL_SSL")(&cfg)
	WithSasl("PLAIN", "user", "pass")(&cfg)
	WithTls("ca.pem", "cert.pem", "key.pem", "secret")(&cfg)

	cm, err := buildConfigMap(cfg)
	if err != nil {
		t.Fatalf("buildConfigMap: %v", err)
	}
	for key, want := range map[string]string{
		"bootstrap.servers":        "broker:9092",
		"security.protocol":        "SASL_SSL",
		"sasl.mechanism":           "PLAIN",
		"sasl.username":            "user",
		"sasl.password":            "pass",
		"ssl.ca.location":          "ca.pem",
		"ssl.certificate.location": "cert.pem",
		"ssl.key.location":         "key.pem",
		"ssl.key.password":         "secret",
	} {
		got, err := cm.Get(key, nil)
		if err != nil || got != want {
			t.Errorf("%s = %v (err=%v), want %s", key, got, err, want)
		}
	}
}

func TestBuildConfigMapOmitsUnsetAuth(t *testing.T) {
	cm, err := buildConfigMap(Config{BootstrapServers: "broker:9092"})
	if err != nil {
		t.Fatalf("buildConfigMap: %v", err)
	}
	for _, key := range []string{"security.protocol", "sasl.mechanism", "ssl.ca.location"} {
		if got, _ := cm.Get(key, nil); got != nil {
			t.Errorf("%s set to %v for a plaintext config", key, got)
		}
	}
}

func TestProducerConfigDefaults(t *testing.T) {
	cfg := ProducerConfig{}
	cfg.setDefaults()
	if cfg.Acks != "all" || cfg.Retries != 3 || cfg.Compression != "snappy" {
		t.Fatalf("defaults = %q/%d/%q", cfg.Acks, cfg.Retries, cfg.Compression)
	}

	cfg = ProducerConfig{}
	WithProducerAcks("1")(&cfg)
	WithProducerRetries(5)(&cfg)
	WithProducerCompression("gzip")(&cfg)
	cfg.setDefaults()
	if cfg.Acks != "1" || cfg.Retries != 5 || cfg.Compression != "gzip" {
		t.Fatalf("options overridden by defaults: %q/%d/%q", cfg.Acks, cfg.Retries, cfg.Compression)
	}
}

func TestConsumerConfigDefaults(t *testing.T) {
	cfg := ConsumerConfig{}
	cfg.setDefaults()
	if cfg.AutoOffsetReset != "earliest" || cfg.SessionTimeoutMs != 10000 || cfg.MaxPollIntervalMs != 300000 {
		t.Fatalf("defaults = %q/%d/%d", cfg.AutoOffsetReset, cfg.SessionTimeoutMs, cfg.MaxPollIntervalMs)
	}

	cfg = ConsumerConfig{}
	WithConsumerClientOptions(WithClientId("worker-1"))(&cfg)
	WithConsumerEnableAutoCommit(false)(&cfg)
	WithConsumerMaxPollIntervalMs(600000)(&cfg)
	if cfg.ClientId != "worker-1" {
		t.Errorf("ClientId = %q", cfg.ClientId)
	}
	if cfg.EnableAutoCommit == nil || *cfg.EnableAutoCommit {
		t.Errorf("EnableAutoCommit = %v, want false", cfg.EnableAutoCommit)
	}
	if cfg.MaxPollIntervalMs != 600000 {
		t.Errorf("MaxPollIntervalMs = %d", cfg.MaxPollIntervalMs)
	}
}

func TestGroupId(t *testing.T) {
	if got := groupId("Worker", "PRESSLINE_TASKS_LIGHT"); got != "worker.pressline_tasks_light" {
		t.Fatalf("groupId = %q", got)
	}
}

func TestInstanceId(t *testing.T) {
	if _, err := instanceId(""); err == nil {
		t.Fatal("expected error for empty name")
	}
	id, err := instanceId("Worker")
	if err != nil {
		t.Fatalf("instanceId: %v", err)
	}
	if !strings.HasPrefix(id, "worker@") {
		t.Fatalf("instanceId = %q, want worker@<host>", id)
	}
}
