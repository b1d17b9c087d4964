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

// Package kafka wraps the confluent client with the small surface the task
// queue needs: a delivery-confirmed producer and a manual-commit consumer.
package kafka

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
)

// Config carries the connection settings shared by producers and consumers.
type Config struct {
	BootstrapServers string     `mapstructure:"bootstrapServers"`
	ClientId         string     `mapstructure:"clientId"`
	SecurityProtocol string     `mapstructure:"securityProtocol"`
	Sasl             SaslConfig `mapstructure:"sasl"`
	Tls              TlsConfig  `mapstructure:"tls"`
}

type SaslConfig struct {
	Mechanism string `mapstructure:"mechanism"`
	Username  string `mapstructure:"username"`
	Password  string `mapstructure:"password"`
}

type TlsConfig struct {
	CaFile      string `mapstructure:"caFile"`
	CertFile    string `mapstructure:"certFile"`
	KeyFile     string `mapstructure:"keyFile"`
	KeyPassword string `mapstructure:"keyPassword"`
}

// ClientOption tweaks the shared connection config.
type ClientOption func(*Config)

func WithClientId(clientId string) ClientOption {
	return func(cfg *Config) { cfg.ClientId = clientId }
}

func WithSecurityProtocol(protocol string) ClientOption {
	return func(cfg *Config) { cfg.SecurityProtocol = protocol }
}

func WithSasl(mechanism, username, password string) ClientOption {
	return func(cfg *Config) {
		cfg.Sasl = SaslConfig{Mechanism: mechanism, Username: username, Password: password}
	}
}

func WithTls(caFile, certFile, keyFile, keyPassword string) ClientOption {
	return func(cfg *Config) {
		cfg.Tls = TlsConfig{CaFile: caFile, CertFile: certFile, KeyFile: keyFile, KeyPassword: keyPassword}
	}
}

// buildConfigMap translates the shared config into librdkafka keys. Auth
// keys are set only when configured so a plaintext dev broker works with a
// bare bootstrap address.
func buildConfigMap(cfg Config) (*kafka.ConfigMap, error) {
	if cfg.BootstrapServers == "" {
		return nil, errors.New("kafka: bootstrapServers is required")
	}
	cm := &kafka.ConfigMap{
		"bootstrap.servers": cfg.BootstrapServers,
	}
	if cfg.SecurityProtocol != "" {
		_ = cm.SetKey("security.protocol", cfg.SecurityProtocol)
	}
	if cfg.Sasl.Mechanism != "" {
		_ = cm.SetKey("sasl.mechanism", cfg.Sasl.Mechanism)
		_ = cm.SetKey("sasl.username", cfg.Sasl.Username)
		_ = cm.SetKey("sasl.password", cfg.Sasl.Password)
	}
	if cfg.Tls.CaFile != "" {
		_ = cm.SetKey("ssl.ca.location", cfg.Tls.CaFile)
	}
	if cfg.Tls.CertFile != "" {
		_ = cm.SetKey("ssl.certificate.location", cfg.Tls.CertFile)
		_ = cm.SetKey("ssl.key.location", cfg.Tls.KeyFile)
		_ = cm.SetKey("ssl.key.password", cfg.Tls.KeyPassword)
	}
	return cm, nil
}

// instanceId tags this process so broker-side logs identify which engine
// instance holds a connection.
func instanceId(name string) (string, error) {
	if name == "" {
		return "", errors.New("kafka: client name is required")
	}
	hostname, err := os.Hostname()
	if err != nil || strings.TrimSpace(hostname) == "" {
		hostname = "unknown"
	}
	return fmt.Sprintf("%s@%s", strings.ToLower(name), strings.ToLower(hostname)), nil
}
