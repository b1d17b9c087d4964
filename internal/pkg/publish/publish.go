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

// Package publish pushes packaged articles to external blog platforms.
package publish

import (
	"context"
	"fmt"

	"github.com/pressline/pressline/pkg/taskqueue"
)

// Provider names.
const (
	ProviderTistory  = "tistory"
	ProviderStub     = "stub"
	ProviderDisabled = "disabled"
)

// Request is one post to publish.
type Request struct {
	BlogName   string
	Title      string
	HTML       string
	Visibility int
	Category   string
}

// Result is the provider's verdict for one post.
type Result struct {
	OK       bool   `json:"ok"`
	Provider string `json:"provider"`
	PostId   string `json:"postId,omitempty"`
	Note     string `json:"note,omitempty"`
}

// Publisher pushes one post to a blog platform.
type Publisher interface {
	Publish(ctx context.Context, req Request) (Result, error)
}

// StubPublisher succeeds without calling anything. It serves dev and smoke
// runs where no real platform is wired.
type StubPublisher struct{}

func (StubPublisher) Publish(context.Context, Request) (Result, error) {
	return Result{OK: true, Provider: ProviderStub, Note: "stub_publish_execute"}, nil
}

// DisabledPublisher refuses every publish. Production sites without an
// integration land here instead of silently stubbing.
type DisabledPublisher struct{}

func (DisabledPublisher) Publish(context.Context, Request) (Result, error) {
	return Result{}, taskqueue.NonRetryable("publish_provider_disabled")
}

// NewPublisher creates the named provider.
func NewPublisher(provider, accessToken string) (Publisher, error) {
	switch provider {
	case ProviderTistory:
		if accessToken == "" {
			return nil, taskqueue.NonRetryable("missing_tistory_access_token")
		}
		return NewTistoryPublisher(accessToken), nil
	case ProviderStub:
		return StubPublisher{}, nil
	case ProviderDisabled:
		return DisabledPublisher{}, nil
	default:
		return nil, fmt.Errorf("unsupported publish provider: %s", provider)
	}
}
