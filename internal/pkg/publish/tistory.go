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

package publish

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-resty/resty/v2"

	"github.com/pressline/pressline/pkg/taskqueue"
)

const (
	defaultTistoryEndpoint = "https://www.tistory.com/apis/post/write"

	// 0 private, 1 protected, 3 public.
	defaultTistoryVisibility = 3
)

type tistoryEnvelope struct {
	Tistory struct {
		Status       string `json:"status"`
		ErrorMessage string `json:"error_message"`
		PostId       string `json:"postId"`
		Post         struct {
			Id string `json:"id"`
		} `json:"post"`
	} `json:"tistory"`
}

// TistoryPublisher posts via the Tistory write API.
type TistoryPublisher struct {
	client      *resty.Client
	endpoint    string
	accessToken string
}

// TistoryOption configures a TistoryPublisher.
type TistoryOption func(*TistoryPublisher)

// WithTistoryEndpoint overrides the API endpoint.
func WithTistoryEndpoint(endpoint string) TistoryOption {
	return func(p *TistoryPublisher) { p.endpoint = endpoint }
}

func NewTistoryPublisher(accessToken string, opts ...TistoryOption) *TistoryPublisher {
	client := resty.New()
	client.SetTimeout(30 * time.Second)
	client.SetRedirectPolicy(resty.FlexibleRedirectPolicy(5))

	p := &TistoryPublisher{
		client:      client,
		endpoint:    defaultTistoryEndpoint,
		accessToken: accessToken,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func truncateBody(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

// Publish posts one article. Platform rejections are non-retryable: the
// same payload would be rejected again.
func (p *TistoryPublisher) Publish(ctx context.Context, req Request) (Result, error) {
	if req.BlogName == "" {
		return Result{}, taskqueue.NonRetryable("missing_tistory_blog_name")
	}
	visibility := req.Visibility
	if visibility == 0 {
		visibility = defaultTistoryVisibility
	}

	form := map[string]string{
		"access_token": p.accessToken,
		"output":       "json",
		"blogName":     req.BlogName,
		"title":        req.Title,
		"content":      req.HTML,
		"visibility":   strconv.Itoa(visibility),
	}
	if req.Category != "" {
		form["category"] = req.Category
	}

	resp, err := p.client.R().
		SetContext(ctx).
		SetFormData(form).
		Post(p.endpoint)
	if err != nil {
		return Result{}, fmt.Errorf("tistory request failed: %w", err)
	}

	body := resp.String()
	if resp.StatusCode() != 200 {
		return Result{}, taskqueue.NonRetryable(
			fmt.Sprintf("tistory_http_%d:%s", resp.StatusCode(), truncateBody(body, 200)))
	}

	var envelope tistoryEnvelope
	_ = sonic.UnmarshalString(body, &envelope)
	if status := envelope.Tistory.Status; status != "" && status != "200" {
		return Result{}, taskqueue.NonRetryable(
			fmt.Sprintf("tistory_status_%s:%s", status, truncateBody(envelope.Tistory.ErrorMessage, 200)))
	}

	postId := envelope.Tistory.PostId
	if postId == "" {
		postId = envelope.Tistory.Post.Id
	}
	return Result{OK: true, Provider: ProviderTistory, PostId: postId}, nil
}
