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

// Package request is a small fasthttp-backed client for external provider
// APIs: query parameters, JSON bodies and JSON result decoding behind a
// builder, with a hard per-request timeout.
package request

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/bytedance/sonic"
	"github.com/valyala/fasthttp"
)

const defaultTimeout = 15 * time.Second

type Request struct {
	method  string
	url     string
	headers map[string]string
	query   map[string]string
	body    []byte
	bodyErr error
	result  any
	timeout time.Duration
}

// Get starts a GET request builder.
func Get(rawURL string) *Request {
	return &Request{method: fasthttp.MethodGet, url: rawURL, timeout: defaultTimeout}
}

// Post starts a POST request builder.
func Post(rawURL string) *Request {
	return &Request{method: fasthttp.MethodPost, url: rawURL, timeout: defaultTimeout}
}

// Header sets one request header.
func (r *Request) Header(key, value string) *Request {
	if r.headers == nil {
		r.headers = map[string]string{}
	}
	r.headers[key] = value
	return r
}

// Query merges params into the request's query string.
func (r *Request) Query(params map[string]string) *Request {
	if r.query == nil {
		r.query = map[string]string{}
	}
	for k, v := range params {
		r.query[k] = v
	}
	return r
}

// BodyJSON encodes v as the JSON request body.
func (r *Request) BodyJSON(v any) *Request {
	r.body, r.bodyErr = sonic.Marshal(v)
	return r.Header("Content-Type", "application/json")
}

// Result decodes the response body into v when the response has one.
func (r *Request) Result(v any) *Request {
	r.result = v
	return r
}

// Timeout caps the whole exchange, connect included.
func (r *Request) Timeout(d time.Duration) *Request {
	if d > 0 {
		r.timeout = d
	}
	return r
}

// Do sends the request and returns the response status code. A non-2xx
// status is not an error; callers decide what codes mean for their API.
func (r *Request) Do() (int, error) {
	if r.url == "" {
		return 0, errors.New("request: url is required")
	}
	if r.bodyErr != nil {
		return 0, fmt.Errorf("request: encode body: %w", r.bodyErr)
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.Header.SetMethod(r.method)
	req.SetRequestURI(r.targetURL())
	for k, v := range r.headers {
		req.Header.Set(k, v)
	}
	if len(r.body) > 0 {
		req.SetBody(r.body)
	}

	if err := fasthttp.DoTimeout(req, resp, r.timeout); err != nil {
		return 0, err
	}
	if r.result != nil && len(resp.Body()) > 0 {
		if err := sonic.Unmarshal(resp.Body(), r.result); err != nil {
			return resp.StatusCode(), fmt.Errorf("request: decode result: %w", err)
		}
	}
	return resp.StatusCode(), nil
}

func (r *Request) targetURL() string {
	if len(r.query) == 0 {
		return r.url
	}
	parsed, err := url.Parse(r.url)
	if err != nil {
		return r.url
	}
	values := parsed.Query()
	for k, v := range r.query {
		values.Set(k, v)
	}
	parsed.RawQuery = values.Encode()
	return parsed.String()
}
