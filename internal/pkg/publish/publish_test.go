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
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pressline/pressline/pkg/taskqueue"
)

func TestStubPublisher(t *testing.T) {
	got, err := StubPublisher{}.Publish(context.Background(), Request{Title: "t"})
	if err != nil {
		t.Fatalf("stub publish: %v", err)
	}
	if !got.OK || got.Provider != ProviderStub {
		t.Errorf("result = %+v", got)
	}
}

func TestDisabledPublisherIsNonRetryable(t *testing.T) {
	_, err := DisabledPublisher{}.Publish(context.Background(), Request{})
	if !taskqueue.IsNonRetryable(err) {
		t.Errorf("disabled publish error = %v, want non-retryable", err)
	}
}

func TestNewPublisher(t *testing.T) {
	if _, err := NewPublisher(ProviderTistory, ""); !taskqueue.IsNonRetryable(err) {
		t.Errorf("tistory without token = %v, want non-retryable", err)
	}
	if _, err := NewPublisher("naver-direct", "x"); err == nil {
		t.Error("unknown provider should error")
	}
	if p, err := NewPublisher(ProviderStub, ""); err != nil || p == nil {
		t.Errorf("stub provider: %v", err)
	}
}

func TestTistoryPublisher(t *testing.T) {
	tests := []struct {
		name         string
		status       int
		body         string
		wantPostId   string
		nonRetryable bool
	}{
		{"success with postId", 200, `{"tistory":{"status":"200","postId":"77"}}`, "77", false},
		{"success with nested post id", 200, `{"tistory":{"status":"200","post":{"id":"88"}}}`, "88", false},
		{"platform error status", 200, `{"tistory":{"status":"403","error_message":"denied"}}`, "", true},
		{"http error", 500, `boom`, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotForm map[string]string
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_ = r.ParseForm()
				gotForm = map[string]string{
					"blogName":   r.PostFormValue("blogName"),
					"visibility": r.PostFormValue("visibility"),
					"output":     r.PostFormValue("output"),
				}
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			p := NewTistoryPublisher("token", WithTistoryEndpoint(srv.URL))
			got, err := p.Publish(context.Background(), Request{BlogName: "myblog", Title: "t", HTML: "<p>x</p>"})

			if tt.nonRetryable {
				if !taskqueue.IsNonRetryable(err) {
					t.Fatalf("err = %v, want non-retryable", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("publish: %v", err)
			}
			if got.PostId != tt.wantPostId {
				t.Errorf("postId = %q, want %q", got.PostId, tt.wantPostId)
			}
			if gotForm["blogName"] != "myblog" || gotForm["visibility"] != "3" || gotForm["output"] != "json" {
				t.Errorf("form = %v", gotForm)
			}
		})
	}
}

func TestTistoryPublisherRequiresBlogName(t *testing.T) {
	p := NewTistoryPublisher("token")
	if _, err := p.Publish(context.Background(), Request{Title: "t", HTML: "x"}); !taskqueue.IsNonRetryable(err) {
		t.Errorf("missing blog name = %v, want non-retryable", err)
	}
}
