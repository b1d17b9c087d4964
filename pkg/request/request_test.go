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

package request

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

type echoResp struct {
	Message string `json:"message"`
	Echo    string `json:"echo,omitempty"`
}

func TestGetDecodesResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("q") != "자동차" || r.URL.Query().Get("page") != "2" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"message":"ok"}`))
	}))
	defer srv.Close()

	var out echoResp
	status, err := Get(srv.URL).
		Query(map[string]string{"q": "자동차", "page": "2"}).
		Result(&out).
		Do()
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if status != http.StatusOK || out.Message != "ok" {
		t.Fatalf("status = %d message = %q", status, out.Message)
	}
}

func TestPostSendsJSONBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if got := r.Header.Get("Content-Type"); got != "application/json" {
			t.Errorf("Content-Type = %q", got)
		}
		if got := r.Header.Get("X-Api-Key"); got != "k" {
			t.Errorf("X-Api-Key = %q", got)
		}
		body, _ := io.ReadAll(r.Body)
		if !strings.Contains(string(body), `"foo":"bar"`) {
			t.Errorf("body = %s", body)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"message":"ok"}`))
	}))
	defer srv.Close()

	status, err := Post(srv.URL).
		BodyJSON(map[string]string{"foo": "bar"}).
		Header("X-Api-Key", "k").
		Do()
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
}

func TestNonOKStatusIsNotError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	status, err := Get(srv.URL).Do()
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if status != http.StatusTooManyRequests {
		t.Fatalf("status = %d", status)
	}
}

func TestMissingURL(t *testing.T) {
	if _, err := Get("").Do(); err == nil {
		t.Fatal("expected error for empty url")
	}
}

func TestQueryMergesIntoExisting(t *testing.T) {
	r := Get("https://example.com/api?kept=1").Query(map[string]string{"added": "2"})
	target := r.targetURL()
	for _, want := range []string{"kept=1", "added=2"} {
		if !strings.Contains(target, want) {
			t.Errorf("targetURL %q missing %q", target, want)
		}
	}
}
