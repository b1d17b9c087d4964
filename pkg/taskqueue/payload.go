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

package taskqueue

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/bytedance/sonic"

	"github.com/pressline/pressline/pkg/daykey"
)

// SchemaVersion is the only payload schema the router accepts.
const SchemaVersion = "1.0"

// MaxRetryCount caps the business retry policy: one retry, ever.
const MaxRetryCount = 1

// NonRetryablePrefix marks a handler error as permanent. The router never
// schedules a retry for an error whose message starts with this prefix.
const NonRetryablePrefix = "NON_RETRYABLE:"

// MaxRunTagLen and MaxRunReasonLen bound the manual-rerun annotations.
const (
	MaxRunTagLen    = 24
	MaxRunReasonLen = 120
)

var runTagRe = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// Payload is the envelope every queued task carries. The base fields are
// always set; the variant fields are required per kind (KeywordId for the
// keyword-driven kinds, ArticleId for the article-driven kinds).
type Payload struct {
	SchemaVersion  string `json:"schemaVersion"`
	TaskType       string `json:"taskType"`
	SiteId         string `json:"siteId"`
	TraceId        string `json:"traceId"`
	IdempotencyKey string `json:"idempotencyKey"`
	CreatedAt      string `json:"createdAt"`
	RequestedByUid string `json:"requestedByUid"`
	RetryCount     int    `json:"retryCount"`
	RunDate        string `json:"runDate"`

	KeywordId    string `json:"keywordId,omitempty"`
	ArticleId    string `json:"articleId,omitempty"`
	ScheduledAt  string `json:"scheduledAt,omitempty"`
	WeekKey      string `json:"weekKey,omitempty"`
	QaFixAttempt int    `json:"qaFixAttempt,omitempty"`
	ScheduleSlot int    `json:"scheduleSlot,omitempty"`
	OpsSmoke     bool   `json:"opsSmoke,omitempty"`
	RunTag       string `json:"runTag,omitempty"`
	RunReason    string `json:"runReason,omitempty"`
}

var keywordKinds = map[string]bool{
	TaskTitleGenerate:   true,
	TaskArticleGenerate: true,
}

var articleKinds = map[string]bool{
	TaskBodyGenerate:   true,
	TaskArticleQA:      true,
	TaskArticleQAFix:   true,
	TaskTopcardRender:  true,
	TaskImageGenerate:  true,
	TaskArticlePackage: true,
	TaskPublishExecute: true,
}

// Validate checks the envelope against the payload schema.
func (p *Payload) Validate() error {
	if p == nil {
		return errors.New("payload is nil")
	}
	if p.SchemaVersion != SchemaVersion {
		return fmt.Errorf("unsupported schema version %q", p.SchemaVersion)
	}
	if !KnownKind(p.TaskType) {
		return fmt.Errorf("unknown task type %q", p.TaskType)
	}
	if p.SiteId == "" {
		return errors.New("siteId is required")
	}
	if p.TraceId == "" {
		return errors.New("traceId is required")
	}
	if p.IdempotencyKey == "" {
		return errors.New("idempotencyKey is required")
	}
	if !daykey.Valid(p.RunDate) {
		return fmt.Errorf("runDate %q is not a day key", p.RunDate)
	}
	if p.RetryCount < 0 || p.RetryCount > MaxRetryCount {
		return fmt.Errorf("retryCount %d out of range", p.RetryCount)
	}
	if keywordKinds[p.TaskType] && p.KeywordId == "" {
		return fmt.Errorf("%s requires keywordId", p.TaskType)
	}
	if articleKinds[p.TaskType] && p.ArticleId == "" {
		return fmt.Errorf("%s requires articleId", p.TaskType)
	}
	if p.RunTag != "" {
		if len(p.RunTag) > MaxRunTagLen || !runTagRe.MatchString(p.RunTag) {
			return fmt.Errorf("runTag %q is malformed", p.RunTag)
		}
	}
	if len(p.RunReason) > MaxRunReasonLen {
		return fmt.Errorf("runReason exceeds %d chars", MaxRunReasonLen)
	}
	return nil
}

// AttemptCount is the 1-based attempt number recorded on the run ledger.
func (p *Payload) AttemptCount() int {
	return p.RetryCount + 1
}

// CleanRunTag returns the run tag only when well formed, empty otherwise.
// Malformed tags on foreign payloads are ignored rather than rejected.
func (p *Payload) CleanRunTag() string {
	s := strings.TrimSpace(p.RunTag)
	if len(s) > MaxRunTagLen {
		s = s[:MaxRunTagLen]
	}
	if s == "" || !runTagRe.MatchString(s) {
		return ""
	}
	return s
}

// Successor derives a follow-up payload for the next pipeline stage. Base
// routing fields carry over unchanged, including the retry count: the
// successor belongs to the same logical run.
func (p *Payload) Successor(taskType, idempotencyKey string) *Payload {
	next := *p
	next.TaskType = taskType
	next.IdempotencyKey = idempotencyKey
	next.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	return &next
}

// Retry derives the single allowed retry payload: same idempotency key,
// retry count bumped.
func (p *Payload) Retry() *Payload {
	next := *p
	next.RetryCount = p.RetryCount + 1
	next.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	return &next
}

// Marshal encodes the payload for transport.
func (p *Payload) Marshal() ([]byte, error) {
	return sonic.Marshal(p)
}

// Unmarshal decodes a transported payload.
func Unmarshal(data []byte) (*Payload, error) {
	var p Payload
	if err := sonic.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// NonRetryable wraps reason as a permanent error.
func NonRetryable(reason string) error {
	return errors.New(NonRetryablePrefix + reason)
}

// IsNonRetryable reports whether err carries the permanent-error prefix.
func IsNonRetryable(err error) bool {
	return err != nil && strings.HasPrefix(err.Error(), NonRetryablePrefix)
}

// ErrorCode extracts the short error code recorded on failure rows: the
// first colon-delimited segment, with the non-retryable prefix stripped.
func ErrorCode(errText string) string {
	s := strings.TrimSpace(errText)
	if s == "" {
		return ""
	}
	if strings.HasPrefix(s, NonRetryablePrefix) {
		rest := strings.TrimPrefix(s, NonRetryablePrefix)
		if code := strings.TrimSpace(strings.SplitN(rest, ":", 2)[0]); code != "" {
			return code
		}
		return "NON_RETRYABLE"
	}
	if code := strings.TrimSpace(strings.SplitN(s, ":", 2)[0]); code != "" {
		return code
	}
	return "UNKNOWN"
}
