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

package daykey

import (
	"testing"
	"time"
)

func TestDay(t *testing.T) {
	cases := []struct {
		name   string
		utc    string
		offset int
		want   string
	}{
		{"utc midnight kst", "2026-03-01T15:00:00Z", DefaultOffsetMinutes, "2026-03-02"},
		{"just before kst midnight", "2026-03-01T14:59:59Z", DefaultOffsetMinutes, "2026-03-01"},
		{"zero offset", "2026-03-01T23:59:59Z", 0, "2026-03-01"},
		{"negative offset", "2026-03-01T02:00:00Z", -5 * 60, "2026-02-28"},
		{"year boundary", "2025-12-31T15:00:00Z", DefaultOffsetMinutes, "2026-01-01"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			now, err := time.Parse(time.RFC3339, c.utc)
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			if got := Day(now, c.offset); got != c.want {
				t.Errorf("Day(%s, %d) = %s, want %s", c.utc, c.offset, got, c.want)
			}
		})
	}
}

func TestValid(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"2026-03-01", true},
		{"2026-3-01", false},
		{"2026-13-01", false},
		{"2026-02-30", false},
		{"", false},
		{"2026-03-01T00:00:00Z", false},
	}
	for _, c := range cases {
		if got := Valid(c.in); got != c.want {
			t.Errorf("Valid(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestNextWindow(t *testing.T) {
	base, _ := time.Parse(time.RFC3339, "2026-03-01T01:30:00Z") // 10:30 KST

	got := NextWindow(base, DefaultOffsetMinutes, []string{"09:00", "13:00", "19:00"})
	want, _ := time.Parse(time.RFC3339, "2026-03-01T04:00:00Z") // 13:00 KST
	if !got.Equal(want) {
		t.Errorf("NextWindow = %s, want %s", got, want)
	}

	// All windows earlier than base roll to the next day.
	got = NextWindow(base, DefaultOffsetMinutes, []string{"09:00"})
	want, _ = time.Parse(time.RFC3339, "2026-03-02T00:00:00Z") // next day 09:00 KST
	if !got.Equal(want) {
		t.Errorf("NextWindow rollover = %s, want %s", got, want)
	}

	// No usable windows returns base.
	if got := NextWindow(base, DefaultOffsetMinutes, []string{"bogus"}); !got.Equal(base) {
		t.Errorf("NextWindow with bad windows = %s, want base", got)
	}
}
