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

// Package daykey computes calendar day keys pinned to a site's fixed UTC
// offset. The operating zones have no DST, so a fixed-offset conversion is
// safe and keeps the logic a pure function of (instant, offset).
package daykey

import (
	"regexp"
	"time"
)

// Layout is the canonical day key layout.
const Layout = "2006-01-02"

// DefaultOffsetMinutes is the default site operating offset (KST, UTC+9).
const DefaultOffsetMinutes = 9 * 60

var dayKeyRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// Day returns the YYYY-MM-DD day key for the given instant at a fixed UTC
// offset in minutes.
func Day(now time.Time, offsetMinutes int) string {
	return now.UTC().Add(time.Duration(offsetMinutes) * time.Minute).Format(Layout)
}

// Today returns the current day key at a fixed UTC offset in minutes.
func Today(offsetMinutes int) string {
	return Day(time.Now(), offsetMinutes)
}

// Valid reports whether s is a well-formed day key.
func Valid(s string) bool {
	if !dayKeyRe.MatchString(s) {
		return false
	}
	_, err := time.Parse(Layout, s)
	return err == nil
}

// NextWindow returns the earliest instant at or after base whose wall clock
// in the fixed-offset zone matches one of the HH:MM windows. With no valid
// windows it returns base unchanged.
func NextWindow(base time.Time, offsetMinutes int, windows []string) time.Time {
	loc := time.FixedZone("site", offsetMinutes*60)
	local := base.In(loc)

	var best time.Time
	for _, w := range windows {
		hm, err := time.Parse("15:04", w)
		if err != nil {
			continue
		}
		cand := time.Date(local.Year(), local.Month(), local.Day(), hm.Hour(), hm.Minute(), 0, 0, loc)
		if cand.Before(base) {
			cand = cand.AddDate(0, 0, 1)
		}
		if best.IsZero() || cand.Before(best) {
			best = cand
		}
	}
	if best.IsZero() {
		return base
	}
	return best
}
