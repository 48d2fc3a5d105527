// SPDX-License-Identifier: Apache-2.0

package appointment

import (
	"regexp"
	"strings"
	"time"
)

// weekdayIndex numbers weekdays from Monday=0 to Sunday=6.
var weekdayIndex = map[string]int{
	"monday":    0,
	"tuesday":   1,
	"wednesday": 2,
	"thursday":  3,
	"friday":    4,
	"saturday":  5,
	"sunday":    6,
}

var relativeWeekdayRE = regexp.MustCompile(`^(next|this)\s+(monday|tuesday|wednesday|thursday|friday|saturday|sunday)$`)

// ResolveRelative converts "today", "tomorrow", "this <weekday>" and
// "next <weekday>" into a calendar date relative to ref. The returned time is
// midnight UTC on that date. Any other phrase reports false.
//
// "this <weekday>" may be ref itself; "next <weekday>" is always 1 to 7 days
// after ref.
func ResolveRelative(phrase string, ref time.Time) (time.Time, bool) {
	p := strings.ToLower(strings.TrimSpace(phrase))
	day := civilDate(ref)

	switch p {
	case "today":
		return day, true
	case "tomorrow":
		return day.AddDate(0, 0, 1), true
	}

	m := relativeWeekdayRE.FindStringSubmatch(p)
	if m == nil {
		return time.Time{}, false
	}
	current := mondayIndex(day.Weekday())
	target := weekdayIndex[m[2]]

	offset := ((target-current)%7 + 7) % 7
	if m[1] == "next" && offset == 0 {
		offset = 7
	}
	return day.AddDate(0, 0, offset), true
}

// civilDate drops the clock and zone from t, keeping the date as seen in t's location.
func civilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func mondayIndex(w time.Weekday) int {
	return (int(w) + 6) % 7
}
