// SPDX-License-Identifier: Apache-2.0

// Package extract implements the rule-based text cleanup and entity
// extraction stages of the appointment pipeline.
package extract

import (
	"regexp"
	"strings"

	"github.com/NarenAdithya14/ocr-appointments/internal/appointment"
)

// Matcher is one extraction strategy for a single field.
type Matcher struct {
	Name  string
	Match func(text string) (string, bool)
}

// regexMatcher returns the trimmed submatch group of the first match of re.
func regexMatcher(name string, re *regexp.Regexp, group int) Matcher {
	return Matcher{
		Name: name,
		Match: func(text string) (string, bool) {
			m := re.FindStringSubmatch(text)
			if m == nil {
				return "", false
			}
			v := strings.TrimSpace(m[group])
			return v, v != ""
		},
	}
}

// firstMatch runs matchers in order and returns the first value found.
func firstMatch(matchers []Matcher, text string) *string {
	for _, m := range matchers {
		if v, ok := m.Match(text); ok {
			return &v
		}
	}
	return nil
}

const (
	weekdayAlt = `monday|tuesday|wednesday|thursday|friday|saturday|sunday`
	monthAlt   = `january|february|march|april|may|june|july|august|september|october|november|december`
)

// NameMatchers find "with <Name>" followed by on/at, a comma, or the end of
// the text. They need the case-preserving view of the input.
func NameMatchers() []Matcher {
	return []Matcher{
		regexMatcher("with_name",
			regexp.MustCompile(`\bwith\s+([A-Z][A-Za-z .'\-]*?)(?:\s+(?:on|at)\b|\s*,|\s*$)`), 1),
	}
}

// DateMatchers are tried in order: relative weekday, today/tomorrow, then
// "<Month> <day>[suffix][, year]".
func DateMatchers() []Matcher {
	return []Matcher{
		regexMatcher("relative_weekday",
			regexp.MustCompile(`(?i)\b(?:next|this)\s+(?:`+weekdayAlt+`)\b`), 0),
		regexMatcher("relative_day",
			regexp.MustCompile(`(?i)\b(?:tomorrow|today)\b`), 0),
		regexMatcher("month_day",
			regexp.MustCompile(`(?i)\b(?:`+monthAlt+`)\s+\d{1,2}(?:st|nd|rd|th)?(?:\s*,?\s*\d{4})?\b`), 0),
	}
}

// TimeMatchers are tried in order: "<h>[:mm] am|pm", "at <h>[:mm]", then the
// compact "<h>am|pm".
func TimeMatchers() []Matcher {
	return []Matcher{
		regexMatcher("meridiem",
			regexp.MustCompile(`(?i)\b(\d{1,2}(?::\d{2})?\s+[ap]m|\d{1,2}:\d{2}\s*[ap]m)\b`), 1),
		regexMatcher("at_clock",
			regexp.MustCompile(`(?i)\bat\s+(\d{1,2}(?::\d{2})?)\b`), 1),
		regexMatcher("compact_meridiem",
			regexp.MustCompile(`(?i)\b(\d{1,2}[ap]m)\b`), 1),
	}
}

// RuleExtractor extracts entities with ordered pattern rules. Each field is
// extracted independently and the first matching rule wins.
type RuleExtractor struct {
	names       []Matcher
	dates       []Matcher
	times       []Matcher
	departments *DepartmentTable
}

// NewRuleExtractor creates a RuleExtractor using departments for the
// department field. A nil table selects DefaultDepartments.
func NewRuleExtractor(departments *DepartmentTable) *RuleExtractor {
	if departments == nil {
		departments = DefaultDepartments()
	}
	return &RuleExtractor{
		names:       NameMatchers(),
		dates:       DateMatchers(),
		times:       TimeMatchers(),
		departments: departments,
	}
}

func (x *RuleExtractor) Name() string {
	return "rules"
}

// Extract never fails; fields without a match are nil. The name rule reads
// text.Cased, falling back to text.Raw; all other rules read text.Cleaned.
func (x *RuleExtractor) Extract(text appointment.Text) appointment.EntitySet {
	cased := text.Cased
	if cased == "" {
		cased = text.Raw
	}
	return appointment.EntitySet{
		Name:       firstMatch(x.names, cased),
		DatePhrase: firstMatch(x.dates, text.Cleaned),
		TimePhrase: firstMatch(x.times, text.Cleaned),
		Department: x.departments.Lookup(text.Cleaned),
	}
}
