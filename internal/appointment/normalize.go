// SPDX-License-Identifier: Apache-2.0

package appointment

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	ordinalSuffixRE = regexp.MustCompile(`(?i)(\d+)(?:st|nd|rd|th)\b`)
	fourDigitYearRE = regexp.MustCompile(`\b\d{4}\b`)
	absoluteDateRE  = regexp.MustCompile(`(?i)^([a-z]+)\s+(\d{1,2})\s*,?\s*(\d{4})$`)
	clockRE         = regexp.MustCompile(`(?i)^(\d{1,2})(?::(\d{2}))?\s*([ap]m)?$`)
)

// Normalizer converts extracted phrases into ISO dates, 24-hour times and the
// configured timezone.
type Normalizer struct {
	loc         *time.Location
	defaultYear int
}

// NewNormalizer creates a Normalizer. defaultYear is used for absolute dates
// that carry no year of their own.
func NewNormalizer(loc *time.Location, defaultYear int) *Normalizer {
	if loc == nil {
		loc = time.UTC
	}
	return &Normalizer{loc: loc, defaultYear: defaultYear}
}

// Location returns the zone every normalized appointment is stamped with.
func (n *Normalizer) Location() *time.Location {
	return n.loc
}

// Normalize resolves the date and time phrases of e. Phrases that cannot be
// resolved leave the corresponding field nil. Name and department pass
// through unchanged.
func (n *Normalizer) Normalize(e EntitySet, ref time.Time) NormalizedAppointment {
	out := NormalizedAppointment{
		TZ:         n.loc.String(),
		Department: e.Department,
		Name:       e.Name,
	}
	if e.DatePhrase != nil {
		if d, ok := n.NormalizeDate(*e.DatePhrase, ref); ok {
			out.Date = &d
		}
	}
	if e.TimePhrase != nil {
		if t, ok := NormalizeTime(*e.TimePhrase); ok {
			out.Time = &t
		}
	}
	return out
}

// NormalizeVerified normalizes an entity set that passed Check.
func (n *Normalizer) NormalizeVerified(v VerifiedEntities, ref time.Time) NormalizedAppointment {
	return n.Normalize(v.entities, ref)
}

// NormalizeDate returns phrase as YYYY-MM-DD. Relative phrases are resolved
// against ref first; otherwise phrase is parsed as "Month Day[, Year]".
func (n *Normalizer) NormalizeDate(phrase string, ref time.Time) (string, bool) {
	if d, ok := ResolveRelative(phrase, ref); ok {
		return d.Format(time.DateOnly), true
	}
	return n.absoluteDate(phrase)
}

func (n *Normalizer) absoluteDate(phrase string) (string, bool) {
	s := ordinalSuffixRE.ReplaceAllString(strings.TrimSpace(phrase), "$1")
	if !fourDigitYearRE.MatchString(s) {
		s = fmt.Sprintf("%s, %04d", s, n.defaultYear)
	}

	m := absoluteDateRE.FindStringSubmatch(s)
	if m == nil {
		return "", false
	}
	// Month names are matched case-insensitively by time.Parse.
	t, err := time.Parse("January 2 2006", m[1]+" "+m[2]+" "+m[3])
	if err != nil {
		return "", false
	}
	return t.Format(time.DateOnly), true
}

// NormalizeTime converts "<h>[:mm] [am|pm]" into HH:MM. Hours without a
// meridiem are taken as 24-hour values. Out-of-range values report false.
func NormalizeTime(phrase string) (string, bool) {
	m := clockRE.FindStringSubmatch(strings.TrimSpace(phrase))
	if m == nil {
		return "", false
	}
	hour, _ := strconv.Atoi(m[1])
	minute := 0
	if m[2] != "" {
		minute, _ = strconv.Atoi(m[2])
	}
	if minute > 59 {
		return "", false
	}

	switch strings.ToLower(m[3]) {
	case "am":
		if hour < 1 || hour > 12 {
			return "", false
		}
		if hour == 12 {
			hour = 0
		}
	case "pm":
		if hour < 1 || hour > 12 {
			return "", false
		}
		if hour != 12 {
			hour += 12
		}
	default:
		if hour > 23 {
			return "", false
		}
	}
	return fmt.Sprintf("%02d:%02d", hour, minute), true
}
