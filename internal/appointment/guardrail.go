// SPDX-License-Identifier: Apache-2.0

package appointment

import (
	"regexp"
	"strings"
)

// vagueDateRE matches phrases that denote a range of days rather than one day.
var vagueDateRE = regexp.MustCompile(`(?i)next week|this weekend|next month`)

// vagueTimeRE matches periods of the day rather than clock times.
var vagueTimeRE = regexp.MustCompile(`(?i)morning|afternoon|evening|night`)

// genericDepartments are placeholders that do not name a specialty.
var genericDepartments = map[string]bool{
	"doctor":   true,
	"hospital": true,
}

// VerifiedEntities is an EntitySet that passed Check.
type VerifiedEntities struct {
	entities EntitySet
}

// Entities returns the checked entity set.
func (v VerifiedEntities) Entities() EntitySet {
	return v.entities
}

// Check rejects entity sets that cannot be normalized without asking the
// caller. Date is checked before time, time before department; the first
// problem found is returned as a *Failure of kind KindAmbiguousEntity.
// A missing department is not a problem.
func Check(e EntitySet) (VerifiedEntities, error) {
	if e.DatePhrase == nil || vagueDateRE.MatchString(*e.DatePhrase) {
		return VerifiedEntities{}, ambiguous(FieldDate, "Ambiguous date provided.")
	}
	if e.TimePhrase == nil || vagueTimeRE.MatchString(*e.TimePhrase) {
		return VerifiedEntities{}, ambiguous(FieldTime, "Ambiguous time provided.")
	}
	if e.Department != nil && genericDepartments[strings.ToLower(*e.Department)] {
		return VerifiedEntities{}, ambiguous(FieldDepartment, "Ambiguous department provided.")
	}
	return VerifiedEntities{entities: e}, nil
}

func ambiguous(field Field, reason string) *Failure {
	return &Failure{Kind: KindAmbiguousEntity, Field: field, Message: reason}
}
