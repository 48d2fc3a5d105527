// SPDX-License-Identifier: Apache-2.0

package appointment

import "sort"

// Draft is an appointment that may still be missing fields, typically the
// state a caller holds after a needs-clarification result.
type Draft struct {
	ID         *string `json:"id,omitempty"`
	Name       *string `json:"name,omitempty"`
	Department *string `json:"department,omitempty"`
	Date       *string `json:"date,omitempty"`
	Time       *string `json:"time,omitempty"`
	TZ         *string `json:"tz,omitempty"`
}

// ClarifyRequest merges caller corrections into a draft.
type ClarifyRequest struct {
	Pipeline    *Diagnostics      `json:"pipeline"`
	Appointment *Draft            `json:"appointment"`
	Corrections map[string]string `json:"corrections"`
}

// ClarifyResult is the merged draft. Complete reports whether the draft now
// passes the appointment schema.
type ClarifyResult struct {
	Status      Status      `json:"status"`
	Pipeline    Diagnostics `json:"pipeline"`
	Appointment Draft       `json:"appointment"`
	Complete    bool        `json:"complete"`
	Ignored     []string    `json:"ignored,omitempty"`
}

// correctable lists the draft fields a correction may overwrite.
var correctable = map[string]func(*Draft) **string{
	"name":       func(d *Draft) **string { return &d.Name },
	"department": func(d *Draft) **string { return &d.Department },
	"date":       func(d *Draft) **string { return &d.Date },
	"time":       func(d *Draft) **string { return &d.Time },
	"tz":         func(d *Draft) **string { return &d.TZ },
}

// Clarify applies corrections to req.Appointment. A pipeline or appointment
// with no fields set counts as missing. Only name, department,
// date, time and tz can be corrected; other keys are reported in Ignored.
// An empty correction clears the field. Values are taken as given and are
// not re-normalized.
func (p *Pipeline) Clarify(req ClarifyRequest) (ClarifyResult, error) {
	if req.Pipeline == nil || req.Appointment == nil ||
		*req.Pipeline == (Diagnostics{}) || *req.Appointment == (Draft{}) {
		return ClarifyResult{}, NewInputError("pipeline and appointment required")
	}

	merged := *req.Appointment
	var ignored []string
	for key, value := range req.Corrections {
		field, ok := correctable[key]
		if !ok {
			ignored = append(ignored, key)
			continue
		}
		if value == "" {
			*field(&merged) = nil
			continue
		}
		*field(&merged) = ptr(value)
	}
	sort.Strings(ignored)

	return ClarifyResult{
		Status:      StatusOK,
		Pipeline:    *req.Pipeline,
		Appointment: merged,
		Complete:    p.schema.Validate(merged) == nil,
		Ignored:     ignored,
	}, nil
}
