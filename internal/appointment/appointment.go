// SPDX-License-Identifier: Apache-2.0

// Package appointment turns free text describing a medical appointment request
// into a normalized appointment record. The pipeline is deterministic: noise
// cleanup, rule-based entity extraction, an ambiguity guardrail, and date/time
// normalization against an explicit reference date.
package appointment

// Text carries one input through the cleanup stage.
type Text struct {
	// Raw is the input exactly as received.
	Raw string
	// Cleaned is lowercased with OCR misreads corrected and whitespace collapsed.
	Cleaned string
	// Cased has the same corrections as Cleaned but keeps the original casing.
	Cased string
}

// EntitySet holds the candidate fields pulled out of one input. A nil field
// means the extractor found nothing for it.
type EntitySet struct {
	Name       *string `json:"name"`
	DatePhrase *string `json:"date_phrase"`
	TimePhrase *string `json:"time_phrase"`
	Department *string `json:"department"`
}

// NormalizedAppointment is the result of normalizing an EntitySet. Date and
// Time are nil when their phrases could not be resolved.
type NormalizedAppointment struct {
	Date       *string `json:"date"`
	Time       *string `json:"time"`
	TZ         string  `json:"tz"`
	Department *string `json:"department,omitempty"`
	Name       *string `json:"name,omitempty"`
}

// Appointment is a fully resolved appointment request.
type Appointment struct {
	ID         string  `json:"id"`
	Name       *string `json:"name,omitempty"`
	Department *string `json:"department,omitempty"`
	Date       string  `json:"date"`
	Time       string  `json:"time"`
	TZ         string  `json:"tz"`
}

// Cleaner prepares raw input for extraction.
type Cleaner interface {
	Clean(raw string) Text
}

// Extractor pulls candidate entities out of cleaned text.
type Extractor interface {
	Extract(text Text) EntitySet
	Name() string
}

func ptr(s string) *string {
	return &s
}
