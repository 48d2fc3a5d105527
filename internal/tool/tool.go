// SPDX-License-Identifier: Apache-2.0

// Package tool exposes the appointment pipeline as MCP tools. Each tool has a
// Metadata variable describing it and a typed handler on Toolset.
package tool

import (
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/NarenAdithya14/ocr-appointments/internal/appointment"
	"github.com/NarenAdithya14/ocr-appointments/internal/intake"
)

// Toolset holds the dependencies shared by the tool handlers.
type Toolset struct {
	pipeline *appointment.Pipeline
	intake   *intake.Service
}

// New creates a Toolset. Submissions go through svc; the partial-pipeline
// tools call p directly.
func New(p *appointment.Pipeline, svc *intake.Service) *Toolset {
	return &Toolset{pipeline: p, intake: svc}
}

var referenceDateProperty = map[string]interface{}{
	"type":        "string",
	"description": "Date that relative phrases such as \"tomorrow\" or \"next friday\" are resolved against, as YYYY-MM-DD. Defaults to today in the service timezone.",
	"pattern":     `^\d{4}-\d{2}-\d{2}$`,
}

var entityProperties = map[string]interface{}{
	"name": map[string]interface{}{
		"type":        "string",
		"description": "Person the appointment is with",
	},
	"date_phrase": map[string]interface{}{
		"type":        "string",
		"description": "Date phrase as extracted, e.g. \"next friday\" or \"march 10th\"",
	},
	"time_phrase": map[string]interface{}{
		"type":        "string",
		"description": "Time phrase as extracted, e.g. \"3 pm\" or \"14:30\"",
	},
	"department": map[string]interface{}{
		"type":        "string",
		"description": "Department label, e.g. \"Dentistry\"",
	},
}

// parseReferenceDate reads an optional YYYY-MM-DD date in the pipeline's
// timezone. An empty string yields the zero time.
func (ts *Toolset) parseReferenceDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	ref, err := time.ParseInLocation(time.DateOnly, s, ts.pipeline.Normalizer().Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("reference_date must be YYYY-MM-DD: %w", err)
	}
	return ref, nil
}

// outcome keeps guardrail and extraction rejections in the tool output, where
// the caller can read the status and diagnostics, and reports every other
// error as a tool error.
func outcome(res appointment.Result, err error) (*mcp.CallToolResult, appointment.Result, error) {
	switch appointment.KindOf(err) {
	case appointment.KindAmbiguousEntity, appointment.KindExtractionFailure:
		return nil, res, nil
	}
	if err != nil {
		return nil, appointment.Result{}, err
	}
	return nil, res, nil
}
