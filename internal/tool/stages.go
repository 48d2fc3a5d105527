// SPDX-License-Identifier: Apache-2.0

package tool

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/NarenAdithya14/ocr-appointments/internal/appointment"
)

// MetadataExtractEntities describes the extract_entities tool.
var MetadataExtractEntities = &mcp.Tool{
	Name: "extract_entities",
	Description: "Run OCR-noise cleanup and rule-based extraction only. " +
		"Returns the cleaned text and the raw name, date phrase, time phrase and department found in it, " +
		"without the ambiguity check or date normalization. Fields that were not found are null.",
	InputSchema: map[string]interface{}{
		"type":     "object",
		"required": []string{"text"},
		"properties": map[string]interface{}{
			"text": map[string]interface{}{
				"type":        "string",
				"description": "Text to extract from",
			},
		},
	},
}

// InputExtractEntities is the input for the ExtractEntities tool.
type InputExtractEntities struct {
	Text string `json:"text"`
}

// OutputExtractEntities is the output for the ExtractEntities tool.
type OutputExtractEntities struct {
	CleanedText string                `json:"cleaned_text"`
	Entities    appointment.EntitySet `json:"entities"`
}

// ExtractEntities cleans and extracts without checking or normalizing.
func (ts *Toolset) ExtractEntities(_ context.Context, _ *mcp.CallToolRequest, input InputExtractEntities) (*mcp.CallToolResult, OutputExtractEntities, error) {
	if strings.TrimSpace(input.Text) == "" {
		return nil, OutputExtractEntities{}, fmt.Errorf("text is required")
	}
	return nil, OutputExtractEntities{
		CleanedText: ts.pipeline.Clean(input.Text).Cleaned,
		Entities:    ts.pipeline.Extract(input.Text),
	}, nil
}

// MetadataCheckEntities describes the check_entities tool.
var MetadataCheckEntities = &mcp.Tool{
	Name: "check_entities",
	Description: "Apply the ambiguity guardrail to extracted entities. " +
		"Rejects a missing or vague date (\"next week\", \"this weekend\", \"next month\"), " +
		"a missing or period-of-day time (\"morning\", \"evening\") and a generic department " +
		"(\"doctor\", \"hospital\"). Checks run in that order and the first failure is reported.",
	InputSchema: map[string]interface{}{
		"type":       "object",
		"properties": entityProperties,
	},
}

// OutputCheckEntities is the output for the CheckEntities tool.
type OutputCheckEntities struct {
	OK      bool   `json:"ok"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message,omitempty"`
}

// CheckEntities runs the guardrail. A rejection is a normal result, not a tool error.
func (ts *Toolset) CheckEntities(_ context.Context, _ *mcp.CallToolRequest, input appointment.EntitySet) (*mcp.CallToolResult, OutputCheckEntities, error) {
	_, err := appointment.Check(input)
	if err == nil {
		return nil, OutputCheckEntities{OK: true}, nil
	}
	var f *appointment.Failure
	if !errors.As(err, &f) {
		return nil, OutputCheckEntities{}, err
	}
	return nil, OutputCheckEntities{Field: string(f.Field), Message: f.Message}, nil
}

// MetadataNormalizeEntities describes the normalize_entities tool.
var MetadataNormalizeEntities = &mcp.Tool{
	Name: "normalize_entities",
	Description: "Resolve a date phrase to YYYY-MM-DD and a time phrase to 24-hour HH:MM in the service timezone. " +
		"Relative phrases (today, tomorrow, this/next <weekday>) are resolved against reference_date. " +
		"Absolute dates without a year use the configured default year. Phrases that cannot be resolved come back null. " +
		"The ambiguity guardrail is not applied.",
	InputSchema: map[string]interface{}{
		"type": "object",
		"properties": func() map[string]interface{} {
			props := map[string]interface{}{"reference_date": referenceDateProperty}
			for k, v := range entityProperties {
				props[k] = v
			}
			return props
		}(),
	},
}

// InputNormalizeEntities is the input for the NormalizeEntities tool.
type InputNormalizeEntities struct {
	appointment.EntitySet
	ReferenceDate string `json:"reference_date"`
}

// OutputNormalizeEntities is the output for the NormalizeEntities tool.
type OutputNormalizeEntities struct {
	Normalized appointment.NormalizedAppointment `json:"normalized"`
	Confidence float64                           `json:"normalization_confidence"`
}

// NormalizeEntities normalizes entities without the guardrail.
func (ts *Toolset) NormalizeEntities(_ context.Context, _ *mcp.CallToolRequest, input InputNormalizeEntities) (*mcp.CallToolResult, OutputNormalizeEntities, error) {
	ref, err := ts.parseReferenceDate(input.ReferenceDate)
	if err != nil {
		return nil, OutputNormalizeEntities{}, err
	}
	if ref.IsZero() {
		ref = ts.pipeline.Today()
	}
	n := ts.pipeline.Normalizer().Normalize(input.EntitySet, ref)
	return nil, OutputNormalizeEntities{
		Normalized: n,
		Confidence: appointment.NormalizationConfidence(n),
	}, nil
}
