// SPDX-License-Identifier: Apache-2.0

package tool

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/NarenAdithya14/ocr-appointments/internal/appointment"
)

// MetadataClarifyAppointment describes the clarify_appointment tool.
var MetadataClarifyAppointment = &mcp.Tool{
	Name: "clarify_appointment",
	Description: "Apply caller corrections to an appointment draft after a needs_clarification result. " +
		"Only name, department, date (YYYY-MM-DD), time (HH:MM) and tz can be corrected; other keys are " +
		"ignored and listed in the output. An empty value clears a field. " +
		"complete is true once the merged draft is a valid appointment.",
	InputSchema: map[string]interface{}{
		"type":     "object",
		"required": []string{"pipeline", "appointment"},
		"properties": map[string]interface{}{
			"pipeline": map[string]interface{}{
				"type":        "object",
				"description": "Pipeline diagnostics from the earlier schedule result, echoed back unchanged",
			},
			"appointment": map[string]interface{}{
				"type":        "object",
				"description": "Current draft: any of id, name, department, date, time, tz",
			},
			"corrections": map[string]interface{}{
				"type":                 "object",
				"description":          "Field name to corrected value",
				"additionalProperties": map[string]interface{}{"type": "string"},
			},
		},
	},
}

// ClarifyAppointment merges corrections into a draft.
func (ts *Toolset) ClarifyAppointment(_ context.Context, _ *mcp.CallToolRequest, input appointment.ClarifyRequest) (*mcp.CallToolResult, appointment.ClarifyResult, error) {
	res, err := ts.pipeline.Clarify(input)
	if err != nil {
		return nil, appointment.ClarifyResult{}, err
	}
	return nil, res, nil
}
