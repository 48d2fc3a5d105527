// SPDX-License-Identifier: Apache-2.0

package tool

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/NarenAdithya14/ocr-appointments/internal/appointment"
	"github.com/NarenAdithya14/ocr-appointments/internal/intake"
)

// MetadataScheduleAppointment describes the schedule_appointment tool.
var MetadataScheduleAppointment = &mcp.Tool{
	Name: "schedule_appointment",
	Description: "Turn a free-text appointment request into a structured appointment " +
		"(department, date as YYYY-MM-DD, 24-hour time, timezone). " +
		"Returns status \"ok\" with the appointment, or \"needs_clarification\" with a message " +
		"naming the ambiguous field (date, time or department). " +
		"The pipeline diagnostics show what each stage produced and can be passed to clarify_appointment.",
	InputSchema: map[string]interface{}{
		"type":     "object",
		"required": []string{"text"},
		"properties": map[string]interface{}{
			"text": map[string]interface{}{
				"type":        "string",
				"description": "Appointment request, e.g. \"Book dentist next Friday at 3pm\"",
			},
			"reference_date": referenceDateProperty,
		},
	},
}

// InputScheduleAppointment is the input for the ScheduleAppointment tool.
type InputScheduleAppointment struct {
	Text          string `json:"text"`
	ReferenceDate string `json:"reference_date"`
}

// ScheduleAppointment runs the full pipeline over text.
func (ts *Toolset) ScheduleAppointment(ctx context.Context, _ *mcp.CallToolRequest, input InputScheduleAppointment) (*mcp.CallToolResult, appointment.Result, error) {
	ref, err := ts.parseReferenceDate(input.ReferenceDate)
	if err != nil {
		return nil, appointment.Result{}, err
	}
	return outcome(ts.intake.SubmitText(ctx, input.Text, ref))
}

// MetadataScheduleFromImage describes the schedule_from_image tool.
var MetadataScheduleFromImage = &mcp.Tool{
	Name: "schedule_from_image",
	Description: "Read an appointment request from a PNG or JPEG image (for example a photo of a " +
		"handwritten note) and turn it into a structured appointment. " +
		"The image is sent through OCR; the recognized text and OCR confidence appear in the pipeline diagnostics. " +
		"Results have the same shape as schedule_appointment.",
	InputSchema: map[string]interface{}{
		"type":     "object",
		"required": []string{"image_base64"},
		"properties": map[string]interface{}{
			"image_base64": map[string]interface{}{
				"type":        "string",
				"description": "Base64-encoded PNG or JPEG image, optionally as a data URL. At most 5 MiB decoded by default.",
			},
			"reference_date": referenceDateProperty,
		},
	},
}

// InputScheduleFromImage is the input for the ScheduleFromImage tool.
type InputScheduleFromImage struct {
	ImageBase64   string `json:"image_base64"`
	ReferenceDate string `json:"reference_date"`
}

// ScheduleFromImage runs OCR and then the full pipeline.
func (ts *Toolset) ScheduleFromImage(ctx context.Context, _ *mcp.CallToolRequest, input InputScheduleFromImage) (*mcp.CallToolResult, appointment.Result, error) {
	ref, err := ts.parseReferenceDate(input.ReferenceDate)
	if err != nil {
		return nil, appointment.Result{}, err
	}
	return outcome(ts.intake.Submit(ctx, intake.Submission{ImageBase64: input.ImageBase64, ReferenceDate: ref}))
}
