// SPDX-License-Identifier: Apache-2.0

package tool

import (
	"context"
	"encoding/base64"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NarenAdithya14/ocr-appointments/internal/appointment"
	"github.com/NarenAdithya14/ocr-appointments/internal/appointment/extract"
	"github.com/NarenAdithya14/ocr-appointments/internal/intake"
	"github.com/NarenAdithya14/ocr-appointments/internal/ocr"
)

var pngImage = append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 32)...)

func str(s string) *string { return &s }

func newToolset(t *testing.T) *Toolset {
	t.Helper()
	kolkata, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)
	p := appointment.NewPipeline(
		extract.NewNoiseNormalizer(),
		extract.NewRuleExtractor(nil),
		appointment.WithNormalizer(appointment.NewNormalizer(kolkata, 2023)),
		appointment.WithIDGenerator(func() string { return "appt-1" }),
		appointment.WithClock(func() time.Time { return time.Date(2025, time.September, 19, 6, 0, 0, 0, time.UTC) }),
	)
	svc := intake.New(p, intake.WithEngine(ocr.Static{RawText: "book dentist March 10th at 3 PM", Confidence: 0.9}))
	return New(p, svc)
}

// ---------------------------------------------------------------------------
// schedule_appointment / schedule_from_image
// ---------------------------------------------------------------------------

func TestScheduleAppointment(t *testing.T) {
	ctx := context.Background()
	req := &mcp.CallToolRequest{}
	ts := newToolset(t)

	tests := []struct {
		name           string
		input          InputScheduleAppointment
		wantErr        bool
		errContains    string
		validateOutput func(t *testing.T, output appointment.Result)
	}{
		{
			name:  "complete request",
			input: InputScheduleAppointment{Text: "Book dentist next Friday at 3pm", ReferenceDate: "2025-09-19"},
			validateOutput: func(t *testing.T, output appointment.Result) {
				assert.Equal(t, appointment.StatusOK, output.Status)
				require.NotNil(t, output.Appointment)
				assert.Equal(t, "2025-09-26", output.Appointment.Date)
				assert.Equal(t, "15:00", output.Appointment.Time)
				assert.Equal(t, "Asia/Kolkata", output.Appointment.TZ)
			},
		},
		{
			name:  "reference date defaults to today",
			input: InputScheduleAppointment{Text: "cardiology tomorrow at 10"},
			validateOutput: func(t *testing.T, output appointment.Result) {
				require.NotNil(t, output.Appointment)
				assert.Equal(t, "2025-09-20", output.Appointment.Date)
			},
		},
		{
			name:  "ambiguity is a result, not an error",
			input: InputScheduleAppointment{Text: "Let's meet next week."},
			validateOutput: func(t *testing.T, output appointment.Result) {
				assert.Equal(t, appointment.StatusNeedsClarification, output.Status)
				assert.Equal(t, "Ambiguous date provided.", output.Message)
				assert.Nil(t, output.Appointment)
			},
		},
		{
			name:  "unresolvable time is a result",
			input: InputScheduleAppointment{Text: "dentist march 10th at 27"},
			validateOutput: func(t *testing.T, output appointment.Result) {
				assert.Equal(t, appointment.StatusError, output.Status)
				assert.Equal(t, "unable to extract appointment details", output.Message)
			},
		},
		{
			name:        "empty text",
			input:       InputScheduleAppointment{Text: ""},
			wantErr:     true,
			errContains: "text must not be empty",
		},
		{
			name:        "whitespace text",
			input:       InputScheduleAppointment{Text: " "},
			wantErr:     true,
			errContains: "text must not be empty",
		},
		{
			name:        "malformed reference date",
			input:       InputScheduleAppointment{Text: "dentist tomorrow at 9", ReferenceDate: "19/09/2025"},
			wantErr:     true,
			errContains: "reference_date must be YYYY-MM-DD",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, output, err := ts.ScheduleAppointment(ctx, req, tt.input)

			if tt.wantErr {
				require.Error(t, err)
				if tt.errContains != "" {
					assert.Contains(t, err.Error(), tt.errContains)
				}
				return
			}

			require.NoError(t, err)
			if tt.validateOutput != nil {
				tt.validateOutput(t, output)
			}
		})
	}
}

func TestScheduleFromImage(t *testing.T) {
	ts := newToolset(t)

	_, output, err := ts.ScheduleFromImage(context.Background(), &mcp.CallToolRequest{}, InputScheduleFromImage{
		ImageBase64: base64.StdEncoding.EncodeToString(pngImage),
	})
	require.NoError(t, err)
	assert.Equal(t, appointment.StatusOK, output.Status)
	require.NotNil(t, output.Appointment)
	assert.Equal(t, "2023-03-10", output.Appointment.Date)
	assert.Equal(t, "Dentistry", *output.Appointment.Department)
	assert.Equal(t, 0.9, output.Pipeline.OCR.Confidence)

	_, _, err = ts.ScheduleFromImage(context.Background(), &mcp.CallToolRequest{}, InputScheduleFromImage{ImageBase64: "!!"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid input format")
}

// ---------------------------------------------------------------------------
// partial pipeline tools
// ---------------------------------------------------------------------------

func TestExtractEntities(t *testing.T) {
	ts := newToolset(t)

	_, output, err := ts.ExtractEntities(context.Background(), &mcp.CallToolRequest{}, InputExtractEntities{
		Text: "Meet  with John Doe on NXT Friday at 3 PM",
	})
	require.NoError(t, err)
	assert.Equal(t, "meet with john doe on next friday at 3 pm", output.CleanedText)
	assert.Equal(t, "John Doe", *output.Entities.Name)
	assert.Equal(t, "next friday", *output.Entities.DatePhrase)
	assert.Equal(t, "3 pm", *output.Entities.TimePhrase)
	assert.Nil(t, output.Entities.Department)

	_, _, err = ts.ExtractEntities(context.Background(), &mcp.CallToolRequest{}, InputExtractEntities{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "text is required")
}

func TestCheckEntities(t *testing.T) {
	ts := newToolset(t)

	tests := []struct {
		name  string
		input appointment.EntitySet
		want  OutputCheckEntities
	}{
		{
			name:  "accepted",
			input: appointment.EntitySet{DatePhrase: str("tomorrow"), TimePhrase: str("9")},
			want:  OutputCheckEntities{OK: true},
		},
		{
			name:  "vague date",
			input: appointment.EntitySet{DatePhrase: str("next month"), TimePhrase: str("9")},
			want:  OutputCheckEntities{Field: "date", Message: "Ambiguous date provided."},
		},
		{
			name:  "generic department",
			input: appointment.EntitySet{DatePhrase: str("tomorrow"), TimePhrase: str("9"), Department: str("hospital")},
			want:  OutputCheckEntities{Field: "department", Message: "Ambiguous department provided."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, output, err := ts.CheckEntities(context.Background(), &mcp.CallToolRequest{}, tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, output)
		})
	}
}

func TestNormalizeEntities(t *testing.T) {
	ts := newToolset(t)

	_, output, err := ts.NormalizeEntities(context.Background(), &mcp.CallToolRequest{}, InputNormalizeEntities{
		EntitySet:     appointment.EntitySet{DatePhrase: str("next monday"), TimePhrase: str("10:30 am")},
		ReferenceDate: "2025-09-19",
	})
	require.NoError(t, err)
	assert.Equal(t, "2025-09-22", *output.Normalized.Date)
	assert.Equal(t, "10:30", *output.Normalized.Time)
	assert.Equal(t, "Asia/Kolkata", output.Normalized.TZ)
	assert.Equal(t, 0.9, output.Confidence)

	_, output, err = ts.NormalizeEntities(context.Background(), &mcp.CallToolRequest{}, InputNormalizeEntities{
		EntitySet: appointment.EntitySet{DatePhrase: str("this weekend")},
	})
	require.NoError(t, err)
	assert.Nil(t, output.Normalized.Date)
	assert.Equal(t, 0.0, output.Confidence)
}

func TestClarifyAppointment(t *testing.T) {
	ts := newToolset(t)

	_, output, err := ts.ClarifyAppointment(context.Background(), &mcp.CallToolRequest{}, appointment.ClarifyRequest{
		Pipeline:    &appointment.Diagnostics{OCR: appointment.OCRStage{RawText: "cardiology monday", Confidence: 1}},
		Appointment: &appointment.Draft{TZ: str("Asia/Kolkata"), Date: str("2025-09-22")},
		Corrections: map[string]string{"time": "09:30"},
	})
	require.NoError(t, err)
	assert.True(t, output.Complete)
	assert.Equal(t, "09:30", *output.Appointment.Time)

	_, _, err = ts.ClarifyAppointment(context.Background(), &mcp.CallToolRequest{}, appointment.ClarifyRequest{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pipeline and appointment required")

	_, _, err = ts.ClarifyAppointment(context.Background(), &mcp.CallToolRequest{}, appointment.ClarifyRequest{
		Pipeline:    &appointment.Diagnostics{},
		Appointment: &appointment.Draft{Time: str("09:30")},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pipeline and appointment required")
}
