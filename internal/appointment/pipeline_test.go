// SPDX-License-Identifier: Apache-2.0

package appointment_test

import (
	"context"
	"errors"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NarenAdithya14/ocr-appointments/internal/appointment"
	"github.com/NarenAdithya14/ocr-appointments/internal/appointment/extract"
)

// ---------------------------------------------------------------------------
// helpers
// ---------------------------------------------------------------------------

func newTestPipeline(t *testing.T, opts ...appointment.Option) *appointment.Pipeline {
	t.Helper()
	kolkata, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)

	base := []appointment.Option{
		appointment.WithNormalizer(appointment.NewNormalizer(kolkata, 2023)),
		appointment.WithIDGenerator(func() string { return "appt-1" }),
		appointment.WithClock(func() time.Time { return time.Date(2025, time.September, 19, 6, 0, 0, 0, time.UTC) }),
	}
	return appointment.NewPipeline(extract.NewNoiseNormalizer(), extract.NewRuleExtractor(nil), append(base, opts...)...)
}

// stubExtractor returns a fixed entity set regardless of input.
type stubExtractor struct {
	entities appointment.EntitySet
}

func (s stubExtractor) Extract(appointment.Text) appointment.EntitySet { return s.entities }
func (s stubExtractor) Name() string                                   { return "stub" }

// ---------------------------------------------------------------------------
// Pipeline.Run
// ---------------------------------------------------------------------------

func TestPipeline_Run(t *testing.T) {
	ctx := context.Background()
	p := newTestPipeline(t)

	tests := []struct {
		name       string
		req        appointment.Request
		wantStatus appointment.Status
		wantKind   appointment.Kind
		wantMsg    string
		validate   func(t *testing.T, res appointment.Result)
	}{
		{
			name:       "named meeting with absolute date",
			req:        appointment.Request{Text: "Schedule a meeting with John Doe on March 10th at 3 PM"},
			wantStatus: appointment.StatusOK,
			validate: func(t *testing.T, res appointment.Result) {
				appt := res.Appointment
				require.NotNil(t, appt)
				require.NotNil(t, appt.Name)
				assert.Equal(t, "John Doe", *appt.Name)
				assert.Equal(t, "2023-03-10", appt.Date)
				assert.Equal(t, "15:00", appt.Time)
				assert.Equal(t, "Asia/Kolkata", appt.TZ)
				assert.Equal(t, "appt-1", appt.ID)
				assert.Nil(t, appt.Department)
			},
		},
		{
			name:     "empty text",
			req:      appointment.Request{Text: ""},
			wantKind: appointment.KindInputValidation,
			wantMsg:  "text must not be empty",
		},
		{
			name:     "whitespace text",
			req:      appointment.Request{Text: " \n\t "},
			wantKind: appointment.KindInputValidation,
			wantMsg:  "text must not be empty",
		},
		{
			name:       "vague week",
			req:        appointment.Request{Text: "Let's meet next week."},
			wantStatus: appointment.StatusNeedsClarification,
			wantKind:   appointment.KindAmbiguousEntity,
			wantMsg:    "Ambiguous date provided.",
			validate: func(t *testing.T, res appointment.Result) {
				assert.Nil(t, res.Appointment)
				assert.Nil(t, res.Pipeline.Normalization, "normalization must not run after a rejection")
				assert.Nil(t, res.Pipeline.Entities.Entities.DatePhrase)
			},
		},
		{
			name:       "relative weekday with department",
			req:        appointment.Request{Text: "Book dentist next Friday at 3pm", ReferenceDate: date(2025, time.September, 19)},
			wantStatus: appointment.StatusOK,
			validate: func(t *testing.T, res appointment.Result) {
				appt := res.Appointment
				require.NotNil(t, appt)
				assert.Equal(t, "2025-09-26", appt.Date)
				assert.Equal(t, "15:00", appt.Time)
				require.NotNil(t, appt.Department)
				assert.Equal(t, "Dentistry", *appt.Department)
			},
		},
		{
			name:       "missing reference date uses today in the pipeline zone",
			req:        appointment.Request{Text: "cardiology tomorrow at 10:30 am"},
			wantStatus: appointment.StatusOK,
			validate: func(t *testing.T, res appointment.Result) {
				require.NotNil(t, res.Appointment)
				assert.Equal(t, "2025-09-20", res.Appointment.Date)
				assert.Equal(t, "10:30", res.Appointment.Time)
				assert.Equal(t, "Cardiology", *res.Appointment.Department)
			},
		},
		{
			name:       "ocr misreads are corrected before extraction",
			req:        appointment.Request{Text: "SKIN  check nxt monday at l0 am", ReferenceDate: date(2025, time.September, 19)},
			wantStatus: appointment.StatusOK,
			validate: func(t *testing.T, res appointment.Result) {
				require.NotNil(t, res.Appointment)
				assert.Equal(t, "2025-09-22", res.Appointment.Date)
				assert.Equal(t, "10:00", res.Appointment.Time)
				assert.Equal(t, "Dermatology", *res.Appointment.Department)
			},
		},
		{
			name:       "period of day is rejected",
			req:        appointment.Request{Text: "see the cardiologist tomorrow morning"},
			wantStatus: appointment.StatusNeedsClarification,
			wantKind:   appointment.KindAmbiguousEntity,
			wantMsg:    "Ambiguous time provided.",
		},
		{
			name:       "generic department is rejected",
			req:        appointment.Request{Text: "I need a doctor tomorrow at 4 pm"},
			wantStatus: appointment.StatusNeedsClarification,
			wantKind:   appointment.KindAmbiguousEntity,
			wantMsg:    "Ambiguous department provided.",
		},
		{
			name:       "unresolvable clock value fails after the guardrail",
			req:        appointment.Request{Text: "dentist march 10th at 27"},
			wantStatus: appointment.StatusError,
			wantKind:   appointment.KindExtractionFailure,
			wantMsg:    "unable to extract appointment details",
			validate: func(t *testing.T, res appointment.Result) {
				require.NotNil(t, res.Pipeline.Normalization)
				assert.Nil(t, res.Pipeline.Normalization.Normalized.Time)
				assert.Equal(t, 0.0, res.Pipeline.Normalization.Confidence)
			},
		},
		{
			name:       "empty ocr text is ordinary input",
			req:        appointment.Request{Text: "", Source: appointment.SourceOCR},
			wantStatus: appointment.StatusNeedsClarification,
			wantKind:   appointment.KindAmbiguousEntity,
			wantMsg:    "Ambiguous date provided.",
			validate: func(t *testing.T, res appointment.Result) {
				assert.Equal(t, 0.0, res.Pipeline.Entities.Confidence)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := p.Run(ctx, tt.req)

			if tt.wantKind != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantKind, appointment.KindOf(err))
				assert.Contains(t, err.Error(), tt.wantMsg)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.wantStatus, res.Status)
			if tt.wantStatus == appointment.StatusNeedsClarification {
				assert.Equal(t, tt.wantMsg, res.Message)
			}
			if tt.validate != nil {
				tt.validate(t, res)
			}
		})
	}
}

func TestPipeline_Run_Diagnostics(t *testing.T) {
	p := newTestPipeline(t)

	res, err := p.Run(context.Background(), appointment.Request{
		Text:             "book dentist March 10th at 3 PM",
		Source:           appointment.SourceOCR,
		SourceConfidence: 0.9,
	})
	require.NoError(t, err)
	require.NotNil(t, res.Appointment)
	assert.Equal(t, "2023-03-10", res.Appointment.Date)
	assert.Equal(t, "15:00", res.Appointment.Time)
	assert.Equal(t, "Dentistry", *res.Appointment.Department)

	assert.Equal(t, "book dentist March 10th at 3 PM", res.Pipeline.OCR.RawText)
	assert.Equal(t, 0.9, res.Pipeline.OCR.Confidence)
	assert.Equal(t, 0.81, res.Pipeline.Entities.Confidence)
	require.NotNil(t, res.Pipeline.Normalization)
	assert.Equal(t, 0.9, res.Pipeline.Normalization.Confidence)
}

func TestPipeline_Run_TextSourceIgnoresConfidence(t *testing.T) {
	p := newTestPipeline(t)

	res, err := p.Run(context.Background(), appointment.Request{
		Text:             "dentist tomorrow at 9",
		SourceConfidence: 0.1,
	})
	require.NoError(t, err)
	assert.Equal(t, 1.0, res.Pipeline.OCR.Confidence)
	assert.Equal(t, 0.9, res.Pipeline.Entities.Confidence)
}

func TestPipeline_Run_IsReproducible(t *testing.T) {
	p := newTestPipeline(t)
	req := appointment.Request{Text: "Book dentist next Friday at 3pm", ReferenceDate: date(2025, time.September, 19)}

	first, err := p.Run(context.Background(), req)
	require.NoError(t, err)
	second, err := p.Run(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestPipeline_Run_DefensiveCheckAfterGuardrail(t *testing.T) {
	p := appointment.NewPipeline(extract.NewNoiseNormalizer(), stubExtractor{entities: appointment.EntitySet{
		DatePhrase: str("someday"),
		TimePhrase: str("3 pm"),
	}})

	res, err := p.Run(context.Background(), appointment.Request{Text: "anything"})
	require.Error(t, err)

	var f *appointment.Failure
	require.True(t, errors.As(err, &f))
	assert.Equal(t, appointment.KindExtractionFailure, f.Kind)
	assert.Equal(t, appointment.StatusError, res.Status)
	assert.Equal(t, "unable to extract appointment details", res.Message)
}

func TestPipeline_Extract(t *testing.T) {
	p := newTestPipeline(t)
	e := p.Extract("Appointment with Dr. Mehta, cardiology, december 2nd at 11:15 am")

	require.NotNil(t, e.Name)
	assert.Equal(t, "Dr. Mehta", *e.Name)
	require.NotNil(t, e.DatePhrase)
	assert.Equal(t, "december 2nd", *e.DatePhrase)
	require.NotNil(t, e.TimePhrase)
	assert.Equal(t, "11:15 am", *e.TimePhrase)
	require.NotNil(t, e.Department)
	assert.Equal(t, "Cardiology", *e.Department)
}
