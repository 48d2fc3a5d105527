// SPDX-License-Identifier: Apache-2.0

package appointment

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Source says where the pipeline input came from.
type Source string

const (
	// SourceText is text typed or pasted by a caller. Empty text is rejected.
	SourceText Source = "text"
	// SourceOCR is text recognized from an image. Empty text is ordinary,
	// low-confidence input.
	SourceOCR Source = "ocr"
)

// Status is the outcome reported in a Result.
type Status string

const (
	StatusOK                 Status = "ok"
	StatusNeedsClarification Status = "needs_clarification"
	StatusError              Status = "error"
)

// Request is the input to one pipeline run.
type Request struct {
	Text   string
	Source Source
	// SourceConfidence is the OCR confidence in [0,1]. It is forced to 1 for SourceText.
	SourceConfidence float64
	// ReferenceDate anchors relative phrases. The zero value means today in
	// the pipeline's timezone.
	ReferenceDate time.Time
}

// Result is the output of a pipeline run. A Result returned together with an
// error still carries the diagnostics gathered before the failure.
type Result struct {
	Status      Status       `json:"status"`
	Message     string       `json:"message,omitempty"`
	Appointment *Appointment `json:"appointment,omitempty"`
	Pipeline    Diagnostics  `json:"pipeline"`
}

// Pipeline sequences noise cleanup, extraction, the guardrail and
// normalization. It holds no per-run state and is safe for concurrent use.
type Pipeline struct {
	cleaner    Cleaner
	extractor  Extractor
	normalizer *Normalizer
	schema     *Schema
	now        func() time.Time
	newID      func() string
	logger     *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithNormalizer replaces the default normalizer (UTC, year 2023).
func WithNormalizer(n *Normalizer) Option {
	return func(p *Pipeline) {
		p.normalizer = n
	}
}

// WithClock sets the clock used when a request has no reference date.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) {
		p.now = now
	}
}

// WithIDGenerator sets the function that assigns appointment ids.
func WithIDGenerator(newID func() string) Option {
	return func(p *Pipeline) {
		p.newID = newID
	}
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = l
	}
}

// DefaultYear is the year assumed for absolute dates without one when no
// normalizer is configured.
const DefaultYear = 2023

// NewPipeline creates a Pipeline from a cleaner and an extractor.
func NewPipeline(cleaner Cleaner, extractor Extractor, opts ...Option) *Pipeline {
	p := &Pipeline{
		cleaner:    cleaner,
		extractor:  extractor,
		normalizer: NewNormalizer(time.UTC, DefaultYear),
		schema:     MustCompileSchema(),
		now:        time.Now,
		newID:      uuid.NewString,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

// Normalizer returns the normalizer used by the pipeline.
func (p *Pipeline) Normalizer() *Normalizer {
	return p.normalizer
}

// Clean runs the noise cleanup stage alone.
func (p *Pipeline) Clean(raw string) Text {
	return p.cleaner.Clean(raw)
}

// Extract runs noise cleanup and extraction on raw text.
func (p *Pipeline) Extract(raw string) EntitySet {
	return p.extractor.Extract(p.cleaner.Clean(raw))
}

// Today returns the current date in the pipeline's timezone.
func (p *Pipeline) Today() time.Time {
	return p.now().In(p.normalizer.Location())
}

// Run processes one request. Empty text from SourceText fails with
// KindInputValidation. A guardrail rejection returns a Result with
// StatusNeedsClarification and a *Failure of kind KindAmbiguousEntity.
func (p *Pipeline) Run(ctx context.Context, req Request) (Result, error) {
	source := req.Source
	if source == "" {
		source = SourceText
	}
	confidence := clamp01(req.SourceConfidence)
	if source == SourceText {
		if strings.TrimSpace(req.Text) == "" {
			return Result{}, NewInputError("text must not be empty")
		}
		confidence = 1
	}

	ref := req.ReferenceDate
	if ref.IsZero() {
		ref = p.Today()
	}

	text := p.cleaner.Clean(req.Text)
	p.logger.DebugContext(ctx, "cleaned input", "source", source, "cleaned", text.Cleaned)

	entities := p.extractor.Extract(text)
	diag := Diagnostics{
		OCR: OCRStage{RawText: req.Text, Confidence: round2(confidence)},
		Entities: EntityStage{
			Entities:   entities,
			Confidence: EntityConfidence(entities, confidence),
		},
	}
	p.logger.DebugContext(ctx, "extracted entities", "extractor", p.extractor.Name(), "confidence", diag.Entities.Confidence)

	verified, err := Check(entities)
	if err != nil {
		p.logger.InfoContext(ctx, "appointment needs clarification", "reason", err.Error())
		return Result{
			Status:   StatusNeedsClarification,
			Message:  err.Error(),
			Pipeline: diag,
		}, err
	}

	normalized := p.normalizer.NormalizeVerified(verified, ref)
	diag.Normalization = &NormalizationStage{
		Normalized: normalized,
		Confidence: NormalizationConfidence(normalized),
	}

	appt, err := p.assemble(normalized)
	if err != nil {
		p.logger.WarnContext(ctx, "normalization incomplete after guardrail", "error", err)
		return Result{
			Status:   StatusError,
			Message:  failureMessage(err),
			Pipeline: diag,
		}, err
	}

	p.logger.InfoContext(ctx, "appointment extracted", "id", appt.ID, "date", appt.Date, "time", appt.Time)
	return Result{
		Status:      StatusOK,
		Appointment: &appt,
		Pipeline:    diag,
	}, nil
}

const extractionFailureMessage = "unable to extract appointment details"

func (p *Pipeline) assemble(n NormalizedAppointment) (Appointment, error) {
	if n.Date == nil || n.Time == nil {
		return Appointment{}, newFailure(KindExtractionFailure, extractionFailureMessage)
	}
	appt := Appointment{
		ID:         p.newID(),
		Name:       n.Name,
		Department: n.Department,
		Date:       *n.Date,
		Time:       *n.Time,
		TZ:         n.TZ,
	}
	if err := p.schema.Validate(appt); err != nil {
		return Appointment{}, &Failure{Kind: KindExtractionFailure, Message: extractionFailureMessage, Err: err}
	}
	return appt, nil
}

func failureMessage(err error) string {
	var f *Failure
	if errors.As(err, &f) {
		return f.Message
	}
	return err.Error()
}
