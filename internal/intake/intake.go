// SPDX-License-Identifier: Apache-2.0

// Package intake validates appointment submissions, runs OCR on images and
// hands the resulting text to the appointment pipeline.
package intake

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/NarenAdithya14/ocr-appointments/internal/appointment"
	"github.com/NarenAdithya14/ocr-appointments/internal/ocr"
)

// DefaultMaxImageBytes caps decoded image payloads at 5 MiB.
const DefaultMaxImageBytes = 5 << 20

const invalidInput = "invalid input format"

// Submission carries exactly one of Text, ImageBase64 or Image.
type Submission struct {
	Text        string
	ImageBase64 string
	Image       []byte
	// ReferenceDate anchors relative dates; zero means today.
	ReferenceDate time.Time
}

// Service is the entry point for raw submissions.
type Service struct {
	pipeline *appointment.Pipeline
	engine   ocr.Engine
	maxBytes int
	strict   bool
	timeout  time.Duration
	logger   *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithEngine sets the OCR engine used for image submissions.
func WithEngine(e ocr.Engine) Option {
	return func(s *Service) {
		s.engine = e
	}
}

// WithMaxImageBytes sets the decoded image size limit.
func WithMaxImageBytes(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxBytes = n
		}
	}
}

// WithStrictOCR makes OCR engine errors fail the submission instead of
// degrading to empty, zero-confidence text.
func WithStrictOCR(strict bool) Option {
	return func(s *Service) {
		s.strict = strict
	}
}

// WithOCRTimeout bounds each OCR call. Zero leaves the caller's context as is.
func WithOCRTimeout(d time.Duration) Option {
	return func(s *Service) {
		s.timeout = d
	}
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		s.logger = l
	}
}

// New creates a Service around p.
func New(p *appointment.Pipeline, opts ...Option) *Service {
	s := &Service{
		pipeline: p,
		maxBytes: DefaultMaxImageBytes,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// Submit validates sub and runs the pipeline. Validation failures are
// reported with KindInputValidation and no Result.
func (s *Service) Submit(ctx context.Context, sub Submission) (appointment.Result, error) {
	if countInputs(sub) != 1 {
		return appointment.Result{}, appointment.NewInputError(invalidInput)
	}

	if sub.Text != "" {
		return s.SubmitText(ctx, sub.Text, sub.ReferenceDate)
	}

	img := sub.Image
	if sub.ImageBase64 != "" {
		decoded, err := decodeBase64(sub.ImageBase64)
		if err != nil {
			s.logger.DebugContext(ctx, "rejecting image payload", "error", err)
			return appointment.Result{}, appointment.NewInputError(invalidInput)
		}
		img = decoded
	}
	if err := s.validateImage(img); err != nil {
		s.logger.DebugContext(ctx, "rejecting image payload", "error", err)
		return appointment.Result{}, appointment.NewInputError(invalidInput)
	}

	res, err := s.recognize(ctx, img)
	if err != nil {
		return appointment.Result{}, err
	}
	return s.pipeline.Run(ctx, appointment.Request{
		Text:             res.RawText,
		Source:           appointment.SourceOCR,
		SourceConfidence: res.Confidence,
		ReferenceDate:    sub.ReferenceDate,
	})
}

// SubmitText runs text through the pipeline. Callers that only accept text
// use it so that empty text is reported as such rather than as a missing input.
func (s *Service) SubmitText(ctx context.Context, text string, ref time.Time) (appointment.Result, error) {
	return s.pipeline.Run(ctx, appointment.Request{
		Text:          text,
		Source:        appointment.SourceText,
		ReferenceDate: ref,
	})
}

// SubmitImage runs an image through OCR and the pipeline.
func (s *Service) SubmitImage(ctx context.Context, img []byte, ref time.Time) (appointment.Result, error) {
	return s.Submit(ctx, Submission{Image: img, ReferenceDate: ref})
}

func (s *Service) recognize(ctx context.Context, img []byte) (ocr.Result, error) {
	if s.engine == nil {
		return ocr.Result{}, appointment.NewCollaboratorError("ocr engine not configured", nil)
	}
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	res, err := s.engine.Recognize(ctx, img)
	if err != nil {
		if s.strict {
			return ocr.Result{}, appointment.NewCollaboratorError("text recognition failed", err)
		}
		s.logger.WarnContext(ctx, "ocr failed, continuing with empty text", "error", err)
		return ocr.Result{}, nil
	}
	res.Confidence = ocr.Clamp(res.Confidence)
	s.logger.DebugContext(ctx, "ocr complete", "chars", len(res.RawText), "confidence", res.Confidence)
	return res, nil
}

func (s *Service) validateImage(img []byte) error {
	if len(img) == 0 {
		return errors.New("empty image")
	}
	if len(img) > s.maxBytes {
		return fmt.Errorf("image is %d bytes, limit is %d", len(img), s.maxBytes)
	}
	if ct := ContentType(img); ct != "image/png" && ct != "image/jpeg" {
		return fmt.Errorf("unsupported content type %q", ct)
	}
	return nil
}

// ContentType sniffs the media type of img.
func ContentType(img []byte) string {
	return http.DetectContentType(img)
}

func countInputs(sub Submission) int {
	n := 0
	if sub.Text != "" {
		n++
	}
	if sub.ImageBase64 != "" {
		n++
	}
	if len(sub.Image) > 0 {
		n++
	}
	return n
}

// decodeBase64 accepts standard base64, optionally wrapped in a data URL.
// Line breaks and other ASCII whitespace inside the payload are ignored.
func decodeBase64(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "data:") {
		if i := strings.IndexByte(s, ','); i >= 0 {
			s = s[i+1:]
		}
	}
	s = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\n', '\r', '\f', '\v':
			return -1
		}
		return r
	}, s)
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("decoding base64 image: %w", err)
	}
	return data, nil
}
