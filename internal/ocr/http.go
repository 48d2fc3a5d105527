// SPDX-License-Identifier: Apache-2.0

package ocr

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"
)

const maxRetries = 3

// APIError is a non-2xx response from the OCR service.
type APIError struct {
	StatusCode int
	Body       string // first 512 bytes
	retryAfter string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("ocr service returned HTTP %d: %s", e.StatusCode, e.Body)
}

// HTTPEngine posts images to a remote OCR service as
// {"image": "<base64>"} and expects {"raw_text": "...", "confidence": 0.93}
// back. Services that report per-word scores instead may send
// "word_confidences" on a 0-100 scale, which are combined with Score.
// Requests carrying a token use Bearer auth. 429 and 5xx responses are
// retried up to three times.
type HTTPEngine struct {
	endpoint   string
	token      string
	httpClient *http.Client
	backoff    func(attempt int) time.Duration
	logger     *slog.Logger
}

// HTTPOption configures an HTTPEngine.
type HTTPOption func(*HTTPEngine)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) HTTPOption {
	return func(e *HTTPEngine) {
		e.httpClient.Timeout = d
	}
}

// WithToken sets the Bearer token sent with each request.
func WithToken(token string) HTTPOption {
	return func(e *HTTPEngine) {
		e.token = token
	}
}

// WithBackoff replaces the exponential retry delay.
func WithBackoff(fn func(attempt int) time.Duration) HTTPOption {
	return func(e *HTTPEngine) {
		e.backoff = fn
	}
}

// WithLogger sets the logger used for retry diagnostics.
func WithLogger(l *slog.Logger) HTTPOption {
	return func(e *HTTPEngine) {
		e.logger = l
	}
}

// NewHTTPEngine creates an engine for the service at endpoint.
func NewHTTPEngine(endpoint string, opts ...HTTPOption) *HTTPEngine {
	e := &HTTPEngine{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		backoff:    exponentialBackoff,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

type recognizeRequest struct {
	Image string `json:"image"`
}

type recognizeResponse struct {
	RawText         string  `json:"raw_text"`
	Confidence      float64 `json:"confidence"`
	WordConfidences []int   `json:"word_confidences"`
}

// Recognize implements Engine.
func (e *HTTPEngine) Recognize(ctx context.Context, image []byte) (Result, error) {
	payload, err := json.Marshal(recognizeRequest{Image: base64.StdEncoding.EncodeToString(image)})
	if err != nil {
		return Result{}, fmt.Errorf("encoding ocr request: %w", err)
	}

	var lastErr *APIError
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			wait := e.delay(attempt, lastErr)
			e.logger.Debug("retrying ocr request", "attempt", attempt, "wait", wait, "status", lastErr.StatusCode)
			t := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				t.Stop()
				return Result{}, ctx.Err()
			case <-t.C:
			}
		}

		body, status, header, err := e.post(ctx, payload)
		if err != nil {
			return Result{}, err
		}

		if status >= 200 && status < 300 {
			var resp recognizeResponse
			if err := json.Unmarshal(body, &resp); err != nil {
				return Result{}, fmt.Errorf("decoding ocr response: %w", err)
			}
			conf := Clamp(resp.Confidence)
			if resp.WordConfidences != nil {
				conf = Score(resp.WordConfidences)
			}
			return Result{RawText: resp.RawText, Confidence: conf}, nil
		}

		bodyStr := string(body)
		if len(bodyStr) > 512 {
			bodyStr = bodyStr[:512]
		}
		apiErr := &APIError{StatusCode: status, Body: bodyStr}

		if status == http.StatusTooManyRequests {
			apiErr.retryAfter = header.Get("Retry-After")
			lastErr = apiErr
			continue
		}
		if status >= 500 {
			lastErr = apiErr
			continue
		}
		return Result{}, apiErr
	}
	return Result{}, lastErr
}

func (e *HTTPEngine) post(ctx context.Context, payload []byte) ([]byte, int, http.Header, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, 0, nil, fmt.Errorf("building ocr request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if e.token != "" {
		req.Header.Set("Authorization", "Bearer "+e.token)
	}

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, 0, nil, fmt.Errorf("calling ocr service: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, nil, fmt.Errorf("reading ocr response: %w", err)
	}
	return body, resp.StatusCode, resp.Header, nil
}

// delay honours Retry-After on 429 responses and otherwise falls back to
// the configured backoff.
func (e *HTTPEngine) delay(attempt int, lastErr *APIError) time.Duration {
	if lastErr != nil && lastErr.StatusCode == http.StatusTooManyRequests && lastErr.retryAfter != "" {
		if secs, err := strconv.Atoi(lastErr.retryAfter); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return e.backoff(attempt)
}

// exponentialBackoff waits 1s, 2s, 4s.
func exponentialBackoff(attempt int) time.Duration {
	return time.Duration(1<<(attempt-1)) * time.Second
}
