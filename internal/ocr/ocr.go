// SPDX-License-Identifier: Apache-2.0

// Package ocr turns appointment images into text with a confidence score.
//
// The engine itself is an external collaborator. HTTPEngine talks to a
// remote OCR service; Static serves fixed results for offline use and tests.
package ocr

import (
	"context"
	"math"
)

// Result is the text recognized in an image together with the engine's
// confidence in [0, 1]. An image with no recognizable words yields an empty
// RawText, which is not an error.
type Result struct {
	RawText    string  `json:"raw_text"`
	Confidence float64 `json:"confidence"`
}

// Engine recognizes text in PNG or JPEG image bytes.
type Engine interface {
	Recognize(ctx context.Context, image []byte) (Result, error)
}

// EngineFunc adapts a function to the Engine interface.
type EngineFunc func(ctx context.Context, image []byte) (Result, error)

// Recognize calls f.
func (f EngineFunc) Recognize(ctx context.Context, image []byte) (Result, error) {
	return f(ctx, image)
}

// Static returns the same result for every image.
type Static Result

// Recognize implements Engine.
func (s Static) Recognize(ctx context.Context, _ []byte) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	return Result(s), nil
}

// Score converts per-word confidences on a 0-100 scale into a single value
// in [0, 1], rounded to two decimal places. Negative entries mark non-word
// boxes and are skipped. No words scores 0.
func Score(wordConfidences []int) float64 {
	var sum, n int
	for _, c := range wordConfidences {
		if c < 0 {
			continue
		}
		sum += c
		n++
	}
	if n == 0 {
		return 0
	}
	return Clamp(float64(sum) / float64(n) / 100)
}

// Clamp bounds c to [0, 1] and rounds it to two decimal places.
func Clamp(c float64) float64 {
	if math.IsNaN(c) || c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return math.Round(c*100) / 100
}
