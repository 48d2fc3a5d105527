// SPDX-License-Identifier: Apache-2.0

package appointment

import "math"

// fieldConfidence is the score given to each extracted field that is present.
const fieldConfidence = 0.9

// Diagnostics reports what each stage of one run produced. Scores are
// informational and never affect the outcome.
type Diagnostics struct {
	OCR           OCRStage            `json:"ocr"`
	Entities      EntityStage         `json:"entities"`
	Normalization *NormalizationStage `json:"normalization,omitempty"`
}

// OCRStage is the text the pipeline started from.
type OCRStage struct {
	RawText    string  `json:"raw_text"`
	Confidence float64 `json:"confidence"`
}

// EntityStage is the output of extraction.
type EntityStage struct {
	Entities   EntitySet `json:"entities"`
	Confidence float64   `json:"entities_confidence"`
}

// NormalizationStage is the output of normalization.
type NormalizationStage struct {
	Normalized NormalizedAppointment `json:"normalized"`
	Confidence float64               `json:"normalization_confidence"`
}

// EntityConfidence scores an entity set: date, time and department each
// contribute fieldConfidence when present, and the mean is scaled by the
// confidence of the text source.
func EntityConfidence(e EntitySet, sourceConfidence float64) float64 {
	present := 0
	for _, f := range []*string{e.DatePhrase, e.TimePhrase, e.Department} {
		if f != nil {
			present++
		}
	}
	mean := fieldConfidence * float64(present) / 3
	return round2(mean * clamp01(sourceConfidence))
}

// NormalizationConfidence is fieldConfidence when both date and time were
// normalized and zero otherwise.
func NormalizationConfidence(n NormalizedAppointment) float64 {
	if n.Date != nil && n.Time != nil {
		return fieldConfidence
	}
	return 0
}

func clamp01(f float64) float64 {
	if math.IsNaN(f) || f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
