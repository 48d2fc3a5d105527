// SPDX-License-Identifier: Apache-2.0

package extract

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/NarenAdithya14/ocr-appointments/internal/appointment"
)

// ocrSubstitution replaces a whole word that OCR commonly misreads.
type ocrSubstitution struct {
	pattern     *regexp.Regexp
	replacement string
}

// ocrSubstitutions are applied in order. No replacement may itself match a
// pattern, which keeps cleanup idempotent.
var ocrSubstitutions = []ocrSubstitution{
	{regexp.MustCompile(`(?i)\bnxt\b`), "next"},
	{regexp.MustCompile(`(?i)\btmrw?\b`), "tomorrow"},
	{regexp.MustCompile(`(?i)\b2morrow\b`), "tomorrow"},
	{regexp.MustCompile(`(?i)\b2day\b`), "today"},
	{regexp.MustCompile(`(?i)\bl0\b`), "10"},
	{regexp.MustCompile(`(?i)\b0r\b`), "or"},
}

// NormalizeNoise lowercases text, strips combining accents, corrects known
// OCR misreads and collapses whitespace. Applying it twice gives the same
// result as applying it once.
func NormalizeNoise(text string) string {
	return FoldNoise(strings.ToLower(text))
}

// FoldNoise is NormalizeNoise without lowercasing.
func FoldNoise(text string) string {
	if text == "" {
		return text
	}
	s := stripMarks(text)
	for _, sub := range ocrSubstitutions {
		s = sub.pattern.ReplaceAllString(s, sub.replacement)
	}
	return strings.Join(strings.Fields(s), " ")
}

// stripMarks removes nonspacing marks, turning "Fridäy" into "Friday".
// The chain is stateful, so one is built per call.
func stripMarks(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// NoiseNormalizer implements appointment.Cleaner.
type NoiseNormalizer struct{}

// NewNoiseNormalizer creates a NoiseNormalizer.
func NewNoiseNormalizer() *NoiseNormalizer {
	return &NoiseNormalizer{}
}

func (NoiseNormalizer) Clean(raw string) appointment.Text {
	return appointment.Text{
		Raw:     raw,
		Cleaned: NormalizeNoise(raw),
		Cased:   FoldNoise(raw),
	}
}
