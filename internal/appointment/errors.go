// SPDX-License-Identifier: Apache-2.0

package appointment

import "errors"

// Kind classifies a Failure.
type Kind string

const (
	// KindInputValidation rejects input before the pipeline runs.
	KindInputValidation Kind = "input_validation"
	// KindAmbiguousEntity is a guardrail rejection; the caller can recover by
	// supplying corrections.
	KindAmbiguousEntity Kind = "ambiguous_entity"
	// KindExtractionFailure means normalization produced no usable date or time
	// even though the guardrail passed.
	KindExtractionFailure Kind = "extraction_failure"
	// KindCollaboratorFailure covers OCR and image decoding errors.
	KindCollaboratorFailure Kind = "collaborator_failure"
)

// Field names the entity a guardrail rejection refers to.
type Field string

const (
	FieldDate       Field = "date"
	FieldTime       Field = "time"
	FieldDepartment Field = "department"
)

// Failure is the error type returned by the pipeline and its stages.
type Failure struct {
	Kind    Kind
	Field   Field
	Message string
	Err     error
}

func (f *Failure) Error() string {
	if f.Err != nil {
		return f.Message + ": " + f.Err.Error()
	}
	return f.Message
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// KindOf returns the Kind of the first Failure in err's chain, or "" if there is none.
func KindOf(err error) Kind {
	var f *Failure
	if errors.As(err, &f) {
		return f.Kind
	}
	return ""
}

func newFailure(kind Kind, message string) *Failure {
	return &Failure{Kind: kind, Message: message}
}

// NewInputError reports input rejected before the pipeline runs.
func NewInputError(message string) error {
	return newFailure(KindInputValidation, message)
}

// NewCollaboratorError reports a failure of an external collaborator such as
// the OCR engine.
func NewCollaboratorError(message string, err error) error {
	return &Failure{Kind: KindCollaboratorFailure, Message: message, Err: err}
}
