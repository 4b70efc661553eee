package domain

import "fmt"

// ValidationError reports the first unmet condition of a wizard step
// guard. It blocks navigation locally and never reaches the submission
// pipeline.
type ValidationError struct {
	Step   int
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("step %d: %s: %s", e.Step, e.Field, e.Reason)
}

func NewValidationError(step int, field, reason string) *ValidationError {
	return &ValidationError{
		Step:   step,
		Field:  field,
		Reason: reason,
	}
}
