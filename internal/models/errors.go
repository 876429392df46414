package models

import (
	"errors"
	"fmt"
)

// ErrInvalidSubmission is the sentinel every ValidationError unwraps to.
var ErrInvalidSubmission = errors.New("invalid submission")

type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidSubmission
}
