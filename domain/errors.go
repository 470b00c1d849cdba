package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrSessionNotFound   = errors.New("invalid or expired session")
	ErrInterviewComplete = errors.New("interview already has all its questions")
	ErrSlotConflict      = errors.New("slot already filled")
	ErrMalformedOutput   = errors.New("malformed capability output")
	ErrEmptyOutput       = errors.New("empty capability output")
	ErrRecordNotFound    = errors.New("interview record not found")
)

// ValidationError reports a missing or unusable request field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Required returns a ValidationError when value is blank.
func Required(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return &ValidationError{Field: field, Reason: "is required"}
	}
	return nil
}

// CapabilityError wraps any failure of the text-completion dependency.
type CapabilityError struct {
	Provider string
	Err      error
}

func (e *CapabilityError) Error() string {
	return fmt.Sprintf("%s completion failed: %v", e.Provider, e.Err)
}

func (e *CapabilityError) Unwrap() error { return e.Err }

func equalFold(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
