package model

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks a malformed or incomplete component description.
	ErrValidation = errors.New("validation error")
	// ErrIdentifierRequired is returned when NVD is asked to look up an empty CPE.
	ErrIdentifierRequired = errors.New("identifier is required for NVD lookups")
	// ErrNotFound is returned by lookups of unknown ids.
	ErrNotFound = errors.New("not found")
)

// Validationf returns an error wrapping ErrValidation with a formatted detail.
func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// UpstreamError reports a transport failure or a non-success response from OSV or NVD.
type UpstreamError struct {
	Source     Source
	StatusCode int
	Body       string
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s request failed: %v", e.Source, e.Err)
	}
	return fmt.Sprintf("%s returned status %d: %s", e.Source, e.StatusCode, e.Body)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// AnalysisError wraps any failure raised while analyzing a component.
type AnalysisError struct {
	Err error
}

func (e *AnalysisError) Error() string {
	return "upstream analysis failed: " + e.Err.Error()
}

func (e *AnalysisError) Unwrap() error { return e.Err }
