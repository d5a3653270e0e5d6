// Package directory discovers company detail pages on the startup directory
// and extracts company facts from them.
package directory

import (
	"errors"
	"fmt"
)

// ErrPrimarySourceUnavailable is returned when the home listing cannot be fetched.
// It is the only fatal discovery failure.
var ErrPrimarySourceUnavailable = errors.New("primary directory listing unavailable")

// ExtractionError represents a failure to parse a directory page.
type ExtractionError struct {
	Message string
	Cause   error
}

func (e *ExtractionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("extraction error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("extraction error: %s", e.Message)
}

func (e *ExtractionError) Unwrap() error {
	return e.Cause
}
