// Package server provides the HTTP API for reviewing discovered companies,
// triggering scans and sending outreach.
package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/founder-outreach/internal/directory"
	"github.com/jonathan/founder-outreach/internal/mailer"
	"github.com/jonathan/founder-outreach/internal/store"
)

// ErrScanInProgress is returned when a scan is requested while another is running.
var ErrScanInProgress = errors.New("a scan is already running")

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		validation *ErrValidation
		invalid    validator.ValidationErrors
		transport  *mailer.Error
	)
	switch {
	case errors.As(err, &validation), errors.As(err, &invalid):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, mailer.ErrAlreadyContacted),
		errors.Is(err, mailer.ErrBlacklisted),
		errors.Is(err, ErrScanInProgress):
		return http.StatusConflict
	case errors.As(err, &transport), errors.Is(err, directory.ErrPrimarySourceUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// validationMessage flattens validator errors into one readable line.
func validationMessage(err error) string {
	var invalid validator.ValidationErrors
	if !errors.As(err, &invalid) || len(invalid) == 0 {
		return err.Error()
	}
	fe := invalid[0]
	if fe.Param() != "" {
		return fmt.Sprintf("validation error: %s - failed %s=%s", fe.Field(), fe.Tag(), fe.Param())
	}
	return fmt.Sprintf("validation error: %s - failed %s", fe.Field(), fe.Tag())
}
