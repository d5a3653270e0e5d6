package server

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"

	"github.com/jonathan/founder-outreach/internal/directory"
	"github.com/jonathan/founder-outreach/internal/mailer"
	"github.com/jonathan/founder-outreach/internal/store"
)

func TestErrValidation(t *testing.T) {
	err := &ErrValidation{Field: "status", Message: "invalid value"}
	assert.Equal(t, "validation error: status - invalid value", err.Error())
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(err))
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", eris.Wrapf(store.ErrNotFound, "sqlite: get %s", "x"), http.StatusNotFound},
		{"already contacted", mailer.ErrAlreadyContacted, http.StatusConflict},
		{"blacklisted", mailer.ErrBlacklisted, http.StatusConflict},
		{"scan running", ErrScanInProgress, http.StatusConflict},
		{"transport", &mailer.Error{Message: "failed", Cause: errors.New("eof")}, http.StatusBadGateway},
		{"home unavailable", fmt.Errorf("%w: timeout", directory.ErrPrimarySourceUnavailable), http.StatusBadGateway},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestValidationMessage(t *testing.T) {
	type body struct {
		Limit int `validate:"lte=50"`
	}
	err := validator.New().Struct(body{Limit: 51})

	assert.Equal(t, http.StatusBadRequest, HTTPStatus(fmt.Errorf("invalid message: %w", err)))
	assert.Equal(t, "validation error: Limit - failed lte=50", validationMessage(err))
	assert.Equal(t, "plain", validationMessage(errors.New("plain")))
}
