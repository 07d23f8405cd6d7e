package util

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
)

func TestToDomainError(t *testing.T) {
	validation := NewValidationError("validation failed", map[string]any{"email": []string{"is invalid"}})

	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"domain error", NewParameterMissing("user"), http.StatusBadRequest, CodeMalformedRequest},
		{"wrapped domain error", fmt.Errorf("create: %w", validation), http.StatusUnprocessableEntity, CodeValidationFailed},
		{"ambiguous", NewAmbiguousMatch("Unable to delete"), http.StatusUnprocessableEntity, CodeAmbiguousMatch},
		{"fiber error", fiber.ErrMethodNotAllowed, http.StatusMethodNotAllowed, "Method Not Allowed"},
		{"no rows", fmt.Errorf("delete: %w", pgx.ErrNoRows), http.StatusNotFound, CodeNotFound},
		{"anything else", errors.New("boom"), http.StatusInternalServerError, CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			de := ToDomainError(tt.err)
			assert.Equal(t, tt.status, de.HTTPStatus)
			assert.Equal(t, tt.code, de.Code)
		})
	}

	assert.Nil(t, ToDomainError(nil))
}

func TestParameterMissingMessage(t *testing.T) {
	de := ToDomainError(NewParameterMissing("user"))
	assert.Equal(t, "param is missing or the value is empty: user", de.Message)
	assert.Empty(t, de.Details)
}

func TestInternalErrorHidesCause(t *testing.T) {
	cause := errors.New("dial tcp: refused")
	de := ToDomainError(NewInternalError(cause))
	assert.Equal(t, "internal server error", de.Message)
	assert.ErrorIs(t, de, cause)
	assert.Contains(t, de.Error(), "refused")
}
