package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_JSONShape(t *testing.T) {
	body, err := json.Marshal(Validation([]string{"Valid email is required"}))
	require.NoError(t, err)

	assert.JSONEq(t, `{"error":"Validation failed","details":["Valid email is required"]}`, string(body))
}

func TestNotFound_HasEmptyDetails(t *testing.T) {
	body, err := json.Marshal(ErrRiderNotFound)
	require.NoError(t, err)

	assert.JSONEq(t, `{"error":"Rider not found","details":[]}`, string(body))
	assert.Equal(t, http.StatusNotFound, ErrRiderNotFound.Status)
}

func TestGetAppError(t *testing.T) {
	t.Run("passes through wrapped app errors", func(t *testing.T) {
		wrapped := fmt.Errorf("lookup: %w", ErrRiderNotFound)

		appErr := GetAppError(wrapped)
		assert.Same(t, ErrRiderNotFound, appErr)
	})

	t.Run("hides unknown errors behind a 500", func(t *testing.T) {
		appErr := GetAppError(stderrors.New("socket closed"))

		assert.Equal(t, http.StatusInternalServerError, appErr.Status)
		assert.Equal(t, "Internal server error", appErr.Message)
		assert.NotContains(t, appErr.Details, "socket closed")
	})
}

func TestWithCause_DoesNotMutateSentinel(t *testing.T) {
	cause := stderrors.New("E11000 duplicate key")

	appErr := WithCause(ErrDuplicateField, cause)

	assert.ErrorIs(t, appErr, cause)
	assert.Nil(t, ErrDuplicateField.Err)
	assert.Equal(t, ErrDuplicateField.Details, appErr.Details)
}

func TestStatusCodes(t *testing.T) {
	tests := []struct {
		name   string
		err    *AppError
		status int
	}{
		{"validation", Validation(nil), http.StatusBadRequest},
		{"already exists", ErrRiderAlreadyExists, http.StatusBadRequest},
		{"duplicate", ErrDuplicateField, http.StatusBadRequest},
		{"invalid json", InvalidJSON(nil), http.StatusBadRequest},
		{"too large", PayloadTooLarge(nil), http.StatusRequestEntityTooLarge},
		{"timeout", Timeout(nil), http.StatusRequestTimeout},
		{"unavailable", ErrStoreUnavailable, http.StatusServiceUnavailable},
		{"internal", Internal("boom", nil), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, tt.err.Status)
			assert.NotNil(t, tt.err.Details)
		})
	}
}
