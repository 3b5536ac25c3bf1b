package apperrors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppErrorError(t *testing.T) {
	tests := []struct {
		name     string
		appError *AppError
		expected string
	}{
		{
			name: "With Code",
			appError: &AppError{
				Code:    "TEST_CODE",
				Message: "This is a test error",
			},
			expected: "[TEST_CODE] This is a test error",
		},
		{
			name: "Without Code",
			appError: &AppError{
				Message: "This is a test error without code",
			},
			expected: "This is a test error without code",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.appError.Error()
			if result != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, result)
			}
		})
	}
}

func TestNewValidationError(t *testing.T) {
	err := NewValidationError("name", "cannot be empty")

	assert.ErrorIs(t, err, ErrValidation)

	var ve *ValidationError
	assert.True(t, errors.As(err, &ve))
	assert.Equal(t, "name", ve.Field)
	assert.Equal(t, "validation failed for field 'name': cannot be empty", ve.Error())
}

func TestValidationErrorWithoutField(t *testing.T) {
	ve := &ValidationError{Message: "bad input"}
	assert.Equal(t, "validation failed: bad input", ve.Error())
}

func TestWrapDatabaseError(t *testing.T) {
	cause := errors.New("connection refused")
	err := WrapDatabaseError(cause, "could not save decision")

	assert.ErrorIs(t, err, ErrDatabase)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "[DB_ERROR] could not save decision", err.Error())
}

func TestWrapCheckError(t *testing.T) {
	cause := errors.New("bureau timeout")
	err := WrapCheckError("Credit", cause)

	assert.ErrorIs(t, err, ErrCheckUnavailable)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "[CHECK_UNAVAILABLE] Credit check failed to complete", err.Error())
}
