package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError(t *testing.T) {
	t.Run("Error formats code and message", func(t *testing.T) {
		err := New(ErrCodeUserNotFound, "User not found")
		assert.Equal(t, "USER_NOT_FOUND: User not found", err.Error())
	})

	t.Run("Error includes cause when present", func(t *testing.T) {
		cause := errors.New("connection refused")
		err := Wrap(ErrCodeStoreUnavailable, "Link store unavailable", cause)
		assert.Contains(t, err.Error(), "connection refused")
	})

	t.Run("Unwrap returns the cause", func(t *testing.T) {
		cause := errors.New("boom")
		err := New(ErrCodeInternal, "oops").WithCause(cause)
		assert.ErrorIs(t, err, cause)
	})

	t.Run("WithDetails attaches details", func(t *testing.T) {
		err := ValidationError("bad input").WithDetails(map[string]string{"field": "email"})
		assert.NotNil(t, err.Details)
	})
}

func TestErrorHelpers(t *testing.T) {
	t.Run("AsAppError finds wrapped AppError", func(t *testing.T) {
		inner := SessionNotFound()
		wrapped := fmt.Errorf("consume link session: %w", inner)

		appErr, ok := AsAppError(wrapped)
		assert.True(t, ok)
		assert.Equal(t, ErrCodeSessionNotFound, appErr.Code)
	})

	t.Run("IsAppError rejects plain errors", func(t *testing.T) {
		assert.False(t, IsAppError(errors.New("plain")))
	})

	t.Run("GetCode falls back to internal", func(t *testing.T) {
		assert.Equal(t, ErrCodeInternal, GetCode(errors.New("plain")))
		assert.Equal(t, ErrCodePhoneMismatch, GetCode(PhoneMismatch()))
	})

	t.Run("HasCode matches code", func(t *testing.T) {
		assert.True(t, HasCode(NoCredential(), ErrCodeNoCredential))
		assert.False(t, HasCode(NoCredential(), ErrCodeSessionNotFound))
		assert.False(t, HasCode(errors.New("plain"), ErrCodeNoCredential))
	})
}
