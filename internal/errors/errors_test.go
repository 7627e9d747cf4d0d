package errors_test

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/drillflash/internal/errors"
)

func TestAppError_Error(t *testing.T) {
	err := errors.NewNotFoundError("card", "abc")
	assert.Equal(t, "NOT_FOUND: card not found: abc", err.Error())

	wrapped := errors.NewInternalError(stderrors.New("disk full"))
	assert.Equal(t, "INTERNAL_ERROR: internal error (disk full)", wrapped.Error())
}

func TestAppError_Unwrap(t *testing.T) {
	cause := stderrors.New("locked")
	err := fmt.Errorf("update config: %w", errors.NewConfigSaveError("u1", cause))

	var appErr *errors.AppError
	require.True(t, stderrors.As(err, &appErr))
	assert.Equal(t, errors.ErrCodeConfigSaveFailed, appErr.Code)
	assert.ErrorIs(t, err, cause)
}

func TestHasCode(t *testing.T) {
	err := fmt.Errorf("create card: %w", errors.NewValidationError("content", "missing"))

	assert.True(t, errors.HasCode(err, errors.ErrCodeValidation))
	assert.False(t, errors.HasCode(err, errors.ErrCodeNotFound))
	assert.False(t, errors.HasCode(stderrors.New("plain"), errors.ErrCodeValidation))
	assert.False(t, errors.HasCode(nil, errors.ErrCodeValidation))
}
