package errors_test

import (
	"fmt"
	"testing"

	apperrors "github.com/jrsteele09/impact-portal/internal/errors"
	"github.com/stretchr/testify/require"
)

func TestWrapf(t *testing.T) {
	require.NoError(t, apperrors.Wrapf(nil, "ignored"))

	err := apperrors.Wrapf(apperrors.ErrNotFound, "get project %s", "p-1")
	require.EqualError(t, err, "get project p-1: not found")
	require.True(t, apperrors.Is(err, apperrors.ErrNotFound))
}

func TestValidationError(t *testing.T) {
	err := fmt.Errorf("create: %w", apperrors.Invalid("Budget must be greater than 0"))

	require.True(t, apperrors.Is(err, apperrors.ErrValidation))

	var ve *apperrors.ValidationError
	require.True(t, apperrors.As(err, &ve))
	require.Equal(t, "Budget must be greater than 0", ve.Message)
}
