package apperr

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidationError_Error(t *testing.T) {
	err := NewValidationError(map[string]string{"phone": "phone is required", "email": "email is required"})
	assert.Equal(t, "validation failed: email: email is required; phone: phone is required", err.Error())
}

func TestIsValidation_Wrapped(t *testing.T) {
	err := fmt.Errorf("create user: %w", Invalid("name", "name is required"))

	ve, ok := IsValidation(err)
	require.True(t, ok)
	assert.Equal(t, "name is required", ve.Fields["name"])

	_, ok = IsValidation(ErrNotFound)
	assert.False(t, ok)
}

func TestStorageError_Unwrap(t *testing.T) {
	err := fmt.Errorf("store attachment: %w", &StorageError{Op: "write", Err: fs.ErrPermission})

	assert.True(t, IsStorage(err))
	assert.True(t, errors.Is(err, fs.ErrPermission))
	assert.False(t, IsStorage(ErrNotFound))
}
