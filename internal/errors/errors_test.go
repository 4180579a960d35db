package errors

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStorageError_Error(t *testing.T) {
	err := NewStorageError("read", "/tmp/p/architecture.json", fs.ErrPermission)
	assert.Contains(t, err.Error(), "read")
	assert.Contains(t, err.Error(), "/tmp/p/architecture.json")
	assert.Contains(t, err.Error(), "permission denied")
}

func TestStorageError_Unwrap(t *testing.T) {
	err := NewStorageError("write", "x.json", fs.ErrPermission)
	assert.ErrorIs(t, err, fs.ErrPermission)
	assert.ErrorIs(t, err, ErrStorageIO)

	wrapped := fmt.Errorf("failed to save module: %w", err)
	assert.True(t, IsStorage(wrapped))

	var se *StorageError
	assert.True(t, errors.As(wrapped, &se))
	assert.Equal(t, "write", se.Op)
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, IsNotFound(ErrModuleNotFound))
	assert.True(t, IsNotFound(fmt.Errorf("delete auth: %w", ErrArchitectureNotFound)))

	assert.False(t, IsNotFound(ErrInvalidIdentifier))
	assert.False(t, IsNotFound(NewStorageError("read", "x", fs.ErrPermission)))
	assert.False(t, IsNotFound(nil))
}

func TestSentinelErrors(t *testing.T) {
	assert.True(t, errors.Is(ErrModuleNotFound, ErrModuleNotFound))
	assert.False(t, errors.Is(ErrModuleNotFound, ErrArchitectureNotFound))
	assert.False(t, IsStorage(ErrInvalidInput))
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(NewStorageError("probe", "/data", fs.ErrPermission)))
	assert.False(t, IsRetryable(ErrInvalidIdentifier))
	assert.False(t, IsRetryable(ErrModuleNotFound))
	assert.False(t, IsRetryable(errors.New("boom")))
}
