package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseErrorUnwraps(t *testing.T) {
	err := fmt.Errorf("upload: %w", NewParseError("open", ErrInvalidFileFormat))

	assert.True(t, IsParseError(err))
	assert.True(t, errors.Is(err, ErrInvalidFileFormat))
	assert.False(t, IsStoreError(err))
}

func TestStoreErrorWrapsNotFound(t *testing.T) {
	err := NewStoreError("delete", ErrRecordNotFound)

	assert.True(t, IsStoreError(err))
	assert.True(t, errors.Is(err, ErrRecordNotFound))
	assert.Equal(t, "store delete failed: record not found", err.Error())
}

func TestNewStoreErrorNil(t *testing.T) {
	assert.NoError(t, NewStoreError("fetch", nil))
}

func TestRetryable(t *testing.T) {
	err := NewRetryableError(errors.New("connection reset"), "download failed")

	assert.True(t, IsRetryable(err))
	assert.False(t, IsRetryable(NewParseError("rows", errors.New("bad zip"))))
}

func TestValidationError(t *testing.T) {
	err := fmt.Errorf("wrap: %w", ValidationError{Field: "page_size", Value: 7, Message: "must be 10, 25, 50, 100 or 0"})

	assert.True(t, IsValidationError(err))
	assert.Contains(t, err.Error(), "page_size")
}
