package errors

import (
	goerrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleUpdater struct{}

func TestStoreError_Error(t *testing.T) {
	t.Parallel()

	t.Run("store and message", func(t *testing.T) {
		t.Parallel()
		err := NewNotFoundError("metadata", 42)
		assert.Equal(t, "NotFound: record 42 not found (store: metadata)", err.Error())
	})

	t.Run("without store", func(t *testing.T) {
		t.Parallel()
		err := NewInvalidArgumentError("owner must not be negative")
		assert.Equal(t, "InvalidArgument: owner must not be negative", err.Error())
	})

	t.Run("with cause", func(t *testing.T) {
		t.Parallel()
		err := NewStoreFailureError("metadata_draft", "save", fmt.Errorf("disk full"))
		assert.Equal(t, "StoreFailure: save failed (store: metadata_draft): disk full", err.Error())
	})
}

func TestTypeErrorsNameTheGoType(t *testing.T) {
	t.Parallel()

	mismatch := NewTypeMismatchError("metadata", &sampleUpdater{})
	assert.Contains(t, mismatch.Error(), "*errors.sampleUpdater")
	assert.Equal(t, ErrTypeMismatch, mismatch.Code)

	unrecognized := NewUnrecognizedTypeError(sampleUpdater{}, nil)
	assert.Contains(t, unrecognized.Error(), "errors.sampleUpdater")
	assert.Equal(t, ErrUnrecognizedType, unrecognized.Code)
}

func TestCheckingHelpersWalkCauses(t *testing.T) {
	t.Parallel()

	notFound := NewNotFoundError("metadata", 7)
	wrapped := NewUnrecognizedTypeError(&sampleUpdater{}, notFound)

	assert.True(t, IsUnrecognizedTypeError(wrapped))
	assert.True(t, IsNotFoundError(wrapped))
	assert.False(t, IsTypeMismatchError(wrapped))

	// fmt wrapping is transparent too
	outer := fmt.Errorf("update record: %w", wrapped)
	assert.True(t, IsNotFoundError(outer))

	var storeErr *StoreError
	require.True(t, goerrors.As(outer, &storeErr))
	assert.Equal(t, ErrUnrecognizedType, storeErr.Code)
}

func TestCheckingHelpersOnForeignErrors(t *testing.T) {
	t.Parallel()

	plain := goerrors.New("boom")
	assert.False(t, IsNotFoundError(plain))
	assert.False(t, IsAlreadyExistsError(plain))
	assert.False(t, IsInvalidArgumentError(nil))
}

func TestErrorCode_String(t *testing.T) {
	t.Parallel()

	tests := []struct {
		code ErrorCode
		want string
	}{
		{ErrNotFound, "NotFound"},
		{ErrAlreadyExists, "AlreadyExists"},
		{ErrInvalidArgument, "InvalidArgument"},
		{ErrTypeMismatch, "TypeMismatch"},
		{ErrUnrecognizedType, "UnrecognizedType"},
		{ErrStoreFailure, "StoreFailure"},
		{ErrorCode(99), "Unknown(99)"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.code.String())
		})
	}
}
