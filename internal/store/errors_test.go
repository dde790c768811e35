package store

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEntityErrorsWrapGenericNotFound(t *testing.T) {
	t.Parallel()

	assert.True(t, errors.Is(ErrCardNotFound, ErrNotFound))
	assert.True(t, errors.Is(ErrNotificationNotFound, ErrNotFound))

	assert.True(t, IsNotFoundError(ErrCardNotFound))
	assert.True(t, IsNotFoundError(fmt.Errorf("lookup: %w", ErrNotificationNotFound)))
	assert.False(t, IsNotFoundError(ErrDuplicate))
	assert.False(t, IsNotFoundError(nil))
}

func TestStoreError(t *testing.T) {
	t.Parallel()

	cause := errors.New("connection refused")
	err := NewStoreError("notification", "save", "write failed", cause)

	assert.Contains(t, err.Error(), "save operation on notification failed")
	assert.Contains(t, err.Error(), "connection refused")
	assert.True(t, errors.Is(err, cause))

	var storeErr *StoreError
	assert.True(t, errors.As(err, &storeErr))
	assert.Equal(t, "notification", storeErr.Entity)

	// Without a cause, the message stands alone.
	bare := NewStoreError("card", "get", "missing", nil)
	assert.Equal(t, "get operation on card failed: missing", bare.Error())
}
