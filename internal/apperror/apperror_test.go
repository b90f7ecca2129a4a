package apperror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOfWrapped(t *testing.T) {
	err := fmt.Errorf("place order: %w", Inventory("not enough stock", 3))

	assert.Equal(t, KindInventory, KindOf(err))
	assert.True(t, Is(err, KindInventory))

	var appErr *Error
	assert.True(t, errors.As(err, &appErr))
	assert.Equal(t, 3, appErr.Available)
}

func TestKindOfPlainError(t *testing.T) {
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
	assert.False(t, Is(nil, KindInternal))
}

func TestInternalUnwraps(t *testing.T) {
	cause := errors.New("connection reset")
	err := Internal("could not save order", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "could not save order: connection reset", err.Error())
	assert.Equal(t, "internal", err.Kind.String())
}
