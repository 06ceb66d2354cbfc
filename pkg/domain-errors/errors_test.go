package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasCode(t *testing.T) {
	t.Run("matches wrapped domain error", func(t *testing.T) {
		err := fmt.Errorf("submit: %w", New(CodeUnauthorized, "login required"))
		assert.True(t, HasCode(err, CodeUnauthorized))
		assert.False(t, HasCode(err, CodeValidation))
	})

	t.Run("plain errors have no code", func(t *testing.T) {
		assert.False(t, HasCode(errors.New("boom"), CodeInternal))
		assert.False(t, HasCode(nil, CodeInternal))
	})
}

func TestWrap(t *testing.T) {
	t.Run("nil stays nil", func(t *testing.T) {
		assert.NoError(t, Wrap(nil, CodeInternal, "ignored"))
	})

	t.Run("keeps the cause reachable", func(t *testing.T) {
		cause := errors.New("redis down")
		err := Wrap(cause, CodeInternal, "read session")
		require.ErrorIs(t, err, cause)
		assert.Equal(t, "read session: redis down", err.Error())
	})
}

func TestValidation(t *testing.T) {
	violations := []string{"a", "b"}
	err := Validation("form rejected", violations)
	violations[0] = "mutated"

	de, ok := Is(err)
	require.True(t, ok)
	assert.Equal(t, CodeValidation, de.Code)
	assert.Equal(t, []string{"a", "b"}, de.Details)
	assert.Equal(t, "form rejected: a; b", err.Error())
}
