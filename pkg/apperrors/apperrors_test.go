package apperrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorMessageFormats(t *testing.T) {
	err := New(InvalidValue, "unknown environment: %s", "staging")
	assert.Equal(t, "INVALID_VALUE: unknown environment: staging", err.Error())

	wrapped := Wrap(NetworkError, errors.New("connection refused"), "discovery failed")
	assert.Contains(t, wrapped.Error(), "NETWORK_ERROR")
	assert.Contains(t, wrapped.Error(), "connection refused")
}

func TestKindOf(t *testing.T) {
	err := New(Timeout, "no callback received")
	assert.Equal(t, Timeout, KindOf(err))

	// Kind survives further wrapping.
	outer := fmt.Errorf("login failed: %w", err)
	assert.Equal(t, Timeout, KindOf(outer))
	assert.True(t, HasKind(outer, Timeout))
	assert.False(t, HasKind(outer, AuthFailed))

	assert.Equal(t, Kind(""), KindOf(errors.New("plain")))
}

func TestErrorsIsMatchesByKind(t *testing.T) {
	err := Wrap(StoreUnavailable, errors.New("no dbus session"), "keyring probe")
	require.True(t, errors.Is(err, &Error{Kind: StoreUnavailable}))
	require.False(t, errors.Is(err, &Error{Kind: Timeout}))
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := Wrap(AuthFailed, cause, "")
	assert.ErrorIs(t, err, cause)
}
