package util

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToDomainError(t *testing.T) {
	t.Run("passes domain errors through", func(t *testing.T) {
		err := NewAccessDenied("not a participant", nil)
		de := ToDomainError(err)
		require.NotNil(t, de)
		assert.Equal(t, "ACCESS_DENIED", de.Code)
		assert.Equal(t, http.StatusForbidden, de.HTTPStatus)
	})

	t.Run("wraps unknown errors as internal", func(t *testing.T) {
		de := ToDomainError(errors.New("boom"))
		assert.Equal(t, "INTERNAL_ERROR", de.Code)
		assert.Equal(t, http.StatusInternalServerError, de.HTTPStatus)
	})

	t.Run("nil stays nil", func(t *testing.T) {
		assert.Nil(t, ToDomainError(nil))
	})
}

func TestWriteFailedUnwraps(t *testing.T) {
	cause := errors.New("connection reset")
	err := NewWriteFailed("close session", cause)
	assert.ErrorIs(t, err, cause)
	assert.True(t, HasCode(err, "WRITE_FAILED"))
	assert.Equal(t, http.StatusServiceUnavailable, ToDomainError(err).HTTPStatus)
}

func TestWithDetailDoesNotMutateOriginal(t *testing.T) {
	base := NewNotFound("session", map[string]any{"session_id": "s1"})
	withNav := WithDetail(base, "navigate_to", "ticket-list")

	assert.Equal(t, "ticket-list", ToDomainError(withNav).Details["navigate_to"])
	_, present := ToDomainError(base).Details["navigate_to"]
	assert.False(t, present)

	plain := errors.New("plain")
	assert.Equal(t, plain, WithDetail(plain, "k", "v"))
}

func TestPartialCascade(t *testing.T) {
	err := NewPartialCascade("chat closed but ticket not resolved",
		map[string]any{"session_closed": true, "ticket_resolved": false}, errors.New("timeout"))
	de := ToDomainError(err)
	assert.Equal(t, "PARTIAL_CASCADE", de.Code)
	assert.Equal(t, http.StatusFailedDependency, de.HTTPStatus)
	assert.Equal(t, true, de.Details["session_closed"])
}
