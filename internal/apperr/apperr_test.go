package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindOf(t *testing.T) {
	err := New(KindInsufficientStock, "listing %d has no stock", 42)
	assert.Equal(t, KindInsufficientStock, KindOf(err))
	assert.True(t, IsKind(err, KindInsufficientStock))
	assert.False(t, IsKind(err, KindNotFound))
}

func TestKindOfWrapped(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(KindInternal, cause, "query failed")

	assert.Equal(t, KindInternal, KindOf(err))
	assert.ErrorIs(t, err, cause)

	// Kind survives further wrapping by callers.
	outer := fmt.Errorf("placing order: %w", err)
	assert.Equal(t, KindInternal, KindOf(outer))
}

func TestKindOfForeignError(t *testing.T) {
	assert.Equal(t, KindInternal, KindOf(errors.New("plain")))
}

func TestErrorMessage(t *testing.T) {
	err := New(KindMinimumOrder, "minimum is %d", 5)
	assert.Equal(t, "minimum_order: minimum is 5", err.Error())

	wrapped := Wrap(KindNotFound, errors.New("gone"), "listing 7")
	assert.Equal(t, "not_found: listing 7: gone", wrapped.Error())
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		kind   Kind
		status int
	}{
		{KindValidation, http.StatusBadRequest},
		{KindMinimumOrder, http.StatusBadRequest},
		{KindNotFound, http.StatusNotFound},
		{KindInvalidTier, http.StatusForbidden},
		{KindTierMismatch, http.StatusForbidden},
		{KindForbidden, http.StatusForbidden},
		{KindImmutableField, http.StatusForbidden},
		{KindInsufficientStock, http.StatusConflict},
		{KindIllegalTransition, http.StatusConflict},
		{KindInternal, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			require.Equal(t, tt.status, HTTPStatus(tt.kind))
		})
	}
}
