package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPStatusMapping(t *testing.T) {
	tests := []struct {
		err  *Error
		want int
	}{
		{Validationf("bad input"), http.StatusBadRequest},
		{NotFoundf("missing"), http.StatusNotFound},
		{AlreadyProcessedf("done"), http.StatusConflict},
		{Forbidden(), http.StatusForbidden},
		{RateLimited(30), http.StatusTooManyRequests},
		{Internal(errors.New("boom")), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.err.HTTPStatus(), "code %s", tt.err.Code)
	}
}

func TestAsThroughWrapping(t *testing.T) {
	base := NotFoundf("alert a-1 not found")
	wrapped := fmt.Errorf("lookup failed: %w", base)

	got := As(wrapped)
	require.NotNil(t, got)
	assert.Equal(t, CodeNotFound, got.Code)

	assert.Nil(t, As(errors.New("plain")))
}

func TestInternalHidesCause(t *testing.T) {
	cause := errors.New("pq: connection refused")
	err := Internal(cause)

	assert.Equal(t, "internal error", err.Message)
	assert.ErrorIs(t, err, cause)
}

func TestRateLimitedDetail(t *testing.T) {
	err := RateLimited(45)
	assert.Equal(t, 45, err.Details["retry_after_seconds"])
}
