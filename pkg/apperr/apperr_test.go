package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatusByKind(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{Validation("bad input"), http.StatusBadRequest},
		{Expired("OTP expired"), http.StatusBadRequest},
		{Unauthorized("nope"), http.StatusUnauthorized},
		{Forbidden("nope"), http.StatusForbidden},
		{NotFound("missing"), http.StatusNotFound},
		{Conflict("exists"), http.StatusConflict},
		{Throttled("wait %d minute(s)", 3), http.StatusTooManyRequests},
		{Upstream("email failed", errors.New("boom")), http.StatusInternalServerError},
		{Internal("oops", errors.New("boom")), http.StatusInternalServerError},
		{errors.New("plain"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, HTTPStatus(tc.err), "err=%v", tc.err)
	}
}

func TestThrottledInterpolatesMinutes(t *testing.T) {
	err := Throttled("OTP limit reached. Please try again in %d minute(s).", 12)
	assert.Equal(t, "OTP limit reached. Please try again in 12 minute(s).", err.Message)
	assert.Equal(t, 12, err.MinutesLeft)
	assert.Equal(t, KindThrottled, err.Kind)
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindConflict, KindOf(Conflict("exists")))
	assert.Equal(t, KindInternal, KindOf(errors.New("plain")))

	// Kind survives wrapping by callers.
	wrapped := fmt.Errorf("while registering: %w", NotFound("no signup"))
	assert.Equal(t, KindNotFound, KindOf(wrapped))
	assert.Equal(t, http.StatusNotFound, HTTPStatus(wrapped))
}

func TestUnwrapExposesCause(t *testing.T) {
	cause := errors.New("dial tcp: refused")
	err := Upstream("email send failed", cause)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "email send failed: dial tcp: refused", err.Error())

	assert.Equal(t, "exists", Conflict("exists").Error())
}
