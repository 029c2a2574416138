package apperr_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"ms-restaurant/internal/apperr"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatusContract(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{apperr.Forbidden("nope"), http.StatusForbidden},
		{apperr.NotFound("missing"), http.StatusNotFound},
		{apperr.InvalidTransition("frozen"), http.StatusUnprocessableEntity},
		{apperr.InvalidArgument("bad input"), http.StatusUnprocessableEntity},
		{apperr.Conflict("raced"), http.StatusConflict},
		{apperr.Internal("boom", errors.New("disk on fire")), http.StatusInternalServerError},
		{errors.New("some unclassified error"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.status, apperr.HTTPStatus(tc.err), "%v", tc.err)
	}
}

func TestKindSurvivesWrapping(t *testing.T) {
	inner := apperr.Forbidden("denied")
	wrapped := fmt.Errorf("handling request: %w", inner)

	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(wrapped))
	assert.True(t, apperr.IsKind(wrapped, apperr.KindForbidden))
	assert.Equal(t, http.StatusForbidden, apperr.HTTPStatus(wrapped))
}

func TestInternalKeepsCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := apperr.Internal("select order", cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "select order")
	assert.Contains(t, err.Error(), "connection reset")
}

func TestIsKindOnNil(t *testing.T) {
	assert.False(t, apperr.IsKind(nil, apperr.KindInternal))
}
