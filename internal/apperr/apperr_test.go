package apperr_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"tendercrm/internal/apperr"

	"github.com/stretchr/testify/require"
)

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{apperr.Validation("bad"), http.StatusBadRequest},
		{apperr.Unauthorized("who"), http.StatusUnauthorized},
		{apperr.Forbidden("no"), http.StatusForbidden},
		{apperr.NotFound("none"), http.StatusNotFound},
		{apperr.Conflict("dup"), http.StatusConflict},
		{apperr.Internal(errors.New("boom")), http.StatusInternalServerError},
		{errors.New("plain"), http.StatusInternalServerError},
		{fmt.Errorf("wrapped: %w", apperr.NotFound("none")), http.StatusNotFound},
	}
	for _, c := range cases {
		require.Equal(t, c.want, apperr.HTTPStatus(c.err), c.err.Error())
	}
}

func TestInternalHidesCause(t *testing.T) {
	cause := errors.New("pq: connection refused")
	e := apperr.From(cause)

	require.Equal(t, apperr.KindInternal, e.Kind)
	require.Equal(t, apperr.InternalMessage, e.Message)
	require.ErrorIs(t, e, cause)
}
