package api

import (
	"errors"
	"net/http"
	"testing"

	"posbridge.GO/core/apperr"
)

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{apperr.New(apperr.KindNotFound, "gone"), http.StatusNotFound},
		{apperr.New(apperr.KindConflict, "busy"), http.StatusConflict},
		{apperr.New(apperr.KindUnprocessable, "nope"), http.StatusUnprocessableEntity},
		{apperr.New(apperr.KindValidation, "bad"), http.StatusBadRequest},
		{apperr.New(apperr.KindRemote, "down"), http.StatusBadGateway},
		{errors.New("plain"), http.StatusInternalServerError},
	}
	for _, c := range cases {
		if got := StatusFor(c.err); got != c.want {
			t.Errorf("StatusFor(%v) = %d, want %d", c.err, got, c.want)
		}
	}
}
