package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"posbridge.GO/core/apperr"
)

// StatusFor maps a kinded domain error to an HTTP status.
func StatusFor(err error) int {
	switch apperr.KindOf(err) {
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindConflict:
		return http.StatusConflict
	case apperr.KindUnprocessable:
		return http.StatusUnprocessableEntity
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindRemote:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// FailJSON renders a domain error as {"error": ..., "kind": ...}.
func FailJSON(c echo.Context, err error) error {
	return c.JSON(StatusFor(err), echo.Map{
		"error": err.Error(),
		"kind":  apperr.KindOf(err).String(),
	})
}
