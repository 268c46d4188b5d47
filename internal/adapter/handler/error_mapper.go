package handler

import (
	"errors"
	"net/http"

	"crm-web/internal/domain"

	"github.com/labstack/echo/v4"
)

// mapDomainError converts a domain error into an appropriate echo.HTTPError.
// Callback failures are terminal for the request and rendered as explicit
// statuses, never redirects; there is no safe redirect target once the flow
// is broken.
func mapDomainError(err error) *echo.HTTPError {
	switch {
	case errors.Is(err, domain.ErrMissingState):
		return echo.NewHTTPError(http.StatusBadRequest, "missing state parameter")

	case errors.Is(err, domain.ErrMissingStateCookie):
		return echo.NewHTTPError(http.StatusBadRequest, "missing authentication state cookie")

	case errors.Is(err, domain.ErrInvalidStateData):
		return echo.NewHTTPError(http.StatusBadRequest, "invalid state data")

	case errors.Is(err, domain.ErrMissingCode):
		return echo.NewHTTPError(http.StatusBadRequest, "missing authorization code")

	case errors.Is(err, domain.ErrMissingVerifier),
		errors.Is(err, domain.ErrCookieDecode):
		return echo.NewHTTPError(http.StatusBadRequest, "invalid challenge data")

	case errors.Is(err, domain.ErrCSRFMismatch):
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid authentication state")

	case errors.Is(err, domain.ErrAuthExchange):
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication failed")

	case errors.Is(err, domain.ErrAccountNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "user not found")

	case errors.Is(err, domain.ErrInvalidPayload),
		errors.Is(err, domain.ErrCompanyNotAllowed):
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request")

	case errors.Is(err, domain.ErrProviderUnavailable):
		return echo.NewHTTPError(http.StatusBadGateway, "identity provider unavailable")

	case errors.Is(err, domain.ErrBackendUnavailable):
		return echo.NewHTTPError(http.StatusBadGateway, "backend unavailable")

	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
}
