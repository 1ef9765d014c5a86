package handler

import (
	"errors"
	"net/http"

	"github.com/thirdweb-example/community-rewards/internal/domain"

	"github.com/labstack/echo/v4"
)

// mapDomainError converts a domain error into an appropriate echo.HTTPError.
// Raw dependency errors never reach the client; only the taxonomy does.
func mapDomainError(err error) *echo.HTTPError {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound),
		errors.Is(err, domain.ErrSessionExpired),
		errors.Is(err, domain.ErrSessionInvalid),
		errors.Is(err, domain.ErrOAuthStateBad):
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")

	case errors.Is(err, domain.ErrInvalidAddress):
		return echo.NewHTTPError(http.StatusBadRequest, "invalid claimer address")

	case errors.Is(err, domain.ErrNotGuildMember):
		return echo.NewHTTPError(http.StatusForbidden, "user is not a member of the discord server")

	case errors.Is(err, domain.ErrIssuanceInFlight):
		return echo.NewHTTPError(http.StatusConflict, "a mint authorization request is already in flight")

	case errors.Is(err, domain.ErrDiscordUnavailable),
		errors.Is(err, domain.ErrOAuthExchange),
		errors.Is(err, domain.ErrChainUnavailable):
		return echo.NewHTTPError(http.StatusBadGateway, "upstream service unavailable")

	case errors.Is(err, domain.ErrSigningFailed),
		errors.Is(err, domain.ErrSigningKeyMissing):
		return echo.NewHTTPError(http.StatusInternalServerError, "signature generation error")

	case errors.Is(err, domain.ErrRateLimited):
		return echo.NewHTTPError(http.StatusTooManyRequests, "rate limit exceeded")

	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
}
