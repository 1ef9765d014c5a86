package handler

import (
	"github.com/thirdweb-example/community-rewards/internal/domain"
	"github.com/thirdweb-example/community-rewards/internal/infrastructure/session"

	"github.com/labstack/echo/v4"
)

// sessionFromRequest decodes the session cookie. Requests without a cookie
// get domain.ErrSessionNotFound; the caller decides whether that is fatal.
func sessionFromRequest(c echo.Context, codec domain.SessionCodec) (*domain.Session, error) {
	cookie, err := c.Cookie(session.CookieName)
	if err != nil {
		return nil, domain.ErrSessionNotFound
	}
	return codec.Decode(cookie.Value)
}
