package handler

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"log/slog"
	"net/http"
	"time"

	"github.com/thirdweb-example/community-rewards/internal/domain"
	"github.com/thirdweb-example/community-rewards/internal/infrastructure/session"
	"github.com/thirdweb-example/community-rewards/internal/usecase"

	"github.com/labstack/echo/v4"
)

const stateCookieName = "rewards_oauth_state"

// AuthHandler drives the OAuth sign-in flow and session lifecycle.
type AuthHandler struct {
	signIn    *usecase.SignIn
	exchanger domain.CodeExchanger
	codec     domain.SessionCodec
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(signIn *usecase.SignIn, exchanger domain.CodeExchanger, codec domain.SessionCodec) *AuthHandler {
	return &AuthHandler{signIn: signIn, exchanger: exchanger, codec: codec}
}

// HandleSignIn redirects the browser to the provider's authorize page with
// a one-shot state nonce bound to this browser via cookie.
func (h *AuthHandler) HandleSignIn(c echo.Context) error {
	nonce := make([]byte, 16)
	if _, err := rand.Read(nonce); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	state := base64.RawURLEncoding.EncodeToString(nonce)

	c.SetCookie(&http.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Path:     "/api/auth",
		MaxAge:   int((10 * time.Minute).Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	return c.Redirect(http.StatusFound, h.exchanger.AuthCodeURL(state))
}

// HandleCallback finishes the flow: state check, code exchange, session
// cookie issuance.
func (h *AuthHandler) HandleCallback(c echo.Context) error {
	ctx := c.Request().Context()

	stateCookie, err := c.Cookie(stateCookieName)
	if err != nil || stateCookie.Value == "" ||
		subtle.ConstantTimeCompare([]byte(stateCookie.Value), []byte(c.QueryParam("state"))) != 1 {
		return mapDomainError(domain.ErrOAuthStateBad)
	}

	code := c.QueryParam("code")
	if code == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing authorization code")
	}

	sess, cookieValue, err := h.signIn.Execute(ctx, code)
	if err != nil {
		slog.ErrorContext(ctx, "sign-in failed", "error", err)
		return mapDomainError(err)
	}

	// State cookie is one-shot.
	c.SetCookie(&http.Cookie{Name: stateCookieName, Value: "", Path: "/api/auth", MaxAge: -1, HttpOnly: true})
	c.SetCookie(&http.Cookie{
		Name:     session.CookieName,
		Value:    cookieValue,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	return c.Redirect(http.StatusFound, "/")
}

// sessionUser is the display-only view of a session handed to the page.
type sessionUser struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Image string `json:"image,omitempty"`
}

// HandleSession returns the signed-in user's display fields. The access
// token stays inside the cookie.
func (h *AuthHandler) HandleSession(c echo.Context) error {
	sess, err := sessionFromRequest(c, h.codec)
	if err != nil {
		return mapDomainError(err)
	}

	return c.JSON(http.StatusOK, map[string]sessionUser{
		"user": {ID: sess.UserID, Name: sess.Name, Image: sess.AvatarURL},
	})
}

// HandleSignOut invalidates the session cookie.
func (h *AuthHandler) HandleSignOut(c echo.Context) error {
	c.SetCookie(&http.Cookie{
		Name:     session.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return c.NoContent(http.StatusNoContent)
}
