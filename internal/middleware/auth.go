package middleware // middleware contains reusable HTTP middleware functions

import (
	"context"  // request-scoped lookups against the user store
	"errors"   // sentinel comparisons for the token error classes
	"net/http" // HTTP status codes for responses
	"strings"  // string utilities for prefix checking and trimming

	"github.com/labstack/echo/v4" // Echo framework used for defining middleware and handlers

	"github.com/aprizalabyan/shop-api/internal/model"
	"github.com/aprizalabyan/shop-api/internal/utils"
)

// userKey is the context key under which the authenticated identity summary
// is stored.
const userKey = "user"

// UserLoader resolves an access token's subject id to a stored identity.
type UserLoader interface {
	GetByID(ctx context.Context, id string) (model.User, error)
}

// Auth returns an Echo middleware that validates a Bearer access token,
// resolves its subject to a live identity and injects the public summary
// into the request context.  Every rejection is a 401 carrying a
// WWW-Authenticate: Bearer challenge; expired and otherwise-invalid tokens
// get distinct user-safe messages but nothing finer leaks.  A token whose
// subject no longer exists is rejected the same way, which is what retires
// refresh chains orphaned by account deletion.
func Auth(secret string, users UserLoader) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return challenge(c, "missing bearer token")
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			sub, err := utils.VerifySubject(secret, raw, utils.TokenTypeAccess)
			if err != nil {
				if errors.Is(err, utils.ErrTokenExpired) {
					return challenge(c, "access token has expired")
				}
				return challenge(c, "access token is invalid")
			}

			u, err := users.GetByID(c.Request().Context(), sub)
			if err != nil {
				// ErrNotFound and store failures alike: the caller only
				// learns that the credential did not authenticate.
				return challenge(c, "user not found")
			}

			c.Set(userKey, u.Public())
			return next(c)
		}
	}
}

// CurrentUser returns the identity summary stored by Auth.  The boolean is
// false on routes that did not pass through the middleware.
func CurrentUser(c echo.Context) (model.PublicUser, bool) {
	u, ok := c.Get(userKey).(model.PublicUser)
	return u, ok
}

// challenge writes the unauthorized response with the bearer challenge
// header required by RFC 6750.
func challenge(c echo.Context, msg string) error {
	c.Response().Header().Set(echo.HeaderWWWAuthenticate, "Bearer")
	return c.JSON(http.StatusUnauthorized, echo.Map{"error": msg})
}
