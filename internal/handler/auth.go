package handler

import (
	"context"  // provides context with cancellation for DB calls
	"errors"   // sentinel comparisons against the token taxonomy
	"net/http" // HTTP status codes and primitives
	"strings"  // string manipulation utilities
	"time"     // timeouts for DB calls

	"github.com/labstack/echo/v4" // Echo framework for HTTP routing

	"github.com/aprizalabyan/shop-api/internal/config"
	"github.com/aprizalabyan/shop-api/internal/middleware"
	"github.com/aprizalabyan/shop-api/internal/repository"
	"github.com/aprizalabyan/shop-api/internal/service"
	"github.com/aprizalabyan/shop-api/internal/utils"
)

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Cfg  config.Config
	Auth *service.AuthService
}

func NewAuthHandler(cfg config.Config, auth *service.AuthService) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Auth: auth}
}

// ----- DTOs -----

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}

type tokenResp struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

func newTokenResp(pair service.TokenPair) tokenResp {
	return tokenResp{
		AccessToken:  pair.Access.Token,
		RefreshToken: pair.Refresh,
		TokenType:    "bearer",
	}
}

// Login verifies email/password and returns a fresh token pair.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	_, pair, err := h.Auth.Login(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			return unauthorized(c, "incorrect email or password")
		}
		return h.internal(c, "failed to generate authentication tokens", err)
	}
	return c.JSON(http.StatusOK, newTokenResp(pair))
}

// Refresh rotates the presented refresh token and returns a new pair.  The
// unauthorized reason distinguishes a missing/rotated token from an expired
// one, matching the store's error classes.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh_token required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	pair, err := h.Auth.Refresh(ctx, strings.TrimSpace(req.RefreshToken))
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrRefreshTokenNotFound):
			return unauthorized(c, "refresh token not found or invalid")
		case errors.Is(err, repository.ErrRefreshTokenExpired):
			return unauthorized(c, "refresh token has expired")
		}
		return h.internal(c, "failed to generate new tokens", err)
	}
	return c.JSON(http.StatusOK, newTokenResp(pair))
}

// Logout terminates sessions.  A refresh token in the body revokes that one
// session; a valid bearer token with an empty body revokes every session of
// the caller ("log out everywhere").  The bearer is parsed here instead of
// relying on the auth middleware so single-session logout works even after
// the access token expired.
func (h *AuthHandler) Logout(c echo.Context) error {
	var req refreshReq
	_ = c.Bind(&req)
	refreshToken := strings.TrimSpace(req.RefreshToken)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if refreshToken != "" {
		revoked, err := h.Auth.Logout(ctx, refreshToken)
		if err != nil {
			return h.internal(c, "logout failed", err)
		}
		if !revoked {
			return unauthorized(c, "refresh token not found or invalid")
		}
		return c.NoContent(http.StatusNoContent)
	}

	auth := c.Request().Header.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		raw := strings.TrimPrefix(auth, "Bearer ")
		sub, err := utils.VerifySubject(h.Cfg.JWTSecret, raw, utils.TokenTypeAccess)
		if err != nil {
			return unauthorized(c, "access token is invalid")
		}
		if _, err := h.Auth.LogoutAll(ctx, sub); err != nil {
			return h.internal(c, "logout failed", err)
		}
		return c.NoContent(http.StatusNoContent)
	}

	return c.JSON(http.StatusBadRequest, echo.Map{"error": "provide Authorization header or refresh_token"})
}

// Me returns the caller's public identity summary.
func (h *AuthHandler) Me(c echo.Context) error {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return unauthorized(c, "unauthorized")
	}
	return c.JSON(http.StatusOK, u)
}

// unauthorized writes a 401 with the bearer challenge marker.
func unauthorized(c echo.Context, msg string) error {
	c.Response().Header().Set(echo.HeaderWWWAuthenticate, "Bearer")
	return c.JSON(http.StatusUnauthorized, echo.Map{"error": msg})
}

// internal writes a 500 with a stable message; the cause is logged and only
// echoed back in dev mode.
func (h *AuthHandler) internal(c echo.Context, msg string, err error) error {
	c.Logger().Errorf("%s: %v", msg, err)
	if h.Cfg.Debug() {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": msg, "detail": err.Error()})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": msg})
}
