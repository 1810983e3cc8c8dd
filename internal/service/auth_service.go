package service

import (
	"context"
	"errors"
	"time"

	"github.com/aprizalabyan/shop-api/internal/model"
	"github.com/aprizalabyan/shop-api/internal/repository"
	"github.com/aprizalabyan/shop-api/internal/utils"
)

// ErrInvalidCredentials is returned on login when the email is unknown or
// the password does not match. The two cases are indistinguishable so the
// endpoint cannot be used to probe for registered emails.
var ErrInvalidCredentials = errors.New("invalid credentials")

// UserStore is the slice of the user repository the session issuer needs.
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (model.User, error)
	GetByID(ctx context.Context, id string) (model.User, error)
}

// TokenStore is the slice of the refresh token repository the session
// issuer needs.
type TokenStore interface {
	Issue(ctx context.Context, userID string, expiresAt time.Time) (string, error)
	Consume(ctx context.Context, raw string) (model.RefreshToken, error)
	Revoke(ctx context.Context, raw string) (bool, error)
	RevokeAll(ctx context.Context, userID string) (int64, error)
}

// TokenPair is one issued session: a short-lived stateless access token and
// a long-lived persisted refresh token.
type TokenPair struct {
	Access     utils.AccessToken
	Refresh    string
	RefreshExp time.Time
}

// AuthService orchestrates login and refresh flows. It owns the TTL policy:
// access tokens live minutes, refresh chains live days, and a rotation never
// extends the chain's absolute expiry.
type AuthService struct {
	users      UserStore
	tokens     TokenStore
	secret     string
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewAuthService(users UserStore, tokens TokenStore, secret string, accessTTL, refreshTTL time.Duration) *AuthService {
	return &AuthService{
		users:      users,
		tokens:     tokens,
		secret:     secret,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// Login verifies the credentials and issues a fresh token pair.
func (s *AuthService) Login(ctx context.Context, email, password string) (model.User, TokenPair, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.User{}, TokenPair{}, ErrInvalidCredentials
		}
		return model.User{}, TokenPair{}, err
	}
	if !utils.VerifyPassword(u.PasswordHash, password) {
		return model.User{}, TokenPair{}, ErrInvalidCredentials
	}
	pair, err := s.issuePair(ctx, u.ID.Hex(), time.Now().UTC().Add(s.refreshTTL))
	if err != nil {
		return model.User{}, TokenPair{}, err
	}
	return u, pair, nil
}

// Refresh rotates the presented refresh token: the old record is revoked
// atomically by Consume, the replacement inherits its absolute expiry, and
// a new access token is minted. Store error classes pass through unchanged;
// a stolen, already-rotated token can never succeed twice.
func (s *AuthService) Refresh(ctx context.Context, raw string) (TokenPair, error) {
	rec, err := s.tokens.Consume(ctx, raw)
	if err != nil {
		return TokenPair{}, err
	}
	return s.issuePair(ctx, rec.UserID, rec.ExpiresAt)
}

// Logout revokes one refresh token and reports whether a live record was
// actually consumed.
func (s *AuthService) Logout(ctx context.Context, raw string) (bool, error) {
	return s.tokens.Revoke(ctx, raw)
}

// LogoutAll revokes every live refresh token of a user.
func (s *AuthService) LogoutAll(ctx context.Context, userID string) (int64, error) {
	return s.tokens.RevokeAll(ctx, userID)
}

func (s *AuthService) issuePair(ctx context.Context, userID string, refreshExp time.Time) (TokenPair, error) {
	access, err := utils.NewAccessToken(s.secret, userID, s.accessTTL)
	if err != nil {
		return TokenPair{}, err
	}
	raw, err := s.tokens.Issue(ctx, userID, refreshExp)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{Access: access, Refresh: raw, RefreshExp: refreshExp.UTC()}, nil
}
