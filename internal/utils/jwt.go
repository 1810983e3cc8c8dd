package utils // package utils provides helper functions for token creation and hashing

import (
	"crypto/rand"   // secure random number generation
	"crypto/sha256" // SHA‑256 hashing for refresh tokens
	"encoding/hex"  // hex encoding and decoding functions
	"errors"        // sentinel error values and wrapping
	"fmt"           // error formatting
	"time"          // time utilities for generating expirations

	"github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens
)

// Token error taxonomy.  Callers branch only on these three classes; the
// underlying decode/signature detail is wrapped and never drives behaviour.
var (
	// ErrTokenExpired marks a structurally valid token whose expiry has passed.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenInvalid covers every other verification failure: bad signature,
	// malformed payload, wrong token type or missing subject.
	ErrTokenInvalid = errors.New("token invalid")
	// ErrTokenGeneration marks a failure to mint or persist a token.
	ErrTokenGeneration = errors.New("token generation failed")
)

// TokenTypeAccess is the discriminator carried in the "type" claim of
// short-lived bearer tokens.  Refresh tokens are opaque random strings and
// never appear as JWTs.
const TokenTypeAccess = "access"

// AccessToken represents a signed JWT access token along with its expiry.
// The Token field contains the JWT string.  Exp stores the expiration
// timestamp as a time.Time.  Access tokens are short‑lived and encoded
// in the Authorization header when calling protected endpoints.
type AccessToken struct {
	Token string    // the serialized JWT string
	Exp   time.Time // the UTC expiration time
}

// NewAccessToken builds and signs an HS256 JWT for a subject.  The JWT
// carries the subject id (sub), the access-token discriminator (type), the
// expiration (exp) and the issued-at instant (iat).  Access tokens are
// stateless by design: once issued they cannot be revoked and stay valid
// until exp, which is why the TTL is minutes-scale.
func NewAccessToken(secret, subjectID string, ttl time.Duration) (AccessToken, error) {
	now := time.Now().UTC()
	exp := now.Add(ttl)
	claims := jwt.MapClaims{
		"sub":  subjectID,
		"type": TokenTypeAccess,
		"exp":  exp.Unix(),
		"iat":  now.Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return AccessToken{}, fmt.Errorf("%w: %v", ErrTokenGeneration, err)
	}
	return AccessToken{Token: signed, Exp: exp}, nil
}

// VerifySubject decodes a token, checks the HMAC signature, the expiry and
// the "type" claim, and returns the subject id.  An expired token yields
// ErrTokenExpired; every other failure collapses into ErrTokenInvalid so
// callers cannot distinguish signature, payload or type problems.
func VerifySubject(secret, raw, wantType string) (string, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		// Reject tokens signed with anything but HMAC to prevent
		// algorithm confusion.
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return []byte(secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrTokenExpired
		}
		return "", ErrTokenInvalid
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok || !tok.Valid {
		return "", ErrTokenInvalid
	}
	if typ, _ := claims["type"].(string); typ != wantType {
		return "", ErrTokenInvalid
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return "", ErrTokenInvalid
	}
	return sub, nil
}

// NewRefreshRaw returns a cryptographically secure random token string.
// 48 random bytes hex-encoded give 384 bits of entropy in a URL-safe form.
func NewRefreshRaw() (string, error) {
	raw, err := randomHex(48) // 48 bytes -> 96 hex chars
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTokenGeneration, err)
	}
	return raw, nil
}

// HashRefreshRaw returns the SHA‑256 hash of the raw refresh token as a hex
// string.  Storing only the hash in the database prevents attackers from
// using stolen database entries to refresh sessions.
func HashRefreshRaw(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// randomHex returns a hex‑encoded string generated from n bytes of
// cryptographically secure random data.
func randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
