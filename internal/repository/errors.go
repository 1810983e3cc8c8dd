// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios without
// depending on driver error types.
package repository

import "errors"

// ErrNotFound is returned when a requested document does not exist.
// Handlers should translate this into an HTTP 404 response.
var ErrNotFound = errors.New("not found")

// ErrForbidden is returned when the caller attempts an operation
// on a resource they do not own. Handlers should translate this
// into an HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrEmailExists is returned when registration collides with the unique
// email index.
var ErrEmailExists = errors.New("email already exists")

// ErrRefreshTokenNotFound is returned when the presented refresh token has
// no live record: it never existed, was already rotated, or was revoked.
// These cases are deliberately indistinguishable.
var ErrRefreshTokenNotFound = errors.New("refresh token not found")

// ErrRefreshTokenExpired is returned when the presented refresh token exists
// but its expiry has passed. The record is marked revoked as a side effect.
var ErrRefreshTokenExpired = errors.New("refresh token expired")
