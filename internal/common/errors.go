// Package common defines shared constants and sentinel errors used across
// the EastSecure server layers. Callers should use errors.Is to match these
// values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")
	ErrConflict   = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Validation errors.
	ErrInvalidInput         = errors.New("invalid input")
	ErrInvalidOrExpiredCode = errors.New("invalid or expired verification code")

	// Account policy errors.
	ErrEmailNotVerified = errors.New("email not verified")
	ErrRateLimited      = errors.New("too many requests")

	// Collaborator errors.
	ErrDeliveryFailed  = errors.New("delivery failed")
	ErrUpstreamFailure = errors.New("upstream failure")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Token lifecycle errors.
	ErrTokenExpired = errors.New("token expired")
)
