// Package common defines shared constants and sentinel errors used across
// the CalcPay server layers. Callers should use errors.Is to match these
// values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound       = errors.New("not found")
	ErrorDuplicateEmail = errors.New("email already registered")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorValidation   = errors.New("validation error")

	// Account lifecycle errors.
	ErrorNotVerified   = errors.New("account not verified")
	ErrorInvalidCode   = errors.New("invalid verification code")
	ErrorWrongPassword = errors.New("wrong password")

	// Password-reset errors.
	ErrorInvalidOrExpiredToken = errors.New("invalid or expired reset token")
	ErrorSamePassword          = errors.New("new password matches the old one")

	// Session token errors (invalid, malformed or expired).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)
