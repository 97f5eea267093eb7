// Package models defines server-side data models persisted in the database.
package models

import "time"

// Account is the identity/credential record for a single user.
//
// VerificationCode is set while the account is unverified and cleared when
// the code is consumed. IsVerified only ever moves from false to true.
// ResetToken and ResetTokenExpiresAt are set together while a password
// reset is pending and cleared together when the reset is consumed or
// superseded.
type Account struct {
	ID           string
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string

	VerificationCode          *string
	VerificationCodeExpiresAt *time.Time
	IsVerified                bool

	ResetToken          *string
	ResetTokenExpiresAt *time.Time

	CreatedAt time.Time
}
