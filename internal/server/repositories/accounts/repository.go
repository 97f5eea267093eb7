// Package accounts declares the repository contract for the account
// credential store.
package accounts

import (
	"context"
	"time"

	"github.com/calcpay/server/internal/server/models"
)

// Repository defines the persistence operations of the account lifecycle.
// All mutations are single-row, keyed by the account id.
type Repository interface {
	// Create inserts a new, unverified account. A conflicting email yields
	// common.ErrorDuplicateEmail.
	Create(ctx context.Context, account *models.Account) (*models.Account, error)

	// GetByEmail returns the account for an email, or common.ErrorNotFound.
	GetByEmail(ctx context.Context, email string) (*models.Account, error)

	// GetByResetToken returns the account whose pending reset token equals
	// token and whose expiry is strictly after now. The expiry filter runs
	// in SQL so a racing consumption cannot observe a stale row.
	GetByResetToken(ctx context.Context, token string, now time.Time) (*models.Account, error)

	// MarkVerified flips the account to verified and clears the
	// verification code and its expiry in the same statement.
	MarkVerified(ctx context.Context, id string) error

	// SetResetToken stores a pending reset token and its expiry,
	// overwriting any previous one.
	SetResetToken(ctx context.Context, id, token string, expiresAt time.Time) error

	// ClearResetToken removes a pending reset token without touching the
	// password.
	ClearResetToken(ctx context.Context, id string) error

	// UpdatePassword replaces the password hash and clears the reset token
	// and its expiry atomically.
	UpdatePassword(ctx context.Context, id, newHash string) error
}
