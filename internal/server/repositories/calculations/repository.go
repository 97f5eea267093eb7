// Package calculations declares the repository contract for the per-account
// calculation history.
package calculations

import (
	"context"

	"github.com/calcpay/server/internal/server/models"
)

// Repository stores and lists saved calculations. Records are append-only.
type Repository interface {
	// Create inserts a calculation for its account.
	Create(ctx context.Context, calc *models.Calculation) (*models.Calculation, error)

	// ListByAccount returns the account's calculations, newest first.
	ListByAccount(ctx context.Context, accountID string) ([]*models.Calculation, error)
}
