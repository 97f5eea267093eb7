package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/calcpay/server/internal/common"
	"github.com/calcpay/server/internal/server/models"
	"github.com/calcpay/server/internal/server/repositories/repomanager"
)

// CalculationService stores and lists per-account salary calculations.
type CalculationService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewCalculationService(db *sql.DB, m repomanager.RepositoryManager) *CalculationService {
	return &CalculationService{db: db, repomanager: m}
}

// Save appends a calculation to the account's history.
func (s *CalculationService) Save(ctx context.Context, accountID string, total decimal.Decimal, details json.RawMessage) (*models.Calculation, error) {

	if accountID == "" {
		return nil, common.ErrorUnauthorized
	}
	if total.IsZero() || len(details) == 0 {
		return nil, fmt.Errorf("%w: total and details are required", common.ErrorValidation)
	}
	if !json.Valid(details) {
		return nil, fmt.Errorf("%w: details must be valid JSON", common.ErrorValidation)
	}

	calc := &models.Calculation{
		AccountID: accountID,
		Total:     total,
		Details:   details,
	}

	repo := s.repomanager.Calculations(s.db)
	calc, err := repo.Create(ctx, calc)
	if err != nil {
		return nil, common.ErrorInternal
	}

	return calc, nil
}

// List returns the account's calculations, newest first.
func (s *CalculationService) List(ctx context.Context, accountID string) ([]*models.Calculation, error) {

	if accountID == "" {
		return nil, common.ErrorUnauthorized
	}

	repo := s.repomanager.Calculations(s.db)
	list, err := repo.ListByAccount(ctx, accountID)
	if err != nil {
		return nil, common.ErrorInternal
	}

	return list, nil
}
