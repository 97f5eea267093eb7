package calculations

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/calcpay/server/internal/dbx"
	"github.com/calcpay/server/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, calc *models.Calculation) (*models.Calculation, error) {

	if calc.ID == "" {
		calc.ID = uuid.NewString()
	}

	query :=
		`INSERT INTO calculations (id, account_id, total, details)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		calc.ID, calc.AccountID, calc.Total, calc.Details,
	).Scan(&calc.ID, &calc.CreatedAt)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return calc, nil
}

func (r *PostgresRepository) ListByAccount(ctx context.Context, accountID string) ([]*models.Calculation, error) {
	query :=
		`SELECT id, account_id, total, details, created_at
		 FROM calculations
		 WHERE account_id = $1
		 ORDER BY created_at DESC
		 `

	rows, err := r.db.QueryContext(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Calculation
	for rows.Next() {
		calc := &models.Calculation{}
		if err := rows.Scan(&calc.ID, &calc.AccountID, &calc.Total, &calc.Details, &calc.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, calc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}
