package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/calcpay/server/internal/common"
	"github.com/calcpay/server/internal/dbx"
	"github.com/calcpay/server/internal/server/models"
)

// uniqueViolation is the Postgres SQLSTATE for unique constraint errors.
const uniqueViolation = "23505"

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const accountColumns = `id, email, password_hash, first_name, last_name,
		verification_code, verification_code_expires_at, is_verified,
		reset_token, reset_token_expires_at, created_at`

func (r *PostgresRepository) Create(ctx context.Context, account *models.Account) (*models.Account, error) {

	if account.ID == "" {
		account.ID = uuid.NewString()
	}

	query :=
		`INSERT INTO accounts (id, email, password_hash, first_name, last_name,
		    verification_code, verification_code_expires_at, is_verified)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, false)
		 RETURNING id, created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		account.ID, account.Email, account.PasswordHash,
		account.FirstName, account.LastName,
		account.VerificationCode, account.VerificationCodeExpiresAt,
	).Scan(&account.ID, &account.CreatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, common.ErrorDuplicateEmail
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return account, nil
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + `
		 FROM accounts
		 WHERE email = $1
		 `

	return r.scanAccount(r.db.QueryRowContext(ctx, query, email))
}

func (r *PostgresRepository) GetByResetToken(ctx context.Context, token string, now time.Time) (*models.Account, error) {
	query := `SELECT ` + accountColumns + `
		 FROM accounts
		 WHERE reset_token = $1 AND reset_token_expires_at > $2
		 `

	return r.scanAccount(r.db.QueryRowContext(ctx, query, token, now))
}

func (r *PostgresRepository) MarkVerified(ctx context.Context, id string) error {
	query :=
		`UPDATE accounts
		 SET is_verified = true,
		     verification_code = NULL,
		     verification_code_expires_at = NULL
		 WHERE id = $1
		 `

	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (r *PostgresRepository) SetResetToken(ctx context.Context, id, token string, expiresAt time.Time) error {
	query :=
		`UPDATE accounts
		 SET reset_token = $2, reset_token_expires_at = $3
		 WHERE id = $1
		 `

	if _, err := r.db.ExecContext(ctx, query, id, token, expiresAt); err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (r *PostgresRepository) ClearResetToken(ctx context.Context, id string) error {
	query :=
		`UPDATE accounts
		 SET reset_token = NULL, reset_token_expires_at = NULL
		 WHERE id = $1
		 `

	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (r *PostgresRepository) UpdatePassword(ctx context.Context, id, newHash string) error {
	query :=
		`UPDATE accounts
		 SET password_hash = $2,
		     reset_token = NULL,
		     reset_token_expires_at = NULL
		 WHERE id = $1
		 `

	if _, err := r.db.ExecContext(ctx, query, id, newHash); err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (r *PostgresRepository) scanAccount(row *sql.Row) (*models.Account, error) {
	account := &models.Account{}

	err := row.Scan(
		&account.ID, &account.Email, &account.PasswordHash,
		&account.FirstName, &account.LastName,
		&account.VerificationCode, &account.VerificationCodeExpiresAt,
		&account.IsVerified,
		&account.ResetToken, &account.ResetTokenExpiresAt,
		&account.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return account, nil
}
