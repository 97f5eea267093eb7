// Package repomanager constructs the concrete repositories and runs
// database migrations. Services depend on this interface so tests can
// substitute fakes.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/calcpay/server/internal/dbx"
	"github.com/calcpay/server/internal/server/repositories/accounts"
	"github.com/calcpay/server/internal/server/repositories/calculations"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Accounts(db dbx.DBTX) accounts.Repository
	Calculations(db dbx.DBTX) calculations.Repository
}
