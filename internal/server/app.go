// Package server initializes and runs the CalcPay application server. It
// opens the database, applies migrations, wires the services and starts
// the HTTP API, shutting everything down gracefully on OS signals.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/calcpay/server/internal/logging"
	"github.com/calcpay/server/internal/server/config"
	"github.com/calcpay/server/internal/server/httpapi"
	"github.com/calcpay/server/internal/server/notify"
	"github.com/calcpay/server/internal/server/password"
	"github.com/calcpay/server/internal/server/repositories/repomanager"
	"github.com/calcpay/server/internal/server/services"
)

type App struct {
	config             *config.Config
	logger             logging.Logger
	db                 *sql.DB
	accountService     *services.AccountService
	calculationService *services.CalculationService
}

func NewApp(c *config.Config) (*App, error) {

	logger, err := logging.NewProduction()
	if err != nil {
		return nil, fmt.Errorf("logger init error: %w", err)
	}

	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	m := repomanager.NewPostgresRepositoryManager()
	if err := m.RunMigrations(context.Background(), db); err != nil {
		return nil, fmt.Errorf("db migration error: %w", err)
	}

	var notifier notify.Notifier
	if c.SMTPHost != "" {
		notifier = notify.NewSMTPNotifier(c.SMTPHost, c.SMTPPort, c.SMTPUsername, c.SMTPPassword, c.EmailFrom)
	} else {
		notifier = notify.NewLogNotifier(logger)
	}

	hasher := password.NewBcryptHasher(c.BcryptCost)

	as := services.NewAccountService(db, m, hasher, notifier, logger, c)
	cs := services.NewCalculationService(db, m)

	return &App{
		config:             c,
		logger:             logger,
		db:                 db,
		accountService:     as,
		calculationService: cs,
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {

	s, err := httpapi.NewHTTPServer(
		app.config.EndpointAddrHTTP,
		app.logger,
		app.accountService,
		app.calculationService,
		app.config.SecretKey,
		app.config.StaticDir,
	)
	if err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
		return
	}

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err)
	}
}
