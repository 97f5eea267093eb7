// Package httpapi exposes the account and calculation services over the
// JSON HTTP API consumed by the CalcPay frontend.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/calcpay/server/internal/logging"
	"github.com/calcpay/server/internal/server/services"
)

const shutdownTimeout = 5 * time.Second

type HTTPServer struct {
	address      string
	accounts     *services.AccountService
	calculations *services.CalculationService
	logger       logging.Logger
	jwtSecret    []byte
	staticDir    string
}

func NewHTTPServer(a string, l logging.Logger, as *services.AccountService, cs *services.CalculationService, secretKey string, staticDir string) (*HTTPServer, error) {
	return &HTTPServer{
		address:      a,
		logger:       l.With("module", "http_server"),
		accounts:     as,
		calculations: cs,
		jwtSecret:    []byte(secretKey),
		staticDir:    staticDir,
	}, nil
}

func (s *HTTPServer) Run(ctx context.Context) error {

	srv := &http.Server{
		Addr:    s.address,
		Handler: s.routes(),
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "HTTP server shutdown error", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
