// Package app holds the bootstrap shared by the server and CLI binaries.
package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/Clark-Hu/movielens-catalog/internal/config"
	httpserver "github.com/Clark-Hu/movielens-catalog/internal/http"
	"github.com/Clark-Hu/movielens-catalog/internal/logging"
	"github.com/Clark-Hu/movielens-catalog/internal/repository"
	"github.com/Clark-Hu/movielens-catalog/internal/store"
)

// StoreOptions maps configuration onto pool settings.
func StoreOptions(cfg config.Config, logger *zap.Logger) store.Options {
	return store.Options{
		MaxConns:               int32(cfg.DBMaxConns),
		MinConns:               int32(cfg.DBMinConns),
		MaxConnIdleTime:        time.Duration(cfg.DBMaxIdleSecs) * time.Second,
		MaxConnLifetime:        time.Duration(cfg.DBMaxLifeSecs) * time.Second,
		ConnTimeout:            time.Duration(cfg.DBConnTimeoutSecs) * time.Second,
		StatementCacheCapacity: cfg.DBStatementCache,
		Logger:                 logger,
	}
}

// OpenStore connects to the database, bounded by the configured connect
// timeout.
func OpenStore(ctx context.Context, cfg config.Config, logger *zap.Logger) (*store.Store, error) {
	timeout := time.Duration(cfg.DBConnTimeoutSecs) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	dbCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	return store.New(dbCtx, cfg.DBURL, StoreOptions(cfg, logger))
}

// Serve runs the HTTP API until ctx is cancelled, then shuts it down
// gracefully.
func Serve(ctx context.Context, cfg config.Config, st *store.Store, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	repo := repository.New(st)
	server := httpserver.New(cfg, st, repo, logging.Component(logger, "http"))

	serverErrCh := make(chan error, 1)
	go func() {
		if err := server.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			serverErrCh <- err
			return
		}
		serverErrCh <- nil
	}()

	var runErr error
	select {
	case err := <-serverErrCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			runErr = err
		}
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Warn("graceful shutdown error", zap.Error(err))
	}
	return runErr
}
