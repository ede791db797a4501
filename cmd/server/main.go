package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/Clark-Hu/movielens-catalog/internal/app"
	"github.com/Clark-Hu/movielens-catalog/internal/config"
	"github.com/Clark-Hu/movielens-catalog/internal/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	st, err := app.OpenStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("connect database", zap.Error(err))
	}
	defer st.Close()

	if err := app.Serve(ctx, cfg, st, logger); err != nil {
		logger.Error("server error", zap.Error(err))
	}
}
