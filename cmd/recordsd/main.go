package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/Spok95/gradebook-bot/internal/api"
	"github.com/Spok95/gradebook-bot/internal/app"
	"github.com/Spok95/gradebook-bot/internal/config"
	"github.com/Spok95/gradebook-bot/internal/db"
	"github.com/Spok95/gradebook-bot/internal/logging"
	"github.com/Spok95/gradebook-bot/internal/observability"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadServer()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	lg, err := logging.Init(cfg.LogLevel, cfg.Env)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer lg.Closer()
	logger := lg.Base

	flush, err := observability.InitSentry(cfg.SentryDSN, cfg.Env, "recordsd")
	if err != nil {
		logger.Warn("sentry init failed", zap.Error(err))
	}
	defer flush()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	database, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("db", zap.Error(err))
	}
	defer func() { _ = database.Close() }()

	if err := db.Migrate(ctx, database); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	store := db.NewStore(database)
	app.StartHTTP(ctx, cfg.HTTPAddr, api.NewRouter(store, logger.Named("api"), cfg.Env), logger)
	logger.Info("recordsd listening", zap.String("addr", cfg.HTTPAddr))

	<-ctx.Done()
	logger.Info("recordsd stopped")
}
