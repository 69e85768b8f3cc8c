package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/Spok95/gradebook-bot/internal/app"
	"github.com/Spok95/gradebook-bot/internal/bot/handlers"
	"github.com/Spok95/gradebook-bot/internal/config"
	"github.com/Spok95/gradebook-bot/internal/gateway"
	"github.com/Spok95/gradebook-bot/internal/jobs"
	"github.com/Spok95/gradebook-bot/internal/logging"
	"github.com/Spok95/gradebook-bot/internal/observability"
	"github.com/Spok95/gradebook-bot/internal/session"
	"github.com/Spok95/gradebook-bot/internal/storage"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Не удалось загрузить .env файл, используем переменные окружения")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	lg, err := logging.Init(cfg.LogLevel, cfg.Env)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer lg.Closer()
	logger := lg.Base

	flush, err := observability.InitSentry(cfg.SentryDSN, cfg.Env, "gradebook-bot")
	if err != nil {
		logger.Warn("sentry init failed", zap.Error(err))
	}
	defer flush()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		logger.Fatal("bot init", zap.Error(err))
	}
	bot.Debug = cfg.Env != "prod"
	logger.Info("bot started", zap.String("username", bot.Self.UserName))

	gw := gateway.New(cfg.APIBaseURL, cfg.GatewayTimeout, logger.Named("gateway"))

	var sessions session.Store[handlers.Session]
	switch cfg.SessionBackend {
	case "redis":
		rdb, err := session.DialRedis(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			logger.Fatal("redis", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		}
		defer func() { _ = rdb.Close() }()
		sessions = session.NewRedisStore[handlers.Session](rdb, cfg.SessionTTL)
	default:
		sessions = session.NewMemoryStore[handlers.Session](cfg.SessionTTL)
	}

	var uploader handlers.Uploader
	if cfg.MinIO.Enabled() {
		mc, err := storage.NewMinIOService(cfg.MinIO)
		if err != nil {
			logger.Fatal("minio", zap.Error(err))
		}
		if err := mc.EnsureBucket(ctx); err != nil {
			logger.Warn("minio bucket unavailable, exports go to chat only", zap.Error(err))
		} else {
			uploader = mc
		}
	}

	h := handlers.New(bot, gw, sessions, uploader, logger.Named("console"))

	app.StartHTTP(ctx, cfg.HTTPAddr, app.HealthHandler(gw), logger)
	runner := jobs.New(ctx)
	app.StartBackendProbe(runner, cfg.ProbeInterval, gw, logger.Named("probe"))

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := bot.GetUpdatesChan(u)

	d := app.NewDispatcher(bot, h, cfg.IsAdmin, logger)
	go func() {
		<-ctx.Done()
		bot.StopReceivingUpdates()
	}()
	d.Run(ctx, updates)
	logger.Info("bot stopped")
}
