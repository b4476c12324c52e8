package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Freeeeeet/volleyball_school/internal/app"
	"github.com/Freeeeeet/volleyball_school/internal/config"
	"github.com/Freeeeeet/volleyball_school/internal/controller"
	"github.com/go-telegram/bot"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := app.NewLogger(cfg.Environment)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("Starting volleyball school",
		zap.String("environment", cfg.Environment),
		zap.String("timezone", cfg.Location.String()),
		zap.Int("horizon_days", cfg.HorizonDays))

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize application", zap.Error(err))
	}
	defer application.Close()

	scheduler := application.NewScheduler()
	scheduler.Start(ctx)
	defer scheduler.Stop()

	if cfg.TelegramToken == "" {
		logger.Warn("TELEGRAM_TOKEN is not set, running scheduler only")
		<-ctx.Done()
		logger.Info("Shutting down")
		return
	}

	b, err := bot.New(cfg.TelegramToken)
	if err != nil {
		logger.Fatal("Failed to create bot", zap.Error(err))
	}

	botController := controller.NewBotController(b, controller.Services{
		Accounts:      application.Accounts,
		Schedule:      application.Schedule,
		Enrollments:   application.Enrollments,
		Subscriptions: application.Subscriptions,
		Price:         application.Price,
	}, application.Clock, cfg.Location, logger)

	if err := botController.RegisterHandlers(ctx); err != nil {
		logger.Warn("Failed to register bot commands menu", zap.Error(err))
	}

	// Start блокируется до отмены контекста
	if err := botController.Start(ctx); err != nil {
		logger.Error("Bot stopped with error", zap.Error(err))
	}
	logger.Info("Shutting down")
}
