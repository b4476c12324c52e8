// Command materialize creates trainings for every active timetable once and exits.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Freeeeeet/volleyball_school/internal/app"
	"github.com/Freeeeeet/volleyball_school/internal/config"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	days := flag.Int("days", cfg.HorizonDays, "how many days ahead to create trainings")
	fromMonday := flag.Bool("from-monday", cfg.AlignToMonday, "count the horizon from Monday of the current week")
	flag.Parse()

	logger, err := app.NewLogger(cfg.Environment)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	if *days <= 0 {
		logger.Fatal("days must be positive", zap.Int("days", *days))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize application", zap.Error(err))
	}
	defer application.Close()

	report, err := application.Schedule.MaterializeAllActive(ctx, *days, *fromMonday)
	fields := []zap.Field{
		zap.String("run_id", report.RunID),
		zap.Int("timetables", report.Timetables),
		zap.Int("created", report.Created),
		zap.Int("skipped", report.Skipped),
		zap.Int("failed", report.Failed),
	}
	if err != nil {
		logger.Error("Materialization finished with errors", append(fields, zap.Error(err))...)
		// os.Exit не выполняет defer
		application.Close()
		stop()
		_ = logger.Sync()
		os.Exit(1)
	}
	logger.Info("Materialization finished", fields...)
}
