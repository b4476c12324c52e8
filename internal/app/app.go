package app

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/volleyball_school/internal/clock"
	"github.com/Freeeeeet/volleyball_school/internal/config"
	"github.com/Freeeeeet/volleyball_school/internal/service"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// App собранные зависимости приложения
type App struct {
	Config *config.Config
	Pool   *pgxpool.Pool
	Clock  clock.Clock
	Price  service.PriceSource

	Accounts      *service.AccountService
	Schedule      *service.ScheduleService
	Enrollments   *service.EnrollmentService
	Subscriptions *service.SubscriptionService

	logger *zap.Logger
}

// New подключается к базе, применяет миграции и создаёт сервисы
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	pool, err := NewPool(ctx, cfg.DBDSN, logger)
	if err != nil {
		return nil, err
	}

	migrator, err := NewMigrator(pool, cfg.MigrationsDir, logger)
	if err != nil {
		pool.Close()
		return nil, err
	}
	if err := migrator.Run(ctx); err != nil {
		migrator.Close()
		pool.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	if err := migrator.Close(); err != nil {
		logger.Warn("Failed to close migrator", zap.Error(err))
	}

	clk := clock.Real{}
	price := service.FixedPrice(cfg.SessionPrice)
	uow := NewPgUnitOfWork(pool, cfg.TxMaxRetries, logger)

	return &App{
		Config: cfg,
		Pool:   pool,
		Clock:  clk,
		Price:  price,

		Accounts: service.NewAccountService(uow, logger),
		Schedule: service.NewScheduleService(uow, clk, cfg.Location, price, service.ScheduleOptions{
			HorizonDays:   cfg.HorizonDays,
			AlignToMonday: cfg.AlignToMonday,
		}, logger),
		Enrollments:   service.NewEnrollmentService(uow, clk, cfg.Location, price, logger),
		Subscriptions: service.NewSubscriptionService(uow, clk, cfg.Location, logger),

		logger: logger,
	}, nil
}

// NewScheduler создаёт фоновую материализацию по настройкам приложения
func (a *App) NewScheduler() *Scheduler {
	return NewScheduler(a.Schedule, a.Config.MaterializeInterval, a.Config.HorizonDays, a.Config.AlignToMonday, a.logger)
}

// Close закрывает пул соединений
func (a *App) Close() {
	a.Pool.Close()
	a.logger.Info("Database pool closed")
}
