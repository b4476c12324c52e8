package app

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"os"

	"github.com/Freeeeeet/volleyball_school/migrations"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
)

// Migrator обёртка над goose
type Migrator struct {
	db       *sql.DB
	provider *goose.Provider
	logger   *zap.Logger
}

// NewMigrator создаёт новый мигратор. Пустой migrationsDir означает встроенные миграции
func NewMigrator(pool *pgxpool.Pool, migrationsDir string, logger *zap.Logger) (*Migrator, error) {
	var fsys fs.FS = migrations.FS
	if migrationsDir != "" {
		fsys = os.DirFS(migrationsDir)
	}

	// Goose работает с *sql.DB, поэтому создаём его поверх пула
	db := stdlib.OpenDBFromPool(pool)

	provider, err := goose.NewProvider(goose.DialectPostgres, db, fsys)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create goose provider: %w", err)
	}

	return &Migrator{
		db:       db,
		provider: provider,
		logger:   logger,
	}, nil
}

// Run применяет все pending миграции
func (mg *Migrator) Run(ctx context.Context) error {
	mg.logger.Info("Applying database migrations")

	results, err := mg.provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	for _, r := range results {
		mg.logger.Info("Migration applied",
			zap.Int64("version", r.Source.Version),
			zap.Duration("duration", r.Duration),
		)
	}

	mg.logger.Info("Migrations applied successfully", zap.Int("count", len(results)))
	return nil
}

// Version показывает текущую версию миграций
func (mg *Migrator) Version(ctx context.Context) (int64, error) {
	version, err := mg.provider.GetDBVersion(ctx)
	if err != nil {
		return 0, fmt.Errorf("get version: %w", err)
	}
	return version, nil
}

// Close закрывает соединение мигратора
func (mg *Migrator) Close() error {
	// Закрываем sql.DB, но не пул (он управляется в main)
	return mg.provider.Close()
}
