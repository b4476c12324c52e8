package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Freeeeeet/volleyball_school/internal/repository"
	"github.com/Freeeeeet/volleyball_school/internal/repository/base"
	"github.com/Freeeeeet/volleyball_school/internal/service"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"
)

// PgUnitOfWork выполняет операции сервисов в serializable-транзакции PostgreSQL
// и повторяет их при конфликте сериализации
type PgUnitOfWork struct {
	pool       *pgxpool.Pool
	maxRetries uint64
	logger     *zap.Logger
}

func NewPgUnitOfWork(pool *pgxpool.Pool, maxRetries uint64, logger *zap.Logger) *PgUnitOfWork {
	return &PgUnitOfWork{
		pool:       pool,
		maxRetries: maxRetries,
		logger:     logger,
	}
}

// NewRepos привязывает все репозитории к db
func NewRepos(db base.DBTX) service.Repos {
	return service.Repos{
		Timetables:    repository.NewTimetableRepository(db),
		Trainings:     repository.NewTrainingRepository(db),
		Subscriptions: repository.NewSubscriptionRepository(db),
		Plans:         repository.NewPlanRepository(db),
		Users:         repository.NewUserRepository(db),
		Courts:        repository.NewCourtRepository(db),
	}
}

// Do выполняет fn в транзакции. Ошибка fn откатывает транзакцию
func (u *PgUnitOfWork) Do(ctx context.Context, fn func(ctx context.Context, r service.Repos) error) error {
	backoff := retry.WithMaxRetries(u.maxRetries, retry.NewExponential(20*time.Millisecond))
	attempt := 0

	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		err := u.run(ctx, fn)
		if err != nil && base.IsSerializationFailure(err) {
			u.logger.Debug("Serialization failure, retrying transaction",
				zap.Int("attempt", attempt),
				zap.Error(err),
			)
			return retry.RetryableError(err)
		}
		return err
	})
}

func (u *PgUnitOfWork) run(ctx context.Context, fn func(ctx context.Context, r service.Repos) error) error {
	tx, err := u.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			u.logger.Warn("Failed to rollback transaction", zap.Error(rbErr))
		}
	}()

	if err := fn(ctx, NewRepos(tx)); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}
