package app

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/Freeeeeet/volleyball_school/internal/clock"
	"github.com/Freeeeeet/volleyball_school/internal/model"
	"github.com/Freeeeeet/volleyball_school/internal/repository"
	"github.com/Freeeeeet/volleyball_school/internal/service"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func integrationPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("skipping integration test: TEST_DB_DSN is not set")
	}

	ctx := context.Background()
	logger := zaptest.NewLogger(t)
	pool, err := NewPool(ctx, dsn, logger)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	migrator, err := NewMigrator(pool, "", logger)
	require.NoError(t, err)
	defer migrator.Close()
	require.NoError(t, migrator.Run(ctx))

	return pool
}

func TestConcurrentEnrollNeverOverbooks(t *testing.T) {
	ctx := context.Background()
	pool := integrationPool(t)
	logger := zaptest.NewLogger(t)
	loc := time.UTC

	court := &model.Court{Name: fmt.Sprintf("Зал %d", time.Now().UnixNano()), IsActive: true}
	require.NoError(t, repository.NewCourtRepository(pool).Create(ctx, court))

	tt := &model.Timetable{DayOfWeek: 2, SkillLevel: model.SkillLevelBeginner, CourtID: court.ID, StartHour: 18, IsActive: true}
	training := model.NewTrainingFromTimetable(tt, clock.NewDate(2030, time.October, 15))
	created, err := repository.NewTrainingRepository(pool).CreateIfAbsent(ctx, training)
	require.NoError(t, err)
	require.True(t, created)

	const members = model.TrainingCapacity + 6
	users := repository.NewUserRepository(pool)
	userIDs := make([]int64, 0, members)
	for i := 0; i < members; i++ {
		u := &model.User{TelegramID: time.Now().UnixNano() + int64(i), Balance: decimal.NewFromInt(1000)}
		require.NoError(t, users.Create(ctx, u))
		userIDs = append(userIDs, u.ID)
	}

	t.Cleanup(func() {
		_, _ = pool.Exec(ctx, "DELETE FROM trainings WHERE id = $1", training.ID)
		_, _ = pool.Exec(ctx, "DELETE FROM courts WHERE id = $1", court.ID)
		_, _ = pool.Exec(ctx, "DELETE FROM users WHERE id = ANY($1)", userIDs)
	})

	price := decimal.NewFromInt(500)
	uow := NewPgUnitOfWork(pool, 100, logger)
	svc := service.NewEnrollmentService(uow, clock.Real{}, loc, service.FixedPrice(price), logger)

	var wg sync.WaitGroup
	errs := make([]error, members)
	for i, id := range userIDs {
		wg.Add(1)
		go func(i int, id int64) {
			defer wg.Done()
			errs[i] = svc.Enroll(ctx, id, training.ID, service.PaymentBalance)
		}(i, id)
	}
	wg.Wait()

	enrolled := 0
	for _, err := range errs {
		if err == nil {
			enrolled++
			continue
		}
		assert.ErrorIs(t, err, service.ErrSessionFull)
	}
	assert.Equal(t, model.TrainingCapacity, enrolled)

	stored, err := repository.NewTrainingRepository(pool).GetByID(ctx, training.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Len(t, stored.Learners, model.TrainingCapacity)

	charged := 0
	for _, id := range userIDs {
		u, err := users.GetByID(ctx, id)
		require.NoError(t, err)
		if u.Balance.Equal(decimal.NewFromInt(500)) {
			charged++
		} else {
			assert.True(t, u.Balance.Equal(decimal.NewFromInt(1000)), "user %d balance %s", id, u.Balance)
		}
	}
	assert.Equal(t, model.TrainingCapacity, charged)
}
