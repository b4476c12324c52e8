package service

import (
	"context"
	"testing"
	"time"

	"github.com/Freeeeeet/volleyball_school/internal/clock"
	"github.com/Freeeeeet/volleyball_school/internal/lifecycle"
	"github.com/Freeeeeet/volleyball_school/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPurchaseSubscription(t *testing.T) {
	store := newMemStore()
	user := store.addUser(5000)
	plan := store.addPlan(3200, 8, 30)
	svc := newSubscriptionService(t, store, saturdayNoon)

	sub, err := svc.PurchaseSubscription(context.Background(), user.ID, plan.ID)
	require.NoError(t, err)

	assert.Equal(t, 8, sub.SessionsQty)
	assert.Equal(t, 30, sub.ValidityDays)
	assert.Equal(t, clock.NewDate(2020, 10, 10), sub.PurchaseDate)
	assert.True(t, sub.IsActive)
	assert.Nil(t, sub.StartDate)
	assert.True(t, store.user(user.ID).Balance.Equal(decimal.NewFromInt(1800)))
}

func TestPurchaseSubscriptionFailures(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	poor := store.addUser(100)
	plan := store.addPlan(3200, 8, 30)
	svc := newSubscriptionService(t, store, saturdayNoon)

	_, err := svc.PurchaseSubscription(ctx, poor.ID, plan.ID)
	assert.ErrorIs(t, err, ErrInsufficientFunds)
	assert.True(t, store.user(poor.ID).Balance.Equal(decimal.NewFromInt(100)))

	_, err = svc.PurchaseSubscription(ctx, poor.ID, 999)
	assert.ErrorIs(t, err, ErrPlanNotFound)

	_, err = svc.PurchaseSubscription(ctx, 999, plan.ID)
	assert.ErrorIs(t, err, ErrUserNotFound)

	exact := store.addUser(3200)
	_, err = svc.PurchaseSubscription(ctx, exact.ID, plan.ID)
	require.NoError(t, err)
	assert.True(t, store.user(exact.ID).Balance.IsZero())
}

func TestListActivePlans(t *testing.T) {
	store := newMemStore()
	store.addPlan(3200, 8, 30)
	hidden := store.addPlan(1000, 2, 14)
	store.mu.Lock()
	p := store.plans[hidden.ID]
	p.IsActive = false
	store.plans[hidden.ID] = p
	store.mu.Unlock()

	plans, err := newSubscriptionService(t, store, saturdayNoon).ListActivePlans(context.Background())
	require.NoError(t, err)
	require.Len(t, plans, 1)
	assert.Equal(t, 8, plans[0].SessionsQty)
}

func TestFirstApplicableSkipsExhausted(t *testing.T) {
	store := newMemStore()
	court := store.addCourt("Зал 1")
	user := store.addUser(0)
	svc := newSubscriptionService(t, store, saturdayNoon)

	used := store.addTraining(trainingOn(court.ID, clock.NewDate(2020, 10, 13), 18))
	full := store.addSubscription(model.Subscription{
		UserID: user.ID, SessionsQty: 1, ValidityDays: 30,
		PurchaseDate: clock.NewDate(2020, 10, 1), IsActive: true,
	}, used.ID)
	spare := store.addSubscription(model.Subscription{
		UserID: user.ID, SessionsQty: 4, ValidityDays: 30,
		PurchaseDate: clock.NewDate(2020, 10, 2), IsActive: true,
	})

	sub, err := svc.FirstApplicable(context.Background(), user.ID, clock.NewDate(2020, 10, 20))
	require.NoError(t, err)
	require.NotNil(t, sub)
	assert.Equal(t, spare.ID, sub.ID)

	// Последнюю тренировку ещё можно отменить, поэтому абонемент остаётся активным
	assert.True(t, store.subscription(full.ID).IsActive)

	none, err := svc.FirstApplicable(context.Background(), user.ID, clock.NewDate(2020, 12, 1))
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestAccountSummary(t *testing.T) {
	store := newMemStore()
	court := store.addCourt("Зал 1")
	user := store.addUser(700)
	now := at(2020, time.October, 20, 12, 0)
	svc := newSubscriptionService(t, store, now)

	past1 := trainingOn(court.ID, clock.NewDate(2020, 10, 6), 18)
	past1.Learners = []int64{user.ID}
	p1 := store.addTraining(past1)
	past2 := trainingOn(court.ID, clock.NewDate(2020, 10, 13), 18)
	past2.Learners = []int64{user.ID}
	p2 := store.addTraining(past2)
	next := trainingOn(court.ID, clock.NewDate(2020, 10, 22), 18)
	next.Learners = []int64{user.ID}
	upcoming := store.addTraining(next)

	spent := store.addSubscription(model.Subscription{
		UserID: user.ID, SessionsQty: 2, ValidityDays: 30,
		PurchaseDate: clock.NewDate(2020, 10, 1), IsActive: true,
	}, p1.ID, p2.ID)
	current := store.addSubscription(model.Subscription{
		UserID: user.ID, SessionsQty: 8, ValidityDays: 30,
		PurchaseDate: clock.NewDate(2020, 10, 15), IsActive: true,
	}, upcoming.ID)

	summary, err := svc.AccountSummary(context.Background(), user.ID)
	require.NoError(t, err)

	assert.True(t, summary.User.Balance.Equal(decimal.NewFromInt(700)))
	require.Len(t, summary.UpcomingTrainings, 1)
	assert.Equal(t, upcoming.ID, summary.UpcomingTrainings[0].ID)

	require.Len(t, summary.ActiveSubscriptions, 1)
	assert.Equal(t, current.ID, summary.ActiveSubscriptions[0].Subscription.ID)
	assert.Equal(t, 7, summary.ActiveSubscriptions[0].Snapshot.Remaining)
	assert.Equal(t, lifecycle.Tentative, summary.ActiveSubscriptions[0].Snapshot.Start.State)

	require.NotNil(t, summary.LastExpiredSubscription)
	assert.Equal(t, spent.ID, summary.LastExpiredSubscription.Subscription.ID)

	// Обе тренировки в прошлом: абонемент израсходован, даты и флаг сохранены
	stored := store.subscription(spent.ID)
	assert.False(t, stored.IsActive)
	require.NotNil(t, stored.StartDate)
	assert.Equal(t, clock.NewDate(2020, 10, 6), *stored.StartDate)
	require.NotNil(t, stored.EndDate)
	assert.Equal(t, clock.NewDate(2020, 11, 5), *stored.EndDate)

	_, err = svc.AccountSummary(context.Background(), 999)
	assert.ErrorIs(t, err, ErrUserNotFound)
}
