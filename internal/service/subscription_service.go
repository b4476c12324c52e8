package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Freeeeeet/volleyball_school/internal/clock"
	"github.com/Freeeeeet/volleyball_school/internal/lifecycle"
	"github.com/Freeeeeet/volleyball_school/internal/model"
	"go.uber.org/zap"
)

// SubscriptionView абонемент вместе с его состоянием на момент запроса
type SubscriptionView struct {
	Subscription *model.Subscription
	Snapshot     lifecycle.Snapshot
}

// AccountSummary сводка личного кабинета
type AccountSummary struct {
	User                    *model.User
	UpcomingTrainings       []*model.Training
	ActiveSubscriptions     []SubscriptionView
	LastExpiredSubscription *SubscriptionView
}

// SubscriptionService продажа абонементов и их состояние
type SubscriptionService struct {
	uow      UnitOfWork
	clock    clock.Clock
	loc      *time.Location
	resolver lifecycle.Resolver
	logger   *zap.Logger
}

func NewSubscriptionService(uow UnitOfWork, clk clock.Clock, loc *time.Location, logger *zap.Logger) *SubscriptionService {
	return &SubscriptionService{
		uow:      uow,
		clock:    clk,
		loc:      loc,
		resolver: lifecycle.NewResolver(loc),
		logger:   logger,
	}
}

// resolveAndCommit вычисляет состояние абонемента и сохраняет даты и флаг, ставшие окончательными
func resolveAndCommit(ctx context.Context, r Repos, resolver lifecycle.Resolver, sub *model.Subscription, now time.Time) (lifecycle.Snapshot, error) {
	snap := resolver.Resolve(sub, now)
	if snap.Changes.Empty() {
		return snap, nil
	}

	lifecycle.Commit(sub, snap.Changes)
	if err := r.Subscriptions.UpdateLifecycle(ctx, sub); err != nil {
		return snap, err
	}
	return snap, nil
}

// refreshLifecycle сохраняет ставшие окончательными даты и флаги активных абонементов
// пользователя в отдельной транзакции, чтобы откат вызывающей операции их не отменял
func refreshLifecycle(ctx context.Context, uow UnitOfWork, resolver lifecycle.Resolver, userID int64, now time.Time) error {
	return uow.Do(ctx, func(ctx context.Context, r Repos) error {
		subs, err := r.Subscriptions.GetByUserIDForUpdate(ctx, userID)
		if err != nil {
			return err
		}
		for _, sub := range subs {
			if !sub.IsActive {
				continue
			}
			if _, err := resolveAndCommit(ctx, r, resolver, sub, now); err != nil {
				return err
			}
		}
		return nil
	})
}

// firstApplicable самый ранний по покупке активный абонемент, которым можно оплатить
// тренировку на sessionDate. nil, если такого нет
func firstApplicable(ctx context.Context, r Repos, resolver lifecycle.Resolver, userID int64, sessionDate, now time.Time) (*model.Subscription, error) {
	subs, err := r.Subscriptions.GetByUserIDForUpdate(ctx, userID)
	if err != nil {
		return nil, err
	}

	for _, sub := range subs {
		if !sub.IsActive {
			continue
		}
		snap, err := resolveAndCommit(ctx, r, resolver, sub, now)
		if err != nil {
			return nil, err
		}
		if resolver.Applicable(snap, sessionDate, now) {
			return sub, nil
		}
	}

	return nil, nil
}

// FirstApplicable абонемент, которым будет оплачена тренировка на указанную дату
func (s *SubscriptionService) FirstApplicable(ctx context.Context, userID int64, sessionDate time.Time) (*model.Subscription, error) {
	now := s.clock.Now()
	var sub *model.Subscription

	err := s.uow.Do(ctx, func(ctx context.Context, r Repos) error {
		var err error
		sub, err = firstApplicable(ctx, r, s.resolver, userID, clock.Date(sessionDate), now)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("find applicable subscription: %w", err)
	}

	return sub, nil
}

// ListActivePlans планы, доступные для покупки
func (s *SubscriptionService) ListActivePlans(ctx context.Context) ([]*model.SubscriptionPlan, error) {
	var plans []*model.SubscriptionPlan
	err := s.uow.Do(ctx, func(ctx context.Context, r Repos) error {
		var err error
		plans, err = r.Plans.GetActive(ctx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list active plans: %w", err)
	}
	return plans, nil
}

// PurchaseSubscription покупает абонемент по плану, списывая его стоимость с баланса
func (s *SubscriptionService) PurchaseSubscription(ctx context.Context, userID, planID int64) (*model.Subscription, error) {
	today := clock.Today(s.clock, s.loc)
	var sub *model.Subscription

	err := s.uow.Do(ctx, func(ctx context.Context, r Repos) error {
		plan, err := r.Plans.GetByID(ctx, planID)
		if err != nil {
			return err
		}
		if plan == nil || !plan.IsActive {
			return ErrPlanNotFound
		}
		if err := ValidatePlan(plan); err != nil {
			return err
		}

		user, err := r.Users.GetByIDForUpdate(ctx, userID)
		if err != nil {
			return err
		}
		if user == nil {
			return ErrUserNotFound
		}
		if user.Balance.LessThan(plan.Amount) {
			return ErrInsufficientBalance
		}

		sub = model.NewSubscriptionFromPlan(userID, plan, today)
		if err := r.Subscriptions.Create(ctx, sub); err != nil {
			return err
		}
		return r.Users.UpdateBalance(ctx, userID, user.Balance.Sub(plan.Amount))
	})
	if err != nil {
		return nil, fmt.Errorf("purchase subscription: %w", err)
	}

	s.logger.Info("Subscription purchased",
		zap.Int64("subscription_id", sub.ID),
		zap.Int64("user_id", userID),
		zap.Int64("plan_id", planID),
	)

	return sub, nil
}

// AccountSummary предстоящие тренировки, активные абонементы и последний истёкший
func (s *SubscriptionService) AccountSummary(ctx context.Context, userID int64) (*AccountSummary, error) {
	now := s.clock.Now()
	today := clock.Today(s.clock, s.loc)
	var summary *AccountSummary

	err := s.uow.Do(ctx, func(ctx context.Context, r Repos) error {
		user, err := r.Users.GetByID(ctx, userID)
		if err != nil {
			return err
		}
		if user == nil {
			return ErrUserNotFound
		}
		summary = &AccountSummary{User: user}

		trainings, err := r.Trainings.GetByLearner(ctx, userID, today)
		if err != nil {
			return err
		}
		for _, t := range trainings {
			if !t.HasEnded(now, s.loc) {
				summary.UpcomingTrainings = append(summary.UpcomingTrainings, t)
			}
		}

		subs, err := r.Subscriptions.GetByUserIDForUpdate(ctx, userID)
		if err != nil {
			return err
		}
		for _, sub := range subs {
			snap, err := resolveAndCommit(ctx, r, s.resolver, sub, now)
			if err != nil {
				return err
			}
			view := SubscriptionView{Subscription: sub, Snapshot: snap}
			if snap.Active {
				summary.ActiveSubscriptions = append(summary.ActiveSubscriptions, view)
			} else {
				summary.LastExpiredSubscription = &view
			}
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("account summary: %w", err)
	}

	return summary, nil
}
