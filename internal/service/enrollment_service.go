package service

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/Freeeeeet/volleyball_school/internal/clock"
	"github.com/Freeeeeet/volleyball_school/internal/lifecycle"
	"github.com/Freeeeeet/volleyball_school/internal/model"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// PaymentMethod способ оплаты тренировки, выбирает сам ученик
type PaymentMethod string

const (
	PaymentBalance      PaymentMethod = "balance"
	PaymentSubscription PaymentMethod = "subscription"
)

// CancelOutcome чем закончилась отмена записи
type CancelOutcome int

const (
	CancelNotEnrolled CancelOutcome = iota // пользователь не был записан
	CancelTooLate                          // до начала осталось не больше часа
	CancelRefundedToSubscription
	CancelRefundedToBalance
)

// Cancelled запись действительно отменена
func (o CancelOutcome) Cancelled() bool {
	return o == CancelRefundedToSubscription || o == CancelRefundedToBalance
}

// EnrollmentService запись на тренировки и отмена записи
type EnrollmentService struct {
	uow      UnitOfWork
	clock    clock.Clock
	loc      *time.Location
	resolver lifecycle.Resolver
	price    PriceSource
	logger   *zap.Logger
}

func NewEnrollmentService(
	uow UnitOfWork,
	clk clock.Clock,
	loc *time.Location,
	price PriceSource,
	logger *zap.Logger,
) *EnrollmentService {
	return &EnrollmentService{
		uow:      uow,
		clock:    clk,
		loc:      loc,
		resolver: lifecycle.NewResolver(loc),
		price:    price,
		logger:   logger,
	}
}

// Enroll записывает пользователя на тренировку с оплатой выбранным способом
func (s *EnrollmentService) Enroll(ctx context.Context, userID, trainingID int64, method PaymentMethod) error {
	now := s.clock.Now()
	price := s.price.SessionPrice()
	var paidWith int64

	if method == PaymentSubscription {
		if err := refreshLifecycle(ctx, s.uow, s.resolver, userID, now); err != nil {
			return fmt.Errorf("enroll: refresh subscriptions: %w", err)
		}
	}

	err := s.uow.Do(ctx, func(ctx context.Context, r Repos) error {
		paidWith = 0

		// Блокируем тренировку, чтобы параллельные записи не превысили вместимость
		training, err := r.Trainings.GetByIDForUpdate(ctx, trainingID)
		if err != nil {
			return err
		}
		if training == nil || !training.IsBookable(now, s.loc) {
			return ErrSessionNotFound
		}

		user, err := r.Users.GetByIDForUpdate(ctx, userID)
		if err != nil {
			return err
		}
		if user == nil {
			return ErrUserNotFound
		}

		if training.HasLearner(userID) {
			return ErrAlreadyEnrolled
		}
		if training.IsFull() {
			return ErrSessionFull
		}

		switch method {
		case PaymentSubscription:
			sub, err := firstApplicable(ctx, r, s.resolver, userID, training.Date, now)
			if err != nil {
				return err
			}
			if sub == nil {
				return ErrNoEligibleSubscription
			}
			if err := r.Trainings.AddLearner(ctx, training.ID, userID); err != nil {
				return err
			}
			if err := r.Subscriptions.LinkTraining(ctx, sub.ID, training.ID); err != nil {
				return err
			}
			paidWith = sub.ID

		case PaymentBalance:
			if user.Balance.LessThanOrEqual(price) {
				return ErrInsufficientBalance
			}
			if err := r.Trainings.AddLearner(ctx, training.ID, userID); err != nil {
				return err
			}
			if err := r.Users.UpdateBalance(ctx, userID, user.Balance.Sub(price)); err != nil {
				return err
			}

		default:
			return fmt.Errorf("%w: unknown payment method %q", ErrInvariantViolation, method)
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("enroll: %w", err)
	}

	s.logger.Info("User enrolled",
		zap.Int64("user_id", userID),
		zap.Int64("training_id", trainingID),
		zap.String("payment", string(method)),
		zap.Int64("subscription_id", paidWith),
	)

	return nil
}

// Cancel отменяет запись. Если пользователь не записан или до начала
// остался час и меньше, ничего не меняется и ошибки нет
func (s *EnrollmentService) Cancel(ctx context.Context, userID, trainingID int64) (CancelOutcome, error) {
	now := s.clock.Now()
	price := s.price.SessionPrice()
	var outcome CancelOutcome

	err := s.uow.Do(ctx, func(ctx context.Context, r Repos) error {
		training, err := r.Trainings.GetByIDForUpdate(ctx, trainingID)
		if err != nil {
			return err
		}
		if training == nil {
			return ErrSessionNotFound
		}

		if !training.HasLearner(userID) {
			outcome = CancelNotEnrolled
			return nil
		}
		if !training.CanCancel(now, s.loc) {
			outcome = CancelTooLate
			return nil
		}

		outcome, err = releaseSeat(ctx, r, training, userID, price)
		return err
	})
	if err != nil {
		return CancelNotEnrolled, fmt.Errorf("cancel enrollment: %w", err)
	}

	if outcome.Cancelled() {
		s.logger.Info("Enrollment cancelled",
			zap.Int64("user_id", userID),
			zap.Int64("training_id", trainingID),
			zap.Bool("refunded_to_balance", outcome == CancelRefundedToBalance),
		)
	} else {
		s.logger.Debug("Cancellation ignored",
			zap.Int64("user_id", userID),
			zap.Int64("training_id", trainingID),
			zap.Int("outcome", int(outcome)),
		)
	}

	return outcome, nil
}

// releaseSeat выписывает пользователя и возвращает оплату: тренировку на абонемент,
// с которого она списана, иначе цену на баланс
func releaseSeat(ctx context.Context, r Repos, t *model.Training, userID int64, price decimal.Decimal) (CancelOutcome, error) {
	if err := r.Trainings.RemoveLearner(ctx, t.ID, userID); err != nil {
		return CancelNotEnrolled, err
	}
	t.Learners = slices.DeleteFunc(t.Learners, func(id int64) bool { return id == userID })

	sub, err := r.Subscriptions.GetByUserAndTraining(ctx, userID, t.ID)
	if err != nil {
		return CancelNotEnrolled, err
	}
	if sub != nil {
		if err := r.Subscriptions.UnlinkTraining(ctx, sub.ID, t.ID); err != nil {
			return CancelNotEnrolled, err
		}
		return CancelRefundedToSubscription, nil
	}

	user, err := r.Users.GetByIDForUpdate(ctx, userID)
	if err != nil {
		return CancelNotEnrolled, err
	}
	if user == nil {
		return CancelNotEnrolled, ErrUserNotFound
	}
	if err := r.Users.UpdateBalance(ctx, userID, user.Balance.Add(price)); err != nil {
		return CancelNotEnrolled, err
	}
	return CancelRefundedToBalance, nil
}
