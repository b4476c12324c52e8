package service

import (
	"context"
	"time"

	"github.com/Freeeeeet/volleyball_school/internal/model"
	"github.com/shopspring/decimal"
)

type TimetableRepository interface {
	Create(ctx context.Context, t *model.Timetable) error
	GetByID(ctx context.Context, id int64) (*model.Timetable, error)
	GetByIDForUpdate(ctx context.Context, id int64) (*model.Timetable, error)
	GetAllActive(ctx context.Context) ([]*model.Timetable, error)
	Update(ctx context.Context, t *model.Timetable) error
	Delete(ctx context.Context, id int64) error
}

type TrainingRepository interface {
	CreateIfAbsent(ctx context.Context, t *model.Training) (bool, error)
	GetByID(ctx context.Context, id int64) (*model.Training, error)
	GetByIDForUpdate(ctx context.Context, id int64) (*model.Training, error)
	GetBySlotFrom(ctx context.Context, key model.SlotKey, from time.Time) ([]*model.Training, error)
	GetInRange(ctx context.Context, level model.SkillLevel, from, to time.Time) ([]*model.Training, error)
	GetByLearner(ctx context.Context, userID int64, from time.Time) ([]*model.Training, error)
	Update(ctx context.Context, t *model.Training) error
	Delete(ctx context.Context, id int64) error
	AddLearner(ctx context.Context, trainingID, userID int64) error
	RemoveLearner(ctx context.Context, trainingID, userID int64) error
}

type SubscriptionRepository interface {
	Create(ctx context.Context, s *model.Subscription) error
	GetByUserIDForUpdate(ctx context.Context, userID int64) ([]*model.Subscription, error)
	GetByUserAndTraining(ctx context.Context, userID, trainingID int64) (*model.Subscription, error)
	GetUserIDsByTraining(ctx context.Context, trainingID int64) ([]int64, error)
	UpdateLifecycle(ctx context.Context, s *model.Subscription) error
	LinkTraining(ctx context.Context, subscriptionID, trainingID int64) error
	UnlinkTraining(ctx context.Context, subscriptionID, trainingID int64) error
}

type PlanRepository interface {
	GetByID(ctx context.Context, id int64) (*model.SubscriptionPlan, error)
	GetActive(ctx context.Context) ([]*model.SubscriptionPlan, error)
}

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByIDForUpdate(ctx context.Context, id int64) (*model.User, error)
	GetByTelegramID(ctx context.Context, telegramID int64) (*model.User, error)
	UpdateProfile(ctx context.Context, user *model.User) error
	UpdateBalance(ctx context.Context, userID int64, balance decimal.Decimal) error
}

type CourtRepository interface {
	GetAll(ctx context.Context) ([]*model.Court, error)
}

// Repos набор репозиториев, привязанных к одной транзакции
type Repos struct {
	Timetables    TimetableRepository
	Trainings     TrainingRepository
	Subscriptions SubscriptionRepository
	Plans         PlanRepository
	Users         UserRepository
	Courts        CourtRepository
}

// UnitOfWork выполняет fn в одной транзакции. Ошибка fn откатывает все изменения
type UnitOfWork interface {
	Do(ctx context.Context, fn func(ctx context.Context, r Repos) error) error
}

// PriceSource цена одной тренировки
type PriceSource interface {
	SessionPrice() decimal.Decimal
}

// FixedPrice цена из конфигурации
type FixedPrice decimal.Decimal

func (p FixedPrice) SessionPrice() decimal.Decimal { return decimal.Decimal(p) }
