package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// SubscriptionPlan образец абонемента в каталоге
type SubscriptionPlan struct {
	ID           int64           `json:"id"`
	Name         string          `json:"name" validate:"required,max=80"`
	Amount       decimal.Decimal `json:"amount"`
	SessionsQty  int             `json:"sessions_qty" validate:"gt=0"`
	ValidityDays int             `json:"validity_days" validate:"gt=0"`
	IsActive     bool            `json:"is_active"`
}

// LinkedTraining тренировка, списанная с абонемента
type LinkedTraining struct {
	TrainingID  int64     `json:"training_id"`
	Date        time.Time `json:"date"`
	StartHour   int       `json:"start_hour"`
	StartMinute int       `json:"start_minute"`
}

// StartsAt время начала в часовом поясе школы
func (l LinkedTraining) StartsAt(loc *time.Location) time.Time {
	return time.Date(l.Date.Year(), l.Date.Month(), l.Date.Day(), l.StartHour, l.StartMinute, 0, 0, loc)
}

// Subscription купленный абонемент
type Subscription struct {
	ID           int64            `json:"id"`
	UserID       int64            `json:"user_id"`
	SessionsQty  int              `json:"sessions_qty"`
	ValidityDays int              `json:"validity_days"`
	PurchaseDate time.Time        `json:"purchase_date"`
	StartDate    *time.Time       `json:"start_date"` // nil - дата ещё не зафиксирована
	EndDate      *time.Time       `json:"end_date"`   // nil - дата ещё не зафиксирована
	IsActive     bool             `json:"is_active"`
	Trainings    []LinkedTraining `json:"trainings"`
	CreatedAt    time.Time        `json:"created_at"`
}

// NewSubscriptionFromPlan копирует условия плана в новый абонемент
func NewSubscriptionFromPlan(userID int64, plan *SubscriptionPlan, purchaseDate time.Time) *Subscription {
	return &Subscription{
		UserID:       userID,
		SessionsQty:  plan.SessionsQty,
		ValidityDays: plan.ValidityDays,
		PurchaseDate: purchaseDate,
		IsActive:     true,
	}
}

// Remaining количество оставшихся тренировок
func (s *Subscription) Remaining() int {
	return s.SessionsQty - len(s.Trainings)
}

// Links проверяет что тренировка списана с абонемента
func (s *Subscription) Links(trainingID int64) bool {
	for _, l := range s.Trainings {
		if l.TrainingID == trainingID {
			return true
		}
	}
	return false
}
