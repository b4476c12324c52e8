package service

import (
	"fmt"

	"github.com/Freeeeeet/volleyball_school/internal/clock"
	"github.com/Freeeeeet/volleyball_school/internal/model"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidateTimetable проверяет поля шаблона
func ValidateTimetable(t *model.Timetable) error {
	if err := validate.Struct(t); err != nil {
		return fmt.Errorf("%w: timetable: %v", ErrInvariantViolation, err)
	}
	return nil
}

// ValidateTraining проверяет поля тренировки и совпадение дня недели с датой
func ValidateTraining(t *model.Training) error {
	if err := validate.Struct(t); err != nil {
		return fmt.Errorf("%w: training: %v", ErrInvariantViolation, err)
	}
	if wd := clock.ISOWeekday(t.Date); wd != t.DayOfWeek {
		return fmt.Errorf("%w: day of week %d does not match date %s (weekday %d)",
			ErrInvariantViolation, t.DayOfWeek, t.Date.Format("2006-01-02"), wd)
	}
	return nil
}

// ValidatePlan проверяет поля плана абонемента
func ValidatePlan(p *model.SubscriptionPlan) error {
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("%w: plan: %v", ErrInvariantViolation, err)
	}
	if p.Amount.IsNegative() {
		return fmt.Errorf("%w: plan amount is negative", ErrInvariantViolation)
	}
	return nil
}
