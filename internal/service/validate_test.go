package service

import (
	"testing"

	"github.com/Freeeeeet/volleyball_school/internal/clock"
	"github.com/Freeeeeet/volleyball_school/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestValidateTraining(t *testing.T) {
	valid := trainingOn(1, clock.NewDate(2020, 10, 13), 18)
	assert.NoError(t, ValidateTraining(&valid))

	wrongDay := valid
	wrongDay.DayOfWeek = 3
	assert.ErrorIs(t, ValidateTraining(&wrongDay), ErrInvariantViolation)

	badStatus := valid
	badStatus.Status = "moved"
	assert.ErrorIs(t, ValidateTraining(&badStatus), ErrInvariantViolation)

	noCourt := valid
	noCourt.CourtID = 0
	assert.ErrorIs(t, ValidateTraining(&noCourt), ErrInvariantViolation)
}

func TestValidateTimetable(t *testing.T) {
	tt := tuesdayTemplate(1)
	assert.NoError(t, ValidateTimetable(tt))

	tt.DayOfWeek = 8
	assert.ErrorIs(t, ValidateTimetable(tt), ErrInvariantViolation)

	tt = tuesdayTemplate(1)
	tt.SkillLevel = model.SkillLevel(4)
	assert.ErrorIs(t, ValidateTimetable(tt), ErrInvariantViolation)

	zero := int64(0)
	tt = tuesdayTemplate(1)
	tt.CoachID = &zero
	assert.ErrorIs(t, ValidateTimetable(tt), ErrInvariantViolation)
}

func TestValidatePlan(t *testing.T) {
	plan := &model.SubscriptionPlan{Name: "Разовое", Amount: decimal.NewFromInt(600), SessionsQty: 1, ValidityDays: 7}
	assert.NoError(t, ValidatePlan(plan))

	plan.Amount = decimal.NewFromInt(-1)
	assert.ErrorIs(t, ValidatePlan(plan), ErrInvariantViolation)

	plan.Amount = decimal.NewFromInt(1)
	plan.SessionsQty = 0
	assert.ErrorIs(t, ValidatePlan(plan), ErrInvariantViolation)
}
