package service

import (
	"testing"
	"time"

	"github.com/Freeeeeet/volleyball_school/internal/clock"
	"github.com/Freeeeeet/volleyball_school/internal/model"
	"github.com/shopspring/decimal"
	"go.uber.org/zap/zaptest"
)

var msk = time.FixedZone("MSK", 3*60*60)

var testPrice = FixedPrice(decimal.NewFromInt(500))

func at(year int, month time.Month, day, hour, minute int) time.Time {
	return time.Date(year, month, day, hour, minute, 0, 0, msk)
}

// saturdayNoon суббота 2020-10-10, 12:00 по Москве
var saturdayNoon = at(2020, time.October, 10, 12, 0)

func newScheduleService(t *testing.T, store *memStore, now time.Time) *ScheduleService {
	t.Helper()
	return NewScheduleService(store, clock.Fixed(now), msk, testPrice, ScheduleOptions{HorizonDays: 15}, zaptest.NewLogger(t))
}

func newEnrollmentService(t *testing.T, store *memStore, now time.Time) *EnrollmentService {
	t.Helper()
	return NewEnrollmentService(store, clock.Fixed(now), msk, testPrice, zaptest.NewLogger(t))
}

func newSubscriptionService(t *testing.T, store *memStore, now time.Time) *SubscriptionService {
	t.Helper()
	return NewSubscriptionService(store, clock.Fixed(now), msk, zaptest.NewLogger(t))
}

func tuesdayTemplate(courtID int64) *model.Timetable {
	return &model.Timetable{
		DayOfWeek:  2,
		SkillLevel: model.SkillLevelBeginner,
		CourtID:    courtID,
		StartHour:  18,
		IsActive:   true,
	}
}

// trainingOn тренировка вне шаблона на дату
func trainingOn(courtID int64, date time.Time, hour int) model.Training {
	return model.Training{
		DayOfWeek:  clock.ISOWeekday(date),
		SkillLevel: model.SkillLevelBeginner,
		CourtID:    courtID,
		StartHour:  hour,
		Date:       date,
		Status:     model.TrainingStatusDefault,
		IsActive:   true,
	}
}

func dates(ds ...time.Time) []time.Time { return ds }
