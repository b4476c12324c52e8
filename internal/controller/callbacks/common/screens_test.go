package common

import (
	"testing"
	"time"

	"github.com/Freeeeeet/volleyball_school/internal/clock"
	"github.com/Freeeeeet/volleyball_school/internal/lifecycle"
	"github.com/Freeeeeet/volleyball_school/internal/model"
	"github.com/Freeeeeet/volleyball_school/internal/service"
	"github.com/go-telegram/bot/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var msk = time.FixedZone("MSK", 3*60*60)

func callbackData(kb *models.InlineKeyboardMarkup) []string {
	var data []string
	for _, row := range kb.InlineKeyboard {
		for _, button := range row {
			data = append(data, button.CallbackData)
		}
	}
	return data
}

func tuesdayTraining() *model.Training {
	return &model.Training{
		ID:         7,
		DayOfWeek:  2,
		SkillLevel: model.SkillLevelIntermediate,
		CourtID:    1,
		Date:       clock.NewDate(2030, time.October, 15),
		StartHour:  19,
		Status:     model.TrainingStatusDefault,
		IsActive:   true,
	}
}

func trainingView(t *model.Training, now time.Time) TrainingView {
	return TrainingView{
		Training: t,
		Court:    &model.Court{ID: 1, Name: "Лужники", Address: "ул. Лужники, 24", PassportRequired: true},
		UserID:   10,
		Price:    decimal.NewFromInt(500),
		Now:      now,
		Location: msk,
	}
}

func TestTrainingScreenOffersPaymentMethods(t *testing.T) {
	now := time.Date(2030, time.October, 14, 12, 0, 0, 0, msk)

	text, kb := BuildTrainingScreen(trainingView(tuesdayTraining(), now))

	assert.Contains(t, text, "Вторник, 15.10.2030")
	assert.Contains(t, text, "19:00-21:00")
	assert.Contains(t, text, "Лужники")
	assert.Contains(t, text, "паспорт")
	assert.Contains(t, text, "Свободно: 16 мест из 16")
	assert.Equal(t, []string{"pay:7:balance", "pay:7:subscription", "timetable:2:0"}, callbackData(kb))
}

func TestTrainingScreenEnrolledCanCancelBeforeCutoff(t *testing.T) {
	training := tuesdayTraining()
	training.Learners = []int64{10}

	early := time.Date(2030, time.October, 15, 17, 0, 0, 0, msk)
	text, kb := BuildTrainingScreen(trainingView(training, early))
	assert.Contains(t, text, "Вы записаны")
	assert.Equal(t, []string{"cancel:7", "timetable:2:0"}, callbackData(kb))

	late := time.Date(2030, time.October, 15, 18, 0, 0, 0, msk)
	_, kb = BuildTrainingScreen(trainingView(training, late))
	assert.Equal(t, []string{"timetable:2:0"}, callbackData(kb))
}

func TestTrainingScreenFullOrClosed(t *testing.T) {
	now := time.Date(2030, time.October, 14, 12, 0, 0, 0, msk)

	full := tuesdayTraining()
	for i := int64(100); i < 100+model.TrainingCapacity; i++ {
		full.Learners = append(full.Learners, i)
	}
	text, kb := BuildTrainingScreen(trainingView(full, now))
	assert.Contains(t, text, "Мест нет")
	assert.Equal(t, []string{"timetable:2:0"}, callbackData(kb))

	cancelled := tuesdayTraining()
	cancelled.Status = model.TrainingStatusCancelled
	text, _ = BuildTrainingScreen(trainingView(cancelled, now))
	assert.Contains(t, text, "Запись закрыта")
}

func TestPlansScreen(t *testing.T) {
	text, kb := BuildPlansScreen([]*model.SubscriptionPlan{
		{ID: 3, Name: "Восьмёрка", Amount: decimal.NewFromInt(3600), SessionsQty: 8, ValidityDays: 30, IsActive: true},
	})

	assert.Contains(t, text, "8 тренировок за 30 дней, 3600 ₽")
	assert.Contains(t, text, "10 дней")
	assert.Equal(t, []string{"buy:3", BackToMain}, callbackData(kb))

	text, kb = BuildPlansScreen(nil)
	assert.Contains(t, text, "нет абонементов")
	assert.Equal(t, []string{BackToMain}, callbackData(kb))
}

func TestAccountScreen(t *testing.T) {
	end := clock.NewDate(2030, time.November, 14)
	expired := clock.NewDate(2030, time.September, 1)
	summary := &service.AccountSummary{
		User:              &model.User{ID: 10, FirstName: "Аня", Balance: decimal.RequireFromString("1250.5")},
		UpcomingTrainings: []*model.Training{tuesdayTraining()},
		ActiveSubscriptions: []service.SubscriptionView{{
			Subscription: &model.Subscription{ID: 1},
			Snapshot: lifecycle.Snapshot{
				End:       lifecycle.Date{Value: end, State: lifecycle.Memoized},
				Remaining: 3,
				Active:    true,
			},
		}},
		LastExpiredSubscription: &service.SubscriptionView{
			Subscription: &model.Subscription{ID: 0},
			Snapshot:     lifecycle.Snapshot{End: lifecycle.Date{Value: expired, State: lifecycle.Memoized}},
		},
	}

	text, kb := BuildAccountScreen(summary, msk)

	require.NotEmpty(t, text)
	assert.Contains(t, text, "Баланс: 1250.50 ₽")
	assert.Contains(t, text, "осталось 3 тренировки, действует до 14.11.2030")
	assert.NotContains(t, text, "отсчёт начнётся")
	assert.Contains(t, text, "закончился 01.09.2030")
	assert.Contains(t, text, "Вторник, 15.10.2030 19:00-21:00, Средний")
	assert.Equal(t, []string{"training:7", Plans, BackToMain}, callbackData(kb))
}

func TestAccountScreenEmpty(t *testing.T) {
	summary := &service.AccountSummary{User: &model.User{FirstName: "Пётр"}}

	text, _ := BuildAccountScreen(summary, msk)

	assert.Contains(t, text, "Нет активных абонементов")
	assert.Contains(t, text, "Вы пока никуда не записаны")
	assert.Contains(t, text, "Баланс: 0.00 ₽")
}
