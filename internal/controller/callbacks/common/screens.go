package common

import (
	"fmt"
	"strings"
	"time"

	"github.com/Freeeeeet/volleyball_school/internal/controller/callbacks/common/formatting"
	"github.com/Freeeeeet/volleyball_school/internal/controller/callbacks/common/keyboard"
	"github.com/Freeeeeet/volleyball_school/internal/lifecycle"
	"github.com/Freeeeeet/volleyball_school/internal/model"
	"github.com/Freeeeeet/volleyball_school/internal/service"
	"github.com/go-telegram/bot/models"
	"github.com/shopspring/decimal"
)

// MainMenuText текст главного меню
const MainMenuText = "🏐 <b>Школа волейбола</b>\n\nВыберите действие:"

// BuildLevelsScreen формирует экран выбора уровня подготовки
func BuildLevelsScreen() (string, *models.InlineKeyboardMarkup) {
	kb := keyboard.NewBuilder()
	for _, level := range model.SkillLevels {
		kb.Row(keyboard.Button("🏐 "+level.String(), TimetableData(level, 0)))
	}
	kb.Row(BackToMainButton())

	return "📅 <b>Расписание</b>\n\nВыберите уровень подготовки:", kb.Build()
}

// TrainingView данные для карточки тренировки
type TrainingView struct {
	Training *model.Training
	Court    *model.Court // nil если площадка не найдена
	UserID   int64
	Price    decimal.Decimal
	Now      time.Time
	Location *time.Location
}

// BuildTrainingScreen формирует карточку тренировки с кнопками записи или отмены
func BuildTrainingScreen(v TrainingView) (string, *models.InlineKeyboardMarkup) {
	t := v.Training
	status := formatting.GetTrainingStatusDisplay(t.Status)
	start := t.StartsAt(v.Location)

	var sb strings.Builder
	sb.WriteString("🏐 <b>Тренировка</b>\n\n")
	fmt.Fprintf(&sb, "📊 Уровень: %s\n", t.SkillLevel)
	fmt.Fprintf(&sb, "📅 %s, %s\n", formatting.GetWeekdayName(t.DayOfWeek), formatting.FormatDate(start))
	fmt.Fprintf(&sb, "🕐 %s\n", formatting.FormatTimeRange(start, t.EndsAt(v.Location)))
	if v.Court != nil {
		fmt.Fprintf(&sb, "📍 %s, %s\n", v.Court.Name, v.Court.Address)
		if v.Court.PassportRequired {
			sb.WriteString("🪪 Для прохода нужен паспорт\n")
		}
	}
	fmt.Fprintf(&sb, "%s %s\n", status.Emoji, status.Text)
	free := t.FreePlaces()
	fmt.Fprintf(&sb, "👥 Свободно: %d %s из %d\n", free, formatting.PluralizePlaces(free), model.TrainingCapacity)
	fmt.Fprintf(&sb, "💰 Разовое занятие: %s", formatting.FormatPriceShort(v.Price))

	kb := keyboard.NewBuilder()
	id := t.ID
	switch {
	case t.HasLearner(v.UserID):
		sb.WriteString("\n\n✅ Вы записаны")
		if t.CanCancel(v.Now, v.Location) {
			kb.Row(keyboard.Button("❌ Отменить запись", fmt.Sprintf("%s%d", Cancel, id)))
		}
	case !t.IsBookable(v.Now, v.Location):
		sb.WriteString("\n\n⛔️ Запись закрыта")
	case t.IsFull():
		sb.WriteString("\n\n⛔️ Мест нет")
	default:
		kb.Row(keyboard.Button("💳 Оплатить с баланса", fmt.Sprintf("%s%d:%s", Pay, id, service.PaymentBalance)))
		kb.Row(keyboard.Button("🎫 Списать с абонемента", fmt.Sprintf("%s%d:%s", Pay, id, service.PaymentSubscription)))
	}
	kb.Row(keyboard.Button("⬅️ К расписанию", TimetableData(t.SkillLevel, 0)))

	return sb.String(), kb.Build()
}

// BuildPlansScreen формирует каталог абонементов
func BuildPlansScreen(plans []*model.SubscriptionPlan) (string, *models.InlineKeyboardMarkup) {
	kb := keyboard.NewBuilder()
	if len(plans) == 0 {
		kb.Row(BackToMainButton())
		return "🎫 Сейчас нет абонементов в продаже.", kb.Build()
	}

	var sb strings.Builder
	sb.WriteString("🎫 <b>Абонементы</b>\n")
	for _, p := range plans {
		fmt.Fprintf(&sb, "\n<b>%s</b>\n%d %s за %d %s, %s\n",
			p.Name,
			p.SessionsQty, formatting.PluralizeTrainings(p.SessionsQty),
			p.ValidityDays, formatting.PluralizeDays(p.ValidityDays),
			formatting.FormatPriceShort(p.Amount))
		kb.Row(keyboard.Button(fmt.Sprintf("Купить «%s»", p.Name), fmt.Sprintf("%s%d", Buy, p.ID)))
	}
	fmt.Fprintf(&sb, "\nСрок действия считается с первой тренировки, если она была в течение %d %s после покупки.",
		lifecycle.GracePeriodDays, formatting.PluralizeDays(lifecycle.GracePeriodDays))
	kb.Row(BackToMainButton())

	return sb.String(), kb.Build()
}

// BuildAccountScreen формирует экран аккаунта
func BuildAccountScreen(summary *service.AccountSummary, loc *time.Location) (string, *models.InlineKeyboardMarkup) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "👤 <b>%s</b>\n\n", summary.User.FirstName)
	fmt.Fprintf(&sb, "💰 Баланс: %s\n", formatting.FormatPrice(summary.User.Balance))

	sb.WriteString("\n🎫 <b>Абонементы</b>\n")
	if len(summary.ActiveSubscriptions) == 0 {
		sb.WriteString("Нет активных абонементов\n")
	}
	for _, view := range summary.ActiveSubscriptions {
		sb.WriteString(formatSubscription(view) + "\n")
	}
	if summary.LastExpiredSubscription != nil {
		end := summary.LastExpiredSubscription.Snapshot.End.Value
		fmt.Fprintf(&sb, "Последний абонемент закончился %s\n", formatting.FormatDate(end))
	}

	kb := keyboard.NewBuilder()
	sb.WriteString("\n📅 <b>Мои тренировки</b>\n")
	if len(summary.UpcomingTrainings) == 0 {
		sb.WriteString("Вы пока никуда не записаны\n")
	}
	for _, t := range summary.UpcomingTrainings {
		sb.WriteString("• " + formatting.FormatTrainingLine(t, loc) + "\n")
		kb.Row(keyboard.Button("🔎 "+formatting.FormatTrainingShort(t, loc), TrainingData(t.ID)))
	}
	kb.Row(keyboard.Button("🎫 Купить абонемент", Plans))
	kb.Row(BackToMainButton())

	return strings.TrimRight(sb.String(), "\n"), kb.Build()
}

func formatSubscription(view service.SubscriptionView) string {
	snap := view.Snapshot
	line := fmt.Sprintf("• осталось %d %s, действует до %s",
		snap.Remaining, formatting.PluralizeTrainings(snap.Remaining),
		formatting.FormatDate(snap.End.Value))
	if snap.End.State == lifecycle.Tentative {
		line += " (отсчёт начнётся с первой тренировки)"
	}
	return line
}
