package common

import (
	"fmt"

	"github.com/Freeeeeet/volleyball_school/internal/controller/callbacks/common/keyboard"
	"github.com/Freeeeeet/volleyball_school/internal/model"
	"github.com/go-telegram/bot/models"
)

// Callback data. Префиксы с двоеточием принимают аргументы
const (
	BackToMain = "back_to_main"
	Noop       = "noop"
	Levels     = "levels"
	Plans      = "plans"
	Account    = "account"

	Timetable = "timetable:" // timetable:<level>:<week>
	Training  = "training:"  // training:<id>
	Pay       = "pay:"       // pay:<id>:<balance|subscription>
	Cancel    = "cancel:"    // cancel:<id>
	Buy       = "buy:"       // buy:<planID>
)

// TimetableWeeks сколько недель расписания можно пролистать
const TimetableWeeks = 2

// TimetableData формирует callback data страницы расписания
func TimetableData(level model.SkillLevel, week int) string {
	return fmt.Sprintf("%s%d:%d", Timetable, level, week)
}

// TrainingData формирует callback data карточки тренировки
func TrainingData(id int64) string {
	return fmt.Sprintf("%s%d", Training, id)
}

// BackToMainButton кнопка возврата в главное меню
func BackToMainButton() models.InlineKeyboardButton {
	return keyboard.Button("⬅️ Главное меню", BackToMain)
}

// MainMenuKeyboard клавиатура главного меню
func MainMenuKeyboard() *models.InlineKeyboardMarkup {
	return keyboard.NewBuilder().
		Row(keyboard.Button("📅 Расписание", Levels)).
		Row(keyboard.Button("🎫 Абонементы", Plans), keyboard.Button("👤 Мой аккаунт", Account)).
		Build()
}
