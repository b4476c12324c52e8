package formatting

import (
	"fmt"
	"time"

	"github.com/Freeeeeet/volleyball_school/internal/model"
)

// StatusDisplay представляет отображение статуса
type StatusDisplay struct {
	Emoji string
	Text  string
}

// GetTrainingStatusDisplay возвращает emoji и текст для статуса тренировки
func GetTrainingStatusDisplay(status model.TrainingStatus) StatusDisplay {
	displays := map[model.TrainingStatus]StatusDisplay{
		model.TrainingStatusDefault:       {"🏐", "По расписанию"},
		model.TrainingStatusCoachReplaced: {"🔄", "Замена тренера"},
		model.TrainingStatusTimeChanged:   {"🕒", "Время изменено"},
		model.TrainingStatusCancelled:     {"❌", "Отменена"},
	}

	if display, ok := displays[status]; ok {
		return display
	}

	return StatusDisplay{"❓", "Неизвестно"}
}

// FormatTrainingShort коротко описывает тренировку для кнопки: "Вт 15.10 19:00"
func FormatTrainingShort(t *model.Training, loc *time.Location) string {
	start := t.StartsAt(loc)
	return fmt.Sprintf("%s %s %s", GetWeekdayShortName(t.DayOfWeek), start.Format("02.01"), FormatTime(start))
}

// FormatTrainingLine описывает тренировку одной строкой для списков
func FormatTrainingLine(t *model.Training, loc *time.Location) string {
	start := t.StartsAt(loc)
	return fmt.Sprintf("%s, %s %s, %s",
		GetWeekdayName(t.DayOfWeek),
		FormatDate(start),
		FormatTimeRange(start, t.EndsAt(loc)),
		t.SkillLevel)
}
