package formatting

import (
	"fmt"
	"time"
)

// FormatDateTime форматирует дату и время
func FormatDateTime(t time.Time) string {
	return t.Format("02.01.2006 15:04")
}

// FormatDate форматирует только дату
func FormatDate(t time.Time) string {
	return t.Format("02.01.2006")
}

// FormatTime форматирует только время
func FormatTime(t time.Time) string {
	return t.Format("15:04")
}

// FormatTimeRange форматирует диапазон времени
func FormatTimeRange(start, end time.Time) string {
	return fmt.Sprintf("%s-%s", start.Format("15:04"), end.Format("15:04"))
}

var weekdayNames = []string{
	"Понедельник",
	"Вторник",
	"Среда",
	"Четверг",
	"Пятница",
	"Суббота",
	"Воскресенье",
}

var weekdayShortNames = []string{"Пн", "Вт", "Ср", "Чт", "Пт", "Сб", "Вс"}

// GetWeekdayName возвращает название дня недели на русском (1 = понедельник)
func GetWeekdayName(isoWeekday int) string {
	if isoWeekday >= 1 && isoWeekday <= len(weekdayNames) {
		return weekdayNames[isoWeekday-1]
	}
	return "Неизвестно"
}

// GetWeekdayShortName возвращает краткое название дня недели на русском
func GetWeekdayShortName(isoWeekday int) string {
	if isoWeekday >= 1 && isoWeekday <= len(weekdayShortNames) {
		return weekdayShortNames[isoWeekday-1]
	}
	return "?"
}

// GetMonthName возвращает название месяца на русском
func GetMonthName(month time.Month) string {
	names := map[time.Month]string{
		time.January:   "Январь",
		time.February:  "Февраль",
		time.March:     "Март",
		time.April:     "Апрель",
		time.May:       "Май",
		time.June:      "Июнь",
		time.July:      "Июль",
		time.August:    "Август",
		time.September: "Сентябрь",
		time.October:   "Октябрь",
		time.November:  "Ноябрь",
		time.December:  "Декабрь",
	}
	return names[month]
}
