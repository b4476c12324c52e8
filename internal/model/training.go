package model

import (
	"slices"
	"time"
)

type TrainingStatus string

const (
	TrainingStatusDefault       TrainingStatus = "default"        // Совпадает с шаблоном
	TrainingStatusCoachReplaced TrainingStatus = "coach_replaced" // Тренер заменён вручную
	TrainingStatusTimeChanged   TrainingStatus = "time_changed"   // Время изменено вручную
	TrainingStatusCancelled     TrainingStatus = "cancelled"      // Отменена администратором
)

const (
	TrainingCapacity   = 16
	TrainingDuration   = 2 * time.Hour
	CancellationCutoff = time.Hour
)

// Training конкретная тренировка с датой
type Training struct {
	ID          int64          `json:"id"`
	DayOfWeek   int            `json:"day_of_week" validate:"min=1,max=7"`
	SkillLevel  SkillLevel     `json:"skill_level" validate:"min=1,max=3"`
	CourtID     int64          `json:"court_id" validate:"required"`
	CoachID     *int64         `json:"coach_id" validate:"omitempty,gt=0"`
	StartHour   int            `json:"start_hour" validate:"min=0,max=23"`
	StartMinute int            `json:"start_minute" validate:"min=0,max=59"`
	Date        time.Time      `json:"date" validate:"required"` // гражданская дата, 00:00 UTC
	Status      TrainingStatus `json:"status" validate:"oneof=default coach_replaced time_changed cancelled"`
	IsActive    bool           `json:"is_active"`
	Learners    []int64        `json:"learners"` // ID записанных пользователей
	CreatedAt   time.Time      `json:"created_at"`
}

// NewTrainingFromTimetable создаёт тренировку шаблона на указанную дату
func NewTrainingFromTimetable(t *Timetable, date time.Time) *Training {
	training := &Training{
		Date:   date,
		Status: TrainingStatusDefault,
	}
	training.Apply(t.TrainingFields())
	return training
}

// Apply копирует общие с шаблоном поля
func (t *Training) Apply(f TrainingFields) {
	t.DayOfWeek = f.DayOfWeek
	t.SkillLevel = f.SkillLevel
	t.CourtID = f.CourtID
	t.CoachID = copyID(f.CoachID)
	t.StartHour = f.StartHour
	t.StartMinute = f.StartMinute
	t.IsActive = f.IsActive
}

// Key возвращает ключ слота тренировки
func (t *Training) Key() SlotKey {
	return SlotKey{SkillLevel: t.SkillLevel, CourtID: t.CourtID, DayOfWeek: t.DayOfWeek}
}

// StartsAt время начала в часовом поясе школы
func (t *Training) StartsAt(loc *time.Location) time.Time {
	return time.Date(t.Date.Year(), t.Date.Month(), t.Date.Day(), t.StartHour, t.StartMinute, 0, 0, loc)
}

// EndsAt время окончания
func (t *Training) EndsAt(loc *time.Location) time.Time {
	return t.StartsAt(loc).Add(TrainingDuration)
}

// HasEnded проверяет что тренировка уже закончилась
func (t *Training) HasEnded(now time.Time, loc *time.Location) bool {
	return !now.Before(t.EndsAt(loc))
}

// CanCancel is true while strictly more than CancellationCutoff remains before start.
func (t *Training) CanCancel(now time.Time, loc *time.Location) bool {
	return now.Before(t.StartsAt(loc).Add(-CancellationCutoff))
}

// HasLearner проверяет записан ли пользователь
func (t *Training) HasLearner(userID int64) bool {
	return slices.Contains(t.Learners, userID)
}

// IsFull проверяет заполненность
func (t *Training) IsFull() bool {
	return len(t.Learners) >= TrainingCapacity
}

// FreePlaces количество свободных мест
func (t *Training) FreePlaces() int {
	free := TrainingCapacity - len(t.Learners)
	if free < 0 {
		return 0
	}
	return free
}

// IsBookable тренировка активна, не отменена и не закончилась
func (t *Training) IsBookable(now time.Time, loc *time.Location) bool {
	return t.IsActive && t.Status != TrainingStatusCancelled && !t.HasEnded(now, loc)
}
