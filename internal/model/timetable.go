package model

import "time"

// SkillLevel группа подготовки
type SkillLevel int

const (
	SkillLevelBeginner     SkillLevel = 1
	SkillLevelIntermediate SkillLevel = 2
	SkillLevelAdvanced     SkillLevel = 3
)

// SkillLevels все уровни в порядке отображения
var SkillLevels = []SkillLevel{SkillLevelBeginner, SkillLevelIntermediate, SkillLevelAdvanced}

// Valid проверяет что уровень из допустимого набора
func (l SkillLevel) Valid() bool {
	return l >= SkillLevelBeginner && l <= SkillLevelAdvanced
}

func (l SkillLevel) String() string {
	switch l {
	case SkillLevelBeginner:
		return "Начальный"
	case SkillLevelIntermediate:
		return "Средний"
	case SkillLevelAdvanced:
		return "Продвинутый"
	default:
		return "Неизвестный"
	}
}

// SlotKey identifies the weekly slot a timetable owns: at most one training
// per (skill level, court, date) exists, and date fixes the weekday.
type SlotKey struct {
	SkillLevel SkillLevel
	CourtID    int64
	DayOfWeek  int
}

// Timetable шаблон еженедельной тренировки
type Timetable struct {
	ID          int64      `json:"id"`
	DayOfWeek   int        `json:"day_of_week" validate:"min=1,max=7"` // 1 = понедельник, 7 = воскресенье
	SkillLevel  SkillLevel `json:"skill_level" validate:"min=1,max=3"`
	CourtID     int64      `json:"court_id" validate:"required"`
	CoachID     *int64     `json:"coach_id" validate:"omitempty,gt=0"` // nil - тренер не назначен
	StartHour   int        `json:"start_hour" validate:"min=0,max=23"`
	StartMinute int        `json:"start_minute" validate:"min=0,max=59"`
	IsActive    bool       `json:"is_active"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Key возвращает ключ слота шаблона
func (t *Timetable) Key() SlotKey {
	return SlotKey{SkillLevel: t.SkillLevel, CourtID: t.CourtID, DayOfWeek: t.DayOfWeek}
}

// TrainingFields are the fields a training shares with its timetable.
// It is the whole contract between a template and its occurrences.
type TrainingFields struct {
	DayOfWeek   int
	SkillLevel  SkillLevel
	CourtID     int64
	CoachID     *int64
	StartHour   int
	StartMinute int
	IsActive    bool
}

// TrainingFields проецирует шаблон на общие с тренировкой поля
func (t *Timetable) TrainingFields() TrainingFields {
	return TrainingFields{
		DayOfWeek:   t.DayOfWeek,
		SkillLevel:  t.SkillLevel,
		CourtID:     t.CourtID,
		CoachID:     copyID(t.CoachID),
		StartHour:   t.StartHour,
		StartMinute: t.StartMinute,
		IsActive:    t.IsActive,
	}
}

func copyID(id *int64) *int64 {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}
