package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/Freeeeeet/volleyball_school/internal/calendar"
	"github.com/Freeeeeet/volleyball_school/internal/clock"
	"github.com/Freeeeeet/volleyball_school/internal/model"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// ScheduleOptions параметры генерации тренировок
type ScheduleOptions struct {
	HorizonDays   int  // на сколько дней вперёд создавать тренировки
	AlignToMonday bool // отсчитывать горизонт от понедельника текущей недели
}

// ScheduleService разворачивает шаблоны в тренировки и синхронизирует их при изменениях
type ScheduleService struct {
	uow    UnitOfWork
	clock  clock.Clock
	loc    *time.Location
	price  PriceSource
	opts   ScheduleOptions
	logger *zap.Logger
}

func NewScheduleService(
	uow UnitOfWork,
	clk clock.Clock,
	loc *time.Location,
	price PriceSource,
	opts ScheduleOptions,
	logger *zap.Logger,
) *ScheduleService {
	return &ScheduleService{
		uow:    uow,
		clock:  clk,
		loc:    loc,
		price:  price,
		opts:   opts,
		logger: logger,
	}
}

// MaterializeResult итог генерации по одному шаблону
type MaterializeResult struct {
	Created []time.Time
	Skipped []time.Time
	Failed  []time.Time
}

// SaveResult итог сохранения шаблона
type SaveResult struct {
	Timetable   *model.Timetable
	Updated     int
	Deactivated int
	Created     int
}

// Anchor возвращает дату начала горизонта: сегодня или понедельник текущей недели
func (s *ScheduleService) Anchor(alignToMonday bool) time.Time {
	today := clock.Today(s.clock, s.loc)
	if alignToMonday {
		return clock.MondayOf(today)
	}
	return today
}

// candidateDates даты в [anchor, anchor+horizonDays), совпадающие по дню недели
func candidateDates(dayOfWeek, horizonDays int, anchor time.Time) []time.Time {
	var dates []time.Time
	for i := 0; i < horizonDays; i++ {
		date := clock.AddDays(anchor, i)
		if clock.ISOWeekday(date) == dayOfWeek {
			dates = append(dates, date)
		}
	}
	return dates
}

// materializeDate создаёт тренировку шаблона на дату.
// Занятый слот возвращает ErrTrainingExists, ошибки полей ErrInvariantViolation
func materializeDate(ctx context.Context, r Repos, tt *model.Timetable, date time.Time) (*model.Training, error) {
	training := model.NewTrainingFromTimetable(tt, date)
	if err := ValidateTraining(training); err != nil {
		return nil, err
	}

	created, err := r.Trainings.CreateIfAbsent(ctx, training)
	if err != nil {
		return nil, fmt.Errorf("create training: %w", err)
	}
	if !created {
		return nil, ErrTrainingExists
	}

	return training, nil
}

// Materialize создаёт тренировки шаблона на горизонт. Каждая дата в своей транзакции,
// ошибка одной даты не останавливает остальные
func (s *ScheduleService) Materialize(ctx context.Context, tt *model.Timetable, horizonDays int, anchor time.Time) (MaterializeResult, error) {
	var result MaterializeResult
	var errs error

	for _, date := range candidateDates(tt.DayOfWeek, horizonDays, anchor) {
		var training *model.Training
		err := s.uow.Do(ctx, func(ctx context.Context, r Repos) error {
			var err error
			training, err = materializeDate(ctx, r, tt, date)
			return err
		})

		switch {
		case err == nil:
			result.Created = append(result.Created, date)
			s.logger.Info("Training created",
				zap.Int64("training_id", training.ID),
				zap.Int64("timetable_id", tt.ID),
				zap.Time("date", date),
			)
		case errors.Is(err, ErrValidationConflict):
			result.Skipped = append(result.Skipped, date)
			s.logger.Debug("Training already exists, skipping",
				zap.Int64("timetable_id", tt.ID),
				zap.Time("date", date),
			)
		default:
			result.Failed = append(result.Failed, date)
			errs = multierr.Append(errs, fmt.Errorf("timetable %d on %s: %w", tt.ID, date.Format(time.DateOnly), err))
			s.logger.Warn("Failed to create training",
				zap.Int64("timetable_id", tt.ID),
				zap.Time("date", date),
				zap.Error(err),
			)
		}
	}

	return result, errs
}

// MaterializeReport итог генерации по всем шаблонам
type MaterializeReport struct {
	RunID      string
	Timetables int
	Created    int
	Skipped    int
	Failed     int
}

// MaterializeAllActive создаёт тренировки всех активных шаблонов на горизонт
func (s *ScheduleService) MaterializeAllActive(ctx context.Context, horizonDays int, alignToMonday bool) (MaterializeReport, error) {
	report := MaterializeReport{RunID: uuid.NewString()}
	logger := s.logger.With(zap.String("run_id", report.RunID))

	var timetables []*model.Timetable
	err := s.uow.Do(ctx, func(ctx context.Context, r Repos) error {
		var err error
		timetables, err = r.Timetables.GetAllActive(ctx)
		return err
	})
	if err != nil {
		return report, fmt.Errorf("get active timetables: %w", err)
	}

	anchor := s.Anchor(alignToMonday)
	logger.Info("Materialization started",
		zap.Int("timetables", len(timetables)),
		zap.Time("anchor", anchor),
		zap.Int("horizon_days", horizonDays),
	)

	var errs error
	for _, tt := range timetables {
		result, err := s.Materialize(ctx, tt, horizonDays, anchor)
		report.Timetables++
		report.Created += len(result.Created)
		report.Skipped += len(result.Skipped)
		report.Failed += len(result.Failed)
		errs = multierr.Append(errs, err)
	}

	logger.Info("Materialization finished",
		zap.Int("created", report.Created),
		zap.Int("skipped", report.Skipped),
		zap.Int("failed", report.Failed),
	)

	return report, errs
}

// SaveTimetable создаёт или обновляет шаблон и синхронизирует будущие тренировки.
// Тренировки, изменённые вручную, не трогаются
func (s *ScheduleService) SaveTimetable(ctx context.Context, tt *model.Timetable) (*SaveResult, error) {
	if err := ValidateTimetable(tt); err != nil {
		return nil, err
	}

	today := clock.Today(s.clock, s.loc)
	anchor := s.Anchor(s.opts.AlignToMonday)
	var result *SaveResult

	err := s.uow.Do(ctx, func(ctx context.Context, r Repos) error {
		result = &SaveResult{}
		saved := *tt

		var previous *model.Timetable
		if saved.ID == 0 {
			if err := r.Timetables.Create(ctx, &saved); err != nil {
				return err
			}
		} else {
			var err error
			previous, err = r.Timetables.GetByIDForUpdate(ctx, saved.ID)
			if err != nil {
				return err
			}
			if previous == nil {
				return ErrTimetableNotFound
			}
			if err := r.Timetables.Update(ctx, &saved); err != nil {
				return err
			}
		}
		result.Timetable = &saved

		// Слот сменился: тренировки старого ключа больше не относятся к шаблону
		if previous != nil && previous.Key() != saved.Key() {
			n, err := deactivateDefault(ctx, r, previous.Key(), today)
			if err != nil {
				return err
			}
			result.Deactivated += n
		}

		if !saved.IsActive {
			n, err := deactivateDefault(ctx, r, saved.Key(), today)
			if err != nil {
				return err
			}
			result.Deactivated += n
			return nil
		}

		trainings, err := r.Trainings.GetBySlotFrom(ctx, saved.Key(), today)
		if err != nil {
			return err
		}
		fields := saved.TrainingFields()
		for _, t := range trainings {
			if t.Status != model.TrainingStatusDefault {
				continue
			}
			t.Apply(fields)
			if err := r.Trainings.Update(ctx, t); err != nil {
				return err
			}
			result.Updated++
		}

		for _, date := range candidateDates(saved.DayOfWeek, s.opts.HorizonDays, anchor) {
			_, err := materializeDate(ctx, r, &saved, date)
			switch {
			case err == nil:
				result.Created++
			case errors.Is(err, ErrValidationConflict):
			case errors.Is(err, ErrInvariantViolation):
				s.logger.Warn("Skipping invalid training",
					zap.Int64("timetable_id", saved.ID),
					zap.Time("date", date),
					zap.Error(err),
				)
			default:
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("save timetable: %w", err)
	}

	*tt = *result.Timetable
	s.logger.Info("Timetable saved",
		zap.Int64("timetable_id", tt.ID),
		zap.Bool("active", tt.IsActive),
		zap.Int("updated", result.Updated),
		zap.Int("deactivated", result.Deactivated),
		zap.Int("created", result.Created),
	)

	return result, nil
}

func deactivateDefault(ctx context.Context, r Repos, key model.SlotKey, from time.Time) (int, error) {
	trainings, err := r.Trainings.GetBySlotFrom(ctx, key, from)
	if err != nil {
		return 0, err
	}

	n := 0
	for _, t := range trainings {
		if t.Status != model.TrainingStatusDefault || !t.IsActive {
			continue
		}
		t.IsActive = false
		if err := r.Trainings.Update(ctx, t); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

// DeleteTimetable удаляет шаблон вместе с будущими, ещё не начавшимися тренировками.
// Записанным ученикам возвращается оплата, прошлые тренировки не трогаются
func (s *ScheduleService) DeleteTimetable(ctx context.Context, id int64) (int, error) {
	now := s.clock.Now()
	today := clock.Today(s.clock, s.loc)
	price := s.price.SessionPrice()
	deleted := 0

	err := s.uow.Do(ctx, func(ctx context.Context, r Repos) error {
		deleted = 0
		tt, err := r.Timetables.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if tt == nil {
			return ErrTimetableNotFound
		}

		trainings, err := r.Trainings.GetBySlotFrom(ctx, tt.Key(), today)
		if err != nil {
			return err
		}

		for _, t := range trainings {
			if !now.Before(t.StartsAt(s.loc)) {
				continue
			}
			if err := refundBeforeDelete(ctx, r, t, price); err != nil {
				return err
			}
			if err := r.Trainings.Delete(ctx, t.ID); err != nil {
				return err
			}
			deleted++
		}

		return r.Timetables.Delete(ctx, id)
	})
	if err != nil {
		return 0, fmt.Errorf("delete timetable: %w", err)
	}

	s.logger.Info("Timetable deleted",
		zap.Int64("timetable_id", id),
		zap.Int("trainings_deleted", deleted),
	)

	return deleted, nil
}

// refundBeforeDelete возвращает цену на баланс ученикам, которые не платили абонементом.
// Списания с абонементов удаляются вместе с тренировкой
func refundBeforeDelete(ctx context.Context, r Repos, t *model.Training, price decimal.Decimal) error {
	subscribers, err := r.Subscriptions.GetUserIDsByTraining(ctx, t.ID)
	if err != nil {
		return err
	}

	for _, userID := range t.Learners {
		if slices.Contains(subscribers, userID) {
			continue
		}
		user, err := r.Users.GetByIDForUpdate(ctx, userID)
		if err != nil {
			return err
		}
		if user == nil {
			return ErrUserNotFound
		}
		if err := r.Users.UpdateBalance(ctx, userID, user.Balance.Add(price)); err != nil {
			return err
		}
	}
	return nil
}

// override меняет одну ещё не закончившуюся тренировку вручную
func (s *ScheduleService) override(ctx context.Context, trainingID int64, change func(ctx context.Context, r Repos, t *model.Training) error) (*model.Training, error) {
	now := s.clock.Now()
	var training *model.Training

	err := s.uow.Do(ctx, func(ctx context.Context, r Repos) error {
		t, err := r.Trainings.GetByIDForUpdate(ctx, trainingID)
		if err != nil {
			return err
		}
		if t == nil || t.HasEnded(now, s.loc) {
			return ErrSessionNotFound
		}

		if err := change(ctx, r, t); err != nil {
			return err
		}
		if err := ValidateTraining(t); err != nil {
			return err
		}
		if err := r.Trainings.Update(ctx, t); err != nil {
			return err
		}
		training = t
		return nil
	})
	if err != nil {
		return nil, err
	}

	return training, nil
}

// ReplaceCoach назначает другого тренера на одну тренировку
func (s *ScheduleService) ReplaceCoach(ctx context.Context, trainingID int64, coachID *int64) (*model.Training, error) {
	t, err := s.override(ctx, trainingID, func(_ context.Context, _ Repos, t *model.Training) error {
		t.CoachID = coachID
		t.Status = model.TrainingStatusCoachReplaced
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("replace coach: %w", err)
	}

	s.logger.Info("Coach replaced", zap.Int64("training_id", trainingID))
	return t, nil
}

// ChangeStartTime переносит одну тренировку на другое время того же дня
func (s *ScheduleService) ChangeStartTime(ctx context.Context, trainingID int64, hour, minute int) (*model.Training, error) {
	t, err := s.override(ctx, trainingID, func(_ context.Context, _ Repos, t *model.Training) error {
		t.StartHour = hour
		t.StartMinute = minute
		t.Status = model.TrainingStatusTimeChanged
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("change start time: %w", err)
	}

	s.logger.Info("Training time changed",
		zap.Int64("training_id", trainingID),
		zap.Int("start_hour", hour),
		zap.Int("start_minute", minute),
	)
	return t, nil
}

// CancelTraining отменяет тренировку и возвращает оплату всем записанным
func (s *ScheduleService) CancelTraining(ctx context.Context, trainingID int64) (*model.Training, error) {
	price := s.price.SessionPrice()
	t, err := s.override(ctx, trainingID, func(ctx context.Context, r Repos, t *model.Training) error {
		for _, userID := range append([]int64(nil), t.Learners...) {
			if _, err := releaseSeat(ctx, r, t, userID, price); err != nil {
				return err
			}
		}
		t.Status = model.TrainingStatusCancelled
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("cancel training: %w", err)
	}

	s.logger.Info("Training cancelled", zap.Int64("training_id", trainingID))
	return t, nil
}

// GetTraining получает тренировку по ID
func (s *ScheduleService) GetTraining(ctx context.Context, id int64) (*model.Training, error) {
	var training *model.Training
	err := s.uow.Do(ctx, func(ctx context.Context, r Repos) error {
		var err error
		training, err = r.Trainings.GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("get training: %w", err)
	}
	if training == nil {
		return nil, ErrSessionNotFound
	}
	return training, nil
}

// UpcomingGrid сетка тренировок уровня на weeks недель, начиная с понедельника текущей недели
func (s *ScheduleService) UpcomingGrid(ctx context.Context, level model.SkillLevel, weeks int) (calendar.Grid, error) {
	if !level.Valid() {
		return calendar.Grid{}, fmt.Errorf("%w: unknown skill level %d", ErrInvariantViolation, level)
	}

	start := clock.MondayOf(clock.Today(s.clock, s.loc))
	end := clock.AddDays(start, weeks*calendar.DaysInWeek)

	var trainings []*model.Training
	err := s.uow.Do(ctx, func(ctx context.Context, r Repos) error {
		var err error
		trainings, err = r.Trainings.GetInRange(ctx, level, start, end)
		return err
	})
	if err != nil {
		return calendar.Grid{}, fmt.Errorf("get upcoming trainings: %w", err)
	}

	return calendar.Build(trainings, start, weeks), nil
}

// Courts все площадки
func (s *ScheduleService) Courts(ctx context.Context) ([]*model.Court, error) {
	var courts []*model.Court
	err := s.uow.Do(ctx, func(ctx context.Context, r Repos) error {
		var err error
		courts, err = r.Courts.GetAll(ctx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("get courts: %w", err)
	}
	return courts, nil
}
