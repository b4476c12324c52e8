package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/volleyball_school/internal/model"
	"github.com/Freeeeeet/volleyball_school/internal/repository/base"
)

const timetableColumns = `id, day_of_week, skill_level, court_id, coach_id, start_hour, start_minute, is_active, created_at, updated_at`

// TimetableRepository управляет шаблонами расписания в базе данных
type TimetableRepository struct {
	db base.DBTX
}

// NewTimetableRepository создаёт новый репозиторий
func NewTimetableRepository(db base.DBTX) *TimetableRepository {
	return &TimetableRepository{db: db}
}

func scanTimetable(row base.Scanner) (*model.Timetable, error) {
	t := &model.Timetable{}
	err := row.Scan(
		&t.ID,
		&t.DayOfWeek,
		&t.SkillLevel,
		&t.CourtID,
		&t.CoachID,
		&t.StartHour,
		&t.StartMinute,
		&t.IsActive,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// Create создаёт новый шаблон
func (r *TimetableRepository) Create(ctx context.Context, t *model.Timetable) error {
	query := `
		INSERT INTO timetables (day_of_week, skill_level, court_id, coach_id, start_hour, start_minute, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRow(
		ctx,
		query,
		t.DayOfWeek,
		t.SkillLevel,
		t.CourtID,
		t.CoachID,
		t.StartHour,
		t.StartMinute,
		t.IsActive,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create timetable: %w", err)
	}

	return nil
}

// GetByID получает шаблон по ID
func (r *TimetableRepository) GetByID(ctx context.Context, id int64) (*model.Timetable, error) {
	query := `SELECT ` + timetableColumns + ` FROM timetables WHERE id = $1`

	t, err := scanTimetable(r.db.QueryRow(ctx, query, id))
	if base.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get timetable by id: %w", err)
	}

	return t, nil
}

// GetByIDForUpdate получает шаблон и блокирует строку до конца транзакции
func (r *TimetableRepository) GetByIDForUpdate(ctx context.Context, id int64) (*model.Timetable, error) {
	query := `SELECT ` + timetableColumns + ` FROM timetables WHERE id = $1 FOR UPDATE`

	t, err := scanTimetable(r.db.QueryRow(ctx, query, id))
	if base.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get timetable for update: %w", err)
	}

	return t, nil
}

// GetAllActive получает все активные шаблоны
func (r *TimetableRepository) GetAllActive(ctx context.Context) ([]*model.Timetable, error) {
	query := `
		SELECT ` + timetableColumns + `
		FROM timetables
		WHERE is_active = true
		ORDER BY day_of_week, start_hour, start_minute, id
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get all active timetables: %w", err)
	}
	defer rows.Close()

	var timetables []*model.Timetable
	for rows.Next() {
		t, err := scanTimetable(rows)
		if err != nil {
			return nil, fmt.Errorf("scan timetable: %w", err)
		}
		timetables = append(timetables, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate timetables: %w", err)
	}

	return timetables, nil
}

// Update обновляет шаблон
func (r *TimetableRepository) Update(ctx context.Context, t *model.Timetable) error {
	query := `
		UPDATE timetables
		SET day_of_week = $2, skill_level = $3, court_id = $4, coach_id = $5,
		    start_hour = $6, start_minute = $7, is_active = $8, updated_at = now()
		WHERE id = $1
		RETURNING updated_at
	`

	err := r.db.QueryRow(
		ctx,
		query,
		t.ID,
		t.DayOfWeek,
		t.SkillLevel,
		t.CourtID,
		t.CoachID,
		t.StartHour,
		t.StartMinute,
		t.IsActive,
	).Scan(&t.UpdatedAt)

	if err != nil {
		return fmt.Errorf("update timetable: %w", err)
	}

	return nil
}

// Delete удаляет шаблон
func (r *TimetableRepository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM timetables WHERE id = $1`

	_, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete timetable: %w", err)
	}

	return nil
}
