package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Freeeeeet/volleyball_school/internal/model"
	"github.com/Freeeeeet/volleyball_school/internal/repository/base"
)

// Записанные ученики собираются подзапросом, иначе FOR UPDATE не сочетается с GROUP BY
const trainingColumns = `
	t.id, t.day_of_week, t.skill_level, t.court_id, t.coach_id, t.start_hour, t.start_minute,
	t.date, t.status, t.is_active, t.created_at,
	ARRAY(SELECT tl.user_id FROM training_learners tl WHERE tl.training_id = t.id ORDER BY tl.user_id)
`

// TrainingRepository управляет конкретными тренировками
type TrainingRepository struct {
	db base.DBTX
}

// NewTrainingRepository создаёт новый репозиторий
func NewTrainingRepository(db base.DBTX) *TrainingRepository {
	return &TrainingRepository{db: db}
}

func scanTraining(row base.Scanner) (*model.Training, error) {
	t := &model.Training{}
	err := row.Scan(
		&t.ID,
		&t.DayOfWeek,
		&t.SkillLevel,
		&t.CourtID,
		&t.CoachID,
		&t.StartHour,
		&t.StartMinute,
		&t.Date,
		&t.Status,
		&t.IsActive,
		&t.CreatedAt,
		&t.Learners,
	)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (r *TrainingRepository) list(ctx context.Context, query string, args ...any) ([]*model.Training, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trainings []*model.Training
	for rows.Next() {
		t, err := scanTraining(rows)
		if err != nil {
			return nil, fmt.Errorf("scan training: %w", err)
		}
		trainings = append(trainings, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate trainings: %w", err)
	}

	return trainings, nil
}

// CreateIfAbsent создаёт тренировку, если слот на эту дату ещё свободен.
// Возвращает false, если тренировка с таким ключом уже существует
func (r *TrainingRepository) CreateIfAbsent(ctx context.Context, t *model.Training) (bool, error) {
	query := `
		INSERT INTO trainings (day_of_week, skill_level, court_id, coach_id, start_hour, start_minute, date, status, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT ON CONSTRAINT trainings_slot_unique DO NOTHING
		RETURNING id, created_at
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
		t.Date,
		t.Status,
		t.IsActive,
	).Scan(&t.ID, &t.CreatedAt)

	if base.IsNotFound(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("create training: %w", err)
	}

	return true, nil
}

// GetByID получает тренировку по ID
func (r *TrainingRepository) GetByID(ctx context.Context, id int64) (*model.Training, error) {
	query := `SELECT ` + trainingColumns + ` FROM trainings t WHERE t.id = $1`

	t, err := scanTraining(r.db.QueryRow(ctx, query, id))
	if base.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get training by id: %w", err)
	}

	return t, nil
}

// GetByIDForUpdate получает тренировку и блокирует её до конца транзакции
func (r *TrainingRepository) GetByIDForUpdate(ctx context.Context, id int64) (*model.Training, error) {
	query := `SELECT ` + trainingColumns + ` FROM trainings t WHERE t.id = $1 FOR UPDATE OF t`

	t, err := scanTraining(r.db.QueryRow(ctx, query, id))
	if base.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get training for update: %w", err)
	}

	return t, nil
}

// GetBySlotFrom получает тренировки слота начиная с даты и блокирует их
func (r *TrainingRepository) GetBySlotFrom(ctx context.Context, key model.SlotKey, from time.Time) ([]*model.Training, error) {
	query := `
		SELECT ` + trainingColumns + `
		FROM trainings t
		WHERE t.skill_level = $1 AND t.court_id = $2 AND t.day_of_week = $3 AND t.date >= $4
		ORDER BY t.date
		FOR UPDATE OF t
	`

	trainings, err := r.list(ctx, query, key.SkillLevel, key.CourtID, key.DayOfWeek, from)
	if err != nil {
		return nil, fmt.Errorf("get trainings by slot: %w", err)
	}

	return trainings, nil
}

// GetInRange получает активные тренировки уровня в диапазоне дат [from, to)
func (r *TrainingRepository) GetInRange(ctx context.Context, level model.SkillLevel, from, to time.Time) ([]*model.Training, error) {
	query := `
		SELECT ` + trainingColumns + `
		FROM trainings t
		WHERE t.skill_level = $1 AND t.date >= $2 AND t.date < $3 AND t.is_active = true
		ORDER BY t.court_id, t.date, t.start_hour, t.start_minute
	`

	trainings, err := r.list(ctx, query, level, from, to)
	if err != nil {
		return nil, fmt.Errorf("get trainings in range: %w", err)
	}

	return trainings, nil
}

// GetByLearner получает тренировки пользователя начиная с даты
func (r *TrainingRepository) GetByLearner(ctx context.Context, userID int64, from time.Time) ([]*model.Training, error) {
	query := `
		SELECT ` + trainingColumns + `
		FROM trainings t
		JOIN training_learners l ON l.training_id = t.id
		WHERE l.user_id = $1 AND t.date >= $2
		ORDER BY t.date, t.start_hour, t.start_minute
	`

	trainings, err := r.list(ctx, query, userID, from)
	if err != nil {
		return nil, fmt.Errorf("get trainings by learner: %w", err)
	}

	return trainings, nil
}

// Update сохраняет изменяемые поля тренировки
func (r *TrainingRepository) Update(ctx context.Context, t *model.Training) error {
	query := `
		UPDATE trainings
		SET coach_id = $2, start_hour = $3, start_minute = $4, status = $5, is_active = $6
		WHERE id = $1
	`

	_, err := r.db.Exec(ctx, query, t.ID, t.CoachID, t.StartHour, t.StartMinute, t.Status, t.IsActive)
	if err != nil {
		return fmt.Errorf("update training: %w", err)
	}

	return nil
}

// Delete удаляет тренировку вместе с записями учеников и ссылками абонементов
func (r *TrainingRepository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM trainings WHERE id = $1`

	_, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete training: %w", err)
	}

	return nil
}

// AddLearner записывает пользователя на тренировку
func (r *TrainingRepository) AddLearner(ctx context.Context, trainingID, userID int64) error {
	query := `
		INSERT INTO training_learners (training_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`

	_, err := r.db.Exec(ctx, query, trainingID, userID)
	if err != nil {
		return fmt.Errorf("add learner: %w", err)
	}

	return nil
}

// RemoveLearner отписывает пользователя от тренировки
func (r *TrainingRepository) RemoveLearner(ctx context.Context, trainingID, userID int64) error {
	query := `DELETE FROM training_learners WHERE training_id = $1 AND user_id = $2`

	_, err := r.db.Exec(ctx, query, trainingID, userID)
	if err != nil {
		return fmt.Errorf("remove learner: %w", err)
	}

	return nil
}
