package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/volleyball_school/internal/model"
	"github.com/Freeeeeet/volleyball_school/internal/repository/base"
)

const subscriptionColumns = `s.id, s.user_id, s.sessions_qty, s.validity_days, s.purchase_date, s.start_date, s.end_date, s.is_active, s.created_at`

// SubscriptionRepository управляет купленными абонементами и их списаниями
type SubscriptionRepository struct {
	db base.DBTX
}

// NewSubscriptionRepository создаёт новый репозиторий
func NewSubscriptionRepository(db base.DBTX) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

func scanSubscription(row base.Scanner) (*model.Subscription, error) {
	var s model.Subscription
	err := row.Scan(
		&s.ID,
		&s.UserID,
		&s.SessionsQty,
		&s.ValidityDays,
		&s.PurchaseDate,
		&s.StartDate,
		&s.EndDate,
		&s.IsActive,
		&s.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Create создаёт абонемент
func (r *SubscriptionRepository) Create(ctx context.Context, s *model.Subscription) error {
	query := `
		INSERT INTO subscriptions (user_id, sessions_qty, validity_days, purchase_date, start_date, end_date, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`

	err := r.db.QueryRow(
		ctx,
		query,
		s.UserID,
		s.SessionsQty,
		s.ValidityDays,
		s.PurchaseDate,
		s.StartDate,
		s.EndDate,
		s.IsActive,
	).Scan(&s.ID, &s.CreatedAt)

	if err != nil {
		return fmt.Errorf("create subscription: %w", err)
	}

	return nil
}

// GetByUserIDForUpdate получает абонементы пользователя в порядке покупки
// и блокирует их до конца транзакции
func (r *SubscriptionRepository) GetByUserIDForUpdate(ctx context.Context, userID int64) ([]*model.Subscription, error) {
	query := `
		SELECT ` + subscriptionColumns + `
		FROM subscriptions s
		WHERE s.user_id = $1
		ORDER BY s.purchase_date, s.id
		FOR UPDATE OF s
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("get subscriptions by user: %w", err)
	}
	defer rows.Close()

	var subs []*model.Subscription
	for rows.Next() {
		s, err := scanSubscription(rows)
		if err != nil {
			return nil, fmt.Errorf("scan subscription: %w", err)
		}
		subs = append(subs, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate subscriptions: %w", err)
	}

	if err := r.loadTrainings(ctx, subs); err != nil {
		return nil, err
	}

	return subs, nil
}

// GetByUserAndTraining получает абонемент пользователя, с которого списана тренировка
func (r *SubscriptionRepository) GetByUserAndTraining(ctx context.Context, userID, trainingID int64) (*model.Subscription, error) {
	query := `
		SELECT ` + subscriptionColumns + `
		FROM subscriptions s
		JOIN subscription_trainings st ON st.subscription_id = s.id
		WHERE s.user_id = $1 AND st.training_id = $2
		ORDER BY s.purchase_date, s.id
		LIMIT 1
		FOR UPDATE OF s
	`

	s, err := scanSubscription(r.db.QueryRow(ctx, query, userID, trainingID))
	if base.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get subscription by training: %w", err)
	}

	if err := r.loadTrainings(ctx, []*model.Subscription{s}); err != nil {
		return nil, err
	}

	return s, nil
}

// GetUserIDsByTraining получает пользователей, оплативших тренировку абонементом
func (r *SubscriptionRepository) GetUserIDsByTraining(ctx context.Context, trainingID int64) ([]int64, error) {
	query := `
		SELECT DISTINCT s.user_id
		FROM subscriptions s
		JOIN subscription_trainings st ON st.subscription_id = s.id
		WHERE st.training_id = $1
		ORDER BY s.user_id
	`

	rows, err := r.db.Query(ctx, query, trainingID)
	if err != nil {
		return nil, fmt.Errorf("get subscribers by training: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan subscriber id: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate subscriber ids: %w", err)
	}

	return ids, nil
}

// UpdateLifecycle сохраняет зафиксированные даты и флаг активности
func (r *SubscriptionRepository) UpdateLifecycle(ctx context.Context, s *model.Subscription) error {
	query := `
		UPDATE subscriptions
		SET start_date = $2, end_date = $3, is_active = $4
		WHERE id = $1
	`

	_, err := r.db.Exec(ctx, query, s.ID, s.StartDate, s.EndDate, s.IsActive)
	if err != nil {
		return fmt.Errorf("update subscription lifecycle: %w", err)
	}

	return nil
}

// LinkTraining списывает тренировку с абонемента
func (r *SubscriptionRepository) LinkTraining(ctx context.Context, subscriptionID, trainingID int64) error {
	query := `
		INSERT INTO subscription_trainings (subscription_id, training_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`

	_, err := r.db.Exec(ctx, query, subscriptionID, trainingID)
	if err != nil {
		return fmt.Errorf("link training: %w", err)
	}

	return nil
}

// UnlinkTraining возвращает тренировку на абонемент
func (r *SubscriptionRepository) UnlinkTraining(ctx context.Context, subscriptionID, trainingID int64) error {
	query := `DELETE FROM subscription_trainings WHERE subscription_id = $1 AND training_id = $2`

	_, err := r.db.Exec(ctx, query, subscriptionID, trainingID)
	if err != nil {
		return fmt.Errorf("unlink training: %w", err)
	}

	return nil
}

func (r *SubscriptionRepository) loadTrainings(ctx context.Context, subs []*model.Subscription) error {
	if len(subs) == 0 {
		return nil
	}

	ids := make([]int64, 0, len(subs))
	byID := make(map[int64]*model.Subscription, len(subs))
	for _, s := range subs {
		ids = append(ids, s.ID)
		byID[s.ID] = s
	}

	query := `
		SELECT st.subscription_id, t.id, t.date, t.start_hour, t.start_minute
		FROM subscription_trainings st
		JOIN trainings t ON t.id = st.training_id
		WHERE st.subscription_id = ANY($1)
		ORDER BY t.date, t.start_hour, t.start_minute, t.id
	`

	rows, err := r.db.Query(ctx, query, ids)
	if err != nil {
		return fmt.Errorf("get linked trainings: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var subID int64
		var l model.LinkedTraining
		if err := rows.Scan(&subID, &l.TrainingID, &l.Date, &l.StartHour, &l.StartMinute); err != nil {
			return fmt.Errorf("scan linked training: %w", err)
		}
		if s, ok := byID[subID]; ok {
			s.Trainings = append(s.Trainings, l)
		}
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate linked trainings: %w", err)
	}

	return nil
}
