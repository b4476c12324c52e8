package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/volleyball_school/internal/model"
	"github.com/Freeeeeet/volleyball_school/internal/repository/base"
)

const planColumns = `id, name, amount, sessions_qty, validity_days, is_active`

// PlanRepository каталог планов абонементов
type PlanRepository struct {
	db base.DBTX
}

func NewPlanRepository(db base.DBTX) *PlanRepository {
	return &PlanRepository{db: db}
}

func scanPlan(row base.Scanner) (*model.SubscriptionPlan, error) {
	var p model.SubscriptionPlan
	if err := row.Scan(&p.ID, &p.Name, &p.Amount, &p.SessionsQty, &p.ValidityDays, &p.IsActive); err != nil {
		return nil, err
	}
	return &p, nil
}

// Create создаёт план
func (r *PlanRepository) Create(ctx context.Context, p *model.SubscriptionPlan) error {
	query := `
		INSERT INTO subscription_plans (name, amount, sessions_qty, validity_days, is_active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	err := r.db.QueryRow(ctx, query, p.Name, p.Amount, p.SessionsQty, p.ValidityDays, p.IsActive).Scan(&p.ID)
	if err != nil {
		return fmt.Errorf("create plan: %w", err)
	}

	return nil
}

// GetByID получает план по ID
func (r *PlanRepository) GetByID(ctx context.Context, id int64) (*model.SubscriptionPlan, error) {
	query := `SELECT ` + planColumns + ` FROM subscription_plans WHERE id = $1`

	p, err := scanPlan(r.db.QueryRow(ctx, query, id))
	if base.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get plan by id: %w", err)
	}

	return p, nil
}

// GetActive получает планы, доступные для покупки
func (r *PlanRepository) GetActive(ctx context.Context) ([]*model.SubscriptionPlan, error) {
	query := `
		SELECT ` + planColumns + `
		FROM subscription_plans
		WHERE is_active = true
		ORDER BY amount, id
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get active plans: %w", err)
	}
	defer rows.Close()

	var plans []*model.SubscriptionPlan
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan plan: %w", err)
		}
		plans = append(plans, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate plans: %w", err)
	}

	return plans, nil
}
