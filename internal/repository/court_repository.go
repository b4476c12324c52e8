package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/volleyball_school/internal/model"
	"github.com/Freeeeeet/volleyball_school/internal/repository/base"
)

type CourtRepository struct {
	db base.DBTX
}

func NewCourtRepository(db base.DBTX) *CourtRepository {
	return &CourtRepository{db: db}
}

// Create создаёт площадку
func (r *CourtRepository) Create(ctx context.Context, court *model.Court) error {
	query := `
		INSERT INTO courts (name, address, passport_required, is_active)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	err := r.db.QueryRow(ctx, query, court.Name, court.Address, court.PassportRequired, court.IsActive).Scan(&court.ID)
	if err != nil {
		return fmt.Errorf("create court: %w", err)
	}

	return nil
}

// GetAll получает все площадки
func (r *CourtRepository) GetAll(ctx context.Context) ([]*model.Court, error) {
	query := `
		SELECT id, name, address, passport_required, is_active
		FROM courts
		ORDER BY id
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get courts: %w", err)
	}
	defer rows.Close()

	var courts []*model.Court
	for rows.Next() {
		var c model.Court
		if err := rows.Scan(&c.ID, &c.Name, &c.Address, &c.PassportRequired, &c.IsActive); err != nil {
			return nil, fmt.Errorf("scan court: %w", err)
		}
		courts = append(courts, &c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate courts: %w", err)
	}

	return courts, nil
}
