package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/volleyball_school/internal/model"
	"github.com/Freeeeeet/volleyball_school/internal/repository/base"
	"github.com/shopspring/decimal"
)

const userColumns = `id, telegram_id, username, first_name, last_name, language_code, balance, created_at`

type UserRepository struct {
	db base.DBTX
}

func NewUserRepository(db base.DBTX) *UserRepository {
	return &UserRepository{db: db}
}

func scanUser(row base.Scanner) (*model.User, error) {
	var user model.User
	err := row.Scan(
		&user.ID,
		&user.TelegramID,
		&user.Username,
		&user.FirstName,
		&user.LastName,
		&user.LanguageCode,
		&user.Balance,
		&user.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Create создаёт нового пользователя
func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	query := `
		INSERT INTO users (telegram_id, username, first_name, last_name, language_code, balance)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`

	err := r.db.QueryRow(
		ctx, query,
		user.TelegramID,
		user.Username,
		user.FirstName,
		user.LastName,
		user.LanguageCode,
		user.Balance,
	).Scan(&user.ID, &user.CreatedAt)

	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}

	return nil
}

// GetByID получает пользователя по ID
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(r.db.QueryRow(ctx, query, id))
	if base.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user by id: %w", err)
	}

	return user, nil
}

// GetByIDForUpdate получает пользователя и блокирует строку баланса
func (r *UserRepository) GetByIDForUpdate(ctx context.Context, id int64) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1 FOR UPDATE`

	user, err := scanUser(r.db.QueryRow(ctx, query, id))
	if base.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user for update: %w", err)
	}

	return user, nil
}

// GetByTelegramID получает пользователя по Telegram ID
func (r *UserRepository) GetByTelegramID(ctx context.Context, telegramID int64) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE telegram_id = $1`

	user, err := scanUser(r.db.QueryRow(ctx, query, telegramID))
	if base.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user by telegram id: %w", err)
	}

	return user, nil
}

// UpdateProfile обновляет данные профиля из Telegram
func (r *UserRepository) UpdateProfile(ctx context.Context, user *model.User) error {
	query := `
		UPDATE users
		SET username = $2, first_name = $3, last_name = $4, language_code = $5
		WHERE id = $1
	`

	_, err := r.db.Exec(ctx, query, user.ID, user.Username, user.FirstName, user.LastName, user.LanguageCode)
	if err != nil {
		return fmt.Errorf("update user profile: %w", err)
	}

	return nil
}

// UpdateBalance сохраняет новый баланс пользователя
func (r *UserRepository) UpdateBalance(ctx context.Context, userID int64, balance decimal.Decimal) error {
	query := `UPDATE users SET balance = $2 WHERE id = $1`

	_, err := r.db.Exec(ctx, query, userID, balance)
	if err != nil {
		return fmt.Errorf("update user balance: %w", err)
	}

	return nil
}
