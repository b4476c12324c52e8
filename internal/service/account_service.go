package service

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/volleyball_school/internal/model"
	"go.uber.org/zap"
)

type AccountService struct {
	uow    UnitOfWork
	logger *zap.Logger
}

func NewAccountService(uow UnitOfWork, logger *zap.Logger) *AccountService {
	return &AccountService{
		uow:    uow,
		logger: logger,
	}
}

// RegisterUser регистрирует или обновляет пользователя
func (s *AccountService) RegisterUser(ctx context.Context, telegramID int64, username, firstName, lastName, languageCode string) (*model.User, error) {
	var user *model.User
	created := false

	err := s.uow.Do(ctx, func(ctx context.Context, r Repos) error {
		// Проверяем существует ли пользователь
		existingUser, err := r.Users.GetByTelegramID(ctx, telegramID)
		if err != nil {
			return fmt.Errorf("check existing user: %w", err)
		}

		// Если пользователь уже существует, обновляем данные
		if existingUser != nil {
			existingUser.Username = username
			existingUser.FirstName = firstName
			existingUser.LastName = lastName
			existingUser.LanguageCode = languageCode

			if err := r.Users.UpdateProfile(ctx, existingUser); err != nil {
				return fmt.Errorf("update user: %w", err)
			}
			user, created = existingUser, false
			return nil
		}

		// Создаём нового пользователя с нулевым балансом
		newUser := &model.User{
			TelegramID:   telegramID,
			Username:     username,
			FirstName:    firstName,
			LastName:     lastName,
			LanguageCode: languageCode,
		}
		if err := r.Users.Create(ctx, newUser); err != nil {
			return fmt.Errorf("create user: %w", err)
		}
		user, created = newUser, true
		return nil
	})
	if err != nil {
		return nil, err
	}

	if created {
		s.logger.Info("New user registered",
			zap.Int64("user_id", user.ID),
			zap.Int64("telegram_id", telegramID),
			zap.String("username", username),
		)
	} else {
		s.logger.Debug("User updated",
			zap.Int64("telegram_id", telegramID),
			zap.String("username", username),
		)
	}

	return user, nil
}

// GetByTelegramID получает пользователя по Telegram ID. nil, если не зарегистрирован
func (s *AccountService) GetByTelegramID(ctx context.Context, telegramID int64) (*model.User, error) {
	var user *model.User
	err := s.uow.Do(ctx, func(ctx context.Context, r Repos) error {
		var err error
		user, err = r.Users.GetByTelegramID(ctx, telegramID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("get user by telegram id: %w", err)
	}
	return user, nil
}

// GetByID получает пользователя по ID
func (s *AccountService) GetByID(ctx context.Context, id int64) (*model.User, error) {
	var user *model.User
	err := s.uow.Do(ctx, func(ctx context.Context, r Repos) error {
		var err error
		user, err = r.Users.GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("get user by id: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}
