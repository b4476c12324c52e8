package common

import (
	"errors"

	"github.com/Freeeeeet/volleyball_school/internal/service"
)

// Общие ошибки для обработчиков
var (
	ErrNoMessage         = errors.New("no message in callback")
	ErrInvalidFormat     = errors.New("invalid callback format")
	ErrUserNotRegistered = errors.New("user is not registered")
)

// ErrorMessage возвращает пользовательское сообщение для ошибки
func ErrorMessage(err error) string {
	switch {
	case errors.Is(err, ErrUserNotRegistered), errors.Is(err, service.ErrUserNotFound):
		return "❌ Пользователь не найден. Используйте /start"
	case errors.Is(err, service.ErrSessionNotFound):
		return "❌ Тренировка не найдена или уже прошла"
	case errors.Is(err, service.ErrPlanNotFound):
		return "❌ Абонемент больше не продаётся"
	case errors.Is(err, service.ErrNotFound):
		return "❌ Не найдено"
	case errors.Is(err, service.ErrAlreadyEnrolled):
		return "ℹ️ Вы уже записаны на эту тренировку"
	case errors.Is(err, service.ErrCapacityExceeded):
		return "❌ Свободных мест нет"
	case errors.Is(err, service.ErrInsufficientFunds):
		return "❌ Недостаточно средств на балансе"
	case errors.Is(err, service.ErrNoEligibleCredential):
		return "❌ Нет абонемента, которым можно оплатить эту тренировку"
	case errors.Is(err, ErrNoMessage):
		return "❌ Ошибка обработки сообщения"
	case errors.Is(err, ErrInvalidFormat):
		return "❌ Неверный формат данных"
	default:
		return "❌ Произошла ошибка"
	}
}
