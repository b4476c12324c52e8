package service

import (
	"errors"
	"fmt"
)

// Виды ошибок, по которым вызывающий код выбирает сообщение пользователю
var (
	ErrNotFound             = errors.New("not found")
	ErrCapacityExceeded     = errors.New("capacity exceeded")
	ErrInsufficientFunds    = errors.New("insufficient funds")
	ErrNoEligibleCredential = errors.New("no eligible credential")
	ErrValidationConflict   = errors.New("validation conflict")
	ErrInvariantViolation   = errors.New("invariant violation")
	ErrAlreadyEnrolled      = errors.New("already enrolled")
)

// Конкретные ошибки, errors.Is срабатывает и на них, и на их вид
var (
	ErrSessionNotFound        = fmt.Errorf("training %w", ErrNotFound)
	ErrSessionFull            = fmt.Errorf("training is full: %w", ErrCapacityExceeded)
	ErrInsufficientBalance    = fmt.Errorf("balance is too low: %w", ErrInsufficientFunds)
	ErrNoEligibleSubscription = fmt.Errorf("no applicable subscription: %w", ErrNoEligibleCredential)
	ErrPlanNotFound           = fmt.Errorf("subscription plan %w", ErrNotFound)
	ErrUserNotFound           = fmt.Errorf("user %w", ErrNotFound)
	ErrTimetableNotFound      = fmt.Errorf("timetable %w", ErrNotFound)
	ErrTrainingExists         = fmt.Errorf("training already exists: %w", ErrValidationConflict)
)
