package handlers

import (
	"time"

	"github.com/Freeeeeet/volleyball_school/internal/service"
	"go.uber.org/zap"
)

// Handlers содержит все зависимости для обработки команд
type Handlers struct {
	accountService      *service.AccountService
	subscriptionService *service.SubscriptionService
	location            *time.Location
	logger              *zap.Logger
}

// NewHandlers создаёт новый обработчик команд
func NewHandlers(
	accountService *service.AccountService,
	subscriptionService *service.SubscriptionService,
	location *time.Location,
	logger *zap.Logger,
) *Handlers {
	return &Handlers{
		accountService:      accountService,
		subscriptionService: subscriptionService,
		location:            location,
		logger:              logger,
	}
}
