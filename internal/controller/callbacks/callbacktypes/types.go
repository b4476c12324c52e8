package callbacktypes

import (
	"time"

	"github.com/Freeeeeet/volleyball_school/internal/clock"
	"github.com/Freeeeeet/volleyball_school/internal/service"
	"go.uber.org/zap"
)

// Handler содержит общие зависимости для всех callback handlers
type Handler struct {
	AccountService      *service.AccountService
	ScheduleService     *service.ScheduleService
	EnrollmentService   *service.EnrollmentService
	SubscriptionService *service.SubscriptionService
	Price               service.PriceSource
	Clock               clock.Clock
	Location            *time.Location
	Logger              *zap.Logger
}
