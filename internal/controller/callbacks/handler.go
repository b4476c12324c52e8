package callbacks

import (
	"context"
	"time"

	"github.com/Freeeeeet/volleyball_school/internal/clock"
	"github.com/Freeeeeet/volleyball_school/internal/controller/callbacks/callbacktypes"
	"github.com/Freeeeeet/volleyball_school/internal/service"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// Handler обертка для callbacktypes.Handler с методами
type Handler struct {
	*callbacktypes.Handler
}

// NewHandler создаёт новый обработчик callbacks с зависимостями
func NewHandler(
	accountService *service.AccountService,
	scheduleService *service.ScheduleService,
	enrollmentService *service.EnrollmentService,
	subscriptionService *service.SubscriptionService,
	price service.PriceSource,
	clk clock.Clock,
	loc *time.Location,
	logger *zap.Logger,
) *Handler {
	inner := &callbacktypes.Handler{
		AccountService:      accountService,
		ScheduleService:     scheduleService,
		EnrollmentService:   enrollmentService,
		SubscriptionService: subscriptionService,
		Price:               price,
		Clock:               clk,
		Location:            loc,
		Logger:              logger,
	}
	return &Handler{Handler: inner}
}

// HandleCallbackQuery - главный обработчик callback queries
func (h *Handler) HandleCallbackQuery(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.CallbackQuery == nil {
		return
	}

	callback := update.CallbackQuery
	data := callback.Data

	h.Logger.Info("Callback received",
		zap.String("data", data),
		zap.Int64("user_id", callback.From.ID),
	)

	// Вызываем роутер
	Route(ctx, b, callback, h.Handler)
}
