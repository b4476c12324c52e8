package student

import (
	"context"
	"fmt"
	"strconv"

	"github.com/Freeeeeet/volleyball_school/internal/controller/callbacks/callbacktypes"
	"github.com/Freeeeeet/volleyball_school/internal/controller/callbacks/common"
	"github.com/Freeeeeet/volleyball_school/internal/service"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// HandleTraining показывает карточку тренировки
func HandleTraining(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithUser(ctx, b, callback, h, func(hc *common.HandlerContext) {
		trainingID, err := common.ParseIDFromCallback(callback.Data)
		if err != nil {
			hc.Fail("Invalid training callback", err, zap.String("data", callback.Data))
			return
		}

		if err := showTraining(hc, trainingID); err != nil {
			hc.Fail("Failed to show training", err, zap.Int64("training_id", trainingID))
			return
		}
		hc.Answer("")
	})
}

// HandlePay записывает пользователя на тренировку выбранным способом оплаты
func HandlePay(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithUser(ctx, b, callback, h, func(hc *common.HandlerContext) {
		trainingID, method, err := parsePayData(callback.Data)
		if err != nil {
			hc.Fail("Invalid pay callback", err, zap.String("data", callback.Data))
			return
		}

		if err := h.EnrollmentService.Enroll(ctx, hc.User.ID, trainingID, method); err != nil {
			hc.Fail("Failed to enroll", err,
				zap.Int64("training_id", trainingID),
				zap.String("method", string(method)))
			return
		}

		if err := showTraining(hc, trainingID); err != nil {
			h.Logger.Warn("Failed to refresh training card", zap.Error(err))
		}
		hc.AnswerAlert("✅ Вы записаны на тренировку")
	})
}

// HandleCancel отменяет запись пользователя
func HandleCancel(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithUser(ctx, b, callback, h, func(hc *common.HandlerContext) {
		trainingID, err := common.ParseIDFromCallback(callback.Data)
		if err != nil {
			hc.Fail("Invalid cancel callback", err, zap.String("data", callback.Data))
			return
		}

		outcome, err := h.EnrollmentService.Cancel(ctx, hc.User.ID, trainingID)
		if err != nil {
			hc.Fail("Failed to cancel enrollment", err, zap.Int64("training_id", trainingID))
			return
		}

		h.Logger.Info("Cancel requested",
			zap.Int64("user_id", hc.User.ID),
			zap.Int64("training_id", trainingID),
			zap.Bool("cancelled", outcome.Cancelled()))

		if outcome.Cancelled() {
			if err := showTraining(hc, trainingID); err != nil {
				h.Logger.Warn("Failed to refresh training card", zap.Error(err))
			}
		}
		hc.AnswerAlert(CancelOutcomeMessage(outcome))
	})
}

// CancelOutcomeMessage текст результата отмены записи
func CancelOutcomeMessage(outcome service.CancelOutcome) string {
	switch outcome {
	case service.CancelRefundedToSubscription:
		return "✅ Запись отменена, тренировка возвращена на абонемент"
	case service.CancelRefundedToBalance:
		return "✅ Запись отменена, деньги возвращены на баланс"
	case service.CancelTooLate:
		return "⏰ Отменить запись можно не позднее чем за час до начала"
	default:
		return "ℹ️ Вы не записаны на эту тренировку"
	}
}

func showTraining(hc *common.HandlerContext, trainingID int64) error {
	h := hc.Handler
	training, err := h.ScheduleService.GetTraining(hc.Ctx, trainingID)
	if err != nil {
		return err
	}

	text, kb := common.BuildTrainingScreen(common.TrainingView{
		Training: training,
		Court:    courtsByID(hc.Ctx, h)[training.CourtID],
		UserID:   hc.User.ID,
		Price:    h.Price.SessionPrice(),
		Now:      h.Clock.Now(),
		Location: h.Location,
	})
	return hc.EditMessage(text, kb)
}

// parsePayData разбирает "pay:<id>:<method>"
func parsePayData(data string) (int64, service.PaymentMethod, error) {
	args, err := common.ParseCallback(data, 2)
	if err != nil {
		return 0, "", err
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return 0, "", fmt.Errorf("%w: %v", common.ErrInvalidFormat, err)
	}
	method := service.PaymentMethod(args[1])
	if method != service.PaymentBalance && method != service.PaymentSubscription {
		return 0, "", fmt.Errorf("%w: payment method %q", common.ErrInvalidFormat, args[1])
	}
	return id, method, nil
}
