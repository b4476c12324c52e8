package callbacks

import (
	"context"
	"strings"

	"github.com/Freeeeeet/volleyball_school/internal/controller/callbacks/callbacktypes"
	"github.com/Freeeeeet/volleyball_school/internal/controller/callbacks/common"
	"github.com/Freeeeeet/volleyball_school/internal/controller/callbacks/student"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// Route направляет callback query в обработчик по callback data
func Route(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	data := callback.Data

	h.Logger.Info("Routing callback",
		zap.String("data", data),
		zap.Int64("user_id", callback.From.ID),
		zap.String("user_name", callback.From.FirstName))

	switch {
	// ===== Навигация =====
	case data == common.BackToMain:
		handleBackToMain(ctx, b, callback, h)
	case data == common.Noop:
		common.AnswerCallback(ctx, b, callback.ID, "")

	// ===== Расписание =====
	case data == common.Levels:
		student.HandleLevels(ctx, b, callback, h)
	case strings.HasPrefix(data, common.Timetable):
		student.HandleTimetable(ctx, b, callback, h)
	case strings.HasPrefix(data, common.Training):
		student.HandleTraining(ctx, b, callback, h)

	// ===== Запись и отмена =====
	case strings.HasPrefix(data, common.Pay):
		student.HandlePay(ctx, b, callback, h)
	case strings.HasPrefix(data, common.Cancel):
		student.HandleCancel(ctx, b, callback, h)

	// ===== Абонементы и аккаунт =====
	case data == common.Plans:
		student.HandlePlans(ctx, b, callback, h)
	case strings.HasPrefix(data, common.Buy):
		student.HandleBuy(ctx, b, callback, h)
	case data == common.Account:
		student.HandleAccount(ctx, b, callback, h)

	default:
		h.Logger.Warn("Unknown callback",
			zap.String("data", data),
			zap.Int64("user_id", callback.From.ID))
		common.AnswerCallback(ctx, b, callback.ID, "❌ Неизвестная команда")
		return
	}

	h.Logger.Info("Callback routed successfully", zap.String("data", data))
}

func handleBackToMain(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	hc := common.NewHandlerContext(ctx, b, callback, h)
	if err := hc.EditMessage(common.MainMenuText, common.MainMenuKeyboard()); err != nil {
		h.Logger.Error("Failed to show main menu", zap.Error(err))
	}
	hc.Answer("")
}
