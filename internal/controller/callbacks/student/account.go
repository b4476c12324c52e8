package student

import (
	"context"

	"github.com/Freeeeeet/volleyball_school/internal/controller/callbacks/callbacktypes"
	"github.com/Freeeeeet/volleyball_school/internal/controller/callbacks/common"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// HandleAccount показывает баланс, абонементы и записи пользователя
func HandleAccount(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithUser(ctx, b, callback, h, func(hc *common.HandlerContext) {
		if err := showAccount(hc); err != nil {
			hc.Fail("Failed to show account", err)
			return
		}
		hc.Answer("")
	})
}

// HandlePlans показывает каталог абонементов
func HandlePlans(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	hc := common.NewHandlerContext(ctx, b, callback, h)

	plans, err := h.SubscriptionService.ListActivePlans(ctx)
	if err != nil {
		hc.Fail("Failed to list plans", err)
		return
	}

	text, kb := common.BuildPlansScreen(plans)
	if err := hc.EditMessage(text, kb); err != nil {
		h.Logger.Error("Failed to show plans", zap.Error(err))
	}
	hc.Answer("")
}

// HandleBuy покупает абонемент с баланса
func HandleBuy(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithUser(ctx, b, callback, h, func(hc *common.HandlerContext) {
		planID, err := common.ParseIDFromCallback(callback.Data)
		if err != nil {
			hc.Fail("Invalid buy callback", err, zap.String("data", callback.Data))
			return
		}

		sub, err := h.SubscriptionService.PurchaseSubscription(ctx, hc.User.ID, planID)
		if err != nil {
			hc.Fail("Failed to purchase subscription", err, zap.Int64("plan_id", planID))
			return
		}

		h.Logger.Info("Subscription purchased",
			zap.Int64("user_id", hc.User.ID),
			zap.Int64("plan_id", planID),
			zap.Int64("subscription_id", sub.ID))

		if err := showAccount(hc); err != nil {
			h.Logger.Warn("Failed to refresh account", zap.Error(err))
		}
		hc.AnswerAlert("✅ Абонемент куплен")
	})
}

func showAccount(hc *common.HandlerContext) error {
	summary, err := hc.Handler.SubscriptionService.AccountSummary(hc.Ctx, hc.User.ID)
	if err != nil {
		return err
	}
	text, kb := common.BuildAccountScreen(summary, hc.Handler.Location)
	return hc.EditMessage(text, kb)
}
