package handlers

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/volleyball_school/internal/controller/callbacks/common"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// HelpText справка по командам
const HelpText = "📚 Справка по командам:\n\n" +
	"/start - Начать работу с ботом\n" +
	"/timetable - Расписание тренировок\n" +
	"/plans - Абонементы\n" +
	"/account - Баланс, абонементы и мои записи\n" +
	"/help - Показать эту справку\n\n" +
	"На тренировку можно записаться с баланса или списать её с абонемента. " +
	"Отменить запись можно не позднее чем за час до начала."

// HandleStart обрабатывает команду /start
func (h *Handlers) HandleStart(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	user := update.Message.From

	// Регистрируем пользователя
	registeredUser, err := h.accountService.RegisterUser(
		ctx,
		user.ID,
		user.Username,
		user.FirstName,
		user.LastName,
		user.LanguageCode,
	)

	if err != nil {
		h.logger.Error("Failed to register user", zap.Error(err))
		h.sendError(ctx, b, update.Message.Chat.ID, "❌ Произошла ошибка при регистрации. Попробуйте позже.")
		return
	}

	welcomeText := fmt.Sprintf(
		"👋 Привет, %s!\n\n"+
			"Это бот школы волейбола: здесь можно посмотреть расписание, "+
			"записаться на тренировку и купить абонемент.\n\n%s",
		registeredUser.FirstName,
		common.MainMenuText,
	)

	h.sendScreen(ctx, b, update.Message.Chat.ID, welcomeText, common.MainMenuKeyboard())
}

// HandleHelp обрабатывает команду /help
func (h *Handlers) HandleHelp(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	h.sendScreen(ctx, b, update.Message.Chat.ID, HelpText, nil)
}

// HandleTimetable обрабатывает команду /timetable
func (h *Handlers) HandleTimetable(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	text, keyboard := common.BuildLevelsScreen()
	h.sendScreen(ctx, b, update.Message.Chat.ID, text, keyboard)
}

// HandlePlans обрабатывает команду /plans
func (h *Handlers) HandlePlans(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	plans, err := h.subscriptionService.ListActivePlans(ctx)
	if err != nil {
		h.logger.Error("Failed to list plans", zap.Error(err))
		h.sendError(ctx, b, update.Message.Chat.ID, common.ErrorMessage(err))
		return
	}

	text, keyboard := common.BuildPlansScreen(plans)
	h.sendScreen(ctx, b, update.Message.Chat.ID, text, keyboard)
}

// HandleAccount обрабатывает команду /account
func (h *Handlers) HandleAccount(ctx context.Context, b *bot.Bot, update *models.Update) {
	user, ok := h.requireUser(ctx, b, update)
	if !ok {
		return
	}

	summary, err := h.subscriptionService.AccountSummary(ctx, user.ID)
	if err != nil {
		h.logger.Error("Failed to get account summary", zap.Int64("user_id", user.ID), zap.Error(err))
		h.sendError(ctx, b, update.Message.Chat.ID, common.ErrorMessage(err))
		return
	}

	text, keyboard := common.BuildAccountScreen(summary, h.location)
	h.sendScreen(ctx, b, update.Message.Chat.ID, text, keyboard)
}
