package controller

import (
	"context"
	"time"

	"github.com/Freeeeeet/volleyball_school/internal/clock"
	"github.com/Freeeeeet/volleyball_school/internal/controller/callbacks"
	"github.com/Freeeeeet/volleyball_school/internal/controller/handlers"
	"github.com/Freeeeeet/volleyball_school/internal/service"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// Services сервисы, которые использует бот
type Services struct {
	Accounts      *service.AccountService
	Schedule      *service.ScheduleService
	Enrollments   *service.EnrollmentService
	Subscriptions *service.SubscriptionService
	Price         service.PriceSource
}

type BotController struct {
	bot             *bot.Bot
	handlers        *handlers.Handlers
	callbackHandler *callbacks.Handler
	logger          *zap.Logger
}

func NewBotController(
	botInstance *bot.Bot,
	services Services,
	clk clock.Clock,
	loc *time.Location,
	logger *zap.Logger,
) *BotController {
	// Создаём обработчики команд
	cmdHandlers := handlers.NewHandlers(
		services.Accounts,
		services.Subscriptions,
		loc,
		logger,
	)

	// Создаём callback handler с зависимостями
	callbackHandler := callbacks.NewHandler(
		services.Accounts,
		services.Schedule,
		services.Enrollments,
		services.Subscriptions,
		services.Price,
		clk,
		loc,
		logger,
	)

	return &BotController{
		bot:             botInstance,
		handlers:        cmdHandlers,
		callbackHandler: callbackHandler,
		logger:          logger,
	}
}

// RegisterHandlers регистрирует все обработчики команд
func (c *BotController) RegisterHandlers(ctx context.Context) error {
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/start", bot.MatchTypeExact, c.handlers.HandleStart)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/help", bot.MatchTypeExact, c.handlers.HandleHelp)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/timetable", bot.MatchTypeExact, c.handlers.HandleTimetable)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/plans", bot.MatchTypeExact, c.handlers.HandlePlans)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/account", bot.MatchTypeExact, c.handlers.HandleAccount)

	// Обработчик нажатий на inline кнопки
	c.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, "", bot.MatchTypePrefix, c.callbackHandler.HandleCallbackQuery)

	// Устанавливаем меню команд
	return c.setCommands(ctx)
}

// setCommands устанавливает список команд в меню бота
func (c *BotController) setCommands(ctx context.Context) error {
	commands := []models.BotCommand{
		{Command: "start", Description: "🚀 Начать работу с ботом"},
		{Command: "timetable", Description: "📅 Расписание тренировок"},
		{Command: "plans", Description: "🎫 Абонементы"},
		{Command: "account", Description: "👤 Мой аккаунт"},
		{Command: "help", Description: "❓ Справка по командам"},
	}

	_, err := c.bot.SetMyCommands(ctx, &bot.SetMyCommandsParams{
		Commands: commands,
	})

	if err != nil {
		c.logger.Error("Failed to set bot commands", zap.Error(err))
		return err
	}

	c.logger.Info("✅ Bot commands menu set")
	return nil
}

// Start запускает бота
func (c *BotController) Start(ctx context.Context) error {
	c.logger.Info("Starting bot...")
	c.bot.Start(ctx)
	return nil
}
