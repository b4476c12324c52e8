package common

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// AnswerCallback отвечает на callback query (без alert)
func AnswerCallback(ctx context.Context, b *bot.Bot, callbackID string, text string) {
	b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: callbackID,
		Text:            text,
		ShowAlert:       false,
	})
}

// AnswerCallbackAlert отвечает на callback query с alert (всплывающее окно)
func AnswerCallbackAlert(ctx context.Context, b *bot.Bot, callbackID string, text string) {
	b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: callbackID,
		Text:            text,
		ShowAlert:       true,
	})
}

// GetMessageFromCallback извлекает сообщение из callback query
func GetMessageFromCallback(callback *models.CallbackQuery) *models.Message {
	if callback.Message.Message != nil {
		return callback.Message.Message
	}
	return nil
}

// ParseCallback разбирает callback data вида "prefix:arg1:arg2"
// и проверяет количество аргументов
func ParseCallback(data string, args int) ([]string, error) {
	parts := strings.Split(data, ":")
	if len(parts) != args+1 {
		return nil, fmt.Errorf("%w: %q", ErrInvalidFormat, data)
	}
	return parts[1:], nil
}

// ParseIDFromCallback извлекает ID из callback data
// Например: "training:123" -> 123
func ParseIDFromCallback(data string) (int64, error) {
	parts, err := ParseCallback(data, 1)
	if err != nil {
		return 0, err
	}
	id, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	return id, nil
}

// IsMessageNotModifiedError проверяет ошибку Telegram о неизменённом сообщении
func IsMessageNotModifiedError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "message is not modified")
}
