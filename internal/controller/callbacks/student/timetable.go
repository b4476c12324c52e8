package student

import (
	"bytes"
	"context"
	"fmt"
	"strconv"

	"github.com/Freeeeeet/volleyball_school/internal/calendar"
	"github.com/Freeeeeet/volleyball_school/internal/controller/callbacks/callbacktypes"
	"github.com/Freeeeeet/volleyball_school/internal/controller/callbacks/common"
	"github.com/Freeeeeet/volleyball_school/internal/controller/callbacks/common/formatting"
	"github.com/Freeeeeet/volleyball_school/internal/controller/callbacks/common/keyboard"
	"github.com/Freeeeeet/volleyball_school/internal/model"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// HandleLevels показывает выбор уровня подготовки
func HandleLevels(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	hc := common.NewHandlerContext(ctx, b, callback, h)
	text, kb := common.BuildLevelsScreen()
	if err := hc.EditMessage(text, kb); err != nil {
		h.Logger.Error("Failed to show levels", zap.Error(err))
	}
	hc.Answer("")
}

// HandleTimetable показывает неделю расписания уровня: по картинке на каждую площадку
func HandleTimetable(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	hc := common.NewHandlerContext(ctx, b, callback, h)

	level, week, err := parseTimetableData(callback.Data)
	if err != nil {
		hc.Fail("Invalid timetable callback", err, zap.String("data", callback.Data))
		return
	}

	grid, err := h.ScheduleService.UpcomingGrid(ctx, level, common.TimetableWeeks)
	if err != nil {
		hc.Fail("Failed to build timetable grid", err, zap.Int("level", int(level)))
		return
	}

	if len(grid.Rows) == 0 {
		kb := keyboard.NewBuilder().
			Row(keyboard.Button("⬅️ Назад", common.Levels)).
			Build()
		if err := hc.EditMessage(fmt.Sprintf("📅 Для уровня «%s» пока нет тренировок.", level), kb); err != nil {
			h.Logger.Error("Failed to show empty timetable", zap.Error(err))
		}
		hc.Answer("")
		return
	}

	courts := courtsByID(ctx, h)
	now := h.Clock.Now()

	for i, row := range grid.Rows {
		title := fmt.Sprintf("%s · неделя %d", level, week+1)
		caption := fmt.Sprintf("🏐 <b>%s</b>", level)
		if court, ok := courts[row.CourtID]; ok {
			title = fmt.Sprintf("%s · %s", court.Name, title)
			caption += "\n📍 " + court.Name
		}

		kb := trainingButtons(h, row.Weeks[week])
		if i == len(grid.Rows)-1 {
			kb.Row(weekNavigation(level, week)...)
			kb.Row(keyboard.Button("⬅️ Уровни", common.Levels), common.BackToMainButton())
		}

		img, err := calendar.RenderWeek(row, week, title, now, h.Location)
		if err != nil {
			h.Logger.Error("Failed to render week image",
				zap.Int64("court_id", row.CourtID),
				zap.Error(err))
			if err := hc.SendMessage(caption, kb.Build()); err != nil {
				h.Logger.Error("Failed to send timetable text", zap.Error(err))
			}
			continue
		}

		_, err = b.SendPhoto(ctx, &bot.SendPhotoParams{
			ChatID:      hc.ChatID,
			Photo:       &models.InputFileUpload{Filename: "week.png", Data: bytes.NewReader(img)},
			Caption:     caption,
			ParseMode:   models.ParseModeHTML,
			ReplyMarkup: kb.Build(),
		})
		if err != nil {
			h.Logger.Error("Failed to send week image",
				zap.Int64("court_id", row.CourtID),
				zap.Error(err))
		}
	}

	// Удаляем старое сообщение
	if hc.Message != nil {
		b.DeleteMessage(ctx, &bot.DeleteMessageParams{
			ChatID:    hc.ChatID,
			MessageID: hc.Message.ID,
		})
	}
	hc.Answer("")
}

// parseTimetableData разбирает "timetable:<level>:<week>"
func parseTimetableData(data string) (model.SkillLevel, int, error) {
	args, err := common.ParseCallback(data, 2)
	if err != nil {
		return 0, 0, err
	}
	level, err := strconv.Atoi(args[0])
	if err != nil || !model.SkillLevel(level).Valid() {
		return 0, 0, fmt.Errorf("%w: level %q", common.ErrInvalidFormat, args[0])
	}
	week, err := strconv.Atoi(args[1])
	if err != nil || week < 0 || week >= common.TimetableWeeks {
		return 0, 0, fmt.Errorf("%w: week %q", common.ErrInvalidFormat, args[1])
	}
	return model.SkillLevel(level), week, nil
}

// trainingButtons кнопки тренировок недели, на которые ещё можно записаться
func trainingButtons(h *callbacktypes.Handler, week calendar.Week) *keyboard.Builder {
	now := h.Clock.Now()
	var buttons []models.InlineKeyboardButton
	for _, cell := range week {
		t := cell.Training
		if t == nil || !t.IsBookable(now, h.Location) {
			continue
		}
		free := t.FreePlaces()
		label := fmt.Sprintf("%s · %d %s",
			formatting.FormatTrainingShort(t, h.Location), free, formatting.PluralizePlaces(free))
		buttons = append(buttons, keyboard.Button(label, common.TrainingData(t.ID)))
	}
	return keyboard.NewBuilder().Grid(buttons, 2)
}

func weekNavigation(level model.SkillLevel, week int) []models.InlineKeyboardButton {
	var row []models.InlineKeyboardButton
	if week > 0 {
		row = append(row, keyboard.Button("◀️ Пред. неделя", common.TimetableData(level, week-1)))
	}
	if week < common.TimetableWeeks-1 {
		row = append(row, keyboard.Button("След. неделя ▶️", common.TimetableData(level, week+1)))
	}
	return row
}

// courtsByID площадки по ID; при ошибке возвращает пустую карту
func courtsByID(ctx context.Context, h *callbacktypes.Handler) map[int64]*model.Court {
	courts, err := h.ScheduleService.Courts(ctx)
	if err != nil {
		h.Logger.Warn("Failed to load courts", zap.Error(err))
		return map[int64]*model.Court{}
	}
	byID := make(map[int64]*model.Court, len(courts))
	for _, c := range courts {
		byID[c.ID] = c
	}
	return byID
}
