package calendar

import (
	"bytes"
	"fmt"
	"image/color"
	"sync"
	"time"

	"github.com/Freeeeeet/volleyball_school/internal/clock"
	"github.com/Freeeeeet/volleyball_school/internal/model"
	"github.com/fogleman/gg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// Константы размеров и отступов
const (
	imageWidth       = 1400
	imageHeight      = 900
	headerHeight     = 100
	leftLabelsWidth  = 80
	legendWidth      = 140
	dayPaddingX      = 8
	minSlotHeight    = 8.0
	slotBorderRadius = 6.0
	shadowOffset     = 3.0
	hourPaddingTop   = 2
	hourPaddingBot   = 2
	defaultMinHour   = 8
	defaultMaxHour   = 22
)

// Константы шрифтов
const (
	titleFontSize      = 25.0
	dayFontSize        = 24.0
	hourLabelFontSize  = 16.0
	slotTimeFontSize   = 17.0
	legendItemFontSize = 12.0
)

// Цветовая схема
var (
	bgColor          = color.RGBA{245, 246, 248, 255}
	textColor        = color.RGBA{80, 85, 90, 220}
	hourLabelColor   = color.RGBA{110, 115, 120, 200}
	hourLineColor    = color.NRGBA{150, 150, 150, 255}
	todayBgColor     = color.NRGBA{255, 99, 71, 125}
	evenDayColor     = color.NRGBA{240, 240, 240, 255}
	oddDayColor      = color.NRGBA{220, 220, 220, 255}
	currentTimeColor = color.NRGBA{255, 80, 80, 200}

	trainingOpenColor      = color.RGBA{133, 193, 85, 220}
	trainingFullColor      = color.RGBA{255, 182, 193, 255}
	trainingCancelledColor = color.RGBA{158, 158, 158, 200}
	trainingTextColor      = color.RGBA{20, 24, 28, 230}
	trainingShadowColor    = color.RGBA{0, 0, 0, 20}

	legendItemColor = color.RGBA{70, 74, 78, 220}
)

type fontStyle int

const (
	fontRegular fontStyle = iota
	fontBold
)

var (
	fontsMu     sync.Mutex
	cachedFonts = make(map[fontStyle]*opentype.Font)
)

// hourRange диапазон часов на изображении
type hourRange struct {
	start int
	end   int
	total int
}

// loadFont выставляет шрифт Go нужного размера, basicfont как fallback
func loadFont(dc *gg.Context, size float64, style fontStyle) {
	fontsMu.Lock()
	parsed, ok := cachedFonts[style]
	if !ok {
		data := goregular.TTF
		if style == fontBold {
			data = gobold.TTF
		}
		f, err := opentype.Parse(data)
		if err == nil {
			cachedFonts[style] = f
			parsed = f
		}
	}
	fontsMu.Unlock()

	if parsed != nil {
		face, err := opentype.NewFace(parsed, &opentype.FaceOptions{
			Size:    size,
			DPI:     72,
			Hinting: font.HintingFull,
		})
		if err == nil {
			dc.SetFontFace(face)
			return
		}
	}
	dc.SetFontFace(basicfont.Face7x13)
}

// RenderWeek рисует PNG одной недели площадки
func RenderWeek(row CourtRow, week int, title string, now time.Time, loc *time.Location) ([]byte, error) {
	if week < 0 || week >= len(row.Weeks) {
		return nil, fmt.Errorf("week %d out of range", week)
	}
	days := row.Weeks[week]
	today := clock.Date(now.In(loc))
	hours := calculateHourRange(days)

	dc := gg.NewContext(imageWidth, imageHeight)
	dc.SetColor(bgColor)
	dc.Clear()

	dayWidth := (imageWidth - leftLabelsWidth - legendWidth) / DaysInWeek
	dayHeight := imageHeight - headerHeight
	cellHeight := float64(dayHeight) / float64(hours.total)

	drawHeader(dc, title, days)
	drawHourLabels(dc, hours, cellHeight)

	todayIndex := -1
	for i, cell := range days {
		x := float64(leftLabelsWidth + i*dayWidth)
		y := float64(headerHeight)
		isToday := cell.Date.Equal(today)
		if isToday {
			todayIndex = i
		}

		drawDayBackground(dc, x, y, dayWidth, dayHeight, i, isToday)
		drawDayHeader(dc, cell.Date, x, y, dayWidth)
		drawHourLines(dc, x, y, dayWidth, hours, cellHeight)
		if cell.Training != nil {
			drawTraining(dc, cell.Training, x, y, dayWidth, hours, cellHeight)
		}
	}

	if todayIndex >= 0 {
		drawCurrentTimeLine(dc, now.In(loc), hours, cellHeight, dayWidth)
	}
	drawLegend(dc, dayWidth)

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// calculateHourRange определяет диапазон часов для отображения
func calculateHourRange(days Week) hourRange {
	minHour := 24
	maxHour := 0

	for _, cell := range days {
		if cell.Training == nil {
			continue
		}
		startH := cell.Training.StartHour
		endMinutes := startH*60 + cell.Training.StartMinute + int(model.TrainingDuration/time.Minute)
		endH := (endMinutes + 59) / 60
		if startH < minHour {
			minHour = startH
		}
		if endH > maxHour {
			maxHour = endH
		}
	}

	if minHour == 24 {
		minHour = defaultMinHour
		maxHour = defaultMaxHour
	}

	start := max(minHour-hourPaddingTop, 0)
	end := min(maxHour+hourPaddingBot, 23)

	return hourRange{start: start, end: end, total: end - start + 1}
}

func drawHeader(dc *gg.Context, title string, days Week) {
	first, last := days[0].Date, days[DaysInWeek-1].Date
	text := fmt.Sprintf("%s  %s - %s", title, first.Format("02.01"), last.Format("02.01.2006"))

	loadFont(dc, titleFontSize, fontBold)
	dc.SetColor(textColor)
	_, h := dc.MeasureString(text)
	dc.DrawStringAnchored(text, float64(leftLabelsWidth), float64(headerHeight)/8+h/2, 0, 0)
}

func drawHourLabels(dc *gg.Context, hours hourRange, cellHeight float64) {
	loadFont(dc, hourLabelFontSize, fontRegular)
	dc.SetColor(hourLabelColor)

	for i := 0; i < hours.total; i++ {
		y := float64(headerHeight) + float64(i)*cellHeight
		dc.DrawStringAnchored(fmt.Sprintf("%02d:00", hours.start+i), float64(leftLabelsWidth)-10, y, 1, 0.5)
	}
}

func drawDayBackground(dc *gg.Context, x, y float64, dayWidth, dayHeight, dayIndex int, isToday bool) {
	switch {
	case isToday:
		dc.SetColor(todayBgColor)
	case dayIndex%2 == 0:
		dc.SetColor(evenDayColor)
	default:
		dc.SetColor(oddDayColor)
	}
	dc.DrawRectangle(x, y, float64(dayWidth), float64(dayHeight))
	dc.Fill()
}

func drawDayHeader(dc *gg.Context, date time.Time, x, y float64, dayWidth int) {
	loadFont(dc, dayFontSize, fontBold)
	dc.SetColor(textColor)
	dc.DrawStringAnchored(date.Format("02.01"), x+float64(dayWidth)/2, y, 0.5, -1)
	dc.DrawStringAnchored(weekdayShort(date.Weekday()), x+float64(dayWidth)/2, y, 0.5, -0.2)
}

func drawHourLines(dc *gg.Context, x, y float64, dayWidth int, hours hourRange, cellHeight float64) {
	dc.SetLineWidth(0.3)
	dc.SetColor(hourLineColor)

	for i := 0; i <= hours.total; i++ {
		hy := y + float64(i)*cellHeight
		dc.DrawLine(x, hy, x+float64(dayWidth), hy)
		dc.Stroke()
	}
}

func drawTraining(dc *gg.Context, t *model.Training, x, y float64, dayWidth int, hours hourRange, cellHeight float64) {
	startHour := float64(t.StartHour) + float64(t.StartMinute)/60.0
	endHour := startHour + model.TrainingDuration.Hours()

	slotY := y + (startHour-float64(hours.start))*cellHeight
	slotHeight := (endHour - startHour) * cellHeight
	if slotHeight < minSlotHeight {
		slotHeight = minSlotHeight
	}

	fill := trainingColor(t)
	slotWidth := float64(dayWidth) - float64(dayPaddingX*2)

	dc.SetColor(trainingShadowColor)
	dc.DrawRoundedRectangle(x+dayPaddingX+shadowOffset, slotY+2+shadowOffset, slotWidth, slotHeight-4, slotBorderRadius)
	dc.Fill()

	dc.SetColor(fill)
	dc.DrawRoundedRectangle(x+float64(dayPaddingX), slotY+2, slotWidth, slotHeight-4, slotBorderRadius)
	dc.Fill()

	dc.SetColor(darkenColor(fill, 0.8))
	dc.SetLineWidth(1)
	dc.DrawRoundedRectangle(x+float64(dayPaddingX), slotY+2, slotWidth, slotHeight-4, slotBorderRadius)
	dc.Stroke()

	loadFont(dc, slotTimeFontSize, fontBold)
	dc.SetColor(trainingTextColor)
	txtX := x + float64(dayPaddingX) + 8
	txtY := slotY + 18
	dc.DrawStringAnchored(fmt.Sprintf("%02d:%02d", t.StartHour, t.StartMinute), txtX, txtY, 0, 0)

	if slotHeight > 40 {
		loadFont(dc, slotTimeFontSize-3, fontRegular)
		dc.DrawStringAnchored(fmt.Sprintf("%d/%d", len(t.Learners), model.TrainingCapacity), txtX, txtY+18, 0, 0)
	}
}

func trainingColor(t *model.Training) color.RGBA {
	switch {
	case !t.IsActive || t.Status == model.TrainingStatusCancelled:
		return trainingCancelledColor
	case t.IsFull():
		return trainingFullColor
	default:
		return trainingOpenColor
	}
}

func darkenColor(c color.RGBA, factor float64) color.RGBA {
	return color.RGBA{
		R: uint8(float64(c.R) * factor),
		G: uint8(float64(c.G) * factor),
		B: uint8(float64(c.B) * factor),
		A: c.A,
	}
}

func drawCurrentTimeLine(dc *gg.Context, now time.Time, hours hourRange, cellHeight float64, dayWidth int) {
	current := float64(now.Hour()) + float64(now.Minute())/60.0
	if current < float64(hours.start) || current > float64(hours.end) {
		return
	}

	lineY := float64(headerHeight) + (current-float64(hours.start))*cellHeight
	dc.SetColor(currentTimeColor)
	dc.SetLineWidth(2.0)
	dc.DrawLine(float64(leftLabelsWidth), lineY, float64(leftLabelsWidth+DaysInWeek*dayWidth), lineY)
	dc.Stroke()
}

func drawLegend(dc *gg.Context, dayWidth int) {
	liX := float64(leftLabelsWidth + DaysInWeek*dayWidth + 10)
	liY := float64(imageHeight) - 78.0

	items := []struct {
		label string
		clr   color.Color
	}{
		{"Есть места", trainingOpenColor},
		{"Мест нет", trainingFullColor},
		{"Отменена", trainingCancelledColor},
	}

	const boxW, boxH = 20.0, 14.0
	for _, item := range items {
		dc.SetColor(item.clr)
		dc.DrawRoundedRectangle(liX, liY, boxW, boxH, 3)
		dc.Fill()

		loadFont(dc, legendItemFontSize, fontRegular)
		dc.SetColor(legendItemColor)
		dc.DrawStringAnchored(item.label, liX+boxW+8, liY+boxH/2+1, 0, 0.2)
		liY += boxH + 14
	}
}

func weekdayShort(weekday time.Weekday) string {
	return [...]string{"Вс", "Пн", "Вт", "Ср", "Чт", "Пт", "Сб"}[weekday]
}
