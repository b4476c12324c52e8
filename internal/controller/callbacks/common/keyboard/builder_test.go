package keyboard

import (
	"testing"

	"github.com/go-telegram/bot/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGridSplitsButtons(t *testing.T) {
	buttons := []string{"a", "b", "c", "d", "e"}
	var row []models.InlineKeyboardButton
	for _, data := range buttons {
		row = append(row, Button(data, data))
	}

	kb := NewBuilder().Grid(row, 2).Row(Button("back", "back")).Build()

	require.Len(t, kb.InlineKeyboard, 4)
	assert.Len(t, kb.InlineKeyboard[0], 2)
	assert.Len(t, kb.InlineKeyboard[2], 1)
	assert.Equal(t, "e", kb.InlineKeyboard[2][0].CallbackData)
	assert.Equal(t, "back", kb.InlineKeyboard[3][0].CallbackData)
}

func TestEmptyBuilder(t *testing.T) {
	b := NewBuilder().Row()
	assert.Equal(t, 0, b.Len())
	assert.NotNil(t, b.Build().InlineKeyboard)
}
