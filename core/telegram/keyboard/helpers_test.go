package keyboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInlineButtonsOnePerRow(t *testing.T) {
	markup := InlineButtons([]InlineBtn{
		{Text: "Akhiri", Unique: "stop_chat", Data: "42"},
		{Text: "Batal", Unique: "cancel", Data: "1"},
	})

	require.Len(t, markup.InlineKeyboard, 2)
	require.Len(t, markup.InlineKeyboard[0], 1)
	require.Len(t, markup.InlineKeyboard[1], 1)

	assert.Equal(t, "Akhiri", markup.InlineKeyboard[0][0].Text)
	assert.Equal(t, "stop_chat", markup.InlineKeyboard[0][0].Unique)
	assert.Equal(t, "Batal", markup.InlineKeyboard[1][0].Text)
}

func TestInlineButtonsRowsKeepsShape(t *testing.T) {
	markup := InlineButtonsRows(
		[]InlineBtn{{Text: "A", Unique: "a"}, {Text: "B", Unique: "b"}},
		[]InlineBtn{{Text: "C", Unique: "c"}},
	)

	require.Len(t, markup.InlineKeyboard, 2)
	assert.Len(t, markup.InlineKeyboard[0], 2)
	assert.Len(t, markup.InlineKeyboard[1], 1)
	assert.Equal(t, "B", markup.InlineKeyboard[0][1].Text)
}

func TestInlineButtonsEmpty(t *testing.T) {
	markup := InlineButtons(nil)
	assert.Empty(t, markup.InlineKeyboard)
}
