package keyboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReplyButtons(t *testing.T) {
	m := ReplyButtons([]string{"Oʻzbekcha", "Русский"})
	require.Len(t, m.ReplyKeyboard, 1)
	require.Len(t, m.ReplyKeyboard[0], 2)
	assert.Equal(t, "Русский", m.ReplyKeyboard[0][1].Text)
	assert.True(t, m.OneTimeKeyboard)
}

func TestInlineButtonsRows(t *testing.T) {
	m := InlineButtonsRows(
		[]InlineBtn{{Text: "Reserve", Unique: "reserve", Data: "p1"}},
		[]InlineBtn{{Text: "<", Unique: "page", Data: "0"}, {Text: ">", Unique: "page", Data: "2"}},
	)
	require.Len(t, m.InlineKeyboard, 2)
	assert.Equal(t, "reserve", m.InlineKeyboard[0][0].Unique)
	assert.Equal(t, "p1", m.InlineKeyboard[0][0].Data)
	assert.Len(t, m.InlineKeyboard[1], 2)
}

func TestMenuButtonsStayOpen(t *testing.T) {
	m := MenuButtons([]string{"Mahsulotlar"}, []string{"Tilni oʻzgartirish"})
	require.Len(t, m.ReplyKeyboard, 2)
	assert.False(t, m.OneTimeKeyboard)
	assert.True(t, m.ResizeKeyboard)
}
