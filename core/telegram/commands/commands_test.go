package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"

	tele "gopkg.in/telebot.v4"
)

func noop(tele.Context) error { return nil }

func TestValidate(t *testing.T) {
	ok := Command{Handler: noop, Description: "menu"}
	assert.NoError(t, ok.Validate("/menu"))
	assert.ErrorIs(t, ok.Validate("menu"), ErrNoSlash)
	assert.ErrorIs(t, ok.Validate(""), ErrIncomplete)
	assert.ErrorIs(t, Command{Description: "menu"}.Validate("/menu"), ErrIncomplete)
	assert.ErrorIs(t, Command{Handler: noop}.Validate("/menu"), ErrIncomplete)
}

func TestListed(t *testing.T) {
	assert.True(t, Command{}.Listed())
	assert.False(t, Command{Hidden: true}.Listed())
	assert.False(t, Command{AdminOnly: true}.Listed())
}

func TestEndpoints(t *testing.T) {
	c := Command{Aliases: []string{"m", "//Home"}}
	assert.Equal(t, []string{"/menu", "/m", "/home"}, c.Endpoints("/menu"))
	assert.Equal(t, []string{"/start"}, Command{}.Endpoints("/start"))
}

func TestDescriptionIn(t *testing.T) {
	c := Command{
		Description:  "Bosh menyu",
		Descriptions: map[string]string{"ru": "Главное меню", "uz": "Bosh menyu", "en": ""},
	}
	assert.Equal(t, "Главное меню", c.DescriptionIn("ru"))
	assert.Equal(t, "Bosh menyu", c.DescriptionIn("en"))
	assert.Equal(t, "Bosh menyu", c.DescriptionIn(""))
	assert.Equal(t, []string{"ru", "uz"}, c.Languages())
	assert.Empty(t, Command{}.Languages())
}
