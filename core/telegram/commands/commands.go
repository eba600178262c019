// Package commands describes the slash commands a bot registers.
package commands

import (
	"errors"
	"sort"
	"strings"

	tele "gopkg.in/telebot.v4"
)

var (
	ErrIncomplete = errors.New("handler and description are required")
	ErrNoSlash    = errors.New("name must start with a slash")
)

// Command is a slash command with its menu metadata. AdminOnly commands stay
// out of the menu and are rejected for everyone but the admin.
type Command struct {
	Handler      tele.HandlerFunc
	Description  string
	// Descriptions overrides Description per Telegram language code.
	Descriptions map[string]string
	AdminOnly    bool
	Hidden       bool
	Aliases      []string
}

// Validate reports whether c can be registered under name.
func (c Command) Validate(name string) error {
	switch {
	case name == "" || c.Handler == nil || c.Description == "":
		return ErrIncomplete
	case name[0] != '/':
		return ErrNoSlash
	}
	return nil
}

// Listed reports whether c belongs in the public command menu.
func (c Command) Listed() bool {
	return !c.Hidden && !c.AdminOnly
}

// Endpoints returns name followed by every alias, all slash-prefixed and
// lower-cased the way incoming text is matched.
func (c Command) Endpoints(name string) []string {
	out := make([]string, 0, 1+len(c.Aliases))
	out = append(out, strings.ToLower(name))
	for _, alias := range c.Aliases {
		out = append(out, "/"+strings.ToLower(strings.TrimLeft(alias, "/")))
	}
	return out
}

// DescriptionIn returns the menu text for lang.
func (c Command) DescriptionIn(lang string) string {
	if d := c.Descriptions[lang]; d != "" {
		return d
	}
	return c.Description
}

// Languages returns the sorted language codes c has its own text for.
func (c Command) Languages() []string {
	langs := make([]string, 0, len(c.Descriptions))
	for lang, d := range c.Descriptions {
		if d != "" {
			langs = append(langs, lang)
		}
	}
	sort.Strings(langs)
	return langs
}
