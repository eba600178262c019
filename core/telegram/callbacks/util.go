package callbacks

import (
	"strings"

	tele "gopkg.in/telebot.v4"
)

// Sep separates payload fields inside callback data.
const Sep = "|"

// ParseCallbackData parses Telebot's \f<unique>|<payload> encoding.
// Returns unique and payload (may be empty).
func ParseCallbackData(cb *tele.Callback) (string, string) {
	if cb == nil {
		return "", ""
	}
	raw := strings.TrimPrefix(cb.Data, "\f")
	unique, payload, _ := strings.Cut(raw, Sep)
	return strings.TrimSpace(unique), payload
}

// CallbackKey returns cb.Unique if present; otherwise parses from Data.
func CallbackKey(c tele.Context) string {
	cb := c.Callback()
	if cb == nil {
		return ""
	}
	if cb.Unique != "" {
		return cb.Unique
	}
	k, _ := ParseCallbackData(cb)
	return k
}

// CallbackPayload returns the payload that follows the unique key.
func CallbackPayload(c tele.Context) string {
	cb := c.Callback()
	if cb == nil {
		return ""
	}
	// Telebot fills Data with the payload only once a button route matched.
	if cb.Unique != "" {
		return cb.Data
	}
	_, payload := ParseCallbackData(cb)
	return payload
}
