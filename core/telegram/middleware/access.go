package middleware

import (
	"github.com/m3rciful/surplusbot/core/telegram/commands"

	tele "gopkg.in/telebot.v4"
)

// AdminOptions defines how admin-only checks should behave.
type AdminOptions struct {
	AdminID  int64
	OnReject tele.HandlerFunc
}

// IsAdmin reports whether the sender of c is the configured admin.
// With no admin configured nobody is.
func (o AdminOptions) IsAdmin(c tele.Context) bool {
	user := c.Sender()
	return o.AdminID != 0 && user != nil && user.ID == o.AdminID
}

// WithAdminCheck wraps a command handler enforcing admin-only execution when required.
func WithAdminCheck(opts AdminOptions, cmd commands.Command) tele.HandlerFunc {
	if !cmd.AdminOnly {
		return cmd.Handler
	}
	return func(c tele.Context) error {
		if !opts.IsAdmin(c) {
			if opts.OnReject != nil {
				return opts.OnReject(c)
			}
			return nil
		}
		return cmd.Handler(c)
	}
}
