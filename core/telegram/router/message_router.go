package router

import (
	"time"

	tg "github.com/m3rciful/surplusbot/core/telegram"
	"github.com/m3rciful/surplusbot/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// Conversation receives every plain text update that is not a command.
type Conversation interface {
	HandleText(c tele.Context) error
}

// TextOptions controls fallback behaviour for documents.
type TextOptions struct {
	UnknownDocument tele.HandlerFunc
	AdminID         int64
	OnAdminReject   tele.HandlerFunc
}

// TextRoutes builds handlers for text and document routing. Text that names a
// registered command (e.g. typed with a bot suffix or via alias) is routed to
// that command, everything else goes to the conversation.
func TextRoutes(conv Conversation, reg *tg.Registry, opts TextOptions) []tg.Route {
	adminOpts := middleware.AdminOptions{AdminID: opts.AdminID, OnReject: opts.OnAdminReject}

	handler := func(c tele.Context) error {
		start := time.Now()
		if reg != nil {
			if key, cmd, ok := reg.LookupCommand(c.Text()); ok && cmd.Handler != nil {
				guarded := middleware.WithAdminCheck(adminOpts, cmd)
				return handleWithSummary(c, normalizeHandlerName(key), start, func() error {
					return guarded(c)
				})
			}
		}
		if conv == nil {
			logHandlerSummary(c, "unknown_text", start, "skip", nil)
			return nil
		}
		return handleWithSummary(c, "conversation", start, func() error {
			return conv.HandleText(c)
		})
	}

	docHandler := func(c tele.Context) error {
		start := time.Now()
		if opts.UnknownDocument == nil {
			logHandlerSummary(c, "unexpected_document", start, "skip", nil)
			return nil
		}
		return handleWithSummary(c, "unexpected_document", start, func() error {
			return opts.UnknownDocument(c)
		})
	}

	return []tg.Route{
		{Endpoint: tele.OnText, Handler: handler},
		{Endpoint: tele.OnDocument, Handler: docHandler},
	}
}
