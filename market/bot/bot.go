// Package bot adapts Telegram updates to the scene engine and renders the
// engine's replies as localized messages.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"github.com/m3rciful/surplusbot/core/logger"
	tg "github.com/m3rciful/surplusbot/core/telegram"
	"github.com/m3rciful/surplusbot/core/telegram/callbacks"
	"github.com/m3rciful/surplusbot/core/telegram/commands"
	"github.com/m3rciful/surplusbot/core/telegram/helpers"
	"github.com/m3rciful/surplusbot/core/telegram/keyboard"
	"github.com/m3rciful/surplusbot/core/telegram/router"
	"github.com/m3rciful/surplusbot/core/telegram/ui"
	"github.com/m3rciful/surplusbot/market/booking"
	"github.com/m3rciful/surplusbot/market/domain"
	"github.com/m3rciful/surplusbot/market/locale"
	"github.com/m3rciful/surplusbot/market/scene"

	tele "gopkg.in/telebot.v4"
)

const component = "tg.market"

// Engine is the conversation state machine driven by the bot.
type Engine interface {
	Handle(ctx context.Context, ev scene.Event) ([]scene.Reply, error)
	ExpiredReplies(ctx context.Context, expired []domain.Booking) []scene.Reply
}

// Sweeper runs an expiration sweep on demand.
type Sweeper interface {
	RunOnce(ctx context.Context) (int, error)
}

// Config wires the bot.
type Config struct {
	Engine  Engine
	Catalog *locale.Catalog
	// Sweeper backs the admin /sweep command; nil leaves it unregistered.
	Sweeper Sweeper
}

var (
	_ router.Conversation = (*Bot)(nil)
	_ ui.FallbackProvider = (*Bot)(nil)
	_ booking.Notifier    = (*Bot)(nil)
)

// Bot routes text, commands and callbacks into the engine.
type Bot struct {
	engine  Engine
	catalog *locale.Catalog
	sweeper Sweeper

	mu  sync.RWMutex
	api tele.API
}

// New validates cfg and returns a Bot.
func New(cfg Config) (*Bot, error) {
	if cfg.Engine == nil || cfg.Catalog == nil {
		return nil, errors.New("bot: engine and catalog are required")
	}
	return &Bot{engine: cfg.Engine, catalog: cfg.Catalog, sweeper: cfg.Sweeper}, nil
}

// SetAPI sets the client used for messages to chats other than the one of
// the current update.
func (b *Bot) SetAPI(api tele.API) {
	b.mu.Lock()
	b.api = api
	b.mu.Unlock()
}

func (b *Bot) client() tele.API {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.api
}

// Register adds the bot's commands and callbacks to reg.
func (b *Bot) Register(reg *tg.Registry) error {
	for _, name := range []string{scene.CommandStart, scene.CommandMenu, scene.CommandLanguage} {
		reg.RegisterCommand("/"+name, commands.Command{
			Handler:      b.command(name),
			Description:  b.catalog.Get(locale.Fallback, "command."+name),
			Descriptions: b.descriptions("command." + name),
		})
	}
	if b.sweeper != nil {
		reg.RegisterCommand("/sweep", commands.Command{
			Handler:     b.onSweep,
			Description: b.catalog.Get(locale.Fallback, "command.sweep"),
			AdminOnly:   true,
		})
	}

	actions := []string{
		scene.ActionReserve,
		scene.ActionCancel,
		scene.ActionConfirm,
		scene.ActionQuantity,
		scene.ActionPage,
	}
	for _, action := range actions {
		if err := reg.RegisterCallback(action, b.onAction); err != nil {
			return fmt.Errorf("bot: %w", err)
		}
	}
	reg.SetCallbackNotFound(b.UnknownCallback())
	return nil
}

// descriptions translates a command menu entry into every chat language.
func (b *Bot) descriptions(key string) map[string]string {
	out := make(map[string]string, 2)
	for _, lang := range []domain.Language{domain.LangUz, domain.LangRu} {
		out[string(lang)] = b.catalog.Get(lang, key)
	}
	return out
}

// HandleText feeds a plain text message to the engine.
func (b *Bot) HandleText(c tele.Context) error {
	return b.run(c, scene.Event{Kind: scene.KindText, Text: c.Text()})
}

func (b *Bot) command(name string) tele.HandlerFunc {
	return func(c tele.Context) error {
		return b.run(c, scene.Event{Kind: scene.KindCommand, Text: name})
	}
}

func (b *Bot) onAction(c tele.Context) error {
	return b.run(c, scene.Event{
		Kind:    scene.KindAction,
		Action:  callbacks.CallbackKey(c),
		Payload: callbacks.CallbackPayload(c),
	})
}

func (b *Bot) onSweep(c tele.Context) error {
	ctx := helpers.WithHandler(c, "sweep")
	n, err := b.sweeper.RunOnce(ctx)
	if err != nil {
		_ = helpers.SendText(c, b.catalog.Get(locale.Fallback, "error.generic"), nil)
		return fmt.Errorf("sweep: %w", err)
	}
	text := b.catalog.Render(locale.Fallback, "admin.swept", map[string]string{"count": strconv.Itoa(n)})
	return helpers.SendText(c, text, nil)
}

func (b *Bot) run(c tele.Context, ev scene.Event) error {
	ctx := helpers.BuildContext(c)
	ev.ChatID = helpers.ChatID(c)
	if user := c.Sender(); user != nil {
		ev.UserID = user.ID
	}

	replies, err := b.engine.Handle(ctx, ev)
	if err != nil {
		_ = helpers.SendText(c, b.catalog.Get(locale.Fallback, "error.try_again"), nil)
		return err
	}
	return b.deliver(ctx, c, replies)
}

// deliver sends every reply and keeps going past individual failures. c may
// be nil outside an update.
func (b *Bot) deliver(ctx context.Context, c tele.Context, replies []scene.Reply) error {
	var current int64
	if c != nil {
		current = helpers.ChatID(c)
	}

	var errs []error
	for _, r := range replies {
		text := b.catalog.Render(r.Language, r.Key, r.Args)
		markup := b.markup(r.Language, r.Keyboard)

		if c != nil && r.ChatID == current {
			if err := helpers.SendText(c, text, markup); err != nil {
				errs = append(errs, err)
			}
			continue
		}
		api := b.client()
		if api == nil {
			logger.Warn(ctx, component, "notify.skip",
				slog.Int64("to_chat", r.ChatID),
				slog.String("key", r.Key),
				slog.String("reason", "no_client"),
			)
			continue
		}
		nctx := logger.WithChat(ctx, r.ChatID)
		if err := helpers.SendTo(nctx, api, r.ChatID, text, markup); err != nil {
			logger.Warn(nctx, component, "notify.fail",
				slog.Int64("to_chat", r.ChatID),
				slog.String("key", r.Key),
				slog.String("err", logger.Sanitize(err.Error())),
			)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (b *Bot) markup(lang domain.Language, kb *scene.Keyboard) *tele.ReplyMarkup {
	switch {
	case kb == nil:
		return nil
	case kb.Remove:
		return keyboard.RemoveKeyboard()
	case kb.Inline:
		rows := make([][]keyboard.InlineBtn, len(kb.Rows))
		for i, row := range kb.Rows {
			rows[i] = make([]keyboard.InlineBtn, len(row))
			for j, btn := range row {
				rows[i][j] = keyboard.InlineBtn{
					Text:   b.label(lang, btn),
					Unique: btn.Action,
					Data:   btn.Payload,
				}
			}
		}
		return keyboard.InlineButtonsRows(rows...)
	}

	rows := make([][]string, len(kb.Rows))
	for i, row := range kb.Rows {
		rows[i] = make([]string, len(row))
		for j, btn := range row {
			rows[i][j] = b.label(lang, btn)
		}
	}
	if kb.Persistent {
		return keyboard.MenuButtons(rows...)
	}
	return keyboard.ReplyButtons(rows...)
}

func (b *Bot) label(lang domain.Language, btn scene.Button) string {
	if btn.Label == "" {
		return btn.Text
	}
	return b.catalog.Get(lang, btn.Label)
}

// BookingsExpired tells buyers that their bookings were swept.
func (b *Bot) BookingsExpired(ctx context.Context, expired []domain.Booking) {
	replies := b.engine.ExpiredReplies(ctx, expired)
	if err := b.deliver(ctx, nil, replies); err != nil {
		logger.Warn(ctx, component, "booking.expired.notify",
			slog.Int("count", len(replies)),
			slog.String("err", logger.Sanitize(err.Error())),
		)
	}
}

// UnknownDocument answers files the conversation has no use for.
func (b *Bot) UnknownDocument() tele.HandlerFunc {
	return func(c tele.Context) error {
		return helpers.SendText(c, b.catalog.Get(locale.Fallback, "error.unknown_document"), nil)
	}
}

// UnknownCallback answers buttons of keyboards that no longer exist.
func (b *Bot) UnknownCallback() tele.HandlerFunc {
	return func(c tele.Context) error {
		return helpers.Respond(c, b.catalog.Get(locale.Fallback, "error.unknown_callback"))
	}
}

// AdminRejected answers admin commands sent by anyone else.
func (b *Bot) AdminRejected() tele.HandlerFunc {
	return func(c tele.Context) error {
		return helpers.SendText(c, b.catalog.Get(locale.Fallback, "error.admin_only"), nil)
	}
}
