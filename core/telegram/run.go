package telegram

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	coreconfig "github.com/m3rciful/surplusbot/core/config"
	"github.com/m3rciful/surplusbot/core/logger"
	tghelpers "github.com/m3rciful/surplusbot/core/telegram/helpers"
	tgsender "github.com/m3rciful/surplusbot/core/telegram/sender"

	tele "gopkg.in/telebot.v4"
)

// Middleware describes a global bot middleware to be registered via bot.Use.
type Middleware struct {
	Name string
	Use  tele.MiddlewareFunc
}

// Route declares a single bot handler bound to an arbitrary endpoint.
// Endpoint values are passed directly to tele.Bot.Handle.
type Route struct {
	Endpoint any
	Handler  tele.HandlerFunc
}

// RunOptions controls the behaviour of RunTelegram.
type RunOptions struct {
	Config   *coreconfig.Config
	Registry *Registry

	DispatcherOptions tgsender.Options
	HTTP              HTTPOptions

	Middlewares []Middleware
	// Routes may be built lazily once the bot exists.
	Routes func(bot *tele.Bot) []Route

	DisableWebhookCleanup bool

	OnStart func(ctx context.Context, rt Runtime) error
	OnStop  func(ctx context.Context, rt Runtime) error
}

// Runtime exposes runtime components to lifecycle hooks.
type Runtime struct {
	Bot        *tele.Bot
	Dispatcher *tgsender.Dispatcher
	Registry   *Registry
}

// RunTelegram composes and runs a Telegram bot until the provided context is done.
func RunTelegram(ctx context.Context, opts RunOptions) error {
	if opts.Config == nil {
		return fmt.Errorf("telegram: nil config provided")
	}
	cfg := opts.Config
	reg := opts.Registry
	if reg == nil {
		reg = NewRegistry()
	}

	httpOpts := opts.HTTP
	if httpOpts.ClientTimeout <= 0 {
		httpOpts.ClientTimeout = longPollTimeout(cfg) + 20*time.Second
	}

	poller := BuildPoller(cfg)
	buildStart := time.Now()
	bot, err := tele.NewBot(tele.Settings{
		Token:  cfg.Telegram.Token,
		Poller: poller,
		Client: BuildHTTPClient(httpOpts),
		OnError: func(err error, c tele.Context) {
			lctx := context.Background()
			if c != nil {
				lctx = tghelpers.BuildContext(c)
			}
			logger.Error(lctx, "tg", "handler.error", slog.String("err", logger.Sanitize(err.Error())))
		},
	})
	if err != nil {
		return fmt.Errorf("telegram: bot initialization failed: %w", err)
	}
	buildTook := time.Since(buildStart)

	dispatcher := tgsender.NewDispatcher(opts.DispatcherOptions)
	tghelpers.SetDispatcher(dispatcher)
	defer tghelpers.SetDispatcher(nil)

	rt := Runtime{Bot: bot, Dispatcher: dispatcher, Registry: reg}

	switch p := poller.(type) {
	case *tele.Webhook:
		logger.TG.Info("webhook mode",
			slog.String("event", "mode"),
			slog.String("mode", coreconfig.RunModeWebhook),
			slog.String("listen", p.Listen),
			slog.String("public_url", p.Endpoint.PublicURL),
			slog.Duration("duration", buildTook),
		)
	default:
		logger.TG.Info("polling mode",
			slog.String("event", "mode"),
			slog.String("mode", "polling"),
			slog.Duration("timeout", longPollTimeout(cfg)),
			slog.Duration("duration", buildTook),
		)
		if !opts.DisableWebhookCleanup {
			if err := deleteWebhook(ctx, cfg.Telegram.Token); err != nil {
				logger.TG.Warn("failed to delete webhook",
					slog.String("event", "delete_webhook"),
					slog.String("err", logger.Sanitize(err.Error())),
				)
			}
		}
	}

	for _, mw := range opts.Middlewares {
		if mw.Use != nil {
			bot.Use(mw.Use)
		}
	}
	if opts.Routes != nil {
		for _, route := range opts.Routes(bot) {
			if route.Endpoint != nil && route.Handler != nil {
				bot.Handle(route.Endpoint, route.Handler)
			}
		}
	}
	InitBotCommands(bot, reg)

	if opts.OnStart != nil {
		if err := opts.OnStart(ctx, rt); err != nil {
			dispatcher.Close()
			return err
		}
	}

	runDone := make(chan struct{})
	go func() {
		bot.Start()
		close(runDone)
	}()

	var runErr error
	select {
	case <-ctx.Done():
		bot.Stop()
		<-runDone
		runErr = ctx.Err()
	case <-runDone:
	}

	var stopErr error
	if opts.OnStop != nil {
		stopErr = opts.OnStop(context.WithoutCancel(ctx), rt)
	}
	dispatcher.Close()

	if stopErr != nil {
		return stopErr
	}
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return runErr
	}
	return nil
}

func deleteWebhook(ctx context.Context, token string) error {
	if strings.TrimSpace(token) == "" {
		return fmt.Errorf("empty token")
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	endpoint := fmt.Sprintf("https://api.telegram.org/bot%s/deleteWebhook", token)
	form := url.Values{"drop_pending_updates": {"false"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("deleteWebhook status: %s", resp.Status)
	}
	return nil
}
