package telegram

import (
	"fmt"
	"strings"
	"time"

	coreconfig "github.com/m3rciful/surplusbot/core/config"

	tele "gopkg.in/telebot.v4"
)

const defaultLongPollTimeout = 10 * time.Second

// BuildPoller returns the Telebot poller selected by the run mode.
func BuildPoller(cfg *coreconfig.Config) tele.Poller {
	if strings.EqualFold(strings.TrimSpace(cfg.Telegram.RunMode), coreconfig.RunModeWebhook) {
		return &tele.Webhook{
			Listen:   fmt.Sprintf("%s:%d", cfg.Webhook.Listen, cfg.Webhook.Port),
			Endpoint: &tele.WebhookEndpoint{PublicURL: cfg.Webhook.URL},
		}
	}
	return &tele.LongPoller{Timeout: longPollTimeout(cfg)}
}

func longPollTimeout(cfg *coreconfig.Config) time.Duration {
	if cfg.Telegram.LongPollTimeoutSeconds > 0 {
		return time.Duration(cfg.Telegram.LongPollTimeoutSeconds) * time.Second
	}
	return defaultLongPollTimeout
}
