package telegram

import (
	"strings"
	"time"

	coreconfig "github.com/m3rciful/surplusbot/core/config"
	"github.com/m3rciful/surplusbot/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// DefaultMiddlewares builds the shared middleware chain for bots.
// Order matters: the logger must run before anything that logs with the rid.
func DefaultMiddlewares(cfg *coreconfig.Config, onLimited tele.HandlerFunc) []Middleware {
	mws := []Middleware{
		{Name: "logger", Use: middleware.LoggerMiddleware},
		{Name: "recover", Use: middleware.RecoverMiddleware},
	}

	if cfg != nil && cfg.RateLimit.IntervalMS > 0 {
		ex := make(map[string]struct{}, len(cfg.RateLimit.ExcludeUpdates))
		for _, t := range cfg.RateLimit.ExcludeUpdates {
			ex[strings.ToLower(strings.TrimSpace(t))] = struct{}{}
		}
		mws = append(mws, Middleware{
			Name: "rate_limit",
			Use: middleware.RateLimitMiddleware(middleware.RateLimitOptions{
				Interval:  time.Duration(cfg.RateLimit.IntervalMS) * time.Millisecond,
				Burst:     cfg.RateLimit.Burst,
				Exclude:   ex,
				OnLimited: onLimited,
			}),
		})
	}

	return append(mws, Middleware{Name: "metrics", Use: middleware.MessageMetricsMiddleware})
}
