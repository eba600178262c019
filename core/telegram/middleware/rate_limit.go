package middleware

import (
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/m3rciful/surplusbot/core/logger"
	tghelpers "github.com/m3rciful/surplusbot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// RateLimitOptions configures behaviour of the rate limit middleware.
// Each user gets a token bucket refilled every Interval holding Burst tokens.
type RateLimitOptions struct {
	Interval  time.Duration
	Burst     int
	Exclude   map[string]struct{}
	OnLimited tele.HandlerFunc
	// IdleTTL drops buckets of users inactive for longer than this.
	IdleTTL time.Duration
}

type userBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type userLimiters struct {
	mu        sync.Mutex
	buckets   map[int64]*userBucket
	every     rate.Limit
	burst     int
	idleTTL   time.Duration
	lastSweep time.Time
}

func (u *userLimiters) allow(userID int64, now time.Time) bool {
	u.mu.Lock()
	defer u.mu.Unlock()

	if now.Sub(u.lastSweep) > u.idleTTL {
		for id, b := range u.buckets {
			if now.Sub(b.lastSeen) > u.idleTTL {
				delete(u.buckets, id)
			}
		}
		u.lastSweep = now
	}

	b, ok := u.buckets[userID]
	if !ok {
		b = &userBucket{limiter: rate.NewLimiter(u.every, u.burst)}
		u.buckets[userID] = b
	}
	b.lastSeen = now
	return b.limiter.AllowN(now, 1)
}

func updateKind(upd tele.Update) string {
	switch {
	case upd.Callback != nil:
		return "callback"
	case upd.Message != nil:
		return "message"
	case upd.Query != nil:
		return "inline_query"
	}
	return "other"
}

// RateLimitMiddleware returns a middleware that throttles updates per user.
func RateLimitMiddleware(opts RateLimitOptions) tele.MiddlewareFunc {
	if opts.Burst <= 0 {
		opts.Burst = 1
	}
	if opts.IdleTTL <= 0 {
		opts.IdleTTL = 10 * time.Minute
	}
	limiters := &userLimiters{
		buckets: make(map[int64]*userBucket),
		every:   rate.Every(opts.Interval),
		burst:   opts.Burst,
		idleTTL: opts.IdleTTL,
	}

	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			user := c.Sender()
			if user == nil || opts.Interval <= 0 {
				return next(c)
			}
			kind := updateKind(c.Update())
			if _, skip := opts.Exclude[kind]; skip {
				return next(c)
			}
			if limiters.allow(user.ID, time.Now()) {
				return next(c)
			}

			logger.Warn(tghelpers.BuildContext(c), "tg", "tg.rate_limit",
				slog.String("kind", kind),
			)
			if opts.OnLimited != nil {
				_ = opts.OnLimited(c)
			}
			return nil
		}
	}
}
