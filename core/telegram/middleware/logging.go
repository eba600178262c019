package middleware

import (
	"log/slog"
	"sync"
	"time"

	"github.com/m3rciful/surplusbot/core/logger"
	"github.com/m3rciful/surplusbot/core/telegram/callbacks"
	tghelpers "github.com/m3rciful/surplusbot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

const dedupeWindow = 10 * time.Second

// recentUpdates keeps a short-lived set of processed update IDs to avoid double logging.
type recentUpdates struct {
	mu   sync.Mutex
	seen map[int]time.Time
}

var recent = &recentUpdates{seen: make(map[int]time.Time)}

func (r *recentUpdates) markSeen(updateID int, now time.Time) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, ts := range r.seen {
		if now.Sub(ts) > dedupeWindow {
			delete(r.seen, id)
		}
	}
	if _, ok := r.seen[updateID]; ok {
		return true
	}
	r.seen[updateID] = now
	return false
}

// LoggerMiddleware sets the rid for the update and logs a single receipt line.
func LoggerMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		upd := c.Update()
		var chatID, userID int64
		if chat := c.Chat(); chat != nil {
			chatID = chat.ID
		}
		user := c.Sender()
		if user != nil {
			userID = user.ID
		}

		rid := logger.BuildRID(upd.ID, chatID, userID)
		c.Set("rid", rid)
		c.Set("update_start", time.Now())
		ctx := tghelpers.BuildContext(c)

		if logger.ShouldSampleDebug() && !recent.markSeen(upd.ID, time.Now()) {
			var attrs []slog.Attr
			if user != nil && user.LanguageCode != "" {
				attrs = append(attrs, slog.String("lang", user.LanguageCode))
			}
			switch {
			case upd.Callback != nil:
				key, payload := callbacks.ParseCallbackData(upd.Callback)
				attrs = append(attrs,
					slog.String("cb_key", logger.SanitizeLimit(key, 128)),
					slog.String("payload", logger.SanitizeLimit(payload, 256)),
				)
			case upd.Message != nil:
				attrs = append(attrs, slog.String("payload", logger.SanitizeLimit(c.Text(), 256)))
			}
			logger.Debug(ctx, "tg", "update.received", attrs...)
		}

		return next(c)
	}
}
