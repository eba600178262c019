package router

import (
	"log/slog"
	"time"

	"github.com/m3rciful/surplusbot/core/logger"
	tg "github.com/m3rciful/surplusbot/core/telegram"
	"github.com/m3rciful/surplusbot/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// CommandRouteOptions configures how commands are wrapped and exposed.
type CommandRouteOptions struct {
	AdminID       int64
	OnAdminReject tele.HandlerFunc
}

// CommandRoutes prepares one route per registered command and alias.
func CommandRoutes(reg *tg.Registry, opts CommandRouteOptions) []tg.Route {
	if reg == nil {
		return nil
	}
	adminOpts := middleware.AdminOptions{AdminID: opts.AdminID, OnReject: opts.OnAdminReject}

	var routes []tg.Route
	for name, def := range reg.Commands() {
		name := name
		guarded := middleware.WithAdminCheck(adminOpts, def)
		h := func(c tele.Context) error {
			return handleWithSummary(c, normalizeHandlerName(name), time.Now(), func() error {
				return guarded(c)
			})
		}
		for _, endpoint := range def.Endpoints(name) {
			routes = append(routes, tg.Route{Endpoint: endpoint, Handler: h})
		}
	}

	logger.TWire.Info("tg.wire",
		slog.String("event", "complete"),
		slog.Int("commands", len(reg.Commands())),
		slog.Int("callbacks", len(reg.ListCallbacks())),
	)
	return routes
}
