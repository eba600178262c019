package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"github.com/m3rciful/surplusbot/core/bootstrap"
	"github.com/m3rciful/surplusbot/core/clock"
	corecmd "github.com/m3rciful/surplusbot/core/cmd"
	coredatabase "github.com/m3rciful/surplusbot/core/database"
	"github.com/m3rciful/surplusbot/core/logger"
	tg "github.com/m3rciful/surplusbot/core/telegram"
	"github.com/m3rciful/surplusbot/core/telegram/router"
	"github.com/m3rciful/surplusbot/market/booking"
	"github.com/m3rciful/surplusbot/market/bot"
	marketconfig "github.com/m3rciful/surplusbot/market/config"
	"github.com/m3rciful/surplusbot/market/domain"
	"github.com/m3rciful/surplusbot/market/locale"
	"github.com/m3rciful/surplusbot/market/repository"
	"github.com/m3rciful/surplusbot/market/repository/memory"
	"github.com/m3rciful/surplusbot/market/repository/postgres"
	"github.com/m3rciful/surplusbot/market/scene"
	"github.com/m3rciful/surplusbot/market/session"
	"github.com/m3rciful/surplusbot/migrations"

	tele "gopkg.in/telebot.v4"
)

const stopTimeout = 10 * time.Second

type repositories struct {
	users    repository.Users
	sellers  repository.Sellers
	products repository.Products
	bookings repository.Bookings
}

type app struct {
	cfg     *marketconfig.Config
	db      *sqlx.DB
	redis   *redis.Client
	bot     *bot.Bot
	sweeper *booking.Sweeper
}

func loadConfig(path string) (corecmd.ConfigCarrier, error) {
	return marketconfig.Load(path)
}

func bootstrapApp(carrier corecmd.ConfigCarrier) (corecmd.TelegramApp, error) {
	cfg, ok := carrier.(*marketconfig.Config)
	if !ok {
		return nil, fmt.Errorf("unexpected config type %T", carrier)
	}

	var dbCfg *coredatabase.Config
	if cfg.Storage.Driver == marketconfig.StoragePostgres {
		dbCfg = &cfg.Database
	}
	res, err := bootstrap.Run(bootstrap.Options{
		Config:     cfg.CoreConfig(),
		Database:   dbCfg,
		Migrations: migrations.FS,
	})
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, db: res.DB}
	if err := a.wire(); err != nil {
		_ = a.Close()
		return nil, err
	}
	return a, nil
}

func (a *app) repositories() repositories {
	if a.db != nil {
		st := postgres.New(a.db)
		return repositories{st.Users(), st.Sellers(), st.Products(), st.Bookings()}
	}
	st := memory.New()
	return repositories{st.Users(), st.Sellers(), st.Products(), st.Bookings()}
}

func (a *app) sessionBackend(ctx context.Context) (session.Backend, error) {
	if a.cfg.Sessions.Backend != marketconfig.SessionsRedis {
		return session.NewMemoryBackend(), nil
	}
	a.redis = redis.NewClient(&redis.Options{
		Addr:     a.cfg.Redis.Addr,
		Password: a.cfg.Redis.Password,
		DB:       a.cfg.Redis.DB,
	})
	return session.NewRedisBackend(ctx, session.RedisConfig{Client: a.redis, TTL: a.cfg.Sessions.TTL})
}

func (a *app) wire() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Storage.QueryTimeout)
	defer cancel()

	repos := a.repositories()
	backend, err := a.sessionBackend(ctx)
	if err != nil {
		return err
	}
	clk := clock.Real{}

	bookings, err := booking.NewService(booking.Config{
		Bookings:     repos.bookings,
		Users:        repos.users,
		Sellers:      repos.sellers,
		Products:     repos.products,
		Clock:        clk,
		QueryTimeout: a.cfg.Storage.QueryTimeout,
	})
	if err != nil {
		return err
	}

	catalog, err := locale.Load()
	if err != nil {
		return err
	}

	engine, err := scene.NewEngine(scene.Config{
		Sessions:     session.NewStore(backend, clk),
		Users:        repos.users,
		Sellers:      repos.sellers,
		Products:     repos.products,
		Bookings:     bookings,
		Labels:       catalog,
		Clock:        clk,
		Location:     a.cfg.Location(),
		QueryTimeout: a.cfg.Storage.QueryTimeout,
	})
	if err != nil {
		return err
	}

	// The sweeper and the bot refer to each other.
	notifier := &lateNotifier{}
	a.sweeper, err = booking.NewSweeper(booking.SweeperConfig{
		Expirer:        bookings,
		Notifier:       notifier,
		ThresholdHours: a.cfg.Booking.ExpireAfterHours,
		Interval:       a.cfg.Booking.SweepInterval,
		Location:       a.cfg.Location(),
	})
	if err != nil {
		return err
	}
	a.bot, err = bot.New(bot.Config{Engine: engine, Catalog: catalog, Sweeper: a.sweeper})
	if err != nil {
		return err
	}
	notifier.target = a.bot

	logger.Info(ctx, "app", "wire",
		slog.String("status", "ok"),
		slog.String("storage", a.cfg.Storage.Driver),
		slog.String("sessions", a.cfg.Sessions.Backend),
		slog.String("timezone", a.cfg.Location().String()),
	)
	return nil
}

// TelegramRunOptions assembles the bot runtime.
func (a *app) TelegramRunOptions() (tg.RunOptions, error) {
	core := a.cfg.CoreConfig()
	reg := tg.NewRegistry()
	if err := a.bot.Register(reg); err != nil {
		return tg.RunOptions{}, err
	}
	adminID := core.Telegram.AdminID

	return tg.RunOptions{
		Config:      core,
		Registry:    reg,
		Middlewares: tg.DefaultMiddlewares(core, nil),
		Routes: func(*tele.Bot) []tg.Route {
			routes := router.CommandRoutes(reg, router.CommandRouteOptions{
				AdminID:       adminID,
				OnAdminReject: a.bot.AdminRejected(),
			})
			routes = append(routes, router.CallbackRoute(reg))
			return append(routes, router.TextRoutes(a.bot, reg, router.TextOptions{
				UnknownDocument: a.bot.UnknownDocument(),
				AdminID:         adminID,
				OnAdminReject:   a.bot.AdminRejected(),
			})...)
		},
		OnStart: func(_ context.Context, rt tg.Runtime) error {
			a.bot.SetAPI(rt.Bot)
			a.sweeper.Start()
			return nil
		},
		OnStop: func(ctx context.Context, _ tg.Runtime) error {
			ctx, cancel := context.WithTimeout(ctx, stopTimeout)
			defer cancel()
			return a.sweeper.Stop(ctx)
		},
	}, nil
}

// Close releases the database and Redis connections.
func (a *app) Close() error {
	var errs []error
	if a.redis != nil {
		errs = append(errs, a.redis.Close())
	}
	if a.db != nil {
		errs = append(errs, a.db.Close())
	}
	return errors.Join(errs...)
}

type lateNotifier struct {
	target booking.Notifier
}

func (n *lateNotifier) BookingsExpired(ctx context.Context, expired []domain.Booking) {
	if n.target != nil {
		n.target.BookingsExpired(ctx, expired)
	}
}
