package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/m3rciful/surplusbot/core/logger"
	"github.com/m3rciful/surplusbot/market/domain"
)

// Expirer deletes stale bookings.
type Expirer interface {
	ExpireStale(ctx context.Context, thresholdHours int) ([]domain.Booking, error)
}

// Notifier is told about bookings removed by a sweep.
type Notifier interface {
	BookingsExpired(ctx context.Context, expired []domain.Booking)
}

// SweeperConfig configures the periodic expiration sweep. ThresholdHours and
// Interval have no defaults.
type SweeperConfig struct {
	Expirer        Expirer
	Notifier       Notifier
	ThresholdHours int
	Interval       time.Duration
	Location       *time.Location
}

// Sweeper runs ExpireStale on a cron schedule. Runs never overlap, whether
// triggered by the schedule or by RunOnce.
type Sweeper struct {
	cfg  SweeperConfig
	cron *cron.Cron
	mu   sync.Mutex
}

// NewSweeper validates cfg and schedules the sweep without starting it.
func NewSweeper(cfg SweeperConfig) (*Sweeper, error) {
	if cfg.Expirer == nil {
		return nil, errors.New("sweeper: expirer is required")
	}
	if cfg.ThresholdHours <= 0 {
		return nil, errors.New("sweeper: threshold hours must be positive")
	}
	if cfg.Interval <= 0 {
		return nil, errors.New("sweeper: interval must be positive")
	}
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}

	cl := cronLogger{}
	s := &Sweeper{cfg: cfg}
	s.cron = cron.New(
		cron.WithLocation(loc),
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)
	schedule := fmt.Sprintf("@every %s", cfg.Interval)
	if _, err := s.cron.AddFunc(schedule, func() {
		_, _ = s.RunOnce(context.Background())
	}); err != nil {
		return nil, fmt.Errorf("sweeper: schedule %q: %w", schedule, err)
	}
	return s, nil
}

// Start begins the schedule in the background.
func (s *Sweeper) Start() {
	logger.SWEEP.Info("sweeper started",
		slog.String("event", "sweep.start"),
		slog.Duration("interval", s.cfg.Interval),
		slog.Int("threshold_hours", s.cfg.ThresholdHours),
	)
	s.cron.Start()
}

// Stop halts the schedule and waits for a running sweep or ctx.
func (s *Sweeper) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RunOnce performs one sweep and returns the number of deleted bookings.
func (s *Sweeper) RunOnce(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	expired, err := s.cfg.Expirer.ExpireStale(ctx, s.cfg.ThresholdHours)
	if err != nil {
		logger.Error(ctx, "booking.sweep", "sweep.run",
			slog.String("status", "fail"),
			slog.String("err", err.Error()),
			slog.Duration("duration", logger.Took(start)),
		)
		return 0, err
	}

	for _, b := range expired {
		logger.Debug(ctx, "booking.sweep", "booking.expired",
			slog.String("booking_id", b.ID),
			slog.String("buyer_id", b.BuyerID),
			slog.String("product_id", b.ProductID),
		)
	}
	logger.Info(ctx, "booking.sweep", "sweep.run",
		slog.String("status", "ok"),
		slog.Int("count", len(expired)),
		slog.Duration("duration", logger.Took(start)),
	)

	if len(expired) > 0 && s.cfg.Notifier != nil {
		s.cfg.Notifier.BookingsExpired(ctx, expired)
	}
	return len(expired), nil
}

// cronLogger adapts cron's logger to the component logger.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	logger.SWEEP.Debug(msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	logger.SWEEP.Error(msg, append(keysAndValues, "err", err)...)
}
