package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/m3rciful/surplusbot/core/logger"
)

// connectWait bounds how long Connect waits for a database that is still starting.
const connectWait = 30 * time.Second

// Connect opens the database connection, configures the pool, and waits until
// the server answers.
func Connect(cfg Config) (*sqlx.DB, error) {
	start := time.Now()
	db, err := sqlx.Open("postgres", cfg.DSN())
	if err == nil {
		if err = WaitForPostgres(db, connectWait); err != nil {
			_ = db.Close()
		}
	}
	took := logger.Took(start)
	if err != nil {
		logger.DB.Error("db connect failed",
			slog.String("event", "db.connect"),
			slog.String("host", cfg.Host),
			slog.String("port", cfg.Port),
			slog.String("db", cfg.Name),
			slog.Duration("duration", took),
			slog.String("err", err.Error()),
		)
		return nil, fmt.Errorf("db connect: %w", err)
	}

	if cfg.MaxConnections > 0 {
		db.SetMaxOpenConns(cfg.MaxConnections)
		db.SetMaxIdleConns(cfg.MaxConnections)
	}

	logger.DB.Info("db connected",
		slog.String("event", "db.connect"),
		slog.String("host", cfg.Host),
		slog.String("port", cfg.Port),
		slog.String("db", cfg.Name),
		slog.Int("pool_open", cfg.MaxConnections),
		slog.Duration("duration", took),
	)
	return db, nil
}

// WaitForPostgres pings the database until it answers or timeout is reached.
func WaitForPostgres(db *sqlx.DB, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		err := db.PingContext(ctx)
		cancel()
		if err == nil {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("timeout reached waiting for database: %w", err)
		}
		time.Sleep(2 * time.Second)
	}
}
