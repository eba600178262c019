package session

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/m3rciful/surplusbot/core/clock"
	"github.com/m3rciful/surplusbot/core/logger"
)

// Backend persists encoded sessions.
type Backend interface {
	Load(ctx context.Context, chatID int64) ([]byte, bool, error)
	Save(ctx context.Context, chatID int64, data []byte) error
}

// Store serializes read-modify-write cycles per chat on top of a Backend.
type Store struct {
	backend Backend
	locks   *keyedMutex
	clock   clock.Clock
}

// NewStore wraps backend. A nil clock uses the system clock.
func NewStore(backend Backend, clk clock.Clock) *Store {
	if clk == nil {
		clk = clock.Real{}
	}
	return &Store{backend: backend, locks: newKeyedMutex(), clock: clk}
}

// Update loads the session of chatID (creating it in the language scene when
// absent or unreadable), calls fn and stores the result. Calls for the same
// chat never overlap. When fn fails nothing is stored.
func (s *Store) Update(ctx context.Context, chatID int64, fn func(*Session) error) error {
	start := time.Now()
	unlock := s.locks.lock(chatID)
	defer unlock()
	if wait := time.Since(start); wait > 50*time.Millisecond {
		logger.Debug(ctx, "fsm", "session.lock.contended", slog.Duration("lock_wait", wait))
	}

	sess, err := s.load(ctx, chatID)
	if err != nil {
		return err
	}
	if err := fn(sess); err != nil {
		return err
	}

	sess.ChatID = chatID
	sess.UpdatedAt = s.clock.Now()
	data, err := Marshal(sess)
	if err != nil {
		return err
	}
	if err := s.backend.Save(ctx, chatID, data); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Get returns a snapshot of the session of chatID without locking.
func (s *Store) Get(ctx context.Context, chatID int64) (*Session, error) {
	return s.load(ctx, chatID)
}

func (s *Store) load(ctx context.Context, chatID int64) (*Session, error) {
	data, ok, err := s.backend.Load(ctx, chatID)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if !ok {
		return New(chatID), nil
	}
	sess, err := Unmarshal(data)
	if err != nil {
		// Unreadable sessions restart in the language scene.
		logger.Warn(ctx, "fsm", "session.decode.reset",
			slog.String("err", logger.Sanitize(err.Error())),
		)
		return New(chatID), nil
	}
	return sess, nil
}
