// Package booking manages the lifecycle of reservations: creation with a
// confirmation code, cancellation by the buyer, confirmation by the seller
// and expiration of stale unconfirmed bookings.
package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/m3rciful/surplusbot/core/clock"
	"github.com/m3rciful/surplusbot/core/logger"
	"github.com/m3rciful/surplusbot/market/domain"
	"github.com/m3rciful/surplusbot/market/repository"
)

const (
	component = "service.bookings"

	defaultCodeAttempts = 5
	defaultQueryTimeout = 5 * time.Second
)

// Config wires the service dependencies.
type Config struct {
	Bookings repository.Bookings
	Users    repository.Users
	Sellers  repository.Sellers
	Products repository.Products

	Clock clock.Clock
	// Codes defaults to NewCode.
	Codes CodeGenerator
	// NewID defaults to random UUIDs.
	NewID func() string
	// CodeAttempts bounds retries after a code collision.
	CodeAttempts int
	// QueryTimeout bounds every repository call.
	QueryTimeout time.Duration
}

// Service implements the booking lifecycle.
type Service struct {
	bookings repository.Bookings
	users    repository.Users
	sellers  repository.Sellers
	products repository.Products

	clock        clock.Clock
	codes        CodeGenerator
	newID        func() string
	codeAttempts int
	queryTimeout time.Duration
}

// NewService validates cfg and returns a Service.
func NewService(cfg Config) (*Service, error) {
	if cfg.Bookings == nil || cfg.Users == nil || cfg.Sellers == nil || cfg.Products == nil {
		return nil, errors.New("booking: all repositories are required")
	}
	s := &Service{
		bookings:     cfg.Bookings,
		users:        cfg.Users,
		sellers:      cfg.Sellers,
		products:     cfg.Products,
		clock:        cfg.Clock,
		codes:        cfg.Codes,
		newID:        cfg.NewID,
		codeAttempts: cfg.CodeAttempts,
		queryTimeout: cfg.QueryTimeout,
	}
	if s.clock == nil {
		s.clock = clock.Real{}
	}
	if s.codes == nil {
		s.codes = NewCode
	}
	if s.newID == nil {
		s.newID = func() string { return uuid.NewString() }
	}
	if s.codeAttempts <= 0 {
		s.codeAttempts = defaultCodeAttempts
	}
	if s.queryTimeout <= 0 {
		s.queryTimeout = defaultQueryTimeout
	}
	return s, nil
}

func (s *Service) timeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.queryTimeout)
}

// Create reserves productID of sellerID for buyerID. Unknown references, or a
// product that belongs to another seller, fail with a not-found error.
func (s *Service) Create(ctx context.Context, buyerID, sellerID, productID string) (*domain.Booking, error) {
	qctx, cancel := s.timeout(ctx)
	defer cancel()

	if _, err := s.users.GetByID(qctx, buyerID); err != nil {
		return nil, fmt.Errorf("create booking: %w", err)
	}
	if _, err := s.sellers.GetByID(qctx, sellerID); err != nil {
		return nil, fmt.Errorf("create booking: %w", err)
	}
	product, err := s.products.GetByID(qctx, productID)
	if err != nil {
		return nil, fmt.Errorf("create booking: %w", err)
	}
	if product.SellerID != sellerID {
		return nil, fmt.Errorf("create booking: %w", domain.ErrProductNotFound)
	}

	b := &domain.Booking{
		ID:        s.newID(),
		BuyerID:   buyerID,
		SellerID:  sellerID,
		ProductID: productID,
		BookedAt:  s.clock.Now().UTC(),
	}
	for attempt := 1; ; attempt++ {
		if b.Code, err = s.codes(); err != nil {
			return nil, fmt.Errorf("create booking: %w", err)
		}
		err = s.bookings.Create(qctx, b)
		if err == nil {
			break
		}
		if !errors.Is(err, domain.ErrCodeTaken) || attempt >= s.codeAttempts {
			logger.Error(ctx, component, "booking.create",
				slog.String("status", "fail"),
				slog.String("product_id", productID),
				slog.Int("attempts", attempt),
				slog.String("err", err.Error()),
			)
			return nil, fmt.Errorf("create booking: %w", err)
		}
		logger.Debug(ctx, component, "booking.code.collision", slog.Int("attempts", attempt))
	}

	logger.Info(ctx, component, "booking.create",
		slog.String("status", "ok"),
		slog.String("booking_id", b.ID),
		slog.String("product_id", productID),
		slog.String("buyer_id", buyerID),
		slog.String("seller_id", sellerID),
	)
	return b, nil
}

// Cancel deletes bookingID on behalf of buyerID regardless of its
// confirmation state and returns the deleted booking.
func (s *Service) Cancel(ctx context.Context, bookingID, buyerID string) (*domain.Booking, error) {
	qctx, cancel := s.timeout(ctx)
	defer cancel()

	b, err := s.bookings.GetByID(qctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("cancel booking: %w", err)
	}
	if b.BuyerID != buyerID {
		logger.Warn(ctx, component, "booking.cancel",
			slog.String("status", "denied"),
			slog.String("booking_id", bookingID),
		)
		return nil, fmt.Errorf("cancel booking: %w", domain.ErrOwnership)
	}
	if err := s.bookings.Delete(qctx, bookingID); err != nil {
		return nil, fmt.Errorf("cancel booking: %w", err)
	}

	logger.Info(ctx, component, "booking.cancel",
		slog.String("status", "ok"),
		slog.String("booking_id", bookingID),
	)
	return b, nil
}

// ConfirmBySeller marks bookingID as fulfilled when sellerID owns it and code
// matches exactly. Confirming an already confirmed booking with the right
// code succeeds without a write.
func (s *Service) ConfirmBySeller(ctx context.Context, bookingID, sellerID, code string) (*domain.Booking, error) {
	qctx, cancel := s.timeout(ctx)
	defer cancel()

	b, err := s.bookings.GetByID(qctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("confirm booking: %w", err)
	}
	if b.SellerID != sellerID {
		logger.Warn(ctx, component, "booking.confirm",
			slog.String("status", "denied"),
			slog.String("booking_id", bookingID),
		)
		return nil, fmt.Errorf("confirm booking: %w", domain.ErrOwnership)
	}
	if code != b.Code {
		logger.Info(ctx, component, "booking.confirm",
			slog.String("status", "code_mismatch"),
			slog.String("booking_id", bookingID),
		)
		return nil, fmt.Errorf("confirm booking: %w", domain.ErrCodeMismatch)
	}
	if b.IsConfirmedBySeller {
		return b, nil
	}

	// The sweep may have removed the row since it was read.
	if err := s.bookings.MarkConfirmed(qctx, bookingID); err != nil {
		return nil, fmt.Errorf("confirm booking: %w", err)
	}
	b.IsConfirmedBySeller = true

	logger.Info(ctx, component, "booking.confirm",
		slog.String("status", "ok"),
		slog.String("booking_id", bookingID),
	)
	return b, nil
}

// ExpireStale deletes every unconfirmed booking older than thresholdHours and
// returns the deleted bookings.
func (s *Service) ExpireStale(ctx context.Context, thresholdHours int) ([]domain.Booking, error) {
	if thresholdHours <= 0 {
		return nil, fmt.Errorf("expire bookings: threshold must be positive: %w", domain.ErrValidation)
	}
	qctx, cancel := s.timeout(ctx)
	defer cancel()

	cutoff := s.clock.Now().UTC().Add(-time.Duration(thresholdHours) * time.Hour)
	expired, err := s.bookings.DeleteStaleUnconfirmed(qctx, cutoff)
	if err != nil {
		return nil, fmt.Errorf("expire bookings: %w", err)
	}
	return expired, nil
}

// ListByBuyer returns the buyer's bookings, newest first.
func (s *Service) ListByBuyer(ctx context.Context, buyerID string, page domain.Page) ([]domain.Booking, error) {
	qctx, cancel := s.timeout(ctx)
	defer cancel()
	list, err := s.bookings.ListByBuyer(qctx, buyerID, page)
	if err != nil {
		return nil, fmt.Errorf("list buyer bookings: %w", err)
	}
	return list, nil
}

// ListPendingBySeller returns the seller's unconfirmed bookings, newest first.
func (s *Service) ListPendingBySeller(ctx context.Context, sellerID string, page domain.Page) ([]domain.Booking, error) {
	qctx, cancel := s.timeout(ctx)
	defer cancel()
	list, err := s.bookings.ListPendingBySeller(qctx, sellerID, page)
	if err != nil {
		return nil, fmt.Errorf("list seller bookings: %w", err)
	}
	return list, nil
}
