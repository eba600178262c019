// Package repository declares the persistence contracts of the marketplace.
// Not-found results are reported with the domain.Err*NotFound errors.
package repository

import (
	"context"
	"time"

	"github.com/m3rciful/surplusbot/market/domain"
)

//go:generate mockgen -package=mocks -destination=mocks/mock_repository.go github.com/m3rciful/surplusbot/market/repository Users,Sellers,Products,Bookings

// Users stores buyers.
type Users interface {
	// Create fails with domain.ErrAlreadyRegistered for a known telegram id.
	Create(ctx context.Context, u *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByTelegramID(ctx context.Context, telegramID int64) (*domain.User, error)
}

// Sellers stores businesses.
type Sellers interface {
	// Create fails with domain.ErrAlreadyRegistered for a known telegram id.
	Create(ctx context.Context, s *domain.Seller) error
	GetByID(ctx context.Context, id string) (*domain.Seller, error)
	GetByTelegramID(ctx context.Context, telegramID int64) (*domain.Seller, error)
}

// Products stores listings.
type Products interface {
	Create(ctx context.Context, p *domain.Product) error
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	// ListBySeller returns the seller's products, newest first.
	ListBySeller(ctx context.Context, sellerID string, page domain.Page) ([]domain.Product, error)
	// ListAvailable returns products whose availability ends after now, newest first.
	ListAvailable(ctx context.Context, now time.Time, page domain.Page) ([]domain.Product, error)
}

// Bookings stores reservations.
type Bookings interface {
	// Create reserves b.Code forever; a code issued before fails with domain.ErrCodeTaken.
	Create(ctx context.Context, b *domain.Booking) error
	GetByID(ctx context.Context, id string) (*domain.Booking, error)
	// Delete removes the booking regardless of its state.
	Delete(ctx context.Context, id string) error
	// MarkConfirmed sets is_confirmed_by_seller; a vanished row yields domain.ErrBookingNotFound.
	MarkConfirmed(ctx context.Context, id string) error
	// DeleteStaleUnconfirmed removes unconfirmed bookings booked before cutoff
	// in one step and returns them.
	DeleteStaleUnconfirmed(ctx context.Context, cutoff time.Time) ([]domain.Booking, error)
	ListByBuyer(ctx context.Context, buyerID string, page domain.Page) ([]domain.Booking, error)
	ListPendingBySeller(ctx context.Context, sellerID string, page domain.Page) ([]domain.Booking, error)
}
