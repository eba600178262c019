// Package memory implements the repository contracts in process memory.
// A single mutex guards all tables, which makes conditional updates and
// deletes mutually exclusive.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/m3rciful/surplusbot/market/domain"
)

// Store holds every table. Use the accessor methods to obtain repositories.
type Store struct {
	mu       sync.Mutex
	users    map[string]domain.User
	sellers  map[string]domain.Seller
	products map[string]domain.Product
	bookings map[string]domain.Booking
	codes    map[string]struct{}
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		users:    make(map[string]domain.User),
		sellers:  make(map[string]domain.Seller),
		products: make(map[string]domain.Product),
		bookings: make(map[string]domain.Booking),
		codes:    make(map[string]struct{}),
	}
}

// Users returns the buyer repository.
func (s *Store) Users() *Users { return &Users{s: s} }

// Sellers returns the seller repository.
func (s *Store) Sellers() *Sellers { return &Sellers{s: s} }

// Products returns the product repository.
func (s *Store) Products() *Products { return &Products{s: s} }

// Bookings returns the booking repository.
func (s *Store) Bookings() *Bookings { return &Bookings{s: s} }

func paginate[T any](items []T, page domain.Page) []T {
	if page.Offset >= len(items) {
		return nil
	}
	items = items[page.Offset:]
	if page.Limit > 0 && len(items) > page.Limit {
		items = items[:page.Limit]
	}
	return items
}

type Users struct{ s *Store }

func (r *Users) Create(_ context.Context, u *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.users {
		if existing.TelegramID == u.TelegramID {
			return domain.ErrAlreadyRegistered
		}
	}
	r.s.users[u.ID] = *u
	return nil
}

func (r *Users) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &u, nil
}

func (r *Users) GetByTelegramID(_ context.Context, telegramID int64) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.TelegramID == telegramID {
			return &u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

type Sellers struct{ s *Store }

func (r *Sellers) Create(_ context.Context, sl *domain.Seller) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.sellers {
		if existing.TelegramID == sl.TelegramID {
			return domain.ErrAlreadyRegistered
		}
	}
	r.s.sellers[sl.ID] = *sl
	return nil
}

func (r *Sellers) GetByID(_ context.Context, id string) (*domain.Seller, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sl, ok := r.s.sellers[id]
	if !ok {
		return nil, domain.ErrSellerNotFound
	}
	return &sl, nil
}

func (r *Sellers) GetByTelegramID(_ context.Context, telegramID int64) (*domain.Seller, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, sl := range r.s.sellers {
		if sl.TelegramID == telegramID {
			return &sl, nil
		}
	}
	return nil, domain.ErrSellerNotFound
}

type Products struct{ s *Store }

func (r *Products) Create(_ context.Context, p *domain.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.sellers[p.SellerID]; !ok {
		return domain.ErrSellerNotFound
	}
	r.s.products[p.ID] = *p
	return nil
}

func (r *Products) GetByID(_ context.Context, id string) (*domain.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[id]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	return &p, nil
}

func (r *Products) ListBySeller(_ context.Context, sellerID string, page domain.Page) ([]domain.Product, error) {
	return r.list(page, func(p domain.Product) bool { return p.SellerID == sellerID }), nil
}

func (r *Products) ListAvailable(_ context.Context, now time.Time, page domain.Page) ([]domain.Product, error) {
	return r.list(page, func(p domain.Product) bool { return p.AvailableUntil.After(now) }), nil
}

func (r *Products) list(page domain.Page, keep func(domain.Product) bool) []domain.Product {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.Product
	for _, p := range r.s.products {
		if keep(p) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return paginate(out, page)
}

type Bookings struct{ s *Store }

func (r *Bookings) Create(_ context.Context, b *domain.Booking) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, taken := r.s.codes[b.Code]; taken {
		return domain.ErrCodeTaken
	}
	r.s.codes[b.Code] = struct{}{}
	r.s.bookings[b.ID] = *b
	return nil
}

func (r *Bookings) GetByID(_ context.Context, id string) (*domain.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.bookings[id]
	if !ok {
		return nil, domain.ErrBookingNotFound
	}
	return &b, nil
}

func (r *Bookings) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.bookings[id]; !ok {
		return domain.ErrBookingNotFound
	}
	delete(r.s.bookings, id)
	return nil
}

func (r *Bookings) MarkConfirmed(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.bookings[id]
	if !ok {
		return domain.ErrBookingNotFound
	}
	b.IsConfirmedBySeller = true
	r.s.bookings[id] = b
	return nil
}

func (r *Bookings) DeleteStaleUnconfirmed(_ context.Context, cutoff time.Time) ([]domain.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.Booking
	for id, b := range r.s.bookings {
		if !b.IsConfirmedBySeller && b.BookedAt.Before(cutoff) {
			out = append(out, b)
			delete(r.s.bookings, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BookedAt.Before(out[j].BookedAt) })
	return out, nil
}

func (r *Bookings) ListByBuyer(_ context.Context, buyerID string, page domain.Page) ([]domain.Booking, error) {
	return r.list(page, func(b domain.Booking) bool { return b.BuyerID == buyerID }), nil
}

func (r *Bookings) ListPendingBySeller(_ context.Context, sellerID string, page domain.Page) ([]domain.Booking, error) {
	return r.list(page, func(b domain.Booking) bool { return b.SellerID == sellerID && !b.IsConfirmedBySeller }), nil
}

func (r *Bookings) list(page domain.Page, keep func(domain.Booking) bool) []domain.Booking {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.Booking
	for _, b := range r.s.bookings {
		if keep(b) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BookedAt.After(out[j].BookedAt) })
	return paginate(out, page)
}
