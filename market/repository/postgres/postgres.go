// Package postgres implements the repository contracts on PostgreSQL via sqlx.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/m3rciful/surplusbot/market/domain"
)

const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	// Raised for ids that are not valid UUIDs.
	codeInvalidText         = "22P02"
)

// Store hands out repositories sharing one connection pool.
type Store struct {
	db *sqlx.DB
}

// New wraps db.
func New(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// Users returns the buyer repository.
func (s *Store) Users() *Users { return &Users{db: s.db} }

// Sellers returns the seller repository.
func (s *Store) Sellers() *Sellers { return &Sellers{db: s.db} }

// Products returns the product repository.
func (s *Store) Products() *Products { return &Products{db: s.db} }

// Bookings returns the booking repository.
func (s *Store) Bookings() *Bookings { return &Bookings{db: s.db} }

func pgCode(err error) pq.ErrorCode {
	var pgErr *pq.Error
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// classify maps driver errors onto domain errors. notFound is returned for
// sql.ErrNoRows and malformed ids, onUnique for unique violations; both may
// be nil.
func classify(op string, err error, notFound, onUnique error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows) && notFound != nil:
		return notFound
	case pgCode(err) == codeUniqueViolation && onUnique != nil:
		return onUnique
	case pgCode(err) == codeForeignKeyViolation:
		return fmt.Errorf("%s: missing reference: %w", op, domain.ErrNotFound)
	case pgCode(err) == codeInvalidText:
		if notFound != nil {
			return notFound
		}
		return fmt.Errorf("%s: malformed id: %w", op, domain.ErrNotFound)
	}
	return domain.Persistence(op, err)
}

// limit maps an unbounded page onto LIMIT NULL.
func limit(p domain.Page) any {
	if p.Limit <= 0 {
		return nil
	}
	return p.Limit
}

type Users struct{ db *sqlx.DB }

const userColumns = `id, telegram_id, name, phone, language, created_at`

func (r *Users) Create(ctx context.Context, u *domain.User) error {
	_, err := r.db.NamedExecContext(ctx,
		`INSERT INTO users (`+userColumns+`)
		 VALUES (:id, :telegram_id, :name, :phone, :language, :created_at)`, u)
	return classify("insert user", err, nil, domain.ErrAlreadyRegistered)
}

func (r *Users) GetByID(ctx context.Context, id string) (*domain.User, error) {
	var u domain.User
	err := r.db.GetContext(ctx, &u, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	if err != nil {
		return nil, classify("get user", err, domain.ErrUserNotFound, nil)
	}
	return &u, nil
}

func (r *Users) GetByTelegramID(ctx context.Context, telegramID int64) (*domain.User, error) {
	var u domain.User
	err := r.db.GetContext(ctx, &u, `SELECT `+userColumns+` FROM users WHERE telegram_id = $1`, telegramID)
	if err != nil {
		return nil, classify("get user", err, domain.ErrUserNotFound, nil)
	}
	return &u, nil
}

type Sellers struct{ db *sqlx.DB }

const sellerColumns = `id, telegram_id, business_name, phone, address, language, created_at`

func (r *Sellers) Create(ctx context.Context, s *domain.Seller) error {
	_, err := r.db.NamedExecContext(ctx,
		`INSERT INTO sellers (`+sellerColumns+`)
		 VALUES (:id, :telegram_id, :business_name, :phone, :address, :language, :created_at)`, s)
	return classify("insert seller", err, nil, domain.ErrAlreadyRegistered)
}

func (r *Sellers) GetByID(ctx context.Context, id string) (*domain.Seller, error) {
	var s domain.Seller
	err := r.db.GetContext(ctx, &s, `SELECT `+sellerColumns+` FROM sellers WHERE id = $1`, id)
	if err != nil {
		return nil, classify("get seller", err, domain.ErrSellerNotFound, nil)
	}
	return &s, nil
}

func (r *Sellers) GetByTelegramID(ctx context.Context, telegramID int64) (*domain.Seller, error) {
	var s domain.Seller
	err := r.db.GetContext(ctx, &s, `SELECT `+sellerColumns+` FROM sellers WHERE telegram_id = $1`, telegramID)
	if err != nil {
		return nil, classify("get seller", err, domain.ErrSellerNotFound, nil)
	}
	return &s, nil
}

type Products struct{ db *sqlx.DB }

const productColumns = `id, seller_id, price, original_price, description,
	available_from, available_until, quantity, created_at`

func (r *Products) Create(ctx context.Context, p *domain.Product) error {
	_, err := r.db.NamedExecContext(ctx,
		`INSERT INTO products (`+productColumns+`)
		 VALUES (:id, :seller_id, :price, :original_price, :description,
		         :available_from, :available_until, :quantity, :created_at)`, p)
	if pgCode(err) == codeForeignKeyViolation {
		return domain.ErrSellerNotFound
	}
	return classify("insert product", err, nil, nil)
}

func (r *Products) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	var p domain.Product
	err := r.db.GetContext(ctx, &p, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
	if err != nil {
		return nil, classify("get product", err, domain.ErrProductNotFound, nil)
	}
	return &p, nil
}

func (r *Products) ListBySeller(ctx context.Context, sellerID string, page domain.Page) ([]domain.Product, error) {
	var out []domain.Product
	err := r.db.SelectContext(ctx, &out,
		`SELECT `+productColumns+` FROM products
		 WHERE seller_id = $1
		 ORDER BY created_at DESC, id
		 LIMIT $2 OFFSET $3`, sellerID, limit(page), page.Offset)
	if err != nil {
		return nil, classify("list seller products", err, nil, nil)
	}
	return out, nil
}

func (r *Products) ListAvailable(ctx context.Context, now time.Time, page domain.Page) ([]domain.Product, error) {
	var out []domain.Product
	err := r.db.SelectContext(ctx, &out,
		`SELECT `+productColumns+` FROM products
		 WHERE available_until > $1
		 ORDER BY created_at DESC, id
		 LIMIT $2 OFFSET $3`, now, limit(page), page.Offset)
	if err != nil {
		return nil, classify("list available products", err, nil, nil)
	}
	return out, nil
}

type Bookings struct{ db *sqlx.DB }

const bookingColumns = `id, code, buyer_id, seller_id, product_id,
	is_confirmed_by_seller, is_cancelled, booked_at`

// Create records the code in the ledger and inserts the booking in one
// transaction.
func (r *Bookings) Create(ctx context.Context, b *domain.Booking) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return domain.Persistence("begin tx", err)
	}
	defer tx.Rollback()

	if _, err = tx.ExecContext(ctx,
		`INSERT INTO booking_codes (code, issued_at) VALUES ($1, $2)`, b.Code, b.BookedAt); err != nil {
		return classify("reserve booking code", err, nil, domain.ErrCodeTaken)
	}
	if _, err = tx.NamedExecContext(ctx,
		`INSERT INTO bookings (`+bookingColumns+`)
		 VALUES (:id, :code, :buyer_id, :seller_id, :product_id,
		         :is_confirmed_by_seller, :is_cancelled, :booked_at)`, b); err != nil {
		return classify("insert booking", err, nil, domain.ErrCodeTaken)
	}
	if err = tx.Commit(); err != nil {
		return domain.Persistence("commit booking", err)
	}
	return nil
}

func (r *Bookings) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	var b domain.Booking
	err := r.db.GetContext(ctx, &b, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id)
	if err != nil {
		return nil, classify("get booking", err, domain.ErrBookingNotFound, nil)
	}
	return &b, nil
}

func (r *Bookings) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM bookings WHERE id = $1`, id)
	return affectedOne("delete booking", res, err)
}

// MarkConfirmed races DeleteStaleUnconfirmed on the row lock; whichever
// commits second re-checks its predicate, so a swept row yields not found.
func (r *Bookings) MarkConfirmed(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE bookings SET is_confirmed_by_seller = TRUE WHERE id = $1`, id)
	return affectedOne("confirm booking", res, err)
}

func (r *Bookings) DeleteStaleUnconfirmed(ctx context.Context, cutoff time.Time) ([]domain.Booking, error) {
	var out []domain.Booking
	err := r.db.SelectContext(ctx, &out,
		`DELETE FROM bookings
		 WHERE booked_at < $1 AND NOT is_confirmed_by_seller
		 RETURNING `+bookingColumns, cutoff)
	if err != nil {
		return nil, classify("delete stale bookings", err, nil, nil)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BookedAt.Before(out[j].BookedAt) })
	return out, nil
}

func (r *Bookings) ListByBuyer(ctx context.Context, buyerID string, page domain.Page) ([]domain.Booking, error) {
	var out []domain.Booking
	err := r.db.SelectContext(ctx, &out,
		`SELECT `+bookingColumns+` FROM bookings
		 WHERE buyer_id = $1
		 ORDER BY booked_at DESC, id
		 LIMIT $2 OFFSET $3`, buyerID, limit(page), page.Offset)
	if err != nil {
		return nil, classify("list buyer bookings", err, nil, nil)
	}
	return out, nil
}

func (r *Bookings) ListPendingBySeller(ctx context.Context, sellerID string, page domain.Page) ([]domain.Booking, error) {
	var out []domain.Booking
	err := r.db.SelectContext(ctx, &out,
		`SELECT `+bookingColumns+` FROM bookings
		 WHERE seller_id = $1 AND NOT is_confirmed_by_seller
		 ORDER BY booked_at DESC, id
		 LIMIT $2 OFFSET $3`, sellerID, limit(page), page.Offset)
	if err != nil {
		return nil, classify("list seller bookings", err, nil, nil)
	}
	return out, nil
}

func affectedOne(op string, res sql.Result, err error) error {
	if err != nil {
		return classify(op, err, nil, nil)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return domain.Persistence(op, err)
	}
	if n == 0 {
		return domain.ErrBookingNotFound
	}
	return nil
}
