package domain

import "time"

// Language is the conversation locale.
type Language string

const (
	LangUz Language = "uz"
	LangRu Language = "ru"
)

// Valid reports whether l is a supported locale.
func (l Language) Valid() bool {
	return l == LangUz || l == LangRu
}

// Role is the side of the marketplace a chat acts for.
type Role string

const (
	RoleBuyer  Role = "buyer"
	RoleSeller Role = "seller"
)

// User is a registered buyer.
type User struct {
	ID         string    `db:"id" json:"id"`
	TelegramID int64     `db:"telegram_id" json:"telegram_id"`
	Name       string    `db:"name" json:"name"`
	Phone      string    `db:"phone" json:"phone"`
	Language   Language  `db:"language" json:"language"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// Seller is a registered business listing products.
type Seller struct {
	ID           string    `db:"id" json:"id"`
	TelegramID   int64     `db:"telegram_id" json:"telegram_id"`
	BusinessName string    `db:"business_name" json:"business_name"`
	Phone        string    `db:"phone" json:"phone"`
	Address      string    `db:"address" json:"address"`
	Language     Language  `db:"language" json:"language"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// Product is a listing of near-expiry goods. OriginalPrice and Quantity are optional.
type Product struct {
	ID             string    `db:"id" json:"id"`
	SellerID       string    `db:"seller_id" json:"seller_id"`
	Price          float64   `db:"price" json:"price"`
	OriginalPrice  *float64  `db:"original_price" json:"original_price,omitempty"`
	Description    string    `db:"description" json:"description"`
	AvailableFrom  time.Time `db:"available_from" json:"available_from"`
	AvailableUntil time.Time `db:"available_until" json:"available_until"`
	Quantity       *int      `db:"quantity" json:"quantity,omitempty"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// Booking is a buyer's reservation of a product, fulfilled when the seller
// confirms it with Code.
type Booking struct {
	ID                  string    `db:"id" json:"id"`
	Code                string    `db:"code" json:"code"`
	BuyerID             string    `db:"buyer_id" json:"buyer_id"`
	SellerID            string    `db:"seller_id" json:"seller_id"`
	ProductID           string    `db:"product_id" json:"product_id"`
	IsConfirmedBySeller bool      `db:"is_confirmed_by_seller" json:"is_confirmed_by_seller"`
	BookedAt            time.Time `db:"booked_at" json:"booked_at"`
	IsCancelled         bool      `db:"is_cancelled" json:"is_cancelled"`
}

// Page selects a slice of a listing.
type Page struct {
	Offset int
	Limit  int
}
