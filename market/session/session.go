// Package session keeps the per-chat conversation record and serializes
// access to it.
package session

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/m3rciful/surplusbot/market/domain"
)

// Scene identifies one state of the conversation.
type Scene string

const (
	SceneLanguage           Scene = "language"
	SceneRole               Scene = "role"
	SceneSellerRegistration Scene = "seller_registration"
	SceneUserRegistration   Scene = "user_registration"
	SceneProductCreation    Scene = "product_creation"
	SceneBookingConfirm     Scene = "booking_confirm"
	SceneIdle               Scene = "idle"
)

// Cursors remember the page a chat is looking at in each listing.
type Cursors struct {
	ProductsPage int `json:"products_page"`
	BookingsPage int `json:"bookings_page"`
}

// Session is the mutable state of one chat.
type Session struct {
	ChatID    int64           `json:"chat_id"`
	Language  domain.Language `json:"language,omitempty"`
	Role      domain.Role     `json:"role,omitempty"`
	Scene     Scene           `json:"scene"`
	Draft     Draft           `json:"-"`
	Cursors   Cursors         `json:"cursors"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// New returns the session of a chat seen for the first time.
func New(chatID int64) *Session {
	return &Session{ChatID: chatID, Scene: SceneLanguage}
}

// Draft is scene-scoped data accumulated by a wizard. Each scene owns its own
// record type.
type Draft interface {
	draftKind() string
}

// RegistrationStep is the field a registration wizard waits for.
type RegistrationStep string

const (
	StepName    RegistrationStep = "name"
	StepPhone   RegistrationStep = "phone"
	StepAddress RegistrationStep = "address"
)

// RegistrationDraft collects seller or buyer registration data.
type RegistrationDraft struct {
	Step    RegistrationStep `json:"step"`
	Name    string           `json:"name,omitempty"`
	Phone   string           `json:"phone,omitempty"`
	Address string           `json:"address,omitempty"`
}

func (*RegistrationDraft) draftKind() string { return "registration" }

// ProductStep is the field the product wizard waits for.
type ProductStep string

const (
	StepPrice          ProductStep = "price"
	StepOriginalPrice  ProductStep = "original_price"
	StepDescription    ProductStep = "description"
	StepAvailableFrom  ProductStep = "available_from"
	StepAvailableUntil ProductStep = "available_until"
	// StepQuantityChoice only advances on a button press.
	StepQuantityChoice ProductStep = "quantity_choice"
	StepQuantity       ProductStep = "quantity"
)

// ProductDraft collects a product listing. Times of day are kept raw as
// "HH:MM" until the product is created.
type ProductDraft struct {
	Step           ProductStep `json:"step"`
	Price          float64     `json:"price,omitempty"`
	OriginalPrice  *float64    `json:"original_price,omitempty"`
	Description    string      `json:"description,omitempty"`
	AvailableFrom  string      `json:"available_from,omitempty"`
	AvailableUntil string      `json:"available_until,omitempty"`
	Quantity       *int        `json:"quantity,omitempty"`
}

func (*ProductDraft) draftKind() string { return "product" }

// ConfirmDraft holds the booking a seller is entering a code for.
type ConfirmDraft struct {
	BookingID string `json:"booking_id"`
}

func (*ConfirmDraft) draftKind() string { return "confirm" }

type draftEnvelope struct {
	Kind string          `json:"kind"`
	Data json.RawMessage `json:"data"`
}

type sessionJSON struct {
	Session
	Draft *draftEnvelope `json:"draft,omitempty"`
}

// Marshal encodes s including its draft.
func Marshal(s *Session) ([]byte, error) {
	out := sessionJSON{Session: *s}
	if s.Draft != nil {
		data, err := json.Marshal(s.Draft)
		if err != nil {
			return nil, fmt.Errorf("encode draft: %w", err)
		}
		out.Draft = &draftEnvelope{Kind: s.Draft.draftKind(), Data: data}
	}
	return json.Marshal(out)
}

// Unmarshal decodes a session produced by Marshal.
func Unmarshal(data []byte) (*Session, error) {
	var in sessionJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	s := in.Session
	if in.Draft == nil {
		return &s, nil
	}

	var d Draft
	switch in.Draft.Kind {
	case "registration":
		d = &RegistrationDraft{}
	case "product":
		d = &ProductDraft{}
	case "confirm":
		d = &ConfirmDraft{}
	default:
		return nil, fmt.Errorf("decode session: unknown draft kind %q", in.Draft.Kind)
	}
	if err := json.Unmarshal(in.Draft.Data, d); err != nil {
		return nil, fmt.Errorf("decode draft: %w", err)
	}
	s.Draft = d
	return &s, nil
}
