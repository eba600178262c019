package scene

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/m3rciful/surplusbot/core/logger"
	"github.com/m3rciful/surplusbot/market/domain"
	"github.com/m3rciful/surplusbot/market/session"
)

// Listings reachable through the page action.
const (
	listProducts = "products"
	listMine     = "mine"
	listBookings = "bookings"
	listPending  = "pending"
)

func (e *Engine) onIdleText(ctx context.Context, t *turn) (session.Scene, error) {
	keys := []string{"menu.browse", "menu.my_bookings", "menu.language"}
	if t.sess.Role == domain.RoleSeller {
		keys = []string{"menu.add_product", "menu.my_products", "menu.pending", "menu.language"}
	}
	key, ok := e.matchLabel(t.ev.Text, keys...)
	if !ok {
		t.say("error.invalid_format", nil, menuKeyboard(t.sess.Role))
		return Stay, nil
	}

	switch key {
	case "menu.language":
		return session.SceneLanguage, nil
	case "menu.add_product":
		return session.SceneProductCreation, nil
	case "menu.browse":
		return Stay, e.showList(ctx, t, listProducts, 0)
	case "menu.my_products":
		return Stay, e.showList(ctx, t, listMine, 0)
	case "menu.my_bookings":
		return Stay, e.showList(ctx, t, listBookings, 0)
	default:
		return Stay, e.showList(ctx, t, listPending, 0)
	}
}

func (e *Engine) onIdleAction(ctx context.Context, t *turn) (session.Scene, error) {
	switch t.ev.Action {
	case ActionReserve:
		return Stay, e.reserve(ctx, t, t.ev.Payload)
	case ActionCancel:
		return Stay, e.cancel(ctx, t, t.ev.Payload)
	case ActionConfirm:
		if _, err := e.sellers.GetByTelegramID(ctx, t.ev.UserID); err != nil {
			return Stay, fmt.Errorf("confirm booking: %w", err)
		}
		t.seed = &session.ConfirmDraft{BookingID: t.ev.Payload}
		return session.SceneBookingConfirm, nil
	case ActionPage:
		list, raw, _ := strings.Cut(t.ev.Payload, PayloadSep)
		page, err := strconv.Atoi(raw)
		if err != nil || page < 0 {
			page = 0
		}
		switch list {
		case listProducts, listMine, listBookings, listPending:
			return Stay, e.showList(ctx, t, list, page)
		}
	}
	t.say("error.invalid_format", nil, nil)
	return Stay, nil
}

func (e *Engine) reserve(ctx context.Context, t *turn, productID string) error {
	buyer, err := e.users.GetByTelegramID(ctx, t.ev.UserID)
	if err != nil {
		return fmt.Errorf("reserve: %w", err)
	}
	product, err := e.products.GetByID(ctx, productID)
	if err != nil {
		return fmt.Errorf("reserve: %w", err)
	}
	if !product.AvailableUntil.After(e.clock.Now()) {
		return fmt.Errorf("reserve: pickup window closed: %w", domain.ErrProductNotFound)
	}
	b, err := e.bookings.Create(ctx, buyer.ID, product.SellerID, product.ID)
	if err != nil {
		return fmt.Errorf("reserve: %w", err)
	}

	t.say("booking.created", map[string]string{"description": product.Description, "code": b.Code}, nil)

	seller, err := e.sellers.GetByID(ctx, product.SellerID)
	if err != nil {
		logger.Warn(ctx, component, "notify.skip", slog.String("booking_id", b.ID), slog.String("err", err.Error()))
		return nil
	}
	t.notify(seller.TelegramID, e.languageOf(ctx, seller.TelegramID, seller.Language), "booking.seller_new", map[string]string{
		"description": product.Description,
		"buyer":       buyer.Name,
		"phone":       buyer.Phone,
	})
	return nil
}

func (e *Engine) cancel(ctx context.Context, t *turn, bookingID string) error {
	buyer, err := e.users.GetByTelegramID(ctx, t.ev.UserID)
	if err != nil {
		return fmt.Errorf("cancel: %w", err)
	}
	b, err := e.bookings.Cancel(ctx, bookingID, buyer.ID)
	if err != nil {
		return fmt.Errorf("cancel: %w", err)
	}

	t.say("booking.cancelled", nil, nil)

	seller, err := e.sellers.GetByID(ctx, b.SellerID)
	if err != nil {
		logger.Warn(ctx, component, "notify.skip", slog.String("booking_id", b.ID), slog.String("err", err.Error()))
		return nil
	}
	t.notify(seller.TelegramID, e.languageOf(ctx, seller.TelegramID, seller.Language), "booking.seller_cancelled", map[string]string{
		"description": e.describe(ctx, b.ProductID),
	})
	return nil
}

func (e *Engine) enterConfirm(_ context.Context, t *turn) {
	t.say("confirm.ask_code", nil, removeKeyboard)
}

func (e *Engine) onConfirmText(ctx context.Context, t *turn) (session.Scene, error) {
	d, ok := t.sess.Draft.(*session.ConfirmDraft)
	if !ok || d.BookingID == "" {
		return Stay, fmt.Errorf("confirm booking: no booking selected: %w", domain.ErrBookingNotFound)
	}
	seller, err := e.sellers.GetByTelegramID(ctx, t.ev.UserID)
	if err != nil {
		return Stay, fmt.Errorf("confirm booking: %w", err)
	}
	b, err := e.bookings.ConfirmBySeller(ctx, d.BookingID, seller.ID, strings.TrimSpace(t.ev.Text))
	if err != nil {
		return Stay, err
	}

	t.say("confirm.done", nil, nil)

	buyer, err := e.users.GetByID(ctx, b.BuyerID)
	if err != nil {
		logger.Warn(ctx, component, "notify.skip", slog.String("booking_id", b.ID), slog.String("err", err.Error()))
		return session.SceneIdle, nil
	}
	t.notify(buyer.TelegramID, e.languageOf(ctx, buyer.TelegramID, buyer.Language), "booking.buyer_confirmed", map[string]string{
		"description": e.describe(ctx, b.ProductID),
	})
	return session.SceneIdle, nil
}

// describe returns the product description, or "-" when it is gone.
func (e *Engine) describe(ctx context.Context, productID string) string {
	p, err := e.products.GetByID(ctx, productID)
	if err != nil {
		return "-"
	}
	return p.Description
}
