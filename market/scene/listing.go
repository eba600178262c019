package scene

import (
	"context"
	"fmt"
	"strconv"

	"github.com/m3rciful/surplusbot/market/domain"
)

// showList sends one page of a listing followed by navigation buttons.
func (e *Engine) showList(ctx context.Context, t *turn, list string, page int) error {
	switch list {
	case listProducts, listMine:
		t.sess.Cursors.ProductsPage = page
	default:
		t.sess.Cursors.BookingsPage = page
	}
	p := domain.Page{Offset: page * e.pageSize, Limit: e.pageSize + 1}

	var (
		n   int
		err error
	)
	switch list {
	case listProducts:
		n, err = e.listAvailable(ctx, t, p)
	case listMine:
		n, err = e.listMine(ctx, t, p)
	case listBookings:
		n, err = e.listBuyerBookings(ctx, t, p)
	case listPending:
		n, err = e.listPending(ctx, t, p)
	}
	if err != nil {
		return fmt.Errorf("list %s: %w", list, err)
	}

	hasNext := n > e.pageSize
	if page == 0 && !hasNext {
		return nil
	}
	var nav []Button
	if page > 0 {
		nav = append(nav, Button{Label: "list.prev", Action: ActionPage, Payload: list + PayloadSep + strconv.Itoa(page-1)})
	}
	if hasNext {
		nav = append(nav, Button{Label: "list.next", Action: ActionPage, Payload: list + PayloadSep + strconv.Itoa(page+1)})
	}
	t.say("list.page", map[string]string{"page": strconv.Itoa(page + 1)}, inlineKeyboard(nav))
	return nil
}

func (e *Engine) listAvailable(ctx context.Context, t *turn, p domain.Page) (int, error) {
	products, err := e.products.ListAvailable(ctx, e.clock.Now(), p)
	if err != nil {
		return 0, err
	}
	if len(products) == 0 {
		t.say("products.empty", nil, nil)
		return 0, nil
	}
	for i, prod := range products {
		if i == e.pageSize {
			break
		}
		t.say("products.card", e.productArgs(prod), inlineKeyboard([]Button{
			{Label: "products.reserve_button", Action: ActionReserve, Payload: prod.ID},
		}))
	}
	return len(products), nil
}

func (e *Engine) listMine(ctx context.Context, t *turn, p domain.Page) (int, error) {
	seller, err := e.sellers.GetByTelegramID(ctx, t.ev.UserID)
	if err != nil {
		return 0, err
	}
	products, err := e.products.ListBySeller(ctx, seller.ID, p)
	if err != nil {
		return 0, err
	}
	if len(products) == 0 {
		t.say("products.empty", nil, nil)
		return 0, nil
	}
	for i, prod := range products {
		if i == e.pageSize {
			break
		}
		t.say("products.card", e.productArgs(prod), nil)
	}
	return len(products), nil
}

func (e *Engine) listBuyerBookings(ctx context.Context, t *turn, p domain.Page) (int, error) {
	buyer, err := e.users.GetByTelegramID(ctx, t.ev.UserID)
	if err != nil {
		return 0, err
	}
	list, err := e.bookings.ListByBuyer(ctx, buyer.ID, p)
	if err != nil {
		return 0, err
	}
	if len(list) == 0 {
		t.say("bookings.empty", nil, nil)
		return 0, nil
	}
	for i, b := range list {
		if i == e.pageSize {
			break
		}
		key := "bookings.card_pending"
		if b.IsConfirmedBySeller {
			key = "bookings.card_confirmed"
		}
		t.say(key, map[string]string{"description": e.describe(ctx, b.ProductID), "code": b.Code}, inlineKeyboard([]Button{
			{Label: "bookings.cancel_button", Action: ActionCancel, Payload: b.ID},
		}))
	}
	return len(list), nil
}

func (e *Engine) listPending(ctx context.Context, t *turn, p domain.Page) (int, error) {
	seller, err := e.sellers.GetByTelegramID(ctx, t.ev.UserID)
	if err != nil {
		return 0, err
	}
	list, err := e.bookings.ListPendingBySeller(ctx, seller.ID, p)
	if err != nil {
		return 0, err
	}
	if len(list) == 0 {
		t.say("pending.empty", nil, nil)
		return 0, nil
	}
	for i, b := range list {
		if i == e.pageSize {
			break
		}
		args := map[string]string{
			"description": e.describe(ctx, b.ProductID),
			"buyer":       "-",
			"phone":       "",
			"booked_at":   b.BookedAt.In(e.loc).Format("02.01 15:04"),
		}
		if buyer, err := e.users.GetByID(ctx, b.BuyerID); err == nil {
			args["buyer"] = buyer.Name
			args["phone"] = buyer.Phone
		}
		t.say("pending.card", args, inlineKeyboard([]Button{
			{Label: "pending.confirm_button", Action: ActionConfirm, Payload: b.ID},
		}))
	}
	return len(list), nil
}

func (e *Engine) productArgs(p domain.Product) map[string]string {
	args := map[string]string{
		"description":    p.Description,
		"price":          formatPrice(p.Price),
		"original_price": "-",
		"from":           e.clockTime(p.AvailableFrom),
		"until":          e.clockTime(p.AvailableUntil),
		"quantity":       "-",
	}
	if p.OriginalPrice != nil {
		args["original_price"] = formatPrice(*p.OriginalPrice)
	}
	if p.Quantity != nil {
		args["quantity"] = strconv.Itoa(*p.Quantity)
	}
	return args
}
