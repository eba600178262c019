package scene

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/m3rciful/surplusbot/market/domain"
	"github.com/m3rciful/surplusbot/market/session"
	"github.com/m3rciful/surplusbot/market/validation"
)

const (
	quantitySkip  = "skip"
	quantityEnter = "enter"
)

func (e *Engine) enterProduct(_ context.Context, t *turn) {
	t.sess.Draft = &session.ProductDraft{Step: session.StepPrice}
	t.say("product.ask_price", nil, removeKeyboard)
}

func productDraft(s *session.Session) *session.ProductDraft {
	d, ok := s.Draft.(*session.ProductDraft)
	if !ok {
		d = &session.ProductDraft{Step: session.StepPrice}
		s.Draft = d
	}
	return d
}

func quantityChoiceKeyboard() *Keyboard {
	return inlineKeyboard([]Button{
		{Label: "product.quantity_skip", Action: ActionQuantity, Payload: quantitySkip},
		{Label: "product.quantity_enter", Action: ActionQuantity, Payload: quantityEnter},
	})
}

func (e *Engine) onProductText(ctx context.Context, t *turn) (session.Scene, error) {
	d := productDraft(t.sess)
	text := t.ev.Text

	switch d.Step {
	case session.StepPrice:
		price, ok := validation.ValidatePrice(text)
		if !ok {
			t.say("product.invalid_price", nil, nil)
			return Stay, nil
		}
		d.Price = price
		d.Step = session.StepOriginalPrice
		t.say("product.ask_original_price", nil, nil)

	case session.StepOriginalPrice:
		price, ok := validation.ValidateOptionalPrice(text)
		if !ok {
			t.say("product.invalid_price", nil, nil)
			return Stay, nil
		}
		d.OriginalPrice = price
		d.Step = session.StepDescription
		t.say("product.ask_description", nil, nil)

	case session.StepDescription:
		desc, ok := validation.ValidateDescription(text)
		if !ok {
			t.say("product.invalid_description", nil, nil)
			return Stay, nil
		}
		d.Description = desc
		d.Step = session.StepAvailableFrom
		t.say("product.ask_available_from", nil, nil)

	case session.StepAvailableFrom:
		tod, ok := validation.ValidateTimeOfDay(text)
		if !ok {
			t.say("product.invalid_time", nil, nil)
			return Stay, nil
		}
		d.AvailableFrom = tod.String()
		d.Step = session.StepAvailableUntil
		t.say("product.ask_available_until", nil, nil)

	case session.StepAvailableUntil:
		tod, ok := validation.ValidateTimeOfDay(text)
		if !ok {
			t.say("product.invalid_time", nil, nil)
			return Stay, nil
		}
		d.AvailableUntil = tod.String()
		d.Step = session.StepQuantityChoice
		t.say("product.ask_quantity_choice", nil, quantityChoiceKeyboard())

	case session.StepQuantityChoice:
		// Only the buttons advance this step.
		t.say("product.ask_quantity_choice", nil, quantityChoiceKeyboard())

	case session.StepQuantity:
		qty, ok := validation.ValidateQuantity(text)
		if !ok {
			t.say("product.invalid_quantity", nil, nil)
			return Stay, nil
		}
		d.Quantity = &qty
		return e.completeProduct(ctx, t, d)

	default:
		return Stay, fmt.Errorf("product step %q: %w", d.Step, domain.ErrValidation)
	}
	return Stay, nil
}

func (e *Engine) onProductAction(ctx context.Context, t *turn) (session.Scene, error) {
	d := productDraft(t.sess)
	if t.ev.Action != ActionQuantity || d.Step != session.StepQuantityChoice {
		t.say("error.invalid_format", nil, nil)
		return Stay, nil
	}
	switch t.ev.Payload {
	case quantitySkip:
		d.Quantity = nil
		return e.completeProduct(ctx, t, d)
	case quantityEnter:
		d.Step = session.StepQuantity
		t.say("product.ask_quantity", nil, nil)
		return Stay, nil
	default:
		t.say("product.ask_quantity_choice", nil, quantityChoiceKeyboard())
		return Stay, nil
	}
}

// completeProduct rolls both times of day forward from now and stores the
// listing.
func (e *Engine) completeProduct(ctx context.Context, t *turn, d *session.ProductDraft) (session.Scene, error) {
	from, okFrom := validation.ValidateTimeOfDay(d.AvailableFrom)
	until, okUntil := validation.ValidateTimeOfDay(d.AvailableUntil)
	if !okFrom || !okUntil {
		return Stay, fmt.Errorf("product draft times: %w", domain.ErrValidation)
	}

	seller, err := e.sellers.GetByTelegramID(ctx, t.ev.UserID)
	if err != nil {
		return Stay, fmt.Errorf("create product: %w", err)
	}

	now := e.clock.Now()
	p := &domain.Product{
		ID:             e.newID(),
		SellerID:       seller.ID,
		Price:          d.Price,
		OriginalPrice:  d.OriginalPrice,
		Description:    d.Description,
		AvailableFrom:  validation.RollForward(now, from),
		AvailableUntil: validation.RollForward(now, until),
		Quantity:       d.Quantity,
		CreatedAt:      now.UTC(),
	}
	if err := e.products.Create(ctx, p); err != nil {
		return Stay, fmt.Errorf("create product: %w", err)
	}

	t.say("product.created", map[string]string{
		"description": p.Description,
		"price":       formatPrice(p.Price),
		"from":        e.clockTime(p.AvailableFrom),
		"until":       e.clockTime(p.AvailableUntil),
	}, nil)
	return session.SceneIdle, nil
}

func formatPrice(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func (e *Engine) clockTime(ts time.Time) string {
	return ts.In(e.loc).Format("15:04")
}
