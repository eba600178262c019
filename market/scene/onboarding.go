package scene

import (
	"context"
	"errors"
	"fmt"

	"github.com/m3rciful/surplusbot/market/domain"
	"github.com/m3rciful/surplusbot/market/session"
	"github.com/m3rciful/surplusbot/market/validation"
)

func (e *Engine) enterLanguage(_ context.Context, t *turn) {
	t.say("language.prompt", nil, replyKeyboard([]string{"language.uz", "language.ru"}))
}

func (e *Engine) onLanguageText(ctx context.Context, t *turn) (session.Scene, error) {
	key, ok := e.matchLabel(t.ev.Text, "language.uz", "language.ru")
	if !ok {
		t.say("error.invalid_format", nil, replyKeyboard([]string{"language.uz", "language.ru"}))
		return Stay, nil
	}
	if key == "language.ru" {
		t.sess.Language = domain.LangRu
	} else {
		t.sess.Language = domain.LangUz
	}
	t.say("language.saved", nil, nil)
	return e.home(ctx, t)
}

func (e *Engine) enterRole(_ context.Context, t *turn) {
	t.say("role.prompt", nil, replyKeyboard([]string{"role.buyer", "role.seller"}))
}

func (e *Engine) onRoleText(ctx context.Context, t *turn) (session.Scene, error) {
	key, ok := e.matchLabel(t.ev.Text, "role.buyer", "role.seller")
	if !ok {
		t.say("error.invalid_format", nil, replyKeyboard([]string{"role.buyer", "role.seller"}))
		return Stay, nil
	}
	registration := session.SceneUserRegistration
	t.sess.Role = domain.RoleBuyer
	if key == "role.seller" {
		registration = session.SceneSellerRegistration
		t.sess.Role = domain.RoleSeller
	}

	done, err := e.registered(ctx, t.sess.Role, t.ev.UserID)
	if err != nil {
		return Stay, fmt.Errorf("role lookup: %w", err)
	}
	if done {
		return session.SceneIdle, nil
	}
	return registration, nil
}

func (e *Engine) enterRegistration(askName string) entryFunc {
	return func(_ context.Context, t *turn) {
		t.sess.Draft = &session.RegistrationDraft{Step: session.StepName}
		t.say(askName, nil, removeKeyboard)
	}
}

func registrationDraft(s *session.Session) *session.RegistrationDraft {
	d, ok := s.Draft.(*session.RegistrationDraft)
	if !ok {
		d = &session.RegistrationDraft{Step: session.StepName}
		s.Draft = d
	}
	return d
}

// onRegistrationText collects name and phone, plus an address for sellers,
// then stores the account.
func (e *Engine) onRegistrationText(role domain.Role) handlerFunc {
	return func(ctx context.Context, t *turn) (session.Scene, error) {
		d := registrationDraft(t.sess)
		switch d.Step {
		case session.StepName:
			name, ok := validation.ValidateName(t.ev.Text)
			if !ok {
				t.say("registration.invalid_name", nil, nil)
				return Stay, nil
			}
			d.Name = name
			d.Step = session.StepPhone
			t.say("registration.ask_phone", nil, nil)
			return Stay, nil

		case session.StepPhone:
			phone, ok := validation.ValidatePhone(t.ev.Text)
			if !ok {
				t.say("registration.invalid_phone", nil, nil)
				return Stay, nil
			}
			d.Phone = phone
			if role == domain.RoleSeller {
				d.Step = session.StepAddress
				t.say("registration.ask_address", nil, nil)
				return Stay, nil
			}
			return e.completeRegistration(ctx, t, role, d)

		case session.StepAddress:
			address, ok := validation.ValidateDescription(t.ev.Text)
			if !ok {
				t.say("registration.invalid_address", nil, nil)
				return Stay, nil
			}
			d.Address = address
			return e.completeRegistration(ctx, t, role, d)
		}
		return Stay, fmt.Errorf("registration step %q: %w", d.Step, domain.ErrValidation)
	}
}

func (e *Engine) completeRegistration(ctx context.Context, t *turn, role domain.Role, d *session.RegistrationDraft) (session.Scene, error) {
	now := e.clock.Now().UTC()
	var err error
	key := "registration.user_done"
	if role == domain.RoleSeller {
		key = "registration.seller_done"
		err = e.sellers.Create(ctx, &domain.Seller{
			ID:           e.newID(),
			TelegramID:   t.ev.UserID,
			BusinessName: d.Name,
			Phone:        d.Phone,
			Address:      d.Address,
			Language:     t.sess.Language,
			CreatedAt:    now,
		})
	} else {
		err = e.users.Create(ctx, &domain.User{
			ID:         e.newID(),
			TelegramID: t.ev.UserID,
			Name:       d.Name,
			Phone:      d.Phone,
			Language:   t.sess.Language,
			CreatedAt:  now,
		})
	}
	if err != nil && !errors.Is(err, domain.ErrAlreadyRegistered) {
		return Stay, fmt.Errorf("register %s: %w", role, err)
	}
	t.say(key, map[string]string{"name": d.Name}, nil)
	return session.SceneIdle, nil
}

func (e *Engine) enterIdle(_ context.Context, t *turn) {
	t.say("menu.prompt", nil, menuKeyboard(t.sess.Role))
}

func menuKeyboard(role domain.Role) *Keyboard {
	var kb *Keyboard
	if role == domain.RoleSeller {
		kb = replyKeyboard(
			[]string{"menu.add_product", "menu.my_products"},
			[]string{"menu.pending"},
			[]string{"menu.language"},
		)
	} else {
		kb = replyKeyboard(
			[]string{"menu.browse", "menu.my_bookings"},
			[]string{"menu.language"},
		)
	}
	kb.Persistent = true
	return kb
}
