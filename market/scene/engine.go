// Package scene implements the conversation state machine. Each inbound
// event is dispatched on (scene, event kind) while the chat's session is held
// under its lock; handlers either stay or move to another scene, whose entry
// action runs once per transition.
package scene

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/m3rciful/surplusbot/core/clock"
	"github.com/m3rciful/surplusbot/core/logger"
	"github.com/m3rciful/surplusbot/market/domain"
	"github.com/m3rciful/surplusbot/market/repository"
	"github.com/m3rciful/surplusbot/market/session"
)

const (
	component = "fsm"

	defaultPageSize     = 5
	defaultQueryTimeout = 5 * time.Second
)

// Stay keeps the session in its current scene without running an entry action.
const Stay session.Scene = ""

// Bookings is the booking lifecycle used by the menu scenes.
type Bookings interface {
	Create(ctx context.Context, buyerID, sellerID, productID string) (*domain.Booking, error)
	Cancel(ctx context.Context, bookingID, buyerID string) (*domain.Booking, error)
	ConfirmBySeller(ctx context.Context, bookingID, sellerID, code string) (*domain.Booking, error)
	ListByBuyer(ctx context.Context, buyerID string, page domain.Page) ([]domain.Booking, error)
	ListPendingBySeller(ctx context.Context, sellerID string, page domain.Page) ([]domain.Booking, error)
}

// Labels resolves button labels so typed replies can be matched against them.
type Labels interface {
	Get(lang domain.Language, key string) string
}

// Config wires the engine.
type Config struct {
	Sessions *session.Store
	Users    repository.Users
	Sellers  repository.Sellers
	Products repository.Products
	Bookings Bookings
	Labels   Labels

	Clock clock.Clock
	// Location is the zone times of day are entered in.
	Location *time.Location
	NewID    func() string
	PageSize int
	// QueryTimeout bounds the persistence calls of one event.
	QueryTimeout time.Duration
}

type handlerFunc func(ctx context.Context, t *turn) (session.Scene, error)

type entryFunc func(ctx context.Context, t *turn)

type dispatchKey struct {
	scene session.Scene
	kind  EventKind
}

// Engine routes events to scene handlers.
type Engine struct {
	sessions *session.Store
	users    repository.Users
	sellers  repository.Sellers
	products repository.Products
	bookings Bookings
	labels   Labels

	clock        clock.Clock
	loc          *time.Location
	newID        func() string
	pageSize     int
	queryTimeout time.Duration

	table   map[dispatchKey]handlerFunc
	entries map[session.Scene]entryFunc
}

// NewEngine validates cfg and builds the dispatch table.
func NewEngine(cfg Config) (*Engine, error) {
	if cfg.Sessions == nil || cfg.Users == nil || cfg.Sellers == nil || cfg.Products == nil || cfg.Bookings == nil {
		return nil, errors.New("scene: sessions, repositories and bookings are required")
	}
	if cfg.Labels == nil {
		return nil, errors.New("scene: labels are required")
	}
	e := &Engine{
		sessions:     cfg.Sessions,
		users:        cfg.Users,
		sellers:      cfg.Sellers,
		products:     cfg.Products,
		bookings:     cfg.Bookings,
		labels:       cfg.Labels,
		loc:          cfg.Location,
		newID:        cfg.NewID,
		pageSize:     cfg.PageSize,
		queryTimeout: cfg.QueryTimeout,
	}
	if e.loc == nil {
		e.loc = time.UTC
	}
	base := cfg.Clock
	if base == nil {
		base = clock.Real{}
	}
	e.clock = clock.InLocation(base, e.loc)
	if e.newID == nil {
		e.newID = uuid.NewString
	}
	if e.pageSize <= 0 {
		e.pageSize = defaultPageSize
	}
	if e.queryTimeout <= 0 {
		e.queryTimeout = defaultQueryTimeout
	}

	e.table = map[dispatchKey]handlerFunc{
		{session.SceneLanguage, KindText}:           e.onLanguageText,
		{session.SceneRole, KindText}:               e.onRoleText,
		{session.SceneSellerRegistration, KindText}: e.onRegistrationText(domain.RoleSeller),
		{session.SceneUserRegistration, KindText}:   e.onRegistrationText(domain.RoleBuyer),
		{session.SceneProductCreation, KindText}:    e.onProductText,
		{session.SceneProductCreation, KindAction}:  e.onProductAction,
		{session.SceneBookingConfirm, KindText}:     e.onConfirmText,
		{session.SceneIdle, KindText}:               e.onIdleText,
		{session.SceneIdle, KindAction}:             e.onIdleAction,
	}
	e.entries = map[session.Scene]entryFunc{
		session.SceneLanguage:           e.enterLanguage,
		session.SceneRole:               e.enterRole,
		session.SceneSellerRegistration: e.enterRegistration("registration.seller_ask_name"),
		session.SceneUserRegistration:   e.enterRegistration("registration.user_ask_name"),
		session.SceneProductCreation:    e.enterProduct,
		session.SceneBookingConfirm:     e.enterConfirm,
		session.SceneIdle:               e.enterIdle,
	}
	for sc := range e.entries {
		e.table[dispatchKey{sc, KindCommand}] = e.onCommand
	}
	return e, nil
}

// turn carries the state of one dispatch.
type turn struct {
	sess    *session.Session
	ev      Event
	seed    session.Draft
	replies []Reply
}

func (t *turn) say(key string, args map[string]string, kb *Keyboard) {
	t.replies = append(t.replies, Reply{
		ChatID:   t.sess.ChatID,
		Language: t.sess.Language,
		Key:      key,
		Args:     args,
		Keyboard: kb,
	})
}

func (t *turn) notify(chatID int64, lang domain.Language, key string, args map[string]string) {
	t.replies = append(t.replies, Reply{ChatID: chatID, Language: lang, Key: key, Args: args})
}

// Handle processes ev under the chat's session lock and returns the replies
// to deliver. Only a session load or store failure is returned as error.
func (e *Engine) Handle(ctx context.Context, ev Event) ([]Reply, error) {
	var replies []Reply
	err := e.sessions.Update(ctx, ev.ChatID, func(sess *session.Session) error {
		t := &turn{sess: sess, ev: ev}
		e.dispatch(ctx, t)
		replies = t.replies
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("handle %s event: %w", ev.Kind, err)
	}
	return replies, nil
}

func (e *Engine) dispatch(ctx context.Context, t *turn) {
	ctx = logger.WithScene(ctx, string(t.sess.Scene))
	qctx, cancel := context.WithTimeout(ctx, e.queryTimeout)
	defer cancel()

	if _, known := e.entries[t.sess.Scene]; !known {
		logger.Warn(ctx, component, "scene.unknown", slog.String("cause", string(t.sess.Scene)))
		e.transition(qctx, t, e.safeHome(qctx, t))
		return
	}

	h, ok := e.table[dispatchKey{t.sess.Scene, t.ev.Kind}]
	if !ok {
		logger.Debug(ctx, component, "event.unhandled", slog.String("kind", string(t.ev.Kind)))
		t.say("error.invalid_format", nil, nil)
		return
	}

	next, err := h(qctx, t)
	if err != nil {
		next = e.fail(ctx, t, err)
	}
	if next != Stay {
		e.transition(qctx, t, next)
	}
}

// transition clears the draft, switches scene and runs the entry action.
func (e *Engine) transition(ctx context.Context, t *turn, next session.Scene) {
	from := t.sess.Scene
	t.sess.Draft = nil
	t.sess.Scene = next
	if t.seed != nil {
		t.sess.Draft = t.seed
		t.seed = nil
	}
	logger.Info(ctx, component, "scene.enter",
		slog.String("from", string(from)),
		slog.String("scene", string(next)),
	)
	if enter, ok := e.entries[next]; ok {
		enter(logger.WithScene(ctx, string(next)), t)
	}
}

// fail maps an error kind onto a reply and the scene to continue in.
func (e *Engine) fail(ctx context.Context, t *turn, err error) session.Scene {
	attrs := []slog.Attr{slog.String("err_code", domain.Kind(err)), slog.String("err", err.Error())}
	switch {
	case errors.Is(err, domain.ErrValidation):
		logger.Debug(ctx, component, "event.rejected", attrs...)
		t.say("error.invalid_format", nil, nil)
		return Stay
	case errors.Is(err, domain.ErrCodeMismatch):
		logger.Debug(ctx, component, "event.rejected", attrs...)
		t.say("confirm.wrong_code", nil, nil)
		return Stay
	case errors.Is(err, domain.ErrUserNotFound), errors.Is(err, domain.ErrSellerNotFound):
		logger.Info(ctx, component, "event.rejected", attrs...)
		t.say("error.not_registered", nil, nil)
		return session.SceneRole
	case errors.Is(err, domain.ErrNotFound):
		logger.Info(ctx, component, "event.rejected", attrs...)
		t.say("error.not_found", nil, nil)
		return e.afterFailure(t)
	case errors.Is(err, domain.ErrOwnership):
		logger.Warn(ctx, component, "event.rejected", attrs...)
		t.say("error.generic", nil, nil)
		return e.afterFailure(t)
	default:
		logger.Error(ctx, component, "event.failed", attrs...)
		t.say("error.try_again", nil, nil)
		return e.afterFailure(t)
	}
}

// afterFailure returns the main menu, or the role prompt for chats that
// never reached it.
func (e *Engine) afterFailure(t *turn) session.Scene {
	if !t.sess.Language.Valid() {
		return session.SceneLanguage
	}
	if t.sess.Role == "" {
		return session.SceneRole
	}
	return session.SceneIdle
}

// home resolves the scene a chat returns to on /start and /menu.
func (e *Engine) home(ctx context.Context, t *turn) (session.Scene, error) {
	if !t.sess.Language.Valid() {
		return session.SceneLanguage, nil
	}
	if t.sess.Role == "" {
		return session.SceneRole, nil
	}
	ok, err := e.registered(ctx, t.sess.Role, t.ev.UserID)
	if err != nil {
		return Stay, err
	}
	if ok {
		return session.SceneIdle, nil
	}
	return session.SceneRole, nil
}

func (e *Engine) safeHome(ctx context.Context, t *turn) session.Scene {
	next, err := e.home(ctx, t)
	if err != nil {
		return session.SceneLanguage
	}
	return next
}

func (e *Engine) registered(ctx context.Context, role domain.Role, telegramID int64) (bool, error) {
	var err error
	if role == domain.RoleSeller {
		_, err = e.sellers.GetByTelegramID(ctx, telegramID)
	} else {
		_, err = e.users.GetByTelegramID(ctx, telegramID)
	}
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, domain.ErrNotFound):
		return false, nil
	default:
		return false, err
	}
}

func (e *Engine) onCommand(ctx context.Context, t *turn) (session.Scene, error) {
	switch t.ev.Text {
	case CommandStart, CommandMenu:
		return e.home(ctx, t)
	case CommandLanguage:
		return session.SceneLanguage, nil
	default:
		t.say("error.invalid_format", nil, nil)
		return Stay, nil
	}
}

// matchLabel returns the first key whose label in any language equals text.
func (e *Engine) matchLabel(text string, keys ...string) (string, bool) {
	want := normalizeLabel(text)
	if want == "" {
		return "", false
	}
	for _, key := range keys {
		for _, lang := range []domain.Language{domain.LangUz, domain.LangRu} {
			if normalizeLabel(e.labels.Get(lang, key)) == want {
				return key, true
			}
		}
	}
	return "", false
}

var apostrophes = strings.NewReplacer("ʻ", "'", "’", "'", "‘", "'", "ʼ", "'", "`", "'")

func normalizeLabel(s string) string {
	return strings.ToLower(strings.TrimSpace(apostrophes.Replace(s)))
}

// languageOf returns the language a chat talks in, as stored in its session.
func (e *Engine) languageOf(ctx context.Context, chatID int64, fallback domain.Language) domain.Language {
	sess, err := e.sessions.Get(ctx, chatID)
	if err == nil && sess.Language.Valid() {
		return sess.Language
	}
	return fallback
}

// ExpiredReplies builds the notices sent to buyers whose bookings expired.
func (e *Engine) ExpiredReplies(ctx context.Context, expired []domain.Booking) []Reply {
	qctx, cancel := context.WithTimeout(ctx, e.queryTimeout)
	defer cancel()

	replies := make([]Reply, 0, len(expired))
	for _, b := range expired {
		buyer, err := e.users.GetByID(qctx, b.BuyerID)
		if err != nil {
			logger.Warn(ctx, component, "notify.skip",
				slog.String("booking_id", b.ID),
				slog.String("err", err.Error()),
			)
			continue
		}
		replies = append(replies, Reply{
			ChatID:   buyer.TelegramID,
			Language: e.languageOf(qctx, buyer.TelegramID, buyer.Language),
			Key:      "booking.expired",
			Args:     map[string]string{"description": e.describe(qctx, b.ProductID)},
		})
	}
	return replies
}
