package scene

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	clockmocks "github.com/m3rciful/surplusbot/core/clock/mocks"
	"github.com/m3rciful/surplusbot/market/booking"
	"github.com/m3rciful/surplusbot/market/domain"
	"github.com/m3rciful/surplusbot/market/locale"
	"github.com/m3rciful/surplusbot/market/repository/memory"
	"github.com/m3rciful/surplusbot/market/session"
)

const (
	buyerChat  int64 = 100
	sellerChat int64 = 200
)

type EngineTestSuite struct {
	suite.Suite
	ctx      context.Context
	loc      *time.Location
	now      time.Time
	store    *memory.Store
	sessions *session.Store
	bookings *booking.Service
	engine   *Engine
}

func (s *EngineTestSuite) SetupTest() {
	ctrl := gomock.NewController(s.T())
	clk := clockmocks.NewMockClock(ctrl)
	clk.EXPECT().Now().DoAndReturn(func() time.Time { return s.now }).AnyTimes()

	s.ctx = context.Background()
	s.loc = time.FixedZone("UZT", 5*60*60)
	s.now = time.Date(2025, 5, 1, 18, 0, 0, 0, s.loc)
	s.store = memory.New()
	s.sessions = session.NewStore(session.NewMemoryBackend(), nil)

	var err error
	s.bookings, err = booking.NewService(booking.Config{
		Bookings: s.store.Bookings(),
		Users:    s.store.Users(),
		Sellers:  s.store.Sellers(),
		Products: s.store.Products(),
		Clock:    clk,
	})
	s.Require().NoError(err)

	s.engine, err = NewEngine(Config{
		Sessions: s.sessions,
		Users:    s.store.Users(),
		Sellers:  s.store.Sellers(),
		Products: s.store.Products(),
		Bookings: s.bookings,
		Labels:   locale.MustLoad(),
		Clock:    clk,
		Location: s.loc,
	})
	s.Require().NoError(err)
}

func (s *EngineTestSuite) text(chat int64, text string) []Reply {
	replies, err := s.engine.Handle(s.ctx, Event{ChatID: chat, UserID: chat, Kind: KindText, Text: text})
	s.Require().NoError(err)
	return replies
}

func (s *EngineTestSuite) command(chat int64, name string) []Reply {
	replies, err := s.engine.Handle(s.ctx, Event{ChatID: chat, UserID: chat, Kind: KindCommand, Text: name})
	s.Require().NoError(err)
	return replies
}

func (s *EngineTestSuite) action(chat int64, action, payload string) []Reply {
	replies, err := s.engine.Handle(s.ctx, Event{ChatID: chat, UserID: chat, Kind: KindAction, Action: action, Payload: payload})
	s.Require().NoError(err)
	return replies
}

func (s *EngineTestSuite) session(chat int64) *session.Session {
	sess, err := s.sessions.Get(s.ctx, chat)
	s.Require().NoError(err)
	return sess
}

func keys(replies []Reply) []string {
	out := make([]string, len(replies))
	for i, r := range replies {
		out[i] = r.Key
	}
	return out
}

func (s *EngineTestSuite) registerSeller() *domain.Seller {
	s.command(sellerChat, CommandStart)
	s.text(sellerChat, "Oʻzbekcha")
	s.text(sellerChat, "Sotuvchi")
	s.text(sellerChat, "Non uyi")
	s.text(sellerChat, "+998901234567")
	replies := s.text(sellerChat, "Chilonzor 5")
	s.Equal([]string{"registration.seller_done", "menu.prompt"}, keys(replies))

	seller, err := s.store.Sellers().GetByTelegramID(s.ctx, sellerChat)
	s.Require().NoError(err)
	return seller
}

func (s *EngineTestSuite) registerBuyer() *domain.User {
	s.command(buyerChat, CommandStart)
	s.text(buyerChat, "Русский")
	s.text(buyerChat, "Покупатель")
	s.text(buyerChat, "Ali")
	replies := s.text(buyerChat, "+998901112233")
	s.Equal([]string{"registration.user_done", "menu.prompt"}, keys(replies))

	buyer, err := s.store.Users().GetByTelegramID(s.ctx, buyerChat)
	s.Require().NoError(err)
	return buyer
}

func (s *EngineTestSuite) addProduct(seller *domain.Seller, desc string, until time.Duration) *domain.Product {
	p := &domain.Product{
		ID:             uuid.NewString(),
		SellerID:       seller.ID,
		Price:          9000,
		Description:    desc,
		AvailableFrom:  s.now,
		AvailableUntil: s.now.Add(until),
		CreatedAt:      s.now,
	}
	s.Require().NoError(s.store.Products().Create(s.ctx, p))
	return p
}

func (s *EngineTestSuite) TestFirstContactPromptsForLanguage() {
	replies := s.text(buyerChat, "salom")
	s.Equal([]string{"error.invalid_format"}, keys(replies))
	s.Equal(session.SceneLanguage, s.session(buyerChat).Scene)

	replies = s.command(buyerChat, CommandStart)
	s.Equal([]string{"language.prompt"}, keys(replies))
	s.Require().NotNil(replies[0].Keyboard)
	s.Equal("language.uz", replies[0].Keyboard.Rows[0][0].Label)
}

func (s *EngineTestSuite) TestUzbekSellerReachesSellerRegistration() {
	replies := s.text(sellerChat, "Oʻzbekcha")
	s.Equal([]string{"language.saved", "role.prompt"}, keys(replies))
	s.Equal(domain.LangUz, replies[0].Language)

	replies = s.text(sellerChat, "Sotuvchi")
	s.Equal([]string{"registration.seller_ask_name"}, keys(replies))

	sess := s.session(sellerChat)
	s.Equal(domain.LangUz, sess.Language)
	s.Equal(domain.RoleSeller, sess.Role)
	s.Equal(session.SceneSellerRegistration, sess.Scene)
	s.IsType(&session.RegistrationDraft{}, sess.Draft)
}

func (s *EngineTestSuite) TestLanguageLabelToleratesApostropheVariants() {
	s.text(sellerChat, "o'zbekcha")
	s.Equal(domain.LangUz, s.session(sellerChat).Language)
	s.Equal(session.SceneRole, s.session(sellerChat).Scene)
}

func (s *EngineTestSuite) TestRegistrationRejectsBadPhone() {
	s.text(buyerChat, "Русский")
	s.text(buyerChat, "Покупатель")
	s.text(buyerChat, "Ali")

	replies := s.text(buyerChat, "call me")
	s.Equal([]string{"registration.invalid_phone"}, keys(replies))
	sess := s.session(buyerChat)
	s.Equal(session.SceneUserRegistration, sess.Scene)
	s.Equal(session.StepPhone, sess.Draft.(*session.RegistrationDraft).Step)
}

func (s *EngineTestSuite) TestRegisteredChatReturnsToMenu() {
	s.registerSeller()

	replies := s.command(sellerChat, CommandLanguage)
	s.Equal([]string{"language.prompt"}, keys(replies))

	replies = s.text(sellerChat, "Русский")
	s.Equal([]string{"language.saved", "menu.prompt"}, keys(replies))
	s.Equal(domain.LangRu, replies[1].Language)
	s.Equal(session.SceneIdle, s.session(sellerChat).Scene)
}

func (s *EngineTestSuite) TestProductFlowRollsPastTimesToNextDay() {
	seller := s.registerSeller()

	s.Equal([]string{"product.ask_price"}, keys(s.text(sellerChat, "Mahsulot qoʻshish")))
	s.Equal([]string{"product.invalid_price"}, keys(s.text(sellerChat, "bepul")))
	s.Equal([]string{"product.ask_original_price"}, keys(s.text(sellerChat, "12000")))
	s.Equal([]string{"product.ask_description"}, keys(s.text(sellerChat, "0")))
	s.Equal([]string{"product.ask_available_from"}, keys(s.text(sellerChat, "Non, 10 dona")))
	s.Equal([]string{"product.invalid_time"}, keys(s.text(sellerChat, "25:00")))
	s.Equal([]string{"product.ask_available_until"}, keys(s.text(sellerChat, "09.00")))
	s.Equal([]string{"product.ask_quantity_choice"}, keys(s.text(sellerChat, "08:30")))

	// Free text does not advance the button step.
	replies := s.text(sellerChat, "5")
	s.Equal([]string{"product.ask_quantity_choice"}, keys(replies))
	s.True(replies[0].Keyboard.Inline)
	d := s.session(sellerChat).Draft.(*session.ProductDraft)
	s.Equal(session.StepQuantityChoice, d.Step)
	s.Nil(d.OriginalPrice)

	replies = s.action(sellerChat, ActionQuantity, quantitySkip)
	s.Equal([]string{"product.created", "menu.prompt"}, keys(replies))
	s.Equal(session.SceneIdle, s.session(sellerChat).Scene)
	s.Nil(s.session(sellerChat).Draft)

	products, err := s.store.Products().ListBySeller(s.ctx, seller.ID, domain.Page{})
	s.Require().NoError(err)
	s.Require().Len(products, 1)
	p := products[0]
	s.Equal(12000.0, p.Price)
	s.Nil(p.OriginalPrice)
	s.Nil(p.Quantity)
	s.True(p.AvailableFrom.Equal(time.Date(2025, 5, 2, 9, 0, 0, 0, s.loc)))
	s.True(p.AvailableUntil.Equal(time.Date(2025, 5, 2, 8, 30, 0, 0, s.loc)))
}

func (s *EngineTestSuite) TestProductFlowKeepsLaterTimesToday() {
	seller := s.registerSeller()

	s.text(sellerChat, "Mahsulot qoʻshish")
	s.text(sellerChat, "5000")
	s.text(sellerChat, "7000")
	s.text(sellerChat, "Somsa")
	s.text(sellerChat, "18:30")
	s.text(sellerChat, "21:00")
	s.Equal([]string{"product.ask_quantity"}, keys(s.action(sellerChat, ActionQuantity, quantityEnter)))
	s.Equal([]string{"product.invalid_quantity"}, keys(s.text(sellerChat, "0")))
	s.Equal([]string{"product.created", "menu.prompt"}, keys(s.text(sellerChat, "4")))

	products, err := s.store.Products().ListBySeller(s.ctx, seller.ID, domain.Page{})
	s.Require().NoError(err)
	s.Require().Len(products, 1)
	p := products[0]
	s.Require().NotNil(p.OriginalPrice)
	s.Equal(7000.0, *p.OriginalPrice)
	s.Require().NotNil(p.Quantity)
	s.Equal(4, *p.Quantity)
	s.True(p.AvailableFrom.Equal(time.Date(2025, 5, 1, 18, 30, 0, 0, s.loc)))
	s.True(p.AvailableUntil.Equal(time.Date(2025, 5, 1, 21, 0, 0, 0, s.loc)))
}

func (s *EngineTestSuite) TestActionOutsideItsSceneIsInvalid() {
	s.registerSeller()
	s.text(sellerChat, "Mahsulot qoʻshish")

	replies := s.action(sellerChat, ActionReserve, "whatever")
	s.Equal([]string{"error.invalid_format"}, keys(replies))
	s.Equal(session.SceneProductCreation, s.session(sellerChat).Scene)
}

func (s *EngineTestSuite) TestReserveNotifiesSeller() {
	seller := s.registerSeller()
	s.registerBuyer()
	p := s.addProduct(seller, "Lavash", 2*time.Hour)

	replies := s.action(buyerChat, ActionReserve, p.ID)
	s.Require().Len(replies, 2)
	s.Equal("booking.created", replies[0].Key)
	s.Equal(buyerChat, replies[0].ChatID)
	s.Equal(domain.LangRu, replies[0].Language)
	s.Regexp(`^[0-9A-F]{6}$`, replies[0].Args["code"])

	s.Equal("booking.seller_new", replies[1].Key)
	s.Equal(sellerChat, replies[1].ChatID)
	s.Equal(domain.LangUz, replies[1].Language)
	s.Equal("Ali", replies[1].Args["buyer"])
}

func (s *EngineTestSuite) TestReserveClosedProductIsNotFound() {
	seller := s.registerSeller()
	s.registerBuyer()
	p := s.addProduct(seller, "Lavash", -time.Minute)

	replies := s.action(buyerChat, ActionReserve, p.ID)
	s.Equal([]string{"error.not_found", "menu.prompt"}, keys(replies))
	s.Equal(session.SceneIdle, s.session(buyerChat).Scene)
}

func (s *EngineTestSuite) TestSellerConfirmsWithCode() {
	seller := s.registerSeller()
	buyer := s.registerBuyer()
	p := s.addProduct(seller, "Lavash", 2*time.Hour)
	b, err := s.bookings.Create(s.ctx, buyer.ID, seller.ID, p.ID)
	s.Require().NoError(err)

	replies := s.text(sellerChat, "Kutilayotgan bronlar")
	s.Equal([]string{"pending.card"}, keys(replies))
	btn := replies[0].Keyboard.Rows[0][0]
	s.Equal(ActionConfirm, btn.Action)
	s.Equal(b.ID, btn.Payload)

	s.Equal([]string{"confirm.ask_code"}, keys(s.action(sellerChat, btn.Action, btn.Payload)))
	s.Equal(session.SceneBookingConfirm, s.session(sellerChat).Scene)

	replies = s.text(sellerChat, "ZZZZZZ")
	s.Equal([]string{"confirm.wrong_code"}, keys(replies))
	s.Equal(session.SceneBookingConfirm, s.session(sellerChat).Scene)

	replies = s.text(sellerChat, " "+b.Code+" ")
	s.Equal([]string{"confirm.done", "booking.buyer_confirmed", "menu.prompt"}, keys(replies))
	s.Equal(buyerChat, replies[1].ChatID)
	s.Equal(domain.LangRu, replies[1].Language)

	stored, err := s.store.Bookings().GetByID(s.ctx, b.ID)
	s.Require().NoError(err)
	s.True(stored.IsConfirmedBySeller)
}

func (s *EngineTestSuite) TestBuyerCancelsBooking() {
	seller := s.registerSeller()
	s.registerBuyer()
	p := s.addProduct(seller, "Lavash", 2*time.Hour)
	s.action(buyerChat, ActionReserve, p.ID)

	replies := s.text(buyerChat, "Мои брони")
	s.Equal([]string{"bookings.card_pending"}, keys(replies))
	btn := replies[0].Keyboard.Rows[0][0]

	replies = s.action(buyerChat, btn.Action, btn.Payload)
	s.Equal([]string{"booking.cancelled", "booking.seller_cancelled"}, keys(replies))
	s.Equal("Lavash", replies[1].Args["description"])

	replies = s.action(buyerChat, btn.Action, btn.Payload)
	s.Equal([]string{"error.not_found", "menu.prompt"}, keys(replies))
}

func (s *EngineTestSuite) TestBrowsePaginates() {
	seller := s.registerSeller()
	s.registerBuyer()
	for i := 0; i < 7; i++ {
		s.now = s.now.Add(time.Second)
		s.addProduct(seller, "p", time.Hour)
	}

	replies := s.text(buyerChat, "Товары")
	s.Require().Len(replies, 6)
	nav := replies[5]
	s.Equal("list.page", nav.Key)
	s.Require().Len(nav.Keyboard.Rows[0], 1)
	next := nav.Keyboard.Rows[0][0]
	s.Equal("list.next", next.Label)
	s.Equal("products|1", next.Payload)

	replies = s.action(buyerChat, next.Action, next.Payload)
	s.Require().Len(replies, 3)
	s.Equal("list.prev", replies[2].Keyboard.Rows[0][0].Label)
	s.Equal(1, s.session(buyerChat).Cursors.ProductsPage)
}

func (s *EngineTestSuite) TestExpiredRepliesUseBuyerLanguage() {
	seller := s.registerSeller()
	buyer := s.registerBuyer()
	p := s.addProduct(seller, "Lavash", 2*time.Hour)
	b, err := s.bookings.Create(s.ctx, buyer.ID, seller.ID, p.ID)
	s.Require().NoError(err)

	replies := s.engine.ExpiredReplies(s.ctx, []domain.Booking{*b, {ID: "x", BuyerID: "ghost"}})
	s.Require().Len(replies, 1)
	s.Equal(buyerChat, replies[0].ChatID)
	s.Equal(domain.LangRu, replies[0].Language)
	s.Equal("booking.expired", replies[0].Key)
	s.Equal("Lavash", replies[0].Args["description"])
}

func TestEngineSuite(t *testing.T) {
	suite.Run(t, new(EngineTestSuite))
}
