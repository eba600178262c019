package scene

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	clockmocks "github.com/m3rciful/surplusbot/core/clock/mocks"
	"github.com/m3rciful/surplusbot/market/booking"
	"github.com/m3rciful/surplusbot/market/domain"
	"github.com/m3rciful/surplusbot/market/locale"
	"github.com/m3rciful/surplusbot/market/repository/mocks"
	"github.com/m3rciful/surplusbot/market/session"
)

// EngineFailureTestSuite drives the engine against repositories that fail.
type EngineFailureTestSuite struct {
	suite.Suite
	ctx          context.Context
	backend      *session.MemoryBackend
	sessions     *session.Store
	mockUsers    *mocks.MockUsers
	mockSellers  *mocks.MockSellers
	mockProducts *mocks.MockProducts
	mockBookings *mocks.MockBookings
	engine       *Engine
}

func (s *EngineFailureTestSuite) SetupTest() {
	ctrl := gomock.NewController(s.T())
	now := time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC)
	clk := clockmocks.NewMockClock(ctrl)
	clk.EXPECT().Now().Return(now).AnyTimes()

	s.ctx = context.Background()
	s.backend = session.NewMemoryBackend()
	s.sessions = session.NewStore(s.backend, nil)
	s.mockUsers = mocks.NewMockUsers(ctrl)
	s.mockSellers = mocks.NewMockSellers(ctrl)
	s.mockProducts = mocks.NewMockProducts(ctrl)
	s.mockBookings = mocks.NewMockBookings(ctrl)

	bookings, err := booking.NewService(booking.Config{
		Bookings: s.mockBookings,
		Users:    s.mockUsers,
		Sellers:  s.mockSellers,
		Products: s.mockProducts,
		Clock:    clk,
	})
	s.Require().NoError(err)

	s.engine, err = NewEngine(Config{
		Sessions: s.sessions,
		Users:    s.mockUsers,
		Sellers:  s.mockSellers,
		Products: s.mockProducts,
		Bookings: bookings,
		Labels:   locale.MustLoad(),
		Clock:    clk,
		Location: time.UTC,
		NewID:    func() string { return "id-1" },
	})
	s.Require().NoError(err)
}

func (s *EngineFailureTestSuite) seed(chat int64, role domain.Role, scene session.Scene, draft session.Draft) {
	s.Require().NoError(s.sessions.Update(s.ctx, chat, func(sess *session.Session) error {
		sess.Language = domain.LangUz
		sess.Role = role
		sess.Scene = scene
		sess.Draft = draft
		return nil
	}))
}

func (s *EngineFailureTestSuite) handle(ev Event) []Reply {
	ev.UserID = ev.ChatID
	replies, err := s.engine.Handle(s.ctx, ev)
	s.Require().NoError(err)
	return replies
}

func (s *EngineFailureTestSuite) requireIdleWithoutDraft(chat int64) {
	sess, err := s.sessions.Get(s.ctx, chat)
	s.Require().NoError(err)
	s.Equal(session.SceneIdle, sess.Scene)
	s.Nil(sess.Draft)
}

func (s *EngineFailureTestSuite) TestProductStoreFailureDropsDraft() {
	s.seed(sellerChat, domain.RoleSeller, session.SceneProductCreation, &session.ProductDraft{
		Step:           session.StepQuantityChoice,
		Price:          9000,
		Description:    "Non",
		AvailableFrom:  "09:00",
		AvailableUntil: "18:00",
	})
	s.mockSellers.EXPECT().GetByTelegramID(gomock.Any(), sellerChat).
		Return(&domain.Seller{ID: "s-1", TelegramID: sellerChat}, nil)
	s.mockProducts.EXPECT().Create(gomock.Any(), gomock.Any()).
		Return(domain.Persistence("insert product", errors.New("connection reset")))

	replies := s.handle(Event{ChatID: sellerChat, Kind: KindAction, Action: ActionQuantity, Payload: quantitySkip})
	s.Equal([]string{"error.try_again", "menu.prompt"}, keys(replies))
	s.requireIdleWithoutDraft(sellerChat)
}

func (s *EngineFailureTestSuite) TestSellerRegistrationStoreFailureDropsDraft() {
	s.seed(sellerChat, domain.RoleSeller, session.SceneSellerRegistration, &session.RegistrationDraft{
		Step:  session.StepAddress,
		Name:  "Non uyi",
		Phone: "+998901234567",
	})
	s.mockSellers.EXPECT().Create(gomock.Any(), gomock.Any()).
		Return(domain.Persistence("insert seller", errors.New("connection reset")))

	replies := s.handle(Event{ChatID: sellerChat, Kind: KindText, Text: "Chilonzor 5"})
	s.Equal([]string{"error.try_again", "menu.prompt"}, keys(replies))
	s.requireIdleWithoutDraft(sellerChat)
}

func (s *EngineFailureTestSuite) TestBuyerRegistrationStoreFailureDropsDraft() {
	s.seed(buyerChat, domain.RoleBuyer, session.SceneUserRegistration, &session.RegistrationDraft{
		Step: session.StepPhone,
		Name: "Ali",
	})
	s.mockUsers.EXPECT().Create(gomock.Any(), gomock.Any()).
		Return(domain.Persistence("insert user", errors.New("connection reset")))

	replies := s.handle(Event{ChatID: buyerChat, Kind: KindText, Text: "+998901112233"})
	s.Equal([]string{"error.try_again", "menu.prompt"}, keys(replies))
	s.requireIdleWithoutDraft(buyerChat)
}

func (s *EngineFailureTestSuite) TestCancelOfForeignBookingIsGeneric() {
	s.seed(buyerChat, domain.RoleBuyer, session.SceneIdle, nil)
	s.mockUsers.EXPECT().GetByTelegramID(gomock.Any(), buyerChat).
		Return(&domain.User{ID: "u-stranger", TelegramID: buyerChat}, nil)
	s.mockBookings.EXPECT().GetByID(gomock.Any(), "b-1").
		Return(&domain.Booking{ID: "b-1", BuyerID: "u-owner", SellerID: "s-1", ProductID: "p-1"}, nil)

	replies := s.handle(Event{ChatID: buyerChat, Kind: KindAction, Action: ActionCancel, Payload: "b-1"})
	s.Equal([]string{"error.generic", "menu.prompt"}, keys(replies))
	s.requireIdleWithoutDraft(buyerChat)
}

func (s *EngineFailureTestSuite) TestUnreadableSessionRestartsConversation() {
	const chat int64 = 777
	raw := `{"chat_id":777,"language":"uz","role":"seller","scene":"idle","draft":{"kind":"legacy","data":{}}}`
	s.Require().NoError(s.backend.Save(s.ctx, chat, []byte(raw)))

	replies := s.handle(Event{ChatID: chat, Kind: KindCommand, Text: CommandStart})
	s.Equal([]string{"language.prompt"}, keys(replies))

	replies = s.handle(Event{ChatID: chat, Kind: KindText, Text: "Oʻzbekcha"})
	s.Equal([]string{"language.saved", "role.prompt"}, keys(replies))

	sess, err := s.sessions.Get(s.ctx, chat)
	s.Require().NoError(err)
	s.Equal(session.SceneRole, sess.Scene)
	s.Equal(domain.LangUz, sess.Language)
	s.Nil(sess.Draft)
}

func TestEngineFailureSuite(t *testing.T) {
	suite.Run(t, new(EngineFailureTestSuite))
}
