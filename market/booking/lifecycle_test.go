package booking

import (
	"context"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	clockmocks "github.com/m3rciful/surplusbot/core/clock/mocks"
	"github.com/m3rciful/surplusbot/market/domain"
	"github.com/m3rciful/surplusbot/market/repository/memory"
)

type fixture struct {
	svc     *Service
	store   *memory.Store
	now     time.Time
	buyer   domain.User
	seller  domain.Seller
	product domain.Product
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	clk := clockmocks.NewMockClock(ctrl)

	f := &fixture{
		store: memory.New(),
		now:   time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC),
	}
	clk.EXPECT().Now().DoAndReturn(func() time.Time { return f.now }).AnyTimes()

	ctx := context.Background()
	f.buyer = domain.User{ID: uuid.NewString(), TelegramID: 1, Name: "Ali", Language: domain.LangUz}
	f.seller = domain.Seller{ID: uuid.NewString(), TelegramID: 2, BusinessName: "Non", Language: domain.LangUz}
	f.product = domain.Product{ID: uuid.NewString(), SellerID: f.seller.ID, Price: 5000, AvailableUntil: f.now.Add(8 * time.Hour)}
	require.NoError(t, f.store.Users().Create(ctx, &f.buyer))
	require.NoError(t, f.store.Sellers().Create(ctx, &f.seller))
	require.NoError(t, f.store.Products().Create(ctx, &f.product))

	svc, err := NewService(Config{
		Bookings: f.store.Bookings(),
		Users:    f.store.Users(),
		Sellers:  f.store.Sellers(),
		Products: f.store.Products(),
		Clock:    clk,
	})
	require.NoError(t, err)
	f.svc = svc
	return f
}

func (f *fixture) book(t *testing.T) *domain.Booking {
	t.Helper()
	b, err := f.svc.Create(context.Background(), f.buyer.ID, f.seller.ID, f.product.ID)
	require.NoError(t, err)
	return b
}

func TestNewCodeFormat(t *testing.T) {
	re := regexp.MustCompile(`^[0-9A-F]{6}$`)
	for i := 0; i < 200; i++ {
		code, err := NewCode()
		require.NoError(t, err)
		assert.Regexp(t, re, code)
	}
}

func TestCodesAreNeverReused(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	seen := make(map[string]struct{})
	for i := 0; i < 50; i++ {
		b := f.book(t)
		_, dup := seen[b.Code]
		require.False(t, dup, "code %s issued twice", b.Code)
		seen[b.Code] = struct{}{}
		// Deleting the booking must not release its code.
		_, err := f.svc.Cancel(ctx, b.ID, f.buyer.ID)
		require.NoError(t, err)
	}

	for code := range seen {
		err := f.store.Bookings().Create(ctx, &domain.Booking{ID: uuid.NewString(), Code: code})
		assert.ErrorIs(t, err, domain.ErrCodeTaken)
	}
}

func TestConfirmIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.book(t)

	first, err := f.svc.ConfirmBySeller(ctx, b.ID, f.seller.ID, b.Code)
	require.NoError(t, err)
	second, err := f.svc.ConfirmBySeller(ctx, b.ID, f.seller.ID, b.Code)
	require.NoError(t, err)

	assert.True(t, first.IsConfirmedBySeller)
	assert.Equal(t, first, second)
}

func TestCancelByNonOwnerKeepsBooking(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.book(t)

	_, err := f.svc.Cancel(ctx, b.ID, uuid.NewString())
	require.ErrorIs(t, err, domain.ErrOwnership)

	stored, err := f.store.Bookings().GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, b.Code, stored.Code)
}

func TestExpireStaleSelectsOnlyOldUnconfirmed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	start := f.now
	old := f.book(t)
	oldConfirmed := f.book(t)
	_, err := f.svc.ConfirmBySeller(ctx, oldConfirmed.ID, f.seller.ID, oldConfirmed.Code)
	require.NoError(t, err)

	f.now = start.Add(24 * time.Hour)
	fresh := f.book(t)

	f.now = start.Add(25 * time.Hour)
	expired, err := f.svc.ExpireStale(ctx, 24)
	require.NoError(t, err)
	require.Len(t, expired, 1)
	assert.Equal(t, old.ID, expired[0].ID)

	_, err = f.store.Bookings().GetByID(ctx, old.ID)
	assert.ErrorIs(t, err, domain.ErrBookingNotFound)
	_, err = f.store.Bookings().GetByID(ctx, oldConfirmed.ID)
	assert.NoError(t, err)
	_, err = f.store.Bookings().GetByID(ctx, fresh.ID)
	assert.NoError(t, err)
}

func TestConfirmAfterSweepIsNotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.book(t)

	f.now = f.now.Add(48 * time.Hour)
	_, err := f.svc.ExpireStale(ctx, 24)
	require.NoError(t, err)

	_, err = f.svc.ConfirmBySeller(ctx, b.ID, f.seller.ID, b.Code)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestConfirmRacingSweepNeverLeavesConfirmedRowDeleted(t *testing.T) {
	for i := 0; i < 20; i++ {
		f := newFixture(t)
		ctx := context.Background()
		b := f.book(t)
		f.now = f.now.Add(48 * time.Hour)

		var (
			wg         sync.WaitGroup
			confirmErr error
			expired    []domain.Booking
		)
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, confirmErr = f.svc.ConfirmBySeller(ctx, b.ID, f.seller.ID, b.Code)
		}()
		go func() {
			defer wg.Done()
			expired, _ = f.svc.ExpireStale(ctx, 24)
		}()
		wg.Wait()

		stored, err := f.store.Bookings().GetByID(ctx, b.ID)
		if confirmErr == nil {
			require.NoError(t, err)
			assert.True(t, stored.IsConfirmedBySeller)
			assert.Empty(t, expired)
		} else {
			assert.ErrorIs(t, confirmErr, domain.ErrNotFound)
			assert.ErrorIs(t, err, domain.ErrBookingNotFound)
			assert.Len(t, expired, 1)
		}
	}
}

type recordingNotifier struct {
	mu    sync.Mutex
	batch [][]domain.Booking
}

func (n *recordingNotifier) BookingsExpired(_ context.Context, expired []domain.Booking) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.batch = append(n.batch, expired)
}

func TestSweeperRunOnceNotifies(t *testing.T) {
	f := newFixture(t)
	b := f.book(t)
	f.now = f.now.Add(30 * time.Hour)

	n := &recordingNotifier{}
	sw, err := NewSweeper(SweeperConfig{Expirer: f.svc, Notifier: n, ThresholdHours: 24, Interval: time.Minute})
	require.NoError(t, err)

	count, err := sw.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	require.Len(t, n.batch, 1)
	assert.Equal(t, b.ID, n.batch[0][0].ID)

	count, err = sw.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.Len(t, n.batch, 1)
}

func TestSweeperConfigValidation(t *testing.T) {
	f := newFixture(t)
	_, err := NewSweeper(SweeperConfig{Expirer: f.svc, Interval: time.Minute})
	assert.Error(t, err)
	_, err = NewSweeper(SweeperConfig{Expirer: f.svc, ThresholdHours: 24})
	assert.Error(t, err)
	_, err = NewSweeper(SweeperConfig{ThresholdHours: 24, Interval: time.Minute})
	assert.Error(t, err)
}

func TestSweeperStartStop(t *testing.T) {
	f := newFixture(t)
	sw, err := NewSweeper(SweeperConfig{Expirer: f.svc, ThresholdHours: 24, Interval: time.Hour})
	require.NoError(t, err)

	sw.Start()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, sw.Stop(ctx))
}
