package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/m3rciful/surplusbot/core/clock/mocks"
	"github.com/m3rciful/surplusbot/market/domain"
)

func TestUpdateCreatesSessionInLanguageScene(t *testing.T) {
	ctrl := gomock.NewController(t)
	now := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	clk := mocks.NewMockClock(ctrl)
	clk.EXPECT().Now().Return(now).AnyTimes()

	store := NewStore(NewMemoryBackend(), clk)
	var seen Scene
	require.NoError(t, store.Update(context.Background(), 10, func(s *Session) error {
		seen = s.Scene
		s.Language = domain.LangRu
		return nil
	}))
	assert.Equal(t, SceneLanguage, seen)

	got, err := store.Get(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, domain.LangRu, got.Language)
	assert.Equal(t, int64(10), got.ChatID)
	assert.True(t, now.Equal(got.UpdatedAt))
}

func TestUpdateDoesNotStoreOnError(t *testing.T) {
	store := NewStore(NewMemoryBackend(), nil)
	boom := errors.New("boom")
	err := store.Update(context.Background(), 1, func(s *Session) error {
		s.Scene = SceneIdle
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, err := store.Get(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, SceneLanguage, got.Scene)
}

func TestUpdateSerializesPerChat(t *testing.T) {
	store := NewStore(NewMemoryBackend(), nil)
	const workers = 50

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = store.Update(context.Background(), 7, func(s *Session) error {
				page := s.Cursors.ProductsPage
				time.Sleep(time.Millisecond)
				s.Cursors.ProductsPage = page + 1
				return nil
			})
		}()
		go func() {
			defer wg.Done()
			_ = store.Update(context.Background(), 8, func(s *Session) error {
				s.Cursors.BookingsPage++
				return nil
			})
		}()
	}
	wg.Wait()

	a, err := store.Get(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, workers, a.Cursors.ProductsPage)
	b, err := store.Get(context.Background(), 8)
	require.NoError(t, err)
	assert.Equal(t, workers, b.Cursors.BookingsPage)
	assert.Zero(t, store.locks.size())
}

func TestDraftSurvivesEncoding(t *testing.T) {
	price := 12000.0
	qty := 3
	s := &Session{
		ChatID: 5,
		Scene:  SceneProductCreation,
		Draft: &ProductDraft{
			Step:           StepQuantity,
			Price:          9000,
			OriginalPrice:  &price,
			Description:    "Non",
			AvailableFrom:  "09:00",
			AvailableUntil: "18:30",
			Quantity:       &qty,
		},
	}
	data, err := Marshal(s)
	require.NoError(t, err)

	got, err := Unmarshal(data)
	require.NoError(t, err)
	assert.Equal(t, s.Draft, got.Draft)

	got, err = Unmarshal([]byte(`{"chat_id":1,"scene":"idle"}`))
	require.NoError(t, err)
	assert.Nil(t, got.Draft)

	_, err = Unmarshal([]byte(`{"chat_id":1,"draft":{"kind":"unknown","data":{}}}`))
	assert.Error(t, err)
}

func TestUpdateResetsUnreadableSession(t *testing.T) {
	ctx := context.Background()
	backend := NewMemoryBackend()
	for chatID, raw := range map[int64]string{
		777: `{"chat_id":777,"language":"ru","scene":"idle","draft":{"kind":"legacy","data":{"step":"x"}}}`,
		778: `{"chat_id":778,"scene":`,
	} {
		require.NoError(t, backend.Save(ctx, chatID, []byte(raw)))
	}
	store := NewStore(backend, nil)

	for _, chatID := range []int64{777, 778} {
		var seen *Session
		require.NoError(t, store.Update(ctx, chatID, func(s *Session) error {
			seen = s
			s.Language = domain.LangUz
			s.Scene = SceneRole
			return nil
		}))
		assert.Equal(t, SceneLanguage, seen.Scene)
		assert.Nil(t, seen.Draft)

		got, err := store.Get(ctx, chatID)
		require.NoError(t, err)
		assert.Equal(t, SceneRole, got.Scene)
		assert.Equal(t, domain.LangUz, got.Language)
		assert.Equal(t, chatID, got.ChatID)
	}
}
