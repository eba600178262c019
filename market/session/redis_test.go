package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/m3rciful/surplusbot/market/domain"
)

type RedisBackendTestSuite struct {
	suite.Suite
	mr     *miniredis.Miniredis
	client *redis.Client
	store  *Store
}

func (s *RedisBackendTestSuite) SetupTest() {
	mr, err := miniredis.Run()
	s.Require().NoError(err)
	s.mr = mr
	s.client = redis.NewClient(&redis.Options{Addr: mr.Addr()})

	backend, err := NewRedisBackend(context.Background(), RedisConfig{Client: s.client, TTL: time.Hour})
	s.Require().NoError(err)
	s.store = NewStore(backend, nil)
}

func (s *RedisBackendTestSuite) TearDownTest() {
	s.client.Close()
	s.mr.Close()
}

func TestRedisBackendTestSuite(t *testing.T) {
	suite.Run(t, new(RedisBackendTestSuite))
}

func (s *RedisBackendTestSuite) TestRoundTrip() {
	ctx := context.Background()
	s.Require().NoError(s.store.Update(ctx, 42, func(sess *Session) error {
		sess.Language = domain.LangUz
		sess.Role = domain.RoleSeller
		sess.Scene = SceneSellerRegistration
		sess.Draft = &RegistrationDraft{Step: StepPhone, Name: "Non Uyi"}
		return nil
	}))

	s.True(s.mr.Exists(sessionKey(42)))
	got, err := s.store.Get(ctx, 42)
	s.Require().NoError(err)
	s.Equal(domain.LangUz, got.Language)
	s.Equal(SceneSellerRegistration, got.Scene)
	s.Equal(&RegistrationDraft{Step: StepPhone, Name: "Non Uyi"}, got.Draft)
}

func (s *RedisBackendTestSuite) TestExpiresAfterTTL() {
	ctx := context.Background()
	s.Require().NoError(s.store.Update(ctx, 1, func(sess *Session) error {
		sess.Scene = SceneIdle
		return nil
	}))

	s.mr.FastForward(2 * time.Hour)

	got, err := s.store.Get(ctx, 1)
	s.Require().NoError(err)
	s.Equal(SceneLanguage, got.Scene)
}

func (s *RedisBackendTestSuite) TestLoadErrorSurfaces() {
	s.mr.Close()
	_, err := s.store.Get(context.Background(), 1)
	s.Error(err)
}

func TestNewRedisBackendRequiresClient(t *testing.T) {
	_, err := NewRedisBackend(context.Background(), RedisConfig{})
	if err == nil {
		t.Fatal("expected error for nil client")
	}
}
