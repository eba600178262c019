package bootstrap

import (
	"errors"
	"io/fs"
	"testing"
	"testing/fstest"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coreconfig "github.com/m3rciful/surplusbot/core/config"
	coredatabase "github.com/m3rciful/surplusbot/core/database"
)

func noLogger(*coreconfig.Config) error { return nil }

func TestRunWithoutDatabase(t *testing.T) {
	res, err := Run(Options{
		Config:     &coreconfig.Config{},
		LoggerInit: noLogger,
		Connect: func(coredatabase.Config) (*sqlx.DB, error) {
			t.Fatal("connect must not be called without database config")
			return nil, nil
		},
	})
	require.NoError(t, err)
	assert.Nil(t, res.DB)
}

func TestRunPropagatesConnectError(t *testing.T) {
	boom := errors.New("refused")
	_, err := Run(Options{
		Config:     &coreconfig.Config{},
		Database:   &coredatabase.Config{Host: "localhost"},
		LoggerInit: noLogger,
		Connect: func(coredatabase.Config) (*sqlx.DB, error) {
			return nil, boom
		},
	})
	require.ErrorIs(t, err, boom)
}

func TestRunRequiresConfig(t *testing.T) {
	_, err := Run(Options{})
	require.Error(t, err)
}

func TestRunLoggerFailure(t *testing.T) {
	_, err := Run(Options{
		Config:     &coreconfig.Config{},
		LoggerInit: func(*coreconfig.Config) error { return errors.New("no sink") },
		Migrations: fstest.MapFS{},
		Migrate: func(coredatabase.Config, fs.FS, string) error {
			t.Fatal("migrate must not run")
			return nil
		},
	})
	require.ErrorContains(t, err, "logger init failed")
}
