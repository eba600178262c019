package cmd

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coreconfig "github.com/m3rciful/surplusbot/core/config"
	coretelegram "github.com/m3rciful/surplusbot/core/telegram"
)

type stubConfig struct{ core *coreconfig.Config }

func (s stubConfig) CoreConfig() *coreconfig.Config { return s.core }

type stubApp struct {
	closed bool
	err    error
}

func (a *stubApp) TelegramRunOptions() (coretelegram.RunOptions, error) {
	return coretelegram.RunOptions{}, a.err
}

func (a *stubApp) Close() error {
	a.closed = true
	return nil
}

func baseOptions(app *stubApp) Options {
	return Options{
		DefaultConfigPath: "config.yaml",
		LoadConfig: func(string) (ConfigCarrier, error) {
			return stubConfig{core: &coreconfig.Config{}}, nil
		},
		Bootstrap:      func(ConfigCarrier) (TelegramApp, error) { return app, nil },
		ShutdownLogger: func() error { return nil },
		Context:        context.Background(),
	}
}

func TestRunInvokesHooksAndCloses(t *testing.T) {
	app := &stubApp{}
	opts := baseOptions(app)
	var started, stopped bool
	opts.RunTelegram = func(ctx context.Context, ro coretelegram.RunOptions) error {
		require.NoError(t, ro.OnStart(ctx, coretelegram.Runtime{}))
		started = true
		require.NoError(t, ro.OnStop(ctx, coretelegram.Runtime{}))
		stopped = true
		return nil
	}

	require.NoError(t, Run(opts))
	assert.True(t, started)
	assert.True(t, stopped)
	assert.True(t, app.closed)
}

func TestRunRequiresLoader(t *testing.T) {
	err := Run(Options{})
	assert.Error(t, err)
}

func TestRunPropagatesOptionsError(t *testing.T) {
	app := &stubApp{err: errors.New("no token")}
	opts := baseOptions(app)
	opts.RunTelegram = func(context.Context, coretelegram.RunOptions) error {
		t.Fatal("must not run")
		return nil
	}

	err := Run(opts)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no token")
	assert.True(t, app.closed)
}

func TestRunMissingCoreConfig(t *testing.T) {
	opts := baseOptions(&stubApp{})
	opts.LoadConfig = func(string) (ConfigCarrier, error) { return stubConfig{}, nil }
	assert.Error(t, Run(opts))
}
