package telegram

import (
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/m3rciful/surplusbot/core/logger"
	"github.com/m3rciful/surplusbot/core/telegram/netutil"
)

// HTTPOptions tunes the client used for Bot API calls. Zero values select defaults.
type HTTPOptions struct {
	DialTimeout     time.Duration
	ResponseTimeout time.Duration
	ClientTimeout   time.Duration
	Retries         int
	RetryBackoff    time.Duration
}

func (o HTTPOptions) withDefaults() HTTPOptions {
	if o.DialTimeout <= 0 {
		o.DialTimeout = 5 * time.Second
	}
	if o.ResponseTimeout <= 0 {
		o.ResponseTimeout = 5 * time.Second
	}
	if o.ClientTimeout <= 0 {
		o.ClientTimeout = 30 * time.Second
	}
	if o.Retries < 0 {
		o.Retries = 0
	}
	if o.RetryBackoff <= 0 {
		o.RetryBackoff = 2 * time.Second
	}
	return o
}

// BuildHTTPClient returns an HTTP client tuned for Telegram API calls.
// The client timeout must exceed the long poll timeout, otherwise getUpdates
// is cut short on every idle cycle.
func BuildHTTPClient(opts HTTPOptions) *http.Client {
	opts = opts.withDefaults()
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: opts.DialTimeout, KeepAlive: 30 * time.Second}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       30 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ExpectContinueTimeout: time.Second,
	}

	return &http.Client{
		Timeout: opts.ClientTimeout,
		Transport: &retryTransport{
			base:       transport,
			maxRetries: opts.Retries,
			backoff:    opts.RetryBackoff,
		},
	}
}

type retryTransport struct {
	base       http.RoundTripper
	maxRetries int
	backoff    time.Duration
}

func (t *retryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}
	attempts := t.maxRetries + 1

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		curr := req
		if attempt > 1 {
			// Bodies without GetBody cannot be replayed.
			if req.Body != nil && req.GetBody == nil {
				return nil, lastErr
			}
			curr = req.Clone(req.Context())
			if req.GetBody != nil {
				body, err := req.GetBody()
				if err != nil {
					return nil, err
				}
				curr.Body = body
			}
		}

		resp, err := base.RoundTrip(curr)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if !netutil.ShouldRetry(err) || attempt == attempts {
			break
		}

		delay := t.backoff * time.Duration(attempt)
		logger.TG.Debug("bot api retry",
			slog.String("event", "http.retry"),
			slog.Int("attempt", attempt),
			slog.Duration("delay", delay),
			slog.String("err", logger.Sanitize(err.Error())),
		)
		timer := time.NewTimer(delay)
		select {
		case <-req.Context().Done():
			timer.Stop()
			return nil, req.Context().Err()
		case <-timer.C:
		}
	}
	return nil, lastErr
}
