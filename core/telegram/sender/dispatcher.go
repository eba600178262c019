package sender

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"regexp"
	"sync"
	"sync/atomic"
	"time"

	"github.com/m3rciful/surplusbot/core/logger"
	"github.com/m3rciful/surplusbot/core/telegram/netutil"

	tele "gopkg.in/telebot.v4"
)

var (
	// ErrQueueClosed is returned when enqueue is attempted after dispatcher stop.
	ErrQueueClosed = errors.New("telegram sender: queue closed")
	// ErrQueueFull indicates the queue is saturated and the job was not accepted.
	ErrQueueFull = errors.New("telegram sender: queue full")

	tokenRe = regexp.MustCompile(`bot[0-9]+:[A-Za-z0-9_-]+`)
)

// Options controls the behaviour of the outbound dispatcher.
type Options struct {
	// QueueSize is the buffer of each worker queue.
	QueueSize    int
	Workers      int
	MaxRetries   int
	RetryBackoff time.Duration
	// MaxDuration bounds the time spent retrying a single job.
	MaxDuration time.Duration
}

type job struct {
	ctx    context.Context
	chatID int64
	action string
	run    func() error
}

// Dispatcher executes outbound Telegram calls asynchronously with retries.
// Jobs for the same chat always land on the same worker, so messages to one
// chat are delivered in the order they were enqueued.
type Dispatcher struct {
	opts   Options
	queues []chan job
	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
	errs   atomic.Uint64
}

// NewDispatcher starts a dispatcher with sane defaults if options are zeroed.
func NewDispatcher(opts Options) *Dispatcher {
	if opts.QueueSize <= 0 {
		opts.QueueSize = 64
	}
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if opts.RetryBackoff <= 0 {
		opts.RetryBackoff = 2 * time.Second
	}
	if opts.MaxDuration <= 0 {
		opts.MaxDuration = 12 * time.Second
	}

	d := &Dispatcher{opts: opts, queues: make([]chan job, opts.Workers)}
	d.wg.Add(opts.Workers)
	for i := range d.queues {
		d.queues[i] = make(chan job, opts.QueueSize)
		go d.worker(d.queues[i])
	}
	return d
}

// Enqueue schedules run for asynchronous execution on the worker owning chatID.
// The run closure must be idempotent if retries are desired.
func (d *Dispatcher) Enqueue(ctx context.Context, chatID int64, action string, run func() error) error {
	if run == nil {
		return errors.New("telegram sender: nil run function")
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return ErrQueueClosed
	}

	j := job{ctx: ctx, chatID: chatID, action: action, run: run}
	select {
	case d.queues[d.shard(chatID)] <- j:
		return nil
	default:
		return ErrQueueFull
	}
}

func (d *Dispatcher) shard(chatID int64) int {
	if chatID < 0 {
		chatID = -chatID
	}
	return int(chatID % int64(len(d.queues)))
}

// ErrorCount returns the number of failed jobs.
func (d *Dispatcher) ErrorCount() uint64 {
	return d.errs.Load()
}

// Close stops accepting jobs and waits for queued ones to finish.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	for _, q := range d.queues {
		close(q)
	}
	d.mu.Unlock()
	d.wg.Wait()
}

func (d *Dispatcher) worker(queue <-chan job) {
	defer d.wg.Done()
	for j := range queue {
		d.handleJob(j)
	}
}

func (d *Dispatcher) handleJob(j job) {
	ctx := j.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	deadlineCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.opts.MaxDuration)
	defer cancel()

	start := time.Now()
	attempts := d.opts.MaxRetries + 1
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if lastErr = j.run(); lastErr == nil {
			logger.Debug(ctx, "tg.sender", "send.success", append(jobAttrs(j),
				slog.Int("attempt", attempt),
				slog.Duration("elapsed", time.Since(start)),
			)...)
			return
		}
		if !netutil.ShouldRetry(lastErr) || attempt == attempts {
			break
		}

		delay := d.opts.RetryBackoff * time.Duration(attempt)
		if wait := floodWait(lastErr); wait > delay {
			delay = wait
		}
		timer := time.NewTimer(delay)
		select {
		case <-deadlineCtx.Done():
			timer.Stop()
			lastErr = deadlineCtx.Err()
			attempt = attempts
		case <-timer.C:
			logger.Debug(ctx, "tg.sender", "send.retry.backoff", append(jobAttrs(j),
				slog.Int("attempt", attempt),
				slog.Duration("delay", delay),
			)...)
		}
	}

	d.errs.Add(1)
	logger.Error(ctx, "tg.sender", "send.fail", append(jobAttrs(j),
		slog.String("err", sanitizeErrorMessage(lastErr)),
		slog.Int("http_code", httpStatusFromError(lastErr)),
		slog.Int("attempts", attempts),
		slog.Duration("elapsed", time.Since(start)),
	)...)
}

func jobAttrs(j job) []slog.Attr {
	return []slog.Attr{
		slog.String("action", j.action),
		slog.Int64("chat_id", j.chatID),
	}
}

func floodWait(err error) time.Duration {
	var flood tele.FloodError
	if errors.As(err, &flood) && flood.RetryAfter > 0 {
		return time.Duration(flood.RetryAfter) * time.Second
	}
	return 0
}

// sanitizeErrorMessage prevents accidental leakage of Telegram bot tokens in logs.
func sanitizeErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	return tokenRe.ReplaceAllString(err.Error(), "bot<redacted>")
}

func httpStatusFromError(err error) int {
	var apiErr *tele.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	var flood tele.FloodError
	if errors.As(err, &flood) {
		return http.StatusTooManyRequests
	}
	return 0
}
