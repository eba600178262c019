package logger

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"
)

type bufWriter struct{ bytes.Buffer }

func (b *bufWriter) Write(p []byte) error {
	_, err := b.Buffer.Write(p)
	return err
}

func newTestLogger(format logFormat) (*slog.Logger, *bufWriter) {
	buf := &bufWriter{}
	h := newStructuredHandler(handlerConfig{
		level:  slog.LevelDebug,
		writer: buf,
		format: format,
	})
	return slog.New(h), buf
}

func TestStructuredHandlerKVOrder(t *testing.T) {
	log, buf := newTestLogger(formatKV)
	ctx := WithRID(context.Background(), "rid-123")
	ctx = WithUpdateMeta(ctx, 42, 7, 9)

	LogEvent(ctx, log.With("component", "fsm"), slog.LevelInfo, "scene.enter",
		slog.String("status", "ok"),
		slog.String("cause", "unit"),
	)

	tokens := strings.Split(strings.TrimSpace(buf.String()), " ")
	expected := []string{"ts=", "level=INFO", "component=fsm", "event=scene.enter", "status=ok", "rid=rid-123", "update_id=42", "user_id=7", "chat_id=9"}
	if len(tokens) < len(expected) {
		t.Fatalf("unexpected token count: %d (%s)", len(tokens), buf.String())
	}
	for i, prefix := range expected {
		if !strings.HasPrefix(tokens[i], prefix) {
			t.Fatalf("token %d = %s, expected prefix %s", i, tokens[i], prefix)
		}
	}
}

func TestStructuredHandlerJSONOrder(t *testing.T) {
	log, buf := newTestLogger(formatJSON)
	ctx := WithScene(context.Background(), "product_creation")

	LogEvent(ctx, log.With("component", "service.bookings"), slog.LevelError, "booking.confirm",
		slog.String("status", "fail"),
		slog.String("booking_id", "b-1"),
		slog.String("err", "boom"),
	)

	line := strings.TrimSpace(buf.String())
	prefixes := []string{`{"ts":`, `"level":"ERROR"`, `"component":"service.bookings"`, `"event":"booking.confirm"`, `"status":"fail"`, `"scene":"product_creation"`, `"booking_id":"b-1"`, `"err":"boom"`}
	pos := -1
	for _, pref := range prefixes {
		idx := strings.Index(line, pref)
		if idx == -1 || idx < pos {
			t.Fatalf("prefix %s not found in order within %s", pref, line)
		}
		pos = idx
	}
}

func TestStructuredHandlerCompactRID(t *testing.T) {
	log, buf := newTestLogger(formatJSON)
	raw := "12:34:56"
	LogEvent(WithRID(context.Background(), raw), log, slog.LevelInfo, "rid.test")

	line := buf.String()
	if !strings.Contains(line, `"rid":"`+CompactRID(raw)+`"`) {
		t.Fatalf("expected compact rid, got %s", line)
	}
	if !strings.Contains(line, `"rid_full":"`+raw+`"`) {
		t.Fatalf("expected rid_full in JSON output, got %s", line)
	}
	if !strings.Contains(line, `"component":"app"`) {
		t.Fatalf("expected default component, got %s", line)
	}
}

func TestStructuredHandlerDurations(t *testing.T) {
	log, buf := newTestLogger(formatKV)
	log.Info("sweep.done", slog.Duration("duration", 1500*time.Microsecond), slog.Duration("lock_wait", 3*time.Millisecond))

	line := buf.String()
	if !strings.Contains(line, "duration_ms=2") {
		t.Fatalf("expected rounded duration_ms, got %s", line)
	}
	if !strings.Contains(line, "lock_wait_ms=3") {
		t.Fatalf("expected lock_wait_ms, got %s", line)
	}
}

func TestCompactRIDPassthrough(t *testing.T) {
	if got := CompactRID("not-a-rid"); got != "not-a-rid" {
		t.Fatalf("expected passthrough, got %s", got)
	}
	if got := CompactRID("35:36:1"); got != "z.10.1" {
		t.Fatalf("unexpected compact rid %s", got)
	}
}

func TestRatioSampler(t *testing.T) {
	s := newRatioSampler(1, 3)
	var allowed int
	for i := 0; i < 9; i++ {
		if s.Allow() {
			allowed++
		}
	}
	if allowed != 3 {
		t.Fatalf("expected 3 allowed, got %d", allowed)
	}

	s.Set(0, 0)
	if !s.Allow() {
		t.Fatal("disabled sampler must allow everything")
	}
}
