package logger

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"
)

type logFormat string

const (
	formatJSON logFormat = "json"
	formatKV   logFormat = "kv"

	timeFormatMillis = "2006-01-02T15:04:05.000Z07:00"
)

var defaultKeyOrder = []string{
	"ts", "level", "component", "event", "status", "rid", "rid_full",
	"update_id", "user_id", "chat_id", "scene", "handler", "cb_key",
	"outcome", "duration_ms", "messages", "kb", "count", "page", "payload",
	"lang", "mode", "listen", "public_url", "db", "host", "port",
	"booking_id", "product_id", "seller_id", "buyer_id",
	"err", "err_code", "cause", "attempts",
}

type lineWriter interface {
	Write(p []byte) error
}

type handlerConfig struct {
	level    slog.Leveler
	writer   lineWriter
	format   logFormat
	keyOrder []string
}

// structuredHandler renders flat records with a stable key order.
type structuredHandler struct {
	cfg    handlerConfig
	attrs  []slog.Attr
	groups []string
}

func newStructuredHandler(cfg handlerConfig) *structuredHandler {
	if cfg.level == nil {
		cfg.level = slog.LevelInfo
	}
	if cfg.keyOrder == nil {
		cfg.keyOrder = append([]string(nil), defaultKeyOrder...)
	}
	return &structuredHandler{cfg: cfg}
}

func (h *structuredHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.cfg.level.Level()
}

func (h *structuredHandler) Handle(ctx context.Context, r slog.Record) error {
	if h.cfg.writer == nil {
		return fmt.Errorf("logger: writer not initialized")
	}
	isJSON := h.cfg.format == formatJSON

	fields := make(map[string]any, 16)
	ts := r.Time.UTC()
	fields["ts"] = ts.Truncate(time.Millisecond).Format(timeFormatMillis)
	fields["level"] = r.Level.String()

	prefix := strings.Join(h.groups, ".")
	for _, a := range h.attrs {
		collect(fields, prefix, a)
	}
	r.Attrs(func(a slog.Attr) bool {
		collect(fields, prefix, a)
		return true
	})
	addContextFields(ctx, fields)

	if rid, ok := fields["rid"].(string); ok && rid != "" {
		if compact := CompactRID(rid); compact != rid {
			if isJSON {
				fields["rid_full"] = rid
			}
			fields["rid"] = compact
		}
	}
	if ev, _ := fields["event"].(string); ev == "" {
		fields["event"] = r.Message
		if r.Message == "" {
			fields["event"] = "unknown"
		}
	}
	if c, _ := fields["component"].(string); c == "" {
		fields["component"] = "app"
	}
	for k, v := range fields {
		if s, ok := v.(string); ok && s == "" {
			delete(fields, k)
		}
	}

	keys := orderedKeys(fields, h.cfg.keyOrder)
	var line []byte
	if isJSON {
		var err error
		if line, err = formatJSONLine(fields, keys); err != nil {
			return err
		}
	} else {
		line = formatKVLine(fields, keys)
	}
	return h.cfg.writer.Write(append(line, '\n'))
}

func (h *structuredHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append(append([]slog.Attr(nil), h.attrs...), attrs...)
	return &clone
}

func (h *structuredHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.groups = append(append([]string(nil), h.groups...), name)
	return &clone
}

func collect(fields map[string]any, prefix string, a slog.Attr) {
	key := a.Key
	if prefix != "" && key != "" {
		key = prefix + "." + key
	} else if key == "" {
		key = prefix
	}
	v := a.Value.Resolve()
	if v.Kind() == slog.KindGroup {
		for _, child := range v.Group() {
			collect(fields, key, child)
		}
		return
	}
	if key == "" {
		return
	}
	if k, val, ok := normalizeValue(key, v); ok {
		fields[k] = val
	}
}

func normalizeValue(key string, v slog.Value) (string, any, bool) {
	switch v.Kind() {
	case slog.KindString:
		return key, strings.TrimSpace(v.String()), true
	case slog.KindBool:
		return key, v.Bool(), true
	case slog.KindInt64:
		return key, v.Int64(), true
	case slog.KindUint64:
		return key, v.Uint64(), true
	case slog.KindFloat64:
		return key, v.Float64(), true
	case slog.KindDuration:
		return durationKey(key), RoundMS(v.Duration()).Milliseconds(), true
	case slog.KindTime:
		return key, v.Time().UTC().Format(time.RFC3339Nano), true
	}
	switch x := v.Any().(type) {
	case nil:
		return key, nil, false
	case error:
		return key, x.Error(), true
	case fmt.Stringer:
		return key, x.String(), true
	default:
		return key, fmt.Sprint(x), true
	}
}

// durationKey maps "duration" and "x_duration" onto millisecond keys.
func durationKey(key string) string {
	switch {
	case key == "duration":
		return "duration_ms"
	case strings.HasSuffix(key, "_ms"):
		return key
	default:
		return key + "_ms"
	}
}

func addContextFields(ctx context.Context, fields map[string]any) {
	if ctx == nil {
		return
	}
	setIfAbsent := func(k string, v any, present bool) {
		if _, ok := fields[k]; !ok && present {
			fields[k] = v
		}
	}
	rid := RIDFrom(ctx)
	setIfAbsent("rid", rid, rid != "")
	uid := UserIDFrom(ctx)
	setIfAbsent("user_id", uid, uid != 0)
	cid := ChatIDFrom(ctx)
	setIfAbsent("chat_id", cid, cid != 0)
	upd := UpdateIDFrom(ctx)
	setIfAbsent("update_id", upd, upd != 0)
	handler := HandlerFrom(ctx)
	setIfAbsent("handler", handler, handler != "")
	scene := SceneFrom(ctx)
	setIfAbsent("scene", scene, scene != "")
}

func orderedKeys(fields map[string]any, order []string) []string {
	keys := make([]string, 0, len(fields))
	seen := make(map[string]struct{}, len(fields))
	for _, k := range order {
		if _, ok := fields[k]; ok {
			keys = append(keys, k)
			seen[k] = struct{}{}
		}
	}
	rest := make([]string, 0, len(fields)-len(keys))
	for k := range fields {
		if _, ok := seen[k]; !ok {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	return append(keys, rest...)
}

func formatJSONLine(fields map[string]any, keys []string) ([]byte, error) {
	var b strings.Builder
	b.WriteByte('{')
	for i, k := range keys {
		data, err := json.Marshal(fields[k])
		if err != nil {
			return nil, err
		}
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Quote(k))
		b.WriteByte(':')
		b.Write(data)
	}
	b.WriteByte('}')
	return []byte(b.String()), nil
}

func formatKVLine(fields map[string]any, keys []string) []byte {
	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(k)
		b.WriteByte('=')
		s := fmt.Sprint(fields[k])
		if strings.IndexFunc(s, needsQuote) >= 0 {
			s = strconv.Quote(s)
		}
		b.WriteString(s)
	}
	return []byte(b.String())
}

func needsQuote(r rune) bool {
	return r <= ' ' || r == '=' || r == '"'
}
