package instrument

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/samber/lo"
	"go.opentelemetry.io/contrib/bridges/otelslog"
	sdklog "go.opentelemetry.io/otel/sdk/log"
)

const maskedValue = "***"

func initLogging(serviceName, level string, lp *sdklog.LoggerProvider, maskFields []string) {
	slog.SetDefault(slog.New(newHandler(os.Stdout, serviceName, level, lp, maskFields)))
}

func newHandler(w io.Writer, serviceName, level string, lp *sdklog.LoggerProvider, maskFields []string) slog.Handler {
	var handler slog.Handler = slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:       parseLevel(level),
		AddSource:   true,
		ReplaceAttr: replaceAttr,
	})

	if lp != nil {
		handler = &multiHandler{handlers: []slog.Handler{
			handler,
			otelslog.NewHandler(serviceName, otelslog.WithLoggerProvider(lp)),
		}}
	}

	return &contextHandler{
		Handler:     &maskHandler{handler: handler, maskKeys: buildMaskKeys(maskFields)},
		serviceName: serviceName,
	}
}

func parseLevel(level string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return slog.LevelInfo
	}
	return l
}

func replaceAttr(_ []string, a slog.Attr) slog.Attr {
	switch a.Key {
	case slog.TimeKey:
		a.Key = "ts"
	case slog.LevelKey:
		a.Key = "severity"
	case slog.SourceKey:
		src, ok := a.Value.Any().(*slog.Source)
		if !ok {
			return a
		}
		_, rel, found := strings.Cut(src.File, "/internal/")
		if !found {
			return slog.Attr{}
		}
		return slog.String("file", fmt.Sprintf("%s:%d", filepath.Join("internal", rel), src.Line))
	}
	return a
}

type contextHandler struct {
	slog.Handler
	serviceName string
}

func (h *contextHandler) Handle(ctx context.Context, r slog.Record) error {
	if cID := GetCorrelationID(ctx); cID != "" {
		r.AddAttrs(slog.String("_cID", cID))
	}
	r.AddAttrs(slog.String("service", h.serviceName))

	return h.Handler.Handle(ctx, r)
}

func (h *contextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &contextHandler{Handler: h.Handler.WithAttrs(attrs), serviceName: h.serviceName}
}

func (h *contextHandler) WithGroup(name string) slog.Handler {
	return &contextHandler{Handler: h.Handler.WithGroup(name), serviceName: h.serviceName}
}

type multiHandler struct {
	handlers []slog.Handler
}

func (m *multiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return lo.SomeBy(m.handlers, func(h slog.Handler) bool { return h.Enabled(ctx, level) })
}

func (m *multiHandler) Handle(ctx context.Context, record slog.Record) error {
	var firstErr error
	for _, handler := range m.handlers {
		if !handler.Enabled(ctx, record.Level) {
			continue
		}
		if err := handler.Handle(ctx, record.Clone()); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (m *multiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &multiHandler{handlers: lo.Map(m.handlers, func(h slog.Handler, _ int) slog.Handler {
		return h.WithAttrs(attrs)
	})}
}

func (m *multiHandler) WithGroup(name string) slog.Handler {
	return &multiHandler{handlers: lo.Map(m.handlers, func(h slog.Handler, _ int) slog.Handler {
		return h.WithGroup(name)
	})}
}

// maskHandler replaces the value of any attribute whose key is listed, at any
// depth, including keys inside JSON-looking string payloads.
type maskHandler struct {
	handler  slog.Handler
	maskKeys map[string]struct{}
}

func (h *maskHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

func (h *maskHandler) Handle(ctx context.Context, record slog.Record) error {
	if len(h.maskKeys) == 0 {
		return h.handler.Handle(ctx, record)
	}

	masked := slog.NewRecord(record.Time, record.Level, record.Message, record.PC)
	record.Attrs(func(attr slog.Attr) bool {
		masked.AddAttrs(h.mask(attr))
		return true
	})

	return h.handler.Handle(ctx, masked)
}

func (h *maskHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &maskHandler{
		handler:  h.handler.WithAttrs(lo.Map(attrs, func(a slog.Attr, _ int) slog.Attr { return h.mask(a) })),
		maskKeys: h.maskKeys,
	}
}

func (h *maskHandler) WithGroup(name string) slog.Handler {
	return &maskHandler{handler: h.handler.WithGroup(name), maskKeys: h.maskKeys}
}

func (h *maskHandler) masked(key string) bool {
	_, ok := h.maskKeys[strings.ToLower(key)]
	return ok
}

func (h *maskHandler) mask(attr slog.Attr) slog.Attr {
	if h.masked(attr.Key) {
		return slog.String(attr.Key, maskedValue)
	}

	switch attr.Value.Kind() {
	case slog.KindGroup:
		attr.Value = slog.GroupValue(lo.Map(attr.Value.Group(), func(a slog.Attr, _ int) slog.Attr {
			return h.mask(a)
		})...)
	case slog.KindString:
		if out, ok := h.maskJSON([]byte(attr.Value.String())); ok {
			attr.Value = slog.StringValue(out)
		}
	case slog.KindAny:
		switch v := attr.Value.Any().(type) {
		case map[string]any, []any:
			attr.Value = slog.AnyValue(h.maskData(v))
		case map[string]string:
			attr.Value = slog.AnyValue(h.maskData(lo.MapValues(v, func(s string, _ string) any { return s })))
		case []byte:
			if out, ok := h.maskJSON(v); ok {
				attr.Value = slog.StringValue(out)
			}
		}
	}

	return attr
}

func (h *maskHandler) maskJSON(payload []byte) (string, bool) {
	if len(payload) == 0 || (payload[0] != '{' && payload[0] != '[') {
		return "", false
	}

	var body any
	if err := json.Unmarshal(payload, &body); err != nil {
		return "", false
	}

	out, err := json.Marshal(h.maskData(body))
	if err != nil {
		return "", false
	}
	return string(out), true
}

func (h *maskHandler) maskData(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, v2 := range val {
			if h.masked(k) {
				out[k] = maskedValue
				continue
			}
			out[k] = h.maskData(v2)
		}
		return out
	case []any:
		return lo.Map(val, func(v2 any, _ int) any { return h.maskData(v2) })
	default:
		return v
	}
}

func buildMaskKeys(fields []string) map[string]struct{} {
	keys := lo.Compact(lo.Map(fields, func(f string, _ int) string {
		return strings.ToLower(strings.TrimSpace(f))
	}))

	return lo.SliceToMap(keys, func(k string) (string, struct{}) { return k, struct{}{} })
}
