package router

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/shandysiswandi/cybershield/internal/pkg/instrument"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

const maxLoggedBodyBytes = 8 * 1024

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
	body   bytes.Buffer
	err    error
}

func (w *statusRecorder) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusRecorder) Write(p []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}

	if room := maxLoggedBodyBytes - w.body.Len(); room > 0 {
		w.body.Write(p[:min(len(p), room)])
	}

	n, err := w.ResponseWriter.Write(p)
	w.bytes += n
	return n, err
}

func (w *statusRecorder) SetError(err error) {
	w.err = err
}

func (w *statusRecorder) Status() int {
	if w.status == 0 {
		return http.StatusOK
	}
	return w.status
}

func matchedRoutePath(r *http.Request) string {
	if pattern := httprouter.ParamsFromContext(r.Context()).MatchedRoutePath(); pattern != "" {
		return pattern
	}
	return r.URL.Path
}

// peekBody reads up to maxLoggedBodyBytes and restores r.Body for the handler.
func peekBody(r *http.Request) []byte {
	if r.Body == nil {
		return nil
	}

	head, _ := io.ReadAll(io.LimitReader(r.Body, maxLoggedBodyBytes))
	r.Body = io.NopCloser(io.MultiReader(bytes.NewReader(head), r.Body))
	return head
}

// loggable decodes JSON bodies into maps so the log handler can mask
// sensitive keys such as password and code.
func loggable(body []byte) any {
	if len(body) == 0 {
		return nil
	}

	var v any
	if err := json.Unmarshal(body, &v); err == nil {
		return v
	}
	return "<non-json body omitted>"
}

func middlewareObservability(ins instrument.Instrumentation) Middleware {
	tracer := ins.Tracer("http.server")
	meter := ins.Meter("http.server")

	requestCounter, err := meter.Int64Counter("http.server.requests", metric.WithDescription("Number of HTTP requests received"))
	if err != nil {
		slog.Error("failed to create http request counter", "error", err)
	}

	durationHistogram, err := meter.Float64Histogram("http.server.duration", metric.WithDescription("HTTP request duration in milliseconds"), metric.WithUnit("ms"))
	if err != nil {
		slog.Error("failed to create http duration histogram", "error", err)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			route := matchedRoutePath(r)
			start := time.Now()

			ctx, span := tracer.Start(r.Context(), r.Method+" "+route,
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(
					semconv.HTTPRequestMethodKey.String(r.Method),
					semconv.HTTPRouteKey.String(route),
				),
			)
			defer span.End()

			slog.InfoContext(ctx, "request received",
				"method", r.Method,
				"path", route,
				"remote_ip", r.RemoteAddr,
				"user_agent", r.UserAgent(),
				"body", loggable(peekBody(r)),
			)

			rec := &statusRecorder{ResponseWriter: w}
			next.ServeHTTP(rec, r.WithContext(ctx))

			status := rec.Status()
			elapsed := time.Since(start)
			attrs := []attribute.KeyValue{
				semconv.HTTPRequestMethodKey.String(r.Method),
				semconv.HTTPRouteKey.String(route),
				semconv.HTTPResponseStatusCodeKey.Int(status),
			}

			span.SetAttributes(attrs...)
			span.SetAttributes(attribute.Int("http.response_content_length", rec.bytes))
			if rec.err != nil {
				span.RecordError(rec.err)
			}
			if status >= http.StatusInternalServerError {
				span.SetStatus(codes.Error, http.StatusText(status))
			}

			if requestCounter != nil {
				requestCounter.Add(ctx, 1, metric.WithAttributes(attrs...))
			}
			if durationHistogram != nil {
				durationHistogram.Record(ctx, float64(elapsed.Microseconds())/1000, metric.WithAttributes(attrs...))
			}

			slog.InfoContext(ctx, "response sent",
				"method", r.Method,
				"path", route,
				"status", status,
				"bytes", rec.bytes,
				"latency_ms", elapsed.Milliseconds(),
				"body", loggable(rec.body.Bytes()),
			)
		})
	}
}
